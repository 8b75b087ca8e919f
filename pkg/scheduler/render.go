package scheduler

import (
	"fmt"
	"strings"

	"github.com/umputun/newswatch/pkg/domain"
)

const (
	separator      = "------------------------------------------------------------"
	bodyExcerptLen = 1000
)

// renderContent builds the notification for an accepted item
func renderContent(task domain.Task, item domain.ContentItem, subjectLen int) domain.Notification {
	title := item.Title
	if title == "" {
		title = "New content"
	}

	var b strings.Builder
	b.WriteString("New relevant content found for your monitoring task!\n\n")
	fmt.Fprintf(&b, "Task ID: %d\n", task.ID)
	if task.Description != "" {
		fmt.Fprintf(&b, "Task Description: %s\n", task.Description)
	}
	b.WriteString("\n" + separator + "\n\n")
	b.WriteString(formatItem(item))
	b.WriteString("\n" + separator + "\n\n")
	b.WriteString("Reply to this message with feedback to improve filtering:\n")
	b.WriteString("- \"This is exactly what I want\" to reinforce this type of content\n")
	b.WriteString("- \"This is not relevant\" to filter out similar content\n")
	b.WriteString("- any other feedback to refine the criteria\n\n")
	fmt.Fprintf(&b, "Reference: %s\n", domain.TaskRef(task.ID))

	return domain.Notification{
		ID:         domain.ContentNotificationID(task.ID, item.SourceItemID),
		Kind:       domain.KindContent,
		RoutingKey: task.OwnerContact,
		Subject:    domain.SubjectTag(task.ID) + " " + domain.Shorten(title, subjectLen),
		Body:       b.String(),
		TaskID:     task.ID,
	}
}

// formatItem renders the content block, reddit items get score and subreddit lines
func formatItem(item domain.ContentItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", item.Title)
	meta := item.Metadata
	if v := meta[domain.MetaAuthor]; v != "" {
		fmt.Fprintf(&b, "Author: %s\n", v)
	}
	if v := meta[domain.MetaSubreddit]; v != "" {
		fmt.Fprintf(&b, "Subreddit: r/%s\n", v)
	}
	if v := meta[domain.MetaScore]; v != "" {
		fmt.Fprintf(&b, "Score: %s\n", v)
	}
	if v := meta[domain.MetaPublished]; v != "" {
		fmt.Fprintf(&b, "Published: %s\n", v)
	}
	if excerpt := domain.Shorten(item.BodyExcerpt, bodyExcerptLen); excerpt != "" {
		b.WriteString("\n" + excerpt + "\n")
	}
	if item.URL != "" {
		fmt.Fprintf(&b, "\nLink: %s\n", item.URL)
	}
	if v := meta[domain.MetaPermalink]; v != "" && v != item.URL {
		fmt.Fprintf(&b, "Discussion: %s\n", v)
	}
	return b.String()
}

// renderFeedbackAck builds the confirmation sent after a criterion update
func renderFeedbackAck(task domain.Task, ev domain.FeedbackEvent, changed bool) domain.Notification {
	var b strings.Builder
	b.WriteString("Thank you for your feedback!\n\n")
	fmt.Fprintf(&b, "Task ID: %d\n\n", task.ID)
	if changed {
		b.WriteString("Your feedback has been processed and the filtering criteria have been updated.\n")
		b.WriteString("Future content will be filtered using the refined criteria.\n\n")
	} else {
		b.WriteString("Your feedback has been processed, it did not change the filtering criteria.\n")
		b.WriteString("Future content will be filtered as before.\n\n")
	}
	if task.Description != "" {
		fmt.Fprintf(&b, "Original criteria focus:\n%s\n\n", task.Description)
	}
	b.WriteString("You can continue to provide feedback on any notification to further improve the filtering.\n\n")
	fmt.Fprintf(&b, "Reference: %s\n", domain.TaskRef(task.ID))

	return domain.Notification{
		ID:         domain.FeedbackNotificationID(ev),
		Kind:       domain.KindFeedbackAck,
		RoutingKey: task.OwnerContact,
		Subject:    domain.SubjectTag(task.ID) + " Feedback received",
		Body:       b.String(),
		TaskID:     task.ID,
	}
}
