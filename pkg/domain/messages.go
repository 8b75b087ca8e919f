package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// Queue names a durable queue between two pipeline roles
type Queue string

// queues
const (
	QueueRawContent      Queue = "raw_content"
	QueueFilteredContent Queue = "filtered_content"
	QueueFeedback        Queue = "feedback"
)

// Queues lists all pipeline queues
var Queues = []Queue{QueueRawContent, QueueFilteredContent, QueueFeedback}

// well-known source_metadata keys
const (
	MetaAuthor    = "author"
	MetaPublished = "published"
	MetaScore     = "score"
	MetaPermalink = "permalink"
	MetaSubreddit = "subreddit"
)

// SourceItem is a single record returned by a source fetch
type SourceItem struct {
	ID       string            `json:"source_item_id"`
	Title    string            `json:"title"`
	URL      string            `json:"url"`
	Excerpt  string            `json:"body_excerpt"`
	Metadata map[string]string `json:"source_metadata,omitempty"`
}

// ContentItem is the raw_content payload, a never-before-seen item for a task
type ContentItem struct {
	TaskID       int64             `json:"task_id"`
	SourceItemID string            `json:"source_item_id"`
	Title        string            `json:"title"`
	URL          string            `json:"url"`
	BodyExcerpt  string            `json:"body_excerpt"`
	Metadata     map[string]string `json:"source_metadata,omitempty"`
}

// NewContentItem binds a fetched source item to a task
func NewContentItem(taskID int64, item SourceItem) ContentItem {
	return ContentItem{
		TaskID:       taskID,
		SourceItemID: item.ID,
		Title:        item.Title,
		URL:          item.URL,
		BodyExcerpt:  item.Excerpt,
		Metadata:     item.Metadata,
	}
}

// MessageID returns the broker deduplication id of the item
func (c ContentItem) MessageID() string {
	return fmt.Sprintf("raw-%d-%s", c.TaskID, c.SourceItemID)
}

// NotificationKind distinguishes content notifications from service messages
type NotificationKind string

// notification kinds
const (
	KindContent     NotificationKind = "content"
	KindFeedbackAck NotificationKind = "feedback_ack"
)

// Notification is the filtered_content payload handed to the Dispatcher
type Notification struct {
	ID         string           `json:"notification_id,omitempty"`
	Kind       NotificationKind `json:"kind,omitempty"`
	RoutingKey string           `json:"routing_key"`
	Subject    string           `json:"subject"`
	Body       string           `json:"body"`
	TaskID     int64            `json:"task_id"`
}

// Validate checks the fields every dispatcher relies on
func (n *Notification) Validate() error {
	if n.RoutingKey == "" {
		return fmt.Errorf("routing key is required: %w", ErrValidation)
	}
	if n.Subject == "" || n.Body == "" {
		return fmt.Errorf("subject and body are required: %w", ErrValidation)
	}
	if n.TaskID <= 0 {
		return fmt.Errorf("task id is required: %w", ErrValidation)
	}
	return nil
}

// FeedbackEvent is the feedback payload, free-text feedback bound to the criterion it reacts to
type FeedbackEvent struct {
	TaskID            int64  `json:"task_id"`
	FeedbackText      string `json:"feedback_text"`
	CriterionAtTimeOf string `json:"criterion_at_time_of_feedback"`
}

// MessageID returns the broker deduplication id of the event.
// The same feedback against the same baseline maps to the same id.
func (f FeedbackEvent) MessageID() string {
	return "feedback-" + eventUUID(f).String()
}

// notificationNS is the UUIDv5 namespace for notification ids
var notificationNS = uuid.MustParse("5b2f4a8e-31c4-4c1e-9d4b-8a7e0c6f2d10")

// ContentNotificationID returns the deterministic notification id for an item of a task
func ContentNotificationID(taskID int64, sourceItemID string) string {
	return uuid.NewSHA1(notificationNS, fmt.Appendf(nil, "content/%d/%s", taskID, sourceItemID)).String()
}

// FeedbackNotificationID returns the deterministic id of the confirmation sent for a feedback event
func FeedbackNotificationID(ev FeedbackEvent) string {
	return eventUUID(ev).String()
}

func eventUUID(ev FeedbackEvent) uuid.UUID {
	return uuid.NewSHA1(notificationNS, fmt.Appendf(nil, "feedback/%d/%s/%s", ev.TaskID, ev.CriterionAtTimeOf, ev.FeedbackText))
}
