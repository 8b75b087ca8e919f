package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/umputun/newswatch/pkg/domain"
)

const defaultJudgePrompt = `You are a content filter. You decide whether a piece of content matches the user's filtering criterion.
Answer with exactly one word: YES if the content clearly matches the criterion, NO otherwise.
Do not explain your answer.`

// maxJudgeExcerpt limits the excerpt sent for judgment
const maxJudgeExcerpt = 2000

// Judge decides whether the item matches the criterion
func (c *Client) Judge(ctx context.Context, criterion string, item domain.ContentItem) (domain.Verdict, error) {
	answer, err := c.complete(ctx, c.config.Judge, c.judgeMsg, buildJudgePrompt(criterion, item))
	if err != nil {
		return domain.VerdictReject, fmt.Errorf("judge item %s: %w", item.SourceItemID, err)
	}
	return ParseVerdict(answer), nil
}

func buildJudgePrompt(criterion string, item domain.ContentItem) string {
	var sb strings.Builder
	sb.WriteString("Filtering criterion:\n")
	sb.WriteString(strings.TrimSpace(criterion))
	sb.WriteString("\n\nContent:\n")
	sb.WriteString(fmt.Sprintf("Title: %s\n", item.Title))
	if item.URL != "" {
		sb.WriteString(fmt.Sprintf("URL: %s\n", item.URL))
	}
	if item.BodyExcerpt != "" {
		sb.WriteString(fmt.Sprintf("Text: %s\n", domain.Shorten(item.BodyExcerpt, maxJudgeExcerpt)))
	}
	sb.WriteString("\nDoes the content match the criterion? Answer YES or NO.")
	return sb.String()
}

// ParseVerdict maps a judgment answer to a verdict. The answer is an accept only when, with markdown
// emphasis and quotes stripped, it is the single word "yes", optionally followed by "." or "!".
// Anything else including hedged, echoed or garbled output is a reject.
func ParseVerdict(answer string) domain.Verdict {
	s := strings.TrimSpace(answer)
	for {
		trimmed := strings.Trim(s, verdictMarkup)
		trimmed = strings.TrimRight(trimmed, ".!")
		if trimmed == s {
			break
		}
		s = trimmed
	}
	if strings.EqualFold(s, "yes") {
		return domain.VerdictAccept
	}
	return domain.VerdictReject
}

// verdictMarkup is stripped around a judgment answer
const verdictMarkup = "*_`\"' \t\r\n"
