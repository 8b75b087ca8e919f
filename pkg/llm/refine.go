package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/umputun/newswatch/pkg/domain"
)

const defaultRefinePrompt = `You maintain content filtering criteria. A criterion is a single instruction describing which content the user wants to receive.
You get the current criterion and the user's feedback about the content they received.
Rewrite the whole criterion so that it:
- keeps every earlier constraint that the feedback does not contradict
- integrates the new feedback as a precise constraint
- stays one self-contained directive, not a question and not a reply to the user
- does not repeat a constraint that is already present
Return ONLY the updated criterion text, without quotes, labels or explanations.`

// Refine rewrites the criterion to integrate the feedback. The returned text is cleaned from
// wrapping quotes, code fences and labels but is not validated.
func (c *Client) Refine(ctx context.Context, criterion, feedback string) (string, error) {
	answer, err := c.complete(ctx, c.config.Refine, c.refineMsg, buildRefinePrompt(criterion, feedback))
	if err != nil {
		return "", fmt.Errorf("refine criterion: %w", err)
	}

	refined := CleanCriterion(answer)
	if refined == "" {
		return "", fmt.Errorf("refine criterion: nothing left after cleanup of %q: %w", answer, domain.ErrMalformedResponse)
	}
	return refined, nil
}

func buildRefinePrompt(criterion, feedback string) string {
	var sb strings.Builder
	sb.WriteString("Current criterion:\n")
	sb.WriteString(strings.TrimSpace(criterion))
	sb.WriteString("\n\nUser feedback:\n")
	sb.WriteString(strings.TrimSpace(feedback))
	sb.WriteString("\n\nUpdated criterion:")
	return sb.String()
}

// CleanCriterion strips the wrapping a model tends to add around the criterion
func CleanCriterion(s string) string {
	s = strings.TrimSpace(s)

	// code fences
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if idx := strings.Index(s, "\n"); idx >= 0 && !strings.Contains(s[:idx], " ") {
			s = s[idx+1:] // language tag line
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}

	// labels like "Updated criterion:"
	for _, label := range []string{"updated criterion:", "new criterion:", "criterion:"} {
		if len(s) >= len(label) && strings.EqualFold(s[:len(label)], label) {
			s = strings.TrimSpace(s[len(label):])
			break
		}
	}

	// wrapping quotes
	for _, q := range []string{`"`, "'", "`", "“"} {
		closing := q
		if q == "“" {
			closing = "”"
		}
		if len(s) >= len(q)+len(closing) && strings.HasPrefix(s, q) && strings.HasSuffix(s, closing) {
			s = strings.TrimSpace(s[len(q) : len(s)-len(closing)])
			break
		}
	}
	return s
}
