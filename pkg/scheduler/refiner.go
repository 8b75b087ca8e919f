package scheduler

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/newswatch/pkg/domain"
)

// FeedbackRefiner consumes feedback events, asks the refinement capability for a rewritten
// criterion and stores it. The baseline is the criterion captured in the event, so a repeated
// event rewrites the whole criterion from the same starting point instead of compounding.
type FeedbackRefiner struct {
	tasks            TaskStore
	refiner          Refiner
	publisher        Publisher
	retry            RetryConfig
	maxLen           int
	skipConfirmation bool
}

// RefinerParams holds dependencies and settings of the feedback refiner
type RefinerParams struct {
	Tasks            TaskStore
	Refiner          Refiner
	Publisher        Publisher
	Retry            RetryConfig
	MaxLen           int
	SkipConfirmation bool
}

// NewFeedbackRefiner creates a feedback refiner
func NewFeedbackRefiner(p RefinerParams) *FeedbackRefiner {
	if p.MaxLen <= 0 {
		p.MaxLen = 2000
	}
	return &FeedbackRefiner{
		tasks:            p.Tasks,
		refiner:          p.Refiner,
		publisher:        p.Publisher,
		retry:            p.Retry,
		maxLen:           p.MaxLen,
		skipConfirmation: p.SkipConfirmation,
	}
}

// Handle processes one feedback event. A nil result acks the message, an error redelivers it,
// which happens only when the store or the broker can't serve the event.
func (r *FeedbackRefiner) Handle(ctx context.Context, ev domain.FeedbackEvent) error {
	if ev.TaskID <= 0 || strings.TrimSpace(ev.FeedbackText) == "" {
		lgr.Printf("[WARN] drop invalid feedback event for task %d", ev.TaskID)
		return nil
	}

	task, err := r.tasks.GetTask(ctx, ev.TaskID)
	if errors.Is(err, domain.ErrTaskNotFound) {
		lgr.Printf("[WARN] task %d not found, drop feedback", ev.TaskID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get task %d: %w", ev.TaskID, err)
	}
	if task.Status == domain.StatusDeleted {
		lgr.Printf("[DEBUG] task %d is deleted, drop feedback", task.ID)
		return nil
	}

	baseline := strings.TrimSpace(ev.CriterionAtTimeOf)
	if baseline == "" {
		baseline = task.Criterion
	}

	var refined string
	err = r.retry.do(ctx, func() error {
		res, e := r.refiner.Refine(ctx, baseline, ev.FeedbackText)
		if e != nil {
			lgr.Printf("[DEBUG] task %d: refine criterion: %v", task.ID, e)
			return e
		}
		refined = res
		return nil
	})
	if err != nil {
		lgr.Printf("[WARN] task %d: refinement failed after %d attempts, criterion kept: %v", task.ID, r.retry.Attempts, err)
		return nil
	}

	refined, err = r.validate(refined)
	if err != nil {
		lgr.Printf("[WARN] task %d: refined criterion rejected, criterion kept: %v", task.ID, err)
		return nil
	}

	if refined == task.Criterion {
		lgr.Printf("[DEBUG] task %d: criterion unchanged by feedback", task.ID)
	} else {
		err = r.tasks.UpdateCriterion(ctx, task.ID, refined)
		if errors.Is(err, domain.ErrTaskNotFound) {
			lgr.Printf("[WARN] task %d gone before criterion update, drop feedback", task.ID)
			return nil
		}
		if err != nil {
			return fmt.Errorf("update criterion of task %d: %w", task.ID, err)
		}
		lgr.Printf("[INFO] task %d: criterion updated to %q", task.ID, refined)
	}

	if r.skipConfirmation {
		return nil
	}
	n := renderFeedbackAck(*task, ev, refined != baseline)
	err = r.retry.do(ctx, func() error {
		return r.publisher.Publish(ctx, domain.QueueFilteredContent, n.ID, n)
	}, domain.ErrBrokerUnavailable)
	if errors.Is(err, domain.ErrBrokerUnavailable) {
		return fmt.Errorf("publish feedback confirmation for task %d: %w", task.ID, err)
	}
	if err != nil {
		lgr.Printf("[WARN] task %d: feedback confirmation not sent: %v", task.ID, err)
	}
	return nil
}

var (
	preambleRe = regexp.MustCompile(`(?i)^(sure|okay|ok|certainly|of course|here is|here's|i have|i've|i will|i'll|i can|i cannot|i can't|sorry|thank you|thanks)\b`)
	aiRe       = regexp.MustCompile(`(?i)\bas an ai\b`)
)

// validate checks the refined criterion is a single usable directive and returns it trimmed
func (r *FeedbackRefiner) validate(criterion string) (string, error) {
	criterion = strings.TrimSpace(criterion)
	switch {
	case criterion == "":
		return "", fmt.Errorf("empty criterion: %w", domain.ErrValidation)
	case utf8.RuneCountInString(criterion) > r.maxLen:
		return "", fmt.Errorf("criterion longer than %d runes: %w", r.maxLen, domain.ErrValidation)
	case preambleRe.MatchString(criterion):
		return "", fmt.Errorf("conversational response %q: %w", domain.Shorten(criterion, 60), domain.ErrValidation)
	case aiRe.MatchString(criterion):
		return "", fmt.Errorf("assistant disclaimer in %q: %w", domain.Shorten(criterion, 60), domain.ErrValidation)
	case strings.HasSuffix(criterion, "?"):
		return "", fmt.Errorf("question instead of directive %q: %w", domain.Shorten(criterion, 60), domain.ErrValidation)
	}
	return criterion, nil
}
