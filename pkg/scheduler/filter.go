package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/newswatch/pkg/domain"
)

// RelevanceFilter consumes raw_content items, judges them against the task's current criterion
// and publishes accepted ones to filtered_content. Every item is terminal in one pass:
// capability failures are retried and then the item is dropped, never requeued for re-judgment.
type RelevanceFilter struct {
	tasks      TaskStore
	judge      Judge
	publisher  Publisher
	retry      RetryConfig
	subjectLen int
}

// FilterParams holds dependencies and settings of the relevance filter
type FilterParams struct {
	Tasks      TaskStore
	Judge      Judge
	Publisher  Publisher
	Retry      RetryConfig
	SubjectLen int
}

// NewRelevanceFilter creates a relevance filter
func NewRelevanceFilter(p FilterParams) *RelevanceFilter {
	if p.SubjectLen <= 0 {
		p.SubjectLen = 50
	}
	return &RelevanceFilter{tasks: p.Tasks, judge: p.Judge, publisher: p.Publisher, retry: p.Retry, subjectLen: p.SubjectLen}
}

// Handle processes one raw_content item. A nil result acks the message, an error redelivers it,
// which happens only when the store or the broker can't serve the item.
func (f *RelevanceFilter) Handle(ctx context.Context, item domain.ContentItem) error {
	if item.TaskID <= 0 || item.SourceItemID == "" {
		lgr.Printf("[WARN] drop invalid item, task %d, id %q", item.TaskID, item.SourceItemID)
		return nil
	}

	// criterion is read per item, a refinement landed before this point applies right away
	task, err := f.tasks.GetTask(ctx, item.TaskID)
	if errors.Is(err, domain.ErrTaskNotFound) {
		lgr.Printf("[DEBUG] task %d not found, drop item %q", item.TaskID, item.SourceItemID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get task %d: %w", item.TaskID, err)
	}
	if !task.Active() {
		lgr.Printf("[DEBUG] task %d is %s, drop item %q", task.ID, task.Status, item.SourceItemID)
		return nil
	}

	var verdict domain.Verdict
	err = f.retry.do(ctx, func() error {
		v, e := f.judge.Judge(ctx, task.Criterion, item)
		if e != nil {
			lgr.Printf("[DEBUG] task %d: judge item %q: %v", task.ID, item.SourceItemID, e)
			return e
		}
		verdict = v
		return nil
	})
	if err != nil {
		lgr.Printf("[WARN] task %d: judgment failed after %d attempts, drop item %q: %v",
			task.ID, f.retry.Attempts, item.SourceItemID, err)
		return nil
	}

	if verdict != domain.VerdictAccept {
		lgr.Printf("[DEBUG] task %d: rejected item %q, %q", task.ID, item.SourceItemID, item.Title)
		return nil
	}

	n := renderContent(*task, item, f.subjectLen)
	if err := f.publish(ctx, n); err != nil {
		if errors.Is(err, domain.ErrBrokerUnavailable) {
			return err
		}
		lgr.Printf("[WARN] task %d: publish notification for item %q failed, drop: %v", task.ID, item.SourceItemID, err)
		return nil
	}
	lgr.Printf("[INFO] task %d: accepted item %q, %q", task.ID, item.SourceItemID, item.Title)
	return nil
}

func (f *RelevanceFilter) publish(ctx context.Context, n domain.Notification) error {
	err := f.retry.do(ctx, func() error {
		return f.publisher.Publish(ctx, domain.QueueFilteredContent, n.ID, n)
	}, domain.ErrBrokerUnavailable)
	if err != nil {
		return fmt.Errorf("publish notification %s: %w", n.ID, err)
	}
	return nil
}
