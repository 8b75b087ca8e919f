// Package scheduler implements the pipeline roles. ScrapeScheduler turns active tasks into raw_content
// items, RelevanceFilter judges them into filtered_content notifications, FeedbackRefiner rewrites
// task criteria from feedback events and Dispatcher hands notifications to a delivery channel.
// Roles share no in-process state, they talk only through the broker and the task store.
package scheduler

import (
	"context"

	"github.com/umputun/newswatch/pkg/domain"
)

//go:generate moq -out mocks/task_store.go -pkg mocks -skip-ensure -fmt goimports . TaskStore
//go:generate moq -out mocks/dedup_ledger.go -pkg mocks -skip-ensure -fmt goimports . DedupLedger
//go:generate moq -out mocks/publisher.go -pkg mocks -skip-ensure -fmt goimports . Publisher
//go:generate moq -out mocks/fetcher.go -pkg mocks -skip-ensure -fmt goimports . Fetcher
//go:generate moq -out mocks/enricher.go -pkg mocks -skip-ensure -fmt goimports . Enricher
//go:generate moq -out mocks/judge.go -pkg mocks -skip-ensure -fmt goimports . Judge
//go:generate moq -out mocks/refiner.go -pkg mocks -skip-ensure -fmt goimports . Refiner
//go:generate moq -out mocks/deliverer.go -pkg mocks -skip-ensure -fmt goimports . Deliverer

// TaskStore provides task access for all roles
type TaskStore interface {
	ListActiveTasks(ctx context.Context) ([]domain.Task, error)
	GetTask(ctx context.Context, id int64) (*domain.Task, error)
	UpdateCriterion(ctx context.Context, id int64, criterion string) error
}

// DedupLedger records items already emitted per task
type DedupLedger interface {
	Reserve(ctx context.Context, taskID int64, sourceItemID string) (bool, error)
	Release(ctx context.Context, taskID int64, sourceItemID string) error
}

// Publisher puts messages on a broker queue
type Publisher interface {
	Publish(ctx context.Context, queue domain.Queue, msgID string, v any) error
}

// Fetcher retrieves items of a source
type Fetcher interface {
	Fetch(ctx context.Context, st domain.SourceType, target string, limit int) ([]domain.SourceItem, error)
}

// Enricher completes a new item before it is published, e.g. fills a missing excerpt
type Enricher interface {
	Enrich(ctx context.Context, item domain.SourceItem) domain.SourceItem
}

// Judge is the relevance judgment capability
type Judge interface {
	Judge(ctx context.Context, criterion string, item domain.ContentItem) (domain.Verdict, error)
}

// Refiner is the criterion refinement capability
type Refiner interface {
	Refine(ctx context.Context, criterion, feedback string) (string, error)
}

// Deliverer hands a notification to the external delivery channel
type Deliverer interface {
	Deliver(ctx context.Context, n domain.Notification) error
}
