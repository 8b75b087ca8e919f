package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/newswatch/pkg/domain"
	"github.com/umputun/newswatch/pkg/scheduler/mocks"
)

// memLedger returns a ledger mock backed by a map
func memLedger() *mocks.DedupLedgerMock {
	var mu sync.Mutex
	seen := map[string]bool{}
	key := func(taskID int64, id string) string { return fmt.Sprintf("%d/%s", taskID, id) }
	return &mocks.DedupLedgerMock{
		ReserveFunc: func(_ context.Context, taskID int64, id string) (bool, error) {
			mu.Lock()
			defer mu.Unlock()
			if seen[key(taskID, id)] {
				return false, nil
			}
			seen[key(taskID, id)] = true
			return true, nil
		},
		ReleaseFunc: func(_ context.Context, taskID int64, id string) error {
			mu.Lock()
			defer mu.Unlock()
			delete(seen, key(taskID, id))
			return nil
		},
	}
}

// recordingPublisher collects published payloads per queue
type recordingPublisher struct {
	mu   sync.Mutex
	msgs map[domain.Queue][]any
	ids  []string
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, queue domain.Queue, msgID string, v any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	if p.msgs == nil {
		p.msgs = map[domain.Queue][]any{}
	}
	p.msgs[queue] = append(p.msgs[queue], v)
	p.ids = append(p.ids, msgID)
	return nil
}

func (p *recordingPublisher) items() []domain.ContentItem {
	p.mu.Lock()
	defer p.mu.Unlock()
	res := make([]domain.ContentItem, 0, len(p.msgs[domain.QueueRawContent]))
	for _, v := range p.msgs[domain.QueueRawContent] {
		res = append(res, v.(domain.ContentItem))
	}
	return res
}

func (p *recordingPublisher) notifications() []domain.Notification {
	p.mu.Lock()
	defer p.mu.Unlock()
	res := make([]domain.Notification, 0, len(p.msgs[domain.QueueFilteredContent]))
	for _, v := range p.msgs[domain.QueueFilteredContent] {
		res = append(res, v.(domain.Notification))
	}
	return res
}

func sourceItems(ids ...string) []domain.SourceItem {
	res := make([]domain.SourceItem, 0, len(ids))
	for _, id := range ids {
		res = append(res, domain.SourceItem{ID: id, Title: "title " + id, URL: "https://example.com/" + id})
	}
	return res
}

func staticTasks(tasks ...domain.Task) *mocks.TaskStoreMock {
	return &mocks.TaskStoreMock{
		ListActiveTasksFunc: func(context.Context) ([]domain.Task, error) { return tasks, nil },
	}
}

func TestScrapeScheduler_RunOnce(t *testing.T) {
	tasks := staticTasks(
		domain.Task{ID: 1, SourceType: domain.SourceReddit, SourceTarget: "python", Status: domain.StatusActive},
		domain.Task{ID: 2, SourceType: domain.SourceRSS, SourceTarget: "https://example.com/feed", Status: domain.StatusActive},
	)
	fetcher := &mocks.FetcherMock{
		FetchFunc: func(_ context.Context, st domain.SourceType, target string, limit int) ([]domain.SourceItem, error) {
			assert.Equal(t, 25, limit)
			if st == domain.SourceReddit {
				return sourceItems("a", "b", "a", "c"), nil // duplicate within the batch
			}
			return sourceItems("x"), nil
		},
	}
	pub := &recordingPublisher{}
	s := NewScrapeScheduler(ScrapeParams{Tasks: tasks, Ledger: memLedger(), Fetcher: fetcher, Publisher: pub,
		FetchTimeout: time.Second, FetchLimit: 25, MaxWorkers: 2})

	stats, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, TickStats{Tasks: 2, Fetched: 5, Published: 4, Duplicates: 1}, stats)

	var redditIDs []string
	for _, it := range pub.items() {
		if it.TaskID == 1 {
			redditIDs = append(redditIDs, it.SourceItemID)
		}
	}
	assert.Equal(t, []string{"a", "b", "c"}, redditIDs, "source order kept within a task")
	assert.Contains(t, pub.ids, "raw-1-a")
	assert.Contains(t, pub.ids, "raw-2-x")

	t.Run("second tick publishes nothing already seen", func(t *testing.T) {
		stats, err := s.RunOnce(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, stats.Published)
		assert.Equal(t, 5, stats.Duplicates)
		assert.Len(t, pub.items(), 4)
	})
}

func TestScrapeScheduler_EnrichesOnlyNewItems(t *testing.T) {
	var tick atomic.Int32
	fetcher := &mocks.FetcherMock{
		FetchFunc: func(context.Context, domain.SourceType, string, int) ([]domain.SourceItem, error) {
			if tick.Load() == 0 {
				return sourceItems("a", "b"), nil
			}
			return sourceItems("c", "a", "b"), nil
		},
	}
	enricher := &mocks.EnricherMock{
		EnrichFunc: func(_ context.Context, item domain.SourceItem) domain.SourceItem {
			item.Excerpt = "page text of " + item.ID
			return item
		},
	}
	pub := &recordingPublisher{}
	s := NewScrapeScheduler(ScrapeParams{
		Tasks:     staticTasks(domain.Task{ID: 1, SourceType: domain.SourceReddit, SourceTarget: "python", Status: domain.StatusActive}),
		Ledger:    memLedger(),
		Fetcher:   fetcher,
		Enricher:  enricher,
		Publisher: pub,
	})

	for range 3 {
		_, err := s.RunOnce(context.Background())
		require.NoError(t, err)
		tick.Add(1)
	}

	var enriched []string
	for _, c := range enricher.EnrichCalls() {
		enriched = append(enriched, c.Item.ID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, enriched, "seen items are never enriched again")

	items := pub.items()
	require.Len(t, items, 3)
	for _, it := range items {
		assert.Equal(t, "page text of "+it.SourceItemID, it.BodyExcerpt)
	}
}

func TestScrapeScheduler_FetchFailureIsolated(t *testing.T) {
	tasks := staticTasks(
		domain.Task{ID: 1, SourceType: domain.SourceReddit, SourceTarget: "broken", Status: domain.StatusActive},
		domain.Task{ID: 2, SourceType: domain.SourceReddit, SourceTarget: "golang", Status: domain.StatusActive},
	)
	fetcher := &mocks.FetcherMock{
		FetchFunc: func(_ context.Context, _ domain.SourceType, target string, _ int) ([]domain.SourceItem, error) {
			if target == "broken" {
				return nil, fmt.Errorf("status 503: %w", domain.ErrTransientFetch)
			}
			return sourceItems("g1"), nil
		},
	}
	pub := &recordingPublisher{}
	s := NewScrapeScheduler(ScrapeParams{Tasks: tasks, Ledger: memLedger(), Fetcher: fetcher, Publisher: pub, FetchLimit: 10})

	stats, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.Published)
	require.Len(t, pub.items(), 1)
	assert.Equal(t, int64(2), pub.items()[0].TaskID)
}

func TestScrapeScheduler_SlowSourceTimesOut(t *testing.T) {
	tasks := staticTasks(
		domain.Task{ID: 1, SourceType: domain.SourceRSS, SourceTarget: "slow", Status: domain.StatusActive},
		domain.Task{ID: 2, SourceType: domain.SourceRSS, SourceTarget: "fast", Status: domain.StatusActive},
	)
	fetcher := &mocks.FetcherMock{
		FetchFunc: func(ctx context.Context, _ domain.SourceType, target string, _ int) ([]domain.SourceItem, error) {
			if target == "slow" {
				<-ctx.Done()
				return nil, ctx.Err()
			}
			return sourceItems("f1"), nil
		},
	}
	pub := &recordingPublisher{}
	s := NewScrapeScheduler(ScrapeParams{Tasks: tasks, Ledger: memLedger(), Fetcher: fetcher, Publisher: pub,
		FetchTimeout: 50 * time.Millisecond, MaxWorkers: 1})

	st := time.Now()
	stats, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Less(t, time.Since(st), time.Second)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.Published)
}

func TestScrapeScheduler_EmptyFetch(t *testing.T) {
	fetcher := &mocks.FetcherMock{
		FetchFunc: func(context.Context, domain.SourceType, string, int) ([]domain.SourceItem, error) { return nil, nil },
	}
	ledger := memLedger()
	s := NewScrapeScheduler(ScrapeParams{
		Tasks:  staticTasks(domain.Task{ID: 1, SourceType: domain.SourceRSS, SourceTarget: "t", Status: domain.StatusActive}),
		Ledger: ledger, Fetcher: fetcher, Publisher: &recordingPublisher{},
	})
	stats, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, TickStats{Tasks: 1}, stats)
	assert.Empty(t, ledger.ReserveCalls())
}

func TestScrapeScheduler_PublishFailureReleases(t *testing.T) {
	fetcher := &mocks.FetcherMock{
		FetchFunc: func(context.Context, domain.SourceType, string, int) ([]domain.SourceItem, error) {
			return sourceItems("a", "b"), nil
		},
	}
	tasks := staticTasks(domain.Task{ID: 3, SourceType: domain.SourceRSS, SourceTarget: "t", Status: domain.StatusActive})

	t.Run("publish error keeps item for next tick", func(t *testing.T) {
		ledger := memLedger()
		pub := &recordingPublisher{err: errors.New("nats: timeout")}
		s := NewScrapeScheduler(ScrapeParams{Tasks: tasks, Ledger: ledger, Fetcher: fetcher, Publisher: pub})

		stats, err := s.RunOnce(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, stats.Failed)
		require.Len(t, ledger.ReleaseCalls(), 1)
		assert.Equal(t, "a", ledger.ReleaseCalls()[0].SourceItemID)

		pub.err = nil
		stats, err = s.RunOnce(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, stats.Published)
	})

	t.Run("lost broker is fatal", func(t *testing.T) {
		ledger := memLedger()
		pub := &recordingPublisher{err: fmt.Errorf("publish: %w", domain.ErrBrokerUnavailable)}
		s := NewScrapeScheduler(ScrapeParams{Tasks: tasks, Ledger: ledger, Fetcher: fetcher, Publisher: pub})

		_, err := s.RunOnce(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrBrokerUnavailable)
		assert.Len(t, ledger.ReleaseCalls(), 1)
	})
}

func TestScrapeScheduler_LedgerFailure(t *testing.T) {
	ledger := &mocks.DedupLedgerMock{
		ReserveFunc: func(context.Context, int64, string) (bool, error) {
			return false, fmt.Errorf("reserve: %w", domain.ErrStoreUnavailable)
		},
	}
	fetcher := &mocks.FetcherMock{
		FetchFunc: func(context.Context, domain.SourceType, string, int) ([]domain.SourceItem, error) {
			return sourceItems("a", "b"), nil
		},
	}
	pub := &recordingPublisher{}
	s := NewScrapeScheduler(ScrapeParams{
		Tasks:  staticTasks(domain.Task{ID: 1, SourceType: domain.SourceRSS, SourceTarget: "t", Status: domain.StatusActive}),
		Ledger: ledger, Fetcher: fetcher, Publisher: pub,
	})
	stats, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Failed)
	assert.Empty(t, pub.items(), "nothing published without a ledger record")
}

func TestScrapeScheduler_PausedTaskNotScraped(t *testing.T) {
	var paused atomic.Bool
	store := &mocks.TaskStoreMock{
		ListActiveTasksFunc: func(context.Context) ([]domain.Task, error) {
			if paused.Load() {
				return nil, nil
			}
			return []domain.Task{{ID: 1, SourceType: domain.SourceReddit, SourceTarget: "python", Status: domain.StatusActive}}, nil
		},
	}
	var tick atomic.Int32
	fetcher := &mocks.FetcherMock{
		FetchFunc: func(context.Context, domain.SourceType, string, int) ([]domain.SourceItem, error) {
			n := tick.Add(1)
			return sourceItems(fmt.Sprintf("post-%d", n)), nil
		},
	}
	pub := &recordingPublisher{}
	s := NewScrapeScheduler(ScrapeParams{Tasks: store, Ledger: memLedger(), Fetcher: fetcher, Publisher: pub})

	_, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	require.Len(t, pub.items(), 1)

	paused.Store(true)
	for range 3 {
		stats, err := s.RunOnce(context.Background())
		require.NoError(t, err)
		assert.Zero(t, stats.Published)
	}
	assert.Len(t, pub.items(), 1)
	assert.Len(t, fetcher.FetchCalls(), 1)
}

func TestScrapeScheduler_Run(t *testing.T) {
	t.Run("ticks until canceled", func(t *testing.T) {
		var ticks atomic.Int32
		store := &mocks.TaskStoreMock{
			ListActiveTasksFunc: func(context.Context) ([]domain.Task, error) {
				ticks.Add(1)
				return nil, nil
			},
		}
		s := NewScrapeScheduler(ScrapeParams{Tasks: store, Ledger: memLedger(), Fetcher: &mocks.FetcherMock{},
			Publisher: &recordingPublisher{}, Interval: 20 * time.Millisecond})

		ctx, cancel := context.WithTimeout(context.Background(), 110*time.Millisecond)
		defer cancel()
		require.NoError(t, s.Run(ctx))
		assert.GreaterOrEqual(t, ticks.Load(), int32(3))
	})

	t.Run("store error skips the tick", func(t *testing.T) {
		var ticks atomic.Int32
		store := &mocks.TaskStoreMock{
			ListActiveTasksFunc: func(context.Context) ([]domain.Task, error) {
				ticks.Add(1)
				return nil, domain.ErrStoreUnavailable
			},
		}
		s := NewScrapeScheduler(ScrapeParams{Tasks: store, Ledger: memLedger(), Fetcher: &mocks.FetcherMock{},
			Publisher: &recordingPublisher{}, Interval: 20 * time.Millisecond})
		ctx, cancel := context.WithTimeout(context.Background(), 70*time.Millisecond)
		defer cancel()
		require.NoError(t, s.Run(ctx))
		assert.GreaterOrEqual(t, ticks.Load(), int32(2))
	})

	t.Run("broker loss stops the scheduler", func(t *testing.T) {
		s := NewScrapeScheduler(ScrapeParams{
			Tasks:  staticTasks(domain.Task{ID: 1, SourceType: domain.SourceRSS, SourceTarget: "t", Status: domain.StatusActive}),
			Ledger: memLedger(),
			Fetcher: &mocks.FetcherMock{FetchFunc: func(context.Context, domain.SourceType, string, int) ([]domain.SourceItem, error) {
				return sourceItems("a"), nil
			}},
			Publisher: &recordingPublisher{err: domain.ErrBrokerUnavailable},
			Interval:  time.Hour,
		})
		err := s.Run(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrBrokerUnavailable)
	})
}
