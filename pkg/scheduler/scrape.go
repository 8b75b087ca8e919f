package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"golang.org/x/sync/errgroup"

	"github.com/umputun/newswatch/pkg/domain"
)

// ScrapeScheduler periodically turns active tasks into a stream of never-before-seen items.
// Each tick loads active tasks, fetches their sources with bounded concurrency and a per-fetch
// timeout, reserves every new item in the dedup ledger and publishes it to raw_content.
// A failed fetch affects only its task, it is retried on the next tick.
type ScrapeScheduler struct {
	tasks     TaskStore
	ledger    DedupLedger
	fetcher   Fetcher
	enricher  Enricher
	publisher Publisher

	interval     time.Duration
	fetchTimeout time.Duration
	fetchLimit   int
	maxWorkers   int
}

// ScrapeParams holds dependencies and settings of the scrape scheduler
type ScrapeParams struct {
	Tasks     TaskStore
	Ledger    DedupLedger
	Fetcher   Fetcher
	Enricher  Enricher // optional, applied to reserved items only
	Publisher Publisher

	Interval     time.Duration
	FetchTimeout time.Duration
	FetchLimit   int
	MaxWorkers   int
}

// TickStats summarizes one scrape tick
type TickStats struct {
	Tasks      int
	Fetched    int
	Published  int
	Duplicates int
	Failed     int // tasks whose fetch or ledger access failed
}

func (s TickStats) String() string {
	return fmt.Sprintf("tasks=%d fetched=%d published=%d duplicates=%d failed=%d",
		s.Tasks, s.Fetched, s.Published, s.Duplicates, s.Failed)
}

// NewScrapeScheduler creates a scrape scheduler
func NewScrapeScheduler(p ScrapeParams) *ScrapeScheduler {
	if p.MaxWorkers <= 0 {
		p.MaxWorkers = 1
	}
	return &ScrapeScheduler{
		tasks:        p.Tasks,
		ledger:       p.Ledger,
		fetcher:      p.Fetcher,
		enricher:     p.Enricher,
		publisher:    p.Publisher,
		interval:     p.Interval,
		fetchTimeout: p.FetchTimeout,
		fetchLimit:   p.FetchLimit,
		maxWorkers:   p.MaxWorkers,
	}
}

// Run ticks until ctx is canceled, the first tick runs immediately.
// It returns an error only when the broker is gone.
func (s *ScrapeScheduler) Run(ctx context.Context) error {
	lgr.Printf("[INFO] scrape scheduler started, interval %v, max workers %d", s.interval, s.maxWorkers)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		stats, err := s.RunOnce(ctx)
		switch {
		case errors.Is(err, domain.ErrBrokerUnavailable):
			return fmt.Errorf("scrape tick: %w", err)
		case err != nil:
			lgr.Printf("[ERROR] scrape tick failed: %v", err)
		default:
			lgr.Printf("[INFO] scrape tick completed, %s", stats)
		}

		select {
		case <-ctx.Done():
			lgr.Printf("[INFO] scrape scheduler stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// RunOnce runs a single scrape tick
func (s *ScrapeScheduler) RunOnce(ctx context.Context) (TickStats, error) {
	tasks, err := s.tasks.ListActiveTasks(ctx)
	if err != nil {
		return TickStats{}, fmt.Errorf("list active tasks: %w", err)
	}

	var mu sync.Mutex
	total := TickStats{Tasks: len(tasks)}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxWorkers)
	for _, task := range tasks {
		g.Go(func() error {
			st, err := s.scrapeTask(gctx, task)
			mu.Lock()
			total.Fetched += st.Fetched
			total.Published += st.Published
			total.Duplicates += st.Duplicates
			total.Failed += st.Failed
			mu.Unlock()
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return total, err
	}
	return total, nil
}

// scrapeTask fetches one task's source and publishes unseen items in source order.
// Only a lost broker is returned as error, everything else is logged and counted.
func (s *ScrapeScheduler) scrapeTask(ctx context.Context, task domain.Task) (TickStats, error) {
	var st TickStats

	fetchCtx := ctx
	if s.fetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, s.fetchTimeout)
		defer cancel()
	}

	items, err := s.fetcher.Fetch(fetchCtx, task.SourceType, task.SourceTarget, s.fetchLimit)
	if err != nil {
		lgr.Printf("[WARN] task %d: fetch %s %q failed, retry on next tick: %v", task.ID, task.SourceType, task.SourceTarget, err)
		st.Failed++
		return st, nil
	}
	st.Fetched = len(items)
	if len(items) == 0 {
		lgr.Printf("[DEBUG] task %d: nothing fetched from %s %q", task.ID, task.SourceType, task.SourceTarget)
		return st, nil
	}

	batch := make(map[string]struct{}, len(items))
	for _, item := range items {
		if _, dup := batch[item.ID]; dup {
			st.Duplicates++
			continue
		}
		batch[item.ID] = struct{}{}

		reserved, err := s.ledger.Reserve(ctx, task.ID, item.ID)
		if err != nil {
			lgr.Printf("[WARN] task %d: dedup ledger unavailable, skip the rest of the batch: %v", task.ID, err)
			st.Failed++
			return st, nil
		}
		if !reserved {
			st.Duplicates++
			continue
		}

		if s.enricher != nil {
			item = s.enricher.Enrich(ctx, item)
		}
		content := domain.NewContentItem(task.ID, item)
		if err := s.publisher.Publish(ctx, domain.QueueRawContent, content.MessageID(), content); err != nil {
			// the reservation would hide the item forever, give it back for the next tick
			if relErr := s.ledger.Release(context.WithoutCancel(ctx), task.ID, item.ID); relErr != nil {
				lgr.Printf("[ERROR] task %d: release item %q after failed publish: %v", task.ID, item.ID, relErr)
			}
			if errors.Is(err, domain.ErrBrokerUnavailable) {
				return st, fmt.Errorf("task %d: %w", task.ID, err)
			}
			lgr.Printf("[WARN] task %d: publish item %q failed, retry on next tick: %v", task.ID, item.ID, err)
			st.Failed++
			return st, nil
		}
		st.Published++
		lgr.Printf("[DEBUG] task %d: published item %q, %q", task.ID, item.ID, item.Title)
	}
	return st, nil
}
