// Package source implements the source-fetch capability. Every source type is a Fetcher
// turning a target (subreddit name, feed URL) into a finite ordered list of items.
package source

import (
	"context"
	"fmt"
	"sort"
	"time"

	log "github.com/go-pkgz/lgr"

	"github.com/umputun/newswatch/pkg/domain"
)

//go:generate moq -out mocks/fetcher.go -pkg mocks -skip-ensure -fmt goimports . Fetcher
//go:generate moq -out mocks/enricher.go -pkg mocks -skip-ensure -fmt goimports . Enricher

// Fetcher retrieves items of one source type. Errors are transient fetch errors,
// the same target is fetched again on the next tick.
type Fetcher interface {
	Fetch(ctx context.Context, target string, limit int) ([]domain.SourceItem, error)
}

// Enricher provides an excerpt for items that come without one
type Enricher interface {
	Excerpt(ctx context.Context, url string) (string, error)
}

// Registry dispatches fetches to the fetcher registered for the task's source type
type Registry struct {
	fetchers        map[domain.SourceType]Fetcher
	enricher        Enricher
	enrichTimeout   time.Duration
	maxExcerptRunes int
}

// NewRegistry makes an empty registry, maxExcerptRunes limits excerpts of all sources
func NewRegistry(maxExcerptRunes int) *Registry {
	return &Registry{fetchers: map[domain.SourceType]Fetcher{}, maxExcerptRunes: maxExcerptRunes}
}

// Register adds or replaces the fetcher of a source type
func (r *Registry) Register(st domain.SourceType, f Fetcher) {
	r.fetchers[st] = f
}

// WithEnricher sets the excerpt enricher used for items with an empty excerpt
func (r *Registry) WithEnricher(e Enricher, timeout time.Duration) *Registry {
	r.enricher, r.enrichTimeout = e, timeout
	return r
}

// Types returns registered source types, sorted
func (r *Registry) Types() []domain.SourceType {
	res := make([]domain.SourceType, 0, len(r.fetchers))
	for st := range r.fetchers {
		res = append(res, st)
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res
}

// Supports reports whether a fetcher is registered for the source type
func (r *Registry) Supports(st domain.SourceType) bool {
	_, ok := r.fetchers[st]
	return ok
}

// Fetch runs the fetcher of the source type. Items without an id are skipped,
// the order of the remaining items is kept. Items are returned as the source provides them,
// excerpt enrichment is up to the caller, see Enrich.
func (r *Registry) Fetch(ctx context.Context, st domain.SourceType, target string, limit int) ([]domain.SourceItem, error) {
	f, ok := r.fetchers[st]
	if !ok {
		return nil, fmt.Errorf("fetch %s %q: %w", st, target, domain.ErrUnknownSource)
	}

	items, err := f.Fetch(ctx, target, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch %s %q: %w: %w", st, target, domain.ErrTransientFetch, err)
	}

	res := make([]domain.SourceItem, 0, len(items))
	for _, item := range items {
		if item.ID == "" {
			log.Printf("[DEBUG] skip %s item without id, %q", st, item.Title)
			continue
		}
		res = append(res, item)
	}
	if limit > 0 && len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

// Enrich fills the excerpt of an item that has none from its linked page. Items with an excerpt
// or without a url are returned unchanged, as is everything when no enricher is set.
func (r *Registry) Enrich(ctx context.Context, item domain.SourceItem) domain.SourceItem {
	if item.Excerpt != "" || item.URL == "" || r.enricher == nil {
		return item
	}
	item.Excerpt = r.excerpt(ctx, item.URL)
	return item
}

// excerpt returns the extracted excerpt of the page, empty on any failure
func (r *Registry) excerpt(ctx context.Context, url string) string {
	if r.enrichTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.enrichTimeout)
		defer cancel()
	}
	excerpt, err := r.enricher.Excerpt(ctx, url)
	if err != nil {
		log.Printf("[DEBUG] no excerpt for %s: %v", url, err)
		return ""
	}
	return domain.Shorten(excerpt, r.maxExcerptRunes)
}
