package source

import (
	"context"
	"crypto/md5" //nolint:gosec // item id fingerprint, not security
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/umputun/newswatch/pkg/domain"
)

// RSSFetcher reads RSS and Atom feeds, the target is the feed URL
type RSSFetcher struct {
	client          *http.Client
	userAgent       string
	maxExcerptRunes int
}

// NewRSSFetcher creates a new feed fetcher
func NewRSSFetcher(timeout time.Duration, userAgent string, maxExcerptRunes int) *RSSFetcher {
	return &RSSFetcher{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		userAgent:       userAgent,
		maxExcerptRunes: maxExcerptRunes,
	}
}

// Fetch returns feed entries in feed order, at most limit of them
func (f *RSSFetcher) Fetch(ctx context.Context, target string, limit int) ([]domain.SourceItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	addFeedHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	items := make([]domain.SourceItem, 0, len(feed.Items))
	for _, entry := range feed.Items {
		if limit > 0 && len(items) >= limit {
			break
		}
		items = append(items, f.toItem(entry))
	}
	return items, nil
}

func (f *RSSFetcher) toItem(entry *gofeed.Item) domain.SourceItem {
	item := domain.SourceItem{
		ID:       entryID(entry),
		Title:    strings.TrimSpace(entry.Title),
		URL:      entry.Link,
		Metadata: map[string]string{},
	}

	excerpt := entry.Description
	if excerpt == "" {
		excerpt = entry.Content
	}
	item.Excerpt = cleanExcerpt(excerpt, f.maxExcerptRunes)

	if entry.Author != nil && entry.Author.Name != "" {
		item.Metadata[domain.MetaAuthor] = entry.Author.Name
	}
	switch {
	case entry.PublishedParsed != nil:
		item.Metadata[domain.MetaPublished] = entry.PublishedParsed.UTC().Format(time.RFC3339)
	case entry.UpdatedParsed != nil:
		item.Metadata[domain.MetaPublished] = entry.UpdatedParsed.UTC().Format(time.RFC3339)
	case entry.Published != "":
		item.Metadata[domain.MetaPublished] = entry.Published
	}
	return item
}

// entryID returns a stable id of the entry: guid, then link, then a hash of the title
func entryID(entry *gofeed.Item) string {
	if id := strings.TrimSpace(entry.GUID); id != "" {
		return id
	}
	if link := strings.TrimSpace(entry.Link); link != "" {
		return link
	}
	if entry.Title == "" {
		return ""
	}
	sum := md5.Sum([]byte(entry.Title)) //nolint:gosec // not used for security
	return hex.EncodeToString(sum[:])
}
