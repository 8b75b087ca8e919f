package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/umputun/newswatch/pkg/domain"
)

const (
	redditBaseURL      = "https://www.reddit.com"
	redditDefaultLimit = 25
	redditMaxLimit     = 100 // listing api maximum
)

// RedditConfig defines reddit fetcher parameters
type RedditConfig struct {
	BaseURL         string
	UserAgent       string
	Timeout         time.Duration
	RateLimit       time.Duration // minimal interval between API requests
	MaxExcerptRunes int
}

// RedditFetcher reads the newest posts of a subreddit from the public JSON API.
// The target is the subreddit name, with or without the "r/" prefix.
type RedditFetcher struct {
	cfg     RedditConfig
	client  *http.Client
	limiter *rate.Limiter
}

// NewRedditFetcher creates a reddit fetcher, all fetches share one rate limiter
func NewRedditFetcher(cfg RedditConfig) *RedditFetcher {
	if cfg.BaseURL == "" {
		cfg.BaseURL = redditBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "newswatch/1.0"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Every(cfg.RateLimit)
	}
	return &RedditFetcher{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Fetch returns the newest posts of the subreddit, newest first
func (f *RedditFetcher) Fetch(ctx context.Context, target string, limit int) ([]domain.SourceItem, error) {
	sub := strings.Trim(strings.TrimPrefix(strings.TrimSpace(target), "r/"), "/")
	if sub == "" || strings.ContainsAny(sub, "/?# ") {
		return nil, fmt.Errorf("invalid subreddit %q", target)
	}
	switch {
	case limit <= 0:
		limit = redditDefaultLimit
	case limit > redditMaxLimit:
		limit = redditMaxLimit
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("wait for rate limiter: %w", err)
	}

	u := fmt.Sprintf("%s/r/%s/new.json?limit=%d&raw_json=1", f.cfg.BaseURL, url.PathEscape(sub), limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get r/%s listing: %w", sub, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("r/%s listing rate limited, retry after %q", sub, resp.Header.Get("Retry-After"))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d for r/%s", resp.StatusCode, sub)
	}

	var listing listingResponse
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("decode r/%s listing: %w", sub, err)
	}

	items := make([]domain.SourceItem, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		if child.Kind != "" && child.Kind != "t3" {
			continue
		}
		items = append(items, f.toItem(child.Data))
	}
	return items, nil
}

func (f *RedditFetcher) toItem(p postData) domain.SourceItem {
	permalink := p.Permalink
	if strings.HasPrefix(permalink, "/") {
		permalink = f.cfg.BaseURL + permalink
	}
	link := p.URL
	if link == "" {
		link = permalink
	}

	meta := map[string]string{
		domain.MetaScore:     strconv.Itoa(p.Score),
		domain.MetaPermalink: permalink,
		domain.MetaSubreddit: p.Subreddit,
	}
	if p.Author != "" {
		meta[domain.MetaAuthor] = p.Author
	}
	if p.CreatedUTC > 0 {
		meta[domain.MetaPublished] = time.Unix(int64(p.CreatedUTC), 0).UTC().Format(time.RFC3339)
	}

	return domain.SourceItem{
		ID:       p.ID,
		Title:    strings.TrimSpace(p.Title),
		URL:      link,
		Excerpt:  cleanExcerpt(p.SelfText, f.cfg.MaxExcerptRunes),
		Metadata: meta,
	}
}

// listingResponse is the reddit JSON listing envelope
type listingResponse struct {
	Kind string `json:"kind"`
	Data struct {
		After    string `json:"after"`
		Children []struct {
			Kind string   `json:"kind"`
			Data postData `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type postData struct {
	ID         string  `json:"id"`
	Subreddit  string  `json:"subreddit"`
	Title      string  `json:"title"`
	Author     string  `json:"author"`
	SelfText   string  `json:"selftext"`
	URL        string  `json:"url"`
	Permalink  string  `json:"permalink"`
	Score      int     `json:"score"`
	CreatedUTC float64 `json:"created_utc"`
}
