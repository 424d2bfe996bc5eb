// Package fetcher downloads the channel feed and per-video watch pages.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"video_resolver/internal/cache"
)

// Upstream endpoints.
const (
	FeedURL  = "https://www.youtube.com/feeds/videos.xml?channel_id=%s"
	WatchURL = "https://www.youtube.com/watch?v=%s"
)

const (
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	acceptLanguage = "en-US,en;q=0.9"
	maxBodyBytes   = 5 * 1024 * 1024
)

var (
	// ErrFeedUnavailable is returned when the channel feed cannot be fetched.
	ErrFeedUnavailable = errors.New("feed unavailable")
	// ErrScrapeFailed is returned when a watch page cannot be fetched.
	ErrScrapeFailed = errors.New("scrape failed")
)

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// FeedSource returns the raw feed document of a channel.
type FeedSource interface {
	Feed(ctx context.Context, channelID string) (string, error)
}

// PageSource returns the raw watch-page HTML of a video.
type PageSource interface {
	WatchPage(ctx context.Context, videoID string) (string, error)
}

// Fetcher downloads feed documents and watch pages. It does not retry.
type Fetcher struct {
	client  HTTPClient
	timeout time.Duration
	limiter *rate.Limiter
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithRateLimit caps outgoing requests to r per second with the given burst.
func WithRateLimit(r float64, burst int) Option {
	return func(f *Fetcher) {
		f.limiter = rate.NewLimiter(rate.Limit(r), burst)
	}
}

// New creates a Fetcher with the given HTTP client and per-request timeout.
// A non-positive timeout disables the per-request deadline.
func New(client HTTPClient, timeout time.Duration, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:  client,
		timeout: timeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Feed downloads the channel's video feed.
func (f *Fetcher) Feed(ctx context.Context, channelID string) (string, error) {
	body, err := f.get(ctx, fmt.Sprintf(FeedURL, url.QueryEscape(channelID)))
	if err != nil {
		return "", fmt.Errorf("%w: channel %s: %w", ErrFeedUnavailable, channelID, err)
	}
	return body, nil
}

// WatchPage downloads the public watch page of a video.
func (f *Fetcher) WatchPage(ctx context.Context, videoID string) (string, error) {
	body, err := f.get(ctx, fmt.Sprintf(WatchURL, url.QueryEscape(videoID)))
	if err != nil {
		return "", fmt.Errorf("%w: video %s: %w", ErrScrapeFailed, videoID, err)
	}
	return body, nil
}

func (f *Fetcher) get(ctx context.Context, target string) (string, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", acceptLanguage)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("http get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(body), nil
}

// CachedFeed memoizes a FeedSource per channel in a TTL cache.
type CachedFeed struct {
	src   FeedSource
	cache *cache.TTL
}

// NewCachedFeed wraps src with c.
func NewCachedFeed(src FeedSource, c *cache.TTL) *CachedFeed {
	return &CachedFeed{src: src, cache: c}
}

// Feed returns the cached document, fetching it on a miss.
func (c *CachedFeed) Feed(ctx context.Context, channelID string) (string, error) {
	return c.cache.GetOrLoad(ctx, "feed:"+channelID, func(ctx context.Context) (string, error) {
		return c.src.Feed(ctx, channelID)
	})
}
