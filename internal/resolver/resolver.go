// Package resolver turns video references in content blocks into videos
// with trustworthy publish dates.
//
// All exported operations present a null-or-value interface: upstream
// failures are logged and degrade to a nil video or an unknown date.
package resolver

import (
	"context"
	"log/slog"
	"sync"

	"video_resolver/internal/fetcher"
	"video_resolver/internal/model"
)

// EntryParser turns a feed document into ordered entries.
type EntryParser interface {
	Parse(doc string) ([]model.FeedEntry, error)
}

// Resolver resolves videos of a single channel.
type Resolver struct {
	channelID string
	feeds     fetcher.FeedSource
	pages     fetcher.PageSource
	parser    EntryParser
	log       *slog.Logger
}

// New creates a Resolver. feeds should be cached; pages is hit directly.
func New(channelID string, feeds fetcher.FeedSource, pages fetcher.PageSource, parser EntryParser, log *slog.Logger) *Resolver {
	return &Resolver{
		channelID: channelID,
		feeds:     feeds,
		pages:     pages,
		parser:    parser,
		log:       log,
	}
}

// NewPass starts a resolution pass. A pass fetches and parses the feed at
// most once; it must not outlive the request that created it.
func (r *Resolver) NewPass() *Pass {
	return &Pass{r: r}
}

// Latest resolves the latest long-form video in a fresh pass.
func (r *Resolver) Latest(ctx context.Context) *model.ResolvedVideo {
	return r.NewPass().Latest(ctx)
}

// Video resolves a single video by id in a fresh pass.
func (r *Resolver) Video(ctx context.Context, videoID string) *model.ResolvedVideo {
	return r.NewPass().Video(ctx, videoID)
}

// Build resolves every embed in groups in a fresh pass.
func (r *Resolver) Build(ctx context.Context, groups [][]model.Block) *model.ResolutionContext {
	return r.NewPass().Build(ctx, groups)
}

// Pass is one resolution pass.
type Pass struct {
	r *Resolver

	once    sync.Once
	entries []model.FeedEntry
	err     error
}

// Entries returns the parsed feed, fetching it on first use only.
func (p *Pass) Entries(ctx context.Context) ([]model.FeedEntry, error) {
	p.once.Do(func() {
		doc, err := p.r.feeds.Feed(ctx, p.r.channelID)
		if err != nil {
			p.err = err
			return
		}
		p.entries, p.err = p.r.parser.Parse(doc)
	})
	return p.entries, p.err
}

func (p *Pass) entry(ctx context.Context, videoID string) (model.FeedEntry, bool) {
	entries, err := p.Entries(ctx)
	if err != nil {
		p.r.log.Debug("feed lookup", "video_id", videoID, "error", err)
		return model.FeedEntry{}, false
	}
	for _, e := range entries {
		if e.VideoID == videoID {
			return e, true
		}
	}
	return model.FeedEntry{}, false
}

// Video resolves a video by id. Ids found in the feed carry full metadata;
// others carry only the id, thumbnail and scraped date. Returns nil for an
// empty id.
func (p *Pass) Video(ctx context.Context, videoID string) *model.ResolvedVideo {
	if videoID == "" {
		return nil
	}
	if e, ok := p.entry(ctx, videoID); ok {
		v := p.video(ctx, e)
		return &v
	}
	return &model.ResolvedVideo{
		ID:           videoID,
		PublishedAt:  p.scrape(ctx, videoID).ISO(),
		ThumbnailURL: model.ThumbnailURL(videoID),
	}
}

func (p *Pass) video(ctx context.Context, e model.FeedEntry) model.ResolvedVideo {
	return model.ResolvedVideo{
		ID:           e.VideoID,
		Title:        e.Title,
		Description:  e.Description,
		PublishedAt:  p.DateForEntry(ctx, e).ISO(),
		ThumbnailURL: model.ThumbnailURL(e.VideoID),
		ChannelTitle: e.ChannelTitle,
	}
}
