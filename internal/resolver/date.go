package resolver

import (
	"context"
	"regexp"

	"video_resolver/internal/model"
)

// Embedded watch-page fields, most specific first.
var watchDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`"publishDate"\s*:\s*"([^"]+)"`),
	regexp.MustCompile(`"uploadDate"\s*:\s*"([^"]+)"`),
}

// DateForEntry resolves the publish date of a feed entry: the published
// timestamp, then the updated timestamp, then the watch page. The watch
// page is only fetched when neither timestamp parses.
func (p *Pass) DateForEntry(ctx context.Context, e model.FeedEntry) model.Date {
	if d := model.ParseDate(e.Published); d.Known() {
		return d
	}
	if d := model.ParseDate(e.Updated); d.Known() {
		return d
	}
	return p.scrape(ctx, e.VideoID)
}

// DateForID resolves the publish date of a video id, preferring the feed
// entry when the id is still in the feed.
func (p *Pass) DateForID(ctx context.Context, videoID string) model.Date {
	if e, ok := p.entry(ctx, videoID); ok {
		return p.DateForEntry(ctx, e)
	}
	return p.scrape(ctx, videoID)
}

func (p *Pass) scrape(ctx context.Context, videoID string) model.Date {
	if videoID == "" {
		return model.Date{}
	}
	html, err := p.r.pages.WatchPage(ctx, videoID)
	if err != nil {
		p.r.log.Debug("scrape publish date", "video_id", videoID, "error", err)
		return model.Date{}
	}
	d := ExtractPublishDate(html)
	if !d.Known() {
		p.r.log.Debug("no publish date on watch page", "video_id", videoID)
	}
	return d
}

// ExtractPublishDate finds the embedded publish date in watch-page HTML.
func ExtractPublishDate(html string) model.Date {
	for _, re := range watchDatePatterns {
		m := re.FindStringSubmatch(html)
		if m == nil {
			continue
		}
		if d := model.ParseDate(m[1]); d.Known() {
			return d
		}
	}
	return model.Date{}
}
