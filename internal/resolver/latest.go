package resolver

import (
	"context"

	"video_resolver/internal/filter"
	"video_resolver/internal/model"
)

// Latest returns the first long-form entry of the feed, or the first entry
// when every entry is short-form. It returns nil when the feed is empty or
// cannot be fetched or parsed.
func (p *Pass) Latest(ctx context.Context) *model.ResolvedVideo {
	entries, err := p.Entries(ctx)
	if err != nil {
		p.r.log.Warn("resolve latest video", "channel_id", p.r.channelID, "error", err)
		return nil
	}
	e, ok := PickLatest(entries)
	if !ok {
		return nil
	}
	v := p.video(ctx, e)
	return &v
}

// PickLatest selects the latest long-form entry in feed order.
// TODO: confirm with product whether an all-shorts feed should fall back
// to the first short or yield no latest video.
func PickLatest(entries []model.FeedEntry) (model.FeedEntry, bool) {
	if len(entries) == 0 {
		return model.FeedEntry{}, false
	}
	for _, e := range entries {
		if !filter.IsShortForm(e.Title, e.CanonicalURL) {
			return e, true
		}
	}
	return entries[0], true
}
