// Package feed parses the channel's Atom video feed into entries.
package feed

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"

	"video_resolver/internal/model"
)

// Parser extracts video entries from a feed document.
type Parser struct{}

// NewParser creates a feed Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse returns the entries of doc in feed order.
// Missing fields are left empty; an entry is never dropped for them.
func (p *Parser) Parse(doc string) ([]model.FeedEntry, error) {
	f, err := gofeed.NewParser().ParseString(doc)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	channel := feedChannelTitle(f)
	entries := make([]model.FeedEntry, 0, len(f.Items))
	for _, item := range f.Items {
		entries = append(entries, toEntry(item, channel))
	}
	return entries, nil
}

func toEntry(item *gofeed.Item, channel string) model.FeedEntry {
	e := model.FeedEntry{
		VideoID:      extValue(item.Extensions, "yt", "videoId"),
		Title:        strings.TrimSpace(item.Title),
		Description:  mediaDescription(item.Extensions),
		ChannelTitle: channel,
		Published:    strings.TrimSpace(item.Published),
		Updated:      strings.TrimSpace(item.Updated),
		CanonicalURL: item.Link,
	}
	if e.VideoID == "" {
		e.VideoID = VideoIDFromURL(item.Link)
	}
	if e.Description == "" {
		e.Description = strings.TrimSpace(item.Description)
	}
	if len(item.Authors) > 0 && item.Authors[0] != nil && item.Authors[0].Name != "" {
		e.ChannelTitle = item.Authors[0].Name
	}
	return e
}

func feedChannelTitle(f *gofeed.Feed) string {
	if len(f.Authors) > 0 && f.Authors[0] != nil && f.Authors[0].Name != "" {
		return f.Authors[0].Name
	}
	return f.Title
}

func mediaDescription(exts ext.Extensions) string {
	for _, group := range exts["media"]["group"] {
		for _, d := range group.Children["description"] {
			if v := strings.TrimSpace(d.Value); v != "" {
				return v
			}
		}
	}
	return ""
}

func extValue(exts ext.Extensions, prefix, name string) string {
	byName := exts[prefix]
	for _, key := range []string{name, strings.ToLower(name)} {
		for _, e := range byName[key] {
			if v := strings.TrimSpace(e.Value); v != "" {
				return v
			}
		}
	}
	return ""
}

// VideoIDFromURL extracts a video id from a watch or shorts URL.
func VideoIDFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if v := u.Query().Get("v"); v != "" {
		return v
	}
	if rest, ok := strings.CutPrefix(u.Path, "/shorts/"); ok {
		id, _, _ := strings.Cut(rest, "/")
		return id
	}
	return ""
}
