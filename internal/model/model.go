// Package model defines the domain types used across the application.
package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/araddon/dateparse"
)

// ISOLayout is the canonical publish-date format handed to the front end.
const ISOLayout = "2006-01-02T15:04:05.000Z"

// LatestSentinel is the video id an embed uses to ask for the latest video.
const LatestSentinel = "latest"

// FeedEntry is a single video record parsed from the channel feed.
// Published and Updated hold the raw feed strings; they may be empty or
// unparseable.
type FeedEntry struct {
	VideoID      string
	Title        string
	Description  string
	ChannelTitle string
	Published    string
	Updated      string
	CanonicalURL string
}

// ResolvedVideo is a video ready for rendering.
// PublishedAt is an ISO instant or "" when unknown.
type ResolvedVideo struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	PublishedAt  string `json:"publishedAt"`
	ThumbnailURL string `json:"thumbnailUrl"`
	ChannelTitle string `json:"channelTitle"`
}

// ThumbnailURL derives the max-resolution thumbnail for a video id.
func ThumbnailURL(videoID string) string {
	return fmt.Sprintf("https://img.youtube.com/vi/%s/maxresdefault.jpg", videoID)
}

// Date is a resolved publish instant. The zero value means unknown.
type Date struct {
	t time.Time
}

// DateOf wraps t. A zero t yields an unknown Date.
func DateOf(t time.Time) Date {
	return Date{t: t.UTC()}
}

// ParseDate normalizes a candidate date string.
// Unparseable or empty input yields an unknown Date.
func ParseDate(s string) Date {
	if s == "" {
		return Date{}
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return Date{}
	}
	return DateOf(t)
}

// Known reports whether the date was resolved.
func (d Date) Known() bool {
	return !d.t.IsZero()
}

// Time returns the instant in UTC.
func (d Date) Time() time.Time {
	return d.t
}

// ISO returns the canonical string form, or "" when unknown.
func (d Date) ISO() string {
	if !d.Known() {
		return ""
	}
	return d.t.Format(ISOLayout)
}

// MarshalJSON encodes an unknown date as null.
func (d Date) MarshalJSON() ([]byte, error) {
	if !d.Known() {
		return []byte("null"), nil
	}
	return json.Marshal(d.ISO())
}

// ResolutionContext is the outcome of one resolution pass.
// It is built once per pass and must not be reused across passes.
type ResolutionContext struct {
	LatestVideo     *ResolvedVideo
	PublishedAtByID map[string]Date
}

// EmptyContext returns a context with no latest video and no dates.
func EmptyContext() *ResolutionContext {
	return &ResolutionContext{PublishedAtByID: map[string]Date{}}
}
