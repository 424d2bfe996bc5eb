package resolver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"video_resolver/internal/feed"
	"video_resolver/internal/model"
)

type fakeFeeds struct {
	mu    sync.Mutex
	doc   string
	err   error
	calls int
}

func (f *fakeFeeds) Feed(_ context.Context, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.doc, f.err
}

func (f *fakeFeeds) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakePages struct {
	mu    sync.Mutex
	pages map[string]string
	err   error
	calls map[string]int
}

func (f *fakePages) WatchPage(_ context.Context, videoID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[videoID]++
	if f.err != nil {
		return "", f.err
	}
	html, ok := f.pages[videoID]
	if !ok {
		return "", errors.New("scrape failed: status 404")
	}
	return html, nil
}

func (f *fakePages) Calls(videoID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[videoID]
}

func (f *fakePages) Total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func loadFixture(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path) //nolint:gosec // test-only fixture loading
	if err != nil {
		t.Fatalf("read fixture %s: %v", path, err)
	}
	return string(data)
}

func newTestResolver(feeds *fakeFeeds, pages *fakePages) *Resolver {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New("UCtravel123", feeds, pages, feed.NewParser(), log)
}

func TestPassFetchesFeedOnce(t *testing.T) {
	feeds := &fakeFeeds{doc: loadFixture(t, "../../testdata/feed.xml")}
	r := newTestResolver(feeds, &fakePages{})
	pass := r.NewPass()
	ctx := context.Background()

	_ = pass.Latest(ctx)
	_ = pass.DateForID(ctx, "long0000001")
	_ = pass.Video(ctx, "shrt0000002")

	if diff := cmp.Diff(1, feeds.Calls()); diff != "" {
		t.Errorf("feed calls mismatch (-want +got):\n%s", diff)
	}

	_ = r.NewPass().Latest(ctx)
	if diff := cmp.Diff(2, feeds.Calls()); diff != "" {
		t.Errorf("a new pass must not reuse the previous pass (-want +got):\n%s", diff)
	}
}

func TestVideo(t *testing.T) {
	doc := loadFixture(t, "../../testdata/feed.xml")
	html := loadFixture(t, "../../testdata/watch.html")

	tests := []struct {
		name  string
		feeds *fakeFeeds
		pages *fakePages
		id    string
		want  *model.ResolvedVideo
	}{
		{
			name:  "id in feed carries metadata",
			feeds: &fakeFeeds{doc: doc},
			pages: &fakePages{},
			id:    "long0000001",
			want: &model.ResolvedVideo{
				ID:           "long0000001",
				Title:        "Two Weeks in Iceland: Full Itinerary",
				Description:  "Everything we packed, drove and ate.",
				PublishedAt:  "2024-03-01T18:00:00.000Z",
				ThumbnailURL: "https://img.youtube.com/vi/long0000001/maxresdefault.jpg",
				ChannelTitle: "Wander Often",
			},
		},
		{
			name:  "id outside feed is scraped",
			feeds: &fakeFeeds{doc: doc},
			pages: &fakePages{pages: map[string]string{"old00000001": html}},
			id:    "old00000001",
			want: &model.ResolvedVideo{
				ID:           "old00000001",
				PublishedAt:  "2024-02-20T19:00:00.000Z",
				ThumbnailURL: "https://img.youtube.com/vi/old00000001/maxresdefault.jpg",
			},
		},
		{
			name:  "feed down and scrape down still yields the id",
			feeds: &fakeFeeds{err: errors.New("feed unavailable")},
			pages: &fakePages{err: errors.New("dial tcp: timeout")},
			id:    "old00000001",
			want: &model.ResolvedVideo{
				ID:           "old00000001",
				ThumbnailURL: "https://img.youtube.com/vi/old00000001/maxresdefault.jpg",
			},
		},
		{
			name:  "empty id",
			feeds: &fakeFeeds{doc: doc},
			pages: &fakePages{},
			id:    "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newTestResolver(tt.feeds, tt.pages).Video(context.Background(), tt.id)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Video() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
