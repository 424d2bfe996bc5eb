package resolver

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"video_resolver/internal/model"
)

func TestApply(t *testing.T) {
	march := model.DateOf(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	latest := &model.ResolvedVideo{ID: "long0000001", PublishedAt: "2024-03-01T18:00:00.000Z"}

	tests := []struct {
		name   string
		blocks []model.Block
		rc     *model.ResolutionContext
		want   []model.Block
	}{
		{
			name:   "concrete id gets discovered date",
			blocks: []model.Block{&model.EmbedBlock{Key: "k1", VideoID: "v1", Title: "Iceland"}},
			rc:     &model.ResolutionContext{PublishedAtByID: map[string]model.Date{"v1": march}},
			want:   []model.Block{&model.EmbedBlock{Key: "k1", VideoID: "v1", Title: "Iceland", PublishedAt: "2024-03-01T00:00:00.000Z"}},
		},
		{
			name:   "curated date is never overwritten",
			blocks: []model.Block{&model.EmbedBlock{VideoID: "v1", PublishedAt: "2019-01-01"}},
			rc:     &model.ResolutionContext{PublishedAtByID: map[string]model.Date{"v1": march}},
			want:   []model.Block{&model.EmbedBlock{VideoID: "v1", PublishedAt: "2019-01-01"}},
		},
		{
			name:   "unknown date stays empty",
			blocks: []model.Block{&model.EmbedBlock{VideoID: "v2"}},
			rc:     &model.ResolutionContext{PublishedAtByID: map[string]model.Date{"v2": {}}},
			want:   []model.Block{&model.EmbedBlock{VideoID: "v2"}},
		},
		{
			name:   "latest flag gets latest id and date",
			blocks: []model.Block{&model.EmbedBlock{UseLatest: true}},
			rc:     &model.ResolutionContext{LatestVideo: latest},
			want:   []model.Block{&model.EmbedBlock{UseLatest: true, VideoID: "long0000001", PublishedAt: "2024-03-01T18:00:00.000Z"}},
		},
		{
			name:   "latest sentinel gets latest id",
			blocks: []model.Block{&model.EmbedBlock{VideoID: model.LatestSentinel}},
			rc:     &model.ResolutionContext{LatestVideo: latest},
			want:   []model.Block{&model.EmbedBlock{VideoID: "long0000001", PublishedAt: "2024-03-01T18:00:00.000Z"}},
		},
		{
			name:   "latest keeps curated date",
			blocks: []model.Block{&model.EmbedBlock{UseLatest: true, PublishedAt: "2020-02-02"}},
			rc:     &model.ResolutionContext{LatestVideo: latest},
			want:   []model.Block{&model.EmbedBlock{UseLatest: true, VideoID: "long0000001", PublishedAt: "2020-02-02"}},
		},
		{
			name:   "no latest video leaves id unset",
			blocks: []model.Block{&model.EmbedBlock{VideoID: model.LatestSentinel}},
			rc:     model.EmptyContext(),
			want:   []model.Block{&model.EmbedBlock{}},
		},
		{
			name:   "nil context",
			blocks: []model.Block{&model.EmbedBlock{VideoID: "v1"}},
			rc:     nil,
			want:   []model.Block{&model.EmbedBlock{VideoID: "v1"}},
		},
		{
			name:   "empty input",
			blocks: []model.Block{},
			rc:     model.EmptyContext(),
			want:   []model.Block{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(tt.blocks, tt.rc)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Apply() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApplyPreservesOrderAndIdentity(t *testing.T) {
	text := &model.TextBlock{Key: "t1", Text: "We landed in Reykjavik at dawn."}
	img := &model.ImageBlock{Key: "i1", URL: "https://cdn.example.com/harpa.jpg"}
	raw := &model.RawBlock{Type: "mapPin", Raw: []byte(`{"_type":"mapPin","lat":64.1}`)}
	e1 := &model.EmbedBlock{Key: "e1", VideoID: "v1"}
	e2 := &model.EmbedBlock{Key: "e2", UseLatest: true}
	blocks := []model.Block{text, e1, img, e2, raw}

	rc := &model.ResolutionContext{
		LatestVideo:     &model.ResolvedVideo{ID: "long0000001"},
		PublishedAtByID: map[string]model.Date{"v1": model.DateOf(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))},
	}
	got := Apply(blocks, rc)

	if diff := cmp.Diff(len(blocks), len(got)); diff != "" {
		t.Fatalf("length mismatch (-want +got):\n%s", diff)
	}
	if got[0] != model.Block(text) || got[2] != model.Block(img) || got[4] != model.Block(raw) {
		t.Error("non-embed blocks must pass through as the same value")
	}
	if diff := cmp.Diff("e1", got[1].(*model.EmbedBlock).Key); diff != "" {
		t.Errorf("order mismatch at 1 (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff("e2", got[3].(*model.EmbedBlock).Key); diff != "" {
		t.Errorf("order mismatch at 3 (-want +got):\n%s", diff)
	}
	if e1.PublishedAt != "" || e2.VideoID != "" {
		t.Error("input embeds must not be mutated")
	}
}

func TestApplyGroups(t *testing.T) {
	rc := &model.ResolutionContext{LatestVideo: &model.ResolvedVideo{ID: "L"}}
	groups := [][]model.Block{
		{&model.EmbedBlock{UseLatest: true}},
		nil,
		{&model.TextBlock{Text: "hi"}},
	}

	got := ApplyGroups(groups, rc)

	want := [][]model.Block{
		{&model.EmbedBlock{UseLatest: true, VideoID: "L"}},
		nil,
		{&model.TextBlock{Text: "hi"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ApplyGroups() mismatch (-want +got):\n%s", diff)
	}
}
