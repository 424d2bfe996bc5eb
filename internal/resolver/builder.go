package resolver

import (
	"context"
	"sync"

	"video_resolver/internal/model"
)

// Build collects every embed across groups and resolves what they need in
// one concurrent fan-out: the latest video at most once, and each distinct
// undated video id exactly once. Groups without embeds cost no I/O.
func (p *Pass) Build(ctx context.Context, groups [][]model.Block) *model.ResolutionContext {
	rc := model.EmptyContext()

	wantLatest, ids := collect(groups)
	if !wantLatest && len(ids) == 0 {
		return rc
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	if wantLatest {
		wg.Go(func() {
			v := p.Latest(ctx)
			mu.Lock()
			rc.LatestVideo = v
			mu.Unlock()
		})
	}
	for _, id := range ids {
		wg.Go(func() {
			d := p.DateForID(ctx, id)
			mu.Lock()
			rc.PublishedAtByID[id] = d
			mu.Unlock()
		})
	}
	wg.Wait()

	p.r.log.Debug("resolution pass built",
		"latest", wantLatest, "ids", len(ids), "latest_found", rc.LatestVideo != nil)
	return rc
}

// collect reports whether any embed wants the latest video and returns the
// distinct concrete ids that still need a date, in first-seen order.
func collect(groups [][]model.Block) (bool, []string) {
	wantLatest := false
	seen := make(map[string]struct{})
	var ids []string

	for _, group := range groups {
		for _, b := range group {
			e, ok := b.(*model.EmbedBlock)
			if !ok || e == nil {
				continue
			}
			if e.WantsLatest() {
				wantLatest = true
				continue
			}
			if e.VideoID == "" || e.HasCuratedDate() {
				continue
			}
			if _, dup := seen[e.VideoID]; dup {
				continue
			}
			seen[e.VideoID] = struct{}{}
			ids = append(ids, e.VideoID)
		}
	}
	return wantLatest, ids
}
