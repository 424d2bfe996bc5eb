package resolver

import "video_resolver/internal/model"

// Apply rewrites embeds in blocks using rc. The result has the same length
// and order as blocks; non-embed blocks are returned as-is and embeds are
// copied, so blocks itself is never mutated. Curated dates always win.
func Apply(blocks []model.Block, rc *model.ResolutionContext) []model.Block {
	if rc == nil {
		rc = model.EmptyContext()
	}
	out := make([]model.Block, len(blocks))
	for i, b := range blocks {
		e, ok := b.(*model.EmbedBlock)
		if !ok || e == nil {
			out[i] = b
			continue
		}
		out[i] = applyEmbed(*e, rc)
	}
	return out
}

// ApplyGroups applies rc to every group.
func ApplyGroups(groups [][]model.Block, rc *model.ResolutionContext) [][]model.Block {
	out := make([][]model.Block, len(groups))
	for i, g := range groups {
		if g == nil {
			continue
		}
		out[i] = Apply(g, rc)
	}
	return out
}

func applyEmbed(e model.EmbedBlock, rc *model.ResolutionContext) *model.EmbedBlock {
	if e.WantsLatest() {
		e.VideoID = ""
		if v := rc.LatestVideo; v != nil {
			e.VideoID = v.ID
			if !e.HasCuratedDate() {
				e.PublishedAt = v.PublishedAt
			}
		}
		return &e
	}
	if e.HasCuratedDate() {
		return &e
	}
	if d, ok := rc.PublishedAtByID[e.VideoID]; ok {
		e.PublishedAt = d.ISO()
	}
	return &e
}
