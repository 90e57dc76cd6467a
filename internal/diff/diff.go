// Package diff decides which fetched posts are new relative to the stored
// watermark.
package diff

import "postrelay/internal/model"

// ComputeNew returns the subset of fetched posts that are newer than the
// watermark, reordered oldest-first for delivery. fetched must be newest
// first, as the source returns it. watermark is the id of the last delivered
// post; empty means no watermark exists yet.
//
// When the watermark id does not appear in fetched (window advanced past it,
// or the post was deleted) every fetched post is treated as new. That can
// re-deliver posts fetched-but-undelivered in an earlier run; the
// alternative would silently drop posts, which is worse.
func ComputeNew(fetched []model.Post, watermark string) []model.Post {
	if len(fetched) == 0 {
		return nil
	}
	cut := len(fetched)
	if watermark != "" {
		for i, p := range fetched {
			if p.ID == watermark {
				cut = i
				break
			}
		}
	}
	if cut == 0 {
		return nil
	}
	// Reverse the newer-than-watermark prefix into delivery order.
	out := make([]model.Post, cut)
	for i := 0; i < cut; i++ {
		out[i] = fetched[cut-1-i]
	}
	return out
}
