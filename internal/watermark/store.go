// Package watermark persists the id of the most recently delivered post.
//
// The store is deliberately failure-tolerant: the orchestrator treats a read
// failure as "no watermark" (the whole fetch window is then scanned as new)
// and a write failure is logged without failing the run. Duplicate delivery
// after storage loss is the accepted cost of that availability trade-off.
package watermark

import "context"

// Store is a single-value cursor keyed by the tracked account.
// Single-writer-at-a-time semantics are assumed; last writer wins.
type Store interface {
	// Read returns the stored post id. ok is false when no watermark has
	// been written yet.
	Read(ctx context.Context) (id string, ok bool, err error)
	// Write overwrites the stored post id.
	Write(ctx context.Context, id string) error
}
