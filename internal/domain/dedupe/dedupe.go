// Package dedupe tracks keys that were already handed out or processed:
// chart file names within a run and resolved paths in the optimiser.
package dedupe

import (
	"context"
	"sync"
)

// Deduper records seen keys.
type Deduper interface {
	// SeenAndRecord reports whether key was already recorded and records it
	// if not. The check and the insert happen under one lock.
	SeenAndRecord(ctx context.Context, key string) bool
}

// keySet implements Deduper with a map. It lives for one run and is never
// pruned.
type keySet struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewInMemoryDeduper creates an empty in-memory Deduper.
func NewInMemoryDeduper() Deduper {
	return &keySet{seen: make(map[string]struct{})}
}

func (d *keySet) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true
	}
	d.seen[key] = struct{}{}
	return false
}
