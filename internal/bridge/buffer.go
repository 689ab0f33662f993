// Package bridge connects the depth pipeline to the flight controller: a
// shared latest-sweep buffer written by the acquisition loop, periodic
// publication jobs that read it, and the auxiliary home-position task.
package bridge

import (
	"sync"

	"github.com/banshee-data/depthbridge/internal/depth"
)

// DistanceBuffer holds the most recently extracted distance array and its
// capture timestamp. The acquisition loop is the sole writer; publication
// jobs only read. Publish replaces the pair wholesale under the lock, so a
// snapshot can never mix sectors from two different sweeps.
type DistanceBuffer struct {
	mu     sync.RWMutex
	dist   depth.DistanceArray
	tsUsec uint64
	ready  bool
}

// Publish replaces the buffered pair. The array is copied by value; the
// caller may reuse its array immediately.
func (b *DistanceBuffer) Publish(dist depth.DistanceArray, tsUsec uint64) {
	b.mu.Lock()
	b.dist = dist
	b.tsUsec = tsUsec
	b.ready = true
	b.mu.Unlock()
}

// Snapshot returns a copy of the most recently published pair. ok is false
// until the first Publish; callers treat that as "no data yet", not as a
// zeroed sweep. Snapshot never blocks on the writer beyond the lock.
func (b *DistanceBuffer) Snapshot() (dist depth.DistanceArray, tsUsec uint64, ok bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dist, b.tsUsec, b.ready
}
