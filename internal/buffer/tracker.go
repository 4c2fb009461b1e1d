package buffer

import (
	"fmt"
	"sync"
)

// TrackerStats reports allocation activity seen by a Tracker.
type TrackerStats struct {
	Allocations int
	Frees       int
	LiveBlocks  int
	LiveBytes   int
	PeakBytes   int
}

// Tracker wraps an Allocator and records every block that passes through it.
// It is the allocation-tracking harness used to detect leaked buffers.
type Tracker struct {
	next Allocator

	mu    sync.Mutex
	live  map[uintptr]int
	stats TrackerStats
}

// NewTracker returns a Tracker recording allocations made through next.
func NewTracker(next Allocator) *Tracker {
	return &Tracker{
		next: next,
		live: make(map[uintptr]int),
	}
}

// Mode implements Allocator.
func (t *Tracker) Mode() Mode {
	return t.next.Mode()
}

// Alloc implements Allocator.
func (t *Tracker) Alloc(nbytes int) (Block, error) {
	b, err := t.next.Alloc(nbytes)
	if err != nil {
		return Block{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.live[b.key()] = b.Len()
	t.stats.Allocations++
	t.stats.LiveBlocks++
	t.stats.LiveBytes += b.Len()
	t.stats.PeakBytes = max(t.stats.PeakBytes, t.stats.LiveBytes)
	return b, nil
}

// Free implements Allocator. Freeing a block the tracker never handed out, or
// freeing a block twice, returns ErrUnknownBlock without touching the wrapped
// allocator.
func (t *Tracker) Free(b Block) error {
	if b.IsZero() {
		return ErrEmpty
	}

	t.mu.Lock()
	size, ok := t.live[b.key()]
	if !ok {
		t.mu.Unlock()
		return ErrUnknownBlock
	}
	delete(t.live, b.key())
	t.stats.Frees++
	t.stats.LiveBlocks--
	t.stats.LiveBytes -= size
	t.mu.Unlock()

	return t.next.Free(b)
}

// Stats returns a snapshot of the recorded activity.
func (t *Tracker) Stats() TrackerStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

// Leaks returns an error describing outstanding blocks, or nil if every block
// allocated through the tracker has been freed.
func (t *Tracker) Leaks() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.live) == 0 {
		return nil
	}
	return fmt.Errorf("%d blocks (%d bytes) still allocated", t.stats.LiveBlocks, t.stats.LiveBytes)
}
