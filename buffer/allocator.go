// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package buffer

import (
	"github.com/born-ml/dynmem/internal/buffer"
)

// Allocator produces and releases raw blocks for one strategy.
type Allocator = buffer.Allocator

// Block is one raw allocation.
type Block = buffer.Block

// HeapAllocator allocates aligned Go heap memory.
type HeapAllocator = buffer.HeapAllocator

// MappedAllocator allocates page-locked memory with a device alias.
type MappedAllocator = buffer.MappedAllocator

// Pool reuses blocks between frames.
type Pool = buffer.Pool

// Tracker records allocations for leak detection.
type Tracker = buffer.Tracker

// AllocError is the panic value of a failed allocation.
type AllocError = buffer.AllocError

// Errors returned by buffer operations.
var (
	ErrSizeMismatch      = buffer.ErrSizeMismatch
	ErrEmpty             = buffer.ErrEmpty
	ErrInvalidSize       = buffer.ErrInvalidSize
	ErrMappedUnsupported = buffer.ErrMappedUnsupported
	ErrUnknownBlock      = buffer.ErrUnknownBlock
)

// NewHeapAllocator returns a heap allocator.
func NewHeapAllocator() *HeapAllocator {
	return buffer.NewHeapAllocator()
}

// NewMappedAllocator returns a mapped allocator. With strict set, a failure to
// page-lock memory fails the allocation.
func NewMappedAllocator(strict bool) *MappedAllocator {
	return buffer.NewMappedAllocator(strict)
}

// NewPool wraps next with block reuse, holding at most maxPerClass blocks per
// size class.
func NewPool(next Allocator, maxPerClass int) *Pool {
	return buffer.NewPool(next, maxPerClass)
}

// NewTracker wraps next with allocation tracking.
func NewTracker(next Allocator) *Tracker {
	return buffer.NewTracker(next)
}

// AllocatorFor returns the process-wide allocator for a mode.
func AllocatorFor(m Mode) Allocator {
	return buffer.AllocatorFor(m)
}
