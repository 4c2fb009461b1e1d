package buffer

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeapAllocatorAlignment(t *testing.T) {
	a := NewHeapAllocator()
	for _, n := range []int{1, 3, 63, 64, 65, 1000} {
		b, err := a.Alloc(n)
		require.NoError(t, err)
		assert.Equal(t, n, b.Len())
		assert.Zero(t, b.key()%alignment)
		assert.Equal(t, Heap, b.Mode())
		assert.False(t, b.Locked())
		require.NoError(t, a.Free(b))
	}
	_, err := a.Alloc(0)
	assert.ErrorIs(t, err, ErrInvalidSize)
	assert.ErrorIs(t, a.Free(Block{}), ErrEmpty)
}

func TestMappedAllocatorPageRounding(t *testing.T) {
	a := NewMappedAllocator(false)
	b, err := a.Alloc(10)
	require.NoError(t, err)
	defer func() { require.NoError(t, a.Free(b)) }()

	assert.Equal(t, 10, b.Len())
	assert.Equal(t, os.Getpagesize(), b.Cap())
	assert.Equal(t, DevicePtr(b.key()), b.Device())
	assert.Equal(t, Mapped, b.Mode())
	for _, v := range b.Bytes() {
		assert.Zero(t, v)
	}
}

func TestMappedFreeUnmapsWhenUnlockFails(t *testing.T) {
	a := NewMappedAllocator(false)
	b, err := a.Alloc(100)
	require.NoError(t, err)
	b.locked = true

	cause := errors.New("munlock failed")
	origUnlock, origUnmap := unlockPages, unmapPages
	defer func() { unlockPages, unmapPages = origUnlock, origUnmap }()

	unmapped := 0
	unlockPages = func([]byte) error { return cause }
	unmapPages = func(p []byte) error {
		unmapped++
		return origUnmap(p)
	}

	assert.ErrorIs(t, a.Free(b), cause)
	assert.Equal(t, 1, unmapped, "mapping must be released even when unlocking fails")
}

func TestTrackerUnknownBlock(t *testing.T) {
	heap := NewHeapAllocator()
	tr := NewTracker(heap)

	foreign, err := heap.Alloc(8)
	require.NoError(t, err)
	assert.ErrorIs(t, tr.Free(foreign), ErrUnknownBlock)

	b, err := tr.Alloc(8)
	require.NoError(t, err)
	assert.Error(t, tr.Leaks())
	require.NoError(t, tr.Free(b))
	assert.ErrorIs(t, tr.Free(b), ErrUnknownBlock, "double free must be detected")

	s := tr.Stats()
	assert.Equal(t, 1, s.Allocations)
	assert.Equal(t, 1, s.Frees)
	assert.Equal(t, 0, s.LiveBlocks)
	assert.Equal(t, 8, s.PeakBytes)
	assert.NoError(t, tr.Leaks())
}

func TestPoolReuse(t *testing.T) {
	tr := NewTracker(NewHeapAllocator())
	p := NewPool(tr, 2)

	b1 := New[float32](256, WithAllocator(p))
	b1.Host()[0] = 7
	ptr := b1.HostPtr()
	require.NoError(t, b1.Release())

	b2 := New[float32](200, WithAllocator(p))
	assert.Equal(t, ptr, b2.HostPtr(), "released block should be reused")
	assert.Zero(t, b2.At(0), "reused storage must be zeroed")
	assert.Equal(t, 800, b2.ByteSize())
	require.NoError(t, b2.Release())

	s := p.Stats()
	assert.Equal(t, uint64(1), s.Allocated)
	assert.Equal(t, uint64(1), s.Hits)
	assert.Equal(t, uint64(1), s.Misses)
	assert.Equal(t, uint64(2), s.Released)
	assert.Equal(t, 1, s.Pooled)

	require.NoError(t, p.Clear())
	assert.Equal(t, 0, p.Stats().Pooled)
	require.NoError(t, tr.Leaks())
}

func TestPoolBounded(t *testing.T) {
	tr := NewTracker(NewHeapAllocator())
	p := NewPool(tr, 1)

	a := New[float32](10, WithAllocator(p))
	b := New[float32](10, WithAllocator(p))
	require.NoError(t, a.Release())
	require.NoError(t, b.Release())

	assert.Equal(t, 1, p.Stats().Pooled)
	assert.Equal(t, 1, tr.Stats().LiveBlocks, "overflow block goes back to the wrapped allocator")
	require.NoError(t, p.Clear())
	require.NoError(t, tr.Leaks())
}

func TestPoolMappedSmallRequestHitsPageBlock(t *testing.T) {
	p := NewPool(NewMappedAllocator(false), 0)
	defer func() { require.NoError(t, p.Clear()) }()

	b := New[float32](16, WithAllocator(p))
	assert.Equal(t, Mapped, p.Mode())
	require.NoError(t, b.Release())

	b = New[float32](8, WithAllocator(p))
	assert.True(t, b.HasDevice())
	require.NoError(t, b.Release())
	assert.Equal(t, uint64(1), p.Stats().Hits)
}

func TestCategorize(t *testing.T) {
	assert.Equal(t, SmallBlock, categorize(100))
	assert.Equal(t, MediumBlock, categorize(4096))
	assert.Equal(t, LargeBlock, categorize(2*1024*1024))
}
