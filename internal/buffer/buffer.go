package buffer

import (
	"fmt"
	"math"
	"unsafe"
)

// Element is a constraint for supported buffer element types.
type Element interface {
	~float32 | ~float64 | ~int32 | ~int64 | ~uint8
}

// Option configures how a buffer obtains its storage.
type Option func(*options)

type options struct {
	alloc Allocator
}

// WithMode selects the process-wide allocator for mode m.
func WithMode(m Mode) Option {
	return func(o *options) {
		o.alloc = AllocatorFor(m)
	}
}

// WithAllocator makes the buffer obtain and release its storage through a.
func WithAllocator(a Allocator) Option {
	return func(o *options) {
		o.alloc = a
	}
}

func resolve(opts []Option) Allocator {
	o := options{alloc: AllocatorFor(DefaultMode)}
	for _, opt := range opts {
		opt(&o)
	}
	return o.alloc
}

// Buffer exclusively owns a contiguous run of count elements of type T.
//
// The host slice is always available while the buffer owns storage. In mapped
// mode the buffer also exposes a device pointer aliasing the same pages.
// A Buffer is not safe for concurrent mutation.
type Buffer[T Element] struct {
	alloc Allocator
	block Block
	host  []T
	count int
}

// New allocates a buffer of count elements.
// Allocation failure is unrecoverable: New panics with an *AllocError.
func New[T Element](count int, opts ...Option) *Buffer[T] {
	alloc := resolve(opts)

	var zero T
	size := int(unsafe.Sizeof(zero))
	if count > math.MaxInt/size {
		panic(&AllocError{Mode: alloc.Mode(), Err: fmt.Errorf("%w: %d elements of %d bytes", ErrTooLarge, count, size)})
	}
	nbytes := count * size
	if count <= 0 {
		nbytes = 0
	}

	block, err := alloc.Alloc(nbytes)
	if err != nil {
		panic(&AllocError{Mode: alloc.Mode(), Bytes: nbytes, Err: err})
	}

	//nolint:gosec // unsafe.Slice for zero-copy typed access, block holds count*sizeof(T) bytes
	host := unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(block.host))), count)

	b := &Buffer[T]{
		alloc: alloc,
		block: block,
		host:  host,
		count: count,
	}
	log.WithField("mode", alloc.Mode()).WithField("bytes", nbytes).Debug("buffer allocated")
	return b
}

// Len returns the element count of the owned storage, or 0 once the buffer
// has been released or moved from.
func (b *Buffer[T]) Len() int {
	return b.count
}

// ByteSize returns the size of the owned storage in bytes.
func (b *Buffer[T]) ByteSize() int {
	return b.block.Len()
}

// Mode returns the allocation mode of the owned storage.
func (b *Buffer[T]) Mode() Mode {
	return b.block.mode
}

// Empty reports whether the buffer owns no storage (released or moved from).
func (b *Buffer[T]) Empty() bool {
	return b.block.IsZero()
}

// Host returns the host-visible elements, or nil if the buffer is empty.
func (b *Buffer[T]) Host() []T {
	return b.host
}

// HostPtr returns the address of the first element, or nil if the buffer is empty.
func (b *Buffer[T]) HostPtr() unsafe.Pointer {
	return unsafe.Pointer(unsafe.SliceData(b.host)) //nolint:gosec // raw pointer for FFT/kernel interop
}

// Bytes returns the owned storage as raw bytes.
// WARNING: Direct access to underlying memory. Use with caution.
func (b *Buffer[T]) Bytes() []byte {
	return b.block.host
}

// DevicePtr returns the coprocessor-visible alias of the host storage.
// It is zero unless the buffer was allocated in mapped mode.
func (b *Buffer[T]) DevicePtr() DevicePtr {
	return b.block.device
}

// HasDevice reports whether the buffer carries a device alias.
func (b *Buffer[T]) HasDevice() bool {
	return b.block.device != 0
}

// At returns element i.
func (b *Buffer[T]) At(i int) T {
	return b.host[i]
}

// Take transfers ownership of the storage to a new Buffer.
// The receiver is left empty; releasing it afterwards is a no-op.
func (b *Buffer[T]) Take() *Buffer[T] {
	moved := &Buffer[T]{
		alloc: b.alloc,
		block: b.block,
		host:  b.host,
		count: b.count,
	}
	b.reset()
	return moved
}

// MoveFrom releases the receiver's current storage and adopts src's storage.
// src is left empty. Moving a buffer into itself does nothing.
func (b *Buffer[T]) MoveFrom(src *Buffer[T]) error {
	if b == src {
		return nil
	}
	if err := b.Release(); err != nil {
		return err
	}
	b.alloc, b.block, b.host, b.count = src.alloc, src.block, src.host, src.count
	src.reset()
	return nil
}

// CopyFrom overwrites the receiver's elements with src's elements.
// Both buffers must own storage of the same element count. The buffers remain
// independently owned.
func (b *Buffer[T]) CopyFrom(src *Buffer[T]) error {
	if b == src {
		return nil
	}
	if b.Empty() || src.Empty() {
		return ErrEmpty
	}
	if b.count != src.count {
		return fmt.Errorf("%w: destination %d, source %d", ErrSizeMismatch, b.count, src.count)
	}
	copy(b.host, src.host)
	return nil
}

// Release returns the storage to the allocator it came from.
// Releasing an empty buffer is a no-op, so Release is safe to call repeatedly.
func (b *Buffer[T]) Release() error {
	if b.Empty() {
		return nil
	}
	block, alloc := b.block, b.alloc
	b.reset()
	if err := alloc.Free(block); err != nil {
		return fmt.Errorf("buffer: release %d bytes: %w", block.Len(), err)
	}
	log.WithField("mode", block.mode).WithField("bytes", block.Len()).Debug("buffer released")
	return nil
}

// reset drops all references to storage without freeing it.
func (b *Buffer[T]) reset() {
	b.block = Block{}
	b.host = nil
	b.count = 0
}
