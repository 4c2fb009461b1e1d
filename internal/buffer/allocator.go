package buffer

import "unsafe"

// alignment is the byte alignment of heap blocks (cache line / AVX-512 width).
const alignment = 64

// DevicePtr is a coprocessor-visible address. Zero means no device alias exists.
type DevicePtr uintptr

// Block is one raw allocation handed out by an Allocator.
// The host slice may be shorter than its capacity when an allocator rounds
// requests up (page size, pooled reuse); allocators free the full capacity.
type Block struct {
	host   []byte
	device DevicePtr
	mode   Mode
	locked bool
}

// Bytes returns the host-visible bytes of the block.
func (b Block) Bytes() []byte { return b.host }

// Len returns the usable size of the block in bytes.
func (b Block) Len() int { return len(b.host) }

// Cap returns the full size of the underlying allocation in bytes.
func (b Block) Cap() int { return cap(b.host) }

// Device returns the device alias of the block, or zero in heap mode.
func (b Block) Device() DevicePtr { return b.device }

// Mode returns the strategy that produced the block.
func (b Block) Mode() Mode { return b.mode }

// Locked reports whether the block's pages are locked in physical memory.
func (b Block) Locked() bool { return b.locked }

// IsZero reports whether the block refers to no storage.
func (b Block) IsZero() bool { return b.host == nil }

// key identifies a block by the address of its first byte.
func (b Block) key() uintptr {
	if b.host == nil {
		return 0
	}
	return uintptr(unsafe.Pointer(unsafe.SliceData(b.host))) //nolint:gosec // address used as identity only
}

// full returns the block widened to its whole capacity.
func (b Block) full() Block {
	b.host = b.host[:cap(b.host)]
	return b
}

// resized returns the block narrowed to n bytes. n must not exceed Cap.
func (b Block) resized(n int) Block {
	b.host = b.host[:n]
	return b
}

// Allocator produces and releases Blocks for one allocation strategy.
type Allocator interface {
	// Mode reports the strategy of the blocks this allocator produces.
	Mode() Mode
	// Alloc returns a zeroed block of at least nbytes usable bytes.
	Alloc(nbytes int) (Block, error)
	// Free releases a block previously returned by Alloc.
	Free(b Block) error
}

// HeapAllocator allocates 64-byte aligned blocks on the Go heap.
type HeapAllocator struct{}

// NewHeapAllocator returns a heap allocator.
func NewHeapAllocator() *HeapAllocator { return &HeapAllocator{} }

// Mode implements Allocator.
func (a *HeapAllocator) Mode() Mode { return Heap }

// Alloc implements Allocator.
func (a *HeapAllocator) Alloc(nbytes int) (Block, error) {
	if nbytes <= 0 {
		return Block{}, ErrInvalidSize
	}
	buf := make([]byte, nbytes+alignment)
	addr := uintptr(unsafe.Pointer(&buf[0])) //nolint:gosec // unsafe is required for memory alignment
	shift := int((alignment - addr&(alignment-1)) & (alignment - 1))
	return Block{host: buf[shift : shift+nbytes : shift+nbytes], mode: Heap}, nil
}

// Free implements Allocator. Heap memory is reclaimed by the garbage collector.
func (a *HeapAllocator) Free(b Block) error {
	if b.IsZero() {
		return ErrEmpty
	}
	return nil
}

// MappedAllocator allocates page-locked host memory that is addressable by a
// coprocessor through the block's device pointer.
//
// The device pointer is the address of the same pages in the unified virtual
// address space, so host and device see one physical copy of the data.
type MappedAllocator struct {
	// Strict turns a failure to lock pages into an allocation failure.
	// Otherwise the failure is logged and the pages stay mapped but pageable.
	Strict bool
}

// NewMappedAllocator returns a mapped allocator.
func NewMappedAllocator(strict bool) *MappedAllocator {
	return &MappedAllocator{Strict: strict}
}

// Mode implements Allocator.
func (a *MappedAllocator) Mode() Mode { return Mapped }

// Alloc implements Allocator.
func (a *MappedAllocator) Alloc(nbytes int) (Block, error) {
	if nbytes <= 0 {
		return Block{}, ErrInvalidSize
	}
	host, err := mapPages(nbytes)
	if err != nil {
		return Block{}, err
	}

	locked := true
	if err := lockPages(host); err != nil {
		if a.Strict {
			_ = unmapPages(host)
			return Block{}, err
		}
		locked = false
		log.WithError(err).WithField("bytes", cap(host)).Warn("mapped block is not page-locked")
	}

	b := Block{host: host[:nbytes], mode: Mapped, locked: locked}
	b.device = DevicePtr(b.key())
	return b, nil
}

// Free implements Allocator.
func (a *MappedAllocator) Free(b Block) error {
	if b.IsZero() {
		return ErrEmpty
	}
	b = b.full()
	var err error
	if b.locked {
		err = unlockPages(b.host)
	}
	// munmap drops any remaining lock, so the mapping goes regardless.
	if uerr := unmapPages(b.host); err == nil {
		err = uerr
	}
	return err
}
