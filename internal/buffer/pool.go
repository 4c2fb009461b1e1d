package buffer

import "sync"

// SizeClass represents different block size categories for pooling.
type SizeClass int

const (
	// SmallBlock for blocks < 4KB.
	SmallBlock SizeClass = iota
	// MediumBlock for blocks 4KB-1MB.
	MediumBlock
	// LargeBlock for blocks > 1MB.
	LargeBlock
)

const (
	smallThreshold     = 4 * 1024    // 4KB
	mediumThreshold    = 1024 * 1024 // 1MB
	DefaultMaxPerClass = 100
)

// PoolStats summarizes pool usage.
type PoolStats struct {
	Allocated uint64 // blocks obtained from the wrapped allocator
	Released  uint64 // blocks handed back to the pool
	Hits      uint64
	Misses    uint64
	Pooled    int // blocks currently held for reuse
}

// Pool reuses blocks of a wrapped allocator to avoid per-frame allocation
// overhead. Blocks are categorized by capacity. Pool is itself an Allocator and
// is safe for concurrent use.
type Pool struct {
	next        Allocator
	maxPerClass int

	small  []Block
	medium []Block
	large  []Block

	mu    sync.Mutex
	stats PoolStats
}

// NewPool creates a pool over next holding at most maxPerClass blocks per size
// class. A non-positive maxPerClass selects DefaultMaxPerClass.
func NewPool(next Allocator, maxPerClass int) *Pool {
	if maxPerClass <= 0 {
		maxPerClass = DefaultMaxPerClass
	}
	return &Pool{
		next:        next,
		maxPerClass: maxPerClass,
		small:       make([]Block, 0, maxPerClass),
		medium:      make([]Block, 0, maxPerClass),
		large:       make([]Block, 0, maxPerClass),
	}
}

// Mode implements Allocator.
func (p *Pool) Mode() Mode {
	return p.next.Mode()
}

// Alloc implements Allocator. A pooled block whose capacity covers nbytes is
// reused and zeroed; otherwise a new block is obtained from the wrapped allocator.
func (p *Pool) Alloc(nbytes int) (Block, error) {
	if nbytes <= 0 {
		return Block{}, ErrInvalidSize
	}

	p.mu.Lock()
	// Page-rounded blocks can sit in a larger class than the request.
	for class := categorize(nbytes); class <= LargeBlock; class++ {
		for i, b := range p.class(class) {
			if b.Cap() >= nbytes {
				p.remove(class, i)
				p.stats.Hits++
				p.mu.Unlock()

				b = b.resized(nbytes)
				clear(b.host)
				return b, nil
			}
		}
	}
	p.stats.Misses++
	p.mu.Unlock()

	b, err := p.next.Alloc(nbytes)
	if err != nil {
		return Block{}, err
	}

	p.mu.Lock()
	p.stats.Allocated++
	p.mu.Unlock()
	return b, nil
}

// Free implements Allocator. The block is kept for reuse unless its class is
// full, in which case it is released to the wrapped allocator immediately.
func (p *Pool) Free(b Block) error {
	if b.IsZero() {
		return ErrEmpty
	}
	b = b.full()

	p.mu.Lock()
	p.stats.Released++
	class := categorize(b.Cap())
	if len(p.class(class)) >= p.maxPerClass {
		p.mu.Unlock()
		return p.next.Free(b)
	}
	p.add(class, b)
	p.mu.Unlock()
	return nil
}

// Clear releases all pooled blocks to the wrapped allocator.
// The first release error is returned; remaining blocks are still released.
func (p *Pool) Clear() error {
	p.mu.Lock()
	blocks := make([]Block, 0, len(p.small)+len(p.medium)+len(p.large))
	blocks = append(blocks, p.small...)
	blocks = append(blocks, p.medium...)
	blocks = append(blocks, p.large...)
	p.small = p.small[:0]
	p.medium = p.medium[:0]
	p.large = p.large[:0]
	p.mu.Unlock()

	var first error
	for _, b := range blocks {
		if err := p.next.Free(b); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Stats returns statistics about pool usage.
func (p *Pool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := p.stats
	s.Pooled = len(p.small) + len(p.medium) + len(p.large)
	return s
}

// categorize determines the size class for a block size.
func categorize(size int) SizeClass {
	if size < smallThreshold {
		return SmallBlock
	}
	if size < mediumThreshold {
		return MediumBlock
	}
	return LargeBlock
}

// class returns the pool slice for a given class (must hold mu).
func (p *Pool) class(c SizeClass) []Block {
	switch c {
	case SmallBlock:
		return p.small
	case MediumBlock:
		return p.medium
	default:
		return p.large
	}
}

// add appends a block to the pool for class c (must hold mu).
func (p *Pool) add(c SizeClass, b Block) {
	switch c {
	case SmallBlock:
		p.small = append(p.small, b)
	case MediumBlock:
		p.medium = append(p.medium, b)
	default:
		p.large = append(p.large, b)
	}
}

// remove deletes the block at index i from class c (must hold mu).
func (p *Pool) remove(c SizeClass, i int) {
	switch c {
	case SmallBlock:
		p.small = append(p.small[:i], p.small[i+1:]...)
	case MediumBlock:
		p.medium = append(p.medium[:i], p.medium[i+1:]...)
	default:
		p.large = append(p.large[:i], p.large[i+1:]...)
	}
}
