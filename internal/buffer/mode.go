package buffer

import (
	"fmt"
	"strings"
)

// Mode selects the allocation strategy backing a buffer.
type Mode int

// Supported allocation modes.
const (
	Heap Mode = iota
	Mapped
)

// String returns a human-readable mode name.
func (m Mode) String() string {
	switch m {
	case Heap:
		return "heap"
	case Mapped:
		return "mapped"
	default:
		return "unknown"
	}
}

// ParseMode parses a mode name as produced by Mode.String.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "heap", "plain":
		return Heap, nil
	case "mapped", "pinned":
		return Mapped, nil
	default:
		return 0, fmt.Errorf("unknown allocation mode %q", s)
	}
}

// AllocatorFor returns the process-wide allocator for the given mode.
func AllocatorFor(m Mode) Allocator {
	switch m {
	case Heap:
		return defaultHeap
	case Mapped:
		return defaultMapped
	default:
		panic(fmt.Sprintf("buffer: unknown mode %d", m))
	}
}

var (
	defaultHeap   = &HeapAllocator{}
	defaultMapped = &MappedAllocator{}
)
