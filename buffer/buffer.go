// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package buffer

import (
	"github.com/born-ml/dynmem/internal/buffer"
)

// Element is a constraint for supported buffer element types.
type Element = buffer.Element

// Buffer exclusively owns a contiguous run of elements.
//
// Buffer provides:
//   - Host access via Host(), HostPtr(), At()
//   - A device alias in mapped mode via DevicePtr()
//   - Ownership transfer via Take() and MoveFrom()
//   - Checked content copy via CopyFrom()
type Buffer[T Element] = buffer.Buffer[T]

// Float is the float32 buffer used as matrix storage.
type Float = buffer.Buffer[float32]

// Mode selects the allocation strategy.
type Mode = buffer.Mode

// Allocation modes.
const (
	Heap        = buffer.Heap
	Mapped      = buffer.Mapped
	DefaultMode = buffer.DefaultMode
)

// DevicePtr is a coprocessor-visible address.
type DevicePtr = buffer.DevicePtr

// Option configures buffer allocation.
type Option = buffer.Option

// New allocates a buffer of count elements. It panics with an *AllocError if
// the allocation cannot be satisfied.
func New[T Element](count int, opts ...Option) *Buffer[T] {
	return buffer.New[T](count, opts...)
}

// NewFloat allocates a float32 buffer of count elements.
func NewFloat(count int, opts ...Option) *Float {
	return buffer.New[float32](count, opts...)
}

// WithMode selects the process-wide allocator for a mode.
func WithMode(m Mode) Option {
	return buffer.WithMode(m)
}

// WithAllocator routes allocation and release through a.
func WithAllocator(a Allocator) Option {
	return buffer.WithAllocator(a)
}

// ParseMode parses "heap" or "mapped".
func ParseMode(s string) (Mode, error) {
	return buffer.ParseMode(s)
}
