// Package view presents a float32 buffer as a shaped matrix without copying.
//
// A View owns exactly one buffer and one mat.Dense overlaid on the buffer's host
// memory. The shape is bound at construction: there is no way to reshape or
// reallocate a View, so the buffer can never be under- or over-sized for it.
package view

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/born-ml/dynmem/internal/buffer"
	"github.com/born-ml/dynmem/internal/mat"
)

// Common errors.
var (
	ErrNotFloat32 = errors.New("view: element format must be float32")
	ErrReleased   = errors.New("view: storage has been released or moved")
)

// Option configures how a view allocates its buffer.
type Option = buffer.Option

// Allocation options, shared with package buffer.
var (
	WithMode      = buffer.WithMode
	WithAllocator = buffer.WithAllocator
)

// View is a shaped matrix whose storage is a buffer.Buffer[float32].
// A View is not safe for concurrent mutation.
type View struct {
	buf *buffer.Buffer[float32]
	mat *mat.Dense
}

// NewSize creates a 2-D view of size.Height rows and size.Width columns.
// Panics if format is not a float32 format.
func NewSize(size mat.Size, format mat.Format, opts ...Option) *View {
	assertFloat32(format)
	return build(size.Shape(), format, opts)
}

// New creates a 2-D view of rows x cols elements.
// Panics if format is not a float32 format.
func New(rows, cols int, format mat.Format, opts ...Option) *View {
	assertFloat32(format)
	return build(mat.Shape{rows, cols}, format, opts)
}

// NewND creates a view of arbitrary rank.
// Panics if format is not a float32 format.
func NewND(shape mat.Shape, format mat.Format, opts ...Option) *View {
	assertFloat32(format)
	return build(shape, format, opts)
}

// New3D creates a single-channel float32 view with three extents.
func New3D(extents [3]int, opts ...Option) *View {
	return build(mat.Shape(extents[:]), mat.F32C1, opts)
}

// FromMat allocates fresh storage, copies m's scalars into it and adopts m's
// shape and format. It is the only constructor that copies data.
func FromMat(m mat.Mat, opts ...Option) *View {
	format := m.Format()
	assertFloat32(format)

	shape := m.Shape().Clone()
	src := m.Float32()
	count, err := shape.Count(format.Channels())
	if err != nil {
		panic(fmt.Sprintf("view: %v", err))
	}
	if len(src) != count {
		panic(fmt.Sprintf("view: source holds %d scalars, shape %v %s needs %d", len(src), shape, format, count))
	}

	v := build(shape, format, opts)
	copy(v.buf.Host(), src)
	return v
}

// build sizes the buffer from the shape, allocates it, then overlays the shape
// on its host memory. Invalid or overflowing shapes panic before allocation.
func build(shape mat.Shape, format mat.Format, opts []Option) *View {
	count, err := shape.Count(format.Channels())
	if err != nil {
		panic(fmt.Sprintf("view: %v", err))
	}

	buf := buffer.New[float32](count, opts...)
	d, err := mat.NewDense(shape, format, buf.Host())
	if err != nil {
		_ = buf.Release()
		panic(fmt.Sprintf("view: %v", err))
	}
	return &View{buf: buf, mat: d}
}

func assertFloat32(f mat.Format) {
	if f.Depth() != mat.Float32 {
		panic(fmt.Errorf("%w: got %s", ErrNotFloat32, f))
	}
}

// Take transfers the buffer and the shape to a new View.
// The receiver is left empty; releasing it afterwards is a no-op.
func (v *View) Take() *View {
	moved := &View{buf: v.buf.Take(), mat: v.mat}
	v.mat = nil
	return moved
}

// Assign evaluates e into the view's existing storage. e must have the view's
// shape and format. No allocation takes place.
func (v *View) Assign(e mat.Expr) error {
	if v.mat == nil {
		return ErrReleased
	}
	return v.mat.Assign(e)
}

// CopyFrom overwrites the view's scalars with src's. Shapes and formats must match.
func (v *View) CopyFrom(src *View) error {
	if v.mat == nil || src.mat == nil {
		return ErrReleased
	}
	if !v.mat.Shape().Equal(src.mat.Shape()) {
		return fmt.Errorf("%w: destination %v, source %v", mat.ErrShapeMismatch, v.mat.Shape(), src.mat.Shape())
	}
	if v.mat.Format() != src.mat.Format() {
		return fmt.Errorf("%w: destination %s, source %s", mat.ErrFormatMismatch, v.mat.Format(), src.mat.Format())
	}
	return v.buf.CopyFrom(src.buf)
}

// Release frees the storage. The view must not be used afterwards, except for
// further calls to Release, which are no-ops.
func (v *View) Release() error {
	v.mat = nil
	return v.buf.Release()
}

// Mat returns the matrix overlay, or nil once the view is released or moved.
func (v *View) Mat() *mat.Dense {
	return v.mat
}

// Buffer returns the buffer backing the view.
func (v *View) Buffer() *buffer.Buffer[float32] {
	return v.buf
}

// Host returns the scalars in row-major, channel-interleaved order.
func (v *View) Host() []float32 {
	return v.buf.Host()
}

// HostPtr returns the address of the first scalar.
func (v *View) HostPtr() unsafe.Pointer {
	return v.buf.HostPtr()
}

// DevicePtr returns the device alias of the storage; zero unless mapped.
func (v *View) DevicePtr() buffer.DevicePtr {
	return v.buf.DevicePtr()
}

// Mode returns the allocation mode of the storage.
func (v *View) Mode() buffer.Mode {
	return v.buf.Mode()
}

// Len returns the number of scalars, or 0 once the view is released or moved.
func (v *View) Len() int {
	return v.buf.Len()
}

// Shape implements mat.Mat. It returns nil once the view is released or moved.
func (v *View) Shape() mat.Shape {
	if v.mat == nil {
		return nil
	}
	return v.mat.Shape()
}

// Format implements mat.Mat.
func (v *View) Format() mat.Format {
	if v.mat == nil {
		return mat.F32C1
	}
	return v.mat.Format()
}

// Float32 implements mat.Mat.
func (v *View) Float32() []float32 {
	return v.buf.Host()
}
