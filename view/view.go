// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package view presents float32 buffers as shaped matrices without copying.
//
// Example:
//
//	v := view.New(64, 64, view.F32C1, view.WithMode(buffer.Mapped))
//	defer v.Release()
//
//	v.Mat().Set(1, 10, 12)        // matrix access
//	fft(v.Host())                 // raw host memory
//	kernel(v.DevicePtr(), v.Len()) // same pages, device side
package view

import (
	"github.com/born-ml/dynmem/internal/mat"
	"github.com/born-ml/dynmem/internal/view"
)

// View is a shaped matrix whose storage is a float32 buffer.
type View = view.View

// Matrix metadata types.
type (
	Format = mat.Format
	Shape  = mat.Shape
	Size   = mat.Size
	Mat    = mat.Mat
	Dense  = mat.Dense
	Expr   = mat.Expr
	Option = view.Option
)

// Float32 formats accepted by View constructors.
const (
	F32C1 = mat.F32C1
	F32C2 = mat.F32C2
	F32C3 = mat.F32C3
	F32C4 = mat.F32C4
)

// Errors.
var (
	ErrNotFloat32 = view.ErrNotFloat32
	ErrReleased   = view.ErrReleased
)

// Allocation options.
var (
	WithMode      = view.WithMode
	WithAllocator = view.WithAllocator
)

// NewSize creates a Height x Width view.
func NewSize(size Size, format Format, opts ...Option) *View {
	return view.NewSize(size, format, opts...)
}

// New creates a rows x cols view.
func New(rows, cols int, format Format, opts ...Option) *View {
	return view.New(rows, cols, format, opts...)
}

// NewND creates a view of arbitrary rank.
func NewND(shape Shape, format Format, opts ...Option) *View {
	return view.NewND(shape, format, opts...)
}

// New3D creates a single-channel view with three extents.
func New3D(extents [3]int, opts ...Option) *View {
	return view.New3D(extents, opts...)
}

// FromMat copies m into freshly allocated view storage.
func FromMat(m Mat, opts ...Option) *View {
	return view.FromMat(m, opts...)
}
