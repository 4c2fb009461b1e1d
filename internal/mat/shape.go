package mat

import (
	"fmt"
	"math"
)

// Size is a 2-D extent. A Size maps to the shape {Height, Width}.
type Size struct {
	Width  int
	Height int
}

// Area returns Width * Height.
func (s Size) Area() int {
	return s.Width * s.Height
}

// Shape returns the row-major shape {Height, Width}.
func (s Size) Shape() Shape {
	return Shape{s.Height, s.Width}
}

// Shape represents the per-dimension extents of a matrix, outermost first.
// Channels are not part of the shape.
type Shape []int

// NumElements returns the product of the extents.
func (s Shape) NumElements() int {
	if len(s) == 0 {
		return 1
	}
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks that the shape has at least one dimension, all extents are > 0
// and their product fits in an int.
func (s Shape) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("shape has no dimensions")
	}
	n := 1
	for i, dim := range s {
		if dim <= 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be > 0)", i, dim)
		}
		if n > math.MaxInt/dim {
			return fmt.Errorf("%w: %v", ErrShapeOverflow, s)
		}
		n *= dim
	}
	return nil
}

// Count returns the number of scalars a matrix of this shape holds with the
// given channel count. It fails if the shape is invalid or the product overflows.
func (s Shape) Count(channels int) (int, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}
	if channels < 1 {
		return 0, fmt.Errorf("invalid channel count %d", channels)
	}
	n := s.NumElements()
	if n > math.MaxInt/channels {
		return 0, fmt.Errorf("%w: %v x %d channels", ErrShapeOverflow, s, channels)
	}
	return n * channels, nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// ComputeStrides calculates row-major strides, in scalars, for elements of the
// given channel count: stride[i] = channels * product of all extents after i.
func (s Shape) ComputeStrides(channels int) []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = channels
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}
