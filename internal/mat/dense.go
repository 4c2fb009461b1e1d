package mat

import (
	"fmt"

	"github.com/born-ml/dynmem/internal/parallel"
)

// Mat is a materialized matrix value: a shape, a format and float32 scalars in
// row-major, channel-interleaved order.
type Mat interface {
	Shape() Shape
	Format() Format
	Float32() []float32
}

// Dense is a non-owning matrix view over caller-supplied float32 storage.
// The storage is never reallocated or rebound by Dense.
type Dense struct {
	data    []float32
	shape   Shape
	strides []int
	format  Format
}

// NewDense overlays shape and format on data without copying.
// len(data) must equal shape.NumElements() * format.Channels().
func NewDense(shape Shape, format Format, data []float32) (*Dense, error) {
	if format.Depth() != Float32 {
		return nil, fmt.Errorf("%w: got %s", ErrUnsupportedDepth, format)
	}
	want, err := shape.Count(format.Channels())
	if err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if len(data) != want {
		return nil, fmt.Errorf("%w: have %d scalars, shape %v %s needs %d", ErrDataLength, len(data), shape, format, want)
	}
	return &Dense{
		data:    data,
		shape:   shape.Clone(),
		strides: shape.ComputeStrides(format.Channels()),
		format:  format,
	}, nil
}

// Zeros allocates a zero-filled Dense matrix on the Go heap.
func Zeros(shape Shape, format Format) (*Dense, error) {
	n, err := shape.Count(format.Channels())
	if err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	return NewDense(shape, format, make([]float32, n))
}

// Shape returns the matrix extents.
func (d *Dense) Shape() Shape {
	return d.shape
}

// Format returns the element format.
func (d *Dense) Format() Format {
	return d.format
}

// Strides returns the per-dimension strides in scalars.
func (d *Dense) Strides() []int {
	return d.strides
}

// Rank returns the number of dimensions.
func (d *Dense) Rank() int {
	return len(d.shape)
}

// Channels returns the number of scalars per element.
func (d *Dense) Channels() int {
	return d.format.Channels()
}

// Total returns the number of elements (product of the extents).
func (d *Dense) Total() int {
	return d.shape.NumElements()
}

// Len returns the number of scalars, Total() * Channels().
func (d *Dense) Len() int {
	return len(d.data)
}

// Data returns the underlying storage.
// WARNING: Direct access to underlying memory. Use with caution.
func (d *Dense) Data() []float32 {
	return d.data
}

// Float32 implements Mat.
func (d *Dense) Float32() []float32 {
	return d.data
}

// offset maps indices to a scalar offset. idx holds one index per dimension,
// optionally followed by a channel index.
func (d *Dense) offset(idx []int) int {
	rank := len(d.shape)
	if len(idx) != rank && len(idx) != rank+1 {
		panic(fmt.Sprintf("mat: %d indices for rank %d matrix", len(idx), rank))
	}
	off := 0
	for i := 0; i < rank; i++ {
		if idx[i] < 0 || idx[i] >= d.shape[i] {
			panic(fmt.Sprintf("mat: index %d out of range [0, %d) in dimension %d", idx[i], d.shape[i], i))
		}
		off += idx[i] * d.strides[i]
	}
	if len(idx) == rank+1 {
		c := idx[rank]
		if c < 0 || c >= d.Channels() {
			panic(fmt.Sprintf("mat: channel %d out of range [0, %d)", c, d.Channels()))
		}
		off += c
	}
	return off
}

// At returns the scalar at the given indices. A trailing extra index selects
// the channel; it defaults to 0.
func (d *Dense) At(idx ...int) float32 {
	return d.data[d.offset(idx)]
}

// Set stores v at the given indices, addressed as in At.
func (d *Dense) Set(v float32, idx ...int) {
	d.data[d.offset(idx)] = v
}

// Row returns the scalars of outermost index i as a slice sharing storage.
func (d *Dense) Row(i int) []float32 {
	if i < 0 || i >= d.shape[0] {
		panic(fmt.Sprintf("mat: row %d out of range [0, %d)", i, d.shape[0]))
	}
	return d.data[i*d.strides[0] : (i+1)*d.strides[0]]
}

// Fill sets every scalar to v.
func (d *Dense) Fill(v float32) {
	parallel.For(len(d.data), func(i int) {
		d.data[i] = v
	}, evalConfig)
}

// Assign evaluates e into the matrix storage in place.
// e must have the same shape and format as d.
func (d *Dense) Assign(e Expr) error {
	if !e.Shape().Equal(d.shape) {
		return fmt.Errorf("%w: destination %v, expression %v", ErrShapeMismatch, d.shape, e.Shape())
	}
	if e.Format() != d.format {
		return fmt.Errorf("%w: destination %s, expression %s", ErrFormatMismatch, d.format, e.Format())
	}
	return Eval(e, d.data)
}

// at implements Expr.
func (d *Dense) at(i int) float32 {
	return d.data[i]
}

// validate implements Expr.
func (d *Dense) validate() error {
	return nil
}
