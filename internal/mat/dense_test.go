package mat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDenseIsZeroCopy(t *testing.T) {
	data := make([]float32, 12)
	d, err := NewDense(Shape{3, 4}, F32C1, data)
	require.NoError(t, err)

	d.Set(5, 1, 2)
	assert.Equal(t, float32(5), data[6])
	assert.Same(t, &data[0], &d.Data()[0])
	assert.Equal(t, 12, d.Total())
	assert.Equal(t, 12, d.Len())
	assert.Equal(t, 2, d.Rank())
}

func TestNewDenseErrors(t *testing.T) {
	_, err := NewDense(Shape{2, 2}, F32C1, make([]float32, 3))
	assert.ErrorIs(t, err, ErrDataLength)

	_, err = NewDense(Shape{2, 2}, U8C1, make([]float32, 4))
	assert.ErrorIs(t, err, ErrUnsupportedDepth)

	_, err = NewDense(Shape{2, 0}, F32C1, nil)
	assert.Error(t, err)

	// The wrapped product of these extents is 4.
	_, err = NewDense(Shape{1<<62 + 1, 4}, F32C1, make([]float32, 4))
	assert.ErrorIs(t, err, ErrShapeOverflow)
}

func TestDenseMultiChannelIndexing(t *testing.T) {
	d, err := Zeros(Shape{2, 2}, F32C2)
	require.NoError(t, err)
	assert.Equal(t, 4, d.Total())
	assert.Equal(t, 8, d.Len())
	assert.Equal(t, []int{4, 2}, d.Strides())

	d.Set(1.5, 1, 0, 1)
	assert.Equal(t, float32(1.5), d.Data()[5])
	assert.Equal(t, float32(1.5), d.At(1, 0, 1))
	assert.Equal(t, float32(0), d.At(1, 0))

	assert.Equal(t, []float32{0, 1.5, 0, 0}, d.Row(1))

	assert.Panics(t, func() { d.At(2, 0) })
	assert.Panics(t, func() { d.At(0, 0, 2) })
	assert.Panics(t, func() { d.At(0) })
	assert.Panics(t, func() { d.Row(-1) })
}

func TestDenseFill(t *testing.T) {
	d, err := Zeros(Shape{2, 3, 4}, F32C1)
	require.NoError(t, err)
	d.Fill(2)
	for _, v := range d.Data() {
		assert.Equal(t, float32(2), v)
	}
	assert.Equal(t, float32(2), d.At(1, 2, 3))
}

func TestAssignExpressions(t *testing.T) {
	a, _ := NewDense(Shape{2, 2}, F32C1, []float32{1, 2, 3, 4})
	b, _ := NewDense(Shape{2, 2}, F32C1, []float32{10, 20, 30, 40})
	dst, _ := Zeros(Shape{2, 2}, F32C1)

	require.NoError(t, dst.Assign(Add(a, b)))
	assert.Equal(t, []float32{11, 22, 33, 44}, dst.Data())

	require.NoError(t, dst.Assign(Sub(b, Scale(a, 2))))
	assert.Equal(t, []float32{8, 16, 24, 32}, dst.Data())

	require.NoError(t, dst.Assign(AddScalar(Mul(a, a), 1)))
	assert.Equal(t, []float32{2, 5, 10, 17}, dst.Data())
}

func TestAssignInPlaceAliasing(t *testing.T) {
	d, _ := NewDense(Shape{4}, F32C1, []float32{1, 2, 3, 4})
	storage := &d.Data()[0]

	require.NoError(t, d.Assign(Mul(d, d)))
	assert.Equal(t, []float32{1, 4, 9, 16}, d.Data())
	assert.Same(t, storage, &d.Data()[0])
}

func TestAssignMismatch(t *testing.T) {
	a, _ := Zeros(Shape{2, 2}, F32C1)
	b, _ := Zeros(Shape{4}, F32C1)
	c, _ := Zeros(Shape{2, 2}, F32C2)
	dst, _ := Zeros(Shape{2, 2}, F32C1)

	assert.ErrorIs(t, dst.Assign(b), ErrShapeMismatch)
	assert.ErrorIs(t, dst.Assign(c), ErrFormatMismatch)
	assert.ErrorIs(t, dst.Assign(Add(a, b)), ErrShapeMismatch)
	assert.ErrorIs(t, Eval(Add(a, a), make([]float32, 3)), ErrDataLength)
}

func TestDenseFillLarge(t *testing.T) {
	d, err := Zeros(Shape{256, 128}, F32C2)
	require.NoError(t, err)
	d.Fill(-1.5)
	for i, v := range d.Data() {
		if v != -1.5 {
			t.Fatalf("data[%d] = %v, want -1.5", i, v)
		}
	}
}

func TestEvalLargeChunked(t *testing.T) {
	n := 64 * 1024
	src, _ := Zeros(Shape{n}, F32C1)
	for i := range src.Data() {
		src.Data()[i] = float32(i)
	}
	dst := make([]float32, n)
	require.NoError(t, Eval(AddScalar(src, 1), dst))
	for i, v := range dst {
		if v != float32(i)+1 {
			t.Fatalf("dst[%d] = %v, want %v", i, v, float32(i)+1)
		}
	}
}
