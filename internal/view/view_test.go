package view

import (
	"errors"
	"testing"
	"unsafe"

	"github.com/born-ml/dynmem/internal/buffer"
	"github.com/born-ml/dynmem/internal/mat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorElementCounts(t *testing.T) {
	tests := []struct {
		name  string
		make  func(opts ...Option) *View
		shape mat.Shape
		count int
	}{
		{
			name:  "size",
			make:  func(opts ...Option) *View { return NewSize(mat.Size{Width: 5, Height: 3}, mat.F32C2, opts...) },
			shape: mat.Shape{3, 5},
			count: 30,
		},
		{
			name:  "rows-cols",
			make:  func(opts ...Option) *View { return New(4, 6, mat.F32C3, opts...) },
			shape: mat.Shape{4, 6},
			count: 72,
		},
		{
			name:  "n-dimensional",
			make:  func(opts ...Option) *View { return NewND(mat.Shape{2, 3, 4, 5}, mat.F32C1, opts...) },
			shape: mat.Shape{2, 3, 4, 5},
			count: 120,
		},
		{
			name:  "fixed-3d",
			make:  func(opts ...Option) *View { return New3D([3]int{7, 8, 9}, opts...) },
			shape: mat.Shape{7, 8, 9},
			count: 504,
		},
	}

	for _, tt := range tests {
		for _, mode := range []buffer.Mode{buffer.Heap, buffer.Mapped} {
			t.Run(tt.name+"/"+mode.String(), func(t *testing.T) {
				v := tt.make(WithMode(mode))
				defer v.Release()

				assert.Equal(t, tt.count, v.Len())
				assert.Equal(t, tt.count, v.Buffer().Len())
				assert.Equal(t, tt.count, v.Mat().Len())
				assert.Equal(t, tt.count, v.Shape().NumElements()*v.Format().Channels())
				assert.True(t, tt.shape.Equal(v.Shape()), "shape %v, want %v", v.Shape(), tt.shape)
				assert.Equal(t, v.Buffer().HostPtr(), v.HostPtr())
				assert.Equal(t, v.HostPtr(), unsafe.Pointer(&v.Mat().Data()[0]), "matrix must overlay the buffer with no offset")
				assert.Equal(t, mode, v.Mode())
				assert.Equal(t, mode == buffer.Mapped, v.DevicePtr() != 0)
			})
		}
	}
}

func TestNonFloatFormatPanics(t *testing.T) {
	for _, f := range []mat.Format{mat.U8C1, mat.S32C1, mat.F64C1, mat.MakeFormat(mat.Uint8, 3)} {
		t.Run(f.String(), func(t *testing.T) {
			assertNotFloatPanic(t, func() { New(2, 2, f) })
			assertNotFloatPanic(t, func() { NewSize(mat.Size{Width: 2, Height: 2}, f) })
			assertNotFloatPanic(t, func() { NewND(mat.Shape{2, 2, 2}, f) })
		})
	}
}

func assertNotFloatPanic(t *testing.T, f func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a panic")
		err, ok := r.(error)
		require.True(t, ok, "panic value %T is not an error", r)
		assert.True(t, errors.Is(err, ErrNotFloat32))
	}()
	f()
}

func TestNonFloatFormatAllocatesNothing(t *testing.T) {
	tr := buffer.NewTracker(buffer.NewHeapAllocator())
	assert.Panics(t, func() { New(2, 2, mat.U8C1, WithAllocator(tr)) })
	assert.Equal(t, 0, tr.Stats().Allocations)
}

func TestInvalidExtentsPanic(t *testing.T) {
	assert.Panics(t, func() { New(0, 4, mat.F32C1) })
	assert.Panics(t, func() { NewND(mat.Shape{}, mat.F32C1) })
	assert.Panics(t, func() { New3D([3]int{2, -1, 2}) })
}

func TestOverflowingShapePanics(t *testing.T) {
	tr := buffer.NewTracker(buffer.NewHeapAllocator())
	assert.Panics(t, func() { NewND(mat.Shape{1<<62 + 1, 4}, mat.F32C1, WithAllocator(tr)) })
	assert.Panics(t, func() { New(1<<31, 1<<31, mat.F32C4, WithAllocator(tr)) }, "channel multiply overflows")
	assert.Panics(t, func() { New3D([3]int{1 << 21, 1 << 21, 1 << 21}, WithAllocator(tr)) })
	assert.Equal(t, 0, tr.Stats().Allocations)
}

func TestFromMatRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		shape  mat.Shape
		format mat.Format
	}{
		{"3x4 single channel", mat.Shape{3, 4}, mat.F32C1},
		{"2x2 two channels", mat.Shape{2, 2}, mat.F32C2},
		{"2x3x2 three channels", mat.Shape{2, 3, 2}, mat.F32C3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := mat.Zeros(tt.shape, tt.format)
			require.NoError(t, err)
			for i := range src.Data() {
				src.Data()[i] = float32(i)*1.25 - 3
			}

			v := FromMat(src)
			defer v.Release()

			assert.True(t, tt.shape.Equal(v.Shape()))
			assert.Equal(t, tt.format, v.Format())
			assert.Equal(t, src.Data(), v.Host())
			assert.NotEqual(t, unsafe.Pointer(&src.Data()[0]), v.HostPtr(), "FromMat must copy")

			src.Data()[0] = 100
			assert.NotEqual(t, float32(100), v.Host()[0])
		})
	}
}

func TestFromMatIndexedReadBack(t *testing.T) {
	src, err := mat.NewDense(mat.Shape{2, 2}, mat.F32C2, []float32{1, 2, 3, 4, 5, 6, 7, 8})
	require.NoError(t, err)

	v := FromMat(src)
	defer v.Release()

	m := v.Mat()
	for r := 0; r < 2; r++ {
		for c := 0; c < 2; c++ {
			for ch := 0; ch < 2; ch++ {
				assert.Equal(t, src.At(r, c, ch), m.At(r, c, ch))
			}
		}
	}
}

func TestFromMatRejectsNonFloat(t *testing.T) {
	assertNotFloatPanic(t, func() { FromMat(fakeMat{format: mat.U8C1}) })
}

type fakeMat struct {
	format mat.Format
}

func (f fakeMat) Shape() mat.Shape   { return mat.Shape{2} }
func (f fakeMat) Format() mat.Format { return f.format }
func (f fakeMat) Float32() []float32 { return []float32{1, 2} }

func TestFromView(t *testing.T) {
	a := New(2, 3, mat.F32C1)
	defer a.Release()
	copy(a.Host(), []float32{1, 2, 3, 4, 5, 6})

	b := FromMat(a, WithMode(buffer.Mapped))
	defer b.Release()
	assert.Equal(t, a.Host(), b.Host())
	assert.Equal(t, buffer.Mapped, b.Mode())
}

func TestTake(t *testing.T) {
	tr := buffer.NewTracker(buffer.NewMappedAllocator(false))
	v1 := New(3, 3, mat.F32C1, WithAllocator(tr))
	v1.Mat().Set(4, 1, 1)
	ptr, dev := v1.HostPtr(), v1.DevicePtr()

	v2 := v1.Take()

	assert.Nil(t, v1.Mat())
	assert.Nil(t, v1.HostPtr())
	assert.Zero(t, v1.Len())
	for i := 0; i < v1.Len(); i++ {
		t.Fatalf("moved-from view has element %d", i)
	}
	assert.Equal(t, 9, v2.Len())
	assert.Zero(t, v1.DevicePtr())
	assert.ErrorIs(t, v1.Assign(v2.Mat()), ErrReleased)
	require.NoError(t, v1.Release())

	assert.Equal(t, ptr, v2.HostPtr())
	assert.Equal(t, dev, v2.DevicePtr())
	assert.Equal(t, float32(4), v2.Mat().At(1, 1))
	assert.Equal(t, 1, tr.Stats().Allocations)

	require.NoError(t, v2.Release())
	require.NoError(t, tr.Leaks())
}

func TestAssignExpressionInPlace(t *testing.T) {
	a := New(2, 2, mat.F32C1)
	b := New(2, 2, mat.F32C1)
	dst := New(2, 2, mat.F32C1)
	defer a.Release()
	defer b.Release()
	defer dst.Release()

	copy(a.Host(), []float32{1, 2, 3, 4})
	copy(b.Host(), []float32{4, 3, 2, 1})
	ptr := dst.HostPtr()

	require.NoError(t, dst.Assign(mat.Scale(mat.Add(a.Mat(), b.Mat()), 0.5)))
	assert.Equal(t, []float32{2.5, 2.5, 2.5, 2.5}, dst.Host())
	assert.Equal(t, ptr, dst.HostPtr(), "assignment must not reallocate")

	wrong := New(4, 1, mat.F32C1)
	defer wrong.Release()
	assert.ErrorIs(t, dst.Assign(wrong.Mat()), mat.ErrShapeMismatch)
}

func TestCopyFrom(t *testing.T) {
	a := New(2, 2, mat.F32C2)
	b := New(2, 2, mat.F32C2, WithMode(buffer.Mapped))
	c := New(2, 2, mat.F32C1)
	defer a.Release()
	defer b.Release()
	defer c.Release()

	a.Mat().Fill(3)
	require.NoError(t, b.CopyFrom(a))
	assert.Equal(t, a.Host(), b.Host())
	assert.ErrorIs(t, c.CopyFrom(a), mat.ErrFormatMismatch)

	d := New(4, 1, mat.F32C2)
	defer d.Release()
	assert.ErrorIs(t, d.CopyFrom(a), mat.ErrShapeMismatch)
}

// 64x64 single-channel scenario: write a pattern through the host pointer,
// read it back through the matrix, release, and check for leaks.
func TestScenario64x64(t *testing.T) {
	for _, mode := range []buffer.Mode{buffer.Heap, buffer.Mapped} {
		t.Run(mode.String(), func(t *testing.T) {
			tr := buffer.NewTracker(buffer.AllocatorFor(mode))
			v := New(64, 64, mat.F32C1, WithAllocator(tr))
			require.Equal(t, 4096, v.Len())

			//nolint:gosec // writes through the raw host pointer as an FFT or kernel would
			raw := unsafe.Slice((*float32)(v.HostPtr()), 4096)
			for i := range raw {
				raw[i] = float32(i%64) - float32(i/64)
			}

			m := v.Mat()
			for r := 0; r < 64; r++ {
				for c := 0; c < 64; c++ {
					if got, want := m.At(r, c), float32(c-r); got != want {
						t.Fatalf("At(%d, %d) = %v, want %v", r, c, got, want)
					}
				}
			}

			require.NoError(t, v.Release())
			require.NoError(t, tr.Leaks())
			assert.Equal(t, 64*64*4, tr.Stats().PeakBytes)
		})
	}
}
