// Package correlate runs FFT-based correlation-filter primitives directly on
// view host memory.
package correlate

import (
	"errors"
	"fmt"
	"sync"

	algofft "github.com/MeKo-Christian/algo-fft"
	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/born-ml/dynmem/internal/mat"
	"github.com/born-ml/dynmem/internal/parallel"
	"github.com/born-ml/dynmem/internal/view"
)

// Common errors.
var (
	ErrNotMatrix        = errors.New("correlate: view must have rank 2")
	ErrNotSingleChannel = errors.New("correlate: view must have one channel")
	ErrShapeMismatch    = errors.New("correlate: view shapes differ")
)

var cfg = parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 16}

// Correlate computes the circular 2-D cross-correlation of a and b into dst:
//
//	dst[dy, dx] = sum over y, x of a[y+dy, x+dx] * b[y, x]
//
// evaluated as IFFT2(FFT2(a) * conj(FFT2(b))). All three views must be
// single-channel matrices of the same shape, with extents the FFT plans accept.
func Correlate(dst, a, b *view.View) error {
	rows, cols, err := checkSame(dst, a, b)
	if err != nil {
		return err
	}

	fa := toComplex(a.Host())
	fb := toComplex(b.Host())
	if err := fft2(fa, rows, cols, false); err != nil {
		return err
	}
	if err := fft2(fb, rows, cols, false); err != nil {
		return err
	}

	for i := range fa {
		bc := fb[i]
		fa[i] *= complex(real(bc), -imag(bc))
	}

	if err := fft2(fa, rows, cols, true); err != nil {
		return err
	}

	out := dst.Host()
	for i, c := range fa {
		out[i] = float32(real(c))
	}
	return nil
}

// PowerSpectrum writes |FFT2(src)|^2 into dst. Both views must be
// single-channel matrices of the same shape.
func PowerSpectrum(dst, src *view.View) error {
	rows, cols, err := checkSame(dst, src)
	if err != nil {
		return err
	}

	freq := toComplex(src.Host())
	if err := fft2(freq, rows, cols, false); err != nil {
		return err
	}

	re := make([]float64, len(freq))
	im := make([]float64, len(freq))
	for i, c := range freq {
		re[i] = real(c)
		im[i] = imag(c)
	}
	power := make([]float64, len(freq))
	vecmath.Power(power, re, im)

	out := dst.Host()
	for i, p := range power {
		out[i] = float32(p)
	}
	return nil
}

// Peak returns the position and value of the largest scalar of a
// single-channel matrix view.
func Peak(v *view.View) (row, col int, value float32, err error) {
	shape, err := checkMatrix(v)
	if err != nil {
		return 0, 0, 0, err
	}

	data := v.Host()
	best := 0
	for i, x := range data {
		if x > data[best] {
			best = i
		}
	}
	return best / shape[1], best % shape[1], data[best], nil
}

func checkMatrix(v *view.View) (mat.Shape, error) {
	if v.Mat() == nil {
		return nil, view.ErrReleased
	}
	if len(v.Shape()) != 2 {
		return nil, fmt.Errorf("%w: got shape %v", ErrNotMatrix, v.Shape())
	}
	if v.Format() != mat.F32C1 {
		return nil, fmt.Errorf("%w: got %s", ErrNotSingleChannel, v.Format())
	}
	return v.Shape(), nil
}

func checkSame(views ...*view.View) (rows, cols int, err error) {
	first, err := checkMatrix(views[0])
	if err != nil {
		return 0, 0, err
	}
	for _, v := range views[1:] {
		shape, err := checkMatrix(v)
		if err != nil {
			return 0, 0, err
		}
		if !shape.Equal(first) {
			return 0, 0, fmt.Errorf("%w: %v vs %v", ErrShapeMismatch, first, shape)
		}
	}
	return first[0], first[1], nil
}

func toComplex(src []float32) []complex128 {
	out := make([]complex128, len(src))
	for i, x := range src {
		out[i] = complex(float64(x), 0)
	}
	return out
}

// fft2 transforms a row-major rows x cols grid in place: every row, then every
// column. Each worker chunk builds its own plan and scratch line.
func fft2(data []complex128, rows, cols int, inverse bool) error {
	var (
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	parallel.Range(rows, func(lo, hi int) {
		plan, err := algofft.NewPlan64(cols)
		if err != nil {
			fail(fmt.Errorf("correlate: failed to create FFT plan: %w", err))
			return
		}
		for r := lo; r < hi; r++ {
			line := data[r*cols : (r+1)*cols]
			if err := transform(plan, line, inverse); err != nil {
				fail(err)
				return
			}
		}
	}, cfg)
	if firstErr != nil {
		return firstErr
	}

	parallel.Range(cols, func(lo, hi int) {
		plan, err := algofft.NewPlan64(rows)
		if err != nil {
			fail(fmt.Errorf("correlate: failed to create FFT plan: %w", err))
			return
		}
		line := make([]complex128, rows)
		for c := lo; c < hi; c++ {
			for r := 0; r < rows; r++ {
				line[r] = data[r*cols+c]
			}
			if err := transform(plan, line, inverse); err != nil {
				fail(err)
				return
			}
			for r := 0; r < rows; r++ {
				data[r*cols+c] = line[r]
			}
		}
	}, cfg)
	return firstErr
}

func transform(plan *algofft.Plan[complex128], line []complex128, inverse bool) error {
	if inverse {
		if err := plan.Inverse(line, line); err != nil {
			return fmt.Errorf("correlate: inverse FFT failed: %w", err)
		}
		return nil
	}
	if err := plan.Forward(line, line); err != nil {
		return fmt.Errorf("correlate: forward FFT failed: %w", err)
	}
	return nil
}
