package mat

import (
	"fmt"

	"github.com/born-ml/dynmem/internal/parallel"
)

// Expr is a lazy element-wise matrix expression. Nothing is computed until the
// expression is evaluated into a destination with Eval or Dense.Assign.
// *Dense is itself an Expr leaf.
type Expr interface {
	Shape() Shape
	Format() Format

	// at returns scalar i of the result.
	at(i int) float32
	// validate reports operand shape or format mismatches.
	validate() error
}

// evalConfig controls chunked evaluation.
var evalConfig = parallel.DefaultConfig()

// Eval evaluates e into dst, which must hold exactly one scalar per result scalar.
// dst may alias an operand: every result scalar depends only on operand scalars
// at the same position.
func Eval(e Expr, dst []float32) error {
	if err := e.validate(); err != nil {
		return err
	}
	want := e.Shape().NumElements() * e.Format().Channels()
	if len(dst) != want {
		return fmt.Errorf("%w: destination holds %d scalars, expression yields %d", ErrDataLength, len(dst), want)
	}
	parallel.Range(len(dst), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			dst[i] = e.at(i)
		}
	}, evalConfig)
	return nil
}

type binary struct {
	a, b Expr
	op   func(x, y float32) float32
	name string
}

func (e *binary) Shape() Shape     { return e.a.Shape() }
func (e *binary) Format() Format   { return e.a.Format() }
func (e *binary) at(i int) float32 { return e.op(e.a.at(i), e.b.at(i)) }

func (e *binary) validate() error {
	if err := e.a.validate(); err != nil {
		return err
	}
	if err := e.b.validate(); err != nil {
		return err
	}
	if !e.a.Shape().Equal(e.b.Shape()) {
		return fmt.Errorf("%s: %w: %v vs %v", e.name, ErrShapeMismatch, e.a.Shape(), e.b.Shape())
	}
	if e.a.Format() != e.b.Format() {
		return fmt.Errorf("%s: %w: %s vs %s", e.name, ErrFormatMismatch, e.a.Format(), e.b.Format())
	}
	return nil
}

type unary struct {
	a  Expr
	op func(x float32) float32
}

func (e *unary) Shape() Shape     { return e.a.Shape() }
func (e *unary) Format() Format   { return e.a.Format() }
func (e *unary) at(i int) float32 { return e.op(e.a.at(i)) }
func (e *unary) validate() error  { return e.a.validate() }

// Add returns the element-wise sum a + b.
func Add(a, b Expr) Expr {
	return &binary{a: a, b: b, name: "add", op: func(x, y float32) float32 { return x + y }}
}

// Sub returns the element-wise difference a - b.
func Sub(a, b Expr) Expr {
	return &binary{a: a, b: b, name: "sub", op: func(x, y float32) float32 { return x - y }}
}

// Mul returns the element-wise product a * b.
func Mul(a, b Expr) Expr {
	return &binary{a: a, b: b, name: "mul", op: func(x, y float32) float32 { return x * y }}
}

// Scale returns a * s.
func Scale(a Expr, s float32) Expr {
	return &unary{a: a, op: func(x float32) float32 { return x * s }}
}

// AddScalar returns a + s.
func AddScalar(a Expr, s float32) Expr {
	return &unary{a: a, op: func(x float32) float32 { return x + s }}
}
