package mat

import "errors"

// Common errors.
var (
	ErrShapeMismatch    = errors.New("matrix shapes differ")
	ErrFormatMismatch   = errors.New("matrix formats differ")
	ErrUnsupportedDepth = errors.New("dense matrices hold float32 scalars only")
	ErrDataLength       = errors.New("data length does not match shape and channels")
	ErrShapeOverflow    = errors.New("element count overflows int")
)
