package buffer

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrSizeMismatch      = errors.New("buffer element counts differ")
	ErrEmpty             = errors.New("buffer owns no storage")
	ErrInvalidSize       = errors.New("allocation size must be positive")
	ErrTooLarge          = errors.New("allocation size overflows int")
	ErrMappedUnsupported = errors.New("mapped pinned memory is not supported on this platform")
	ErrUnknownBlock      = errors.New("block was not allocated by this allocator")
)

// AllocError reports a failed allocation. It is the panic value of New when the
// allocator cannot satisfy a request.
type AllocError struct {
	Mode  Mode
	Bytes int
	Err   error
}

// Error implements the error interface.
func (e *AllocError) Error() string {
	return fmt.Sprintf("buffer: %s allocation of %d bytes failed: %v", e.Mode, e.Bytes, e.Err)
}

// Unwrap returns the underlying allocator error.
func (e *AllocError) Unwrap() error {
	return e.Err
}
