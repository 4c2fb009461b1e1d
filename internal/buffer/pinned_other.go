//go:build !unix

package buffer

func mapPages(int) ([]byte, error) {
	return nil, ErrMappedUnsupported
}

var unmapPages = func([]byte) error {
	return ErrMappedUnsupported
}

func lockPages([]byte) error {
	return ErrMappedUnsupported
}

var unlockPages = func([]byte) error {
	return ErrMappedUnsupported
}
