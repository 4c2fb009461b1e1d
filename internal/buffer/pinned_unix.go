//go:build unix

package buffer

import (
	"os"

	"golang.org/x/sys/unix"
)

// mapPages maps anonymous shared memory of at least n bytes, rounded up to
// whole pages. The returned slice has length n and page-rounded capacity.
func mapPages(n int) ([]byte, error) {
	page := os.Getpagesize()
	size := (n + page - 1) / page * page
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_SHARED)
	if err != nil {
		return nil, err
	}
	return data[:n], nil
}

// unmapPages and unlockPages are variables so tests can inject failures.
var unmapPages = func(b []byte) error {
	return unix.Munmap(b[:cap(b)])
}

func lockPages(b []byte) error {
	return unix.Mlock(b[:cap(b)])
}

var unlockPages = func(b []byte) error {
	return unix.Munlock(b[:cap(b)])
}
