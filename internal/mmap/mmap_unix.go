//go:build unix

package mmap

import (
	"io"
	"os"

	"golang.org/x/sys/unix"
)

func mapFile(f *os.File, size int) ([]byte, bool, error) {
	b, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err == nil {
		return b, true, nil
	}

	// some filesystems refuse mappings; fall back to reading the file
	buf := make([]byte, size)
	if _, rerr := io.ReadFull(f, buf); rerr != nil {
		return nil, false, rerr
	}

	return buf, false, nil
}

func unmap(b []byte) error {
	return unix.Munmap(b)
}
