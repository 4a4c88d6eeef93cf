//go:build unix

package main

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// mapFile memory-maps a file read-only and returns the mapped bytes with a
// cleanup function that unmaps and closes. The data slice must not be used
// after cleanup runs.
func mapFile(name string) ([]byte, func(), error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, err
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("stat %s: %w", name, err)
	}

	size := stat.Size()
	if size == 0 {
		return nil, func() { f.Close() }, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("mmap %s: %w", name, err)
	}

	cleanup := func() {
		_ = unix.Munmap(data)
		f.Close()
	}
	return data, cleanup, nil
}
