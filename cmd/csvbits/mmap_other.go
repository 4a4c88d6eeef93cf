//go:build !unix

package main

import "os"

// mapFile falls back to reading the whole file on platforms without mmap.
func mapFile(name string) ([]byte, func(), error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, nil, err
	}
	return data, func() {}, nil
}
