// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

//go:build !(linux || darwin || freebsd || openbsd || netbsd || dragonfly)

package mmap

import (
	"io"
	"os"
)

// mapFile reads the file into memory on platforms without a unix mmap. The
// resulting View behaves identically, minus the shared page cache.
func mapFile(f *os.File, size int) ([]byte, error) {
	data := make([]byte, size)
	if _, err := f.ReadAt(data, 0); err != nil && err != io.EOF {
		return nil, err
	}
	return data, nil
}

func unmapFile(data []byte) error { return nil }
