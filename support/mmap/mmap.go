// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package mmap maps files into memory read-only and releases them
// deterministically.
//
// Go's runtime never unmaps memory on its own, so every View returned by Map
// must be released with Unmap. Once released, any slice obtained from the View
// must not be touched.
package mmap

import (
	"os"

	"github.com/pkg/errors"
)

// View is a read-only mapping of a file's contents.
type View struct {
	data   []byte
	mapped bool
}

// Bytes returns the mapped bytes. The slice is invalid after Unmap.
func (v *View) Bytes() []byte {
	if v == nil {
		return nil
	}
	return v.data
}

// Len returns the size of the view.
func (v *View) Len() int { return len(v.Bytes()) }

// Map maps the first size bytes of f.
//
// A size of zero yields an empty View that holds no mapping; most platforms
// refuse to map zero bytes.
func Map(f *os.File, size int64) (*View, error) {
	switch {
	case size < 0:
		return nil, errors.Errorf("invalid mapping size %d", size)
	case size == 0:
		return &View{}, nil
	case int64(int(size)) != size:
		return nil, errors.Errorf("file too large to map (%d bytes)", size)
	}

	data, err := mapFile(f, int(size))
	if err != nil {
		return nil, errors.Wrapf(err, "mapping %d bytes of %q", size, f.Name())
	}
	return &View{data: data, mapped: true}, nil
}

// Unmap releases v. It is safe to call on a nil or already-released View.
func (v *View) Unmap() error {
	if v == nil || !v.mapped {
		return nil
	}

	data := v.data
	v.data, v.mapped = nil, false
	if err := unmapFile(data); err != nil {
		return errors.Wrap(err, "unmapping view")
	}
	return nil
}
