// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package source

import (
	"io"
	"os"

	"github.com/Rupas1k/clarity/support/byteslicereader"
	"github.com/Rupas1k/clarity/support/mmap"

	"github.com/pkg/errors"
)

// Static is a Source over data that is entirely available. It never blocks;
// reads past the end of its data return io.EOF.
//
// Static is not safe for concurrent use.
type Static struct {
	Base

	r    byteslicereader.R
	view *mmap.View
}

var _ Source = (*Static)(nil)

// Bytes returns a Static Source that reads from buf.
func Bytes(buf []byte) *Static {
	s := Static{}
	s.r.Reset(buf)
	return &s
}

// OpenFile returns a Static Source that reads the file at path through a
// read-only memory mapping.
//
// The returned Source must be closed to release the mapping.
func OpenFile(path string) (*Static, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	st, err := fd.Stat()
	if err != nil {
		return nil, errors.Wrap(err, "stat")
	}

	view, err := mmap.Map(fd, st.Size())
	if err != nil {
		return nil, err
	}

	s := Static{view: view}
	s.r.Reset(view.Bytes())
	return &s, nil
}

// Close releases the Source's mapping, if it has one.
func (s *Static) Close() error {
	s.r.Reset(nil)
	return s.view.Unmap()
}

// Size returns the number of bytes in the Source.
func (s *Static) Size() int64 { return s.r.Size() }

// Position implements Source.
func (s *Static) Position() int64 { return s.r.Position() }

// SeekTo implements Source.
//
// Seeking past the end of the data returns io.EOF.
func (s *Static) SeekTo(offset int64) error {
	switch {
	case offset < 0:
		return errors.Errorf("invalid offset %d", offset)
	case offset > s.r.Size():
		return io.EOF
	}
	s.r.SetPosition(offset)
	return nil
}

// ReadByte implements Source.
func (s *Static) ReadByte() (byte, error) { return s.r.ReadByte() }

// ReadBytes implements Source.
func (s *Static) ReadBytes(p []byte) error { return s.r.ReadFull(p) }
