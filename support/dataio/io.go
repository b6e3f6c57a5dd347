// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package dataio contains small adapters between the standard io interfaces
// and the byte-oriented readers and writers used by stream codecs.
package dataio

import (
	"io"
)

// Reader represents a Reader that can read both individual bytes and
// sequences of bytes.
type Reader interface {
	io.Reader
	io.ByteReader
}

// CountingWriter is a Writer that tracks the number of bytes written through
// it.
type CountingWriter struct {
	// W is the underlying Writer.
	W io.Writer

	// Count is the number of bytes that have been written.
	Count int64
}

func (cw *CountingWriter) Write(d []byte) (int, error) {
	amt, err := cw.W.Write(d)
	cw.Count += int64(amt)
	return amt, err
}
