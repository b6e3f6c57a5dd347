// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package byteslicereader offers R, a cursor over a byte view that may be
// swapped out from underneath it.
//
// R is used to read from memory-mapped file views. When the backing file
// grows, the view is replaced with a larger one (see Reset) and the cursor
// position is retained, so a reader can continue where it left off.
//
// R's read methods copy out of the Buffer, so their results remain valid after
// a memory-mapped view is unmapped.
package byteslicereader

import (
	"io"
)

// R is a read cursor over Buffer.
//
// Unlike a typical reader, R's end-of-buffer position is a valid position: a
// view represents a stream that may still be appended to, and the position
// right after the last byte is where the next appended byte will be read.
//
// R can be copied, creating a snapshot of its current state.
type R struct {
	// Buffer is the backing buffer for this reader.
	Buffer []byte

	// pos is the R's position within Buffer. It may exceed len(Buffer) if it
	// was set explicitly.
	pos int64
}

var _ io.ByteReader = (*R)(nil)

// Reset replaces R's Buffer with buf, retaining the current position.
func (r *R) Reset(buf []byte) { r.Buffer = buf }

// Position returns R's current position.
func (r *R) Position() int64 { return r.pos }

// SetPosition sets R's position. It is not checked against Buffer.
func (r *R) SetPosition(pos int64) { r.pos = pos }

// Size returns the size of the Buffer.
func (r *R) Size() int64 { return int64(len(r.Buffer)) }

func (r *R) remainingSlice() []byte {
	if r.pos < 0 || r.pos >= int64(len(r.Buffer)) {
		return nil
	}
	return r.Buffer[r.pos:]
}

// ReadFull fills b from the reader.
//
// ReadFull is all-or-nothing: if fewer than len(b) bytes remain, nothing is
// consumed and io.EOF is returned.
func (r *R) ReadFull(b []byte) error {
	remaining := r.remainingSlice()
	if len(remaining) < len(b) {
		return io.EOF
	}

	r.pos += int64(copy(b, remaining))
	return nil
}

// ReadByte implements io.ByteReader.
func (r *R) ReadByte() (b byte, err error) {
	if r.pos < 0 || r.pos >= int64(len(r.Buffer)) {
		return 0, io.EOF
	}

	b, r.pos = r.Buffer[r.pos], r.pos+1
	return
}
