// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package source defines Source, a seekable byte cursor that replay decoders
// read from, along with its static implementations.
//
// A Source is either static, in which case all of its data is available up
// front (Bytes, OpenFile), or live, in which case it represents a file that is
// still being written and reads block until data arrives (see the "live"
// subpackage). Decoders do not need to know the difference.
//
// End of stream is reported as io.EOF.
package source

import (
	"github.com/pkg/errors"
)

var (
	// ErrAborted is returned by every blocking operation on a Source that has
	// been stopped. It is permanent.
	ErrAborted = errors.New("source aborted")

	// ErrTimeout is returned when a blocking operation waited too long for data
	// to arrive, or when a timeout was forced.
	ErrTimeout = errors.New("timeout while waiting for data")

	// ErrFault is returned when the backing memory of a Source became
	// inaccessible during a read, typically because the underlying file was
	// truncated while mapped.
	ErrFault = errors.New("fault while reading mapped data")
)

// Source is a seekable byte cursor with an associated "last tick": the
// sequence number of the latest record boundary known to be readable.
//
// A Source supports a single logical reader. Implementations may be safe for
// concurrent calls, but concurrent readers race on the shared position.
type Source interface {
	// Position returns the current byte offset.
	Position() int64

	// SeekTo sets the current byte offset.
	SeekTo(offset int64) error

	// ReadByte reads a single byte.
	ReadByte() (byte, error)

	// ReadBytes fills p. It either reads exactly len(p) bytes or returns an
	// error, in which case the position is unchanged.
	ReadBytes(p []byte) error

	// LastTick returns the last known tick.
	LastTick() int32
	// SetLastTick sets the last known tick.
	SetLastTick(tick int32)
}

// FinishObserver is implemented by Sources that want to know when a decoder
// observed an in-band stream-finished marker.
type FinishObserver interface {
	// StreamFinished is called after the decoder read a terminal record. No more
	// data will follow the current position.
	StreamFinished()
}

// Stopper is implemented by Sources whose blocking operations can be aborted.
type Stopper interface {
	// Stop permanently aborts the Source.
	Stop()
}

// Base holds the state shared by Source implementations.
//
// Base is not safe for concurrent use; Sources that are must guard it.
type Base struct {
	lastTick int32
}

// LastTick returns the last known tick.
func (b *Base) LastTick() int32 { return b.lastTick }

// SetLastTick sets the last known tick.
func (b *Base) SetLastTick(tick int32) { b.lastTick = tick }
