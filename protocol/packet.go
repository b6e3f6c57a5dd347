// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package protocol defines the interface between replay stream formats and the
// sources they are read from.
//
// An Engine inspects the beginning of a stream and identifies its Kind. A Kind
// then reads the stream one Packet at a time. Packet payloads are not read
// until asked for, so a Packet can be skipped cheaply; this is what allows a
// live source to scan a growing file for record boundaries.
package protocol

import (
	"github.com/Rupas1k/clarity/source"

	"github.com/golang/snappy"
	"github.com/pkg/errors"
)

// MaxPacketSize is the largest payload, compressed or decompressed, that a
// Packet may carry.
const MaxPacketSize = 64 << 20

// ErrPacketTooLarge is returned when a packet's payload exceeds MaxPacketSize.
var ErrPacketTooLarge = errors.New("packet too large")

// Engine identifies stream formats.
type Engine interface {
	// Identify reads the stream prefix from s, which is positioned at offset 0,
	// and returns the Kind of the stream. On success, s is left positioned at
	// the first packet.
	Identify(s source.Source) (Kind, error)
}

// Kind is an identified stream format.
type Kind interface {
	// String returns the name of the format.
	String() string

	// NextPacket reads the next packet header from s.
	//
	// The packet's payload is left unread; s is positioned at its first byte.
	NextPacket(s source.Source) (*Packet, error)

	// IsTerminal returns true if pkt marks the end of the recording.
	IsTerminal(pkt *Packet) bool
}

// Packet is a single record in a replay stream.
//
// A Packet references the Source it was read from. Its payload can be read
// with Data or passed over with Skip, but only while the Source is still
// positioned within the packet.
type Packet struct {
	// Command is the packet's format-specific command.
	Command int32
	// Compressed is true if the payload is snappy-compressed.
	Compressed bool
	// Tick is the packet's tick.
	Tick int32
	// Size is the size of the payload on the wire.
	Size int
	// Offset is the offset of the payload within the Source.
	Offset int64

	// Source is the Source the packet was read from.
	Source source.Source
}

// End returns the offset of the first byte after the packet.
func (p *Packet) End() int64 { return p.Offset + int64(p.Size) }

// Skip positions the Source after the packet.
func (p *Packet) Skip() error { return p.Source.SeekTo(p.End()) }

// Data reads the packet's payload, decompressing it if necessary, and leaves
// the Source positioned after the packet.
func (p *Packet) Data() ([]byte, error) {
	if p.Source.Position() != p.Offset {
		if err := p.Source.SeekTo(p.Offset); err != nil {
			return nil, err
		}
	}

	if p.Size < 0 || p.Size > MaxPacketSize {
		return nil, errors.Wrapf(ErrPacketTooLarge, "%d-byte payload", p.Size)
	}

	raw := make([]byte, p.Size)
	if err := p.Source.ReadBytes(raw); err != nil {
		return nil, err
	}
	if !p.Compressed {
		return raw, nil
	}

	switch n, err := snappy.DecodedLen(raw); {
	case err != nil:
		return nil, errors.Wrap(err, "reading decompressed size")
	case n > MaxPacketSize:
		return nil, errors.Wrapf(ErrPacketTooLarge, "%d-byte decompressed payload", n)
	}

	data, err := snappy.Decode(nil, raw)
	if err != nil {
		return nil, errors.Wrapf(err, "decompressing %d-byte payload", p.Size)
	}
	return data, nil
}
