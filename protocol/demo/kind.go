// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package demo

import (
	"bytes"
	"fmt"

	"github.com/Rupas1k/clarity/protocol"
	"github.com/Rupas1k/clarity/source"

	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"
)

// ErrUnknownFormat is returned by Identify when the stream does not start with
// a known demo magic.
var ErrUnknownFormat = errors.New("unknown demo format")

const magicSize = 8

var (
	source1Magic = []byte("PBUFDEM\x00")
	source2Magic = []byte("PBDEMS2\x00")
)

// Kind is a demo engine generation.
type Kind int

const (
	// Source1 is a Source 1 demo.
	Source1 Kind = iota + 1
	// Source2 is a Source 2 demo.
	Source2
)

var _ protocol.Kind = Source2

func (k Kind) String() string {
	switch k {
	case Source1:
		return "SOURCE1"
	case Source2:
		return "SOURCE2"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(k))
	}
}

func (k Kind) magic() []byte {
	switch k {
	case Source1:
		return source1Magic
	case Source2:
		return source2Magic
	default:
		return nil
	}
}

// HeaderSize returns the size of k's file header, including its magic.
func (k Kind) HeaderSize() int64 {
	switch k {
	case Source1:
		return magicSize + 4
	case Source2:
		return magicSize + 8
	default:
		return 0
	}
}

// NextPacket implements protocol.Kind.
func (k Kind) NextPacket(s source.Source) (*protocol.Packet, error) {
	cmd, err := readVarint32(s)
	if err != nil {
		return nil, err
	}
	tick, err := readVarint32(s)
	if err != nil {
		return nil, err
	}
	size, err := readVarint32(s)
	if err != nil {
		return nil, err
	}
	if size > protocol.MaxPacketSize {
		return nil, errors.Wrapf(protocol.ErrPacketTooLarge, "%d-byte packet at offset %d", size, s.Position())
	}

	pkt := protocol.Packet{
		Command:    int32(Command(cmd) &^ IsCompressed),
		Compressed: Command(cmd)&IsCompressed != 0,
		Tick:       int32(tick),
		Size:       int(size),
		Offset:     s.Position(),
		Source:     s,
	}
	return &pkt, nil
}

// IsTerminal implements protocol.Kind. The Stop packet is terminal.
func (k Kind) IsTerminal(pkt *protocol.Packet) bool {
	return Command(pkt.Command) == CommandStop
}

// Header is a demo file header.
type Header struct {
	// Kind is the demo's engine generation.
	Kind Kind

	// FileInfoOffset is the offset of the FileInfo packet. A live recording
	// writes this once the recording is finished, so it is generally zero.
	FileInfoOffset int32
	// SpawnGroupsOffset is the offset of the spawn groups packet. It is only
	// present in Source 2 demos.
	SpawnGroupsOffset int32
}

type source1Header struct {
	FileInfoOffset int32 `struc:",little"`
}

type source2Header struct {
	FileInfoOffset    int32 `struc:",little"`
	SpawnGroupsOffset int32 `struc:",little"`
}

// Engine identifies demo files. It implements protocol.Engine.
type Engine struct{}

var _ protocol.Engine = Engine{}

// Identify implements protocol.Engine.
func (e Engine) Identify(s source.Source) (protocol.Kind, error) {
	hdr, err := ReadHeader(s)
	if err != nil {
		return nil, err
	}
	return hdr.Kind, nil
}

// ReadHeader reads a demo file header from s.
func ReadHeader(s source.Source) (*Header, error) {
	magic := make([]byte, magicSize)
	if err := s.ReadBytes(magic); err != nil {
		return nil, err
	}

	var hdr Header
	r := source.Reader(s)
	switch {
	case bytes.Equal(magic, source2Magic):
		var h source2Header
		if err := struc.Unpack(r, &h); err != nil {
			return nil, errors.Wrap(err, "reading Source 2 header")
		}
		hdr.Kind, hdr.FileInfoOffset, hdr.SpawnGroupsOffset = Source2, h.FileInfoOffset, h.SpawnGroupsOffset

	case bytes.Equal(magic, source1Magic):
		var h source1Header
		if err := struc.Unpack(r, &h); err != nil {
			return nil, errors.Wrap(err, "reading Source 1 header")
		}
		hdr.Kind, hdr.FileInfoOffset = Source1, h.FileInfoOffset

	default:
		return nil, errors.Wrapf(ErrUnknownFormat, "magic % X", magic)
	}
	return &hdr, nil
}
