// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package demo

import (
	"bytes"
	"io"

	"github.com/Rupas1k/clarity/support/dataio"

	"github.com/golang/protobuf/proto"
	"github.com/golang/protobuf/ptypes/empty"
	"github.com/golang/snappy"
	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"
)

// Writer writes a demo file.
//
// Each header and packet is written to the underlying Writer with a single
// Write call, so a reader tailing the output never observes a packet whose
// framing was split by a buffer boundary on the writer's side.
//
// Writer is not safe for concurrent use.
type Writer struct {
	cw  dataio.CountingWriter
	buf *proto.Buffer

	numPackets int64
}

// NewWriter returns a Writer that writes to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		cw:  dataio.CountingWriter{W: w},
		buf: proto.NewBuffer(nil),
	}
}

// NumBytes returns the number of bytes written so far.
func (w *Writer) NumBytes() int64 { return w.cw.Count }

// NumPackets returns the number of packets written so far.
func (w *Writer) NumPackets() int64 { return w.numPackets }

// WriteHeader writes a file header for k. It must be called first.
func (w *Writer) WriteHeader(k Kind) error {
	magic := k.magic()
	if magic == nil {
		return errors.Errorf("cannot write header for %s", k)
	}

	var hb bytes.Buffer
	hb.Write(magic)

	var err error
	switch k {
	case Source1:
		err = struc.Pack(&hb, &source1Header{})
	case Source2:
		err = struc.Pack(&hb, &source2Header{})
	}
	if err != nil {
		return errors.Wrap(err, "packing header")
	}

	_, err = w.cw.Write(hb.Bytes())
	return err
}

// WritePacket writes a single packet. If compress is true, payload is
// snappy-compressed.
func (w *Writer) WritePacket(cmd Command, tick int32, payload []byte, compress bool) error {
	if cmd < 0 || cmd&IsCompressed != 0 {
		return errors.Errorf("invalid command %d", int32(cmd))
	}
	if compress {
		payload = snappy.Encode(nil, payload)
		cmd |= IsCompressed
	}

	w.buf.Reset()
	for _, v := range []uint64{uint64(cmd), uint64(uint32(tick)), uint64(len(payload))} {
		if err := w.buf.EncodeVarint(v); err != nil {
			return err
		}
	}
	frame := append(w.buf.Bytes(), payload...)

	if _, err := w.cw.Write(frame); err != nil {
		return err
	}
	w.numPackets++
	return nil
}

// WriteStop writes the Stop packet that ends a recording.
func (w *Writer) WriteStop(tick int32) error {
	// The stop message carries no fields.
	payload, err := proto.Marshal(&empty.Empty{})
	if err != nil {
		return errors.Wrap(err, "marshalling stop message")
	}
	return w.WritePacket(CommandStop, tick, payload, false)
}
