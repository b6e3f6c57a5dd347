// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package replay

import (
	"io"
	"sync"

	"github.com/Rupas1k/clarity/protocol/demo"

	"github.com/pkg/errors"
)

// RecorderStatus is a snapshot of the current recorder status.
type RecorderStatus struct {
	Name     string
	Error    error
	Packets  int64
	Bytes    int64
	LastTick int32
}

// A Recorder writes packets to a demo file, such as one that is being tailed
// by a live Source.
//
// Recorder is safe for concurrent use.
type Recorder struct {
	// Kind is the demo kind to record. If zero, demo.Source2 is used.
	Kind demo.Kind

	// Compress, if true, causes packet payloads to be snappy-compressed.
	Compress bool

	mu sync.Mutex
	// w is the currently-active output.
	w io.WriteCloser
	// dw writes the demo format to w.
	dw *demo.Writer
	// lastTick is the tick of the last recorded packet.
	lastTick int32
	// recvErr is an error that occurred while recording a packet.
	recvErr error
}

// Start starts recording to w, beginning with the demo file header.
//
// The recording will continue until the Stop method is called.
//
// Start will take ownership of w and close it on completion (Stop).
func (r *Recorder) Start(w io.WriteCloser) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.w != nil {
		panic("already started")
	}

	kind := r.Kind
	if kind == 0 {
		kind = demo.Source2
	}

	dw := demo.NewWriter(w)
	if err := dw.WriteHeader(kind); err != nil {
		recorderErrors.WithLabelValues("header").Inc()
		return errors.Wrap(err, "writing header")
	}

	r.w, r.dw = w, dw
	r.lastTick, r.recvErr = 0, nil
	recorderRecordingGauge.Inc()
	return nil
}

// Stop stops the Recorder, writing the terminal Stop packet at tick and
// closing its output.
//
// If a packet could not be recorded, its error is returned.
func (r *Recorder) Stop(tick int32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.w == nil {
		return nil
	}

	// Finalize our recorded file.
	var err error
	if r.recvErr == nil {
		err = r.dw.WriteStop(tick)
	}
	if cerr := r.w.Close(); err == nil {
		err = cerr
	}
	r.w, r.dw = nil, nil

	// Propagate our receive error, if finalizing didn't return an error.
	if err == nil {
		err = r.recvErr
	}
	r.recvErr = nil

	recorderRecordingGauge.Dec()
	return err
}

// Status returns a snapshot of the current Recorder status.
//
// If the Recorder is not currently recording, Status will return nil.
func (r *Recorder) Status() *RecorderStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.w == nil {
		return nil
	}

	st := RecorderStatus{
		Error:    r.recvErr,
		Packets:  r.dw.NumPackets(),
		Bytes:    r.dw.NumBytes(),
		LastTick: r.lastTick,
	}
	if n, ok := r.w.(interface{ Name() string }); ok {
		st.Name = n.Name()
	}
	return &st
}

// RecordPacket adds a packet to the recording.
func (r *Recorder) RecordPacket(cmd demo.Command, tick int32, data []byte) error {
	recorderPackets.Inc()

	r.mu.Lock()
	defer r.mu.Unlock()

	// If we've been stopped, then do nothing.
	if r.w == nil {
		return nil
	}

	// We're already in an error state.
	if r.recvErr != nil {
		return r.recvErr
	}

	if cmd == demo.CommandStop {
		recorderErrors.WithLabelValues("command").Inc()
		return errors.New("the Stop packet is written by Stop")
	}

	if err := r.dw.WritePacket(cmd, tick, data, r.Compress); err != nil {
		// Record the error. We're done; let's not waste time on more packets.
		recorderErrors.WithLabelValues("write").Inc()
		r.recvErr = err
		return err
	}

	recorderBytes.Add(float64(len(data)))
	r.lastTick = tick
	return nil
}
