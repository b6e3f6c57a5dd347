// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package replay

import (
	"context"
	"io"
	"sync"

	"github.com/Rupas1k/clarity/protocol"
	"github.com/Rupas1k/clarity/protocol/demo"
	"github.com/Rupas1k/clarity/source"
	"github.com/Rupas1k/clarity/support/logging"

	"github.com/pkg/errors"
)

// Runner reads a replay stream from a Source and hands each packet to a
// callback.
//
// A Runner is not safe for concurrent use, except for Status. Its exported
// fields must not be changed after Run has been called.
type Runner struct {
	// Engine identifies the stream format. If nil, the demo file engine is used.
	Engine protocol.Engine

	// OnPacket receives every packet, along with its decompressed payload. It
	// must not be nil.
	//
	// OnPacket calls are made synchronously. If OnPacket returns an error, Run
	// stops and returns it.
	OnPacket func(kind protocol.Kind, pkt *protocol.Packet, data []byte) error

	// RetryTimeouts, if true, causes a read that timed out to be retried from
	// the start of its packet instead of failing the run.
	RetryTimeouts bool

	// Logger is the logger instance to use. If nil, no logging will be
	// performed.
	Logger logging.L

	statusMu sync.Mutex
	status   RunnerStatus
}

// RunnerStatus describes a Runner's progress.
type RunnerStatus struct {
	Kind     string
	Packets  int64
	Bytes    int64
	Position int64
	LastTick int32
	Finished bool
}

// Status returns a snapshot of the Runner's progress.
func (r *Runner) Status() RunnerStatus {
	r.statusMu.Lock()
	defer r.statusMu.Unlock()
	return r.status
}

func (r *Runner) updateStatus(fn func(st *RunnerStatus)) {
	r.statusMu.Lock()
	defer r.statusMu.Unlock()
	fn(&r.status)
}

// Run reads src from its beginning until the stream's terminal packet, the end
// of src, or an error.
//
// When the terminal packet is read, Run informs src if it is a
// source.FinishObserver and returns nil.
//
// If c is cancelled while Run is blocked on a source.Stopper, src is stopped
// and c's error is returned. Stopping is permanent.
func (r *Runner) Run(c context.Context, src source.Source) error {
	if r.OnPacket == nil {
		return errors.New("no OnPacket callback")
	}
	logger := logging.Must(r.Logger)

	runnerActiveGauge.Inc()
	defer runnerActiveGauge.Dec()

	// Stop the Source when our Context is cancelled.
	if stopper, ok := src.(source.Stopper); ok {
		doneC := make(chan struct{})
		defer close(doneC)

		go func() {
			select {
			case <-c.Done():
				logger.Debugf("Context cancelled, stopping source.")
				stopper.Stop()
			case <-doneC:
			}
		}()
	}

	err := r.run(c, src, logger)
	switch errors.Cause(err) {
	case nil, context.Canceled, context.DeadlineExceeded:
		return err

	case source.ErrAborted:
		if cerr := c.Err(); cerr != nil {
			return cerr
		}
		return err

	default:
		runnerErrors.Inc()
		return err
	}
}

func (r *Runner) run(c context.Context, src source.Source, logger logging.L) error {
	engine := r.Engine
	if engine == nil {
		engine = demo.Engine{}
	}

	var kind protocol.Kind
	err := r.retry(src, 0, logger, func() (err error) {
		if err = src.SeekTo(0); err != nil {
			return
		}
		kind, err = engine.Identify(src)
		return
	})
	if err != nil {
		return errors.Wrap(err, "identifying stream")
	}
	logger.Infof("Identified %s stream.", kind)
	r.updateStatus(func(st *RunnerStatus) { st.Kind = kind.String() })

	for {
		if err := c.Err(); err != nil {
			return err
		}

		var (
			pkt  *protocol.Packet
			data []byte
		)
		err := r.retry(src, src.Position(), logger, func() (err error) {
			if pkt, err = kind.NextPacket(src); err != nil {
				return
			}
			data, err = pkt.Data()
			return
		})
		switch {
		case errors.Cause(err) == io.EOF:
			logger.Debugf("Hit EOF reading packets.")
			return nil
		case err != nil:
			return errors.Wrapf(err, "reading packet at offset %d", src.Position())
		}

		if err := r.OnPacket(kind, pkt, data); err != nil {
			return err
		}

		runnerPackets.Inc()
		runnerBytes.Add(float64(len(data)))
		r.updateStatus(func(st *RunnerStatus) {
			st.Packets++
			st.Bytes += int64(len(data))
			st.Position = pkt.End()
			st.LastTick = pkt.Tick
		})

		if kind.IsTerminal(pkt) {
			logger.Infof("Stream finished at tick %d.", pkt.Tick)
			if fo, ok := src.(source.FinishObserver); ok {
				fo.StreamFinished()
			}
			r.updateStatus(func(st *RunnerStatus) { st.Finished = true })
			return nil
		}
	}
}

// retry calls fn. If fn times out and timeouts are retried, src is returned to
// offset and fn is called again.
func (r *Runner) retry(src source.Source, offset int64, logger logging.L, fn func() error) error {
	for attempt := 0; ; attempt++ {
		err := func() error {
			if attempt > 0 {
				if err := src.SeekTo(offset); err != nil {
					return err
				}
			}
			return fn()
		}()
		if !r.RetryTimeouts || errors.Cause(err) != source.ErrTimeout {
			return err
		}

		runnerTimeouts.Inc()
		logger.Infof("Timed out waiting for data at offset %d, retrying.", offset)
	}
}
