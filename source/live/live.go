// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package live

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/Rupas1k/clarity/protocol"
	"github.com/Rupas1k/clarity/protocol/demo"
	"github.com/Rupas1k/clarity/source"
	"github.com/Rupas1k/clarity/support/byteslicereader"
	"github.com/Rupas1k/clarity/support/logging"

	"github.com/pkg/errors"
)

const (
	// DefaultTimeout is the default amount of time a single blocking wait may
	// last.
	DefaultTimeout = 10 * time.Second

	// DefaultPollInterval is the default watcher fallback poll interval.
	DefaultPollInterval = 250 * time.Millisecond
)

// Config is the configuration for a live Source.
type Config struct {
	// Timeout is the longest that a single blocking wait for data may last. If
	// not positive, DefaultTimeout will be used.
	Timeout time.Duration

	// PollInterval is how often the watcher checks the file directly when no
	// change notification arrived. If not positive, DefaultPollInterval will be
	// used.
	PollInterval time.Duration

	// Engine identifies the stream format for the recovery scan. If nil, the
	// demo file engine is used.
	Engine protocol.Engine

	// Logger is the logger instance to use. If nil, no logging will be
	// performed.
	Logger logging.L
}

func (cfg *Config) timeout() time.Duration {
	if cfg.Timeout > 0 {
		return cfg.Timeout
	}
	return DefaultTimeout
}

func (cfg *Config) pollInterval() time.Duration {
	if cfg.PollInterval > 0 {
		return cfg.PollInterval
	}
	return DefaultPollInterval
}

func (cfg *Config) engine() protocol.Engine {
	if cfg.Engine != nil {
		return cfg.Engine
	}
	return demo.Engine{}
}

// Source is a source.Source that tails a growing file.
//
// Source must be created with New and released with Close.
type Source struct {
	path    string
	timeout time.Duration
	engine  protocol.Engine
	logger  logging.L

	w         *watcher
	closeOnce sync.Once

	mu sync.Mutex
	// changedC is closed, and replaced, to wake all blocked readers.
	changedC chan struct{}

	base source.Base

	// m is the current file binding. It is nil if the file does not exist.
	m *mapping
	// r is the cursor over m's view. Its position survives remaps.
	r byteslicereader.R

	// lastTickOffset is the end offset of the last packet confirmed by the
	// scanner, or -1 if there is none.
	lastTickOffset int64
	// nextTickOffset is the offset at which the scanner resumes.
	nextTickOffset int64
	// kind is the stream format, identified when scanning offset 0.
	kind protocol.Kind

	// finished is true if a terminal packet was observed at finishedAt.
	finished   bool
	finishedAt int64
	// aborted is true once Stop was called. It is never cleared.
	aborted bool
	// timeoutForced is a one-shot request to fail a blocking read.
	timeoutForced bool
	// blockingSuspended is true while the scanner runs, so that its reads
	// fail immediately instead of waiting.
	blockingSuspended bool
	// closed is true once Close was called.
	closed bool
}

var _ interface {
	source.Source
	source.FinishObserver
	source.Stopper
} = (*Source)(nil)

// New creates a Source that tails the file at path.
//
// The file does not need to exist yet. If cfg is nil, a default configuration
// will be used.
//
// The Source starts watching path immediately. It must be closed by calling
// Close when finished.
func New(path string, cfg *Config) (*Source, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving %q", path)
	}

	s := &Source{
		path:     abs,
		timeout:  cfg.timeout(),
		engine:   cfg.engine(),
		logger:   logging.Must(cfg.Logger),
		changedC: make(chan struct{}),
	}
	s.resetScanLocked()

	// Start watching before the initial sync, so that no change in between is
	// missed.
	if s.w, err = startWatcher(abs, cfg.pollInterval(), s.handleChange, s.logger); err != nil {
		return nil, err
	}
	if err := s.resync(); err != nil {
		s.w.stop()
		return nil, err
	}

	return s, nil
}

// Path returns the absolute path of the file being tailed.
func (s *Source) Path() string { return s.path }

// Size returns the size of the file as of the latest resync.
func (s *Source) Size() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Size()
}

// Close permanently stops the Source, terminates its watcher, and releases the
// file mapping.
func (s *Source) Close() error {
	s.Stop()

	// The watcher may be blocked on our lock, so it must be stopped without it.
	s.closeOnce.Do(s.w.stop)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return s.closeMappingLocked()
}

// Stop permanently aborts the Source. Every current and future blocking
// operation will return source.ErrAborted.
//
// Stop implements source.Stopper.
func (s *Source) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.aborted {
		s.aborted = true
		aborts.Inc()
	}
	s.broadcastLocked()
}

// ForceTimeout causes the blocking operation that is currently waiting, or
// the next one to be issued, to return source.ErrTimeout.
func (s *Source) ForceTimeout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.timeoutForced = true
	s.broadcastLocked()
}

// StreamFinished marks the stream as finished at the current position. Reads
// past the available data will return io.EOF instead of waiting, until the
// reader seeks back before this position.
//
// StreamFinished implements source.FinishObserver.
func (s *Source) StreamFinished() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.finished, s.finishedAt = true, s.r.Position()
	s.logger.Debugf("Stream %q finished at offset %d.", s.path, s.finishedAt)
	s.broadcastLocked()
}

// Position implements source.Source.
func (s *Source) Position() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Position()
}

// SeekTo implements source.Source.
//
// SeekTo blocks until offset is within the file.
func (s *Source) SeekTo(offset int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seekLocked(offset)
}

// ReadByte implements source.Source.
func (s *Source) ReadByte() (byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readByteLocked()
}

// ReadBytes implements source.Source.
func (s *Source) ReadBytes(p []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readBytesLocked(p)
}

// LastTick implements source.Source. It is the tick of the last complete
// packet in the file.
func (s *Source) LastTick() int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.base.LastTick()
}

// SetLastTick implements source.Source.
func (s *Source) SetLastTick(tick int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.base.SetLastTick(tick)
}

func (s *Source) seekLocked(offset int64) error {
	if offset < 0 {
		return errors.Errorf("invalid offset %d", offset)
	}

	// Moving before the terminal packet means there is data left to read.
	if s.finished && offset < s.finishedAt {
		s.finished = false
	}
	return s.moveLocked(offset)
}

// moveLocked positions the cursor at offset once it is within the file.
func (s *Source) moveLocked(offset int64) error {
	if err := s.waitForLocked(func() int64 { return offset }, 0); err != nil {
		return err
	}
	s.r.SetPosition(offset)
	return nil
}

func (s *Source) readByteLocked() (b byte, err error) {
	if err = s.waitForLocked(s.r.Position, 1); err != nil {
		return
	}
	err = guardFault(func() (err error) {
		b, err = s.r.ReadByte()
		return
	})
	return
}

func (s *Source) readBytesLocked(p []byte) error {
	if len(p) == 0 {
		if s.aborted {
			return source.ErrAborted
		}
		return nil
	}

	if err := s.waitForLocked(s.r.Position, int64(len(p))); err != nil {
		return err
	}
	return guardFault(func() error { return s.r.ReadFull(p) })
}

// heldSource is a source.Source view of a Source whose lock is already held.
//
// It is handed to the protocol engine during the recovery scan, which runs
// under the lock. Its SeekTo leaves the finished state alone.
type heldSource Source

var _ source.Source = (*heldSource)(nil)

func (h *heldSource) Position() int64           { return h.r.Position() }
func (h *heldSource) SeekTo(offset int64) error { return (*Source)(h).moveLocked(offset) }
func (h *heldSource) ReadByte() (byte, error)   { return (*Source)(h).readByteLocked() }
func (h *heldSource) ReadBytes(p []byte) error  { return (*Source)(h).readBytesLocked(p) }
func (h *heldSource) LastTick() int32           { return h.base.LastTick() }
func (h *heldSource) SetLastTick(tick int32)    { h.base.SetLastTick(tick) }
