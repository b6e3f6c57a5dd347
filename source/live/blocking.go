// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package live

import (
	"io"
	"time"

	"github.com/Rupas1k/clarity/source"

	"github.com/pkg/errors"
)

// waitForLocked blocks until n bytes are available at the offset returned by
// at, or until a terminal condition applies. at is called on every evaluation,
// since a resync may move the cursor while waiting.
//
// Conditions are evaluated in order: abort, forced timeout, data available,
// stream finished, blocking suspended. If none applies, waitForLocked waits for
// a change for up to the configured timeout and evaluates them again. Each
// wait gets the full timeout.
//
// s.mu must be held. It is released while waiting.
func (s *Source) waitForLocked(at func() int64, n int64) error {
	for {
		offset := at()
		switch {
		case s.aborted:
			return source.ErrAborted

		case s.timeoutForced && !s.blockingSuspended:
			s.timeoutForced = false
			timeouts.WithLabelValues("forced").Inc()
			return errors.Wrap(source.ErrTimeout, "forced timeout")

		case s.m != nil && offset >= 0 && s.r.Size()-offset >= n:
			return nil

		case s.finished, s.blockingSuspended:
			return io.EOF
		}

		if !s.waitChangeLocked() {
			timeouts.WithLabelValues("expired").Inc()
			return errors.Wrapf(source.ErrTimeout, "no data after %s", s.timeout)
		}
	}
}

// waitChangeLocked releases s.mu until the next broadcast, or until the
// timeout expires. It returns false if the timeout expired.
//
// s.mu must be held. It is held again on return.
func (s *Source) waitChangeLocked() bool {
	changedC := s.changedC
	timer := time.NewTimer(s.timeout)

	s.mu.Unlock()
	defer s.mu.Lock()
	defer timer.Stop()

	select {
	case <-changedC:
		return true
	case <-timer.C:
		return false
	}
}

// broadcastLocked wakes every goroutine blocked in waitChangeLocked.
//
// s.mu must be held.
func (s *Source) broadcastLocked() {
	close(s.changedC)
	s.changedC = make(chan struct{})
}
