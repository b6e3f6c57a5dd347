// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package live

import (
	"os"

	"github.com/Rupas1k/clarity/support/mmap"

	"github.com/pkg/errors"
)

// mapping is a read-only binding of the file as it was when it was opened.
type mapping struct {
	fd   *os.File
	info os.FileInfo
	view *mmap.View
}

func openMapping(path string) (*mapping, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	m := mapping{fd: fd}
	if m.info, err = fd.Stat(); err != nil {
		_ = fd.Close()
		return nil, errors.Wrapf(err, "stat %q", path)
	}
	if m.view, err = mmap.Map(fd, m.info.Size()); err != nil {
		_ = fd.Close()
		return nil, err
	}
	return &m, nil
}

func (m *mapping) bytes() []byte { return m.view.Bytes() }

func (m *mapping) close() error {
	err := m.view.Unmap()
	if cerr := m.fd.Close(); err == nil && cerr != nil {
		err = errors.Wrap(cerr, "closing file")
	}
	return err
}

// isAbsent returns true if err means that the file cannot currently be read.
func isAbsent(err error) bool { return os.IsNotExist(err) || os.IsPermission(err) }

// resync rebinds the Source to the file's current state.
func (s *Source) resync() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resyncLocked()
}

// resyncLocked rebinds the Source to the file's current state and scans it for
// new packets. Waiting readers are woken even if it fails.
//
// s.mu must be held.
func (s *Source) resyncLocked() error {
	defer s.broadcastLocked()

	if s.closed {
		return nil
	}
	resyncCount.Inc()

	m, err := openMapping(s.path)
	switch {
	case err == nil:
	case isAbsent(err):
		if s.m != nil {
			s.logger.Debugf("File %q no longer exists.", s.path)
			s.resetLocked()
			if err := s.closeMappingLocked(); err != nil {
				return err
			}
		}
		return nil
	default:
		return errors.Wrapf(err, "opening %q", s.path)
	}

	// A file that appeared, or was replaced by a different file, starts a new
	// stream.
	prevSize := s.r.Size()
	if s.m == nil || !os.SameFile(s.m.info, m.info) {
		s.resetLocked()
		prevSize = 0
	}

	if err := s.closeMappingLocked(); err != nil {
		_ = m.close()
		return err
	}
	s.m = m
	s.r.Reset(m.bytes())

	// Keep the position within a view that shrank.
	if size := s.r.Size(); size < prevSize {
		if maxPos := size - 1; s.r.Position() > maxPos {
			if maxPos < 0 {
				maxPos = 0
			}
			s.r.SetPosition(maxPos)
		}
	}

	s.scanLocked()
	s.logger.Debugf("File change for %q, size: %d, last tick: %d.", s.path, s.r.Size(), s.base.LastTick())
	return nil
}

// resetLocked discards everything known about the file's stream.
//
// s.mu must be held.
func (s *Source) resetLocked() {
	s.finished = false
	s.kind = nil
	s.resetScanLocked()
	s.r.SetPosition(0)
	scanResets.Inc()
}

// closeMappingLocked releases the current file binding, if any.
//
// s.mu must be held.
func (s *Source) closeMappingLocked() error {
	if s.m == nil {
		return nil
	}

	m := s.m
	s.m = nil
	s.r.Reset(nil)
	return m.close()
}
