// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package live

// resetScanLocked forgets every packet boundary found so far.
//
// s.mu must be held.
func (s *Source) resetScanLocked() {
	s.lastTickOffset = -1
	s.nextTickOffset = 0
	s.base.SetLastTick(0)
}

// scanLocked advances through the complete packets that were appended since
// the last scan, updating LastTick to the tick of the last one.
//
// A packet that is still being written ends the scan. Since the scan runs with
// blocking suspended, such a packet fails to read immediately; the scan will
// resume at its offset next time.
//
// s.mu must be held.
func (s *Source) scanLocked() {
	size := s.r.Size()
	if s.nextTickOffset > size {
		// The file shrank below what was already scanned.
		s.logger.Debugf("File %q shrank to %d bytes, rescanning.", s.path, size)
		s.resetScanLocked()
		s.kind = nil
		scanResets.Inc()
	}

	pos := s.r.Position()
	s.blockingSuspended = true
	defer func() {
		s.blockingSuspended = false
		s.r.SetPosition(pos)
	}()

	h := (*heldSource)(s)
	for s.nextTickOffset <= size {
		if s.nextTickOffset == 0 || s.kind == nil {
			if err := h.SeekTo(0); err != nil {
				break
			}
			kind, err := s.engine.Identify(h)
			if err != nil {
				break
			}
			s.kind, s.nextTickOffset = kind, h.Position()
		} else if err := h.SeekTo(s.nextTickOffset); err != nil {
			break
		}

		pkt, err := s.kind.NextPacket(h)
		if err != nil {
			break
		}
		if err := pkt.Skip(); err != nil {
			break
		}

		end := h.Position()
		if end > s.lastTickOffset {
			s.base.SetLastTick(pkt.Tick)
			s.lastTickOffset = end
			scannedPackets.Inc()
		}
		s.nextTickOffset = end
	}

	s.logger.Debugf("Last tick of %q determined to be %d.", s.path, s.base.LastTick())
}
