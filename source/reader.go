// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package source

import (
	"github.com/Rupas1k/clarity/support/dataio"
)

// Reader returns a dataio.Reader that reads from s.
//
// Each Read requests exactly len(p) bytes from s, so on a live Source it
// blocks until all of them are available. This suits fixed-size decoders such
// as struc, which always know how much they want.
func Reader(s Source) dataio.Reader { return &sourceReader{s} }

type sourceReader struct {
	s Source
}

func (sr *sourceReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if err := sr.s.ReadBytes(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (sr *sourceReader) ReadByte() (byte, error) { return sr.s.ReadByte() }
