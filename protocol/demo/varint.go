// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package demo

import (
	"math"

	"github.com/Rupas1k/clarity/source"

	"github.com/golang/protobuf/proto"
	"github.com/pkg/errors"
)

// The maximum varint size, in bytes, of a 32-bit value.
const maxVarintSizeU32 = 5

var errInvalidVarint = errors.New("invalid varint32")

// readVarint32 reads an unsigned varint from s, byte by byte.
//
// proto doesn't help with finding the end of the varint; instead, we rely on
// an encoding detail: the varint continues until the most significant bit of
// a byte is zero.
func readVarint32(s source.Source) (uint32, error) {
	var buf [maxVarintSizeU32]byte
	size := 0
	for {
		if size == len(buf) {
			return 0, errInvalidVarint
		}

		b, err := s.ReadByte()
		if err != nil {
			return 0, err
		}

		buf[size] = b
		size++
		if (b & 0x80) == 0 {
			break
		}
	}

	v, amt := proto.DecodeVarint(buf[:size])
	if amt != size || v > math.MaxUint32 {
		return 0, errInvalidVarint
	}
	return uint32(v), nil
}
