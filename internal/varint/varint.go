// Copyright 2017-25 the original author or authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package varint implements the base-128 varint and zigzag codecs used by
// the OSM PBF wire format.
package varint

import (
	"encoding/binary"
	"errors"
)

// ErrMalformedVarint is returned when a varint cannot be decoded: either the
// stream ended before a terminating byte was seen, or more than MaxBytes
// bytes were consumed without terminating.
var ErrMalformedVarint = errors.New("varint: malformed varint")

// MaxBytes is the most bytes a 64-bit varint can occupy.
const MaxBytes = 10

// AppendUvarint appends the base-128 varint encoding of v to buf.
func AppendUvarint(buf []byte, v uint64) []byte {
	var tmp [MaxBytes]byte
	n := binary.PutUvarint(tmp[:], v)

	return append(buf, tmp[:n]...)
}

// ConsumeUvarint reads a base-128 varint from the front of buf, returning the
// decoded value and the number of bytes consumed. It fails with
// ErrMalformedVarint if buf is exhausted before a terminating byte, or if
// more than MaxBytes bytes would be required.
func ConsumeUvarint(buf []byte) (uint64, int, error) {
	var v uint64

	for i := 0; i < len(buf) && i < MaxBytes; i++ {
		b := buf[i]

		v |= uint64(b&0x7f) << (7 * uint(i))

		if b < 0x80 {
			return v, i + 1, nil
		}
	}

	return 0, 0, ErrMalformedVarint
}

// EncodeZigzag64 maps a signed integer to an unsigned one so that numbers
// with a small absolute value have a small varint encoding.
func EncodeZigzag64(v int64) uint64 {
	return (uint64(v) << 1) ^ uint64(v>>63)
}

// DecodeZigzag64 is the inverse of EncodeZigzag64.
func DecodeZigzag64(v uint64) int64 {
	return int64(v>>1) ^ -int64(v&1)
}

// EncodeZigzag32 maps a signed 32-bit integer to an unsigned one.
func EncodeZigzag32(v int32) uint32 {
	return (uint32(v) << 1) ^ uint32(v>>31)
}

// DecodeZigzag32 is the inverse of EncodeZigzag32.
func DecodeZigzag32(v uint32) int32 {
	return int32(v>>1) ^ -int32(v&1)
}
