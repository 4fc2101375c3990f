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

// Package wire implements the tag/wire-type record codec described by the
// OSM PBF message format: length-prefixed tagged fields, wire-type-driven
// framing, and packed-repeated scalars. It is schema-agnostic; the concrete
// OSM PBF message schema is composed on top of it in internal/pb.
package wire

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/nextbillion-ai/osmpbf/internal/varint"
)

// Wire types, per the Protocol Buffers encoding used by OSM PBF.
const (
	Varint  = 0
	Fixed64 = 1
	Bytes   = 2
	Fixed32 = 5
)

// ErrMalformedMessage is returned when a record cannot be parsed: a
// truncated tag, an unknown wire type, or a length-delimited field whose
// declared length runs past the end of the buffer.
var ErrMalformedMessage = errors.New("wire: malformed message")

// Reader is a cursor over a byte slice holding one wire-format message.
type Reader struct {
	buf []byte
	off int
}

// NewReader returns a Reader positioned at the start of buf.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// More reports whether there is more data to read.
func (r *Reader) More() bool {
	return r.off < len(r.buf)
}

// ReadTag reads a field key and splits it into a field number and wire type.
func (r *Reader) ReadTag() (field int, wireType int, err error) {
	v, n, err := varint.ConsumeUvarint(r.buf[r.off:])
	if err != nil {
		return 0, 0, ErrMalformedMessage
	}

	r.off += n

	return int(v >> 3), int(v & 0x7), nil
}

// ReadVarint reads an unsigned base-128 varint.
func (r *Reader) ReadVarint() (uint64, error) {
	v, n, err := varint.ConsumeUvarint(r.buf[r.off:])
	if err != nil {
		return 0, ErrMalformedMessage
	}

	r.off += n

	return v, nil
}

// ReadSVarint reads a zigzag-encoded signed varint.
func (r *Reader) ReadSVarint() (int64, error) {
	v, err := r.ReadVarint()
	if err != nil {
		return 0, err
	}

	return varint.DecodeZigzag64(v), nil
}

// ReadFixed64 reads a little-endian 64-bit value.
func (r *Reader) ReadFixed64() (uint64, error) {
	if len(r.buf)-r.off < 8 {
		return 0, ErrMalformedMessage
	}

	v := binary.LittleEndian.Uint64(r.buf[r.off:])
	r.off += 8

	return v, nil
}

// ReadFixed32 reads a little-endian 32-bit value.
func (r *Reader) ReadFixed32() (uint32, error) {
	if len(r.buf)-r.off < 4 {
		return 0, ErrMalformedMessage
	}

	v := binary.LittleEndian.Uint32(r.buf[r.off:])
	r.off += 4

	return v, nil
}

// ReadBytes reads a length-delimited field, returning a copy of its
// contents (the returned slice does not alias the reader's buffer).
func (r *Reader) ReadBytes() ([]byte, error) {
	n, err := r.ReadVarint()
	if err != nil {
		return nil, err
	}

	end := r.off + int(n)
	if n > math.MaxInt32 || end < r.off || end > len(r.buf) {
		return nil, ErrMalformedMessage
	}

	out := make([]byte, n)
	copy(out, r.buf[r.off:end])
	r.off = end

	return out, nil
}

// ReadString reads a length-delimited field as a string.
func (r *Reader) ReadString() (string, error) {
	b, err := r.ReadBytes()
	if err != nil {
		return "", err
	}

	return string(b), nil
}

// SkipField advances past a field's value given its wire type, without
// interpreting it. Used to skip fields the schema does not recognize.
func (r *Reader) SkipField(wireType int) error {
	switch wireType {
	case Varint:
		_, err := r.ReadVarint()

		return err
	case Fixed64:
		_, err := r.ReadFixed64()

		return err
	case Bytes:
		_, err := r.ReadBytes()

		return err
	case Fixed32:
		_, err := r.ReadFixed32()

		return err
	default:
		return ErrMalformedMessage
	}
}

// Writer accumulates a wire-format message.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the accumulated message.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

func (w *Writer) writeTag(field, wireType int) {
	w.buf = varint.AppendUvarint(w.buf, uint64(field)<<3|uint64(wireType))
}

// WriteVarint writes field as an unsigned varint.
func (w *Writer) WriteVarint(field int, v uint64) {
	w.writeTag(field, Varint)
	w.buf = varint.AppendUvarint(w.buf, v)
}

// WriteInt64 writes field as a plain (non-zigzag) varint-encoded int64.
func (w *Writer) WriteInt64(field int, v int64) {
	w.WriteVarint(field, uint64(v))
}

// WriteInt32 writes field as a plain (non-zigzag) varint-encoded int32.
func (w *Writer) WriteInt32(field int, v int32) {
	w.WriteVarint(field, uint64(uint32(v)))
}

// WriteUint32 writes field as an unsigned varint.
func (w *Writer) WriteUint32(field int, v uint32) {
	w.WriteVarint(field, uint64(v))
}

// WriteBool writes field as a 0/1 varint.
func (w *Writer) WriteBool(field int, v bool) {
	if v {
		w.WriteVarint(field, 1)
	} else {
		w.WriteVarint(field, 0)
	}
}

// WriteSVarint64 writes field as a zigzag-encoded signed varint.
func (w *Writer) WriteSVarint64(field int, v int64) {
	w.WriteVarint(field, varint.EncodeZigzag64(v))
}

// WriteSVarint32 writes field as a zigzag-encoded signed varint.
func (w *Writer) WriteSVarint32(field int, v int32) {
	w.WriteVarint(field, uint64(varint.EncodeZigzag32(v)))
}

// WriteFixed64 writes field as a little-endian 64-bit value.
func (w *Writer) WriteFixed64(field int, v uint64) {
	w.writeTag(field, Fixed64)

	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	w.buf = append(w.buf, tmp[:]...)
}

// WriteFixed32 writes field as a little-endian 32-bit value.
func (w *Writer) WriteFixed32(field int, v uint32) {
	w.writeTag(field, Fixed32)

	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	w.buf = append(w.buf, tmp[:]...)
}

// WriteBytes writes field as a length-delimited byte string.
func (w *Writer) WriteBytes(field int, v []byte) {
	w.writeTag(field, Bytes)
	w.buf = varint.AppendUvarint(w.buf, uint64(len(v)))
	w.buf = append(w.buf, v...)
}

// WriteString writes field as a length-delimited UTF-8 string.
func (w *Writer) WriteString(field int, v string) {
	w.WriteBytes(field, []byte(v))
}

// WriteRawMessage writes field as a length-delimited submessage whose bytes
// have already been marshaled.
func (w *Writer) WriteRawMessage(field int, msg []byte) {
	w.WriteBytes(field, msg)
}

// WritePackedVarints writes field once as a length-delimited run of packed
// unsigned varints.
func (w *Writer) WritePackedVarints(field int, vs []uint64) {
	if len(vs) == 0 {
		return
	}

	var body []byte
	for _, v := range vs {
		body = varint.AppendUvarint(body, v)
	}

	w.WriteBytes(field, body)
}

// WritePackedInt64s writes field as packed plain (non-zigzag) int64s.
func (w *Writer) WritePackedInt64s(field int, vs []int64) {
	if len(vs) == 0 {
		return
	}

	us := make([]uint64, len(vs))
	for i, v := range vs {
		us[i] = uint64(v)
	}

	w.WritePackedVarints(field, us)
}

// WritePackedInt32s writes field as packed plain (non-zigzag) int32s.
func (w *Writer) WritePackedInt32s(field int, vs []int32) {
	if len(vs) == 0 {
		return
	}

	us := make([]uint64, len(vs))
	for i, v := range vs {
		us[i] = uint64(uint32(v))
	}

	w.WritePackedVarints(field, us)
}

// WritePackedUint32s writes field as packed unsigned int32s.
func (w *Writer) WritePackedUint32s(field int, vs []uint32) {
	if len(vs) == 0 {
		return
	}

	us := make([]uint64, len(vs))
	for i, v := range vs {
		us[i] = uint64(v)
	}

	w.WritePackedVarints(field, us)
}

// WritePackedSVarint64s writes field as packed zigzag-encoded int64s.
func (w *Writer) WritePackedSVarint64s(field int, vs []int64) {
	if len(vs) == 0 {
		return
	}

	us := make([]uint64, len(vs))
	for i, v := range vs {
		us[i] = varint.EncodeZigzag64(v)
	}

	w.WritePackedVarints(field, us)
}

// WritePackedSVarint32s writes field as packed zigzag-encoded int32s.
func (w *Writer) WritePackedSVarint32s(field int, vs []int32) {
	if len(vs) == 0 {
		return
	}

	us := make([]uint64, len(vs))
	for i, v := range vs {
		us[i] = uint64(varint.EncodeZigzag32(v))
	}

	w.WritePackedVarints(field, us)
}

// WritePackedBools writes field as packed 0/1 varints.
func (w *Writer) WritePackedBools(field int, vs []bool) {
	if len(vs) == 0 {
		return
	}

	us := make([]uint64, len(vs))
	for i, v := range vs {
		if v {
			us[i] = 1
		}
	}

	w.WritePackedVarints(field, us)
}

// ReadPackedVarints decodes a length-delimited run of packed unsigned
// varints, such as the body passed to WritePackedVarints.
func ReadPackedVarints(data []byte) ([]uint64, error) {
	var out []uint64

	for len(data) > 0 {
		v, n, err := varint.ConsumeUvarint(data)
		if err != nil {
			return nil, ErrMalformedMessage
		}

		out = append(out, v)
		data = data[n:]
	}

	return out, nil
}

// ReadPackedInt64s decodes a packed run of plain (non-zigzag) int64s.
func ReadPackedInt64s(data []byte) ([]int64, error) {
	us, err := ReadPackedVarints(data)
	if err != nil {
		return nil, err
	}

	out := make([]int64, len(us))
	for i, u := range us {
		out[i] = int64(u)
	}

	return out, nil
}

// ReadPackedInt32s decodes a packed run of plain (non-zigzag) int32s.
func ReadPackedInt32s(data []byte) ([]int32, error) {
	us, err := ReadPackedVarints(data)
	if err != nil {
		return nil, err
	}

	out := make([]int32, len(us))
	for i, u := range us {
		out[i] = int32(uint32(u))
	}

	return out, nil
}

// ReadPackedUint32s decodes a packed run of unsigned int32s.
func ReadPackedUint32s(data []byte) ([]uint32, error) {
	us, err := ReadPackedVarints(data)
	if err != nil {
		return nil, err
	}

	out := make([]uint32, len(us))
	for i, u := range us {
		out[i] = uint32(u)
	}

	return out, nil
}

// ReadPackedSVarint64s decodes a packed run of zigzag-encoded int64s.
func ReadPackedSVarint64s(data []byte) ([]int64, error) {
	us, err := ReadPackedVarints(data)
	if err != nil {
		return nil, err
	}

	out := make([]int64, len(us))
	for i, u := range us {
		out[i] = varint.DecodeZigzag64(u)
	}

	return out, nil
}

// ReadPackedSVarint32s decodes a packed run of zigzag-encoded int32s.
func ReadPackedSVarint32s(data []byte) ([]int32, error) {
	us, err := ReadPackedVarints(data)
	if err != nil {
		return nil, err
	}

	out := make([]int32, len(us))
	for i, u := range us {
		out[i] = varint.DecodeZigzag32(uint32(u))
	}

	return out, nil
}

// ReadPackedBools decodes a packed run of 0/1 varints.
func ReadPackedBools(data []byte) ([]bool, error) {
	us, err := ReadPackedVarints(data)
	if err != nil {
		return nil, err
	}

	out := make([]bool, len(us))
	for i, u := range us {
		out[i] = u != 0
	}

	return out, nil
}
