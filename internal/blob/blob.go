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

// Package blob frames and unframes the (BlobHeader, Blob) pairs that make up
// an OSM PBF stream, and compresses/decompresses the Blob payload.
package blob

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/nextbillion-ai/osmpbf/internal/pb"
)

var (
	// ErrTruncatedBlob is returned when the stream ends before a full
	// header or blob has been read.
	ErrTruncatedBlob = errors.New("blob: truncated blob")

	// ErrOversizedBlob is returned when a declared length exceeds the
	// configured Limits.
	ErrOversizedBlob = errors.New("blob: oversized blob")

	// ErrChecksumMismatch is returned when a decompressed payload's length
	// does not match the raw_size the blob declared.
	ErrChecksumMismatch = errors.New("blob: decompressed size does not match declared raw_size")

	// ErrUnsupportedCompression is returned for a Blob whose payload field
	// this package cannot decompress.
	ErrUnsupportedCompression = errors.New("blob: unsupported compression")
)

// Limits bounds the sizes this package will read off the wire before
// allocating buffers for them, guarding against corrupt or hostile length
// prefixes.
type Limits struct {
	// MaxHeaderSize bounds the serialized BlobHeader message.
	MaxHeaderSize int64
	// MaxPayloadSize bounds both the serialized Blob message and its
	// decompressed raw_size.
	MaxPayloadSize int64
}

// DefaultLimits returns the limits used when a Decoder is not configured
// with its own.
func DefaultLimits() Limits {
	return Limits{
		MaxHeaderSize:  32 << 20,
		MaxPayloadSize: 64 << 20,
	}
}

// Header is a (BlobHeader, Blob) pair as read off the wire.
type Header struct {
	Type string
	Blob *pb.Blob
}

// Read reads one BlobHeader+Blob pair from r. It returns io.EOF only when
// the stream ends cleanly before the 4-byte length prefix; any other
// truncation is ErrTruncatedBlob.
func Read(r io.Reader, limits Limits) (*Header, error) {
	var lenBuf [4]byte

	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}

		return nil, ErrTruncatedBlob
	}

	headerLen := int64(binary.BigEndian.Uint32(lenBuf[:]))
	if headerLen <= 0 {
		return nil, ErrTruncatedBlob
	}

	if headerLen > limits.MaxHeaderSize {
		return nil, ErrOversizedBlob
	}

	headerBuf := make([]byte, headerLen)
	if _, err := io.ReadFull(r, headerBuf); err != nil {
		return nil, ErrTruncatedBlob
	}

	bh := &pb.BlobHeader{}
	if err := bh.UnmarshalWire(headerBuf); err != nil {
		return nil, err
	}

	if int64(bh.GetDatasize()) > limits.MaxPayloadSize {
		return nil, ErrOversizedBlob
	}

	blobBuf := make([]byte, bh.GetDatasize())
	if _, err := io.ReadFull(r, blobBuf); err != nil {
		return nil, ErrTruncatedBlob
	}

	b := &pb.Blob{}
	if err := b.UnmarshalWire(blobBuf); err != nil {
		return nil, err
	}

	if int64(b.GetRawSize()) > limits.MaxPayloadSize {
		return nil, ErrOversizedBlob
	}

	return &Header{Type: bh.GetType(), Blob: b}, nil
}

// ReadHeaderOnly reads one BlobHeader off r and skips over its Blob payload
// without parsing it, returning the blob's type and the total number of
// bytes consumed (length prefix + header + payload). It is cheaper than
// Read when only blob boundaries and types are needed, as when scanning a
// file for parallel-shard split points.
func ReadHeaderOnly(r io.Reader, limits Limits) (*Header, int64, error) {
	var lenBuf [4]byte

	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, io.EOF
		}

		return nil, 0, ErrTruncatedBlob
	}

	headerLen := int64(binary.BigEndian.Uint32(lenBuf[:]))
	if headerLen <= 0 {
		return nil, 0, ErrTruncatedBlob
	}

	if headerLen > limits.MaxHeaderSize {
		return nil, 0, ErrOversizedBlob
	}

	headerBuf := make([]byte, headerLen)
	if _, err := io.ReadFull(r, headerBuf); err != nil {
		return nil, 0, ErrTruncatedBlob
	}

	bh := &pb.BlobHeader{}
	if err := bh.UnmarshalWire(headerBuf); err != nil {
		return nil, 0, err
	}

	dataSize := int64(bh.GetDatasize())
	if dataSize > limits.MaxPayloadSize {
		return nil, 0, ErrOversizedBlob
	}

	if n, err := io.CopyN(io.Discard, r, dataSize); err != nil {
		if n != dataSize {
			return nil, 0, ErrTruncatedBlob
		}

		return nil, 0, err
	}

	return &Header{Type: bh.GetType()}, 4 + headerLen + dataSize, nil
}

// Write frames msg as a blob of the given type and compression, writing the
// 4-byte length prefix, BlobHeader, and Blob to w.
func Write(w io.Writer, blobType string, msg pb.Message, c Compression) error {
	body, err := msg.MarshalWire()
	if err != nil {
		return err
	}

	b, err := Pack(body, c)
	if err != nil {
		return err
	}

	blobBuf, err := b.MarshalWire()
	if err != nil {
		return err
	}

	bh := &pb.BlobHeader{Type: blobType, Datasize: int32(len(blobBuf))}

	headerBuf, err := bh.MarshalWire()
	if err != nil {
		return err
	}

	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(headerBuf)))

	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}

	if _, err := w.Write(headerBuf); err != nil {
		return err
	}

	_, err = w.Write(blobBuf)

	return err
}
