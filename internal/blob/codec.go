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

package blob

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4"
	"github.com/ulikunitz/xz/lzma"

	"github.com/nextbillion-ai/osmpbf/internal/core"
	"github.com/nextbillion-ai/osmpbf/internal/pb"
)

// Compression names the payload field a Blob carries its data in. The
// writer only ever produces Raw or Zlib; the others are decode-only.
type Compression int

const (
	RAW Compression = iota
	ZLIB
	LZMA
	LZ4
	ZSTD
)

func (c Compression) String() string {
	switch c {
	case RAW:
		return "raw"
	case ZLIB:
		return "zlib"
	case LZMA:
		return "lzma"
	case LZ4:
		return "lz4"
	case ZSTD:
		return "zstd"
	default:
		return "unknown"
	}
}

// Pack compresses raw according to c and returns a Blob carrying the
// result, with RawSize set to len(raw).
func Pack(raw []byte, c Compression) (*pb.Blob, error) {
	b := &pb.Blob{}
	b.SetRawSize(int32(len(raw)))

	switch c {
	case RAW:
		b.SetRaw(raw)

		return b, nil
	case ZLIB:
		var buf bytes.Buffer

		zw := zlib.NewWriter(&buf)
		if _, err := zw.Write(raw); err != nil {
			return nil, fmt.Errorf("blob: zlib compress: %w", err)
		}

		if err := zw.Close(); err != nil {
			return nil, fmt.Errorf("blob: zlib compress: %w", err)
		}

		b.SetZlibData(buf.Bytes())

		return b, nil
	default:
		return nil, fmt.Errorf("%w: %s is decode-only", ErrUnsupportedCompression, c)
	}
}

// Unpack decompresses blob's payload into buf and returns the raw bytes.
// buf is reused across calls to amortize allocation.
func Unpack(buf *core.PooledBuffer, blob *pb.Blob) ([]byte, error) {
	var factory func() (io.Reader, error)

	switch blob.Compression() {
	case "raw":
		return blob.GetRaw(), nil
	case "zlib":
		factory = func() (io.Reader, error) {
			return zlib.NewReader(bytes.NewReader(blob.GetZlibData()))
		}
	case "lzma":
		factory = func() (io.Reader, error) {
			return lzma.NewReader(bytes.NewReader(blob.GetLzmaData()))
		}
	case "lz4":
		factory = func() (io.Reader, error) {
			return lz4.NewReader(bytes.NewReader(blob.GetLz4Data())), nil
		}
	case "zstd":
		factory = func() (io.Reader, error) {
			return zstd.NewReader(bytes.NewReader(blob.GetZstdData()))
		}
	default:
		return nil, ErrUnsupportedCompression
	}

	rawBufferSize := int(blob.GetRawSize()) + bytes.MinRead
	if rawBufferSize > buf.Cap() {
		buf.Grow(rawBufferSize)
	}

	rdr, err := factory()
	if err != nil {
		return nil, fmt.Errorf("blob: decompress: %w", err)
	}

	n, err := buf.ReadFrom(rdr)
	if err != nil {
		return nil, fmt.Errorf("blob: decompress: %w", err)
	}

	if n != int64(blob.GetRawSize()) {
		return nil, ErrChecksumMismatch
	}

	return buf.Bytes(), nil
}
