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

package pb

import "github.com/nextbillion-ai/osmpbf/internal/wire"

// BlobHeader precedes every Blob on the wire and tells the reader how many
// bytes to read next and what kind of Blob it is ("OSMHeader" or "OSMData").
type BlobHeader struct {
	Type      string
	Indexdata []byte
	Datasize  int32
}

func (h *BlobHeader) GetType() string {
	if h == nil {
		return ""
	}

	return h.Type
}

func (h *BlobHeader) GetIndexdata() []byte {
	if h == nil {
		return nil
	}

	return h.Indexdata
}

func (h *BlobHeader) GetDatasize() int32 {
	if h == nil {
		return 0
	}

	return h.Datasize
}

func (h *BlobHeader) MarshalWire() ([]byte, error) {
	w := wire.NewWriter()
	w.WriteString(1, h.Type)

	if h.Indexdata != nil {
		w.WriteBytes(2, h.Indexdata)
	}

	w.WriteInt32(3, h.Datasize)

	return w.Bytes(), nil
}

func (h *BlobHeader) UnmarshalWire(data []byte) error {
	r := wire.NewReader(data)

	for r.More() {
		field, wt, err := r.ReadTag()
		if err != nil {
			return err
		}

		switch field {
		case 1:
			if h.Type, err = r.ReadString(); err != nil {
				return err
			}
		case 2:
			if h.Indexdata, err = r.ReadBytes(); err != nil {
				return err
			}
		case 3:
			v, err := r.ReadVarint()
			if err != nil {
				return err
			}

			h.Datasize = int32(uint32(v))
		default:
			if err := r.SkipField(wt); err != nil {
				return err
			}
		}
	}

	return nil
}

// Blob holds the (possibly compressed) bytes of one HeaderBlock or
// PrimitiveBlock. Exactly one of Raw, ZlibData, LzmaData, Lz4Data, or
// ZstdData carries the payload.
type Blob struct {
	Raw       []byte
	RawSize   int32
	ZlibData  []byte
	LzmaData  []byte
	Lz4Data   []byte
	ZstdData  []byte
	hasRaw    bool
	hasZlib   bool
	hasLzma   bool
	hasLz4    bool
	hasZstd   bool
	hasRawSz  bool
}

func (b *Blob) GetRaw() []byte {
	if b == nil {
		return nil
	}

	return b.Raw
}

func (b *Blob) GetRawSize() int32 {
	if b == nil {
		return 0
	}

	return b.RawSize
}

func (b *Blob) GetZlibData() []byte {
	if b == nil {
		return nil
	}

	return b.ZlibData
}

func (b *Blob) GetLzmaData() []byte {
	if b == nil {
		return nil
	}

	return b.LzmaData
}

func (b *Blob) GetLz4Data() []byte {
	if b == nil {
		return nil
	}

	return b.Lz4Data
}

func (b *Blob) GetZstdData() []byte {
	if b == nil {
		return nil
	}

	return b.ZstdData
}

// Compression reports which compression field is set, or "" if none is
// (the raw payload case uses "raw").
func (b *Blob) Compression() string {
	switch {
	case b.hasRaw:
		return "raw"
	case b.hasZlib:
		return "zlib"
	case b.hasLzma:
		return "lzma"
	case b.hasLz4:
		return "lz4"
	case b.hasZstd:
		return "zstd"
	default:
		return ""
	}
}

// SetRaw sets the blob payload as uncompressed raw bytes.
func (b *Blob) SetRaw(v []byte) { b.clearData(); b.Raw = v; b.hasRaw = true }

// SetZlibData sets the blob payload as zlib-compressed bytes.
func (b *Blob) SetZlibData(v []byte) { b.clearData(); b.ZlibData = v; b.hasZlib = true }

// SetRawSize sets the blob's decompressed payload length.
func (b *Blob) SetRawSize(v int32) { b.RawSize = v; b.hasRawSz = true }

func (b *Blob) clearData() {
	b.Raw, b.ZlibData, b.LzmaData, b.Lz4Data, b.ZstdData = nil, nil, nil, nil, nil
	b.hasRaw, b.hasZlib, b.hasLzma, b.hasLz4, b.hasZstd = false, false, false, false, false
}

func (b *Blob) MarshalWire() ([]byte, error) {
	w := wire.NewWriter()

	switch {
	case b.hasRaw:
		w.WriteBytes(1, b.Raw)
	case b.hasZlib:
		w.WriteBytes(3, b.ZlibData)
	case b.hasLzma:
		w.WriteBytes(4, b.LzmaData)
	case b.hasLz4:
		w.WriteBytes(6, b.Lz4Data)
	case b.hasZstd:
		w.WriteBytes(7, b.ZstdData)
	}

	if b.hasRawSz || b.RawSize != 0 {
		w.WriteInt32(2, b.RawSize)
	}

	return w.Bytes(), nil
}

func (b *Blob) UnmarshalWire(data []byte) error {
	r := wire.NewReader(data)

	for r.More() {
		field, wt, err := r.ReadTag()
		if err != nil {
			return err
		}

		switch field {
		case 1:
			if b.Raw, err = r.ReadBytes(); err != nil {
				return err
			}

			b.hasRaw = true
		case 2:
			v, err := r.ReadVarint()
			if err != nil {
				return err
			}

			b.RawSize = int32(uint32(v))
			b.hasRawSz = true
		case 3:
			if b.ZlibData, err = r.ReadBytes(); err != nil {
				return err
			}

			b.hasZlib = true
		case 4:
			if b.LzmaData, err = r.ReadBytes(); err != nil {
				return err
			}

			b.hasLzma = true
		case 6:
			if b.Lz4Data, err = r.ReadBytes(); err != nil {
				return err
			}

			b.hasLz4 = true
		case 7:
			if b.ZstdData, err = r.ReadBytes(); err != nil {
				return err
			}

			b.hasZstd = true
		default:
			if err := r.SkipField(wt); err != nil {
				return err
			}
		}
	}

	return nil
}
