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

// Package index builds and queries a persistent sidecar index over a PBF
// file: a (element type, id) -> (blob offset, group, index-in-group)
// lookup table that avoids a linear scan for point queries, plus an LRU
// cache of decoded blocks to amortize repeated lookups into the same blob.
package index

import (
	"encoding/binary"
	"fmt"
)

// Magic identifies a sidecar index file.
var Magic = [8]byte{'o', 's', 'm', 'p', 'b', 'i', 'd', 'x'}

// Version is the sidecar format version this package reads and writes.
const Version uint32 = 1

// recordSize is the on-disk size of one (id, offset, group, idx) entry:
// int64 + uint64 + uint32 + uint32.
const recordSize = 8 + 8 + 4 + 4

// headerSize is the fixed 16-byte magic/version header.
const headerSize = 16

// metadataSize is the 24-byte (pbf_size, pbf_mtime, entry_count) record.
const metadataSize = 24

// runLengthsSize holds the three per-type run lengths that delimit the
// node/way/relation runs within the flat entry table; the wire record
// itself carries no type tag, so these counts are the only way to find
// where one run ends and the next begins.
const runLengthsSize = 24

// entry is one (id) -> (offset, group, idx) lookup record.
type entry struct {
	id     int64
	offset uint64
	group  uint32
	idx    uint32
}

func (e entry) marshal(buf []byte) {
	binary.LittleEndian.PutUint64(buf[0:8], uint64(e.id))
	binary.LittleEndian.PutUint64(buf[8:16], e.offset)
	binary.LittleEndian.PutUint32(buf[16:20], e.group)
	binary.LittleEndian.PutUint32(buf[20:24], e.idx)
}

func unmarshalEntry(buf []byte) entry {
	return entry{
		id:     int64(binary.LittleEndian.Uint64(buf[0:8])),
		offset: binary.LittleEndian.Uint64(buf[8:16]),
		group:  binary.LittleEndian.Uint32(buf[16:20]),
		idx:    binary.LittleEndian.Uint32(buf[20:24]),
	}
}

// metadata is the sidecar's freshness record, checked against the PBF's
// current size and modification time at open time.
type metadata struct {
	pbfSize    int64
	pbfModTime int64 // UnixNano
	entryCount int64
}

func (m metadata) marshal(buf []byte) {
	binary.LittleEndian.PutUint64(buf[0:8], uint64(m.pbfSize))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(m.pbfModTime))
	binary.LittleEndian.PutUint64(buf[16:24], uint64(m.entryCount))
}

func unmarshalMetadata(buf []byte) metadata {
	return metadata{
		pbfSize:    int64(binary.LittleEndian.Uint64(buf[0:8])),
		pbfModTime: int64(binary.LittleEndian.Uint64(buf[8:16])),
		entryCount: int64(binary.LittleEndian.Uint64(buf[16:24])),
	}
}

func validateMagicAndVersion(buf []byte) error {
	if len(buf) < headerSize {
		return fmt.Errorf("index: truncated header")
	}

	var magic [8]byte
	copy(magic[:], buf[:8])

	if magic != Magic {
		return fmt.Errorf("index: not a sidecar index file")
	}

	version := binary.LittleEndian.Uint32(buf[8:12])
	if version != Version {
		return fmt.Errorf("index: unsupported sidecar version %d", version)
	}

	return nil
}
