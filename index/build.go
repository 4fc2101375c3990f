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

package index

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/nextbillion-ai/osmpbf/internal/blob"
	"github.com/nextbillion-ai/osmpbf/internal/codec"
	"github.com/nextbillion-ai/osmpbf/internal/core"
	"github.com/nextbillion-ai/osmpbf/model"
)

// sidecarPath derives the sidecar file name for a PBF path: <pbf>.idx.
func sidecarPath(pbfPath string) string {
	return pbfPath + ".idx"
}

// build makes a single sequential pass over the PBF at path, recording one
// entry per element, and writes the result to its sidecar file.
func build(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("index: open %s: %w", path, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return fmt.Errorf("index: stat %s: %w", path, err)
	}

	var nodes, ways, relations []entry

	limits := blob.DefaultLimits()
	buf := core.NewPooledBuffer()

	defer buf.Close()

	for {
		blobStart, err := f.Seek(0, io.SeekCurrent)
		if err != nil {
			return fmt.Errorf("index: seek: %w", err)
		}

		h, err := blob.Read(f, limits)
		if err != nil {
			if err == io.EOF {
				break
			}

			return fmt.Errorf("index: read blob: %w", err)
		}

		if h.Type != "OSMData" {
			continue
		}

		buf.Reset()

		raw, err := blob.Unpack(buf, h.Blob)
		if err != nil {
			return fmt.Errorf("index: unpack blob at %d: %w", blobStart, err)
		}

		groups, err := codec.DecodeBlockGroups(raw)
		if err != nil {
			return fmt.Errorf("index: decode block at %d: %w", blobStart, err)
		}

		for gi, group := range groups {
			for ei, e := range group {
				rec := entry{id: e.GetID(), offset: uint64(blobStart), group: uint32(gi), idx: uint32(ei)}

				switch e.(type) {
				case *model.Node:
					nodes = append(nodes, rec)
				case *model.Way:
					ways = append(ways, rec)
				case *model.Relation:
					relations = append(relations, rec)
				}
			}
		}
	}

	sortEntries(nodes)
	sortEntries(ways)
	sortEntries(relations)

	return writeSidecar(sidecarPath(path), fi, nodes, ways, relations)
}

func sortEntries(es []entry) {
	sort.Slice(es, func(i, j int) bool { return es[i].id < es[j].id })
}

func writeSidecar(path string, fi os.FileInfo, nodes, ways, relations []entry) error {
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("index: create sidecar: %w", err)
	}

	w := bufio.NewWriter(f)

	header := make([]byte, headerSize)
	copy(header[:8], Magic[:])
	binary.LittleEndian.PutUint32(header[8:12], Version)

	if _, err := w.Write(header); err != nil {
		return closeAndReturn(f, tmp, err)
	}

	md := metadata{
		pbfSize:    fi.Size(),
		pbfModTime: fi.ModTime().UnixNano(),
		entryCount: int64(len(nodes) + len(ways) + len(relations)),
	}

	mdBuf := make([]byte, metadataSize)
	md.marshal(mdBuf)

	if _, err := w.Write(mdBuf); err != nil {
		return closeAndReturn(f, tmp, err)
	}

	runBuf := make([]byte, runLengthsSize)
	binary.LittleEndian.PutUint64(runBuf[0:8], uint64(len(nodes)))
	binary.LittleEndian.PutUint64(runBuf[8:16], uint64(len(ways)))
	binary.LittleEndian.PutUint64(runBuf[16:24], uint64(len(relations)))

	if _, err := w.Write(runBuf); err != nil {
		return closeAndReturn(f, tmp, err)
	}

	for _, run := range [][]entry{nodes, ways, relations} {
		recBuf := make([]byte, recordSize)

		for _, e := range run {
			e.marshal(recBuf)

			if _, err := w.Write(recBuf); err != nil {
				return closeAndReturn(f, tmp, err)
			}
		}
	}

	if err := w.Flush(); err != nil {
		return closeAndReturn(f, tmp, err)
	}

	if err := f.Sync(); err != nil {
		return closeAndReturn(f, tmp, err)
	}

	if err := f.Close(); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}

func closeAndReturn(f *os.File, tmp string, err error) error {
	f.Close()
	os.Remove(tmp)

	return fmt.Errorf("index: write sidecar: %w", err)
}
