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
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"sync"

	"github.com/nextbillion-ai/osmpbf/internal/blob"
	"github.com/nextbillion-ai/osmpbf/internal/codec"
	"github.com/nextbillion-ai/osmpbf/internal/core"
	"github.com/nextbillion-ai/osmpbf/model"
)

// Option configures a Reader at Open time.
type Option func(*readerOptions)

type readerOptions struct {
	cacheCapacity int
}

func defaultReaderOptions() readerOptions {
	return readerOptions{cacheCapacity: DefaultCacheCapacity}
}

// WithCacheCapacity sets the number of decoded blocks the Reader's LRU block
// cache holds before evicting.
func WithCacheCapacity(c int) Option {
	return func(o *readerOptions) { o.cacheCapacity = c }
}

// Reader is a random-access reader over a PBF file backed by a persistent
// sidecar index. A Reader is safe for concurrent use: lookups contend on the
// block cache's mutex but do not otherwise share mutable state.
type Reader struct {
	path string
	f    *os.File

	mu               sync.RWMutex
	nodes, ways, rel []entry

	cache *blockCache
}

// Open opens path's sidecar index, building or rebuilding it first if it is
// missing or stale.
func Open(path string, opts ...Option) (*Reader, error) {
	o := defaultReaderOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if err := ensureFresh(path); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("index: open %s: %w", path, err)
	}

	r := &Reader{
		path:  path,
		f:     f,
		cache: newBlockCache(o.cacheCapacity),
	}

	if err := r.load(); err != nil {
		f.Close()
		return nil, err
	}

	return r, nil
}

// ensureFresh validates the sidecar against the PBF's current size and
// mtime, (re)building it if absent or stale.
func ensureFresh(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("index: stat %s: %w", path, err)
	}

	if err := validateFreshness(sidecarPath(path), fi); err != nil {
		slog.Info("rebuilding index sidecar", "path", path, "reason", err)

		return build(path)
	}

	return nil
}

// validateFreshness returns ErrStale (or any read error) if the sidecar at
// sidecar does not match fi.
func validateFreshness(sidecar string, fi os.FileInfo) error {
	data, err := os.ReadFile(sidecar)
	if err != nil {
		return err
	}

	if err := validateMagicAndVersion(data); err != nil {
		return err
	}

	md := unmarshalMetadata(data[headerSize : headerSize+metadataSize])
	if md.pbfSize != fi.Size() || md.pbfModTime != fi.ModTime().UnixNano() {
		return ErrStale
	}

	return nil
}

// load reads the sidecar's entry table into memory.
func (r *Reader) load() error {
	data, err := os.ReadFile(sidecarPath(r.path))
	if err != nil {
		return fmt.Errorf("index: read sidecar: %w", err)
	}

	if err := validateMagicAndVersion(data); err != nil {
		return err
	}

	off := headerSize + metadataSize
	nNodes := readInt64(data[off : off+8])
	nWays := readInt64(data[off+8 : off+16])
	nRel := readInt64(data[off+16 : off+24])
	off += runLengthsSize

	r.nodes, off = readRun(data, off, nNodes)
	r.ways, off = readRun(data, off, nWays)
	r.rel, _ = readRun(data, off, nRel)

	return nil
}

func readInt64(b []byte) int64 {
	return int64(uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56)
}

func readRun(data []byte, off int, n int64) ([]entry, int) {
	es := make([]entry, n)
	for i := int64(0); i < n; i++ {
		es[i] = unmarshalEntry(data[off : off+recordSize])
		off += recordSize
	}

	return es, off
}

func (r *Reader) runFor(t model.EntityType) []entry {
	switch t {
	case model.NODE:
		return r.nodes
	case model.WAY:
		return r.ways
	case model.RELATION:
		return r.rel
	default:
		return nil
	}
}

func lookup(run []entry, id int64) (entry, bool) {
	i := sort.Search(len(run), func(i int) bool { return run[i].id >= id })
	if i < len(run) && run[i].id == id {
		return run[i], true
	}

	return entry{}, false
}

// Find resolves the element of the given type and id, decoding its
// containing blob via the block cache.
func (r *Reader) Find(t model.EntityType, id int64) (model.Element, error) {
	r.mu.RLock()
	e, ok := lookup(r.runFor(t), id)
	r.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}

	blk, err := r.blockAt(e.offset)
	if err != nil {
		return nil, err
	}

	if int(e.group) >= len(blk.groups) || int(e.idx) >= len(blk.groups[e.group]) {
		return nil, fmt.Errorf("index: %w: entry addresses (group=%d, idx=%d) out of range", ErrNotFound, e.group, e.idx)
	}

	return blk.groups[e.group][e.idx], nil
}

// blockAt returns the decoded block at the given blob offset, using the
// cache on a hit and decoding (with the cache lock released) on a miss.
func (r *Reader) blockAt(offset uint64) (*block, error) {
	if b, ok := r.cache.get(offset); ok {
		return b, nil
	}

	limits := blob.DefaultLimits()

	sr := io.NewSectionReader(r.f, int64(offset), r.fileSize()-int64(offset))

	h, err := blob.Read(sr, limits)
	if err != nil {
		return nil, fmt.Errorf("index: read blob at %d: %w", offset, err)
	}

	buf := core.NewPooledBuffer()
	defer buf.Close()

	raw, err := blob.Unpack(buf, h.Blob)
	if err != nil {
		return nil, fmt.Errorf("index: unpack blob at %d: %w", offset, err)
	}

	groups, err := codec.DecodeBlockGroups(raw)
	if err != nil {
		return nil, fmt.Errorf("index: decode block at %d: %w", offset, err)
	}

	b := &block{groups: groups}
	r.cache.insert(offset, b)

	return b, nil
}

func (r *Reader) fileSize() int64 {
	fi, err := r.f.Stat()
	if err != nil {
		return 1 << 62
	}

	return fi.Size()
}

// depKey identifies a (type, id) pair for visited-set tracking.
type depKey struct {
	t  model.EntityType
	id int64
}

// GetWithDeps returns the element of the given type and id together with
// the transitive closure of every element it references: a way's nodes, or
// a relation's members recursing into ways (and their nodes) and
// sub-relations. The root element is first, followed by its dependencies in
// discovery order. Cycles among relations are broken by a visited set.
func (r *Reader) GetWithDeps(t model.EntityType, id int64) ([]model.Element, error) {
	root, err := r.Find(t, id)
	if err != nil {
		return nil, err
	}

	visited := map[depKey]bool{{t: t, id: id}: true}
	result := []model.Element{root}

	frontier := directDeps(t, root)

	for len(frontier) > 0 {
		var next []depKey

		resolved, err := r.batchResolve(frontier, visited)
		if err != nil {
			return nil, err
		}

		for _, k := range frontier {
			if visited[k] {
				continue
			}

			e, ok := resolved[k]
			if !ok {
				continue
			}

			visited[k] = true
			result = append(result, e)
			next = append(next, directDeps(k.t, e)...)
		}

		frontier = next
	}

	return result, nil
}

// directDeps lists the immediate (type, id) dependencies of e, not yet
// filtered against a visited set.
func directDeps(t model.EntityType, e model.Element) []depKey {
	switch v := e.(type) {
	case *model.Way:
		deps := make([]depKey, len(v.NodeIDs))
		for i, id := range v.NodeIDs {
			deps[i] = depKey{t: model.NODE, id: int64(id)}
		}

		return deps
	case *model.Relation:
		deps := make([]depKey, len(v.Members))
		for i, m := range v.Members {
			deps[i] = depKey{t: m.Type, id: int64(m.ID)}
		}

		return deps
	default:
		return nil
	}
}

// batchResolve resolves every key in keys not already in visited, grouping
// lookups by containing blob so each blob is decoded at most once.
func (r *Reader) batchResolve(keys []depKey, visited map[depKey]bool) (map[depKey]model.Element, error) {
	type pending struct {
		key   depKey
		entry entry
	}

	byOffset := make(map[uint64][]pending)

	r.mu.RLock()

	for _, k := range keys {
		if visited[k] {
			continue
		}

		e, ok := lookup(r.runFor(k.t), k.id)
		if !ok {
			continue
		}

		byOffset[e.offset] = append(byOffset[e.offset], pending{key: k, entry: e})
	}

	r.mu.RUnlock()

	out := make(map[depKey]model.Element, len(keys))

	for offset, ps := range byOffset {
		blk, err := r.blockAt(offset)
		if err != nil {
			return nil, err
		}

		for _, p := range ps {
			if int(p.entry.group) >= len(blk.groups) || int(p.entry.idx) >= len(blk.groups[p.entry.group]) {
				continue
			}

			out[p.key] = blk.groups[p.entry.group][p.entry.idx]
		}
	}

	return out, nil
}

// Close closes the underlying PBF file handle.
func (r *Reader) Close() error {
	return r.f.Close()
}
