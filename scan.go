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

package osmpbf

import (
	"context"
	"fmt"
	"io"

	"github.com/destel/rill"

	"github.com/nextbillion-ai/osmpbf/internal/blob"
	"github.com/nextbillion-ai/osmpbf/model"
)

// ParFind scans r for the first element matching predicate. If r implements
// io.ReaderAt, the scan fans out across a bounded worker pool, each worker
// decoding an independent shard of the file through its own
// io.SectionReader; otherwise it falls back to a single-threaded scan.
// Order of predicate evaluation across workers is unspecified; when several
// workers match concurrently, any one of them may be returned.
func ParFind(ctx context.Context, r io.Reader, predicate func(model.Element) bool, opts ...DecoderOption) (model.Element, bool, error) {
	o := defaultDecoderOptions()
	for _, opt := range opts {
		opt(&o)
	}

	ra, ok := r.(io.ReaderAt)
	if !ok {
		return sequentialFind(ctx, r, predicate, o)
	}

	sz, err := readerSize(r)
	if err != nil {
		return sequentialFind(ctx, r, predicate, o)
	}

	offsets, err := scanBlobOffsets(io.NewSectionReader(ra, 0, sz), o.limits)
	if err != nil {
		return nil, false, err
	}

	if len(offsets) == 0 {
		return nil, false, nil
	}

	return parallelFind(ctx, ra, sz, offsets, predicate, o)
}

// readerSize returns the total size of r, if it exposes one the way
// *os.File does via Seek.
func readerSize(r io.Reader) (int64, error) {
	s, ok := r.(io.Seeker)
	if !ok {
		return 0, fmt.Errorf("osmpbf: reader does not support Seek")
	}

	cur, err := s.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}

	end, err := s.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}

	if _, err := s.Seek(cur, io.SeekStart); err != nil {
		return 0, err
	}

	return end, nil
}

// scanBlobOffsets makes one lightweight pass over r, recording the start
// offset of every OSMData blob's length prefix; it skips past payloads
// without decompressing them.
func scanBlobOffsets(r *io.SectionReader, limits blob.Limits) ([]int64, error) {
	var offsets []int64

	var pos int64

	for {
		h, n, err := blob.ReadHeaderOnly(io.NewSectionReader(r, pos, r.Size()-pos), limits)
		if err != nil {
			if err == io.EOF {
				return offsets, nil
			}

			return nil, err
		}

		if h.Type == "OSMData" {
			offsets = append(offsets, pos)
		}

		pos += n
	}
}

// parallelFind feeds the known OSMData blob offsets through a bounded
// worker pool built on rill.OrderedMap: each worker decodes one blob
// through its own io.SectionReader over the shared ra, and the main
// goroutine stops draining results as soon as predicate matches, so no
// blob past the match is decoded on a fresh worker.
func parallelFind(ctx context.Context, ra io.ReaderAt, size int64, offsets []int64, predicate func(model.Element) bool, o decoderOptions) (model.Element, bool, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workers := int(o.nCPU)
	if workers > len(offsets) {
		workers = len(offsets)
	}

	// Each worker holds at most one decoded block until the evaluator takes
	// it, so the worker count is what bounds the blocks held in flight.
	if o.scanBufferSize > 0 && workers > o.scanBufferSize {
		workers = o.scanBufferSize
	}

	if workers < 1 {
		workers = 1
	}

	in := make(chan rill.Try[int64])

	go func() {
		defer close(in)

		for _, off := range offsets {
			select {
			case in <- rill.Try[int64]{Value: off}:
			case <-ctx.Done():
				return
			}
		}
	}()

	decode := func(offset int64) ([]model.Element, error) {
		sr := io.NewSectionReader(ra, offset, size-offset)

		h, err := blob.Read(sr, o.limits)
		if err != nil {
			return nil, err
		}

		return decodeDataBlob(h.Blob)
	}

	for t := range rill.OrderedMap(in, workers, decode) {
		if t.Error != nil {
			return nil, false, t.Error
		}

		for _, e := range t.Value {
			if predicate(e) {
				return e, true, nil
			}
		}
	}

	return nil, false, nil
}

// sequentialFind is ParFind's fallback for readers that don't support
// io.ReaderAt (so can't be sharded): a plain Decode loop.
func sequentialFind(ctx context.Context, r io.Reader, predicate func(model.Element) bool, o decoderOptions) (model.Element, bool, error) {
	d, err := Decode(ctx, r, withDecoderOptions(o))
	if err != nil {
		return nil, false, err
	}

	for {
		select {
		case <-ctx.Done():
			return nil, false, ctx.Err()
		default:
		}

		e, err := d.Decode()
		if err != nil {
			if err == io.EOF {
				return nil, false, nil
			}

			return nil, false, err
		}

		if predicate(e) {
			return e, true, nil
		}
	}
}

// withDecoderOptions adapts an already-resolved decoderOptions back into a
// single DecoderOption, so Decode's variadic-options constructor can be
// reused from ParFind's fallback path.
func withDecoderOptions(o decoderOptions) DecoderOption {
	return func(dst *decoderOptions) {
		*dst = o
	}
}

// FindByTag returns the first element in r whose tags contain key=value, in
// file order. This is a linear scan, not an index lookup.
func FindByTag(r io.Reader, key, value string) (model.Element, bool, error) {
	d, err := Decode(context.Background(), r)
	if err != nil {
		return nil, false, err
	}

	for {
		e, err := d.Decode()
		if err != nil {
			if err == io.EOF {
				return nil, false, nil
			}

			return nil, false, err
		}

		if v, ok := e.GetTags()[key]; ok && v == value {
			return e, true, nil
		}
	}
}

// ScanByTag returns every element in r whose tags contain key=value, in
// file order.
func ScanByTag(r io.Reader, key, value string) ([]model.Element, error) {
	d, err := Decode(context.Background(), r)
	if err != nil {
		return nil, err
	}

	var matches []model.Element

	for {
		e, err := d.Decode()
		if err != nil {
			if err == io.EOF {
				return matches, nil
			}

			return nil, err
		}

		if v, ok := e.GetTags()[key]; ok && v == value {
			matches = append(matches, e)
		}
	}
}
