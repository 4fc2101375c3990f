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
	"runtime"

	"github.com/nextbillion-ai/osmpbf/internal/blob"
	"github.com/nextbillion-ai/osmpbf/internal/codec"
	"github.com/nextbillion-ai/osmpbf/model"
)

// DefaultNCpu mirrors the teacher's floor-1 rule for background worker
// counts: one below GOMAXPROCS, never below 1.
func DefaultNCpu() uint16 {
	cpus := uint16(runtime.GOMAXPROCS(-1))

	return max(cpus-1, 1)
}

const (
	// DefaultScanBufferSize bounds how many decoded blocks ParFind may hold
	// in flight before the predicate evaluator drains them.
	DefaultScanBufferSize = 16
)

type decoderOptions struct {
	limits         blob.Limits
	nCPU           uint16
	scanBufferSize int
}

func defaultDecoderOptions() decoderOptions {
	return decoderOptions{
		limits:         blob.DefaultLimits(),
		nCPU:           DefaultNCpu(),
		scanBufferSize: DefaultScanBufferSize,
	}
}

// DecoderOption configures how a Decoder or ParFind scan is set up.
type DecoderOption func(*decoderOptions)

// WithBlobLimits overrides the default header/payload size limits enforced
// while framing blobs off the wire.
func WithBlobLimits(limits blob.Limits) DecoderOption {
	return func(o *decoderOptions) {
		o.limits = limits
	}
}

// WithNCpus sets the number of workers ParFind uses for its parallel scan,
// capped at the WithScanBufferSize bound. It has no effect on sequential
// decoding.
func WithNCpus(n uint16) DecoderOption {
	return func(o *decoderOptions) {
		o.nCPU = n
	}
}

// WithScanBufferSize bounds the number of decoded blocks ParFind will hold
// in flight between its decode workers and its predicate evaluator.
func WithScanBufferSize(n int) DecoderOption {
	return func(o *decoderOptions) {
		o.scanBufferSize = n
	}
}

// Decoder reads and decodes OpenStreetMap PBF data from an input stream,
// one element at a time, in file order.
type Decoder struct {
	// Header is the file's OSMHeader blob, parsed during Decode.
	Header model.Header

	r       io.Reader
	opts    decoderOptions
	pending []model.Element
	done    bool
}

// Decode opens a PBF stream for sequential reading: it reads and parses the
// leading OSMHeader blob immediately, and returns a Decoder ready to yield
// the remaining elements one at a time via Decoder.Decode.
func Decode(ctx context.Context, r io.Reader, opts ...DecoderOption) (*Decoder, error) {
	o := defaultDecoderOptions()
	for _, opt := range opts {
		opt(&o)
	}

	d := &Decoder{r: r, opts: o}

	h, err := blob.Read(r, o.limits)
	if err != nil {
		return nil, fmt.Errorf("osmpbf: read header blob: %w", err)
	}

	if h.Type != "OSMHeader" {
		return nil, fmt.Errorf("osmpbf: expected OSMHeader blob, got %q", h.Type)
	}

	hb, err := decodeHeaderBlob(h.Blob)
	if err != nil {
		return nil, err
	}

	d.Header = codec.DecodeHeader(hb)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	return d, nil
}

// Decode returns the next element in file order, or io.EOF once the stream
// is exhausted.
func (d *Decoder) Decode() (model.Element, error) {
	for len(d.pending) == 0 {
		if d.done {
			return nil, io.EOF
		}

		elements, err := d.nextBlock()
		if err != nil {
			if err == io.EOF {
				d.done = true

				return nil, io.EOF
			}

			return nil, err
		}

		d.pending = elements
	}

	e := d.pending[0]
	d.pending = d.pending[1:]

	return e, nil
}

// nextBlock reads and decodes the next OSMData blob. Blobs of any other
// type are rejected: a well-formed stream carries exactly one OSMHeader,
// already consumed by Decode, followed only by OSMData blobs.
func (d *Decoder) nextBlock() ([]model.Element, error) {
	h, err := blob.Read(d.r, d.opts.limits)
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}

		return nil, fmt.Errorf("osmpbf: read blob: %w", err)
	}

	if h.Type != "OSMData" {
		return nil, fmt.Errorf("osmpbf: unexpected blob type %q mid-stream", h.Type)
	}

	return decodeDataBlob(h.Blob)
}
