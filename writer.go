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
	"fmt"
	"io"
	"time"

	"github.com/nextbillion-ai/osmpbf/internal/blob"
	"github.com/nextbillion-ai/osmpbf/internal/codec"
	"github.com/nextbillion-ai/osmpbf/model"
)

const (
	// maxBlockBytes is the estimated-size flush threshold: once the
	// buffered elements' estimateSize total reaches this, the block is
	// flushed regardless of element count.
	maxBlockBytes = 16 << 20
)

// defaultRequiredFeatures is the feature set a writer declares unless the
// caller overrides it with WithRequiredFeatures.
var defaultRequiredFeatures = []string{"OsmSchema-V0.6", "DenseNodes"}

type encoderOptions struct {
	compression blob.Compression

	requiredFeatures                 []string
	optionalFeatures                 []string
	writingProgram                   string
	source                           string
	osmosisReplicationTimestamp      time.Time
	osmosisReplicationSequenceNumber int64
	osmosisReplicationBaseURL        string
}

func defaultEncoderOptions() encoderOptions {
	return encoderOptions{
		compression:      blob.ZLIB,
		requiredFeatures: append([]string(nil), defaultRequiredFeatures...),
	}
}

// EncoderOption configures how an Encoder is set up.
type EncoderOption func(*encoderOptions)

// WithCompression specifies the compression algorithm used for OSMData
// blobs. The default is ZLIB; header blobs are always written raw.
func WithCompression(c blob.Compression) EncoderOption {
	return func(o *encoderOptions) {
		o.compression = c
	}
}

// WithRequiredFeatures overrides the header's required features, replacing
// the default {"OsmSchema-V0.6", "DenseNodes"}.
func WithRequiredFeatures(features ...string) EncoderOption {
	return func(o *encoderOptions) {
		o.requiredFeatures = features
	}
}

// WithOptionalFeatures sets the header's optional features.
func WithOptionalFeatures(features ...string) EncoderOption {
	return func(o *encoderOptions) {
		o.optionalFeatures = features
	}
}

// WithWritingProgram sets the header's writing program.
func WithWritingProgram(program string) EncoderOption {
	return func(o *encoderOptions) {
		o.writingProgram = program
	}
}

// WithSource sets the header's source.
func WithSource(source string) EncoderOption {
	return func(o *encoderOptions) {
		o.source = source
	}
}

// WithOsmosisReplicationTimestamp sets the header's Osmosis replication
// timestamp.
func WithOsmosisReplicationTimestamp(t time.Time) EncoderOption {
	return func(o *encoderOptions) {
		o.osmosisReplicationTimestamp = t
	}
}

// WithOsmosisReplicationSequenceNumber sets the header's Osmosis
// replication sequence number.
func WithOsmosisReplicationSequenceNumber(n int64) EncoderOption {
	return func(o *encoderOptions) {
		o.osmosisReplicationSequenceNumber = n
	}
}

// WithOsmosisReplicationBaseURL sets the header's Osmosis replication base
// URL.
func WithOsmosisReplicationBaseURL(url string) EncoderOption {
	return func(o *encoderOptions) {
		o.osmosisReplicationBaseURL = url
	}
}

// Encoder writes elements to an OpenStreetMap PBF stream. Elements may be
// supplied in any order; the Encoder groups them by type into the current
// PrimitiveBlock and flushes on threshold. The OSMHeader blob is written
// lazily, on the first call to Encode, since the final bounding box isn't
// known until Finish and an arbitrary io.Writer can't be seeked back into.
//
// An Encoder is not safe for concurrent use.
type Encoder struct {
	w    io.Writer
	opts encoderOptions

	headerWritten bool
	finished      bool

	pending         []model.Element
	pendingStrBytes int
}

// NewEncoder returns an Encoder that writes to w.
func NewEncoder(w io.Writer, opts ...EncoderOption) (*Encoder, error) {
	o := defaultEncoderOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &Encoder{w: w, opts: o}, nil
}

// Encode buffers e for the current block, flushing to w if the block has
// grown past the element-count or estimated-size threshold.
func (e *Encoder) Encode(element model.Element) error {
	if e.finished {
		return ErrWriterFinalized
	}

	if !e.headerWritten {
		if err := e.writeHeader(); err != nil {
			return err
		}
	}

	e.pending = append(e.pending, element)
	e.pendingStrBytes += estimateSize(element)

	if len(e.pending) >= codec.EntityLimit || e.pendingStrBytes >= maxBlockBytes {
		return e.flush()
	}

	return nil
}

// Finish flushes any buffered elements and marks the Encoder finalized.
// Encode and Finish both return ErrWriterFinalized after Finish has run.
func (e *Encoder) Finish() error {
	if e.finished {
		return ErrWriterFinalized
	}

	if !e.headerWritten {
		if err := e.writeHeader(); err != nil {
			return err
		}
	}

	if len(e.pending) > 0 {
		if err := e.flush(); err != nil {
			return err
		}
	}

	e.finished = true

	return nil
}

func (e *Encoder) writeHeader() error {
	h := model.Header{
		RequiredFeatures:                 e.opts.requiredFeatures,
		OptionalFeatures:                 e.opts.optionalFeatures,
		WritingProgram:                   e.opts.writingProgram,
		Source:                           e.opts.source,
		OsmosisReplicationTimestamp:      e.opts.osmosisReplicationTimestamp,
		OsmosisReplicationSequenceNumber: e.opts.osmosisReplicationSequenceNumber,
		OsmosisReplicationBaseURL:        e.opts.osmosisReplicationBaseURL,
	}

	hb := codec.EncodeHeader(h)

	if err := blob.Write(e.w, "OSMHeader", hb, blob.RAW); err != nil {
		return fmt.Errorf("osmpbf: write header blob: %w", err)
	}

	e.headerWritten = true

	return nil
}

func (e *Encoder) flush() error {
	blk, _ := codec.EncodeBlock(e.pending)

	if err := blob.Write(e.w, "OSMData", blk, e.opts.compression); err != nil {
		return fmt.Errorf("osmpbf: write data blob: %w", err)
	}

	e.pending = e.pending[:0]
	e.pendingStrBytes = 0

	return nil
}

// estimateSize approximates the encoded size of an element's variable-width
// fields, used only to decide when to flush early on unusually tag-heavy or
// member-heavy batches.
func estimateSize(e model.Element) int {
	n := 16
	for k, v := range e.GetTags() {
		n += len(k) + len(v) + 2
	}

	switch v := e.(type) {
	case *model.Way:
		n += len(v.NodeIDs) * 8
	case *model.Relation:
		for _, m := range v.Members {
			n += len(m.Role) + 12
		}
	}

	return n
}
