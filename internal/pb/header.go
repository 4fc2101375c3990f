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

// HeaderBlock is the first block of an OSM PBF file.
type HeaderBlock struct {
	Bbox                              *HeaderBBox
	RequiredFeatures                  []string
	OptionalFeatures                  []string
	Writingprogram                    string
	Source                            string
	OsmosisReplicationTimestamp       int64
	OsmosisReplicationSequenceNumber int64
	OsmosisReplicationBaseUrl         string
}

func (h *HeaderBlock) GetBbox() *HeaderBBox {
	if h == nil {
		return nil
	}

	return h.Bbox
}

func (h *HeaderBlock) GetRequiredFeatures() []string {
	if h == nil {
		return nil
	}

	return h.RequiredFeatures
}

func (h *HeaderBlock) GetOptionalFeatures() []string {
	if h == nil {
		return nil
	}

	return h.OptionalFeatures
}

func (h *HeaderBlock) GetWritingprogram() string {
	if h == nil {
		return ""
	}

	return h.Writingprogram
}

func (h *HeaderBlock) GetSource() string {
	if h == nil {
		return ""
	}

	return h.Source
}

func (h *HeaderBlock) GetOsmosisReplicationTimestamp() int64 {
	if h == nil {
		return 0
	}

	return h.OsmosisReplicationTimestamp
}

func (h *HeaderBlock) GetOsmosisReplicationSequenceNumber() int64 {
	if h == nil {
		return 0
	}

	return h.OsmosisReplicationSequenceNumber
}

func (h *HeaderBlock) GetOsmosisReplicationBaseUrl() string {
	if h == nil {
		return ""
	}

	return h.OsmosisReplicationBaseUrl
}

func (h *HeaderBlock) MarshalWire() ([]byte, error) {
	w := wire.NewWriter()

	if h.Bbox != nil {
		bb, err := h.Bbox.MarshalWire()
		if err != nil {
			return nil, err
		}

		w.WriteRawMessage(1, bb)
	}

	for _, f := range h.RequiredFeatures {
		w.WriteString(4, f)
	}

	for _, f := range h.OptionalFeatures {
		w.WriteString(5, f)
	}

	if h.Writingprogram != "" {
		w.WriteString(16, h.Writingprogram)
	}

	if h.Source != "" {
		w.WriteString(17, h.Source)
	}

	if h.OsmosisReplicationTimestamp != 0 {
		w.WriteInt64(32, h.OsmosisReplicationTimestamp)
	}

	if h.OsmosisReplicationSequenceNumber != 0 {
		w.WriteInt64(33, h.OsmosisReplicationSequenceNumber)
	}

	if h.OsmosisReplicationBaseUrl != "" {
		w.WriteString(34, h.OsmosisReplicationBaseUrl)
	}

	return w.Bytes(), nil
}

func (h *HeaderBlock) UnmarshalWire(data []byte) error {
	r := wire.NewReader(data)

	for r.More() {
		field, wt, err := r.ReadTag()
		if err != nil {
			return err
		}

		switch field {
		case 1:
			b, err := r.ReadBytes()
			if err != nil {
				return err
			}

			h.Bbox = &HeaderBBox{}
			if err := h.Bbox.UnmarshalWire(b); err != nil {
				return err
			}
		case 4:
			s, err := r.ReadString()
			if err != nil {
				return err
			}

			h.RequiredFeatures = append(h.RequiredFeatures, s)
		case 5:
			s, err := r.ReadString()
			if err != nil {
				return err
			}

			h.OptionalFeatures = append(h.OptionalFeatures, s)
		case 16:
			if h.Writingprogram, err = r.ReadString(); err != nil {
				return err
			}
		case 17:
			if h.Source, err = r.ReadString(); err != nil {
				return err
			}
		case 32:
			v, err := r.ReadVarint()
			if err != nil {
				return err
			}

			h.OsmosisReplicationTimestamp = int64(v)
		case 33:
			v, err := r.ReadVarint()
			if err != nil {
				return err
			}

			h.OsmosisReplicationSequenceNumber = int64(v)
		case 34:
			if h.OsmosisReplicationBaseUrl, err = r.ReadString(); err != nil {
				return err
			}
		default:
			if err := r.SkipField(wt); err != nil {
				return err
			}
		}
	}

	return nil
}

// HeaderBBox is the bounding box of an OSM PBF file, in nano-degrees.
type HeaderBBox struct {
	Left   int64
	Right  int64
	Top    int64
	Bottom int64
}

func (b *HeaderBBox) GetLeft() int64 {
	if b == nil {
		return 0
	}

	return b.Left
}

func (b *HeaderBBox) GetRight() int64 {
	if b == nil {
		return 0
	}

	return b.Right
}

func (b *HeaderBBox) GetTop() int64 {
	if b == nil {
		return 0
	}

	return b.Top
}

func (b *HeaderBBox) GetBottom() int64 {
	if b == nil {
		return 0
	}

	return b.Bottom
}

func (b *HeaderBBox) MarshalWire() ([]byte, error) {
	w := wire.NewWriter()
	w.WriteSVarint64(1, b.Left)
	w.WriteSVarint64(2, b.Right)
	w.WriteSVarint64(3, b.Top)
	w.WriteSVarint64(4, b.Bottom)

	return w.Bytes(), nil
}

func (b *HeaderBBox) UnmarshalWire(data []byte) error {
	r := wire.NewReader(data)

	for r.More() {
		field, wt, err := r.ReadTag()
		if err != nil {
			return err
		}

		switch field {
		case 1:
			if b.Left, err = r.ReadSVarint(); err != nil {
				return err
			}
		case 2:
			if b.Right, err = r.ReadSVarint(); err != nil {
				return err
			}
		case 3:
			if b.Top, err = r.ReadSVarint(); err != nil {
				return err
			}
		case 4:
			if b.Bottom, err = r.ReadSVarint(); err != nil {
				return err
			}
		default:
			if err := r.SkipField(wt); err != nil {
				return err
			}
		}
	}

	return nil
}
