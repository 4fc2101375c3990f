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

const (
	defaultGranularity     = 100
	defaultDateGranularity = 1000
)

// StringTable is the de-duplicated pool of strings (tag keys/values, user
// names, relation member roles) a PrimitiveBlock's elements index into.
type StringTable struct {
	S []string
}

func (s *StringTable) GetS() []string {
	if s == nil {
		return nil
	}

	return s.S
}

func (s *StringTable) MarshalWire() ([]byte, error) {
	w := wire.NewWriter()
	for _, v := range s.S {
		w.WriteString(1, v)
	}

	return w.Bytes(), nil
}

func (s *StringTable) UnmarshalWire(data []byte) error {
	r := wire.NewReader(data)

	for r.More() {
		field, wt, err := r.ReadTag()
		if err != nil {
			return err
		}

		if field != 1 {
			if err := r.SkipField(wt); err != nil {
				return err
			}

			continue
		}

		v, err := r.ReadString()
		if err != nil {
			return err
		}

		s.S = append(s.S, v)
	}

	return nil
}

// PrimitiveGroup holds one homogeneous batch of elements: either Nodes,
// Dense, Ways, or Relations is populated, never more than one.
type PrimitiveGroup struct {
	Nodes     []*Node
	Dense     *DenseNodes
	Ways      []*Way
	Relations []*Relation
}

func (g *PrimitiveGroup) GetNodes() []*Node {
	if g == nil {
		return nil
	}

	return g.Nodes
}

func (g *PrimitiveGroup) GetDense() *DenseNodes {
	if g == nil {
		return nil
	}

	return g.Dense
}

func (g *PrimitiveGroup) GetWays() []*Way {
	if g == nil {
		return nil
	}

	return g.Ways
}

func (g *PrimitiveGroup) GetRelations() []*Relation {
	if g == nil {
		return nil
	}

	return g.Relations
}

func (g *PrimitiveGroup) MarshalWire() ([]byte, error) {
	w := wire.NewWriter()

	for _, n := range g.Nodes {
		b, err := n.MarshalWire()
		if err != nil {
			return nil, err
		}

		w.WriteRawMessage(1, b)
	}

	if g.Dense != nil {
		b, err := g.Dense.MarshalWire()
		if err != nil {
			return nil, err
		}

		w.WriteRawMessage(2, b)
	}

	for _, wy := range g.Ways {
		b, err := wy.MarshalWire()
		if err != nil {
			return nil, err
		}

		w.WriteRawMessage(3, b)
	}

	for _, rel := range g.Relations {
		b, err := rel.MarshalWire()
		if err != nil {
			return nil, err
		}

		w.WriteRawMessage(4, b)
	}

	return w.Bytes(), nil
}

func (g *PrimitiveGroup) UnmarshalWire(data []byte) error {
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

			n := &Node{}
			if err := n.UnmarshalWire(b); err != nil {
				return err
			}

			g.Nodes = append(g.Nodes, n)
		case 2:
			b, err := r.ReadBytes()
			if err != nil {
				return err
			}

			g.Dense = &DenseNodes{}
			if err := g.Dense.UnmarshalWire(b); err != nil {
				return err
			}
		case 3:
			b, err := r.ReadBytes()
			if err != nil {
				return err
			}

			wy := &Way{}
			if err := wy.UnmarshalWire(b); err != nil {
				return err
			}

			g.Ways = append(g.Ways, wy)
		case 4:
			b, err := r.ReadBytes()
			if err != nil {
				return err
			}

			rel := &Relation{}
			if err := rel.UnmarshalWire(b); err != nil {
				return err
			}

			g.Relations = append(g.Relations, rel)
		default:
			if err := r.SkipField(wt); err != nil {
				return err
			}
		}
	}

	return nil
}

// PrimitiveBlock is the payload of an "OSMData" Blob: a string table plus
// one or more PrimitiveGroups, and the granularity/offset parameters their
// coordinate and timestamp deltas are scaled by.
type PrimitiveBlock struct {
	Stringtable     *StringTable
	Primitivegroup  []*PrimitiveGroup
	Granularity     int32
	DateGranularity int32
	LatOffset       int64
	LonOffset       int64
}

// NewPrimitiveBlock returns a PrimitiveBlock with the schema's default
// granularity and offsets, as produced before any field has been read.
func NewPrimitiveBlock() *PrimitiveBlock {
	return &PrimitiveBlock{Granularity: defaultGranularity, DateGranularity: defaultDateGranularity}
}

func (p *PrimitiveBlock) GetStringtable() *StringTable {
	if p == nil {
		return nil
	}

	return p.Stringtable
}

func (p *PrimitiveBlock) GetPrimitivegroup() []*PrimitiveGroup {
	if p == nil {
		return nil
	}

	return p.Primitivegroup
}

func (p *PrimitiveBlock) GetGranularity() int32 {
	if p == nil || p.Granularity == 0 {
		return defaultGranularity
	}

	return p.Granularity
}

func (p *PrimitiveBlock) GetDateGranularity() int32 {
	if p == nil || p.DateGranularity == 0 {
		return defaultDateGranularity
	}

	return p.DateGranularity
}

func (p *PrimitiveBlock) GetLatOffset() int64 {
	if p == nil {
		return 0
	}

	return p.LatOffset
}

func (p *PrimitiveBlock) GetLonOffset() int64 {
	if p == nil {
		return 0
	}

	return p.LonOffset
}

func (p *PrimitiveBlock) MarshalWire() ([]byte, error) {
	w := wire.NewWriter()

	if p.Stringtable != nil {
		b, err := p.Stringtable.MarshalWire()
		if err != nil {
			return nil, err
		}

		w.WriteRawMessage(1, b)
	}

	for _, g := range p.Primitivegroup {
		b, err := g.MarshalWire()
		if err != nil {
			return nil, err
		}

		w.WriteRawMessage(2, b)
	}

	if p.Granularity != 0 && p.Granularity != defaultGranularity {
		w.WriteInt32(17, p.Granularity)
	}

	if p.DateGranularity != 0 && p.DateGranularity != defaultDateGranularity {
		w.WriteInt32(18, p.DateGranularity)
	}

	if p.LatOffset != 0 {
		w.WriteInt64(19, p.LatOffset)
	}

	if p.LonOffset != 0 {
		w.WriteInt64(20, p.LonOffset)
	}

	return w.Bytes(), nil
}

func (p *PrimitiveBlock) UnmarshalWire(data []byte) error {
	p.Granularity = defaultGranularity
	p.DateGranularity = defaultDateGranularity

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

			p.Stringtable = &StringTable{}
			if err := p.Stringtable.UnmarshalWire(b); err != nil {
				return err
			}
		case 2:
			b, err := r.ReadBytes()
			if err != nil {
				return err
			}

			g := &PrimitiveGroup{}
			if err := g.UnmarshalWire(b); err != nil {
				return err
			}

			p.Primitivegroup = append(p.Primitivegroup, g)
		case 17:
			v, err := r.ReadVarint()
			if err != nil {
				return err
			}

			p.Granularity = int32(uint32(v))
		case 18:
			v, err := r.ReadVarint()
			if err != nil {
				return err
			}

			p.DateGranularity = int32(uint32(v))
		case 19:
			v, err := r.ReadVarint()
			if err != nil {
				return err
			}

			p.LatOffset = int64(v)
		case 20:
			v, err := r.ReadVarint()
			if err != nil {
				return err
			}

			p.LonOffset = int64(v)
		default:
			if err := r.SkipField(wt); err != nil {
				return err
			}
		}
	}

	return nil
}
