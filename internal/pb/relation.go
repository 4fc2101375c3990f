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

// Relation_MemberType enumerates the kind of element a relation member
// refers to.
type Relation_MemberType int32

const (
	Relation_NODE     Relation_MemberType = 0
	Relation_WAY      Relation_MemberType = 1
	Relation_RELATION Relation_MemberType = 2
)

// Relation documents a relationship between two or more elements. Memids is
// a zigzag-coded delta; RolesSid and Types are absolute, independent of one
// another element to element.
type Relation struct {
	Id       int64
	Keys     []uint32
	Vals     []uint32
	Info     *Info
	RolesSid []int32
	Memids   []int64
	Types    []Relation_MemberType
}

func (r *Relation) GetId() int64 {
	if r == nil {
		return 0
	}

	return r.Id
}

func (r *Relation) GetKeys() []uint32 {
	if r == nil {
		return nil
	}

	return r.Keys
}

func (r *Relation) GetVals() []uint32 {
	if r == nil {
		return nil
	}

	return r.Vals
}

func (r *Relation) GetInfo() *Info {
	if r == nil {
		return nil
	}

	return r.Info
}

func (r *Relation) GetRolesSid() []int32 {
	if r == nil {
		return nil
	}

	return r.RolesSid
}

func (r *Relation) GetMemids() []int64 {
	if r == nil {
		return nil
	}

	return r.Memids
}

func (r *Relation) GetTypes() []Relation_MemberType {
	if r == nil {
		return nil
	}

	return r.Types
}

func (r *Relation) MarshalWire() ([]byte, error) {
	w := wire.NewWriter()
	w.WriteInt64(1, r.Id)
	w.WritePackedUint32s(2, r.Keys)
	w.WritePackedUint32s(3, r.Vals)

	if r.Info != nil {
		b, err := r.Info.MarshalWire()
		if err != nil {
			return nil, err
		}

		w.WriteRawMessage(4, b)
	}

	w.WritePackedInt32s(8, r.RolesSid)
	w.WritePackedSVarint64s(9, r.Memids)

	if len(r.Types) > 0 {
		types := make([]int32, len(r.Types))
		for i, t := range r.Types {
			types[i] = int32(t)
		}

		w.WritePackedInt32s(10, types)
	}

	return w.Bytes(), nil
}

func (r *Relation) UnmarshalWire(data []byte) error {
	rd := wire.NewReader(data)

	for rd.More() {
		field, wt, err := rd.ReadTag()
		if err != nil {
			return err
		}

		switch field {
		case 1:
			v, err := rd.ReadVarint()
			if err != nil {
				return err
			}

			r.Id = int64(v)
		case 2:
			b, err := rd.ReadBytes()
			if err != nil {
				return err
			}

			if r.Keys, err = wire.ReadPackedUint32s(b); err != nil {
				return err
			}
		case 3:
			b, err := rd.ReadBytes()
			if err != nil {
				return err
			}

			if r.Vals, err = wire.ReadPackedUint32s(b); err != nil {
				return err
			}
		case 4:
			b, err := rd.ReadBytes()
			if err != nil {
				return err
			}

			r.Info = &Info{}
			if err := r.Info.UnmarshalWire(b); err != nil {
				return err
			}
		case 8:
			b, err := rd.ReadBytes()
			if err != nil {
				return err
			}

			if r.RolesSid, err = wire.ReadPackedInt32s(b); err != nil {
				return err
			}
		case 9:
			b, err := rd.ReadBytes()
			if err != nil {
				return err
			}

			if r.Memids, err = wire.ReadPackedSVarint64s(b); err != nil {
				return err
			}
		case 10:
			b, err := rd.ReadBytes()
			if err != nil {
				return err
			}

			ts, err := wire.ReadPackedInt32s(b)
			if err != nil {
				return err
			}

			r.Types = make([]Relation_MemberType, len(ts))
			for i, t := range ts {
				r.Types[i] = Relation_MemberType(t)
			}
		default:
			if err := rd.SkipField(wt); err != nil {
				return err
			}
		}
	}

	return nil
}
