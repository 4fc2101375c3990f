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

// Info carries the changeset metadata of a single Node, Way, or Relation.
type Info struct {
	Version   int32
	Timestamp int64
	Changeset int64
	Uid       int32
	UserSid   int32
	Visible   *bool
}

func (i *Info) GetVersion() int32 {
	if i == nil {
		return -1
	}

	return i.Version
}

func (i *Info) GetTimestamp() int64 {
	if i == nil {
		return 0
	}

	return i.Timestamp
}

func (i *Info) GetChangeset() int64 {
	if i == nil {
		return 0
	}

	return i.Changeset
}

func (i *Info) GetUid() int32 {
	if i == nil {
		return 0
	}

	return i.Uid
}

func (i *Info) GetUserSid() int32 {
	if i == nil {
		return 0
	}

	return i.UserSid
}

func (i *Info) GetVisible() bool {
	if i == nil || i.Visible == nil {
		return false
	}

	return *i.Visible
}

func (i *Info) MarshalWire() ([]byte, error) {
	w := wire.NewWriter()
	w.WriteInt32(1, i.Version)
	w.WriteInt64(2, i.Timestamp)
	w.WriteInt64(3, i.Changeset)
	w.WriteInt32(4, i.Uid)
	w.WriteInt32(5, i.UserSid)

	if i.Visible != nil {
		w.WriteBool(6, *i.Visible)
	}

	return w.Bytes(), nil
}

func (i *Info) UnmarshalWire(data []byte) error {
	i.Version = -1

	r := wire.NewReader(data)

	for r.More() {
		field, wt, err := r.ReadTag()
		if err != nil {
			return err
		}

		switch field {
		case 1:
			v, err := r.ReadVarint()
			if err != nil {
				return err
			}

			i.Version = int32(uint32(v))
		case 2:
			v, err := r.ReadVarint()
			if err != nil {
				return err
			}

			i.Timestamp = int64(v)
		case 3:
			v, err := r.ReadVarint()
			if err != nil {
				return err
			}

			i.Changeset = int64(v)
		case 4:
			v, err := r.ReadVarint()
			if err != nil {
				return err
			}

			i.Uid = int32(uint32(v))
		case 5:
			v, err := r.ReadVarint()
			if err != nil {
				return err
			}

			i.UserSid = int32(uint32(v))
		case 6:
			v, err := r.ReadVarint()
			if err != nil {
				return err
			}

			i.Visible = Bool(v != 0)
		default:
			if err := r.SkipField(wt); err != nil {
				return err
			}
		}
	}

	return nil
}

// DenseInfo carries the per-node columns of DenseNodes.Denseinfo. Version is
// a plain (non-zigzag) delta; Timestamp, Changeset, Uid, and UserSid are
// zigzag-coded deltas, since their per-node change need not be positive.
// Visible is absolute per-node and, if empty, means every node is visible.
type DenseInfo struct {
	Version   []int32
	Timestamp []int64
	Changeset []int64
	Uid       []int32
	UserSid   []int32
	Visible   []bool
}

func (d *DenseInfo) GetVersion() []int32 {
	if d == nil {
		return nil
	}

	return d.Version
}

func (d *DenseInfo) GetTimestamp() []int64 {
	if d == nil {
		return nil
	}

	return d.Timestamp
}

func (d *DenseInfo) GetChangeset() []int64 {
	if d == nil {
		return nil
	}

	return d.Changeset
}

func (d *DenseInfo) GetUid() []int32 {
	if d == nil {
		return nil
	}

	return d.Uid
}

func (d *DenseInfo) GetUserSid() []int32 {
	if d == nil {
		return nil
	}

	return d.UserSid
}

func (d *DenseInfo) GetVisible() []bool {
	if d == nil {
		return nil
	}

	return d.Visible
}

func (d *DenseInfo) MarshalWire() ([]byte, error) {
	w := wire.NewWriter()
	w.WritePackedInt32s(1, d.Version)
	w.WritePackedSVarint64s(2, d.Timestamp)
	w.WritePackedSVarint64s(3, d.Changeset)
	w.WritePackedSVarint32s(4, d.Uid)
	w.WritePackedSVarint32s(5, d.UserSid)
	w.WritePackedBools(6, d.Visible)

	return w.Bytes(), nil
}

func (d *DenseInfo) UnmarshalWire(data []byte) error {
	r := wire.NewReader(data)

	for r.More() {
		field, wt, err := r.ReadTag()
		if err != nil {
			return err
		}

		switch field {
		case 1, 2, 3, 4, 5, 6:
			b, err := r.ReadBytes()
			if err != nil {
				return err
			}

			switch field {
			case 1:
				d.Version, err = wire.ReadPackedInt32s(b)
			case 2:
				d.Timestamp, err = wire.ReadPackedSVarint64s(b)
			case 3:
				d.Changeset, err = wire.ReadPackedSVarint64s(b)
			case 4:
				d.Uid, err = wire.ReadPackedSVarint32s(b)
			case 5:
				d.UserSid, err = wire.ReadPackedSVarint32s(b)
			case 6:
				d.Visible, err = wire.ReadPackedBools(b)
			}

			if err != nil {
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
