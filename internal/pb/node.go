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

// Node is a standalone (non-dense) node, used only when a PrimitiveGroup is
// not encoded with DenseNodes.
type Node struct {
	Id   int64
	Keys []uint32
	Vals []uint32
	Info *Info
	Lat  int64
	Lon  int64
}

func (n *Node) GetId() int64 {
	if n == nil {
		return 0
	}

	return n.Id
}

func (n *Node) GetKeys() []uint32 {
	if n == nil {
		return nil
	}

	return n.Keys
}

func (n *Node) GetVals() []uint32 {
	if n == nil {
		return nil
	}

	return n.Vals
}

func (n *Node) GetInfo() *Info {
	if n == nil {
		return nil
	}

	return n.Info
}

func (n *Node) GetLat() int64 {
	if n == nil {
		return 0
	}

	return n.Lat
}

func (n *Node) GetLon() int64 {
	if n == nil {
		return 0
	}

	return n.Lon
}

func (n *Node) MarshalWire() ([]byte, error) {
	w := wire.NewWriter()
	w.WriteSVarint64(1, n.Id)
	w.WritePackedUint32s(2, n.Keys)
	w.WritePackedUint32s(3, n.Vals)

	if n.Info != nil {
		b, err := n.Info.MarshalWire()
		if err != nil {
			return nil, err
		}

		w.WriteRawMessage(4, b)
	}

	w.WriteSVarint64(8, n.Lat)
	w.WriteSVarint64(9, n.Lon)

	return w.Bytes(), nil
}

func (n *Node) UnmarshalWire(data []byte) error {
	r := wire.NewReader(data)

	for r.More() {
		field, wt, err := r.ReadTag()
		if err != nil {
			return err
		}

		switch field {
		case 1:
			if n.Id, err = r.ReadSVarint(); err != nil {
				return err
			}
		case 2:
			b, err := r.ReadBytes()
			if err != nil {
				return err
			}

			if n.Keys, err = wire.ReadPackedUint32s(b); err != nil {
				return err
			}
		case 3:
			b, err := r.ReadBytes()
			if err != nil {
				return err
			}

			if n.Vals, err = wire.ReadPackedUint32s(b); err != nil {
				return err
			}
		case 4:
			b, err := r.ReadBytes()
			if err != nil {
				return err
			}

			n.Info = &Info{}
			if err := n.Info.UnmarshalWire(b); err != nil {
				return err
			}
		case 8:
			if n.Lat, err = r.ReadSVarint(); err != nil {
				return err
			}
		case 9:
			if n.Lon, err = r.ReadSVarint(); err != nil {
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

// DenseNodes is the columnar, delta-coded encoding of a batch of nodes.
// Id, Lat, and Lon are zigzag-coded deltas; KeysVals is a flat, plain
// (non-zigzag) run of alternating key/value string-table indices per node,
// each node's run terminated by a 0.
type DenseNodes struct {
	Id        []int64
	Denseinfo *DenseInfo
	Lat       []int64
	Lon       []int64
	KeysVals  []int32
}

func (d *DenseNodes) GetId() []int64 {
	if d == nil {
		return nil
	}

	return d.Id
}

func (d *DenseNodes) GetDenseinfo() *DenseInfo {
	if d == nil {
		return nil
	}

	return d.Denseinfo
}

func (d *DenseNodes) GetLat() []int64 {
	if d == nil {
		return nil
	}

	return d.Lat
}

func (d *DenseNodes) GetLon() []int64 {
	if d == nil {
		return nil
	}

	return d.Lon
}

func (d *DenseNodes) GetKeysVals() []int32 {
	if d == nil {
		return nil
	}

	return d.KeysVals
}

func (d *DenseNodes) MarshalWire() ([]byte, error) {
	w := wire.NewWriter()
	w.WritePackedSVarint64s(1, d.Id)

	if d.Denseinfo != nil {
		b, err := d.Denseinfo.MarshalWire()
		if err != nil {
			return nil, err
		}

		w.WriteRawMessage(5, b)
	}

	w.WritePackedSVarint64s(8, d.Lat)
	w.WritePackedSVarint64s(9, d.Lon)
	w.WritePackedInt32s(10, d.KeysVals)

	return w.Bytes(), nil
}

func (d *DenseNodes) UnmarshalWire(data []byte) error {
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

			if d.Id, err = wire.ReadPackedSVarint64s(b); err != nil {
				return err
			}
		case 5:
			b, err := r.ReadBytes()
			if err != nil {
				return err
			}

			d.Denseinfo = &DenseInfo{}
			if err := d.Denseinfo.UnmarshalWire(b); err != nil {
				return err
			}
		case 8:
			b, err := r.ReadBytes()
			if err != nil {
				return err
			}

			if d.Lat, err = wire.ReadPackedSVarint64s(b); err != nil {
				return err
			}
		case 9:
			b, err := r.ReadBytes()
			if err != nil {
				return err
			}

			if d.Lon, err = wire.ReadPackedSVarint64s(b); err != nil {
				return err
			}
		case 10:
			b, err := r.ReadBytes()
			if err != nil {
				return err
			}

			if d.KeysVals, err = wire.ReadPackedInt32s(b); err != nil {
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
