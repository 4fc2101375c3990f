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

// Way is an ordered list of node references, stored as zigzag-coded deltas.
type Way struct {
	Id   int64
	Keys []uint32
	Vals []uint32
	Info *Info
	Refs []int64
}

func (w *Way) GetId() int64 {
	if w == nil {
		return 0
	}

	return w.Id
}

func (w *Way) GetKeys() []uint32 {
	if w == nil {
		return nil
	}

	return w.Keys
}

func (w *Way) GetVals() []uint32 {
	if w == nil {
		return nil
	}

	return w.Vals
}

func (w *Way) GetInfo() *Info {
	if w == nil {
		return nil
	}

	return w.Info
}

func (w *Way) GetRefs() []int64 {
	if w == nil {
		return nil
	}

	return w.Refs
}

func (w *Way) MarshalWire() ([]byte, error) {
	wr := wire.NewWriter()
	wr.WriteInt64(1, w.Id)
	wr.WritePackedUint32s(2, w.Keys)
	wr.WritePackedUint32s(3, w.Vals)

	if w.Info != nil {
		b, err := w.Info.MarshalWire()
		if err != nil {
			return nil, err
		}

		wr.WriteRawMessage(4, b)
	}

	wr.WritePackedSVarint64s(8, w.Refs)

	return wr.Bytes(), nil
}

func (w *Way) UnmarshalWire(data []byte) error {
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

			w.Id = int64(v)
		case 2:
			b, err := r.ReadBytes()
			if err != nil {
				return err
			}

			if w.Keys, err = wire.ReadPackedUint32s(b); err != nil {
				return err
			}
		case 3:
			b, err := r.ReadBytes()
			if err != nil {
				return err
			}

			if w.Vals, err = wire.ReadPackedUint32s(b); err != nil {
				return err
			}
		case 4:
			b, err := r.ReadBytes()
			if err != nil {
				return err
			}

			w.Info = &Info{}
			if err := w.Info.UnmarshalWire(b); err != nil {
				return err
			}
		case 8:
			b, err := r.ReadBytes()
			if err != nil {
				return err
			}

			if w.Refs, err = wire.ReadPackedSVarint64s(b); err != nil {
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
