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

package codec

import (
	"sort"
	"time"

	"golang.org/x/exp/constraints"

	"github.com/nextbillion-ai/osmpbf/internal/pb"
	"github.com/nextbillion-ai/osmpbf/model"
)

const (
	// DateGranularityMs is the default millisecond granularity of encoded
	// timestamps.
	DateGranularityMs = 1000
	// Granularity is the default nanodegree granularity of encoded node
	// coordinates.
	Granularity = 100
	// LatOffset and LonOffset are the default coordinate offsets.
	LatOffset = 0
	LonOffset = 0

	// EntityLimit is the conventional max number of elements per block;
	// some writers (e.g. osmosis) cap blocks at this size.
	EntityLimit = 8000
)

// EncodeBlock builds a single PrimitiveBlock from a mixed-type batch of
// elements, grouping nodes into a dense group and ways/relations into their
// own groups so elements may be supplied in any order. It returns the
// block's bounding box alongside the block, since only the dense-node path
// has coordinates to expand it with.
func EncodeBlock(elements []model.Element) (*pb.PrimitiveBlock, model.BoundingBox) {
	ctx := newEncodeContext(elements)

	return ctx.build(), ctx.bbox
}

type encodeContext struct {
	table    *stringTable
	elements []model.Element
	bbox     model.BoundingBox
}

func newEncodeContext(elements []model.Element) *encodeContext {
	set := newStringSet()

	for _, e := range elements {
		extractTagsAndInfo(set, e)

		switch v := e.(type) {
		case *model.Relation:
			extractMemberRoles(set, v)
		}
	}

	return &encodeContext{
		table:    set.table(),
		elements: elements,
		bbox:     *model.InitialBoundingBox(),
	}
}

func (c *encodeContext) build() *pb.PrimitiveBlock {
	blk := &pb.PrimitiveBlock{
		Stringtable:     &pb.StringTable{S: c.table.asArray()},
		Granularity:     Granularity,
		LatOffset:       LatOffset,
		LonOffset:       LonOffset,
		DateGranularity: DateGranularityMs,
	}

	if dense := c.extractDenseNodes(); dense != nil {
		blk.Primitivegroup = append(blk.Primitivegroup, &pb.PrimitiveGroup{Dense: dense})
	}

	if ways := c.extractWays(); len(ways) > 0 {
		blk.Primitivegroup = append(blk.Primitivegroup, &pb.PrimitiveGroup{Ways: ways})
	}

	if relations := c.extractRelations(); len(relations) > 0 {
		blk.Primitivegroup = append(blk.Primitivegroup, &pb.PrimitiveGroup{Relations: relations})
	}

	return blk
}

func (c *encodeContext) extractDenseNodes() *pb.DenseNodes {
	var (
		ids, lats, lons, ts, cs       []int64
		versions, uids, usids         []int32
		keyValIDs                     []int32
		visibles                      []bool
		any                           bool
	)

	for _, e := range c.elements {
		n, ok := e.(*model.Node)
		if !ok {
			continue
		}

		any = true

		ids = append(ids, int64(n.ID))

		c.bbox.ExpandWithLatLng(n.Lat, n.Lon)

		lats = append(lats, model.ToCoordinate(LatOffset, Granularity, n.Lat))
		lons = append(lons, model.ToCoordinate(LonOffset, Granularity, n.Lon))

		info := n.GetInfo()
		versions = append(versions, info.Version)
		uids = append(uids, int32(info.UID))
		ts = append(ts, fromTimestamp(DateGranularityMs, info.Timestamp))
		cs = append(cs, info.Changeset)
		visibles = append(visibles, info.Visible)
		usids = append(usids, c.table.indexOf(info.User))

		keyIDs, valIDs := calcTagIDs(n.Tags, c.table)
		for i, k := range keyIDs {
			keyValIDs = append(keyValIDs, int32(k), int32(valIDs[i]))
		}

		keyValIDs = append(keyValIDs, 0)
	}

	if !any {
		return nil
	}

	return &pb.DenseNodes{
		Id: calcDeltas(ids),
		Denseinfo: &pb.DenseInfo{
			Version:   calcDeltas(versions),
			Timestamp: calcDeltas(ts),
			Changeset: calcDeltas(cs),
			Uid:       calcDeltas(uids),
			UserSid:   calcDeltas(usids),
			Visible:   visibles,
		},
		Lat:      calcDeltas(lats),
		Lon:      calcDeltas(lons),
		KeysVals: keyValIDs,
	}
}

func (c *encodeContext) extractWays() []*pb.Way {
	var ways []*pb.Way

	for _, e := range c.elements {
		w, ok := e.(*model.Way)
		if !ok {
			continue
		}

		refs := make([]int64, len(w.NodeIDs))
		for i, id := range w.NodeIDs {
			refs[i] = int64(id)
		}

		keyIDs, valIDs := calcTagIDs(w.Tags, c.table)

		ways = append(ways, &pb.Way{
			Id:   int64(w.ID),
			Keys: keyIDs,
			Vals: valIDs,
			Info: toInfoPb(w.Info, c.table),
			Refs: calcDeltas(refs),
		})
	}

	return ways
}

func (c *encodeContext) extractRelations() []*pb.Relation {
	var relations []*pb.Relation

	for _, e := range c.elements {
		r, ok := e.(*model.Relation)
		if !ok {
			continue
		}

		keyIDs, valIDs := calcTagIDs(r.Tags, c.table)
		memids := make([]int64, len(r.Members))
		roleIDs := make([]int32, len(r.Members))
		types := make([]pb.Relation_MemberType, len(r.Members))

		for i, m := range r.Members {
			memids[i] = int64(m.ID)
			roleIDs[i] = c.table.indexOf(m.Role)
			types[i] = pb.Relation_MemberType(m.Type)
		}

		relations = append(relations, &pb.Relation{
			Id:       int64(r.ID),
			Keys:     keyIDs,
			Vals:     valIDs,
			Info:     toInfoPb(r.Info, c.table),
			RolesSid: roleIDs,
			Memids:   calcDeltas(memids),
			Types:    types,
		})
	}

	return relations
}

func extractMemberRoles(set *stringSet, r *model.Relation) {
	for _, m := range r.Members {
		set.add(m.Role)
	}
}

func extractTagsAndInfo(set *stringSet, e model.Element) {
	for k, v := range e.GetTags() {
		set.add(k)
		set.add(v)
	}

	if info := e.GetInfo(); info != nil {
		set.add(info.User)
	}
}

// calcDeltas returns the running-difference encoding of values: out[0] =
// values[0], out[i] = values[i] - values[i-1] thereafter.
func calcDeltas[T constraints.Integer | constraints.Float](values []T) []T {
	var prev T

	deltas := make([]T, len(values))
	for i, v := range values {
		deltas[i] = v - prev
		prev = v
	}

	return deltas
}

func calcTagIDs(tags map[string]string, table *stringTable) (keyIDs, valIDs []uint32) {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	for _, k := range keys {
		keyIDs = append(keyIDs, uint32(table.indexOf(k)))
		valIDs = append(valIDs, uint32(table.indexOf(tags[k])))
	}

	return keyIDs, valIDs
}

func toInfoPb(info *model.Info, table *stringTable) *pb.Info {
	if info == nil {
		return nil
	}

	return &pb.Info{
		Version:   info.Version,
		Timestamp: fromTimestamp(DateGranularityMs, info.Timestamp),
		Changeset: info.Changeset,
		Uid:       int32(info.UID),
		UserSid:   table.indexOf(info.User),
		Visible:   pb.Bool(info.Visible),
	}
}

// fromTimestamp is the inverse of toTimestamp: it converts a UTC time.Time
// to units of dateGranularity milliseconds.
func fromTimestamp(dateGranularity int32, t time.Time) int64 {
	return t.UnixMilli() / int64(dateGranularity)
}
