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
	"errors"
	"fmt"
	"time"

	"github.com/nextbillion-ai/osmpbf/internal/pb"
	"github.com/nextbillion-ai/osmpbf/model"
)

// ErrStringTableIndexOutOfRange is returned when a decoded block references a
// string table index beyond the table a malformed or truncated blob carried.
var ErrStringTableIndexOutOfRange = errors.New("codec: string table index out of range")

// ErrUnknownElementType is returned when a relation member's type enum isn't
// one of NODE/WAY/RELATION.
var ErrUnknownElementType = errors.New("codec: unknown element type")

// DecodeBlock parses a wire-encoded PrimitiveBlock and returns its elements
// in the order they appear: each PrimitiveGroup's plain nodes, dense nodes,
// ways, then relations, in turn.
func DecodeBlock(buf []byte) ([]model.Element, error) {
	groups, err := DecodeBlockGroups(buf)
	if err != nil {
		return nil, err
	}

	elements := make([]model.Element, 0)
	for _, g := range groups {
		elements = append(elements, g...)
	}

	return elements, nil
}

// DecodeBlockGroups parses a wire-encoded PrimitiveBlock and returns one
// element slice per PrimitiveGroup, in the order the groups and the
// elements within them appear. An index entry's (group, idx) pair addresses
// directly into this result: groups[group][idx].
func DecodeBlockGroups(buf []byte) ([][]model.Element, error) {
	blk := &pb.PrimitiveBlock{}
	if err := blk.UnmarshalWire(buf); err != nil {
		return nil, fmt.Errorf("codec: unmarshal primitive block: %w", err)
	}

	c := newDecodeContext(blk)

	pgs := blk.GetPrimitivegroup()
	groups := make([][]model.Element, len(pgs))

	for i, pg := range pgs {
		nodes, err := c.decodeNodes(pg.Nodes)
		if err != nil {
			return nil, err
		}

		dense, err := c.decodeDenseNodes(pg.Dense)
		if err != nil {
			return nil, err
		}

		ways, err := c.decodeWays(pg.Ways)
		if err != nil {
			return nil, err
		}

		relations, err := c.decodeRelations(pg.Relations)
		if err != nil {
			return nil, err
		}

		elements := make([]model.Element, 0, len(nodes)+len(dense)+len(ways)+len(relations))
		elements = append(elements, nodes...)
		elements = append(elements, dense...)
		elements = append(elements, ways...)
		elements = append(elements, relations...)

		groups[i] = elements
	}

	return groups, nil
}

type decodeContext struct {
	strings         []string
	granularity     int32
	latOffset       int64
	lonOffset       int64
	dateGranularity int32
}

func newDecodeContext(blk *pb.PrimitiveBlock) *decodeContext {
	return &decodeContext{
		strings:         blk.GetStringtable().GetS(),
		granularity:     blk.GetGranularity(),
		latOffset:       blk.GetLatOffset(),
		lonOffset:       blk.GetLonOffset(),
		dateGranularity: blk.GetDateGranularity(),
	}
}

// str returns the table entry at i, or ErrStringTableIndexOutOfRange if the
// wire data referenced an index the table never carried.
func (c *decodeContext) str(i uint32) (string, error) {
	if int(i) >= len(c.strings) {
		return "", fmt.Errorf("%w: index %d, table size %d", ErrStringTableIndexOutOfRange, i, len(c.strings))
	}

	return c.strings[i], nil
}

func (c *decodeContext) decodeNodes(nodes []*pb.Node) ([]model.Element, error) {
	elements := make([]model.Element, len(nodes))

	for i, n := range nodes {
		tags, err := c.decodeTags(n.GetKeys(), n.GetVals())
		if err != nil {
			return nil, err
		}

		info, err := c.decodeInfo(n.GetInfo())
		if err != nil {
			return nil, err
		}

		elements[i] = &model.Node{
			ID:   model.ID(n.GetId()),
			Tags: tags,
			Info: info,
			Lat:  model.ToDegrees(c.latOffset, c.granularity, n.GetLat()),
			Lon:  model.ToDegrees(c.lonOffset, c.granularity, n.GetLon()),
		}
	}

	return elements, nil
}

func (c *decodeContext) decodeDenseNodes(dense *pb.DenseNodes) ([]model.Element, error) {
	if dense == nil {
		return nil, nil
	}

	ids := dense.GetId()
	elements := make([]model.Element, len(ids))

	tags := newTagStream(c.strings, dense.GetKeysVals())
	lats := dense.GetLat()
	lons := dense.GetLon()

	var infos *denseInfoStream
	if dense.GetDenseinfo() != nil {
		infos = newDenseInfoStream(c, dense.GetDenseinfo())
	}

	var id, lat, lon int64

	for i := range ids {
		id += ids[i]
		lat += lats[i]
		lon += lons[i]

		var (
			info *model.Info
			err  error
		)

		if infos != nil {
			info, err = infos.next()
			if err != nil {
				return nil, err
			}
		} else {
			info = &model.Info{Visible: true}
		}

		nodeTags, err := tags.next()
		if err != nil {
			return nil, err
		}

		elements[i] = &model.Node{
			ID:   model.ID(id),
			Tags: nodeTags,
			Info: info,
			Lat:  model.ToDegrees(c.latOffset, c.granularity, lat),
			Lon:  model.ToDegrees(c.lonOffset, c.granularity, lon),
		}
	}

	return elements, nil
}

func (c *decodeContext) decodeWays(ways []*pb.Way) ([]model.Element, error) {
	elements := make([]model.Element, len(ways))

	for i, w := range ways {
		refs := w.GetRefs()
		nodeIDs := make([]model.ID, len(refs))

		var nodeID int64

		for j, delta := range refs {
			nodeID += delta
			nodeIDs[j] = model.ID(nodeID)
		}

		tags, err := c.decodeTags(w.GetKeys(), w.GetVals())
		if err != nil {
			return nil, err
		}

		info, err := c.decodeInfo(w.GetInfo())
		if err != nil {
			return nil, err
		}

		elements[i] = &model.Way{
			ID:      model.ID(w.GetId()),
			Tags:    tags,
			NodeIDs: nodeIDs,
			Info:    info,
		}
	}

	return elements, nil
}

func (c *decodeContext) decodeRelations(relations []*pb.Relation) ([]model.Element, error) {
	elements := make([]model.Element, len(relations))

	for i, r := range relations {
		tags, err := c.decodeTags(r.GetKeys(), r.GetVals())
		if err != nil {
			return nil, err
		}

		info, err := c.decodeInfo(r.GetInfo())
		if err != nil {
			return nil, err
		}

		members, err := c.decodeMembers(r)
		if err != nil {
			return nil, err
		}

		elements[i] = &model.Relation{
			ID:      model.ID(r.GetId()),
			Tags:    tags,
			Info:    info,
			Members: members,
		}
	}

	return elements, nil
}

func (c *decodeContext) decodeMembers(r *pb.Relation) ([]model.Member, error) {
	memids := r.GetMemids()
	types := r.GetTypes()
	roles := r.GetRolesSid()
	members := make([]model.Member, len(memids))

	var memid int64

	for i := range memids {
		memid += memids[i]

		typ, err := decodeMemberType(types[i])
		if err != nil {
			return nil, err
		}

		role, err := c.str(roles[i])
		if err != nil {
			return nil, err
		}

		members[i] = model.Member{
			ID:   model.ID(memid),
			Type: typ,
			Role: role,
		}
	}

	return members, nil
}

func (c *decodeContext) decodeTags(keyIDs, valIDs []uint32) (map[string]string, error) {
	tags := make(map[string]string, len(keyIDs))

	for i, k := range keyIDs {
		key, err := c.str(k)
		if err != nil {
			return nil, err
		}

		val, err := c.str(valIDs[i])
		if err != nil {
			return nil, err
		}

		tags[key] = val
	}

	return tags, nil
}

func (c *decodeContext) decodeInfo(info *pb.Info) (*model.Info, error) {
	i := &model.Info{Visible: true}
	if info == nil {
		return i, nil
	}

	user, err := c.str(info.GetUserSid())
	if err != nil {
		return nil, err
	}

	i.Version = info.GetVersion()
	i.Timestamp = toTimestamp(c.dateGranularity, info.GetTimestamp())
	i.Changeset = info.GetChangeset()
	i.UID = model.UID(info.GetUid())
	i.User = user

	if info.Visible != nil {
		i.Visible = info.GetVisible()
	}

	return i, nil
}

// tagStream walks a DenseNodes KeysVals column, yielding one node's tag map
// per call. A 0 entry terminates the current node's run.
type tagStream struct {
	strings []string
	keyVals []int32
	i       int
}

func newTagStream(strings []string, keyVals []int32) *tagStream {
	return &tagStream{strings: strings, keyVals: keyVals}
}

func (t *tagStream) next() (map[string]string, error) {
	if t.keyVals == nil {
		return map[string]string{}, nil
	}

	tags := make(map[string]string)
	i := t.i

	for t.keyVals[i] > 0 {
		k := t.keyVals[i]
		v := t.keyVals[i+1]

		if int(k) >= len(t.strings) || int(v) >= len(t.strings) {
			return nil, fmt.Errorf("%w: tag index (%d, %d), table size %d", ErrStringTableIndexOutOfRange, k, v, len(t.strings))
		}

		tags[t.strings[k]] = t.strings[v]
		i += 2
	}

	t.i = i + 1

	return tags, nil
}

// denseInfoStream decodes DenseInfo's five delta-coded columns one node at
// a time, keeping the running sums between calls.
type denseInfoStream struct {
	dateGranularity int32
	strings         []string

	versions   []int32
	timestamps []int64
	changesets []int64
	uids       []int32
	userSids   []int32
	visible    []bool

	version   int32
	timestamp int64
	changeset int64
	uid       int32
	userSid   int32
	cursor    int
}

func newDenseInfoStream(c *decodeContext, di *pb.DenseInfo) *denseInfoStream {
	return &denseInfoStream{
		dateGranularity: c.dateGranularity,
		strings:         c.strings,
		versions:        di.GetVersion(),
		timestamps:      di.GetTimestamp(),
		changesets:      di.GetChangeset(),
		uids:            di.GetUid(),
		userSids:        di.GetUserSid(),
		visible:         di.GetVisible(),
	}
}

func (d *denseInfoStream) next() (*model.Info, error) {
	idx := d.cursor

	d.version += d.versions[idx]
	d.timestamp += d.timestamps[idx]
	d.changeset += d.changesets[idx]
	d.uid += d.uids[idx]
	d.userSid += d.userSids[idx]

	if int(d.userSid) >= len(d.strings) {
		return nil, fmt.Errorf("%w: index %d, table size %d", ErrStringTableIndexOutOfRange, d.userSid, len(d.strings))
	}

	info := &model.Info{
		Version:   d.version,
		UID:       model.UID(d.uid),
		Timestamp: toTimestamp(d.dateGranularity, d.timestamp),
		Changeset: d.changeset,
		User:      d.strings[d.userSid],
	}

	if d.visible == nil {
		info.Visible = true
	} else {
		info.Visible = d.visible[idx]
	}

	d.cursor++

	return info, nil
}

// decodeMemberType converts the wire enum to the model's EntityType.
func decodeMemberType(mt pb.Relation_MemberType) (model.EntityType, error) {
	switch mt {
	case pb.Relation_NODE:
		return model.NODE, nil
	case pb.Relation_WAY:
		return model.WAY, nil
	case pb.Relation_RELATION:
		return model.RELATION, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnknownElementType, mt)
	}
}

// toTimestamp converts a timestamp in units of dateGranularity milliseconds
// to a UTC time.Time.
func toTimestamp(dateGranularity int32, timestamp int64) time.Time {
	return time.UnixMilli(timestamp * int64(dateGranularity)).UTC()
}
