package codec_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextbillion-ai/osmpbf/internal/codec"
	"github.com/nextbillion-ai/osmpbf/internal/pb"
	"github.com/nextbillion-ai/osmpbf/model"
)

func TestEncodeDecodeDenseNodesRoundTrip(t *testing.T) {
	nodes := []model.Element{
		&model.Node{
			ID:   1,
			Tags: map[string]string{"highway": "residential"},
			Info: &model.Info{Version: 1, UID: 7, Changeset: 42, User: "alice", Visible: true, Timestamp: time.Unix(1000, 0).UTC()},
			Lat:  12.345,
			Lon:  -6.789,
		},
		&model.Node{
			ID:   2,
			Tags: map[string]string{},
			Info: &model.Info{Version: 2, UID: 8, Changeset: 43, User: "bob", Visible: false, Timestamp: time.Unix(2000, 0).UTC()},
			Lat:  12.346,
			Lon:  -6.790,
		},
	}

	blk, bbox := codec.EncodeBlock(nodes)
	require.NotNil(t, blk.Primitivegroup)
	assert.True(t, bbox.Contains(12.345, -6.789))

	data, err := blk.MarshalWire()
	require.NoError(t, err)

	decoded, err := codec.DecodeBlock(data)
	require.NoError(t, err)
	require.Len(t, decoded, 2)

	n0 := decoded[0].(*model.Node)
	assert.EqualValues(t, 1, n0.ID)
	assert.Equal(t, "residential", n0.Tags["highway"])
	assert.Equal(t, "alice", n0.Info.User)
	assert.True(t, n0.Info.Visible)

	n1 := decoded[1].(*model.Node)
	assert.EqualValues(t, 2, n1.ID)
	assert.False(t, n1.Info.Visible)
}

func TestEncodeDecodeWaysRoundTrip(t *testing.T) {
	ways := []model.Element{
		&model.Way{
			ID:      10,
			Tags:    map[string]string{"name": "Main St"},
			NodeIDs: []model.ID{1, 2, 3},
			Info:    &model.Info{Version: 1, User: "carol", Visible: true},
		},
	}

	blk, _ := codec.EncodeBlock(ways)

	data, err := blk.MarshalWire()
	require.NoError(t, err)

	decoded, err := codec.DecodeBlock(data)
	require.NoError(t, err)
	require.Len(t, decoded, 1)

	w := decoded[0].(*model.Way)
	assert.EqualValues(t, 10, w.ID)
	assert.Equal(t, []model.ID{1, 2, 3}, w.NodeIDs)
	assert.Equal(t, "Main St", w.Tags["name"])
}

func TestEncodeDecodeRelationsRoundTrip(t *testing.T) {
	relations := []model.Element{
		&model.Relation{
			ID:   20,
			Tags: map[string]string{"type": "multipolygon"},
			Info: &model.Info{Version: 1, User: "dave", Visible: true},
			Members: []model.Member{
				{ID: 1, Type: model.NODE, Role: "outer"},
				{ID: 10, Type: model.WAY, Role: "inner"},
			},
		},
	}

	blk, _ := codec.EncodeBlock(relations)

	data, err := blk.MarshalWire()
	require.NoError(t, err)

	decoded, err := codec.DecodeBlock(data)
	require.NoError(t, err)
	require.Len(t, decoded, 1)

	r := decoded[0].(*model.Relation)
	assert.EqualValues(t, 20, r.ID)
	require.Len(t, r.Members, 2)
	assert.Equal(t, model.NODE, r.Members[0].Type)
	assert.Equal(t, "outer", r.Members[0].Role)
	assert.Equal(t, model.WAY, r.Members[1].Type)
}

func TestEncodeDecodeMixedElementsRoundTrip(t *testing.T) {
	elements := []model.Element{
		&model.Node{ID: 1, Tags: map[string]string{}, Info: &model.Info{User: "e", Visible: true}, Lat: 1, Lon: 1},
		&model.Way{ID: 2, Tags: map[string]string{}, NodeIDs: []model.ID{1}, Info: &model.Info{User: "e", Visible: true}},
		&model.Relation{ID: 3, Tags: map[string]string{}, Info: &model.Info{User: "e", Visible: true}},
	}

	blk, _ := codec.EncodeBlock(elements)
	require.Len(t, blk.Primitivegroup, 3)

	data, err := blk.MarshalWire()
	require.NoError(t, err)

	decoded, err := codec.DecodeBlock(data)
	require.NoError(t, err)
	require.Len(t, decoded, 3)
}

func TestHeaderRoundTrip(t *testing.T) {
	h := model.Header{
		BoundingBox:       &model.BoundingBox{Top: 10, Left: -10, Bottom: -5, Right: 5},
		RequiredFeatures:  []string{"OsmSchema-V0.6", "DenseNodes"},
		WritingProgram:    "osmpbf",
		OsmosisReplicationSequenceNumber: 7,
	}

	hb := codec.EncodeHeader(h)

	data, err := hb.MarshalWire()
	require.NoError(t, err)

	roundTripped := &pb.HeaderBlock{}
	require.NoError(t, roundTripped.UnmarshalWire(data))

	decoded := codec.DecodeHeader(roundTripped)
	assert.Equal(t, h.RequiredFeatures, decoded.RequiredFeatures)
	assert.Equal(t, h.WritingProgram, decoded.WritingProgram)
	require.NotNil(t, decoded.BoundingBox)
	assert.True(t, decoded.BoundingBox.EqualWithin(h.BoundingBox, model.E7))
}
