package pb_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextbillion-ai/osmpbf/internal/pb"
)

func TestBlobHeaderRoundTrip(t *testing.T) {
	h := &pb.BlobHeader{Type: "OSMData", Datasize: 1234}

	b, err := h.MarshalWire()
	require.NoError(t, err)

	got := &pb.BlobHeader{}
	require.NoError(t, got.UnmarshalWire(b))

	assert.Equal(t, h.Type, got.Type)
	assert.Equal(t, h.Datasize, got.Datasize)
}

func TestBlobZlibRoundTrip(t *testing.T) {
	b := &pb.Blob{}
	b.SetZlibData([]byte("compressed"))
	b.RawSize = 42

	data, err := b.MarshalWire()
	require.NoError(t, err)

	got := &pb.Blob{}
	require.NoError(t, got.UnmarshalWire(data))

	assert.Equal(t, "zlib", got.Compression())
	assert.Equal(t, []byte("compressed"), got.GetZlibData())
	assert.EqualValues(t, 42, got.GetRawSize())
}

func TestHeaderBlockRoundTrip(t *testing.T) {
	h := &pb.HeaderBlock{
		Bbox: &pb.HeaderBBox{Left: -1000, Right: 1000, Top: 500, Bottom: -500},
		RequiredFeatures: []string{"OsmSchema-V0.6", "DenseNodes"},
		Writingprogram: "osmpbf",
	}

	data, err := h.MarshalWire()
	require.NoError(t, err)

	got := &pb.HeaderBlock{}
	require.NoError(t, got.UnmarshalWire(data))

	assert.Equal(t, h.RequiredFeatures, got.RequiredFeatures)
	assert.Equal(t, h.Writingprogram, got.Writingprogram)
	require.NotNil(t, got.Bbox)
	assert.Equal(t, h.Bbox.Left, got.Bbox.Left)
	assert.Equal(t, h.Bbox.Bottom, got.Bbox.Bottom)
}

func TestNodeRoundTrip(t *testing.T) {
	n := &pb.Node{
		Id:   42,
		Keys: []uint32{1, 2},
		Vals: []uint32{3, 4},
		Info: &pb.Info{Version: 3, Timestamp: 1000, Uid: 7, Visible: pb.Bool(true)},
		Lat:  -12345,
		Lon:  67890,
	}

	data, err := n.MarshalWire()
	require.NoError(t, err)

	got := &pb.Node{}
	require.NoError(t, got.UnmarshalWire(data))

	assert.Equal(t, n.Id, got.Id)
	assert.Equal(t, n.Keys, got.Keys)
	assert.Equal(t, n.Vals, got.Vals)
	assert.Equal(t, n.Lat, got.Lat)
	assert.Equal(t, n.Lon, got.Lon)
	require.NotNil(t, got.Info)
	assert.EqualValues(t, 3, got.Info.Version)
	assert.True(t, got.Info.GetVisible())
}

func TestDenseNodesRoundTrip(t *testing.T) {
	dn := &pb.DenseNodes{
		Id:  []int64{1, 1, 1},
		Lat: []int64{100, -50, 50},
		Lon: []int64{200, 0, -100},
		Denseinfo: &pb.DenseInfo{
			Version:   []int32{1, 1, 1},
			Timestamp: []int64{1000, 10, -5},
			Uid:       []int32{5, 0, 0},
		},
		KeysVals: []int32{1, 2, 0, 0},
	}

	data, err := dn.MarshalWire()
	require.NoError(t, err)

	got := &pb.DenseNodes{}
	require.NoError(t, got.UnmarshalWire(data))

	assert.Equal(t, dn.Id, got.Id)
	assert.Equal(t, dn.Lat, got.Lat)
	assert.Equal(t, dn.Lon, got.Lon)
	assert.Equal(t, dn.KeysVals, got.KeysVals)
	require.NotNil(t, got.Denseinfo)
	assert.Equal(t, dn.Denseinfo.Version, got.Denseinfo.Version)
	assert.Equal(t, dn.Denseinfo.Timestamp, got.Denseinfo.Timestamp)
}

func TestWayRoundTrip(t *testing.T) {
	w := &pb.Way{Id: 7, Refs: []int64{10, -3, 5}}

	data, err := w.MarshalWire()
	require.NoError(t, err)

	got := &pb.Way{}
	require.NoError(t, got.UnmarshalWire(data))

	assert.Equal(t, w.Id, got.Id)
	assert.Equal(t, w.Refs, got.Refs)
}

func TestRelationRoundTrip(t *testing.T) {
	r := &pb.Relation{
		Id:       99,
		RolesSid: []int32{0, 1, 2},
		Memids:   []int64{5, -2, 10},
		Types:    []pb.Relation_MemberType{pb.Relation_NODE, pb.Relation_WAY, pb.Relation_RELATION},
	}

	data, err := r.MarshalWire()
	require.NoError(t, err)

	got := &pb.Relation{}
	require.NoError(t, got.UnmarshalWire(data))

	assert.Equal(t, r.Id, got.Id)
	assert.Equal(t, r.RolesSid, got.RolesSid)
	assert.Equal(t, r.Memids, got.Memids)
	assert.Equal(t, r.Types, got.Types)
}

func TestPrimitiveBlockDefaults(t *testing.T) {
	blk := pb.NewPrimitiveBlock()
	blk.Stringtable = &pb.StringTable{S: []string{"", "highway", "residential"}}
	blk.Primitivegroup = []*pb.PrimitiveGroup{{
		Dense: &pb.DenseNodes{Id: []int64{1}, Lat: []int64{10}, Lon: []int64{20}},
	}}

	data, err := blk.MarshalWire()
	require.NoError(t, err)

	got := &pb.PrimitiveBlock{}
	require.NoError(t, got.UnmarshalWire(data))

	assert.EqualValues(t, 100, got.GetGranularity())
	assert.EqualValues(t, 1000, got.GetDateGranularity())
	assert.Equal(t, blk.Stringtable.S, got.GetStringtable().GetS())
	require.Len(t, got.Primitivegroup, 1)
	require.NotNil(t, got.Primitivegroup[0].Dense)
	assert.Equal(t, []int64{1}, got.Primitivegroup[0].Dense.Id)
}
