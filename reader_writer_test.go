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

package osmpbf_test

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextbillion-ai/osmpbf"
	"github.com/nextbillion-ai/osmpbf/model"
)

func sampleElements() []model.Element {
	return []model.Element{
		&model.Node{
			ID:   1,
			Tags: map[string]string{"amenity": "cafe"},
			Info: &model.Info{Version: 1, User: "alice", Visible: true, Timestamp: time.Unix(1000, 0).UTC()},
			Lat:  51.5,
			Lon:  -0.1,
		},
		&model.Node{
			ID:   2,
			Tags: map[string]string{},
			Info: &model.Info{Version: 1, User: "alice", Visible: true, Timestamp: time.Unix(1000, 0).UTC()},
			Lat:  51.6,
			Lon:  -0.2,
		},
		&model.Way{
			ID:      10,
			Tags:    map[string]string{"highway": "residential"},
			NodeIDs: []model.ID{1, 2},
			Info:    &model.Info{Version: 1, User: "alice", Visible: true},
		},
		&model.Relation{
			ID:   100,
			Tags: map[string]string{"type": "route"},
			Info: &model.Info{Version: 1, User: "alice", Visible: true},
			Members: []model.Member{
				{ID: 10, Type: model.WAY, Role: ""},
			},
		},
	}
}

func encodeSample(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer

	enc, err := osmpbf.NewEncoder(&buf, osmpbf.WithWritingProgram("osmpbf-test"))
	require.NoError(t, err)

	for _, e := range sampleElements() {
		require.NoError(t, enc.Encode(e))
	}

	require.NoError(t, enc.Finish())

	return buf.Bytes()
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	data := encodeSample(t)

	d, err := osmpbf.Decode(context.Background(), bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "osmpbf-test", d.Header.WritingProgram)
	assert.Contains(t, d.Header.RequiredFeatures, "DenseNodes")

	var got []model.Element

	for {
		e, err := d.Decode()
		if err == io.EOF {
			break
		}

		require.NoError(t, err)

		got = append(got, e)
	}

	require.Len(t, got, 4)

	n0, ok := got[0].(*model.Node)
	require.True(t, ok)
	assert.EqualValues(t, 1, n0.ID)
	assert.Equal(t, "cafe", n0.Tags["amenity"])
}

func TestEncoderRejectsUseAfterFinish(t *testing.T) {
	var buf bytes.Buffer

	enc, err := osmpbf.NewEncoder(&buf)
	require.NoError(t, err)
	require.NoError(t, enc.Encode(sampleElements()[0]))
	require.NoError(t, enc.Finish())

	assert.ErrorIs(t, enc.Finish(), osmpbf.ErrWriterFinalized)
	assert.ErrorIs(t, enc.Encode(sampleElements()[1]), osmpbf.ErrWriterFinalized)
}

func TestFindByTag(t *testing.T) {
	data := encodeSample(t)

	e, found, err := osmpbf.FindByTag(bytes.NewReader(data), "highway", "residential")
	require.NoError(t, err)
	require.True(t, found)
	assert.EqualValues(t, 10, e.GetID())
}

func TestScanByTagNoMatches(t *testing.T) {
	data := encodeSample(t)

	matches, err := osmpbf.ScanByTag(bytes.NewReader(data), "highway", "motorway")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestParFindSequentialFallback(t *testing.T) {
	data := encodeSample(t)

	// A plain bytes.Buffer doesn't implement io.ReaderAt, forcing the
	// sequential fallback path.
	e, found, err := osmpbf.ParFind(context.Background(), bytes.NewBuffer(data), func(el model.Element) bool {
		r, ok := el.(*model.Relation)
		return ok && r.Tags["type"] == "route"
	})
	require.NoError(t, err)
	require.True(t, found)
	assert.EqualValues(t, 100, e.GetID())
}

func TestParFindParallel(t *testing.T) {
	data := encodeSample(t)

	e, found, err := osmpbf.ParFind(context.Background(), bytes.NewReader(data), func(el model.Element) bool {
		w, ok := el.(*model.Way)
		return ok && w.Tags["highway"] == "residential"
	}, osmpbf.WithNCpus(2))
	require.NoError(t, err)
	require.True(t, found)
	assert.EqualValues(t, 10, e.GetID())
}

func TestParFindNoMatch(t *testing.T) {
	data := encodeSample(t)

	_, found, err := osmpbf.ParFind(context.Background(), bytes.NewReader(data), func(el model.Element) bool {
		return el.GetTags()["nonexistent"] == "x"
	})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDecodeRejectsMalformedFirstBlob(t *testing.T) {
	_, err := osmpbf.Decode(context.Background(), bytes.NewReader([]byte{0, 0, 0, 1, 0}))
	assert.Error(t, err)
}

func TestDecodeEmptyStream(t *testing.T) {
	_, err := osmpbf.Decode(context.Background(), bytes.NewReader(nil))
	assert.Error(t, err)
}
