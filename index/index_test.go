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

package index_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextbillion-ai/osmpbf"
	"github.com/nextbillion-ai/osmpbf/index"
	"github.com/nextbillion-ai/osmpbf/model"
)

// writeSamplePBF builds a small PBF at dir/sample.pbf with:
//   - nodes 1,2,3
//   - way 10 referencing nodes 1,2,3
//   - relation 100 with a way member (way 10) and a self-referencing
//     relation member (relation 100), exercising cycle-safe closure
//
// and returns its path.
func writeSamplePBF(t *testing.T, dir string) string {
	t.Helper()

	path := filepath.Join(dir, "sample.pbf")

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	enc, err := osmpbf.NewEncoder(f, osmpbf.WithWritingProgram("index-test"))
	require.NoError(t, err)

	elements := []model.Element{
		&model.Node{ID: 1, Tags: map[string]string{}, Info: &model.Info{Visible: true}, Lat: 1, Lon: 1},
		&model.Node{ID: 2, Tags: map[string]string{}, Info: &model.Info{Visible: true}, Lat: 2, Lon: 2},
		&model.Node{ID: 3, Tags: map[string]string{}, Info: &model.Info{Visible: true}, Lat: 3, Lon: 3},
		&model.Way{
			ID:      10,
			Tags:    map[string]string{"highway": "residential"},
			Info:    &model.Info{Visible: true},
			NodeIDs: []model.ID{1, 2, 3},
		},
		&model.Relation{
			ID:   100,
			Tags: map[string]string{"type": "route"},
			Info: &model.Info{Visible: true},
			Members: []model.Member{
				{ID: 10, Type: model.WAY, Role: "outer"},
				{ID: 100, Type: model.RELATION, Role: "self"},
			},
		},
	}

	for _, e := range elements {
		require.NoError(t, enc.Encode(e))
	}

	require.NoError(t, enc.Finish())
	require.NoError(t, f.Close())

	return path
}

func TestBuildAndFind(t *testing.T) {
	path := writeSamplePBF(t, t.TempDir())

	r, err := index.Open(path)
	require.NoError(t, err)
	defer r.Close()

	_, err = os.Stat(path + ".idx")
	require.NoError(t, err, "Open should have built the sidecar")

	node, err := r.Find(model.NODE, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), node.GetID())

	way, err := r.Find(model.WAY, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(10), way.GetID())

	rel, err := r.Find(model.RELATION, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(100), rel.GetID())

	_, err = r.Find(model.NODE, 999)
	assert.ErrorIs(t, err, index.ErrNotFound)
}

func TestGetWithDepsWayClosure(t *testing.T) {
	path := writeSamplePBF(t, t.TempDir())

	r, err := index.Open(path)
	require.NoError(t, err)
	defer r.Close()

	deps, err := r.GetWithDeps(model.WAY, 10)
	require.NoError(t, err)
	require.Len(t, deps, 4)

	assert.Equal(t, int64(10), deps[0].GetID())

	ids := make(map[int64]bool)
	for _, e := range deps[1:] {
		ids[e.GetID()] = true
	}
	assert.True(t, ids[1])
	assert.True(t, ids[2])
	assert.True(t, ids[3])
}

func TestGetWithDepsRelationCycle(t *testing.T) {
	path := writeSamplePBF(t, t.TempDir())

	r, err := index.Open(path)
	require.NoError(t, err)
	defer r.Close()

	deps, err := r.GetWithDeps(model.RELATION, 100)
	require.NoError(t, err)

	seen := make(map[string]int)
	for _, e := range deps {
		key := ""
		switch e.(type) {
		case *model.Node:
			key = "node"
		case *model.Way:
			key = "way"
		case *model.Relation:
			key = "relation"
		}
		seen[key]++
	}

	assert.Equal(t, 1, seen["relation"], "the self-referencing relation member must not be revisited")
	assert.Equal(t, 1, seen["way"])
	assert.Equal(t, 3, seen["node"])
	assert.Equal(t, int64(100), deps[0].GetID())
}

func TestOpenRebuildsStaleSidecar(t *testing.T) {
	dir := t.TempDir()
	path := writeSamplePBF(t, dir)

	r, err := index.Open(path)
	require.NoError(t, err)
	require.NoError(t, r.Close())

	// Touch the PBF's mtime forward so the sidecar looks stale.
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, future, future))

	r2, err := index.Open(path)
	require.NoError(t, err)
	defer r2.Close()

	node, err := r2.Find(model.NODE, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), node.GetID())
}

func TestOpenWithCacheCapacity(t *testing.T) {
	path := writeSamplePBF(t, t.TempDir())

	r, err := index.Open(path, index.WithCacheCapacity(1))
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Find(model.NODE, 1)
	require.NoError(t, err)
	_, err = r.Find(model.WAY, 10)
	require.NoError(t, err)
	_, err = r.Find(model.NODE, 1)
	require.NoError(t, err)
}
