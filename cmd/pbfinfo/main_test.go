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

package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextbillion-ai/osmpbf"
	"github.com/nextbillion-ai/osmpbf/model"
)

func buildSample(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer

	enc, err := osmpbf.NewEncoder(&buf, osmpbf.WithWritingProgram("pbfinfo-test"))
	require.NoError(t, err)

	require.NoError(t, enc.Encode(&model.Node{ID: 1, Tags: map[string]string{}, Info: &model.Info{Visible: true}}))
	require.NoError(t, enc.Encode(&model.Way{ID: 2, Tags: map[string]string{}, Info: &model.Info{Visible: true}, NodeIDs: []model.ID{1}}))
	require.NoError(t, enc.Finish())

	return buf.Bytes()
}

func TestRunInfo(t *testing.T) {
	info, err := runInfo(bytes.NewReader(buildSample(t)), 2, false)
	require.NoError(t, err)

	assert.Equal(t, "pbfinfo-test", info.WritingProgram)
	assert.Equal(t, int64(0), info.NodeCount)
}

func TestRunInfoExtended(t *testing.T) {
	info, err := runInfo(bytes.NewReader(buildSample(t)), 2, true)
	require.NoError(t, err)

	assert.Equal(t, int64(1), info.NodeCount)
	assert.Equal(t, int64(1), info.WayCount)
	assert.Equal(t, int64(0), info.RelationCount)
}
