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

// Package codec translates between model.Element and the on-wire
// pb.PrimitiveBlock/pb.HeaderBlock representations: string table
// construction, delta coding, and dense tag-stream packing.
package codec

import "sort"

// stringSet collects the distinct strings a block needs before they are
// assigned table indices.
type stringSet struct {
	seen map[string]struct{}
}

func newStringSet() *stringSet {
	return &stringSet{seen: make(map[string]struct{})}
}

func (s *stringSet) add(value string) {
	s.seen[value] = struct{}{}
}

// table assigns each distinct string an index; index 0 is reserved and
// always the empty string, since pb.DenseNodes uses 0 as the tag-stream
// sentinel.
func (s *stringSet) table() *stringTable {
	strings := make([]string, 0, len(s.seen)+1)
	strings = append(strings, "")

	for k := range s.seen {
		strings = append(strings, k)
	}

	sort.Strings(strings)

	index := make(map[string]int32, len(strings))
	for i, k := range strings {
		index[k] = int32(i)
	}

	return &stringTable{index: index, strings: strings}
}

type stringTable struct {
	index   map[string]int32
	strings []string
}

// indexOf panics if value was never added to the stringSet this table was
// built from; callers must add every string a block references before
// calling table().
func (t *stringTable) indexOf(value string) int32 {
	i, ok := t.index[value]
	if !ok {
		panic("codec: string not present in table: " + value)
	}

	return i
}

func (t *stringTable) asArray() []string {
	return t.strings
}
