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

// Package pb declares the fixed OSM PBF message schema (fileformat.proto and
// osmformat.proto) as plain Go structs, each marshaled to and parsed from
// the wire format by internal/wire.
package pb

// Message is implemented by every type in this package.
type Message interface {
	MarshalWire() ([]byte, error)
	UnmarshalWire(data []byte) error
}

// Marshal returns the wire encoding of m.
func Marshal(m Message) ([]byte, error) {
	return m.MarshalWire()
}

// Unmarshal parses the wire-encoded data into m.
func Unmarshal(data []byte, m Message) error {
	return m.UnmarshalWire(data)
}

// Int32 returns a pointer to v, for building values that track field
// presence the way the OSM PBF schema's optional scalars do.
func Int32(v int32) *int32 { return &v }

// Int64 returns a pointer to v.
func Int64(v int64) *int64 { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }
