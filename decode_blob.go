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

package osmpbf

import (
	"fmt"

	"github.com/nextbillion-ai/osmpbf/internal/blob"
	"github.com/nextbillion-ai/osmpbf/internal/codec"
	"github.com/nextbillion-ai/osmpbf/internal/core"
	"github.com/nextbillion-ai/osmpbf/internal/pb"
	"github.com/nextbillion-ai/osmpbf/model"
)

// decodeHeaderBlob decompresses and parses an OSMHeader blob's payload.
func decodeHeaderBlob(b *pb.Blob) (*pb.HeaderBlock, error) {
	buf := core.NewPooledBuffer()
	defer buf.Close()

	raw, err := blob.Unpack(buf, b)
	if err != nil {
		return nil, fmt.Errorf("osmpbf: unpack header blob: %w", err)
	}

	hb := &pb.HeaderBlock{}
	if err := hb.UnmarshalWire(raw); err != nil {
		return nil, fmt.Errorf("osmpbf: unmarshal header block: %w", err)
	}

	return hb, nil
}

// decodeDataBlob decompresses and parses an OSMData blob's payload into its
// elements.
func decodeDataBlob(b *pb.Blob) ([]model.Element, error) {
	buf := core.NewPooledBuffer()
	defer buf.Close()

	raw, err := blob.Unpack(buf, b)
	if err != nil {
		return nil, fmt.Errorf("osmpbf: unpack data blob: %w", err)
	}

	elements, err := codec.DecodeBlock(raw)
	if err != nil {
		return nil, fmt.Errorf("osmpbf: decode primitive block: %w", err)
	}

	return elements, nil
}
