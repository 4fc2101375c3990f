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
	"github.com/nextbillion-ai/osmpbf/internal/pb"
	"github.com/nextbillion-ai/osmpbf/model"
)

// DecodeHeader converts a wire HeaderBlock to model.Header.
func DecodeHeader(hb *pb.HeaderBlock) model.Header {
	h := model.Header{
		RequiredFeatures:                 hb.GetRequiredFeatures(),
		OptionalFeatures:                 hb.GetOptionalFeatures(),
		WritingProgram:                   hb.GetWritingprogram(),
		Source:                           hb.GetSource(),
		OsmosisReplicationTimestamp:      toTimestamp(DateGranularityMs, hb.GetOsmosisReplicationTimestamp()),
		OsmosisReplicationSequenceNumber: hb.GetOsmosisReplicationSequenceNumber(),
		OsmosisReplicationBaseURL:        hb.GetOsmosisReplicationBaseUrl(),
	}

	if bbox := hb.GetBbox(); bbox != nil {
		h.BoundingBox = &model.BoundingBox{
			Top:    model.CoordinateToDegrees(bbox.GetTop()),
			Left:   model.CoordinateToDegrees(bbox.GetLeft()),
			Bottom: model.CoordinateToDegrees(bbox.GetBottom()),
			Right:  model.CoordinateToDegrees(bbox.GetRight()),
		}
	}

	return h
}

// EncodeHeader converts a model.Header to a wire HeaderBlock.
func EncodeHeader(h model.Header) *pb.HeaderBlock {
	hb := &pb.HeaderBlock{
		RequiredFeatures:                 h.RequiredFeatures,
		OptionalFeatures:                 h.OptionalFeatures,
		Writingprogram:                   h.WritingProgram,
		Source:                           h.Source,
		OsmosisReplicationTimestamp:      fromTimestamp(DateGranularityMs, h.OsmosisReplicationTimestamp),
		OsmosisReplicationSequenceNumber: h.OsmosisReplicationSequenceNumber,
		OsmosisReplicationBaseUrl:        h.OsmosisReplicationBaseURL,
	}

	if h.BoundingBox != nil {
		hb.Bbox = &pb.HeaderBBox{
			Top:    h.BoundingBox.Top.Coordinate(),
			Left:   h.BoundingBox.Left.Coordinate(),
			Bottom: h.BoundingBox.Bottom.Coordinate(),
			Right:  h.BoundingBox.Right.Coordinate(),
		}
	}

	return hb
}
