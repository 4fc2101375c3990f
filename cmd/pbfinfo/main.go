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

// Command pbfinfo prints the header of an OpenStreetMap PBF file and,
// with --extended, scans the whole file to report element counts.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"strings"
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nextbillion-ai/osmpbf"
	"github.com/nextbillion-ai/osmpbf/model"
)

type extendedHeader struct {
	model.Header

	NodeCount     int64 `json:"node_count,omitempty"`
	WayCount      int64 `json:"way_count,omitempty"`
	RelationCount int64 `json:"relation_count,omitempty"`
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pbfinfo [<OSM file>]",
	Short: "Print information about an OpenStreetMap PBF file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  run,
}

func init() {
	flags := rootCmd.Flags()
	flags.BoolP("json", "j", false, "format information as JSON")
	flags.Uint16P("cpu", "c", uint16(runtime.GOMAXPROCS(-1)), "number of CPUs passed to the decoder (unused: the element-count scan is sequential)")
	flags.BoolP("extended", "e", false, "scan the entire file and report element counts")
}

func run(cmd *cobra.Command, args []string) error {
	var f *os.File

	if len(args) == 1 {
		var err error

		f, err = os.Open(args[0])
		if err != nil {
			return err
		}

		defer f.Close()
	} else {
		f = os.Stdin
	}

	flags := cmd.Flags()

	ncpu, err := flags.GetUint16("cpu")
	if err != nil {
		return err
	}

	extended, err := flags.GetBool("extended")
	if err != nil {
		return err
	}

	jsonfmt, err := flags.GetBool("json")
	if err != nil {
		return err
	}

	in, err := wrapInputFile(f)
	if err != nil {
		return err
	}

	info, err := runInfo(in, ncpu, extended)
	if cerr := in.Close(); cerr != nil && err == nil {
		err = cerr
	}

	if err != nil {
		return err
	}

	if jsonfmt {
		return renderJSON(info, extended)
	}

	renderTxt(info, extended)

	return nil
}

func runInfo(in io.Reader, ncpu uint16, extended bool) (*extendedHeader, error) {
	ctx := context.Background()

	d, err := osmpbf.Decode(ctx, in, osmpbf.WithNCpus(ncpu))
	if err != nil {
		return nil, err
	}

	info := &extendedHeader{Header: d.Header}

	if extended {
		var nc, wc, rc int64

		for {
			v, err := d.Decode()
			if err == io.EOF {
				break
			}

			if err != nil {
				return nil, err
			}

			switch v.(type) {
			case *model.Node:
				nc++
			case *model.Way:
				wc++
			case *model.Relation:
				rc++
			default:
				return nil, fmt.Errorf("pbfinfo: unknown element type %T", v)
			}
		}

		info.NodeCount = nc
		info.WayCount = wc
		info.RelationCount = rc
	}

	return info, nil
}

func renderJSON(info *extendedHeader, extended bool) error {
	var v interface{} = info.Header
	if extended {
		v = info
	}

	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	fmt.Println(string(b))

	return nil
}

func renderTxt(info *extendedHeader, extended bool) {
	if info.BoundingBox != nil {
		fmt.Printf("BoundingBox: %v\n", *info.BoundingBox)
	}

	fmt.Printf("RequiredFeatures: %s\n", strings.Join(info.RequiredFeatures, ", "))
	fmt.Printf("OptionalFeatures: %s\n", strings.Join(info.OptionalFeatures, ", "))
	fmt.Printf("WritingProgram: %s\n", info.WritingProgram)
	fmt.Printf("Source: %s\n", info.Source)
	fmt.Printf("OsmosisReplicationTimestamp: %s\n", info.OsmosisReplicationTimestamp.UTC().Format(time.RFC3339))
	fmt.Printf("OsmosisReplicationSequenceNumber: %d\n", info.OsmosisReplicationSequenceNumber)
	fmt.Printf("OsmosisReplicationBaseURL: %s\n", info.OsmosisReplicationBaseURL)

	if extended {
		fmt.Printf("NodeCount: %s\n", humanize.Comma(info.NodeCount))
		fmt.Printf("WayCount: %s\n", humanize.Comma(info.WayCount))
		fmt.Printf("RelationCount: %s\n", humanize.Comma(info.RelationCount))
	}
}
