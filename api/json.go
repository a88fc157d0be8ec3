// Copyright 2026 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package api

import (
	"slices"

	"github.com/googlegenomics/zmw/internal/genomics"
	"github.com/googlegenomics/zmw/internal/readgroup"
	"github.com/googlegenomics/zmw/internal/regiondb"
	"github.com/googlegenomics/zmw/internal/virtual"
)

type zmwJSON struct {
	Name         string       `json:"name"`
	ReadGroup    string       `json:"readGroup"`
	HoleNumber   int32        `json:"holeNumber"`
	QueryStart   int32        `json:"queryStart"`
	QueryEnd     int32        `json:"queryEnd"`
	Length       int          `json:"length"`
	Sequence     string       `json:"sequence,omitempty"`
	Qualities    string       `json:"qualities,omitempty"`
	ReadAccuracy *float32     `json:"readAccuracy,omitempty"`
	ZMWType      string       `json:"zmwType,omitempty"`
	Regions      []regionJSON `json:"regions"`
}

type regionJSON struct {
	Type         string `json:"type"`
	Start        int    `json:"start"`
	End          int    `json:"end"`
	Context      string `json:"context,omitempty"`
	BarcodeLeft  *int   `json:"barcodeLeft,omitempty"`
	BarcodeRight *int   `json:"barcodeRight,omitempty"`
}

type headerJSON struct {
	Header     string          `json:"header"`
	ReadGroups []readGroupJSON `json:"readGroups"`
}

type holesJSON struct {
	Holes []int32 `json:"holes"`
}

type readGroupJSON struct {
	ID        string `json:"id"`
	MovieName string `json:"movieName"`
	ReadType  string `json:"readType"`
}

func newZMWJSON(r *virtual.Record) zmwJSON {
	z := zmwJSON{
		Name:       r.Name(),
		ReadGroup:  r.ReadGroup(),
		HoleNumber: r.HoleNumber(),
		QueryStart: r.QueryStart(),
		QueryEnd:   r.QueryEnd(),
		Length:     len(r.Sequence()),
		Sequence:   r.Sequence(),
		Regions:    newRegionsJSON(r.RegionTypes(), r.RegionsMap()),
	}
	if q := r.Qualities(); q != nil {
		z.Qualities = q.Fastq()
	}
	if accuracy, ok := r.ReadAccuracy(); ok {
		z.ReadAccuracy = &accuracy
	}
	if t, ok := r.ScrapZMWType(); ok {
		z.ZMWType = t.String()
	}
	return z
}

func newStoredZMWJSON(stored *regiondb.ZMW, regions map[genomics.RegionType][]genomics.Region) zmwJSON {
	types := make([]genomics.RegionType, 0, len(regions))
	for t := range regions {
		types = append(types, t)
	}
	slices.Sort(types)
	z := zmwJSON{
		Name:       stored.Name,
		ReadGroup:  stored.ReadGroup,
		HoleNumber: stored.HoleNumber,
		QueryStart: stored.QueryStart,
		QueryEnd:   stored.QueryEnd,
		Length:     stored.Length,
		Regions:    newRegionsJSON(types, regions),
	}
	if stored.HasReadAccuracy {
		accuracy := stored.ReadAccuracy
		z.ReadAccuracy = &accuracy
	}
	if stored.HasZMWType {
		z.ZMWType = stored.ZMWType.String()
	}
	return z
}

// newRegionsJSON flattens regions in the order of types.
func newRegionsJSON(types []genomics.RegionType, regions map[genomics.RegionType][]genomics.Region) []regionJSON {
	out := []regionJSON{}
	for _, t := range types {
		for _, region := range regions[t] {
			r := regionJSON{
				Type:  t.String(),
				Start: region.Start,
				End:   region.End,
			}
			if t == genomics.Subread {
				r.Context = region.Context.String()
			}
			if region.BarcodeLeft >= 0 {
				left, right := region.BarcodeLeft, region.BarcodeRight
				r.BarcodeLeft, r.BarcodeRight = &left, &right
			}
			out = append(out, r)
		}
	}
	return out
}

func newReadGroupsJSON(groups []readgroup.ReadGroup) []readGroupJSON {
	out := make([]readGroupJSON, len(groups))
	for i, rg := range groups {
		out[i] = readGroupJSON{rg.ID, rg.MovieName, rg.ReadType}
	}
	return out
}
