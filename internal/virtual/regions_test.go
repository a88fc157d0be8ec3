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

package virtual

import (
	"errors"
	"reflect"
	"testing"

	"github.com/googlegenomics/zmw/internal/genomics"
)

func hqRegions(spans ...[2]int) []genomics.Region {
	var regions []genomics.Region
	for _, span := range spans {
		regions = append(regions, genomics.NewRegion(genomics.HQRegion, span[0], span[1]))
	}
	return regions
}

func TestBuild_HQRegions(t *testing.T) {
	testCases := []struct {
		name    string
		sources []Source
		want    []genomics.Region
	}{
		{
			name:    "no low-quality regions",
			sources: []Source{newSource(0, 60)},
			want:    hqRegions([2]int{0, 60}),
		},
		{
			name: "low-quality tail",
			sources: []Source{
				newSource(0, 50),
				scrap(newSource(50, 120), genomics.LQRegion),
			},
			want: hqRegions([2]int{0, 50}),
		},
		{
			name: "low-quality head",
			sources: []Source{
				scrap(newSource(0, 30), genomics.LQRegion),
				newSource(30, 100),
			},
			want: hqRegions([2]int{30, 100}),
		},
		{
			name:    "only low quality",
			sources: []Source{scrap(newSource(0, 40), genomics.LQRegion)},
			want:    hqRegions([2]int{40, 40}),
		},
		{
			// The stretch after the last low-quality region, [50, 90), is
			// not reported.  Whether it should be is an open question.
			name: "two low-quality regions",
			sources: []Source{
				scrap(newSource(0, 10), genomics.LQRegion),
				newSource(10, 40),
				scrap(newSource(40, 50), genomics.LQRegion),
				newSource(50, 90),
			},
			want: hqRegions([2]int{10, 40}),
		},
		{
			name: "adjacent low-quality regions",
			sources: []Source{
				newSource(0, 20),
				scrap(newSource(20, 30), genomics.LQRegion),
				scrap(newSource(30, 40), genomics.LQRegion),
			},
			want: hqRegions([2]int{0, 20}),
		},
		{
			name: "declared high-quality region ignored",
			sources: []Source{
				scrap(newSource(0, 10), genomics.HQRegion),
				newSource(10, 30),
			},
			want: hqRegions([2]int{0, 30}),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			record, err := Build(tc.sources, defaultHeader)
			if err != nil {
				t.Fatalf("Build() returned error: %v", err)
			}
			if got := record.Regions(genomics.HQRegion); !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Wrong HQ regions: got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestBuild_HQRegionError(t *testing.T) {
	sources := []Source{
		newSource(0, 20),
		scrap(newSource(20, 40), genomics.LQRegion),
		newSource(40, 100),
	}
	record, err := Build(sources, defaultHeader)

	var regionErr *RegionDerivationError
	if !errors.As(err, &regionErr) {
		t.Fatalf("Build() returned wrong error: got %v, want *RegionDerivationError", err)
	}
	if record != nil {
		t.Fatalf("Build() returned a record on error")
	}
	if got, want := regionErr.LQRegion, genomics.NewRegion(genomics.LQRegion, 20, 40); got != want {
		t.Fatalf("Wrong region: got %v, want %v", got, want)
	}
	if got, want := regionErr.Length, 100; got != want {
		t.Fatalf("Wrong length: got %d, want %d", got, want)
	}
	t.Logf("error: %v", err)
}

func TestBuild_Regions(t *testing.T) {
	barcoded := subread(newSource(20, 60), genomics.AdapterBefore|genomics.AdapterAfter|genomics.ForwardPass)
	barcoded.barcodes = &[2]int16{1, 2}
	sources := []Source{
		scrap(newSource(0, 10), genomics.Adapter),
		scrap(newSource(10, 20), genomics.Barcode),
		barcoded,
		subread(newSource(60, 90), genomics.AdapterBefore),
		scrap(newSource(90, 95), genomics.Filtered),
	}

	record, err := Build(sources, defaultHeader)
	if err != nil {
		t.Fatalf("Build() returned error: %v", err)
	}

	first := genomics.NewRegion(genomics.Subread, 20, 60)
	first.Context = genomics.AdapterBefore | genomics.AdapterAfter | genomics.ForwardPass
	first.BarcodeLeft, first.BarcodeRight = 1, 2
	second := genomics.NewRegion(genomics.Subread, 60, 90)
	second.Context = genomics.AdapterBefore

	want := map[genomics.RegionType][]genomics.Region{
		genomics.Adapter:  {genomics.NewRegion(genomics.Adapter, 0, 10)},
		genomics.Barcode:  {genomics.NewRegion(genomics.Barcode, 10, 20)},
		genomics.Filtered: {genomics.NewRegion(genomics.Filtered, 90, 95)},
		genomics.Subread:  {first, second},
		genomics.HQRegion: hqRegions([2]int{0, 95}),
	}
	if got := record.RegionsMap(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Wrong regions: got %v, want %v", got, want)
	}

	wantTypes := []genomics.RegionType{genomics.Adapter, genomics.Barcode, genomics.Filtered, genomics.HQRegion, genomics.Subread}
	if got := record.RegionTypes(); !reflect.DeepEqual(got, wantTypes) {
		t.Fatalf("Wrong region types: got %v, want %v", got, wantTypes)
	}
	if record.HasRegionType(genomics.LQRegion) {
		t.Fatalf("Record has LQ regions although no source declared one")
	}
	if got := record.Regions(genomics.LQRegion); got != nil {
		t.Fatalf("Wrong LQ regions: got %v, want nil", got)
	}
}

func TestRecord_RegionsAreCopies(t *testing.T) {
	record, err := Build([]Source{scrap(newSource(0, 10), genomics.Adapter)}, defaultHeader)
	if err != nil {
		t.Fatalf("Build() returned error: %v", err)
	}

	m := record.RegionsMap()
	m[genomics.Adapter][0].Start = 5
	delete(m, genomics.HQRegion)
	record.Regions(genomics.Adapter)[0].End = 3

	want := []genomics.Region{genomics.NewRegion(genomics.Adapter, 0, 10)}
	if got := record.Regions(genomics.Adapter); !reflect.DeepEqual(got, want) {
		t.Fatalf("Wrong adapter regions: got %v, want %v", got, want)
	}
	if !record.HasRegionType(genomics.HQRegion) {
		t.Fatalf("HQ region removed through a copy")
	}
}
