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

import "github.com/googlegenomics/zmw/internal/genomics"

// regionMapper builds the region table of a stitched record.
type regionMapper struct {
	regions map[genomics.RegionType][]genomics.Region
}

func newRegionMapper() *regionMapper {
	return &regionMapper{regions: make(map[genomics.RegionType][]genomics.Region)}
}

func (m *regionMapper) append(region genomics.Region) {
	m.regions[region.Type] = append(m.regions[region.Type], region)
}

// add records the regions declared by s: one region of its scrap region type,
// and one subread region when it carries local context flags.  High-quality
// regions are never taken from sources.
func (m *regionMapper) add(s Source) {
	start, end := int(s.QueryStart()), int(s.QueryEnd())

	if t, ok := s.ScrapRegionType(); ok && t != genomics.HQRegion {
		m.append(genomics.NewRegion(t, start, end))
	}

	if cx, ok := s.LocalContextFlags(); ok {
		region := genomics.NewRegion(genomics.Subread, start, end)
		region.Context = cx
		if left, right, ok := s.Barcodes(); ok {
			region.BarcodeLeft, region.BarcodeRight = int(left), int(right)
		}
		m.append(region)
	}
}

// deriveHQRegions adds the high-quality regions of a stitched read of the
// given length, which are the complement of its low-quality regions.
func (m *regionMapper) deriveHQRegions(holeNumber int32, length int) error {
	lq := m.regions[genomics.LQRegion]
	switch len(lq) {
	case 0:
		m.append(genomics.NewRegion(genomics.HQRegion, 0, length))
	case 1:
		switch {
		case lq[0].Start == 0:
			m.append(genomics.NewRegion(genomics.HQRegion, lq[0].End, length))
		case lq[0].End == length:
			m.append(genomics.NewRegion(genomics.HQRegion, 0, lq[0].Start))
		default:
			return &RegionDerivationError{HoleNumber: holeNumber, LQRegion: lq[0], Length: length}
		}
	default:
		// Only the gaps before each low-quality region are reported.  A
		// high-quality stretch after the last low-quality region is not.
		var begin int
		for _, region := range lq {
			if region.Start > begin {
				m.append(genomics.NewRegion(genomics.HQRegion, begin, region.Start))
			}
			begin = region.End
		}
	}
	return nil
}
