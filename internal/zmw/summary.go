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

package zmw

import (
	"slices"
	"strings"

	"github.com/googlegenomics/zmw/internal/genomics"
	"github.com/googlegenomics/zmw/internal/virtual"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
)

// Summary collects statistics about the records produced by a Pipeline.
type Summary struct {
	// ZMWs is the number of stitched records.
	ZMWs int
	// Skipped is the number of ZMWs that could not be stitched.
	Skipped int
	// Bases is the total length of the stitched records.
	Bases int

	lengths    []float64
	accuracies []float64
	regions    map[genomics.RegionType]int
}

// NewSummary returns an empty Summary.
func NewSummary() *Summary {
	return &Summary{regions: make(map[genomics.RegionType]int)}
}

// Add records the statistics of r.
func (s *Summary) Add(r *virtual.Record) {
	s.ZMWs++
	s.Bases += len(r.Sequence())
	s.lengths = append(s.lengths, float64(len(r.Sequence())))
	if accuracy, ok := r.ReadAccuracy(); ok {
		s.accuracies = append(s.accuracies, float64(accuracy))
	}
	for t, regions := range r.RegionsMap() {
		s.regions[t] += len(regions)
	}
}

// Skip counts a ZMW that could not be stitched.
func (s *Summary) Skip() { s.Skipped++ }

// Length returns the mean and standard deviation of the stitched read lengths.
func (s *Summary) Length() (mean, stddev float64) {
	switch len(s.lengths) {
	case 0:
		return 0, 0
	case 1:
		return s.lengths[0], 0
	}
	return stat.MeanStdDev(s.lengths, nil)
}

// MedianLength returns the median stitched read length.
func (s *Summary) MedianLength() float64 {
	if len(s.lengths) == 0 {
		return 0
	}
	sorted := slices.Clone(s.lengths)
	slices.Sort(sorted)
	return stat.Quantile(0.5, stat.Empirical, sorted, nil)
}

// N50 returns the largest length L such that reads of length at least L hold
// half of the stitched bases.
func (s *Summary) N50() int {
	sorted := slices.Clone(s.lengths)
	slices.Sort(sorted)
	var total float64
	for i := len(sorted) - 1; i >= 0; i-- {
		total += sorted[i]
		if 2*total >= float64(s.Bases) {
			return int(sorted[i])
		}
	}
	return 0
}

// MeanAccuracy returns the mean predicted accuracy of the records that carry
// one, or 0 if none do.
func (s *Summary) MeanAccuracy() float64 {
	if len(s.accuracies) == 0 {
		return 0
	}
	return stat.Mean(s.accuracies, nil)
}

// Regions returns the number of regions of type t across all records.
func (s *Summary) Regions(t genomics.RegionType) int { return s.regions[t] }

// Fields returns the summary as log fields.  Region counts are reported as
// one "regions_<type>" field per region type seen.
func (s *Summary) Fields() logrus.Fields {
	mean, stddev := s.Length()
	fields := logrus.Fields{
		"zmws":          s.ZMWs,
		"skipped":       s.Skipped,
		"bases":         s.Bases,
		"mean_length":   mean,
		"stddev_length": stddev,
		"median_length": s.MedianLength(),
		"n50":           s.N50(),
		"mean_accuracy": s.MeanAccuracy(),
	}
	for t, n := range s.regions {
		fields["regions_"+strings.ToLower(t.String())] = n
	}
	return fields
}
