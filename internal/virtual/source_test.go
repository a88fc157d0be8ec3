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
	"github.com/googlegenomics/zmw/internal/frames"
	"github.com/googlegenomics/zmw/internal/genomics"
	"github.com/googlegenomics/zmw/internal/qv"
	"github.com/googlegenomics/zmw/internal/readgroup"
)

// testSource is an in-memory Source.  Nil slices and nil pointers are absent
// fields.
type testSource struct {
	start, end int32
	hole       int32
	seq        string
	quals      qv.QualityValues

	qvs     map[QVKind]qv.QualityValues
	tags    map[TagKind]string
	frames  map[FrameKind]frames.Frames
	photons map[PhotonKind][]float32
	sf      []uint32
	pe      []genomics.PulseExclusionReason

	regionType *genomics.RegionType
	zmwType    *genomics.ZMWType
	cx         *genomics.LocalContextFlags
	barcodes   *[2]int16
	bq         *uint8
	rq         *float32
	snr        []float32
}

func (s *testSource) QueryStart() int32                { return s.start }
func (s *testSource) QueryEnd() int32                  { return s.end }
func (s *testSource) HoleNumber() int32                { return s.hole }
func (s *testSource) Sequence() string                 { return s.seq }
func (s *testSource) Qualities() qv.QualityValues      { return s.quals }
func (s *testSource) StartFrame() ([]uint32, bool)     { return s.sf, s.sf != nil }
func (s *testSource) SignalToNoise() ([]float32, bool) { return s.snr, s.snr != nil }

func (s *testSource) QVs(k QVKind) (qv.QualityValues, bool) {
	v, ok := s.qvs[k]
	return v, ok
}

func (s *testSource) Tag(k TagKind) (string, bool) {
	v, ok := s.tags[k]
	return v, ok
}

func (s *testSource) Frames(k FrameKind) (frames.Frames, bool) {
	v, ok := s.frames[k]
	return v, ok
}

func (s *testSource) Photons(k PhotonKind) ([]float32, bool) {
	v, ok := s.photons[k]
	return v, ok
}

func (s *testSource) PulseExclusion() ([]genomics.PulseExclusionReason, bool) {
	return s.pe, s.pe != nil
}

func (s *testSource) ScrapRegionType() (genomics.RegionType, bool) {
	if s.regionType == nil {
		return 0, false
	}
	return *s.regionType, true
}

func (s *testSource) ScrapZMWType() (genomics.ZMWType, bool) {
	if s.zmwType == nil {
		return 0, false
	}
	return *s.zmwType, true
}

func (s *testSource) LocalContextFlags() (genomics.LocalContextFlags, bool) {
	if s.cx == nil {
		return 0, false
	}
	return *s.cx, true
}

func (s *testSource) Barcodes() (int16, int16, bool) {
	if s.barcodes == nil {
		return 0, 0, false
	}
	return s.barcodes[0], s.barcodes[1], true
}

func (s *testSource) BarcodeQuality() (uint8, bool) {
	if s.bq == nil {
		return 0, false
	}
	return *s.bq, true
}

func (s *testSource) ReadAccuracy() (float32, bool) {
	if s.rq == nil {
		return 0, false
	}
	return *s.rq, true
}

type testHeader []readgroup.ReadGroup

func (h testHeader) ReadGroups() []readgroup.ReadGroup { return h }

var defaultHeader = testHeader{{ID: "ca75d884", MovieName: "movie", ReadType: readgroup.Subread}}

func ptr[T any](v T) *T { return &v }

// newSource returns a source covering [start, end) of hole 7 with a sequence
// and qualities of the right length.
func newSource(start, end int32) *testSource {
	n := int(end - start)
	seq := make([]byte, n)
	quals := make(qv.QualityValues, n)
	for i := range seq {
		seq[i] = "ACGT"[(int(start)+i)%4]
		quals[i] = uint8(int(start)+i) % 40
	}
	return &testSource{start: start, end: end, hole: 7, seq: string(seq), quals: quals}
}

func scrap(s *testSource, t genomics.RegionType) *testSource {
	s.regionType = &t
	return s
}

func subread(s *testSource, cx genomics.LocalContextFlags) *testSource {
	s.cx = &cx
	return s
}
