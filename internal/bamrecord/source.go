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

package bamrecord

import (
	"errors"
	"fmt"

	"github.com/biogo/hts/sam"
	"github.com/googlegenomics/zmw/internal/frames"
	"github.com/googlegenomics/zmw/internal/genomics"
	"github.com/googlegenomics/zmw/internal/qv"
	"github.com/googlegenomics/zmw/internal/virtual"
)

// ErrMissingHoleNumber is returned when a record has no zm tag.
var ErrMissingHoleNumber = errors.New("record has no hole number")

// Source is a virtual.Source backed by a single BAM record.
type Source struct {
	rec *sam.Record

	queryStart, queryEnd int32
	holeNumber           int32
	sequence             string

	regionType    genomics.RegionType
	hasRegionType bool
	zmwType       genomics.ZMWType
	hasZMWType    bool
}

var _ virtual.Source = (*Source)(nil)

// NewSource wraps rec.  Records without query positions are assumed to start
// at 0 and to span their sequence.
func NewSource(rec *sam.Record) (*Source, error) {
	s := &Source{rec: rec, sequence: string(rec.Seq.Expand())}

	hole, ok := s.intTag(tagHoleNumber)
	if !ok {
		return nil, fmt.Errorf("reading %q: %w", rec.Name, ErrMissingHoleNumber)
	}
	s.holeNumber = int32(hole)

	start, _ := s.intTag(tagQueryStart)
	end, ok := s.intTag(tagQueryEnd)
	if !ok {
		end = start + int64(len(s.sequence))
	}
	s.queryStart, s.queryEnd = int32(start), int32(end)

	if c, ok := s.charTag(tagScrapRegion); ok {
		t, err := genomics.ParseRegionType(c)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %v", rec.Name, err)
		}
		s.regionType, s.hasRegionType = t, true
	}
	if c, ok := s.charTag(tagScrapZMW); ok {
		t, err := genomics.ParseZMWType(c)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %v", rec.Name, err)
		}
		s.zmwType, s.hasZMWType = t, true
	}
	return s, nil
}

// Record returns the wrapped BAM record.
func (s *Source) Record() *sam.Record { return s.rec }

func (s *Source) Name() string      { return s.rec.Name }
func (s *Source) QueryStart() int32 { return s.queryStart }
func (s *Source) QueryEnd() int32   { return s.queryEnd }
func (s *Source) HoleNumber() int32 { return s.holeNumber }
func (s *Source) Sequence() string  { return s.sequence }

// ReadGroup returns the ID of the record's read group, or "" if it has none.
func (s *Source) ReadGroup() string {
	v, _ := s.stringTag(tagReadGroup)
	return v
}

// Qualities returns nil when the record stores the missing quality marker.
func (s *Source) Qualities() qv.QualityValues {
	q := qv.QualityValues(s.rec.Qual)
	if q.IsMissing() {
		return nil
	}
	return q
}

func (s *Source) QVs(k virtual.QVKind) (qv.QualityValues, bool) {
	v, ok := s.stringTag(qvTags[k])
	if !ok || v == "" {
		return nil, false
	}
	return qv.FromFastq(v), true
}

func (s *Source) Tag(k virtual.TagKind) (string, bool) {
	v, ok := s.stringTag(stringTags[k])
	return v, ok && v != ""
}

// Frames returns the stored frame data.  Lossy 8-bit codes are widened, not
// decoded.
func (s *Source) Frames(k virtual.FrameKind) (frames.Frames, bool) {
	switch v := s.value(frameTags[k]).(type) {
	case []uint8:
		return frames.Widen(v), len(v) > 0
	case []uint16:
		return frames.Frames(v), len(v) > 0
	}
	return nil, false
}

func (s *Source) Photons(k virtual.PhotonKind) ([]float32, bool) {
	v, ok := s.value(photonTags[k]).([]uint16)
	if !ok || len(v) == 0 {
		return nil, false
	}
	photons := make([]float32, len(v))
	for i, p := range v {
		photons[i] = float32(p) / photonScale
	}
	return photons, true
}

func (s *Source) StartFrame() ([]uint32, bool) {
	v, ok := s.value(tagStartFrame).([]uint32)
	return v, ok && len(v) > 0
}

func (s *Source) PulseExclusion() ([]genomics.PulseExclusionReason, bool) {
	v, ok := s.value(tagPulseExcluded).([]uint8)
	if !ok || len(v) == 0 {
		return nil, false
	}
	reasons := make([]genomics.PulseExclusionReason, len(v))
	for i, r := range v {
		reasons[i] = genomics.PulseExclusionReason(r)
	}
	return reasons, true
}

func (s *Source) ScrapRegionType() (genomics.RegionType, bool) {
	return s.regionType, s.hasRegionType
}

func (s *Source) ScrapZMWType() (genomics.ZMWType, bool) {
	return s.zmwType, s.hasZMWType
}

func (s *Source) LocalContextFlags() (genomics.LocalContextFlags, bool) {
	v, ok := s.intTag(tagContext)
	return genomics.LocalContextFlags(v), ok
}

func (s *Source) Barcodes() (left, right int16, ok bool) {
	switch v := s.value(tagBarcodes).(type) {
	case []uint16:
		if len(v) == 2 {
			return int16(v[0]), int16(v[1]), true
		}
	case []int16:
		if len(v) == 2 {
			return v[0], v[1], true
		}
	}
	return 0, 0, false
}

func (s *Source) BarcodeQuality() (uint8, bool) {
	v, ok := s.intTag(tagBarcodeQual)
	return uint8(v), ok
}

func (s *Source) ReadAccuracy() (float32, bool) {
	v, ok := s.value(tagReadAccuracy).(float32)
	return v, ok
}

func (s *Source) SignalToNoise() ([]float32, bool) {
	v, ok := s.value(tagSNR).([]float32)
	return v, ok && len(v) > 0
}

func (s *Source) value(tag sam.Tag) interface{} {
	aux := s.rec.AuxFields.Get(tag)
	if aux == nil {
		return nil
	}
	return aux.Value()
}

func (s *Source) intTag(tag sam.Tag) (int64, bool) {
	return intValue(s.value(tag))
}

func (s *Source) charTag(tag sam.Tag) (byte, bool) {
	return charValue(s.value(tag))
}

func (s *Source) stringTag(tag sam.Tag) (string, bool) {
	v, ok := s.value(tag).(string)
	return v, ok
}
