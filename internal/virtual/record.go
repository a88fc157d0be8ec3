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
	"fmt"
	"slices"

	"github.com/googlegenomics/zmw/internal/frames"
	"github.com/googlegenomics/zmw/internal/genomics"
	"github.com/googlegenomics/zmw/internal/qv"
)

// This only bounds the buffers reserved up front, to prevent arbitrarily large
// allocations for sources with malformed query positions.  Longer reads are
// still stitched.
const maximumCapacityHint = 1 << 24

// Record is the stitched read of a single ZMW.  A Record is immutable: slices
// returned by its accessors are shared with the record and must not be
// modified.
//
// Record satisfies Source, so stitched records may themselves be stitched.
type Record struct {
	name       string
	readGroup  string
	queryStart int32
	queryEnd   int32

	fields
	scalars

	regions  map[genomics.RegionType][]genomics.Region
	coverage Coverage
}

var _ Source = (*Record)(nil)

// Build stitches the records of a single ZMW into one Record.
//
// Build takes ownership of sources: the slice is reordered in place and the
// data of each source may be retained by the result, so callers must not use
// or modify the sources afterwards.  header is only read during the call.
//
// Build fails with an error wrapping ErrInvalidInput when sources is empty or
// header has no read groups, with a *ConsistencyError when the sources
// disagree on their scrap ZMW type, and with a *RegionDerivationError when the
// high-quality region cannot be derived.  No Record is returned on failure.
func Build(sources []Source, header Header) (*Record, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: no source records", ErrInvalidInput)
	}
	if header == nil || len(header.ReadGroups()) == 0 {
		return nil, fmt.Errorf("%w: header has no read groups", ErrInvalidInput)
	}
	readGroup := header.ReadGroups()[0]

	sortSources(sources)
	first, last := sources[0], sources[len(sources)-1]

	merger := newFieldMerger(min(int(last.QueryEnd())-int(first.QueryStart()), maximumCapacityHint))
	mapper := newRegionMapper()
	meta := newScalars(first)
	for i, s := range sources {
		merger.add(s)
		mapper.add(s)
		if err := meta.add(s, i); err != nil {
			return nil, err
		}
	}

	stitched := merger.finish()
	if err := mapper.deriveHQRegions(meta.holeNumber, len(stitched.sequence)); err != nil {
		return nil, err
	}

	record := &Record{
		readGroup:  readGroup.ID,
		queryStart: first.QueryStart(),
		queryEnd:   last.QueryEnd(),
		fields:     stitched,
		scalars:    meta,
		regions:    mapper.regions,
		coverage:   merger.coverage,
	}
	record.name = fmt.Sprintf("%s/%d/%d_%d", readGroup.MovieName, record.holeNumber, record.queryStart, record.queryEnd)
	return record, nil
}

// Name returns the read name, "movie/hole/queryStart_queryEnd".
func (r *Record) Name() string { return r.name }

// ReadGroup returns the ID of the first read group of the header the record
// was built with.
func (r *Record) ReadGroup() string { return r.readGroup }

// NumPasses is always 1: a stitched record is a single pass over the ZMW.
func (r *Record) NumPasses() int32 { return 1 }

func (r *Record) QueryStart() int32 { return r.queryStart }
func (r *Record) QueryEnd() int32   { return r.queryEnd }
func (r *Record) HoleNumber() int32 { return r.holeNumber }
func (r *Record) Sequence() string  { return r.sequence }

// Qualities returns nil when the stitched qualities did not match the length
// of the stitched sequence.
func (r *Record) Qualities() qv.QualityValues { return r.qualities }

func (r *Record) QVs(k QVKind) (qv.QualityValues, bool) {
	return r.qvs[k], len(r.qvs[k]) > 0
}

func (r *Record) Tag(k TagKind) (string, bool) {
	return string(r.tags[k]), len(r.tags[k]) > 0
}

// Frames returns the stitched raw frame data.  Sources that stored lossy
// codes contribute their codes unchanged; see IPDV1Frames.
func (r *Record) Frames(k FrameKind) (frames.Frames, bool) {
	return r.frames[k], len(r.frames[k]) > 0
}

// FrameEncoding reports how frame data is stored: always 16-bit, since
// stitching never re-encodes frames.
func (r *Record) FrameEncoding(FrameKind) frames.Encoding { return frames.Lossless }

// IPDV1Frames decodes the stitched IPD data as CodecV1 codes, for ZMWs whose
// sources stored lossy IPDs.  Stitched records are unmapped, so both
// orientations report the data in the same order.
func (r *Record) IPDV1Frames(genomics.Orientation) frames.Frames {
	return frames.Decode(r.frames[IPD].Narrow())
}

// Photons returns the stitched Pkmean and Pkmid data.  Pkmean2 and Pkmid2 are
// folded into those and are never reported separately.
func (r *Record) Photons(k PhotonKind) ([]float32, bool) {
	switch k {
	case Pkmean:
		return r.pkmean, len(r.pkmean) > 0
	case Pkmid:
		return r.pkmid, len(r.pkmid) > 0
	}
	return nil, false
}

func (r *Record) StartFrame() ([]uint32, bool) { return r.sf, len(r.sf) > 0 }

func (r *Record) PulseExclusion() ([]genomics.PulseExclusionReason, bool) {
	return r.pe, len(r.pe) > 0
}

// ScrapRegionType is never set on a stitched record.
func (r *Record) ScrapRegionType() (genomics.RegionType, bool) { return 0, false }

// LocalContextFlags is never set on a stitched record; the flags of each
// subread are kept in its SUBREAD region.
func (r *Record) LocalContextFlags() (genomics.LocalContextFlags, bool) {
	return genomics.NoLocalContext, false
}

func (r *Record) ScrapZMWType() (genomics.ZMWType, bool) { return r.zmwType, r.hasZMWType }

func (r *Record) Barcodes() (left, right int16, ok bool) {
	return r.barcodes[0], r.barcodes[1], r.hasBarcodes
}

func (r *Record) BarcodeQuality() (uint8, bool)    { return r.barcodeQuality, r.hasBarcodeQuality }
func (r *Record) ReadAccuracy() (float32, bool)    { return r.readAccuracy, r.hasReadAccuracy }
func (r *Record) SignalToNoise() ([]float32, bool) { return r.snr, r.hasSNR }

// Coverage reports how many sources contributed to each optional field.
func (r *Record) Coverage() Coverage { return r.coverage }

// HasRegionType reports whether the region table has an entry for t.
func (r *Record) HasRegionType(t genomics.RegionType) bool {
	_, ok := r.regions[t]
	return ok
}

// Regions returns the regions of type t in the order they were found, or nil
// if there are none.
func (r *Record) Regions(t genomics.RegionType) []genomics.Region {
	return slices.Clone(r.regions[t])
}

// RegionsMap returns a copy of the full region table.
func (r *Record) RegionsMap() map[genomics.RegionType][]genomics.Region {
	m := make(map[genomics.RegionType][]genomics.Region, len(r.regions))
	for t, regions := range r.regions {
		m[t] = slices.Clone(regions)
	}
	return m
}

// RegionTypes returns the region types present in the region table, sorted.
func (r *Record) RegionTypes() []genomics.RegionType {
	types := make([]genomics.RegionType, 0, len(r.regions))
	for t := range r.regions {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}
