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
	"strings"

	"github.com/googlegenomics/zmw/internal/frames"
	"github.com/googlegenomics/zmw/internal/genomics"
	"github.com/googlegenomics/zmw/internal/qv"
)

// fields holds the stitched per-base and per-pulse data of a record.  Every
// optional field kind has its own slot; an empty slot means the field is
// absent.
type fields struct {
	sequence  string
	qualities qv.QualityValues

	qvs    [numQVKinds]qv.QualityValues
	tags   [numTagKinds][]byte
	frames [numFrameKinds]frames.Frames
	pkmean []float32
	pkmid  []float32
	sf     []uint32
	pe     []genomics.PulseExclusionReason
}

// fieldMerger concatenates the fields of sources in query order.
type fieldMerger struct {
	fields
	seq      strings.Builder
	hint     int
	coverage Coverage
}

func newFieldMerger(hint int) *fieldMerger {
	if hint < 0 {
		hint = 0
	}
	m := &fieldMerger{hint: hint}
	m.seq.Grow(hint)
	m.qualities = make(qv.QualityValues, 0, hint)
	return m
}

// add appends the data of s.  The sequence and base qualities are always
// appended; every other field only when s declares it.
func (m *fieldMerger) add(s Source) {
	m.coverage.Sources++

	m.seq.WriteString(s.Sequence())
	m.qualities = append(m.qualities, s.Qualities()...)

	for k := QVKind(0); k < numQVKinds; k++ {
		if v, ok := s.QVs(k); ok {
			m.qvs[k] = appendHint(m.qvs[k], v, m.hint)
			m.coverage.QVs[k]++
		}
	}
	for k := TagKind(0); k < numTagKinds; k++ {
		if v, ok := s.Tag(k); ok {
			m.tags[k] = appendHint(m.tags[k], []byte(v), m.hint)
			m.coverage.Tags[k]++
		}
	}
	for k := FrameKind(0); k < numFrameKinds; k++ {
		if v, ok := s.Frames(k); ok {
			m.frames[k] = appendHint(m.frames[k], v, m.hint)
			m.coverage.Frames[k]++
		}
	}
	for k := PhotonKind(0); k < numPhotonKinds; k++ {
		v, ok := s.Photons(k)
		if !ok {
			continue
		}
		switch k {
		case Pkmean, Pkmean2:
			m.pkmean = appendHint(m.pkmean, v, m.hint)
		case Pkmid, Pkmid2:
			m.pkmid = appendHint(m.pkmid, v, m.hint)
		}
		m.coverage.Photons[k]++
	}
	if v, ok := s.StartFrame(); ok {
		m.sf = appendHint(m.sf, v, m.hint)
		m.coverage.StartFrame++
	}
	if v, ok := s.PulseExclusion(); ok {
		m.pe = appendHint(m.pe, v, m.hint)
		m.coverage.PulseExclusion++
	}
}

// finish returns the stitched fields.  Qualities are kept only when they
// cover the stitched sequence exactly.
func (m *fieldMerger) finish() fields {
	f := m.fields
	f.sequence = m.seq.String()
	if len(f.qualities) != len(f.sequence) {
		f.qualities = nil
	}
	return f
}

// appendHint appends src to dst, allocating dst with capacity hint on first
// use.  dst stays nil when src is empty.
func appendHint[S ~[]E, E any](dst, src S, hint int) S {
	if dst == nil && len(src) > 0 {
		dst = make(S, 0, max(hint, len(src)))
	}
	return append(dst, src...)
}

// Coverage counts, for each optional field, how many sources contributed to
// the stitched value.
type Coverage struct {
	Sources        int
	QVs            [numQVKinds]int
	Tags           [numTagKinds]int
	Frames         [numFrameKinds]int
	Photons        [numPhotonKinds]int
	StartFrame     int
	PulseExclusion int
}

// Partial returns the names of fields that some, but not all, sources carried.
// The stitched values of those fields are shorter than the stitched sequence.
func (c Coverage) Partial() []string {
	var names []string
	check := func(name string, n int) {
		if n > 0 && n < c.Sources {
			names = append(names, name)
		}
	}
	for k, n := range c.QVs {
		check(QVKind(k).String(), n)
	}
	for k, n := range c.Tags {
		check(TagKind(k).String(), n)
	}
	for k, n := range c.Frames {
		check(FrameKind(k).String(), n)
	}
	for k, n := range c.Photons {
		check(PhotonKind(k).String(), n)
	}
	check("StartFrame", c.StartFrame)
	check("PulseExclusion", c.PulseExclusion)
	return names
}
