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
	"fmt"
	"math"

	"github.com/biogo/hts/sam"
	"github.com/googlegenomics/zmw/internal/frames"
	"github.com/googlegenomics/zmw/internal/qv"
	"github.com/googlegenomics/zmw/internal/readgroup"
	"github.com/googlegenomics/zmw/internal/virtual"
)

// frameFeatures names the DS features declaring how each frame kind is
// stored.  Other frame kinds always hold 16-bit counts.
var frameFeatures = map[virtual.FrameKind]string{
	virtual.IPD:        "Ipd",
	virtual.PulseWidth: "PulseWidth",
}

// Encoder converts stitched records into unmapped BAM records.
type Encoder struct {
	groups map[string]readgroup.ReadGroup
	header *sam.Header
	enc    frames.Encoding
}

// NewEncoder returns an Encoder for records stitched from a file with header
// h.  IPD and pulse width data are written using enc, whatever the encoding
// of the sources.
func NewEncoder(h *sam.Header, enc frames.Encoding) (*Encoder, error) {
	header, err := NewHeader(h)
	if err != nil {
		return nil, err
	}
	stitched, err := StitchedHeader(h, enc)
	if err != nil {
		return nil, err
	}
	groups := make(map[string]readgroup.ReadGroup, len(header.groups))
	for _, rg := range header.groups {
		groups[rg.ID] = rg
	}
	return &Encoder{groups: groups, header: stitched, enc: enc}, nil
}

// Header returns the header of files written with e.
func (e *Encoder) Header() *sam.Header { return e.header }

// Encode returns r as an unmapped BAM record.  Regions are not stored in BAM
// records and are dropped.
func (e *Encoder) Encode(r *virtual.Record) (*sam.Record, error) {
	var b auxBuilder
	b.add(tagReadGroup, r.ReadGroup())
	b.add(tagHoleNumber, r.HoleNumber())
	b.add(tagQueryStart, r.QueryStart())
	b.add(tagQueryEnd, r.QueryEnd())
	b.add(tagNumPasses, r.NumPasses())

	if v, ok := r.SignalToNoise(); ok {
		b.add(tagSNR, v)
	}
	if v, ok := r.ReadAccuracy(); ok {
		b.add(tagReadAccuracy, v)
	}
	if left, right, ok := r.Barcodes(); ok {
		b.add(tagBarcodes, []uint16{uint16(left), uint16(right)})
	}
	if v, ok := r.BarcodeQuality(); ok {
		b.add(tagBarcodeQual, int32(v))
	}
	if v, ok := r.ScrapZMWType(); ok {
		b.add(tagScrapZMW, sam.ASCII(v))
	}

	for k, tag := range qvTags {
		if v, ok := r.QVs(virtual.QVKind(k)); ok {
			b.add(tag, v.Fastq())
		}
	}
	for k, tag := range stringTags {
		if v, ok := r.Tag(virtual.TagKind(k)); ok {
			b.add(tag, v)
		}
	}
	for k, tag := range frameTags {
		if v, ok := r.Frames(virtual.FrameKind(k)); ok {
			b.add(tag, e.encodeFrames(r.ReadGroup(), virtual.FrameKind(k), v))
		}
	}
	for k, tag := range photonTags {
		if v, ok := r.Photons(virtual.PhotonKind(k)); ok {
			b.add(tag, encodePhotons(v))
		}
	}
	if v, ok := r.StartFrame(); ok {
		b.add(tagStartFrame, v)
	}
	if v, ok := r.PulseExclusion(); ok {
		reasons := make([]uint8, len(v))
		for i, reason := range v {
			reasons[i] = uint8(reason)
		}
		b.add(tagPulseExcluded, reasons)
	}
	if b.err != nil {
		return nil, fmt.Errorf("encoding %s: %v", r.Name(), b.err)
	}

	seq := []byte(r.Sequence())
	qual := []byte(r.Qualities())
	if qual == nil {
		qual = make([]byte, len(seq))
		for i := range qual {
			qual[i] = qv.Missing
		}
	}
	rec, err := sam.NewRecord(r.Name(), nil, nil, -1, -1, 0, 0xff, nil, seq, qual, b.aux)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %v", r.Name(), err)
	}
	rec.Flags = sam.Unmapped
	return rec, nil
}

// encodeFrames converts raw stitched frame data to the output encoding.  Sources in
// a lossy read group contributed CodecV1 codes, which are decoded first.
func (e *Encoder) encodeFrames(readGroup string, k virtual.FrameKind, v frames.Frames) interface{} {
	feature, ok := frameFeatures[k]
	if !ok {
		return []uint16(v)
	}
	if e.groups[readGroup].FrameEncoding(feature) == frames.Lossy {
		v = frames.Decode(v.Narrow())
	}
	if e.enc == frames.Lossy {
		return frames.Encode(v)
	}
	return []uint16(v)
}

type auxBuilder struct {
	aux []sam.Aux
	err error
}

func (b *auxBuilder) add(tag sam.Tag, value interface{}) {
	if b.err != nil {
		return
	}
	aux, err := sam.NewAux(tag, value)
	if err != nil {
		b.err = fmt.Errorf("creating %s tag: %v", tag, err)
		return
	}
	b.aux = append(b.aux, aux)
}

func encodePhotons(v []float32) []uint16 {
	encoded := make([]uint16, len(v))
	for i, p := range v {
		encoded[i] = uint16(math.Min(math.Max(math.Round(float64(p)*photonScale), 0), math.MaxUint16))
	}
	return encoded
}
