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

// Package virtual stitches the subread and scrap records of a single ZMW back
// into one record that spans the full polymerase read.
//
// The records produced by an instrument for a ZMW are ordered by query
// position, their per-base and per-pulse data is concatenated, their scalar
// metadata is reconciled, and a region table (subreads, adapters, barcodes,
// low- and high-quality regions) is derived for the stitched span.
package virtual

import (
	"github.com/googlegenomics/zmw/internal/frames"
	"github.com/googlegenomics/zmw/internal/genomics"
	"github.com/googlegenomics/zmw/internal/qv"
	"github.com/googlegenomics/zmw/internal/readgroup"
)

// Source is a single physical record of a ZMW.  Optional data is reported
// together with a presence flag; a Source that does not carry a field returns
// false.
type Source interface {
	QueryStart() int32
	QueryEnd() int32
	HoleNumber() int32

	Sequence() string
	Qualities() qv.QualityValues

	QVs(QVKind) (qv.QualityValues, bool)
	Tag(TagKind) (string, bool)
	// Frames returns frame data as stored, without decoding lossy codes.
	Frames(FrameKind) (frames.Frames, bool)
	Photons(PhotonKind) ([]float32, bool)
	StartFrame() ([]uint32, bool)
	PulseExclusion() ([]genomics.PulseExclusionReason, bool)

	ScrapRegionType() (genomics.RegionType, bool)
	ScrapZMWType() (genomics.ZMWType, bool)
	LocalContextFlags() (genomics.LocalContextFlags, bool)
	Barcodes() (left, right int16, ok bool)
	BarcodeQuality() (uint8, bool)
	ReadAccuracy() (float32, bool)
	SignalToNoise() ([]float32, bool)
}

// Header supplies the read groups of the file the sources were read from.
type Header interface {
	ReadGroups() []readgroup.ReadGroup
}

// QVKind identifies an optional quality value field.
type QVKind int

// The optional quality value fields.
const (
	DeletionQV QVKind = iota
	InsertionQV
	MergeQV
	PulseMergeQV
	SubstitutionQV
	LabelQV
	AltLabelQV
	numQVKinds
)

// TagKind identifies an optional per-base or per-pulse string field.
type TagKind int

// The optional string fields.
const (
	DeletionTag TagKind = iota
	SubstitutionTag
	AltLabelTag
	PulseCall
	numTagKinds
)

// FrameKind identifies an optional frame array.
type FrameKind int

// The optional frame arrays.
const (
	IPD FrameKind = iota
	PulseWidth
	PrePulseFrames
	PulseCallWidth
	numFrameKinds
)

// PhotonKind identifies an optional pulse amplitude array.
type PhotonKind int

// The optional pulse amplitude arrays.  Pkmean2 is stitched into Pkmean and
// Pkmid2 into Pkmid.
const (
	Pkmean PhotonKind = iota
	Pkmid
	Pkmean2
	Pkmid2
	numPhotonKinds
)

var (
	qvNames     = [numQVKinds]string{"DeletionQV", "InsertionQV", "MergeQV", "PulseMergeQV", "SubstitutionQV", "LabelQV", "AltLabelQV"}
	tagNames    = [numTagKinds]string{"DeletionTag", "SubstitutionTag", "AltLabelTag", "PulseCall"}
	frameNames  = [numFrameKinds]string{"IPD", "PulseWidth", "PrePulseFrames", "PulseCallWidth"}
	photonNames = [numPhotonKinds]string{"Pkmean", "Pkmid", "Pkmean2", "Pkmid2"}
)

func (k QVKind) String() string     { return qvNames[k] }
func (k TagKind) String() string    { return tagNames[k] }
func (k FrameKind) String() string  { return frameNames[k] }
func (k PhotonKind) String() string { return photonNames[k] }
