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

// Package bamrecord adapts PacBio BAM records, as decoded by biogo/hts, to the
// stitching engine in package virtual, and encodes stitched records back into
// BAM records.
package bamrecord

import (
	"github.com/biogo/hts/sam"
	"github.com/googlegenomics/zmw/internal/virtual"
)

// PacBio BAM tags.
var (
	tagReadGroup     = sam.NewTag("RG")
	tagHoleNumber    = sam.NewTag("zm")
	tagQueryStart    = sam.NewTag("qs")
	tagQueryEnd      = sam.NewTag("qe")
	tagNumPasses     = sam.NewTag("np")
	tagReadAccuracy  = sam.NewTag("rq")
	tagSNR           = sam.NewTag("sn")
	tagBarcodes      = sam.NewTag("bc")
	tagBarcodeQual   = sam.NewTag("bq")
	tagContext       = sam.NewTag("cx")
	tagScrapRegion   = sam.NewTag("sc")
	tagScrapZMW      = sam.NewTag("sz")
	tagStartFrame    = sam.NewTag("sf")
	tagPulseExcluded = sam.NewTag("pe")

	qvTags = [...]sam.Tag{
		virtual.DeletionQV:     sam.NewTag("dq"),
		virtual.InsertionQV:    sam.NewTag("iq"),
		virtual.MergeQV:        sam.NewTag("mq"),
		virtual.PulseMergeQV:   sam.NewTag("pg"),
		virtual.SubstitutionQV: sam.NewTag("sq"),
		virtual.LabelQV:        sam.NewTag("pq"),
		virtual.AltLabelQV:     sam.NewTag("pv"),
	}
	stringTags = [...]sam.Tag{
		virtual.DeletionTag:     sam.NewTag("dt"),
		virtual.SubstitutionTag: sam.NewTag("st"),
		virtual.AltLabelTag:     sam.NewTag("pt"),
		virtual.PulseCall:       sam.NewTag("pc"),
	}
	frameTags = [...]sam.Tag{
		virtual.IPD:            sam.NewTag("ip"),
		virtual.PulseWidth:     sam.NewTag("pw"),
		virtual.PrePulseFrames: sam.NewTag("pd"),
		virtual.PulseCallWidth: sam.NewTag("px"),
	}
	photonTags = [...]sam.Tag{
		virtual.Pkmean:  sam.NewTag("pa"),
		virtual.Pkmid:   sam.NewTag("pm"),
		virtual.Pkmean2: sam.NewTag("ps"),
		virtual.Pkmid2:  sam.NewTag("pi"),
	}
)

// Photon counts are stored as fixed point values with one decimal digit.
const photonScale = 10

// intValue returns the value of an integer aux field of any width.
func intValue(v interface{}) (int64, bool) {
	switch v := v.(type) {
	case int8:
		return int64(v), true
	case uint8:
		return int64(v), true
	case int16:
		return int64(v), true
	case uint16:
		return int64(v), true
	case int32:
		return int64(v), true
	case uint32:
		return int64(v), true
	}
	return 0, false
}

// charValue returns the value of a printable character aux field.
func charValue(v interface{}) (byte, bool) {
	switch v := v.(type) {
	case sam.ASCII:
		return byte(v), true
	case byte:
		return v, true
	case string:
		if len(v) == 1 {
			return v[0], true
		}
	}
	return 0, false
}
