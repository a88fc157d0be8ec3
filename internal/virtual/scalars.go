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

// scalars holds the per-ZMW metadata of a stitched record.
type scalars struct {
	holeNumber int32

	snr    []float32
	hasSNR bool

	barcodes    [2]int16
	hasBarcodes bool

	barcodeQuality    uint8
	hasBarcodeQuality bool

	readAccuracy    float32
	hasReadAccuracy bool

	zmwType    genomics.ZMWType
	hasZMWType bool
}

// newScalars takes the hole number and signal-to-noise ratios from the first
// source.  Every source of a ZMW is expected to agree on them.
func newScalars(first Source) scalars {
	s := scalars{holeNumber: first.HoleNumber()}
	s.snr, s.hasSNR = first.SignalToNoise()
	return s
}

// add records the barcodes, barcode quality and read accuracy of src unless an
// earlier source already supplied them, and checks that the scrap ZMW type of
// src agrees with the types seen so far.  index is the position of src in
// query order.
func (s *scalars) add(src Source, index int) error {
	if !s.hasBarcodes {
		if left, right, ok := src.Barcodes(); ok {
			s.barcodes = [2]int16{left, right}
			s.hasBarcodes = true
		}
	}
	if !s.hasBarcodeQuality {
		s.barcodeQuality, s.hasBarcodeQuality = src.BarcodeQuality()
	}
	if !s.hasReadAccuracy {
		s.readAccuracy, s.hasReadAccuracy = src.ReadAccuracy()
	}

	if t, ok := src.ScrapZMWType(); ok {
		if !s.hasZMWType {
			s.zmwType, s.hasZMWType = t, true
		} else if t != s.zmwType {
			return &ConsistencyError{
				HoleNumber: s.holeNumber,
				Want:       s.zmwType,
				Got:        t,
				Index:      index,
			}
		}
	}
	return nil
}
