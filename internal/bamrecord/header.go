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
	"bytes"
	"fmt"

	"github.com/biogo/hts/sam"
	"github.com/googlegenomics/zmw/internal/frames"
	"github.com/googlegenomics/zmw/internal/readgroup"
	"github.com/googlegenomics/zmw/internal/virtual"
)

// Header is a virtual.Header backed by a SAM header.
type Header struct {
	groups []readgroup.ReadGroup
}

var _ virtual.Header = (*Header)(nil)

// NewHeader parses the read groups of h.
func NewHeader(h *sam.Header) (*Header, error) {
	text, err := h.MarshalText()
	if err != nil {
		return nil, fmt.Errorf("marshaling header: %v", err)
	}
	groups, err := readgroup.Parse(bytes.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("parsing read groups: %v", err)
	}
	return &Header{groups}, nil
}

func (h *Header) ReadGroups() []readgroup.ReadGroup { return h.groups }

// StitchedHeader returns a copy of h whose read groups declare POLYMERASE
// reads with IPD and pulse width data stored using enc, for files of stitched
// records.
func StitchedHeader(h *sam.Header, enc frames.Encoding) (*sam.Header, error) {
	text, err := h.MarshalText()
	if err != nil {
		return nil, fmt.Errorf("marshaling header: %v", err)
	}
	text = readgroup.SetReadType(text, readgroup.Polymerase)
	stitched, err := sam.NewHeader(readgroup.SetFrameEncoding(text, enc), nil)
	if err != nil {
		return nil, fmt.Errorf("creating stitched header: %v", err)
	}
	return stitched, nil
}
