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

// Package zmw reads the subread and scrap records of a PacBio movie grouped
// by ZMW, and stitches each group into a single polymerase read.
package zmw

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
	"github.com/googlegenomics/zmw/internal/bamrecord"
	"github.com/googlegenomics/zmw/internal/bgzf"
	"github.com/googlegenomics/zmw/internal/format"
	"github.com/googlegenomics/zmw/internal/virtual"
)

const (
	subreadsSuffix = ".subreads.bam"
	scrapsSuffix   = ".scraps.bam"
)

var errUnsorted = errors.New("records are not sorted by hole number")

// RecordReader reads BAM records one at a time and returns io.EOF after the
// last one.  *bam.Reader is a RecordReader.
type RecordReader interface {
	Read() (*sam.Record, error)
}

// Group holds the records of a single ZMW, subreads first.
type Group struct {
	HoleNumber int32
	Sources    []virtual.Source
}

// OpenBAM checks that r holds BAM data and returns a reader for it.
func OpenBAM(r io.Reader) (*bam.Reader, error) {
	br := bufio.NewReaderSize(r, bgzf.MaximumBlockSize)
	if err := format.CheckBAM(br); err != nil {
		return nil, err
	}
	reader, err := bam.NewReader(br, 1)
	if err != nil {
		return nil, fmt.Errorf("opening BAM reader: %v", err)
	}
	return reader, nil
}

// ScrapsName returns the name of the scraps file that accompanies the named
// subreads file.
func ScrapsName(subreads string) (string, bool) {
	if !strings.HasSuffix(subreads, subreadsSuffix) {
		return "", false
	}
	return strings.TrimSuffix(subreads, subreadsSuffix) + scrapsSuffix, true
}

// stream is a RecordReader with one record of lookahead.
type stream struct {
	name string
	r    RecordReader
	next *bamrecord.Source
	last int32
}

func (s *stream) advance() error {
	rec, err := s.r.Read()
	if err == io.EOF {
		s.next = nil
		return nil
	} else if err != nil {
		return fmt.Errorf("reading %s: %v", s.name, err)
	}

	source, err := bamrecord.NewSource(rec)
	if err != nil {
		return fmt.Errorf("reading %s: %w", s.name, err)
	}
	if s.next != nil && source.HoleNumber() < s.last {
		return fmt.Errorf("reading %s: %v (%d after %d)", s.name, errUnsorted, source.HoleNumber(), s.last)
	}
	s.next, s.last = source, source.HoleNumber()
	return nil
}

// Reader merges a subreads stream and an optional scraps stream, both sorted
// by hole number, into per-ZMW groups.  ZMWs that only have scrap records are
// reported too.
type Reader struct {
	streams   []*stream
	whitelist map[int32]bool
	started   bool
}

// NewReader returns a Reader over subreads and scraps.  scraps may be nil.
func NewReader(subreads, scraps RecordReader) *Reader {
	r := &Reader{streams: []*stream{{name: "subreads", r: subreads}}}
	if scraps != nil {
		r.streams = append(r.streams, &stream{name: "scraps", r: scraps})
	}
	return r
}

// Whitelist restricts the reader to the given hole numbers.  If Whitelist is
// never called, every ZMW is reported.
func (r *Reader) Whitelist(holes []int32) {
	if r.whitelist == nil {
		r.whitelist = make(map[int32]bool)
	}
	for _, hole := range holes {
		r.whitelist[hole] = true
	}
}

// Next returns the records of the next ZMW, or io.EOF when there are none.
func (r *Reader) Next() (*Group, error) {
	if !r.started {
		for _, s := range r.streams {
			if err := s.advance(); err != nil {
				return nil, err
			}
		}
		r.started = true
	}

	for {
		hole, ok := r.nextHole()
		if !ok {
			return nil, io.EOF
		}

		group := &Group{HoleNumber: hole}
		for _, s := range r.streams {
			for s.next != nil && s.next.HoleNumber() == hole {
				group.Sources = append(group.Sources, s.next)
				if err := s.advance(); err != nil {
					return nil, err
				}
			}
		}
		if r.whitelist == nil || r.whitelist[hole] {
			return group, nil
		}
	}
}

func (r *Reader) nextHole() (int32, bool) {
	var (
		hole  int32
		found bool
	)
	for _, s := range r.streams {
		if s.next != nil && (!found || s.next.HoleNumber() < hole) {
			hole, found = s.next.HoleNumber(), true
		}
	}
	return hole, found
}
