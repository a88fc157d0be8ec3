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

package zmw

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
	"github.com/google/go-cmp/cmp"
	"github.com/googlegenomics/zmw/internal/bamrecord"
	"github.com/googlegenomics/zmw/internal/genomics"
	"github.com/googlegenomics/zmw/internal/readgroup"
	"github.com/googlegenomics/zmw/internal/virtual"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const movie = "m54006_160504_020705"

// read describes a subread, or a scrap when region is set.
type read struct {
	hole       int32
	start, end int32
	region     genomics.RegionType
	zmwType    genomics.ZMWType
	accuracy   float32
}

func newAux(t *testing.T, tag string, value interface{}) sam.Aux {
	aux, err := sam.NewAux(sam.NewTag(tag), value)
	require.NoError(t, err)
	return aux
}

func (rd read) record(t *testing.T) *sam.Record {
	readType := readgroup.Subread
	if rd.region != 0 {
		readType = readgroup.Scrap
	}
	aux := []sam.Aux{
		newAux(t, "RG", readgroup.MakeID(movie, readType)),
		newAux(t, "zm", rd.hole),
		newAux(t, "qs", rd.start),
		newAux(t, "qe", rd.end),
	}
	if rd.region != 0 {
		zmwType := rd.zmwType
		if zmwType == 0 {
			zmwType = genomics.Normal
		}
		aux = append(aux,
			newAux(t, "sc", sam.ASCII(rd.region)),
			newAux(t, "sz", sam.ASCII(zmwType)))
	} else {
		aux = append(aux, newAux(t, "cx", uint8(genomics.NoLocalContext)))
	}
	if rd.accuracy > 0 {
		aux = append(aux, newAux(t, "rq", rd.accuracy))
	}

	n := int(rd.end - rd.start)
	seq := []byte(strings.Repeat("ACGT", n/4+1)[:n])
	rec, err := sam.NewRecord("read", nil, nil, -1, -1, 0, 0xff, nil, seq, bytes.Repeat([]byte{20}, n), aux)
	require.NoError(t, err)
	rec.Flags = sam.Unmapped
	return rec
}

func testHeader(t *testing.T, readType string) *sam.Header {
	text := "@HD\tVN:1.5\tSO:unknown\n" +
		"@RG\tID:" + readgroup.MakeID(movie, readType) + "\tPL:PACBIO\tDS:READTYPE=" + readType + "\tPU:" + movie + "\n"
	h, err := sam.NewHeader([]byte(text), nil)
	require.NoError(t, err)
	return h
}

func writeBAM(t *testing.T, readType string, reads []read) []byte {
	var buf bytes.Buffer
	w, err := bam.NewWriter(&buf, testHeader(t, readType), 1)
	require.NoError(t, err)
	for _, rd := range reads {
		require.NoError(t, w.Write(rd.record(t)))
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// sliceReader is a RecordReader over records held in memory.
type sliceReader []*sam.Record

func (r *sliceReader) Read() (*sam.Record, error) {
	if len(*r) == 0 {
		return nil, io.EOF
	}
	rec := (*r)[0]
	*r = (*r)[1:]
	return rec, nil
}

func newSliceReader(t *testing.T, reads []read) *sliceReader {
	var r sliceReader
	for _, rd := range reads {
		r = append(r, rd.record(t))
	}
	return &r
}

// holes reads every group from r and returns the hole numbers and the number
// of sources of each.
func holes(t *testing.T, r *Reader) ([]int32, []int) {
	var (
		numbers []int32
		counts  []int
	)
	for {
		group, err := r.Next()
		if err == io.EOF {
			return numbers, counts
		}
		require.NoError(t, err)
		numbers = append(numbers, group.HoleNumber)
		counts = append(counts, len(group.Sources))
	}
}

var (
	testSubreads = []read{
		{hole: 1, start: 10, end: 30},
		{hole: 1, start: 35, end: 50},
		{hole: 4, start: 0, end: 20},
		{hole: 9, start: 5, end: 25},
	}
	testScraps = []read{
		{hole: 1, start: 0, end: 10, region: genomics.LQRegion},
		{hole: 1, start: 30, end: 35, region: genomics.Adapter},
		{hole: 2, start: 0, end: 40, region: genomics.LQRegion},
		{hole: 9, start: 0, end: 5, region: genomics.Adapter},
	}
)

func TestReader(t *testing.T) {
	r := NewReader(newSliceReader(t, testSubreads), newSliceReader(t, testScraps))
	numbers, counts := holes(t, r)
	if diff := cmp.Diff([]int32{1, 2, 4, 9}, numbers); diff != "" {
		t.Errorf("Hole numbers mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{4, 1, 1, 2}, counts); diff != "" {
		t.Errorf("Source counts mismatch (-want +got):\n%s", diff)
	}

	// The reader stays at EOF.
	_, err := r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestReader_SubreadsOnly(t *testing.T) {
	numbers, counts := holes(t, NewReader(newSliceReader(t, testSubreads), nil))
	assert.Equal(t, []int32{1, 4, 9}, numbers)
	assert.Equal(t, []int{2, 1, 1}, counts)
}

func TestReader_Whitelist(t *testing.T) {
	r := NewReader(newSliceReader(t, testSubreads), newSliceReader(t, testScraps))
	r.Whitelist([]int32{2, 9, 100})
	numbers, _ := holes(t, r)
	assert.Equal(t, []int32{2, 9}, numbers)

	r = NewReader(newSliceReader(t, testSubreads), nil)
	r.Whitelist(nil)
	numbers, _ = holes(t, r)
	assert.Empty(t, numbers)
}

func TestReader_Errors(t *testing.T) {
	testCases := []struct {
		name     string
		subreads []read
	}{
		{"unsorted", []read{{hole: 5, start: 0, end: 4}, {hole: 3, start: 0, end: 4}}},
		{"unsorted later", []read{{hole: 1, start: 0, end: 4}, {hole: 2, start: 0, end: 4}, {hole: 2, start: 4, end: 8}, {hole: 1, start: 8, end: 12}}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewReader(newSliceReader(t, tc.subreads), nil)
			for {
				_, err := r.Next()
				if err == io.EOF {
					t.Fatalf("Next(): expected error, not success")
				}
				if err != nil {
					assert.True(t, errors.Is(err, errUnsorted), "got %v", err)
					return
				}
			}
		})
	}
}

func TestReader_MissingHoleNumber(t *testing.T) {
	rec, err := sam.NewRecord("read", nil, nil, -1, -1, 0, 0xff, nil, []byte("ACGT"), nil, nil)
	require.NoError(t, err)
	subreads := sliceReader{rec}

	_, err = NewReader(&subreads, nil).Next()
	assert.True(t, errors.Is(err, bamrecord.ErrMissingHoleNumber), "got %v", err)
}

func TestOpenBAM(t *testing.T) {
	br, err := OpenBAM(bytes.NewReader(writeBAM(t, readgroup.Subread, testSubreads)))
	require.NoError(t, err)
	defer br.Close()

	numbers, _ := holes(t, NewReader(br, nil))
	assert.Equal(t, []int32{1, 4, 9}, numbers)

	_, err = OpenBAM(strings.NewReader(">read\nACGT\n"))
	assert.Error(t, err)
}

func TestScrapsName(t *testing.T) {
	name, ok := ScrapsName("gs://bucket/movie.subreads.bam")
	assert.True(t, ok)
	assert.Equal(t, "gs://bucket/movie.scraps.bam", name)

	_, ok = ScrapsName("movie.bam")
	assert.False(t, ok)
}

func newHeader(t *testing.T) *bamrecord.Header {
	h, err := bamrecord.NewHeader(testHeader(t, readgroup.Subread))
	require.NoError(t, err)
	return h
}

func TestPipeline(t *testing.T) {
	for _, workers := range []int{1, 3} {
		r := NewReader(newSliceReader(t, testSubreads), newSliceReader(t, testScraps))
		p := &Pipeline{Header: newHeader(t), Workers: workers, BatchSize: 2}

		var names []string
		summary, err := p.Run(context.Background(), r, func(record *virtual.Record) error {
			names = append(names, record.Name())
			return nil
		})
		require.NoError(t, err)

		want := []string{movie + "/1/0_50", movie + "/2/0_40", movie + "/4/0_20", movie + "/9/0_25"}
		if diff := cmp.Diff(want, names); diff != "" {
			t.Errorf("Record names mismatch with %d workers (-want +got):\n%s", workers, diff)
		}
		assert.Equal(t, 4, summary.ZMWs)
		assert.Equal(t, 0, summary.Skipped)
		assert.Equal(t, 135, summary.Bases)
	}
}

func TestPipeline_Invalid(t *testing.T) {
	scraps := []read{
		{hole: 1, start: 0, end: 10, region: genomics.Adapter, zmwType: genomics.Normal},
		{hole: 1, start: 30, end: 35, region: genomics.Adapter, zmwType: genomics.Control},
		{hole: 9, start: 0, end: 5, region: genomics.Adapter},
	}

	r := NewReader(newSliceReader(t, testSubreads), newSliceReader(t, scraps))
	p := &Pipeline{Header: newHeader(t)}
	_, err := p.Run(context.Background(), r, func(*virtual.Record) error { return nil })
	var consistency *virtual.ConsistencyError
	require.True(t, errors.As(err, &consistency), "got %v", err)
	assert.Equal(t, int32(1), consistency.HoleNumber)
	assert.True(t, strings.HasPrefix(err.Error(), "stitching ZMW 1: scrap ZMW types"), err.Error())
	assert.Equal(t, 1, strings.Count(err.Error(), "ZMW 1"), err.Error())

	logger, hook := test.NewNullLogger()
	r = NewReader(newSliceReader(t, testSubreads), newSliceReader(t, scraps))
	p = &Pipeline{Header: newHeader(t), SkipInvalid: true, Log: logger}
	var count int
	summary, err := p.Run(context.Background(), r, func(*virtual.Record) error {
		count++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 2, summary.ZMWs)
	assert.Equal(t, 1, summary.Skipped)

	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, int32(1), hook.LastEntry().Data["hole"])
}

func TestPipeline_EmitError(t *testing.T) {
	failure := errors.New("disk full")
	r := NewReader(newSliceReader(t, testSubreads), nil)
	p := &Pipeline{Header: newHeader(t)}
	summary, err := p.Run(context.Background(), r, func(*virtual.Record) error { return failure })
	assert.Error(t, err)
	assert.Equal(t, 0, summary.ZMWs)
}

func TestPipeline_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewReader(newSliceReader(t, testSubreads), nil)
	p := &Pipeline{Header: newHeader(t)}
	_, err := p.Run(ctx, r, func(*virtual.Record) error { return nil })
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
}

func TestSummary(t *testing.T) {
	s := NewSummary()
	mean, stddev := s.Length()
	assert.Zero(t, mean)
	assert.Zero(t, stddev)
	assert.Zero(t, s.N50())
	assert.Zero(t, s.MeanAccuracy())
	assert.Zero(t, s.MedianLength())

	subreads := []read{
		{hole: 1, start: 0, end: 10, accuracy: 0.8},
		{hole: 2, start: 0, end: 20},
		{hole: 3, start: 0, end: 30, accuracy: 0.9},
	}
	r := NewReader(newSliceReader(t, subreads), nil)
	p := &Pipeline{Header: newHeader(t)}
	s, err := p.Run(context.Background(), r, func(*virtual.Record) error { return nil })
	require.NoError(t, err)

	assert.Equal(t, 3, s.ZMWs)
	assert.Equal(t, 60, s.Bases)
	mean, stddev = s.Length()
	assert.InDelta(t, 20, mean, 1e-9)
	assert.InDelta(t, 10, stddev, 1e-9)
	assert.InDelta(t, 20, s.MedianLength(), 1e-9)
	assert.Equal(t, 30, s.N50())
	assert.InDelta(t, 0.85, s.MeanAccuracy(), 1e-6)
	assert.Equal(t, 3, s.Regions(genomics.HQRegion))
	assert.Equal(t, 3, s.Regions(genomics.Subread))

	fields := s.Fields()
	assert.Equal(t, 3, fields["zmws"])
	assert.InDelta(t, 20, fields["median_length"], 1e-9)
	assert.Equal(t, 3, fields["regions_hqregion"])
	assert.Equal(t, 3, fields["regions_subread"])
	assert.NotContains(t, fields, "regions_lqregion")
}
