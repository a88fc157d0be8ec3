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

package format

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"errors"
	"strings"
	"testing"

	"github.com/biogo/hts/bam"
	hts "github.com/biogo/hts/bgzf"
	"github.com/biogo/hts/sam"
	"github.com/googlegenomics/zmw/internal/bgzf"
)

const headerText = "@HD\tVN:1.5\tSO:unknown\n" +
	"@RG\tID:3f58e5b8\tPL:PACBIO\tDS:READTYPE=SUBREAD\tPU:m54006_160504_020705\n"

func testBAM(t *testing.T) []byte {
	h, err := sam.NewHeader([]byte(headerText), nil)
	if err != nil {
		t.Fatalf("Failed to create header: %v", err)
	}
	var buf bytes.Buffer
	w, err := bam.NewWriter(&buf, h, 1)
	if err != nil {
		t.Fatalf("Failed to create writer: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close writer: %v", err)
	}
	return buf.Bytes()
}

func TestFilenames(t *testing.T) {
	testCases := []struct {
		name         string
		fasta, fastq bool
		gzip         bool
	}{
		{"reads.fa", true, false, false},
		{"reads.fasta", true, false, false},
		{"reads.FASTA.gz", true, false, true},
		{"reads.fq", false, true, false},
		{"reads.fastq.gz", false, true, true},
		{"reads.subreads.bam", false, false, false},
		{"reads.gz", false, false, true},
		{"fasta", false, false, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsFastaFilename(tc.name); got != tc.fasta {
				t.Errorf("IsFastaFilename(): got %v, want %v", got, tc.fasta)
			}
			if got := IsFastqFilename(tc.name); got != tc.fastq {
				t.Errorf("IsFastqFilename(): got %v, want %v", got, tc.fastq)
			}
			if got := IsGzipFilename(tc.name); got != tc.gzip {
				t.Errorf("IsGzipFilename(): got %v, want %v", got, tc.gzip)
			}
		})
	}
}

func TestCheckBAM(t *testing.T) {
	r := bufio.NewReaderSize(bytes.NewReader(testBAM(t)), bgzf.MaximumBlockSize)
	if err := CheckBAM(r); err != nil {
		t.Fatalf("CheckBAM() returned error: %v", err)
	}

	// CheckBAM must leave the stream intact.
	br, err := bam.NewReader(r, 1)
	if err != nil {
		t.Fatalf("Failed to read BAM after CheckBAM(): %v", err)
	}
	if got, want := len(br.Header().RGs()), 1; got != want {
		t.Fatalf("Wrong number of read groups: got %d, want %d", got, want)
	}
}

func TestCheckBAM_Errors(t *testing.T) {
	var buf bytes.Buffer
	bw := hts.NewWriter(&buf, 1)
	bw.Write([]byte("BCF\x02\x02"))
	if err := bw.Close(); err != nil {
		t.Fatalf("Failed to close BGZF writer: %v", err)
	}
	size, err := bgzf.BlockSize(buf.Bytes())
	if err != nil {
		t.Fatalf("BlockSize() returned error: %v", err)
	}
	block := buf.Bytes()[:size]
	var plain bytes.Buffer
	w := gzip.NewWriter(&plain)
	w.Write([]byte("BAM\x01"))
	w.Close()

	testCases := []struct {
		name  string
		input []byte
	}{
		{"empty", nil},
		{"text", []byte(">read\nACGT\n")},
		{"gzip", plain.Bytes()},
		{"BGZF but not BAM", block},
		{"truncated block", block[:len(block)-4]},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := bufio.NewReaderSize(bytes.NewReader(tc.input), bgzf.MaximumBlockSize)
			if err := CheckBAM(r); err == nil {
				t.Fatalf("CheckBAM(): expected error, not success")
			} else {
				t.Logf("error: %v", err)
			}
		})
	}
}

func TestCheckBAM_NotBAM(t *testing.T) {
	r := bufio.NewReaderSize(strings.NewReader("@HD\tVN:1.5\n"), bgzf.MaximumBlockSize)
	if err := CheckBAM(r); !errors.Is(err, ErrNotBAM) {
		t.Fatalf("CheckBAM() returned wrong error: got %v, want %v", err, ErrNotBAM)
	}
}

func TestReadHeader(t *testing.T) {
	text, err := ReadHeader(bytes.NewReader(testBAM(t)))
	if err != nil {
		t.Fatalf("ReadHeader() returned error: %v", err)
	}
	if !strings.Contains(string(text), "READTYPE=SUBREAD") {
		t.Fatalf("Header is missing the read group:\n%s", text)
	}
	if _, err := ReadHeader(strings.NewReader("not a BAM file")); err == nil {
		t.Fatalf("ReadHeader(): expected error, not success")
	}
}
