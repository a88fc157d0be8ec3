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

// Package format identifies sequence file formats from file names and from
// the first bytes of their content.
package format

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/googlegenomics/zmw/internal/bgzf"
	"github.com/googlegenomics/zmw/internal/binary"
	"github.com/klauspost/compress/gzip"
)

const (
	bamMagic = "BAM\x01"

	// This is just to prevent arbitrarily long allocations due to malformed
	// data.
	maximumHeaderLength = 1 << 26

	gzipExtension = ".gz"
)

var (
	fastaExtensions = []string{".fa", ".fasta"}
	fastqExtensions = []string{".fq", ".fastq"}

	// ErrNotBAM is returned when data does not start with a BAM header.
	ErrNotBAM = errors.New("not a BAM file")
)

// IsFastaFilename reports whether name has a FASTA extension, optionally
// followed by ".gz".
func IsFastaFilename(name string) bool {
	return hasExtension(name, fastaExtensions)
}

// IsFastqFilename reports whether name has a FASTQ extension, optionally
// followed by ".gz".
func IsFastqFilename(name string) bool {
	return hasExtension(name, fastqExtensions)
}

// IsGzipFilename reports whether name ends in ".gz".
func IsGzipFilename(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), gzipExtension)
}

func hasExtension(name string, extensions []string) bool {
	name = strings.TrimSuffix(strings.ToLower(name), gzipExtension)
	for _, extension := range extensions {
		if strings.HasSuffix(name, extension) {
			return true
		}
	}
	return false
}

// CompressionType reports the compression of r without consuming any input.
func CompressionType(r *bufio.Reader) (bgzf.Compression, error) {
	header, err := r.Peek(bgzf.HeaderSize)
	if err != nil && err != io.EOF {
		return bgzf.None, fmt.Errorf("reading header: %v", err)
	}
	return bgzf.Detect(header), nil
}

// CheckBAM checks that r starts with a BGZF-compressed BAM header, without
// consuming any input.  r must be able to buffer bgzf.MaximumBlockSize bytes.
func CheckBAM(r *bufio.Reader) error {
	compression, err := CompressionType(r)
	if err != nil {
		return err
	}
	if compression != bgzf.BGZF {
		return fmt.Errorf("%w: compression is %v", ErrNotBAM, compression)
	}

	header, err := r.Peek(bgzf.HeaderSize)
	if err != nil {
		return fmt.Errorf("reading block header: %v", err)
	}
	size, err := bgzf.BlockSize(header)
	if err != nil {
		return fmt.Errorf("reading block header: %v", err)
	}
	block, err := r.Peek(size)
	if err != nil {
		return fmt.Errorf("reading first block: %v", err)
	}
	data, _, err := bgzf.DecodeBlock(bytes.NewReader(block))
	if err != nil {
		return fmt.Errorf("decoding first block: %v", err)
	}
	if err := binary.ExpectBytes(bytes.NewReader(data), []byte(bamMagic)); err != nil {
		return fmt.Errorf("%w: %v", ErrNotBAM, err)
	}
	return nil
}

// ReadHeader reads the SAM header text from the start of a BAM stream.
func ReadHeader(bam io.Reader) ([]byte, error) {
	bam, err := gzip.NewReader(bam)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %v", err)
	}

	if err := binary.ExpectBytes(bam, []byte(bamMagic)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotBAM, err)
	}
	text, err := binary.ReadBytes(bam, maximumHeaderLength)
	if err != nil {
		return nil, fmt.Errorf("reading SAM header: %v", err)
	}
	// The text may be padded with NUL characters.
	return bytes.TrimRight(text, "\x00"), nil
}
