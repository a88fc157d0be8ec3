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

// Package bgzf provides support for BGZF blocks and for telling BGZF streams
// apart from plain and gzip-compressed ones.
package bgzf

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

// MaximumBlockSize is the maximum BGZF block size.
const MaximumBlockSize = 65536

// HeaderSize is the size of a BGZF block header, which is enough to detect
// the compression of a stream and to find the size of its first block.
const HeaderSize = 18

var errNotBGZF = errors.New("not a BGZF block")

// Compression is the compression of a stream.
type Compression int

const (
	None Compression = iota
	GZIP
	BGZF
)

func (c Compression) String() string {
	switch c {
	case GZIP:
		return "GZIP"
	case BGZF:
		return "BGZF"
	}
	return "NONE"
}

// Detect reports the compression of a stream that starts with header.  At
// least HeaderSize bytes are needed to recognize BGZF; a shorter gzip header
// is reported as GZIP.
func Detect(header []byte) Compression {
	if len(header) < 3 || header[0] != 0x1f || header[1] != 0x8b || header[2] != 0x08 {
		return None
	}
	if _, err := BlockSize(header); err != nil {
		return GZIP
	}
	return BGZF
}

// BlockSize returns the total size of the BGZF block that starts with header.
func BlockSize(header []byte) (int, error) {
	if len(header) < HeaderSize {
		return 0, fmt.Errorf("reading block header: %v", io.ErrUnexpectedEOF)
	}
	const flagExtra = 0x04
	if header[3]&flagExtra == 0 || header[12] != 'B' || header[13] != 'C' || header[14] != 2 || header[15] != 0 {
		return 0, errNotBGZF
	}
	return (int(header[16]) | int(header[17])<<8) + 1, nil
}

// DecodeBlock decodes a single BGZF block from r and returns the uncompressed
// data and the original block size (or an error).  Note that DecodeBlock may
// read bytes past the end of the block if r does not implement io.ByteReader.
func DecodeBlock(r io.Reader) ([]byte, uint16, error) {
	gzr, err := gzip.NewReader(r)
	if err != nil {
		return nil, 0, fmt.Errorf("initializing gzip reader: %v", err)
	}
	defer gzr.Close()

	extra := gzr.Header.Extra
	if len(extra) < 6 || extra[0] != 'B' || extra[1] != 'C' || extra[2] != 2 || extra[3] != 0 {
		return nil, 0, fmt.Errorf("reading extra field %x: %v", extra, errNotBGZF)
	}

	gzr.Multistream(false)
	var buffer bytes.Buffer
	if _, err := io.Copy(&buffer, gzr); err != nil {
		return nil, 0, fmt.Errorf("decompressing data: %v", err)
	}
	return buffer.Bytes(), (uint16(extra[4]) | uint16(extra[5])<<8) + 1, nil
}
