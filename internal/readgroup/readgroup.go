// Package readgroup provides support for parsing and rewriting the @RG lines
// of a SAM header, including the PacBio-specific description (DS) field.
package readgroup

import (
	"bufio"
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/googlegenomics/zmw/internal/frames"
)

// Read types stored in the READTYPE description key.
const (
	Subread    = "SUBREAD"
	Scrap      = "SCRAP"
	Polymerase = "POLYMERASE"
	CCS        = "CCS"
)

const readTypeKey = "READTYPE"

var (
	tagRe      = regexp.MustCompile(`\t(ID|PL|PM|PU|DS):([^\t]+)`)
	readTypeRe = regexp.MustCompile(`READTYPE=[^;\t]*`)
	codecRe    = regexp.MustCompile(`(Ipd|PulseWidth):(CodecV1|Frames)=`)

	errMissingID = errors.New("read group has no ID")
)

// ReadGroup holds the fields of a single @RG header line.
type ReadGroup struct {
	ID            string
	MovieName     string
	Platform      string
	PlatformModel string
	ReadType      string
	// Features holds the remaining DS key/value pairs in header order.
	Features []Feature
}

// Feature is a single key=value pair from a DS field.
type Feature struct {
	Key, Value string
}

// Parse reads SAM header text from r and returns its read groups in order.
func Parse(r io.Reader) ([]ReadGroup, error) {
	var groups []ReadGroup

	// @RG ID:x PL:PACBIO DS:READTYPE=SUBREAD;Ipd:CodecV1=ip PU:movie ...
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "@RG") {
			continue
		}
		var rg ReadGroup
		for _, tag := range tagRe.FindAllStringSubmatch(line, -1) {
			switch tag[1] {
			case "ID":
				rg.ID = tag[2]
			case "PL":
				rg.Platform = tag[2]
			case "PM":
				rg.PlatformModel = tag[2]
			case "PU":
				rg.MovieName = tag[2]
			case "DS":
				rg.parseDescription(tag[2])
			}
		}
		if rg.ID == "" {
			return nil, fmt.Errorf("parsing %q: %v", line, errMissingID)
		}
		groups = append(groups, rg)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading header: %v", err)
	}
	return groups, nil
}

func (rg *ReadGroup) parseDescription(ds string) {
	for _, field := range strings.Split(ds, ";") {
		if field == "" {
			continue
		}
		key, value := field, ""
		if i := strings.IndexByte(field, '='); i >= 0 {
			key, value = field[:i], field[i+1:]
		}
		if key == readTypeKey {
			rg.ReadType = value
			continue
		}
		rg.Features = append(rg.Features, Feature{key, value})
	}
}

// Description re-encodes the DS field of rg.
func (rg ReadGroup) Description() string {
	fields := make([]string, 0, len(rg.Features)+1)
	if rg.ReadType != "" {
		fields = append(fields, readTypeKey+"="+rg.ReadType)
	}
	for _, f := range rg.Features {
		fields = append(fields, f.Key+"="+f.Value)
	}
	return strings.Join(fields, ";")
}

// Feature returns the value stored under key in the DS field.
func (rg ReadGroup) Feature(key string) (string, bool) {
	for _, f := range rg.Features {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// FrameEncoding reports how the named frame feature ("Ipd" or "PulseWidth")
// is stored by records in this read group.
func (rg ReadGroup) FrameEncoding(feature string) frames.Encoding {
	if _, ok := rg.Feature(feature + ":CodecV1"); ok {
		return frames.Lossy
	}
	return frames.Lossless
}

// SetReadType rewrites the READTYPE of every @RG line in the SAM header text
// and returns the result.  Lines that have no READTYPE are left unchanged.
func SetReadType(text []byte, readType string) []byte {
	return rewrite(text, readTypeRe, []byte(readTypeKey+"="+readType))
}

// SetFrameEncoding rewrites the Ipd and PulseWidth features of every @RG line
// in the SAM header text to declare enc.
func SetFrameEncoding(text []byte, enc frames.Encoding) []byte {
	codec := "Frames"
	if enc == frames.Lossy {
		codec = "CodecV1"
	}
	return rewrite(text, codecRe, []byte("${1}:"+codec+"="))
}

func rewrite(text []byte, re *regexp.Regexp, repl []byte) []byte {
	var out bytes.Buffer
	out.Grow(len(text))
	for _, line := range bytes.SplitAfter(text, []byte("\n")) {
		if bytes.HasPrefix(line, []byte("@RG")) {
			line = re.ReplaceAll(line, repl)
		}
		out.Write(line)
	}
	return out.Bytes()
}

// MakeID returns the PacBio read group ID for a movie and read type: the first
// eight hex digits of the MD5 digest of "movie//readType".
func MakeID(movieName, readType string) string {
	sum := md5.Sum([]byte(movieName + "//" + readType))
	return hex.EncodeToString(sum[:])[:8]
}
