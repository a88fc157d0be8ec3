// Package qv provides a container for per-base quality values.
package qv

import "strings"

const (
	// fastqOffset is the ASCII offset used by Phred+33 (Sanger) encoding.
	fastqOffset = 33

	// MaxValue is the largest quality value that can be printed in a FASTQ
	// string ('~').
	MaxValue = 93

	// Missing is stored by BAM when a record carries no qualities.
	Missing = 0xff
)

// QualityValues holds Phred-scaled quality values, one per base or pulse.
type QualityValues []uint8

// FromFastq decodes a Phred+33 encoded string.
func FromFastq(s string) QualityValues {
	if s == "" {
		return nil
	}
	q := make(QualityValues, len(s))
	for i := 0; i < len(s); i++ {
		q[i] = s[i] - fastqOffset
	}
	return q
}

// Fastq returns q as a Phred+33 encoded string.  Values above MaxValue are
// clamped.
func (q QualityValues) Fastq() string {
	var b strings.Builder
	b.Grow(len(q))
	for _, v := range q {
		if v > MaxValue {
			v = MaxValue
		}
		b.WriteByte(v + fastqOffset)
	}
	return b.String()
}

// IsMissing reports whether q holds only the BAM missing-quality marker, or is
// empty.
func (q QualityValues) IsMissing() bool {
	for _, v := range q {
		if v != Missing {
			return false
		}
	}
	return true
}
