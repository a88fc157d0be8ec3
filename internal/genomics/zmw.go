package genomics

import "fmt"

// ZMWType classifies a whole ZMW.  The values are the characters used by the
// scrap ZMW type ("sz") BAM tag.
type ZMWType byte

// The known ZMW types.
const (
	Control   ZMWType = 'C'
	Malformed ZMWType = 'M'
	Normal    ZMWType = 'N'
	Sentinel  ZMWType = 'S'
)

// ParseZMWType returns the ZMWType encoded by c.
func ParseZMWType(c byte) (ZMWType, error) {
	switch t := ZMWType(c); t {
	case Control, Malformed, Normal, Sentinel:
		return t, nil
	}
	return 0, fmt.Errorf("unknown ZMW type %q", c)
}

func (t ZMWType) String() string {
	switch t {
	case Control:
		return "CONTROL"
	case Malformed:
		return "MALFORMED"
	case Normal:
		return "NORMAL"
	case Sentinel:
		return "SENTINEL"
	}
	return fmt.Sprintf("ZMWType(%q)", byte(t))
}

// PulseExclusionReason explains why a pulse was not called as a base.
type PulseExclusionReason uint8

// The pulse exclusion reasons, as stored in the "pe" BAM tag.
const (
	Base PulseExclusionReason = iota
	ShortPulse
	Burst
	Pause
)

// Orientation selects the order in which per-base data is reported.
type Orientation int

const (
	// Native is the order in which the instrument produced the data.
	Native Orientation = iota
	// Genomic is the order relative to the aligned reference strand.
	Genomic
)
