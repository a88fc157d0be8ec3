// Package genomics contains definitions related to ZMW-level sequencing data.
package genomics

import (
	"fmt"
	"strings"
)

// RegionType classifies a span of a ZMW's polymerase read.  The values are
// the characters used by the scrap region type ("sc") BAM tag.
type RegionType byte

// The known region types.
const (
	Adapter  RegionType = 'A'
	Barcode  RegionType = 'B'
	Filtered RegionType = 'F'
	HQRegion RegionType = 'H'
	LQRegion RegionType = 'L'
	Subread  RegionType = 'S'
)

var regionTypeNames = map[RegionType]string{
	Adapter:  "ADAPTER",
	Barcode:  "BARCODE",
	Filtered: "FILTERED",
	HQRegion: "HQREGION",
	LQRegion: "LQREGION",
	Subread:  "SUBREAD",
}

// ParseRegionType returns the RegionType encoded by c.
func ParseRegionType(c byte) (RegionType, error) {
	if _, ok := regionTypeNames[RegionType(c)]; !ok {
		return 0, fmt.Errorf("unknown region type %q", c)
	}
	return RegionType(c), nil
}

func (t RegionType) String() string {
	if name, ok := regionTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("RegionType(%q)", byte(t))
}

// Region is a half-open interval [Start, End) of a stitched ZMW read.
type Region struct {
	Type RegionType
	// Start and End are query coordinates.
	Start, End int
	// Context is only meaningful for subread regions.
	Context LocalContextFlags
	// BarcodeLeft and BarcodeRight are -1 when no barcodes were called.
	BarcodeLeft, BarcodeRight int
}

// NewRegion returns a Region without local context or barcode information.
func NewRegion(t RegionType, start, end int) Region {
	return Region{Type: t, Start: start, End: end, BarcodeLeft: -1, BarcodeRight: -1}
}

// Length returns the number of bases covered by region.
func (region Region) Length() int {
	return region.End - region.Start
}

func (region Region) String() string {
	return fmt.Sprintf("[%s, start:%d, end:%d]", region.Type, region.Start, region.End)
}

// LocalContextFlags describe the adapter and barcode context of a subread.
type LocalContextFlags uint8

// The local context bits, as stored in the "cx" BAM tag.
const (
	NoLocalContext   LocalContextFlags = 0
	AdapterBefore    LocalContextFlags = 1
	AdapterAfter     LocalContextFlags = 2
	BarcodeBefore    LocalContextFlags = 4
	BarcodeAfter     LocalContextFlags = 8
	ForwardPass      LocalContextFlags = 16
	ReversePass      LocalContextFlags = 32
	AdapterBeforeBad LocalContextFlags = 64
	AdapterAfterBad  LocalContextFlags = 128
)

var localContextNames = []struct {
	flag LocalContextFlags
	name string
}{
	{AdapterBefore, "ADAPTER_BEFORE"},
	{AdapterAfter, "ADAPTER_AFTER"},
	{BarcodeBefore, "BARCODE_BEFORE"},
	{BarcodeAfter, "BARCODE_AFTER"},
	{ForwardPass, "FORWARD_PASS"},
	{ReversePass, "REVERSE_PASS"},
	{AdapterBeforeBad, "ADAPTER_BEFORE_BAD"},
	{AdapterAfterBad, "ADAPTER_AFTER_BAD"},
}

// Has reports whether all bits of flag are set in f.
func (f LocalContextFlags) Has(flag LocalContextFlags) bool {
	return f&flag == flag
}

func (f LocalContextFlags) String() string {
	if f == NoLocalContext {
		return "NO_LOCAL_CONTEXT"
	}
	var names []string
	for _, n := range localContextNames {
		if f.Has(n.flag) {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, "|")
}
