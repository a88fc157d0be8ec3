// Package frames provides support for pulse timing data measured in camera
// frames, including the lossy 8-bit "CodecV1" encoding used by the "ip" and
// "pw" BAM tags.
package frames

// Frames holds per-pulse frame counts.
type Frames []uint16

// Encoding describes how frame data is stored in a BAM record.
type Encoding int

const (
	// Lossless stores 16-bit frame counts.
	Lossless Encoding = iota
	// Lossy stores 8-bit CodecV1 codes.
	Lossy
)

func (e Encoding) String() string {
	if e == Lossy {
		return "LOSSY"
	}
	return "LOSSLESS"
}

// MaxFrames is the largest frame count representable by CodecV1.
const MaxFrames = 952

// CodecV1 divides the code space into four bands of 64 codes.  Each band
// doubles the step between representable frame counts.
var bands = [4]struct {
	code, frame, shift uint16
}{
	{0, 0, 0},
	{64, 64, 1},
	{128, 192, 2},
	{192, 448, 3},
}

// Decode expands CodecV1 codes into frame counts.
func Decode(codes []byte) Frames {
	if len(codes) == 0 {
		return nil
	}
	f := make(Frames, len(codes))
	for i, c := range codes {
		f[i] = decode(c)
	}
	return f
}

func decode(c byte) uint16 {
	b := bands[c>>6]
	return b.frame + (uint16(c)-b.code)<<b.shift
}

// Encode compresses f into CodecV1 codes.  Frame counts that fall between two
// representable values are rounded down and counts above MaxFrames saturate.
func Encode(f Frames) []byte {
	if len(f) == 0 {
		return nil
	}
	codes := make([]byte, len(f))
	for i, v := range f {
		codes[i] = encode(v)
	}
	return codes
}

func encode(v uint16) byte {
	if v >= MaxFrames {
		return 255
	}
	for i := len(bands) - 1; i >= 0; i-- {
		if b := bands[i]; v >= b.frame {
			return byte(b.code + (v-b.frame)>>b.shift)
		}
	}
	return 0
}

// Narrow truncates each value in f to 8 bits.  It recovers CodecV1 codes from
// frame data whose raw storage was widened without being decoded.
func (f Frames) Narrow() []byte {
	if len(f) == 0 {
		return nil
	}
	codes := make([]byte, len(f))
	for i, v := range f {
		codes[i] = byte(v)
	}
	return codes
}

// Widen stores 8-bit raw values as Frames without decoding them.
func Widen(raw []byte) Frames {
	if len(raw) == 0 {
		return nil
	}
	f := make(Frames, len(raw))
	for i, v := range raw {
		f[i] = uint16(v)
	}
	return f
}
