package frames

import (
	"reflect"
	"testing"
)

func TestDecode(t *testing.T) {
	testCases := []struct {
		name string
		code byte
		want uint16
	}{
		{"zero", 0, 0},
		{"first band max", 63, 63},
		{"second band min", 64, 64},
		{"second band max", 127, 190},
		{"third band min", 128, 192},
		{"third band max", 191, 444},
		{"fourth band min", 192, 448},
		{"maximum", 255, MaxFrames},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Decode([]byte{tc.code}); got[0] != tc.want {
				t.Errorf("Decode(%d): got %d, want %d", tc.code, got[0], tc.want)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	testCases := []struct {
		name  string
		frame uint16
		want  byte
	}{
		{"zero", 0, 0},
		{"exact", 63, 63},
		{"second band exact", 190, 127},
		{"second band rounds down", 191, 127},
		{"third band rounds down", 195, 128},
		{"fourth band", 448, 192},
		{"saturates at maximum", MaxFrames, 255},
		{"saturates above maximum", 60000, 255},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Encode(Frames{tc.frame}); got[0] != tc.want {
				t.Errorf("Encode(%d): got %d, want %d", tc.frame, got[0], tc.want)
			}
		})
	}
}

func TestEncodeDecodeCodes(t *testing.T) {
	for c := 0; c < 256; c++ {
		code := byte(c)
		if got := Encode(Decode([]byte{code})); got[0] != code {
			t.Errorf("Encode(Decode(%d)) = %d", code, got[0])
		}
	}
}

func TestNarrowWiden(t *testing.T) {
	raw := []byte{0, 17, 200, 255}
	widened := Widen(raw)
	if got, want := widened, (Frames{0, 17, 200, 255}); !reflect.DeepEqual(got, want) {
		t.Errorf("Widen: got %v, want %v", got, want)
	}
	if got := widened.Narrow(); !reflect.DeepEqual(got, raw) {
		t.Errorf("Narrow: got %v, want %v", got, raw)
	}
	if Widen(nil) != nil || Frames(nil).Narrow() != nil {
		t.Errorf("empty input should produce nil output")
	}
}
