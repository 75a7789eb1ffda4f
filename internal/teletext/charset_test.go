package teletext

import "testing"

func TestDecodeG0DefaultTableIsUnmodified(t *testing.T) {
	for b := byte(0x20); b < 0x7F; b++ {
		if got := decodeG0(0, b); got != rune(b) {
			t.Fatalf("decodeG0(0, %#x) = %q, want unmodified %q", b, got, rune(b))
		}
	}
}

func TestDecodeG0ControlBytesRenderAsSpace(t *testing.T) {
	if got := decodeG0(0, 0x00); got != ' ' {
		t.Fatalf("decodeG0(0, 0x00) = %q, want a space", got)
	}
}

func TestDecodeG0FrenchOverrides(t *testing.T) {
	cases := map[byte]rune{0x23: 'é', 0x40: 'à', 0x7E: 'û'}
	for b, want := range cases {
		if got := decodeG0(2, b); got != want {
			t.Fatalf("decodeG0(2, %#x) = %q, want %q", b, got, want)
		}
	}
}

func TestDecodeG0UnknownNationalOptionFallsBackToDefault(t *testing.T) {
	if got := decodeG0(5, 0x40); got != '@' {
		t.Fatalf("decodeG0(5, 0x40) = %q, want the unmodified default '@' for an untabulated option", got)
	}
}

func TestDecodeG1PacksBlockMosaic(t *testing.T) {
	got := decodeG1(0x2A, false)
	if got&maskBlockMosaic != maskBlockMosaic {
		t.Fatalf("decodeG1 unseparated = %#x, want the block-mosaic tag bits set", got)
	}
	if got&0x3F != 0x2A&0x3F {
		t.Fatalf("decodeG1 low bits = %#x, want %#x", got&0x3F, 0x2A&0x3F)
	}
}

func TestDecodeG1PacksSeparateMosaic(t *testing.T) {
	got := decodeG1(0x2A, true)
	if got&maskSeparateMosaic != maskSeparateMosaic {
		t.Fatalf("decodeG1 separated = %#x, want the separate-mosaic tag bits set", got)
	}
}
