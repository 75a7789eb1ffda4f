package dvbsub

import (
	"errors"
	"testing"

	"github.com/snapetech/subtitlecore/internal/bitio"
)

func newTestPixmap(w, h int) *Pixmap {
	return &Pixmap{Width: w, Height: h, Buffer: make([]byte, w*h)}
}

// TestParse2BitSingleRuns packs four directly-coded pixels (01 10 11 01)
// followed by the six-bit 2-bit-mode end-of-string code (00 0 0 00) and two
// padding bits:
// 0110 1101 0000 0000 = 0x6D, 0x00.
func TestParse2BitSingleRuns(t *testing.T) {
	pm := newTestPixmap(4, 1)
	w := newPixelWriter(false, Depth2Bit, pm, 0, 0)
	p := newObjectParser(bitio.NewReader([]byte{0x6D, 0x00}), w)

	if err := p.parse2Bit(); err != nil {
		t.Fatalf("parse2Bit: %v", err)
	}
	want := []byte{1, 2, 3, 1}
	for i, v := range want {
		if pm.Buffer[i] != v {
			t.Fatalf("pixel %d = %d, want %d", i, pm.Buffer[i], v)
		}
	}
}

// TestParse2BitShortRun packs the 3-bit run-length escape (switch1=1):
// next=00, switch1=1, run-length=000 (0+3 pixels), pixel code=10, then the
// terminator next=00/switch1=0/switch2=0/switch3=00, padded to a byte
// boundary: 00 1 000 10 000000 (14 bits) + 00 padding = 0x22, 0x00.
func TestParse2BitShortRun(t *testing.T) {
	pm := newTestPixmap(5, 1)
	w := newPixelWriter(false, Depth2Bit, pm, 0, 0)
	p := newObjectParser(bitio.NewReader([]byte{0x22, 0x00}), w)

	if err := p.parse2Bit(); err != nil {
		t.Fatalf("parse2Bit: %v", err)
	}
	want := []byte{2, 2, 2, 0, 0}
	for i, v := range want {
		if pm.Buffer[i] != v {
			t.Fatalf("pixel %d = %d, want %d", i, pm.Buffer[i], v)
		}
	}
}

func TestDefaultMapTables(t *testing.T) {
	p := newObjectParser(bitio.NewReader(nil), nil)
	want2to4 := [4]uint8{0x00, 0x07, 0x08, 0x0F}
	want2to8 := [4]uint8{0x00, 0x77, 0x88, 0xFF}
	if p.maps2to4 != want2to4 {
		t.Fatalf("2to4 = %v, want %v", p.maps2to4, want2to4)
	}
	if p.maps2to8 != want2to8 {
		t.Fatalf("2to8 = %v, want %v", p.maps2to8, want2to8)
	}
	for i, v := range p.maps4to8 {
		want := uint8(i<<4) | uint8(i)
		if v != want {
			t.Fatalf("4to8[%d] = %#x, want %#x", i, v, want)
		}
	}
}

func TestParse4BitOnDepth2Rejected(t *testing.T) {
	pm := newTestPixmap(4, 1)
	w := newPixelWriter(false, Depth2Bit, pm, 0, 0)
	p := newObjectParser(bitio.NewReader([]byte{0x00}), w)

	if err := p.parse4Bit(); !errors.Is(err, ErrInvalidSegmentField) {
		t.Fatalf("want ErrInvalidSegmentField, got %v", err)
	}
}

func TestParse8BitOnNarrowerDepthRejected(t *testing.T) {
	for _, depth := range []RegionDepth{Depth2Bit, Depth4Bit} {
		pm := newTestPixmap(4, 1)
		w := newPixelWriter(false, depth, pm, 0, 0)
		p := newObjectParser(bitio.NewReader([]byte{0x00}), w)

		if err := p.parse8Bit(); !errors.Is(err, ErrInvalidSegmentField) {
			t.Fatalf("depth %v: want ErrInvalidSegmentField, got %v", depth, err)
		}
	}
}

func TestParseUnknownDataTypeRejected(t *testing.T) {
	pm := newTestPixmap(4, 1)
	w := newPixelWriter(false, Depth8Bit, pm, 0, 0)
	p := newObjectParser(bitio.NewReader([]byte{0xAB}), w)

	if err := p.parse(); !errors.Is(err, ErrInvalidSegmentField) {
		t.Fatalf("want ErrInvalidSegmentField, got %v", err)
	}
}

func TestParseExhaustedStreamRejected(t *testing.T) {
	pm := newTestPixmap(4, 1)
	w := newPixelWriter(false, Depth2Bit, pm, 0, 0)
	// data type byte present but no payload at all
	p := newObjectParser(bitio.NewReader([]byte{dataType2BitPixelCodeString}), w)

	if err := p.parse(); !errors.Is(err, bitio.ErrExhausted) {
		t.Fatalf("want ErrExhausted, got %v", err)
	}
}

func TestEndOfLineAdvancesTwoRows(t *testing.T) {
	pm := newTestPixmap(2, 4)
	w := newPixelWriter(false, Depth8Bit, pm, 0, 0)
	p := newObjectParser(bitio.NewReader([]byte{
		dataType8BitPixelCodeString, 0x05, 0x00, 0x00, // pixel code 5, then end-of-string
		dataTypeEndOfObjectLineCode,
		dataType8BitPixelCodeString, 0x06, 0x00, 0x00,
	}), w)

	if err := p.parse(); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if pm.Buffer[0] != 5 {
		t.Fatalf("row 0 col 0 = %d, want 5", pm.Buffer[0])
	}
	if pm.Buffer[2*pm.Width] != 6 {
		t.Fatalf("row 2 col 0 = %d, want 6", pm.Buffer[2*pm.Width])
	}
}
