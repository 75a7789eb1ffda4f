package dvbsub

import (
	"testing"

	"github.com/snapetech/subtitlecore/internal/bitio"
	"github.com/snapetech/subtitlecore/internal/timing"
)

func packCDSFullRange(clutID uint8, entryID uint8, flags uint8, y, cr, cb, t uint8) []byte {
	return []byte{clutID, 0, entryID, flags | clutFlagFullRange, y, cr, cb, t}
}

func packCDSLimitedRange(clutID uint8, entryID uint8, flags uint8, y6, cr4, cb4, t2 uint8) []byte {
	packed := (uint16(y6&0x3F) << 10) | (uint16(cr4&0x0F) << 6) | (uint16(cb4&0x0F) << 2) | uint16(t2&0x03)
	return []byte{clutID, 0, entryID, flags &^ clutFlagFullRange, byte(packed >> 8), byte(packed)}
}

func TestParseCDSUnknownClutIsNoop(t *testing.T) {
	db := newTestDatabase(t, 500*1024)
	db.EpochReset()
	db.Page().StartParsing(0, timing.StcTime{}, 0)

	data := packCDSFullRange(9, 1, clutFlagDepth8Bit, 0xFF, 0, 0, 0xFF)
	if err := parseCDS(db, bitio.NewReader(data)); err != nil {
		t.Fatal(err)
	}
	if db.GetClutByID(9) != nil {
		t.Fatalf("CDS must not create a clut that no region referenced")
	}
}

func TestParseCDSFullRangeUpdatesArray8(t *testing.T) {
	db := newTestDatabase(t, 500*1024)
	db.EpochReset()
	db.Page().StartParsing(0, timing.StcTime{}, 0)
	db.AddRegionAndClut(0, 10, 10, Depth8Bit, Depth8Bit, 9)

	data := packCDSFullRange(9, 200, clutFlagDepth8Bit, 0xFF, 0x00, 0x00, 0xFF)
	if err := parseCDS(db, bitio.NewReader(data)); err != nil {
		t.Fatal(err)
	}
	clut := db.GetClutByID(9)
	if clut.Array8[200] == 0xFF000000 {
		t.Fatalf("entry 200 was not updated")
	}
}

func TestParseCDSLimitedRangeZeroFillExpansion(t *testing.T) {
	db := newTestDatabase(t, 500*1024)
	db.EpochReset()
	db.Page().StartParsing(0, timing.StcTime{}, 0)
	db.AddRegionAndClut(0, 10, 10, Depth2Bit, Depth2Bit, 9)

	// limited-range y/cr/cb/t fields expand by left-shift + zero fill, not
	// bit replication: 0x3F -> 0xFC, 0x0F -> 0xF0, 0x03 -> 0xC0.
	data := packCDSLimitedRange(9, 1, clutFlagDepth2Bit, 0x3F, 0x0F, 0x0F, 0x03)
	if err := parseCDS(db, bitio.NewReader(data)); err != nil {
		t.Fatal(err)
	}
	clut := db.GetClutByID(9)
	want := ycbcrToARGB(0xFC, 0xF0, 0xF0, 0xC0)
	if clut.Array2[1] != want {
		t.Fatalf("entry 1 = %#x, want %#x", clut.Array2[1], want)
	}
}

func TestParseCDSEntryOutOfRangeForNarrowArraySkipped(t *testing.T) {
	db := newTestDatabase(t, 500*1024)
	db.EpochReset()
	db.Page().StartParsing(0, timing.StcTime{}, 0)
	db.AddRegionAndClut(0, 10, 10, Depth2Bit, Depth2Bit, 9)

	// entry id 9 is out of range for Array2 (len 4); must not panic, and
	// must leave Array2 untouched.
	data := packCDSFullRange(9, 9, clutFlagDepth2Bit, 0x10, 0x10, 0x10, 0x10)
	if err := parseCDS(db, bitio.NewReader(data)); err != nil {
		t.Fatal(err)
	}
}

func TestParseCDSOutsidePageIsNoop(t *testing.T) {
	db := newTestDatabase(t, 500*1024)
	data := packCDSFullRange(9, 1, clutFlagDepth8Bit, 1, 1, 1, 1)
	if err := parseCDS(db, bitio.NewReader(data)); err != nil {
		t.Fatal(err)
	}
}
