package dvbsub

import (
	"testing"

	"github.com/snapetech/subtitlecore/internal/timing"
)

func newTestParser(t *testing.T, pageID uint16) (*Parser, *Database, *PesBuffer) {
	t.Helper()
	db := newTestDatabase(t, 500*1024)
	buf := &PesBuffer{}
	p := NewParser(db, buf, pageID, timing.Gate{}, nil, nil)
	return p, db, buf
}

// packSegment frames one subtitling segment the way parsePacketData expects
// to find it: sync byte, segment type, page id, 16-bit length, payload.
func packSegment(segType uint8, pageID uint16, payload []byte) []byte {
	buf := []byte{subtitlingSyncByte, segType, byte(pageID >> 8), byte(pageID)}
	buf = append(buf, byte(len(payload)>>8), byte(len(payload)))
	return append(buf, payload...)
}

func TestParserEndToEndComposesAndCommitsPage(t *testing.T) {
	p, db, buf := newTestParser(t, 1)

	var data []byte
	data = append(data, packSegment(segmentTypeDDS, 1, packDDS(1, false, 719, 575, [4]uint16{}))...)

	pcsPayload := packPCSHeader(5, 1, pageStateModeChange)
	pcsPayload = appendPCSRegion(pcsPayload, 0, 0, 0)
	data = append(data, packSegment(segmentTypePCS, 1, pcsPayload)...)

	rcsPayload := packRCSHeader(0, 1, false, 4, 4, Depth8Bit, Depth8Bit, 0, 0)
	rcsPayload = append(rcsPayload, packRCSObject(1000, 0, 0)...)
	data = append(data, packSegment(segmentTypeRCS, 1, rcsPayload)...)

	top := []byte{dataType8BitPixelCodeString, 0x09, 0x00, 0x00}
	odsPayload := append(packODSHeader(1000, 1, false, objectCodingMethodPixels, uint16(len(top)), 0), top...)
	data = append(data, packSegment(segmentTypeODS, 1, odsPayload)...)

	data = append(data, packSegment(segmentTypeEDS, 1, nil)...)

	buf.Push(PesPacket{PTS: timing.StcTime{}, Data: data})

	if changed := p.Process(0); !changed {
		t.Fatalf("Process should report a change")
	}
	if db.Page().State != PageComplete {
		t.Fatalf("state = %v, want COMPLETE after EDS", db.Page().State)
	}
	region := db.GetRegionByID(0)
	if region == nil {
		t.Fatalf("region 0 not created")
	}
	if region.Pixmap.Buffer[0] != 9 {
		t.Fatalf("object pixel not painted: buffer[0] = %d", region.Pixmap.Buffer[0])
	}
	current := db.CurrentRenderingState()
	if len(current.Regions) != 1 || current.Regions[0].RegionID != 0 {
		t.Fatalf("rendering state regions = %+v", current.Regions)
	}
	if !current.Display.Valid() {
		t.Fatalf("rendering state should carry the parsed display")
	}
}

func TestParserIgnoresOtherPageIDs(t *testing.T) {
	p, db, buf := newTestParser(t, 1)

	data := packSegment(segmentTypeDDS, 2, packDDS(1, false, 100, 100, [4]uint16{}))
	buf.Push(PesPacket{Data: data})

	p.Process(0)
	if db.Display().Valid() {
		t.Fatalf("segment addressed to a different page id must be ignored")
	}
}

func TestParserWaitsForFuturePTS(t *testing.T) {
	p, _, buf := newTestParser(t, 1)
	buf.Push(PesPacket{
		PTS:  timing.StcTime{Kind: timing.KindLow32, Ticks: timing.TSMin + 1000},
		Data: packSegment(segmentTypeDDS, 1, packDDS(1, false, 100, 100, [4]uint16{})),
	})

	if changed := p.Process(0); changed {
		t.Fatalf("a not-yet-due PTS should not be processed yet")
	}
	if buf.Len() != 1 {
		t.Fatalf("a packet still in the wait band must remain queued, got len %d", buf.Len())
	}
}

func TestParserDropsFarFuturePTS(t *testing.T) {
	p, _, buf := newTestParser(t, 1)
	buf.Push(PesPacket{
		PTS:  timing.StcTime{Kind: timing.KindLow32, Ticks: timing.TSMax + 1000},
		Data: packSegment(segmentTypeDDS, 1, packDDS(1, false, 100, 100, [4]uint16{})),
	})

	if changed := p.Process(0); changed {
		t.Fatalf("a dropped packet is not a decoded change")
	}
	if buf.Len() != 0 {
		t.Fatalf("a far-future PTS past TSMax should be dropped, not left queued")
	}
}

func TestParserTimesOutStalePage(t *testing.T) {
	p, db, _ := newTestParser(t, 1)
	db.EpochReset()
	db.Page().StartParsing(1, timing.StcTime{Kind: timing.KindLow32, Ticks: 0}, 0)

	if changed := p.Process(timing.Ticks(2 * ticksPerSecond)); !changed {
		t.Fatalf("Process should report the timeout as a change")
	}
	if db.Page().State != PageTimedOut {
		t.Fatalf("state = %v, want TIMEDOUT", db.Page().State)
	}
}

func TestParserMalformedSegmentDoesNotAbortStream(t *testing.T) {
	p, db, buf := newTestParser(t, 1)
	db.EpochReset()
	db.Page().StartParsing(0, timing.StcTime{}, 0)

	// RCS with an invalid region depth code (0) in the depth byte.
	data := packSegment(segmentTypeRCS, 1, []byte{2, 0x10, 0, 10, 0, 10, 0x00, 0, 0, 0})
	data = append(data, packSegment(segmentTypeDDS, 1, packDDS(1, false, 100, 100, [4]uint16{}))...)
	buf.Push(PesPacket{Data: data})

	p.Process(0)
	if db.GetRegionByID(2) != nil {
		t.Fatalf("the malformed RCS should not have created a region")
	}
	if !db.Display().Valid() {
		t.Fatalf("a later well-formed segment must still be dispatched after an earlier rejection")
	}
}
