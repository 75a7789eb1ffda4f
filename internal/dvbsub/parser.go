package dvbsub

import (
	"github.com/snapetech/subtitlecore/internal/bitio"
	"github.com/snapetech/subtitlecore/internal/diag"
	"github.com/snapetech/subtitlecore/internal/metrics"
	"github.com/snapetech/subtitlecore/internal/timing"
)

const subtitlingSyncByte = 0x0F

// Subtitling segment type bytes, ETSI EN 300 743 table 2.
const (
	segmentTypePCS = 0x10
	segmentTypeRCS = 0x11
	segmentTypeCDS = 0x12
	segmentTypeODS = 0x13
	segmentTypeDDS = 0x14
	segmentTypeEDS = 0x80
)

const ticksPerSecond = 90000 / 2 // 45 kHz, matching timing.Ticks' base

// Parser drains a PesBuffer gated against the host's STC, dispatching each
// admitted packet's subtitling segments into a Database. One Parser serves
// one elementary stream's composition_page_id; segments addressed to any
// other page id are ignored, the way a real decoder discards the other
// pages multiplexed onto the same PID.
type Parser struct {
	db      *Database
	buffer  *PesBuffer
	pageID  uint16
	gate    timing.Gate
	logger  *diag.Logger
	metrics metrics.Registry
}

// NewParser builds a Parser for pageID, draining buffer into db. logger and
// reg may be nil; a nil reg falls back to a no-op metrics.Registry.
func NewParser(db *Database, buffer *PesBuffer, pageID uint16, gate timing.Gate, logger *diag.Logger, reg metrics.Registry) *Parser {
	if reg == nil {
		reg = metrics.Noop{}
	}
	return &Parser{db: db, buffer: buffer, pageID: pageID, gate: gate, logger: logger, metrics: reg}
}

// Process admits every packet in the buffer whose PTS has come due against
// stc, parses their subtitling segments, and checks the current page for
// timeout. It returns true if anything changed that a caller should redraw
// for: a segment was decoded, or the page just timed out.
func (p *Parser) Process(stc timing.Ticks) bool {
	processed := false

	for {
		pkt, ok := p.buffer.Front()
		if !ok {
			break
		}
		outcome := p.gate.Evaluate(timing.Ticks(pkt.PTS.Ticks), stc, pkt.PTS.Valid())
		p.metrics.IncTimingGateOutcome("dvbsub", outcome.String())

		switch outcome {
		case timing.Wait:
			goto timeoutCheck
		case timing.Drop:
			p.buffer.Pop()
			continue
		default: // Process
			p.buffer.Pop()
			p.db.SetLastPts(pkt.PTS)
			p.parsePacketData(pkt.Data)
			processed = true
		}
	}

timeoutCheck:
	timedOut := p.checkPageTimeout(stc)
	return processed || timedOut
}

func (p *Parser) parsePacketData(data []byte) {
	r := bitio.NewReader(data)
	for r.BytesLeft() > 0 {
		sync, err := r.ReadUint8()
		if err != nil || sync != subtitlingSyncByte {
			return
		}
		segType, err := r.ReadUint8()
		if err != nil {
			return
		}
		pageID, err := r.ReadUint16BE()
		if err != nil {
			return
		}
		length, err := r.ReadUint16BE()
		if err != nil {
			return
		}
		segReader, err := r.SubReader(int(length))
		if err != nil {
			return
		}
		if pageID != p.pageID {
			continue
		}
		p.dispatchSegment(segType, segReader)
	}
}

func (p *Parser) dispatchSegment(segType uint8, r *bitio.Reader) {
	var err error
	var name string

	switch segType {
	case segmentTypePCS:
		name, err = "pcs", parsePCS(p.db, r)
	case segmentTypeRCS:
		name, err = "rcs", parseRCS(p.db, r)
	case segmentTypeCDS:
		name, err = "cds", parseCDS(p.db, r)
	case segmentTypeODS:
		name, err = "ods", parseODS(p.db, r)
	case segmentTypeDDS:
		name, err = "dds", parseDDS(p.db, r)
	case segmentTypeEDS:
		name, err = "eds", parseEDS(p.db)
	default:
		return
	}

	if err != nil {
		p.metrics.IncDVBSegment(name, "error")
		if p.logger != nil {
			p.logger.Warnf("dvbsub", "segment %s rejected: %v", name, err)
		}
		return
	}
	p.metrics.IncDVBSegment(name, "ok")
}

// checkPageTimeout forces the page to TIMEDOUT once stc has drifted more
// than TimeoutSeconds past the PTS that started it.
func (p *Parser) checkPageTimeout(stc timing.Ticks) bool {
	page := p.db.Page()
	if page.State != PageIncomplete || !page.PTS.Valid() {
		return false
	}
	diff := int32(stc) - int32(page.PTS.Ticks)
	if diff < 0 {
		return false
	}
	if uint32(diff) > uint32(page.TimeoutSeconds)*ticksPerSecond {
		page.SetTimedOut()
		p.metrics.IncDVBPageStateTransition("TIMEDOUT")
		return true
	}
	return false
}
