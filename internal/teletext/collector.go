package teletext

import (
	"github.com/snapetech/subtitlecore/internal/bitio"
	"github.com/snapetech/subtitlecore/internal/diag"
	"github.com/snapetech/subtitlecore/internal/metrics"
)

// Teletext data unit ids, ETSI EN 300 472.
const (
	dataUnitEBUTeletextNonSubtitle = 0x02
	dataUnitEBUTeletextSubtitle    = 0x03
	dataUnitStuffing               = 0xFF

	framingCode = 0xE4

	teletextLineLength = 42 // one Teletext packet: 2 address bytes + 40 data bytes
)

// reverseBits8 flips a byte's bit order. Teletext transmits each byte LSB
// first on the wire; PES delivery already byte-aligns but leaves the
// original transmission bit order inside each byte, so every payload byte
// must be mirrored before the Hamming/parity codes make sense.
func reverseBits8(b byte) byte {
	b = (b&0xF0)>>4 | (b&0x0F)<<4
	b = (b&0xCC)>>2 | (b&0x33)<<2
	b = (b&0xAA)>>1 | (b&0x55)<<1
	return b
}

// CollectedPacket is one fully address-decoded, error-corrected Teletext
// packet handed up from the Collector to the Decoder, carrying whichever
// one of the Packet variants its address/designation combination selects.
type CollectedPacket struct {
	Address         PacketAddress
	DesignationCode int8 // negative when not applicable or uncorrectable

	Header           *Header
	LopData          *LopData
	EditorialLinks   *EditorialLinks
	Triplets         *Triplets
	BcastServiceData *BcastServiceData
}

// CollectorListener receives packets as the Collector finishes decoding
// them, mirroring Decoder::onPacketReady/preparePacket/processPacket.
type CollectorListener interface {
	OnPacketCollected(packet CollectedPacket)
}

// Collector turns PES packet payloads into address-decoded Teletext
// packets: it locates each data unit, validates the framing code, corrects
// the magazine/packet address with Hamming 8/4, decodes the designation
// code for packets that carry one, and decodes the kind-specific fields
// before handing the result to its listener. Grounded on PesPacketReader.cpp
// for the underlying two-chunk reader and on Decoder.cpp's
// preparePacket/processPacket for the six-step per-packet flow.
type Collector struct {
	listener CollectorListener
	logger   *diag.Logger
	metrics  metrics.Registry
}

// NewCollector builds a Collector reporting into listener. logger and reg
// may be nil; a nil reg falls back to a no-op metrics.Registry.
func NewCollector(listener CollectorListener, logger *diag.Logger, reg metrics.Registry) *Collector {
	if reg == nil {
		reg = metrics.Noop{}
	}
	return &Collector{listener: listener, logger: logger, metrics: reg}
}

func (c *Collector) Reset() {
	// no per-stream state to clear; every packet is decoded independently.
}

// noteHamming reports one representative Hamming outcome per decode call
// site to the metrics registry. It is called once per packet address
// decode rather than once per nibble, which is enough to see correction
// rates climb without an allocation or label lookup on every four-bit
// field of a packet.
func (c *Collector) noteHamming(kind string, corrected, ok bool) {
	switch {
	case !ok:
		c.metrics.IncTeletextHammingCorrection(kind, "failed")
	case corrected:
		c.metrics.IncTeletextHammingCorrection(kind, "corrected")
	default:
		c.metrics.IncTeletextHammingCorrection(kind, "ok")
	}
}

// ProcessPacketData scans one PES packet's payload for Teletext data units
// and decodes each into a CollectedPacket.
func (c *Collector) ProcessPacketData(r *bitio.Reader) {
	for r.BytesLeft() > 0 {
		dataUnitID, err := r.ReadUint8()
		if err != nil {
			return
		}
		length, err := r.ReadUint8()
		if err != nil {
			return
		}
		if int(length) > r.BytesLeft() {
			return
		}
		unit, err := r.SubReader(int(length))
		if err != nil {
			return
		}
		if dataUnitID == dataUnitEBUTeletextNonSubtitle || dataUnitID == dataUnitEBUTeletextSubtitle {
			c.processLine(unit)
		}
		// stuffing and any other data unit id is skipped: the sub-reader
		// already advanced r past its bytes.
	}
}

func (c *Collector) processLine(r *bitio.Reader) {
	if r.BytesLeft() < teletextLineLength {
		return
	}

	// byte 0: field parity + line offset, not needed for page assembly.
	if _, err := r.ReadUint8(); err != nil {
		return
	}
	framing, err := r.ReadUint8()
	if err != nil || framing != framingCode {
		return
	}

	addr1, err1 := r.ReadUint8()
	addr2, err2 := r.ReadUint8()
	if err1 != nil || err2 != nil {
		return
	}
	addr1 = reverseBits8(addr1)
	addr2 = reverseBits8(addr2)

	d1, c1, ok1 := DecodeHamming84(addr1)
	d2, c2, ok2 := DecodeHamming84(addr2)
	c.noteHamming("address", c1 || c2, ok1 && ok2)
	if !ok1 || !ok2 {
		if c.logger != nil {
			c.logger.Warnf("collector", "uncorrectable address Hamming error, dropping line")
		}
		return
	}

	magazine := d1 & 0x07
	packetAddr := ((d1 >> 3) & 0x01) | (d2 << 1)

	n := r.BytesLeft()
	if n > 40 {
		n = 40
	}
	payload := make([]byte, n)
	for i := 0; i < n; i++ {
		b, err := r.ReadUint8()
		if err != nil {
			payload = payload[:i]
			break
		}
		payload[i] = reverseBits8(b)
	}

	addr := PacketAddress{MagazineNumber: magazine, PacketAddr: packetAddr}

	var packet CollectedPacket
	packet.Address = addr
	packet.DesignationCode = -1

	switch {
	case packetAddr == 0:
		header, ok := decodeHeader(addr, payload)
		if !ok {
			return
		}
		packet.Header = &header
	case packetAddr >= 1 && packetAddr <= 25:
		lop, ok := decodeLopData(addr, packetAddr, payload)
		if !ok {
			return
		}
		packet.LopData = &lop
	case packetAddr == 26, packetAddr == 28, packetAddr == 29:
		designation, triplets, ok := decodeTriplets(addr, payload)
		if !ok {
			return
		}
		packet.DesignationCode = designation
		packet.Triplets = &triplets
	case packetAddr == 27:
		designation, ok := decodeDesignationCode(payload)
		if !ok {
			return
		}
		packet.DesignationCode = designation
		if designation == 0 {
			links, ok := decodeEditorialLinks(addr, payload)
			if !ok {
				return
			}
			packet.EditorialLinks = &links
		} else {
			_, triplets, ok := decodeTriplets(addr, payload)
			if !ok {
				return
			}
			packet.Triplets = &triplets
		}
	case packetAddr == 30 || packetAddr == 31:
		designation, ok := decodeDesignationCode(payload)
		if !ok {
			return
		}
		packet.DesignationCode = designation
		if designation >= 0 && designation <= 3 {
			bsd, ok := decodeBcastServiceData(addr, designation, payload)
			if !ok {
				return
			}
			packet.BcastServiceData = &bsd
		}
	default:
		return
	}

	if c.listener != nil {
		c.listener.OnPacketCollected(packet)
	}
}

func decodeDesignationCode(payload []byte) (int8, bool) {
	if len(payload) < 1 {
		return -1, false
	}
	v, _, ok := DecodeHamming84(payload[0])
	if !ok {
		return -1, false
	}
	return int8(v), true
}

func decodeHeader(addr PacketAddress, payload []byte) (Header, bool) {
	if len(payload) < 40 {
		return Header{}, false
	}
	units, _, ok1 := DecodeHamming84(payload[0])
	tens, _, ok2 := DecodeHamming84(payload[1])
	if !ok1 || !ok2 {
		return Header{}, false
	}
	page := tens<<4 | units

	s1, _, ok3 := DecodeHamming84(payload[2])
	s2nib, _, ok4 := DecodeHamming84(payload[3])
	s3, _, ok5 := DecodeHamming84(payload[4])
	s4nib, _, ok6 := DecodeHamming84(payload[5])
	c7c10, _, ok7 := DecodeHamming84(payload[6])
	c11c14, _, ok8 := DecodeHamming84(payload[7])
	if !allOK(ok3, ok4, ok5, ok6, ok7, ok8) {
		return Header{}, false
	}
	_ = s1
	_ = s3

	subS2 := uint16(s2nib & 0x07)
	c4 := (s2nib >> 3) & 0x01
	subS4 := uint16(s4nib & 0x03)
	c5 := (s4nib >> 2) & 0x01
	c6 := (s4nib >> 3) & 0x01

	subcode := uint16(s1) | subS2<<4 | uint16(s3)<<8 | subS4<<12

	c7 := c7c10 & 0x01
	c8 := (c7c10 >> 1) & 0x01
	c9 := (c7c10 >> 2) & 0x01
	c10 := (c7c10 >> 3) & 0x01
	c11 := c11c14 & 0x01
	nationalOption := (c11c14 >> 1) & 0x07

	controlInfo := c4*ControlErasePage | c5*ControlNewsflash | c6*ControlSubtitle |
		c7*ControlSuppressHeader | c8*ControlUpdateIndicator | c9*ControlInterruptedSequence |
		c10*ControlInhibitDisplay | c11*ControlMagazineSerial

	magazinePage := uint16(wireMagazineToDigit(addr.MagazineNumber))<<8 | uint16(page)

	var text [32]byte
	copy(text[:], payload[8:40])
	for i := range text {
		v, _ := DecodeOddParity(text[i])
		text[i] = v
	}

	return Header{
		PacketAddress:  addr,
		PageID:         PageId{MagazinePage: magazinePage, Subpage: subcode},
		ControlInfo:    controlInfo,
		NationalOption: nationalOption,
		Text:           text,
	}, true
}

// wireMagazineToDigit converts the 3-bit wire magazine address (0-7) to the
// 1-8 decimal magazine digit used in a page's BCD-like page id: magazine 8
// has no 3-bit representation of its own, so it is transmitted as 0.
func wireMagazineToDigit(wire uint8) uint8 {
	if wire == 0 {
		return 8
	}
	return wire
}

func allOK(vals ...bool) bool {
	for _, v := range vals {
		if !v {
			return false
		}
	}
	return true
}

func decodeLopData(addr PacketAddress, row int, payload []byte) (LopData, bool) {
	var text [40]byte
	n := copy(text[:], payload)
	for i := 0; i < n; i++ {
		v, _ := DecodeOddParity(text[i])
		text[i] = v
	}
	return LopData{PacketAddress: addr, Row: row, Text: text}, true
}

func decodeTriplets(addr PacketAddress, payload []byte) (int8, Triplets, bool) {
	if len(payload) < 1 {
		return -1, Triplets{}, false
	}
	designation, _, ok := DecodeHamming84(payload[0])
	if !ok {
		return -1, Triplets{}, false
	}
	t := Triplets{PacketAddress: addr, DesignationCode: int8(designation)}
	offset := 1
	for i := 0; i < tripletCount; i++ {
		if offset+3 > len(payload) {
			t.Values[i] = invalidTripletValue
			continue
		}
		code := uint32(payload[offset]) | uint32(payload[offset+1])<<8 | uint32(payload[offset+2])<<16
		value, _, ok := DecodeHamming2418(code)
		if !ok {
			t.Values[i] = invalidTripletValue
		} else {
			t.Values[i] = value
		}
		offset += 3
	}
	return int8(designation), t, true
}

func decodeEditorialLinks(addr PacketAddress, payload []byte) (EditorialLinks, bool) {
	if len(payload) < 33 {
		return EditorialLinks{}, false
	}
	e := EditorialLinks{PacketAddress: addr, DesignationCode: 0}
	offset := 1
	for i := 0; i < 6; i++ {
		if offset+5 > len(payload) {
			return e, false
		}
		units, _, ok1 := DecodeHamming84(payload[offset])
		tens, _, ok2 := DecodeHamming84(payload[offset+1])
		s1, _, ok3 := DecodeHamming84(payload[offset+2])
		s2, _, ok4 := DecodeHamming84(payload[offset+3])
		s34, _, ok5 := DecodeHamming84(payload[offset+4])
		if !allOK(ok1, ok2, ok3, ok4, ok5) {
			return e, false
		}
		page := tens<<4 | units
		subcode := uint16(s1) | uint16(s2&0x07)<<4 | uint16(s34)<<7
		e.Links[i] = PageId{MagazinePage: uint16(wireMagazineToDigit(addr.MagazineNumber))<<8 | uint16(page), Subpage: subcode}
		offset += 5
	}
	return e, true
}

func decodeBcastServiceData(addr PacketAddress, designation int8, payload []byte) (BcastServiceData, bool) {
	if len(payload) < 6 {
		return BcastServiceData{}, false
	}
	if designation == 0 || designation == 2 {
		units, _, ok1 := DecodeHamming84(payload[1])
		tens, _, ok2 := DecodeHamming84(payload[2])
		s1, _, ok3 := DecodeHamming84(payload[3])
		s2, _, ok4 := DecodeHamming84(payload[4])
		s34, _, ok5 := DecodeHamming84(payload[5])
		if !allOK(ok1, ok2, ok3, ok4, ok5) {
			return BcastServiceData{}, false
		}
		page := tens<<4 | units
		subcode := uint16(s1) | uint16(s2&0x07)<<4 | uint16(s34)<<7
		bsd := BcastServiceData{PacketAddress: addr, DesignationCode: designation,
			InitialPage: PageId{MagazinePage: uint16(wireMagazineToDigit(addr.MagazineNumber))<<8 | uint16(page), Subpage: subcode}}
		if len(payload) >= 6+bsdStatusDisplayLength {
			for i := 0; i < bsdStatusDisplayLength; i++ {
				v, _ := DecodeOddParity(payload[6+i])
				bsd.StatusDisplay[i] = v
			}
		}
		return bsd, true
	}
	return BcastServiceData{PacketAddress: addr, DesignationCode: designation, InitialPage: InvalidPageId}, true
}
