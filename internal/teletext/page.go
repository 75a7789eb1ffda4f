package teletext

// PageKind distinguishes the three collected-page shapes the Decoder
// routes packets into, mirroring Page.hpp's PageType.
type PageKind int

const (
	PageKindDisplayable PageKind = iota
	PageKindBtt
	PageKindMagazine
)

// collectedPage accumulates the packets that make up one Teletext page
// while it is being received. It replaces ttxdecoder's PagePacket slot
// array and its taken/valid handshake with a plain overwrite-on-receipt
// model: a redundant or corrected retransmission of a row simply replaces
// the previous one, which is what every packet's Hamming/parity check
// already guards against admitting garbage for.
type collectedPage struct {
	Kind   PageKind
	Header Header

	hasHeader bool
	rows      map[int][40]byte
	rowValid  map[int]bool

	editorialLinks   EditorialLinks
	hasEditorialLinks bool

	triplets []Triplets
}

func newCollectedPage(kind PageKind) *collectedPage {
	return &collectedPage{
		Kind:     kind,
		rows:     make(map[int][40]byte),
		rowValid: make(map[int]bool),
	}
}

func (p *collectedPage) PageID() PageId {
	if !p.hasHeader {
		return InvalidPageId
	}
	return p.Header.PageID
}

// IsValid reports whether the page carries a header; body rows are not
// required. This matches the original's "decoded at least the header" completeness
// bar (Decoder::processPageInfo only forwards pages with a header).
func (p *collectedPage) IsValid() bool {
	return p.hasHeader
}

func (p *collectedPage) setHeader(h Header) {
	p.Header = h
	p.hasHeader = true
}

func (p *collectedPage) setRow(row int, text [40]byte) {
	p.rows[row] = text
	p.rowValid[row] = true
}

func (p *collectedPage) setEditorialLinks(e EditorialLinks) {
	p.editorialLinks = e
	p.hasEditorialLinks = true
}

func (p *collectedPage) addTriplets(t Triplets) {
	p.triplets = append(p.triplets, t)
}

func (p *collectedPage) reset() {
	p.hasHeader = false
	p.hasEditorialLinks = false
	p.Header = Header{}
	p.editorialLinks = EditorialLinks{}
	p.triplets = p.triplets[:0]
	for k := range p.rows {
		delete(p.rows, k)
	}
	for k := range p.rowValid {
		delete(p.rowValid, k)
	}
}

// pageInfo is the Decoder's per-magazine "currently being collected" slot,
// mirroring Decoder::PageInfo.
type pageInfo struct {
	page     *collectedPage
	fromCache bool
}

func (pi *pageInfo) reset() {
	pi.page = nil
	pi.fromCache = false
}
