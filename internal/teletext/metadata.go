package teletext

// bttPageID is the magazine page TOP publishes its 800-entry page-type
// table on: magazine 8 (wire-encoded as magazine number 0), hex page F0.
// Grounded on TopNavProcessor::BTT_PAGE_ID.
const bttPageID uint16 = 0x01F0

const bttEntryCount = 800

// MetadataProcessor watches every collected packet and completed page for
// TOP and FLOF navigation data and, once a BTT page completes, recomputes
// the Database's next/prev/group/block links for all 800 magazine pages.
// Grounded on MetadataProcessor.{hpp,cpp} and TopNavProcessor.{hpp,cpp}.
type MetadataProcessor struct {
	db *Database

	bttPage     *collectedPage
	pageTypes   [bttEntryCount]BttPageType
	haveBtt     bool
}

func NewMetadataProcessor(db *Database) *MetadataProcessor {
	m := &MetadataProcessor{db: db}
	m.Reset()
	return m
}

func (m *MetadataProcessor) Reset() {
	m.bttPage = nil
	m.haveBtt = false
	for i := range m.pageTypes {
		m.pageTypes[i] = BttNoPage
	}
	m.db.ResetTopMetadata()
}

// GetPageBuffer returns a buffer to collect the BTT page into when pageId
// matches it, so the Decoder's metadata fallback path has somewhere to
// route packets addressed to a page no ordinary DisplayablePage claimed.
func (m *MetadataProcessor) GetPageBuffer(pageID PageId) *collectedPage {
	if pageID.MagazinePage != bttPageID {
		return nil
	}
	if m.bttPage == nil {
		m.bttPage = newCollectedPage(PageKindBtt)
	}
	return m.bttPage
}

func (m *MetadataProcessor) ProcessHeader(h Header) {
	// The BTT page's own header carries no navigation data; only its body
	// rows, folded into it by the Decoder's ordinary row-collection path
	// once GetPageBuffer has handed out m.bttPage, do.
	_ = h
}

func (m *MetadataProcessor) ProcessPacket(packet CollectedPacket) {
	// Editorial links (FLOF) are retained on the owning page itself by the
	// Decoder and surfaced to a host via DecodedPage; nothing further to
	// fold into global Database state. M/8/30 format 1 packets carry the
	// channel's P8/30 index page, which is global state, so that one does
	// get folded in here. Grounded on EngineImpl::getPageId's
	// INDEX_PAGE_P830 case.
	if bsd := packet.BcastServiceData; bsd != nil && bsd.DesignationCode == 0 {
		m.db.SetIndexPageP830(bsd.InitialPage)
	}
}

// ProcessPage is called once a page finishes collecting. When it is the BTT
// page, it rebuilds the Database's TOP navigation tables.
func (m *MetadataProcessor) ProcessPage(page *collectedPage) {
	if page != m.bttPage {
		return
	}
	if m.setTypes(page) {
		m.haveBtt = true
		m.fillPrevPage()
		m.fillNextPage()
		m.fillNextGroup()
		m.fillNextBlock()
	}
	m.bttPage = nil
}

func (m *MetadataProcessor) setTypes(page *collectedPage) bool {
	ok := false
	for row := 1; row <= 20; row++ {
		buf, present := page.rows[row]
		if !present {
			continue
		}
		for col := 0; col < 40; col++ {
			idx := (row-1)*40 + col
			if idx >= bttEntryCount {
				continue
			}
			// BTT rows arrive through the Collector's ordinary LopData path,
			// which already stripped odd parity; the page type occupies the
			// low nibble of what remains.
			m.pageTypes[idx] = BttPageType(buf[col] & 0x0F)
			ok = true
		}
	}
	return ok
}

func (m *MetadataProcessor) fillNextPage() {
	for i := 0; i < bttEntryCount; i++ {
		next := m.findForward(i, func(t BttPageType) bool { return t.IsNavigableType() })
		meta := m.db.TopMetadataFor(indexToHexPage(i))
		if meta != nil {
			meta.NextPage = indexOrInvalid(next)
		}
	}
}

func (m *MetadataProcessor) fillPrevPage() {
	for i := 0; i < bttEntryCount; i++ {
		prev := m.findBackward(i, func(t BttPageType) bool { return t.IsNavigableType() })
		meta := m.db.TopMetadataFor(indexToHexPage(i))
		if meta != nil {
			meta.PrevPage = indexOrInvalid(prev)
		}
	}
}

func (m *MetadataProcessor) fillNextGroup() {
	for i := 0; i < bttEntryCount; i++ {
		next := m.findForward(i, func(t BttPageType) bool { return t.IsGroupType() })
		meta := m.db.TopMetadataFor(indexToHexPage(i))
		if meta != nil {
			meta.NextGroupPage = indexOrInvalid(next)
		}
	}
}

func (m *MetadataProcessor) fillNextBlock() {
	for i := 0; i < bttEntryCount; i++ {
		next := m.findForward(i, func(t BttPageType) bool { return t.IsBlockType() })
		meta := m.db.TopMetadataFor(indexToHexPage(i))
		if meta != nil {
			meta.NextBlockPage = indexOrInvalid(next)
		}
	}
}

func (m *MetadataProcessor) findForward(from int, match func(BttPageType) bool) int {
	for step := 1; step <= bttEntryCount; step++ {
		idx := (from + step) % bttEntryCount
		if match(m.pageTypes[idx]) {
			return idx
		}
	}
	return -1
}

func (m *MetadataProcessor) findBackward(from int, match func(BttPageType) bool) int {
	for step := 1; step <= bttEntryCount; step++ {
		idx := (from - step + bttEntryCount*2) % bttEntryCount
		if match(m.pageTypes[idx]) {
			return idx
		}
	}
	return -1
}

func indexToHexPage(index int) uint16 {
	decimal := 100 + index
	m := decimal / 100
	p1 := (decimal / 10) % 10
	p2 := decimal % 10
	return uint16(m<<8 | p1<<4 | p2)
}

func indexOrInvalid(index int) uint16 {
	if index < 0 {
		return InvalidMagazinePage
	}
	return indexToHexPage(index)
}
