package teletext

// ReceiveMode tracks whether pages within a magazine are transmitted
// serially (one page fully sent before the next begins) or in parallel
// (rows of several pages interleaved), selected by the header's
// MAGAZINE_SERIAL control bit. Grounded on Decoder::Mode.
type ReceiveMode int

const (
	ModeSerial ReceiveMode = iota
	ModeParallel
)

// DecoderListener receives fully-assembled pages and decoded headers as the
// Decoder completes them, mirroring ttxdecoder's DecoderListener interface.
type DecoderListener interface {
	HeaderDecoded(h Header)
	PageDecoded(id PageId)
}

// Decoder reassembles whole pages out of the packets a Collector produces:
// it tracks one in-progress page per magazine, decides (in serial mode)
// when a magazine's previous page is done because a new header for a
// different page arrived, reconciles with the Cache so only pages a host
// actually needs get buffered, and drives the MetadataProcessor with every
// packet and completed page. Grounded on Decoder.cpp.
type Decoder struct {
	cache    *pageCache
	listener DecoderListener
	metadata *MetadataProcessor

	currentPages [magazineCount]pageInfo
	mode         ReceiveMode
}

func NewDecoder(cache *pageCache, metadata *MetadataProcessor, listener DecoderListener) *Decoder {
	return &Decoder{cache: cache, metadata: metadata, listener: listener}
}

func (d *Decoder) Reset() {
	for i := range d.currentPages {
		d.currentPages[i].reset()
	}
	d.metadata.Reset()
}

// OnPacketCollected implements CollectorListener.
func (d *Decoder) OnPacketCollected(packet CollectedPacket) {
	switch {
	case packet.Header != nil:
		d.processHeader(*packet.Header)
	case packet.LopData != nil:
		d.processLopData(packet)
	case packet.Triplets != nil, packet.EditorialLinks != nil, packet.BcastServiceData != nil:
		d.processMetadataPacket(packet)
	}
}

func (d *Decoder) processHeader(h Header) {
	mag := h.MagazineNumber

	if h.ControlInfo&ControlMagazineSerial != 0 {
		d.mode = ModeSerial
	} else {
		d.mode = ModeParallel
	}

	d.finishPreviousPage(h)

	info := &d.currentPages[mag]
	d.setCurrentPage(h)
	if info.page != nil {
		info.page.setHeader(h)
	}

	if d.listener != nil {
		d.listener.HeaderDecoded(h)
	}
	d.metadata.ProcessHeader(h)
}

// finishPreviousPage closes out whatever page was in progress for the
// affected magazine(s) before this header takes over, matching
// Decoder::processCurrentPage's split between serial and parallel mode.
func (d *Decoder) finishPreviousPage(newHeader Header) {
	if d.mode == ModeSerial {
		for i := range d.currentPages {
			info := &d.currentPages[i]
			if info.page == nil {
				continue
			}
			if info.page.PageID().MagazinePage != newHeader.PageID.MagazinePage {
				d.finishPageInfo(info)
			}
			return
		}
		return
	}

	info := &d.currentPages[newHeader.MagazineNumber]
	if info.page == nil {
		return
	}
	if info.page.PageID().Page() != newHeader.PageID.Page() {
		d.finishPageInfo(info)
	}
}

func (d *Decoder) setCurrentPage(h Header) {
	info := &d.currentPages[h.MagazineNumber]

	if info.page != nil {
		if info.fromCache {
			d.cache.Release(info.page.PageID())
		}
		info.reset()
	}

	if metaPage := d.metadata.GetPageBuffer(h.PageID); metaPage != nil {
		info.page = metaPage
		info.fromCache = false
		return
	}

	if d.cache.IsPageNeeded(h.PageID) {
		var page *collectedPage
		if h.ControlInfo&ControlErasePage == 0 {
			page = d.cache.GetMutable(h.PageID)
		}
		if page == nil {
			page = d.cache.GetClearPage(h.PageID)
		}
		if page != nil {
			info.page = page
			info.fromCache = true
			return
		}
	}

	info.page = newCollectedPage(PageKindDisplayable)
	info.fromCache = false
}

func (d *Decoder) finishPageInfo(info *pageInfo) {
	page := info.page
	if page == nil {
		return
	}

	valid := page.IsValid()
	if valid {
		d.metadata.ProcessPage(page)
	}

	if info.fromCache {
		if valid && page.hasHeader {
			d.cache.Insert(page.PageID(), page)
		} else {
			d.cache.Release(page.PageID())
		}
	}

	id := page.PageID()
	info.reset()

	if valid && d.listener != nil {
		d.listener.PageDecoded(id)
	}
}

func (d *Decoder) processLopData(packet CollectedPacket) {
	mag := packet.Address.MagazineNumber
	info := &d.currentPages[mag]
	if info.page != nil {
		info.page.setRow(packet.LopData.Row, packet.LopData.Text)
	}
}

func (d *Decoder) processMetadataPacket(packet CollectedPacket) {
	mag := packet.Address.MagazineNumber
	info := &d.currentPages[mag]

	switch {
	case packet.EditorialLinks != nil:
		if info.page != nil {
			info.page.setEditorialLinks(*packet.EditorialLinks)
		}
	case packet.Triplets != nil:
		if info.page != nil {
			info.page.addTriplets(*packet.Triplets)
		}
	}

	d.metadata.ProcessPacket(packet)
}
