package teletext

import (
	"github.com/google/uuid"

	"github.com/snapetech/subtitlecore/internal/bitio"
	"github.com/snapetech/subtitlecore/internal/diag"
	"github.com/snapetech/subtitlecore/internal/metrics"
	"github.com/snapetech/subtitlecore/internal/timing"
)

// EngineClient receives the callbacks an Engine raises as it decodes:
// a newly complete header or page worth redrawing. It has no method for
// asking the host what the current STC is. Grounded on EngineClient.hpp, minus
// getDrcsCharDecoded, since DRCS character sets are not implemented.
type EngineClient interface {
	HeaderReady()
	PageReady()
}

// Engine binds the Collector/Decoder/Database/pageCache pipeline to a
// host's PES feed and timing gate, and tracks which page is currently
// selected for display. Grounded on Engine.hpp/EngineImpl.cpp; its
// process loop reuses internal/timing.Gate exactly the way dvbsub.Parser
// does, since EngineImpl::getActionForPacket applies the identical
// PTS/STC diff thresholds.
type Engine struct {
	client EngineClient

	epochID  uuid.UUID
	db       *Database
	cache    *pageCache
	metadata *MetadataProcessor
	decoder  *Decoder
	collector *Collector

	buffer PesBuffer
	gate   timing.Gate

	logger  *diag.Logger
	metrics metrics.Registry

	displayPageID  PageId
	currentPage    *collectedPage
	stalePage      *collectedPage
	navigationMode NavigationMode

	lastHeaderPageID       PageId
	nationalOptionOverride int8 // -1 means no override; follow the broadcast bits

	pageData *DecodedPage
}

// NewEngine builds an Engine reporting decoded pages/headers to client.
// logger and reg may be nil; a nil reg falls back to a no-op
// metrics.Registry.
func NewEngine(client EngineClient, logger *diag.Logger, reg metrics.Registry) *Engine {
	if reg == nil {
		reg = metrics.Noop{}
	}
	db := NewDatabase()
	cache := newPageCache(defaultCacheCapacity, reg)
	metadataProc := NewMetadataProcessor(db)

	e := &Engine{
		client:                 client,
		epochID:                uuid.New(),
		db:                     db,
		cache:                  cache,
		metadata:               metadataProc,
		logger:                 logger,
		metrics:                reg,
		displayPageID:          InvalidPageId,
		lastHeaderPageID:       InvalidPageId,
		nationalOptionOverride: -1,
		pageData:               newDecodedPage(InvalidPageId, 0),
	}
	e.decoder = NewDecoder(cache, metadataProc, e)
	e.collector = NewCollector(e.decoder, logger, reg)
	return e
}

// EpochID identifies this Engine instance for diagnostics/metrics
// correlation across a multi-instance host; it plays no part in decode
// logic or equality.
func (e *Engine) EpochID() uuid.UUID { return e.epochID }

// SetIgnorePts disables PTS gating, admitting every queued packet as soon
// as it is processed regardless of STC, matching Engine::setIgnorePts.
func (e *Engine) SetIgnorePts(ignore bool) {
	e.gate.IgnorePTS = ignore
}

// ResetAcquisition discards all in-flight and cached decode state,
// matching EngineImpl::resetAcquisition: a channel/PID change invalidates
// everything this Engine has accumulated.
func (e *Engine) ResetAcquisition() {
	e.unsetCurrentPage(false)
	e.cache.Clear()
	e.decoder.Reset()
	e.buffer.Clear()
	e.db.Reset()
	e.pageData = newDecodedPage(InvalidPageId, 0)
}

// AddPesPacket queues one PES payload for decoding, copying it so the
// caller's buffer can be reused immediately, matching Engine::addPesPacket.
func (e *Engine) AddPesPacket(data []byte, pts timing.StcTime) {
	cp := make([]byte, len(data))
	copy(cp, data)
	e.buffer.Push(PesPacket{PTS: pts, Data: cp})
}

// Process drains every queued packet whose PTS has come due against stc,
// feeding admitted packets to the Collector and returning how many were
// processed (dropped packets are not counted). Grounded on
// EngineImpl::process and its getActionForPacket gating loop.
func (e *Engine) Process(stc timing.Ticks) uint32 {
	var processed uint32
	for {
		pkt, ok := e.buffer.Front()
		if !ok {
			break
		}
		outcome := e.gate.Evaluate(timing.Ticks(pkt.PTS.Ticks), stc, pkt.PTS.Valid())
		e.metrics.IncTimingGateOutcome("teletext", outcome.String())
		if outcome == timing.Wait {
			break
		}
		e.buffer.Pop()
		if outcome == timing.Drop {
			continue
		}
		e.collector.ProcessPacketData(bitio.NewReader(pkt.Data))
		processed++
	}
	return processed
}

// SetCurrentPageID selects the page a host wants decoded and displayed,
// restoring it immediately from the cache if already available. Grounded
// on EngineImpl::setCurrentPageId.
func (e *Engine) SetCurrentPageID(id PageId) {
	if e.displayPageID == id {
		return
	}
	e.displayPageID = id
	e.cache.SetCurrentPage(id)
	e.unsetCurrentPage(true)
	e.tryRestoreCurrentPage()
}

// GetNextPageID/GetPrevPageID report the page a "next"/"previous" remote
// keypress should navigate to, following TOP metadata when available and
// SetNavigationMode selected NavigationTop.
func (e *Engine) GetNextPageID(from PageId) PageId {
	return e.db.NextPage(from, e.navigationMode)
}

func (e *Engine) GetPrevPageID(from PageId) PageId {
	return e.db.PrevPage(from, e.navigationMode)
}

// SetNavigationMode selects whether GetNextPageID/GetPrevPageID consult TOP
// metadata or fall back to the plain numeric sequence.
func (e *Engine) SetNavigationMode(mode NavigationMode) {
	e.navigationMode = mode
}

// GetNavigationState reports the currently selected navigation mode.
func (e *Engine) GetNavigationState() NavigationMode {
	return e.navigationMode
}

// GetPage returns the most recently rendered DecodedPage for the currently
// selected page id. It is never nil; before any page is restored it is an
// all-space page tagged with InvalidPageId.
func (e *Engine) GetPage() *DecodedPage {
	return e.pageData
}

// GetPageControlInfo reports the control bits of the currently displayed
// page's header, matching EngineImpl::getPageControlInfo.
func (e *Engine) GetPageControlInfo() uint8 {
	return e.pageData.ControlInfo
}

// IndexPageP830 reports the channel's M/8/30 initial page, if one has been
// received.
func (e *Engine) IndexPageP830() PageId {
	return e.db.IndexPageP830()
}

// LookupPage renders whichever page is cached under id without disturbing
// the currently selected display page, for a host previewing a page (e.g.
// a FLOF link target) before committing to it with SetCurrentPageID. It
// returns ErrCacheMiss if id is not resident in the cache.
func (e *Engine) LookupPage(id PageId) (*DecodedPage, error) {
	page := e.cache.Get(id)
	if page == nil || !page.IsValid() {
		return nil, ErrCacheMiss
	}
	return e.renderPage(page), nil
}

// LastHeaderPageID reports the page id of the most recently decoded header,
// which may differ from the currently displayed page: a host watching page
// 150 still has its magazine's other pages' headers pass through this
// Engine, and EngineImpl::headerDecoded fires header_ready() for those too
// so a clock/subcode display elsewhere in the UI keeps ticking.
func (e *Engine) LastHeaderPageID() PageId {
	return e.lastHeaderPageID
}

// SetNationalOptionOverride forces every subsequent render to use table
// instead of whatever national option bits the broadcast header carries,
// matching EngineImpl::setNationalOptionOverride. table is masked to its
// 3 significant bits.
func (e *Engine) SetNationalOptionOverride(table uint8) {
	e.nationalOptionOverride = int8(table & 0x07)
}

// ClearNationalOptionOverride reverts to following the broadcast national
// option bits.
func (e *Engine) ClearNationalOptionOverride() {
	e.nationalOptionOverride = -1
}

// effectiveNationalOption resolves broadcast against any host override.
func (e *Engine) effectiveNationalOption(broadcast uint8) uint8 {
	if e.nationalOptionOverride >= 0 {
		return uint8(e.nationalOptionOverride)
	}
	return broadcast
}

// DefaultExtendedCLUT is the level 2.5 extended colour table EngineImpl
// falls back to when a page carries no per-page colour enhancement
// segment of its own; copied from EngineImpl::getColors' literal default,
// since this decoder does not parse level 2.5 colour segments.
var DefaultExtendedCLUT = [16]uint32{
	0xFFFF0055, 0xFFFF7700, 0xFF00FF77, 0xFFFFFFBB,
	0xFF00CCAA, 0xFF550000, 0xFF665522, 0xFFCC7777,
	0xFF333333, 0xFFFF7777, 0xFF77FF77, 0xFFFFFF77,
	0xFF7777FF, 0xFFFF77FF, 0xFF77FFFF, 0xFFDDDDDD,
}

// GetScreenColorIndex/GetRowColorIndex/GetColors stand in for EngineImpl's
// level 2.5 colour accessors. Level 2.5 per-page colour segments are not
// parsed, so these always report the level 1 default rather than a value
// derived from the page itself.
func (e *Engine) GetScreenColorIndex() uint8       { return clutBlack }
func (e *Engine) GetRowColorIndex(row uint8) uint8 { return clutBlack }
func (e *Engine) GetColors() [16]uint32            { return DefaultExtendedCLUT }

// HeaderDecoded implements DecoderListener. It drops headers carrying any
// of the four control bits that mean "not a page worth surfacing right
// now" and, for a header belonging to the page currently on screen,
// refreshes just the header row so a running clock/subcode keeps ticking
// between full page redecodes. Grounded on EngineImpl::headerDecoded,
// simplified: the original additionally distinguishes a CLOCK_ONLY parser
// refresh mode from a FULL_PAGE one; this port always rebuilds the whole
// page on PageDecoded and only patches row 0 here.
func (e *Engine) HeaderDecoded(h Header) {
	if !h.PageID.IsValidDecimal() {
		return
	}
	const skipMask = ControlSubtitle | ControlNewsflash | ControlSuppressHeader | ControlInterruptedSequence
	if h.ControlInfo&skipMask != 0 {
		return
	}
	e.lastHeaderPageID = h.PageID
	if e.pageData.PageID.MagazinePage == h.PageID.MagazinePage {
		e.refreshHeaderRow(h)
	}
	if e.client != nil {
		e.client.HeaderReady()
	}
}

// PageDecoded implements DecoderListener: whenever a fully assembled page
// shares the displayed magazine page, it is worth re-checking the cache
// for something newer to show. Grounded on EngineImpl::pageDecoded.
func (e *Engine) PageDecoded(id PageId) {
	if id.MagazinePage == e.displayPageID.MagazinePage {
		e.tryRestoreCurrentPage()
	}
}

func (e *Engine) refreshHeaderRow(h Header) {
	nationalOption := e.effectiveNationalOption(h.NationalOptionTable())
	boxedMode := isBoxedMode(h.ControlInfo)
	var headerText [40]byte
	for i := 0; i < 8; i++ {
		headerText[i] = ' '
	}
	copy(headerText[8:], h.Text[:])
	e.pageData.Rows[0] = ParseRow(nationalOption, boxedMode, headerText)
	e.pageData.ControlInfo = h.ControlInfo
}

// unsetCurrentPage releases whatever page is currently displayed.
// useAsStale demotes it to stale (kept one generation longer so a
// mid-transition redraw has something to show) instead of dropping it
// outright. Grounded on EngineImpl::unsetCurrentPage.
func (e *Engine) unsetCurrentPage(useAsStale bool) {
	if e.stalePage != nil {
		e.cache.Release(e.stalePage.PageID())
		e.stalePage = nil
	}
	if useAsStale {
		e.stalePage = e.currentPage
		e.currentPage = nil
		return
	}
	if e.currentPage != nil {
		e.cache.Release(e.currentPage.PageID())
		e.currentPage = nil
	}
}

// tryRestoreCurrentPage looks up the cache for the currently selected page
// id and, if a valid page is found that differs from what is already
// shown, renders and publishes it. Grounded on
// EngineImpl::tryRestoreCurrentPage; the original additionally
// distinguishes single- from multi-subpage mismatches with a log warning.
// This port has no subpage-ordering index to prefer a "newest" subpage
// with, so an AnySubpage request resolves to whichever cached subpage
// FindAnySubpage happens to return.
func (e *Engine) tryRestoreCurrentPage() {
	var page *collectedPage
	if e.displayPageID.IsAnySubpage() {
		page = e.cache.FindAnySubpage(e.displayPageID.MagazinePage)
	} else {
		page = e.cache.Get(e.displayPageID)
		if page == nil {
			page = e.cache.FindAnySubpage(e.displayPageID.MagazinePage)
		}
	}
	if page == nil || !page.IsValid() || page == e.currentPage {
		return
	}

	e.unsetCurrentPage(false)
	e.currentPage = page
	e.pageData = e.renderPage(page)
	e.cache.SetLinkedPages(collectLinkedPages(page))

	if e.client != nil {
		e.client.HeaderReady()
		e.client.PageReady()
	}
}

// collectLinkedPages returns a page's FLOF editorial links, if it carries
// any, for the cache to retain alongside the numeric display window.
func collectLinkedPages(page *collectedPage) []PageId {
	if !page.hasEditorialLinks {
		return nil
	}
	links := make([]PageId, len(page.editorialLinks.Links))
	copy(links, page.editorialLinks.Links[:])
	return links
}

// isBoxedMode reports Parser::isBoxedMode: a page flagged NEWSFLASH or
// SUBTITLE is displayed over live video with everything outside an open
// box masked invisible.
func isBoxedMode(controlInfo uint8) bool {
	return controlInfo&(ControlNewsflash|ControlSubtitle) != 0
}

// renderPage builds a display-ready DecodedPage from a fully collected
// page: row 0 from its header text, rows 1-24 from whichever body rows
// were received, followed by a replay of its X/26 enhancement triplets.
// A row carrying a double-height cell suppresses its own drawing of the
// row beneath it (Parser::processDoubleHeightNextRow), since that row is
// the bottom half of the same enlarged glyphs.
func (e *Engine) renderPage(page *collectedPage) *DecodedPage {
	h := page.Header
	target := newDecodedPage(h.PageID, h.ControlInfo)
	nationalOption := e.effectiveNationalOption(h.NationalOptionTable())
	boxedMode := isBoxedMode(h.ControlInfo)

	var headerText [40]byte
	for i := 0; i < 8; i++ {
		headerText[i] = ' '
	}
	copy(headerText[8:], h.Text[:])
	target.Rows[0] = ParseRow(nationalOption, boxedMode, headerText)

	suppressNext := false
	for row := 1; row < rowCount; row++ {
		if suppressNext {
			target.Rows[row] = maskDoubleHeightRow(target.Rows[row-1])
			suppressNext = false
			continue
		}
		if buf, ok := page.rows[row]; ok {
			target.Rows[row] = ParseRow(nationalOption, boxedMode, buf)
		}
		suppressNext = rowHasDoubleHeight(target.Rows[row])
	}

	ApplyX26Triplets(nationalOption, page.triplets, target)
	return target
}

// rowHasDoubleHeight reports whether any cell in row was rendered under a
// double-height or double-size attribute.
func rowHasDoubleHeight(row DecodedRow) bool {
	for _, cell := range row.Cells {
		if cell.DoubleHeight {
			return true
		}
	}
	return false
}

// maskDoubleHeightRow builds the row drawn beneath a double-height row:
// blank cells keeping the source row's background and hidden state, with
// every other attribute cleared, matching
// Parser::processDoubleHeightNextRow's "clear then AND VALUE_HIDDEN" of
// the copied properties array.
func maskDoubleHeightRow(source DecodedRow) DecodedRow {
	var target DecodedRow
	for c := range target.Cells {
		target.Cells[c] = DecodedCell{
			Rune:       ' ',
			Foreground: clutWhite,
			Background: source.Cells[c].Background,
			Hidden:     source.Cells[c].Hidden,
		}
	}
	return target
}
