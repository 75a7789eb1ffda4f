package teletext

// NavigationMode selects which adjacency table Database.NextPage/PrevPage
// consults, ETSI EN 300 706 Annex E (TOP) vs the plain numeric fallback
// used when no TOP/FLOF metadata was ever received.
type NavigationMode int

const (
	NavigationNumeric NavigationMode = iota
	NavigationTop
)

const (
	magazineCount = 8
	pageCount     = magazineCount * 0x100
)

// topMetadata is one magazine page's worth of TOP navigation links, built
// by the metadata processor from the BTT adjacency grids, grounded on
// Database::TopMetadata.
type topMetadata struct {
	NextPage      uint16
	PrevPage      uint16
	NextGroupPage uint16
	NextBlockPage uint16
}

func (m *topMetadata) reset() {
	m.NextPage = InvalidMagazinePage
	m.PrevPage = InvalidMagazinePage
	m.NextGroupPage = InvalidMagazinePage
	m.NextBlockPage = InvalidMagazinePage
}

// Database is the shared state a Decoder, Cache and MetadataProcessor all
// read and update: TOP navigation metadata for every one of the 800
// possible magazine pages, BTT page types, and the channel's P8/30 index
// page. Grounded on Database.hpp.
type Database struct {
	indexPageP830 PageId
	top           [pageCount]topMetadata
	bttPageTypes  [pageCount]BttPageType
}

// NewDatabase builds an empty Database with every TOP slot reset to
// invalid, matching Database::reset.
func NewDatabase() *Database {
	d := &Database{indexPageP830: InvalidPageId}
	d.Reset()
	return d
}

func (d *Database) Reset() {
	d.indexPageP830 = InvalidPageId
	d.ResetTopMetadata()
}

func (d *Database) ResetTopMetadata() {
	for i := range d.top {
		d.top[i].reset()
		d.bttPageTypes[i] = BttUnused
	}
}

func topIndex(magazinePage uint16) int {
	id := PageId{MagazinePage: magazinePage, Subpage: AnySubpage}
	if !id.IsValidDecimal() {
		return -1
	}
	return int(id.DecimalMagazinePage()) - 100
}

func (d *Database) TopMetadataFor(magazinePage uint16) *topMetadata {
	idx := topIndex(magazinePage)
	if idx < 0 || idx >= len(d.top) {
		return nil
	}
	return &d.top[idx]
}

func (d *Database) SetBttPageType(magazinePage uint16, t BttPageType) {
	idx := topIndex(magazinePage)
	if idx < 0 || idx >= len(d.bttPageTypes) {
		return
	}
	d.bttPageTypes[idx] = t
}

func (d *Database) BttPageTypeFor(magazinePage uint16) BttPageType {
	idx := topIndex(magazinePage)
	if idx < 0 || idx >= len(d.bttPageTypes) {
		return BttUnused
	}
	return d.bttPageTypes[idx]
}

func (d *Database) SetIndexPageP830(id PageId) { d.indexPageP830 = id }
func (d *Database) IndexPageP830() PageId      { return d.indexPageP830 }

// NextPage returns the next page to navigate to from inputPage. In
// NavigationTop mode it follows the TOP metadata link when one was
// received; it falls back to the plain numeric successor otherwise, so a
// host is never left without a next page just because TOP data hasn't
// arrived yet.
func (d *Database) NextPage(inputPage PageId, mode NavigationMode) PageId {
	if mode == NavigationTop {
		if meta := d.TopMetadataFor(inputPage.MagazinePage); meta != nil && meta.NextPage != InvalidMagazinePage {
			return PageId{MagazinePage: meta.NextPage, Subpage: AnySubpage}
		}
	}
	mp := NextMagazinePage(inputPage.MagazinePage)
	if mp == InvalidMagazinePage {
		return InvalidPageId
	}
	return PageId{MagazinePage: mp, Subpage: AnySubpage}
}

// PrevPage is NextPage's inverse.
func (d *Database) PrevPage(inputPage PageId, mode NavigationMode) PageId {
	if mode == NavigationTop {
		if meta := d.TopMetadataFor(inputPage.MagazinePage); meta != nil && meta.PrevPage != InvalidMagazinePage {
			return PageId{MagazinePage: meta.PrevPage, Subpage: AnySubpage}
		}
	}
	mp := PrevMagazinePage(inputPage.MagazinePage)
	if mp == InvalidMagazinePage {
		return InvalidPageId
	}
	return PageId{MagazinePage: mp, Subpage: AnySubpage}
}
