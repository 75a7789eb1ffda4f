package teletext

// DecodedPage is the fully decoded, display-ready output of one Teletext
// page: 25 rows (row 0 is the header) of 40 character cells each, grounded
// on DecodedPage.hpp's row/column grid and extended with the per-cell
// attribute state a renderer needs (colours, box/mosaic/conceal flags)
// since this decoder, unlike the original's subttxrend-bound renderer, must
// hand a self-contained contract to an arbitrary host.
type DecodedPage struct {
	PageID      PageId
	ControlInfo uint8
	Rows        [rowCount]DecodedRow
}

const (
	rowCount = 25
	colCount = 40
)

// DecodedRow is one displayable row of a DecodedPage.
type DecodedRow struct {
	Cells [colCount]DecodedCell
}

// DecodedCell is one character cell after set-at/set-after attribute
// resolution and charset mapping.
type DecodedCell struct {
	Rune            rune
	Foreground      uint8
	Background      uint8
	DoubleHeight    bool
	DoubleWidth     bool
	Flash           bool
	Conceal         bool
	BoxOpen         bool
	Held            bool
	Mosaic          bool
	MosaicSeparated bool
	Hidden          bool
	Diacritic       uint8
}

func newDecodedPage(pageID PageId, controlInfo uint8) *DecodedPage {
	p := &DecodedPage{PageID: pageID, ControlInfo: controlInfo}
	for r := range p.Rows {
		for c := range p.Rows[r].Cells {
			p.Rows[r].Cells[c] = defaultCell()
		}
	}
	return p
}

func defaultCell() DecodedCell {
	return DecodedCell{Rune: ' ', Foreground: clutWhite, Background: clutBlack}
}

// Standard Teletext CLUT indices, ETSI EN 300 706 §12.2.
const (
	clutBlack uint8 = iota
	clutRed
	clutGreen
	clutYellow
	clutBlue
	clutMagenta
	clutCyan
	clutWhite
)
