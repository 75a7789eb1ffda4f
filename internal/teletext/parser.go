package teletext

// Spacing attribute control codes, ETSI EN 300 706 table 26. Values 0x00-0x07
// and 0x10-0x17 double as G0/G1 foreground colour selectors depending on
// whether mosaic mode is active; the rest select display attributes.
const (
	ctrlAlphaBlack    byte = 0x00
	ctrlAlphaRed      byte = 0x01
	ctrlAlphaGreen    byte = 0x02
	ctrlAlphaYellow   byte = 0x03
	ctrlAlphaBlue     byte = 0x04
	ctrlAlphaMagenta  byte = 0x05
	ctrlAlphaCyan     byte = 0x06
	ctrlAlphaWhite    byte = 0x07
	ctrlFlash         byte = 0x08
	ctrlSteady        byte = 0x09
	ctrlEndBox        byte = 0x0A
	ctrlStartBox      byte = 0x0B
	ctrlNormalHeight  byte = 0x0C
	ctrlDoubleHeight  byte = 0x0D
	ctrlDoubleWidth   byte = 0x0E
	ctrlDoubleSize    byte = 0x0F
	ctrlMosaicBlack   byte = 0x10
	ctrlMosaicRed     byte = 0x11
	ctrlMosaicGreen   byte = 0x12
	ctrlMosaicYellow  byte = 0x13
	ctrlMosaicBlue    byte = 0x14
	ctrlMosaicMagenta byte = 0x15
	ctrlMosaicCyan    byte = 0x16
	ctrlMosaicWhite   byte = 0x17
	ctrlConcealDisplay byte = 0x18
	ctrlContiguousMosaic byte = 0x19
	ctrlSeparatedMosaic byte = 0x1A
	ctrlBlackBackground byte = 0x1C
	ctrlNewBackground   byte = 0x1D
	ctrlHoldMosaic      byte = 0x1E
	ctrlReleaseMosaic   byte = 0x1F
)

// isSetAt reports whether a control code takes effect at the cell it
// occupies (true) or only starting the next cell, with the control code's
// own cell rendered under the prior attribute state (false). Colour
// selection (alpha and mosaic) and the size codes are set-after; flash,
// box, conceal, mosaic shape, background and hold are set-at.
func isSetAt(b byte) bool {
	switch {
	case b <= ctrlAlphaWhite:
		return false
	case b == ctrlFlash, b == ctrlSteady, b == ctrlEndBox, b == ctrlStartBox:
		return true
	case b >= ctrlNormalHeight && b <= ctrlDoubleSize:
		return false
	case b >= ctrlMosaicBlack && b <= ctrlMosaicWhite:
		return false
	case b == ctrlConcealDisplay, b == ctrlContiguousMosaic, b == ctrlSeparatedMosaic,
		b == ctrlBlackBackground, b == ctrlNewBackground, b == ctrlHoldMosaic:
		return true
	default:
		return false
	}
}

// rowAttrState tracks the running spacing-attribute state the row parser
// carries from cell to cell, reset at the start of every row.
type rowAttrState struct {
	foreground uint8
	background uint8
	mosaic     bool
	separated  bool
	held       bool
	heldGlyph  rune
	doubleHeight bool
	doubleWidth  bool
	flash        bool
	conceal      bool
	boxOpen      bool
}

func newRowAttrState() rowAttrState {
	return rowAttrState{foreground: clutWhite, background: clutBlack, heldGlyph: ' '}
}

// ParseRow decodes 40 odd-parity-stripped display bytes into a DecodedRow,
// applying the set-at/set-after spacing attribute rules and the held-mosaic
// carry-over behavior of ETSI EN 300 706 §12.2. Grounded on the control-byte
// semantics Parser.cpp implements; this decoder's row state machine is
// expressed directly over DecodedCell rather than ParserRowContext's
// mutable cursor object. boxedMode is the page header's NEWSFLASH/SUBTITLE
// control bits (Parser::isBoxedMode): when set, every cell outside an open
// box is forced to a hidden space, matching
// ParserRowContext::storeCharacter's "no matter if mosaic, shall be
// invisible" handling.
func ParseRow(nationalOption uint8, boxedMode bool, text [40]byte) DecodedRow {
	var row DecodedRow
	state := newRowAttrState()

	for col := 0; col < colCount; col++ {
		b := text[col] & 0x7F

		if b < 0x20 {
			if isSetAt(b) {
				applyControl(&state, b)
				row.Cells[col] = renderCell(state, boxedMode, ' ')
			} else {
				row.Cells[col] = renderCell(state, boxedMode, ' ')
				applyControl(&state, b)
			}
			continue
		}

		var r rune
		if state.mosaic {
			r = decodeG1(b, state.separated)
			state.heldGlyph = r
		} else {
			r = decodeG0(nationalOption, b)
		}
		row.Cells[col] = renderCell(state, boxedMode, r)
	}

	return row
}

func applyControl(state *rowAttrState, b byte) {
	switch {
	case b <= ctrlAlphaWhite:
		state.foreground = colourForControl(b)
		state.mosaic = false
		state.heldGlyph = ' '
	case b >= ctrlMosaicBlack && b <= ctrlMosaicWhite:
		state.foreground = colourForControl(b - ctrlMosaicBlack)
		state.mosaic = true
	case b == ctrlFlash:
		state.flash = true
	case b == ctrlSteady:
		state.flash = false
	case b == ctrlEndBox:
		state.boxOpen = false
	case b == ctrlStartBox:
		state.boxOpen = true
	case b == ctrlNormalHeight:
		state.doubleHeight = false
		state.doubleWidth = false
	case b == ctrlDoubleHeight:
		state.doubleHeight = true
	case b == ctrlDoubleWidth:
		state.doubleWidth = true
	case b == ctrlDoubleSize:
		state.doubleHeight = true
		state.doubleWidth = true
	case b == ctrlConcealDisplay:
		state.conceal = true
	case b == ctrlContiguousMosaic:
		state.separated = false
	case b == ctrlSeparatedMosaic:
		state.separated = true
	case b == ctrlBlackBackground:
		state.background = clutBlack
	case b == ctrlNewBackground:
		state.background = state.foreground
	case b == ctrlHoldMosaic:
		state.held = true
	case b == ctrlReleaseMosaic:
		state.held = false
	}
}

func colourForControl(b byte) uint8 {
	return uint8(b)
}

func renderCell(state rowAttrState, boxedMode bool, r rune) DecodedCell {
	if state.mosaic && r == ' ' && state.held {
		r = state.heldGlyph
	}
	hidden := boxedMode && !state.boxOpen
	if hidden {
		r = ' '
	}
	return DecodedCell{
		Rune:            r,
		Foreground:      state.foreground,
		Background:      state.background,
		DoubleHeight:    state.doubleHeight,
		DoubleWidth:     state.doubleWidth,
		Flash:           state.flash,
		Conceal:         state.conceal,
		BoxOpen:         state.boxOpen,
		Held:            state.held,
		Mosaic:          state.mosaic,
		MosaicSeparated: state.separated,
		Hidden:          hidden,
	}
}
