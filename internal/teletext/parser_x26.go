package teletext

// X/26 enhancement triplet modes this decoder acts on, ETSI EN 300 706
// §12.3.1/12.3.2. Grounded on ParserX26.cpp.
const (
	x26ModeSetActivePosition         uint8 = 0x04
	x26ModeAddressRow0               uint8 = 0x07
	x26ModeLineDrawingOrSmoothMosaic uint8 = 0x02
	x26ModeCharacterFromG2           uint8 = 0x0F
)

// x26Position is the active position X/26 triplets address and mutate as a
// page's enhancement data is replayed over its already-parsed rows,
// mirroring ParserX26.cpp's anonymous Position struct.
type x26Position struct {
	row uint8
	col uint8
}

// addressToRow converts a row-address triplet's 6-bit address field to a
// DecodedPage row index: "Address value 40 implies row 24 and values 41 to
// 63 indicate rows 1 to 23 inclusive" (ETSI EN 300 706 §12.3.2). Any other
// address value leaves the row unresolved at 0, matching addressToRow's
// fallback.
func addressToRow(address uint8) uint8 {
	const minRowAddress, maxRowAddress = 40, 63
	switch {
	case address == minRowAddress:
		return 24
	case address > minRowAddress && address <= maxRowAddress:
		return address - minRowAddress
	default:
		return 0
	}
}

// addressToColumn converts a column-address triplet's address field to a
// column index, ignoring values outside the 40-column row.
func addressToColumn(address uint8) uint8 {
	if address < colCount {
		return address
	}
	return 0
}

// dataFieldToColumn is addressToColumn's counterpart for SET_ACTIVE_POSITION
// triplets, which carry the column in the data field instead.
func dataFieldToColumn(data uint8) uint8 {
	if data < colCount {
		return data
	}
	return 0
}

// isCharWithDiacriticMode reports whether mode falls in the "character with
// diacritical mark" range, ETSI EN 300 706 table 32.
func isCharWithDiacriticMode(mode uint8) bool {
	return mode >= 0x10 && mode <= 0x1F
}

// ApplyX26Triplets replays the X/26 enhancement triplets collected for a
// page over its already row-parsed DecodedPage, substituting characters and
// tagging diacritical marks at the addressed positions. Grounded on
// Parser::processX26 and the free functions in ParserX26.cpp; G2 and G3
// smooth-mosaic substitution (modes 0x02 and 0x0F) are left as
// active-position updates only, since no G2/G3 character table was
// retrieved from the pack to ground a substitution against.
func ApplyX26Triplets(nationalOption uint8, tripletSets []Triplets, target *DecodedPage) {
	pos := x26Position{}
	for _, set := range tripletSets {
		if applyX26Packet(nationalOption, set, target, &pos) {
			break
		}
	}
}

// applyX26Packet processes one designated X/26 packet's 13 triplets,
// returning true once the termination marker is reached.
func applyX26Packet(nationalOption uint8, set Triplets, target *DecodedPage, pos *x26Position) bool {
	for i := 0; i < tripletCount; i++ {
		value := set.Value(i)
		if value == invalidTripletValue {
			break
		}

		t := DecodeTriplet(value)
		if t.IsTerminator() {
			return true
		}

		switch {
		case t.Mode == x26ModeSetActivePosition:
			pos.row = addressToRow(t.Address)
			pos.col = dataFieldToColumn(t.Data)

		case t.Mode == x26ModeAddressRow0:
			if t.Address == 0x1F {
				pos.row = 0
				pos.col = 0
			}

		case t.Mode == x26ModeLineDrawingOrSmoothMosaic:
			pos.col = addressToColumn(t.Address)

		case t.Mode == x26ModeCharacterFromG2:
			pos.col = addressToColumn(t.Address)

		case isCharWithDiacriticMode(t.Mode):
			pos.col = addressToColumn(t.Address)
			if t.Data >= 0x20 {
				var r rune
				if t.Mode == 0x10 && t.Data == 0x2A {
					// "No diacritical mark exists for mode description
					// value 10000. An unmodified G0 character is then
					// displayed unless the 7 bits of the data field have
					// the value 0101010 (2/A) when the symbol '@' shall be
					// displayed."
					r = '@'
				} else {
					r = decodeG0(nationalOption, t.Data)
				}
				cell := &target.Rows[pos.row].Cells[pos.col]
				cell.Rune = r
				cell.Diacritic = t.Mode & 0x0F
			}
		}
	}
	return false
}
