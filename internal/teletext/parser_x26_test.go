package teletext

import "testing"

func tripletValue(address, mode, data uint8) uint32 {
	return uint32(address&0x3F) | uint32(mode&0x1F)<<6 | uint32(data&0x7F)<<11
}

func terminatorValue() uint32 {
	return tripletValue(0x3F, 0x1F, 0)
}

func TestAddressToRow(t *testing.T) {
	cases := []struct {
		address uint8
		want    uint8
	}{
		{40, 24},
		{41, 1},
		{63, 23},
		{0, 0},
		{39, 0},
	}
	for _, c := range cases {
		if got := addressToRow(c.address); got != c.want {
			t.Fatalf("addressToRow(%d) = %d, want %d", c.address, got, c.want)
		}
	}
}

func TestApplyX26SetActivePosition(t *testing.T) {
	page := newDecodedPage(PageId{}, 0)
	set := Triplets{}
	set.Values[0] = tripletValue(41, x26ModeSetActivePosition, 5) // row 1, col 5
	set.Values[1] = tripletValue(5, 0x10, 0x41)                   // diacritic mode, address re-targets col 5, data 'A'
	for i := 2; i < tripletCount; i++ {
		set.Values[i] = invalidTripletValue
	}
	ApplyX26Triplets(0, []Triplets{set}, page)

	cell := page.Rows[1].Cells[5]
	if cell.Rune != 'A' {
		t.Fatalf("cell rune = %q, want 'A'", cell.Rune)
	}
	if cell.Diacritic != 0x00 {
		t.Fatalf("cell diacritic = %#x, want 0x00", cell.Diacritic)
	}
}

func TestApplyX26TerminatorStopsReplay(t *testing.T) {
	page := newDecodedPage(PageId{}, 0)
	setA := Triplets{}
	setA.Values[0] = terminatorValue()
	for i := 1; i < tripletCount; i++ {
		setA.Values[i] = invalidTripletValue
	}
	setB := Triplets{}
	setB.Values[0] = tripletValue(41, x26ModeSetActivePosition, 0)
	setB.Values[1] = tripletValue(0x10, 0x10, 0x42)
	for i := 2; i < tripletCount; i++ {
		setB.Values[i] = invalidTripletValue
	}

	ApplyX26Triplets(0, []Triplets{setA, setB}, page)

	if page.Rows[1].Cells[0].Rune != ' ' {
		t.Fatalf("second triplet set should not have been replayed after terminator")
	}
}

func TestApplyX26SpecialAtSignCase(t *testing.T) {
	page := newDecodedPage(PageId{}, 0)
	set := Triplets{}
	set.Values[0] = tripletValue(41, x26ModeSetActivePosition, 0)
	set.Values[1] = tripletValue(0x00, 0x10, 0x2A) // mode 0x10, data 0x2A -> '@'
	for i := 2; i < tripletCount; i++ {
		set.Values[i] = invalidTripletValue
	}
	ApplyX26Triplets(0, []Triplets{set}, page)

	if got := page.Rows[1].Cells[0].Rune; got != '@' {
		t.Fatalf("rune = %q, want '@'", got)
	}
}

func TestApplyX26AddressRow0Reset(t *testing.T) {
	page := newDecodedPage(PageId{}, 0)
	set := Triplets{}
	set.Values[0] = tripletValue(50, x26ModeSetActivePosition, 10)
	set.Values[1] = tripletValue(0x1F, x26ModeAddressRow0, 0)
	set.Values[2] = tripletValue(0x00, 0x10, 0x43)
	for i := 3; i < tripletCount; i++ {
		set.Values[i] = invalidTripletValue
	}
	ApplyX26Triplets(0, []Triplets{set}, page)

	if got := page.Rows[0].Cells[0].Rune; got != 'C' {
		t.Fatalf("rune = %q, want 'C' at row 0 col 0 after ADDRESS_ROW_0 reset", got)
	}
}
