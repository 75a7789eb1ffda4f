package teletext

import "testing"

func TestDatabaseTopIndexRoundTrip(t *testing.T) {
	cases := []uint16{0x100, 0x112, 0x299, 0x899}
	for _, mp := range cases {
		idx := topIndex(mp)
		if idx < 0 {
			t.Fatalf("topIndex(%#x) < 0, want a valid index", mp)
		}
		if got := indexToHexPage(idx); got != mp {
			t.Fatalf("indexToHexPage(topIndex(%#x)) = %#x, want %#x", mp, got, mp)
		}
	}
}

func TestDatabaseTopIndexRejectsNonDecimal(t *testing.T) {
	if idx := topIndex(0x1A0); idx >= 0 && idx < bttEntryCount {
		t.Fatalf("topIndex(0x1A0) = %d, want an out-of-range index for a non-decimal page", idx)
	}
}

func TestDatabaseBttPageTypeDefaultsToUnused(t *testing.T) {
	db := NewDatabase()
	if got := db.BttPageTypeFor(0x100); got != BttUnused {
		t.Fatalf("BttPageTypeFor on a fresh database = %v, want BttUnused", got)
	}
	db.SetBttPageType(0x100, BttNormalS)
	if got := db.BttPageTypeFor(0x100); got != BttNormalS {
		t.Fatalf("BttPageTypeFor after Set = %v, want BttNormalS", got)
	}
}

func TestDatabaseNextPrevPageFallsBackToNumeric(t *testing.T) {
	db := NewDatabase()
	from := PageId{MagazinePage: 0x199, Subpage: AnySubpage}
	if got := db.NextPage(from, NavigationNumeric); got.MagazinePage != 0x200 {
		t.Fatalf("NextPage fallback = %#x, want 0x200", got.MagazinePage)
	}
	if got := db.NextPage(from, NavigationTop); got.MagazinePage != 0x200 {
		t.Fatalf("NextPage in NavigationTop mode without TOP data should still fall back to numeric, got %#x", got.MagazinePage)
	}
}

func TestDatabaseNextPageUsesTopLinkWhenPresent(t *testing.T) {
	db := NewDatabase()
	meta := db.TopMetadataFor(0x100)
	if meta == nil {
		t.Fatalf("expected a TOP metadata slot for 0x100")
	}
	meta.NextPage = 0x305

	from := PageId{MagazinePage: 0x100, Subpage: AnySubpage}
	if got := db.NextPage(from, NavigationTop); got.MagazinePage != 0x305 {
		t.Fatalf("NextPage in NavigationTop mode = %#x, want the TOP link 0x305", got.MagazinePage)
	}
	if got := db.NextPage(from, NavigationNumeric); got.MagazinePage != 0x101 {
		t.Fatalf("NextPage in NavigationNumeric mode should ignore the TOP link, got %#x", got.MagazinePage)
	}
}

func TestDatabaseResetClearsIndexPageAndTop(t *testing.T) {
	db := NewDatabase()
	db.SetIndexPageP830(PageId{MagazinePage: 0x100, Subpage: 0})
	db.SetBttPageType(0x100, BttNormalS)
	db.Reset()

	if got := db.IndexPageP830(); got != InvalidPageId {
		t.Fatalf("IndexPageP830 after Reset = %+v, want InvalidPageId", got)
	}
	if got := db.BttPageTypeFor(0x100); got != BttUnused {
		t.Fatalf("BttPageTypeFor after Reset = %v, want BttUnused", got)
	}
}
