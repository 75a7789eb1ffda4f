package teletext

// PresentationLevel names the Teletext presentation levels (1, 1.5, 2.5,
// 3.5). Grounded on PresentationLevel.hpp. No Engine method takes or
// reports a PresentationLevel: rendering always applies a page's X/26
// triplets on top of the level 1 page and never applies DRCS or
// regional/level-2.5 colour tables.
type PresentationLevel int

const (
	Level1 PresentationLevel = iota
	Level1_5
	Level2_5
	Level3_5
)
