package timing

// Kind tags an StcTime value the way the 33-bit PTS/STC split is carried
// through the decode pipelines: most comparisons only need the low 32 bits,
// but a value can be explicitly unavailable.
type Kind int

const (
	KindInvalid Kind = iota
	KindHigh32
	KindLow32
)

// StcTime is a tagged clock value. Arithmetic is modulo-2^32 on Ticks;
// callers compare two StcTime values via their Ticks field once both are
// known KindLow32 (or KindHigh32, which this decoder does not use beyond
// carrying the tag — PTS in PES headers is always resolved to its low 32
// bits before reaching the timing gate).
type StcTime struct {
	Kind  Kind
	Ticks Ticks
}

// Valid reports whether the value carries usable ticks.
func (s StcTime) Valid() bool {
	return s.Kind != KindInvalid
}

// Invalid is the zero-value sentinel for "no STC available".
var Invalid = StcTime{Kind: KindInvalid}
