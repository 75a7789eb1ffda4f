// Package timing implements the PTS/STC comparison shared by the DVB
// subtitle and Teletext pipelines: every PES packet is timestamped with a
// 33-bit PTS, compared against the host's system time clock, and either
// processed now, held for later, or dropped as stale.
package timing

// Ticks are 45 kHz units — half the MPEG 90 kHz system clock, matching the
// decoder's internal time base. Arithmetic on Ticks wraps modulo 2^32.
type Ticks uint32

const (
	// TSMin is the PROCESS window: 75 ms of PTS lead time is treated as
	// "due now" rather than "wait".
	TSMin Ticks = 75 * 45
	// TSMax bounds how far into the future a packet may be held before it
	// is dropped instead of waited on.
	TSMax Ticks = 30 * 45000
	// LateMax is how far in the past a PTS may be and still be processed,
	// to tolerate minor STC jitter.
	LateMax Ticks = 500 * 45
)

// Outcome is the timing gate's verdict for one packet.
type Outcome int

const (
	Process Outcome = iota
	Wait
	Drop
)

func (o Outcome) String() string {
	switch o {
	case Process:
		return "PROCESS"
	case Wait:
		return "WAIT"
	default:
		return "DROP"
	}
}

// Gate decides whether a PTS-stamped packet should be processed against the
// current STC. It has no state of its own beyond its configuration; callers
// own the PES buffer and the retry loop.
type Gate struct {
	// IgnorePTS disables gating entirely: every packet becomes Process.
	IgnorePTS bool
}

// Evaluate applies the 32-bit signed-delta rule from ETSI EN 300 743/706
// (decoder profile): diff = pts - stc computed as a signed 32-bit value.
//   - diff in [0, TSMin]            -> Process
//   - diff in (TSMin, TSMax]        -> Wait
//   - diff < 0 and |diff| <= LateMax -> Process (late tolerance)
//   - otherwise                     -> Drop
//
// hasPTS false (a packet carrying no timestamp) always yields Process.
func (g Gate) Evaluate(pts, stc Ticks, hasPTS bool) Outcome {
	if g.IgnorePTS || !hasPTS {
		return Process
	}
	diff := int32(pts - stc)
	switch {
	case diff >= 0 && diff <= int32(TSMin):
		return Process
	case diff > int32(TSMin) && diff <= int32(TSMax):
		return Wait
	case diff < 0 && -diff <= int32(LateMax):
		return Process
	default:
		return Drop
	}
}
