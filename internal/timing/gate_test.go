package timing

import "testing"

func TestGateScenarios(t *testing.T) {
	// Scenario 3 from the spec's testable properties, using 45kHz ticks.
	g := Gate{}
	cases := []struct {
		name     string
		pts, stc Ticks
		want     Outcome
	}{
		{"on time", 100_000, 100_000, Process},
		{"future within wait band", 100_000, 90_000, Wait},
		{"late within tolerance", 100_000, 100_500, Process},
		{"far future drops", 2_000_000, 0, Drop},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := g.Evaluate(c.pts, c.stc, true)
			if got != c.want {
				t.Fatalf("Evaluate(pts=%d, stc=%d) = %v, want %v", c.pts, c.stc, got, c.want)
			}
		})
	}
}

func TestGateBoundaries(t *testing.T) {
	g := Gate{}
	if got := g.Evaluate(TSMin, 0, true); got != Process {
		t.Fatalf("exactly TSMin should Process, got %v", got)
	}
	if got := g.Evaluate(TSMin+1, 0, true); got != Wait {
		t.Fatalf("TSMin+1 should Wait, got %v", got)
	}
	if got := g.Evaluate(TSMax, 0, true); got != Wait {
		t.Fatalf("exactly TSMax should Wait, got %v", got)
	}
	if got := g.Evaluate(TSMax+1, 0, true); got != Drop {
		t.Fatalf("TSMax+1 should Drop, got %v", got)
	}
	if got := g.Evaluate(0, Ticks(LateMax), true); got != Process {
		t.Fatalf("exactly LateMax in the past should Process, got %v", got)
	}
	if got := g.Evaluate(0, Ticks(LateMax)+1, true); got != Drop {
		t.Fatalf("LateMax+1 in the past should Drop, got %v", got)
	}
}

func TestGateIgnoresPTSWhenDisabledOrAbsent(t *testing.T) {
	g := Gate{IgnorePTS: true}
	if got := g.Evaluate(0, 5_000_000, true); got != Process {
		t.Fatalf("ignorePts must force Process, got %v", got)
	}
	g2 := Gate{}
	if got := g2.Evaluate(0, 5_000_000, false); got != Process {
		t.Fatalf("no PTS must force Process, got %v", got)
	}
}

func TestGateWrapAround(t *testing.T) {
	// STC near the top of the 32-bit range, PTS having wrapped just past 0:
	// the signed-delta rule must see this as "slightly in the future", not
	// as a huge negative/positive jump.
	g := Gate{}
	stc := Ticks(0xFFFFFFFF - 100)
	pts := Ticks(50) // wrapped
	got := g.Evaluate(pts, stc, true)
	if got != Process {
		t.Fatalf("wraparound near-future should Process, got %v", got)
	}
}
