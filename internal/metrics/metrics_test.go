package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestPromRegistryIncrementsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPromRegistry(reg)

	p.IncTimingGateOutcome("dvb", "process")
	p.IncDVBSegment("PCS", "ok")
	p.IncDVBPageStateTransition("displayed")
	p.SetDVBArenaBytesInUse(4096)
	p.IncDVBArenaAllocFailure()
	p.SetTeletextCachePagesInUse(3)
	p.IncTeletextCacheEviction()
	p.IncTeletextHammingCorrection("hamming8_4", "corrected")
	p.IncDiagSuppressed("parser", "WARN")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(families) != 9 {
		t.Fatalf("expected 9 registered families, got %d", len(families))
	}
}

func TestNoopRegistrySatisfiesInterface(t *testing.T) {
	var r Registry = Noop{}
	r.IncTimingGateOutcome("dvb", "process")
	r.IncDVBSegment("PCS", "ok")
	r.IncDVBPageStateTransition("displayed")
	r.SetDVBArenaBytesInUse(0)
	r.IncDVBArenaAllocFailure()
	r.SetTeletextCachePagesInUse(0)
	r.IncTeletextCacheEviction()
	r.IncTeletextHammingCorrection("hamming8_4", "corrected")
	r.IncDiagSuppressed("parser", "WARN")
}

func TestPromRegistryGaugeValue(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPromRegistry(reg)
	p.SetDVBArenaBytesInUse(12345)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var found *dto.MetricFamily
	for _, f := range families {
		if f.GetName() == "subtitlecore_dvb_arena_bytes_in_use" {
			found = f
		}
	}
	if found == nil {
		t.Fatal("gauge family not found")
	}
	if got := found.Metric[0].GetGauge().GetValue(); got != 12345 {
		t.Fatalf("expected gauge 12345, got %v", got)
	}
}
