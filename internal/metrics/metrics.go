// Package metrics wires the decode pipelines' counters and gauges into a
// Prometheus registry. Decode packages depend only on the Registry
// interface defined here, not on client_golang directly, mirroring this
// codebase's preference for small collaborator interfaces over wide
// framework imports (see sdtprobe's ActiveStreamser for the same shape).
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Registry is the narrow surface both decode pipelines depend on.
type Registry interface {
	IncTimingGateOutcome(pipeline, outcome string)
	IncDVBSegment(segType, result string)
	IncDVBPageStateTransition(to string)
	SetDVBArenaBytesInUse(bytes int)
	IncDVBArenaAllocFailure()
	SetTeletextCachePagesInUse(n int)
	IncTeletextCacheEviction()
	IncTeletextHammingCorrection(kind, result string)
	IncDiagSuppressed(component, level string)
}

// PromRegistry is the Registry implementation backed by a real Prometheus
// registerer. Construct one per process (or per test) and pass it to
// dvbsub/teletext constructors; it is safe for concurrent use because the
// underlying prometheus collectors are, even though the decode core itself
// is single-threaded.
type PromRegistry struct {
	timingGateOutcomes    *prometheus.CounterVec
	dvbSegments           *prometheus.CounterVec
	dvbPageTransitions    *prometheus.CounterVec
	dvbArenaBytesInUse    prometheus.Gauge
	dvbArenaAllocFailures prometheus.Counter
	ttxCachePagesInUse    prometheus.Gauge
	ttxCacheEvictions     prometheus.Counter
	ttxHammingCorrections *prometheus.CounterVec
	diagSuppressed        *prometheus.CounterVec
}

// NewPromRegistry creates and registers all collectors against reg. Passing
// a fresh prometheus.NewRegistry() is recommended for tests; the default
// global registry is fine for a single-instance host process.
func NewPromRegistry(reg prometheus.Registerer) *PromRegistry {
	p := &PromRegistry{
		timingGateOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "subtitlecore_timing_gate_outcomes_total",
			Help: "PTS/STC timing gate decisions by pipeline and outcome.",
		}, []string{"pipeline", "outcome"}),
		dvbSegments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "subtitlecore_dvb_segments_total",
			Help: "DVB subtitle segments dispatched by type and result.",
		}, []string{"type", "result"}),
		dvbPageTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "subtitlecore_dvb_page_state_transitions_total",
			Help: "DVB page state machine transitions by destination state.",
		}, []string{"to"}),
		dvbArenaBytesInUse: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "subtitlecore_dvb_arena_bytes_in_use",
			Help: "Bytes currently handed out by the pixmap arena.",
		}),
		dvbArenaAllocFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "subtitlecore_dvb_arena_alloc_failures_total",
			Help: "Pixmap arena allocation requests that could not be satisfied.",
		}),
		ttxCachePagesInUse: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "subtitlecore_teletext_cache_pages_in_use",
			Help: "Teletext page cache slots currently checked out.",
		}),
		ttxCacheEvictions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "subtitlecore_teletext_cache_evictions_total",
			Help: "Teletext cache pages evicted for falling outside the needed window.",
		}),
		ttxHammingCorrections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "subtitlecore_teletext_hamming_corrections_total",
			Help: "Hamming-decoded fields by kind and correction result.",
		}, []string{"kind", "result"}),
		diagSuppressed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "subtitlecore_diag_suppressed_total",
			Help: "Diagnostic messages dropped by the rate limiter.",
		}, []string{"component", "level"}),
	}
	for _, c := range []prometheus.Collector{
		p.timingGateOutcomes, p.dvbSegments, p.dvbPageTransitions,
		p.dvbArenaBytesInUse, p.dvbArenaAllocFailures, p.ttxCachePagesInUse,
		p.ttxCacheEvictions, p.ttxHammingCorrections, p.diagSuppressed,
	} {
		_ = reg.Register(c) // duplicate registration from a shared global registry is not fatal here
	}
	return p
}

func (p *PromRegistry) IncTimingGateOutcome(pipeline, outcome string) {
	p.timingGateOutcomes.WithLabelValues(pipeline, outcome).Inc()
}
func (p *PromRegistry) IncDVBSegment(segType, result string) {
	p.dvbSegments.WithLabelValues(segType, result).Inc()
}
func (p *PromRegistry) IncDVBPageStateTransition(to string) {
	p.dvbPageTransitions.WithLabelValues(to).Inc()
}
func (p *PromRegistry) SetDVBArenaBytesInUse(bytes int) {
	p.dvbArenaBytesInUse.Set(float64(bytes))
}
func (p *PromRegistry) IncDVBArenaAllocFailure() {
	p.dvbArenaAllocFailures.Inc()
}
func (p *PromRegistry) SetTeletextCachePagesInUse(n int) {
	p.ttxCachePagesInUse.Set(float64(n))
}
func (p *PromRegistry) IncTeletextCacheEviction() {
	p.ttxCacheEvictions.Inc()
}
func (p *PromRegistry) IncTeletextHammingCorrection(kind, result string) {
	p.ttxHammingCorrections.WithLabelValues(kind, result).Inc()
}
func (p *PromRegistry) IncDiagSuppressed(component, level string) {
	p.diagSuppressed.WithLabelValues(component, level).Inc()
}

// Noop is a Registry that discards everything, for callers that construct
// decode pipelines without a metrics backend.
type Noop struct{}

func (Noop) IncTimingGateOutcome(string, string)        {}
func (Noop) IncDVBSegment(string, string)               {}
func (Noop) IncDVBPageStateTransition(string)           {}
func (Noop) SetDVBArenaBytesInUse(int)                  {}
func (Noop) IncDVBArenaAllocFailure()                   {}
func (Noop) SetTeletextCachePagesInUse(int)             {}
func (Noop) IncTeletextCacheEviction()                  {}
func (Noop) IncTeletextHammingCorrection(string, string) {}
func (Noop) IncDiagSuppressed(string, string)           {}
