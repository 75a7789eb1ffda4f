// Package diag provides the decode pipelines' logging collaborator: a
// handle passed into component constructors (never a package-level
// singleton, per this codebase's stance against static loggers at
// namespace scope) that rate-limits diagnostic output so a wedged or
// corrupt upstream feed cannot flood the host's log sink.
package diag

import (
	"log"

	"golang.org/x/time/rate"
)

// Level names a diagnostic severity, used both for formatting and as a
// rate-limit bucket key alongside the component name.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// SuppressionCounter receives one notification every time a message is
// dropped for having exceeded its bucket's rate limit. Implemented by
// metrics.Registry; kept as a narrow interface here so this package never
// imports the metrics package directly.
type SuppressionCounter interface {
	IncDiagSuppressed(component string, level string)
}

type bucketKey struct {
	component string
	level     Level
}

// Logger wraps a host-supplied *log.Logger with per-(component,level) rate
// limiting. A nil *log.Logger is legal: every call becomes a no-op, letting
// a host opt out of diagnostics entirely without nil checks at call sites.
type Logger struct {
	out        *log.Logger
	epochID    string
	rps        float64
	burst      int
	limiters   map[bucketKey]*rate.Limiter
	suppressed SuppressionCounter
}

// NewLogger builds a Logger that allows up to burst messages immediately
// per (component, level) bucket, refilling at rps messages/second
// thereafter. epochID tags every message for correlation across a
// multi-instance host; it is typically a UUID assigned at construction of
// the owning Database or Engine.
func NewLogger(out *log.Logger, epochID string, rps float64, burst int) *Logger {
	return &Logger{
		out:      out,
		epochID:  epochID,
		rps:      rps,
		burst:    burst,
		limiters: make(map[bucketKey]*rate.Limiter),
	}
}

// WithMetrics attaches a suppression counter; may be called once after
// construction. Nil is safe and leaves suppression uncounted.
func (l *Logger) WithMetrics(m SuppressionCounter) *Logger {
	if l == nil {
		return nil
	}
	l.suppressed = m
	return l
}

func (l *Logger) allow(component string, level Level) bool {
	if l == nil || l.out == nil {
		return false
	}
	key := bucketKey{component, level}
	lim, ok := l.limiters[key]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(l.rps), l.burst)
		l.limiters[key] = lim
	}
	if lim.Allow() {
		return true
	}
	if l.suppressed != nil {
		l.suppressed.IncDiagSuppressed(component, level.String())
	}
	return false
}

func (l *Logger) log(component string, level Level, format string, args ...any) {
	if !l.allow(component, level) {
		return
	}
	l.out.Printf("[%s] epoch=%s %s: "+format, append([]any{level, l.epochID, component}, args...)...)
}

// Infof logs at info level, subject to rate limiting.
func (l *Logger) Infof(component, format string, args ...any) { l.log(component, LevelInfo, format, args...) }

// Warnf logs at warn level, subject to rate limiting.
func (l *Logger) Warnf(component, format string, args ...any) { l.log(component, LevelWarn, format, args...) }

// Errorf logs at error level, subject to rate limiting.
func (l *Logger) Errorf(component, format string, args ...any) { l.log(component, LevelError, format, args...) }
