package dvbsub

import "errors"

// Sentinel errors surfaced by the segment dispatcher. Every parse failure
// wraps one of these via fmt.Errorf("%w: ...") so callers can errors.Is
// against the kind without string matching.
var (
	// ErrInvalidSegmentField covers reserved enum values, out-of-range
	// fields, and conflicting-attribute id reuse within one epoch.
	ErrInvalidSegmentField = errors.New("dvbsub: invalid segment field")

	// ErrResourceExhausted reports that a region could not be created,
	// e.g. because the region pool is full or the pixmap arena cannot
	// satisfy the allocation. The number of CLUTs per epoch is not
	// limited, and a full object-instance pool is not reported through it.
	ErrResourceExhausted = errors.New("dvbsub: resource exhausted")
)
