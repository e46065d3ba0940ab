package consistency

import (
	"context"
	"time"
)

// Coordinator keeps computed payroll runs honest against the attendance and
// leave ledgers they were derived from.
type Coordinator interface {
	// MarkStaleForDate flags any computed run covering date so it cannot be
	// approved until recomputed. A draft or paid run is left alone.
	MarkStaleForDate(ctx context.Context, date time.Time, reason string) error

	// EnsureApprovable fails when the run is stale or not yet computed.
	EnsureApprovable(ctx context.Context, runID string) error
}
