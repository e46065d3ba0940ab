package payroll

import "context"

type Repository interface {
	// CreateRun inserts a draft run; a duplicate (month, year) surfaces the
	// store's conflict error.
	CreateRun(ctx context.Context, run Run) (Run, error)

	GetRunByID(ctx context.Context, id string) (Run, error)
	GetRunByPeriod(ctx context.Context, month, year int) (*Run, error)
	ListRuns(ctx context.Context, year *int) ([]Run, error)

	// UpdateRunStatus transitions the run and bumps its version.
	UpdateRunStatus(ctx context.Context, id string, status RunStatus) (Run, error)

	// MarkStale sets the stale flag and appends an audit reason.
	MarkStale(ctx context.Context, id string, reason string) (Run, error)

	// ClearStale resets the flag after a recomputation.
	ClearStale(ctx context.Context, id string) (Run, error)

	// SetWarnings replaces the run's computation warnings.
	SetWarnings(ctx context.Context, id string, warnings []string) error

	// SetApprovalID links the run to its gating workflow.
	SetApprovalID(ctx context.Context, id string, approvalID string) error

	// CreateEntry writes one employee's result at the given revision.
	CreateEntry(ctx context.Context, entry Entry) (Entry, error)

	// SupersedeEntries marks the run's entries below the given revision
	// superseded so the new revision replaces them while the old ones
	// remain as evidence.
	SupersedeEntries(ctx context.Context, runID string, belowRevision int) error

	GetEntryByID(ctx context.Context, id string) (Entry, error)
	ListEntries(ctx context.Context, runID string, includeSuperseded bool) ([]Entry, error)

	// CurrentRevision returns the highest entry revision for the run, 0
	// when no entries exist.
	CurrentRevision(ctx context.Context, runID string) (int, error)
}
