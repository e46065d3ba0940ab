package payroll

import "context"

// Service computes and transitions payroll runs.
type Service interface {
	// ComputeRun aggregates one month of attendance and approved leave into
	// per-employee entries. recompute is honored only while the run is
	// draft or computed; each employee is its own transaction.
	ComputeRun(ctx context.Context, req ComputeRunRequest) (Run, error)

	// RequestApproval submits the run to the approval workflow engine.
	RequestApproval(ctx context.Context, runID string, approverIDs []string) (Run, error)

	// MarkPaid finalizes an approved run.
	MarkPaid(ctx context.Context, runID string) (Run, error)

	GetRun(ctx context.Context, id string) (Run, error)
	ListRuns(ctx context.Context, year *int) ([]Run, error)
	ListEntries(ctx context.Context, runID string) ([]Entry, error)

	// GetEntry serves the document-rendering collaborator.
	GetEntry(ctx context.Context, id string) (Entry, error)
}
