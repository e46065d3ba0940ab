package consistency

import (
	"context"
	"log/slog"
	"time"

	"github.com/kenzahr/workforce-ledger-go/internal/domain/payroll"
)

// CoordinatorImpl watches for source-ledger changes that land inside an
// already-computed pay period and flags the run instead of silently letting
// its entries drift from the facts.
type CoordinatorImpl struct {
	runs   payroll.Repository
	logger *slog.Logger
}

func NewCoordinator(runs payroll.Repository, logger *slog.Logger) *CoordinatorImpl {
	return &CoordinatorImpl{runs: runs, logger: logger}
}

// MarkStaleForDate implements consistency.Coordinator. Draft runs will pick
// the change up at computation; paid runs are settled history and stay
// untouched.
func (c *CoordinatorImpl) MarkStaleForDate(ctx context.Context, date time.Time, reason string) error {
	run, err := c.runs.GetRunByPeriod(ctx, int(date.Month()), date.Year())
	if err != nil {
		return err
	}
	if run == nil {
		return nil
	}

	switch run.Status {
	case payroll.RunStatusComputed, payroll.RunStatusApproved:
	default:
		return nil
	}

	if _, err := c.runs.MarkStale(ctx, run.ID, reason); err != nil {
		return err
	}

	c.logger.WarnContext(ctx, "payroll run marked stale",
		slog.String("run_id", run.ID),
		slog.String("reason", reason))

	return nil
}

// EnsureApprovable implements consistency.Coordinator.
func (c *CoordinatorImpl) EnsureApprovable(ctx context.Context, runID string) error {
	run, err := c.runs.GetRunByID(ctx, runID)
	if err != nil {
		return err
	}
	if run.Stale {
		return payroll.ErrRunStale
	}
	if run.Status != payroll.RunStatusComputed {
		return payroll.ErrRunNotComputed
	}
	return nil
}
