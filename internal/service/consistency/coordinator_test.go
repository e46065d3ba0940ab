package consistency

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/kenzahr/workforce-ledger-go/internal/domain/payroll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRunRepo serves a single run; only the methods the coordinator touches
// are implemented.
type stubRunRepo struct {
	payroll.Repository
	run     *payroll.Run
	staleAt []string
}

func (r *stubRunRepo) GetRunByPeriod(ctx context.Context, month, year int) (*payroll.Run, error) {
	if r.run == nil || r.run.Month != month || r.run.Year != year {
		return nil, nil
	}
	out := *r.run
	return &out, nil
}

func (r *stubRunRepo) GetRunByID(ctx context.Context, id string) (payroll.Run, error) {
	if r.run == nil || r.run.ID != id {
		return payroll.Run{}, payroll.ErrRunNotFound
	}
	return *r.run, nil
}

func (r *stubRunRepo) MarkStale(ctx context.Context, id string, reason string) (payroll.Run, error) {
	if r.run == nil || r.run.ID != id {
		return payroll.Run{}, payroll.ErrRunNotFound
	}
	r.run.Stale = true
	r.run.StaleReasons = append(r.run.StaleReasons, reason)
	r.staleAt = append(r.staleAt, reason)
	return *r.run, nil
}

func juneRun(status payroll.RunStatus) *payroll.Run {
	return &payroll.Run{ID: "run-1", Month: 6, Year: 2025, Status: status}
}

func june10() time.Time {
	return time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)
}

func TestMarkStaleFlagsComputedRun(t *testing.T) {
	t.Parallel()

	repo := &stubRunRepo{run: juneRun(payroll.RunStatusComputed)}
	c := NewCoordinator(repo, slog.New(slog.DiscardHandler))

	err := c.MarkStaleForDate(context.Background(), june10(), "attendance corrected for 2025-06-10")
	require.NoError(t, err)
	assert.True(t, repo.run.Stale)
	assert.Equal(t, []string{"attendance corrected for 2025-06-10"}, repo.run.StaleReasons)
}

func TestMarkStaleFlagsApprovedRun(t *testing.T) {
	t.Parallel()

	repo := &stubRunRepo{run: juneRun(payroll.RunStatusApproved)}
	c := NewCoordinator(repo, slog.New(slog.DiscardHandler))

	err := c.MarkStaleForDate(context.Background(), june10(), "leave approved for 2025-06-12")
	require.NoError(t, err)
	assert.True(t, repo.run.Stale)
}

func TestMarkStaleSkipsDraftRun(t *testing.T) {
	t.Parallel()

	repo := &stubRunRepo{run: juneRun(payroll.RunStatusDraft)}
	c := NewCoordinator(repo, slog.New(slog.DiscardHandler))

	err := c.MarkStaleForDate(context.Background(), june10(), "attendance corrected")
	require.NoError(t, err)
	assert.False(t, repo.run.Stale)
	assert.Empty(t, repo.staleAt)
}

func TestMarkStaleSkipsPaidRun(t *testing.T) {
	t.Parallel()

	repo := &stubRunRepo{run: juneRun(payroll.RunStatusPaid)}
	c := NewCoordinator(repo, slog.New(slog.DiscardHandler))

	err := c.MarkStaleForDate(context.Background(), june10(), "attendance corrected")
	require.NoError(t, err)
	assert.False(t, repo.run.Stale)
}

func TestMarkStaleIgnoresPeriodsWithoutRun(t *testing.T) {
	t.Parallel()

	repo := &stubRunRepo{}
	c := NewCoordinator(repo, slog.New(slog.DiscardHandler))

	err := c.MarkStaleForDate(context.Background(), june10(), "attendance corrected")
	require.NoError(t, err)
	assert.Empty(t, repo.staleAt)
}

func TestEnsureApprovable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		run     *payroll.Run
		wantErr error
	}{
		{
			name: "computed run passes",
			run:  juneRun(payroll.RunStatusComputed),
		},
		{
			name: "stale run rejected",
			run: &payroll.Run{
				ID: "run-1", Month: 6, Year: 2025,
				Status: payroll.RunStatusComputed, Stale: true,
			},
			wantErr: payroll.ErrRunStale,
		},
		{
			name:    "draft run rejected",
			run:     juneRun(payroll.RunStatusDraft),
			wantErr: payroll.ErrRunNotComputed,
		},
		{
			name:    "approved run rejected",
			run:     juneRun(payroll.RunStatusApproved),
			wantErr: payroll.ErrRunNotComputed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := NewCoordinator(&stubRunRepo{run: tt.run}, slog.New(slog.DiscardHandler))
			err := c.EnsureApprovable(context.Background(), "run-1")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}
