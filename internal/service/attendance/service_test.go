package attendance

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/kenzahr/workforce-ledger-go/internal/domain/attendance"
	"github.com/kenzahr/workforce-ledger-go/internal/domain/employee"
	"github.com/kenzahr/workforce-ledger-go/internal/domain/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type passthroughTx struct{}

func (passthroughTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type allowAll struct{}

func (allowAll) Can(ctx context.Context, actorID string, resource identity.Resource, action identity.Action) bool {
	return true
}

type memoryAttendanceRepo struct {
	mu      sync.Mutex
	records map[string]attendance.Record // keyed by employeeID + date
	byID    map[string]attendance.Record
}

func newMemoryAttendanceRepo() *memoryAttendanceRepo {
	return &memoryAttendanceRepo{
		records: make(map[string]attendance.Record),
		byID:    make(map[string]attendance.Record),
	}
}

func dayKey(employeeID string, date time.Time) string {
	return employeeID + "|" + date.Format("2006-01-02")
}

func (r *memoryAttendanceRepo) Create(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec.Version = 1
	r.records[dayKey(rec.EmployeeID, rec.Date)] = rec
	r.byID[rec.ID] = rec
	return rec, nil
}

func (r *memoryAttendanceRepo) CreateAbsentIfMissing(ctx context.Context, rec attendance.Record) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := dayKey(rec.EmployeeID, rec.Date)
	if _, ok := r.records[key]; ok {
		return false, nil
	}
	rec.Version = 1
	r.records[key] = rec
	r.byID[rec.ID] = rec
	return true, nil
}

func (r *memoryAttendanceRepo) GetByID(ctx context.Context, id string) (attendance.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byID[id]
	if !ok {
		return attendance.Record{}, attendance.ErrRecordNotFound
	}
	return rec, nil
}

func (r *memoryAttendanceRepo) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[dayKey(employeeID, date)]
	if !ok || rec.SupersededAt != nil {
		return nil, nil
	}
	out := rec
	return &out, nil
}

func (r *memoryAttendanceRepo) Update(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byID[rec.ID]
	if !ok {
		return attendance.Record{}, attendance.ErrRecordNotFound
	}
	if cur.SupersededAt != nil {
		return attendance.Record{}, attendance.ErrRecordSuperseded
	}
	rec.Version = cur.Version + 1
	r.records[dayKey(rec.EmployeeID, rec.Date)] = rec
	r.byID[rec.ID] = rec
	return rec, nil
}

func (r *memoryAttendanceRepo) Supersede(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byID[id]
	if !ok {
		return attendance.ErrRecordNotFound
	}
	rec.SupersededAt = &at
	r.byID[id] = rec
	delete(r.records, dayKey(rec.EmployeeID, rec.Date))
	return nil
}

func (r *memoryAttendanceRepo) List(ctx context.Context, filter attendance.ListFilter) ([]attendance.Record, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []attendance.Record
	for _, rec := range r.records {
		if filter.EmployeeID != nil && rec.EmployeeID != *filter.EmployeeID {
			continue
		}
		out = append(out, rec)
	}
	return out, int64(len(out)), nil
}

func (r *memoryAttendanceRepo) GetMonthlySummary(ctx context.Context, employeeID string, month, year int) (attendance.MonthlySummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	summary := attendance.MonthlySummary{EmployeeID: employeeID}
	for _, rec := range r.records {
		if rec.EmployeeID != employeeID || int(rec.Date.Month()) != month || rec.Date.Year() != year {
			continue
		}
		summary.WorkMinutes += rec.WorkMinutes
		summary.OvertimeMinutes += rec.OvertimeMinutes
		summary.LateMinutes += rec.LateMinutes
		if rec.Status == attendance.StatusAbsent {
			summary.DaysAbsent++
		} else {
			summary.DaysPresent++
		}
	}
	return summary, nil
}

type staticEmployeeRepo struct {
	employees map[string]employee.Employee
}

func (r *staticEmployeeRepo) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	emp, ok := r.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return emp, nil
}

func (r *staticEmployeeRepo) GetActive(ctx context.Context) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, emp := range r.employees {
		if emp.EmploymentStatus == employee.EmploymentStatusActive {
			out = append(out, emp)
		}
	}
	return out, nil
}

type recordingCoordinator struct {
	mu      sync.Mutex
	reasons []string
}

func (c *recordingCoordinator) MarkStaleForDate(ctx context.Context, date time.Time, reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reasons = append(c.reasons, reason)
	return nil
}

func (c *recordingCoordinator) EnsureApprovable(ctx context.Context, runID string) error {
	return nil
}

func testPolicy() attendance.Policy {
	return attendance.Policy{
		StandardDayMinutes: 480,
		GraceMinutes:       15,
		HalfDayMinutes:     240,
	}
}

func actorCtx() context.Context {
	return identity.WithActor(context.Background(), identity.Actor{
		ID:   "user-1",
		Role: identity.RoleManager,
	})
}

func newTestService(repo *memoryAttendanceRepo, employees map[string]employee.Employee) (*AttendanceServiceImpl, *recordingCoordinator) {
	coordinator := &recordingCoordinator{}
	svc := NewAttendanceService(
		passthroughTx{},
		repo,
		&staticEmployeeRepo{employees: employees},
		allowAll{},
		coordinator,
		testPolicy(),
		slog.New(slog.DiscardHandler),
	)
	return svc, coordinator
}

func activeEmployee(id string) employee.Employee {
	return employee.Employee{
		ID:               id,
		FullName:         "Test Person",
		Timezone:         "UTC",
		ShiftStart:       "09:00",
		EmploymentStatus: employee.EmploymentStatusActive,
	}
}

func TestCheckInThenCheckOutDerivesMinutes(t *testing.T) {
	t.Parallel()

	repo := newMemoryAttendanceRepo()
	svc, _ := newTestService(repo, map[string]employee.Employee{"emp-1": activeEmployee("emp-1")})

	checkIn := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return checkIn }

	rec, err := svc.CheckIn(actorCtx(), attendance.CheckInRequest{EmployeeID: "emp-1"})
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPresent, rec.Status)
	assert.Equal(t, 0, rec.LateMinutes)

	svc.now = func() time.Time { return checkIn.Add(10 * time.Hour) }

	rec, err = svc.CheckOut(actorCtx(), attendance.CheckOutRequest{EmployeeID: "emp-1"})
	require.NoError(t, err)
	assert.Equal(t, 600, rec.WorkMinutes)
	assert.Equal(t, 120, rec.OvertimeMinutes)
}

func TestCheckInLatePastGrace(t *testing.T) {
	t.Parallel()

	repo := newMemoryAttendanceRepo()
	svc, _ := newTestService(repo, map[string]employee.Employee{"emp-1": activeEmployee("emp-1")})

	svc.now = func() time.Time { return time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC) }

	rec, err := svc.CheckIn(actorCtx(), attendance.CheckInRequest{EmployeeID: "emp-1"})
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusLate, rec.Status)
	assert.Equal(t, 30, rec.LateMinutes)
}

func TestDoubleCheckInRejected(t *testing.T) {
	t.Parallel()

	repo := newMemoryAttendanceRepo()
	svc, _ := newTestService(repo, map[string]employee.Employee{"emp-1": activeEmployee("emp-1")})
	svc.now = func() time.Time { return time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC) }

	_, err := svc.CheckIn(actorCtx(), attendance.CheckInRequest{EmployeeID: "emp-1"})
	require.NoError(t, err)

	_, err = svc.CheckIn(actorCtx(), attendance.CheckInRequest{EmployeeID: "emp-1"})
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)
}

func TestCheckOutWithoutCheckIn(t *testing.T) {
	t.Parallel()

	repo := newMemoryAttendanceRepo()
	svc, _ := newTestService(repo, map[string]employee.Employee{"emp-1": activeEmployee("emp-1")})
	svc.now = func() time.Time { return time.Date(2025, 3, 10, 17, 0, 0, 0, time.UTC) }

	_, err := svc.CheckOut(actorCtx(), attendance.CheckOutRequest{EmployeeID: "emp-1"})
	assert.ErrorIs(t, err, attendance.ErrNoOpenCheckIn)
}

func TestSweepAbsenteesIsIdempotent(t *testing.T) {
	t.Parallel()

	repo := newMemoryAttendanceRepo()
	employees := map[string]employee.Employee{
		"emp-1": activeEmployee("emp-1"),
		"emp-2": activeEmployee("emp-2"),
	}
	svc, _ := newTestService(repo, employees)

	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	first, err := svc.SweepAbsentees(actorCtx(), day)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Marked)
	assert.Equal(t, 0, first.Skipped)

	second, err := svc.SweepAbsentees(actorCtx(), day)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Marked)
	assert.Equal(t, 2, second.Skipped)
}

func TestSweepRequiresActor(t *testing.T) {
	t.Parallel()

	repo := newMemoryAttendanceRepo()
	svc, _ := newTestService(repo, map[string]employee.Employee{"emp-1": activeEmployee("emp-1")})

	_, err := svc.SweepAbsentees(context.Background(), time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, identity.ErrForbidden)

	records, _, listErr := repo.List(context.Background(), attendance.ListFilter{})
	require.NoError(t, listErr)
	assert.Empty(t, records)
}

func TestSweepSkipsEmployeesWithRecords(t *testing.T) {
	t.Parallel()

	repo := newMemoryAttendanceRepo()
	employees := map[string]employee.Employee{
		"emp-1": activeEmployee("emp-1"),
		"emp-2": activeEmployee("emp-2"),
	}
	svc, _ := newTestService(repo, employees)

	svc.now = func() time.Time { return time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC) }
	_, err := svc.CheckIn(actorCtx(), attendance.CheckInRequest{EmployeeID: "emp-1"})
	require.NoError(t, err)

	result, err := svc.SweepAbsentees(actorCtx(), time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Marked)
	assert.Equal(t, 1, result.Skipped)
}

func TestUpsertManualSupersedesAndMarksStale(t *testing.T) {
	t.Parallel()

	repo := newMemoryAttendanceRepo()
	svc, coordinator := newTestService(repo, map[string]employee.Employee{"emp-1": activeEmployee("emp-1")})

	svc.now = func() time.Time { return time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC) }
	original, err := svc.CheckIn(actorCtx(), attendance.CheckInRequest{EmployeeID: "emp-1"})
	require.NoError(t, err)

	checkIn := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	checkOut := time.Date(2025, 3, 10, 16, 0, 0, 0, time.UTC)
	corrected, err := svc.UpsertManual(actorCtx(), attendance.UpsertManualRequest{
		EmployeeID: "emp-1",
		Date:       "2025-03-10",
		CheckIn:    &checkIn,
		CheckOut:   &checkOut,
	})
	require.NoError(t, err)

	assert.NotEqual(t, original.ID, corrected.ID)
	assert.True(t, corrected.ManualEntry)
	assert.Equal(t, 480, corrected.WorkMinutes)

	// the original row survives as superseded evidence
	old, err := repo.GetByID(context.Background(), original.ID)
	require.NoError(t, err)
	assert.NotNil(t, old.SupersededAt)

	assert.Len(t, coordinator.reasons, 1)
}

func TestCheckInForbiddenWithoutActor(t *testing.T) {
	t.Parallel()

	repo := newMemoryAttendanceRepo()
	svc, _ := newTestService(repo, map[string]employee.Employee{"emp-1": activeEmployee("emp-1")})

	_, err := svc.CheckIn(context.Background(), attendance.CheckInRequest{EmployeeID: "emp-1"})
	assert.ErrorIs(t, err, identity.ErrForbidden)
}
