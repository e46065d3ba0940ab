package attendance

import (
	"time"
)

// Record is one employee-day presence fact. At most one non-superseded record
// exists per (EmployeeID, Date).
type Record struct {
	ID              string
	EmployeeID      string
	Date            time.Time // date only, employee-local day
	CheckIn         *time.Time
	CheckOut        *time.Time
	Status          Status
	WorkMinutes     int
	LateMinutes     int
	OvertimeMinutes int
	ManualEntry     bool
	Notes           *string
	SupersededAt    *time.Time
	Version         int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLate    Status = "late"
	StatusHalfDay Status = "half_day"
	StatusOnLeave Status = "on_leave"
)

// Policy holds the presence rules derived minutes are computed against.
type Policy struct {
	StandardDayMinutes int
	GraceMinutes       int
	HalfDayMinutes     int
}

// DeriveWorkMinutes returns the worked minutes between check-in and
// check-out, 0 when either side is missing.
func DeriveWorkMinutes(checkIn, checkOut *time.Time) int {
	if checkIn == nil || checkOut == nil {
		return 0
	}
	mins := int(checkOut.Sub(*checkIn).Minutes())
	if mins < 0 {
		return 0
	}
	return mins
}

// DeriveOvertimeMinutes returns minutes worked beyond the standard day.
func DeriveOvertimeMinutes(workMinutes, standardDayMinutes int) int {
	if workMinutes <= standardDayMinutes {
		return 0
	}
	return workMinutes - standardDayMinutes
}

// DeriveLateMinutes compares the check-in against the shift start plus grace.
// shiftStart is wall-clock "15:04" in the same location as checkIn.
func DeriveLateMinutes(checkIn time.Time, shiftStart string, graceMinutes int) (int, error) {
	start, err := time.ParseInLocation("15:04", shiftStart, checkIn.Location())
	if err != nil {
		return 0, err
	}

	shifted := time.Date(checkIn.Year(), checkIn.Month(), checkIn.Day(),
		start.Hour(), start.Minute(), 0, 0, checkIn.Location())
	deadline := shifted.Add(time.Duration(graceMinutes) * time.Minute)

	if !checkIn.After(deadline) {
		return 0, nil
	}
	return int(checkIn.Sub(shifted).Minutes()), nil
}
