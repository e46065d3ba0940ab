package attendance

import "errors"

var (
	ErrAlreadyCheckedIn = errors.New("an open attendance record already exists for today")
	ErrNoOpenCheckIn    = errors.New("no open check-in found for today")
	ErrRecordNotFound   = errors.New("attendance record not found")
	ErrRecordSuperseded = errors.New("attendance record has been superseded")
)
