package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveWorkMinutes(t *testing.T) {
	t.Parallel()

	checkIn := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	checkOut := checkIn.Add(10 * time.Hour)

	assert.Equal(t, 600, DeriveWorkMinutes(&checkIn, &checkOut))
	assert.Equal(t, 0, DeriveWorkMinutes(nil, &checkOut))
	assert.Equal(t, 0, DeriveWorkMinutes(&checkIn, nil))

	// a check-out before check-in never yields negative work
	before := checkIn.Add(-time.Hour)
	assert.Equal(t, 0, DeriveWorkMinutes(&checkIn, &before))
}

func TestDeriveOvertimeMinutes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 120, DeriveOvertimeMinutes(600, 480))
	assert.Equal(t, 0, DeriveOvertimeMinutes(480, 480))
	assert.Equal(t, 0, DeriveOvertimeMinutes(300, 480))
}

func TestDeriveLateMinutes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		checkIn time.Time
		want    int
	}{
		{
			name:    "on time",
			checkIn: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
			want:    0,
		},
		{
			name:    "inside grace",
			checkIn: time.Date(2025, 3, 10, 9, 10, 0, 0, time.UTC),
			want:    0,
		},
		{
			name:    "exactly at grace deadline",
			checkIn: time.Date(2025, 3, 10, 9, 15, 0, 0, time.UTC),
			want:    0,
		},
		{
			name:    "past grace counts from shift start",
			checkIn: time.Date(2025, 3, 10, 9, 20, 0, 0, time.UTC),
			want:    20,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := DeriveLateMinutes(tt.checkIn, "09:00", 15)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeriveLateMinutesInvalidShiftStart(t *testing.T) {
	t.Parallel()

	_, err := DeriveLateMinutes(time.Now(), "not-a-time", 15)
	assert.Error(t, err)
}
