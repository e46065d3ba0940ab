package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsEmpty(t *testing.T) {
	t.Parallel()

	assert.True(t, IsEmpty(""))
	assert.True(t, IsEmpty("   "))
	assert.True(t, IsEmpty("\t\n"))
	assert.False(t, IsEmpty("a"))
	assert.False(t, IsEmpty(" a "))
}

func TestIsValidUUID(t *testing.T) {
	t.Parallel()

	assert.True(t, IsValidUUID("0190cafe-1234-7abc-89ab-0123456789ab"))
	assert.True(t, IsValidUUID("550e8400-e29b-41d4-a716-446655440000"))
	assert.False(t, IsValidUUID("not-a-uuid"))
	assert.False(t, IsValidUUID(""))
	assert.False(t, IsValidUUID("550e8400e29b41d4a716446655440000"))
}

func TestIsValidDate(t *testing.T) {
	t.Parallel()

	assert.True(t, IsValidDate("2025-01-31"))
	assert.False(t, IsValidDate("2025-13-01"))
	assert.False(t, IsValidDate("31-01-2025"))
	assert.False(t, IsValidDate(""))
}

func TestIsValidDateTime(t *testing.T) {
	t.Parallel()

	_, ok := IsValidDateTime("2024-01-15T10:30:00Z")
	assert.True(t, ok)
	_, ok = IsValidDateTime("2024-01-15T10:30:00+07:00")
	assert.True(t, ok)
	_, ok = IsValidDateTime("2024-01-15")
	assert.False(t, ok)
}

func TestIsValidClockTime(t *testing.T) {
	t.Parallel()

	assert.True(t, IsValidClockTime("09:00"))
	assert.True(t, IsValidClockTime("23:59"))
	assert.False(t, IsValidClockTime("24:00"))
	assert.False(t, IsValidClockTime("9:00"))
	assert.False(t, IsValidClockTime("09:60"))
}

func TestValidationErrors(t *testing.T) {
	t.Parallel()

	errs := ValidationErrors{
		{Field: "month", Message: "month must be between 1 and 12"},
		{Field: "year", Message: "year is out of range"},
	}

	assert.Contains(t, errs.Error(), "month:")
	assert.Contains(t, errs.Error(), "year:")

	m := errs.ToMap()
	assert.Len(t, m, 2)
	assert.Equal(t, "year is out of range", m["year"])
}
