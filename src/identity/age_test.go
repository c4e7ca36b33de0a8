package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBirthDate(t *testing.T) {
	got, err := ParseBirthDate("15/06/1990")
	require.NoError(t, err)
	assert.Equal(t, time.Date(1990, time.June, 15, 0, 0, 0, 0, time.UTC), got)

	// Leap day on a leap year is fine.
	_, err = ParseBirthDate("29/02/2000")
	require.NoError(t, err)

	for _, bad := range []string{
		"29/02/2001", // not a leap year
		"31/04/2020", // April has 30 days
		"00/01/2000",
		"01/13/2000",
		"1/1/2000", // single digits rejected by the strict format
		"2000/01/01",
		"aa/bb/cccc",
		"",
	} {
		_, err := ParseBirthDate(bad)
		assert.ErrorIs(t, err, ErrInvalidDate, "input %q", bad)
	}
}

func TestAgeAt(t *testing.T) {
	now := time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC)

	birthdayPassed, _ := ParseBirthDate("15/06/1990")
	assert.Equal(t, 36, AgeAt(birthdayPassed, now))

	birthdayPending, _ := ParseBirthDate("15/09/1990")
	assert.Equal(t, 35, AgeAt(birthdayPending, now))

	birthdayToday, _ := ParseBirthDate("30/08/1990")
	assert.Equal(t, 36, AgeAt(birthdayToday, now))
}

func TestAgeFromBounds(t *testing.T) {
	now := time.Date(2026, time.August, 30, 0, 0, 0, 0, time.UTC)

	age, err := AgeFrom("15/06/1990", now)
	require.NoError(t, err)
	assert.Equal(t, 36, age)

	// Future birth dates and implausibly old ones are invalid input.
	_, err = AgeFrom("01/01/2030", now)
	assert.ErrorIs(t, err, ErrInvalidDate)
	_, err = AgeFrom("01/01/1800", now)
	assert.ErrorIs(t, err, ErrInvalidDate)
}
