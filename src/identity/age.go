package identity

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// ErrInvalidDate is returned for birth dates that fail the strict
// DD/MM/YYYY format or name an impossible calendar date.
var ErrInvalidDate = errors.New("identity: invalid birth date")

var birthDateRe = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)

// ParseBirthDate parses a strict DD/MM/YYYY date. Non-numeric components and
// impossible dates (31/04, 29/02 outside leap years) are rejected.
func ParseBirthDate(s string) (time.Time, error) {
	if !birthDateRe.MatchString(s) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	day, _ := strconv.Atoi(s[0:2])
	month, _ := strconv.Atoi(s[3:5])
	year, _ := strconv.Atoi(s[6:10])

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || t.Month() != time.Month(month) || t.Year() != year {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// AgeAt computes full years between birth and now, subtracting one when the
// birthday has not yet occurred this year.
func AgeAt(birth, now time.Time) int {
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() ||
		(now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age
}

// AgeFrom parses the birth date and computes the age as of now. Ages outside
// [0,120] are treated as invalid input, not as records to store.
func AgeFrom(s string, now time.Time) (int, error) {
	birth, err := ParseBirthDate(s)
	if err != nil {
		return 0, err
	}
	age := AgeAt(birth, now)
	if age < 0 || age > 120 {
		return 0, fmt.Errorf("%w: %q yields age %d", ErrInvalidDate, s, age)
	}
	return age, nil
}
