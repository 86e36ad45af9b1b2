package domain

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for all calendar dates.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string as a local calendar date.
// Parsing in the local location (not UTC) keeps the date stable when it is
// later formatted back, avoiding off-by-one-day shifts across timezones.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q (want YYYY-MM-DD)", ErrValidation, s)
	}
	return t, nil
}

// FormatDate renders a date as YYYY-MM-DD. The zero time renders as the
// empty string, matching the wire representation of an absent optional date.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
