package calendar

import (
	"fmt"
	"time"
)

// Date identifies a calendar day by year/month/day only. Two Dates built from
// different times of the same day compare equal, so Date is safe as a map key
// and with the == operator.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate normalizes the given components through time.Date, so out-of-range
// values roll over the way the time package rolls them over.
func NewDate(year int, month time.Month, day int) Date {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// DateOf truncates a time.Time to its calendar day in the time's own location.
func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// Today returns the current local calendar day.
func Today() Date {
	return DateOf(time.Now())
}

// ParseDate parses the canonical YYYY-MM-DD form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("calendar: parse %q: %w", s, err)
	}
	return DateOf(t), nil
}

// String returns the canonical YYYY-MM-DD serialization.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

func (d Date) After(other Date) bool {
	return other.Before(d)
}

// AddDays returns the date n days later (or earlier for negative n).
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// Next returns the following calendar day.
func (d Date) Next() Date {
	return d.AddDays(1)
}

// DaysUntil returns the whole-day count from d to other; negative when other
// is earlier.
func (d Date) DaysUntil(other Date) int {
	return int(other.Time().Sub(d.Time()) / (24 * time.Hour))
}

// Weekday returns the day of week (Sunday = 0).
func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// MarshalText and UnmarshalText round-trip the canonical form so Date can sit
// directly in JSON payloads.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// RangeDates expands [start, end) to each contained day. The end date itself
// is excluded, matching the iCal checkout convention. Returns nil when the
// range is empty or inverted.
func RangeDates(start, end Date) []Date {
	if !end.After(start) {
		return nil
	}
	out := make([]Date, 0, start.DaysUntil(end))
	for d := start; d.Before(end); d = d.Next() {
		out = append(out, d)
	}
	return out
}

// RangeDatesInclusive expands [start, end] including both endpoints, the form
// used when marking a just-confirmed booking.
func RangeDatesInclusive(start, end Date) []Date {
	if end.Before(start) {
		return nil
	}
	return append(RangeDates(start, end), end)
}
