package calendar

import (
	"fmt"
	"time"
)

// Month identifies a calendar month. It is the pivot unit for the two-month
// view: the widget always shows a Month and its successor.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the identified month.
func MonthOf(year int, month time.Month) Month {
	return Month{Year: year, Month: month}
}

// MonthContaining returns the month a date falls in.
func MonthContaining(d Date) Month {
	return Month{Year: d.Year, Month: d.Month}
}

// First returns the first day of the month.
func (m Month) First() Date {
	return Date{Year: m.Year, Month: m.Month, Day: 1}
}

// Days returns the number of days in the month.
func (m Month) Days() int {
	// Day zero of the following month is this month's last day.
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Next returns the succeeding month, rolling the year at December.
func (m Month) Next() Month {
	if m.Month == time.December {
		return Month{Year: m.Year + 1, Month: time.January}
	}
	return Month{Year: m.Year, Month: m.Month + 1}
}

// Prev returns the preceding month, rolling the year at January.
func (m Month) Prev() Month {
	if m.Month == time.January {
		return Month{Year: m.Year - 1, Month: time.December}
	}
	return Month{Year: m.Year, Month: m.Month - 1}
}

// Before reports whether m precedes other in calendar order.
func (m Month) Before(other Month) bool {
	if m.Year != other.Year {
		return m.Year < other.Year
	}
	return m.Month < other.Month
}

// Contains reports whether the date falls inside the month.
func (m Month) Contains(d Date) bool {
	return d.Year == m.Year && d.Month == m.Month
}

// Label returns the human heading, e.g. "August 2025".
func (m Month) Label() string {
	return fmt.Sprintf("%s %d", m.Month, m.Year)
}
