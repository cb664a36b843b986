// Package view renders the two-month day grid shown by the booking widget.
// The grid is a pure projection of pivot month, blocked dates, selection
// state, and today's date; identical inputs produce identical output.
package view

import (
	"github.com/hollytrail/van-booking/internal/calendar"
	"github.com/hollytrail/van-booking/internal/selection"
)

// Status tags a single grid cell. Exactly one status applies per cell.
type Status string

const (
	StatusHeader           Status = "header"
	StatusOutsideMonth     Status = "outside-month"
	StatusPast             Status = "past"
	StatusBlocked          Status = "blocked"
	StatusSelectedEndpoint Status = "selected-endpoint"
	StatusInRange          Status = "in-range"
	StatusAvailableForEnd  Status = "available-for-end"
	StatusAvailable        Status = "available"
)

// Cell is one slot in a month grid. Header cells carry a weekday label,
// padding cells carry only a status, date cells carry day and date.
type Cell struct {
	Status Status        `json:"status"`
	Day    int           `json:"day,omitempty"`
	Label  string        `json:"label,omitempty"`
	Date   calendar.Date `json:"date,omitzero"`
}

// MonthGrid is one month's worth of rows. Row zero is the weekday header.
type MonthGrid struct {
	Label string   `json:"label"`
	Rows  [][]Cell `json:"rows"`
}

// Blocker reports whether a date is unavailable.
type Blocker interface {
	IsBlocked(calendar.Date) bool
}

// Selection exposes the read side of a date selection.
type Selection interface {
	State() selection.State
	Anchor() (calendar.Date, bool)
	Range() (start, end calendar.Date, ok bool)
	Preview() (start, end calendar.Date, ok bool)
}

var weekdayLabels = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// Builder produces month grids from the current availability and selection.
type Builder struct {
	blocked Blocker
	today   func() calendar.Date
}

func NewBuilder(blocked Blocker, today func() calendar.Date) *Builder {
	if today == nil {
		today = calendar.Today
	}
	return &Builder{blocked: blocked, today: today}
}

// Build returns grids for the pivot month and the month after it.
func (b *Builder) Build(pivot calendar.Month, sel Selection) []MonthGrid {
	return []MonthGrid{
		b.month(pivot, sel),
		b.month(pivot.Next(), sel),
	}
}

func (b *Builder) month(m calendar.Month, sel Selection) MonthGrid {
	grid := MonthGrid{Label: m.Label()}

	header := make([]Cell, 7)
	for i, label := range weekdayLabels {
		header[i] = Cell{Status: StatusHeader, Label: label}
	}
	grid.Rows = append(grid.Rows, header)

	today := b.today()
	first := m.First()
	days := m.Days()

	row := make([]Cell, 0, 7)
	for i := 0; i < int(first.Weekday()); i++ {
		row = append(row, Cell{Status: StatusOutsideMonth})
	}
	for day := 1; day <= days; day++ {
		d := calendar.NewDate(m.Year, m.Month, day)
		row = append(row, Cell{
			Status: b.status(d, today, sel),
			Day:    day,
			Date:   d,
		})
		if len(row) == 7 {
			grid.Rows = append(grid.Rows, row)
			row = make([]Cell, 0, 7)
		}
	}
	if len(row) > 0 {
		for len(row) < 7 {
			row = append(row, Cell{Status: StatusOutsideMonth})
		}
		grid.Rows = append(grid.Rows, row)
	}
	return grid
}

// status resolves the first matching tag for a real date cell. A past date
// that is also blocked stays past.
func (b *Builder) status(d, today calendar.Date, sel Selection) Status {
	if d.Before(today) {
		return StatusPast
	}
	if b.blocked != nil && b.blocked.IsBlocked(d) {
		return StatusBlocked
	}
	if sel != nil {
		if anchor, ok := sel.Anchor(); ok && d == anchor {
			return StatusSelectedEndpoint
		}
		if start, end, ok := sel.Range(); ok {
			if d == start || d == end {
				return StatusSelectedEndpoint
			}
			if d.After(start) && d.Before(end) {
				return StatusInRange
			}
		}
		if start, end, ok := sel.Preview(); ok && d.After(start) && d.Before(end) {
			return StatusInRange
		}
		if anchor, ok := sel.Anchor(); ok && sel.State() == selection.StateAnchored && d.After(anchor) {
			return StatusAvailableForEnd
		}
	}
	return StatusAvailable
}
