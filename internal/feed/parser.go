package feed

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/hollytrail/van-booking/internal/calendar"
)

// Platform calendar exports wrap each reservation in a VEVENT block whose
// DTSTART/DTEND lines carry either a bare YYYYMMDD or a YYYYMMDDTHHMMSSZ
// stamp, sometimes with property parameters (DTSTART;VALUE=DATE:20250801).
// The first eight-digit run on the line is the date either way.
var icsDatePattern = regexp.MustCompile(`\d{8}`)

type event struct {
	start calendar.Date
	end   calendar.Date

	hasStart bool
	hasEnd   bool
}

// ParseICS extracts every blocked day from a raw calendar export. Each event
// expands to the half-open range [DTSTART, DTEND): a stay checking out on day
// D leaves D itself bookable. Events missing either bound are dropped, and
// unknown block types or malformed lines are skipped rather than failing the
// whole feed. Duplicates are preserved; the availability store de-duplicates.
func ParseICS(raw string) []calendar.Date {
	var (
		dates   []calendar.Date
		current event
		inEvent bool
	)

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(line, "BEGIN:VEVENT"):
			current = event{}
			inEvent = true
		case strings.HasPrefix(line, "END:VEVENT"):
			if inEvent && current.hasStart && current.hasEnd {
				dates = append(dates, calendar.RangeDates(current.start, current.end)...)
			}
			inEvent = false
		case inEvent && strings.HasPrefix(line, "DTSTART"):
			if d, ok := parseICSDate(line); ok {
				current.start = d
				current.hasStart = true
			}
		case inEvent && strings.HasPrefix(line, "DTEND"):
			if d, ok := parseICSDate(line); ok {
				current.end = d
				current.hasEnd = true
			}
		}
	}

	return dates
}

func parseICSDate(line string) (calendar.Date, bool) {
	raw := icsDatePattern.FindString(line)
	if raw == "" {
		return calendar.Date{}, false
	}

	year, err := strconv.Atoi(raw[:4])
	if err != nil {
		return calendar.Date{}, false
	}
	month, err := strconv.Atoi(raw[4:6])
	if err != nil {
		return calendar.Date{}, false
	}
	day, err := strconv.Atoi(raw[6:8])
	if err != nil {
		return calendar.Date{}, false
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return calendar.Date{}, false
	}

	return calendar.NewDate(year, time.Month(month), day), true
}
