package availability

import (
	"time"

	"github.com/hollytrail/van-booking/internal/calendar"
)

// FallbackSeed returns the pre-agreed blocked window used when every feed
// fetch fails: all of August 2025 plus the September weekends already booked
// when the widget launched. Showing these as taken beats falsely advertising
// a fully open calendar.
func FallbackSeed() []calendar.Date {
	var out []calendar.Date

	august := calendar.Month{Year: 2025, Month: time.August}
	for day := 1; day <= august.Days(); day++ {
		out = append(out, calendar.NewDate(2025, time.August, day))
	}

	for day := 1; day <= 6; day++ {
		out = append(out, calendar.NewDate(2025, time.September, day))
	}
	for _, day := range []int{12, 13, 19, 20, 26, 27} {
		out = append(out, calendar.NewDate(2025, time.September, day))
	}

	return out
}
