package pricing

import (
	"fmt"

	"github.com/hollytrail/van-booking/internal/calendar"
)

// Length-of-stay discount tiers, evaluated highest-first.
const (
	weeklyNights  = 7
	monthlyNights = 28

	weeklyRate  = 0.07
	monthlyRate = 0.15
)

// Quote is the price breakdown for a stay. Amounts stay unrounded until
// formatting; only the display strings carry two-decimal rounding.
type Quote struct {
	Nights         int     `json:"nights"`
	NightlyRate    float64 `json:"nightlyRate"`
	Subtotal       float64 `json:"subtotal"`
	DiscountRate   float64 `json:"discountRate"`
	DiscountAmount float64 `json:"discountAmount"`
	DiscountLabel  string  `json:"discountLabel,omitempty"`
	Total          float64 `json:"total"`
}

// For prices a stay of [start, end) at the given nightly rate: end is the
// checkout day, so nights = end - start. The caller guarantees end > start;
// a committed selection can never violate that.
func For(start, end calendar.Date, nightlyRate float64) Quote {
	nights := start.DaysUntil(end)
	subtotal := float64(nights) * nightlyRate

	var (
		rate  float64
		label string
	)
	switch {
	case nights >= monthlyNights:
		rate = monthlyRate
		label = "15% off for monthly stays (28+ nights)"
	case nights >= weeklyNights:
		rate = weeklyRate
		label = "7% off for weekly stays (7+ nights)"
	}

	discount := subtotal * rate
	return Quote{
		Nights:         nights,
		NightlyRate:    nightlyRate,
		Subtotal:       subtotal,
		DiscountRate:   rate,
		DiscountAmount: discount,
		DiscountLabel:  label,
		Total:          subtotal - discount,
	}
}

// FormatAmount renders a dollar amount for display, e.g. "$1477.77".
func FormatAmount(amount float64) string {
	return fmt.Sprintf("$%.2f", amount)
}

// FormattedTotal is the display form of the quote's total.
func (q Quote) FormattedTotal() string {
	return FormatAmount(q.Total)
}
