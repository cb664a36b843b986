package selection

import (
	"errors"

	"github.com/hollytrail/van-booking/internal/calendar"
)

var (
	// ErrDateBlocked means the clicked date is in the unavailable set.
	ErrDateBlocked = errors.New("selection: date is blocked")
	// ErrDateInPast means the clicked date is before today.
	ErrDateInPast = errors.New("selection: date is in the past")
	// ErrRangeCrossesBlocked means a blocked date sits strictly between the
	// anchor and the attempted end date, which invalidates the attempt.
	ErrRangeCrossesBlocked = errors.New("selection: range crosses a blocked date")
)

// State is the selection machine's position: no endpoints, a check-in anchor
// waiting for checkout, or a full committed range.
type State int

const (
	StateEmpty State = iota
	StateAnchored
	StateCommitted
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateAnchored:
		return "anchored"
	case StateCommitted:
		return "committed"
	default:
		return "unknown"
	}
}

// MarshalText serializes the state name, so snapshots read naturally in JSON.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Blocker is the availability predicate the selector consults.
// *availability.Store satisfies it.
type Blocker interface {
	IsBlocked(d calendar.Date) bool
	HasBlockedBetween(start, end calendar.Date) bool
}

// Selector tracks a visitor's check-in/check-out selection. It is not
// goroutine-safe: selection events arrive one at a time per widget session,
// and the session layer serializes them.
type Selector struct {
	blocked Blocker
	today   func() calendar.Date

	state      State
	start, end calendar.Date

	hover    calendar.Date
	hasHover bool
}

// New creates a selector in the Empty state. today supplies the eligibility
// cutoff for past dates; nil defaults to the current day.
func New(blocked Blocker, today func() calendar.Date) *Selector {
	if today == nil {
		today = calendar.Today
	}
	return &Selector{blocked: blocked, today: today}
}

// SelectDate applies one click to the machine. A nil error means the state
// changed; a sentinel error means the click was ineligible and the state is
// untouched.
//
// Transitions:
//
//	Empty           -> Anchored(d)      d not blocked, not past
//	Anchored(s)     -> Committed(s, d)  d > s, endpoints free, no blocked date inside (s, d)
//	Anchored(s)     -> Anchored(d)      d <= s (restart; no blocked-range check)
//	Committed(_, _) -> Anchored(d)      any eligible click starts over, wherever
//	                                    d falls relative to the old endpoints
func (sel *Selector) SelectDate(d calendar.Date) error {
	sel.clearHover()

	switch sel.state {
	case StateCommitted:
		return sel.anchor(d)

	case StateAnchored:
		if !d.After(sel.start) {
			return sel.anchor(d)
		}
		if sel.blocked.IsBlocked(d) {
			return ErrDateBlocked
		}
		if sel.blocked.IsBlocked(sel.start) {
			// The anchor got blocked out from under us by a sync; the
			// old selection is unusable, so restart from the new click.
			return sel.anchor(d)
		}
		if sel.blocked.HasBlockedBetween(sel.start, d) {
			return ErrRangeCrossesBlocked
		}
		sel.state = StateCommitted
		sel.end = d
		return nil

	default: // StateEmpty
		return sel.anchor(d)
	}
}

func (sel *Selector) anchor(d calendar.Date) error {
	if d.Before(sel.today()) {
		return ErrDateInPast
	}
	if sel.blocked.IsBlocked(d) {
		return ErrDateBlocked
	}
	sel.state = StateAnchored
	sel.start = d
	sel.end = calendar.Date{}
	return nil
}

// Hover records a checkout preview. It only takes effect while Anchored and
// for dates after the anchor; it never changes the selection state. Returns
// whether a preview is now active.
func (sel *Selector) Hover(d calendar.Date) bool {
	if sel.state != StateAnchored || !d.After(sel.start) {
		return false
	}
	sel.hover = d
	sel.hasHover = true
	return true
}

// ClearHover drops any active preview.
func (sel *Selector) ClearHover() {
	sel.clearHover()
}

func (sel *Selector) clearHover() {
	sel.hover = calendar.Date{}
	sel.hasHover = false
}

// Clear forces the machine back to Empty from any state.
func (sel *Selector) Clear() {
	sel.state = StateEmpty
	sel.start = calendar.Date{}
	sel.end = calendar.Date{}
	sel.clearHover()
}

// State returns the machine's current position.
func (sel *Selector) State() State {
	return sel.state
}

// Anchor returns the pending check-in date while Anchored or Committed.
func (sel *Selector) Anchor() (calendar.Date, bool) {
	if sel.state == StateEmpty {
		return calendar.Date{}, false
	}
	return sel.start, true
}

// Range returns the committed check-in/check-out pair.
func (sel *Selector) Range() (start, end calendar.Date, ok bool) {
	if sel.state != StateCommitted {
		return calendar.Date{}, calendar.Date{}, false
	}
	return sel.start, sel.end, true
}

// Preview returns the hover-preview range (anchor, hovered date) while one
// is active.
func (sel *Selector) Preview() (start, end calendar.Date, ok bool) {
	if sel.state != StateAnchored || !sel.hasHover {
		return calendar.Date{}, calendar.Date{}, false
	}
	return sel.start, sel.hover, true
}

// Snapshot is a read-only view of the machine for rendering and transport.
type Snapshot struct {
	State State         `json:"state"`
	Start calendar.Date `json:"start,omitzero"`
	End   calendar.Date `json:"end,omitzero"`
}

func (sel *Selector) Snapshot() Snapshot {
	snap := Snapshot{State: sel.state}
	if sel.state != StateEmpty {
		snap.Start = sel.start
	}
	if sel.state == StateCommitted {
		snap.End = sel.end
	}
	return snap
}
