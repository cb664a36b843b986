// Package session tracks per-visitor widget state: the date selection, the
// pivot month of the two-month view, and a last-activity timestamp for idle
// expiry. All access to a session's selector goes through its mutex, which
// gives the selection state machine its one-event-at-a-time guarantee.
package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/hollytrail/van-booking/internal/booking"
	"github.com/hollytrail/van-booking/internal/calendar"
	"github.com/hollytrail/van-booking/internal/pricing"
	"github.com/hollytrail/van-booking/internal/selection"
	"github.com/hollytrail/van-booking/internal/view"
	"github.com/hollytrail/van-booking/pkg/logging"
)

// Session is one visitor's widget state. lastSeen lives outside the mutex so
// registry lookups and the idle sweep never wait on a session busy with a
// slow operation (Book holds the mutex across its outbound send).
type Session struct {
	ID string

	mu       sync.Mutex
	selector *selection.Selector
	pivot    calendar.Month
	today    func() calendar.Date

	lastSeen atomic.Int64 // unix nanos
}

// Select forwards a date click to the selection state machine.
func (s *Session) Select(d calendar.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selector.SelectDate(d)
}

// Hover sets the preview end date. Reports whether the preview applies.
func (s *Session) Hover(d calendar.Date) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selector.Hover(d)
}

func (s *Session) ClearHover() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selector.ClearHover()
}

func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selector.Clear()
}

// Snapshot returns the current selection in a serializable form.
func (s *Session) Snapshot() selection.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selector.Snapshot()
}

// Pivot returns the first month of the two-month view.
func (s *Session) Pivot() calendar.Month {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pivot
}

// PivotNext advances the view by one month.
func (s *Session) PivotNext() calendar.Month {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pivot = s.pivot.Next()
	return s.pivot
}

// PivotPrev moves the view back one month, never before the current month.
func (s *Session) PivotPrev() calendar.Month {
	s.mu.Lock()
	defer s.mu.Unlock()
	floor := calendar.MonthOf(s.today().Year, s.today().Month)
	prev := s.pivot.Prev()
	if prev.Before(floor) {
		return s.pivot
	}
	s.pivot = prev
	return s.pivot
}

// Calendar renders the two-month grid for this session's pivot and selection.
func (s *Session) Calendar(b *view.Builder) []view.MonthGrid {
	s.mu.Lock()
	defer s.mu.Unlock()
	return b.Build(s.pivot, s.selector)
}

// Quote prices the committed range. ok is false while no range is committed.
func (s *Session) Quote(nightlyRate float64) (pricing.Quote, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start, end, ok := s.selector.Range()
	if !ok {
		return pricing.Quote{}, false
	}
	return pricing.For(start, end, nightlyRate), true
}

// Book submits the committed range through sub while holding the session lock,
// so no selection event can interleave with the optimistic hold.
func (s *Session) Book(ctx context.Context, sub *booking.Submitter, contact booking.Contact) (pricing.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sub.Submit(ctx, s.selector, contact)
}

// RegistryConfig configures a Registry. Tick and Stop exist so tests can
// drive the idle sweeper; when Tick is nil a real ticker at TTL/2 is used.
type RegistryConfig struct {
	Blocked selection.Blocker
	Today   func() calendar.Date
	TTL     time.Duration
	Logger  *logging.Logger
	Now     func() time.Time

	Tick <-chan time.Time
	Stop func()
}

const defaultTTL = 30 * time.Minute

// Registry owns all live sessions and expires the idle ones.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	blocked selection.Blocker
	today   func() calendar.Date
	ttl     time.Duration
	logger  *logging.Logger
	now     func() time.Time

	tick <-chan time.Time
	stop func()
}

func NewRegistry(cfg RegistryConfig) *Registry {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	today := cfg.Today
	if today == nil {
		today = calendar.Today
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	r := &Registry{
		sessions: make(map[string]*Session),
		blocked:  cfg.Blocked,
		today:    today,
		ttl:      ttl,
		logger:   logger.Named("session"),
		now:      now,
		tick:     cfg.Tick,
		stop:     cfg.Stop,
	}
	if r.tick == nil {
		ticker := time.NewTicker(ttl / 2)
		r.tick = ticker.C
		r.stop = ticker.Stop
	}
	if r.stop == nil {
		r.stop = func() {}
	}
	return r
}

// Create opens a new session pivoted at the current month.
func (r *Registry) Create() *Session {
	today := r.today()
	s := &Session{
		ID:       uuid.New().String(),
		selector: selection.New(r.blocked, r.today),
		pivot:    calendar.MonthOf(today.Year, today.Month),
		today:    r.today,
	}
	s.lastSeen.Store(r.now().UnixNano())
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

// Get looks up a session and refreshes its idle timer.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	s.lastSeen.Store(r.now().UnixNano())
	return s, true
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep drops sessions idle longer than the TTL and returns how many.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.ttl).UnixNano()
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, s := range r.sessions {
		if s.lastSeen.Load() < cutoff {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps on every tick until ctx is done.
func (r *Registry) Run(ctx context.Context) {
	defer r.stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.tick:
			if n := r.Sweep(); n > 0 {
				r.logger.Info("expired idle sessions", "count", n)
			}
		}
	}
}
