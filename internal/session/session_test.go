package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/hollytrail/van-booking/internal/availability"
	"github.com/hollytrail/van-booking/internal/booking"
	"github.com/hollytrail/van-booking/internal/calendar"
	"github.com/hollytrail/van-booking/internal/selection"
	"github.com/hollytrail/van-booking/internal/view"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, time.August, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func testToday() calendar.Date {
	return calendar.NewDate(2025, time.August, 1)
}

func newTestRegistry(t *testing.T, clock *fakeClock) *Registry {
	t.Helper()
	return NewRegistry(RegistryConfig{
		Blocked: availability.NewStore(),
		Today:   testToday,
		TTL:     30 * time.Minute,
		Now:     clock.Now,
		Tick:    make(chan time.Time),
		Stop:    func() {},
	})
}

func TestCreateAndGet(t *testing.T) {
	r := newTestRegistry(t, newFakeClock())

	a := r.Create()
	b := r.Create()
	if a.ID == b.ID {
		t.Fatal("sessions share an ID")
	}
	if r.Count() != 2 {
		t.Fatalf("count = %d, want 2", r.Count())
	}

	got, ok := r.Get(a.ID)
	if !ok || got != a {
		t.Fatal("Get did not return the created session")
	}
	if _, ok := r.Get("nope"); ok {
		t.Fatal("Get returned a session for an unknown ID")
	}
}

func TestCreatePivotsAtCurrentMonth(t *testing.T) {
	r := newTestRegistry(t, newFakeClock())
	s := r.Create()

	if got := s.Pivot(); got != calendar.MonthOf(2025, time.August) {
		t.Errorf("pivot = %v, want August 2025", got)
	}
}

func TestPivotNavigation(t *testing.T) {
	r := newTestRegistry(t, newFakeClock())
	s := r.Create()

	if got := s.PivotNext(); got != calendar.MonthOf(2025, time.September) {
		t.Errorf("next pivot = %v", got)
	}
	if got := s.PivotPrev(); got != calendar.MonthOf(2025, time.August) {
		t.Errorf("prev pivot = %v", got)
	}
	// The view never goes before the current month.
	if got := s.PivotPrev(); got != calendar.MonthOf(2025, time.August) {
		t.Errorf("pivot moved before the current month: %v", got)
	}
}

func TestSelectAndQuoteThroughSession(t *testing.T) {
	r := newTestRegistry(t, newFakeClock())
	s := r.Create()

	if _, ok := s.Quote(227); ok {
		t.Fatal("quote available with no committed range")
	}

	if err := s.Select(calendar.NewDate(2025, time.August, 10)); err != nil {
		t.Fatalf("anchor: %v", err)
	}
	if err := s.Select(calendar.NewDate(2025, time.August, 17)); err != nil {
		t.Fatalf("commit: %v", err)
	}

	q, ok := s.Quote(227)
	if !ok {
		t.Fatal("quote unavailable after commit")
	}
	if q.Nights != 7 {
		t.Errorf("nights = %d, want 7", q.Nights)
	}

	snap := s.Snapshot()
	if snap.State != selection.StateCommitted {
		t.Errorf("state = %v, want Committed", snap.State)
	}

	s.Clear()
	if s.Snapshot().State != selection.StateEmpty {
		t.Error("state not Empty after Clear")
	}
}

func TestSessionCalendar(t *testing.T) {
	store := availability.NewStore()
	r := NewRegistry(RegistryConfig{
		Blocked: store,
		Today:   testToday,
		Now:     newFakeClock().Now,
		Tick:    make(chan time.Time),
		Stop:    func() {},
	})
	s := r.Create()
	b := view.NewBuilder(store, testToday)

	grids := s.Calendar(b)
	if len(grids) != 2 {
		t.Fatalf("grids = %d, want 2", len(grids))
	}
	if grids[0].Label != "August 2025" || grids[1].Label != "September 2025" {
		t.Errorf("labels = %q, %q", grids[0].Label, grids[1].Label)
	}
}

func TestSweepExpiresIdleSessions(t *testing.T) {
	clock := newFakeClock()
	r := newTestRegistry(t, clock)

	idle := r.Create()
	active := r.Create()

	clock.Advance(20 * time.Minute)
	if _, ok := r.Get(active.ID); !ok {
		t.Fatal("active session missing")
	}
	clock.Advance(15 * time.Minute)

	if n := r.Sweep(); n != 1 {
		t.Fatalf("swept %d sessions, want 1", n)
	}
	if _, ok := r.Get(idle.ID); ok {
		t.Error("idle session survived the sweep")
	}
	if _, ok := r.Get(active.ID); !ok {
		t.Error("active session was swept")
	}
}

func TestRegistryNotBlockedByBusySession(t *testing.T) {
	clock := newFakeClock()
	r := newTestRegistry(t, clock)

	busy := r.Create()
	other := r.Create()

	// Simulate a session stuck in a slow operation that holds its mutex,
	// the way Book does across its outbound send.
	busy.mu.Lock()
	defer busy.mu.Unlock()

	done := make(chan struct{})
	go func() {
		if _, ok := r.Get(other.ID); !ok {
			t.Error("lookup of an idle session failed")
		}
		clock.Advance(time.Hour)
		if n := r.Sweep(); n != 2 {
			t.Errorf("swept %d sessions, want 2", n)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("registry blocked behind a busy session")
	}
}

func TestRunSweepsOnTick(t *testing.T) {
	clock := newFakeClock()
	tick := make(chan time.Time)
	r := NewRegistry(RegistryConfig{
		Blocked: availability.NewStore(),
		Today:   testToday,
		TTL:     30 * time.Minute,
		Now:     clock.Now,
		Tick:    tick,
		Stop:    func() {},
	})
	r.Create()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	clock.Advance(time.Hour)
	tick <- time.Now()

	deadline := time.After(2 * time.Second)
	for r.Count() != 0 {
		select {
		case <-deadline:
			t.Fatal("session not expired after tick")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	<-done
}

func TestBookThroughSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	store := availability.NewStore()
	r := NewRegistry(RegistryConfig{
		Blocked: store,
		Today:   testToday,
		Now:     newFakeClock().Now,
		Tick:    make(chan time.Time),
		Stop:    func() {},
	})
	s := r.Create()
	if err := s.Select(calendar.NewDate(2025, time.August, 10)); err != nil {
		t.Fatalf("anchor: %v", err)
	}
	if err := s.Select(calendar.NewDate(2025, time.August, 14)); err != nil {
		t.Fatalf("commit: %v", err)
	}

	sub, err := booking.NewSubmitter(booking.Config{
		Endpoint:    srv.URL,
		NightlyRate: 227,
		Store:       store,
	})
	if err != nil {
		t.Fatalf("NewSubmitter: %v", err)
	}

	q, err := s.Book(context.Background(), sub, booking.Contact{
		FirstName: "Avery",
		LastName:  "Collins",
		Email:     "avery@example.com",
		Phone:     "555-0142",
	})
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if q.Nights != 4 {
		t.Errorf("nights = %d, want 4", q.Nights)
	}
	if s.Snapshot().State != selection.StateEmpty {
		t.Error("selection not reset after booking")
	}
	if !store.IsBlocked(calendar.NewDate(2025, time.August, 12)) {
		t.Error("booked range not held in store")
	}
}
