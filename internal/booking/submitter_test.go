package booking

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hollytrail/van-booking/internal/availability"
	"github.com/hollytrail/van-booking/internal/calendar"
	"github.com/hollytrail/van-booking/internal/selection"
)

func fixedToday() calendar.Date {
	return calendar.NewDate(2025, time.August, 1)
}

func committedSelector(t *testing.T, store *availability.Store) *selection.Selector {
	t.Helper()
	sel := selection.New(store, fixedToday)
	if err := sel.SelectDate(calendar.NewDate(2025, time.August, 10)); err != nil {
		t.Fatalf("anchor: %v", err)
	}
	if err := sel.SelectDate(calendar.NewDate(2025, time.August, 14)); err != nil {
		t.Fatalf("commit: %v", err)
	}
	return sel
}

func validContact() Contact {
	return Contact{
		FirstName: "Avery",
		LastName:  "Collins",
		Email:     "avery@example.com",
		Phone:     "555-0142",
	}
}

func newSubmitter(t *testing.T, endpoint string, store *availability.Store) *Submitter {
	t.Helper()
	sub, err := NewSubmitter(Config{
		Endpoint:    endpoint,
		NightlyRate: 227,
		Store:       store,
	})
	if err != nil {
		t.Fatalf("NewSubmitter: %v", err)
	}
	return sub
}

func TestSubmitDispatchesPayload(t *testing.T) {
	var got payload
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
	}))
	defer srv.Close()

	store := availability.NewStore()
	sel := committedSelector(t, store)
	sub := newSubmitter(t, srv.URL, store)

	quote, err := sub.Submit(context.Background(), sel, validContact())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", calls.Load())
	}

	if got.FirstName != "Avery" || got.LastName != "Collins" {
		t.Errorf("name = %q %q", got.FirstName, got.LastName)
	}
	if got.CheckIn != "8/10/2025" {
		t.Errorf("checkIn = %q", got.CheckIn)
	}
	if got.CheckOut != "8/14/2025" {
		t.Errorf("checkOut = %q", got.CheckOut)
	}
	if got.Total != "$908.00" {
		t.Errorf("total = %q", got.Total)
	}
	if got.SelectedDates != "8/10/2025 → 8/14/2025" {
		t.Errorf("selectedDates = %q", got.SelectedDates)
	}
	if quote.Nights != 4 {
		t.Errorf("nights = %d, want 4", quote.Nights)
	}
}

func TestSubmitOptimisticallyHoldsRange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	store := availability.NewStore()
	sel := committedSelector(t, store)
	sub := newSubmitter(t, srv.URL, store)

	if _, err := sub.Submit(context.Background(), sel, validContact()); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	// Both endpoints of the stay are held, inclusive.
	for day := 10; day <= 14; day++ {
		if !store.IsBlocked(calendar.NewDate(2025, time.August, day)) {
			t.Errorf("day %d not blocked after submit", day)
		}
	}
	if sel.State() != selection.StateEmpty {
		t.Errorf("state = %v, want Empty", sel.State())
	}
}

func TestSubmitIgnoresResponseStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	store := availability.NewStore()
	sel := committedSelector(t, store)
	sub := newSubmitter(t, srv.URL, store)

	if _, err := sub.Submit(context.Background(), sel, validContact()); err != nil {
		t.Fatalf("Submit returned error for non-2xx response: %v", err)
	}
	if sel.State() != selection.StateEmpty {
		t.Errorf("state = %v, want Empty", sel.State())
	}
}

func TestSubmitRequiresCommittedRange(t *testing.T) {
	store := availability.NewStore()
	sel := selection.New(store, fixedToday)
	sub := newSubmitter(t, "http://127.0.0.1:0", store)

	_, err := sub.Submit(context.Background(), sel, validContact())
	if !errors.Is(err, ErrNotCommitted) {
		t.Fatalf("err = %v, want ErrNotCommitted", err)
	}

	// Anchored is not enough either.
	if err := sel.SelectDate(calendar.NewDate(2025, time.August, 10)); err != nil {
		t.Fatalf("anchor: %v", err)
	}
	_, err = sub.Submit(context.Background(), sel, validContact())
	if !errors.Is(err, ErrNotCommitted) {
		t.Fatalf("err = %v, want ErrNotCommitted", err)
	}
}

func TestSubmitRejectsInvalidContact(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	store := availability.NewStore()
	sel := committedSelector(t, store)
	sub := newSubmitter(t, srv.URL, store)

	cases := []Contact{
		{LastName: "Collins", Email: "avery@example.com", Phone: "555-0142"},
		{FirstName: "Avery", Email: "avery@example.com", Phone: "555-0142"},
		{FirstName: "Avery", LastName: "Collins", Email: "not-an-email", Phone: "555-0142"},
		{FirstName: "Avery", LastName: "Collins", Email: "avery@example.com"},
	}
	for _, c := range cases {
		_, err := sub.Submit(context.Background(), sel, c)
		if !errors.Is(err, ErrInvalidContact) {
			t.Errorf("contact %+v: err = %v, want ErrInvalidContact", c, err)
		}
	}

	if calls.Load() != 0 {
		t.Errorf("calls = %d, want 0", calls.Load())
	}
	if sel.State() != selection.StateCommitted {
		t.Errorf("state = %v, want Committed", sel.State())
	}
}

func TestSubmitTransportFailureLeavesStateIntact(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	store := availability.NewStore()
	sel := committedSelector(t, store)
	sub := newSubmitter(t, srv.URL, store)

	_, err := sub.Submit(context.Background(), sel, validContact())
	if !errors.Is(err, ErrSendFailed) {
		t.Fatalf("err = %v, want ErrSendFailed", err)
	}
	if sel.State() != selection.StateCommitted {
		t.Errorf("state = %v, want Committed after failed send", sel.State())
	}
	if store.Count() != 0 {
		t.Errorf("blocked count = %d, want 0 after failed send", store.Count())
	}
}

func TestNewSubmitterValidation(t *testing.T) {
	store := availability.NewStore()
	if _, err := NewSubmitter(Config{Store: store}); err == nil {
		t.Error("expected error for missing endpoint")
	}
	if _, err := NewSubmitter(Config{Endpoint: "http://example.com"}); err == nil {
		t.Error("expected error for missing store")
	}
}
