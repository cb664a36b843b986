package availability

import (
	"sort"
	"sync"
	"time"

	"github.com/hollytrail/van-booking/internal/calendar"
)

// Store holds the merged set of blocked dates from every platform feed plus
// any locally-held reservations appended after a booking dispatch. Reads see
// either the pre-replace or post-replace set, never a mix.
type Store struct {
	mu sync.RWMutex

	blocked    map[calendar.Date]struct{}
	lastSync   time.Time
	seeded     bool
	appliedSeq uint64
}

func NewStore() *Store {
	return &Store{
		blocked: make(map[calendar.Date]struct{}),
	}
}

// ReplaceAll atomically swaps the blocked set with the supplied dates.
// seq is the sync run's monotonic sequence number; a replace carrying a
// sequence at or below the last applied one is dropped, so a slow older
// sync joining late can never clobber a newer result. Returns whether the
// replace was applied. seeded marks the set as coming from the static
// fallback rather than live feeds.
func (s *Store) ReplaceAll(seq uint64, dates []calendar.Date, seeded bool, asOf time.Time) bool {
	next := make(map[calendar.Date]struct{}, len(dates))
	for _, d := range dates {
		next[d] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq <= s.appliedSeq {
		return false
	}

	s.blocked = next
	s.lastSync = asOf
	s.seeded = seeded
	s.appliedSeq = seq
	return true
}

// AppendRange marks every date in [start, end] blocked. Both endpoints are
// included: this path records a just-confirmed booking, where checkout day
// is held too until the platforms report the real reservation.
func (s *Store) AppendRange(start, end calendar.Date) {
	dates := calendar.RangeDatesInclusive(start, end)
	if len(dates) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range dates {
		s.blocked[d] = struct{}{}
	}
}

// IsBlocked reports whether a single date is unavailable.
func (s *Store) IsBlocked(d calendar.Date) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.blocked[d]
	return ok
}

// HasBlockedBetween reports whether any date strictly inside (start, end)
// is blocked. Endpoints are not examined.
func (s *Store) HasBlockedBetween(start, end calendar.Date) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for d := start.Next(); d.Before(end); d = d.Next() {
		if _, ok := s.blocked[d]; ok {
			return true
		}
	}
	return false
}

// BlockedWithin returns the blocked dates inside [from, to], sorted.
func (s *Store) BlockedWithin(from, to calendar.Date) []calendar.Date {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []calendar.Date
	for d := range s.blocked {
		if d.Before(from) || d.After(to) {
			continue
		}
		out = append(out, d)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Before(out[j])
	})
	return out
}

// Count returns the size of the blocked set.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blocked)
}

// Status describes the store for the availability endpoint.
type Status struct {
	Blocked  int       `json:"blocked"`
	LastSync time.Time `json:"lastSync"`
	Seeded   bool      `json:"seeded"`
}

func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		Blocked:  len(s.blocked),
		LastSync: s.lastSync,
		Seeded:   s.seeded,
	}
}
