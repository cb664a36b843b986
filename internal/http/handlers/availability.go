package handlers

import (
	"net/http"
	"time"

	"github.com/hollytrail/van-booking/internal/availability"
	"github.com/hollytrail/van-booking/internal/calendar"
	"github.com/hollytrail/van-booking/pkg/logging"
)

type AvailabilityConfig struct {
	Store  *availability.Store
	Syncer *availability.SyncService
	Logger *logging.Logger
}

// AvailabilityHandler exposes the merged blocked-date set and a manual
// sync trigger.
type AvailabilityHandler struct {
	store  *availability.Store
	syncer *availability.SyncService
	logger *logging.Logger
}

func NewAvailabilityHandler(cfg AvailabilityConfig) *AvailabilityHandler {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &AvailabilityHandler{
		store:  cfg.Store,
		syncer: cfg.Syncer,
		logger: logger.Named("availability"),
	}
}

type availabilityResponse struct {
	Blocked  []calendar.Date             `json:"blocked"`
	LastSync time.Time                   `json:"lastSync"`
	Seeded   bool                        `json:"seeded"`
	Sources  []availability.SourceReport `json:"sources"`
}

// Get returns blocked dates inside the requested window. The window defaults
// to one year starting today.
// Route: GET /availability?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *AvailabilityHandler) Get(w http.ResponseWriter, r *http.Request) {
	from := calendar.Today()
	to := from.AddDays(365)

	if raw := r.URL.Query().Get("from"); raw != "" {
		d, err := calendar.ParseDate(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "from must be YYYY-MM-DD", "bad_date")
			return
		}
		from = d
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		d, err := calendar.ParseDate(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "to must be YYYY-MM-DD", "bad_date")
			return
		}
		to = d
	}

	status := h.store.Status()
	blocked := h.store.BlockedWithin(from, to)
	if blocked == nil {
		blocked = []calendar.Date{}
	}
	respondJSON(w, http.StatusOK, availabilityResponse{
		Blocked:  blocked,
		LastSync: status.LastSync,
		Seeded:   status.Seeded,
		Sources:  h.syncer.SourceReports(),
	})
}

type syncResponse struct {
	Outcome string `json:"outcome"`
	Blocked int    `json:"blocked"`
}

// Sync runs a sync pass immediately instead of waiting for the timer.
// Route: POST /sync
func (h *AvailabilityHandler) Sync(w http.ResponseWriter, r *http.Request) {
	if h.syncer == nil {
		respondError(w, http.StatusServiceUnavailable, "sync not configured", "")
		return
	}
	outcome := h.syncer.SyncOnce(r.Context())
	respondJSON(w, http.StatusOK, syncResponse{Outcome: outcome, Blocked: h.store.Count()})
}

// Health reports liveness.
// Route: GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
