package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hollytrail/van-booking/internal/booking"
	"github.com/hollytrail/van-booking/internal/calendar"
	"github.com/hollytrail/van-booking/internal/pricing"
	"github.com/hollytrail/van-booking/internal/selection"
	"github.com/hollytrail/van-booking/internal/session"
	"github.com/hollytrail/van-booking/internal/view"
	"github.com/hollytrail/van-booking/pkg/logging"
)

type SessionsConfig struct {
	Registry    *session.Registry
	Builder     *view.Builder
	Submitter   *booking.Submitter
	NightlyRate float64
	Logger      *logging.Logger
}

// SessionsHandler serves the per-visitor widget endpoints: selection events,
// the two-month calendar, quotes and booking submission.
type SessionsHandler struct {
	registry    *session.Registry
	builder     *view.Builder
	submitter   *booking.Submitter
	nightlyRate float64
	logger      *logging.Logger
}

func NewSessionsHandler(cfg SessionsConfig) *SessionsHandler {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &SessionsHandler{
		registry:    cfg.Registry,
		builder:     cfg.Builder,
		submitter:   cfg.Submitter,
		nightlyRate: cfg.NightlyRate,
		logger:      logger.Named("sessions"),
	}
}

type sessionResponse struct {
	ID    string `json:"id"`
	Pivot string `json:"pivot"`
}

// Create opens a new widget session.
// Route: POST /sessions
func (h *SessionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	s := h.registry.Create()
	respondJSON(w, http.StatusCreated, sessionResponse{ID: s.ID, Pivot: s.Pivot().Label()})
}

func (h *SessionsHandler) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := chi.URLParam(r, "sessionID")
	s, ok := h.registry.Get(id)
	if !ok {
		respondError(w, http.StatusNotFound, "session not found", "session_not_found")
		return nil, false
	}
	return s, true
}

type calendarResponse struct {
	Pivot     string             `json:"pivot"`
	Months    []view.MonthGrid   `json:"months"`
	Selection selection.Snapshot `json:"selection"`
}

// Calendar renders the session's two-month grid.
// Route: GET /sessions/{sessionID}/calendar
func (h *SessionsHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, calendarResponse{
		Pivot:     s.Pivot().Label(),
		Months:    s.Calendar(h.builder),
		Selection: s.Snapshot(),
	})
}

type dateRequest struct {
	Date string `json:"date"`
}

func decodeDate(w http.ResponseWriter, r *http.Request) (calendar.Date, bool) {
	var req dateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", "bad_request")
		return calendar.Date{}, false
	}
	d, err := calendar.ParseDate(req.Date)
	if err != nil {
		respondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD", "bad_date")
		return calendar.Date{}, false
	}
	return d, true
}

type selectionResponse struct {
	Selection selection.Snapshot `json:"selection"`
	Quote     *pricing.Quote     `json:"quote,omitempty"`
}

func (h *SessionsHandler) selectionBody(s *session.Session) selectionResponse {
	resp := selectionResponse{Selection: s.Snapshot()}
	if q, ok := s.Quote(h.nightlyRate); ok {
		resp.Quote = &q
	}
	return resp
}

// Select runs one date-click through the selection state machine.
// Route: POST /sessions/{sessionID}/select
func (h *SessionsHandler) Select(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	d, ok := decodeDate(w, r)
	if !ok {
		return
	}

	if err := s.Select(d); err != nil {
		switch {
		case errors.Is(err, selection.ErrDateBlocked):
			respondError(w, http.StatusConflict, "date is unavailable", "date_blocked")
		case errors.Is(err, selection.ErrDateInPast):
			respondError(w, http.StatusConflict, "date is in the past", "date_in_past")
		case errors.Is(err, selection.ErrRangeCrossesBlocked):
			respondError(w, http.StatusConflict, "range includes an unavailable date", "range_crosses_blocked")
		default:
			h.logger.Error("select failed", "error", err)
			respondError(w, http.StatusInternalServerError, "selection failed", "")
		}
		return
	}
	respondJSON(w, http.StatusOK, h.selectionBody(s))
}

type hoverResponse struct {
	Preview bool `json:"preview"`
}

// Hover sets the preview end date.
// Route: POST /sessions/{sessionID}/hover
func (h *SessionsHandler) Hover(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	d, ok := decodeDate(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, hoverResponse{Preview: s.Hover(d)})
}

// ClearHover drops the preview.
// Route: DELETE /sessions/{sessionID}/hover
func (h *SessionsHandler) ClearHover(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	s.ClearHover()
	respondJSON(w, http.StatusOK, hoverResponse{Preview: false})
}

// Clear forces the selection back to empty.
// Route: POST /sessions/{sessionID}/clear
func (h *SessionsHandler) Clear(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	s.Clear()
	respondJSON(w, http.StatusOK, h.selectionBody(s))
}

type pivotRequest struct {
	Direction string `json:"direction"`
}

type pivotResponse struct {
	Pivot string `json:"pivot"`
}

// Pivot moves the two-month view forward or back.
// Route: POST /sessions/{sessionID}/pivot
func (h *SessionsHandler) Pivot(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var req pivotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", "bad_request")
		return
	}

	var pivot calendar.Month
	switch req.Direction {
	case "next":
		pivot = s.PivotNext()
	case "prev":
		pivot = s.PivotPrev()
	default:
		respondError(w, http.StatusBadRequest, `direction must be "prev" or "next"`, "bad_direction")
		return
	}
	respondJSON(w, http.StatusOK, pivotResponse{Pivot: pivot.Label()})
}

// Quote prices the committed range.
// Route: GET /sessions/{sessionID}/quote
func (h *SessionsHandler) Quote(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	q, ok := s.Quote(h.nightlyRate)
	if !ok {
		respondError(w, http.StatusConflict, "no committed date range", "not_committed")
		return
	}
	respondJSON(w, http.StatusOK, q)
}

type bookResponse struct {
	Status string        `json:"status"`
	Quote  pricing.Quote `json:"quote"`
}

// Book submits the committed range to the external booking endpoint. Dispatch
// is optimistic: 202 means the request went out, not that it was confirmed.
// Route: POST /sessions/{sessionID}/book
func (h *SessionsHandler) Book(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if h.submitter == nil {
		respondError(w, http.StatusServiceUnavailable, "booking not configured", "")
		return
	}

	var contact booking.Contact
	if err := json.NewDecoder(r.Body).Decode(&contact); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", "bad_request")
		return
	}

	q, err := s.Book(r.Context(), h.submitter, contact)
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrNotCommitted):
			respondError(w, http.StatusConflict, "no committed date range", "not_committed")
		case errors.Is(err, booking.ErrInvalidContact):
			respondError(w, http.StatusUnprocessableEntity, "invalid contact details", "invalid_contact")
		case errors.Is(err, booking.ErrSendFailed):
			respondError(w, http.StatusBadGateway, "booking could not be dispatched", "send_failed")
		default:
			h.logger.Error("booking failed", "error", err)
			respondError(w, http.StatusInternalServerError, "booking failed", "")
		}
		return
	}
	respondJSON(w, http.StatusAccepted, bookResponse{Status: "dispatched", Quote: q})
}
