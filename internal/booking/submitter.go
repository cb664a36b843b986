// Package booking sends committed reservations to the external booking
// endpoint. The endpoint never confirms the booking in-band, so a dispatched
// request is treated as a tentative hold: the stay is appended to the blocked
// set and the selection resets, with real confirmation handled out of band.
package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/hollytrail/van-booking/internal/calendar"
	"github.com/hollytrail/van-booking/internal/observability/metrics"
	"github.com/hollytrail/van-booking/internal/pricing"
	"github.com/hollytrail/van-booking/internal/selection"
	"github.com/hollytrail/van-booking/pkg/logging"
)

var (
	ErrNotCommitted   = errors.New("booking: selection has no committed range")
	ErrInvalidContact = errors.New("booking: invalid contact details")
	ErrSendFailed     = errors.New("booking: submission could not be dispatched")
)

// Contact holds the guest details collected by the booking form.
type Contact struct {
	FirstName       string `json:"firstName" validate:"required"`
	LastName        string `json:"lastName" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"required"`
	SpecialRequests string `json:"specialRequests"`
}

type payload struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	SpecialRequests string `json:"specialRequests"`
	CheckIn         string `json:"checkIn"`
	CheckOut        string `json:"checkOut"`
	Total           string `json:"total"`
	SelectedDates   string `json:"selectedDates"`
}

// Appender is the write side of the availability store used for the
// optimistic hold.
type Appender interface {
	AppendRange(start, end calendar.Date)
}

type Config struct {
	Endpoint    string
	NightlyRate float64
	Store       Appender
	HTTPClient  *http.Client
	Metrics     *metrics.BookingMetrics
	Logger      *logging.Logger
}

// Submitter builds and dispatches booking payloads.
type Submitter struct {
	endpoint    string
	nightlyRate float64
	store       Appender
	client      *http.Client
	metrics     *metrics.BookingMetrics
	logger      *logging.Logger
	validate    *validator.Validate
}

func NewSubmitter(cfg Config) (*Submitter, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("booking: endpoint is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("booking: store is required")
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Submitter{
		endpoint:    cfg.Endpoint,
		nightlyRate: cfg.NightlyRate,
		store:       cfg.Store,
		client:      client,
		metrics:     cfg.Metrics,
		logger:      logger.Named("booking"),
		validate:    validator.New(),
	}, nil
}

// Submit sends the committed range with the guest's contact details. On a
// dispatched send the stay is appended to the blocked set and the selection
// cleared; a transport failure leaves both untouched so the guest can retry.
// There is a single attempt, no retry, and the response body is not inspected.
func (s *Submitter) Submit(ctx context.Context, sel *selection.Selector, contact Contact) (pricing.Quote, error) {
	start, end, ok := sel.Range()
	if !ok {
		s.metrics.ObserveSubmission("rejected")
		return pricing.Quote{}, ErrNotCommitted
	}
	if err := s.validate.Struct(contact); err != nil {
		s.metrics.ObserveSubmission("rejected")
		return pricing.Quote{}, fmt.Errorf("%w: %w", ErrInvalidContact, err)
	}

	quote := pricing.For(start, end, s.nightlyRate)
	body, err := json.Marshal(payload{
		FirstName:       contact.FirstName,
		LastName:        contact.LastName,
		Email:           contact.Email,
		Phone:           contact.Phone,
		SpecialRequests: contact.SpecialRequests,
		CheckIn:         displayDate(start),
		CheckOut:        displayDate(end),
		Total:           quote.FormattedTotal(),
		SelectedDates:   fmt.Sprintf("%s → %s", displayDate(start), displayDate(end)),
	})
	if err != nil {
		s.metrics.ObserveSubmission("failed")
		return pricing.Quote{}, fmt.Errorf("booking: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		s.metrics.ObserveSubmission("failed")
		return pricing.Quote{}, fmt.Errorf("booking: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.metrics.ObserveSubmission("failed")
		s.logger.Error("booking submission failed", "error", err)
		return pricing.Quote{}, fmt.Errorf("%w: %w", ErrSendFailed, err)
	}
	// Fire-and-forget: the status code and body carry no booking outcome.
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	s.store.AppendRange(start, end)
	sel.Clear()
	s.metrics.ObserveSubmission("accepted")
	s.logger.Info("booking dispatched",
		"checkIn", start.String(),
		"checkOut", end.String(),
		"nights", quote.Nights,
	)
	return quote, nil
}

// displayDate renders a date the way the booking form shows it.
func displayDate(d calendar.Date) string {
	return fmt.Sprintf("%d/%d/%d", int(d.Month), d.Day, d.Year)
}
