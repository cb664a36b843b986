package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hollytrail/van-booking/pkg/logging"
)

func bufferedLogger(buf *bytes.Buffer) *logging.Logger {
	return &logging.Logger{Logger: slog.New(slog.NewJSONHandler(buf, nil))}
}

func TestRequestLoggerUsesChiRequestID(t *testing.T) {
	var buf bytes.Buffer
	h := chimw.RequestID(RequestLogger(bufferedLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))

	req := httptest.NewRequest(http.MethodGet, "/availability", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	out := buf.String()
	if !strings.Contains(out, `"request_id"`) {
		t.Fatalf("no request_id logged: %s", out)
	}
	if strings.Contains(out, `"request_id":""`) {
		t.Errorf("request_id empty, chi's ID not picked up: %s", out)
	}
	if !strings.Contains(out, `"status":418`) {
		t.Errorf("response status not logged: %s", out)
	}
	if !strings.Contains(out, "request started") || !strings.Contains(out, "request completed") {
		t.Errorf("missing start/finish entries: %s", out)
	}
}

func TestRequestLoggerFallsBackToHeader(t *testing.T) {
	var buf bytes.Buffer
	h := RequestLogger(bufferedLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "upstream-id-7")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if !strings.Contains(buf.String(), `"request_id":"upstream-id-7"`) {
		t.Errorf("header request ID not used: %s", buf.String())
	}
}
