package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestSyncMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSyncMetrics(reg)
	m.ObserveFetch("outdoorsy", "ok")
	m.ObserveFetch("rvezy", "failed")
	m.ObserveSync("ok", 0.4)
	m.SetBlockedDates(42)
}

func TestSyncMetricsNilSafe(t *testing.T) {
	var m *SyncMetrics
	m.ObserveFetch("outdoorsy", "ok")
	m.ObserveSync("seeded", 0.1)
	m.SetBlockedDates(0)
}

func TestBookingMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBookingMetrics(reg)
	m.ObserveSubmission("dispatched")
	m.ObserveSubmission("failed")
}

func TestBookingMetricsNilSafe(t *testing.T) {
	var m *BookingMetrics
	m.ObserveSubmission("dispatched")
}
