package metrics

import "github.com/prometheus/client_golang/prometheus"

// SyncMetrics exposes counters/histograms for the calendar sync flow.
type SyncMetrics struct {
	fetchTotal   *prometheus.CounterVec
	syncTotal    *prometheus.CounterVec
	syncDuration prometheus.Histogram
	blockedDates prometheus.Gauge
}

func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	m := &SyncMetrics{
		fetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vanbooking",
			Subsystem: "sync",
			Name:      "feed_fetch_total",
			Help:      "Total platform feed fetches",
		}, []string{"platform", "status"}),
		syncTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vanbooking",
			Subsystem: "sync",
			Name:      "runs_total",
			Help:      "Total sync runs by outcome",
		}, []string{"outcome"}),
		syncDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "vanbooking",
			Subsystem: "sync",
			Name:      "duration_seconds",
			Help:      "Duration of full fan-out/join/replace sync runs",
			Buckets:   prometheus.DefBuckets,
		}),
		blockedDates: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "vanbooking",
			Subsystem: "availability",
			Name:      "blocked_dates",
			Help:      "Size of the merged blocked-date set",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.fetchTotal, m.syncTotal, m.syncDuration, m.blockedDates)
	return m
}

func (m *SyncMetrics) ObserveFetch(platform, status string) {
	if m == nil {
		return
	}
	m.fetchTotal.WithLabelValues(platform, status).Inc()
}

func (m *SyncMetrics) ObserveSync(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.syncTotal.WithLabelValues(outcome).Inc()
	m.syncDuration.Observe(seconds)
}

func (m *SyncMetrics) SetBlockedDates(n int) {
	if m == nil {
		return
	}
	m.blockedDates.Set(float64(n))
}

// BookingMetrics counts booking submissions by result.
type BookingMetrics struct {
	submissionsTotal *prometheus.CounterVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vanbooking",
			Subsystem: "booking",
			Name:      "submissions_total",
			Help:      "Total booking submissions by status",
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal)
	return m
}

func (m *BookingMetrics) ObserveSubmission(status string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(status).Inc()
}
