package availability

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hollytrail/van-booking/internal/calendar"
	"github.com/hollytrail/van-booking/internal/feed"
	"github.com/hollytrail/van-booking/internal/observability/metrics"
	"github.com/hollytrail/van-booking/pkg/logging"
)

// SourceFetcher pulls one platform feed. *feed.Fetcher is the production
// implementation.
type SourceFetcher interface {
	Fetch(ctx context.Context, src feed.Source) feed.Result
}

// SyncService periodically pulls every platform feed, merges the results and
// replaces the store's blocked set in one step. Sources are fetched
// concurrently; one platform failing degrades to an empty (or cached)
// contribution without disturbing the others.
type SyncService struct {
	fetcher SourceFetcher
	sources []feed.Source
	store   *Store
	seed    []calendar.Date
	metrics *metrics.SyncMetrics
	logger  *logging.Logger
	now     func() time.Time

	seq  atomic.Uint64
	tick <-chan time.Time
	stop func()

	reportMu    sync.Mutex
	lastReports []SourceReport
}

// SourceReport summarizes one platform's contribution to the latest sync.
type SourceReport struct {
	Platform string `json:"platform"`
	Status   string `json:"status"`
	Dates    int    `json:"dates"`
}

type SyncServiceConfig struct {
	Fetcher SourceFetcher
	Sources []feed.Source
	Store   *Store

	// Seed is applied when every source fails outright; defaults to
	// FallbackSeed().
	Seed []calendar.Date

	Interval time.Duration
	Metrics  *metrics.SyncMetrics
	Logger   *logging.Logger
	Now      func() time.Time

	// Tick/Stop override the interval ticker, for tests.
	Tick <-chan time.Time
	Stop func()
}

func NewSyncService(cfg SyncServiceConfig) (*SyncService, error) {
	if cfg.Fetcher == nil {
		return nil, errors.New("availability: sync service requires fetcher")
	}
	if cfg.Store == nil {
		return nil, errors.New("availability: sync service requires store")
	}
	if len(cfg.Sources) == 0 {
		return nil, errors.New("availability: sync service requires at least one source")
	}

	seed := cfg.Seed
	if seed == nil {
		seed = FallbackSeed()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	tick := cfg.Tick
	stop := cfg.Stop
	if tick == nil {
		interval := cfg.Interval
		if interval <= 0 {
			interval = 30 * time.Minute
		}
		ticker := time.NewTicker(interval)
		tick = ticker.C
		stop = ticker.Stop
	}

	return &SyncService{
		fetcher: cfg.Fetcher,
		sources: cfg.Sources,
		store:   cfg.Store,
		seed:    seed,
		metrics: cfg.Metrics,
		logger:  logger,
		now:     now,
		tick:    tick,
		stop:    stop,
	}, nil
}

// Start syncs immediately, then on every tick until the context is done.
func (s *SyncService) Start(ctx context.Context) {
	if s == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer func() {
		if s.stop != nil {
			s.stop()
		}
	}()

	s.SyncOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.tick:
			s.SyncOnce(ctx)
		}
	}
}

// SyncOnce runs one fan-out/join/replace pass and reports the outcome:
// "ok" when at least one feed contributed live data, "stale" when only
// cached payloads were available, "seeded" when the static fallback was
// applied, "skipped" when a newer sync already replaced the set.
func (s *SyncService) SyncOnce(ctx context.Context) string {
	if s == nil || s.store == nil {
		return "skipped"
	}

	seq := s.seq.Add(1)
	started := s.now()

	results := make([]feed.Result, len(s.sources))
	var wg sync.WaitGroup
	for i, src := range s.sources {
		wg.Add(1)
		go func(i int, src feed.Source) {
			defer wg.Done()
			results[i] = s.fetcher.Fetch(ctx, src)
		}(i, src)
	}
	wg.Wait()

	var (
		merged    []calendar.Date
		anyLive   bool
		anyStale  bool
		allFailed = true
	)
	reports := make([]SourceReport, 0, len(results))
	for _, res := range results {
		s.metrics.ObserveFetch(res.Platform, res.Status())
		merged = append(merged, res.Dates...)
		reports = append(reports, SourceReport{
			Platform: res.Platform,
			Status:   res.Status(),
			Dates:    len(res.Dates),
		})
		switch res.Status() {
		case "ok":
			anyLive = true
			allFailed = false
		case "stale":
			anyStale = true
			allFailed = false
		}
	}

	outcome := "ok"
	seeded := false
	if allFailed {
		merged = s.seed
		seeded = true
		outcome = "seeded"
	} else if !anyLive && anyStale {
		outcome = "stale"
	}

	if !s.store.ReplaceAll(seq, merged, seeded, s.now()) {
		outcome = "skipped"
	}

	s.reportMu.Lock()
	s.lastReports = reports
	s.reportMu.Unlock()

	status := s.store.Status()
	s.metrics.SetBlockedDates(status.Blocked)
	s.metrics.ObserveSync(outcome, s.now().Sub(started).Seconds())

	s.logger.Info("calendar sync finished",
		"outcome", outcome,
		"blocked_dates", status.Blocked,
		"sources", len(s.sources),
		"seq", seq,
	)
	return outcome
}

// SourceReports returns the per-platform summary of the latest sync pass.
func (s *SyncService) SourceReports() []SourceReport {
	if s == nil {
		return nil
	}
	s.reportMu.Lock()
	defer s.reportMu.Unlock()
	out := make([]SourceReport, len(s.lastReports))
	copy(out, s.lastReports)
	return out
}
