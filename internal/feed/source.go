package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hollytrail/van-booking/internal/calendar"
	"github.com/hollytrail/van-booking/pkg/logging"
)

// Source is one third-party booking platform's calendar export.
type Source struct {
	Platform string
	URL      string
}

// Result is the outcome of fetching one source. A failed fetch is not an
// error for the caller: Dates is simply empty (or stale from cache) and the
// widget carries on with partial data.
type Result struct {
	Platform string
	Dates    []calendar.Date
	Stale    bool
	Err      error
}

// Status returns the metrics label for the fetch outcome.
func (r Result) Status() string {
	switch {
	case r.Err == nil:
		return "ok"
	case r.Stale:
		return "stale"
	default:
		return "failed"
	}
}

// Fetcher pulls and parses platform calendar feeds, optionally through a
// CORS relay and with a last-known-good payload cache behind it.
type Fetcher struct {
	httpClient *http.Client
	relayURL   string
	cache      *PayloadCache
	logger     *logging.Logger
}

type FetcherConfig struct {
	// RelayURL, when set, is prefixed to the URL-encoded source URL, the way
	// browser widgets route feed requests through a CORS relay.
	RelayURL string

	HTTPClient *http.Client
	Cache      *PayloadCache
	Logger     *logging.Logger
}

func NewFetcher(cfg FetcherConfig) *Fetcher {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Fetcher{
		httpClient: httpClient,
		relayURL:   strings.TrimSpace(cfg.RelayURL),
		cache:      cfg.Cache,
		logger:     logger,
	}
}

// Fetch retrieves one source and parses it. On transport or HTTP failure it
// falls back to the cached payload when one exists; the returned Result's
// Err records what went wrong upstream either way.
func (f *Fetcher) Fetch(ctx context.Context, src Source) Result {
	res := Result{Platform: src.Platform}

	payload, err := f.fetchRaw(ctx, src)
	if err != nil {
		res.Err = err
		if cached, ok := f.cache.Load(ctx, src.Platform); ok {
			res.Dates = ParseICS(cached)
			res.Stale = true
			f.logger.Warn("feed fetch failed, serving cached payload",
				"platform", src.Platform,
				"dates", len(res.Dates),
				"error", err,
			)
			return res
		}
		f.logger.Warn("feed fetch failed with no cached payload",
			"platform", src.Platform,
			"error", err,
		)
		return res
	}

	res.Dates = ParseICS(payload)
	if err := f.cache.Store(ctx, src.Platform, payload); err != nil {
		f.logger.Warn("failed to cache feed payload", "platform", src.Platform, "error", err)
	}

	f.logger.Info("feed fetched",
		"platform", src.Platform,
		"dates", len(res.Dates),
	)
	return res
}

func (f *Fetcher) fetchRaw(ctx context.Context, src Source) (string, error) {
	target := src.URL
	if f.relayURL != "" {
		target = f.relayURL + url.QueryEscape(src.URL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("feed: build request for %s: %w", src.Platform, err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("feed: fetch %s: %w", src.Platform, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("feed: fetch %s: unexpected status %d", src.Platform, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("feed: read %s body: %w", src.Platform, err)
	}
	if len(body) == 0 {
		return "", errors.New("feed: fetch " + src.Platform + ": empty body")
	}

	return string(body), nil
}
