package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/hollytrail/van-booking/internal/api/router"
	"github.com/hollytrail/van-booking/internal/availability"
	"github.com/hollytrail/van-booking/internal/booking"
	appconfig "github.com/hollytrail/van-booking/internal/config"
	"github.com/hollytrail/van-booking/internal/feed"
	"github.com/hollytrail/van-booking/internal/http/handlers"
	"github.com/hollytrail/van-booking/internal/observability/metrics"
	"github.com/hollytrail/van-booking/internal/session"
	"github.com/hollytrail/van-booking/internal/view"
	"github.com/hollytrail/van-booking/pkg/logging"
)

func main() {
	// .env is optional; real deployments configure through the environment.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting van-booking API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	syncMetrics := metrics.NewSyncMetrics(prometheus.DefaultRegisterer)
	bookingMetrics := metrics.NewBookingMetrics(prometheus.DefaultRegisterer)

	// Redis keeps the last good payload per feed so a platform outage
	// degrades to stale data instead of an empty calendar.
	var payloadCache *feed.PayloadCache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		payloadCache = feed.NewPayloadCache(rdb, cfg.FeedCacheTTL)
		logger.Info("feed payload cache enabled", "addr", cfg.RedisAddr)
	}

	store := availability.NewStore()

	fetcher := feed.NewFetcher(feed.FetcherConfig{
		HTTPClient: &http.Client{Timeout: cfg.FetchTimeout},
		RelayURL:   cfg.RelayURL,
		Cache:      payloadCache,
		Logger:     logger,
	})

	syncer, err := availability.NewSyncService(availability.SyncServiceConfig{
		Fetcher: fetcher,
		Sources: []feed.Source{
			{Platform: "outdoorsy", URL: cfg.OutdoorsyFeedURL},
			{Platform: "rvezy", URL: cfg.RVezyFeedURL},
			{Platform: "rvshare", URL: cfg.RVshareFeedURL},
		},
		Store:    store,
		Interval: cfg.SyncInterval,
		Metrics:  syncMetrics,
		Logger:   logger,
	})
	if err != nil {
		logger.Error("failed to build sync service", "error", err)
		os.Exit(1)
	}

	registry := session.NewRegistry(session.RegistryConfig{
		Blocked: store,
		TTL:     cfg.SessionTTL,
		Logger:  logger,
	})

	var submitter *booking.Submitter
	if cfg.SubmitURL != "" {
		submitter, err = booking.NewSubmitter(booking.Config{
			Endpoint:    cfg.SubmitURL,
			NightlyRate: cfg.NightlyRate,
			Store:       store,
			Metrics:     bookingMetrics,
			Logger:      logger,
		})
		if err != nil {
			logger.Error("failed to build booking submitter", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Warn("BOOKING_SUBMIT_URL not set, booking submission disabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go syncer.Start(ctx)
	go registry.Run(ctx)

	r := router.New(&router.Config{
		Logger: logger,
		Sessions: handlers.NewSessionsHandler(handlers.SessionsConfig{
			Registry:    registry,
			Builder:     view.NewBuilder(store, nil),
			Submitter:   submitter,
			NightlyRate: cfg.NightlyRate,
			Logger:      logger,
		}),
		Availability: handlers.NewAvailabilityHandler(handlers.AvailabilityConfig{
			Store:  store,
			Syncer: syncer,
			Logger: logger,
		}),
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		WriteRate:          cfg.WriteRate,
		WriteBurst:         cfg.WriteBurst,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
