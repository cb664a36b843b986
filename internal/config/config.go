package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Default platform feed URLs. Overridable per environment so staging can
// point at fixture feeds.
const (
	defaultOutdoorsyFeed = "https://api.outdoorsy.com/v0/rentals/271880/ical"
	defaultRVezyFeed     = "https://www.rvezy.com/api/calendar/ical/271880.ics"
	defaultRVshareFeed   = "https://rvshare.com/api/v1/rentals/271880/calendar.ics"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	PublicBaseURL string

	NightlyRate float64

	OutdoorsyFeedURL string
	RVezyFeedURL     string
	RVshareFeedURL   string
	RelayURL         string
	SyncInterval     time.Duration
	FetchTimeout     time.Duration

	SubmitURL string

	RedisAddr     string
	RedisPassword string
	FeedCacheTTL  time.Duration

	SessionTTL time.Duration

	CORSAllowedOrigins []string
	WriteRate          float64
	WriteBurst         int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),

		NightlyRate: getEnvAsFloat("NIGHTLY_RATE", 227),

		OutdoorsyFeedURL: getEnv("OUTDOORSY_FEED_URL", defaultOutdoorsyFeed),
		RVezyFeedURL:     getEnv("RVEZY_FEED_URL", defaultRVezyFeed),
		RVshareFeedURL:   getEnv("RVSHARE_FEED_URL", defaultRVshareFeed),
		RelayURL:         getEnv("FEED_RELAY_URL", ""),
		SyncInterval:     getEnvAsDuration("SYNC_INTERVAL", 30*time.Minute),
		FetchTimeout:     getEnvAsDuration("FEED_FETCH_TIMEOUT", 20*time.Second),

		SubmitURL: getEnv("BOOKING_SUBMIT_URL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		FeedCacheTTL:  getEnvAsDuration("FEED_CACHE_TTL", 7*24*time.Hour),

		SessionTTL: getEnvAsDuration("SESSION_TTL", 30*time.Minute),

		CORSAllowedOrigins: splitAndTrim(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		WriteRate:          getEnvAsFloat("WRITE_RATE_PER_SEC", 1),
		WriteBurst:         getEnvAsInt("WRITE_BURST", 5),
	}
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
