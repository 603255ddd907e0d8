package config

import (
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Simulation
	Iterations      int
	FormWindowWeeks int
	WinProbJitter   float64
	PointsJitter    float64
	PlayoffSlots    int
	Workers         int
	Seed            uint64
	ForecastTimeout time.Duration

	// League input sources, tried in order: file, feed, snapshot store.
	LeagueFile     string
	SnapshotDBPath string

	// Remote league feed
	FeedBaseURL    string
	FeedLeagueID   string
	FeedYear       int
	FeedAPIKey     string
	FeedRatePerSec float64
	WeekCacheTTL   time.Duration

	// HTTP API + websocket hub
	HTTPHost string
	HTTPPort int

	// Alerts
	DiscordWebhookURL string

	// Telemetry
	LogLevel string
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Iterations:      envInt("FORECAST_ITERATIONS", 10000),
		FormWindowWeeks: envInt("FORM_WINDOW_WEEKS", 3),
		WinProbJitter:   envFloat("WIN_PROB_JITTER", 0.10),
		PointsJitter:    envFloat("POINTS_JITTER", 0.10),
		PlayoffSlots:    envInt("PLAYOFF_SLOTS", 6),
		Workers:         envInt("SIM_WORKERS", runtime.GOMAXPROCS(0)),
		Seed:            uint64(envInt("SIM_SEED", 0)),
		ForecastTimeout: envDuration("FORECAST_TIMEOUT", 0),

		LeagueFile:     envStr("LEAGUE_FILE", ""),
		SnapshotDBPath: envStr("SNAPSHOT_DB_PATH", "data/snapshots.db"),

		FeedBaseURL:    envStr("FEED_BASE_URL", ""),
		FeedLeagueID:   envStr("FEED_LEAGUE_ID", ""),
		FeedYear:       envInt("FEED_YEAR", time.Now().Year()),
		FeedAPIKey:     envStr("FEED_API_KEY", ""),
		FeedRatePerSec: envFloat("FEED_RATE_PER_SEC", 2),
		WeekCacheTTL:   envDuration("WEEK_CACHE_TTL", 30*time.Minute),

		HTTPHost: envStr("HTTP_HOST", "0.0.0.0"),
		HTTPPort: envInt("HTTP_PORT", 8090),

		DiscordWebhookURL: envStr("DISCORD_WEBHOOK_URL", ""),

		LogLevel: envStr("LOG_LEVEL", "info"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// envDuration accepts Go duration strings ("30s", "5m") or bare seconds.
func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}
