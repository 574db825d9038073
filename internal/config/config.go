package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// League stats API (season game logs)
	StatsBaseURL string        `envconfig:"STATS_BASE_URL" default:"https://stats.nba.com/stats"`
	StatsTimeout time.Duration `envconfig:"STATS_TIMEOUT" default:"120s"`

	// Scoreboard API (day schedule and final scores)
	ScoreboardBaseURL string        `envconfig:"SCOREBOARD_BASE_URL" default:"https://site.api.espn.com/apis/site/v2/sports/basketball/nba"`
	ScoreboardTimeout time.Duration `envconfig:"SCOREBOARD_TIMEOUT" default:"15s"`

	// Twitter (OAuth1 user context)
	TwitterAPIKey       string        `envconfig:"TWITTER_API_KEY" default:""`
	TwitterAPISecret    string        `envconfig:"TWITTER_API_SECRET" default:""`
	TwitterAccessToken  string        `envconfig:"TWITTER_ACCESS_TOKEN" default:""`
	TwitterAccessSecret string        `envconfig:"TWITTER_ACCESS_SECRET" default:""`
	TwitterTimeout      time.Duration `envconfig:"TWITTER_TIMEOUT" default:"30s"`

	// DryRun logs announcements instead of posting them.
	DryRun bool `envconfig:"DRY_RUN" default:"false"`

	// Database (durable ledger snapshot)
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"scorigami"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"scorigami_user"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD" required:"true"`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`

	// Redis (season payload cache, optional)
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Ingestion retry policy
	FetchMaxRetries int           `envconfig:"FETCH_MAX_RETRIES" default:"5"`
	FetchBaseDelay  time.Duration `envconfig:"FETCH_BASE_DELAY" default:"1s"`

	// First season tracked by the ledger (the earliest the provider serves
	// reliable game logs for).
	ScanStartSeason int `envconfig:"SCAN_START_SEASON" default:"1996"`

	// Notification dedup log
	NotifyLogPath string `envconfig:"NOTIFY_LOG_PATH" default:"tweeted_games.txt"`

	// Scheduler
	EnableScheduler bool   `envconfig:"ENABLE_SCHEDULER" default:"true"`
	DailyScanCron   string `envconfig:"DAILY_SCAN_CRON" default:"0 7 * * *"`
	RunOnStart      bool   `envconfig:"RUN_ON_START" default:"true"`
	// ScanPreviousDay also scans yesterday's scoreboard, catching games
	// that went final after midnight.
	ScanPreviousDay bool `envconfig:"SCAN_PREVIOUS_DAY" default:"true"`

	// Monitoring
	MetricsPort int `envconfig:"METRICS_PORT" default:"9090"`
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if in development mode
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.DatabasePassword == "" {
		return fmt.Errorf("DATABASE_PASSWORD is required")
	}

	if !c.DryRun && c.TwitterAPIKey == "" {
		return fmt.Errorf("TWITTER_API_KEY is required unless DRY_RUN is set")
	}

	if c.FetchMaxRetries < 1 {
		return fmt.Errorf("FETCH_MAX_RETRIES must be at least 1")
	}

	if c.ScanStartSeason < 1946 {
		return fmt.Errorf("SCAN_START_SEASON predates the league")
	}

	return nil
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// MustLoad loads configuration or panics on error
// Use this in main() where we want to fail fast
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
