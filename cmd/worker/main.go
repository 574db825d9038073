package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sejaldua/nba-scorigami/internal/cache"
	"github.com/sejaldua/nba-scorigami/internal/client"
	"github.com/sejaldua/nba-scorigami/internal/config"
	"github.com/sejaldua/nba-scorigami/internal/ingest"
	"github.com/sejaldua/nba-scorigami/internal/metrics"
	"github.com/sejaldua/nba-scorigami/internal/notify"
	"github.com/sejaldua/nba-scorigami/internal/repository"
	"github.com/sejaldua/nba-scorigami/internal/scheduler"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Setup logger
	setupLogger()

	log.Info().Msg("Starting NBA Scorigami Worker")

	// Load configuration
	cfg := config.MustLoad()
	log.Info().
		Str("env", cfg.AppEnv).
		Str("log_level", cfg.LogLevel).
		Bool("dry_run", cfg.DryRun).
		Msg("Configuration loaded")

	// Create context that listens for cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal, gracefully shutting down...")
		cancel()
	}()

	// Initialize upstream clients
	statsClient := client.NewStatsClient(cfg.StatsBaseURL, cfg.StatsTimeout)
	scoreboardClient := client.NewScoreboardClient(cfg.ScoreboardBaseURL, cfg.ScoreboardTimeout)
	log.Info().Msg("Upstream clients initialized")

	// Initialize database connection
	dbConfig := repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     strconv.Itoa(cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	}

	db, err := repository.NewDatabase(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure database schema")
	}
	log.Info().Msg("Database connection established")

	// Initialize Redis client. The cache is an optimization for historical
	// season payloads; the worker runs fine without it.
	var seasonCache ingest.SeasonCache
	redisCache, err := cache.NewRedisCache(cache.Config{
		Host:     cfg.RedisHost,
		Port:     strconv.Itoa(cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to connect to Redis - continuing without cache")
	} else {
		defer redisCache.Close()
		seasonCache = redisCache
		log.Info().Msg("Redis cache connected")
	}

	// Initialize the notification channel
	dedupLog := notify.NewDedupLog(cfg.NotifyLogPath)

	var notifier scheduler.Notifier
	if cfg.DryRun {
		notifier = &notify.LogNotifier{}
		log.Info().Msg("Dry run enabled - announcements will be logged, not posted")
	} else {
		notifier = notify.NewTwitterClient(
			cfg.TwitterAPIKey,
			cfg.TwitterAPISecret,
			cfg.TwitterAccessToken,
			cfg.TwitterAccessSecret,
			cfg.TwitterTimeout,
		)
		log.Info().Msg("Twitter client initialized")
	}

	// Start metrics HTTP server
	go startMetricsServer(strconv.Itoa(cfg.MetricsPort), db)

	// Update system uptime metric
	startTime := time.Now()
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.SystemUptime.Set(time.Since(startTime).Seconds())
			case <-ctx.Done():
				return
			}
		}
	}()

	// Create and start scheduler
	sched := scheduler.NewScheduler(cfg, scoreboardClient, statsClient, db.Games, seasonCache, dedupLog, notifier)

	if cfg.EnableScheduler {
		log.Info().Msg("Starting scheduler...")
		if err := sched.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to start scheduler")
		}
	}

	// Run an immediate scan if enabled
	if cfg.RunOnStart {
		log.Info().Msg("Running startup scan...")
		if err := sched.RunDailyScan(ctx); err != nil {
			log.Error().Err(err).Msg("Startup scan failed, continuing anyway...")
		} else {
			log.Info().Msg("Startup scan completed successfully")
		}
	}

	// Keep running until context is cancelled
	<-ctx.Done()

	// Graceful shutdown
	log.Info().Msg("Shutting down scheduler...")
	sched.Stop()

	log.Info().Msg("Worker shutdown complete")
}

// setupLogger configures the zerolog logger
func setupLogger() {
	// Pretty console logging in development
	if os.Getenv("APP_ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	// Set log level
	level := zerolog.InfoLevel
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		parsedLevel, err := zerolog.ParseLevel(lvl)
		if err == nil {
			level = parsedLevel
		}
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("level", level.String()).
		Msg("Logger initialized")
}

// startMetricsServer starts the Prometheus metrics HTTP server
func startMetricsServer(port string, db *repository.Database) {
	http.Handle("/metrics", promhttp.Handler())

	// Health check endpoint
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Health(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	addr := fmt.Sprintf(":%s", port)
	log.Info().Str("port", port).Msg("Starting metrics server")

	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Error().Err(err).Msg("Metrics server failed")
	}
}
