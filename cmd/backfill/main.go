// Command backfill seeds the durable ledger with every season from the
// configured start season through the one in play. The load is idempotent:
// games already in the ledger are left untouched, so the command can be
// re-run safely after a partial failure.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sejaldua/nba-scorigami/internal/cache"
	"github.com/sejaldua/nba-scorigami/internal/client"
	"github.com/sejaldua/nba-scorigami/internal/config"
	"github.com/sejaldua/nba-scorigami/internal/ingest"
	"github.com/sejaldua/nba-scorigami/internal/ledger"
	"github.com/sejaldua/nba-scorigami/internal/models"
	"github.com/sejaldua/nba-scorigami/internal/repository"

	"github.com/rs/zerolog/log"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := config.MustLoad()

	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     fmt.Sprintf("%d", cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	log.Info().Msg("Validating service health...")
	if err := db.Health(ctx); err != nil {
		log.Fatal().Err(err).Msg("Database health check failed")
	}
	if err := db.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure database schema")
	}

	var seasonCache ingest.SeasonCache
	redisCache, err := cache.NewRedisCache(cache.Config{
		Host:     cfg.RedisHost,
		Port:     fmt.Sprintf("%d", cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to connect to Redis - continuing without cache")
	} else {
		defer redisCache.Close()
		seasonCache = redisCache
	}

	statsClient := client.NewStatsClient(cfg.StatsBaseURL, cfg.StatsTimeout)
	currentSeason := ingest.CurrentSeason(time.Now().UTC())

	log.Info().
		Int("start", cfg.ScanStartSeason).
		Int("end", currentSeason).
		Msg("Starting season backfill")

	fetch := ingest.WithSeasonCache(statsClient.FetchSeasonGameLog, seasonCache, currentSeason)
	games, err := ingest.FetchAllSeasons(ctx, cfg.ScanStartSeason, currentSeason, fetch, ingest.BatchOptions{
		Options: ingest.Options{
			MaxRetries: cfg.FetchMaxRetries,
			BaseDelay:  cfg.FetchBaseDelay,
		},
		SkipExhausted: true,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Season backfill failed")
	}

	// Load whatever is already persisted so the merge only surfaces new
	// games, then write those back.
	baseline, err := db.Games.LoadAll(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load existing ledger")
	}
	led := ledger.FromGames(baseline)
	newIDs := led.Merge(games)

	inserted := 0
	if len(newIDs) > 0 {
		batch := make([]models.PairedGame, 0, len(newIDs))
		for _, id := range newIDs {
			if g, ok := led.Get(id); ok {
				batch = append(batch, g)
			}
		}
		inserted, err = db.Games.InsertBatch(ctx, batch)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to persist backfilled games")
		}
	}

	matrix := ledger.BuildMatrix(led)
	log.Info().
		Int("fetched", len(games)).
		Int("merged", len(newIDs)).
		Int("inserted", inserted).
		Int("ledger_size", led.Size()).
		Int("distinct_scores", len(matrix)).
		Msg("Season backfill complete.")
}
