package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sejaldua/nba-scorigami/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Config holds Redis configuration
type Config struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// RedisCache stores completed-season game log payloads. Historical seasons
// are immutable, so entries carry a long TTL purely as hygiene.
type RedisCache struct {
	client *redis.Client
}

const seasonTTL = 30 * 24 * time.Hour

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(cfg Config) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &RedisCache{client: client}, nil
}

func seasonKey(season int) string {
	return fmt.Sprintf("scorigami:season:%d", season)
}

// GetSeason returns the cached game log rows for a season, if present.
func (c *RedisCache) GetSeason(ctx context.Context, season int) ([]models.GameResult, bool) {
	payload, err := c.client.Get(ctx, seasonKey(season)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		log.Warn().Err(err).Int("season", season).Msg("Season cache read failed")
		return nil, false
	}

	var rows []models.GameResult
	if err := json.Unmarshal(payload, &rows); err != nil {
		log.Warn().Err(err).Int("season", season).Msg("Season cache payload corrupt, ignoring")
		return nil, false
	}

	log.Debug().Int("season", season).Int("rows", len(rows)).Msg("Season served from cache")
	return rows, true
}

// SetSeason caches the game log rows for a completed season.
func (c *RedisCache) SetSeason(ctx context.Context, season int, rows []models.GameResult) error {
	payload, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("failed to marshal season payload: %w", err)
	}

	if err := c.client.Set(ctx, seasonKey(season), payload, seasonTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache season %d: %w", season, err)
	}
	return nil
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
