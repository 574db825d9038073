package ingest

import (
	"context"

	"github.com/sejaldua/nba-scorigami/internal/models"

	"github.com/rs/zerolog/log"
)

// SeasonCache caches completed-season game logs. Historical seasons are
// immutable, so cached payloads never go stale.
type SeasonCache interface {
	GetSeason(ctx context.Context, season int) ([]models.GameResult, bool)
	SetSeason(ctx context.Context, season int, rows []models.GameResult) error
}

// WithSeasonCache wraps fetch so completed seasons are served from and
// written through to the cache. The current season is still accumulating
// games and always goes to the upstream API. A nil cache returns fetch
// unchanged.
func WithSeasonCache(fetch FetchFunc, cache SeasonCache, currentSeason int) FetchFunc {
	if cache == nil {
		return fetch
	}
	return func(ctx context.Context, season int) ([]models.GameResult, error) {
		if season >= currentSeason {
			return fetch(ctx, season)
		}
		if rows, ok := cache.GetSeason(ctx, season); ok {
			return rows, nil
		}
		rows, err := fetch(ctx, season)
		if err != nil {
			return nil, err
		}
		if err := cache.SetSeason(ctx, season, rows); err != nil {
			log.Warn().Err(err).Int("season", season).Msg("Failed to cache season payload")
		}
		return rows, nil
	}
}
