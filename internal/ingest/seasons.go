package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sejaldua/nba-scorigami/internal/metrics"
	"github.com/sejaldua/nba-scorigami/internal/models"

	"github.com/rs/zerolog/log"
)

// CurrentSeason returns the starting year of the season in play at the given
// time. A season starting in October runs through the following June, so
// January through September still belong to the previous starting year.
func CurrentSeason(now time.Time) int {
	if now.Month() >= time.October {
		return now.Year()
	}
	return now.Year() - 1
}

// BatchOptions tunes the multi-season driver.
type BatchOptions struct {
	Options

	// SeasonPause is the base courtesy pause between consecutive season
	// fetches, stretched by up to two extra seconds of jitter so the
	// upstream rate limiter never sees a fixed cadence. Default 3s.
	SeasonPause time.Duration

	// SkipExhausted keeps the batch going when one season exhausts its
	// retry budget; the season is logged and dropped. When false the batch
	// aborts with the IngestionExhaustedError.
	SkipExhausted bool
}

func (o BatchOptions) withDefaults() BatchOptions {
	o.Options = o.Options.withDefaults()
	if o.SeasonPause <= 0 {
		o.SeasonPause = 3 * time.Second
	}
	return o
}

// FetchAllSeasons fetches and pairs every season in [start, end]. Returned
// games are in season order; overlap dedup is the ledger's job, not ours.
func FetchAllSeasons(ctx context.Context, start, end int, fetch FetchFunc, opts BatchOptions) ([]models.PairedGame, error) {
	opts = opts.withDefaults()

	var all []models.PairedGame
	skipped := 0
	for season := start; season <= end; season++ {
		rows, err := FetchSeason(ctx, season, fetch, opts.Options)
		switch {
		case err == nil:
			paired, perr := models.PairResults(rows)
			if perr != nil {
				return nil, fmt.Errorf("season %d: %w", season, perr)
			}
			all = append(all, paired...)
			metrics.RecordSeasonFetch("success")
			log.Info().
				Int("season", season).
				Int("rows", len(rows)).
				Int("games", len(paired)).
				Msg("Season fetched")
		default:
			var exhausted *IngestionExhaustedError
			if errors.As(err, &exhausted) && opts.SkipExhausted {
				skipped++
				metrics.RecordSeasonFetch("exhausted")
				log.Warn().Err(err).Int("season", season).Msg("Skipping season after exhausting retries")
				break
			}
			return nil, err
		}

		if season < end {
			pause := opts.SeasonPause + time.Duration(opts.Jitter()*float64(2*time.Second))
			if err := opts.Sleep(ctx, pause); err != nil {
				return nil, err
			}
		}
	}

	log.Info().
		Int("start", start).
		Int("end", end).
		Int("games", len(all)).
		Int("skipped_seasons", skipped).
		Msg("Season batch complete")
	return all, nil
}
