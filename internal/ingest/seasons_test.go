package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/sejaldua/nba-scorigami/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seasonRows(gameID string, date string) []models.GameResult {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	base := models.GameResult{
		GameID:   gameID,
		SeasonID: "22023",
		GameDate: day,
	}
	win := base
	win.Outcome = models.Win
	win.Points = 110
	win.TeamName = "Winner"
	win.IsHome = true
	loss := base
	loss.Outcome = models.Loss
	loss.Points = 100
	loss.TeamName = "Loser"
	return []models.GameResult{win, loss}
}

func TestFetchAllSeasons_SkipsExhaustedSeasons(t *testing.T) {
	rec := &sleepRecorder{}
	fetch := func(ctx context.Context, season int) ([]models.GameResult, error) {
		if season == 1997 {
			return nil, timeoutErr{}
		}
		return seasonRows("00"+string(rune('0'+season%10))+"0000001", "2024-01-01"), nil
	}

	games, err := FetchAllSeasons(context.Background(), 1996, 1998, fetch, BatchOptions{
		Options: Options{
			MaxRetries: 2,
			BaseDelay:  time.Second,
			Sleep:      rec.Sleep,
			Jitter:     fixedJitter(0),
		},
		SeasonPause:   3 * time.Second,
		SkipExhausted: true,
	})
	require.NoError(t, err)
	assert.Len(t, games, 2, "1996 and 1998 pair one game each; 1997 is skipped")

	// One retry delay inside 1997 plus two inter-season pauses.
	assert.Equal(t, []time.Duration{
		3 * time.Second, // pause after 1996
		1 * time.Second, // retry inside 1997
		3 * time.Second, // pause after 1997
	}, rec.delays)
}

func TestFetchAllSeasons_AbortsWhenSkipDisabled(t *testing.T) {
	rec := &sleepRecorder{}
	fetch := func(ctx context.Context, season int) ([]models.GameResult, error) {
		return nil, timeoutErr{}
	}

	_, err := FetchAllSeasons(context.Background(), 2020, 2021, fetch, BatchOptions{
		Options: Options{MaxRetries: 1, Sleep: rec.Sleep, Jitter: fixedJitter(0)},
	})
	var exhausted *IngestionExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 2020, exhausted.Season)
}

func TestFetchAllSeasons_PausesAreJittered(t *testing.T) {
	rec := &sleepRecorder{}
	fetch := func(ctx context.Context, season int) ([]models.GameResult, error) {
		return nil, nil
	}

	_, err := FetchAllSeasons(context.Background(), 2022, 2023, fetch, BatchOptions{
		Options:     Options{Sleep: rec.Sleep, Jitter: fixedJitter(0.5)},
		SeasonPause: 3 * time.Second,
	})
	require.NoError(t, err)
	require.Len(t, rec.delays, 1)
	assert.Equal(t, 4*time.Second, rec.delays[0], "pause is base + jitter scaled over two seconds")
}

type fakeSeasonCache struct {
	payloads map[int][]models.GameResult
	hits     int
}

func (c *fakeSeasonCache) GetSeason(_ context.Context, season int) ([]models.GameResult, bool) {
	rows, ok := c.payloads[season]
	if ok {
		c.hits++
	}
	return rows, ok
}

func (c *fakeSeasonCache) SetSeason(_ context.Context, season int, rows []models.GameResult) error {
	c.payloads[season] = rows
	return nil
}

func TestWithSeasonCache(t *testing.T) {
	cache := &fakeSeasonCache{payloads: make(map[int][]models.GameResult)}
	calls := 0
	fetch := func(ctx context.Context, season int) ([]models.GameResult, error) {
		calls++
		return seasonRows("0022000001", "2021-01-15"), nil
	}

	cached := WithSeasonCache(fetch, cache, 2023)

	// Historical season: first call goes upstream and fills the cache.
	_, err := cached(context.Background(), 2020)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	// Second call is served from the cache.
	rows, err := cached(context.Background(), 2020)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, cache.hits)

	// Current season always bypasses the cache.
	_, err = cached(context.Background(), 2023)
	require.NoError(t, err)
	_, err = cached(context.Background(), 2023)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	_, ok := cache.payloads[2023]
	assert.False(t, ok, "current season is never written to the cache")
}

func TestWithSeasonCache_NilCache(t *testing.T) {
	calls := 0
	fetch := func(ctx context.Context, season int) ([]models.GameResult, error) {
		calls++
		return nil, nil
	}

	cached := WithSeasonCache(fetch, nil, 2023)
	_, err := cached(context.Background(), 2000)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}
