package repository

import (
	"context"
	"testing"
	"time"

	"github.com/sejaldua/nba-scorigami/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Integration tests against a local Postgres; skipped when no database is
// reachable.

func setupTestDB(t *testing.T) (*Database, context.Context) {
	ctx := context.Background()

	cfg := Config{
		Host:     "localhost",
		Port:     "5432",
		Database: "scorigami_test",
		User:     "scorigami_user",
		Password: "scorigami_password",
		SSLMode:  "disable",
	}

	db, err := NewDatabase(ctx, cfg)
	if err != nil {
		t.Skipf("test database unavailable: %v", err)
	}
	require.NoError(t, db.EnsureSchema(ctx))

	_, err = db.Pool.Exec(ctx, `TRUNCATE paired_games`)
	require.NoError(t, err)

	return db, ctx
}

func teardownTestDB(t *testing.T, db *Database) {
	db.Close()
}

func snapshotGame(id string, pointsW, pointsL int) models.PairedGame {
	return models.PairedGame{
		GameID:     id,
		SeasonID:   "22023",
		GameDate:   time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Matchup:    "BOS vs. TOR",
		WinnerAbbr: "BOS",
		WinnerName: "Boston Celtics",
		LoserAbbr:  "TOR",
		LoserName:  "Toronto Raptors",
		PointsW:    pointsW,
		PointsL:    pointsL,
		WinnerHome: true,
		Margin:     pointsW - pointsL,
	}
}

func TestGameRepository_InsertIsFirstWriteWins(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	inserted, err := db.Games.Insert(ctx, snapshotGame("0022300061", 121, 109))
	require.NoError(t, err)
	assert.True(t, inserted)

	// Same id with different values: the existing row wins.
	inserted, err = db.Games.Insert(ctx, snapshotGame("0022300061", 130, 100))
	require.NoError(t, err)
	assert.False(t, inserted, "conflicting insert should be a no-op")

	games, err := db.Games.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, 121, games[0].PointsW)
}

func TestGameRepository_InsertBatchAndLoadAll(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	batch := []models.PairedGame{
		snapshotGame("0022300061", 121, 109),
		snapshotGame("0022300062", 99, 95),
	}

	count, err := db.Games.InsertBatch(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Overlapping re-ingest only counts the new game.
	count, err = db.Games.InsertBatch(ctx, append(batch, snapshotGame("0022300063", 111, 108)))
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	games, err := db.Games.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, games, 3)
	assert.Equal(t, "0022300061", games[0].GameID, "load order is by game id")

	total, err := db.Games.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
}

func TestGameRepository_IntegrityCheckRejectsBadRow(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	bad := snapshotGame("0022300070", 100, 100)
	_, err := db.Games.Insert(ctx, bad)
	assert.Error(t, err, "the points_w > points_l check also holds at the snapshot layer")
}
