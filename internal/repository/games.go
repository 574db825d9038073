package repository

import (
	"context"
	"fmt"

	"github.com/sejaldua/nba-scorigami/internal/models"

	"github.com/rs/zerolog/log"
)

// GameRepository persists the ledger snapshot. Inserts use ON CONFLICT DO
// NOTHING on the game id, mirroring the in-memory first-write-wins merge
// policy: final results never change upstream.
type GameRepository struct {
	db *Database
}

// Insert stores one paired game. Returns false when the game id was already
// present and the row was left untouched.
func (r *GameRepository) Insert(ctx context.Context, game models.PairedGame) (bool, error) {
	query := `
		INSERT INTO paired_games (
			game_id, season_id, game_date, matchup,
			winner_abbr, winner_name, loser_abbr, loser_name,
			points_w, points_l, winner_home, margin
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (game_id) DO NOTHING
	`

	tag, err := r.db.Pool.Exec(ctx, query,
		game.GameID, game.SeasonID, game.GameDate, game.Matchup,
		game.WinnerAbbr, game.WinnerName, game.LoserAbbr, game.LoserName,
		game.PointsW, game.PointsL, game.WinnerHome, game.Margin,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert game %s: %w", game.GameID, err)
	}

	return tag.RowsAffected() > 0, nil
}

// InsertBatch stores many paired games, returning how many were new.
func (r *GameRepository) InsertBatch(ctx context.Context, games []models.PairedGame) (int, error) {
	inserted := 0
	for _, game := range games {
		ok, err := r.Insert(ctx, game)
		if err != nil {
			return inserted, err
		}
		if ok {
			inserted++
		}
	}

	log.Debug().
		Int("games", len(games)).
		Int("inserted", inserted).
		Msg("Snapshot batch written")
	return inserted, nil
}

// LoadAll reconstructs the ledger baseline from the snapshot.
func (r *GameRepository) LoadAll(ctx context.Context) ([]models.PairedGame, error) {
	query := `
		SELECT game_id, season_id, game_date, matchup,
		       winner_abbr, winner_name, loser_abbr, loser_name,
		       points_w, points_l, winner_home, margin
		FROM paired_games
		ORDER BY game_id
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load games: %w", err)
	}
	defer rows.Close()

	var games []models.PairedGame
	for rows.Next() {
		var g models.PairedGame
		err := rows.Scan(
			&g.GameID, &g.SeasonID, &g.GameDate, &g.Matchup,
			&g.WinnerAbbr, &g.WinnerName, &g.LoserAbbr, &g.LoserName,
			&g.PointsW, &g.PointsL, &g.WinnerHome, &g.Margin,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating games: %w", err)
	}

	log.Debug().Int("count", len(games)).Msg("Ledger snapshot loaded")
	return games, nil
}

// Count returns the total number of games in the snapshot.
func (r *GameRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM paired_games`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count games: %w", err)
	}
	return count, nil
}
