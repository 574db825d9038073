package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// Database holds the connection pool and provides access to repositories.
// Postgres is only the durable snapshot of the ledger; the in-memory ledger
// remains the structure queries run against.
type Database struct {
	Pool *pgxpool.Pool

	Games *GameRepository
}

// Config holds database configuration
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
}

// NewDatabase creates a new database connection pool and initializes repositories
func NewDatabase(ctx context.Context, cfg Config) (*Database, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
		cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	// The worker is a short sequential batch, not a request server.
	poolConfig.MaxConns = 5
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().
		Str("host", cfg.Host).
		Str("port", cfg.Port).
		Str("database", cfg.Database).
		Msg("Successfully connected to database")

	db := &Database{
		Pool: pool,
	}
	db.Games = &GameRepository{db: db}

	return db, nil
}

// EnsureSchema creates the snapshot table when it does not exist yet, so a
// fresh deployment can run without a separate migration step.
func (db *Database) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS paired_games (
			game_id      TEXT PRIMARY KEY,
			season_id    TEXT NOT NULL,
			game_date    DATE NOT NULL,
			matchup      TEXT NOT NULL,
			winner_abbr  TEXT NOT NULL,
			winner_name  TEXT NOT NULL,
			loser_abbr   TEXT NOT NULL,
			loser_name   TEXT NOT NULL,
			points_w     INT NOT NULL,
			points_l     INT NOT NULL,
			winner_home  BOOLEAN NOT NULL,
			margin       INT NOT NULL,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CHECK (points_w > points_l)
		)
	`

	if _, err := db.Pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// Close closes the database connection pool
func (db *Database) Close() {
	if db.Pool != nil {
		db.Pool.Close()
		log.Info().Msg("Database connection pool closed")
	}
}

// Health checks if the database is healthy
func (db *Database) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.Pool.Ping(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	return nil
}
