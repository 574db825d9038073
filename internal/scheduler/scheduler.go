package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sejaldua/nba-scorigami/internal/client"
	"github.com/sejaldua/nba-scorigami/internal/config"
	"github.com/sejaldua/nba-scorigami/internal/ingest"
	"github.com/sejaldua/nba-scorigami/internal/ledger"
	"github.com/sejaldua/nba-scorigami/internal/metrics"
	"github.com/sejaldua/nba-scorigami/internal/models"
	"github.com/sejaldua/nba-scorigami/internal/notify"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// ScoreboardAPI provides the day schedule with final scores.
type ScoreboardAPI interface {
	FetchDay(ctx context.Context, day time.Time) ([]client.ScoreboardGame, error)
}

// SeasonAPI provides per-team game log rows for one season.
type SeasonAPI interface {
	FetchSeasonGameLog(ctx context.Context, season int) ([]models.GameResult, error)
}

// SnapshotStore is the durable home of the ledger baseline.
type SnapshotStore interface {
	LoadAll(ctx context.Context) ([]models.PairedGame, error)
	InsertBatch(ctx context.Context, games []models.PairedGame) (int, error)
}

// DedupStore is the durable record of already-announced games. NotifyOnce
// runs its callback under the store's exclusive lock so concurrent runs
// cannot both announce the same game.
type DedupStore interface {
	AlreadyNotified(id string) (bool, error)
	NotifyOnce(id string, send func() error) (bool, error)
}

// Notifier publishes one announcement.
type Notifier interface {
	Post(ctx context.Context, text string) error
}

// Scheduler runs the daily scorigami scan: fetch the scoreboard, refresh
// the ledger, classify every unannounced final game, and announce it at
// most once. One scheduled invocation handles one or two reference dates
// fully sequentially; there is no concurrent ledger access by design.
type Scheduler struct {
	cfg        *config.Config
	scoreboard ScoreboardAPI
	stats      SeasonAPI
	store      SnapshotStore
	cache      ingest.SeasonCache
	dedup      DedupStore
	notifier   Notifier
	cron       *cron.Cron
	now        func() time.Time
}

// NewScheduler creates a scheduler instance. cache may be nil when Redis is
// unavailable.
func NewScheduler(
	cfg *config.Config,
	scoreboard ScoreboardAPI,
	stats SeasonAPI,
	store SnapshotStore,
	cache ingest.SeasonCache,
	dedup DedupStore,
	notifier Notifier,
) *Scheduler {
	return &Scheduler{
		cfg:        cfg,
		scoreboard: scoreboard,
		stats:      stats,
		store:      store,
		cache:      cache,
		dedup:      dedup,
		notifier:   notifier,
		cron:       cron.New(),
		now:        time.Now,
	}
}

// Start schedules the daily scan.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.cfg.DailyScanCron, func() {
		if err := s.RunDailyScan(ctx); err != nil {
			log.Error().Err(err).Msg("Daily scan failed")
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule daily scan: %w", err)
	}

	s.cron.Start()
	log.Info().
		Str("schedule", s.cfg.DailyScanCron).
		Msg("Daily scorigami scan scheduled")
	return nil
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	log.Info().Msg("Scheduler stopped")
}

// RunDailyScan scans the configured reference dates in turn. A failed date
// does not stop the remaining dates; errors are joined and surfaced.
func (s *Scheduler) RunDailyScan(ctx context.Context) error {
	today := s.now().UTC().Truncate(24 * time.Hour)

	var days []time.Time
	if s.cfg.ScanPreviousDay {
		days = append(days, today.AddDate(0, 0, -1))
	}
	days = append(days, today)

	var errs []error
	for _, day := range days {
		start := time.Now()
		err := s.scanDate(ctx, day)
		metrics.RecordScan(time.Since(start).Seconds(), err == nil)
		if err != nil {
			errs = append(errs, fmt.Errorf("scan %s: %w", day.Format("2006-01-02"), err))
			log.Error().Err(err).Str("date", day.Format("2006-01-02")).Msg("Date scan failed")
		}
	}
	return errors.Join(errs...)
}

// pendingGame is a final game that has not been announced yet.
type pendingGame struct {
	game client.ScoreboardGame
	id   string
}

// scanDate runs the full pipeline for one reference date.
func (s *Scheduler) scanDate(ctx context.Context, day time.Time) error {
	games, err := s.scoreboard.FetchDay(ctx, day)
	if err != nil {
		metrics.ScoreboardFetchesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to fetch scoreboard: %w", err)
	}
	metrics.ScoreboardFetchesTotal.WithLabelValues("success").Inc()

	if len(games) == 0 {
		log.Debug().Str("date", day.Format("2006-01-02")).Msg("No games scheduled")
		return nil
	}

	pending, err := s.pendingFinals(games)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		log.Info().
			Str("date", day.Format("2006-01-02")).
			Int("games", len(games)).
			Msg("No unannounced final games")
		return nil
	}

	log.Info().
		Str("date", day.Format("2006-01-02")).
		Int("pending", len(pending)).
		Msg("Found new final games")

	led, err := s.refreshLedger(ctx, day)
	if err != nil {
		return err
	}
	matrix := ledger.BuildMatrix(led)

	for _, p := range pending {
		if err := s.announce(ctx, day, p, led, matrix); err != nil {
			log.Error().Err(err).Str("game", p.id).Msg("Failed to announce game")
		}
	}
	return nil
}

// pendingFinals filters the scoreboard down to final games whose identifier
// is not in the dedup log.
func (s *Scheduler) pendingFinals(games []client.ScoreboardGame) ([]pendingGame, error) {
	var pending []pendingGame
	for _, g := range games {
		if !g.IsFinal() {
			continue
		}
		id := g.Identifier()
		notified, err := s.dedup.AlreadyNotified(id)
		if err != nil {
			return nil, fmt.Errorf("failed to check notification log: %w", err)
		}
		if notified {
			metrics.NotificationsDeduplicated.Inc()
			log.Debug().Str("game", id).Msg("Game already announced")
			continue
		}
		pending = append(pending, pendingGame{game: g, id: id})
	}
	return pending, nil
}

// refreshLedger loads the durable baseline, merges the current season's
// fresh game log on top, and persists whatever is new. The merge is
// first-write-wins on game id, so overlapping re-fetches are no-ops.
func (s *Scheduler) refreshLedger(ctx context.Context, day time.Time) (*ledger.Ledger, error) {
	baseline, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger snapshot: %w", err)
	}
	led := ledger.FromGames(baseline)

	season := ingest.CurrentSeason(day)
	fetch := ingest.WithSeasonCache(s.stats.FetchSeasonGameLog, s.cache, season)
	rows, err := ingest.FetchSeason(ctx, season, fetch, ingest.Options{
		MaxRetries: s.cfg.FetchMaxRetries,
		BaseDelay:  s.cfg.FetchBaseDelay,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch season %d: %w", season, err)
	}

	paired, err := models.PairResults(rows)
	if err != nil {
		return nil, err
	}

	newIDs := led.Merge(paired)
	if len(newIDs) > 0 {
		fresh := make([]models.PairedGame, 0, len(newIDs))
		for _, id := range newIDs {
			if g, ok := led.Get(id); ok {
				fresh = append(fresh, g)
			}
		}
		if _, err := s.store.InsertBatch(ctx, fresh); err != nil {
			return nil, fmt.Errorf("failed to persist merged games: %w", err)
		}
		metrics.GamesMergedTotal.Add(float64(len(newIDs)))
	}
	metrics.LedgerGames.Set(float64(led.Size()))

	log.Info().
		Int("season", season).
		Int("merged", len(newIDs)).
		Int("ledger_size", led.Size()).
		Msg("Ledger refreshed")
	return led, nil
}

// announce classifies one final game and publishes the verdict, recording
// the game as notified only after a confirmed send.
func (s *Scheduler) announce(ctx context.Context, day time.Time, p pendingGame, led *ledger.Ledger, matrix ledger.FrequencyMatrix) error {
	res, err := ledger.Classify(p.game.WinningScore(), p.game.LosingScore(), day, led, matrix)
	if err != nil {
		// A tied score from the feed is a data glitch, not a ledger error.
		return fmt.Errorf("cannot classify %s: %w", p.id, err)
	}

	metrics.RecordClassification(res.Classification.String())
	if res.Classification != ledger.Recurred {
		metrics.ScorigamiDetectedTotal.Inc()
		log.Info().
			Str("game", p.id).
			Int("points_w", res.PointsW).
			Int("points_l", res.PointsL).
			Str("verdict", res.Classification.String()).
			Msg("Scorigami detected")
	}

	text := notify.ComposeAnnouncement(p.game, res)
	sent, err := s.dedup.NotifyOnce(p.id, func() error {
		return s.notifier.Post(ctx, text)
	})
	if err != nil {
		metrics.RecordNotification("error")
		// Deliberately not recorded: the next scheduled run retries. A
		// delivery that succeeded but lost its confirmation can produce a
		// duplicate; that tradeoff is accepted.
		return fmt.Errorf("delivery failed for %s: %w", p.id, err)
	}
	if !sent {
		// A concurrent run announced the game between our pending check
		// and here.
		metrics.NotificationsDeduplicated.Inc()
		log.Debug().Str("game", p.id).Msg("Game already announced")
		return nil
	}

	metrics.RecordNotification("success")
	log.Info().Str("game", p.id).Msg("Announcement published")
	return nil
}
