package ledger

import (
	"sort"

	"github.com/sejaldua/nba-scorigami/internal/models"
)

// Ledger is the deduplicated collection of paired games, unique on game id.
// It grows monotonically: once a game id is present, later merges of the
// same id are no-ops. Only Merge mutates it; queries are read-only. The zero
// value is an empty ledger ready for Merge.
type Ledger struct {
	games map[string]models.PairedGame
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{games: make(map[string]models.PairedGame)}
}

// FromGames builds a ledger from an existing collection, typically the
// durable snapshot loaded at startup. Duplicate game ids follow the same
// first-write-wins policy as Merge.
func FromGames(games []models.PairedGame) *Ledger {
	l := New()
	l.Merge(games)
	return l
}

// Merge folds incoming games into the ledger. The dedup key is the game id
// alone; on collision the existing record wins. Final results never change
// upstream, so first write wins keeps the ledger stable across re-fetches
// of overlapping seasons. Returns the ids that were actually inserted.
func (l *Ledger) Merge(incoming []models.PairedGame) []string {
	if l.games == nil {
		l.games = make(map[string]models.PairedGame)
	}

	var inserted []string
	for _, g := range incoming {
		if _, ok := l.games[g.GameID]; ok {
			continue
		}
		l.games[g.GameID] = g
		inserted = append(inserted, g.GameID)
	}
	return inserted
}

// Has reports whether a game id is present.
func (l *Ledger) Has(gameID string) bool {
	_, ok := l.games[gameID]
	return ok
}

// Get returns the paired game for an id, if present.
func (l *Ledger) Get(gameID string) (models.PairedGame, bool) {
	g, ok := l.games[gameID]
	return g, ok
}

// Size returns the number of distinct games.
func (l *Ledger) Size() int {
	return len(l.games)
}

// Games returns every paired game sorted by game id, so iteration order is
// deterministic regardless of merge history.
func (l *Ledger) Games() []models.PairedGame {
	out := make([]models.PairedGame, 0, len(l.games))
	for _, g := range l.games {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GameID < out[j].GameID })
	return out
}
