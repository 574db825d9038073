package ledger

import (
	"fmt"
	"time"
)

// Classification is the scorigami verdict for a score combination.
type Classification int

const (
	// NeverOccurred means the combination has no occurrence in the ledger.
	NeverOccurred Classification = iota
	// FirstOccurrenceToday means every occurrence in the ledger is dated the
	// reference date, so before today the combination had never happened.
	FirstOccurrenceToday
	// Recurred means the combination occurred on at least one earlier date.
	Recurred
)

func (c Classification) String() string {
	switch c {
	case NeverOccurred:
		return "never_occurred"
	case FirstOccurrenceToday:
		return "first_occurrence_today"
	case Recurred:
		return "recurred"
	default:
		return "unknown"
	}
}

// InvalidScorePairError reports a query where the winning score is not
// strictly greater than the losing score. This is a caller error; the
// ledger is never consulted.
type InvalidScorePairError struct {
	PointsW int
	PointsL int
}

func (e *InvalidScorePairError) Error() string {
	return fmt.Sprintf("invalid score pair: winning score %d must be greater than losing score %d",
		e.PointsW, e.PointsL)
}

// QueryResult is the outcome of a scorigami classification.
type QueryResult struct {
	Classification Classification
	PointsW        int
	PointsL        int
	Count          int // total occurrences in the ledger, including asOf-dated games

	// Most recent historical occurrence, set only for Recurred.
	LastDate   time.Time
	LastGameID string
	LastWinner string
	LastLoser  string
}

// Classify answers whether a final score is a scorigami as of a reference
// date. Games dated asOf are excluded from "prior occurrence" evidence so a
// game is never compared against itself: when the only matching games
// happened on asOf the verdict is FirstOccurrenceToday rather than Recurred.
//
// For Recurred, the reported occurrence is the matching game with the
// greatest historical date; same-date ties break on the greatest game id so
// the answer is deterministic. Classify never mutates the ledger or matrix.
func Classify(pointsW, pointsL int, asOf time.Time, l *Ledger, m FrequencyMatrix) (QueryResult, error) {
	if pointsW <= pointsL {
		return QueryResult{}, &InvalidScorePairError{PointsW: pointsW, PointsL: pointsL}
	}

	res := QueryResult{PointsW: pointsW, PointsL: pointsL}
	res.Count = m.Count(pointsL, pointsW)
	if res.Count == 0 {
		res.Classification = NeverOccurred
		return res, nil
	}

	asOfDay := asOf.UTC().Truncate(24 * time.Hour)
	found := false
	for _, g := range l.games {
		if g.PointsW != pointsW || g.PointsL != pointsL {
			continue
		}
		day := g.GameDate.UTC().Truncate(24 * time.Hour)
		if day.Equal(asOfDay) {
			continue
		}
		if !found || day.After(res.LastDate) || (day.Equal(res.LastDate) && g.GameID > res.LastGameID) {
			found = true
			res.LastDate = day
			res.LastGameID = g.GameID
			res.LastWinner = g.WinnerName
			res.LastLoser = g.LoserName
		}
	}

	if !found {
		res.Classification = FirstOccurrenceToday
		return res, nil
	}

	res.Classification = Recurred
	return res, nil
}
