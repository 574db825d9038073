package notify

import (
	"fmt"

	"github.com/sejaldua/nba-scorigami/internal/client"
	"github.com/sejaldua/nba-scorigami/internal/ledger"
)

// ComposeAnnouncement renders the tweet text for one final game: the
// matchup and score, then the scorigami verdict.
func ComposeAnnouncement(game client.ScoreboardGame, res ledger.QueryResult) string {
	return fmt.Sprintf("%s @ %s\nScore: %d - %d\n\n%s",
		game.AwayTeam, game.HomeTeam, game.AwayScore, game.HomeScore, verdictText(res))
}

func verdictText(res ledger.QueryResult) string {
	switch res.Classification {
	case ledger.NeverOccurred:
		return fmt.Sprintf("Scorigami! The score combination %d-%d has never occurred.",
			res.PointsW, res.PointsL)
	case ledger.FirstOccurrenceToday:
		return fmt.Sprintf("Scorigami! The score combination %d-%d has occurred for the first time today.",
			res.PointsW, res.PointsL)
	default:
		return fmt.Sprintf("The score combination %d-%d has occurred %d times. The last time it occurred was on %s when the %s defeated the %s.",
			res.PointsW, res.PointsL, res.Count,
			res.LastDate.Format("2006-01-02"), res.LastWinner, res.LastLoser)
	}
}
