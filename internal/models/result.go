package models

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Outcome is one team's result in a completed game.
type Outcome string

const (
	Win  Outcome = "W"
	Loss Outcome = "L"
)

// GameResult is one team's side of one completed game, as reported by the
// league game log. Every completed game produces exactly two rows, one Win
// and one Loss, sharing the same GameID.
type GameResult struct {
	GameID           string    `json:"game_id"`
	SeasonID         string    `json:"season_id"`
	GameDate         time.Time `json:"game_date"` // calendar date, midnight UTC
	Matchup          string    `json:"matchup"`   // raw "TEAM @ TEAM" / "TEAM vs. TEAM" label
	TeamAbbreviation string    `json:"team_abbreviation"`
	TeamName         string    `json:"team_name"`
	Points           int       `json:"points"`
	IsHome           bool      `json:"is_home"`
	Outcome          Outcome   `json:"outcome"`
}

// MatchupIsHome reports whether a raw matchup label describes a home game.
// The game log writes "LAL @ BOS" for road games and "LAL vs. BOS" for home
// games.
func MatchupIsHome(matchup string) bool {
	return !strings.Contains(matchup, "@")
}

// PairedGame is the Win and Loss rows of one game joined into a single
// record. PointsW > PointsL always holds for a constructed PairedGame.
type PairedGame struct {
	GameID     string    `json:"game_id"`
	SeasonID   string    `json:"season_id"`
	GameDate   time.Time `json:"game_date"`
	Matchup    string    `json:"matchup"`
	WinnerAbbr string    `json:"winner_abbr"`
	WinnerName string    `json:"winner_name"`
	LoserAbbr  string    `json:"loser_abbr"`
	LoserName  string    `json:"loser_name"`
	PointsW    int       `json:"points_w"`
	PointsL    int       `json:"points_l"`
	WinnerHome bool      `json:"winner_home"`
	Margin     int       `json:"margin"` // positive when the home team won
}

// DataIntegrityError reports a game whose scores violate the winner > loser
// invariant. Ties are impossible in this league, so this indicates upstream
// corruption rather than a normal runtime condition.
type DataIntegrityError struct {
	GameID  string
	PointsW int
	PointsL int
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("data integrity violation: game %s has winning score %d <= losing score %d",
		e.GameID, e.PointsW, e.PointsL)
}

// NewPairedGame joins the winning and losing rows of one game into a single
// record. Returns a DataIntegrityError when the winning score is not
// strictly greater than the losing score.
func NewPairedGame(win, loss GameResult) (PairedGame, error) {
	if win.GameID != loss.GameID {
		return PairedGame{}, fmt.Errorf("cannot pair rows from different games: %s and %s", win.GameID, loss.GameID)
	}
	if win.Points <= loss.Points {
		return PairedGame{}, &DataIntegrityError{GameID: win.GameID, PointsW: win.Points, PointsL: loss.Points}
	}

	margin := win.Points - loss.Points
	if !win.IsHome {
		margin = -margin
	}

	return PairedGame{
		GameID:     win.GameID,
		SeasonID:   win.SeasonID,
		GameDate:   win.GameDate,
		Matchup:    win.Matchup,
		WinnerAbbr: win.TeamAbbreviation,
		WinnerName: win.TeamName,
		LoserAbbr:  loss.TeamAbbreviation,
		LoserName:  loss.TeamName,
		PointsW:    win.Points,
		PointsL:    loss.Points,
		WinnerHome: win.IsHome,
		Margin:     margin,
	}, nil
}

// PairResults groups per-team game log rows by game id and joins each
// complete Win/Loss pair into a PairedGame. Rows without a counterpart
// (a game still missing its second row in the upstream feed) are dropped.
// Output is sorted by game id so pairing is deterministic regardless of
// input order. A pair whose scores violate the winner > loser invariant
// fails the whole batch with a DataIntegrityError.
func PairResults(rows []GameResult) ([]PairedGame, error) {
	type sides struct {
		win, loss *GameResult
	}

	byGame := make(map[string]*sides, len(rows)/2)
	for i := range rows {
		row := rows[i]
		s, ok := byGame[row.GameID]
		if !ok {
			s = &sides{}
			byGame[row.GameID] = s
		}
		switch row.Outcome {
		case Win:
			s.win = &rows[i]
		case Loss:
			s.loss = &rows[i]
		}
	}

	ids := make([]string, 0, len(byGame))
	for id, s := range byGame {
		if s.win != nil && s.loss != nil {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	paired := make([]PairedGame, 0, len(ids))
	for _, id := range ids {
		s := byGame[id]
		game, err := NewPairedGame(*s.win, *s.loss)
		if err != nil {
			return nil, err
		}
		paired = append(paired, game)
	}

	return paired, nil
}
