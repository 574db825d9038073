package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sejaldua/nba-scorigami/internal/models"

	"github.com/rs/zerolog/log"
)

const gameLogResultSet = "LeagueGameLog"

// leagueID for the NBA in the stats API.
const leagueID = "00"

// StatsClient fetches league game logs from the NBA stats API.
type StatsClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewStatsClient creates a stats API client. The timeout covers the whole
// request; the game log payload for a full season is several megabytes, so
// callers should allow generous read time.
func NewStatsClient(baseURL string, timeout time.Duration) *StatsClient {
	return &StatsClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// gameLogEnvelope is the stats API response shape: column names in Headers,
// positional values in RowSet.
type gameLogEnvelope struct {
	ResultSets []struct {
		Name    string   `json:"name"`
		Headers []string `json:"headers"`
		RowSet  [][]any  `json:"rowSet"`
	} `json:"resultSets"`
}

// FetchSeasonGameLog fetches every per-team game row for one season.
// season is the starting year, e.g. 2023 for the 2023-24 season. Errors are
// returned unwrapped enough for the retry policy to classify timeouts and
// network failures.
func (c *StatsClient) FetchSeasonGameLog(ctx context.Context, season int) ([]models.GameResult, error) {
	url := fmt.Sprintf("%s/leaguegamelog", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	q := req.URL.Query()
	q.Set("LeagueID", leagueID)
	q.Set("Season", FormatSeason(season))
	q.Set("SeasonType", "Regular Season")
	q.Set("PlayerOrTeam", "T")
	q.Set("Counter", "0")
	q.Set("Direction", "ASC")
	q.Set("Sorter", "DATE")
	req.URL.RawQuery = q.Encode()

	// The stats API rejects requests without browser-ish headers.
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; scorigami-worker/1.0)")
	req.Header.Set("Referer", "https://www.nba.com/")
	req.Header.Set("x-nba-stats-origin", "stats")
	req.Header.Set("x-nba-stats-token", "true")

	log.Debug().
		Str("url", url).
		Int("season", season).
		Msg("Fetching season game log")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stats API returned status %d: %s", resp.StatusCode, truncate(body, 200))
	}

	rows, err := parseGameLog(body)
	if err != nil {
		return nil, fmt.Errorf("season %d: %w", season, err)
	}

	log.Debug().
		Int("season", season).
		Int("rows", len(rows)).
		Msg("Season game log fetched")
	return rows, nil
}

// FormatSeason renders a starting year as the API's season label, e.g.
// 2023 -> "2023-24".
func FormatSeason(season int) string {
	return fmt.Sprintf("%d-%02d", season, (season+1)%100)
}

// parseGameLog converts the headers/rowSet envelope into GameResult rows.
// Rows without a decided outcome (W/L blank while a game is being finalized)
// are dropped.
func parseGameLog(body []byte) ([]models.GameResult, error) {
	var envelope gameLogEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game log: %w", err)
	}

	for _, rs := range envelope.ResultSets {
		if rs.Name != gameLogResultSet {
			continue
		}

		col := make(map[string]int, len(rs.Headers))
		for i, h := range rs.Headers {
			col[h] = i
		}
		for _, name := range []string{"SEASON_ID", "GAME_ID", "GAME_DATE", "MATCHUP", "TEAM_ABBREVIATION", "TEAM_NAME", "PTS", "WL"} {
			if _, ok := col[name]; !ok {
				return nil, fmt.Errorf("game log is missing column %s", name)
			}
		}

		results := make([]models.GameResult, 0, len(rs.RowSet))
		for _, row := range rs.RowSet {
			outcome, _ := stringAt(row, col["WL"])
			if outcome != string(models.Win) && outcome != string(models.Loss) {
				continue
			}

			gameID, ok := stringAt(row, col["GAME_ID"])
			if !ok {
				return nil, fmt.Errorf("game log row has no game id")
			}
			rawDate, _ := stringAt(row, col["GAME_DATE"])
			gameDate, err := time.ParseInLocation("2006-01-02", rawDate, time.UTC)
			if err != nil {
				return nil, fmt.Errorf("game %s has unparseable date %q: %w", gameID, rawDate, err)
			}

			seasonID, _ := stringAt(row, col["SEASON_ID"])
			matchup, _ := stringAt(row, col["MATCHUP"])
			abbr, _ := stringAt(row, col["TEAM_ABBREVIATION"])
			name, _ := stringAt(row, col["TEAM_NAME"])
			points, _ := intAt(row, col["PTS"])

			results = append(results, models.GameResult{
				GameID:           gameID,
				SeasonID:         seasonID,
				GameDate:         gameDate,
				Matchup:          matchup,
				TeamAbbreviation: abbr,
				TeamName:         name,
				Points:           points,
				IsHome:           models.MatchupIsHome(matchup),
				Outcome:          models.Outcome(outcome),
			})
		}
		return results, nil
	}

	return nil, fmt.Errorf("response has no %s result set", gameLogResultSet)
}

func stringAt(row []any, i int) (string, bool) {
	if i >= len(row) {
		return "", false
	}
	s, ok := row[i].(string)
	return s, ok
}

func intAt(row []any, i int) (int, bool) {
	if i >= len(row) {
		return 0, false
	}
	// JSON numbers decode as float64.
	f, ok := row[i].(float64)
	return int(f), ok
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
