package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// statusFinal marks a completed game on the scoreboard feed.
const statusFinal = "Final"

// ScoreboardClient fetches the day scoreboard from the schedule provider.
type ScoreboardClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewScoreboardClient creates a scoreboard API client.
func NewScoreboardClient(baseURL string, timeout time.Duration) *ScoreboardClient {
	return &ScoreboardClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ScoreboardGame is one scheduled or completed game on a day's scoreboard.
type ScoreboardGame struct {
	Date      string // raw provider timestamp, kept verbatim for the dedup identifier
	HomeTeam  string
	AwayTeam  string
	HomeScore int
	AwayScore int
	Status    string
}

// IsFinal reports whether the game has completed.
func (g ScoreboardGame) IsFinal() bool {
	return g.Status == statusFinal
}

// Identifier is the durable dedup key for one completed game.
func (g ScoreboardGame) Identifier() string {
	return fmt.Sprintf("%s@%s | %s", g.AwayTeam, g.HomeTeam, g.Date)
}

// WinningScore returns the higher of the two scores.
func (g ScoreboardGame) WinningScore() int {
	if g.HomeScore > g.AwayScore {
		return g.HomeScore
	}
	return g.AwayScore
}

// LosingScore returns the lower of the two scores.
func (g ScoreboardGame) LosingScore() int {
	if g.HomeScore < g.AwayScore {
		return g.HomeScore
	}
	return g.AwayScore
}

// scoreboardEnvelope is the provider response, reduced to the fields we read.
type scoreboardEnvelope struct {
	Events []struct {
		Date         string `json:"date"`
		Competitions []struct {
			Competitors []struct {
				HomeAway string `json:"homeAway"`
				Score    string `json:"score"`
				Team     struct {
					DisplayName string `json:"displayName"`
				} `json:"team"`
			} `json:"competitors"`
			Status struct {
				Type struct {
					Description string `json:"description"`
				} `json:"type"`
			} `json:"status"`
		} `json:"competitions"`
	} `json:"events"`
}

// FetchDay fetches the scoreboard for one calendar date.
func (c *ScoreboardClient) FetchDay(ctx context.Context, day time.Time) ([]ScoreboardGame, error) {
	url := fmt.Sprintf("%s/scoreboard", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	q := req.URL.Query()
	q.Set("dates", day.Format("20060102"))
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scoreboard request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read scoreboard response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scoreboard API returned status %d: %s", resp.StatusCode, truncate(body, 200))
	}

	var envelope scoreboardEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scoreboard: %w", err)
	}

	games := make([]ScoreboardGame, 0, len(envelope.Events))
	for _, event := range envelope.Events {
		if len(event.Competitions) == 0 {
			continue
		}
		competition := event.Competitions[0]

		game := ScoreboardGame{
			Date:   event.Date,
			Status: competition.Status.Type.Description,
		}
		for _, competitor := range competition.Competitors {
			score := 0
			if competitor.Score != "" {
				score, err = strconv.Atoi(competitor.Score)
				if err != nil {
					return nil, fmt.Errorf("unparseable score %q for %s: %w",
						competitor.Score, competitor.Team.DisplayName, err)
				}
			}
			switch competitor.HomeAway {
			case "home":
				game.HomeTeam = competitor.Team.DisplayName
				game.HomeScore = score
			case "away":
				game.AwayTeam = competitor.Team.DisplayName
				game.AwayScore = score
			}
		}
		games = append(games, game)
	}

	log.Debug().
		Str("date", day.Format("2006-01-02")).
		Int("games", len(games)).
		Msg("Day scoreboard fetched")
	return games, nil
}
