package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scoreboardPayload = `{
	"events": [
		{
			"date": "2024-01-15T19:30Z",
			"competitions": [
				{
					"competitors": [
						{"homeAway": "home", "score": "121", "team": {"displayName": "Boston Celtics"}},
						{"homeAway": "away", "score": "109", "team": {"displayName": "Toronto Raptors"}}
					],
					"status": {"type": {"description": "Final"}}
				}
			]
		},
		{
			"date": "2024-01-15T22:00Z",
			"competitions": [
				{
					"competitors": [
						{"homeAway": "home", "score": "54", "team": {"displayName": "Denver Nuggets"}},
						{"homeAway": "away", "score": "60", "team": {"displayName": "Phoenix Suns"}}
					],
					"status": {"type": {"description": "In Progress"}}
				}
			]
		}
	]
}`

func TestScoreboardClient_FetchDay(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/scoreboard", r.URL.Path)
		assert.Equal(t, "20240115", r.URL.Query().Get("dates"))
		w.Write([]byte(scoreboardPayload))
	}))
	defer server.Close()

	c := NewScoreboardClient(server.URL, 5*time.Second)
	games, err := c.FetchDay(context.Background(), time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, games, 2)

	final := games[0]
	assert.Equal(t, "Boston Celtics", final.HomeTeam)
	assert.Equal(t, "Toronto Raptors", final.AwayTeam)
	assert.Equal(t, 121, final.HomeScore)
	assert.Equal(t, 109, final.AwayScore)
	assert.True(t, final.IsFinal())
	assert.Equal(t, 121, final.WinningScore())
	assert.Equal(t, 109, final.LosingScore())
	assert.Equal(t, "Toronto Raptors@Boston Celtics | 2024-01-15T19:30Z", final.Identifier())

	inProgress := games[1]
	assert.False(t, inProgress.IsFinal())
	assert.Equal(t, 60, inProgress.WinningScore(), "away team leading")
}

func TestScoreboardClient_FetchDay_Empty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"events": []}`))
	}))
	defer server.Close()

	c := NewScoreboardClient(server.URL, 5*time.Second)
	games, err := c.FetchDay(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Empty(t, games, "an off day has no events")
}

func TestScoreboardClient_FetchDay_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer server.Close()

	c := NewScoreboardClient(server.URL, 5*time.Second)
	_, err := c.FetchDay(context.Background(), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
