package ledger

import (
	"testing"
	"time"

	"github.com/sejaldua/nba-scorigami/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(date string) time.Time {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return d
}

func TestClassify_InvalidScorePair(t *testing.T) {
	l := New()
	m := BuildMatrix(l)

	for _, tc := range []struct{ pw, pl int }{
		{100, 100},
		{99, 100},
		{0, 0},
	} {
		_, err := Classify(tc.pw, tc.pl, day("2024-01-01"), l, m)
		require.Error(t, err)
		var invalid *InvalidScorePairError
		assert.ErrorAs(t, err, &invalid)
	}
}

func TestClassify_NeverOccurred(t *testing.T) {
	l := New()
	l.Merge([]models.PairedGame{testGame("0022300001", "2024-01-01", 150, 100)})
	m := BuildMatrix(l)

	res, err := Classify(151, 100, day("2024-01-02"), l, m)
	require.NoError(t, err)
	assert.Equal(t, NeverOccurred, res.Classification)
	assert.Equal(t, 0, res.Count)
}

func TestClassify_RecurredOnLaterDate(t *testing.T) {
	l := New()
	l.Merge([]models.PairedGame{testGame("0022300001", "2024-01-01", 150, 100)})
	m := BuildMatrix(l)

	res, err := Classify(150, 100, day("2024-01-02"), l, m)
	require.NoError(t, err)
	assert.Equal(t, Recurred, res.Classification)
	assert.Equal(t, 1, res.Count)
	assert.Equal(t, day("2024-01-01"), res.LastDate)
	assert.Equal(t, "Boston Celtics", res.LastWinner)
	assert.Equal(t, "Los Angeles Lakers", res.LastLoser)
}

func TestClassify_SameDayIsFirstOccurrenceToday(t *testing.T) {
	l := New()
	l.Merge([]models.PairedGame{testGame("0022300001", "2024-01-01", 150, 100)})
	m := BuildMatrix(l)

	// The only match is the game being evaluated; it must not count as a
	// prior occurrence of itself.
	res, err := Classify(150, 100, day("2024-01-01"), l, m)
	require.NoError(t, err)
	assert.Equal(t, FirstOccurrenceToday, res.Classification)
	assert.Equal(t, 1, res.Count)
}

func TestClassify_MixedSameDayAndHistorical(t *testing.T) {
	l := New()
	l.Merge([]models.PairedGame{
		testGame("0022300001", "2023-11-10", 112, 104),
		testGame("0022300099", "2024-01-01", 112, 104),
	})
	m := BuildMatrix(l)

	res, err := Classify(112, 104, day("2024-01-01"), l, m)
	require.NoError(t, err)
	assert.Equal(t, Recurred, res.Classification)
	assert.Equal(t, 2, res.Count, "count includes same-day games")
	assert.Equal(t, day("2023-11-10"), res.LastDate, "evidence excludes same-day games")
}

func TestClassify_TieOnDateBreaksByGameID(t *testing.T) {
	l := New()
	a := testGame("0022300001", "2023-12-25", 130, 125)
	a.WinnerName = "Denver Nuggets"
	b := testGame("0022300002", "2023-12-25", 130, 125)
	b.WinnerName = "Phoenix Suns"
	l.Merge([]models.PairedGame{a, b})
	m := BuildMatrix(l)

	res, err := Classify(130, 125, day("2024-03-01"), l, m)
	require.NoError(t, err)
	assert.Equal(t, Recurred, res.Classification)
	assert.Equal(t, "0022300002", res.LastGameID, "same-date ties break on greatest game id")
	assert.Equal(t, "Phoenix Suns", res.LastWinner)
}

func TestClassify_PicksMostRecentHistoricalDate(t *testing.T) {
	l := New()
	l.Merge([]models.PairedGame{
		testGame("0022000001", "2021-03-01", 118, 109),
		testGame("0022300050", "2024-02-10", 118, 109),
		testGame("0022100001", "2022-04-01", 118, 109),
	})
	m := BuildMatrix(l)

	res, err := Classify(118, 109, day("2024-02-11"), l, m)
	require.NoError(t, err)
	assert.Equal(t, Recurred, res.Classification)
	assert.Equal(t, 3, res.Count)
	assert.Equal(t, day("2024-02-10"), res.LastDate)
	assert.Equal(t, "0022300050", res.LastGameID)
}

func TestClassify_DoesNotMutateLedgerOrMatrix(t *testing.T) {
	l := New()
	l.Merge([]models.PairedGame{testGame("0022300001", "2024-01-01", 150, 100)})
	m := BuildMatrix(l)

	before := l.Games()
	_, err := Classify(150, 100, day("2024-01-02"), l, m)
	require.NoError(t, err)

	assert.Equal(t, before, l.Games())
	assert.Equal(t, 1, m.Count(100, 150))
}
