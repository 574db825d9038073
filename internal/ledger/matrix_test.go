package ledger

import (
	"testing"

	"github.com/sejaldua/nba-scorigami/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestBuildMatrix_CountsPerCell(t *testing.T) {
	l := New()
	l.Merge([]models.PairedGame{
		testGame("0022300001", "2024-01-01", 120, 110),
		testGame("0022300002", "2024-01-02", 120, 110),
		testGame("0022300003", "2024-01-03", 101, 99),
	})

	m := BuildMatrix(l)

	assert.Equal(t, 2, m.Count(110, 120))
	assert.Equal(t, 1, m.Count(99, 101))
	assert.Equal(t, 0, m.Count(110, 121), "unpopulated cells are implicitly zero")
	assert.Len(t, m, 2, "matrix is sparse: one entry per populated cell")
}

func TestBuildMatrix_IndependentOfMergeOrder(t *testing.T) {
	games := []models.PairedGame{
		testGame("0022300001", "2024-01-01", 133, 129),
		testGame("0022300002", "2024-01-02", 97, 92),
		testGame("0022300003", "2024-01-03", 133, 129),
	}

	forward := New()
	forward.Merge(games)

	reversed := New()
	for i := len(games) - 1; i >= 0; i-- {
		reversed.Merge(games[i : i+1])
	}

	assert.Equal(t, BuildMatrix(forward), BuildMatrix(reversed))
}

func TestBuildMatrix_TracksLedgerAfterMerges(t *testing.T) {
	l := New()
	l.Merge([]models.PairedGame{testGame("0022300001", "2024-01-01", 150, 100)})

	m := BuildMatrix(l)
	assert.Equal(t, 1, m.Count(100, 150))

	// Duplicate merge must not inflate counts after rebuild.
	l.Merge([]models.PairedGame{testGame("0022300001", "2024-01-01", 150, 100)})
	l.Merge([]models.PairedGame{testGame("0022300002", "2024-01-08", 150, 100)})

	m = BuildMatrix(l)
	assert.Equal(t, 2, m.Count(100, 150))
}
