package ledger

// ScoreKey identifies one cell of the frequency matrix.
type ScoreKey struct {
	Loss int
	Win  int
}

// FrequencyMatrix maps (losing score, winning score) to the number of games
// that finished with that combination. Cells with no occurrences are absent.
// The matrix is never persisted; it is rebuilt from the ledger after every
// merge so it cannot drift from it.
type FrequencyMatrix map[ScoreKey]int

// BuildMatrix derives the frequency matrix from the ledger. Output depends
// only on ledger contents, not on the order games were merged.
func BuildMatrix(l *Ledger) FrequencyMatrix {
	m := make(FrequencyMatrix, l.Size())
	for _, g := range l.games {
		m[ScoreKey{Loss: g.PointsL, Win: g.PointsW}]++
	}
	return m
}

// Count returns the occurrence count for a score combination, zero when the
// cell is unpopulated.
func (m FrequencyMatrix) Count(pointsL, pointsW int) int {
	return m[ScoreKey{Loss: pointsL, Win: pointsW}]
}
