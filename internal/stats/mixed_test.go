package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var exploiters = []string{"PROBER", "AllDefect"}

func TestAnalyzeMixed(t *testing.T) {
	tests := []struct {
		name      string
		results   map[string]ScoreStats
		exploiter string
		rank      int
		verdict   string
		gap       float64
	}{
		{
			name: "exploiter leads",
			results: map[string]ScoreStats{
				"AllDefect":    {Mean: 150},
				"AllCooperate": {Mean: 90},
				"TitForTat":    {Mean: 120},
			},
			exploiter: "AllDefect",
			rank:      1,
			verdict:   VerdictDominates,
		},
		{
			name: "top half is moderate",
			results: map[string]ScoreStats{
				"TitForTat":    {Mean: 300},
				"PROBER":       {Mean: 280},
				"AllCooperate": {Mean: 250},
				"AllDefect":    {Mean: 100},
			},
			exploiter: "PROBER",
			rank:      2,
			verdict:   VerdictModerate,
			gap:       20,
		},
		{
			name: "middle of an odd population is poor",
			results: map[string]ScoreStats{
				"TitForTat":   {Mean: 300},
				"GrimTrigger": {Mean: 290},
				"AllDefect":   {Mean: 200},
			},
			exploiter: "AllDefect",
			rank:      3,
			verdict:   VerdictPoor,
			gap:       100,
		},
		{
			name: "PROBER is chosen over AllDefect",
			results: map[string]ScoreStats{
				"AllDefect": {Mean: 200},
				"PROBER":    {Mean: 150},
			},
			exploiter: "PROBER",
			rank:      2,
			verdict:   VerdictPoor,
			gap:       50,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnalyzeMixed(tt.results, exploiters)
			require.NotNil(t, got)
			assert.Equal(t, tt.exploiter, got.Exploiter)
			assert.Equal(t, tt.rank, got.Rank)
			assert.Equal(t, len(tt.results), got.Total)
			assert.Equal(t, tt.verdict, got.Verdict)
			assert.InDelta(t, tt.gap, got.Gap, 1e-12)
			assert.Len(t, got.Ranking, len(tt.results))
			assert.Equal(t, got.Ranking[0].Name, got.Leader)
		})
	}
}

func TestAnalyzeMixedWithoutExploiter(t *testing.T) {
	results := map[string]ScoreStats{
		"TitForTat":    {Mean: 300},
		"AllCooperate": {Mean: 300},
	}
	assert.Nil(t, AnalyzeMixed(results, exploiters))
	assert.Nil(t, AnalyzeMixed(nil, exploiters))
}
