// Package stats reduces samples of match scores to summary statistics.
package stats

import (
	"math"
	"sort"

	"github.com/nvandessel/dilemma/internal/constants"
)

// ScoreStats summarises one strategy's score sample. The interval is the
// normal approximation mean ± 1.96·s/√n for every n; no t-correction is
// applied for small samples.
type ScoreStats struct {
	Mean    float64 `json:"mean"`
	Stdev   float64 `json:"stdev"`
	CILower float64 `json:"ci_lower"`
	CIUpper float64 `json:"ci_upper"`
	N       int     `json:"n_samples"`
}

// Calculate computes mean, sample standard deviation (n-1 denominator) and
// the 95% confidence interval. An empty sample yields the zero value; a
// single sample has zero spread and a point interval.
func Calculate(scores []float64) ScoreStats {
	n := len(scores)
	if n == 0 {
		return ScoreStats{}
	}

	var sum float64
	for _, s := range scores {
		sum += s
	}
	mean := sum / float64(n)

	if n == 1 {
		return ScoreStats{Mean: mean, CILower: mean, CIUpper: mean, N: 1}
	}

	var ss float64
	for _, s := range scores {
		d := s - mean
		ss += d * d
	}
	stdev := math.Sqrt(ss / float64(n-1))
	margin := constants.ConfidenceZ * stdev / math.Sqrt(float64(n))

	return ScoreStats{
		Mean:    mean,
		Stdev:   stdev,
		CILower: mean - margin,
		CIUpper: mean + margin,
		N:       n,
	}
}

// Margin is the half-width of the confidence interval.
func (s ScoreStats) Margin() float64 {
	return (s.CIUpper - s.CILower) / 2
}

// Entry is one leaderboard row.
type Entry struct {
	Rank  int        `json:"rank"`
	Name  string     `json:"strategy"`
	Stats ScoreStats `json:"stats"`
}

// Rank orders results by mean score, highest first. Ties are broken by
// name so the order is stable across runs.
func Rank(results map[string]ScoreStats) []Entry {
	entries := make([]Entry, 0, len(results))
	for name, st := range results {
		entries = append(entries, Entry{Name: name, Stats: st})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Stats.Mean != entries[j].Stats.Mean {
			return entries[i].Stats.Mean > entries[j].Stats.Mean
		}
		return entries[i].Name < entries[j].Name
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// Ranks maps each name to its 1-based leaderboard position.
func Ranks(results map[string]ScoreStats) map[string]int {
	out := make(map[string]int, len(results))
	for _, e := range Rank(results) {
		out[e.Name] = e.Rank
	}
	return out
}

// Mean is the arithmetic mean of xs, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
