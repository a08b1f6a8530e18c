package engine

import (
	"github.com/nvandessel/dilemma/internal/game"
	"github.com/nvandessel/dilemma/internal/stats"
	"github.com/nvandessel/dilemma/internal/strategy"
)

// PairScore is the mean score of both sides of one pairing, seen from the
// row strategy.
type PairScore struct {
	Own float64 `json:"own"`
	Opp float64 `json:"opponent"`
}

// Result is the outcome of one round-robin tournament.
type Result struct {
	Names   []string                    `json:"strategies"`
	Rounds  int                         `json:"rounds"`
	Repeats int                         `json:"repeats"`
	Noise   float64                     `json:"epsilon"`
	Stats   map[string]stats.ScoreStats `json:"results"`
	// Pairwise[i][j] holds the mean scores of Names[i] against Names[j]
	// across the repeats of that pairing. Display only.
	Pairwise [][]PairScore `json:"pairwise"`
	// Samples are the raw per-trial scores behind Stats.
	Samples map[string][]float64 `json:"-"`
	// Matches counts the games played.
	Matches int `json:"matches"`
}

// Ranked returns the leaderboard, highest mean first.
func (r *Result) Ranked() []stats.Entry {
	return stats.Rank(r.Stats)
}

// RunTournament plays every unordered pair (i, j), i ≤ j, repeats times.
// Both players are reset before each trial. A self-pairing plays the
// strategy against a fresh clone and records one sample per trial.
func (c Context) RunTournament(players []*strategy.Strategy, rounds, repeats int) (*Result, error) {
	if err := validateRun(c, players, rounds, repeats); err != nil {
		return nil, err
	}

	n := len(players)
	res := &Result{
		Names:    strategy.Names(players),
		Rounds:   rounds,
		Repeats:  repeats,
		Noise:    c.Noise,
		Stats:    make(map[string]stats.ScoreStats, n),
		Pairwise: make([][]PairScore, n),
		Samples:  make(map[string][]float64, n),
	}
	for i := range res.Pairwise {
		res.Pairwise[i] = make([]PairScore, n)
	}

	log := c.logger()
	log.Debug("tournament started", "strategies", n, "rounds", rounds, "repeats", repeats, "epsilon", c.Noise, "scb", c.SCB.Enabled)

	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			p1 := players[i]
			var cum1, cum2 float64

			for r := 0; r < repeats; r++ {
				p1.Reset()
				var p2 *strategy.Strategy
				if i == j {
					p2 = p1.Clone()
				} else {
					p2 = players[j]
					p2.Reset()
				}

				s1, s2 := c.RunGame(p1, p2, rounds)
				cum1 += s1
				cum2 += s2
				res.Matches++

				res.Samples[p1.Name()] = append(res.Samples[p1.Name()], s1)
				if i != j {
					res.Samples[p2.Name()] = append(res.Samples[p2.Name()], s2)
				}
			}

			avg1 := cum1 / float64(repeats)
			avg2 := cum2 / float64(repeats)
			res.Pairwise[i][j] = PairScore{Own: avg1, Opp: avg2}
			if i != j {
				res.Pairwise[j][i] = PairScore{Own: avg2, Opp: avg1}
			}

			log.Debug("pair complete", "a", p1.Name(), "b", players[j].Name(), "avg_a", avg1, "avg_b", avg2)
			c.Trace.Event("tournament.pair", map[string]any{
				"a":       p1.Name(),
				"b":       players[j].Name(),
				"avg_a":   avg1,
				"avg_b":   avg2,
				"repeats": repeats,
				"epsilon": c.Noise,
			})
		}
	}

	for name, samples := range res.Samples {
		res.Stats[name] = stats.Calculate(samples)
	}
	return res, nil
}

func validateRun(c Context, players []*strategy.Strategy, rounds, repeats int) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if len(players) < 2 {
		return &game.ConfigurationError{Field: "strategy_names", Reason: "at least two strategies are required"}
	}
	if rounds < 0 {
		return &game.ConfigurationError{Field: "rounds", Reason: "must not be negative"}
	}
	if repeats < 1 {
		return &game.ConfigurationError{Field: "repeats", Reason: "must be at least 1"}
	}
	return nil
}
