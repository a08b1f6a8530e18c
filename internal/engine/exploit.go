package engine

import (
	"github.com/nvandessel/dilemma/internal/game"
	"github.com/nvandessel/dilemma/internal/stats"
	"github.com/nvandessel/dilemma/internal/strategy"
)

// ExploitRow is the outcome of the exploiter against one victim.
type ExploitRow struct {
	Victim    string           `json:"victim"`
	Exploiter stats.ScoreStats `json:"exploiter"`
	Target    stats.ScoreStats `json:"victim_stats"`
}

// ExploitResult collects one exploiter's matches against every victim.
type ExploitResult struct {
	Exploiter string       `json:"exploiter"`
	Noise     float64      `json:"epsilon"`
	Rows      []ExploitRow `json:"matches"`
	// Stats pools every sample per name: the exploiter's across all
	// victims, each victim's across its own trials.
	Stats map[string]stats.ScoreStats `json:"results"`
}

// NoiseComparison is an exploiter run at zero noise and at the context's
// noise level.
type NoiseComparison struct {
	Exploiter string         `json:"exploiter"`
	Baseline  *ExploitResult `json:"noise_free"`
	Noisy     *ExploitResult `json:"noisy"`
}

// Exploit plays exploiter against every victim repeats times, resetting
// both before each trial.
func (c Context) Exploit(exploiter *strategy.Strategy, victims []*strategy.Strategy, rounds, repeats int) (*ExploitResult, error) {
	if exploiter == nil || len(victims) == 0 {
		return nil, &game.ConfigurationError{Field: "strategy_names", Reason: "an exploiter and at least one victim are required"}
	}
	if err := validateRun(c, append([]*strategy.Strategy{exploiter}, victims...), rounds, repeats); err != nil {
		return nil, err
	}

	res := &ExploitResult{
		Exploiter: exploiter.Name(),
		Noise:     c.Noise,
		Rows:      make([]ExploitRow, 0, len(victims)),
		Stats:     make(map[string]stats.ScoreStats, len(victims)+1),
	}
	all := make(map[string][]float64, len(victims)+1)

	for _, victim := range victims {
		own := make([]float64, 0, repeats)
		their := make([]float64, 0, repeats)
		for r := 0; r < repeats; r++ {
			exploiter.Reset()
			victim.Reset()
			s1, s2 := c.RunGame(exploiter, victim, rounds)
			own = append(own, s1)
			their = append(their, s2)
		}
		all[exploiter.Name()] = append(all[exploiter.Name()], own...)
		all[victim.Name()] = append(all[victim.Name()], their...)

		res.Rows = append(res.Rows, ExploitRow{
			Victim:    victim.Name(),
			Exploiter: stats.Calculate(own),
			Target:    stats.Calculate(their),
		})
		c.logger().Debug("exploit pair complete", "exploiter", exploiter.Name(), "victim", victim.Name(), "epsilon", c.Noise)
	}

	for name, samples := range all {
		res.Stats[name] = stats.Calculate(samples)
	}
	return res, nil
}

// ExploitNoiseComparison runs Exploit once without noise and once at the
// context's noise. Every player is rewound before each phase so the two
// phases are independent of each other and of earlier runs.
func (c Context) ExploitNoiseComparison(exploiter *strategy.Strategy, victims []*strategy.Strategy, rounds, repeats int) (*NoiseComparison, error) {
	if exploiter == nil || len(victims) == 0 {
		return nil, &game.ConfigurationError{Field: "strategy_names", Reason: "an exploiter and at least one victim are required"}
	}
	players := append([]*strategy.Strategy{exploiter}, victims...)

	strategy.RewindAll(players)
	base, err := c.WithNoise(0).Exploit(exploiter, victims, rounds, repeats)
	if err != nil {
		return nil, err
	}

	strategy.RewindAll(players)
	noisy, err := c.Exploit(exploiter, victims, rounds, repeats)
	if err != nil {
		return nil, err
	}

	return &NoiseComparison{Exploiter: exploiter.Name(), Baseline: base, Noisy: noisy}, nil
}
