package sweep

import (
	"github.com/nvandessel/dilemma/internal/stats"
	"github.com/nvandessel/dilemma/internal/strategy"
)

// SCBRow compares one strategy with and without the complexity budget.
type SCBRow struct {
	Name       string           `json:"strategy"`
	Complexity float64          `json:"complexity"`
	Without    stats.ScoreStats `json:"without_scb"`
	With       stats.ScoreStats `json:"with_scb"`
	Diff       float64          `json:"diff"`
	RankBefore int              `json:"rank_without"`
	RankAfter  int              `json:"rank_with"`
}

// RankChange is positive when the strategy moved up the leaderboard.
func (r SCBRow) RankChange() int {
	return r.RankBefore - r.RankAfter
}

// SCBResult is the outcome of an SCB comparison.
type SCBResult struct {
	CostFactor float64                     `json:"cost_factor"`
	Without    map[string]stats.ScoreStats `json:"without_scb"`
	With       map[string]stats.ScoreStats `json:"with_scb"`
	// Rows are ordered by the leaderboard with SCB enabled.
	Rows []SCBRow `json:"comparison"`
}

// CompareSCB runs the tournament with SCB disabled and then enabled at the
// context's cost factor. The roster is rewound before each run, so raw
// game outcomes are identical and every difference is the SCB deduction.
func (d *Driver) CompareSCB(players []*strategy.Strategy) (*SCBResult, error) {
	log := d.logger

	strategy.RewindAll(players)
	off := d.ctx.WithSCB(false)
	off.Logger, off.Trace = log, d.trace
	without, err := off.RunTournament(players, d.rounds, d.repeats)
	if err != nil {
		return nil, err
	}

	strategy.RewindAll(players)
	on := d.ctx.WithSCB(true)
	on.Logger, on.Trace = log, d.trace
	with, err := on.RunTournament(players, d.rounds, d.repeats)
	if err != nil {
		return nil, err
	}

	before := stats.Ranks(without.Stats)
	after := stats.Ranks(with.Stats)

	res := &SCBResult{
		CostFactor: d.ctx.SCB.CostFactor,
		Without:    without.Stats,
		With:       with.Stats,
	}
	complexity := make(map[string]float64, len(players))
	for _, p := range players {
		complexity[p.Name()] = p.Complexity()
	}
	for _, e := range stats.Rank(with.Stats) {
		res.Rows = append(res.Rows, SCBRow{
			Name:       e.Name,
			Complexity: complexity[e.Name],
			Without:    without.Stats[e.Name],
			With:       e.Stats,
			Diff:       e.Stats.Mean - without.Stats[e.Name].Mean,
			RankBefore: before[e.Name],
			RankAfter:  after[e.Name],
		})
	}
	return res, nil
}
