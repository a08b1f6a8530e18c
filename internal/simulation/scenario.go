package simulation

import (
	"github.com/nvandessel/dilemma/internal/engine"
	"github.com/nvandessel/dilemma/internal/evolution"
	"github.com/nvandessel/dilemma/internal/strategy"
	"github.com/nvandessel/dilemma/internal/sweep"
)

// Scenario defines a complete simulation experiment.
type Scenario struct {
	Name       string
	Strategies []string  // registry tokens
	Payoffs    []float64 // [T R P S]; nil = classic (5,3,1,0)
	Rounds     int       // 0 = 50
	Repeats    int       // 0 = 1
	Noise      float64
	Seed       int64

	// SCB enables the complexity budget for the tournament and evolution
	// and also runs an SCB on/off comparison.
	SCB     bool
	SCBCost float64 // 0 = 0.1

	// Generations, when positive, runs a replicator evolution at Noise.
	Generations int

	// NoiseLevels, when non-empty, runs a noise sweep over the levels.
	NoiseLevels []float64
}

// SimulationResult holds everything a scenario produced. Phases the
// scenario did not ask for are nil.
type SimulationResult struct {
	Context    engine.Context
	Players    []*strategy.Strategy
	Tournament *engine.Result
	Evolution  *evolution.Result
	Sweep      *sweep.NoiseResult
	SCB        *sweep.SCBResult
}

func (s Scenario) rounds() int {
	if s.Rounds == 0 {
		return 50
	}
	return s.Rounds
}

func (s Scenario) repeats() int {
	if s.Repeats == 0 {
		return 1
	}
	return s.Repeats
}

func (s Scenario) scbCost() float64 {
	if s.SCBCost == 0 {
		return 0.1
	}
	return s.SCBCost
}
