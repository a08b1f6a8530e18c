// Package evolution runs discrete replicator dynamics over a fixed set of
// strategies. Fitness is the population-weighted mean match score against
// every surviving strategy; each generation reallocates population share in
// proportion to fitness relative to the population average.
package evolution

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/nvandessel/dilemma/internal/constants"
	"github.com/nvandessel/dilemma/internal/engine"
	"github.com/nvandessel/dilemma/internal/game"
	"github.com/nvandessel/dilemma/internal/logging"
	"github.com/nvandessel/dilemma/internal/stats"
	"github.com/nvandessel/dilemma/internal/strategy"
)

// Population maps a strategy name to its share of the population.
type Population map[string]float64

// Sum returns the total share.
func (p Population) Sum() float64 {
	var sum float64
	for _, v := range p {
		sum += v
	}
	return sum
}

// Clone returns an independent copy.
func (p Population) Clone() Population {
	out := make(Population, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Extinct reports whether name has dropped below the extinction threshold.
func (p Population) Extinct(name string) bool {
	return p[name] < constants.ExtinctionThreshold
}

// Uniform returns 1/k for each of the k names.
func Uniform(names []string) Population {
	pop := make(Population, len(names))
	for _, n := range names {
		pop[n] = 1 / float64(len(names))
	}
	return pop
}

// WarningKind classifies non-fatal evolution conditions.
type WarningKind string

const (
	// DegenerateFitness: the average fitness fell below epsilon and the
	// update for that generation was skipped.
	DegenerateFitness WarningKind = "degenerate_fitness"
	// PopulationDrift: the population sum left 1 by more than the tolerance.
	PopulationDrift WarningKind = "population_drift"
)

// Warning is a non-fatal condition raised during a run.
type Warning struct {
	Kind       WarningKind `json:"kind"`
	Generation int         `json:"generation"`
	Value      float64     `json:"value"`
}

func (w Warning) String() string {
	switch w.Kind {
	case DegenerateFitness:
		return fmt.Sprintf("generation %d: average fitness %.3g too low, update skipped", w.Generation, w.Value)
	case PopulationDrift:
		return fmt.Sprintf("generation %d: population sum %.9f, expected 1", w.Generation, w.Value)
	default:
		return fmt.Sprintf("generation %d: %s", w.Generation, string(w.Kind))
	}
}

// Result is the trajectory of one evolution run.
type Result struct {
	Label string   `json:"label"`
	Noise float64  `json:"epsilon"`
	Names []string `json:"strategies"`
	// History holds one snapshot per generation, taken before that
	// generation's update. The last snapshot is never updated.
	History []Population `json:"history"`
	// Fitness and AvgFitness hold the values that produced History[g+1].
	Fitness    []map[string]float64 `json:"fitness"`
	AvgFitness []float64            `json:"avg_fitness"`
	Warnings   []Warning            `json:"warnings,omitempty"`
}

// Final returns the last snapshot.
func (r *Result) Final() Population {
	if len(r.History) == 0 {
		return nil
	}
	return r.History[len(r.History)-1]
}

// Share is one strategy's population fraction.
type Share struct {
	Name     string  `json:"strategy"`
	Fraction float64 `json:"fraction"`
}

// Standings returns the final population, largest share first. Ties are
// broken by name.
func (r *Result) Standings() []Share {
	final := r.Final()
	out := make([]Share, 0, len(final))
	for name, f := range final {
		out = append(out, Share{Name: name, Fraction: f})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Fraction != out[j].Fraction {
			return out[i].Fraction > out[j].Fraction
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Pair holds the noise-free and the noisy run over the same strategies.
type Pair struct {
	NoiseFree *Result `json:"noise_free"`
	Noisy     *Result `json:"noisy"`
}

// Engine runs evolutions. The Context supplies payoffs and SCB; the noise
// level is chosen per run.
type Engine struct {
	ctx         engine.Context
	rounds      int
	repeats     int
	generations int
	logger      *slog.Logger
	trace       *logging.TraceLogger
}

// NewEngine creates an evolution engine.
func NewEngine(ctx engine.Context, rounds, repeats, generations int) *Engine {
	return &Engine{
		ctx:         ctx,
		rounds:      rounds,
		repeats:     repeats,
		generations: generations,
	}
}

// SetLogger sets the structured logger and trace logger.
func (e *Engine) SetLogger(logger *slog.Logger, trace *logging.TraceLogger) {
	e.logger = logger
	e.trace = trace
}

func (e *Engine) validate(players []*strategy.Strategy, noise float64) error {
	if err := e.ctx.WithNoise(noise).Validate(); err != nil {
		return err
	}
	if len(players) < 2 {
		return &game.ConfigurationError{Field: "strategy_names", Reason: "at least two strategies are required"}
	}
	if e.rounds < 0 {
		return &game.ConfigurationError{Field: "rounds", Reason: "must not be negative"}
	}
	if e.repeats < 1 {
		return &game.ConfigurationError{Field: "repeats", Reason: "must be at least 1"}
	}
	if e.generations < 1 {
		return &game.ConfigurationError{Field: "generations", Reason: "must be at least 1"}
	}
	return nil
}

// RunBoth runs the noise-free evolution and then the one at noise, from the
// same uniform start.
func (e *Engine) RunBoth(players []*strategy.Strategy, noise float64) (*Pair, error) {
	free, err := e.Run(players, "noise-free", 0)
	if err != nil {
		return nil, err
	}
	noisy, err := e.Run(players, fmt.Sprintf("noisy, epsilon=%g", noise), noise)
	if err != nil {
		return nil, err
	}
	return &Pair{NoiseFree: free, Noisy: noisy}, nil
}

// Run evolves a uniform population of players for the configured number of
// generations at the given noise level. Players are rewound first, so a
// run does not depend on what they played before.
func (e *Engine) Run(players []*strategy.Strategy, label string, noise float64) (*Result, error) {
	if err := e.validate(players, noise); err != nil {
		return nil, err
	}
	strategy.RewindAll(players)

	ctx := e.ctx.WithNoise(noise)
	log := logging.OrDiscard(e.logger)
	names := strategy.Names(players)
	pop := Uniform(names)

	res := &Result{Label: label, Noise: noise, Names: names}
	log.Debug("evolution started", "label", label, "generations", e.generations, "epsilon", noise)

	for gen := 0; gen < e.generations; gen++ {
		res.History = append(res.History, pop.Clone())
		if gen == e.generations-1 {
			break
		}

		fitness := e.fitness(ctx, players, pop)
		next, avg, warn := Update(pop, fitness)
		res.Fitness = append(res.Fitness, fitness)
		res.AvgFitness = append(res.AvgFitness, avg)

		if warn != nil {
			warn.Generation = gen
			res.Warnings = append(res.Warnings, *warn)
			log.Warn("evolution warning", "label", label, "kind", string(warn.Kind), "generation", gen, "value", warn.Value)
			e.trace.Event("evolution.warning", map[string]any{
				"label":      label,
				"kind":       string(warn.Kind),
				"generation": gen,
				"value":      warn.Value,
			})
		}

		log.Log(context.Background(), logging.LevelTrace, "generation", "label", label, "generation", gen, "avg_fitness", avg)
		e.trace.Event("evolution.generation", map[string]any{
			"label":       label,
			"generation":  gen,
			"avg_fitness": avg,
			"fitness":     fitness,
			"population":  map[string]float64(next),
		})
		pop = next
	}
	return res, nil
}

// fitness computes, for every surviving strategy, the sum over surviving
// opponents of mean score × opponent share. Extinct strategies get zero.
func (e *Engine) fitness(ctx engine.Context, players []*strategy.Strategy, pop Population) map[string]float64 {
	out := make(map[string]float64, len(players))
	for _, si := range players {
		if pop.Extinct(si.Name()) {
			out[si.Name()] = 0
			continue
		}
		var total float64
		for _, sj := range players {
			if pop.Extinct(sj.Name()) {
				continue
			}
			total += averageScore(ctx, si, sj, e.rounds, e.repeats) * pop[sj.Name()]
		}
		out[si.Name()] = total
	}
	return out
}

// averageScore is si's mean score over repeats games against sj, both
// reset before every game. Against itself si plays a fresh clone.
func averageScore(ctx engine.Context, si, sj *strategy.Strategy, rounds, repeats int) float64 {
	scores := make([]float64, repeats)
	for r := range scores {
		si.Reset()
		opp := sj
		if si == sj || si.Name() == sj.Name() {
			opp = si.Clone()
		} else {
			opp.Reset()
		}
		scores[r], _ = ctx.RunGame(si, opp, rounds)
	}
	return stats.Mean(scores)
}

// Update applies one replicator step. It returns the new population, the
// population-weighted average fitness and at most one warning. When the
// average fitness is degenerate the population is returned unchanged.
//
// Fitness below zero, which SCB costs can produce, counts as zero: the
// strategy goes extinct instead of taking a negative share.
func Update(pop Population, fitness map[string]float64) (Population, float64, *Warning) {
	floored := make(map[string]float64, len(pop))
	var avg float64
	for name, share := range pop {
		floored[name] = max(fitness[name], 0)
		avg += floored[name] * share
	}

	if avg < constants.DegenerateFitnessEpsilon {
		return pop.Clone(), avg, &Warning{Kind: DegenerateFitness, Value: avg}
	}

	next := make(Population, len(pop))
	for name, share := range pop {
		next[name] = share * floored[name] / avg
	}

	if sum := next.Sum(); math.Abs(sum-1) > constants.PopulationSumTolerance {
		return next, avg, &Warning{Kind: PopulationDrift, Value: sum}
	}
	return next, avg, nil
}
