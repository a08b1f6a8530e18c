package simulation

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/nvandessel/dilemma/internal/engine"
	"github.com/nvandessel/dilemma/internal/evolution"
	"github.com/nvandessel/dilemma/internal/game"
	"github.com/nvandessel/dilemma/internal/logging"
	"github.com/nvandessel/dilemma/internal/strategy"
	"github.com/nvandessel/dilemma/internal/sweep"
)

// Runner executes scenarios against the real engines.
type Runner struct {
	t      *testing.T
	logger *slog.Logger
}

// testWriter forwards log lines to t.Log.
type testWriter struct {
	t *testing.T
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(bytes.TrimRight(p, "\n")))
	return len(p), nil
}

// NewRunner creates a runner with a sandboxed HOME directory. Engine debug
// output is written to the test log.
func NewRunner(t *testing.T) *Runner {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	return &Runner{t: t, logger: logging.NewLogger("debug", testWriter{t})}
}

// Run executes the scenario and returns the collected results. Any setup
// or engine error fails the test immediately.
func (r *Runner) Run(sc Scenario) SimulationResult {
	r.t.Helper()

	ctx := engine.NewContext()
	if sc.Payoffs != nil {
		pm, err := game.PayoffsFromSlice(sc.Payoffs)
		if err != nil {
			r.t.Fatalf("scenario %s: %v", sc.Name, err)
		}
		ctx.Payoffs = pm
	}
	ctx.Noise = sc.Noise
	ctx.SCB = engine.SCB{Enabled: sc.SCB, CostFactor: sc.scbCost()}
	ctx.Logger = r.logger

	players, err := strategy.NewRoster(sc.Strategies, sc.Seed)
	if err != nil {
		r.t.Fatalf("scenario %s: %v", sc.Name, err)
	}

	res := SimulationResult{Context: ctx, Players: players}
	rounds, repeats := sc.rounds(), sc.repeats()

	// Phase 1: tournament.
	res.Tournament, err = ctx.RunTournament(players, rounds, repeats)
	if err != nil {
		r.t.Fatalf("scenario %s: tournament: %v", sc.Name, err)
	}

	// Phase 2: evolution.
	if sc.Generations > 0 {
		e := evolution.NewEngine(ctx, rounds, repeats, sc.Generations)
		e.SetLogger(r.logger, nil)
		res.Evolution, err = e.Run(players, sc.Name, sc.Noise)
		if err != nil {
			r.t.Fatalf("scenario %s: evolution: %v", sc.Name, err)
		}
	}

	// Phase 3: sweep and SCB comparison share a driver.
	d := sweep.NewDriver(ctx, rounds, repeats)
	d.SetLogger(r.logger, nil)
	if len(sc.NoiseLevels) > 0 {
		res.Sweep, err = d.Noise(players, sc.NoiseLevels)
		if err != nil {
			r.t.Fatalf("scenario %s: sweep: %v", sc.Name, err)
		}
	}
	if sc.SCB {
		res.SCB, err = d.CompareSCB(players)
		if err != nil {
			r.t.Fatalf("scenario %s: scb comparison: %v", sc.Name, err)
		}
	}

	return res
}
