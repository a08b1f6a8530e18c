package simulation

import (
	"math"
	"testing"

	"github.com/nvandessel/dilemma/internal/constants"
	"github.com/nvandessel/dilemma/internal/engine"
	"github.com/nvandessel/dilemma/internal/evolution"
	"github.com/nvandessel/dilemma/internal/sweep"
)

const floatTolerance = 1e-9

// AssertMirrorSymmetric asserts that every pairwise cell is the mirror of
// its transpose: Pairwise[i][j].Own == Pairwise[j][i].Opp.
func AssertMirrorSymmetric(t *testing.T, res *engine.Result) {
	t.Helper()
	for i := range res.Names {
		for j := range res.Names {
			a, b := res.Pairwise[i][j], res.Pairwise[j][i]
			if math.Abs(a.Own-b.Opp) > floatTolerance || math.Abs(a.Opp-b.Own) > floatTolerance {
				t.Errorf("AssertMirrorSymmetric: %s vs %s: %.4f:%.4f, transpose %.4f:%.4f",
					res.Names[i], res.Names[j], a.Own, a.Opp, b.Own, b.Opp)
			}
		}
	}
}

// AssertSampleCounts asserts that every strategy has one sample per
// opponent (itself included) per repeat.
func AssertSampleCounts(t *testing.T, res *engine.Result) {
	t.Helper()
	want := res.Repeats * len(res.Names)
	for _, name := range res.Names {
		if got := res.Stats[name].N; got != want {
			t.Errorf("AssertSampleCounts: %s has %d samples, want %d", name, got, want)
		}
	}
}

// AssertIntervalsContainMean asserts CILower ≤ Mean ≤ CIUpper for every
// strategy.
func AssertIntervalsContainMean(t *testing.T, res *engine.Result) {
	t.Helper()
	for name, s := range res.Stats {
		if s.CILower > s.Mean+floatTolerance || s.CIUpper < s.Mean-floatTolerance {
			t.Errorf("AssertIntervalsContainMean: %s: mean %.4f outside [%.4f, %.4f]", name, s.Mean, s.CILower, s.CIUpper)
		}
	}
}

// AssertPopulationsSum asserts that every snapshot sums to 1 and holds no
// negative share.
func AssertPopulationsSum(t *testing.T, res *evolution.Result) {
	t.Helper()
	for g, pop := range res.History {
		if sum := pop.Sum(); math.Abs(sum-1) > constants.PopulationSumTolerance {
			t.Errorf("AssertPopulationsSum: generation %d sums to %.9f", g, sum)
		}
		for name, share := range pop {
			if share < 0 {
				t.Errorf("AssertPopulationsSum: generation %d: %s has negative share %.6f", g, name, share)
			}
		}
	}
}

// AssertReplicatorMonotone asserts that every surviving strategy whose
// fitness beat the average grew, and every one below the average shrank.
// Generations with a degenerate average are skipped.
func AssertReplicatorMonotone(t *testing.T, res *evolution.Result) {
	t.Helper()
	for g := 0; g+1 < len(res.History); g++ {
		avg := res.AvgFitness[g]
		if avg < constants.DegenerateFitnessEpsilon {
			continue
		}
		before, after := res.History[g], res.History[g+1]
		for _, name := range res.Names {
			if before[name] < constants.ExtinctionThreshold {
				continue
			}
			f := res.Fitness[g][name]
			switch {
			case f > avg+floatTolerance && after[name] <= before[name]:
				t.Errorf("AssertReplicatorMonotone: generation %d: %s fitness %.4f > avg %.4f but share fell %.6f -> %.6f",
					g, name, f, avg, before[name], after[name])
			case f < avg-floatTolerance && after[name] >= before[name]:
				t.Errorf("AssertReplicatorMonotone: generation %d: %s fitness %.4f < avg %.4f but share rose %.6f -> %.6f",
					g, name, f, avg, before[name], after[name])
			}
		}
	}
}

// AssertWinner asserts that name holds the largest final share and at
// least minShare of the population.
func AssertWinner(t *testing.T, res *evolution.Result, name string, minShare float64) {
	t.Helper()
	standings := res.Standings()
	if len(standings) == 0 {
		t.Fatalf("AssertWinner: empty population")
	}
	top := standings[0]
	if top.Name != name {
		t.Errorf("AssertWinner: winner is %s (%.4f), want %s (%.4f)", top.Name, top.Fraction, name, res.Final()[name])
		return
	}
	if top.Fraction < minShare {
		t.Errorf("AssertWinner: %s holds %.4f, want at least %.4f", name, top.Fraction, minShare)
	}
}

// AssertSCBDelta asserts that enabling SCB lowered every strategy's mean
// by exactly complexity × cost factor × rounds.
func AssertSCBDelta(t *testing.T, res *sweep.SCBResult, rounds int) {
	t.Helper()
	for _, r := range res.Rows {
		want := -r.Complexity * res.CostFactor * float64(rounds)
		if math.Abs(r.Diff-want) > 1e-6 {
			t.Errorf("AssertSCBDelta: %s diff %.6f, want %.6f", r.Name, r.Diff, want)
		}
	}
}

// AssertNoiseBounded asserts that the named fixed-response strategies move
// between the first sweep level and every later one by at most
// slack × |Δε| × spread × rounds, spread being T − S.
func AssertNoiseBounded(t *testing.T, res *sweep.NoiseResult, names []string, spread float64, rounds int, slack float64) {
	t.Helper()
	base := res.Levels[0]
	for _, level := range res.Levels[1:] {
		bound := slack * math.Abs(level.Noise-base.Noise) * spread * float64(rounds)
		for _, name := range names {
			delta := math.Abs(level.Stats[name].Mean - base.Stats[name].Mean)
			if delta > bound {
				t.Errorf("AssertNoiseBounded: %s moved %.4f between ε=%g and ε=%g, bound %.4f",
					name, delta, base.Noise, level.Noise, bound)
			}
		}
	}
}
