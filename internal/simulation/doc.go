// Package simulation provides a scenario test harness for validating the
// emergent dynamics of tournaments, sweeps and replicator evolution.
//
// The harness exercises the real strategy registry, match runner,
// tournament engine, sweep driver and evolution engine with no mocks.
// Scenarios name strategies by registry token; the runner builds the
// roster, runs every phase the scenario asks for and hands back the
// results for property-based assertions.
//
// Each test gets a sandboxed HOME so nothing touches user configuration,
// and engine debug output goes to the test log.
//
// Usage:
//
//	func TestDefectorsInvade(t *testing.T) {
//	    r := simulation.NewRunner(t)
//	    result := r.Run(simulation.Scenario{
//	        Name:        "defectors-invade",
//	        Strategies:  []string{"AllCooperate", "AllDefect"},
//	        Rounds:      10,
//	        Generations: 30,
//	    })
//	    simulation.AssertWinner(t, result.Evolution, "AllDefect", 0.99)
//	}
package simulation
