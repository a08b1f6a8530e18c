// Package constants provides named constants used throughout the simulator.
// This centralizes magic numbers for better maintainability and documentation.
package constants

// Run defaults
const (
	// DefaultRounds is the number of rounds in one match.
	DefaultRounds = 50

	// DefaultRepeats is the number of independent trials per pairing.
	DefaultRepeats = 5

	// DefaultSeed seeds every strategy stream when no seed is configured.
	DefaultSeed = 42

	// DefaultGenerations is the length of an evolutionary run.
	DefaultGenerations = 50

	// DefaultSCBCostFactor is the per-round cost of one complexity unit.
	DefaultSCBCostFactor = 0.1

	// DefaultRandomCooperation is the cooperation probability of a bare
	// "RandomStrategy" name.
	DefaultRandomCooperation = 0.5
)

// DefaultNoiseLevels is the epsilon list used by the noise sweep.
var DefaultNoiseLevels = []float64{0.0, 0.05, 0.1, 0.15, 0.2}

// Statistics constants
const (
	// ConfidenceZ is the two-sided 95% normal quantile. A fixed z-value is
	// used instead of Student's t for every sample size.
	ConfidenceZ = 1.96
)

// Replicator dynamics thresholds
const (
	// ExtinctionThreshold is the population share below which a strategy
	// is treated as extinct: zero fitness and no weight as an opponent.
	ExtinctionThreshold = 1e-6

	// DegenerateFitnessEpsilon is the average fitness below which a
	// generation update is skipped.
	DegenerateFitnessEpsilon = 1e-9

	// PopulationSumTolerance is the allowed drift of the population total
	// from 1 before a warning is raised.
	PopulationSumTolerance = 1e-6
)

// Noise impact buckets (percentage drop from the lowest to the highest
// epsilon of a sweep).
const (
	CollapseDropPercent    = 50.0
	SignificantDropPercent = 30.0
	ModerateDropPercent    = 10.0
)
