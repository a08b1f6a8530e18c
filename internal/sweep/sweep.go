// Package sweep drives repeated tournaments over the same roster: a noise
// sweep across epsilon levels and an SCB on/off comparison. Every phase
// rewinds the roster first, so its result does not depend on which phases
// ran before it.
package sweep

import (
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

// LevelResult is the tournament outcome at one noise level.
type LevelResult struct {
	Noise  float64                     `json:"epsilon"`
	Stats  map[string]stats.ScoreStats `json:"results"`
	Result *engine.Result              `json:"-"`
}

// NoiseResult is the outcome of a full sweep, in level order.
type NoiseResult struct {
	Names  []string      `json:"strategies"`
	Levels []LevelResult `json:"levels"`
}

// ByNoise returns the per-strategy stats keyed by noise level.
func (r *NoiseResult) ByNoise() map[float64]map[string]stats.ScoreStats {
	out := make(map[float64]map[string]stats.ScoreStats, len(r.Levels))
	for _, l := range r.Levels {
		out[l.Noise] = l.Stats
	}
	return out
}

// Impact is the change of one strategy's mean between the lowest and the
// highest noise level of a sweep.
type Impact struct {
	Name    string  `json:"strategy"`
	Low     float64 `json:"low_noise_mean"`
	High    float64 `json:"high_noise_mean"`
	DropPct float64 `json:"drop_pct"`
}

// Verdict buckets the drop into collapse, significant, moderate or robust.
func (im Impact) Verdict() string {
	switch {
	case im.DropPct > constants.CollapseDropPercent:
		return "collapse"
	case im.DropPct > constants.SignificantDropPercent:
		return "significant"
	case im.DropPct > constants.ModerateDropPercent:
		return "moderate"
	default:
		return "robust"
	}
}

// Impacts computes the drop of every strategy from the lowest to the
// highest level, largest drop first. A zero baseline gives a zero drop.
func (r *NoiseResult) Impacts() []Impact {
	if len(r.Levels) < 2 {
		return nil
	}
	low, high := r.Levels[0], r.Levels[0]
	for _, l := range r.Levels[1:] {
		if l.Noise < low.Noise {
			low = l
		}
		if l.Noise > high.Noise {
			high = l
		}
	}

	out := make([]Impact, 0, len(r.Names))
	for _, name := range r.Names {
		im := Impact{Name: name, Low: low.Stats[name].Mean, High: high.Stats[name].Mean}
		if im.Low != 0 {
			im.DropPct = (im.Low - im.High) / math.Abs(im.Low) * 100
		}
		out = append(out, im)
	}
	sortImpacts(out)
	return out
}

// Driver runs sweeps and comparisons for one roster.
type Driver struct {
	ctx     engine.Context
	rounds  int
	repeats int
	logger  *slog.Logger
	trace   *logging.TraceLogger
}

// NewDriver creates a driver. ctx supplies payoffs, SCB and the configured
// noise level.
func NewDriver(ctx engine.Context, rounds, repeats int) *Driver {
	return &Driver{ctx: ctx, rounds: rounds, repeats: repeats}
}

// SetLogger sets the structured logger and trace logger.
func (d *Driver) SetLogger(logger *slog.Logger, trace *logging.TraceLogger) {
	d.logger = logger
	d.trace = trace
}

// ValidateLevels checks a sweep's noise levels: each within [0, 1] and no
// level listed twice, since results are keyed by level.
func ValidateLevels(levels []float64) error {
	seen := make(map[float64]bool, len(levels))
	for _, eps := range levels {
		if math.IsNaN(eps) || eps < 0 || eps > 1 {
			return &game.ConfigurationError{
				Field:  "epsilon_values",
				Reason: fmt.Sprintf("must be between 0 and 1, got %g", eps),
			}
		}
		if seen[eps] {
			return &game.ConfigurationError{
				Field:  "epsilon_values",
				Reason: fmt.Sprintf("duplicate noise level %g", eps),
			}
		}
		seen[eps] = true
	}
	return nil
}

// Noise runs one tournament per level, in the given order. The roster is
// rewound before each level. The driver's own context is left untouched.
func (d *Driver) Noise(players []*strategy.Strategy, levels []float64) (*NoiseResult, error) {
	if len(levels) == 0 {
		return nil, &game.ConfigurationError{Field: "epsilon_values", Reason: "at least one noise level is required"}
	}
	if err := ValidateLevels(levels); err != nil {
		return nil, err
	}

	log := logging.OrDiscard(d.logger)
	res := &NoiseResult{Names: strategy.Names(players), Levels: make([]LevelResult, 0, len(levels))}

	for _, eps := range levels {
		strategy.RewindAll(players)
		ctx := d.ctx.WithNoise(eps)
		ctx.Logger, ctx.Trace = d.logger, d.trace

		t, err := ctx.RunTournament(players, d.rounds, d.repeats)
		if err != nil {
			return nil, err
		}
		res.Levels = append(res.Levels, LevelResult{Noise: eps, Stats: t.Stats, Result: t})

		log.Debug("noise level complete", "epsilon", eps, "matches", t.Matches)
		d.trace.Event("sweep.level", map[string]any{
			"epsilon": eps,
			"means":   means(t.Stats),
		})
	}
	return res, nil
}

func means(m map[string]stats.ScoreStats) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v.Mean
	}
	return out
}

func sortImpacts(im []Impact) {
	sort.Slice(im, func(i, j int) bool {
		if im[i].DropPct != im[j].DropPct {
			return im[i].DropPct > im[j].DropPct
		}
		return im[i].Name < im[j].Name
	})
}
