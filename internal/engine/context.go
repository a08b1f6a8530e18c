// Package engine plays matches and round-robin tournaments between
// strategy instances. All run parameters travel in an explicit Context
// value; nothing in the package keeps global state.
package engine

import (
	"log/slog"
	"math"

	"github.com/nvandessel/dilemma/internal/game"
	"github.com/nvandessel/dilemma/internal/logging"
)

// SCB holds the Strategic Complexity Budget settings. When enabled, every
// player's match total is reduced by complexity × CostFactor × rounds.
type SCB struct {
	Enabled    bool    `json:"enabled"`
	CostFactor float64 `json:"cost_factor"`
}

// Context is the simulation context shared by every match of one phase.
type Context struct {
	Payoffs game.PayoffMatrix `json:"payoffs"`
	Noise   float64           `json:"noise"`
	SCB     SCB               `json:"scb"`

	// Logger receives per-pair debug output. Nil disables it.
	Logger *slog.Logger `json:"-"`
	// Trace receives per-pair trace events. Nil disables it.
	Trace *logging.TraceLogger `json:"-"`
}

// NewContext returns a context with the classic payoffs, no noise and SCB
// disabled.
func NewContext() Context {
	return Context{Payoffs: game.ClassicPayoffs}
}

// Validate checks the payoffs, the noise probability and the SCB cost.
func (c Context) Validate() error {
	if err := c.Payoffs.Validate(); err != nil {
		return err
	}
	if math.IsNaN(c.Noise) || c.Noise < 0 || c.Noise > 1 {
		return &game.ConfigurationError{Field: "epsilon", Reason: "noise must be within [0, 1]"}
	}
	if math.IsNaN(c.SCB.CostFactor) || c.SCB.CostFactor < 0 {
		return &game.ConfigurationError{Field: "scb_cost_factor", Reason: "cost factor must not be negative"}
	}
	return nil
}

// WithNoise returns a copy of c at another noise level.
func (c Context) WithNoise(noise float64) Context {
	c.Noise = noise
	return c
}

// WithSCB returns a copy of c with SCB switched on or off. The cost factor
// is kept.
func (c Context) WithSCB(enabled bool) Context {
	c.SCB.Enabled = enabled
	return c
}

// SCBCost is the deduction applied to one player's match total.
func (c Context) SCBCost(complexity float64, rounds int) float64 {
	if !c.SCB.Enabled {
		return 0
	}
	return complexity * c.SCB.CostFactor * float64(rounds)
}

func (c Context) logger() *slog.Logger {
	return logging.OrDiscard(c.Logger)
}
