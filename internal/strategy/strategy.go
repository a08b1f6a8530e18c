// Package strategy implements the Prisoner's Dilemma strategies as a closed
// set of kinds. A Strategy instance pairs a kind with its typed per-match
// state and a private random stream used for noise and stochastic play.
package strategy

import (
	"math/rand/v2"

	"github.com/nvandessel/dilemma/internal/game"
)

// Kind enumerates the strategy variants.
type Kind int

const (
	KindAllCooperate Kind = iota
	KindAllDefect
	KindTitForTat
	KindGrimTrigger
	KindPavlov
	KindContriteTitForTat
	KindProber
	KindRandom
)

// Params carries the per-instance parameters of parametrised kinds.
type Params struct {
	// Cooperation is the probability that KindRandom cooperates.
	Cooperation float64
}

// Strategy is one player. Instances are not safe for concurrent use and
// must never share their random stream with another instance.
type Strategy struct {
	name       string
	kind       Kind
	params     Params
	complexity float64

	state State
	seed  uint64
	rng   *rand.Rand
}

func newStrategy(name string, kind Kind, params Params, seed uint64) *Strategy {
	s := &Strategy{
		name:       name,
		kind:       kind,
		params:     params,
		complexity: complexityOf(kind),
	}
	s.reseed(seed)
	return s
}

// Name is the identity under which scores are aggregated.
func (s *Strategy) Name() string { return s.name }

// Kind returns the variant.
func (s *Strategy) Kind() Kind { return s.kind }

// Complexity is the static SCB rating of the kind. It is never consulted
// by decision logic.
func (s *Strategy) Complexity() float64 { return s.complexity }

// State returns the current per-match state.
func (s *Strategy) State() State { return s.state }

// Seed returns the seed the random stream was created from.
func (s *Strategy) Seed() uint64 { return s.seed }

// Decide returns the intended move for the next round given the player's
// own history, and commits the successor state.
func (s *Strategy) Decide(h game.History) game.Move {
	move, next := Step(s.kind, s.params, s.state, h, s.rng)
	s.state = next
	return move
}

// DecideWithNoise is Decide followed by an independent flip with
// probability noise, drawn from the instance's own stream. No draw is
// made when noise is zero.
func (s *Strategy) DecideWithNoise(h game.History, noise float64) game.Move {
	return s.applyNoise(s.Decide(h), noise)
}

func (s *Strategy) applyNoise(m game.Move, noise float64) game.Move {
	if noise > 0 && s.rng.Float64() < noise {
		return m.Flip()
	}
	return m
}

// Reset clears per-match state. It must run before every independent
// trial; the random stream continues where it was.
func (s *Strategy) Reset() {
	s.state = initialState(s.kind)
}

// Rewind resets state and restarts the random stream from the construction
// seed, so a later phase of a run replays exactly like the first.
func (s *Strategy) Rewind() {
	s.reseed(s.seed)
}

// Clone returns an independent copy of the same variant: state reset and a
// fresh random stream whose seed is drawn from this instance's stream.
// Self-play always pits an instance against a clone, never itself.
func (s *Strategy) Clone() *Strategy {
	return newStrategy(s.name, s.kind, s.params, s.rng.Uint64())
}

func (s *Strategy) reseed(seed uint64) {
	s.seed = seed
	s.rng = rand.New(rand.NewPCG(seed, splitmix64(seed)))
	s.state = initialState(s.kind)
}

// DeriveSeed mixes a run seed with a roster position so that every
// instance built for one run gets its own stream.
func DeriveSeed(base int64, index int) uint64 {
	return splitmix64(uint64(base) + uint64(index+1)*0x9e3779b97f4a7c15)
}

func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
