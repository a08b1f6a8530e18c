package game

import "fmt"

// PayoffMatrix holds the four payoffs of the symmetric 2x2 game.
type PayoffMatrix struct {
	T float64 `json:"t" yaml:"t"` // temptation: own D, opponent C
	R float64 `json:"r" yaml:"r"` // reward: both C
	P float64 `json:"p" yaml:"p"` // punishment: both D
	S float64 `json:"s" yaml:"s"` // sucker: own C, opponent D
}

// ClassicPayoffs is the (5,3,1,0) matrix.
var ClassicPayoffs = PayoffMatrix{T: 5, R: 3, P: 1, S: 0}

// NewPayoffMatrix validates T > R > P > S and 2R > T+S.
func NewPayoffMatrix(t, r, p, s float64) (PayoffMatrix, error) {
	m := PayoffMatrix{T: t, R: r, P: p, S: s}
	if err := m.Validate(); err != nil {
		return PayoffMatrix{}, err
	}
	return m, nil
}

// PayoffsFromSlice builds a matrix from a [T, R, P, S] vector.
func PayoffsFromSlice(v []float64) (PayoffMatrix, error) {
	if len(v) != 4 {
		return PayoffMatrix{}, &ConfigurationError{
			Field:  "payoffs",
			Reason: fmt.Sprintf("need exactly 4 values [T R P S], got %d", len(v)),
		}
	}
	return NewPayoffMatrix(v[0], v[1], v[2], v[3])
}

// Validate checks the ordering and convexity conditions.
func (m PayoffMatrix) Validate() error {
	if !(m.T > m.R && m.R > m.P && m.P > m.S) {
		return &InvalidPayoffError{T: m.T, R: m.R, P: m.P, S: m.S, Reason: "require T > R > P > S"}
	}
	if !(2*m.R > m.T+m.S) {
		return &InvalidPayoffError{T: m.T, R: m.R, P: m.P, S: m.S, Reason: "require 2R > T + S"}
	}
	return nil
}

// Payoff returns the score earned by a player who played own against opp.
func (m PayoffMatrix) Payoff(own, opp Move) float64 {
	switch {
	case own == Cooperate && opp == Cooperate:
		return m.R
	case own == Cooperate && opp == Defect:
		return m.S
	case own == Defect && opp == Cooperate:
		return m.T
	default:
		return m.P
	}
}

// Slice returns the matrix as [T, R, P, S].
func (m PayoffMatrix) Slice() []float64 {
	return []float64{m.T, m.R, m.P, m.S}
}

// Spread is T - S, the largest per-round swing one flipped move can cause.
func (m PayoffMatrix) Spread() float64 {
	return m.T - m.S
}

func (m PayoffMatrix) String() string {
	return fmt.Sprintf("T=%g R=%g P=%g S=%g", m.T, m.R, m.P, m.S)
}
