// Package game defines the primitive values of the iterated Prisoner's
// Dilemma: moves, per-player histories, the payoff matrix and the error
// taxonomy shared by the rest of the simulator.
package game

import "strings"

// Move is a single-round action.
type Move uint8

const (
	Cooperate Move = iota
	Defect
)

// String returns the one-letter form used in match logs.
func (m Move) String() string {
	switch m {
	case Cooperate:
		return "C"
	case Defect:
		return "D"
	default:
		return "?"
	}
}

// Flip returns the opposite move.
func (m Move) Flip() Move {
	if m == Cooperate {
		return Defect
	}
	return Cooperate
}

// Round is one completed round seen from a single player's side.
type Round struct {
	Own Move `json:"own"`
	Opp Move `json:"opp"`
}

// History is the append-only record of completed rounds from one player's
// perspective. Each match keeps two of them, one per player, holding the
// moves actually played after noise.
type History []Round

// Last returns the most recent round. ok is false for an empty history.
func (h History) Last() (r Round, ok bool) {
	if len(h) == 0 {
		return Round{}, false
	}
	return h[len(h)-1], true
}

// String renders the history as "CD DD CC ..." (own move first).
func (h History) String() string {
	var b strings.Builder
	for i, r := range h {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(r.Own.String())
		b.WriteString(r.Opp.String())
	}
	return b.String()
}
