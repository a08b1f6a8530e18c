package strategy

import "github.com/nvandessel/dilemma/internal/game"

// State is the per-match memory of a strategy. The set of implementations
// is closed: each Kind owns exactly one state type, and Step returns the
// successor state alongside the move instead of mutating hidden fields.
type State interface {
	isState()
}

// Stateless is the state of kinds that only read the history.
type Stateless struct{}

// GrimState records whether the trigger has fired.
type GrimState struct {
	Triggered bool
}

// ContriteState tracks the move the strategy intended last round, so that
// a defection it never chose (a noise flip) can be recognised, and whether
// it is currently absorbing the opponent's retaliation.
type ContriteState struct {
	Intended game.Move
	Contrite bool
}

// ProberPhase is the branch a prober is in.
type ProberPhase int

const (
	Probing ProberPhase = iota
	Exploiting
	Reciprocating
)

func (p ProberPhase) String() string {
	switch p {
	case Probing:
		return "probing"
	case Exploiting:
		return "exploiting"
	case Reciprocating:
		return "reciprocating"
	default:
		return "unknown"
	}
}

// ProberState holds the phase; Exploiting and Reciprocating are absorbing.
type ProberState struct {
	Phase ProberPhase
}

func (Stateless) isState()     {}
func (GrimState) isState()     {}
func (ContriteState) isState() {}
func (ProberState) isState()   {}

// initialState returns the state a kind starts every match in.
func initialState(k Kind) State {
	switch k {
	case KindGrimTrigger:
		return GrimState{}
	case KindContriteTitForTat:
		return ContriteState{Intended: game.Cooperate}
	case KindProber:
		return ProberState{Phase: Probing}
	default:
		return Stateless{}
	}
}
