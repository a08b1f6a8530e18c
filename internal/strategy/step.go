package strategy

import (
	"fmt"
	"math/rand/v2"

	"github.com/nvandessel/dilemma/internal/game"
)

// proberOpening is the fixed probe a prober plays before classifying.
var proberOpening = []game.Move{game.Defect, game.Cooperate, game.Cooperate}

// Step is the single decision dispatcher. Given a kind, its parameters, the
// current state and the player's own history it returns the intended move
// and the successor state. The only randomness it consumes is the
// cooperation draw of KindRandom.
func Step(k Kind, p Params, st State, h game.History, rng *rand.Rand) (game.Move, State) {
	switch k {
	case KindAllCooperate:
		return game.Cooperate, st
	case KindAllDefect:
		return game.Defect, st
	case KindTitForTat:
		return mirror(h), st
	case KindGrimTrigger:
		return stepGrim(st.(GrimState), h)
	case KindPavlov:
		return stepPavlov(h), st
	case KindContriteTitForTat:
		return stepContrite(st.(ContriteState), h)
	case KindProber:
		return stepProber(st.(ProberState), h)
	case KindRandom:
		if rng.Float64() < p.Cooperation {
			return game.Cooperate, st
		}
		return game.Defect, st
	default:
		panic(fmt.Sprintf("strategy: unhandled kind %d", int(k)))
	}
}

// mirror cooperates first, then repeats the opponent's last move.
func mirror(h game.History) game.Move {
	last, ok := h.Last()
	if !ok {
		return game.Cooperate
	}
	return last.Opp
}

func stepGrim(st GrimState, h game.History) (game.Move, State) {
	if last, ok := h.Last(); ok && last.Opp == game.Defect {
		st.Triggered = true
	}
	if st.Triggered {
		return game.Defect, st
	}
	return game.Cooperate, st
}

// stepPavlov is win-stay/lose-shift: keep the last move after the opponent
// cooperated (R or T), switch after it defected (S or P).
func stepPavlov(h game.History) game.Move {
	last, ok := h.Last()
	if !ok {
		return game.Cooperate
	}
	if last.Opp == game.Cooperate {
		return last.Own
	}
	return last.Own.Flip()
}

// stepContrite plays tit-for-tat, except that after its own unintended
// defection against a cooperator it cooperates through the next round
// instead of retaliating against the opponent's answer.
func stepContrite(st ContriteState, h game.History) (game.Move, State) {
	last, ok := h.Last()
	var move game.Move
	switch {
	case !ok:
		move = game.Cooperate
	case st.Contrite:
		st.Contrite = false
		move = game.Cooperate
	case last.Own == game.Defect && st.Intended == game.Cooperate && last.Opp == game.Cooperate:
		st.Contrite = true
		move = game.Cooperate
	default:
		move = last.Opp
	}
	st.Intended = move
	return move, st
}

func stepProber(st ProberState, h game.History) (game.Move, State) {
	n := len(h)
	if st.Phase == Probing {
		if n < len(proberOpening) {
			return proberOpening[n], st
		}
		// The opponent answered the opening defection in rounds 2 and 3.
		if h[1].Opp == game.Cooperate && h[2].Opp == game.Cooperate {
			st.Phase = Exploiting
		} else {
			st.Phase = Reciprocating
		}
	}
	if st.Phase == Exploiting {
		return game.Defect, st
	}
	return mirror(h), st
}
