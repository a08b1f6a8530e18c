package engine

import (
	"github.com/nvandessel/dilemma/internal/game"
	"github.com/nvandessel/dilemma/internal/strategy"
)

// Turn is one round of a logged match, moves as actually played.
type Turn struct {
	Round   int       `json:"round"`
	Move1   game.Move `json:"-"`
	Move2   game.Move `json:"-"`
	Moves   string    `json:"moves"`
	Payoff1 float64   `json:"payoff1"`
	Payoff2 float64   `json:"payoff2"`
}

// Match is the full record of one logged game.
type Match struct {
	Player1 string  `json:"player1"`
	Player2 string  `json:"player2"`
	Rounds  int     `json:"rounds"`
	Turns   []Turn  `json:"turns"`
	Raw1    float64 `json:"raw_score1"`
	Raw2    float64 `json:"raw_score2"`
	Cost1   float64 `json:"scb_cost1"`
	Cost2   float64 `json:"scb_cost2"`
	Score1  float64 `json:"score1"`
	Score2  float64 `json:"score2"`
}

// RunGame plays rounds rounds between p1 and p2 and returns their totals
// after the SCB deduction. Each player decides against its own history,
// which records the moves actually played after noise. Neither player is
// reset; callers reset before each independent trial.
func (c Context) RunGame(p1, p2 *strategy.Strategy, rounds int) (float64, float64) {
	s1, s2 := c.play(p1, p2, rounds, nil)
	return s1 - c.SCBCost(p1.Complexity(), rounds), s2 - c.SCBCost(p2.Complexity(), rounds)
}

// PlayMatch resets both players and plays one logged game.
func (c Context) PlayMatch(p1, p2 *strategy.Strategy, rounds int) Match {
	p1.Reset()
	p2.Reset()

	turns := make([]Turn, 0, max(rounds, 0))
	raw1, raw2 := c.play(p1, p2, rounds, func(t Turn) {
		turns = append(turns, t)
	})

	m := Match{
		Player1: p1.Name(),
		Player2: p2.Name(),
		Rounds:  rounds,
		Turns:   turns,
		Raw1:    raw1,
		Raw2:    raw2,
		Cost1:   c.SCBCost(p1.Complexity(), rounds),
		Cost2:   c.SCBCost(p2.Complexity(), rounds),
	}
	m.Score1 = m.Raw1 - m.Cost1
	m.Score2 = m.Raw2 - m.Cost2
	return m
}

func (c Context) play(p1, p2 *strategy.Strategy, rounds int, record func(Turn)) (float64, float64) {
	if rounds <= 0 {
		return 0, 0
	}

	h1 := make(game.History, 0, rounds)
	h2 := make(game.History, 0, rounds)
	var s1, s2 float64

	for r := 0; r < rounds; r++ {
		m1 := p1.DecideWithNoise(h1, c.Noise)
		m2 := p2.DecideWithNoise(h2, c.Noise)

		pay1 := c.Payoffs.Payoff(m1, m2)
		pay2 := c.Payoffs.Payoff(m2, m1)
		s1 += pay1
		s2 += pay2

		h1 = append(h1, game.Round{Own: m1, Opp: m2})
		h2 = append(h2, game.Round{Own: m2, Opp: m1})

		if record != nil {
			record(Turn{
				Round:   r + 1,
				Move1:   m1,
				Move2:   m2,
				Moves:   m1.String() + m2.String(),
				Payoff1: pay1,
				Payoff2: pay2,
			})
		}
	}
	return s1, s2
}
