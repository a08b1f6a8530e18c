package report

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"github.com/nvandessel/dilemma/internal/engine"
	"github.com/nvandessel/dilemma/internal/evolution"
	"github.com/nvandessel/dilemma/internal/stats"
	"github.com/nvandessel/dilemma/internal/sweep"
)

func ci(s stats.ScoreStats) string {
	return fmt.Sprintf("[%.2f, %.2f]", s.CILower, s.CIUpper)
}

// Leaderboard prints the ranked tournament results.
func (p *Printer) Leaderboard(res *engine.Result) {
	p.heading("Tournament Results")
	p.printf("%d strategies, %s matches of %s rounds, %d repeats per pairing, epsilon %g\n\n",
		len(res.Names), humanize.Comma(int64(res.Matches)), humanize.Comma(int64(res.Rounds)), res.Repeats, res.Noise)
	p.table(func(tw io.Writer) {
		row(tw, "Rank", "Strategy", "Mean", "95% CI", "Std Dev", "N")
		for _, e := range res.Ranked() {
			s := e.Stats
			row(tw, fmt.Sprint(e.Rank), e.Name, f2(s.Mean), ci(s), f2(s.Stdev), fmt.Sprint(s.N))
		}
	})
	p.printf("\n")
}

// Pairwise prints the mean score matrix. Off-diagonal cells read
// "row : column"; a self-pairing shows a single value.
func (p *Printer) Pairwise(res *engine.Result) {
	p.heading("Pairwise Scores")
	p.table(func(tw io.Writer) {
		row(tw, append([]string{""}, res.Names...)...)
		for i, name := range res.Names {
			cells := []string{name}
			for j, cell := range res.Pairwise[i] {
				if i == j {
					cells = append(cells, fmt.Sprintf("%.1f", cell.Own))
				} else {
					cells = append(cells, fmt.Sprintf("%.1f : %.1f", cell.Own, cell.Opp))
				}
			}
			row(tw, cells...)
		}
	})
	p.printf("\n")
}

// Sweep prints each strategy's mean at every noise level.
func (p *Printer) Sweep(res *sweep.NoiseResult) {
	p.heading("Noise Sweep")
	p.table(func(tw io.Writer) {
		header := []string{"Strategy"}
		for _, level := range res.Levels {
			header = append(header, fmt.Sprintf("ε=%.2f", level.Noise))
		}
		row(tw, header...)
		for _, name := range res.Names {
			cells := []string{name}
			for _, level := range res.Levels {
				s := level.Stats[name]
				cells = append(cells, fmt.Sprintf("%.2f ±%.2f", s.Mean, s.Margin()))
			}
			row(tw, cells...)
		}
	})
	p.printf("\n")
}

// Impacts prints how much each strategy lost from the lowest to the
// highest noise level.
func (p *Printer) Impacts(res *sweep.NoiseResult) {
	impacts := res.Impacts()
	if len(impacts) == 0 {
		return
	}
	p.heading("Noise Impact")
	p.table(func(tw io.Writer) {
		row(tw, "Strategy", "Low noise", "High noise", "Drop", "Verdict")
		for _, im := range impacts {
			verdict := im.Verdict()
			switch verdict {
			case "collapse", "significant":
				verdict = p.paint(verdict, ansiRed)
			case "robust":
				verdict = p.paint(verdict, ansiGreen)
			}
			row(tw, im.Name, f2(im.Low), f2(im.High), fmt.Sprintf("%.1f%%", im.DropPct), verdict)
		}
	})
	p.printf("\n")
}

// Evolution prints the population history, the winner and the runners-up.
func (p *Printer) Evolution(res *evolution.Result) {
	p.heading("Evolution: " + res.Label)
	step := max(p.EvolutionStep, 1)
	last := len(res.History) - 1
	p.table(func(tw io.Writer) {
		row(tw, append([]string{"Gen"}, res.Names...)...)
		for g, pop := range res.History {
			if g%step != 0 && g != last {
				continue
			}
			cells := []string{fmt.Sprint(g)}
			for _, name := range res.Names {
				cells = append(cells, fmt.Sprintf("%.4f", pop[name]))
			}
			row(tw, cells...)
		}
	})

	standings := res.Standings()
	if len(standings) > 0 {
		p.printf("\nWinner: %s (%.2f%%)\n", standings[0].Name, standings[0].Fraction*100)
		for i, s := range standings[1:min(len(standings), 3)] {
			p.printf("  %s: %s (%.2f%%)\n", humanize.Ordinal(i+2), s.Name, s.Fraction*100)
		}
	}
	for _, w := range res.Warnings {
		p.printf("warning: %s\n", w)
	}
	p.printf("\n")
}

// EvolutionPair prints the noise-free run followed by the noisy one.
func (p *Printer) EvolutionPair(pair *evolution.Pair) {
	p.Evolution(pair.NoiseFree)
	p.Evolution(pair.Noisy)
}

func (p *Printer) rankChange(r sweep.SCBRow) string {
	switch d := r.RankChange(); {
	case d > 0:
		return p.paint(fmt.Sprintf("↑%d", d), ansiGreen)
	case d < 0:
		return p.paint(fmt.Sprintf("↓%d", -d), ansiRed)
	default:
		return "="
	}
}

// SCB prints the with/without comparison in with-SCB leaderboard order.
func (p *Printer) SCB(res *sweep.SCBResult) {
	p.heading("SCB Comparison")
	p.printf("cost factor %g per complexity unit per round\n\n", res.CostFactor)
	p.table(func(tw io.Writer) {
		row(tw, "Strategy", "Complexity", "Without SCB", "With SCB", "Diff", "Rank", "Change")
		for _, r := range res.Rows {
			rank := humanize.Ordinal(r.RankBefore) + " → " + humanize.Ordinal(r.RankAfter)
			row(tw, r.Name, fmt.Sprintf("%.1f", r.Complexity), f2(r.Without.Mean), f2(r.With.Mean),
				fmt.Sprintf("%+.2f", r.Diff), rank, p.rankChange(r))
		}
	})
	p.printf("\n")
}

// Exploit prints the exploiter's result against every victim.
func (p *Printer) Exploit(res *engine.ExploitResult) {
	p.heading(fmt.Sprintf("Exploitation: %s (epsilon %g)", res.Exploiter, res.Noise))
	p.table(func(tw io.Writer) {
		row(tw, "Victim", res.Exploiter, "95% CI", "Victim score", "95% CI")
		for _, r := range res.Rows {
			row(tw, r.Victim, f2(r.Exploiter.Mean), ci(r.Exploiter), f2(r.Target.Mean), ci(r.Target))
		}
	})
	if s, ok := res.Stats[res.Exploiter]; ok {
		p.printf("\nOverall %s: %.2f %s over %d games\n", res.Exploiter, s.Mean, ci(s), s.N)
	}
	p.printf("\n")
}

// NoiseComparison prints how noise changes the exploiter's score against
// each victim.
func (p *Printer) NoiseComparison(c *engine.NoiseComparison) {
	p.heading(fmt.Sprintf("Noise Effect on %s", c.Exploiter))
	p.table(func(tw io.Writer) {
		row(tw, "Victim", "Noise-free", fmt.Sprintf("ε=%g", c.Noisy.Noise), "Change")
		for i, base := range c.Baseline.Rows {
			noisy := c.Noisy.Rows[i]
			row(tw, base.Victim, f2(base.Exploiter.Mean), f2(noisy.Exploiter.Mean),
				fmt.Sprintf("%+.2f", noisy.Exploiter.Mean-base.Exploiter.Mean))
		}
	})
	p.printf("\n")
}

// Match prints a single game round by round.
func (p *Printer) Match(m engine.Match) {
	p.heading(fmt.Sprintf("Match: %s vs %s", m.Player1, m.Player2))
	p.table(func(tw io.Writer) {
		row(tw, "Round", m.Player1, m.Player2, "Payoffs")
		for _, t := range m.Turns {
			row(tw, fmt.Sprint(t.Round), t.Move1.String(), t.Move2.String(), fmt.Sprintf("%g : %g", t.Payoff1, t.Payoff2))
		}
	})
	p.printf("\n")
	p.table(func(tw io.Writer) {
		row(tw, "", m.Player1, m.Player2)
		row(tw, "Raw", f2(m.Raw1), f2(m.Raw2))
		if m.Cost1 != 0 || m.Cost2 != 0 {
			row(tw, "SCB cost", f2(-m.Cost1), f2(-m.Cost2))
		}
		row(tw, "Score", f2(m.Score1), f2(m.Score2))
	})
	p.printf("\n")
}

// MixedPopulation prints where the exploiter of a tournament finished and
// how far it trails the leader.
func (p *Printer) MixedPopulation(a *stats.MixedAnalysis) {
	p.heading(fmt.Sprintf("Mixed Population: %s", a.Exploiter))
	p.table(func(tw io.Writer) {
		row(tw, "Rank", "Strategy", "Mean", "95% CI", "")
		for _, e := range a.Ranking {
			note := ""
			if e.Name == a.Exploiter {
				note = "← exploiter"
			}
			row(tw, fmt.Sprint(e.Rank), e.Name, f2(e.Stats.Mean), ci(e.Stats), note)
		}
	})

	verdict := a.Verdict
	switch a.Verdict {
	case stats.VerdictDominates:
		verdict = p.paint(verdict, ansiGreen)
	case stats.VerdictPoor:
		verdict = p.paint(verdict, ansiRed)
	}
	p.printf("\n%s finished %s of %d strategies: %s\n", a.Exploiter, humanize.Ordinal(a.Rank), a.Total, verdict)
	if a.Rank > 1 {
		p.printf("Gap to leader %s: %.2f points\n", a.Leader, a.Gap)
	}
	p.printf("\n")
}
