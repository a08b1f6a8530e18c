package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/nvandessel/dilemma/internal/engine"
	"github.com/nvandessel/dilemma/internal/evolution"
	"github.com/nvandessel/dilemma/internal/sweep"
)

// mdWriter accumulates the first write error so table code stays flat.
type mdWriter struct {
	w   io.Writer
	err error
}

func (m *mdWriter) printf(format string, args ...any) {
	if m.err != nil {
		return
	}
	_, m.err = fmt.Fprintf(m.w, format, args...)
}

func (m *mdWriter) row(cells ...string) {
	m.printf("| %s |\n", strings.Join(cells, " | "))
}

func (m *mdWriter) header(cells ...string) {
	m.row(cells...)
	sep := make([]string, len(cells))
	for i, c := range cells {
		sep[i] = strings.Repeat("-", max(len(c), 3))
	}
	m.printf("|-%s-|\n", strings.Join(sep, "-|-"))
}

// WriteTournamentMarkdown writes the ranked leaderboard.
func WriteTournamentMarkdown(w io.Writer, res *engine.Result) error {
	m := &mdWriter{w: w}
	m.printf("# Tournament Results\n\n")
	m.header("Rank", "Strategy", "Mean", "95% CI Lower", "95% CI Upper", "Std Dev")
	for _, e := range res.Ranked() {
		s := e.Stats
		m.row(fmt.Sprint(e.Rank), e.Name, ff(s.Mean, 2), ff(s.CILower, 2), ff(s.CIUpper, 2), ff(s.Stdev, 2))
	}
	return m.err
}

// WriteSweepMarkdown writes one mean column per noise level and the impact
// table.
func WriteSweepMarkdown(w io.Writer, res *sweep.NoiseResult) error {
	m := &mdWriter{w: w}
	m.printf("# Noise Sweep Results\n\n")

	cols := []string{"Strategy"}
	for _, level := range res.Levels {
		cols = append(cols, "ε="+ff(level.Noise, 2))
	}
	m.header(cols...)
	for _, name := range res.Names {
		cells := []string{name}
		for _, level := range res.Levels {
			cells = append(cells, ff(level.Stats[name].Mean, 2))
		}
		m.row(cells...)
	}

	if impacts := res.Impacts(); len(impacts) > 0 {
		m.printf("\n## Noise Impact\n\n")
		m.header("Strategy", "Low noise", "High noise", "Drop %", "Verdict")
		for _, im := range impacts {
			m.row(im.Name, ff(im.Low, 2), ff(im.High, 2), ff(im.DropPct, 1), im.Verdict())
		}
	}
	return m.err
}

// WriteEvolutionMarkdown writes the population history.
func WriteEvolutionMarkdown(w io.Writer, res *evolution.Result) error {
	m := &mdWriter{w: w}
	m.printf("# Evolution: %s\n\n", res.Label)
	m.header(append([]string{"Generation"}, res.Names...)...)
	for gen, pop := range res.History {
		cells := []string{fmt.Sprint(gen)}
		for _, name := range res.Names {
			cells = append(cells, ff(pop[name], 4))
		}
		m.row(cells...)
	}
	return m.err
}
