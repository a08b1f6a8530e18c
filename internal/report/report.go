// Package report renders simulation results as aligned plain-text tables
// for the terminal.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/mattn/go-isatty"

	"github.com/nvandessel/dilemma/internal/config"
	"github.com/nvandessel/dilemma/internal/engine"
	"github.com/nvandessel/dilemma/internal/game"
	"github.com/nvandessel/dilemma/internal/strategy"
)

const (
	ansiGreen = "\x1b[32m"
	ansiRed   = "\x1b[31m"
	ansiReset = "\x1b[0m"
)

// DefaultEvolutionStep is the generation stride of printed histories.
const DefaultEvolutionStep = 10

// Printer writes report sections to w. The first write error is kept and
// every later call becomes a no-op; check Err after printing.
type Printer struct {
	w     io.Writer
	color bool
	err   error

	// EvolutionStep prints every EvolutionStep-th generation of a history.
	// The final generation is always printed.
	EvolutionStep int
}

// NewPrinter creates a printer. Colour is enabled when w is a terminal.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, color: isTerminal(w), EvolutionStep: DefaultEvolutionStep}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// SetColor overrides terminal detection.
func (p *Printer) SetColor(on bool) {
	p.color = on
}

// Err returns the first write error.
func (p *Printer) Err() error {
	return p.err
}

func (p *Printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *Printer) heading(title string) {
	p.printf("%s\n%s\n\n", title, strings.Repeat("=", utf8.RuneCountInString(title)))
}

// table lays out rows written by fill. Cells are tab separated and every
// row ends in a newline.
func (p *Printer) table(fill func(tw io.Writer)) {
	if p.err != nil {
		return
	}
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fill(tw)
	p.err = tw.Flush()
}

func (p *Printer) paint(s, code string) string {
	if !p.color {
		return s
	}
	return code + s + ansiReset
}

func row(w io.Writer, cells ...string) {
	fmt.Fprintln(w, strings.Join(cells, "\t"))
}

func f2(v float64) string { return fmt.Sprintf("%.2f", v) }

// Config prints the run settings.
func (p *Printer) Config(cfg *config.Config) {
	p.heading("Configuration")
	scb := "disabled"
	if cfg.EnableSCB {
		scb = fmt.Sprintf("enabled (cost factor %g)", cfg.SCBCostFactor)
	}
	payoffs := strings.Trim(fmt.Sprint(cfg.PayoffVector), "[]")
	if pm, err := cfg.Payoffs(); err == nil {
		payoffs = pm.String()
	}
	p.table(func(tw io.Writer) {
		row(tw, "  Strategies:", strings.Join(cfg.StrategyNames, ", "))
		row(tw, "  Rounds:", fmt.Sprint(cfg.Rounds))
		row(tw, "  Repeats:", fmt.Sprint(cfg.Repeats))
		row(tw, "  Epsilon:", fmt.Sprintf("%g", cfg.Epsilon))
		row(tw, "  Seed:", fmt.Sprint(cfg.Seed))
		row(tw, "  Payoffs:", payoffs)
		row(tw, "  SCB:", scb)
	})
	p.printf("\n")
}

// Payoffs prints the row player's payoff for each move pair.
func (p *Printer) Payoffs(m game.PayoffMatrix) {
	p.heading("Payoff Matrix")
	p.table(func(tw io.Writer) {
		row(tw, "", "C", "D")
		row(tw, "  C", fmt.Sprintf("%g", m.R), fmt.Sprintf("%g", m.S))
		row(tw, "  D", fmt.Sprintf("%g", m.T), fmt.Sprintf("%g", m.P))
	})
	p.printf("\n")
}

// Catalogue prints the strategy registry.
func (p *Printer) Catalogue(infos []strategy.Info) {
	p.heading("Strategies")
	p.table(func(tw io.Writer) {
		row(tw, "Name", "Complexity", "Reason", "Description")
		for _, info := range infos {
			row(tw, info.Name, fmt.Sprintf("%.1f", info.Complexity), info.Reason, info.Description)
		}
	})
	p.printf("\n")
}

// Complexity prints each player's complexity and, when SCB is enabled,
// the deduction per match of rounds rounds.
func (p *Printer) Complexity(players []*strategy.Strategy, ctx engine.Context, rounds int) {
	p.heading("Strategy Complexity")
	p.table(func(tw io.Writer) {
		if ctx.SCB.Enabled {
			row(tw, "Strategy", "Complexity", "Cost/match")
		} else {
			row(tw, "Strategy", "Complexity")
		}
		for _, s := range players {
			cells := []string{s.Name(), fmt.Sprintf("%.1f", s.Complexity())}
			if ctx.SCB.Enabled {
				cells = append(cells, f2(ctx.SCBCost(s.Complexity(), rounds)))
			}
			row(tw, cells...)
		}
	})
	p.printf("\n")
}
