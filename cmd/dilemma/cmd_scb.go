package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/nvandessel/dilemma/internal/export"
	"github.com/nvandessel/dilemma/internal/sweep"
)

func newSCBCompareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scb-compare",
		Short: "Compare the tournament with and without the complexity budget",
		Long: `Run the tournament twice, once with the Strategic Complexity Budget
disabled and once enabled at --scb-cost, from the same random streams.

Every strategy loses complexity × cost × rounds per match; the table shows
the score difference and how each strategy's rank moved.

Examples:
  dilemma scb-compare
  dilemma scb-compare --scb-cost 0.5 --strategies PROBER,TitForTat,AllDefect`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			d := sweep.NewDriver(s.ctx, s.cfg.Rounds, s.cfg.Repeats)
			d.SetLogger(s.logger, s.trace)
			res, err := d.CompareSCB(s.players)
			if err != nil {
				return err
			}

			if err := s.printSCB(res); err != nil {
				return err
			}
			if err := s.save(func(w io.Writer, f export.Format) error {
				if f == export.JSON {
					return export.WriteJSON(w, res)
				}
				return export.WriteSCBCSV(w, res)
			}); err != nil {
				return err
			}
			return s.saveSQLite("scb-compare", func(run *export.Run) error {
				return run.SaveSCB(res)
			})
		},
	}
}

func (s *session) printSCB(res *sweep.SCBResult) error {
	switch s.format() {
	case "json":
		return export.WriteJSON(s.out, res)
	case "csv", "markdown":
		return export.WriteSCBCSV(s.out, res)
	}

	p := s.printer()
	p.Complexity(s.players, s.ctx.WithSCB(true), s.cfg.Rounds)
	p.SCB(res)
	return p.Err()
}
