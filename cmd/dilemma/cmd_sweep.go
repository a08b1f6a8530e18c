package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/nvandessel/dilemma/internal/export"
	"github.com/nvandessel/dilemma/internal/sweep"
)

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run the tournament across several noise levels",
		Long: `Run one independent tournament per noise level and compare how each
strategy's mean score degrades as moves get flipped more often.

Levels default to epsilon_values from the configuration.

Examples:
  dilemma sweep
  dilemma sweep --levels 0,0.01,0.05,0.1
  dilemma sweep --format markdown`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			levels := s.cfg.EpsilonValues
			if cmd.Flags().Changed("levels") {
				levels, _ = cmd.Flags().GetFloat64Slice("levels")
			}

			d := sweep.NewDriver(s.ctx, s.cfg.Rounds, s.cfg.Repeats)
			d.SetLogger(s.logger, s.trace)
			res, err := d.Noise(s.players, levels)
			if err != nil {
				return err
			}

			if err := s.printSweep(res); err != nil {
				return err
			}
			if err := s.save(func(w io.Writer, f export.Format) error {
				return export.Sweep(w, f, res)
			}); err != nil {
				return err
			}
			return s.saveSQLite("sweep", func(run *export.Run) error {
				return run.SaveSweep(res)
			})
		},
	}

	cmd.Flags().Float64Slice("levels", nil, "Noise levels to sweep, in run order")

	return cmd
}

func (s *session) printSweep(res *sweep.NoiseResult) error {
	switch s.format() {
	case "json":
		return export.WriteSweepJSON(s.out, res)
	case "csv":
		return export.WriteSweepCSV(s.out, res)
	case "markdown":
		return export.WriteSweepMarkdown(s.out, res)
	}

	p := s.printer()
	p.Sweep(res)
	p.Impacts(res)
	return p.Err()
}
