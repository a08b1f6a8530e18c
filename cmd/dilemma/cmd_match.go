package main

import (
	"github.com/spf13/cobra"

	"github.com/nvandessel/dilemma/internal/export"
	"github.com/nvandessel/dilemma/internal/report"
	"github.com/nvandessel/dilemma/internal/strategy"
)

func newMatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "match <strategy> <strategy>",
		Short: "Play a single logged match",
		Long: `Play one match between two strategies and print every round: the moves
actually played, after noise, and each side's payoff.

The same strategy may be named twice; each side gets its own instance.

Examples:
  dilemma match TitForTat AllDefect --rounds 10
  dilemma match PAVLOV PAVLOV --rounds 20 --epsilon 0.1`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			ctx, err := cfg.Context()
			if err != nil {
				return err
			}

			p1, err := strategy.New(args[0], strategy.DeriveSeed(cfg.Seed, 0))
			if err != nil {
				return err
			}
			p2, err := strategy.New(args[1], strategy.DeriveSeed(cfg.Seed, 1))
			if err != nil {
				return err
			}

			m := ctx.PlayMatch(p1, p2, cfg.Rounds)

			out := cmd.OutOrStdout()
			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut || cfg.Format == "json" {
				return export.WriteJSON(out, m)
			}
			p := report.NewPrinter(out)
			p.Match(m)
			return p.Err()
		},
	}
}
