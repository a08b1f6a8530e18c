package main

import (
	"github.com/spf13/cobra"

	"github.com/nvandessel/dilemma/internal/export"
)

func newExploitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exploit",
		Short: "Play the first strategy against every other one",
		Long: `Treat the first configured strategy as an exploiter and play it against
each of the others, reporting both sides' scores with confidence intervals.

With --noise-compare the analysis runs at zero noise and at --epsilon and
shows how noise changes the exploiter's take.

Examples:
  dilemma exploit --strategies PROBER,AllCooperate,TitForTat,GrimTrigger
  dilemma exploit --strategies AllDefect,TitForTat,PAVLOV --epsilon 0.1 --noise-compare`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			compare, _ := cmd.Flags().GetBool("noise-compare")
			exploiter, victims := s.players[0], s.players[1:]

			if compare {
				cmp, err := s.ctx.ExploitNoiseComparison(exploiter, victims, s.cfg.Rounds, s.cfg.Repeats)
				if err != nil {
					return err
				}
				if s.format() == "json" {
					return export.WriteJSON(s.out, cmp)
				}
				p := s.printer()
				p.Exploit(cmp.Baseline)
				p.Exploit(cmp.Noisy)
				p.NoiseComparison(cmp)
				return p.Err()
			}

			res, err := s.ctx.Exploit(exploiter, victims, s.cfg.Rounds, s.cfg.Repeats)
			if err != nil {
				return err
			}
			if s.format() == "json" {
				return export.WriteJSON(s.out, res)
			}
			p := s.printer()
			p.Exploit(res)
			return p.Err()
		},
	}

	cmd.Flags().Bool("noise-compare", false, "Also run at zero noise and compare")

	return cmd
}
