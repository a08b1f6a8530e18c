package main

import (
	"github.com/spf13/cobra"

	"github.com/nvandessel/dilemma/internal/export"
	"github.com/nvandessel/dilemma/internal/report"
	"github.com/nvandessel/dilemma/internal/strategy"
)

func newStrategiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "List the available strategies",
		Long: `List every strategy in the registry with its complexity score, the
reason for that score and a short description of its rule.

RandomStrategy takes an optional cooperation probability suffix, e.g.
RandomStrategy0.3. Short aliases such as TFT, ALLD and WSLS are accepted
wherever a strategy name is.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			out := cmd.OutOrStdout()

			if jsonOut {
				return export.WriteJSON(out, map[string]any{"strategies": strategy.Catalogue()})
			}
			p := report.NewPrinter(out)
			p.Catalogue(strategy.Catalogue())
			return p.Err()
		},
	}
}
