package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/nvandessel/dilemma/internal/engine"
	"github.com/nvandessel/dilemma/internal/export"
	"github.com/nvandessel/dilemma/internal/stats"
	"github.com/nvandessel/dilemma/internal/strategy"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a round-robin tournament",
		Long: `Run a round-robin tournament between the configured strategies.

Every pair of strategies, each strategy against its own clone included,
plays --repeats independent matches of --rounds rounds. The leaderboard
shows each strategy's mean score with a 95% confidence interval.

Examples:
  dilemma run
  dilemma run --strategies TitForTat,AllDefect,PROBER --rounds 200
  dilemma run --epsilon 0.05 --enable-scb --save results.csv
  dilemma run --strategies PROBER,TitForTat,AllCooperate --analyze-mixed`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			res, err := s.ctx.RunTournament(s.players, s.cfg.Rounds, s.cfg.Repeats)
			if err != nil {
				return err
			}

			var mixed *stats.MixedAnalysis
			if analyze, _ := cmd.Flags().GetBool("analyze-mixed"); analyze {
				mixed = stats.AnalyzeMixed(res.Stats, strategy.Exploiters())
				if mixed == nil {
					s.logger.Warn("mixed population analysis skipped: no exploiter in the tournament",
						"looked_for", strategy.Exploiters())
				}
			}

			if err := s.printTournament(res, mixed); err != nil {
				return err
			}
			if err := s.save(func(w io.Writer, f export.Format) error {
				return export.Tournament(w, f, res)
			}); err != nil {
				return err
			}
			return s.saveSQLite("run", func(run *export.Run) error {
				return run.SaveTournament(res)
			})
		},
	}

	cmd.Flags().Bool("analyze-mixed", false, "Report where PROBER (or AllDefect) finished against the rest of the field")
	return cmd
}

func (s *session) printTournament(res *engine.Result, mixed *stats.MixedAnalysis) error {
	switch s.format() {
	case "json":
		doc := export.NewTournamentDocument(res, s.runID)
		doc.MixedPopulation = mixed
		return export.WriteJSON(s.out, doc)
	case "csv":
		return export.WriteTournamentCSV(s.out, res)
	case "markdown":
		return export.WriteTournamentMarkdown(s.out, res)
	}

	p := s.printer()
	p.Config(s.cfg)
	p.Payoffs(s.ctx.Payoffs)
	p.Complexity(s.players, s.ctx, s.cfg.Rounds)
	p.Leaderboard(res)
	p.Pairwise(res)
	if mixed != nil {
		p.MixedPopulation(mixed)
	}
	return p.Err()
}
