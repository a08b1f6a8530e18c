package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/nvandessel/dilemma/internal/evolution"
	"github.com/nvandessel/dilemma/internal/export"
)

func newEvolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evolve",
		Short: "Run replicator dynamics without and with noise",
		Long: `Evolve a uniform population of the configured strategies with the
replicator rule: a strategy's share grows in proportion to how far its
fitness beats the population average.

Two runs are made over the same strategies: one noise-free and one at
--epsilon. With --save, each run is exported to its own file with a
_noise_free or _noisy suffix.

Examples:
  dilemma evolve --generations 100
  dilemma evolve --epsilon 0.05 --strategies TitForTat,AllDefect,PAVLOV`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if cmd.Flags().Changed("generations") {
				s.cfg.Generations, _ = cmd.Flags().GetInt("generations")
				if err := s.cfg.Validate(); err != nil {
					return err
				}
			}

			e := evolution.NewEngine(s.ctx, s.cfg.Rounds, s.cfg.Repeats, s.cfg.Generations)
			e.SetLogger(s.logger, s.trace)
			pair, err := e.RunBoth(s.players, s.cfg.Epsilon)
			if err != nil {
				return err
			}

			if err := s.printEvolution(pair); err != nil {
				return err
			}
			if s.cfg.SaveFile != "" {
				runs := map[string]*evolution.Result{"noise_free": pair.NoiseFree, "noisy": pair.Noisy}
				for _, suffix := range []string{"noise_free", "noisy"} {
					res := runs[suffix]
					err := s.saveTo(export.SuffixPath(s.cfg.SaveFile, suffix), func(w io.Writer, f export.Format) error {
						return export.Evolution(w, f, res)
					})
					if err != nil {
						return err
					}
				}
			}
			return s.saveSQLite("evolve", func(run *export.Run) error {
				if err := run.SaveEvolution(pair.NoiseFree); err != nil {
					return err
				}
				return run.SaveEvolution(pair.Noisy)
			})
		},
	}

	cmd.Flags().Int("generations", 0, "Number of generations (default from config)")

	return cmd
}

func (s *session) printEvolution(pair *evolution.Pair) error {
	switch s.format() {
	case "json":
		return export.WriteJSON(s.out, map[string]export.EvolutionDocument{
			"noise_free": export.NewEvolutionDocument(pair.NoiseFree),
			"noisy":      export.NewEvolutionDocument(pair.Noisy),
		})
	case "csv", "markdown":
		f := export.Format(s.format())
		if err := export.Evolution(s.out, f, pair.NoiseFree); err != nil {
			return err
		}
		return export.Evolution(s.out, f, pair.Noisy)
	}

	p := s.printer()
	p.EvolutionPair(pair)
	return p.Err()
}
