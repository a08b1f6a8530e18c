package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dilemma",
		Short: "Iterated Prisoner's Dilemma simulator",
		Long: `dilemma runs round-robin tournaments of Iterated Prisoner's Dilemma
strategies, with optional noise and a Strategic Complexity Budget (SCB).

It reports per-strategy statistics with 95% confidence intervals, sweeps
noise levels, runs replicator-dynamics evolution and analyses exploiters.

Settings come from ~/.dilemma/config.yaml (or --config), then DILEMMA_*
environment variables, then flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	addGlobalFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newSweepCmd(),
		newEvolveCmd(),
		newSCBCompareCmd(),
		newExploitCmd(),
		newMatchCmd(),
		newStrategiesCmd(),
		newConfigCmd(),
	)

	return rootCmd
}

// addGlobalFlags registers the persistent flags. They override the loaded
// configuration only when set explicitly.
func addGlobalFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "Configuration file (YAML or JSON); default ~/.dilemma/config.yaml")
	fs.Bool("json", false, "Output as JSON")
	fs.String("log-level", "", "Log level: info, debug or trace")
	fs.String("trace-dir", "", "Directory for trace.jsonl (debug and trace level)")
	fs.Int("rounds", 0, "Rounds per match")
	fs.Int("repeats", 0, "Independent trials per pairing")
	fs.Float64("epsilon", 0, "Probability that a move is flipped")
	fs.Int64("seed", 0, "Random seed")
	fs.Float64Slice("payoffs", nil, "Payoff vector T,R,P,S")
	fs.StringSlice("strategies", nil, "Strategy names, e.g. TitForTat,AllDefect,RandomStrategy0.3")
	fs.Bool("enable-scb", false, "Enable the Strategic Complexity Budget")
	fs.Float64("scb-cost", 0, "SCB cost per complexity unit per round")
	fs.String("format", "", "Console format: text, csv, json or markdown")
	fs.String("save", "", "Export results to this file (.csv, .json or .md)")
	fs.String("sqlite", "", "Export results to this SQLite file")
}
