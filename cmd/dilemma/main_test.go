package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/nvandessel/dilemma/internal/config"
	"github.com/nvandessel/dilemma/internal/export"
	"github.com/nvandessel/dilemma/internal/game"
	"github.com/nvandessel/dilemma/internal/sweep"
)

// newTestRootCmd creates a root command with persistent flags for testing subcommands
func newTestRootCmd(sub ...*cobra.Command) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "dilemma",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	addGlobalFlags(rootCmd.PersistentFlags())
	rootCmd.AddCommand(sub...)
	return rootCmd
}

// isolateHome sets HOME to a temp directory to avoid reading a real
// ~/.dilemma/config.yaml.
func isolateHome(t *testing.T, tmpDir string) {
	t.Helper()
	tmpHome := filepath.Join(tmpDir, "home")
	if err := os.MkdirAll(tmpHome, 0700); err != nil {
		t.Fatalf("Failed to create temp home: %v", err)
	}
	t.Setenv("HOME", tmpHome)
}

// execute runs args against a fresh root command and returns stdout.
func execute(t *testing.T, sub *cobra.Command, args ...string) (string, error) {
	t.Helper()
	out, _, err := executeWithLogs(t, sub, args...)
	return out, err
}

// executeWithLogs is execute that also returns what was logged to stderr.
func executeWithLogs(t *testing.T, sub *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	rootCmd := newTestRootCmd(sub)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

var twoStrategies = []string{"--strategies", "AllCooperate,AllDefect", "--rounds", "10", "--repeats", "1"}

func TestCommandNames(t *testing.T) {
	tests := []struct {
		cmd  *cobra.Command
		want string
	}{
		{newRunCmd(), "run"},
		{newSweepCmd(), "sweep"},
		{newEvolveCmd(), "evolve"},
		{newSCBCompareCmd(), "scb-compare"},
		{newExploitCmd(), "exploit"},
		{newMatchCmd(), "match"},
		{newStrategiesCmd(), "strategies"},
		{newConfigCmd(), "config"},
		{newVersionCmd(), "version"},
	}
	for _, tt := range tests {
		if tt.cmd.Name() != tt.want {
			t.Errorf("Name() = %q, want %q", tt.cmd.Name(), tt.want)
		}
	}

	if newSweepCmd().Flags().Lookup("levels") == nil {
		t.Error("missing --levels flag")
	}
	if newEvolveCmd().Flags().Lookup("generations") == nil {
		t.Error("missing --generations flag")
	}
	if newExploitCmd().Flags().Lookup("noise-compare") == nil {
		t.Error("missing --noise-compare flag")
	}
}

func TestRootRegistersAllCommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"run", "sweep", "evolve", "scb-compare", "exploit", "match", "strategies", "config", "version"} {
		if _, _, err := root.Find([]string{name}); err != nil {
			t.Errorf("command %q not registered: %v", name, err)
		}
	}
}

func TestRunCmdJSON(t *testing.T) {
	isolateHome(t, t.TempDir())

	out, err := execute(t, newRunCmd(), append([]string{"run", "--json"}, twoStrategies...)...)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	var doc export.TournamentDocument
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, out)
	}
	if len(doc.TournamentResults) != 2 {
		t.Fatalf("got %d results, want 2", len(doc.TournamentResults))
	}
	if top := doc.TournamentResults[0]; top.Strategy != "AllDefect" || top.Mean != 30 {
		t.Errorf("leader = %+v, want AllDefect with mean 30", top)
	}
	if doc.RunID == "" {
		t.Error("run id missing from JSON output")
	}
}

func TestRunCmdText(t *testing.T) {
	isolateHome(t, t.TempDir())

	out, err := execute(t, newRunCmd(), append([]string{"run"}, twoStrategies...)...)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	for _, want := range []string{"Configuration", "Payoff Matrix", "Tournament Results", "Pairwise Scores", "AllDefect"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestRunCmdAnalyzeMixed(t *testing.T) {
	isolateHome(t, t.TempDir())

	args := []string{"run", "--analyze-mixed", "--strategies", "AllDefect,AllCooperate,TitForTat", "--rounds", "10", "--repeats", "1"}
	out, err := execute(t, newRunCmd(), args...)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	for _, want := range []string{"Mixed Population: AllDefect", "← exploiter", "AllDefect finished"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunCmdAnalyzeMixedJSON(t *testing.T) {
	isolateHome(t, t.TempDir())

	args := append([]string{"run", "--json", "--analyze-mixed"}, twoStrategies...)
	out, err := execute(t, newRunCmd(), args...)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	var doc export.TournamentDocument
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, out)
	}
	mixed := doc.MixedPopulation
	if mixed == nil {
		t.Fatal("mixed_population missing from JSON output")
	}
	if mixed.Exploiter != "AllDefect" || mixed.Rank != 1 || mixed.Verdict != "dominates" {
		t.Errorf("mixed_population = %+v, want AllDefect dominating in first place", mixed)
	}
}

func TestRunCmdAnalyzeMixedWithoutExploiter(t *testing.T) {
	isolateHome(t, t.TempDir())

	args := []string{"run", "--analyze-mixed", "--strategies", "TitForTat,AllCooperate", "--rounds", "10", "--repeats", "1"}
	out, logs, err := executeWithLogs(t, newRunCmd(), args...)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if strings.Contains(out, "Mixed Population") {
		t.Errorf("analysis printed without an exploiter:\n%s", out)
	}
	if !strings.Contains(logs, "no exploiter in the tournament") {
		t.Errorf("expected a warning on stderr, got:\n%s", logs)
	}
}

func TestRunCmdDebugLogsRoster(t *testing.T) {
	isolateHome(t, t.TempDir())

	args := append([]string{"run", "--log-level", "debug"}, twoStrategies...)
	_, logs, err := executeWithLogs(t, newRunCmd(), args...)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	for _, want := range []string{"session started", "strategy ready", "AllCooperate", "AllDefect"} {
		if !strings.Contains(logs, want) {
			t.Errorf("debug log missing %q:\n%s", want, logs)
		}
	}
}

func TestRunCmdExports(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)
	csvPath := filepath.Join(tmpDir, "out", "results.csv")
	dbPath := filepath.Join(tmpDir, "results.db")

	args := append([]string{"run", "--save", csvPath, "--sqlite", dbPath}, twoStrategies...)
	if _, err := execute(t, newRunCmd(), args...); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	data, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatalf("csv export missing: %v", err)
	}
	if !strings.HasPrefix(string(data), "Strategy,Mean,CI_Lower,CI_Upper,StdDev\nAllDefect,30.00,") {
		t.Errorf("unexpected csv export:\n%s", data)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("sqlite export missing: %v", err)
	}
}

func TestRunCmdConfigurationErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
	}{
		{"unknown strategy", []string{"run", "--strategies", "TitForTat,Nope"}, game.ErrConfiguration},
		{"single strategy", []string{"run", "--strategies", "TitForTat"}, game.ErrConfiguration},
		{"bad random parameter", []string{"run", "--strategies", "TitForTat,RandomStrategy1.5"}, game.ErrConfiguration},
		{"invalid payoffs", []string{"run", "--payoffs", "3,5,1,0"}, game.ErrInvalidPayoff},
		{"bad epsilon", []string{"run", "--epsilon", "2"}, game.ErrConfiguration},
		{"bad format", []string{"run", "--format", "xml"}, game.ErrConfiguration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateHome(t, t.TempDir())
			out, err := execute(t, newRunCmd(), tt.args...)
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
			if out != "" {
				t.Errorf("nothing should be printed before validation fails, got:\n%s", out)
			}
		})
	}
}

func TestSweepCmdLevels(t *testing.T) {
	isolateHome(t, t.TempDir())

	args := append([]string{"sweep", "--json", "--levels", "0,0.1"}, twoStrategies...)
	out, err := execute(t, newSweepCmd(), args...)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	var doc export.SweepDocument
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if len(doc.NoiseSweepResults) != 2 {
		t.Fatalf("got %d levels, want 2", len(doc.NoiseSweepResults))
	}
	if doc.NoiseSweepResults[1].Epsilon != 0.1 {
		t.Errorf("second level = %g, want 0.1", doc.NoiseSweepResults[1].Epsilon)
	}
}

func TestSweepCmdRejectsDuplicateLevels(t *testing.T) {
	isolateHome(t, t.TempDir())

	args := append([]string{"sweep", "--levels", "0.1,0.1"}, twoStrategies...)
	out, err := execute(t, newSweepCmd(), args...)
	if !errors.Is(err, game.ErrConfiguration) {
		t.Fatalf("error = %v, want a configuration error", err)
	}
	if !strings.Contains(err.Error(), "duplicate noise level 0.1") {
		t.Errorf("error = %v, want it to name the duplicate", err)
	}
	if out != "" {
		t.Errorf("nothing should be printed, got:\n%s", out)
	}
}

func TestEvolveCmdSavesBothRuns(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)
	save := filepath.Join(tmpDir, "evo.csv")

	args := append([]string{"evolve", "--generations", "5", "--epsilon", "0.05", "--save", save}, twoStrategies...)
	out, err := execute(t, newEvolveCmd(), args...)
	if err != nil {
		t.Fatalf("evolve failed: %v", err)
	}
	if !strings.Contains(out, "Evolution: noise-free") || !strings.Contains(out, "Evolution: noisy") {
		t.Errorf("both runs should be printed:\n%s", out)
	}

	for _, name := range []string{"evo_noise_free.csv", "evo_noisy.csv"} {
		data, err := os.ReadFile(filepath.Join(tmpDir, name))
		if err != nil {
			t.Errorf("%s missing: %v", name, err)
			continue
		}
		if lines := strings.Count(string(data), "\n"); lines != 6 {
			t.Errorf("%s has %d lines, want header + 5 generations", name, lines)
		}
	}
}

func TestEvolveCmdRejectsZeroGenerations(t *testing.T) {
	isolateHome(t, t.TempDir())
	_, err := execute(t, newEvolveCmd(), append([]string{"evolve", "--generations", "0"}, twoStrategies...)...)
	if !errors.Is(err, game.ErrConfiguration) {
		t.Errorf("error = %v, want configuration error", err)
	}
}

func TestSCBCompareCmd(t *testing.T) {
	isolateHome(t, t.TempDir())

	args := append([]string{"scb-compare", "--json", "--scb-cost", "0.5"}, twoStrategies...)
	out, err := execute(t, newSCBCompareCmd(), args...)
	if err != nil {
		t.Fatalf("scb-compare failed: %v", err)
	}

	var res sweep.SCBResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if len(res.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(res.Rows))
	}
	for _, r := range res.Rows {
		// complexity 1.0 × 0.5 × 10 rounds
		if r.Diff != -5 {
			t.Errorf("%s diff = %g, want -5", r.Name, r.Diff)
		}
	}
}

func TestExploitCmd(t *testing.T) {
	isolateHome(t, t.TempDir())

	args := []string{"exploit", "--strategies", "AllDefect,AllCooperate,TitForTat", "--rounds", "10", "--epsilon", "0.1", "--noise-compare"}
	out, err := execute(t, newExploitCmd(), args...)
	if err != nil {
		t.Fatalf("exploit failed: %v", err)
	}
	for _, want := range []string{"Exploitation: AllDefect (epsilon 0)", "Exploitation: AllDefect (epsilon 0.1)", "Noise Effect on AllDefect"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestMatchCmd(t *testing.T) {
	isolateHome(t, t.TempDir())

	out, err := execute(t, newMatchCmd(), "match", "TFT", "ALLD", "--rounds", "3")
	if err != nil {
		t.Fatalf("match failed: %v", err)
	}
	if !strings.Contains(out, "Match: TitForTat vs AllDefect") {
		t.Errorf("unexpected output:\n%s", out)
	}

	if _, err := execute(t, newMatchCmd(), "match", "TFT"); err == nil {
		t.Error("match with one strategy should fail")
	}
	if _, err := execute(t, newMatchCmd(), "match", "TFT", "Nope"); !errors.Is(err, game.ErrConfiguration) {
		t.Errorf("unknown strategy error = %v", err)
	}
}

func TestStrategiesCmdJSON(t *testing.T) {
	out, err := execute(t, newStrategiesCmd(), "strategies", "--json")
	if err != nil {
		t.Fatalf("strategies failed: %v", err)
	}
	var doc struct {
		Strategies []struct {
			Name       string  `json:"name"`
			Complexity float64 `json:"complexity"`
		} `json:"strategies"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if len(doc.Strategies) != 8 {
		t.Errorf("got %d strategies, want 8", len(doc.Strategies))
	}
}

func TestConfigSaveThenShow(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)
	path := filepath.Join(tmpDir, "experiment.yaml")

	if _, err := execute(t, newConfigCmd(), "config", "save", path, "--rounds", "77", "--strategies", "PROBER,AllCooperate"); err != nil {
		t.Fatalf("config save failed: %v", err)
	}

	out, err := execute(t, newConfigCmd(), "config", "show", "--config", path, "--json")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	var cfg config.Config
	if err := json.Unmarshal([]byte(out), &cfg); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if cfg.Rounds != 77 {
		t.Errorf("Rounds = %d, want 77", cfg.Rounds)
	}
	if len(cfg.StrategyNames) != 2 || cfg.StrategyNames[0] != "PROBER" {
		t.Errorf("StrategyNames = %v", cfg.StrategyNames)
	}
}

func TestConfigSaveRejectsInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)
	path := filepath.Join(tmpDir, "bad.yaml")

	_, err := execute(t, newConfigCmd(), "config", "save", path, "--repeats", "0")
	if !errors.Is(err, game.ErrConfiguration) {
		t.Fatalf("error = %v, want configuration error", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("invalid configuration should not be written")
	}
}

func TestConfigValidate(t *testing.T) {
	isolateHome(t, t.TempDir())

	out, err := execute(t, newConfigCmd(), "config", "validate")
	if err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
	if !strings.Contains(out, "Configuration is valid (4 strategies") {
		t.Errorf("unexpected output: %s", out)
	}

	out, err = execute(t, newConfigCmd(), "config", "validate", "--json", "--payoffs", "5,3,1")
	if !errors.Is(err, game.ErrConfiguration) {
		t.Errorf("error = %v, want configuration error", err)
	}
	if !strings.Contains(out, `"valid": false`) {
		t.Errorf("unexpected JSON output: %s", out)
	}
}

func TestConfigHomeFileIsLoaded(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)
	dir := filepath.Join(tmpDir, "home", ".dilemma")
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("rounds: 12\nseed: 9\n"), 0600); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, newConfigCmd(), "config", "show", "--json", "--seed", "10")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	var cfg config.Config
	if err := json.Unmarshal([]byte(out), &cfg); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if cfg.Rounds != 12 {
		t.Errorf("Rounds = %d, want 12 from home config", cfg.Rounds)
	}
	if cfg.Seed != 10 {
		t.Errorf("Seed = %d, want 10 from flag", cfg.Seed)
	}
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, newVersionCmd(), "version", "--json")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	var v map[string]string
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if v["version"] != version {
		t.Errorf("version = %q, want %q", v["version"], version)
	}
}
