package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nvandessel/dilemma/internal/config"
	"github.com/nvandessel/dilemma/internal/engine"
	"github.com/nvandessel/dilemma/internal/export"
	"github.com/nvandessel/dilemma/internal/logging"
	"github.com/nvandessel/dilemma/internal/report"
	"github.com/nvandessel/dilemma/internal/strategy"
)

// loadConfig loads --config or the default locations and applies the
// explicitly set flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFromFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	applyFlags(cmd.Flags(), cfg)
	return cfg, nil
}

func applyFlags(fs *pflag.FlagSet, cfg *config.Config) {
	if fs.Changed("rounds") {
		cfg.Rounds, _ = fs.GetInt("rounds")
	}
	if fs.Changed("repeats") {
		cfg.Repeats, _ = fs.GetInt("repeats")
	}
	if fs.Changed("epsilon") {
		cfg.Epsilon, _ = fs.GetFloat64("epsilon")
	}
	if fs.Changed("seed") {
		cfg.Seed, _ = fs.GetInt64("seed")
	}
	if fs.Changed("payoffs") {
		cfg.PayoffVector, _ = fs.GetFloat64Slice("payoffs")
	}
	if fs.Changed("strategies") {
		cfg.StrategyNames, _ = fs.GetStringSlice("strategies")
	}
	if fs.Changed("enable-scb") {
		cfg.EnableSCB, _ = fs.GetBool("enable-scb")
	}
	if fs.Changed("scb-cost") {
		cfg.SCBCostFactor, _ = fs.GetFloat64("scb-cost")
	}
	if fs.Changed("format") {
		cfg.Format, _ = fs.GetString("format")
	}
	if fs.Changed("save") {
		cfg.SaveFile, _ = fs.GetString("save")
	}
	if fs.Changed("sqlite") {
		cfg.SQLiteFile, _ = fs.GetString("sqlite")
	}
	if fs.Changed("log-level") {
		cfg.Logging.Level, _ = fs.GetString("log-level")
	}
	if fs.Changed("trace-dir") {
		cfg.Logging.TraceDir, _ = fs.GetString("trace-dir")
	}
}

// session holds everything a simulation command needs. Close releases the
// trace file.
type session struct {
	cfg     *config.Config
	ctx     engine.Context
	players []*strategy.Strategy
	logger  *slog.Logger
	trace   *logging.TraceLogger
	runID   string
	out     io.Writer
	jsonOut bool
}

// newSession loads and validates the configuration and builds the context
// and roster. Every configuration error surfaces here, before any game is
// played.
func newSession(cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ctx, err := cfg.Context()
	if err != nil {
		return nil, err
	}
	players, err := cfg.Strategies()
	if err != nil {
		return nil, err
	}

	jsonOut, _ := cmd.Flags().GetBool("json")
	runID := uuid.NewString()
	logger := logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr())
	trace := logging.NewTraceLogger(cfg.Logging.TraceDir, cfg.Logging.Level, runID)
	ctx.Logger = logger
	ctx.Trace = trace

	logger.Debug("session started",
		"command", cmd.Name(),
		"run_id", runID,
		"strategies", len(players),
		"rounds", cfg.Rounds,
		"repeats", cfg.Repeats,
		"epsilon", cfg.Epsilon,
	)
	for _, p := range players {
		logger.Debug("strategy ready", "name", p.Name(), "seed", p.Seed(), "complexity", p.Complexity())
	}

	return &session{
		cfg:     cfg,
		ctx:     ctx,
		players: players,
		logger:  logger,
		trace:   trace,
		runID:   runID,
		out:     cmd.OutOrStdout(),
		jsonOut: jsonOut,
	}, nil
}

func (s *session) Close() {
	s.trace.Close()
}

// format is the console format; --json wins over the configured one.
func (s *session) format() string {
	if s.jsonOut {
		return string(export.JSON)
	}
	return s.cfg.Format
}

func (s *session) printer() *report.Printer {
	return report.NewPrinter(s.out)
}

// save writes an export to the configured save file, if any. The format
// comes from the file extension, then the configured format.
func (s *session) save(write func(w io.Writer, f export.Format) error) error {
	if s.cfg.SaveFile == "" {
		return nil
	}
	return s.saveTo(s.cfg.SaveFile, write)
}

func (s *session) saveTo(path string, write func(w io.Writer, f export.Format) error) error {
	f := export.Resolve(path, s.cfg.Format)
	if err := export.WriteFile(path, func(w io.Writer) error { return write(w, f) }); err != nil {
		return fmt.Errorf("failed to export results: %w", err)
	}
	s.logger.Info("results exported", "path", path, "format", string(f))
	return nil
}

// saveSQLite records the run in the configured SQLite file, if any. The run
// header and its rows are committed together or not at all.
func (s *session) saveSQLite(kind string, write func(run *export.Run) error) error {
	if s.cfg.SQLiteFile == "" {
		return nil
	}
	x, err := export.OpenSQLite(s.cfg.SQLiteFile)
	if err != nil {
		return err
	}
	defer x.Close()

	run, err := x.BeginRun(s.runID, kind, s.cfg)
	if err != nil {
		return err
	}
	defer run.Rollback()

	if err := write(run); err != nil {
		return fmt.Errorf("failed to export to sqlite: %w", err)
	}
	if err := run.Commit(); err != nil {
		return err
	}
	s.logger.Info("results exported", "path", s.cfg.SQLiteFile, "format", "sqlite", "run_id", run.ID)
	return nil
}
