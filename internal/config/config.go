// Package config provides unified configuration loading for dilemma.
// It supports loading from YAML or JSON files and environment variables.
package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nvandessel/dilemma/internal/constants"
	"github.com/nvandessel/dilemma/internal/engine"
	"github.com/nvandessel/dilemma/internal/game"
	"github.com/nvandessel/dilemma/internal/logging"
	"github.com/nvandessel/dilemma/internal/pathutil"
	"github.com/nvandessel/dilemma/internal/strategy"
	"github.com/nvandessel/dilemma/internal/sweep"
)

// Formats lists the accepted output formats.
var Formats = []string{"text", "csv", "json", "markdown"}

// Config contains all run settings. Keys are flat so configuration files
// written by earlier releases still load.
type Config struct {
	// Rounds is the number of rounds per match.
	Rounds int `json:"rounds" yaml:"rounds"`

	// Repeats is the number of independent trials per pairing.
	Repeats int `json:"repeats" yaml:"repeats"`

	// Epsilon is the probability that a move is flipped after it is chosen.
	Epsilon float64 `json:"epsilon" yaml:"epsilon"`

	// Seed derives every strategy's random stream.
	Seed int64 `json:"seed" yaml:"seed"`

	// PayoffVector is [T, R, P, S].
	PayoffVector []float64 `json:"payoffs" yaml:"payoffs"`

	// StrategyNames are registry tokens, e.g. "TitForTat" or "RandomStrategy0.3".
	StrategyNames []string `json:"strategy_names" yaml:"strategy_names"`

	// EpsilonValues are the noise levels of a sweep, in run order.
	EpsilonValues []float64 `json:"epsilon_values" yaml:"epsilon_values"`

	// Generations is the length of an evolutionary run.
	Generations int `json:"generations" yaml:"generations"`

	// EnableSCB turns on the Strategic Complexity Budget.
	EnableSCB bool `json:"enable_scb" yaml:"enable_scb"`

	// SCBCostFactor is the per-round cost of one complexity unit.
	SCBCostFactor float64 `json:"scb_cost_factor" yaml:"scb_cost_factor"`

	// Format selects console output: text, csv, json or markdown.
	Format string `json:"format" yaml:"format"`

	// SaveFile, when set, receives an export of the results.
	SaveFile string `json:"save_file" yaml:"save_file"`

	// SQLiteFile, when set, receives a SQLite export of the results.
	SQLiteFile string `json:"sqlite_file,omitempty" yaml:"sqlite_file,omitempty"`

	// Logging contains settings for operational and trace logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// LoggingConfig configures logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	Level string `json:"level" yaml:"level"`

	// TraceDir receives trace.jsonl at debug and trace level. Empty
	// disables the trace.
	TraceDir string `json:"trace_dir,omitempty" yaml:"trace_dir,omitempty"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Rounds:        constants.DefaultRounds,
		Repeats:       constants.DefaultRepeats,
		Epsilon:       0,
		Seed:          constants.DefaultSeed,
		PayoffVector:  game.ClassicPayoffs.Slice(),
		StrategyNames: []string{"TitForTat", "GrimTrigger", "PAVLOV", "ContriteTitForTat"},
		EpsilonValues: slices.Clone(constants.DefaultNoiseLevels),
		Generations:   constants.DefaultGenerations,
		EnableSCB:     false,
		SCBCostFactor: constants.DefaultSCBCostFactor,
		Format:        "text",
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.dilemma/config.yaml -> environment variables
func Load() (*Config, error) {
	config := Default()

	homeDir, err := os.UserHomeDir()
	if err == nil {
		configPath := filepath.Join(homeDir, ".dilemma", "config.yaml")
		if _, statErr := os.Stat(configPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = fileConfig
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// LoadFromFile loads configuration from a YAML or JSON file. Missing keys
// keep their defaults and unknown keys are ignored.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return config, nil
}

// SaveToFile writes the configuration to path: JSON when the extension is
// .json, YAML otherwise.
func (c *Config) SaveToFile(path string) error {
	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	path, err = pathutil.OutputPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file %s: %w", pathutil.RedactPath(path), err)
	}
	return nil
}

// Validate checks that the configuration is valid. It returns a
// *game.ConfigurationError or a *game.InvalidPayoffError.
func (c *Config) Validate() error {
	if c.Rounds < 1 {
		return &game.ConfigurationError{Field: "rounds", Reason: fmt.Sprintf("must be positive, got %d", c.Rounds)}
	}
	if c.Repeats < 1 {
		return &game.ConfigurationError{Field: "repeats", Reason: fmt.Sprintf("must be positive, got %d", c.Repeats)}
	}
	if c.Generations < 1 {
		return &game.ConfigurationError{Field: "generations", Reason: fmt.Sprintf("must be positive, got %d", c.Generations)}
	}
	if !probability(c.Epsilon) {
		return &game.ConfigurationError{Field: "epsilon", Reason: fmt.Sprintf("must be between 0 and 1, got %g", c.Epsilon)}
	}
	if err := sweep.ValidateLevels(c.EpsilonValues); err != nil {
		return err
	}
	if math.IsNaN(c.SCBCostFactor) || c.SCBCostFactor < 0 {
		return &game.ConfigurationError{Field: "scb_cost_factor", Reason: fmt.Sprintf("must be non-negative, got %g", c.SCBCostFactor)}
	}
	if _, err := c.Payoffs(); err != nil {
		return err
	}
	if _, err := c.Strategies(); err != nil {
		return err
	}
	if !slices.Contains(Formats, c.Format) {
		return &game.ConfigurationError{Field: "format", Token: c.Format, Reason: "valid: " + strings.Join(Formats, ", ")}
	}
	if !logging.ValidLevel(c.Logging.Level) {
		return &game.ConfigurationError{Field: "logging.level", Token: c.Logging.Level, Reason: "valid: info, debug, trace, or empty for default"}
	}
	return nil
}

// Payoffs builds the validated payoff matrix.
func (c *Config) Payoffs() (game.PayoffMatrix, error) {
	return game.PayoffsFromSlice(c.PayoffVector)
}

// Context builds the simulation context at the configured noise level.
func (c *Config) Context() (engine.Context, error) {
	pm, err := c.Payoffs()
	if err != nil {
		return engine.Context{}, err
	}
	ctx := engine.Context{
		Payoffs: pm,
		Noise:   c.Epsilon,
		SCB:     engine.SCB{Enabled: c.EnableSCB, CostFactor: c.SCBCostFactor},
	}
	if err := ctx.Validate(); err != nil {
		return engine.Context{}, err
	}
	return ctx, nil
}

// Strategies builds a fresh roster from StrategyNames and Seed.
func (c *Config) Strategies() ([]*strategy.Strategy, error) {
	return strategy.NewRoster(c.StrategyNames, c.Seed)
}

func probability(p float64) bool {
	return !math.IsNaN(p) && p >= 0 && p <= 1
}

// applyEnvOverrides applies environment variable overrides to the config.
// Malformed numeric values are ignored.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("DILEMMA_ROUNDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Rounds = n
		}
	}

	if v := os.Getenv("DILEMMA_REPEATS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Repeats = n
		}
	}

	if v := os.Getenv("DILEMMA_EPSILON"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Epsilon = f
		}
	}

	if v := os.Getenv("DILEMMA_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.Seed = n
		}
	}

	if v := os.Getenv("DILEMMA_STRATEGIES"); v != "" {
		config.StrategyNames = SplitList(v)
	}

	if v := os.Getenv("DILEMMA_SCB"); v != "" {
		config.EnableSCB = v == "true" || v == "1"
	}

	if v := os.Getenv("DILEMMA_SCB_COST"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.SCBCostFactor = f
		}
	}

	if v := os.Getenv("DILEMMA_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
}

// SplitList splits a comma separated list, trimming blanks and dropping
// empty entries.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
