// Package export writes simulation results to flat files: CSV, JSON,
// Markdown and a single-file SQLite dump. Nothing in this package reads
// results back.
package export

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/nvandessel/dilemma/internal/engine"
	"github.com/nvandessel/dilemma/internal/evolution"
	"github.com/nvandessel/dilemma/internal/pathutil"
	"github.com/nvandessel/dilemma/internal/sweep"
)

// Format is an export file format.
type Format string

const (
	CSV      Format = "csv"
	JSON     Format = "json"
	Markdown Format = "markdown"
)

// Resolve picks the format for path from its extension, falling back to
// the configured format and finally to CSV.
func Resolve(path, configured string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return CSV
	case ".json":
		return JSON
	case ".md", ".markdown":
		return Markdown
	}
	switch Format(configured) {
	case JSON, Markdown:
		return Format(configured)
	}
	return CSV
}

// SuffixPath inserts suffix before the extension of path:
// "out/evo.csv" with "noisy" becomes "out/evo_noisy.csv".
func SuffixPath(path, suffix string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_" + suffix + ext
}

// WriteFile creates path, including missing parent directories, and hands
// it to write.
func WriteFile(path string, write func(io.Writer) error) error {
	path, err := pathutil.OutputPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Tournament writes a tournament result in format f.
func Tournament(w io.Writer, f Format, res *engine.Result) error {
	switch f {
	case JSON:
		return WriteTournamentJSON(w, res, "")
	case Markdown:
		return WriteTournamentMarkdown(w, res)
	default:
		return WriteTournamentCSV(w, res)
	}
}

// Sweep writes a noise sweep in format f.
func Sweep(w io.Writer, f Format, res *sweep.NoiseResult) error {
	switch f {
	case JSON:
		return WriteSweepJSON(w, res)
	case Markdown:
		return WriteSweepMarkdown(w, res)
	default:
		return WriteSweepCSV(w, res)
	}
}

// Evolution writes one evolution run in format f.
func Evolution(w io.Writer, f Format, res *evolution.Result) error {
	switch f {
	case JSON:
		return WriteEvolutionJSON(w, res)
	case Markdown:
		return WriteEvolutionMarkdown(w, res)
	default:
		return WriteEvolutionCSV(w, res)
	}
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
