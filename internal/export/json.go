package export

import (
	"encoding/json"
	"io"

	"github.com/nvandessel/dilemma/internal/engine"
	"github.com/nvandessel/dilemma/internal/evolution"
	"github.com/nvandessel/dilemma/internal/stats"
	"github.com/nvandessel/dilemma/internal/sweep"
)

// StatRecord is one strategy's statistics rounded to four places.
type StatRecord struct {
	Strategy string  `json:"strategy"`
	Mean     float64 `json:"mean"`
	CILower  float64 `json:"ci_lower"`
	CIUpper  float64 `json:"ci_upper"`
	Stdev    float64 `json:"stdev"`
	N        int     `json:"n_samples"`
}

func newStatRecord(name string, s stats.ScoreStats) StatRecord {
	return StatRecord{
		Strategy: name,
		Mean:     round(s.Mean, 4),
		CILower:  round(s.CILower, 4),
		CIUpper:  round(s.CIUpper, 4),
		Stdev:    round(s.Stdev, 4),
		N:        s.N,
	}
}

// PairRecord is one cell of the pairwise matrix.
type PairRecord struct {
	Strategy string  `json:"strategy"`
	Opponent string  `json:"opponent"`
	Score    float64 `json:"score"`
	OppScore float64 `json:"opponent_score"`
}

// TournamentDocument is the JSON layout of a tournament export.
type TournamentDocument struct {
	RunID             string       `json:"run_id,omitempty"`
	Rounds            int          `json:"rounds"`
	Repeats           int          `json:"repeats"`
	Epsilon           float64      `json:"epsilon"`
	TournamentResults []StatRecord `json:"tournament_results"`
	Pairwise          []PairRecord `json:"pairwise"`

	MixedPopulation *stats.MixedAnalysis `json:"mixed_population,omitempty"`
}

// NewTournamentDocument builds the export document, results highest mean
// first and the pairwise matrix in row-major roster order.
func NewTournamentDocument(res *engine.Result, runID string) TournamentDocument {
	doc := TournamentDocument{
		RunID:   runID,
		Rounds:  res.Rounds,
		Repeats: res.Repeats,
		Epsilon: res.Noise,
	}
	for _, e := range res.Ranked() {
		doc.TournamentResults = append(doc.TournamentResults, newStatRecord(e.Name, e.Stats))
	}
	for i, row := range res.Pairwise {
		for j, cell := range row {
			doc.Pairwise = append(doc.Pairwise, PairRecord{
				Strategy: res.Names[i],
				Opponent: res.Names[j],
				Score:    round(cell.Own, 4),
				OppScore: round(cell.Opp, 4),
			})
		}
	}
	return doc
}

// NoiseLevelRecord holds every strategy's statistics at one noise level.
type NoiseLevelRecord struct {
	Epsilon    float64      `json:"epsilon"`
	Strategies []StatRecord `json:"strategies"`
}

// SweepDocument is the JSON layout of a noise sweep export.
type SweepDocument struct {
	NoiseSweepResults []NoiseLevelRecord `json:"noise_sweep_results"`
	Impact            []sweep.Impact     `json:"impact,omitempty"`
}

// NewSweepDocument builds the export document, levels in run order.
func NewSweepDocument(res *sweep.NoiseResult) SweepDocument {
	var doc SweepDocument
	for _, level := range res.Levels {
		rec := NoiseLevelRecord{Epsilon: level.Noise}
		for _, name := range res.Names {
			rec.Strategies = append(rec.Strategies, newStatRecord(name, level.Stats[name]))
		}
		doc.NoiseSweepResults = append(doc.NoiseSweepResults, rec)
	}
	doc.Impact = res.Impacts()
	return doc
}

// GenerationRecord is one population snapshot.
type GenerationRecord struct {
	Generation  int                `json:"generation"`
	Populations map[string]float64 `json:"populations"`
}

// EvolutionDocument is the JSON layout of an evolution export.
type EvolutionDocument struct {
	Label            string              `json:"label"`
	Epsilon          float64             `json:"epsilon"`
	EvolutionHistory []GenerationRecord  `json:"evolution_history"`
	Warnings         []evolution.Warning `json:"warnings,omitempty"`
}

// NewEvolutionDocument builds the export document with shares rounded to
// four places.
func NewEvolutionDocument(res *evolution.Result) EvolutionDocument {
	doc := EvolutionDocument{Label: res.Label, Epsilon: res.Noise, Warnings: res.Warnings}
	for gen, pop := range res.History {
		rounded := make(map[string]float64, len(pop))
		for name, share := range pop {
			rounded[name] = round(share, 4)
		}
		doc.EvolutionHistory = append(doc.EvolutionHistory, GenerationRecord{Generation: gen, Populations: rounded})
	}
	return doc
}

// WriteJSON encodes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteTournamentJSON writes a TournamentDocument.
func WriteTournamentJSON(w io.Writer, res *engine.Result, runID string) error {
	return WriteJSON(w, NewTournamentDocument(res, runID))
}

// WriteSweepJSON writes a SweepDocument.
func WriteSweepJSON(w io.Writer, res *sweep.NoiseResult) error {
	return WriteJSON(w, NewSweepDocument(res))
}

// WriteEvolutionJSON writes an EvolutionDocument.
func WriteEvolutionJSON(w io.Writer, res *evolution.Result) error {
	return WriteJSON(w, NewEvolutionDocument(res))
}
