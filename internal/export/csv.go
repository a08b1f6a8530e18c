package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/nvandessel/dilemma/internal/engine"
	"github.com/nvandessel/dilemma/internal/evolution"
	"github.com/nvandessel/dilemma/internal/stats"
	"github.com/nvandessel/dilemma/internal/sweep"
)

func ff(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}

func flush(cw *csv.Writer) error {
	cw.Flush()
	return cw.Error()
}

// WriteTournamentCSV writes one row per strategy, highest mean first.
func WriteTournamentCSV(w io.Writer, res *engine.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Strategy", "Mean", "CI_Lower", "CI_Upper", "StdDev"}); err != nil {
		return err
	}
	for _, e := range res.Ranked() {
		if err := cw.Write(statsRow(e.Name, e.Stats)); err != nil {
			return err
		}
	}
	return flush(cw)
}

// WriteSweepCSV writes one row per noise level and strategy, levels in run
// order and strategies in roster order.
func WriteSweepCSV(w io.Writer, res *sweep.NoiseResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Epsilon", "Strategy", "Mean", "StdDev", "CI_Lower", "CI_Upper"}); err != nil {
		return err
	}
	for _, level := range res.Levels {
		for _, name := range res.Names {
			s := level.Stats[name]
			row := []string{ff(level.Noise, 2), name, ff(s.Mean, 2), ff(s.Stdev, 2), ff(s.CILower, 2), ff(s.CIUpper, 2)}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	return flush(cw)
}

// WriteEvolutionCSV writes one row per generation with a column per
// strategy.
func WriteEvolutionCSV(w io.Writer, res *evolution.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"Generation"}, res.Names...)); err != nil {
		return err
	}
	for gen, pop := range res.History {
		row := make([]string, 0, len(res.Names)+1)
		row = append(row, strconv.Itoa(gen))
		for _, name := range res.Names {
			row = append(row, ff(pop[name], 4))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return flush(cw)
}

// WriteSCBCSV writes the SCB comparison, leaderboard order with SCB.
func WriteSCBCSV(w io.Writer, res *sweep.SCBResult) error {
	cw := csv.NewWriter(w)
	header := []string{"Strategy", "Complexity", "Mean_Without", "Mean_With", "Diff", "Rank_Without", "Rank_With"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range res.Rows {
		row := []string{
			r.Name, ff(r.Complexity, 1), ff(r.Without.Mean, 2), ff(r.With.Mean, 2), ff(r.Diff, 2),
			strconv.Itoa(r.RankBefore), strconv.Itoa(r.RankAfter),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return flush(cw)
}

func statsRow(name string, s stats.ScoreStats) []string {
	return []string{name, ff(s.Mean, 2), ff(s.CILower, 2), ff(s.CIUpper, 2), ff(s.Stdev, 2)}
}
