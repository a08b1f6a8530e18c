package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvandessel/dilemma/internal/engine"
	"github.com/nvandessel/dilemma/internal/evolution"
	"github.com/nvandessel/dilemma/internal/strategy"
	"github.com/nvandessel/dilemma/internal/sweep"
)

type fixture struct {
	tournament *engine.Result
	sweep      *sweep.NoiseResult
	scb        *sweep.SCBResult
	evolution  *evolution.Result
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	players, err := strategy.NewRoster([]string{"AllCooperate", "AllDefect"}, 42)
	require.NoError(t, err)

	ctx := engine.NewContext()
	ctx.SCB.CostFactor = 0.1
	tour, err := ctx.RunTournament(players, 10, 1)
	require.NoError(t, err)

	d := sweep.NewDriver(ctx, 10, 2)
	sw, err := d.Noise(players, []float64{0, 0.1})
	require.NoError(t, err)
	scb, err := d.CompareSCB(players)
	require.NoError(t, err)

	evo, err := evolution.NewEngine(ctx, 10, 1, 3).Run(players, "noise-free", 0)
	require.NoError(t, err)

	return fixture{tournament: tour, sweep: sw, scb: scb, evolution: evo}
}

func readCSV(t *testing.T, data string) [][]string {
	t.Helper()
	rows, err := csv.NewReader(strings.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestResolve(t *testing.T) {
	tests := []struct {
		path, configured string
		want             Format
	}{
		{"out.csv", "json", CSV},
		{"out.JSON", "", JSON},
		{"out.md", "", Markdown},
		{"out.markdown", "", Markdown},
		{"out.txt", "json", JSON},
		{"out", "markdown", Markdown},
		{"out", "text", CSV},
		{"", "", CSV},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Resolve(tt.path, tt.configured), "%s/%s", tt.path, tt.configured)
	}
}

func TestSuffixPath(t *testing.T) {
	assert.Equal(t, "out/evo_noisy.csv", SuffixPath("out/evo.csv", "noisy"))
	assert.Equal(t, "evo_noise_free", SuffixPath("evo", "noise_free"))
}

func TestTournamentCSV(t *testing.T) {
	f := newFixture(t)
	var buf bytes.Buffer
	require.NoError(t, WriteTournamentCSV(&buf, f.tournament))

	rows := readCSV(t, buf.String())
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Strategy", "Mean", "CI_Lower", "CI_Upper", "StdDev"}, rows[0])
	assert.Equal(t, "AllDefect", rows[1][0])
	assert.Equal(t, "30.00", rows[1][1])
	assert.Equal(t, "AllCooperate", rows[2][0])
	assert.Equal(t, "15.00", rows[2][1])
}

func TestSweepCSV(t *testing.T) {
	f := newFixture(t)
	var buf bytes.Buffer
	require.NoError(t, WriteSweepCSV(&buf, f.sweep))

	rows := readCSV(t, buf.String())
	require.Len(t, rows, 1+2*2)
	assert.Equal(t, []string{"Epsilon", "Strategy", "Mean", "StdDev", "CI_Lower", "CI_Upper"}, rows[0])
	assert.Equal(t, []string{"0.00", "AllCooperate"}, rows[1][:2])
	assert.Equal(t, "0.10", rows[3][0])
}

func TestEvolutionCSV(t *testing.T) {
	f := newFixture(t)
	var buf bytes.Buffer
	require.NoError(t, WriteEvolutionCSV(&buf, f.evolution))

	rows := readCSV(t, buf.String())
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Generation", "AllCooperate", "AllDefect"}, rows[0])
	assert.Equal(t, []string{"0", "0.5000", "0.5000"}, rows[1])
	assert.Equal(t, []string{"1", "0.3333", "0.6667"}, rows[2])
}

func TestSCBCSV(t *testing.T) {
	f := newFixture(t)
	var buf bytes.Buffer
	require.NoError(t, WriteSCBCSV(&buf, f.scb))

	rows := readCSV(t, buf.String())
	require.Len(t, rows, 3)
	assert.Equal(t, "Diff", rows[0][4])
	// both kinds rate 1.0: 1.0 × 0.1 × 10
	assert.Equal(t, "-1.00", rows[1][4])
}

func TestTournamentJSON(t *testing.T) {
	f := newFixture(t)
	var buf bytes.Buffer
	require.NoError(t, WriteTournamentJSON(&buf, f.tournament, "run-1"))

	var doc TournamentDocument
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "run-1", doc.RunID)
	assert.Equal(t, 10, doc.Rounds)
	require.Len(t, doc.TournamentResults, 2)
	assert.Equal(t, "AllDefect", doc.TournamentResults[0].Strategy)
	assert.Equal(t, 30.0, doc.TournamentResults[0].Mean)
	require.Len(t, doc.Pairwise, 4)
	assert.Equal(t, PairRecord{Strategy: "AllCooperate", Opponent: "AllDefect", Score: 0, OppScore: 50}, doc.Pairwise[1])
	assert.Contains(t, buf.String(), `"tournament_results"`)
}

func TestSweepJSON(t *testing.T) {
	f := newFixture(t)
	var buf bytes.Buffer
	require.NoError(t, WriteSweepJSON(&buf, f.sweep))

	var doc SweepDocument
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc.NoiseSweepResults, 2)
	assert.Equal(t, 0.1, doc.NoiseSweepResults[1].Epsilon)
	assert.Len(t, doc.NoiseSweepResults[1].Strategies, 2)
	assert.Len(t, doc.Impact, 2)
}

func TestEvolutionJSON(t *testing.T) {
	f := newFixture(t)
	var buf bytes.Buffer
	require.NoError(t, WriteEvolutionJSON(&buf, f.evolution))

	var doc EvolutionDocument
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "noise-free", doc.Label)
	require.Len(t, doc.EvolutionHistory, 3)
	assert.Equal(t, 0.3333, doc.EvolutionHistory[1].Populations["AllCooperate"])
}

func TestMarkdown(t *testing.T) {
	f := newFixture(t)

	var buf bytes.Buffer
	require.NoError(t, WriteTournamentMarkdown(&buf, f.tournament))
	out := buf.String()
	assert.Contains(t, out, "# Tournament Results")
	assert.Contains(t, out, "| Rank | Strategy | Mean | 95% CI Lower | 95% CI Upper | Std Dev |")
	assert.Contains(t, out, "|------|----------|------|")
	assert.Contains(t, out, "| 1 | AllDefect | 30.00 |")

	buf.Reset()
	require.NoError(t, WriteSweepMarkdown(&buf, f.sweep))
	assert.Contains(t, buf.String(), "| Strategy | ε=0.00 | ε=0.10 |")
	assert.Contains(t, buf.String(), "## Noise Impact")

	buf.Reset()
	require.NoError(t, WriteEvolutionMarkdown(&buf, f.evolution))
	assert.Contains(t, buf.String(), "| 1 | 0.3333 | 0.6667 |")
}

func TestDispatchAndWriteFile(t *testing.T) {
	f := newFixture(t)
	dir := filepath.Join(t.TempDir(), "nested")

	for _, format := range []Format{CSV, JSON, Markdown} {
		path := filepath.Join(dir, "tournament."+string(format))
		err := WriteFile(path, func(w io.Writer) error { return Tournament(w, format, f.tournament) })
		require.NoError(t, err)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		switch format {
		case JSON:
			assert.True(t, strings.HasPrefix(string(data), "{"))
		case Markdown:
			assert.True(t, strings.HasPrefix(string(data), "# Tournament"))
		default:
			assert.True(t, strings.HasPrefix(string(data), "Strategy,Mean"))
		}
	}

	var buf bytes.Buffer
	require.NoError(t, Sweep(&buf, Markdown, f.sweep))
	assert.Contains(t, buf.String(), "# Noise Sweep Results")
	buf.Reset()
	require.NoError(t, Evolution(&buf, JSON, f.evolution))
	assert.Contains(t, buf.String(), `"evolution_history"`)
}

func TestWriteFileRejectsDirectory(t *testing.T) {
	called := false
	err := WriteFile(t.TempDir(), func(w io.Writer) error {
		called = true
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is a directory")
	assert.False(t, called)

	_, err = OpenSQLite("")
	assert.Error(t, err)
}

func TestSQLiteExporter(t *testing.T) {
	f := newFixture(t)
	x, err := OpenSQLite(filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	defer x.Close()

	run, err := x.BeginRun("", "run", map[string]any{"rounds": 10})
	require.NoError(t, err)
	assert.Len(t, run.ID, 36)

	require.NoError(t, run.SaveTournament(f.tournament))
	require.NoError(t, run.SaveSweep(f.sweep))
	require.NoError(t, run.SaveEvolution(f.evolution))
	require.NoError(t, run.SaveSCB(f.scb))
	require.NoError(t, run.Commit())
	run.Rollback()

	count := func(query string) int {
		var n int
		require.NoError(t, x.conn.Get(&n, query, run.ID))
		return n
	}
	assert.Equal(t, 1, count("SELECT COUNT(*) FROM runs WHERE id = ?"))
	assert.Equal(t, 2, count("SELECT COUNT(*) FROM strategy_stats WHERE run_id = ? AND phase = 'tournament'"))
	assert.Equal(t, 4, count("SELECT COUNT(*) FROM strategy_stats WHERE run_id = ? AND phase LIKE '%scb'"))
	assert.Equal(t, 4, count("SELECT COUNT(*) FROM pairwise_scores WHERE run_id = ?"))
	assert.Equal(t, 4, count("SELECT COUNT(*) FROM noise_stats WHERE run_id = ?"))
	assert.Equal(t, 6, count("SELECT COUNT(*) FROM population_history WHERE run_id = ?"))

	type statRow struct {
		Strategy string  `db:"strategy"`
		Mean     float64 `db:"mean"`
		N        int     `db:"n_samples"`
	}
	var rows []statRow
	require.NoError(t, x.conn.Select(&rows,
		"SELECT strategy, mean, n_samples FROM strategy_stats WHERE run_id = ? AND phase = 'tournament' ORDER BY mean DESC", run.ID))
	require.Len(t, rows, 2)
	assert.Equal(t, statRow{Strategy: "AllDefect", Mean: 30, N: 2}, rows[0])

	second, err := x.BeginRun("fixed-id", "sweep", nil)
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", second.ID)
	require.NoError(t, second.Commit())

	_, err = x.BeginRun("fixed-id", "sweep", nil)
	assert.Error(t, err, "run ids are unique")
}

func TestSQLiteRunRollsBackOnFailure(t *testing.T) {
	f := newFixture(t)
	x, err := OpenSQLite(filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	defer x.Close()

	run, err := x.BeginRun("failing", "sweep", nil)
	require.NoError(t, err)
	require.NoError(t, run.SaveSweep(f.sweep))
	// the same levels again collide on the noise_stats key
	require.Error(t, run.SaveSweep(f.sweep))
	run.Rollback()

	var n int
	require.NoError(t, x.conn.Get(&n, "SELECT COUNT(*) FROM runs WHERE id = ?", "failing"))
	assert.Zero(t, n, "no orphan run header")
	require.NoError(t, x.conn.Get(&n, "SELECT COUNT(*) FROM noise_stats WHERE run_id = ?", "failing"))
	assert.Zero(t, n)

	retry, err := x.BeginRun("failing", "sweep", nil)
	require.NoError(t, err, "a rolled-back id can be reused")
	require.NoError(t, retry.SaveSweep(f.sweep))
	require.NoError(t, retry.Commit())
}
