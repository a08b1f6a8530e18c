package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nvandessel/dilemma/internal/engine"
	"github.com/nvandessel/dilemma/internal/evolution"
	"github.com/nvandessel/dilemma/internal/pathutil"
	"github.com/nvandessel/dilemma/internal/stats"
	"github.com/nvandessel/dilemma/internal/sweep"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    kind TEXT NOT NULL,        -- 'run', 'sweep', 'evolve', 'scb-compare'
    config TEXT,               -- JSON
    created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS strategy_stats (
    run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    phase TEXT NOT NULL,       -- 'tournament', 'without_scb', 'with_scb'
    strategy TEXT NOT NULL,
    mean REAL NOT NULL,
    stdev REAL NOT NULL,
    ci_lower REAL NOT NULL,
    ci_upper REAL NOT NULL,
    n_samples INTEGER NOT NULL,
    PRIMARY KEY (run_id, phase, strategy)
);

CREATE TABLE IF NOT EXISTS pairwise_scores (
    run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    strategy TEXT NOT NULL,
    opponent TEXT NOT NULL,
    score REAL NOT NULL,
    opponent_score REAL NOT NULL,
    PRIMARY KEY (run_id, strategy, opponent)
);

CREATE TABLE IF NOT EXISTS noise_stats (
    run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    epsilon REAL NOT NULL,
    strategy TEXT NOT NULL,
    mean REAL NOT NULL,
    stdev REAL NOT NULL,
    ci_lower REAL NOT NULL,
    ci_upper REAL NOT NULL,
    n_samples INTEGER NOT NULL,
    PRIMARY KEY (run_id, epsilon, strategy)
);

CREATE TABLE IF NOT EXISTS population_history (
    run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    label TEXT NOT NULL,
    epsilon REAL NOT NULL,
    generation INTEGER NOT NULL,
    strategy TEXT NOT NULL,
    fraction REAL NOT NULL,
    PRIMARY KEY (run_id, label, generation, strategy)
);
CREATE INDEX IF NOT EXISTS idx_population_run ON population_history(run_id, label);
`

// SQLiteExporter dumps runs into a single SQLite file. Every run gets a
// fresh UUID; earlier runs in the same file are kept.
type SQLiteExporter struct {
	conn *sqlx.DB
}

// OpenSQLite opens or creates the export file at path.
func OpenSQLite(path string) (*SQLiteExporter, error) {
	path, err := pathutil.OutputPath(path)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating export directory: %w", err)
	}

	conn, err := sqlx.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite export: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec(sqliteSchema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("create export schema: %w", err)
	}
	return &SQLiteExporter{conn: conn}, nil
}

// Close closes the database connection.
func (x *SQLiteExporter) Close() error {
	return x.conn.Close()
}

// Run is one run being written. The header and every row go through one
// transaction, so nothing is visible in the file until Commit.
type Run struct {
	ID string
	tx *sqlx.Tx
}

// BeginRun opens a transaction and records the run header in it. An empty
// runID gets a fresh UUID. config is stored as JSON.
func (x *SQLiteExporter) BeginRun(runID, kind string, config any) (*Run, error) {
	cfg, err := json.Marshal(config)
	if err != nil {
		return nil, fmt.Errorf("encode run config: %w", err)
	}
	id := runID
	if id == "" {
		id = uuid.NewString()
	}

	tx, err := x.conn.Beginx()
	if err != nil {
		return nil, fmt.Errorf("begin run: %w", err)
	}
	_, err = tx.Exec(
		"INSERT INTO runs (id, kind, config, created_at) VALUES (?, ?, ?, ?)",
		id, kind, string(cfg), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return &Run{ID: id, tx: tx}, nil
}

// Commit makes the run visible.
func (r *Run) Commit() error {
	if err := r.tx.Commit(); err != nil {
		return fmt.Errorf("commit run %s: %w", r.ID, err)
	}
	return nil
}

// Rollback discards the run, header included. It is a no-op after Commit.
func (r *Run) Rollback() {
	_ = r.tx.Rollback()
}

// SaveTournament writes the per-strategy stats and the pairwise matrix.
func (r *Run) SaveTournament(res *engine.Result) error {
	if err := insertStats(r.tx, r.ID, "tournament", res.Stats); err != nil {
		return err
	}

	stmt, err := r.tx.Preparex(`INSERT INTO pairwise_scores
		(run_id, strategy, opponent, score, opponent_score) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, row := range res.Pairwise {
		for j, cell := range row {
			if _, err := stmt.Exec(r.ID, res.Names[i], res.Names[j], cell.Own, cell.Opp); err != nil {
				return fmt.Errorf("insert pairwise score: %w", err)
			}
		}
	}
	return nil
}

// SaveSCB writes both phases of an SCB comparison.
func (r *Run) SaveSCB(res *sweep.SCBResult) error {
	if err := insertStats(r.tx, r.ID, "without_scb", res.Without); err != nil {
		return err
	}
	return insertStats(r.tx, r.ID, "with_scb", res.With)
}

// SaveSweep writes every level of a noise sweep.
func (r *Run) SaveSweep(res *sweep.NoiseResult) error {
	stmt, err := r.tx.Preparex(`INSERT INTO noise_stats
		(run_id, epsilon, strategy, mean, stdev, ci_lower, ci_upper, n_samples)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, level := range res.Levels {
		for _, name := range res.Names {
			s := level.Stats[name]
			if _, err := stmt.Exec(r.ID, level.Noise, name, s.Mean, s.Stdev, s.CILower, s.CIUpper, s.N); err != nil {
				return fmt.Errorf("insert noise stats: %w", err)
			}
		}
	}
	return nil
}

// SaveEvolution writes every population snapshot of one evolution run.
func (r *Run) SaveEvolution(res *evolution.Result) error {
	stmt, err := r.tx.Preparex(`INSERT INTO population_history
		(run_id, label, epsilon, generation, strategy, fraction) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for gen, pop := range res.History {
		for _, name := range res.Names {
			if _, err := stmt.Exec(r.ID, res.Label, res.Noise, gen, name, pop[name]); err != nil {
				return fmt.Errorf("insert population: %w", err)
			}
		}
	}
	return nil
}

func insertStats(tx *sqlx.Tx, runID, phase string, m map[string]stats.ScoreStats) error {
	stmt, err := tx.Preparex(`INSERT INTO strategy_stats
		(run_id, phase, strategy, mean, stdev, ci_lower, ci_upper, n_samples)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range stats.Rank(m) {
		s := e.Stats
		if _, err := stmt.Exec(runID, phase, e.Name, s.Mean, s.Stdev, s.CILower, s.CIUpper, s.N); err != nil {
			return fmt.Errorf("insert strategy stats: %w", err)
		}
	}
	return nil
}
