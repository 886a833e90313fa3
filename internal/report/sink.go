package report

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"ringstat/internal/aggregate"
	"ringstat/internal/campaign"
)

// Sink persists campaign reports to a SQLite database so repeated analyses
// of the same campaign can be diffed over time.
type Sink struct {
	db   *sql.DB
	path string
}

// OpenSink creates or opens the results database.
func OpenSink(path string) (*Sink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open results db: %w", err)
	}
	s := &Sink{db: db, path: path}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init results schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Sink) Close() error { return s.db.Close() }

func (s *Sink) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS reports (
		id TEXT PRIMARY KEY,
		root TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		runs INTEGER NOT NULL,
		skipped INTEGER NOT NULL,
		failed INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS runs (
		report_id TEXT NOT NULL REFERENCES reports(id),
		source_path TEXT NOT NULL,
		run_id INTEGER,
		eccentricity REAL NOT NULL,
		particle_count INTEGER NOT NULL,
		energy REAL NOT NULL,
		seed INTEGER NOT NULL,
		metric TEXT NOT NULL,
		value REAL,
		regime TEXT NOT NULL,
		PRIMARY KEY (report_id, source_path, metric)
	);

	CREATE TABLE IF NOT EXISTS conditions (
		report_id TEXT NOT NULL REFERENCES reports(id),
		condition TEXT NOT NULL,
		n_samples INTEGER NOT NULL,
		metric TEXT NOT NULL,
		mean REAL,
		std REAL,
		n INTEGER NOT NULL,
		PRIMARY KEY (report_id, condition, metric)
	);

	CREATE TABLE IF NOT EXISTS fits (
		report_id TEXT NOT NULL REFERENCES reports(id),
		model TEXT NOT NULL,
		parameter TEXT NOT NULL,
		value REAL NOT NULL,
		stderr REAL NOT NULL,
		r_squared REAL NOT NULL,
		best INTEGER NOT NULL,
		PRIMARY KEY (report_id, model, parameter)
	);`
	_, err := s.db.Exec(schema)
	return err
}

// Store writes one report and all its rows in a single transaction.
func (s *Sink) Store(rep *campaign.Report) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin report write: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO reports (id, root, created_at, runs, skipped, failed) VALUES (?, ?, ?, ?, ?, ?)`,
		rep.ID, rep.Root, time.Now().UTC(), len(rep.Runs), len(rep.Skipped), len(rep.Failures))
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}

	insRun, err := tx.Prepare(`INSERT INTO runs
		(report_id, source_path, run_id, eccentricity, particle_count, energy, seed, metric, value, regime)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare run insert: %w", err)
	}
	defer insRun.Close()

	for _, r := range rep.Runs {
		id := r.Identity
		var runID any
		if id.RunID >= 0 {
			runID = id.RunID
		}
		for _, name := range aggregate.ScalarNames {
			var value any
			if v, ok := r.Scalar(name).Float(); ok {
				value = v
			}
			if _, err := insRun.Exec(rep.ID, id.SourcePath, runID, id.Eccentricity,
				id.ParticleCount, id.EnergyPerParticle, id.Seed, name, value, string(r.Regime)); err != nil {
				return fmt.Errorf("insert run row: %w", err)
			}
		}
	}

	insCond, err := tx.Prepare(`INSERT INTO conditions
		(report_id, condition, n_samples, metric, mean, std, n) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare condition insert: %w", err)
	}
	defer insCond.Close()

	for _, sum := range rep.Summaries {
		for _, name := range aggregate.ScalarNames {
			st := sum.Stats[name]
			var mean, std any
			if v, ok := st.Mean.Float(); ok {
				mean = v
			}
			if v, ok := st.Std.Float(); ok {
				std = v
			}
			if _, err := insCond.Exec(rep.ID, sum.Key.Canon(), sum.NSamples, name, mean, std, st.N); err != nil {
				return fmt.Errorf("insert condition row: %w", err)
			}
		}
	}

	if rep.Fit != nil {
		best, hasBest := rep.Fit.Comparison.BestResult()
		for _, res := range rep.Fit.Comparison.Results {
			isBest := hasBest && res.ModelName == best.ModelName
			for i, name := range res.ParamNames {
				if _, err := tx.Exec(`INSERT INTO fits
					(report_id, model, parameter, value, stderr, r_squared, best)
					VALUES (?, ?, ?, ?, ?, ?, ?)`,
					rep.ID, res.ModelName, name, res.Params[i], res.StdErrs[i],
					res.RSquared, isBest); err != nil {
					return fmt.Errorf("insert fit row: %w", err)
				}
			}
		}
	}

	return tx.Commit()
}
