// Package db archives batch fit runs in a local SQLite database so
// past results stay queryable after the CSVs have been reshuffled.
package db

import (
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/coldwater-lab/o2report/internal/fitting"
)

type DB struct {
	*sql.DB
}

// NewDB opens (creating if necessary) the archive database at path.
func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			run_id            TEXT PRIMARY KEY,
			cleaned_folder    TEXT,
			started_at        TIMESTAMP,
			timestamp         TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS fit_results (
			run_id            TEXT,
			source_file       TEXT,
			slope             DOUBLE,
			r2                DOUBLE,
			mean_temperature  DOUBLE,
			start_time        TEXT,
			stop_time         TEXT,
			duration          TEXT,
			timestamp         TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(run_id) REFERENCES runs(run_id)
		);
	`)
	if err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

// RecordRun inserts a new batch run and returns its generated id.
func (db *DB) RecordRun(cleanedFolder string, startedAt time.Time) (string, error) {
	runID := uuid.NewString()
	_, err := db.Exec(
		`INSERT INTO runs (run_id, cleaned_folder, started_at) VALUES (?, ?, ?)`,
		runID, cleanedFolder, startedAt.UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to record run: %w", err)
	}
	return runID, nil
}

// RecordFitResult stores one fit summary under a run. No-data results
// store NULL for every field but the filename; NaN values are stored as
// NULL too, since SQLite has no NaN.
func (db *DB) RecordFitResult(runID string, result fitting.Result) error {
	var slope, r2, meanTemp sql.NullFloat64
	var startTime, stopTime, duration sql.NullString

	if v := result.Values; v != nil {
		slope = nullableFloat(v.Slope)
		r2 = nullableFloat(v.R2)
		meanTemp = nullableFloat(v.MeanTemperature)
		startTime = sql.NullString{String: v.StartTime, Valid: true}
		stopTime = sql.NullString{String: v.StopTime, Valid: true}
		duration = sql.NullString{String: v.Duration, Valid: true}
	}

	_, err := db.Exec(
		`INSERT INTO fit_results (
			run_id, source_file, slope, r2, mean_temperature,
			start_time, stop_time, duration
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, result.SourceFile, slope, r2, meanTemp, startTime, stopTime, duration,
	)
	if err != nil {
		return fmt.Errorf("failed to record fit result for %s: %w", result.SourceFile, err)
	}
	return nil
}

// ArchivedResult is one stored fit summary row.
type ArchivedResult struct {
	RunID           string
	SourceFile      string
	Slope           sql.NullFloat64
	R2              sql.NullFloat64
	MeanTemperature sql.NullFloat64
	StartTime       sql.NullString
	StopTime        sql.NullString
	Duration        sql.NullString
}

// ResultsForRun returns the stored summaries of one run in insertion order.
func (db *DB) ResultsForRun(runID string) ([]ArchivedResult, error) {
	rows, err := db.Query(
		`SELECT run_id, source_file, slope, r2, mean_temperature,
			start_time, stop_time, duration
		 FROM fit_results WHERE run_id = ? ORDER BY rowid`,
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []ArchivedResult
	for rows.Next() {
		var r ArchivedResult
		if err := rows.Scan(
			&r.RunID, &r.SourceFile, &r.Slope, &r.R2, &r.MeanTemperature,
			&r.StartTime, &r.StopTime, &r.Duration,
		); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func nullableFloat(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}
