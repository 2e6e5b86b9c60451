// Package store persists fitted occupancy models and training observations.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kilianp07/smartpark/core/prediction"
)

// SQLiteStore persists models and observations in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// A single connection keeps in-memory databases shared and serialises writers.
	db.SetMaxOpenConns(1)
	schema := `CREATE TABLE IF NOT EXISTS models (
        id TEXT PRIMARY KEY,
        fitted_at INTEGER NOT NULL,
        location TEXT,
        observations INTEGER,
        payload TEXT NOT NULL
    );
    CREATE INDEX IF NOT EXISTS models_fitted_at ON models (fitted_at);
    CREATE TABLE IF NOT EXISTS observations (
        ts INTEGER PRIMARY KEY,
        value REAL NOT NULL
    );`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// SaveModel inserts the model, replacing any model with the same ID.
func (s *SQLiteStore) SaveModel(ctx context.Context, m prediction.Model) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO models (id, fitted_at, location, observations, payload)
        VALUES (?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            fitted_at = excluded.fitted_at,
            location = excluded.location,
            observations = excluded.observations,
            payload = excluded.payload`,
		m.ID, m.FittedAt.UnixNano(), m.Location, m.Observations, string(b))
	return err
}

// LatestModel returns the model with the most recent fit time.
func (s *SQLiteStore) LatestModel(ctx context.Context) (prediction.Model, bool, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM models ORDER BY fitted_at DESC, rowid DESC LIMIT 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return prediction.Model{}, false, nil
	}
	if err != nil {
		return prediction.Model{}, false, err
	}
	var m prediction.Model
	if err := json.Unmarshal([]byte(data), &m); err != nil {
		return prediction.Model{}, false, fmt.Errorf("unmarshal model: %w", err)
	}
	return m, true, nil
}

// AppendObservations upserts observations keyed by their timestamp.
func (s *SQLiteStore) AppendObservations(ctx context.Context, obs []prediction.Observation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO observations (ts, value) VALUES (?, ?)
        ON CONFLICT(ts) DO UPDATE SET value = excluded.value`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer func() { _ = stmt.Close() }()
	for _, o := range obs {
		if _, err := stmt.ExecContext(ctx, o.Timestamp.Unix(), o.Value); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert observation %s: %w", o.Timestamp, err)
		}
	}
	return tx.Commit()
}

// Observations returns every observation ordered by timestamp, in UTC.
func (s *SQLiteStore) Observations(ctx context.Context) ([]prediction.Observation, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT ts, value FROM observations ORDER BY ts`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []prediction.Observation
	for rows.Next() {
		var ts int64
		var v float64
		if err := rows.Scan(&ts, &v); err != nil {
			return nil, err
		}
		res = append(res, prediction.Observation{Timestamp: time.Unix(ts, 0).UTC(), Value: v})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
