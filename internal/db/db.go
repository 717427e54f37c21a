// Package db provides PostgreSQL persistence for workflow runs and their
// artifacts. The in-memory registry remains the source of truth while a
// run is live; this store is the durable record collaborators read later.
package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// EnsureSchema creates the run and artifact tables when they do not exist.
func (db *DB) EnsureSchema(ctx context.Context) error {
	_, err := db.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS workflow_runs (
			id UUID PRIMARY KEY,
			kind TEXT NOT NULL,
			phase TEXT NOT NULL,
			attempts INT NOT NULL DEFAULT 0,
			score DOUBLE PRECISION,
			feedback TEXT,
			error_category TEXT,
			error_message TEXT,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS workflow_artifacts (
			run_id UUID NOT NULL REFERENCES workflow_runs(id),
			step TEXT NOT NULL,
			content JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (run_id, step)
		);`)
	if err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// RunRecord is the persisted form of a workflow run.
type RunRecord struct {
	ID            uuid.UUID `json:"run_id"`
	Kind          string    `json:"kind"`
	Phase         string    `json:"phase"`
	Attempts      int       `json:"attempts"`
	Score         *float64  `json:"score,omitempty"`
	Feedback      *string   `json:"feedback,omitempty"`
	ErrorCategory *string   `json:"error_category,omitempty"`
	ErrorMessage  *string   `json:"error_message,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// UpsertRun writes the current state of a run, inserting on first sight
// and overwriting on every later transition.
func (db *DB) UpsertRun(ctx context.Context, rec *RunRecord) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO workflow_runs (id, kind, phase, attempts, score, feedback, error_category, error_message, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (id) DO UPDATE SET
		   phase = $3, attempts = $4, score = $5, feedback = $6,
		   error_category = $7, error_message = $8, updated_at = $10`,
		rec.ID, rec.Kind, rec.Phase, rec.Attempts, rec.Score, rec.Feedback,
		rec.ErrorCategory, rec.ErrorMessage, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert run %s: %w", rec.ID, err)
	}
	return nil
}

// GetRun retrieves a persisted run by id. Returns nil when the run is
// unknown.
func (db *DB) GetRun(ctx context.Context, id uuid.UUID) (*RunRecord, error) {
	var rec RunRecord
	err := db.pool.QueryRow(ctx,
		`SELECT id, kind, phase, attempts, score, feedback, error_category, error_message, created_at, updated_at
		 FROM workflow_runs WHERE id = $1`,
		id,
	).Scan(&rec.ID, &rec.Kind, &rec.Phase, &rec.Attempts, &rec.Score,
		&rec.Feedback, &rec.ErrorCategory, &rec.ErrorMessage, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run %s: %w", id, err)
	}
	return &rec, nil
}

// SaveArtifact stores a JSON artifact for a run. Saving the same step
// again replaces the content; history belongs to the caller.
func (db *DB) SaveArtifact(ctx context.Context, runID uuid.UUID, step string, content any) error {
	jsonBytes, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("failed to marshal artifact: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO workflow_artifacts (run_id, step, content)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (run_id, step) DO UPDATE SET content = $3, created_at = NOW()`,
		runID, step, jsonBytes,
	)
	if err != nil {
		return fmt.Errorf("failed to save artifact %s: %w", step, err)
	}
	return nil
}

// GetArtifact retrieves a JSON artifact by run ID and step. Returns nil
// when no artifact was stored.
func (db *DB) GetArtifact(ctx context.Context, runID uuid.UUID, step string) ([]byte, error) {
	var content []byte
	err := db.pool.QueryRow(ctx,
		`SELECT content FROM workflow_artifacts WHERE run_id = $1 AND step = $2`,
		runID, step,
	).Scan(&content)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get artifact %s: %w", step, err)
	}
	return content, nil
}
