// Package store provides storage backends for IntakeFlow wizard runs.
//
// This file implements the PostgreSQL-backed run store.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	_ "github.com/lib/pq"

	"github.com/vitalpath/intakeflow/internal/models"
)

// Database connection pool configuration constants
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// PostgresStore persists wizard runs in a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL store with the given DSN.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewPostgresStore invoked", "DSN_set", cfg.DSN != "")

	if cfg.DSN == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		slog.Error("Failed to open PostgreSQL connection", "error", err)
		return nil, err
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("PostgreSQL ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run PostgreSQL migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("PostgreSQL migrations applied successfully")

	return &PostgresStore{db: db}, nil
}

// SaveRun stores or replaces a wizard run.
func (s *PostgresStore) SaveRun(run models.WizardRun) error {
	historyJSON, contextJSON, err := encodeRun(run)
	if err != nil {
		slog.Error("PostgresStore SaveRun encode failed", "error", err, "runID", run.RunID)
		return err
	}

	_, err = s.db.Exec(`
		INSERT INTO wizard_runs (run_id, current_step, history, context, submitted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (run_id) DO UPDATE SET
			current_step = EXCLUDED.current_step,
			history = EXCLUDED.history,
			context = EXCLUDED.context,
			submitted = EXCLUDED.submitted,
			updated_at = EXCLUDED.updated_at`,
		run.RunID, string(run.Position.CurrentStep), historyJSON, contextJSON,
		run.Submitted, run.CreatedAt, run.UpdatedAt)
	if err != nil {
		slog.Error("PostgresStore SaveRun failed", "error", err, "runID", run.RunID)
		return fmt.Errorf("failed to save run %s: %w", run.RunID, err)
	}
	slog.Debug("PostgresStore SaveRun succeeded", "runID", run.RunID, "step", run.Position.CurrentStep)
	return nil
}

// GetRun retrieves a wizard run, returning (nil, nil) when absent.
func (s *PostgresStore) GetRun(runID string) (*models.WizardRun, error) {
	row := s.db.QueryRow(`
		SELECT run_id, current_step, history, context, submitted, created_at, updated_at
		FROM wizard_runs WHERE run_id = $1`, runID)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		slog.Debug("PostgresStore GetRun not found", "runID", runID)
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore GetRun failed", "error", err, "runID", runID)
		return nil, err
	}
	return run, nil
}

// DeleteRun removes a wizard run.
func (s *PostgresStore) DeleteRun(runID string) error {
	_, err := s.db.Exec(`DELETE FROM wizard_runs WHERE run_id = $1`, runID)
	if err != nil {
		slog.Error("PostgresStore DeleteRun failed", "error", err, "runID", runID)
		return err
	}
	slog.Debug("PostgresStore DeleteRun succeeded", "runID", runID)
	return nil
}

// Close closes the PostgreSQL connection pool.
func (s *PostgresStore) Close() error {
	err := s.db.Close()
	if err != nil {
		slog.Error("Failed to close PostgreSQL database", "error", err)
	}
	return err
}
