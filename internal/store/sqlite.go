// Package store provides storage backends for IntakeFlow wizard runs.
//
// This file implements the SQLite-backed run store.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vitalpath/intakeflow/internal/models"
)

// DefaultDirPermissions defines the default permissions for database directories.
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore persists wizard runs in a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN (a file path).
// The containing directory is created if it doesn't exist.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	if cfg.DSN == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(cfg.DSN)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.DSN)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run SQLite migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")

	return &SQLiteStore{db: db}, nil
}

// SaveRun stores or replaces a wizard run.
func (s *SQLiteStore) SaveRun(run models.WizardRun) error {
	historyJSON, contextJSON, err := encodeRun(run)
	if err != nil {
		slog.Error("SQLiteStore SaveRun encode failed", "error", err, "runID", run.RunID)
		return err
	}

	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO wizard_runs (run_id, current_step, history, context, submitted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, string(run.Position.CurrentStep), historyJSON, contextJSON,
		run.Submitted, run.CreatedAt, run.UpdatedAt)
	if err != nil {
		slog.Error("SQLiteStore SaveRun failed", "error", err, "runID", run.RunID)
		return fmt.Errorf("failed to save run %s: %w", run.RunID, err)
	}
	slog.Debug("SQLiteStore SaveRun succeeded", "runID", run.RunID, "step", run.Position.CurrentStep)
	return nil
}

// GetRun retrieves a wizard run, returning (nil, nil) when absent.
func (s *SQLiteStore) GetRun(runID string) (*models.WizardRun, error) {
	row := s.db.QueryRow(`
		SELECT run_id, current_step, history, context, submitted, created_at, updated_at
		FROM wizard_runs WHERE run_id = ?`, runID)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		slog.Debug("SQLiteStore GetRun not found", "runID", runID)
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetRun failed", "error", err, "runID", runID)
		return nil, err
	}
	return run, nil
}

// DeleteRun removes a wizard run.
func (s *SQLiteStore) DeleteRun(runID string) error {
	_, err := s.db.Exec(`DELETE FROM wizard_runs WHERE run_id = ?`, runID)
	if err != nil {
		slog.Error("SQLiteStore DeleteRun failed", "error", err, "runID", runID)
		return err
	}
	slog.Debug("SQLiteStore DeleteRun succeeded", "runID", runID)
	return nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	err := s.db.Close()
	if err != nil {
		slog.Error("Failed to close SQLite database", "error", err)
	}
	return err
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// encodeRun marshals the run's history and context for storage.
func encodeRun(run models.WizardRun) (historyJSON, contextJSON string, err error) {
	h, err := json.Marshal(run.Position.History)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal run history: %w", err)
	}
	c, err := json.Marshal(run.Context)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal run context: %w", err)
	}
	return string(h), string(c), nil
}

// scanRun reads one wizard run row, decoding the JSON columns.
func scanRun(row rowScanner) (*models.WizardRun, error) {
	var run models.WizardRun
	var currentStep string
	var historyJSON, contextJSON sql.NullString

	err := row.Scan(&run.RunID, &currentStep, &historyJSON, &contextJSON,
		&run.Submitted, &run.CreatedAt, &run.UpdatedAt)
	if err != nil {
		return nil, err
	}

	run.Position.CurrentStep = models.StepKey(currentStep)
	if historyJSON.Valid && historyJSON.String != "" {
		if err := json.Unmarshal([]byte(historyJSON.String), &run.Position.History); err != nil {
			return nil, fmt.Errorf("failed to unmarshal run history: %w", err)
		}
	}
	run.Context = models.NewAssessmentContext()
	if contextJSON.Valid && contextJSON.String != "" {
		if err := json.Unmarshal([]byte(contextJSON.String), &run.Context); err != nil {
			return nil, fmt.Errorf("failed to unmarshal run context: %w", err)
		}
	}
	return &run, nil
}
