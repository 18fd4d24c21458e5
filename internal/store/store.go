// Package store provides storage backends for IntakeFlow wizard runs.
//
// It includes an in-memory store for tests and development plus persistent
// SQLite and PostgreSQL backends.
package store

import (
	"sync"

	"github.com/vitalpath/intakeflow/internal/models"
)

// Store persists wizard runs between requests.
type Store interface {
	// SaveRun stores or replaces a run.
	SaveRun(run models.WizardRun) error

	// GetRun retrieves a run by ID, returning (nil, nil) when absent.
	GetRun(runID string) (*models.WizardRun, error)

	// DeleteRun removes a run. Deleting a missing run is not an error.
	DeleteRun(runID string) error

	// Close releases any underlying resources.
	Close() error
}

// Opts holds configuration for persistent store backends.
type Opts struct {
	// DSN is the database connection string: a file path for SQLite, a
	// connection URL for PostgreSQL.
	DSN string
}

// Option configures store construction.
type Option func(*Opts)

// WithDSN sets the database DSN.
func WithDSN(dsn string) Option {
	return func(o *Opts) {
		o.DSN = dsn
	}
}

// InMemoryStore is a mutex-guarded map store for tests and development.
type InMemoryStore struct {
	mu   sync.Mutex
	runs map[string]models.WizardRun
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{runs: make(map[string]models.WizardRun)}
}

// SaveRun stores or replaces a run.
func (s *InMemoryStore) SaveRun(run models.WizardRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.RunID] = run
	return nil
}

// GetRun retrieves a run by ID, returning (nil, nil) when absent.
func (s *InMemoryStore) GetRun(runID string) (*models.WizardRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[runID]
	if !ok {
		return nil, nil
	}
	return &run, nil
}

// DeleteRun removes a run.
func (s *InMemoryStore) DeleteRun(runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.runs, runID)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}
