// Package api provides HTTP handlers and the main API server logic for
// IntakeFlow.
//
// It exposes RESTful endpoints for driving health-assessment wizard runs:
// starting a run, answering/skipping/backing through steps, reading derived
// values, and the terminal submission.
package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/vitalpath/intakeflow/internal/backend"
	"github.com/vitalpath/intakeflow/internal/store"
	"github.com/vitalpath/intakeflow/internal/wizard"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = ":8080"

// Opts holds configuration options for the API server.
type Opts struct {
	// Addr is the listen address.
	Addr string
	// DBDriver selects the persistent store backend ("sqlite3" or "postgres").
	// An empty driver with an empty DSN falls back to the in-memory store.
	DBDriver string
}

// Option configures API server construction.
type Option func(*Opts)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) {
		o.Addr = addr
	}
}

// WithDBDriver selects the persistent store backend.
func WithDBDriver(driver string) Option {
	return func(o *Opts) {
		o.DBDriver = driver
	}
}

// Server wires the wizard engine to the HTTP surface.
type Server struct {
	engine *wizard.Engine
}

// NewServer creates a Server over an already-constructed engine.
func NewServer(engine *wizard.Engine) *Server {
	return &Server{engine: engine}
}

// Run builds the store, backend client, and engine from the given options
// and serves the API until the listener fails.
func Run(storeOpts []store.Option, backendOpts []backend.Option, apiOpts []Option) error {
	var cfg Opts
	for _, opt := range apiOpts {
		opt(&cfg)
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}

	st, err := buildStore(cfg.DBDriver, storeOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()

	client, err := backend.NewClient(backendOpts...)
	if err != nil {
		return fmt.Errorf("failed to initialize backend client: %w", err)
	}

	engine := wizard.NewEngine(wizard.DefaultRegistry(), st, wizard.NewSubmitter(client))
	server := NewServer(engine)

	slog.Info("IntakeFlow API listening", "addr", cfg.Addr)
	return http.ListenAndServe(cfg.Addr, server.Routes())
}

// buildStore selects the store backend from the driver and DSN.
func buildStore(driver string, storeOpts []store.Option) (store.Store, error) {
	var cfg store.Opts
	for _, opt := range storeOpts {
		opt(&cfg)
	}

	switch {
	case driver == "postgres" || strings.HasPrefix(cfg.DSN, "postgres://") || strings.HasPrefix(cfg.DSN, "postgresql://"):
		slog.Debug("Using PostgreSQL run store")
		return store.NewPostgresStore(storeOpts...)
	case cfg.DSN != "":
		slog.Debug("Using SQLite run store", "dsn", cfg.DSN)
		return store.NewSQLiteStore(storeOpts...)
	default:
		slog.Warn("No database DSN configured, using in-memory run store")
		return store.NewInMemoryStore(), nil
	}
}

// Routes builds the HTTP router for the wizard API.
func (s *Server) Routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.healthHandler).Methods(http.MethodGet)
	r.HandleFunc("/runs", s.startRunHandler).Methods(http.MethodPost)
	r.HandleFunc("/runs/{id}", s.getRunHandler).Methods(http.MethodGet)
	r.HandleFunc("/runs/{id}/answer", s.answerHandler).Methods(http.MethodPost)
	r.HandleFunc("/runs/{id}/skip", s.skipHandler).Methods(http.MethodPost)
	r.HandleFunc("/runs/{id}/none", s.noneHandler).Methods(http.MethodPost)
	r.HandleFunc("/runs/{id}/back", s.backHandler).Methods(http.MethodPost)
	r.HandleFunc("/runs/{id}/derived", s.derivedHandler).Methods(http.MethodGet)
	r.HandleFunc("/runs/{id}/submit", s.submitHandler).Methods(http.MethodPost)
	return r
}
