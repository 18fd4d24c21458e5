// Package api provides HTTP handlers for IntakeFlow endpoints.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vitalpath/intakeflow/internal/models"
	"github.com/vitalpath/intakeflow/internal/wizard"
)

// runView is the wire representation of a run's current position.
type runView struct {
	RunID       string                     `json:"run_id"`
	CurrentStep models.StepKey             `json:"current_step"`
	Fields      []models.FieldName         `json:"fields,omitempty"`
	Optional    bool                       `json:"optional"`
	Progress    float64                    `json:"progress"`
	CanGoBack   bool                       `json:"can_go_back"`
	Submitted   bool                       `json:"submitted"`
	Display     *wizard.MeasurementDisplay `json:"display,omitempty"`
}

// submitRequest carries the session credentials explicitly: the submission
// stage never reads them from ambient state.
type submitRequest struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("ok", nil))
}

// startRunHandler handles POST /runs
func (s *Server) startRunHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("Server.startRunHandler: starting run", "method", r.Method, "path", r.URL.Path)

	run, err := s.engine.StartRun(r.Context())
	if err != nil {
		slog.Error("Server.startRunHandler: failed to start run", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to start wizard run"))
		return
	}

	slog.Info("Server.startRunHandler: run started", "runID", run.RunID)
	writeJSONResponse(w, http.StatusCreated, models.Success(s.viewOf(run)))
}

// getRunHandler handles GET /runs/{id}
func (s *Server) getRunHandler(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["id"]
	slog.Debug("Server.getRunHandler: fetching run", "runID", runID)

	run, err := s.engine.GetRun(r.Context(), runID)
	if err != nil {
		s.writeEngineError(w, "getRunHandler", err)
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(s.viewOf(run)))
}

// answerHandler handles POST /runs/{id}/answer
func (s *Server) answerHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	runID := mux.Vars(r)["id"]
	slog.Debug("Server.answerHandler: processing answer", "runID", runID)

	var input models.StepInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		slog.Warn("Server.answerHandler: failed to decode JSON", "error", err, "runID", runID)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	run, err := s.engine.Answer(r.Context(), runID, input)
	if err != nil {
		s.writeEngineError(w, "answerHandler", err)
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(s.viewOf(run)))
}

// skipHandler handles POST /runs/{id}/skip
func (s *Server) skipHandler(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["id"]
	slog.Debug("Server.skipHandler: skipping step", "runID", runID)

	run, err := s.engine.Skip(r.Context(), runID)
	if err != nil {
		s.writeEngineError(w, "skipHandler", err)
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(s.viewOf(run)))
}

// noneHandler handles POST /runs/{id}/none
func (s *Server) noneHandler(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["id"]
	slog.Debug("Server.noneHandler: recording none-of-these", "runID", runID)

	run, err := s.engine.None(r.Context(), runID)
	if err != nil {
		s.writeEngineError(w, "noneHandler", err)
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(s.viewOf(run)))
}

// backHandler handles POST /runs/{id}/back
func (s *Server) backHandler(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["id"]
	slog.Debug("Server.backHandler: retreating", "runID", runID)

	run, err := s.engine.Back(r.Context(), runID)
	if err != nil {
		s.writeEngineError(w, "backHandler", err)
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(s.viewOf(run)))
}

// derivedHandler handles GET /runs/{id}/derived
func (s *Server) derivedHandler(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["id"]
	slog.Debug("Server.derivedHandler: computing derived values", "runID", runID)

	run, err := s.engine.GetRun(r.Context(), runID)
	if err != nil {
		s.writeEngineError(w, "derivedHandler", err)
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(s.engine.Derived(run)))
}

// submitHandler handles POST /runs/{id}/submit
func (s *Server) submitHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	runID := mux.Vars(r)["id"]
	slog.Debug("Server.submitHandler: processing submission", "runID", runID)

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.submitHandler: failed to decode JSON", "error", err, "runID", runID)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	result, err := s.engine.Submit(r.Context(), runID, req.Token, req.UserID)
	if err != nil {
		s.writeEngineError(w, "submitHandler", err)
		return
	}

	if result.Status == models.SubmissionFailed {
		// Terminal failure of the automatic attempt; the record remains
		// available for a manual retry from the profile surface.
		writeJSONResponse(w, http.StatusBadGateway, models.APIResponse{
			Status:  string(models.APIStatusError),
			Message: "Assessment submission failed",
			Result:  result,
		})
		return
	}

	slog.Info("Server.submitHandler: submission succeeded", "runID", runID, "profile_ok", result.ProfileOutcome.OK)
	writeJSONResponse(w, http.StatusOK, models.Success(result))
}

// viewOf builds the wire view of a run, including the current step's descriptor.
func (s *Server) viewOf(run *models.WizardRun) runView {
	view := runView{
		RunID:       run.RunID,
		CurrentStep: run.Position.CurrentStep,
		Progress:    s.engine.Progress(run),
		CanGoBack:   run.Position.CanGoBack(),
		Submitted:   run.Submitted,
	}
	if def, err := s.engine.Registry().Lookup(run.Position.CurrentStep); err == nil {
		view.Fields = def.Fields
		view.Optional = def.Optional
	}
	view.Display = wizard.DisplayFor(run.Position.CurrentStep, run.Context)
	return view
}

// writeEngineError maps engine errors to HTTP statuses.
func (s *Server) writeEngineError(w http.ResponseWriter, handler string, err error) {
	switch {
	case models.IsValidationError(err):
		slog.Debug("Server."+handler+": validation failed", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
	case errors.Is(err, models.ErrRunNotFound):
		writeJSONResponse(w, http.StatusNotFound, models.Error(err.Error()))
	case errors.Is(err, models.ErrMissingSession):
		writeJSONResponse(w, http.StatusUnauthorized, models.Error(err.Error()))
	case errors.Is(err, models.ErrRunSubmitted),
		errors.Is(err, models.ErrNoHistory),
		errors.Is(err, models.ErrNotTerminal),
		errors.Is(err, models.ErrNoNoneOption):
		slog.Warn("Server."+handler+": conflicting operation", "error", err)
		writeJSONResponse(w, http.StatusConflict, models.Error(err.Error()))
	default:
		slog.Error("Server."+handler+": internal error", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Internal server error"))
	}
}

// Engine accessor for tests.
func (s *Server) Engine() *wizard.Engine {
	return s.engine
}
