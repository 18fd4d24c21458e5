// Package wizard provides the store-backed engine driving wizard runs.
package wizard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vitalpath/intakeflow/internal/models"
	"github.com/vitalpath/intakeflow/internal/store"
)

// Engine drives wizard runs: it loads a run, applies a step-controller
// operation, and persists the updated run. There is exactly one run per
// wizard session; the engine performs no blocking work beyond storage and
// the terminal submission's network calls.
type Engine struct {
	registry  *Registry
	store     store.Store
	submitter *Submitter
}

// NewEngine creates an Engine over the given registry, store and submitter.
func NewEngine(registry *Registry, st store.Store, submitter *Submitter) *Engine {
	slog.Debug("Creating wizard engine", "steps", registry.TotalSteps())
	return &Engine{registry: registry, store: st, submitter: submitter}
}

// Registry exposes the step catalog for read-only inspection.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// StartRun creates and persists a new run at the entry step with an empty context.
func (e *Engine) StartRun(ctx context.Context) (*models.WizardRun, error) {
	now := time.Now()
	run := models.WizardRun{
		RunID:     uuid.NewString(),
		Position:  StartPosition(e.registry.First()),
		Context:   models.NewAssessmentContext(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := e.store.SaveRun(run); err != nil {
		slog.Error("Engine.StartRun: save failed", "error", err, "runID", run.RunID)
		return nil, fmt.Errorf("failed to save new run: %w", err)
	}
	slog.Info("Engine.StartRun: run started", "runID", run.RunID, "step", run.Position.CurrentStep)
	return &run, nil
}

// GetRun loads a run, failing with ErrRunNotFound when it does not exist.
func (e *Engine) GetRun(ctx context.Context, runID string) (*models.WizardRun, error) {
	run, err := e.store.GetRun(runID)
	if err != nil {
		slog.Error("Engine.GetRun: load failed", "error", err, "runID", runID)
		return nil, err
	}
	if run == nil {
		return nil, fmt.Errorf("%w: %s", models.ErrRunNotFound, runID)
	}
	return run, nil
}

// Answer validates and applies the current step's input, then advances to the
// resolved successor. Validation failures are recoverable: they surface to
// the caller and leave the stored run untouched.
func (e *Engine) Answer(ctx context.Context, runID string, input models.StepInput) (*models.WizardRun, error) {
	run, def, err := e.loadMutable(ctx, runID)
	if err != nil {
		return nil, err
	}
	if def.Terminal() {
		return nil, fmt.Errorf("%w: %s accepts no answer, submit instead", models.ErrNotTerminal, def.Key)
	}
	if def.Validate != nil {
		if err := def.Validate(input); err != nil {
			slog.Debug("Engine.Answer: validation failed", "runID", runID, "step", def.Key, "error", err)
			return nil, err
		}
	}

	run.Context = def.Apply(run.Context, input)
	next := def.ResolveNext(run.Context)
	if _, err := e.registry.Lookup(next); err != nil {
		// A successor outside the registry is a config error, fatal to the flow.
		slog.Error("Engine.Answer: step resolved to unregistered successor", "runID", runID, "step", def.Key, "next", next)
		return nil, err
	}
	run.Position = Advance(run.Position, next)

	if err := e.saveRun(run); err != nil {
		return nil, err
	}
	slog.Info("Engine.Answer: advanced", "runID", runID, "from", def.Key, "to", next)
	return run, nil
}

// Skip advances to the step's default (non-conditional) successor without
// writing any of the step's fields into the context.
func (e *Engine) Skip(ctx context.Context, runID string) (*models.WizardRun, error) {
	run, def, err := e.loadMutable(ctx, runID)
	if err != nil {
		return nil, err
	}
	if def.Terminal() {
		return nil, fmt.Errorf("%w: %s cannot be skipped", models.ErrNotTerminal, def.Key)
	}

	run.Position = Advance(run.Position, def.DefaultNext)
	if err := e.saveRun(run); err != nil {
		return nil, err
	}
	slog.Info("Engine.Skip: advanced", "runID", runID, "from", def.Key, "to", def.DefaultNext)
	return run, nil
}

// None records an explicit empty list for the step's list field ("none of
// these") and advances past any dependent list-entry step. Distinct from
// Skip: the context ends up with an explicit empty answer, not an absent key.
func (e *Engine) None(ctx context.Context, runID string) (*models.WizardRun, error) {
	run, def, err := e.loadMutable(ctx, runID)
	if err != nil {
		return nil, err
	}
	if def.ListField == "" {
		return nil, fmt.Errorf("%w: %s", models.ErrNoNoneOption, def.Key)
	}

	partial := map[models.FieldName]models.FieldValue{
		def.ListField: models.ListValue(nil),
	}
	if def.GateField != "" {
		partial[def.GateField] = models.BoolValue(false)
	}
	run.Context = run.Context.Merge(partial)

	// The default successor bypasses the dependent list-entry step.
	run.Position = Advance(run.Position, def.DefaultNext)
	if err := e.saveRun(run); err != nil {
		return nil, err
	}
	slog.Info("Engine.None: recorded empty answer and advanced", "runID", runID, "from", def.Key, "to", def.DefaultNext, "field", def.ListField)
	return run, nil
}

// Back retreats to the previously visited step. Fails with ErrNoHistory on
// the first step. Revisited steps may be re-answered; the overwrite replaces
// the prior value in the context.
func (e *Engine) Back(ctx context.Context, runID string) (*models.WizardRun, error) {
	run, _, err := e.loadMutable(ctx, runID)
	if err != nil {
		return nil, err
	}

	pos, err := Retreat(run.Position)
	if err != nil {
		slog.Debug("Engine.Back: retreat refused", "runID", runID, "error", err)
		return nil, err
	}
	run.Position = pos

	if err := e.saveRun(run); err != nil {
		return nil, err
	}
	slog.Info("Engine.Back: retreated", "runID", runID, "to", pos.CurrentStep)
	return run, nil
}

// Progress returns the run's approximate completion fraction.
func (e *Engine) Progress(run *models.WizardRun) float64 {
	return Progress(run.Position, e.registry.TotalSteps())
}

// Derived recomputes the run's derived display values.
func (e *Engine) Derived(run *models.WizardRun) DerivedValues {
	return Derive(run.Context, time.Now())
}

// Submit performs the terminal assembly and submission for a run positioned
// at the review step. The submitted flag is set before any network call and
// guards against duplicate invocation; it stays set even when the submission
// fails, since manual retry happens from a different surface.
func (e *Engine) Submit(ctx context.Context, runID, token, userID string) (models.SubmissionResult, error) {
	var zero models.SubmissionResult

	run, err := e.GetRun(ctx, runID)
	if err != nil {
		return zero, err
	}
	if run.Submitted {
		slog.Warn("Engine.Submit: duplicate submission refused", "runID", runID)
		return zero, fmt.Errorf("%w: %s", models.ErrRunSubmitted, runID)
	}
	if run.Position.CurrentStep != models.StepReview {
		return zero, fmt.Errorf("%w: at %s", models.ErrNotTerminal, run.Position.CurrentStep)
	}
	if token == "" || userID == "" {
		return zero, models.ErrMissingSession
	}

	// Enter Saving exactly once: persist the guard before the first call.
	run.Submitted = true
	if err := e.saveRun(run); err != nil {
		return zero, err
	}

	record := Assemble(run.Context, time.Now())
	result, err := e.submitter.Submit(ctx, record, token, userID)
	if err != nil {
		return zero, err
	}
	slog.Info("Engine.Submit: submission completed", "runID", runID, "status", result.Status)
	return result, nil
}

// loadMutable loads a run and the definition of its current step, refusing
// mutation of submitted runs.
func (e *Engine) loadMutable(ctx context.Context, runID string) (*models.WizardRun, *StepDefinition, error) {
	run, err := e.GetRun(ctx, runID)
	if err != nil {
		return nil, nil, err
	}
	if run.Submitted {
		return nil, nil, fmt.Errorf("%w: %s", models.ErrRunSubmitted, runID)
	}
	def, err := e.registry.Lookup(run.Position.CurrentStep)
	if err != nil {
		slog.Error("Engine: run points at unregistered step", "runID", runID, "step", run.Position.CurrentStep)
		return nil, nil, err
	}
	return run, def, nil
}

func (e *Engine) saveRun(run *models.WizardRun) error {
	run.UpdatedAt = time.Now()
	if err := e.store.SaveRun(*run); err != nil {
		slog.Error("Engine: save run failed", "error", err, "runID", run.RunID)
		return fmt.Errorf("failed to save run %s: %w", run.RunID, err)
	}
	return nil
}
