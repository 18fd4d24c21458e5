// Package wizard implements the health-assessment wizard core: a static step
// registry, per-step controllers, a history-based navigator, and the terminal
// assembly and submission stage.
package wizard

import (
	"fmt"
	"log/slog"

	"github.com/vitalpath/intakeflow/internal/models"
)

// StepDefinition is the static descriptor for one wizard step. Definitions
// are built once at process start and never mutated per-run.
type StepDefinition struct {
	// Key uniquely identifies the step.
	Key models.StepKey

	// Fields lists the context fields this step contributes.
	Fields []models.FieldName

	// Optional marks steps whose Continue action is always available.
	Optional bool

	// DefaultNext is the non-conditional successor, used by the Skip
	// affordance and as the fallback when Next is nil. Empty on the
	// terminal step.
	DefaultNext models.StepKey

	// Next, when set, resolves the successor from the accumulated context.
	// Branching lives here as data so the full step graph is inspectable
	// without any rendering code.
	Next func(ctx models.AssessmentContext) models.StepKey

	// Validate checks the step's local input. A nil Validate accepts anything.
	Validate func(in models.StepInput) error

	// Apply writes the step's answer(s) into the context and returns the
	// updated copy. The input has already passed Validate.
	Apply func(ctx models.AssessmentContext, in models.StepInput) models.AssessmentContext

	// ListField, when set, names the list field the "none of these" action
	// records as an explicit empty list.
	ListField models.FieldName

	// GateField, when set on a yes/no gate step, is also written false by
	// the "none of these" action.
	GateField models.FieldName
}

// ResolveNext returns the successor for the given context, falling back to
// the default successor when the step has no conditional edge.
func (d *StepDefinition) ResolveNext(ctx models.AssessmentContext) models.StepKey {
	if d.Next != nil {
		return d.Next(ctx)
	}
	return d.DefaultNext
}

// Terminal reports whether this step has no successor.
func (d *StepDefinition) Terminal() bool {
	return d.DefaultNext == "" && d.Next == nil
}

// Registry is the ordered, immutable catalog of wizard steps.
type Registry struct {
	order []models.StepKey
	steps map[models.StepKey]*StepDefinition
}

// NewRegistry builds a registry from an ordered list of definitions.
func NewRegistry(defs []*StepDefinition) *Registry {
	r := &Registry{steps: make(map[models.StepKey]*StepDefinition, len(defs))}
	for _, d := range defs {
		r.order = append(r.order, d.Key)
		r.steps[d.Key] = d
	}
	slog.Debug("Registry created", "steps", len(r.order))
	return r
}

// Lookup retrieves the definition for a step key.
func (r *Registry) Lookup(key models.StepKey) (*StepDefinition, error) {
	d, ok := r.steps[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrUnknownStep, key)
	}
	return d, nil
}

// First returns the entry step of the flow.
func (r *Registry) First() models.StepKey {
	return r.order[0]
}

// TotalSteps returns the registry size. This is a progress denominator, not
// an exact count: branched paths skip steps.
func (r *Registry) TotalSteps() int {
	return len(r.order)
}

// Keys returns the step keys in registry order.
func (r *Registry) Keys() []models.StepKey {
	keys := make([]models.StepKey, len(r.order))
	copy(keys, r.order)
	return keys
}
