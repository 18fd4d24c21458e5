// Package models defines wizard run state persisted between requests.
package models

import "time"

// WizardPosition is a pointer walking the static step graph. History holds
// the steps the user has already left, in visit order, so "previous step" is
// answerable even when conditional branches skipped steps along the way.
type WizardPosition struct {
	CurrentStep StepKey   `json:"current_step"`
	History     []StepKey `json:"history,omitempty"`
}

// CanGoBack reports whether a retreat is possible from this position.
func (p WizardPosition) CanGoBack() bool {
	return len(p.History) > 0
}

// WizardRun is one user's pass through the assessment wizard.
type WizardRun struct {
	RunID     string            `json:"run_id"`
	Position  WizardPosition    `json:"position"`
	Context   AssessmentContext `json:"context"`
	Submitted bool              `json:"submitted"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// StepInput carries the raw per-step input from the presentation layer.
// Each step reads only the fields it declares; the rest are ignored.
type StepInput struct {
	Text    string   `json:"text,omitempty"`    // free-text steps (name)
	Choice  string   `json:"choice,omitempty"`  // single-select steps
	Choices []string `json:"choices,omitempty"` // multi-select steps
	Number  *float64 `json:"number,omitempty"`  // numeric steps; nil means "use the step default"
	Flag    *bool    `json:"flag,omitempty"`    // yes/no steps
	Items   []string `json:"items,omitempty"`   // list-entry steps (full current list)
	Unit    string   `json:"unit,omitempty"`    // displayed unit for measurement steps
}
