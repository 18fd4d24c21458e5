// Package wizard provides position tracking through the step graph.
package wizard

import (
	"fmt"

	"github.com/vitalpath/intakeflow/internal/models"
)

// History is kept explicitly rather than relying on step order because
// conditional branches skip steps: a pure "previous index" would be wrong
// whenever a branch was taken.

// StartPosition returns the position at the given entry step with no history.
func StartPosition(first models.StepKey) models.WizardPosition {
	return models.WizardPosition{CurrentStep: first}
}

// Advance returns a new position at next, pushing the current step onto the
// history trail. The input position is unchanged.
func Advance(pos models.WizardPosition, next models.StepKey) models.WizardPosition {
	history := make([]models.StepKey, len(pos.History), len(pos.History)+1)
	copy(history, pos.History)
	history = append(history, pos.CurrentStep)
	return models.WizardPosition{CurrentStep: next, History: history}
}

// Retreat returns a new position at the most recently visited step, popping
// it from the history trail. Fails on the first step.
func Retreat(pos models.WizardPosition) (models.WizardPosition, error) {
	if len(pos.History) == 0 {
		return pos, fmt.Errorf("%w: already at %s", models.ErrNoHistory, pos.CurrentStep)
	}
	history := make([]models.StepKey, len(pos.History)-1)
	copy(history, pos.History[:len(pos.History)-1])
	return models.WizardPosition{
		CurrentStep: pos.History[len(pos.History)-1],
		History:     history,
	}, nil
}

// Progress returns the completed fraction in [0,1]. Approximate: totalSteps
// is a fixed denominator, and branched paths skip steps.
func Progress(pos models.WizardPosition, totalSteps int) float64 {
	if totalSteps <= 0 {
		return 0
	}
	frac := float64(len(pos.History)) / float64(totalSteps)
	if frac > 1 {
		return 1
	}
	return frac
}
