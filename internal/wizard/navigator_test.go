package wizard

import (
	"errors"
	"testing"

	"github.com/vitalpath/intakeflow/internal/models"
)

func TestRetreatOnFreshFlowFails(t *testing.T) {
	pos := StartPosition(models.StepName)

	_, err := Retreat(pos)
	if err == nil {
		t.Fatalf("expected error retreating from the first step")
	}
	if !errors.Is(err, models.ErrNoHistory) {
		t.Errorf("expected ErrNoHistory, got %v", err)
	}
}

func TestAdvanceThenRetreatRestoresPriorStep(t *testing.T) {
	pos := StartPosition(models.StepName)
	pos = Advance(pos, models.StepHealthGoals)

	if pos.CurrentStep != models.StepHealthGoals {
		t.Fatalf("expected current step %q, got %q", models.StepHealthGoals, pos.CurrentStep)
	}
	if !pos.CanGoBack() {
		t.Errorf("expected CanGoBack after one advance")
	}

	back, err := Retreat(pos)
	if err != nil {
		t.Fatalf("retreat error: %v", err)
	}
	if back.CurrentStep != models.StepName {
		t.Errorf("expected restored step %q, got %q", models.StepName, back.CurrentStep)
	}
	if back.CanGoBack() {
		t.Errorf("expected empty history after retreat to first step")
	}
}

func TestAdvanceDoesNotMutateInput(t *testing.T) {
	pos := StartPosition(models.StepName)
	next := Advance(pos, models.StepHealthGoals)
	Advance(next, models.StepBirthYear)

	if len(next.History) != 1 || next.History[0] != models.StepName {
		t.Errorf("advance mutated input position history: %v", next.History)
	}
}

func TestProgress(t *testing.T) {
	pos := StartPosition(models.StepName)
	if got := Progress(pos, 20); got != 0 {
		t.Errorf("fresh flow progress: expected 0, got %v", got)
	}

	pos = Advance(pos, models.StepHealthGoals)
	pos = Advance(pos, models.StepBirthYear)
	if got := Progress(pos, 20); got != 0.1 {
		t.Errorf("expected progress 0.1, got %v", got)
	}

	// Progress is clamped even when history exceeds the denominator.
	for i := 0; i < 30; i++ {
		pos = Advance(pos, models.StepNotes)
	}
	if got := Progress(pos, 20); got != 1 {
		t.Errorf("expected clamped progress 1, got %v", got)
	}

	if got := Progress(pos, 0); got != 0 {
		t.Errorf("zero denominator: expected 0, got %v", got)
	}
}
