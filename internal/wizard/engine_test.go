package wizard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vitalpath/intakeflow/internal/models"
	"github.com/vitalpath/intakeflow/internal/store"
)

func newTestEngine(backend BackendClient) *Engine {
	if backend == nil {
		backend = &fakeBackend{
			profileOutcome:    models.Outcome{OK: true},
			assessmentOutcome: models.Outcome{OK: true},
		}
	}
	return NewEngine(DefaultRegistry(), store.NewInMemoryStore(), NewSubmitter(backend))
}

// answer is a test helper that fails the test on any engine error.
func answer(t *testing.T, e *Engine, runID string, in models.StepInput) *models.WizardRun {
	t.Helper()
	run, err := e.Answer(context.Background(), runID, in)
	if err != nil {
		t.Fatalf("answer failed at step: %v", err)
	}
	return run
}

func TestEngineStartRun(t *testing.T) {
	e := newTestEngine(nil)

	run, err := e.StartRun(context.Background())
	if err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	if run.RunID == "" {
		t.Errorf("expected a generated run ID")
	}
	if run.Position.CurrentStep != models.StepName {
		t.Errorf("new run should start at %q, got %q", models.StepName, run.Position.CurrentStep)
	}
	if len(run.Context) != 0 {
		t.Errorf("new run should start with an empty context")
	}
	if run.Submitted {
		t.Errorf("new run should not be submitted")
	}

	loaded, err := e.GetRun(context.Background(), run.RunID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if loaded.Position.CurrentStep != models.StepName {
		t.Errorf("persisted run lost its position")
	}
}

func TestEngineGetRunUnknownID(t *testing.T) {
	e := newTestEngine(nil)

	_, err := e.GetRun(context.Background(), "missing")
	if !errors.Is(err, models.ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

func TestEngineAnswerAdvancesAndPersists(t *testing.T) {
	e := newTestEngine(nil)
	run, _ := e.StartRun(context.Background())

	updated := answer(t, e, run.RunID, models.StepInput{Text: "Jane Doe"})
	if updated.Position.CurrentStep != models.StepHealthGoals {
		t.Errorf("expected advance to %q, got %q", models.StepHealthGoals, updated.Position.CurrentStep)
	}
	if got, _ := updated.Context.GetString(models.FieldFirstName); got != "Jane" {
		t.Errorf("expected first name Jane, got %q", got)
	}

	loaded, _ := e.GetRun(context.Background(), run.RunID)
	if loaded.Position.CurrentStep != models.StepHealthGoals {
		t.Errorf("advance was not persisted")
	}
}

func TestEngineAnswerValidationLeavesRunUntouched(t *testing.T) {
	e := newTestEngine(nil)
	run, _ := e.StartRun(context.Background())

	_, err := e.Answer(context.Background(), run.RunID, models.StepInput{Text: "   "})
	if !models.IsValidationError(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	loaded, _ := e.GetRun(context.Background(), run.RunID)
	if loaded.Position.CurrentStep != models.StepName {
		t.Errorf("failed validation must not advance the run")
	}
	if len(loaded.Context) != 0 {
		t.Errorf("failed validation must not write fields")
	}
}

func TestEngineSkipLeavesFieldsAbsent(t *testing.T) {
	e := newTestEngine(nil)
	run, _ := e.StartRun(context.Background())

	updated, err := e.Skip(context.Background(), run.RunID)
	if err != nil {
		t.Fatalf("Skip failed: %v", err)
	}
	if updated.Position.CurrentStep != models.StepHealthGoals {
		t.Errorf("skip should advance to the default successor, got %q", updated.Position.CurrentStep)
	}
	if updated.Context.Has(models.FieldFirstName) {
		t.Errorf("skip must not write any fields")
	}
}

func TestEngineNoneRecordsExplicitEmptyList(t *testing.T) {
	e := newTestEngine(nil)
	run, _ := e.StartRun(context.Background())

	// Walk to the medications gate, skipping everything before it.
	for run.Position.CurrentStep != models.StepMedications {
		var err error
		run, err = e.Skip(context.Background(), run.RunID)
		if err != nil {
			t.Fatalf("skip failed at %s: %v", run.Position.CurrentStep, err)
		}
	}

	updated, err := e.None(context.Background(), run.RunID)
	if err != nil {
		t.Fatalf("None failed: %v", err)
	}
	if updated.Position.CurrentStep != models.StepAllergies {
		t.Errorf("none should bypass the list step, got %q", updated.Position.CurrentStep)
	}
	list, ok := updated.Context.GetList(models.FieldMedications)
	if !ok || len(list) != 0 {
		t.Errorf("none should record an explicit empty list, got (%v, %v)", list, ok)
	}
	if gate, ok := updated.Context.GetBool(models.FieldHasMedications); !ok || gate {
		t.Errorf("none should record the gate as false, got (%v, %v)", gate, ok)
	}
}

func TestEngineNoneRefusedWithoutListField(t *testing.T) {
	e := newTestEngine(nil)
	run, _ := e.StartRun(context.Background())

	_, err := e.None(context.Background(), run.RunID)
	if !errors.Is(err, models.ErrNoNoneOption) {
		t.Errorf("expected ErrNoNoneOption on the name step, got %v", err)
	}
}

func TestEngineBackRestoresPreviousStep(t *testing.T) {
	e := newTestEngine(nil)
	run, _ := e.StartRun(context.Background())

	answer(t, e, run.RunID, models.StepInput{Text: "Jane Doe"})
	updated, err := e.Back(context.Background(), run.RunID)
	if err != nil {
		t.Fatalf("Back failed: %v", err)
	}
	if updated.Position.CurrentStep != models.StepName {
		t.Errorf("expected to return to %q, got %q", models.StepName, updated.Position.CurrentStep)
	}
	// The earlier answer stays in the context until re-answered.
	if got, _ := updated.Context.GetString(models.FieldFirstName); got != "Jane" {
		t.Errorf("context should retain the earlier answer, got %q", got)
	}

	// Re-answering overwrites.
	updated = answer(t, e, run.RunID, models.StepInput{Text: "Janet Doe"})
	if got, _ := updated.Context.GetString(models.FieldFirstName); got != "Janet" {
		t.Errorf("re-answer should overwrite, got %q", got)
	}
}

func TestEngineBackOnFirstStep(t *testing.T) {
	e := newTestEngine(nil)
	run, _ := e.StartRun(context.Background())

	_, err := e.Back(context.Background(), run.RunID)
	if !errors.Is(err, models.ErrNoHistory) {
		t.Errorf("expected ErrNoHistory, got %v", err)
	}
}

// completeRun answers every step through the full flow and leaves the run at
// the review step.
func completeRun(t *testing.T, e *Engine) *models.WizardRun {
	t.Helper()

	run, err := e.StartRun(context.Background())
	if err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	id := run.RunID

	year := 1990.0
	sleep := 8.0
	weight := 63.0
	no := false
	yes := true

	answer(t, e, id, models.StepInput{Text: "Jane Doe"})
	answer(t, e, id, models.StepInput{Choices: []string{"improve_health"}})
	answer(t, e, id, models.StepInput{Number: &year})
	answer(t, e, id, models.StepInput{Choice: "Female"})
	answer(t, e, id, models.StepInput{Number: floatPtr(165)})
	answer(t, e, id, models.StepInput{Number: &weight, Unit: "kg"})
	answer(t, e, id, models.StepInput{Choices: []string{"A", "+"}})
	answer(t, e, id, models.StepInput{Choice: "moderate"})
	answer(t, e, id, models.StepInput{Number: &sleep})
	answer(t, e, id, models.StepInput{Flag: &no})                      // smoking
	answer(t, e, id, models.StepInput{Choice: "occasionally"})         // alcohol
	answer(t, e, id, models.StepInput{Choice: "vegetarian"})           // diet
	answer(t, e, id, models.StepInput{Choices: []string{"reduce_sugar"}})
	answer(t, e, id, models.StepInput{Choice: "good"})                 // mood
	answer(t, e, id, models.StepInput{Flag: &no})                      // medications gate
	answer(t, e, id, models.StepInput{Flag: &yes})                     // allergies gate
	answer(t, e, id, models.StepInput{Items: []string{"Peanuts", "Shellfish"}})
	answer(t, e, id, models.StepInput{Flag: &no})                      // conditions gate
	answer(t, e, id, models.StepInput{Items: nil})                     // notes, optional
	answer(t, e, id, models.StepInput{Flag: &yes})                     // consent

	run, err = e.GetRun(context.Background(), id)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if run.Position.CurrentStep != models.StepReview {
		t.Fatalf("expected run at %q, got %q", models.StepReview, run.Position.CurrentStep)
	}
	return run
}

// Answering only the first four steps and skipping the rest must assemble a
// sparse profile patch and an assessment of explicit empty lists.
func TestEnginePartialRunAssembly(t *testing.T) {
	e := newTestEngine(nil)
	run, _ := e.StartRun(context.Background())
	id := run.RunID

	year := 1990.0
	answer(t, e, id, models.StepInput{Text: "Jane Doe"})
	answer(t, e, id, models.StepInput{Choices: []string{"improve_health"}})
	answer(t, e, id, models.StepInput{Number: &year})
	answer(t, e, id, models.StepInput{Choice: "Female"})

	for {
		run, err := e.GetRun(context.Background(), id)
		if err != nil {
			t.Fatalf("GetRun failed: %v", err)
		}
		if run.Position.CurrentStep == models.StepReview {
			break
		}
		if _, err := e.Skip(context.Background(), id); err != nil {
			t.Fatalf("skip failed at %s: %v", run.Position.CurrentStep, err)
		}
	}

	run, _ = e.GetRun(context.Background(), id)
	record := Assemble(run.Context, time.Now())

	p := record.Profile
	if p.FirstName != "Jane" || p.LastName != "Doe" || p.DateOfBirth != "1990-01-01" || p.Gender != "Female" {
		t.Errorf("unexpected profile patch: %+v", p)
	}
	if p.HeightCm != 0 || p.WeightKg != 0 || p.BloodType != "" {
		t.Errorf("skipped fields must be absent from the patch: %+v", p)
	}

	a := record.Assessment
	if len(a.HealthGoals) != 1 || a.HealthGoals[0] != "improve_health" {
		t.Errorf("unexpected health goals %v", a.HealthGoals)
	}
	if a.Lifestyle != (models.Lifestyle{}) {
		t.Errorf("skipped lifestyle must stay empty, got %+v", a.Lifestyle)
	}
	if len(a.Medications) != 0 || len(a.Allergies) != 0 || len(a.Conditions) != 0 {
		t.Errorf("skipped list steps must assemble as empty lists")
	}
}

func TestEngineFullFlowAndSubmit(t *testing.T) {
	backend := &fakeBackend{
		profileOutcome:    models.Outcome{OK: true},
		assessmentOutcome: models.Outcome{OK: true},
	}
	e := newTestEngine(backend)
	run := completeRun(t, e)

	result, err := e.Submit(context.Background(), run.RunID, "tok", "user-1")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if result.Status != models.SubmissionSuccess {
		t.Errorf("expected success, got %s", result.Status)
	}
	if backend.profileCalls != 1 || backend.assessmentCalls != 1 {
		t.Errorf("expected one call each, got profile=%d assessment=%d", backend.profileCalls, backend.assessmentCalls)
	}
}

func TestEngineSubmitIsIdempotent(t *testing.T) {
	backend := &fakeBackend{
		profileOutcome:    models.Outcome{OK: true},
		assessmentOutcome: models.Outcome{OK: true},
	}
	e := newTestEngine(backend)
	run := completeRun(t, e)

	if _, err := e.Submit(context.Background(), run.RunID, "tok", "user-1"); err != nil {
		t.Fatalf("first Submit failed: %v", err)
	}
	_, err := e.Submit(context.Background(), run.RunID, "tok", "user-1")
	if !errors.Is(err, models.ErrRunSubmitted) {
		t.Errorf("second Submit should fail with ErrRunSubmitted, got %v", err)
	}
	if backend.assessmentCalls != 1 {
		t.Errorf("duplicate submit must not reach the backend, got %d calls", backend.assessmentCalls)
	}
}

func TestEngineSubmitRequiresReviewStep(t *testing.T) {
	e := newTestEngine(nil)
	run, _ := e.StartRun(context.Background())

	_, err := e.Submit(context.Background(), run.RunID, "tok", "user-1")
	if !errors.Is(err, models.ErrNotTerminal) {
		t.Errorf("expected ErrNotTerminal before the review step, got %v", err)
	}
}

func TestEngineSubmitRequiresSession(t *testing.T) {
	e := newTestEngine(nil)
	run := completeRun(t, e)

	_, err := e.Submit(context.Background(), run.RunID, "", "")
	if !errors.Is(err, models.ErrMissingSession) {
		t.Fatalf("expected ErrMissingSession, got %v", err)
	}

	// The precondition failure must not consume the run.
	loaded, _ := e.GetRun(context.Background(), run.RunID)
	if loaded.Submitted {
		t.Errorf("missing-session failure must not mark the run submitted")
	}
}

func TestEngineSubmittedRunRefusesMutation(t *testing.T) {
	e := newTestEngine(nil)
	run := completeRun(t, e)

	if _, err := e.Submit(context.Background(), run.RunID, "tok", "user-1"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if _, err := e.Back(context.Background(), run.RunID); !errors.Is(err, models.ErrRunSubmitted) {
		t.Errorf("Back after submit should fail with ErrRunSubmitted, got %v", err)
	}
	if _, err := e.Answer(context.Background(), run.RunID, models.StepInput{Text: "x"}); !errors.Is(err, models.ErrRunSubmitted) {
		t.Errorf("Answer after submit should fail with ErrRunSubmitted, got %v", err)
	}
	if _, err := e.Skip(context.Background(), run.RunID); !errors.Is(err, models.ErrRunSubmitted) {
		t.Errorf("Skip after submit should fail with ErrRunSubmitted, got %v", err)
	}
}

func TestEngineSubmittedFlagSurvivesBackendFailure(t *testing.T) {
	backend := &fakeBackend{
		profileOutcome:    models.Outcome{OK: true},
		assessmentOutcome: models.Outcome{OK: false, Message: "server error"},
	}
	e := newTestEngine(backend)
	run := completeRun(t, e)

	result, err := e.Submit(context.Background(), run.RunID, "tok", "user-1")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if result.Status != models.SubmissionFailed {
		t.Errorf("expected failed status, got %s", result.Status)
	}

	loaded, _ := e.GetRun(context.Background(), run.RunID)
	if !loaded.Submitted {
		t.Errorf("submitted flag must stay set after a failed submission")
	}
}

func TestEngineProgressGrowsWithAdvancement(t *testing.T) {
	e := newTestEngine(nil)
	run, _ := e.StartRun(context.Background())

	if got := e.Progress(run); got != 0 {
		t.Errorf("fresh run should report zero progress, got %v", got)
	}
	run = answer(t, e, run.RunID, models.StepInput{Text: "Jane Doe"})
	if got := e.Progress(run); got <= 0 {
		t.Errorf("progress should grow after an answer, got %v", got)
	}
}

func TestEngineDerivedValues(t *testing.T) {
	e := newTestEngine(nil)
	run := completeRun(t, e)

	d := e.Derived(run)
	if d.Age == nil {
		t.Fatalf("expected derived age")
	}
	if d.BMI == nil || *d.BMI != BMI(165, 63) {
		t.Errorf("expected BMI %v, got %v", BMI(165, 63), d.BMI)
	}
	if d.HealthScore == nil {
		t.Errorf("expected derived health score")
	}
}
