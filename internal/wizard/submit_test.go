package wizard

import (
	"context"
	"errors"
	"testing"

	"github.com/vitalpath/intakeflow/internal/models"
)

// fakeBackend records calls and returns scripted outcomes.
type fakeBackend struct {
	profileOutcome    models.Outcome
	assessmentOutcome models.Outcome

	profileCalls    int
	assessmentCalls int
	lastToken       string
	lastUserID      string
}

func (f *fakeBackend) PatchProfile(ctx context.Context, token, userID string, update models.UserProfileUpdate) models.Outcome {
	f.profileCalls++
	f.lastToken = token
	f.lastUserID = userID
	return f.profileOutcome
}

func (f *fakeBackend) SaveAssessment(ctx context.Context, token, userID string, assessment models.HealthAssessment) models.Outcome {
	f.assessmentCalls++
	f.lastToken = token
	f.lastUserID = userID
	return f.assessmentOutcome
}

func recordWithProfile() models.AssembledRecord {
	return models.AssembledRecord{
		Profile:    models.UserProfileUpdate{FirstName: "Jane"},
		Assessment: models.HealthAssessment{},
	}
}

func TestSubmitRequiresSession(t *testing.T) {
	backend := &fakeBackend{}
	sub := NewSubmitter(backend)

	_, err := sub.Submit(context.Background(), recordWithProfile(), "", "user-1")
	if !errors.Is(err, models.ErrMissingSession) {
		t.Errorf("expected ErrMissingSession for empty token, got %v", err)
	}
	_, err = sub.Submit(context.Background(), recordWithProfile(), "tok", "")
	if !errors.Is(err, models.ErrMissingSession) {
		t.Errorf("expected ErrMissingSession for empty user ID, got %v", err)
	}
	if backend.profileCalls != 0 || backend.assessmentCalls != 0 {
		t.Errorf("no backend call may happen without a session")
	}
}

func TestSubmitSucceedsWhenBothCallsSucceed(t *testing.T) {
	backend := &fakeBackend{
		profileOutcome:    models.Outcome{OK: true},
		assessmentOutcome: models.Outcome{OK: true},
	}
	sub := NewSubmitter(backend)

	result, err := sub.Submit(context.Background(), recordWithProfile(), "tok", "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != models.SubmissionSuccess {
		t.Errorf("expected success, got %s", result.Status)
	}
	if backend.profileCalls != 1 || backend.assessmentCalls != 1 {
		t.Errorf("expected one call each, got profile=%d assessment=%d", backend.profileCalls, backend.assessmentCalls)
	}
	if backend.lastToken != "tok" || backend.lastUserID != "user-1" {
		t.Errorf("session credentials not forwarded: token=%q userID=%q", backend.lastToken, backend.lastUserID)
	}
}

func TestSubmitToleratesProfileFailure(t *testing.T) {
	backend := &fakeBackend{
		profileOutcome:    models.Outcome{OK: false, Message: "profile service unavailable"},
		assessmentOutcome: models.Outcome{OK: true},
	}
	sub := NewSubmitter(backend)

	result, err := sub.Submit(context.Background(), recordWithProfile(), "tok", "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != models.SubmissionSuccess {
		t.Errorf("profile failure must not fail the submission, got %s", result.Status)
	}
	if result.ProfileOutcome.OK {
		t.Errorf("profile outcome should report the failure")
	}
	if backend.assessmentCalls != 1 {
		t.Errorf("assessment write must still run after a profile failure")
	}
}

func TestSubmitFailsWhenAssessmentWriteFails(t *testing.T) {
	backend := &fakeBackend{
		profileOutcome:    models.Outcome{OK: true},
		assessmentOutcome: models.Outcome{OK: false, Message: "server error"},
	}
	sub := NewSubmitter(backend)

	result, err := sub.Submit(context.Background(), recordWithProfile(), "tok", "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != models.SubmissionFailed {
		t.Errorf("expected failed status, got %s", result.Status)
	}
	if result.AssessmentOutcome.Message != "server error" {
		t.Errorf("expected the backend message to surface, got %q", result.AssessmentOutcome.Message)
	}
}

func TestSubmitSkipsEmptyProfilePatch(t *testing.T) {
	backend := &fakeBackend{assessmentOutcome: models.Outcome{OK: true}}
	sub := NewSubmitter(backend)

	record := models.AssembledRecord{Assessment: models.HealthAssessment{}}
	result, err := sub.Submit(context.Background(), record, "tok", "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if backend.profileCalls != 0 {
		t.Errorf("empty profile patch should not call the backend")
	}
	if !result.ProfileOutcome.OK {
		t.Errorf("skipped profile patch should read as OK")
	}
}
