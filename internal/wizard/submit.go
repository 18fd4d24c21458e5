// Package wizard provides the submission stage for assembled records.
package wizard

import (
	"context"
	"log/slog"

	"github.com/vitalpath/intakeflow/internal/models"
)

// BackendClient defines the two external collaborators the terminal stage
// calls into. Both take the session credentials explicitly: the stage never
// reads them from ambient state.
type BackendClient interface {
	// PatchProfile applies a sparse profile patch for the user.
	PatchProfile(ctx context.Context, token, userID string, update models.UserProfileUpdate) models.Outcome

	// SaveAssessment writes the full health assessment record for the user.
	SaveAssessment(ctx context.Context, token, userID string, assessment models.HealthAssessment) models.Outcome
}

// Submitter performs the two-call submission of an assembled record.
type Submitter struct {
	client BackendClient
}

// NewSubmitter creates a Submitter backed by the given client.
func NewSubmitter(client BackendClient) *Submitter {
	return &Submitter{client: client}
}

// Submit runs the two backend calls in sequence. The profile patch is
// best-effort: its failure is recorded and logged but does not abort the
// assessment write, which alone decides the overall outcome. The calls are
// intentionally sequential, not parallel. Network failures never escape as
// errors; the result is always a terminal success/failed outcome. The only
// error is the missing-session precondition, checked before any call.
func (s *Submitter) Submit(ctx context.Context, record models.AssembledRecord, token, userID string) (models.SubmissionResult, error) {
	if token == "" || userID == "" {
		slog.Warn("Submitter.Submit: missing session credentials", "token_set", token != "", "user_id_set", userID != "")
		return models.SubmissionResult{Status: models.SubmissionFailed}, models.ErrMissingSession
	}

	var result models.SubmissionResult

	if record.Profile.IsEmpty() {
		slog.Debug("Submitter.Submit: no profile fields supplied, skipping profile patch", "userID", userID)
		result.ProfileOutcome = models.Outcome{OK: true, Message: "no profile fields to update"}
	} else {
		result.ProfileOutcome = s.client.PatchProfile(ctx, token, userID, record.Profile)
		if !result.ProfileOutcome.OK {
			// Tolerated: assessment data is primary. Logged for reconciliation.
			slog.Warn("Submitter.Submit: profile patch failed, continuing with assessment write",
				"userID", userID, "message", result.ProfileOutcome.Message)
		}
	}

	result.AssessmentOutcome = s.client.SaveAssessment(ctx, token, userID, record.Assessment)
	if result.AssessmentOutcome.OK {
		result.Status = models.SubmissionSuccess
		slog.Info("Submitter.Submit: submission succeeded", "userID", userID, "profile_ok", result.ProfileOutcome.OK)
	} else {
		result.Status = models.SubmissionFailed
		slog.Error("Submitter.Submit: assessment write failed", "userID", userID, "message", result.AssessmentOutcome.Message)
	}

	return result, nil
}
