// Package models defines the assembled records submitted to the backend.
package models

import "time"

// SeverityModerate is the default severity recorded for allergy entries
// collected by the wizard; the wizard does not ask for per-allergy severity.
const SeverityModerate = "Moderate"

// UserProfileUpdate is a sparse patch of user profile fields. Only fields the
// user actually supplied are set; zero values are omitted from the wire format.
type UserProfileUpdate struct {
	FirstName   string  `json:"first_name,omitempty"`
	LastName    string  `json:"last_name,omitempty"`
	DateOfBirth string  `json:"date_of_birth,omitempty"` // YYYY-01-01, derived from birth year
	Gender      string  `json:"gender,omitempty"`
	HeightCm    float64 `json:"height_cm,omitempty"`
	WeightKg    float64 `json:"weight_kg,omitempty"`
	BloodType   string  `json:"blood_type,omitempty"` // group plus Rh, e.g. "A+"
}

// IsEmpty reports whether the patch carries no fields at all.
func (u UserProfileUpdate) IsEmpty() bool {
	return u == UserProfileUpdate{}
}

// Lifestyle groups the lifestyle answers inside a health assessment.
type Lifestyle struct {
	ActivityLevel string  `json:"activity_level,omitempty"`
	SleepHours    float64 `json:"sleep_hours,omitempty"`
	Smoking       *bool   `json:"smoking,omitempty"`
	Alcohol       string  `json:"alcohol,omitempty"`
	Diet          string  `json:"diet,omitempty"`
}

// MedicationEntry is one medication reported by the user.
type MedicationEntry struct {
	Name string `json:"name"`
}

// AllergyEntry is one allergy reported by the user.
type AllergyEntry struct {
	Name     string `json:"name"`
	Severity string `json:"severity"`
}

// ConditionEntry is one pre-existing condition reported by the user.
type ConditionEntry struct {
	Name string `json:"name"`
}

// MoodEntry is one mood-history data point recorded during the assessment.
type MoodEntry struct {
	Mood       string    `json:"mood"`
	RecordedAt time.Time `json:"recorded_at"`
}

// AnalysisPreferences holds the user's analysis consent choices.
type AnalysisPreferences struct {
	AnalysisConsent bool `json:"analysis_consent"`
}

// HealthAssessment is the full assessment record written to the backend.
// List fields are always present (possibly empty); an empty list means the
// user explicitly reported none, or never reached the step.
type HealthAssessment struct {
	HealthGoals    []string            `json:"health_goals"`
	Lifestyle      Lifestyle           `json:"lifestyle"`
	MoodHistory    []MoodEntry         `json:"mood_history,omitempty"`
	NutritionGoals []string            `json:"nutrition_goals"`
	Medications    []MedicationEntry   `json:"medications"`
	Allergies      []AllergyEntry      `json:"allergies"`
	Conditions     []ConditionEntry    `json:"conditions"`
	Notes          []string            `json:"notes"`
	Preferences    AnalysisPreferences `json:"preferences"`
}

// AssembledRecord is the terminal-stage output: built once, submitted once.
type AssembledRecord struct {
	Profile    UserProfileUpdate `json:"profile"`
	Assessment HealthAssessment  `json:"assessment"`
}

// Outcome is the result of one backend call.
type Outcome struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

// SubmissionStatus is the terminal state of a submission attempt.
type SubmissionStatus string

const (
	// SubmissionSuccess means the assessment write succeeded. The profile
	// patch may still have failed; the assessment write alone decides.
	SubmissionSuccess SubmissionStatus = "success"
	// SubmissionFailed means the assessment write failed.
	SubmissionFailed SubmissionStatus = "failed"
)

// SubmissionResult reports both backend call outcomes explicitly rather than
// swallowing the profile-patch result in a log line.
type SubmissionResult struct {
	Status            SubmissionStatus `json:"status"`
	ProfileOutcome    Outcome          `json:"profile_outcome"`
	AssessmentOutcome Outcome          `json:"assessment_outcome"`
}
