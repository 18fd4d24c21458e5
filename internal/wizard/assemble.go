// Package wizard provides the terminal assembly stage: projecting the fully
// accumulated context into the backend's record shapes.
package wizard

import (
	"fmt"
	"time"

	"github.com/vitalpath/intakeflow/internal/models"
)

// Assemble projects the accumulated context into an AssembledRecord. Total:
// it produces a valid (possibly mostly-empty) record however many fields are
// absent. Absent fields are omitted from the profile patch and render as
// empty lists in the assessment.
func Assemble(ctx models.AssessmentContext, now time.Time) models.AssembledRecord {
	return models.AssembledRecord{
		Profile:    assembleProfile(ctx),
		Assessment: assembleAssessment(ctx, now),
	}
}

func assembleProfile(ctx models.AssessmentContext) models.UserProfileUpdate {
	var p models.UserProfileUpdate

	if first, ok := ctx.GetString(models.FieldFirstName); ok {
		p.FirstName = first
	}
	if last, ok := ctx.GetString(models.FieldLastName); ok {
		p.LastName = last
	}
	if year, ok := ctx.GetNumber(models.FieldBirthYear); ok {
		p.DateOfBirth = fmt.Sprintf("%04d-01-01", int(year))
	}
	if gender, ok := ctx.GetString(models.FieldGender); ok {
		p.Gender = gender
	}
	if height, ok := ctx.GetNumber(models.FieldHeightCm); ok {
		p.HeightCm = height
	}
	if weight, ok := ctx.GetNumber(models.FieldWeightKg); ok {
		p.WeightKg = weight
	}
	if group, ok := ctx.GetString(models.FieldBloodType); ok {
		p.BloodType = group
		if rh, ok := ctx.GetString(models.FieldRhFactor); ok {
			p.BloodType = group + rh
		}
	}

	return p
}

func assembleAssessment(ctx models.AssessmentContext, now time.Time) models.HealthAssessment {
	a := models.HealthAssessment{
		HealthGoals:    listOrEmpty(ctx, models.FieldHealthGoals),
		NutritionGoals: listOrEmpty(ctx, models.FieldNutritionGoals),
		Notes:          listOrEmpty(ctx, models.FieldNotes),
		Medications:    []models.MedicationEntry{},
		Allergies:      []models.AllergyEntry{},
		Conditions:     []models.ConditionEntry{},
	}

	if activity, ok := ctx.GetString(models.FieldActivityLevel); ok {
		a.Lifestyle.ActivityLevel = activity
	}
	if sleep, ok := ctx.GetNumber(models.FieldSleepHours); ok {
		a.Lifestyle.SleepHours = sleep
	}
	if smoking, ok := ctx.GetBool(models.FieldSmoking); ok {
		value := smoking
		a.Lifestyle.Smoking = &value
	}
	if alcohol, ok := ctx.GetString(models.FieldAlcohol); ok {
		a.Lifestyle.Alcohol = alcohol
	}
	if diet, ok := ctx.GetString(models.FieldDiet); ok {
		a.Lifestyle.Diet = diet
	}

	if mood, ok := ctx.GetString(models.FieldMood); ok {
		a.MoodHistory = []models.MoodEntry{{Mood: mood, RecordedAt: now.UTC()}}
	}

	if meds, ok := ctx.GetList(models.FieldMedications); ok {
		for _, name := range meds {
			a.Medications = append(a.Medications, models.MedicationEntry{Name: name})
		}
	}
	if allergies, ok := ctx.GetList(models.FieldAllergies); ok {
		for _, name := range allergies {
			a.Allergies = append(a.Allergies, models.AllergyEntry{Name: name, Severity: models.SeverityModerate})
		}
	}
	if conditions, ok := ctx.GetList(models.FieldConditions); ok {
		for _, name := range conditions {
			a.Conditions = append(a.Conditions, models.ConditionEntry{Name: name})
		}
	}

	if consent, ok := ctx.GetBool(models.FieldConsent); ok {
		a.Preferences.AnalysisConsent = consent
	}

	return a
}

// listOrEmpty returns the stored list, or an empty (non-nil) list when the
// field is absent so the wire format always carries the list key.
func listOrEmpty(ctx models.AssessmentContext, name models.FieldName) []string {
	if list, ok := ctx.GetList(name); ok {
		return list
	}
	return []string{}
}
