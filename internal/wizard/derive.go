// Package wizard computes display values derived from collected fields.
//
// Derived values are pure functions of the context and are never persisted
// as independent fields: any stage that needs them recomputes them.
package wizard

import (
	"math"
	"time"

	"github.com/vitalpath/intakeflow/internal/models"
)

// DerivedValues carries the recomputed display values for fields that are
// present. Absent inputs leave the corresponding value nil.
type DerivedValues struct {
	Age         *int     `json:"age,omitempty"`
	BMI         *float64 `json:"bmi,omitempty"`
	HealthScore *int     `json:"health_score,omitempty"`
}

// AgeFromBirthYear computes the user's age from the birth year, treating the
// date of birth as January 1st of that year.
func AgeFromBirthYear(birthYear int, now time.Time) int {
	age := now.Year() - birthYear
	if age < 0 {
		return 0
	}
	return age
}

// BMI computes body mass index (kg/m²) rounded to one decimal place.
func BMI(heightCm, weightKg float64) float64 {
	if heightCm <= 0 {
		return 0
	}
	meters := heightCm / 100
	return math.Round(weightKg/(meters*meters)*10) / 10
}

// HealthScore computes a 0–100 wellbeing score from the lifestyle answers
// present in the context: BMI band, activity level, sleep, and smoking.
func HealthScore(ctx models.AssessmentContext) int {
	score := 70

	if height, okH := ctx.GetNumber(models.FieldHeightCm); okH {
		if weight, okW := ctx.GetNumber(models.FieldWeightKg); okW {
			bmi := BMI(height, weight)
			switch {
			case bmi >= 18.5 && bmi < 25:
				score += 10
			case bmi >= 25 && bmi < 30:
				// neutral band
			default:
				score -= 10
			}
		}
	}

	if activity, ok := ctx.GetString(models.FieldActivityLevel); ok {
		switch activity {
		case "moderate", "active", "very_active":
			score += 10
		case "sedentary":
			score -= 5
		}
	}

	if sleep, ok := ctx.GetNumber(models.FieldSleepHours); ok {
		if sleep >= 7 && sleep <= 9 {
			score += 5
		}
	}

	if smoking, ok := ctx.GetBool(models.FieldSmoking); ok {
		if smoking {
			score -= 15
		} else {
			score += 5
		}
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// Derive recomputes all derived display values available from the context.
func Derive(ctx models.AssessmentContext, now time.Time) DerivedValues {
	var d DerivedValues

	if year, ok := ctx.GetNumber(models.FieldBirthYear); ok {
		age := AgeFromBirthYear(int(year), now)
		d.Age = &age
	}

	if height, okH := ctx.GetNumber(models.FieldHeightCm); okH {
		if weight, okW := ctx.GetNumber(models.FieldWeightKg); okW {
			bmi := BMI(height, weight)
			d.BMI = &bmi
		}
	}

	// The score is meaningful once any lifestyle input exists.
	if ctx.Has(models.FieldActivityLevel) || ctx.Has(models.FieldSleepHours) ||
		ctx.Has(models.FieldSmoking) || ctx.Has(models.FieldHeightCm) {
		score := HealthScore(ctx)
		d.HealthScore = &score
	}

	return d
}
