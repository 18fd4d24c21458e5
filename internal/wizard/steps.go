// Package wizard defines the step catalog for the health assessment flow.
package wizard

import (
	"strings"
	"time"

	"github.com/vitalpath/intakeflow/internal/models"
)

// Selectable option constants for choice steps.
var (
	HealthGoalOptions = []string{
		"improve_health", "lose_weight", "gain_muscle", "reduce_stress",
		"sleep_better", "eat_healthier", "manage_condition",
	}
	GenderOptions        = []string{"Female", "Male", "Non-binary", "Prefer not to say"}
	BloodGroupOptions    = []string{"A", "B", "AB", "O"}
	RhFactorOptions      = []string{"+", "-"}
	ActivityLevelOptions = []string{"sedentary", "light", "moderate", "active", "very_active"}
	AlcoholOptions       = []string{"never", "occasionally", "weekly", "daily"}
	DietOptions          = []string{"omnivore", "vegetarian", "vegan", "pescatarian", "keto", "other"}
	NutritionGoalOptions = []string{
		"eat_more_protein", "reduce_sugar", "more_vegetables", "smaller_portions",
		"drink_more_water", "fewer_processed_foods",
	}
	MoodOptions = []string{"great", "good", "okay", "low", "stressed"}
)

// Step defaults for pre-populated numeric steps. A pre-populated value
// satisfies the step's requirement, so Continue is immediately available.
const (
	DefaultHeightCm = 170.0
	DefaultWeightLb = 140.0

	// Accepted canonical ranges.
	MinHeightCm = 50.0
	MaxHeightCm = 260.0
	MinWeightKg = 20.0
	MaxWeightKg = 350.0
)

// DefaultRegistry builds the registry for the health assessment flow.
func DefaultRegistry() *Registry {
	return NewRegistry(assessmentSteps())
}

func assessmentSteps() []*StepDefinition {
	return []*StepDefinition{
		{
			Key:         models.StepName,
			Fields:      []models.FieldName{models.FieldFirstName, models.FieldLastName},
			DefaultNext: models.StepHealthGoals,
			Validate: func(in models.StepInput) error {
				name := strings.TrimSpace(in.Text)
				if name == "" {
					return models.NewValidationError("name is required")
				}
				if len(name) > models.MaxNameLength {
					return models.NewValidationError("name exceeds %d characters", models.MaxNameLength)
				}
				return nil
			},
			Apply: func(ctx models.AssessmentContext, in models.StepInput) models.AssessmentContext {
				first, last := splitFullName(in.Text)
				partial := map[models.FieldName]models.FieldValue{
					models.FieldFirstName: models.StringValue(first),
				}
				if last != "" {
					partial[models.FieldLastName] = models.StringValue(last)
				}
				return ctx.Merge(partial)
			},
		},
		{
			Key:         models.StepHealthGoals,
			Fields:      []models.FieldName{models.FieldHealthGoals},
			DefaultNext: models.StepBirthYear,
			Validate:    requireChoices("health goal", HealthGoalOptions),
			Apply:       applyChoicesTo(models.FieldHealthGoals),
		},
		{
			Key:         models.StepBirthYear,
			Fields:      []models.FieldName{models.FieldBirthYear},
			DefaultNext: models.StepGender,
			Validate: func(in models.StepInput) error {
				if in.Number == nil {
					return models.NewValidationError("birth year is required")
				}
				year := int(*in.Number)
				if year < models.MinBirthYear || year > time.Now().Year() {
					return models.NewValidationError("birth year must be between %d and %d", models.MinBirthYear, time.Now().Year())
				}
				return nil
			},
			Apply: applyNumberTo(models.FieldBirthYear, 0),
		},
		{
			Key:         models.StepGender,
			Fields:      []models.FieldName{models.FieldGender},
			DefaultNext: models.StepHeight,
			Optional:    true,
			Validate:    requireChoice("gender", GenderOptions),
			Apply:       applyChoiceTo(models.FieldGender),
		},
		{
			Key:         models.StepHeight,
			Fields:      []models.FieldName{models.FieldHeightCm},
			DefaultNext: models.StepWeight,
			Validate:    validateMeasurement(models.UnitCentimeters, models.UnitInches, MinHeightCm, MaxHeightCm),
			Apply: func(ctx models.AssessmentContext, in models.StepInput) models.AssessmentContext {
				cm := canonicalHeight(in)
				return ctx.WithField(models.FieldHeightCm, models.NumberValue(cm))
			},
		},
		{
			Key:         models.StepWeight,
			Fields:      []models.FieldName{models.FieldWeightKg},
			DefaultNext: models.StepBloodType,
			Validate:    validateMeasurement(models.UnitKilograms, models.UnitPounds, MinWeightKg, MaxWeightKg),
			Apply: func(ctx models.AssessmentContext, in models.StepInput) models.AssessmentContext {
				kg := canonicalWeight(in)
				return ctx.WithField(models.FieldWeightKg, models.NumberValue(kg))
			},
		},
		{
			// Blood group and Rh factor are contributed together so a partial
			// answer never lands in the context.
			Key:         models.StepBloodType,
			Fields:      []models.FieldName{models.FieldBloodType, models.FieldRhFactor},
			DefaultNext: models.StepActivityLevel,
			Optional:    true,
			Validate: func(in models.StepInput) error {
				if len(in.Choices) != 2 {
					return models.NewValidationError("blood group and Rh factor are both required")
				}
				if !contains(BloodGroupOptions, in.Choices[0]) {
					return models.NewValidationError("unknown blood group %q", in.Choices[0])
				}
				if !contains(RhFactorOptions, in.Choices[1]) {
					return models.NewValidationError("unknown Rh factor %q", in.Choices[1])
				}
				return nil
			},
			Apply: func(ctx models.AssessmentContext, in models.StepInput) models.AssessmentContext {
				return ctx.Merge(map[models.FieldName]models.FieldValue{
					models.FieldBloodType: models.StringValue(in.Choices[0]),
					models.FieldRhFactor:  models.StringValue(in.Choices[1]),
				})
			},
		},
		{
			Key:         models.StepActivityLevel,
			Fields:      []models.FieldName{models.FieldActivityLevel},
			DefaultNext: models.StepSleepHours,
			Validate:    requireChoice("activity level", ActivityLevelOptions),
			Apply:       applyChoiceTo(models.FieldActivityLevel),
		},
		{
			Key:         models.StepSleepHours,
			Fields:      []models.FieldName{models.FieldSleepHours},
			DefaultNext: models.StepSmoking,
			Validate: func(in models.StepInput) error {
				if in.Number == nil {
					// Pre-populated default satisfies the requirement.
					return nil
				}
				if *in.Number < 0 || *in.Number > models.MaxSleepHours {
					return models.NewValidationError("sleep hours must be between 0 and %d", models.MaxSleepHours)
				}
				return nil
			},
			Apply: applyNumberTo(models.FieldSleepHours, 8),
		},
		{
			Key:         models.StepSmoking,
			Fields:      []models.FieldName{models.FieldSmoking},
			DefaultNext: models.StepAlcohol,
			Validate:    requireFlag("smoking status"),
			Apply:       applyFlagTo(models.FieldSmoking),
		},
		{
			Key:         models.StepAlcohol,
			Fields:      []models.FieldName{models.FieldAlcohol},
			DefaultNext: models.StepDiet,
			Validate:    requireChoice("alcohol frequency", AlcoholOptions),
			Apply:       applyChoiceTo(models.FieldAlcohol),
		},
		{
			Key:         models.StepDiet,
			Fields:      []models.FieldName{models.FieldDiet},
			DefaultNext: models.StepNutritionGoals,
			Validate:    requireChoice("diet", DietOptions),
			Apply:       applyChoiceTo(models.FieldDiet),
		},
		{
			Key:         models.StepNutritionGoals,
			Fields:      []models.FieldName{models.FieldNutritionGoals},
			DefaultNext: models.StepMood,
			ListField:   models.FieldNutritionGoals,
			Validate:    requireChoices("nutrition goal", NutritionGoalOptions),
			Apply:       applyChoicesTo(models.FieldNutritionGoals),
		},
		{
			Key:         models.StepMood,
			Fields:      []models.FieldName{models.FieldMood},
			DefaultNext: models.StepMedications,
			Validate:    requireChoice("mood", MoodOptions),
			Apply:       applyChoiceTo(models.FieldMood),
		},
		{
			Key:         models.StepMedications,
			Fields:      []models.FieldName{models.FieldHasMedications},
			DefaultNext: models.StepAllergies,
			ListField:   models.FieldMedications,
			GateField:   models.FieldHasMedications,
			Next:        gateNext(models.FieldHasMedications, models.StepMedicationList, models.StepAllergies),
			Validate:    requireFlag("medications answer"),
			Apply:       applyGate(models.FieldHasMedications, models.FieldMedications),
		},
		{
			Key:         models.StepMedicationList,
			Fields:      []models.FieldName{models.FieldMedications},
			DefaultNext: models.StepAllergies,
			Validate:    requireItems("medication"),
			Apply:       applyItemsTo(models.FieldMedications),
		},
		{
			Key:         models.StepAllergies,
			Fields:      []models.FieldName{models.FieldHasAllergies},
			DefaultNext: models.StepConditions,
			ListField:   models.FieldAllergies,
			GateField:   models.FieldHasAllergies,
			Next:        gateNext(models.FieldHasAllergies, models.StepAllergyList, models.StepConditions),
			Validate:    requireFlag("allergies answer"),
			Apply:       applyGate(models.FieldHasAllergies, models.FieldAllergies),
		},
		{
			Key:         models.StepAllergyList,
			Fields:      []models.FieldName{models.FieldAllergies},
			DefaultNext: models.StepConditions,
			Validate:    requireItems("allergy"),
			Apply:       applyItemsTo(models.FieldAllergies),
		},
		{
			Key:         models.StepConditions,
			Fields:      []models.FieldName{models.FieldHasConditions},
			DefaultNext: models.StepNotes,
			ListField:   models.FieldConditions,
			GateField:   models.FieldHasConditions,
			Next:        gateNext(models.FieldHasConditions, models.StepConditionList, models.StepNotes),
			Validate:    requireFlag("conditions answer"),
			Apply:       applyGate(models.FieldHasConditions, models.FieldConditions),
		},
		{
			Key:         models.StepConditionList,
			Fields:      []models.FieldName{models.FieldConditions},
			DefaultNext: models.StepNotes,
			Validate:    requireItems("condition"),
			Apply:       applyItemsTo(models.FieldConditions),
		},
		{
			Key:         models.StepNotes,
			Fields:      []models.FieldName{models.FieldNotes},
			DefaultNext: models.StepConsent,
			Optional:    true,
			Validate: func(in models.StepInput) error {
				if len(in.Items) > models.MaxListItems {
					return models.NewValidationError("too many notes (max %d)", models.MaxListItems)
				}
				for _, note := range in.Items {
					if len(note) > models.MaxNoteLength {
						return models.NewValidationError("note exceeds %d characters", models.MaxNoteLength)
					}
				}
				return nil
			},
			Apply: applyItemsTo(models.FieldNotes),
		},
		{
			Key:         models.StepConsent,
			Fields:      []models.FieldName{models.FieldConsent},
			DefaultNext: models.StepReview,
			Validate:    requireFlag("analysis consent choice"),
			Apply:       applyFlagTo(models.FieldConsent),
		},
		{
			// Terminal step: assembly and submission, no fields of its own.
			Key:      models.StepReview,
			Optional: true,
		},
	}
}

// splitFullName splits a full name on the first space. A single token leaves
// the last name empty.
func splitFullName(full string) (first, last string) {
	full = strings.TrimSpace(full)
	if idx := strings.Index(full, " "); idx >= 0 {
		return full[:idx], strings.TrimSpace(full[idx+1:])
	}
	return full, ""
}

// gateNext routes a yes/no gate to its dependent list step only when the gate
// field was answered true; otherwise past it. An explicit empty list answer
// ("none of these") also bypasses the list step.
func gateNext(gate models.FieldName, yes, no models.StepKey) func(models.AssessmentContext) models.StepKey {
	return func(ctx models.AssessmentContext) models.StepKey {
		if v, ok := ctx.GetBool(gate); ok && v {
			return yes
		}
		return no
	}
}

func applyGate(gate, list models.FieldName) func(models.AssessmentContext, models.StepInput) models.AssessmentContext {
	return func(ctx models.AssessmentContext, in models.StepInput) models.AssessmentContext {
		if in.Flag != nil && !*in.Flag {
			// "No" is an explicit none answer, not a skip: record the empty list.
			return ctx.Merge(map[models.FieldName]models.FieldValue{
				gate: models.BoolValue(false),
				list: models.ListValue(nil),
			})
		}
		return ctx.WithField(gate, models.BoolValue(in.Flag != nil && *in.Flag))
	}
}

func requireChoice(what string, options []string) func(models.StepInput) error {
	return func(in models.StepInput) error {
		if in.Choice == "" {
			return models.NewValidationError("%s selection is required", what)
		}
		if !contains(options, in.Choice) {
			return models.NewValidationError("unknown %s %q", what, in.Choice)
		}
		return nil
	}
}

func requireChoices(what string, options []string) func(models.StepInput) error {
	return func(in models.StepInput) error {
		if len(in.Choices) == 0 {
			return models.NewValidationError("at least one %s is required", what)
		}
		for _, c := range in.Choices {
			if !contains(options, c) {
				return models.NewValidationError("unknown %s %q", what, c)
			}
		}
		return nil
	}
}

func requireFlag(what string) func(models.StepInput) error {
	return func(in models.StepInput) error {
		if in.Flag == nil {
			return models.NewValidationError("%s is required", what)
		}
		return nil
	}
}

func requireItems(what string) func(models.StepInput) error {
	return func(in models.StepInput) error {
		if len(in.Items) == 0 {
			return models.NewValidationError("at least one %s is required", what)
		}
		if len(in.Items) > models.MaxListItems {
			return models.NewValidationError("too many items (max %d)", models.MaxListItems)
		}
		for _, item := range in.Items {
			trimmed := strings.TrimSpace(item)
			if trimmed == "" {
				return models.NewValidationError("%s name cannot be empty", what)
			}
			if len(trimmed) > models.MaxItemLength {
				return models.NewValidationError("%s name exceeds %d characters", what, models.MaxItemLength)
			}
		}
		return nil
	}
}

func validateMeasurement(canonical, alternate models.MeasurementUnit, min, max float64) func(models.StepInput) error {
	return func(in models.StepInput) error {
		unit := models.MeasurementUnit(in.Unit)
		if unit != "" && unit != canonical && unit != alternate {
			return models.NewValidationError("unsupported unit %q", in.Unit)
		}
		if in.Number == nil {
			// Pre-populated default satisfies the requirement.
			return nil
		}
		value := *in.Number
		if unit == alternate {
			value = ToCanonical(value, alternate)
		}
		if value < min || value > max {
			return models.NewValidationError("value out of range (%.0f–%.0f %s)", min, max, canonical)
		}
		return nil
	}
}

// canonicalHeight normalizes a height input to whole centimeters.
func canonicalHeight(in models.StepInput) float64 {
	value := DefaultHeightCm
	if in.Number != nil {
		value = *in.Number
	}
	if models.MeasurementUnit(in.Unit) == models.UnitInches {
		return ToCanonical(value, models.UnitInches)
	}
	return value
}

// canonicalWeight normalizes a weight input to whole kilograms. The step's
// default is displayed in pounds, so an unanswered input converts the default.
func canonicalWeight(in models.StepInput) float64 {
	if in.Number == nil {
		return ToCanonical(DefaultWeightLb, models.UnitPounds)
	}
	if models.MeasurementUnit(in.Unit) == models.UnitPounds {
		return ToCanonical(*in.Number, models.UnitPounds)
	}
	return *in.Number
}

func applyChoiceTo(field models.FieldName) func(models.AssessmentContext, models.StepInput) models.AssessmentContext {
	return func(ctx models.AssessmentContext, in models.StepInput) models.AssessmentContext {
		return ctx.WithField(field, models.StringValue(in.Choice))
	}
}

func applyChoicesTo(field models.FieldName) func(models.AssessmentContext, models.StepInput) models.AssessmentContext {
	return func(ctx models.AssessmentContext, in models.StepInput) models.AssessmentContext {
		return ctx.WithField(field, models.ListValue(in.Choices))
	}
}

func applyNumberTo(field models.FieldName, def float64) func(models.AssessmentContext, models.StepInput) models.AssessmentContext {
	return func(ctx models.AssessmentContext, in models.StepInput) models.AssessmentContext {
		value := def
		if in.Number != nil {
			value = *in.Number
		}
		return ctx.WithField(field, models.NumberValue(value))
	}
}

func applyFlagTo(field models.FieldName) func(models.AssessmentContext, models.StepInput) models.AssessmentContext {
	return func(ctx models.AssessmentContext, in models.StepInput) models.AssessmentContext {
		return ctx.WithField(field, models.BoolValue(in.Flag != nil && *in.Flag))
	}
}

func contains(options []string, value string) bool {
	for _, opt := range options {
		if opt == value {
			return true
		}
	}
	return false
}

// trimmedItems returns the items with surrounding whitespace removed.
func trimmedItems(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, strings.TrimSpace(item))
	}
	return out
}

func applyItemsTo(field models.FieldName) func(models.AssessmentContext, models.StepInput) models.AssessmentContext {
	return func(ctx models.AssessmentContext, in models.StepInput) models.AssessmentContext {
		return ctx.WithField(field, models.ListValue(trimmedItems(in.Items)))
	}
}
