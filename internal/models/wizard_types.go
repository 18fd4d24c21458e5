// Package models defines wizard type identifiers to avoid circular imports.
package models

// StepKey identifies a single step in the assessment wizard. Ordering among
// keys is defined by the step registry, not by the key's value.
type StepKey string

// FieldName identifies one answer slot in the assessment context.
type FieldName string

// Step key constants for the health assessment flow.
const (
	StepName           StepKey = "name"
	StepHealthGoals    StepKey = "health-goals"
	StepBirthYear      StepKey = "birth-year"
	StepGender         StepKey = "gender"
	StepHeight         StepKey = "height"
	StepWeight         StepKey = "weight"
	StepBloodType      StepKey = "blood-type"
	StepActivityLevel  StepKey = "activity-level"
	StepSleepHours     StepKey = "sleep-hours"
	StepSmoking        StepKey = "smoking"
	StepAlcohol        StepKey = "alcohol"
	StepDiet           StepKey = "diet"
	StepNutritionGoals StepKey = "nutrition-goals"
	StepMood           StepKey = "mood"
	StepMedications    StepKey = "medications"
	StepMedicationList StepKey = "medication-list"
	StepAllergies      StepKey = "allergies"
	StepAllergyList    StepKey = "allergy-list"
	StepConditions     StepKey = "conditions"
	StepConditionList  StepKey = "condition-list"
	StepNotes          StepKey = "notes"
	StepConsent        StepKey = "analysis-consent"
	StepReview         StepKey = "review"
)

// Field name constants for the assessment context.
const (
	FieldFirstName      FieldName = "first_name"
	FieldLastName       FieldName = "last_name"
	FieldHealthGoals    FieldName = "health_goals"
	FieldBirthYear      FieldName = "birth_year"
	FieldGender         FieldName = "gender"
	FieldHeightCm       FieldName = "height_cm"
	FieldWeightKg       FieldName = "weight_kg"
	FieldBloodType      FieldName = "blood_type"
	FieldRhFactor       FieldName = "rh_factor"
	FieldActivityLevel  FieldName = "activity_level"
	FieldSleepHours     FieldName = "sleep_hours"
	FieldSmoking        FieldName = "smoking"
	FieldAlcohol        FieldName = "alcohol"
	FieldDiet           FieldName = "diet"
	FieldNutritionGoals FieldName = "nutrition_goals"
	FieldMood           FieldName = "mood"
	FieldHasMedications FieldName = "has_medications"
	FieldMedications    FieldName = "medications"
	FieldHasAllergies   FieldName = "has_allergies"
	FieldAllergies      FieldName = "allergies"
	FieldHasConditions  FieldName = "has_conditions"
	FieldConditions     FieldName = "conditions"
	FieldNotes          FieldName = "notes"
	FieldConsent        FieldName = "analysis_consent"
)

// MeasurementUnit identifies the unit a measurement step is displayed in.
type MeasurementUnit string

// Display units for the height and weight steps. Context values are always
// stored in the canonical unit (cm, kg) regardless of the displayed unit.
const (
	UnitCentimeters MeasurementUnit = "cm"
	UnitInches      MeasurementUnit = "in"
	UnitKilograms   MeasurementUnit = "kg"
	UnitPounds      MeasurementUnit = "lb"
)
