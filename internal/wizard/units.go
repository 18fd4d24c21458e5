// Package wizard provides measurement unit conversion for the height and
// weight steps.
package wizard

import (
	"math"

	"github.com/vitalpath/intakeflow/internal/models"
)

// Standard conversion factors.
const (
	CmPerInch = 2.54
	KgPerLb   = 0.453592
)

// ToCanonical converts a displayed value in the given unit to the canonical
// unit (cm for height, kg for weight), rounded to the nearest whole unit.
// Values already in a canonical unit are rounded and returned as-is.
func ToCanonical(value float64, unit models.MeasurementUnit) float64 {
	switch unit {
	case models.UnitInches:
		return math.Round(value * CmPerInch)
	case models.UnitPounds:
		return math.Round(value * KgPerLb)
	default:
		return math.Round(value)
	}
}

// ToDisplay converts a canonical value (cm or kg) to the given display unit,
// rounded to the nearest whole unit.
func ToDisplay(canonical float64, unit models.MeasurementUnit) float64 {
	switch unit {
	case models.UnitInches:
		return math.Round(canonical / CmPerInch)
	case models.UnitPounds:
		return math.Round(canonical / KgPerLb)
	default:
		return math.Round(canonical)
	}
}

// AnchorIndex re-anchors a picker index to the converted value: the offset of
// value from min in whole display units. Used when a unit toggle recomputes
// the displayed number and the position indicator must follow it.
func AnchorIndex(value, min float64) int {
	idx := int(math.Round(value - min))
	if idx < 0 {
		return 0
	}
	return idx
}

// MeasurementDisplay carries a measurement step's current value in both
// supported units, with the picker anchor index for each, so a unit toggle
// re-anchors the position indicator without re-reading the context.
type MeasurementDisplay struct {
	Canonical       float64                `json:"canonical"`
	CanonicalUnit   models.MeasurementUnit `json:"canonical_unit"`
	Alternate       float64                `json:"alternate"`
	AlternateUnit   models.MeasurementUnit `json:"alternate_unit"`
	CanonicalAnchor int                    `json:"canonical_anchor"`
	AlternateAnchor int                    `json:"alternate_anchor"`
}

// DisplayFor returns the display values for the height or weight step, or nil
// for any other step. An absent context value falls back to the step default.
func DisplayFor(key models.StepKey, ctx models.AssessmentContext) *MeasurementDisplay {
	switch key {
	case models.StepHeight:
		cm := DefaultHeightCm
		if v, ok := ctx.GetNumber(models.FieldHeightCm); ok {
			cm = v
		}
		return measurementDisplay(cm, MinHeightCm, models.UnitCentimeters, models.UnitInches)
	case models.StepWeight:
		kg := ToCanonical(DefaultWeightLb, models.UnitPounds)
		if v, ok := ctx.GetNumber(models.FieldWeightKg); ok {
			kg = v
		}
		return measurementDisplay(kg, MinWeightKg, models.UnitKilograms, models.UnitPounds)
	default:
		return nil
	}
}

func measurementDisplay(canonical, min float64, canonicalUnit, alternateUnit models.MeasurementUnit) *MeasurementDisplay {
	alternate := ToDisplay(canonical, alternateUnit)
	return &MeasurementDisplay{
		Canonical:       canonical,
		CanonicalUnit:   canonicalUnit,
		Alternate:       alternate,
		AlternateUnit:   alternateUnit,
		CanonicalAnchor: AnchorIndex(canonical, min),
		AlternateAnchor: AnchorIndex(alternate, ToDisplay(min, alternateUnit)),
	}
}
