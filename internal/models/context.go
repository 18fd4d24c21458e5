// Package models defines the assessment context threaded between wizard steps.
package models

// ValueKind distinguishes the closed set of value types a context field may hold.
type ValueKind string

const (
	// ValueString holds a single text answer.
	ValueString ValueKind = "string"
	// ValueList holds an ordered list of text answers. An empty list is an
	// explicit "none" answer, distinct from the field being absent.
	ValueList ValueKind = "list"
	// ValueNumber holds a numeric answer in its canonical unit.
	ValueNumber ValueKind = "number"
	// ValueBool holds a yes/no answer.
	ValueBool ValueKind = "bool"
	// ValueUnknown marks an answer the user explicitly declined to state.
	ValueUnknown ValueKind = "unknown"
)

// FieldValue is one answer stored in the assessment context.
type FieldValue struct {
	Kind ValueKind `json:"kind"`
	Str  string    `json:"str,omitempty"`
	List []string  `json:"list,omitempty"`
	Num  float64   `json:"num,omitempty"`
	Bool bool      `json:"bool,omitempty"`
}

// StringValue creates a string-kind field value.
func StringValue(s string) FieldValue {
	return FieldValue{Kind: ValueString, Str: s}
}

// ListValue creates a list-kind field value. The items are copied so later
// mutation of the caller's slice cannot reach into a stored context. A nil
// or empty input still produces an explicit empty list.
func ListValue(items []string) FieldValue {
	copied := make([]string, len(items))
	copy(copied, items)
	return FieldValue{Kind: ValueList, List: copied}
}

// NumberValue creates a number-kind field value.
func NumberValue(n float64) FieldValue {
	return FieldValue{Kind: ValueNumber, Num: n}
}

// BoolValue creates a bool-kind field value.
func BoolValue(b bool) FieldValue {
	return FieldValue{Kind: ValueBool, Bool: b}
}

// UnknownValue creates the explicit "unknown" sentinel value.
func UnknownValue() FieldValue {
	return FieldValue{Kind: ValueUnknown}
}

// AssessmentContext is the immutable-append bag of answers threaded through
// the wizard. All write operations return a new context; the receiver is
// never mutated, so back-navigation replays prior states correctly.
type AssessmentContext map[FieldName]FieldValue

// NewAssessmentContext creates an empty assessment context.
func NewAssessmentContext() AssessmentContext {
	return AssessmentContext{}
}

// WithField returns a new context with the field set. The receiver is unchanged.
func (c AssessmentContext) WithField(name FieldName, value FieldValue) AssessmentContext {
	next := make(AssessmentContext, len(c)+1)
	for k, v := range c {
		next[k] = v
	}
	next[name] = value
	return next
}

// Merge returns a new context with all fields from partial applied atomically.
// Used when a step contributes more than one field (e.g. blood type + Rh factor).
func (c AssessmentContext) Merge(partial map[FieldName]FieldValue) AssessmentContext {
	next := make(AssessmentContext, len(c)+len(partial))
	for k, v := range c {
		next[k] = v
	}
	for k, v := range partial {
		next[k] = v
	}
	return next
}

// Get returns the stored value for name, or def when the field is absent.
// An absent field means "skipped" or "not yet reached", distinct from an
// explicit empty answer.
func (c AssessmentContext) Get(name FieldName, def FieldValue) FieldValue {
	if v, ok := c[name]; ok {
		return v
	}
	return def
}

// Has reports whether the field has been written at all.
func (c AssessmentContext) Has(name FieldName) bool {
	_, ok := c[name]
	return ok
}

// GetString returns the string value for name and whether it is present as a string.
func (c AssessmentContext) GetString(name FieldName) (string, bool) {
	v, ok := c[name]
	if !ok || v.Kind != ValueString {
		return "", false
	}
	return v.Str, true
}

// GetList returns the list value for name and whether it is present as a list.
// The returned slice is a copy.
func (c AssessmentContext) GetList(name FieldName) ([]string, bool) {
	v, ok := c[name]
	if !ok || v.Kind != ValueList {
		return nil, false
	}
	copied := make([]string, len(v.List))
	copy(copied, v.List)
	return copied, true
}

// GetNumber returns the numeric value for name and whether it is present as a number.
func (c AssessmentContext) GetNumber(name FieldName) (float64, bool) {
	v, ok := c[name]
	if !ok || v.Kind != ValueNumber {
		return 0, false
	}
	return v.Num, true
}

// GetBool returns the boolean value for name and whether it is present as a bool.
func (c AssessmentContext) GetBool(name FieldName) (bool, bool) {
	v, ok := c[name]
	if !ok || v.Kind != ValueBool {
		return false, false
	}
	return v.Bool, true
}
