package overrides

import (
	"maps"
	"regexp"
)

// FieldOverride is the cumulative override recorded for one field name.
type FieldOverride struct {
	// Skip marks the field as not required. Once set it stays set.
	Skip bool
	// Pattern is nil when no pattern override was registered.
	Pattern *regexp.Regexp
	// PatternMessage is empty when no message accompanied the pattern.
	PatternMessage string
	MinLength      *int
	MaxLength      *int
	// Messages holds per-rule custom messages keyed by rule name.
	Messages map[string]string
}

// Message returns the custom message registered for rule.
func (o FieldOverride) Message(rule string) (string, bool) {
	if len(o.Messages) == 0 {
		return "", false
	}
	msg, ok := o.Messages[rule]
	return msg, ok
}

// Clone returns a copy that shares no mutable state with o. Compiled regular
// expressions are immutable and safe to share.
func (o FieldOverride) Clone() FieldOverride {
	out := o
	if o.MinLength != nil {
		v := *o.MinLength
		out.MinLength = &v
	}
	if o.MaxLength != nil {
		v := *o.MaxLength
		out.MaxLength = &v
	}
	if o.Messages != nil {
		out.Messages = maps.Clone(o.Messages)
	}
	return out
}

// RequiredSpec is the mark-optional fragment. Only an explicit false has an
// effect; a nil Required means the fragment did not mention the flag.
type RequiredSpec struct {
	Required *bool
}

// Optional is shorthand for RequiredSpec{Required: false}.
func Optional() RequiredSpec {
	required := false
	return RequiredSpec{Required: &required}
}

// PatternSpec is the add-pattern fragment.
type PatternSpec struct {
	Pattern *regexp.Regexp
	Message string
}

// MinLengthSpec is the add-min-length fragment.
type MinLengthSpec struct {
	MinLength int
}

// MaxLengthSpec is the add-max-length fragment.
type MaxLengthSpec struct {
	MaxLength int
}

// MessagesSpec is the add-messages fragment. A nil Messages map makes the
// fragment a no-op for its field.
type MessagesSpec struct {
	Messages map[string]string
}
