package engine

import (
	"regexp"
)

// Rule names understood by every adapter.
const (
	RuleRequired  = "required"
	RuleMinLength = "minlength"
	RuleMaxLength = "maxlength"
)

// FieldRules maps rule names to rule values (bool for required and method
// rules, int for length bounds).
type FieldRules map[string]any

// FieldMessages maps rule names to the message shown when the rule fails.
type FieldMessages map[string]string

// Element is the input a predicate is evaluated against.
type Element interface {
	FieldName() string
	Value() string
}

// OptionalChecker reports whether an element is empty and therefore exempt
// from non-required rules.
type OptionalChecker interface {
	Optional(element Element) bool
}

// Predicate is a custom rule body. It receives the bound validator so it can
// defer to the engine's own optionality check.
type Predicate func(v OptionalChecker, value string, element Element) bool

// Method is a named predicate registered once and referenced from FieldRules.
// Pattern carries the expression behind pattern methods so adapters that
// serialise methods (rather than call them) can transfer it.
type Method struct {
	Name           string
	Predicate      Predicate
	DefaultMessage string
	Pattern        *regexp.Regexp
}

// Validator is a live binding returned by Engine.Bind.
type Validator interface {
	OptionalChecker
	Destroy() error
}

// Engine is the validation-and-binding backend.
type Engine interface {
	// AddMethod registers m; a later registration with the same name replaces
	// the earlier one.
	AddMethod(m Method)
	// Bind attaches cfg to the form identified by selector.
	Bind(selector string, cfg BindConfig) (Validator, error)
	// Lookup returns the active validator bound to selector.
	Lookup(selector string) (Validator, bool)
}

// BindConfig is everything handed to Engine.Bind.
type BindConfig struct {
	Fields         []string
	Rules          map[string]FieldRules
	Messages       map[string]FieldMessages
	ErrorElement   string
	ErrorClass     string
	Highlight      func(element Selection)
	Unhighlight    func(element Selection)
	ErrorPlacement func(errorNode, element Selection)
}

// Optional is the default optionality rule: blank values (after trimming) are
// optional.
func Optional(element Element) bool {
	if element == nil {
		return true
	}
	return isBlank(element.Value())
}

// Input is a plain Element for adapters that work without a DOM.
type Input struct {
	Name string
	Text string
}

func (i Input) FieldName() string { return i.Name }

func (i Input) Value() string { return i.Text }
