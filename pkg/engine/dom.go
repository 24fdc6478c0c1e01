package engine

import "strings"

// Data keys the binder stores on a form element.
const (
	DataValidator             = "validator"
	DataUnobtrusiveValidation = "unobtrusiveValidation"
)

// DOM resolves selectors to live element selections.
type DOM interface {
	Query(selector string) Selection
}

// Selection is zero or more live elements, modelled on jQuery collections.
type Selection interface {
	Len() int
	AddClass(class string) Selection
	RemoveClass(class string) Selection
	Data(key string) (any, bool)
	RemoveData(key string) Selection
	// Parent returns the direct parent, filtered by selector when non-empty.
	Parent(selector string) Selection
	Is(selector string) bool
	InsertAfter(target Selection) Selection
}

func isBlank(value string) bool {
	return strings.TrimSpace(value) == ""
}
