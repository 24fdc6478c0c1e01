package engine

// Defaults applied by DefaultBindConfig.
const (
	DefaultErrorElement = "div"
	DefaultErrorClass   = "invalid-feedback small fw-normal fs-6"
	InvalidClass        = "is-invalid"
	ErrorNodeClass      = "invalid-feedback-error"
	InputGroupSelector  = ".input-group"
	CheckboxSelector    = ":checkbox"
	RadioSelector       = ":radio"
)

// DefaultBindConfig returns a BindConfig carrying the default presentation:
// invalid inputs get InvalidClass, and error nodes land after the input or,
// for grouped, checkbox and radio inputs, after the input's parent.
func DefaultBindConfig() BindConfig {
	return BindConfig{
		ErrorElement:   DefaultErrorElement,
		ErrorClass:     DefaultErrorClass,
		Highlight:      Highlight,
		Unhighlight:    Unhighlight,
		ErrorPlacement: PlaceError,
	}
}

// Highlight marks element invalid.
func Highlight(element Selection) {
	if element == nil {
		return
	}
	element.AddClass(InvalidClass)
}

// Unhighlight clears the invalid marker from element.
func Unhighlight(element Selection) {
	if element == nil {
		return
	}
	element.RemoveClass(InvalidClass)
}

// PlaceError inserts errorNode next to element.
func PlaceError(errorNode, element Selection) {
	if errorNode == nil || element == nil {
		return
	}
	errorNode.AddClass(ErrorNodeClass)
	if placeAfterParent(element) {
		errorNode.InsertAfter(element.Parent(""))
		return
	}
	errorNode.InsertAfter(element)
}

func placeAfterParent(element Selection) bool {
	if group := element.Parent(InputGroupSelector); group != nil && group.Len() > 0 {
		return true
	}
	return element.Is(CheckboxSelector) || element.Is(RadioSelector)
}
