// Package engine defines the narrow contract between compiled rule sets and
// the validation/DOM layer that enforces them.
//
// An Engine accepts named predicate methods and binds rules/messages to a form
// selector, returning a Validator handle that can be destroyed. The DOM
// primitive (DOM, Selection) is only needed by the default highlight and error
// placement callbacks and by Filter.Destroy.
//
// Adapters live in subpackages: script renders jQuery Validation bootstrap
// code, server checks submitted values in Go, prompt drives a terminal form.
package engine
