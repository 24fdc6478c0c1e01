// Package overrides accumulates per-field validation override fragments.
//
// A Store is fed through five registration operations (MarkOptional,
// AddPattern, AddMinLength, AddMaxLength, AddMessages) that may be called any
// number of times in any order. Each call merges into the field's cumulative
// FieldOverride; nothing is ever replaced wholesale and malformed fragments
// degrade to "no override" instead of failing.
//
// Documents (YAML or JSON) describe the same fragments declaratively and can be
// replayed into a Store with Document.Apply.
package overrides
