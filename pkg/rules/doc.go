// Package rules compiles accumulated field overrides into the rules/messages
// structure consumed by validation engines.
//
// Compile walks the authoritative field list in order and, per field, applies
// the required policy, the pattern policy (synthesising a "<field>_pattern"
// method), the length bounds, and finally overlays every custom message so any
// default can be replaced. Overrides for fields outside the list are ignored.
package rules
