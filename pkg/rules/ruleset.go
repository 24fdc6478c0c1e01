package rules

import (
	"github.com/goliatone/go-formfilter/pkg/engine"
)

// RuleSet is the compiled output. It is produced fresh on every Compile call
// and never modified afterwards.
type RuleSet struct {
	// Fields preserves the compile-time field order.
	Fields   []string                        `json:"-"`
	Rules    map[string]engine.FieldRules    `json:"rules"`
	Messages map[string]engine.FieldMessages `json:"messages"`
	// Methods lists the synthesised pattern methods in field order.
	Methods []engine.Method `json:"-"`
}

// Field returns the rules and messages compiled for name.
func (rs RuleSet) Field(name string) (engine.FieldRules, engine.FieldMessages, bool) {
	rules, ok := rs.Rules[name]
	if !ok {
		return nil, nil, false
	}
	return rules, rs.Messages[name], true
}

// BindConfig merges the rule set into base, keeping base's presentation
// settings.
func (rs RuleSet) BindConfig(base engine.BindConfig) engine.BindConfig {
	cfg := base
	cfg.Fields = append([]string(nil), rs.Fields...)
	cfg.Rules = rs.Rules
	cfg.Messages = rs.Messages
	return cfg
}

// PatternMethodName is the method name synthesised for field's pattern rule.
func PatternMethodName(field string) string {
	return field + "_pattern"
}
