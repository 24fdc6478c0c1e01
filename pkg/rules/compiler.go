package rules

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/goliatone/go-formfilter/pkg/engine"
	"github.com/goliatone/go-formfilter/pkg/i18n"
	"github.com/goliatone/go-formfilter/pkg/overrides"
)

// Built-in English defaults, used when the translator cannot resolve a key.
const (
	DefaultRequiredMessage  = "This field is required."
	DefaultPatternMessage   = "Invalid format"
	DefaultMinLengthMessage = "Please enter at least %s characters."
	DefaultMaxLengthMessage = "Please enter no more than %s characters."
)

// Source supplies the override recorded for a field. *overrides.Store
// satisfies it.
type Source interface {
	Lookup(name string) (overrides.FieldOverride, bool)
}

// Compile produces the rule set for fields from the overrides in src. A nil
// src compiles every field with default policy.
func Compile(src Source, fields []string, opts ...Option) RuleSet {
	cfg := newConfig(opts)
	rs := RuleSet{
		Fields:   append([]string(nil), fields...),
		Rules:    make(map[string]engine.FieldRules, len(fields)),
		Messages: make(map[string]engine.FieldMessages, len(fields)),
	}

	for _, name := range fields {
		var override overrides.FieldOverride
		if src != nil {
			override, _ = src.Lookup(name)
		}

		rules := engine.FieldRules{}
		messages := engine.FieldMessages{}

		if override.Skip {
			rules[engine.RuleRequired] = false
		} else {
			rules[engine.RuleRequired] = true
			messages[engine.RuleRequired] = cfg.message(i18n.KeyRequired, DefaultRequiredMessage)
		}

		if override.Pattern != nil {
			method := PatternMethodName(name)
			msg := override.PatternMessage
			if msg == "" {
				msg = cfg.message(i18n.KeyPattern, DefaultPatternMessage)
			}
			rules[method] = true
			messages[method] = msg
			rs.Methods = append(rs.Methods, engine.Method{
				Name:           method,
				Predicate:      patternPredicate(override.Pattern),
				DefaultMessage: msg,
				Pattern:        override.Pattern,
			})
		}

		if bound, ok := lengthBound(override.MinLength); ok {
			rules[engine.RuleMinLength] = bound
			messages[engine.RuleMinLength] = cfg.message(i18n.KeyMinLength, DefaultMinLengthMessage, strconv.Itoa(bound))
		}

		if bound, ok := lengthBound(override.MaxLength); ok {
			rules[engine.RuleMaxLength] = bound
			messages[engine.RuleMaxLength] = cfg.message(i18n.KeyMaxLength, DefaultMaxLengthMessage, strconv.Itoa(bound))
		}

		// Custom messages go last so every default above can be replaced.
		for rule, msg := range override.Messages {
			messages[rule] = msg
		}

		rs.Rules[name] = rules
		rs.Messages[name] = messages
		cfg.logger.Debug("rules: compiled %s with %d rules", name, len(rules))
	}

	return rs
}

// lengthBound treats a zero bound as absent; other values pass through as
// given.
func lengthBound(value *int) (int, bool) {
	if value == nil || *value == 0 {
		return 0, false
	}
	return *value, true
}

func patternPredicate(re *regexp.Regexp) engine.Predicate {
	return func(v engine.OptionalChecker, value string, element engine.Element) bool {
		if v != nil && v.Optional(element) {
			return true
		}
		return re.MatchString(value)
	}
}

func (cfg config) message(key, fallback string, args ...any) string {
	if cfg.translator != nil {
		msg, err := cfg.translator.Translate(cfg.locale, key, args...)
		if err == nil && msg != "" {
			return msg
		}
		cfg.logger.Debug("rules: no translation for %s (%s): %v", key, cfg.locale, err)
	}
	if len(args) == 0 {
		return fallback
	}
	return fmt.Sprintf(fallback, args...)
}
