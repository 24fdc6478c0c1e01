package overrides

import (
	"sort"

	"github.com/goliatone/go-formfilter/pkg/logging"
)

// Option configures a Store.
type Option func(*Store)

// WithLogger routes registration traces to logger.
func WithLogger(logger logging.Logger) Option {
	return func(s *Store) {
		s.logger = logging.OrNop(logger)
	}
}

// Store accumulates FieldOverride records keyed by field name. It is owned by a
// single form filter and is not safe for concurrent use.
type Store struct {
	fields map[string]*FieldOverride
	order  []string
	logger logging.Logger
}

// NewStore returns an empty Store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		fields: make(map[string]*FieldOverride),
		logger: logging.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// MarkOptional sets Skip for every field whose fragment carries an explicit
// Required=false. Skip is monotonic: no operation clears it.
func (s *Store) MarkOptional(specs map[string]RequiredSpec) {
	for _, name := range sortedKeys(specs) {
		override := s.ensure(name)
		spec := specs[name]
		if spec.Required != nil && !*spec.Required {
			override.Skip = true
			s.logger.Debug("overrides: %s marked optional", name)
		}
	}
}

// AddPattern records the pattern and its message for each field. A fragment
// without a pattern leaves the field untouched.
func (s *Store) AddPattern(specs map[string]PatternSpec) {
	for _, name := range sortedKeys(specs) {
		override := s.ensure(name)
		spec := specs[name]
		if spec.Pattern == nil {
			continue
		}
		override.Pattern = spec.Pattern
		override.PatternMessage = spec.Message
		s.logger.Debug("overrides: %s pattern %q", name, spec.Pattern.String())
	}
}

// AddMinLength records the minimum length bound for each field. Values are not
// range checked.
func (s *Store) AddMinLength(specs map[string]MinLengthSpec) {
	for _, name := range sortedKeys(specs) {
		override := s.ensure(name)
		value := specs[name].MinLength
		override.MinLength = &value
		s.logger.Debug("overrides: %s minlength %d", name, value)
	}
}

// AddMaxLength records the maximum length bound for each field. Values are not
// range checked.
func (s *Store) AddMaxLength(specs map[string]MaxLengthSpec) {
	for _, name := range sortedKeys(specs) {
		override := s.ensure(name)
		value := specs[name].MaxLength
		override.MaxLength = &value
		s.logger.Debug("overrides: %s maxlength %d", name, value)
	}
}

// AddMessages shallow-merges custom messages into each field's message map.
// Fragments without a Messages map are skipped entirely.
func (s *Store) AddMessages(specs map[string]MessagesSpec) {
	for _, name := range sortedKeys(specs) {
		spec := specs[name]
		if spec.Messages == nil {
			continue
		}
		override := s.ensure(name)
		if override.Messages == nil {
			override.Messages = make(map[string]string, len(spec.Messages))
		}
		for rule, msg := range spec.Messages {
			override.Messages[rule] = msg
		}
		s.logger.Debug("overrides: %s merged %d messages", name, len(spec.Messages))
	}
}

// Lookup returns a snapshot of the override recorded for name.
func (s *Store) Lookup(name string) (FieldOverride, bool) {
	if s == nil {
		return FieldOverride{}, false
	}
	override, ok := s.fields[name]
	if !ok {
		return FieldOverride{}, false
	}
	return override.Clone(), true
}

// Names lists field names in first-registration order.
func (s *Store) Names() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.order...)
}

// Len reports how many fields carry an override record.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

func (s *Store) ensure(name string) *FieldOverride {
	if override, ok := s.fields[name]; ok {
		return override
	}
	override := &FieldOverride{}
	s.fields[name] = override
	s.order = append(s.order, name)
	return override
}

// sortedKeys fixes the merge order within a single call, since Go map
// iteration is randomised.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
