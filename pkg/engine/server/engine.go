package server

import (
	"maps"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/goliatone/go-errors"

	"github.com/goliatone/go-formfilter/pkg/engine"
	"github.com/goliatone/go-formfilter/pkg/logging"
)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger routes binding and check traces to logger.
func WithLogger(logger logging.Logger) Option {
	return func(e *Engine) {
		e.logger = logging.OrNop(logger)
	}
}

// Engine enforces compiled rule sets against submitted values on the server,
// so the same configuration that drives the browser can gate a form handler.
// It is safe for concurrent use.
type Engine struct {
	mu       sync.RWMutex
	methods  map[string]engine.Method
	bindings map[string]*Binding
	logger   logging.Logger
}

var _ engine.Engine = (*Engine)(nil)

// New returns an Engine with no methods or bindings.
func New(opts ...Option) *Engine {
	e := &Engine{
		methods:  make(map[string]engine.Method),
		bindings: make(map[string]*Binding),
		logger:   logging.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// AddMethod registers m, replacing any method with the same name. Methods
// without a name or predicate are ignored.
func (e *Engine) AddMethod(m engine.Method) {
	name := strings.TrimSpace(m.Name)
	if name == "" || m.Predicate == nil {
		e.logger.Error("server engine: ignoring method %q without name or predicate", m.Name)
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	m.Name = name
	e.methods[name] = m
	e.logger.Debug("server engine: method %s registered", name)
}

// Bind stores a copy of cfg for selector, replacing an earlier binding.
func (e *Engine) Bind(selector string, cfg engine.BindConfig) (engine.Validator, error) {
	key := strings.TrimSpace(selector)
	if key == "" {
		return nil, errors.New("form selector is required", errors.CategoryBadInput).
			WithTextCode("SELECTOR_MISSING")
	}

	binding := &Binding{selector: key, owner: e, cfg: cloneConfig(cfg)}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.bindings[key] = binding
	e.logger.Info("server engine: bound %s (%d fields)", key, len(cfg.Fields))
	return binding, nil
}

// Lookup returns the active binding for selector.
func (e *Engine) Lookup(selector string) (engine.Validator, bool) {
	binding, ok := e.binding(selector)
	if !ok {
		return nil, false
	}
	return binding, true
}

// Fields lists the bound field names for selector in bind order.
func (e *Engine) Fields(selector string) ([]string, bool) {
	binding, ok := e.binding(selector)
	if !ok {
		return nil, false
	}
	return append([]string(nil), binding.cfg.Fields...), true
}

// Check evaluates every bound field against values. Missing values are blank.
func (e *Engine) Check(selector string, values map[string]string) (Result, error) {
	binding, ok := e.binding(selector)
	if !ok {
		return Result{}, errBindingNotFound(selector)
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	var result Result
	for _, field := range binding.cfg.Fields {
		if failure, failed := binding.check(e.methods, field, values[field]); failed {
			result.Errors = append(result.Errors, failure)
		}
	}
	e.logger.Debug("server engine: checked %s, %d errors", binding.selector, len(result.Errors))
	return result, nil
}

// CheckField evaluates a single field. The boolean reports a failure.
func (e *Engine) CheckField(selector, field, value string) (FieldError, bool, error) {
	binding, ok := e.binding(selector)
	if !ok {
		return FieldError{}, false, errBindingNotFound(selector)
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	failure, failed := binding.check(e.methods, field, value)
	return failure, failed, nil
}

func (e *Engine) binding(selector string) (*Binding, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	binding, ok := e.bindings[strings.TrimSpace(selector)]
	return binding, ok
}

func (e *Engine) release(b *Binding) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if current, ok := e.bindings[b.selector]; !ok || current != b {
		return false
	}
	delete(e.bindings, b.selector)
	e.logger.Info("server engine: released %s", b.selector)
	return true
}

// Binding is the Validator returned by Engine.Bind.
type Binding struct {
	selector string
	owner    *Engine
	cfg      engine.BindConfig
}

var _ engine.Validator = (*Binding)(nil)

// Optional reports blank inputs as optional.
func (b *Binding) Optional(element engine.Element) bool {
	return engine.Optional(element)
}

// Destroy releases the binding. Calling it again is a no-op.
func (b *Binding) Destroy() error {
	if b == nil || b.owner == nil {
		return nil
	}
	b.owner.release(b)
	return nil
}

// check returns the first failing rule for field, in the order required,
// minlength, maxlength, then methods by name. Callers hold the engine lock.
func (b *Binding) check(methods map[string]engine.Method, field, value string) (FieldError, bool) {
	rules := b.cfg.Rules[field]
	input := engine.Input{Name: field, Text: value}

	if required, _ := rules[engine.RuleRequired].(bool); required && b.Optional(input) {
		return b.failure(methods, field, engine.RuleRequired), true
	}
	if b.Optional(input) {
		return FieldError{}, false
	}

	length := utf8.RuneCountInString(value)
	for _, rule := range orderedRules(rules) {
		ruleValue := rules[rule]
		switch rule {
		case engine.RuleRequired:
			continue
		case engine.RuleMinLength:
			if bound, ok := toInt(ruleValue); ok && length < bound {
				return b.failure(methods, field, rule), true
			}
		case engine.RuleMaxLength:
			if bound, ok := toInt(ruleValue); ok && length > bound {
				return b.failure(methods, field, rule), true
			}
		default:
			if enabled, ok := ruleValue.(bool); ok && !enabled {
				continue
			}
			method, ok := methods[rule]
			if !ok {
				b.owner.logger.Debug("server engine: no method for rule %s on %s", rule, field)
				continue
			}
			if !method.Predicate(b, value, input) {
				return b.failure(methods, field, rule), true
			}
		}
	}
	return FieldError{}, false
}

func (b *Binding) failure(methods map[string]engine.Method, field, rule string) FieldError {
	msg := b.cfg.Messages[field][rule]
	if msg == "" {
		msg = methods[rule].DefaultMessage
	}
	return FieldError{Field: field, Rule: rule, Message: msg}
}

func orderedRules(rules engine.FieldRules) []string {
	builtin := []string{engine.RuleRequired, engine.RuleMinLength, engine.RuleMaxLength}
	out := make([]string, 0, len(rules))
	for _, name := range builtin {
		if _, ok := rules[name]; ok {
			out = append(out, name)
		}
	}
	var custom []string
	for name := range rules {
		switch name {
		case engine.RuleRequired, engine.RuleMinLength, engine.RuleMaxLength:
			continue
		}
		custom = append(custom, name)
	}
	sort.Strings(custom)
	return append(out, custom...)
}

func toInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func cloneConfig(cfg engine.BindConfig) engine.BindConfig {
	out := cfg
	out.Fields = append([]string(nil), cfg.Fields...)
	out.Rules = make(map[string]engine.FieldRules, len(cfg.Rules))
	for field, rules := range cfg.Rules {
		out.Rules[field] = maps.Clone(rules)
	}
	out.Messages = make(map[string]engine.FieldMessages, len(cfg.Messages))
	for field, messages := range cfg.Messages {
		out.Messages[field] = maps.Clone(messages)
	}
	return out
}

func errBindingNotFound(selector string) error {
	return errors.New("no validation bound to form", errors.CategoryBadInput).
		WithTextCode("BINDING_NOT_FOUND").
		WithMetadata(map[string]any{"selector": selector})
}
