package script

import (
	"encoding/json"
	"io"
	"io/fs"
	"maps"
	"regexp"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/goliatone/go-errors"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formfilter/pkg/engine"
	"github.com/goliatone/go-formfilter/pkg/logging"
)

const (
	bootstrapTemplate = "bootstrap.js.tpl"
	teardownTemplate  = "teardown.js.tpl"
)

// Option configures an Engine.
type Option func(*config)

type config struct {
	templates fs.FS
	policy    *bluemonday.Policy
	logger    logging.Logger
}

// WithTemplates loads bootstrap.js.tpl and teardown.js.tpl from files instead
// of the embedded defaults.
func WithTemplates(files fs.FS) Option {
	return func(cfg *config) {
		if files != nil {
			cfg.templates = files
		}
	}
}

// WithSanitizer replaces the strict policy applied to every message.
func WithSanitizer(policy *bluemonday.Policy) Option {
	return func(cfg *config) {
		if policy != nil {
			cfg.policy = policy
		}
	}
}

// WithLogger routes binding traces to logger.
func WithLogger(logger logging.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logging.OrNop(logger)
	}
}

// Engine records methods and bindings and renders them as jQuery Validation
// bootstrap code. Go predicates cannot run in the browser, so only methods
// carrying a Pattern are emitted.
type Engine struct {
	mu        sync.Mutex
	bootstrap *pongo2.Template
	teardown  *pongo2.Template
	policy    *bluemonday.Policy
	logger    logging.Logger

	methods  []engine.Method
	bindings map[string]*Binding
	order    []string
}

var _ engine.Engine = (*Engine)(nil)

// New loads the templates and returns an empty Engine.
func New(opts ...Option) (*Engine, error) {
	cfg := config{
		templates: TemplatesFS(),
		policy:    bluemonday.StrictPolicy(),
		logger:    logging.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	set := pongo2.NewSet("formfilter", pongo2.NewFSLoader(cfg.templates))
	bootstrap, err := set.FromFile(bootstrapTemplate)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryOperation, "failed to load bootstrap template").
			WithTextCode("TEMPLATE_LOAD_FAILED").
			WithMetadata(map[string]any{"template": bootstrapTemplate})
	}
	teardown, err := set.FromFile(teardownTemplate)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryOperation, "failed to load teardown template").
			WithTextCode("TEMPLATE_LOAD_FAILED").
			WithMetadata(map[string]any{"template": teardownTemplate})
	}

	return &Engine{
		bootstrap: bootstrap,
		teardown:  teardown,
		policy:    cfg.policy,
		logger:    cfg.logger,
		bindings:  make(map[string]*Binding),
	}, nil
}

// AddMethod records m, replacing a method with the same name in place.
func (e *Engine) AddMethod(m engine.Method) {
	name := strings.TrimSpace(m.Name)
	if name == "" {
		return
	}
	if m.Pattern == nil {
		e.logger.Error("script engine: method %s has no pattern and cannot be emitted", name)
		return
	}
	m.Name = name
	m.DefaultMessage = e.sanitize(m.DefaultMessage)

	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.methods {
		if e.methods[i].Name == name {
			e.methods[i] = m
			return
		}
	}
	e.methods = append(e.methods, m)
}

// Bind records cfg for selector with every message sanitised.
func (e *Engine) Bind(selector string, cfg engine.BindConfig) (engine.Validator, error) {
	key := strings.TrimSpace(selector)
	if key == "" {
		return nil, errors.New("form selector is required", errors.CategoryBadInput).
			WithTextCode("SELECTOR_MISSING")
	}

	binding := &Binding{
		selector:     key,
		owner:        e,
		rules:        make(map[string]engine.FieldRules, len(cfg.Rules)),
		messages:     make(map[string]engine.FieldMessages, len(cfg.Messages)),
		errorElement: firstNonEmpty(cfg.ErrorElement, engine.DefaultErrorElement),
		errorClass:   firstNonEmpty(cfg.ErrorClass, engine.DefaultErrorClass),
	}
	for field, rules := range cfg.Rules {
		binding.rules[field] = maps.Clone(rules)
	}
	for field, messages := range cfg.Messages {
		clean := make(engine.FieldMessages, len(messages))
		for rule, msg := range messages {
			clean[rule] = e.sanitize(msg)
		}
		binding.messages[field] = clean
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.bindings[key]; !exists {
		e.order = append(e.order, key)
	}
	e.bindings[key] = binding
	e.logger.Info("script engine: bound %s", key)
	return binding, nil
}

// Lookup returns the active binding for selector.
func (e *Engine) Lookup(selector string) (engine.Validator, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	binding, ok := e.bindings[strings.TrimSpace(selector)]
	if !ok {
		return nil, false
	}
	return binding, true
}

// Render writes the bootstrap script for every method and active binding.
func (e *Engine) Render(w io.Writer) error {
	e.mu.Lock()
	ctx, err := e.bootstrapContext()
	e.mu.Unlock()
	if err != nil {
		return err
	}
	if err := e.bootstrap.ExecuteWriter(ctx, w); err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "failed to render bootstrap script").
			WithTextCode("RENDER_FAILED")
	}
	return nil
}

// RenderTeardown writes the script that detaches the validator from selector.
// The generated code is itself a no-op when nothing is bound in the page.
func (e *Engine) RenderTeardown(selector string, w io.Writer) error {
	ctx := pongo2.Context{
		"selector":       jsString(strings.TrimSpace(selector)),
		"validatorKey":   jsString(engine.DataValidator),
		"unobtrusiveKey": jsString(engine.DataUnobtrusiveValidation),
	}
	if err := e.teardown.ExecuteWriter(ctx, w); err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "failed to render teardown script").
			WithTextCode("RENDER_FAILED").
			WithMetadata(map[string]any{"selector": selector})
	}
	return nil
}

func (e *Engine) bootstrapContext() (pongo2.Context, error) {
	methods := make([]map[string]any, 0, len(e.methods))
	for _, m := range e.methods {
		source, flags := jsPattern(m.Pattern)
		methods = append(methods, map[string]any{
			"name":    jsString(m.Name),
			"source":  jsString(source),
			"flags":   jsString(flags),
			"message": jsString(m.DefaultMessage),
		})
	}

	bindings := make([]map[string]any, 0, len(e.order))
	for _, selector := range e.order {
		binding, ok := e.bindings[selector]
		if !ok {
			continue
		}
		rules, err := json.Marshal(binding.rules)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryOperation, "failed to encode rules").
				WithTextCode("ENCODE_FAILED").
				WithMetadata(map[string]any{"selector": selector})
		}
		messages, err := json.Marshal(binding.messages)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryOperation, "failed to encode messages").
				WithTextCode("ENCODE_FAILED").
				WithMetadata(map[string]any{"selector": selector})
		}
		bindings = append(bindings, map[string]any{
			"selector":     jsString(selector),
			"rules":        string(rules),
			"messages":     string(messages),
			"errorElement": jsString(binding.errorElement),
			"errorClass":   jsString(binding.errorClass),
		})
	}

	return pongo2.Context{
		"methods":          methods,
		"bindings":         bindings,
		"invalidClass":     jsString(engine.InvalidClass),
		"errorNodeClass":   jsString(engine.ErrorNodeClass),
		"groupSelector":    jsString(engine.InputGroupSelector),
		"checkboxSelector": jsString(engine.CheckboxSelector),
		"radioSelector":    jsString(engine.RadioSelector),
	}, nil
}

func (e *Engine) release(b *Binding) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if current, ok := e.bindings[b.selector]; !ok || current != b {
		return
	}
	delete(e.bindings, b.selector)
	for i, selector := range e.order {
		if selector == b.selector {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	e.logger.Info("script engine: released %s", b.selector)
}

func (e *Engine) sanitize(msg string) string {
	if msg == "" {
		return ""
	}
	return strings.TrimSpace(e.policy.Sanitize(msg))
}

// Binding is the Validator returned by Engine.Bind. Emptiness checks happen in
// the browser, so Optional only mirrors the default blank-value rule.
type Binding struct {
	selector     string
	owner        *Engine
	rules        map[string]engine.FieldRules
	messages     map[string]engine.FieldMessages
	errorElement string
	errorClass   string
}

var _ engine.Validator = (*Binding)(nil)

func (b *Binding) Optional(element engine.Element) bool {
	return engine.Optional(element)
}

// Destroy drops the binding from subsequent renders.
func (b *Binding) Destroy() error {
	if b == nil || b.owner == nil {
		return nil
	}
	b.owner.release(b)
	return nil
}

var inlineFlags = regexp.MustCompile(`^\(\?([ims]+)\)`)

// jsPattern converts a leading Go inline flag group, which JavaScript RegExp
// rejects, into RegExp flags.
func jsPattern(re *regexp.Regexp) (string, string) {
	if re == nil {
		return "", ""
	}
	source := re.String()
	match := inlineFlags.FindStringSubmatch(source)
	if match == nil {
		return source, ""
	}
	return source[len(match[0]):], match[1]
}

// jsString encodes s as a JavaScript string literal. json.Marshal escapes <,
// > and & so the literal is safe inside a script element.
func jsString(s string) string {
	encoded, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(encoded)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
