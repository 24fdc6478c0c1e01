package filter

import (
	"sort"
	"strings"

	"github.com/goliatone/go-errors"

	"github.com/goliatone/go-formfilter/pkg/engine"
	"github.com/goliatone/go-formfilter/pkg/overrides"
	"github.com/goliatone/go-formfilter/pkg/rules"
)

// Descriptor supplies the authoritative field list for a form.
type Descriptor interface {
	FieldNames() []string
}

// Fields is an ordered Descriptor.
type Fields []string

func (f Fields) FieldNames() []string {
	return append([]string(nil), f...)
}

// MapDescriptor adapts a field-name keyed map. Go maps carry no order, so
// field names are sorted; use Fields or overrides.Document to keep an explicit
// order. Values are ignored.
type MapDescriptor map[string]any

func (m MapDescriptor) FieldNames() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Filter owns one override store and hands compiled rule sets to an engine.
// It is not safe for concurrent use.
type Filter struct {
	store  *overrides.Store
	engine engine.Engine
	cfg    config
}

// New builds a Filter that binds through eng.
func New(eng engine.Engine, opts ...Option) *Filter {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Filter{
		store:  overrides.NewStore(overrides.WithLogger(cfg.logger)),
		engine: eng,
		cfg:    cfg,
	}
}

// Store exposes the underlying override store, e.g. for Document.Apply.
func (f *Filter) Store() *overrides.Store {
	return f.store
}

// MarkOptional marks fields whose fragment says Required=false as optional.
func (f *Filter) MarkOptional(specs map[string]overrides.RequiredSpec) {
	f.store.MarkOptional(specs)
}

// AddPattern registers pattern overrides.
func (f *Filter) AddPattern(specs map[string]overrides.PatternSpec) {
	f.store.AddPattern(specs)
}

// AddMinLength registers minimum length overrides.
func (f *Filter) AddMinLength(specs map[string]overrides.MinLengthSpec) {
	f.store.AddMinLength(specs)
}

// AddMaxLength registers maximum length overrides.
func (f *Filter) AddMaxLength(specs map[string]overrides.MaxLengthSpec) {
	f.store.AddMaxLength(specs)
}

// AddMessages merges custom messages.
func (f *Filter) AddMessages(specs map[string]overrides.MessagesSpec) {
	f.store.AddMessages(specs)
}

// Compile returns the rule set for fields without binding it.
func (f *Filter) Compile(fields ...string) rules.RuleSet {
	return rules.Compile(f.store, fields,
		rules.WithTranslator(f.cfg.translator),
		rules.WithLocale(f.cfg.locale),
		rules.WithLogger(f.cfg.logger),
	)
}

// Init compiles fields, registers the synthesised methods with the engine and
// binds the result to selector.
func (f *Filter) Init(selector string, fields ...string) (engine.Validator, error) {
	if f.engine == nil {
		return nil, errors.New("validation engine is not configured", errors.CategoryBadInput).
			WithTextCode("ENGINE_MISSING")
	}

	rs := f.Compile(fields...)
	for _, method := range rs.Methods {
		f.engine.AddMethod(method)
	}

	validator, err := f.engine.Bind(selector, rs.BindConfig(f.cfg.base))
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryOperation, "failed to bind form validation").
			WithTextCode("BIND_FAILED").
			WithMetadata(map[string]any{"selector": selector, "fields": len(fields)})
	}
	f.cfg.logger.Debug("filter: bound %s with %d fields and %d methods", selector, len(fields), len(rs.Methods))
	return validator, nil
}

// InitDescriptor is Init with the field list taken from d.
func (f *Filter) InitDescriptor(selector string, d Descriptor) (engine.Validator, error) {
	var fields []string
	if d != nil {
		fields = d.FieldNames()
	}
	return f.Init(selector, fields...)
}

// Destroy detaches the validator bound to selector. It is a no-op when the
// selector matches nothing or carries no active validator.
func (f *Filter) Destroy(selector string) error {
	if f.engine == nil || strings.TrimSpace(selector) == "" {
		return nil
	}

	if f.cfg.dom != nil {
		form := f.cfg.dom.Query(selector)
		if form == nil || form.Len() == 0 {
			return nil
		}
		if _, ok := form.Data(engine.DataValidator); !ok {
			return nil
		}
		form.RemoveData(engine.DataValidator)
		form.RemoveData(engine.DataUnobtrusiveValidation)
	}

	validator, ok := f.engine.Lookup(selector)
	if !ok {
		return nil
	}
	if err := validator.Destroy(); err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "failed to destroy form validation").
			WithTextCode("DESTROY_FAILED").
			WithMetadata(map[string]any{"selector": selector})
	}
	f.cfg.logger.Debug("filter: destroyed %s", selector)
	return nil
}
