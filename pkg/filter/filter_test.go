package filter

import (
	stderrors "errors"
	"regexp"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formfilter/pkg/engine"
	"github.com/goliatone/go-formfilter/pkg/i18n"
	"github.com/goliatone/go-formfilter/pkg/overrides"
)

type fakeValidator struct {
	selector  string
	destroyed int
	owner     *fakeEngine
	err       error
}

func (v *fakeValidator) Optional(element engine.Element) bool {
	return engine.Optional(element)
}

func (v *fakeValidator) Destroy() error {
	if v.err != nil {
		return v.err
	}
	v.destroyed++
	delete(v.owner.bound, v.selector)
	return nil
}

type fakeEngine struct {
	methods map[string]engine.Method
	added   []string
	bound   map[string]*fakeValidator
	configs map[string]engine.BindConfig
	bindErr error
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		methods: map[string]engine.Method{},
		bound:   map[string]*fakeValidator{},
		configs: map[string]engine.BindConfig{},
	}
}

func (e *fakeEngine) AddMethod(m engine.Method) {
	e.methods[m.Name] = m
	e.added = append(e.added, m.Name)
}

func (e *fakeEngine) Bind(selector string, cfg engine.BindConfig) (engine.Validator, error) {
	if e.bindErr != nil {
		return nil, e.bindErr
	}
	v := &fakeValidator{selector: selector, owner: e}
	e.bound[selector] = v
	e.configs[selector] = cfg
	return v, nil
}

func (e *fakeEngine) Lookup(selector string) (engine.Validator, bool) {
	v, ok := e.bound[selector]
	if !ok {
		return nil, false
	}
	return v, true
}

type fakeForm struct {
	data map[string]any
}

func (f *fakeForm) Len() int {
	if f == nil {
		return 0
	}
	return 1
}

func (f *fakeForm) AddClass(string) engine.Selection { return f }

func (f *fakeForm) RemoveClass(string) engine.Selection { return f }

func (f *fakeForm) Data(key string) (any, bool) {
	v, ok := f.data[key]
	return v, ok
}

func (f *fakeForm) RemoveData(key string) engine.Selection {
	delete(f.data, key)
	return f
}

func (f *fakeForm) Parent(string) engine.Selection { return f }

func (f *fakeForm) Is(string) bool { return false }

func (f *fakeForm) InsertAfter(engine.Selection) engine.Selection { return f }

type fakeDOM map[string]*fakeForm

func (d fakeDOM) Query(selector string) engine.Selection {
	form, ok := d[selector]
	if !ok {
		return (*fakeForm)(nil)
	}
	return form
}

func TestFilter_InitBindsCompiledRules(t *testing.T) {
	eng := newFakeEngine()
	f := New(eng)
	f.MarkOptional(map[string]overrides.RequiredSpec{"nickname": overrides.Optional()})
	f.AddPattern(map[string]overrides.PatternSpec{"zip": {Pattern: regexp.MustCompile(`^\d{5}$`)}})
	f.AddMinLength(map[string]overrides.MinLengthSpec{"email": {MinLength: 5}})
	f.AddMaxLength(map[string]overrides.MaxLengthSpec{"email": {MaxLength: 64}})
	f.AddMessages(map[string]overrides.MessagesSpec{"email": {Messages: map[string]string{"minlength": "Too short!"}}})

	v, err := f.Init("#signup", "email", "zip", "nickname")
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if v == nil {
		t.Fatalf("expected validator handle")
	}

	cfg := eng.configs["#signup"]
	if diff := cmp.Diff([]string{"email", "zip", "nickname"}, cfg.Fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	wantRules := map[string]engine.FieldRules{
		"email":    {"required": true, "minlength": 5, "maxlength": 64},
		"zip":      {"required": true, "zip_pattern": true},
		"nickname": {"required": false},
	}
	if diff := cmp.Diff(wantRules, cfg.Rules); diff != "" {
		t.Fatalf("rules mismatch (-want +got):\n%s", diff)
	}
	if cfg.Messages["email"]["minlength"] != "Too short!" {
		t.Fatalf("expected custom minlength message, got %q", cfg.Messages["email"]["minlength"])
	}
	if cfg.ErrorElement != "div" || cfg.ErrorClass != engine.DefaultErrorClass {
		t.Fatalf("expected default presentation, got %q / %q", cfg.ErrorElement, cfg.ErrorClass)
	}
	if _, ok := eng.methods["zip_pattern"]; !ok {
		t.Fatalf("expected zip_pattern to be registered with the engine")
	}
}

func TestFilter_RepeatedInitReplacesMethods(t *testing.T) {
	eng := newFakeEngine()
	f := New(eng)
	f.AddPattern(map[string]overrides.PatternSpec{"zip": {Pattern: regexp.MustCompile(`^\d+$`)}})

	if _, err := f.Init("#a", "zip"); err != nil {
		t.Fatalf("first init: %v", err)
	}
	f.AddPattern(map[string]overrides.PatternSpec{"zip": {Pattern: regexp.MustCompile(`^\d{5}$`), Message: "Five"}})
	if _, err := f.Init("#a", "zip"); err != nil {
		t.Fatalf("second init: %v", err)
	}

	if len(eng.methods) != 1 {
		t.Fatalf("expected a single method entry, got %d", len(eng.methods))
	}
	if got := eng.methods["zip_pattern"].DefaultMessage; got != "Five" {
		t.Fatalf("expected latest registration to win, got %q", got)
	}
}

func TestFilter_InitDescriptor(t *testing.T) {
	eng := newFakeEngine()
	f := New(eng)

	if _, err := f.InitDescriptor("#ordered", Fields{"b", "a"}); err != nil {
		t.Fatalf("init ordered: %v", err)
	}
	if diff := cmp.Diff([]string{"b", "a"}, eng.configs["#ordered"].Fields); diff != "" {
		t.Fatalf("ordered fields mismatch (-want +got):\n%s", diff)
	}

	if _, err := f.InitDescriptor("#map", MapDescriptor{"b": nil, "a": map[string]any{"label": "A"}}); err != nil {
		t.Fatalf("init map: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b"}, eng.configs["#map"].Fields); diff != "" {
		t.Fatalf("map fields mismatch (-want +got):\n%s", diff)
	}

	doc, err := overrides.LoadDocument(strings.NewReader("fields:\n  zeta: {}\n  alpha: {}\n"))
	if err != nil {
		t.Fatalf("load document: %v", err)
	}
	if _, err := f.InitDescriptor("#doc", doc); err != nil {
		t.Fatalf("init document: %v", err)
	}
	if diff := cmp.Diff([]string{"zeta", "alpha"}, eng.configs["#doc"].Fields); diff != "" {
		t.Fatalf("document fields mismatch (-want +got):\n%s", diff)
	}
}

func TestFilter_InitErrors(t *testing.T) {
	if _, err := New(nil).Init("#f", "a"); err == nil {
		t.Fatalf("expected error without engine")
	}

	eng := newFakeEngine()
	eng.bindErr = stderrors.New("no such form")
	_, err := New(eng).Init("#missing", "a")
	if err == nil {
		t.Fatalf("expected bind error")
	}
	if !stderrors.Is(err, eng.bindErr) {
		t.Fatalf("expected bind error to be wrapped, got %v", err)
	}
}

func TestFilter_DestroyWithDOM(t *testing.T) {
	eng := newFakeEngine()
	form := &fakeForm{data: map[string]any{}}
	f := New(eng, WithDOM(fakeDOM{"#signup": form}))

	v, err := f.Init("#signup", "email")
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	form.data[engine.DataValidator] = v
	form.data[engine.DataUnobtrusiveValidation] = true

	if err := f.Destroy("#signup"); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	if len(form.data) != 0 {
		t.Fatalf("expected binder data to be cleared, got %v", form.data)
	}
	if v.(*fakeValidator).destroyed != 1 {
		t.Fatalf("expected validator to be destroyed once")
	}

	if err := f.Destroy("#signup"); err != nil {
		t.Fatalf("second destroy should be a no-op, got %v", err)
	}
	if v.(*fakeValidator).destroyed != 1 {
		t.Fatalf("expected destroy to be idempotent")
	}
}

func TestFilter_DestroyNoops(t *testing.T) {
	eng := newFakeEngine()
	f := New(eng, WithDOM(fakeDOM{"#bare": {data: map[string]any{}}}))

	for _, selector := range []string{"#nothing", "#bare", ""} {
		if err := f.Destroy(selector); err != nil {
			t.Fatalf("destroy %q: %v", selector, err)
		}
	}

	if err := New(eng).Destroy("#never-bound"); err != nil {
		t.Fatalf("destroy without dom: %v", err)
	}
}

func TestFilter_DestroyWithoutDOMUsesEngine(t *testing.T) {
	eng := newFakeEngine()
	f := New(eng)
	v, err := f.Init("#f", "a")
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := f.Destroy("#f"); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	if v.(*fakeValidator).destroyed != 1 {
		t.Fatalf("expected engine validator to be destroyed")
	}
}

func TestFilter_DestroyError(t *testing.T) {
	eng := newFakeEngine()
	f := New(eng)
	v, _ := f.Init("#f", "a")
	v.(*fakeValidator).err = stderrors.New("detach failed")

	if err := f.Destroy("#f"); err == nil {
		t.Fatalf("expected destroy error to surface")
	}
}

func TestFilter_OptionsShapeBindConfig(t *testing.T) {
	eng := newFakeEngine()
	var highlighted bool
	f := New(eng,
		WithErrorElement("span"),
		WithErrorClass("error"),
		WithHighlight(func(engine.Selection) { highlighted = true }, nil),
		WithLocale("es"),
	)
	if _, err := f.Init("#f", "a"); err != nil {
		t.Fatalf("init: %v", err)
	}
	cfg := eng.configs["#f"]
	if cfg.ErrorElement != "span" || cfg.ErrorClass != "error" {
		t.Fatalf("unexpected presentation %q / %q", cfg.ErrorElement, cfg.ErrorClass)
	}
	cfg.Highlight(nil)
	if !highlighted {
		t.Fatalf("expected custom highlight callback")
	}
	if cfg.Unhighlight == nil || cfg.ErrorPlacement == nil {
		t.Fatalf("expected default callbacks to remain")
	}
	if cfg.Messages["a"]["required"] != "Este campo es obligatorio." {
		t.Fatalf("expected localised required message, got %q", cfg.Messages["a"]["required"])
	}
}

func TestFilter_CompileDoesNotBind(t *testing.T) {
	eng := newFakeEngine()
	f := New(eng)
	rs := f.Compile("a")
	if rs.Rules["a"]["required"] != true {
		t.Fatalf("expected compiled defaults")
	}
	if len(eng.bound) != 0 || len(eng.added) != 0 {
		t.Fatalf("compile must not touch the engine")
	}
}

func TestFilter_OwnCatalogDoesNotLeak(t *testing.T) {
	custom := i18n.NewCatalog()
	if err := custom.Set("en", i18n.KeyRequired, "Fill this in."); err != nil {
		t.Fatalf("set: %v", err)
	}

	customised := New(newFakeEngine(), WithTranslator(custom)).Compile("a")
	shared := New(newFakeEngine()).Compile("a")

	if got := customised.Messages["a"]["required"]; got != "Fill this in." {
		t.Fatalf("unexpected customised message %q", got)
	}
	if got := shared.Messages["a"]["required"]; got != "This field is required." {
		t.Fatalf("shared catalog changed: %q", got)
	}
}
