package i18n

import (
	"errors"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Translator resolves a message key for a locale. Args follow fmt verbs in the
// stored message. Length messages take the bound as %s so it is never
// grouped by the locale ("1000", not "1,000").
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// Message keys for the default validation messages.
const (
	KeyRequired  = "validation.required"
	KeyPattern   = "validation.pattern"
	KeyMinLength = "validation.minlength"
	KeyMaxLength = "validation.maxlength"
)

// ErrMissingTranslation is returned for keys English does not define.
var ErrMissingTranslation = errors.New("i18n: missing translation")

var english = map[string]string{
	KeyRequired:  "This field is required.",
	KeyPattern:   "Invalid format",
	KeyMinLength: "Please enter at least %s characters.",
	KeyMaxLength: "Please enter no more than %s characters.",
}

var spanish = map[string]string{
	KeyRequired:  "Este campo es obligatorio.",
	KeyPattern:   "Formato no válido",
	KeyMinLength: "Por favor, no escribas menos de %s caracteres.",
	KeyMaxLength: "Por favor, no escribas más de %s caracteres.",
}

// Catalog is a Translator backed by golang.org/x/text message catalogs. Keys
// missing from the matched language resolve from English.
type Catalog struct {
	mu      sync.RWMutex
	builder *catalog.Builder
	keys    map[language.Tag]map[string]struct{}
	tags    []language.Tag
	matcher language.Matcher
}

var _ Translator = (*Catalog)(nil)

// NewCatalog returns a catalog seeded with the English and Spanish defaults.
func NewCatalog() *Catalog {
	c := &Catalog{
		builder: catalog.NewBuilder(catalog.Fallback(language.English)),
		keys:    make(map[language.Tag]map[string]struct{}),
	}
	c.load(language.English, english)
	c.load(language.Spanish, spanish)
	return c
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the process-wide seeded catalog used by every Filter that
// is not given its own translator. Set on it changes defaults globally; build
// a NewCatalog and pass it through filter.WithTranslator to customise
// messages for one Filter.
func Default() *Catalog {
	defaultOnce.Do(func() {
		defaultCatalog = NewCatalog()
	})
	return defaultCatalog
}

// Set registers or replaces the message stored for key in locale.
func (c *Catalog) Set(locale, key, msg string) error {
	if c == nil {
		return errors.New("i18n: catalog is nil")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("i18n: key is required")
	}
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.builder.SetString(tag, key, msg); err != nil {
		return err
	}
	c.markKey(tag, key)
	c.addTag(tag)
	return nil
}

// Translate formats key for the closest supported locale.
func (c *Catalog) Translate(locale, key string, args ...any) (string, error) {
	if c == nil {
		return "", errors.New("i18n: catalog is nil")
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	tag := c.match(locale)
	if !c.hasKey(tag, key) {
		if !c.hasKey(language.English, key) {
			return "", ErrMissingTranslation
		}
		tag = language.English
	}
	printer := message.NewPrinter(tag, message.Catalog(c.builder))
	return printer.Sprintf(key, plainArgs(args)...), nil
}

// plainArgs renders integers with strconv so the printer cannot apply
// locale digit grouping to them.
func plainArgs(args []any) []any {
	if len(args) == 0 {
		return args
	}
	out := make([]any, len(args))
	for i, arg := range args {
		switch v := arg.(type) {
		case int:
			out[i] = strconv.Itoa(v)
		case int64:
			out[i] = strconv.FormatInt(v, 10)
		case uint64:
			out[i] = strconv.FormatUint(v, 10)
		default:
			out[i] = arg
		}
	}
	return out
}

// Match returns the supported language closest to locale.
func (c *Catalog) Match(locale string) language.Tag {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.match(locale)
}

func (c *Catalog) match(locale string) language.Tag {
	trimmed := strings.TrimSpace(locale)
	if trimmed == "" || c.matcher == nil {
		return language.English
	}
	_, idx, _ := c.matcher.Match(language.Make(trimmed))
	if idx < 0 || idx >= len(c.tags) {
		return language.English
	}
	return c.tags[idx]
}

func (c *Catalog) load(tag language.Tag, messages map[string]string) {
	for key, msg := range messages {
		// Seed data is static; SetString only fails on malformed messages.
		_ = c.builder.SetString(tag, key, msg)
		c.markKey(tag, key)
	}
	c.addTag(tag)
}

func (c *Catalog) markKey(tag language.Tag, key string) {
	keys, ok := c.keys[tag]
	if !ok {
		keys = make(map[string]struct{})
		c.keys[tag] = keys
	}
	keys[key] = struct{}{}
}

func (c *Catalog) hasKey(tag language.Tag, key string) bool {
	_, ok := c.keys[tag][key]
	return ok
}

// addTag keeps English first so it is the matcher default.
func (c *Catalog) addTag(tag language.Tag) {
	for _, existing := range c.tags {
		if existing == tag {
			return
		}
	}
	if tag == language.English {
		c.tags = append([]language.Tag{tag}, c.tags...)
	} else {
		c.tags = append(c.tags, tag)
	}
	c.matcher = language.NewMatcher(c.tags)
}
