package filter

import (
	"github.com/goliatone/go-formfilter/pkg/engine"
	"github.com/goliatone/go-formfilter/pkg/i18n"
	"github.com/goliatone/go-formfilter/pkg/logging"
)

// Option configures a Filter.
type Option func(*config)

type config struct {
	dom        engine.DOM
	base       engine.BindConfig
	translator i18n.Translator
	locale     string
	logger     logging.Logger
}

func defaultConfig() config {
	return config{
		base:       engine.DefaultBindConfig(),
		translator: i18n.Default(),
		logger:     logging.Nop(),
	}
}

// WithDOM lets Destroy clear binder data from the form element before tearing
// the validator down.
func WithDOM(dom engine.DOM) Option {
	return func(cfg *config) {
		cfg.dom = dom
	}
}

// WithErrorElement overrides the tag used for error nodes.
func WithErrorElement(tag string) Option {
	return func(cfg *config) {
		if tag != "" {
			cfg.base.ErrorElement = tag
		}
	}
}

// WithErrorClass overrides the class list applied to error nodes.
func WithErrorClass(class string) Option {
	return func(cfg *config) {
		if class != "" {
			cfg.base.ErrorClass = class
		}
	}
}

// WithHighlight replaces the highlight and unhighlight callbacks. Nil
// callbacks keep the defaults.
func WithHighlight(highlight, unhighlight func(engine.Selection)) Option {
	return func(cfg *config) {
		if highlight != nil {
			cfg.base.Highlight = highlight
		}
		if unhighlight != nil {
			cfg.base.Unhighlight = unhighlight
		}
	}
}

// WithErrorPlacement replaces the error placement callback.
func WithErrorPlacement(place func(errorNode, element engine.Selection)) Option {
	return func(cfg *config) {
		if place != nil {
			cfg.base.ErrorPlacement = place
		}
	}
}

// WithTranslator resolves default messages through t. Filters share
// i18n.Default() otherwise; pass an i18n.NewCatalog to customise messages
// without affecting other filters.
func WithTranslator(t i18n.Translator) Option {
	return func(cfg *config) {
		cfg.translator = t
	}
}

// WithLocale selects the locale for default messages.
func WithLocale(locale string) Option {
	return func(cfg *config) {
		cfg.locale = locale
	}
}

// WithLogger routes store, compile and binding traces to logger.
func WithLogger(logger logging.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logging.OrNop(logger)
	}
}
