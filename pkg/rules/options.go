package rules

import (
	"github.com/goliatone/go-formfilter/pkg/i18n"
	"github.com/goliatone/go-formfilter/pkg/logging"
)

// Option configures Compile.
type Option func(*config)

type config struct {
	translator i18n.Translator
	locale     string
	logger     logging.Logger
}

func newConfig(opts []Option) config {
	cfg := config{
		translator: i18n.Default(),
		logger:     logging.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithTranslator resolves default messages through t. A nil translator keeps
// the built-in English strings.
func WithTranslator(t i18n.Translator) Option {
	return func(cfg *config) {
		cfg.translator = t
	}
}

// WithLocale selects the locale default messages are resolved for.
func WithLocale(locale string) Option {
	return func(cfg *config) {
		cfg.locale = locale
	}
}

// WithLogger routes compile traces to logger.
func WithLogger(logger logging.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logging.OrNop(logger)
	}
}
