// Package cliconfig resolves formfilter-cli settings from defaults, an
// optional config file and command-line flags, in that order of precedence.
package cliconfig

import (
	"path/filepath"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/goliatone/go-formfilter/pkg/engine"
)

const delimiter = "."

// Output formats.
const (
	FormatJSON   = "json"
	FormatScript = "script"
)

// Config holds the resolved CLI settings.
type Config struct {
	Overrides    string `koanf:"overrides"`
	OpenAPI      string `koanf:"openapi"`
	Operation    string `koanf:"operation"`
	Format       string `koanf:"format"`
	Locale       string `koanf:"locale"`
	Selector     string `koanf:"selector"`
	Output       string `koanf:"output"`
	Interactive  bool   `koanf:"interactive"`
	LogLevel     string `koanf:"log-level"`
	ErrorElement string `koanf:"error-element"`
	ErrorClass   string `koanf:"error-class"`
}

// Defaults returns the baseline configuration.
func Defaults() map[string]any {
	return map[string]any{
		"format":        FormatJSON,
		"locale":        "en",
		"selector":      "form",
		"log-level":     "warn",
		"error-element": engine.DefaultErrorElement,
		"error-class":   engine.DefaultErrorClass,
	}
}

// NewFlagSet declares every CLI flag on a fresh FlagSet.
func NewFlagSet(name string) *pflag.FlagSet {
	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.String("config", "", "Path to a YAML or JSON config file")
	flags.String("overrides", "", "Path to an override document (YAML or JSON)")
	flags.String("openapi", "", "OpenAPI document path or URL to import fields from")
	flags.String("operation", "", "Operation ID to import when --openapi is set")
	flags.String("format", FormatJSON, "Output format: json or script")
	flags.String("locale", "en", "Locale used for default messages")
	flags.String("selector", "form", "Form selector to bind")
	flags.StringP("output", "o", "", "Write output to file instead of stdout")
	flags.Bool("interactive", false, "Prompt for each field and check the answers")
	flags.String("log-level", "warn", "Log level: debug, info, warn, error")
	flags.String("error-element", engine.DefaultErrorElement, "Element used for error messages")
	flags.String("error-class", engine.DefaultErrorClass, "Class applied to error messages")
	return flags
}

// Load layers defaults, the --config file (when given) and explicitly set
// flags, then validates the result. flags must already be parsed.
func Load(flags *pflag.FlagSet) (Config, error) {
	if flags == nil {
		return Config{}, errors.New("flagset cannot be nil", errors.CategoryBadInput).
			WithTextCode("NIL_FLAGSET")
	}

	k := koanf.New(delimiter)
	if err := k.Load(confmap.Provider(Defaults(), delimiter), nil); err != nil {
		return Config{}, errors.Wrap(err, errors.CategoryOperation, "failed to load default configuration").
			WithTextCode("DEFAULTS_LOAD_FAILED")
	}

	if path, _ := flags.GetString("config"); strings.TrimSpace(path) != "" {
		if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
			return Config{}, errors.Wrap(err, errors.CategoryOperation, "failed to load configuration file").
				WithTextCode("FILE_LOAD_FAILED").
				WithMetadata(map[string]any{"path": path})
		}
	}

	if err := k.Load(posflag.Provider(flags, delimiter, k), nil); err != nil {
		return Config{}, errors.Wrap(err, errors.CategoryOperation, "failed to load configuration from posix flags").
			WithTextCode("FLAGS_LOAD_FAILED")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, errors.Wrap(err, errors.CategoryOperation, "failed to unmarshal configuration").
			WithTextCode("UNMARSHAL_FAILED")
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func parserFor(path string) koanf.Parser {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return json.Parser()
	}
	return yaml.Parser()
}

func (c *Config) normalize() {
	c.Overrides = strings.TrimSpace(c.Overrides)
	c.OpenAPI = strings.TrimSpace(c.OpenAPI)
	c.Operation = strings.TrimSpace(c.Operation)
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	c.Locale = strings.TrimSpace(c.Locale)
	c.Selector = strings.TrimSpace(c.Selector)
	c.Output = strings.TrimSpace(c.Output)
}

// Validate checks that exactly one field source is configured and that the
// output format is known.
func (c Config) Validate() error {
	switch {
	case c.Overrides == "" && c.OpenAPI == "":
		return errors.New("either overrides or openapi is required", errors.CategoryValidation).
			WithTextCode("SOURCE_MISSING")
	case c.Overrides != "" && c.OpenAPI != "":
		return errors.New("overrides and openapi are mutually exclusive", errors.CategoryValidation).
			WithTextCode("SOURCE_CONFLICT")
	case c.OpenAPI != "" && c.Operation == "":
		return errors.New("operation is required with openapi", errors.CategoryValidation).
			WithTextCode("OPERATION_MISSING")
	}

	if c.Format != FormatJSON && c.Format != FormatScript {
		return errors.New("unsupported output format", errors.CategoryValidation).
			WithTextCode("FORMAT_INVALID").
			WithMetadata(map[string]any{"format": c.Format})
	}
	return nil
}
