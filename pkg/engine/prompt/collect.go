package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-formfilter/pkg/engine"
	"github.com/goliatone/go-formfilter/pkg/engine/server"
	"github.com/goliatone/go-formfilter/pkg/logging"
)

// Checker is the part of the server engine the collector relies on.
type Checker interface {
	Fields(selector string) ([]string, bool)
	CheckField(selector, field, value string) (server.FieldError, bool, error)
}

var _ Checker = (*server.Engine)(nil)

// Option configures a Collector.
type Option func(*Collector)

// WithLogger routes collection traces to logger.
func WithLogger(logger logging.Logger) Option {
	return func(c *Collector) {
		c.logger = logging.OrNop(logger)
	}
}

// WithDefaults pre-fills prompts with the given values.
func WithDefaults(values map[string]string) Option {
	return func(c *Collector) {
		c.defaults = values
	}
}

// Collector walks the fields bound to a form and asks for each value,
// re-prompting until the bound rules accept it.
type Collector struct {
	driver   Driver
	checker  Checker
	defaults map[string]string
	logger   logging.Logger
}

// New builds a Collector.
func New(driver Driver, checker Checker, opts ...Option) *Collector {
	c := &Collector{driver: driver, checker: checker, logger: logging.Nop()}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Collect prompts for every field bound to selector in bind order.
func (c *Collector) Collect(ctx context.Context, selector string) (map[string]string, error) {
	if c == nil || c.driver == nil || c.checker == nil {
		return nil, goerrors.New("prompt driver and checker are required", goerrors.CategoryBadInput).
			WithTextCode("PROMPT_NOT_CONFIGURED")
	}
	fields, ok := c.checker.Fields(selector)
	if !ok {
		return nil, goerrors.New("form is not bound", goerrors.CategoryBadInput).
			WithTextCode("BINDING_NOT_FOUND").
			WithMetadata(map[string]any{"selector": selector})
	}

	if err := c.driver.Info(ctx, fmt.Sprintf("Filling %s (%d fields)", selector, len(fields))); err != nil {
		return nil, err
	}

	values := make(map[string]string, len(fields))
	for _, field := range fields {
		value, err := c.driver.Input(ctx, InputConfig{
			Message: c.label(selector, field),
			Default: c.defaults[field],
			Validator: func(answer string) error {
				return c.validate(selector, field, answer)
			},
		})
		if err != nil {
			if errors.Is(err, ErrAborted) {
				return nil, err
			}
			return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "prompt failed").
				WithTextCode("PROMPT_FAILED").
				WithMetadata(map[string]any{"field": field})
		}
		values[field] = value
		c.logger.Debug("prompt: collected %s", field)
	}
	return values, nil
}

func (c *Collector) validate(selector, field, value string) error {
	failure, failed, err := c.checker.CheckField(selector, field, value)
	if err != nil {
		return err
	}
	if failed {
		return errors.New(failure.Message)
	}
	return nil
}

// label marks required fields with an asterisk, detected by a blank check.
func (c *Collector) label(selector, field string) string {
	failure, failed, err := c.checker.CheckField(selector, field, "")
	if err == nil && failed && failure.Rule == engine.RuleRequired {
		return strings.TrimSpace(field) + " *"
	}
	return field
}
