package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	formfilter "github.com/goliatone/go-formfilter"
	"github.com/goliatone/go-formfilter/internal/cliconfig"
	"github.com/goliatone/go-formfilter/pkg/engine"
	"github.com/goliatone/go-formfilter/pkg/engine/prompt"
	"github.com/goliatone/go-formfilter/pkg/engine/script"
	"github.com/goliatone/go-formfilter/pkg/engine/server"
	"github.com/goliatone/go-formfilter/pkg/filter"
	"github.com/goliatone/go-formfilter/pkg/logging"
	pkgopenapi "github.com/goliatone/go-formfilter/pkg/openapi"
	"github.com/goliatone/go-formfilter/pkg/overrides"
	"github.com/goliatone/go-formfilter/pkg/rules"
)

const defaultHTTPTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr, nil); err != nil {
		fmt.Fprintf(os.Stderr, "formfilter-cli: %v\n", err)
		os.Exit(1)
	}
}

// run executes the CLI. driver is only used with --interactive; nil selects
// the terminal driver.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, driver prompt.Driver) error {
	flags := cliconfig.NewFlagSet("formfilter-cli")
	flags.SetOutput(stderr)
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := cliconfig.Load(flags)
	if err != nil {
		return err
	}

	logger := logging.NewZerolog(stderr, "formfilter-cli", cfg.LogLevel)

	req, importer, err := buildRequest(cfg, logger)
	if err != nil {
		return err
	}

	var (
		serverEngine *server.Engine
		scriptEngine *script.Engine
		eng          engine.Engine
	)
	if cfg.Format == cliconfig.FormatScript && !cfg.Interactive {
		scriptEngine, err = script.New(script.WithLogger(logger.Named("script")))
		if err != nil {
			return err
		}
		eng = scriptEngine
	} else {
		serverEngine = server.New(server.WithLogger(logger.Named("server")))
		eng = serverEngine
	}

	prepared, err := formfilter.Prepare(ctx, eng, importer, req,
		filter.WithLocale(cfg.Locale),
		filter.WithErrorElement(cfg.ErrorElement),
		filter.WithErrorClass(cfg.ErrorClass),
		filter.WithLogger(logger.Named("filter")),
	)
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(cfg.Output, stdout)
	if err != nil {
		return err
	}
	defer closeOut()

	switch {
	case cfg.Interactive:
		if driver == nil {
			driver = prompt.NewSurveyDriver(stderr)
		}
		collector := prompt.New(driver, serverEngine, prompt.WithLogger(logger.Named("prompt")))
		values, err := collector.Collect(ctx, prepared.Selector)
		if err != nil {
			return err
		}
		return writeJSON(out, values)
	case scriptEngine != nil:
		return scriptEngine.Render(out)
	default:
		rs := prepared.Filter.Compile(prepared.Document.FieldNames()...)
		return writeJSON(out, newCompiled(prepared.Selector, rs))
	}
}

func buildRequest(cfg cliconfig.Config, logger *logging.ZerologLogger) (formfilter.Request, *pkgopenapi.Importer, error) {
	req := formfilter.Request{Selector: cfg.Selector}
	if cfg.Overrides != "" {
		doc, err := overrides.LoadFile(cfg.Overrides)
		if err != nil {
			return req, nil, err
		}
		if doc.Form != "" && !flagOverridesSelector(cfg) {
			req.Selector = doc.Form
		}
		req.Document = &doc
		return req, nil, nil
	}

	src, err := pkgopenapi.SourceFromLocation(cfg.OpenAPI)
	if err != nil {
		return req, nil, err
	}
	req.Source = src
	req.OperationID = cfg.Operation
	importer := formfilter.NewImporter(
		[]pkgopenapi.LoaderOption{pkgopenapi.WithHTTPFallback(defaultHTTPTimeout)},
		pkgopenapi.WithLogger(logger.Named("openapi")),
	)
	return req, importer, nil
}

// flagOverridesSelector reports whether the selector differs from the default,
// in which case it takes precedence over the document's form.
func flagOverridesSelector(cfg cliconfig.Config) bool {
	def, _ := cliconfig.Defaults()["selector"].(string)
	return cfg.Selector != "" && cfg.Selector != def
}

func openOutput(path string, stdout io.Writer) (io.Writer, func(), error) {
	if path == "" {
		return stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open output: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type compiledMethod struct {
	Name    string `json:"name"`
	Pattern string `json:"pattern"`
	Message string `json:"message"`
}

type compiled struct {
	Selector string                          `json:"selector"`
	Fields   []string                        `json:"fields"`
	Rules    map[string]engine.FieldRules    `json:"rules"`
	Messages map[string]engine.FieldMessages `json:"messages"`
	Methods  []compiledMethod                `json:"methods,omitempty"`
}

func newCompiled(selector string, rs rules.RuleSet) compiled {
	out := compiled{
		Selector: selector,
		Fields:   rs.Fields,
		Rules:    rs.Rules,
		Messages: rs.Messages,
	}
	for _, m := range rs.Methods {
		method := compiledMethod{Name: m.Name, Message: m.DefaultMessage}
		if m.Pattern != nil {
			method.Pattern = m.Pattern.String()
		}
		out.Methods = append(out.Methods, method)
	}
	return out
}
