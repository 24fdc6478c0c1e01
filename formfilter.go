// Package formfilter wires the override store, rule compiler and engine
// adapters together for the common flows: replay an override document or an
// OpenAPI operation into a Filter and bind it to a form.
package formfilter

import (
	"context"
	"io/fs"
	"strings"

	"github.com/goliatone/go-errors"

	internalLoader "github.com/goliatone/go-formfilter/internal/openapi/loader"
	"github.com/goliatone/go-formfilter/pkg/engine"
	"github.com/goliatone/go-formfilter/pkg/engine/script"
	"github.com/goliatone/go-formfilter/pkg/filter"
	pkgopenapi "github.com/goliatone/go-formfilter/pkg/openapi"
	"github.com/goliatone/go-formfilter/pkg/overrides"
)

// NewLoader constructs an OpenAPI loader using the internal implementation
// while keeping the concrete type hidden from consumers.
func NewLoader(options ...pkgopenapi.LoaderOption) pkgopenapi.Loader {
	return internalLoader.New(pkgopenapi.NewLoaderOptions(options...))
}

// NewImporter builds an OpenAPI importer backed by NewLoader.
func NewImporter(loaderOptions []pkgopenapi.LoaderOption, options ...pkgopenapi.ImporterOption) *pkgopenapi.Importer {
	return pkgopenapi.NewImporter(NewLoader(loaderOptions...), options...)
}

// ScriptTemplates exposes the built-in bootstrap and teardown templates.
func ScriptTemplates() fs.FS {
	return script.TemplatesFS()
}

// Request selects where the field list and overrides come from. Document wins
// over Source when both are set.
type Request struct {
	Document    *overrides.Document
	Source      pkgopenapi.Source
	OperationID string
	// Selector defaults to the document's form.
	Selector string
}

// Prepared is the outcome of Prepare.
type Prepared struct {
	Filter    *filter.Filter
	Validator engine.Validator
	Document  overrides.Document
	Selector  string
}

// Prepare resolves the request into a document, replays it into a new Filter
// over eng and binds the filter to the selector.
func Prepare(ctx context.Context, eng engine.Engine, importer *pkgopenapi.Importer, req Request, options ...filter.Option) (Prepared, error) {
	doc, err := resolveDocument(ctx, importer, req)
	if err != nil {
		return Prepared{}, err
	}

	selector := strings.TrimSpace(req.Selector)
	if selector == "" {
		selector = doc.Form
	}

	f := filter.New(eng, options...)
	if err := doc.Apply(f.Store()); err != nil {
		return Prepared{}, err
	}

	validator, err := f.InitDescriptor(selector, doc)
	if err != nil {
		return Prepared{}, err
	}

	return Prepared{Filter: f, Validator: validator, Document: doc, Selector: selector}, nil
}

func resolveDocument(ctx context.Context, importer *pkgopenapi.Importer, req Request) (overrides.Document, error) {
	if req.Document != nil {
		return *req.Document, nil
	}
	if req.Source == nil {
		return overrides.Document{}, errors.New("document or OpenAPI source is required", errors.CategoryBadInput).
			WithTextCode("REQUEST_SOURCE_MISSING")
	}
	if importer == nil {
		importer = NewImporter(nil)
	}
	return importer.Import(ctx, req.Source, req.OperationID)
}
