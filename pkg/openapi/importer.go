package openapi

import (
	"context"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/goliatone/go-errors"

	"github.com/goliatone/go-formfilter/pkg/logging"
	"github.com/goliatone/go-formfilter/pkg/overrides"
)

// MessageExtension lets a property carry the pattern message,
// e.g. `x-formfilter-message: "Five digits"`.
const MessageExtension = "x-formfilter-message"

var requestMediaTypes = []string{
	"application/json",
	"application/x-www-form-urlencoded",
	"multipart/form-data",
}

// ImporterOption configures an Importer.
type ImporterOption func(*Importer)

// WithLogger routes import traces to logger.
func WithLogger(logger logging.Logger) ImporterOption {
	return func(i *Importer) {
		i.logger = logging.OrNop(logger)
	}
}

// WithExternalRefs allows kin-openapi to resolve references outside the
// document.
func WithExternalRefs(allowed bool) ImporterOption {
	return func(i *Importer) {
		i.externalRefs = allowed
	}
}

// Importer turns an operation's request body into an override document.
type Importer struct {
	loader       Loader
	externalRefs bool
	logger       logging.Logger
}

// NewImporter builds an Importer that reads documents through loader.
func NewImporter(loader Loader, opts ...ImporterOption) *Importer {
	i := &Importer{loader: loader, logger: logging.Nop()}
	for _, opt := range opts {
		if opt != nil {
			opt(i)
		}
	}
	return i
}

// Operations lists the operation ids declared by the document, sorted.
// Operations without an id are listed as "<method>:<path>".
func (i *Importer) Operations(ctx context.Context, src Source) ([]string, error) {
	spec, err := i.load(ctx, src)
	if err != nil {
		return nil, err
	}
	ops := collectOperations(spec)
	ids := make([]string, 0, len(ops))
	for id := range ops {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Import loads src and converts the request body of operationID. Properties
// are emitted in name order; read-only properties are skipped.
func (i *Importer) Import(ctx context.Context, src Source, operationID string) (overrides.Document, error) {
	id := strings.TrimSpace(operationID)
	if id == "" {
		return overrides.Document{}, errors.New("operation id is required", errors.CategoryBadInput).
			WithTextCode("OPERATION_MISSING")
	}

	spec, err := i.load(ctx, src)
	if err != nil {
		return overrides.Document{}, err
	}

	op, ok := collectOperations(spec)[id]
	if !ok {
		return overrides.Document{}, errors.New("operation not found", errors.CategoryBadInput).
			WithTextCode("OPERATION_NOT_FOUND").
			WithMetadata(map[string]any{"operation": id, "location": src.Location()})
	}

	schema := requestSchema(op)
	if schema == nil {
		return overrides.Document{}, errors.New("operation has no request body schema", errors.CategoryValidation).
			WithTextCode("REQUEST_BODY_MISSING").
			WithMetadata(map[string]any{"operation": id})
	}

	doc := documentFromSchema(schema)
	i.logger.Info("openapi: imported %d fields from %s", len(doc.Fields), id)
	return doc, nil
}

func (i *Importer) load(ctx context.Context, src Source) (*openapi3.T, error) {
	if i == nil || i.loader == nil {
		return nil, errors.New("OpenAPI loader is not configured", errors.CategoryBadInput).
			WithTextCode("LOADER_MISSING")
	}
	if src == nil {
		return nil, errors.New("OpenAPI source is required", errors.CategoryBadInput).
			WithTextCode("SOURCE_MISSING")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := i.loader.Load(ctx, src)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryOperation, "failed to load OpenAPI document").
			WithTextCode("DOCUMENT_LOAD_FAILED").
			WithMetadata(map[string]any{"location": src.Location(), "kind": string(src.Kind())})
	}
	if len(raw) == 0 {
		return nil, errors.New("OpenAPI document is empty", errors.CategoryValidation).
			WithTextCode("DOCUMENT_EMPTY").
			WithMetadata(map[string]any{"location": src.Location()})
	}

	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: i.externalRefs,
	}
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "failed to parse OpenAPI document").
			WithTextCode("DOCUMENT_PARSE_FAILED").
			WithMetadata(map[string]any{"location": src.Location()})
	}
	i.logger.Debug("openapi: loaded %s", src.Location())
	return spec, nil
}

func collectOperations(spec *openapi3.T) map[string]*openapi3.Operation {
	ops := make(map[string]*openapi3.Operation)
	if spec == nil || spec.Paths == nil {
		return ops
	}
	for path, item := range spec.Paths.Map() {
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			if op == nil {
				continue
			}
			id := op.OperationID
			if id == "" {
				id = strings.ToLower(method) + ":" + path
			}
			ops[id] = op
		}
	}
	return ops
}

func requestSchema(op *openapi3.Operation) *openapi3.Schema {
	if op == nil || op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil
	}
	content := op.RequestBody.Value.Content
	for _, mediaType := range requestMediaTypes {
		if mt, ok := content[mediaType]; ok && mt != nil && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	return nil
}

func documentFromSchema(schema *openapi3.Schema) overrides.Document {
	required := make(map[string]struct{}, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = struct{}{}
	}

	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	var doc overrides.Document
	for _, name := range names {
		ref := schema.Properties[name]
		if ref == nil || ref.Value == nil || ref.Value.ReadOnly {
			continue
		}
		prop := ref.Value

		field := overrides.FieldSpec{Name: name}
		if _, ok := required[name]; !ok {
			optional := false
			field.Required = &optional
		}
		if prop.Pattern != "" {
			field.Pattern = prop.Pattern
			if msg, ok := prop.Extensions[MessageExtension].(string); ok {
				field.Message = msg
			}
		}
		if prop.MinLength > 0 {
			minLength := int(prop.MinLength)
			field.MinLength = &minLength
		}
		if prop.MaxLength != nil {
			maxLength := int(*prop.MaxLength)
			field.MaxLength = &maxLength
		}
		doc.Fields = append(doc.Fields, field)
	}
	return doc
}
