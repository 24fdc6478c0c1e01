package overrides

import (
	"bytes"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/goliatone/go-errors"
	"gopkg.in/yaml.v3"
)

// Document is a declarative override file: the form it targets and the
// fragments for each field, in file order.
type Document struct {
	Form   string
	Fields []FieldSpec
}

// FieldSpec gathers every fragment kind for one field. Zero values mean "not
// mentioned" except for Required, Messages and the bounds, which use nil.
type FieldSpec struct {
	Name      string
	Required  *bool
	Pattern   string
	Message   string
	MinLength *int
	MaxLength *int
	Messages  map[string]string
}

type documentYAML struct {
	Form   string    `yaml:"form"`
	Fields yaml.Node `yaml:"fields"`
}

type fieldYAML struct {
	Required  *bool             `yaml:"required"`
	Pattern   string            `yaml:"pattern"`
	Message   string            `yaml:"message"`
	MinLength *int              `yaml:"minLength"`
	MaxLength *int              `yaml:"maxLength"`
	Messages  map[string]string `yaml:"messages"`
}

// LoadFile reads a YAML or JSON override document from disk.
func LoadFile(path string) (Document, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return Document{}, errors.New("override document path is required", errors.CategoryBadInput).
			WithTextCode("DOCUMENT_PATH_MISSING")
	}
	data, err := os.ReadFile(trimmed)
	if err != nil {
		return Document{}, errors.Wrap(err, errors.CategoryOperation, "failed to read override document").
			WithTextCode("DOCUMENT_READ_FAILED").
			WithMetadata(map[string]any{"path": trimmed})
	}
	return LoadDocument(bytes.NewReader(data))
}

// LoadDocument decodes a YAML (or JSON) override document. Field order from
// the source is preserved and every pattern is checked for validity.
func LoadDocument(r io.Reader) (Document, error) {
	var raw documentYAML
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if err == io.EOF {
			return Document{}, nil
		}
		return Document{}, errors.Wrap(err, errors.CategoryBadInput, "failed to decode override document").
			WithTextCode("DOCUMENT_DECODE_FAILED")
	}

	doc := Document{Form: strings.TrimSpace(raw.Form)}
	fields := raw.Fields
	if fields.Kind == 0 || fields.Tag == "!!null" {
		return doc, nil
	}
	if fields.Kind != yaml.MappingNode {
		return Document{}, errors.New("override document fields must be a mapping", errors.CategoryValidation).
			WithTextCode("DOCUMENT_FIELDS_INVALID").
			WithMetadata(map[string]any{"line": fields.Line})
	}

	for i := 0; i+1 < len(fields.Content); i += 2 {
		keyNode, valueNode := fields.Content[i], fields.Content[i+1]
		name := strings.TrimSpace(keyNode.Value)
		if name == "" {
			return Document{}, errors.New("override document contains an empty field name", errors.CategoryValidation).
				WithTextCode("DOCUMENT_FIELD_NAME_EMPTY").
				WithMetadata(map[string]any{"line": keyNode.Line})
		}
		var spec fieldYAML
		if valueNode.Tag != "!!null" {
			if err := valueNode.Decode(&spec); err != nil {
				return Document{}, errors.Wrap(err, errors.CategoryValidation, "failed to decode field overrides").
					WithTextCode("DOCUMENT_FIELD_INVALID").
					WithMetadata(map[string]any{"field": name, "line": valueNode.Line})
			}
		}
		doc.Fields = append(doc.Fields, FieldSpec{
			Name:      name,
			Required:  spec.Required,
			Pattern:   spec.Pattern,
			Message:   spec.Message,
			MinLength: spec.MinLength,
			MaxLength: spec.MaxLength,
			Messages:  spec.Messages,
		})
	}

	if _, err := doc.patterns(); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// FieldNames lists the document's fields in source order.
func (d Document) FieldNames() []string {
	names := make([]string, 0, len(d.Fields))
	for _, field := range d.Fields {
		names = append(names, field.Name)
	}
	return names
}

// Apply replays the document into store through the registration operations,
// in the order optional, pattern, min length, max length, messages. Nothing is
// applied when a pattern fails to compile.
func (d Document) Apply(store *Store) error {
	if store == nil {
		return errors.New("override store is nil", errors.CategoryBadInput).
			WithTextCode("STORE_MISSING")
	}
	compiled, err := d.patterns()
	if err != nil {
		return err
	}

	optional := make(map[string]RequiredSpec)
	patterns := make(map[string]PatternSpec)
	minimums := make(map[string]MinLengthSpec)
	maximums := make(map[string]MaxLengthSpec)
	messages := make(map[string]MessagesSpec)

	for _, field := range d.Fields {
		if field.Required != nil {
			optional[field.Name] = RequiredSpec{Required: field.Required}
		}
		if re, ok := compiled[field.Name]; ok {
			patterns[field.Name] = PatternSpec{Pattern: re, Message: field.Message}
		}
		if field.MinLength != nil {
			minimums[field.Name] = MinLengthSpec{MinLength: *field.MinLength}
		}
		if field.MaxLength != nil {
			maximums[field.Name] = MaxLengthSpec{MaxLength: *field.MaxLength}
		}
		if field.Messages != nil {
			messages[field.Name] = MessagesSpec{Messages: field.Messages}
		}
	}

	store.MarkOptional(optional)
	store.AddPattern(patterns)
	store.AddMinLength(minimums)
	store.AddMaxLength(maximums)
	store.AddMessages(messages)
	return nil
}

func (d Document) patterns() (map[string]*regexp.Regexp, error) {
	out := make(map[string]*regexp.Regexp)
	for _, field := range d.Fields {
		if field.Pattern == "" {
			continue
		}
		re, err := regexp.Compile(field.Pattern)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryValidation, "invalid field pattern").
				WithTextCode("INVALID_PATTERN").
				WithMetadata(map[string]any{"field": field.Name, "pattern": field.Pattern})
		}
		out[field.Name] = re
	}
	return out, nil
}
