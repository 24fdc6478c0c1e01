package openapi_test

import (
	"context"
	stderrors "errors"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"github.com/goliatone/go-errors"

	"github.com/goliatone/go-formfilter/internal/openapi/loader"
	"github.com/goliatone/go-formfilter/pkg/openapi"
	"github.com/goliatone/go-formfilter/pkg/overrides"
)

const signupAPI = `openapi: 3.0.3
info:
  title: Signup
  version: "1.0"
paths:
  /users:
    post:
      operationId: createUser
      requestBody:
        content:
          application/json:
            schema:
              type: object
              required: [username, email]
              properties:
                username:
                  type: string
                  minLength: 3
                  maxLength: 16
                email:
                  type: string
                zip:
                  type: string
                  pattern: '^\d{5}$'
                  x-formfilter-message: Five digits
                id:
                  type: string
                  readOnly: true
      responses:
        "201":
          description: created
  /health:
    get:
      responses:
        "200":
          description: ok
`

func newImporter() *openapi.Importer {
	files := fstest.MapFS{"api.yaml": {Data: []byte(signupAPI)}}
	l := loader.New(openapi.NewLoaderOptions(openapi.WithFileSystem(files)))
	return openapi.NewImporter(l)
}

func intPtr(v int) *int { return &v }

func boolPtr(v bool) *bool { return &v }

func TestImporter_Import(t *testing.T) {
	doc, err := newImporter().Import(context.Background(), openapi.SourceFromFS("api.yaml"), "createUser")
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	want := overrides.Document{Fields: []overrides.FieldSpec{
		{Name: "email"},
		{Name: "username", MinLength: intPtr(3), MaxLength: intPtr(16)},
		{Name: "zip", Required: boolPtr(false), Pattern: `^\d{5}$`, Message: "Five digits"},
	}}
	if diff := cmp.Diff(want, doc); diff != "" {
		t.Fatalf("document mismatch (-want +got):\n%s", diff)
	}
}

func TestImporter_ImportedDocumentApplies(t *testing.T) {
	doc, err := newImporter().Import(context.Background(), openapi.SourceFromFS("api.yaml"), "createUser")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	store := overrides.NewStore()
	if err := doc.Apply(store); err != nil {
		t.Fatalf("apply: %v", err)
	}
	zip, ok := store.Lookup("zip")
	if !ok || !zip.Skip || zip.Pattern == nil || !zip.Pattern.MatchString("12345") {
		t.Fatalf("unexpected zip override %+v", zip)
	}
}

func TestImporter_Operations(t *testing.T) {
	ids, err := newImporter().Operations(context.Background(), openapi.SourceFromFS("api.yaml"))
	if err != nil {
		t.Fatalf("operations: %v", err)
	}
	if diff := cmp.Diff([]string{"createUser", "get:/health"}, ids); diff != "" {
		t.Fatalf("operations mismatch (-want +got):\n%s", diff)
	}
}

func TestImporter_Errors(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		code      string
	}{
		{name: "blank operation", operation: " ", code: "OPERATION_MISSING"},
		{name: "unknown operation", operation: "deleteUser", code: "OPERATION_NOT_FOUND"},
		{name: "no request body", operation: "get:/health", code: "REQUEST_BODY_MISSING"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newImporter().Import(context.Background(), openapi.SourceFromFS("api.yaml"), tt.operation)
			var typed *errors.Error
			if !stderrors.As(err, &typed) {
				t.Fatalf("expected typed error, got %v", err)
			}
			if typed.TextCode != tt.code {
				t.Fatalf("expected %s, got %s", tt.code, typed.TextCode)
			}
		})
	}
}

func TestImporter_LoadFailure(t *testing.T) {
	_, err := newImporter().Import(context.Background(), openapi.SourceFromFS("missing.yaml"), "createUser")
	var typed *errors.Error
	if !stderrors.As(err, &typed) || typed.TextCode != "DOCUMENT_LOAD_FAILED" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestSourceFromLocation(t *testing.T) {
	src, err := openapi.SourceFromLocation("https://example.com/api.yaml")
	if err != nil || src.Kind() != openapi.SourceKindURL {
		t.Fatalf("expected url source, got %v %v", src, err)
	}
	src, err = openapi.SourceFromLocation("./specs/api.yaml")
	if err != nil || src.Kind() != openapi.SourceKindFile || src.Location() != "specs/api.yaml" {
		t.Fatalf("expected file source, got %v %v", src, err)
	}
	if _, err := openapi.SourceFromLocation(""); err == nil {
		t.Fatalf("expected error for empty location")
	}
	if _, err := openapi.SourceFromURL("ftp://example.com/api.yaml"); err == nil {
		t.Fatalf("expected error for non-http scheme")
	}
}
