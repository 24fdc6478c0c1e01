package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formfilter/pkg/engine/prompt"
)

const document = `form: "#signup"
fields:
  username:
    minLength: 3
    messages:
      minlength: Too short
  zip:
    required: false
    pattern: '^\d{5}$'
    message: Five digits
`

func writeDocument(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "signup.yaml")
	if err := os.WriteFile(path, []byte(document), 0o600); err != nil {
		t.Fatalf("write document: %v", err)
	}
	return path
}

func TestRun_JSON(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if err := run(context.Background(), []string{"--overrides", writeDocument(t)}, &stdout, &stderr, nil); err != nil {
		t.Fatalf("run: %v (stderr: %s)", err, stderr.String())
	}

	var got compiled
	if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
		t.Fatalf("decode output: %v\n%s", err, stdout.String())
	}
	if got.Selector != "#signup" {
		t.Fatalf("expected document selector, got %q", got.Selector)
	}
	if diff := cmp.Diff([]string{"username", "zip"}, got.Fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	if msg := got.Messages["username"]["minlength"]; msg != "Too short" {
		t.Fatalf("unexpected minlength message %q", msg)
	}
	want := []compiledMethod{{Name: "zip_pattern", Pattern: `^\d{5}$`, Message: "Five digits"}}
	if diff := cmp.Diff(want, got.Methods); diff != "" {
		t.Fatalf("methods mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_Script(t *testing.T) {
	var stdout, stderr bytes.Buffer
	args := []string{"--overrides", writeDocument(t), "--format", "script", "--selector", "#register"}
	if err := run(context.Background(), args, &stdout, &stderr, nil); err != nil {
		t.Fatalf("run: %v (stderr: %s)", err, stderr.String())
	}
	out := stdout.String()
	for _, want := range []string{`$.validator.addMethod("zip_pattern"`, `$("#register").validate({`} {
		if !strings.Contains(out, want) {
			t.Fatalf("script missing %q\n%s", want, out)
		}
	}
}

func TestRun_SpanishDefaults(t *testing.T) {
	var stdout, stderr bytes.Buffer
	args := []string{"--overrides", writeDocument(t), "--locale", "es"}
	if err := run(context.Background(), args, &stdout, &stderr, nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	var got compiled
	if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if msg := got.Messages["username"]["required"]; msg != "Este campo es obligatorio." {
		t.Fatalf("unexpected required message %q", msg)
	}
}

func TestRun_OutputFile(t *testing.T) {
	output := filepath.Join(t.TempDir(), "rules.json")
	var stdout, stderr bytes.Buffer
	if err := run(context.Background(), []string{"--overrides", writeDocument(t), "-o", output}, &stdout, &stderr, nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	if stdout.Len() != 0 {
		t.Fatalf("expected nothing on stdout, got %q", stdout.String())
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(data), `"zip_pattern"`) {
		t.Fatalf("unexpected output file\n%s", data)
	}
}

type scriptedDriver struct {
	answers []string
}

func (d *scriptedDriver) Input(_ context.Context, cfg prompt.InputConfig) (string, error) {
	for len(d.answers) > 0 {
		answer := d.answers[0]
		d.answers = d.answers[1:]
		if cfg.Validator == nil || cfg.Validator(answer) == nil {
			return answer, nil
		}
	}
	return "", prompt.ErrAborted
}

func (d *scriptedDriver) Info(context.Context, string) error { return nil }

func TestRun_Interactive(t *testing.T) {
	var stdout, stderr bytes.Buffer
	driver := &scriptedDriver{answers: []string{"ab", "gopher", "1234", "12345"}}
	args := []string{"--overrides", writeDocument(t), "--interactive"}
	if err := run(context.Background(), args, &stdout, &stderr, driver); err != nil {
		t.Fatalf("run: %v", err)
	}

	var got map[string]string
	if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if diff := cmp.Diff(map[string]string{"username": "gopher", "zip": "12345"}, got); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if err := run(context.Background(), nil, &stdout, &stderr, nil); err == nil {
		t.Fatalf("expected error without a source")
	}
}
