package prompt_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formfilter/pkg/engine/prompt"
	"github.com/goliatone/go-formfilter/pkg/engine/server"
	"github.com/goliatone/go-formfilter/pkg/filter"
	"github.com/goliatone/go-formfilter/pkg/overrides"
)

// stubDriver replays scripted answers, feeding each through the validator the
// way survey re-asks after a rejected answer.
type stubDriver struct {
	inputs   []string
	pos      int
	messages []string
	rejected []string
	info     []string
}

func (s *stubDriver) Input(_ context.Context, cfg prompt.InputConfig) (string, error) {
	s.messages = append(s.messages, cfg.Message)
	for s.pos < len(s.inputs) {
		val := s.inputs[s.pos]
		s.pos++
		if cfg.Validator != nil {
			if err := cfg.Validator(val); err != nil {
				s.rejected = append(s.rejected, err.Error())
				continue
			}
		}
		return val, nil
	}
	return "", errors.New("no input scripted")
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.info = append(s.info, msg)
	return nil
}

func boundEngine(t *testing.T) *server.Engine {
	t.Helper()
	eng := server.New()
	f := filter.New(eng)
	f.MarkOptional(map[string]overrides.RequiredSpec{"nickname": overrides.Optional()})
	f.AddMinLength(map[string]overrides.MinLengthSpec{"username": {MinLength: 3}})
	if _, err := f.Init("#signup", "username", "nickname"); err != nil {
		t.Fatalf("init: %v", err)
	}
	return eng
}

func TestCollector_RepromptsUntilValid(t *testing.T) {
	driver := &stubDriver{inputs: []string{"", "ab", "gopher", ""}}
	collector := prompt.New(driver, boundEngine(t))

	values, err := collector.Collect(context.Background(), "#signup")
	if err != nil {
		t.Fatalf("collect: %v", err)
	}

	if diff := cmp.Diff(map[string]string{"username": "gopher", "nickname": ""}, values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	wantRejected := []string{"This field is required.", "Please enter at least 3 characters."}
	if diff := cmp.Diff(wantRejected, driver.rejected); diff != "" {
		t.Fatalf("rejections mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"username *", "nickname"}, driver.messages); diff != "" {
		t.Fatalf("labels mismatch (-want +got):\n%s", diff)
	}
	if len(driver.info) != 1 {
		t.Fatalf("expected one info line, got %v", driver.info)
	}
}

func TestCollector_UnknownForm(t *testing.T) {
	collector := prompt.New(&stubDriver{}, server.New())
	if _, err := collector.Collect(context.Background(), "#missing"); err == nil {
		t.Fatalf("expected error for unbound form")
	}
}

type abortDriver struct{ stubDriver }

func (a *abortDriver) Input(context.Context, prompt.InputConfig) (string, error) {
	return "", prompt.ErrAborted
}

func TestCollector_Aborted(t *testing.T) {
	collector := prompt.New(&abortDriver{}, boundEngine(t))
	_, err := collector.Collect(context.Background(), "#signup")
	if !errors.Is(err, prompt.ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}
