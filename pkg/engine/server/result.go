package server

import "strings"

// FieldError is the first failing rule for a field.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Result collects field failures in bind order.
type Result struct {
	Errors []FieldError `json:"errors,omitempty"`
}

// Valid reports whether every field passed.
func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

// Messages groups failure messages by field, trimming blanks and duplicates,
// in the field -> []message shape form renderers consume.
func (r Result) Messages() map[string][]string {
	if len(r.Errors) == 0 {
		return nil
	}
	out := make(map[string][]string, len(r.Errors))
	for _, failure := range r.Errors {
		msg := strings.TrimSpace(failure.Message)
		if msg == "" {
			continue
		}
		if contains(out[failure.Field], msg) {
			continue
		}
		out[failure.Field] = append(out[failure.Field], msg)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
