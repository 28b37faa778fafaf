package tools

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidationError reports a request rejected before any upstream call:
// a missing required parameter, a failed schema check, or a value that
// cannot coerce to something sane.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationErrorf(format string, a ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, a...)}
}

// UnknownToolError reports a dispatch to a tool name the registry does not
// know. The HTTP transport renders it as 404.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool: %s", e.Name)
}

// stringArg returns the string value for key, or def when absent or empty.
func stringArg(args map[string]any, key, def string) string {
	if v, ok := args[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return def
}

// optionalStringArg returns a pointer to the string value for key, or nil
// when the key is absent. Presence with an empty string yields a pointer to
// "" — the upstream table APIs treat absent and empty differently.
func optionalStringArg(args map[string]any, key string) *string {
	v, ok := args[key]
	if !ok {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}

// intArg coerces the value for key to a non-negative integer, falling back
// to def when absent. JSON numbers arrive as float64; numeric strings are
// accepted too.
func intArg(args map[string]any, key string, def int) (int, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return def, nil
	}
	var n int
	switch t := v.(type) {
	case float64:
		n = int(t)
	case int:
		n = t
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, validationErrorf("parameter %q: cannot parse %q as integer", key, t)
		}
		n = parsed
	default:
		return 0, validationErrorf("parameter %q: expected integer, got %T", key, v)
	}
	if n < 0 {
		return 0, validationErrorf("parameter %q: must be non-negative, got %d", key, n)
	}
	return n, nil
}

// objectArg returns the object value for key, or nil when absent.
func objectArg(args map[string]any, key string) (map[string]any, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return nil, nil
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, validationErrorf("parameter %q: expected object, got %T", key, v)
	}
	return obj, nil
}

// splitFields splits a comma-separated field list, trimming whitespace and
// dropping empty segments.
func splitFields(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
