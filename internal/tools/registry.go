// Package tools defines the gateway's tool registry: declarative
// descriptors for the three lookup operations plus the handlers that turn
// an argument map into a normalized result. Both transports (MCP and raw
// HTTP) dispatch through this one registry, so the two paths cannot drift.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/uh-joan/icd-mcp-server/internal/common"
	"github.com/uh-joan/icd-mcp-server/internal/upstream"
)

// HandlerFunc executes one tool call: argument map in, normalized result
// out. Errors are returned, never swallowed.
type HandlerFunc func(ctx context.Context, args map[string]any) (any, error)

// Parameter describes one input parameter of a tool.
type Parameter struct {
	Name        string
	Type        string // JSON Schema type: string, integer, object
	Description string
	Required    bool
	Default     any
	Enum        []string
	Properties  map[string]any // for object parameters
}

// Example pairs an illustrative input with the result it produces.
type Example struct {
	Description string         `json:"description,omitempty"`
	Input       map[string]any `json:"input"`
	Output      any            `json:"output,omitempty"`
}

// Tool is one registered operation: its declarative description plus the
// handler implementing it.
type Tool struct {
	Name        string
	Description string
	Params      []Parameter
	Examples    []Example
	Handler     HandlerFunc

	inputSchema json.RawMessage
	compiled    *jsonschema.Schema
}

// InputSchema returns the tool's input schema as JSON Schema.
func (t *Tool) InputSchema() json.RawMessage {
	return t.inputSchema
}

// buildInputSchema renders Params as a JSON Schema object. Required string
// parameters get minLength 1 so an explicit empty string counts as missing.
func (t *Tool) buildInputSchema() (json.RawMessage, error) {
	props := make(map[string]any, len(t.Params))
	var required []string
	for _, p := range t.Params {
		prop := map[string]any{"type": p.Type}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		if p.Default != nil {
			prop["default"] = p.Default
		}
		if len(p.Enum) > 0 {
			prop["enum"] = p.Enum
		}
		if p.Type == "object" && p.Properties != nil {
			prop["properties"] = p.Properties
		}
		if p.Required {
			required = append(required, p.Name)
			if p.Type == "string" {
				prop["minLength"] = 1
			}
		}
		props[p.Name] = prop
	}
	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return json.Marshal(schema)
}

// validateArgs checks args against the compiled input schema and converts
// schema failures into ValidationError with the failing location.
func (t *Tool) validateArgs(args map[string]any) error {
	if args == nil {
		args = map[string]any{}
	}
	if err := t.compiled.Validate(args); err != nil {
		if ve, ok := err.(*jsonschema.ValidationError); ok {
			leaf := firstLeafValidationError(ve)
			loc := leaf.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			return validationErrorf("invalid arguments for %s at %s: %s", t.Name, loc, leaf.Message)
		}
		return validationErrorf("invalid arguments for %s: %v", t.Name, err)
	}
	return nil
}

func firstLeafValidationError(err *jsonschema.ValidationError) *jsonschema.ValidationError {
	if err == nil {
		return nil
	}
	if len(err.Causes) == 0 {
		return err
	}
	for _, c := range err.Causes {
		if leaf := firstLeafValidationError(c); leaf != nil {
			return leaf
		}
	}
	return err
}

// Registry holds the fixed set of tools, validated once at startup.
type Registry struct {
	tools  []*Tool
	byName map[string]*Tool
	logger *common.Logger
}

// NewRegistry builds the registry over the shared upstream client and
// fails fast if any descriptor is inconsistent or its schema does not
// compile. Process start is the only place this can error.
func NewRegistry(client *upstream.Client, logger *common.Logger) (*Registry, error) {
	r := &Registry{
		byName: make(map[string]*Tool),
		logger: logger,
	}

	for _, t := range []*Tool{
		newICD10Tool(client),
		newNPITool(client),
		newMedicareTool(client),
	} {
		if err := r.register(t); err != nil {
			return nil, err
		}
	}

	return r, nil
}

func (r *Registry) register(t *Tool) error {
	if t.Name == "" {
		return fmt.Errorf("tool with empty name")
	}
	if _, exists := r.byName[t.Name]; exists {
		return fmt.Errorf("duplicate tool name: %s", t.Name)
	}
	if t.Handler == nil {
		return fmt.Errorf("tool %s has no handler", t.Name)
	}

	schema, err := t.buildInputSchema()
	if err != nil {
		return fmt.Errorf("tool %s: failed to build input schema: %w", t.Name, err)
	}
	compiled, err := jsonschema.CompileString(t.Name+".json", string(schema))
	if err != nil {
		return fmt.Errorf("tool %s: input schema does not compile: %w", t.Name, err)
	}
	t.inputSchema = schema
	t.compiled = compiled

	r.tools = append(r.tools, t)
	r.byName[t.Name] = t
	return nil
}

// Tools returns the registered tools in registration order.
func (r *Registry) Tools() []*Tool {
	return r.tools
}

// Get looks up a tool by name.
func (r *Registry) Get(name string) (*Tool, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Call validates args against the tool's input schema and runs its handler.
// Unknown names yield UnknownToolError, argument problems ValidationError;
// handler errors pass through untouched.
func (r *Registry) Call(ctx context.Context, name string, args map[string]any) (any, error) {
	t, ok := r.byName[name]
	if !ok {
		return nil, &UnknownToolError{Name: name}
	}
	if err := t.validateArgs(args); err != nil {
		return nil, err
	}

	r.logger.Debug().
		Str("tool", name).
		Msg("dispatching tool call")

	result, err := t.Handler(ctx, args)
	if err != nil {
		r.logger.Warn().
			Str("tool", name).
			Str("error", err.Error()).
			Msg("tool call failed")
		return nil, err
	}
	return result, nil
}

// Descriptor is the JSON form of a tool description served by the listing
// operation of both transports.
type Descriptor struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
	Examples    []Example       `json:"examples,omitempty"`
}

// Descriptors returns the JSON-facing descriptions of all tools.
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, len(r.tools))
	for i, t := range r.tools {
		out[i] = Descriptor{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.inputSchema,
			Examples:    t.Examples,
		}
	}
	return out
}
