// Package mcp exposes the tool registry over the Model Context Protocol
// using mcp-go. It is the second of the two transports over the shared
// registry; tool names, schemas, and semantics are identical to the raw
// HTTP endpoints.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/uh-joan/icd-mcp-server/internal/tools"
)

// BuildMCPTool converts a registry tool into an mcp.Tool with the
// equivalent input schema.
func BuildMCPTool(t *tools.Tool) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(t.Description)}
	for _, p := range t.Params {
		opts = append(opts, buildParamOption(p))
	}
	return mcp.NewTool(t.Name, opts...)
}

// buildParamOption maps a registry parameter to the appropriate mcp-go
// tool option.
func buildParamOption(p tools.Parameter) mcp.ToolOption {
	var opts []mcp.PropertyOption
	if p.Description != "" {
		opts = append(opts, mcp.Description(p.Description))
	}
	if p.Required {
		opts = append(opts, mcp.Required())
	}

	switch p.Type {
	case "integer", "number":
		if d, ok := p.Default.(int); ok {
			opts = append(opts, mcp.DefaultNumber(float64(d)))
		}
		return mcp.WithNumber(p.Name, opts...)
	case "object":
		if p.Properties != nil {
			opts = append(opts, mcp.Properties(p.Properties))
		}
		return mcp.WithObject(p.Name, opts...)
	default:
		if d, ok := p.Default.(string); ok {
			opts = append(opts, mcp.DefaultString(d))
		}
		if len(p.Enum) > 0 {
			opts = append(opts, mcp.Enum(p.Enum...))
		}
		return mcp.WithString(p.Name, opts...)
	}
}

// ToolHandler returns a handler that dispatches an MCP tool call through
// the registry. Registry and upstream errors become IsError results with
// the message preserved verbatim; they never fail the MCP session.
func ToolHandler(registry *tools.Registry, name string) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := registry.Call(ctx, name, r.GetArguments())
		if err != nil {
			return errorResult(err.Error()), nil
		}

		data, err := json.Marshal(result)
		if err != nil {
			return errorResult(fmt.Sprintf("failed to encode result: %v", err)), nil
		}
		return &mcp.CallToolResult{Content: []mcp.Content{mcp.NewTextContent(string(data))}}, nil
	}
}

// errorResult creates an MCP error result with the given message.
func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}
