package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/uh-joan/icd-mcp-server/internal/config"
)

// versionInfo holds version information for the version tool response.
type versionInfo struct {
	Version string `json:"version"`
	Build   string `json:"build"`
	Commit  string `json:"commit"`
}

// VersionTool returns the get_version tool definition.
func VersionTool() mcp.Tool {
	return mcp.NewTool("get_version",
		mcp.WithDescription("Get the gateway version and build info. Use this to verify connectivity."),
	)
}

// VersionToolHandler returns a handler that reports build-time version info.
func VersionToolHandler() server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		info := versionInfo{
			Version: config.GetVersion(),
			Build:   config.GetBuild(),
			Commit:  config.GetGitCommit(),
		}

		data, err := json.Marshal(info)
		if err != nil {
			return errorResult(fmt.Sprintf("failed to encode version info: %v", err)), nil
		}
		return &mcp.CallToolResult{Content: []mcp.Content{mcp.NewTextContent(string(data))}}, nil
	}
}
