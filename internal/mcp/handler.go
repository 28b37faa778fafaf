package mcp

import (
	"net/http"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/uh-joan/icd-mcp-server/internal/common"
	"github.com/uh-joan/icd-mcp-server/internal/config"
	"github.com/uh-joan/icd-mcp-server/internal/tools"
)

// NewServer builds the MCP server with every registry tool registered,
// plus a get_version tool for connectivity checks.
func NewServer(registry *tools.Registry, logger *common.Logger) *mcpserver.MCPServer {
	mcpSrv := mcpserver.NewMCPServer(
		"icd-mcp-server",
		config.GetVersion(),
		mcpserver.WithToolCapabilities(true),
	)

	for _, t := range registry.Tools() {
		mcpSrv.AddTool(BuildMCPTool(t), ToolHandler(registry, t.Name))
	}
	mcpSrv.AddTool(VersionTool(), VersionToolHandler())

	logger.Info().
		Int("tools", len(registry.Tools())).
		Msg("MCP server initialized")

	return mcpSrv
}

// NewHTTPHandler wraps the MCP server as a stateless streamable HTTP
// handler, suitable for mounting at /mcp.
func NewHTTPHandler(mcpSrv *mcpserver.MCPServer) http.Handler {
	return mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithStateLess(true),
	)
}
