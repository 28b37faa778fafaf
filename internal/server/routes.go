package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/uh-joan/icd-mcp-server/internal/config"
)

// setupRoutes configures all HTTP routes. Each registered tool is served
// at POST /<tool_name> with a JSON object of arguments as the body.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// MCP endpoint (JSON-RPC over HTTP)
	if s.mcpHandler != nil {
		mux.Handle("/mcp", s.mcpHandler)
	}

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/version", s.handleVersion)
	mux.HandleFunc("/list_tools", s.handleListTools)

	for _, tool := range s.registry.Tools() {
		mux.HandleFunc("/"+tool.Name, s.handleToolCall(tool.Name))
	}

	// JSON 404 for everything else
	mux.HandleFunc("/", s.handleNotFound)

	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", codeMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", codeMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"version": config.GetVersion(),
		"build":   config.GetBuild(),
		"commit":  config.GetGitCommit(),
	})
}

// handleListTools returns the declarative descriptors of all tools, the
// same set the MCP transport advertises.
func (s *Server) handleListTools(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", codeMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tools": s.registry.Descriptors()})
}

// handleToolCall dispatches POST /<tool_name> through the registry. The
// body must be a JSON object of arguments; an empty body means no
// arguments.
func (s *Server) handleToolCall(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed", codeMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, "failed to read request body", codeValidation)
			return
		}

		var args map[string]any
		if len(body) > 0 {
			if err := json.Unmarshal(body, &args); err != nil {
				writeError(w, http.StatusBadRequest, "request body must be a JSON object", codeValidation)
				return
			}
		}

		result, err := s.registry.Call(r.Context(), name, args)
		if err != nil {
			writeToolError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "the requested endpoint does not exist", codeNotFound)
}
