package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/uh-joan/icd-mcp-server/internal/tools"
	"github.com/uh-joan/icd-mcp-server/internal/upstream"
)

// Error codes returned in the JSON error envelope.
const (
	codeValidation       = "validation_error"
	codeNotFound         = "not_found"
	codeUnknownTool      = "unknown_tool"
	codeUpstream         = "upstream_error"
	codeUpstreamResponse = "upstream_response_error"
	codeMethodNotAllowed = "method_not_allowed"
	codeInternal         = "internal_error"
)

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes the JSON error envelope {error, code}.
func writeError(w http.ResponseWriter, status int, msg, code string) {
	writeJSON(w, status, map[string]string{"error": msg, "code": code})
}

// writeToolError maps a registry error to a status and envelope. Every
// handler failure is a 4xx; error messages pass through verbatim so
// upstream diagnostics are not lost.
func writeToolError(w http.ResponseWriter, err error) {
	var ve *tools.ValidationError
	var ute *tools.UnknownToolError
	var te *upstream.TransportError
	var pe *upstream.ParseError
	var se *upstream.ShapeError

	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Error(), codeValidation)
	case errors.As(err, &ute):
		writeError(w, http.StatusNotFound, ute.Error(), codeUnknownTool)
	case errors.As(err, &te):
		writeError(w, http.StatusBadRequest, te.Error(), codeUpstream)
	case errors.As(err, &pe):
		writeError(w, http.StatusBadRequest, pe.Error(), codeUpstreamResponse)
	case errors.As(err, &se):
		writeError(w, http.StatusBadRequest, se.Error(), codeUpstreamResponse)
	default:
		writeError(w, http.StatusBadRequest, err.Error(), codeInternal)
	}
}
