package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/uh-joan/icd-mcp-server/internal/common"
	"github.com/uh-joan/icd-mcp-server/internal/config"
	"github.com/uh-joan/icd-mcp-server/internal/upstream"
)

func testRegistry(t *testing.T, baseURL string) *Registry {
	t.Helper()
	client := upstream.New(config.UpstreamConfig{
		ICD10URL:       baseURL,
		NPIURL:         baseURL,
		DatasetURL:     baseURL,
		TimeoutSeconds: 5,
	}, common.NewSilentLogger())
	r, err := NewRegistry(client, common.NewSilentLogger())
	if err != nil {
		t.Fatalf("Unexpected error building registry: %v", err)
	}
	return r
}

func TestNewRegistry_RegistersAllTools(t *testing.T) {
	r := testRegistry(t, "http://unused.invalid")

	expected := []string{ToolLookupICDCode, ToolSearchProviders, ToolSearchMedicareClaims}
	tools := r.Tools()
	if len(tools) != len(expected) {
		t.Fatalf("Expected %d tools, got %d", len(expected), len(tools))
	}
	for i, name := range expected {
		if tools[i].Name != name {
			t.Errorf("Expected tool %q at position %d, got %q", name, i, tools[i].Name)
		}
	}
}

func TestRegistry_DescriptorsHaveSchemas(t *testing.T) {
	r := testRegistry(t, "http://unused.invalid")

	for _, d := range r.Descriptors() {
		if d.Name == "" || d.Description == "" {
			t.Errorf("Descriptor missing name or description: %+v", d)
		}
		var schema map[string]any
		if err := json.Unmarshal(d.InputSchema, &schema); err != nil {
			t.Errorf("Tool %s: input schema is not valid JSON: %v", d.Name, err)
			continue
		}
		if schema["type"] != "object" {
			t.Errorf("Tool %s: expected object schema, got %v", d.Name, schema["type"])
		}
	}
}

func TestRegistry_Call_UnknownTool(t *testing.T) {
	r := testRegistry(t, "http://unused.invalid")

	_, err := r.Call(context.Background(), "no_such_tool", nil)
	if err == nil {
		t.Fatal("Expected error for unknown tool")
	}
	ute, ok := err.(*UnknownToolError)
	if !ok {
		t.Fatalf("Expected UnknownToolError, got %T", err)
	}
	if ute.Name != "no_such_tool" {
		t.Errorf("Expected tool name in error, got %q", ute.Name)
	}
}

func TestRegistry_Call_MissingRequiredArg(t *testing.T) {
	r := testRegistry(t, "http://unused.invalid")

	_, err := r.Call(context.Background(), ToolLookupICDCode, map[string]any{})
	if err == nil {
		t.Fatal("Expected validation error for missing terms")
	}
	if _, ok := err.(*ValidationError); !ok {
		t.Errorf("Expected ValidationError, got %T", err)
	}
}

func TestRegistry_Call_EmptyRequiredStringRejected(t *testing.T) {
	r := testRegistry(t, "http://unused.invalid")

	_, err := r.Call(context.Background(), ToolLookupICDCode, map[string]any{"terms": ""})
	if err == nil {
		t.Fatal("Expected validation error for empty terms")
	}
	if _, ok := err.(*ValidationError); !ok {
		t.Errorf("Expected ValidationError, got %T", err)
	}
}

func TestRegistry_Call_WrongArgTypeRejected(t *testing.T) {
	r := testRegistry(t, "http://unused.invalid")

	_, err := r.Call(context.Background(), ToolLookupICDCode, map[string]any{"terms": 42})
	if err == nil {
		t.Fatal("Expected validation error for non-string terms")
	}
	if _, ok := err.(*ValidationError); !ok {
		t.Errorf("Expected ValidationError, got %T", err)
	}
}

func TestRegistry_Call_EnumRejected(t *testing.T) {
	r := testRegistry(t, "http://unused.invalid")

	_, err := r.Call(context.Background(), ToolSearchMedicareClaims, map[string]any{"dataset_type": "bogus"})
	if err == nil {
		t.Fatal("Expected validation error for invalid dataset_type")
	}
	if _, ok := err.(*ValidationError); !ok {
		t.Errorf("Expected ValidationError, got %T", err)
	}
}

func TestRegistry_Call_ICD10EndToEnd(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[78,["A15.0","A15.4"],null,[["A15.0","Tuberculosis of lung"],["A15.4","Tuberculosis of intrathoracic lymph nodes"]]]`))
	}))
	defer mockServer.Close()

	r := testRegistry(t, mockServer.URL)

	result, err := r.Call(context.Background(), ToolLookupICDCode, map[string]any{"terms": "tuberc"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	cr, ok := result.(CodeResult)
	if !ok {
		t.Fatalf("Expected CodeResult, got %T", result)
	}
	if cr.Total != 78 {
		t.Errorf("Expected total 78, got %d", cr.Total)
	}
	if len(cr.Codes) != 2 || cr.Codes[0].Code != "A15.0" {
		t.Errorf("Unexpected codes: %+v", cr.Codes)
	}
}

func TestRegistry_Call_MedicareEndToEnd(t *testing.T) {
	var gotPath string
	var gotQuery url.Values
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"HCPCS_Cd":"99213","Rndrng_Prvdr_Geo_Lvl":"National","Tot_Srvcs":"100"}]`))
	}))
	defer mockServer.Close()

	r := testRegistry(t, mockServer.URL)

	result, err := r.Call(context.Background(), ToolSearchMedicareClaims, map[string]any{
		"hcpcs_code": "99213",
		"size":       float64(1),
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if gotPath != "/6fea9d79-0129-4e4c-b1b8-23cd86a4f435/data" {
		t.Errorf("Expected geography dataset path, got %q", gotPath)
	}
	if gotQuery.Get("filter[filter-0][condition][path]") != "HCPCS_Cd" {
		t.Errorf("Expected HCPCS filter in query, got %v", gotQuery)
	}
	if gotQuery.Get("size") != "1" {
		t.Errorf("Expected size 1, got %q", gotQuery.Get("size"))
	}

	cr, ok := result.(ClaimsResult)
	if !ok {
		t.Fatalf("Expected ClaimsResult, got %T", result)
	}
	if cr.Total != 1 {
		t.Errorf("Expected total 1, got %d", cr.Total)
	}
	row, ok := cr.Results[0].(GeoServiceRow)
	if !ok {
		t.Fatalf("Expected GeoServiceRow, got %T", cr.Results[0])
	}
	if row.TotalServices != 100 {
		t.Errorf("Expected 100 services, got %v", row.TotalServices)
	}
}

func TestRegistry_Call_UpstreamErrorPassesThrough(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`upstream down`))
	}))
	defer mockServer.Close()

	r := testRegistry(t, mockServer.URL)

	_, err := r.Call(context.Background(), ToolSearchProviders, map[string]any{"terms": "smith"})
	if err == nil {
		t.Fatal("Expected upstream error")
	}
	te, ok := err.(*upstream.TransportError)
	if !ok {
		t.Fatalf("Expected TransportError, got %T", err)
	}
	if te.Status != http.StatusBadGateway {
		t.Errorf("Expected status 502, got %d", te.Status)
	}
}
