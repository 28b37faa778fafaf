package tools

import (
	"context"
	"encoding/json"

	"github.com/uh-joan/icd-mcp-server/internal/upstream"
)

// ToolLookupICDCode is the tool identifier and HTTP path for diagnosis
// code search.
const ToolLookupICDCode = "lookup_icd_code"

var icd10Defaults = tableDefaults{
	maxList: 500,
	count:   500,
	df:      "code,name",
	sf:      "code,name",
	cf:      "code",
}

// CodeResult is the normalized output of an ICD-10-CM lookup.
type CodeResult struct {
	Total int        `json:"total"`
	Codes []CodeItem `json:"codes"`
}

// CodeItem is one diagnosis code row. Extra holds caller-requested ef
// fields; they marshal as additional top-level keys on the item.
type CodeItem struct {
	Code  string
	Name  string
	Extra map[string]any
}

// MarshalJSON flattens Extra into the item object alongside code and name.
func (c CodeItem) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(c.Extra)+2)
	for k, v := range c.Extra {
		m[k] = v
	}
	m["code"] = c.Code
	m["name"] = c.Name
	return json.Marshal(m)
}

// mapICD10 converts a table envelope into the diagnosis tool's output.
// The code list drives the result; display rows supply names and degrade
// to "" when truncated or malformed.
func mapICD10(env *upstream.TableEnvelope, extraFields []string) CodeResult {
	codes := make([]CodeItem, len(env.IDs))
	for i, id := range env.IDs {
		codes[i] = CodeItem{
			Code:  id,
			Name:  displayCell(env, i, 1),
			Extra: extraValues(env, extraFields, i),
		}
	}
	return CodeResult{Total: env.Total, Codes: codes}
}

func newICD10Tool(client *upstream.Client) *Tool {
	return &Tool{
		Name:        ToolLookupICDCode,
		Description: "Search ICD-10-CM diagnosis codes by code fragment or clinical term. Returns the total match count and matching codes with their descriptions.",
		Params: []Parameter{
			{Name: "terms", Type: "string", Required: true, Description: "Search text matched against code and name (e.g. \"tuberc\" or \"A15\")"},
			{Name: "maxList", Type: "integer", Default: 500, Description: "Maximum codes to return (capped at 500)"},
			{Name: "count", Type: "integer", Default: 500, Description: "Page size for the upstream search (capped at 500)"},
			{Name: "offset", Type: "integer", Default: 0, Description: "Number of results to skip"},
			{Name: "q", Type: "string", Description: "Additional query string applied on top of terms; omit entirely when unused"},
			{Name: "df", Type: "string", Default: "code,name", Description: "Display fields returned per row"},
			{Name: "sf", Type: "string", Default: "code,name", Description: "Fields searched by terms"},
			{Name: "cf", Type: "string", Default: "code", Description: "Code field identifying each row"},
			{Name: "ef", Type: "string", Description: "Comma-separated extra fields attached to each code (e.g. \"excludes,notes\")"},
		},
		Examples: []Example{
			{
				Description: "Search diagnosis codes for tuberculosis",
				Input:       map[string]any{"terms": "tuberc"},
				Output: map[string]any{
					"total": 78,
					"codes": []map[string]any{
						{"code": "A15.0", "name": "Tuberculosis of lung"},
						{"code": "A15.4", "name": "Tuberculosis of intrathoracic lymph nodes"},
					},
				},
			},
		},
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			q, extraFields, err := tableQueryFromArgs(args, icd10Defaults)
			if err != nil {
				return nil, err
			}
			env, err := client.SearchICD10(ctx, q)
			if err != nil {
				return nil, err
			}
			return mapICD10(env, extraFields), nil
		},
	}
}
