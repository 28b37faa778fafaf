package tools

import (
	"context"
	"encoding/json"

	"github.com/uh-joan/icd-mcp-server/internal/upstream"
)

// ToolSearchProviders is the tool identifier and HTTP path for NPI
// provider registry search.
const ToolSearchProviders = "search_providers"

var npiDefaults = tableDefaults{
	maxList: 500,
	count:   500,
	df:      "NPI,name.full,provider_type,addr_practice.full",
	sf:      "NPI,name.full,provider_type,addr_practice.full",
	cf:      "NPI",
}

// ProviderResult is the normalized output of an NPI registry search.
type ProviderResult struct {
	Total     int            `json:"total"`
	Providers []ProviderItem `json:"providers"`
}

// ProviderItem is one provider row. Every field defaults to "" when the
// upstream display row is missing or short, so the key set is stable.
type ProviderItem struct {
	NPI          string
	Name         string
	ProviderType string
	Address      string
	Extra        map[string]any
}

// MarshalJSON flattens Extra into the item object alongside the fixed keys.
func (p ProviderItem) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(p.Extra)+4)
	for k, v := range p.Extra {
		m[k] = v
	}
	m["npi"] = p.NPI
	m["name"] = p.Name
	m["provider_type"] = p.ProviderType
	m["address"] = p.Address
	return json.Marshal(m)
}

// mapNPI converts a table envelope into the provider tool's output.
// Display rows are 4-wide: [NPI, name.full, provider_type, addr_practice.full].
func mapNPI(env *upstream.TableEnvelope, extraFields []string) ProviderResult {
	providers := make([]ProviderItem, len(env.IDs))
	for i := range env.IDs {
		providers[i] = ProviderItem{
			NPI:          displayCell(env, i, 0),
			Name:         displayCell(env, i, 1),
			ProviderType: displayCell(env, i, 2),
			Address:      displayCell(env, i, 3),
			Extra:        extraValues(env, extraFields, i),
		}
		// The id list is authoritative for the NPI even when the display
		// row is truncated.
		if providers[i].NPI == "" {
			providers[i].NPI = env.IDs[i]
		}
	}
	return ProviderResult{Total: env.Total, Providers: providers}
}

func newNPITool(client *upstream.Client) *Tool {
	return &Tool{
		Name:        ToolSearchProviders,
		Description: "Search the NPI registry for healthcare providers by name, NPI number, or practice address. Returns the total match count and matching providers.",
		Params: []Parameter{
			{Name: "terms", Type: "string", Required: true, Description: "Search text matched against NPI, name, provider type and practice address"},
			{Name: "maxList", Type: "integer", Default: 500, Description: "Maximum providers to return (capped at 500)"},
			{Name: "count", Type: "integer", Default: 500, Description: "Page size for the upstream search (capped at 500)"},
			{Name: "offset", Type: "integer", Default: 0, Description: "Number of results to skip"},
			{Name: "q", Type: "string", Description: "Additional query string applied on top of terms; omit entirely when unused"},
			{Name: "df", Type: "string", Default: "NPI,name.full,provider_type,addr_practice.full", Description: "Display fields returned per row"},
			{Name: "sf", Type: "string", Default: "NPI,name.full,provider_type,addr_practice.full", Description: "Fields searched by terms"},
			{Name: "cf", Type: "string", Default: "NPI", Description: "Code field identifying each row"},
			{Name: "ef", Type: "string", Description: "Comma-separated extra fields attached to each provider (e.g. \"licenses,gender\")"},
		},
		Examples: []Example{
			{
				Description: "Find providers named Smith",
				Input:       map[string]any{"terms": "smith"},
				Output: map[string]any{
					"total": 1,
					"providers": []map[string]any{
						{"npi": "1234567890", "name": "SMITH, JANE", "provider_type": "Internal Medicine", "address": "100 Main St, Springfield, IL 62701"},
					},
				},
			},
		},
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			q, extraFields, err := tableQueryFromArgs(args, npiDefaults)
			if err != nil {
				return nil, err
			}
			env, err := client.SearchNPI(ctx, q)
			if err != nil {
				return nil, err
			}
			return mapNPI(env, extraFields), nil
		},
	}
}
