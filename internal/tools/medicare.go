package tools

import (
	"context"
	"strconv"
	"strings"

	"github.com/uh-joan/icd-mcp-server/internal/upstream"
)

// ToolSearchMedicareClaims is the tool identifier and HTTP path for
// Medicare claims search.
const ToolSearchMedicareClaims = "search_medicare_claims"

// DatasetVariant selects which CMS Medicare Physician & Other Practitioners
// dataset to query. Each variant has its own upstream identifier, filter
// set, and output field mapping.
type DatasetVariant string

const (
	VariantGeographyAndService DatasetVariant = "geography_and_service"
	VariantProviderAndService  DatasetVariant = "provider_and_service"
	VariantProvider            DatasetVariant = "provider"

	defaultClaimsSize = 100
)

// datasetIDs maps each variant to its fixed CMS dataset identifier.
var datasetIDs = map[DatasetVariant]string{
	VariantGeographyAndService: "6fea9d79-0129-4e4c-b1b8-23cd86a4f435",
	VariantProviderAndService:  "92396110-2aed-4d63-a6a2-5d6207d46a29",
	VariantProvider:            "8889d81e-2ee7-448f-8713-f071038289b5",
}

// filterSlot assigns each filter argument a fixed filter-group index and
// upstream column path. Slots are per-field, not a running counter, so
// adding a field can never renumber existing ones. A slot only applies to
// variants where the column exists; elsewhere the argument is silently
// ignored.
type filterSlot struct {
	arg      string
	slot     int
	path     string
	variants []DatasetVariant
}

var filterSlots = []filterSlot{
	{arg: "hcpcs_code", slot: 0, path: "HCPCS_Cd", variants: []DatasetVariant{VariantGeographyAndService, VariantProviderAndService}},
	{arg: "geo_level", slot: 1, path: "Rndrng_Prvdr_Geo_Lvl", variants: []DatasetVariant{VariantGeographyAndService}},
	{arg: "geo_code", slot: 2, path: "Rndrng_Prvdr_Geo_Cd", variants: []DatasetVariant{VariantGeographyAndService}},
	{arg: "place_of_service", slot: 3, path: "Place_Of_Srvc", variants: []DatasetVariant{VariantGeographyAndService, VariantProviderAndService}},
}

func (f filterSlot) appliesTo(v DatasetVariant) bool {
	for _, variant := range f.variants {
		if variant == v {
			return true
		}
	}
	return false
}

// ClaimsResult is the normalized output of a Medicare claims search.
// Total equals len(Results): the CMS dataset API does not report a
// separate result-set total, and the gateway does not guess one.
type ClaimsResult struct {
	Total   int   `json:"total"`
	Results []any `json:"results"`
}

// GeoServiceRow is one row of the geography-and-service dataset.
type GeoServiceRow struct {
	GeoLevel               string  `json:"geo_level"`
	GeoCode                string  `json:"geo_code"`
	GeoDesc                string  `json:"geo_desc"`
	HCPCSCode              string  `json:"hcpcs_code"`
	HCPCSDesc              string  `json:"hcpcs_desc"`
	PlaceOfService         string  `json:"place_of_service"`
	TotalProviders         int     `json:"total_providers"`
	TotalServices          float64 `json:"total_services"`
	TotalBeneficiaries     int     `json:"total_beneficiaries"`
	AvgSubmittedCharge     float64 `json:"avg_submitted_charge"`
	AvgAllowedAmount       float64 `json:"avg_allowed_amount"`
	AvgMedicarePayment     float64 `json:"avg_medicare_payment"`
	AvgStandardizedPayment float64 `json:"avg_standardized_payment"`
}

// ProviderServiceRow is one row of the provider-and-service dataset.
type ProviderServiceRow struct {
	NPI                string  `json:"npi"`
	ProviderName       string  `json:"provider_name"`
	Credentials        string  `json:"credentials"`
	City               string  `json:"city"`
	State              string  `json:"state"`
	ProviderType       string  `json:"provider_type"`
	HCPCSCode          string  `json:"hcpcs_code"`
	HCPCSDesc          string  `json:"hcpcs_desc"`
	PlaceOfService     string  `json:"place_of_service"`
	TotalServices      float64 `json:"total_services"`
	TotalBeneficiaries int     `json:"total_beneficiaries"`
	AvgSubmittedCharge float64 `json:"avg_submitted_charge"`
	AvgAllowedAmount   float64 `json:"avg_allowed_amount"`
	AvgMedicarePayment float64 `json:"avg_medicare_payment"`
}

// ProviderRow is one row of the per-provider summary dataset.
type ProviderRow struct {
	NPI                      string  `json:"npi"`
	ProviderName             string  `json:"provider_name"`
	Credentials              string  `json:"credentials"`
	City                     string  `json:"city"`
	State                    string  `json:"state"`
	ProviderType             string  `json:"provider_type"`
	TotalHCPCSCodes          int     `json:"total_hcpcs_codes"`
	TotalServices            float64 `json:"total_services"`
	TotalBeneficiaries       int     `json:"total_beneficiaries"`
	TotalSubmittedCharges    float64 `json:"total_submitted_charges"`
	TotalAllowedAmount       float64 `json:"total_allowed_amount"`
	TotalMedicarePayment     float64 `json:"total_medicare_payment"`
	TotalStandardizedPayment float64 `json:"total_standardized_payment"`
}

// mapClaims converts CMS dataset records into the claims tool's output
// using the field mapping of the active variant.
func mapClaims(variant DatasetVariant, records []map[string]any) ClaimsResult {
	results := make([]any, len(records))
	for i, rec := range records {
		switch variant {
		case VariantProviderAndService:
			results[i] = mapProviderServiceRow(rec)
		case VariantProvider:
			results[i] = mapProviderRow(rec)
		default:
			results[i] = mapGeoServiceRow(rec)
		}
	}
	return ClaimsResult{Total: len(results), Results: results}
}

func mapGeoServiceRow(rec map[string]any) GeoServiceRow {
	return GeoServiceRow{
		GeoLevel:               recString(rec, "Rndrng_Prvdr_Geo_Lvl"),
		GeoCode:                recString(rec, "Rndrng_Prvdr_Geo_Cd"),
		GeoDesc:                recString(rec, "Rndrng_Prvdr_Geo_Desc"),
		HCPCSCode:              recString(rec, "HCPCS_Cd"),
		HCPCSDesc:              recString(rec, "HCPCS_Desc"),
		PlaceOfService:         recString(rec, "Place_Of_Srvc"),
		TotalProviders:         recInt(rec, "Tot_Rndrng_Prvdrs"),
		TotalServices:          recFloat(rec, "Tot_Srvcs"),
		TotalBeneficiaries:     recInt(rec, "Tot_Benes"),
		AvgSubmittedCharge:     recFloat(rec, "Avg_Sbmtd_Chrg"),
		AvgAllowedAmount:       recFloat(rec, "Avg_Mdcr_Alowd_Amt"),
		AvgMedicarePayment:     recFloat(rec, "Avg_Mdcr_Pymt_Amt"),
		AvgStandardizedPayment: recFloat(rec, "Avg_Mdcr_Stdzd_Amt"),
	}
}

func mapProviderServiceRow(rec map[string]any) ProviderServiceRow {
	return ProviderServiceRow{
		NPI:                recString(rec, "Rndrng_NPI"),
		ProviderName:       providerName(rec),
		Credentials:        recString(rec, "Rndrng_Prvdr_Crdntls"),
		City:               recString(rec, "Rndrng_Prvdr_City"),
		State:              recString(rec, "Rndrng_Prvdr_State_Abrvtn"),
		ProviderType:       recString(rec, "Rndrng_Prvdr_Type"),
		HCPCSCode:          recString(rec, "HCPCS_Cd"),
		HCPCSDesc:          recString(rec, "HCPCS_Desc"),
		PlaceOfService:     recString(rec, "Place_Of_Srvc"),
		TotalServices:      recFloat(rec, "Tot_Srvcs"),
		TotalBeneficiaries: recInt(rec, "Tot_Benes"),
		AvgSubmittedCharge: recFloat(rec, "Avg_Sbmtd_Chrg"),
		AvgAllowedAmount:   recFloat(rec, "Avg_Mdcr_Alowd_Amt"),
		AvgMedicarePayment: recFloat(rec, "Avg_Mdcr_Pymt_Amt"),
	}
}

func mapProviderRow(rec map[string]any) ProviderRow {
	return ProviderRow{
		NPI:                      recString(rec, "Rndrng_NPI"),
		ProviderName:             providerName(rec),
		Credentials:              recString(rec, "Rndrng_Prvdr_Crdntls"),
		City:                     recString(rec, "Rndrng_Prvdr_City"),
		State:                    recString(rec, "Rndrng_Prvdr_State_Abrvtn"),
		ProviderType:             recString(rec, "Rndrng_Prvdr_Type"),
		TotalHCPCSCodes:          recInt(rec, "Tot_HCPCS_Cds"),
		TotalServices:            recFloat(rec, "Tot_Srvcs"),
		TotalBeneficiaries:       recInt(rec, "Tot_Benes"),
		TotalSubmittedCharges:    recFloat(rec, "Tot_Sbmtd_Chrg"),
		TotalAllowedAmount:       recFloat(rec, "Tot_Mdcr_Alowd_Amt"),
		TotalMedicarePayment:     recFloat(rec, "Tot_Mdcr_Pymt_Amt"),
		TotalStandardizedPayment: recFloat(rec, "Tot_Mdcr_Stdzd_Amt"),
	}
}

// providerName joins the upstream name columns as "Last, First MI". The
// middle-initial segment is omitted entirely when absent; organizations
// (no first name) yield just the organization name.
func providerName(rec map[string]any) string {
	last := recString(rec, "Rndrng_Prvdr_Last_Org_Name")
	first := recString(rec, "Rndrng_Prvdr_First_Name")
	mi := recString(rec, "Rndrng_Prvdr_MI")

	if first == "" {
		return last
	}
	name := last + ", " + first
	if mi != "" {
		name += " " + mi
	}
	return name
}

// recString reads a record field as a string; non-string values yield "".
func recString(rec map[string]any, key string) string {
	if s, ok := rec[key].(string); ok {
		return s
	}
	return ""
}

// recInt reads a record field as an integer. CMS serves numerics as
// strings; unparseable values degrade to 0 rather than failing the row.
func recInt(rec map[string]any, key string) int {
	switch v := rec[key].(type) {
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return int(f)
		}
	}
	return 0
}

// recFloat reads a record field as a float with the same degradation
// policy as recInt.
func recFloat(rec map[string]any, key string) float64 {
	switch v := rec[key].(type) {
	case float64:
		return v
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return 0
}

// datasetQueryFromArgs builds the CMS dataset query for the active variant.
func datasetQueryFromArgs(args map[string]any, variant DatasetVariant) (upstream.DatasetQuery, error) {
	size, err := intArg(args, "size", defaultClaimsSize)
	if err != nil {
		return upstream.DatasetQuery{}, err
	}
	offset, err := intArg(args, "offset", 0)
	if err != nil {
		return upstream.DatasetQuery{}, err
	}

	q := upstream.DatasetQuery{
		Size:    size,
		Offset:  offset,
		Keyword: optionalStringArg(args, "keyword"),
	}

	for _, f := range filterSlots {
		if !f.appliesTo(variant) {
			continue
		}
		if value := stringArg(args, f.arg, ""); value != "" {
			q.Filters = append(q.Filters, upstream.Filter{Slot: f.slot, Path: f.path, Value: value})
		}
	}

	sortObj, err := objectArg(args, "sort")
	if err != nil {
		return upstream.DatasetQuery{}, err
	}
	if sortObj != nil {
		field := stringArg(sortObj, "field", "")
		if field == "" {
			return upstream.DatasetQuery{}, validationErrorf("parameter %q: field is required", "sort")
		}
		q.Sort = &upstream.Sort{
			Field:      field,
			Descending: strings.EqualFold(stringArg(sortObj, "direction", "asc"), "desc"),
		}
	}

	return q, nil
}

func newMedicareTool(client *upstream.Client) *Tool {
	return &Tool{
		Name:        ToolSearchMedicareClaims,
		Description: "Search Medicare Physician & Other Practitioners claims data. Selects one of three CMS datasets via dataset_type: aggregated by geography and service, by provider and service, or by provider. Note: total reflects rows returned, not the full match count — the upstream API does not report one.",
		Params: []Parameter{
			{Name: "dataset_type", Type: "string", Default: string(VariantGeographyAndService),
				Enum:        []string{string(VariantGeographyAndService), string(VariantProviderAndService), string(VariantProvider)},
				Description: "Which CMS dataset to query"},
			{Name: "hcpcs_code", Type: "string", Description: "Filter by HCPCS procedure code (ignored for the provider dataset)"},
			{Name: "geo_level", Type: "string", Description: "Filter by geography level, \"National\" or \"State\" (geography dataset only)"},
			{Name: "geo_code", Type: "string", Description: "Filter by FIPS geography code (geography dataset only)"},
			{Name: "place_of_service", Type: "string", Description: "Filter by place of service, \"F\" (facility) or \"O\" (office); ignored for the provider dataset"},
			{Name: "size", Type: "integer", Default: defaultClaimsSize, Description: "Maximum rows to return (capped at 5000)"},
			{Name: "offset", Type: "integer", Default: 0, Description: "Number of rows to skip"},
			{Name: "keyword", Type: "string", Description: "Free-text keyword search across the dataset"},
			{Name: "sort", Type: "object", Description: "Sort order: {field: upstream column, direction: asc|desc}",
				Properties: map[string]any{
					"field":     map[string]any{"type": "string", "description": "Upstream column name (e.g. Tot_Srvcs)"},
					"direction": map[string]any{"type": "string", "enum": []string{"asc", "desc"}},
				}},
		},
		Examples: []Example{
			{
				Description: "National totals for office visits (HCPCS 99213)",
				Input:       map[string]any{"hcpcs_code": "99213", "geo_level": "National", "size": 1},
			},
			{
				Description: "Per-provider summaries, highest service volume first",
				Input: map[string]any{
					"dataset_type": "provider",
					"size":         10,
					"sort":         map[string]any{"field": "Tot_Srvcs", "direction": "desc"},
				},
			},
		},
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			variant := DatasetVariant(stringArg(args, "dataset_type", string(VariantGeographyAndService)))
			datasetID, ok := datasetIDs[variant]
			if !ok {
				return nil, validationErrorf("parameter %q: unknown dataset type %q", "dataset_type", variant)
			}
			q, err := datasetQueryFromArgs(args, variant)
			if err != nil {
				return nil, err
			}
			records, err := client.SearchDataset(ctx, datasetID, q)
			if err != nil {
				return nil, err
			}
			return mapClaims(variant, records), nil
		},
	}
}
