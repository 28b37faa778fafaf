package upstream

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// MaxDatasetSize caps the page size for the CMS dataset API.
const MaxDatasetSize = 5000

// Filter is one column filter for a CMS dataset query. Slot is the fixed
// filter-group index assigned to the field; keeping it stable means adding
// a filter can never renumber existing ones.
type Filter struct {
	Slot  int
	Path  string
	Value string
}

// Sort orders a CMS dataset query by a single upstream column.
type Sort struct {
	Field      string
	Descending bool
}

// DatasetQuery holds the parameters for a CMS dataset data request.
// Keyword is a pointer because the upstream distinguishes an absent
// parameter from an empty one.
type DatasetQuery struct {
	Size    int
	Offset  int
	Keyword *string
	Filters []Filter
	Sort    *Sort
}

// Encode renders the query string the way the data.cms.gov dataset API
// expects. Size is clamped to MaxDatasetSize before encoding. Column
// filters encode as indexed filter groups:
//
//	filter[filter-N][condition][path]=<column>
//	filter[filter-N][condition][operator]==
//	filter[filter-N][condition][value]=<value>
func (q DatasetQuery) Encode() string {
	v := url.Values{}
	v.Set("size", strconv.Itoa(clamp(q.Size, MaxDatasetSize)))
	v.Set("offset", strconv.Itoa(q.Offset))
	if q.Keyword != nil {
		v.Set("keyword", *q.Keyword)
	}
	for _, f := range q.Filters {
		group := fmt.Sprintf("filter[filter-%d][condition]", f.Slot)
		v.Set(group+"[path]", f.Path)
		v.Set(group+"[operator]", "=")
		v.Set(group+"[value]", f.Value)
	}
	if q.Sort != nil && q.Sort.Field != "" {
		field := q.Sort.Field
		if q.Sort.Descending {
			field = "-" + field
		}
		v.Set("sort", field)
	}
	return v.Encode()
}

// ParseDatasetRecords decodes the raw body of a dataset data response,
// which must be a flat array of records. Non-object rows are dropped;
// a non-array top level is a ShapeError.
func ParseDatasetRecords(body []byte) ([]map[string]any, error) {
	var rows []json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, &ShapeError{Msg: "expected array of records"}
	}
	records := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		var rec map[string]any
		if err := json.Unmarshal(row, &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}
