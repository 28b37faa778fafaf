package upstream

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// MaxTableCount caps maxList and count for the Clinical Tables search APIs.
const MaxTableCount = 500

// TableQuery holds the parameters for an NLM Clinical Tables search.
// Q and EF are pointers because the upstream distinguishes an absent
// parameter from an empty one; nil means "do not send".
type TableQuery struct {
	Terms   string
	MaxList int
	Count   int
	Offset  int
	DF      string
	SF      string
	CF      string
	Q       *string
	EF      *string
}

// Encode renders the query string the way the Clinical Tables APIs expect:
// terms, maxList, count, offset, df, sf and cf are always present, q and ef
// only when supplied. Count fields are clamped to MaxTableCount.
func (q TableQuery) Encode() string {
	v := url.Values{}
	v.Set("terms", q.Terms)
	v.Set("maxList", strconv.Itoa(clamp(q.MaxList, MaxTableCount)))
	v.Set("count", strconv.Itoa(clamp(q.Count, MaxTableCount)))
	v.Set("offset", strconv.Itoa(q.Offset))
	v.Set("df", q.DF)
	v.Set("sf", q.SF)
	v.Set("cf", q.CF)
	if q.Q != nil {
		v.Set("q", *q.Q)
	}
	if q.EF != nil {
		v.Set("ef", *q.EF)
	}
	return v.Encode()
}

func clamp(n, max int) int {
	if n > max {
		return max
	}
	return n
}

// TableEnvelope is the decoded form of the positional 4-element array the
// Clinical Tables APIs return: [total, idList, extraFieldsMap, displayRows].
type TableEnvelope struct {
	Total int
	IDs   []string
	// Extra maps a requested ef field name to its per-row values, aligned by
	// index with IDs. Nil when the upstream sent null or nothing.
	Extra map[string][]any
	// Display holds the df columns per row. A nil row marks a display entry
	// the upstream omitted or sent in a non-array shape.
	Display [][]string
}

// ParseTableEnvelope decodes the raw body of a table search response.
// The top-level shape must be an array of at least two elements with a
// numeric total and an array id list; anything else is a ShapeError.
// Elements beyond that degrade: a malformed extra-fields map becomes nil,
// malformed display rows become nil rows.
func ParseTableEnvelope(body []byte) (*TableEnvelope, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &ShapeError{Msg: "expected positional array envelope"}
	}
	if len(raw) < 2 {
		return nil, &ShapeError{Msg: fmt.Sprintf("envelope has %d elements, need at least 2", len(raw))}
	}

	var total float64
	if err := json.Unmarshal(raw[0], &total); err != nil {
		return nil, &ShapeError{Msg: "envelope[0] is not a numeric total"}
	}
	if total < 0 {
		return nil, &ShapeError{Msg: fmt.Sprintf("envelope total is negative: %v", total)}
	}

	var ids []string
	if err := json.Unmarshal(raw[1], &ids); err != nil {
		return nil, &ShapeError{Msg: "envelope[1] is not an array of ids"}
	}

	env := &TableEnvelope{Total: int(total), IDs: ids}

	if len(raw) > 2 {
		var extra map[string][]any
		if err := json.Unmarshal(raw[2], &extra); err == nil && len(extra) > 0 {
			env.Extra = extra
		}
	}

	if len(raw) > 3 {
		var rows []json.RawMessage
		if err := json.Unmarshal(raw[3], &rows); err == nil {
			env.Display = make([][]string, len(rows))
			for i, row := range rows {
				var cells []any
				if err := json.Unmarshal(row, &cells); err != nil {
					continue // non-array row stays nil
				}
				parsed := make([]string, len(cells))
				for j, cell := range cells {
					if s, ok := cell.(string); ok {
						parsed[j] = s
					}
				}
				env.Display[i] = parsed
			}
		}
	}

	return env, nil
}
