package tools

import (
	"github.com/uh-joan/icd-mcp-server/internal/upstream"
)

// tableDefaults holds the per-tool defaults for the Clinical Tables search
// parameters. The two table tools share the same parameter set and differ
// only in these values.
type tableDefaults struct {
	maxList int
	count   int
	df      string
	sf      string
	cf      string
}

// tableQueryFromArgs builds an upstream table query from a validated
// argument map. It returns the query plus the list of extra fields the
// caller asked for (empty when ef was not supplied).
func tableQueryFromArgs(args map[string]any, d tableDefaults) (upstream.TableQuery, []string, error) {
	terms := stringArg(args, "terms", "")
	if terms == "" {
		return upstream.TableQuery{}, nil, validationErrorf("parameter %q is required", "terms")
	}

	maxList, err := intArg(args, "maxList", d.maxList)
	if err != nil {
		return upstream.TableQuery{}, nil, err
	}
	count, err := intArg(args, "count", d.count)
	if err != nil {
		return upstream.TableQuery{}, nil, err
	}
	offset, err := intArg(args, "offset", 0)
	if err != nil {
		return upstream.TableQuery{}, nil, err
	}

	q := upstream.TableQuery{
		Terms:   terms,
		MaxList: maxList,
		Count:   count,
		Offset:  offset,
		DF:      stringArg(args, "df", d.df),
		SF:      stringArg(args, "sf", d.sf),
		CF:      stringArg(args, "cf", d.cf),
		Q:       optionalStringArg(args, "q"),
		EF:      optionalStringArg(args, "ef"),
	}

	var extraFields []string
	if q.EF != nil {
		extraFields = splitFields(*q.EF)
	}
	return q, extraFields, nil
}

// extraValues pulls the per-row extra-field values for row index i. Values
// align by index with the id list; a field whose array is too short yields
// an explicit nil so the key set stays stable across rows.
func extraValues(env *upstream.TableEnvelope, requested []string, i int) map[string]any {
	if len(requested) == 0 || len(env.Extra) == 0 {
		return nil
	}
	out := make(map[string]any, len(env.Extra))
	for field, vals := range env.Extra {
		if i < len(vals) {
			out[field] = vals[i]
		} else {
			out[field] = nil
		}
	}
	return out
}

// displayCell returns display column col of row i, or "" when the row is
// missing, malformed, or too short. Upstream truncation degrades to empty
// values instead of failing the whole response.
func displayCell(env *upstream.TableEnvelope, i, col int) string {
	if i >= len(env.Display) {
		return ""
	}
	row := env.Display[i]
	if col >= len(row) {
		return ""
	}
	return row[col]
}
