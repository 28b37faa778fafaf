package upstream

import (
	"net/url"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestTableQuery_Encode_AlwaysIncludesBaseParams(t *testing.T) {
	q := TableQuery{
		Terms:   "tuberc",
		MaxList: 500,
		Count:   500,
		Offset:  0,
		DF:      "code,name",
		SF:      "code,name",
		CF:      "code",
	}

	values, err := url.ParseQuery(q.Encode())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	for key, want := range map[string]string{
		"terms":   "tuberc",
		"maxList": "500",
		"count":   "500",
		"offset":  "0",
		"df":      "code,name",
		"sf":      "code,name",
		"cf":      "code",
	} {
		if got := values.Get(key); got != want {
			t.Errorf("Expected %s=%s, got %q", key, want, got)
		}
	}
}

func TestTableQuery_Encode_OmitsQAndEFWhenAbsent(t *testing.T) {
	q := TableQuery{Terms: "tuberc", MaxList: 7, Count: 7}

	values, _ := url.ParseQuery(q.Encode())
	if _, present := values["q"]; present {
		t.Error("Expected q to be absent when not supplied")
	}
	if _, present := values["ef"]; present {
		t.Error("Expected ef to be absent when not supplied")
	}
}

func TestTableQuery_Encode_EmptyStringDiffersFromAbsent(t *testing.T) {
	// The upstream treats an empty q differently from a missing one, so an
	// explicitly-supplied empty string must still appear in the query.
	q := TableQuery{Terms: "tuberc", Q: strPtr(""), EF: strPtr("excludes,notes")}

	values, _ := url.ParseQuery(q.Encode())
	if _, present := values["q"]; !present {
		t.Error("Expected explicitly empty q to be encoded")
	}
	if got := values.Get("ef"); got != "excludes,notes" {
		t.Errorf("Expected ef=excludes,notes, got %q", got)
	}
}

func TestTableQuery_Encode_ClampsCounts(t *testing.T) {
	q := TableQuery{Terms: "a", MaxList: 9999, Count: 50000}

	values, _ := url.ParseQuery(q.Encode())
	if got := values.Get("maxList"); got != "500" {
		t.Errorf("Expected maxList clamped to 500, got %s", got)
	}
	if got := values.Get("count"); got != "500" {
		t.Errorf("Expected count clamped to 500, got %s", got)
	}
}

func TestParseTableEnvelope_FullEnvelope(t *testing.T) {
	body := []byte(`[78,["A15.0","A15.4"],null,[["A15.0","Tuberculosis of lung"],["A15.4","Tuberculosis of intrathoracic lymph nodes"]]]`)

	env, err := ParseTableEnvelope(body)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if env.Total != 78 {
		t.Errorf("Expected total 78, got %d", env.Total)
	}
	if len(env.IDs) != 2 || env.IDs[0] != "A15.0" {
		t.Errorf("Unexpected ids: %v", env.IDs)
	}
	if env.Extra != nil {
		t.Errorf("Expected nil extra for null envelope[2], got %v", env.Extra)
	}
	if len(env.Display) != 2 {
		t.Fatalf("Expected 2 display rows, got %d", len(env.Display))
	}
	if env.Display[0][1] != "Tuberculosis of lung" {
		t.Errorf("Unexpected display row: %v", env.Display[0])
	}
}

func TestParseTableEnvelope_ExtraFields(t *testing.T) {
	body := []byte(`[2,["A15.0","A15.4"],{"excludes":["a","b"],"notes":["n1","n2"]},[["A15.0","x"],["A15.4","y"]]]`)

	env, err := ParseTableEnvelope(body)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(env.Extra) != 2 {
		t.Fatalf("Expected 2 extra fields, got %d", len(env.Extra))
	}
	if env.Extra["excludes"][1] != "b" {
		t.Errorf("Unexpected extra values: %v", env.Extra["excludes"])
	}
}

func TestParseTableEnvelope_TruncatedDisplayRows(t *testing.T) {
	// Upstream truncation: fewer display rows than ids must not error.
	body := []byte(`[3,["A1","A2","A3"],null,[["A1","first"]]]`)

	env, err := ParseTableEnvelope(body)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(env.IDs) != 3 {
		t.Errorf("Expected 3 ids, got %d", len(env.IDs))
	}
	if len(env.Display) != 1 {
		t.Errorf("Expected 1 display row, got %d", len(env.Display))
	}
}

func TestParseTableEnvelope_MalformedDisplayRowDegrades(t *testing.T) {
	body := []byte(`[2,["A1","A2"],null,[["A1","ok"],"not-an-array"]]`)

	env, err := ParseTableEnvelope(body)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if env.Display[1] != nil {
		t.Errorf("Expected malformed row to be nil, got %v", env.Display[1])
	}
}

func TestParseTableEnvelope_ShortEnvelope(t *testing.T) {
	env, err := ParseTableEnvelope([]byte(`[5,["A1"]]`))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if env.Display != nil {
		t.Errorf("Expected nil display, got %v", env.Display)
	}
}

func TestParseTableEnvelope_TopLevelObjectIsShapeError(t *testing.T) {
	_, err := ParseTableEnvelope([]byte(`{"total":5}`))
	if err == nil {
		t.Fatal("Expected error for object envelope")
	}
	if _, ok := err.(*ShapeError); !ok {
		t.Errorf("Expected ShapeError, got %T: %v", err, err)
	}
}

func TestParseTableEnvelope_NonNumericTotalIsShapeError(t *testing.T) {
	_, err := ParseTableEnvelope([]byte(`["seventy-eight",["A1"]]`))
	if _, ok := err.(*ShapeError); !ok {
		t.Errorf("Expected ShapeError, got %T: %v", err, err)
	}
}

func TestParseTableEnvelope_NonArrayIDsIsShapeError(t *testing.T) {
	_, err := ParseTableEnvelope([]byte(`[78,"A15.0"]`))
	if _, ok := err.(*ShapeError); !ok {
		t.Errorf("Expected ShapeError, got %T: %v", err, err)
	}
}
