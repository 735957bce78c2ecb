package schema

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestBuild_FieldSetEqualsInput(t *testing.T) {
	s, err := Build([]string{"title", "price", "year"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got := s.Fields(); !reflect.DeepEqual(got, []string{"title", "price", "year"}) {
		t.Errorf("fields: got %v", got)
	}

	var doc struct {
		Type       string                     `json:"type"`
		Properties map[string]json.RawMessage `json:"properties"`
	}
	if err := json.Unmarshal(s.ItemJSON(), &doc); err != nil {
		t.Fatalf("unmarshal schema doc: %v", err)
	}
	if doc.Type != "object" {
		t.Errorf("type: got %q", doc.Type)
	}
	if len(doc.Properties) != 3 {
		t.Errorf("properties: got %d, want 3", len(doc.Properties))
	}
	for _, f := range []string{"title", "price", "year"} {
		if _, ok := doc.Properties[f]; !ok {
			t.Errorf("missing property %q", f)
		}
	}
}

func TestBuild_Normalization(t *testing.T) {
	// Duplicates collapse, whitespace trims.
	s, err := Build([]string{" title ", "title", "price"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got := s.Fields(); !reflect.DeepEqual(got, []string{"title", "price"}) {
		t.Errorf("fields: got %v", got)
	}
}

func TestBuild_Rejects(t *testing.T) {
	if _, err := Build(nil); err == nil {
		t.Error("empty field list accepted")
	}
	if _, err := Build([]string{"title", "  "}); err == nil {
		t.Error("blank field name accepted")
	}
}

func TestParseFieldList(t *testing.T) {
	s, err := ParseFieldList("title, price ,, year")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := s.Fields(); !reflect.DeepEqual(got, []string{"title", "price", "year"}) {
		t.Errorf("fields: got %v", got)
	}
}

func TestCompile_ValidatesRecords(t *testing.T) {
	// WHAT: The compiled schema accepts nullable string fields and extra
	// keys, and rejects non-object candidates.
	s, err := Build([]string{"title", "price"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	compiled, err := s.Compile()
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	ok := map[string]any{"title": "A", "price": nil, "error": false}
	if err := compiled.Validate(ok); err != nil {
		t.Errorf("valid record rejected: %v", err)
	}
	if err := compiled.Validate([]any{"not", "an", "object"}); err == nil {
		t.Error("array accepted as record")
	}
}

func TestItemJSON_Deterministic(t *testing.T) {
	s, _ := Build([]string{"b", "a"})
	if string(s.ItemJSON()) != string(s.ItemJSON()) {
		t.Error("schema rendering not deterministic")
	}
}
