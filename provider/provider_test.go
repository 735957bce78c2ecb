package provider

import (
	"errors"
	"testing"
)

func testCatalog() *Catalog {
	return NewCatalog(map[string]Provider{
		"acme": {
			Name:       "Acme",
			BaseURL:    "https://api.acme.test/v1",
			ModelOrder: []string{"fast-1", "deep-2"},
			Models: map[string]Model{
				"fast-1": {Label: "Fast 1", CostLabel: "low cost"},
				"deep-2": {Label: "Deep 2"},
			},
		},
	})
}

func TestResolve(t *testing.T) {
	c := testCatalog()
	id, err := c.Resolve("acme", "fast-1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if id != "acme/fast-1" {
		t.Errorf("identifier: got %q, want %q", id, "acme/fast-1")
	}
}

func TestResolve_UnknownProvider(t *testing.T) {
	_, err := testCatalog().Resolve("nope", "fast-1")
	if !errors.Is(err, ErrUnknownProvider) {
		t.Errorf("got %v, want ErrUnknownProvider", err)
	}
}

func TestResolve_UnknownModel(t *testing.T) {
	_, err := testCatalog().Resolve("acme", "nope")
	if !errors.Is(err, ErrUnknownModel) {
		t.Errorf("got %v, want ErrUnknownModel", err)
	}
}

func TestDefaultModel_IsFirstDeclared(t *testing.T) {
	m, err := testCatalog().DefaultModel("acme")
	if err != nil {
		t.Fatalf("default model: %v", err)
	}
	if m != "fast-1" {
		t.Errorf("got %q, want %q", m, "fast-1")
	}
}

func TestCostLabel_Fallback(t *testing.T) {
	c := testCatalog()
	if got := c.CostLabel("acme", "fast-1"); got != "low cost" {
		t.Errorf("got %q", got)
	}
	if got := c.CostLabel("acme", "deep-2"); got != "Cost varies" {
		t.Errorf("unlabelled model: got %q", got)
	}
	if got := c.CostLabel("nope", "x"); got != "Cost varies" {
		t.Errorf("unknown pair: got %q", got)
	}
}

func TestValidateCredential(t *testing.T) {
	if err := ValidateCredential("sk-0123456789abcdef"); err != nil {
		t.Errorf("valid credential rejected: %v", err)
	}
	for _, bad := range []string{"", "short", "    sk-1    "} {
		if err := ValidateCredential(bad); !errors.Is(err, ErrBadCredential) {
			t.Errorf("ValidateCredential(%q): got %v, want ErrBadCredential", bad, err)
		}
	}
}

func TestDefault_CatalogShape(t *testing.T) {
	// WHAT: Every built-in provider has a base URL, at least one model, and
	// declared model order consistent with the model map.
	c := Default()
	ids := c.IDs()
	if len(ids) == 0 {
		t.Fatal("empty default catalog")
	}
	for _, id := range ids {
		p, err := c.Get(id)
		if err != nil {
			t.Fatalf("get %s: %v", id, err)
		}
		if p.BaseURL == "" {
			t.Errorf("%s: missing base URL", id)
		}
		if len(p.ModelOrder) == 0 {
			t.Errorf("%s: no models declared", id)
		}
		for _, m := range p.ModelOrder {
			if _, ok := p.Models[m]; !ok {
				t.Errorf("%s: ordered model %q missing from map", id, m)
			}
		}
		if _, err := c.Resolve(id, p.ModelOrder[0]); err != nil {
			t.Errorf("%s: resolve first model: %v", id, err)
		}
	}
}
