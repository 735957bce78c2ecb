// Package provider holds the static LLM provider catalog and resolves
// (provider, model) pairs into the identifier strings the extraction
// backend expects.
//
// The catalog is read-only configuration: display names, per-provider
// model labels, credential field hints and cost labels. It is passed
// explicitly to consumers so tests can swap in a reduced one.
package provider

import (
	"fmt"
	"sort"
	"strings"
)

// Model describes one model entry in the catalog.
type Model struct {
	Label     string // human-readable display label
	CostLabel string // rough cost indication for the UI
}

// Provider is one entry in the static catalog.
type Provider struct {
	Name           string // display name
	BaseURL        string // chat-completions endpoint base
	CredentialName string // label of the credential field
	CredentialHelp string // help text shown next to the credential field
	ModelOrder     []string
	Models         map[string]Model
}

// Catalog is the two-level provider → model lookup table.
type Catalog struct {
	providers map[string]Provider
	order     []string
}

// NewCatalog builds a catalog from explicit provider entries.
// Iteration order follows the sorted provider IDs.
func NewCatalog(providers map[string]Provider) *Catalog {
	order := make([]string, 0, len(providers))
	for id := range providers {
		order = append(order, id)
	}
	sort.Strings(order)
	return &Catalog{providers: providers, order: order}
}

// IDs returns the provider identifiers in stable order.
func (c *Catalog) IDs() []string {
	return append([]string(nil), c.order...)
}

// Get returns a provider entry by ID.
func (c *Catalog) Get(providerID string) (Provider, error) {
	p, ok := c.providers[providerID]
	if !ok {
		return Provider{}, fmt.Errorf("provider: %w: %q", ErrUnknownProvider, providerID)
	}
	return p, nil
}

// Models returns the model IDs for a provider in declared order.
func (c *Catalog) Models(providerID string) ([]string, error) {
	p, err := c.Get(providerID)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), p.ModelOrder...), nil
}

// DefaultModel returns the first declared model for a provider.
func (c *Catalog) DefaultModel(providerID string) (string, error) {
	p, err := c.Get(providerID)
	if err != nil {
		return "", err
	}
	if len(p.ModelOrder) == 0 {
		return "", fmt.Errorf("provider: %q has no models", providerID)
	}
	return p.ModelOrder[0], nil
}

// Resolve validates a (provider, model) pair and renders the identifier
// string consumed by the extraction backend: "<provider>/<model>".
func (c *Catalog) Resolve(providerID, modelID string) (string, error) {
	p, ok := c.providers[providerID]
	if !ok {
		return "", fmt.Errorf("provider: %w: %q", ErrUnknownProvider, providerID)
	}
	if _, ok := p.Models[modelID]; !ok {
		return "", fmt.Errorf("provider: %w: %q for provider %q", ErrUnknownModel, modelID, providerID)
	}
	return providerID + "/" + modelID, nil
}

// CostLabel returns the cost indication for a (provider, model) pair,
// or a generic fallback when the pair is not in the catalog.
func (c *Catalog) CostLabel(providerID, modelID string) string {
	if p, ok := c.providers[providerID]; ok {
		if m, ok := p.Models[modelID]; ok && m.CostLabel != "" {
			return m.CostLabel
		}
	}
	return "Cost varies"
}

// minCredentialLen is the shortest credential accepted by the shape check.
const minCredentialLen = 10

// ValidateCredential performs a shape-only check on a credential string.
// It never contacts the provider.
func ValidateCredential(credential string) error {
	if len(strings.TrimSpace(credential)) < minCredentialLen {
		return fmt.Errorf("provider: %w", ErrBadCredential)
	}
	return nil
}
