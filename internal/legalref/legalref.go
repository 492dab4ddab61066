// Package legalref resolves finding types to the statute provisions and
// decided cases worth citing in a counter-response. The analysis core treats
// lookup as an external capability: the builtin catalog covers offline use,
// and the decorators in this package wrap remote providers when one is
// configured.
package legalref

import (
	"context"
	"slices"

	"github.com/medhold/dispute-cli/internal/model"
)

// Lookup resolves finding types to legal references. Implementations must be
// safe for concurrent use. Returned references follow the order of the
// requested types, one entry per distinct type the provider knows about.
type Lookup interface {
	Lookup(ctx context.Context, findingTypes []string) ([]model.LegalReference, error)
}

// LookupFunc adapts a function to the Lookup interface.
type LookupFunc func(ctx context.Context, findingTypes []string) ([]model.LegalReference, error)

// Lookup calls f.
func (f LookupFunc) Lookup(ctx context.Context, findingTypes []string) ([]model.LegalReference, error) {
	return f(ctx, findingTypes)
}

// StaticCatalog serves references from an in-memory table keyed by finding
// type. Types without an entry are skipped rather than treated as errors, so
// a partial catalog still produces a useful report.
type StaticCatalog struct {
	entries map[string]model.LegalReference
}

// NewStaticCatalog builds a catalog from the given entries. A later entry for
// the same finding type replaces an earlier one.
func NewStaticCatalog(entries []model.LegalReference) *StaticCatalog {
	m := make(map[string]model.LegalReference, len(entries))
	for _, e := range entries {
		m[e.FindingType] = e
	}
	return &StaticCatalog{entries: m}
}

// Lookup returns the catalog entries for the requested types in request
// order. Repeated types yield a single entry.
func (c *StaticCatalog) Lookup(_ context.Context, findingTypes []string) ([]model.LegalReference, error) {
	var refs []model.LegalReference
	seen := make(map[string]bool, len(findingTypes))
	for _, ft := range findingTypes {
		if seen[ft] {
			continue
		}
		seen[ft] = true
		if e, ok := c.entries[ft]; ok {
			refs = append(refs, copyReference(e))
		}
	}
	return refs, nil
}

// Types returns the finding types the catalog has entries for, sorted.
func (c *StaticCatalog) Types() []string {
	types := make([]string, 0, len(c.entries))
	for ft := range c.entries {
		types = append(types, ft)
	}
	slices.Sort(types)
	return types
}

func copyReference(e model.LegalReference) model.LegalReference {
	e.Provisions = slices.Clone(e.Provisions)
	e.Precedents = slices.Clone(e.Precedents)
	return e
}
