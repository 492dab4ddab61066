// Package patterns holds the detection rule catalog: tactic patterns
// matched against single statements, claim detectors feeding the pairwise
// contradiction pass, and the claim-compatibility table. The library is
// built once at process start and read-only afterwards.
package patterns

import (
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/medhold/dispute-cli/internal/model"
)

// Library is the validated, immutable rule catalog.
type Library struct {
	patterns  []model.Pattern
	tactics   []model.Pattern
	detectors []model.Pattern
	byID      map[string]model.Pattern
	table     *ClaimTable
}

// NewLibrary validates the patterns against the claim table and builds the
// catalog. Every table row must be reachable through at least one claim
// detector per key, so config typos fail at startup instead of silently
// never matching.
func NewLibrary(patterns []model.Pattern, table *ClaimTable) (*Library, error) {
	if table == nil {
		var err error
		table, err = NewClaimTable(nil)
		if err != nil {
			return nil, err
		}
	}

	lib := &Library{
		patterns: make([]model.Pattern, 0, len(patterns)),
		byID:     make(map[string]model.Pattern, len(patterns)),
		table:    table,
	}
	declared := make(map[model.ClaimKey]bool)

	for i, p := range patterns {
		if p.ID == "" {
			return nil, eris.Errorf("patterns: pattern %d: empty id", i)
		}
		if _, dup := lib.byID[p.ID]; dup {
			return nil, eris.Errorf("patterns: pattern %s defined twice", p.ID)
		}
		if !p.Category.Valid() {
			return nil, eris.Errorf("patterns: pattern %s: unknown category %q", p.ID, p.Category)
		}
		if len(p.Keywords) == 0 && len(p.Phrases) == 0 {
			return nil, eris.Errorf("patterns: pattern %s: no keywords or phrases", p.ID)
		}

		if p.Category == model.CategoryContradiction {
			if p.ClaimKey == "" {
				return nil, eris.Errorf("patterns: pattern %s: contradiction pattern without claim key", p.ID)
			}
			declared[p.ClaimKey] = true
			lib.detectors = append(lib.detectors, p)
		} else {
			if p.Strength <= 0 || p.Strength > 1 {
				return nil, eris.Errorf("patterns: pattern %s: strength %v outside (0,1]", p.ID, p.Strength)
			}
			lib.tactics = append(lib.tactics, p)
		}

		lib.byID[p.ID] = p
		lib.patterns = append(lib.patterns, p)
	}

	for _, pair := range table.Pairs() {
		for _, key := range []model.ClaimKey{pair.A, pair.B} {
			if !declared[key] {
				return nil, eris.Errorf("patterns: claim pair %s: no pattern declares claim key %q", pair.FindingType, key)
			}
		}
	}

	return lib, nil
}

// Patterns returns the full catalog in declaration order. Read-only.
func (l *Library) Patterns() []model.Pattern {
	return l.patterns
}

// Tactics returns the single-statement patterns in declaration order.
func (l *Library) Tactics() []model.Pattern {
	return l.tactics
}

// Detectors returns the claim-detector patterns in declaration order.
func (l *Library) Detectors() []model.Pattern {
	return l.detectors
}

// ByID looks up a pattern by id.
func (l *Library) ByID(id string) (model.Pattern, bool) {
	p, ok := l.byID[id]
	return p, ok
}

// Table returns the claim-compatibility table.
func (l *Library) Table() *ClaimTable {
	return l.table
}

// TagClaims runs the claim detectors over a statement's text and returns
// the detected claim keys with their trigger spans, deduplicated per key
// and ordered by position. Implements the extractor's ClaimTagger.
func (l *Library) TagClaims(text string) []model.ClaimRef {
	perKey := make(map[model.ClaimKey][]model.Span)
	var order []model.ClaimKey
	for _, p := range l.detectors {
		spans := FindSpans(p, text)
		if len(spans) == 0 {
			continue
		}
		if _, seen := perKey[p.ClaimKey]; !seen {
			order = append(order, p.ClaimKey)
		}
		perKey[p.ClaimKey] = append(perKey[p.ClaimKey], spans...)
	}

	var refs []model.ClaimRef
	for _, key := range order {
		for _, sp := range dedupSpans(perKey[key]) {
			refs = append(refs, model.ClaimRef{Key: key, Span: sp})
		}
	}
	sort.SliceStable(refs, func(i, j int) bool {
		return refs[i].Span.Start < refs[j].Span.Start
	})
	return refs
}

// FindSpans returns the spans where the pattern's phrases or keywords occur
// in text, case-folded, longest match winning where occurrences overlap.
func FindSpans(p model.Pattern, text string) []model.Span {
	var spans []model.Span
	for _, phrase := range p.Phrases {
		spans = append(spans, findAll(text, phrase)...)
	}
	for _, kw := range p.Keywords {
		spans = append(spans, findAll(text, kw)...)
	}
	return dedupSpans(spans)
}

// findAll locates every caseless occurrence of needle in text. Lowercased
// search keeps byte offsets valid for Norwegian and English input.
func findAll(text, needle string) []model.Span {
	if needle == "" {
		return nil
	}
	lowerText := strings.ToLower(text)
	lowerNeedle := strings.ToLower(needle)
	var spans []model.Span
	idx := 0
	for {
		rel := strings.Index(lowerText[idx:], lowerNeedle)
		if rel < 0 {
			return spans
		}
		start := idx + rel
		end := start + len(lowerNeedle)
		spans = append(spans, model.Span{Start: start, End: end, Text: text[start:end]})
		idx = end
	}
}

// dedupSpans drops spans overlapped by a longer one and returns the rest in
// position order.
func dedupSpans(spans []model.Span) []model.Span {
	if len(spans) <= 1 {
		return spans
	}
	sorted := make([]model.Span, len(spans))
	copy(sorted, spans)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Len() != sorted[j].Len() {
			return sorted[i].Len() > sorted[j].Len()
		}
		return sorted[i].Start < sorted[j].Start
	})

	var kept []model.Span
	for _, sp := range sorted {
		overlaps := false
		for _, k := range kept {
			if sp.Start < k.End && k.Start < sp.End {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, sp)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Start < kept[j].Start
	})
	return kept
}
