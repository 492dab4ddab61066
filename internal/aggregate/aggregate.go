// Package aggregate folds raw pattern matches into deduplicated, severity
// ranked findings. The same match set always aggregates to the same finding
// list.
package aggregate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/medhold/dispute-cli/internal/model"
	"github.com/medhold/dispute-cli/internal/patterns"
)

// Severity bands and the noise floor. Fixed constants, not configurable.
const (
	criticalThreshold = 0.85
	warningThreshold  = 0.70
	noiseFloor        = 0.50
)

// severityFor maps a confidence to its band.
func severityFor(confidence float64) model.Severity {
	switch {
	case confidence >= criticalThreshold:
		return model.SeverityCritical
	case confidence >= warningThreshold:
		return model.SeverityWarning
	default:
		return model.SeverityInfo
	}
}

// Findings groups matches by type, takes the maximum confidence per group,
// unions the evidence spans, and drops groups below the noise floor. Output
// is sorted by confidence descending, ties broken by earliest evidence
// offset.
func Findings(matches []model.PatternMatch, lib *patterns.Library) []model.Finding {
	matches = dropSubsumed(matches)

	type group struct {
		key     string
		matches []model.PatternMatch
	}
	index := make(map[string]int)
	var groups []group
	for _, m := range matches {
		key := groupKey(m)
		idx, ok := index[key]
		if !ok {
			idx = len(groups)
			index[key] = idx
			groups = append(groups, group{key: key})
		}
		groups[idx].matches = append(groups[idx].matches, m)
	}

	findings := make([]model.Finding, 0, len(groups))
	for _, g := range groups {
		f := buildFinding(g.matches, lib)
		if f.Confidence < noiseFloor {
			continue
		}
		findings = append(findings, f)
	}

	sortFindings(findings)
	return findings
}

// groupKey is the pattern id for tactic matches and a synthetic
// "contradiction:<pair>" key for pairwise hits.
func groupKey(m model.PatternMatch) string {
	if m.Category == model.CategoryContradiction {
		return "contradiction:" + m.ClaimPair
	}
	return m.Type
}

// dropSubsumed removes matches whose spans all lie within the spans of a
// strictly more confident match.
func dropSubsumed(matches []model.PatternMatch) []model.PatternMatch {
	if len(matches) <= 1 {
		return matches
	}
	kept := make([]model.PatternMatch, 0, len(matches))
	for i, m := range matches {
		subsumed := false
		for j, other := range matches {
			if i == j || other.Confidence <= m.Confidence {
				continue
			}
			if coversAll(other.Spans, m.Spans) {
				subsumed = true
				break
			}
		}
		if !subsumed {
			kept = append(kept, m)
		}
	}
	return kept
}

func coversAll(outer, inner []model.Span) bool {
	if len(inner) == 0 {
		return false
	}
	for _, in := range inner {
		covered := false
		for _, out := range outer {
			if out.Contains(in) {
				covered = true
				break
			}
		}
		if !covered {
			return false
		}
	}
	return true
}

func buildFinding(group []model.PatternMatch, lib *patterns.Library) model.Finding {
	first := group[0]

	confidence := 0.0
	statementSet := make(map[int]struct{})
	var spans []model.Span
	for _, m := range group {
		if m.Confidence > confidence {
			confidence = m.Confidence
		}
		for _, id := range m.StatementIDs {
			statementSet[id] = struct{}{}
		}
		spans = append(spans, m.Spans...)
	}

	sort.SliceStable(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
	var evidence []string
	seen := make(map[string]struct{})
	firstOffset := -1
	for _, sp := range spans {
		if firstOffset < 0 {
			firstOffset = sp.Start
		}
		if _, dup := seen[sp.Text]; dup {
			continue
		}
		seen[sp.Text] = struct{}{}
		evidence = append(evidence, sp.Text)
	}

	f := model.Finding{
		Type:        first.Type,
		Category:    first.Category,
		Evidence:    evidence,
		Confidence:  confidence,
		Severity:    severityFor(confidence),
		FirstOffset: firstOffset,
	}

	if first.Category == model.CategoryContradiction {
		a, b := splitPair(first.ClaimPair)
		if row, ok := lib.Table().Lookup(a, b); ok {
			f.CounterStrategy = row.CounterStrategy
			f.LegalBasis = row.LegalBasis
			if row.Polarities == patterns.PairOpposing {
				f.Explanation = fmt.Sprintf("the letter asserts %s and later retracts it", a)
			} else {
				f.Explanation = fmt.Sprintf("the letter asserts both %s and %s", a, b)
			}
		}
		return f
	}

	if p, ok := lib.ByID(first.PatternID); ok {
		f.CounterStrategy = p.CounterStrategy
		f.LegalBasis = p.LegalBasis
		f.Explanation = fmt.Sprintf("%s (%s) detected in %d statement(s)", p.Name, p.Category, len(statementSet))
	}
	return f
}

func splitPair(pair string) (model.ClaimKey, model.ClaimKey) {
	a, b, _ := strings.Cut(pair, "|")
	return model.ClaimKey(a), model.ClaimKey(b)
}

// sortFindings orders by confidence descending, earliest evidence first on
// ties.
func sortFindings(findings []model.Finding) {
	// Simple insertion sort is fine for typical result sizes (<100).
	for i := 1; i < len(findings); i++ {
		for j := i; j > 0 && less(findings[j], findings[j-1]); j-- {
			findings[j], findings[j-1] = findings[j-1], findings[j]
		}
	}
}

func less(a, b model.Finding) bool {
	if a.Confidence != b.Confidence {
		return a.Confidence > b.Confidence
	}
	return a.FirstOffset < b.FirstOffset
}
