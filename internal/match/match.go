// Package match runs the rule catalog against extracted statements: tactic
// patterns against single statements, and the claim-compatibility table
// against statement pairs. Matching is pure; rerunning on the same
// statement sequence yields the same match set.
package match

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/medhold/dispute-cli/internal/model"
	"github.com/medhold/dispute-cli/internal/patterns"
)

// DefaultBudget bounds a single matcher attempt. A pattern that exceeds it
// on a statement is skipped for that statement only.
const DefaultBudget = 50 * time.Millisecond

// exactnessBonus is added when a tactic match covers the whole clause
// rather than a sub-span.
const exactnessBonus = 0.10

// SpanFinder locates a pattern's matches in a statement's text. Returned
// spans are relative to the given text.
type SpanFinder func(p model.Pattern, text string) []model.Span

// Matcher evaluates the catalog against statements. It holds no mutable
// state and is safe for concurrent use.
type Matcher struct {
	lib    *patterns.Library
	finder SpanFinder
	budget time.Duration
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithSpanFinder replaces the default span finder.
func WithSpanFinder(f SpanFinder) Option {
	return func(m *Matcher) { m.finder = f }
}

// WithBudget replaces the per-attempt time budget.
func WithBudget(d time.Duration) Option {
	return func(m *Matcher) { m.budget = d }
}

// New returns a Matcher over the given library.
func New(lib *patterns.Library, opts ...Option) *Matcher {
	m := &Matcher{
		lib:    lib,
		finder: patterns.FindSpans,
		budget: DefaultBudget,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Result carries the raw matches plus degraded-coverage warnings from
// skipped matcher attempts.
type Result struct {
	Matches  []model.PatternMatch
	Warnings []model.AnalysisWarning
}

// Match runs the single-statement and pairwise passes. A budget overrun
// degrades coverage and is reported as a warning, never as an error.
func (m *Matcher) Match(statements []model.Statement) Result {
	var res Result
	m.matchTactics(statements, &res)
	m.matchPairs(statements, &res)
	return res
}

func (m *Matcher) matchTactics(statements []model.Statement, res *Result) {
	for _, s := range statements {
		for _, p := range m.lib.Tactics() {
			started := time.Now()
			spans := m.finder(p, s.Text)
			if elapsed := time.Since(started); elapsed > m.budget {
				zap.L().Warn("match: pattern budget exceeded",
					zap.String("pattern", p.ID),
					zap.Int("statement", s.ID),
					zap.Duration("elapsed", elapsed),
					zap.Duration("budget", m.budget))
				res.Warnings = append(res.Warnings, model.AnalysisWarning{
					Code:        model.WarnPatternTimeout,
					PatternID:   p.ID,
					StatementID: s.ID,
					Message:     fmt.Sprintf("pattern %s exceeded %s budget on statement %d", p.ID, m.budget, s.ID),
				})
				continue
			}
			if len(spans) == 0 {
				continue
			}

			confidence := p.Strength
			if coversClause(s.Text, spans) {
				confidence += exactnessBonus
			}
			if confidence > 1 {
				confidence = 1
			}

			rebased := make([]model.Span, 0, len(spans))
			for _, sp := range spans {
				rebased = append(rebased, model.Span{
					Start: sp.Start + s.Start,
					End:   sp.End + s.Start,
					Text:  sp.Text,
				})
			}

			res.Matches = append(res.Matches, model.PatternMatch{
				PatternID:    p.ID,
				Type:         p.ID,
				Category:     p.Category,
				StatementIDs: []int{s.ID},
				Spans:        rebased,
				Confidence:   confidence,
			})
		}
	}
}

// coversClause reports whether any span covers the statement's core text,
// ignoring surrounding whitespace and terminal punctuation.
func coversClause(text string, spans []model.Span) bool {
	core := strings.TrimSpace(text)
	core = strings.TrimRight(core, ".!?… \t\n")
	if core == "" {
		return false
	}
	start := strings.Index(text, core)
	end := start + len(core)
	for _, sp := range spans {
		if sp.Start <= start && sp.End >= end {
			return true
		}
	}
	return false
}

type pairSeen struct {
	pair string
	a    int
	b    int
}

func (m *Matcher) matchPairs(statements []model.Statement, res *Result) {
	table := m.lib.Table()
	seen := make(map[pairSeen]int)

	for i := 0; i < len(statements); i++ {
		si := statements[i]
		if len(si.ClaimKeys) == 0 {
			continue
		}
		for j := i + 1; j < len(statements); j++ {
			sj := statements[j]
			if len(sj.ClaimKeys) == 0 {
				continue
			}
			for _, ra := range si.ClaimKeys {
				for _, rb := range sj.ClaimKeys {
					row, ok := table.Lookup(ra.Key, rb.Key)
					if !ok || !polaritiesFire(row, si.Polarity, sj.Polarity) {
						continue
					}

					key := pairSeen{pair: claimPairID(ra.Key, rb.Key), a: si.ID, b: sj.ID}
					if idx, dup := seen[key]; dup {
						res.Matches[idx].Spans = appendSpanUnique(res.Matches[idx].Spans, ra.Span, rb.Span)
						continue
					}

					res.Matches = append(res.Matches, model.PatternMatch{
						Type:         row.FindingType,
						Category:     model.CategoryContradiction,
						StatementIDs: []int{si.ID, sj.ID},
						Spans:        []model.Span{ra.Span, rb.Span},
						Confidence:   si.Certainty * sj.Certainty * row.BaseRate,
						ClaimPair:    key.pair,
					})
					seen[key] = len(res.Matches) - 1
				}
			}
		}
	}
}

// polaritiesFire applies the row's polarity rule to the two statements.
func polaritiesFire(row patterns.ClaimPair, a, b model.Polarity) bool {
	switch row.Polarities {
	case patterns.PairBothAssert:
		return a == model.PolarityAssertion && b == model.PolarityAssertion
	case patterns.PairOpposing:
		return (a == model.PolarityAssertion && b == model.PolarityNegation) ||
			(a == model.PolarityNegation && b == model.PolarityAssertion)
	}
	return false
}

// claimPairID renders a normalized pair identifier, stable across key order.
func claimPairID(a, b model.ClaimKey) string {
	if b < a {
		a, b = b, a
	}
	return string(a) + "|" + string(b)
}

func appendSpanUnique(spans []model.Span, add ...model.Span) []model.Span {
	for _, sp := range add {
		dup := false
		for _, existing := range spans {
			if existing.Start == sp.Start && existing.End == sp.End {
				dup = true
				break
			}
		}
		if !dup {
			spans = append(spans, sp)
		}
	}
	return spans
}
