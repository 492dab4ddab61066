package model

// PatternCategory classifies a detection rule. The four tactic categories
// match single statements; the contradiction category declares claim
// detectors consumed by the pairwise pass.
type PatternCategory string

const (
	CategoryDeflection    PatternCategory = "deflection"
	CategoryPressure      PatternCategory = "pressure"
	CategoryIntimidation  PatternCategory = "intimidation"
	CategoryGaslighting   PatternCategory = "gaslighting"
	CategoryContradiction PatternCategory = "contradiction"
)

// Valid reports whether the category is one of the known values.
func (c PatternCategory) Valid() bool {
	switch c {
	case CategoryDeflection, CategoryPressure, CategoryIntimidation,
		CategoryGaslighting, CategoryContradiction:
		return true
	}
	return false
}

// TacticCategories lists the categories evaluated in the single-statement
// pass, in a fixed order so matching stays deterministic.
func TacticCategories() []PatternCategory {
	return []PatternCategory{
		CategoryDeflection,
		CategoryPressure,
		CategoryIntimidation,
		CategoryGaslighting,
	}
}

// Pattern is a named detection rule. Loaded once at process start and
// read-only thereafter.
//
// Keywords match as folded substrings; Phrases match as folded substrings
// and are preferred for span reporting. For tactic categories, Strength is
// the rule-specific base confidence of a hit. For the contradiction
// category, ClaimKey names the directional claim the rule detects and
// Strength is unused.
type Pattern struct {
	ID              string          `json:"id" yaml:"id"`
	Name            string          `json:"name" yaml:"name"`
	Category        PatternCategory `json:"category" yaml:"category"`
	Keywords        []string        `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Phrases         []string        `json:"phrases,omitempty" yaml:"phrases,omitempty"`
	Strength        float64         `json:"strength,omitempty" yaml:"strength,omitempty"`
	ClaimKey        ClaimKey        `json:"claim_key,omitempty" yaml:"claim_key,omitempty"`
	CounterStrategy string          `json:"counter_strategy,omitempty" yaml:"counter_strategy,omitempty"`
	LegalBasis      string          `json:"legal_basis,omitempty" yaml:"legal_basis,omitempty"`
	BaseSuccessRate float64         `json:"base_success_rate,omitempty" yaml:"base_success_rate,omitempty"`
	Exemplars       []string        `json:"exemplars,omitempty" yaml:"exemplars,omitempty"`
}

// PatternMatch is one raw hit produced by a matching attempt. Single-statement
// hits carry one statement ID; pairwise hits carry two in document order.
type PatternMatch struct {
	PatternID    string          `json:"pattern_id"`
	Type         string          `json:"type"`
	Category     PatternCategory `json:"category"`
	StatementIDs []int           `json:"statement_ids"`
	Spans        []Span          `json:"spans"`
	Confidence   float64         `json:"confidence"`
	ClaimPair    string          `json:"claim_pair,omitempty"`
}
