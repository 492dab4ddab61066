package model

// Severity classifies how strongly a finding is supported.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// severityRank orders severities for comparison; lower is more severe.
var severityRank = map[Severity]int{
	SeverityCritical: 0,
	SeverityWarning:  1,
	SeverityInfo:     2,
}

// AtLeast reports whether s is at least as severe as other.
func (s Severity) AtLeast(other Severity) bool {
	sr, ok := severityRank[s]
	or, ok2 := severityRank[other]
	if !ok || !ok2 {
		return false
	}
	return sr <= or
}

// Finding is an aggregated, confidence-scored detection surfaced to the
// caller. Type is the pattern ID for tactic findings, or the claim-pair
// rule's finding type (e.g. "settlement_contradiction") for pairwise hits.
type Finding struct {
	Type            string          `json:"type"`
	Category        PatternCategory `json:"category"`
	Evidence        []string        `json:"evidence"`
	Explanation     string          `json:"explanation"`
	CounterStrategy string          `json:"counter_strategy,omitempty"`
	LegalBasis      string          `json:"legal_basis,omitempty"`
	Confidence      float64         `json:"confidence"`
	Severity        Severity        `json:"severity"`
	FirstOffset     int             `json:"first_offset"`
}

// ContradictionTypes returns the distinct types among findings in the
// contradiction category, in first-seen order. This is the key set handed
// to the merit scorer and the legal-reference lookup.
func ContradictionTypes(findings []Finding) []string {
	seen := make(map[string]bool, len(findings))
	var types []string
	for _, f := range findings {
		if f.Category != CategoryContradiction || seen[f.Type] {
			continue
		}
		seen[f.Type] = true
		types = append(types, f.Type)
	}
	return types
}
