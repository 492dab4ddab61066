// Package recommend turns findings and a merit assessment into prioritized
// counter-strategies.
package recommend

import "github.com/medhold/dispute-cli/internal/model"

// Build produces one recommendation per distinct finding type at warning
// severity or above, in the findings' own order. Info-level findings carry
// too little support to act on. An empty result is valid output.
func Build(findings []model.Finding, merit model.MeritAssessment) []model.Recommendation {
	seen := make(map[string]bool, len(findings))
	var recs []model.Recommendation
	for _, f := range findings {
		if !f.Severity.AtLeast(model.SeverityWarning) || seen[f.Type] {
			continue
		}
		seen[f.Type] = true
		recs = append(recs, model.Recommendation{
			FindingType:        f.Type,
			Strategy:           f.CounterStrategy,
			LegalBasis:         f.LegalBasis,
			Priority:           priorityFor(f.Severity, merit.Merit),
			SuccessProbability: f.Confidence,
		})
	}
	return recs
}

// priorityFor escalates on the two strength signals: the finding's severity
// and the overall case merit. Both together mean act now, one alone is still
// worth leading with.
func priorityFor(severity model.Severity, merit model.MeritTier) model.Priority {
	critical := severity == model.SeverityCritical
	strong := merit == model.MeritHigh
	switch {
	case critical && strong:
		return model.PriorityImmediate
	case critical || strong:
		return model.PriorityHigh
	default:
		return model.PriorityMedium
	}
}
