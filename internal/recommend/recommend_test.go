package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medhold/dispute-cli/internal/model"
)

func finding(ftype string, severity model.Severity, confidence float64) model.Finding {
	return model.Finding{
		Type:            ftype,
		Category:        model.CategoryContradiction,
		Confidence:      confidence,
		Severity:        severity,
		CounterStrategy: "cite_offer_as_liability_signal",
		LegalBasis:      "avtaleloven § 36",
	}
}

func TestBuildEmptyFindings(t *testing.T) {
	recs := Build(nil, model.MeritAssessment{Merit: model.MeritHigh})
	assert.Empty(t, recs)
}

func TestBuildSkipsInfoFindings(t *testing.T) {
	findings := []model.Finding{
		finding("settlement_contradiction", model.SeverityCritical, 0.9),
		finding("gaslighting_minimize", model.SeverityInfo, 0.55),
	}

	recs := Build(findings, model.MeritAssessment{Merit: model.MeritMedium})
	require.Len(t, recs, 1)
	assert.Equal(t, "settlement_contradiction", recs[0].FindingType)
}

func TestBuildPriorityMatrix(t *testing.T) {
	tests := []struct {
		name     string
		severity model.Severity
		merit    model.MeritTier
		want     model.Priority
	}{
		{"critical and high merit", model.SeverityCritical, model.MeritHigh, model.PriorityImmediate},
		{"critical alone", model.SeverityCritical, model.MeritMedium, model.PriorityHigh},
		{"high merit alone", model.SeverityWarning, model.MeritHigh, model.PriorityHigh},
		{"neither", model.SeverityWarning, model.MeritMedium, model.PriorityMedium},
		{"low merit warning", model.SeverityWarning, model.MeritLow, model.PriorityMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs := Build(
				[]model.Finding{finding("settlement_contradiction", tt.severity, 0.8)},
				model.MeritAssessment{Merit: tt.merit},
			)
			require.Len(t, recs, 1)
			assert.Equal(t, tt.want, recs[0].Priority)
		})
	}
}

func TestBuildCarriesFindingFields(t *testing.T) {
	f := finding("settlement_contradiction", model.SeverityCritical, 0.9)
	recs := Build([]model.Finding{f}, model.MeritAssessment{Merit: model.MeritHigh})

	require.Len(t, recs, 1)
	assert.Equal(t, "settlement_contradiction", recs[0].FindingType)
	assert.Equal(t, "cite_offer_as_liability_signal", recs[0].Strategy)
	assert.Equal(t, "avtaleloven § 36", recs[0].LegalBasis)
	assert.InDelta(t, 0.9, recs[0].SuccessProbability, 0.0001)
}

func TestBuildOneRecommendationPerType(t *testing.T) {
	findings := []model.Finding{
		finding("pressure_deadline", model.SeverityCritical, 0.9),
		finding("pressure_deadline", model.SeverityWarning, 0.75),
	}

	recs := Build(findings, model.MeritAssessment{Merit: model.MeritLow})
	require.Len(t, recs, 1)
	assert.Equal(t, model.PriorityHigh, recs[0].Priority, "first, strongest occurrence wins")
}

func TestBuildKeepsFindingOrder(t *testing.T) {
	findings := []model.Finding{
		finding("settlement_contradiction", model.SeverityCritical, 0.9),
		finding("pressure_deadline", model.SeverityWarning, 0.75),
		finding("intimidation_legal_threat", model.SeverityWarning, 0.72),
	}

	recs := Build(findings, model.MeritAssessment{Merit: model.MeritMedium})
	require.Len(t, recs, 3)
	assert.Equal(t, "settlement_contradiction", recs[0].FindingType)
	assert.Equal(t, "pressure_deadline", recs[1].FindingType)
	assert.Equal(t, "intimidation_legal_threat", recs[2].FindingType)
}
