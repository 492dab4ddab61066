// Package merit turns the contradiction types surfaced by an analysis into a
// win-probability and settlement-value estimate backed by recorded case
// outcomes.
package merit

import (
	"context"
	"fmt"
	"math"

	"github.com/rotisserie/eris"

	"github.com/medhold/dispute-cli/internal/learning"
	"github.com/medhold/dispute-cli/internal/model"
	"github.com/medhold/dispute-cli/pkg/nortext"
)

// Fixed scoring constants. Thresholds and fallbacks are part of the scoring
// contract, not configuration.
const (
	defaultWinProbability = 0.75
	defaultEstimatedValue = 50000.0

	highTierAbove   = 0.85
	mediumTierAbove = 0.65
)

// ErrSnapshotUnavailable is returned when the learning store cannot produce
// a snapshot. Callers may retry; nothing has been scored.
var ErrSnapshotUnavailable = eris.New("merit: snapshot unavailable")

// Scorer estimates case strength from historical outcomes. The store is
// injected so tests can seed an in-memory one with controlled contents.
type Scorer struct {
	store learning.Store
}

func New(store learning.Store) *Scorer {
	return &Scorer{store: store}
}

// Score assesses the given contradiction types against recorded history.
// It takes exactly one store snapshot and derives every figure from that
// frozen view, so the assessment stays internally consistent even while
// outcomes are being recorded concurrently.
func (s *Scorer) Score(ctx context.Context, contradictionTypes []string) (*model.MeritAssessment, error) {
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, eris.Wrapf(ErrSnapshotUnavailable, "%v", err)
	}
	assessment := scoreSnapshot(snap, dedupe(contradictionTypes))
	return &assessment, nil
}

func scoreSnapshot(snap *learning.Snapshot, types []string) model.MeritAssessment {
	winProb := defaultWinProbability
	samples := 0
	if rate, ok := snap.WinRate(types); ok {
		winProb = rate
		samples = sampleSize(snap, types)
	}

	value := defaultEstimatedValue
	if mean, ok := snap.MeanSettlement(types); ok {
		value = mean
	}

	tier := tierFor(winProb)
	return model.MeritAssessment{
		Merit:              tier,
		WinProbability:     round2(winProb),
		EstimatedValue:     round2(value),
		SampleSize:         samples,
		RecommendationText: recommendationText(tier, winProb, value, samples),
	}
}

func tierFor(winProb float64) model.MeritTier {
	switch {
	case winProb > highTierAbove:
		return model.MeritHigh
	case winProb > mediumTierAbove:
		return model.MeritMedium
	default:
		return model.MeritLow
	}
}

func recommendationText(tier model.MeritTier, winProb, value float64, samples int) string {
	var lead string
	switch tier {
	case model.MeritHigh:
		lead = "Strong case: pursue the full claim and cite the detected contradictions directly."
	case model.MeritMedium:
		lead = "Reasonable case: push back in writing and negotiate toward the estimated value."
	default:
		lead = "Weak case on recorded history: collect further documentation before escalating."
	}

	stats := fmt.Sprintf("Win probability %.0f%%, estimated value %s", winProb*100, nortext.FormatNOK(value))
	if samples == 0 {
		stats += " (no recorded outcomes for these contradiction types, defaults applied)"
	} else {
		stats += fmt.Sprintf(" (based on %d recorded case outcomes)", samples)
	}
	return lead + " " + stats + "."
}

// sampleSize is the pooled denominator behind the win probability.
func sampleSize(snap *learning.Snapshot, types []string) int {
	n := 0
	for _, t := range types {
		n += snap.Rates[t].TotalCases
	}
	return n
}

// dedupe keeps first occurrences so a type listed twice is not counted twice.
func dedupe(types []string) []string {
	seen := make(map[string]struct{}, len(types))
	out := make([]string, 0, len(types))
	for _, t := range types {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
