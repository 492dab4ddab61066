// Package learning owns the shared case-outcome state: an append-only
// record log plus per-type success counters. All mutation funnels through
// Record; readers work from frozen Snapshots and never observe a
// half-applied record.
package learning

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/medhold/dispute-cli/internal/model"
)

// Filter specifies criteria for listing case records.
type Filter struct {
	Outcome model.Outcome `json:"outcome,omitempty"`
	Type    string        `json:"type,omitempty"`
	Limit   int           `json:"limit,omitempty"`
	Offset  int           `json:"offset,omitempty"`
}

// Store defines the persistence interface for case learning.
type Store interface {
	// Record appends a case outcome and bumps the per-type counters.
	// All-or-nothing: a failed call leaves the table exactly as it was.
	Record(ctx context.Context, rec model.CaseLearningRecord) error
	// Snapshot returns a frozen, internally consistent view of the table.
	Snapshot(ctx context.Context) (*Snapshot, error)
	// History returns recorded cases, newest first.
	History(ctx context.Context, filter Filter) ([]model.CaseLearningRecord, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

const defaultHistoryLimit = 100

// validateRecord rejects malformed records before anything is written.
func validateRecord(rec model.CaseLearningRecord) error {
	if !rec.Outcome.Valid() {
		return eris.Errorf("learning: unknown outcome %q", rec.Outcome)
	}
	if len(rec.ContradictionTypes) == 0 {
		return eris.New("learning: record has no contradiction types")
	}
	for _, t := range rec.ContradictionTypes {
		if t == "" {
			return eris.New("learning: empty contradiction type")
		}
	}
	if rec.ConfidenceAtStart < 0 || rec.ConfidenceAtStart > 1 {
		return eris.Errorf("learning: confidence_at_start %v outside [0,1]", rec.ConfidenceAtStart)
	}
	if rec.ActualOutcome < 0 || rec.ActualOutcome > 1 {
		return eris.Errorf("learning: actual_outcome %v outside [0,1]", rec.ActualOutcome)
	}
	if rec.SettlementAmount != nil && *rec.SettlementAmount < 0 {
		return eris.Errorf("learning: negative settlement amount %v", *rec.SettlementAmount)
	}
	if rec.TimeToResolutionDays < 0 {
		return eris.Errorf("learning: negative resolution days %d", rec.TimeToResolutionDays)
	}
	return nil
}
