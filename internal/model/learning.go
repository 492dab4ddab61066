package model

import "time"

// Outcome is the recorded resolution of a case.
type Outcome string

const (
	OutcomeWon     Outcome = "won"
	OutcomeSettled Outcome = "settled"
	OutcomeLost    Outcome = "lost"
)

// Valid reports whether the outcome is one of the known values.
func (o Outcome) Valid() bool {
	switch o {
	case OutcomeWon, OutcomeSettled, OutcomeLost:
		return true
	}
	return false
}

// Successful reports whether the outcome counts toward successfulCases.
func (o Outcome) Successful() bool {
	return o == OutcomeWon || o == OutcomeSettled
}

// CaseLearningRecord is one reported case outcome. Created exactly once,
// never mutated; the learning store appends it and bumps the per-type
// counters atomically.
type CaseLearningRecord struct {
	ID                   string    `json:"id"`
	ContradictionTypes   []string  `json:"contradiction_types"`
	Outcome              Outcome   `json:"outcome"`
	SettlementAmount     *float64  `json:"settlement_amount,omitempty"`
	TimeToResolutionDays int       `json:"time_to_resolution_days,omitempty"`
	ConfidenceAtStart    float64   `json:"confidence_at_start,omitempty"`
	ActualOutcome        float64   `json:"actual_outcome,omitempty"`
	RecordedAt           time.Time `json:"recorded_at"`
}

// SuccessRate holds the per-contradiction-type counters.
// SuccessfulCases never exceeds TotalCases.
type SuccessRate struct {
	TotalCases      int `json:"total_cases"`
	SuccessfulCases int `json:"successful_cases"`
}

// WinRate returns successful/total, or 0 when no cases are recorded.
func (r SuccessRate) WinRate() float64 {
	if r.TotalCases == 0 {
		return 0
	}
	return float64(r.SuccessfulCases) / float64(r.TotalCases)
}

// SuccessRateTable maps contradiction type to its outcome counters.
type SuccessRateTable map[string]SuccessRate

// Clone returns an independent copy of the table.
func (t SuccessRateTable) Clone() SuccessRateTable {
	out := make(SuccessRateTable, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}
