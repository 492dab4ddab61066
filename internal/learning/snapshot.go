package learning

import (
	"time"

	"github.com/medhold/dispute-cli/internal/model"
)

// SettlementSample is one historical record that closed with a settlement
// amount, kept with its contradiction types for matching.
type SettlementSample struct {
	Types  []string `json:"types"`
	Amount float64  `json:"amount"`
}

// Snapshot is a frozen, internally consistent view of the learning table.
// It reflects every record call that committed before it was taken and
// nothing else; later records never alter it.
type Snapshot struct {
	Rates       model.SuccessRateTable `json:"rates"`
	Settlements []SettlementSample     `json:"settlements"`
	Records     int                    `json:"records"`
	TakenAt     time.Time              `json:"taken_at"`
}

// WinRate sums successful and total cases across the given types,
// restricted to types present in the table. The second return is false when
// none of the types have historical data.
func (s *Snapshot) WinRate(types []string) (float64, bool) {
	var successful, total int
	for _, t := range types {
		rate, ok := s.Rates[t]
		if !ok {
			continue
		}
		successful += rate.SuccessfulCases
		total += rate.TotalCases
	}
	if total == 0 {
		return 0, false
	}
	return float64(successful) / float64(total), true
}

// MeanSettlement averages settlement amounts over historical records that
// share at least one of the given types. The second return is false when no
// matching record carries an amount.
func (s *Snapshot) MeanSettlement(types []string) (float64, bool) {
	want := make(map[string]struct{}, len(types))
	for _, t := range types {
		want[t] = struct{}{}
	}

	var sum float64
	var n int
	for _, sample := range s.Settlements {
		for _, t := range sample.Types {
			if _, ok := want[t]; ok {
				sum += sample.Amount
				n++
				break
			}
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
