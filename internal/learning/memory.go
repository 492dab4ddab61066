package learning

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/medhold/dispute-cli/internal/model"
)

// MemoryStore implements Store in process memory. Used by tests and by
// one-shot analyses that run without persistence. Writers are serialized by
// the mutex; snapshots copy under the read lock, so concurrent readers
// never see a record's effects split.
type MemoryStore struct {
	mu      sync.RWMutex
	records []model.CaseLearningRecord
	rates   model.SuccessRateTable
}

// NewMemory returns an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{rates: make(model.SuccessRateTable)}
}

func (s *MemoryStore) Record(ctx context.Context, rec model.CaseLearningRecord) error {
	if err := validateRecord(rec); err != nil {
		return err
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now().UTC()
	}

	// Detach from caller-owned memory before taking the lock.
	types := make([]string, len(rec.ContradictionTypes))
	copy(types, rec.ContradictionTypes)
	rec.ContradictionTypes = types
	if rec.SettlementAmount != nil {
		amount := *rec.SettlementAmount
		rec.SettlementAmount = &amount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, rec)
	successful := 0
	if rec.Outcome.Successful() {
		successful = 1
	}
	for _, t := range rec.ContradictionTypes {
		rate := s.rates[t]
		rate.TotalCases++
		rate.SuccessfulCases += successful
		s.rates[t] = rate
	}
	return nil
}

func (s *MemoryStore) Snapshot(ctx context.Context) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &Snapshot{
		Rates:   s.rates.Clone(),
		Records: len(s.records),
		TakenAt: time.Now().UTC(),
	}
	for _, rec := range s.records {
		if rec.SettlementAmount == nil {
			continue
		}
		types := make([]string, len(rec.ContradictionTypes))
		copy(types, rec.ContradictionTypes)
		snap.Settlements = append(snap.Settlements, SettlementSample{
			Types:  types,
			Amount: *rec.SettlementAmount,
		})
	}
	return snap, nil
}

func (s *MemoryStore) History(ctx context.Context, filter Filter) ([]model.CaseLearningRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	var out []model.CaseLearningRecord
	skipped := 0
	for i := len(s.records) - 1; i >= 0; i-- {
		rec := s.records[i]
		if filter.Outcome != "" && rec.Outcome != filter.Outcome {
			continue
		}
		if filter.Type != "" && !hasType(rec.ContradictionTypes, filter.Type) {
			continue
		}
		if skipped < filter.Offset {
			skipped++
			continue
		}
		out = append(out, rec)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func hasType(types []string, want string) bool {
	for _, t := range types {
		if t == want {
			return true
		}
	}
	return false
}

func (s *MemoryStore) Migrate(ctx context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
