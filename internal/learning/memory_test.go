package learning

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/medhold/dispute-cli/internal/model"
)

func TestMemoryStoreDetachesCallerSlices(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	types := []string{"settlement_contradiction"}
	amount := 50000.0
	rec := model.CaseLearningRecord{
		ID:                 "case-1",
		ContradictionTypes: types,
		Outcome:            model.OutcomeSettled,
		SettlementAmount:   &amount,
		ConfidenceAtStart:  0.8,
		ActualOutcome:      0.7,
	}
	require.NoError(t, s.Record(ctx, rec))

	// callers reuse their buffers; the store must keep its own copies
	types[0] = "liability_contradiction"
	amount = 1.0

	listed, err := s.History(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, []string{"settlement_contradiction"}, listed[0].ContradictionTypes)
	require.NotNil(t, listed[0].SettlementAmount)
	assert.InDelta(t, 50000, *listed[0].SettlementAmount, 0.0001)

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	mean, ok := snap.MeanSettlement([]string{"settlement_contradiction"})
	require.True(t, ok)
	assert.InDelta(t, 50000, mean, 0.0001)
}

func TestMemoryStoreAssignsIDAndTimestamp(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, wonRecord("settlement_contradiction")))

	listed, err := s.History(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.NotEmpty(t, listed[0].ID)
	assert.False(t, listed[0].RecordedAt.IsZero())
}

func TestMemoryStoreLeavesNoGoroutinesBehind(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := NewMemory()
	ctx := context.Background()

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				if err := s.Record(ctx, wonRecord("settlement_contradiction")); err != nil {
					t.Error(err)
					return
				}
				if _, err := s.Snapshot(ctx); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()

	require.NoError(t, s.Close())

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 100, snap.Records)
}
