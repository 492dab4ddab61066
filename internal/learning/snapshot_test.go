package learning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medhold/dispute-cli/internal/model"
)

func TestSnapshotWinRate(t *testing.T) {
	snap := Snapshot{
		Rates: model.SuccessRateTable{
			"settlement_contradiction": {TotalCases: 8, SuccessfulCases: 6},
			"liability_contradiction":  {TotalCases: 2, SuccessfulCases: 0},
		},
	}

	t.Run("SingleType", func(t *testing.T) {
		rate, ok := snap.WinRate([]string{"settlement_contradiction"})
		require.True(t, ok)
		assert.InDelta(t, 0.75, rate, 0.0001)
	})

	t.Run("PoolsAcrossTypes", func(t *testing.T) {
		rate, ok := snap.WinRate([]string{"settlement_contradiction", "liability_contradiction"})
		require.True(t, ok)
		assert.InDelta(t, 0.6, rate, 0.0001)
	})

	t.Run("UnknownTypesIgnored", func(t *testing.T) {
		rate, ok := snap.WinRate([]string{"settlement_contradiction", "payment_contradiction"})
		require.True(t, ok)
		assert.InDelta(t, 0.75, rate, 0.0001)
	})

	t.Run("NoHistory", func(t *testing.T) {
		_, ok := snap.WinRate([]string{"payment_contradiction"})
		assert.False(t, ok)

		_, ok = snap.WinRate(nil)
		assert.False(t, ok)

		var empty Snapshot
		_, ok = empty.WinRate([]string{"settlement_contradiction"})
		assert.False(t, ok)
	})
}

func TestSnapshotMeanSettlement(t *testing.T) {
	snap := Snapshot{
		Settlements: []SettlementSample{
			{Types: []string{"settlement_contradiction"}, Amount: 40000},
			{Types: []string{"settlement_contradiction", "liability_contradiction"}, Amount: 60000},
			{Types: []string{"coverage_contradiction"}, Amount: 10000},
		},
	}

	t.Run("MatchingSamplesOnly", func(t *testing.T) {
		mean, ok := snap.MeanSettlement([]string{"settlement_contradiction"})
		require.True(t, ok)
		assert.InDelta(t, 50000, mean, 0.0001)
	})

	t.Run("SampleCountedOncePerMatch", func(t *testing.T) {
		// the second sample carries both types but contributes a single amount
		mean, ok := snap.MeanSettlement([]string{"settlement_contradiction", "liability_contradiction"})
		require.True(t, ok)
		assert.InDelta(t, 50000, mean, 0.0001)
	})

	t.Run("NoMatchingSamples", func(t *testing.T) {
		_, ok := snap.MeanSettlement([]string{"payment_contradiction"})
		assert.False(t, ok)

		_, ok = snap.MeanSettlement(nil)
		assert.False(t, ok)
	})
}
