package importer

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medhold/dispute-cli/internal/learning"
)

func newTestStore(t *testing.T) *learning.MemoryStore {
	t.Helper()
	store := learning.NewMemory()
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestCSVImportRecordsRows(t *testing.T) {
	store := newTestStore(t)
	input := strings.Join([]string{
		"case_id,outcome,contradiction_types,settlement_amount,time_to_resolution_days,confidence_at_start,actual_outcome",
		"sak-1,won,settlement_contradiction;liability_contradiction,50000,30,0.9,1.0",
		"sak-2,lost,settlement_contradiction,,45,0.6,0.0",
	}, "\n")

	res, err := NewCSV(store, CSVOptions{}).Import(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	assert.Empty(t, res.Skipped)

	recs, err := store.History(context.Background(), learning.Filter{})
	require.NoError(t, err)
	require.Len(t, recs, 2)

	snap, err := store.Snapshot(context.Background())
	require.NoError(t, err)
	rate := snap.Rates["settlement_contradiction"]
	assert.Equal(t, 2, rate.TotalCases)
	assert.Equal(t, 1, rate.SuccessfulCases)
}

func TestCSVImportSemicolonDelimitedNorwegianAmounts(t *testing.T) {
	store := newTestStore(t)
	input := strings.Join([]string{
		"outcome;contradiction_types;settlement_amount",
		"settled;coverage_contradiction|payment_contradiction;kr 50.000",
	}, "\n")

	res, err := NewCSV(store, CSVOptions{Delimiter: ';'}).Import(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, 1, res.Imported)

	recs, err := store.History(context.Background(), learning.Filter{})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.NotNil(t, recs[0].SettlementAmount)
	assert.InDelta(t, 50000, *recs[0].SettlementAmount, 0.001)
	assert.Equal(t, []string{"coverage_contradiction", "payment_contradiction"}, recs[0].ContradictionTypes)
}

func TestCSVImportSkipsBadRows(t *testing.T) {
	store := newTestStore(t)
	input := strings.Join([]string{
		"outcome,contradiction_types,settlement_amount",
		"withdrawn,settlement_contradiction,",
		"won,settlement_contradiction,ikke et tall",
		"won,settlement_contradiction,40000",
	}, "\n")

	res, err := NewCSV(store, CSVOptions{}).Import(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
	require.Len(t, res.Skipped, 2)

	assert.Equal(t, 1, res.Skipped[0].Row)
	assert.Contains(t, res.Skipped[0].Err.Error(), "unknown outcome")
	assert.Equal(t, 2, res.Skipped[1].Row)
	assert.Contains(t, res.Skipped[1].Err.Error(), "settlement_amount")

	snap, err := store.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Rates["settlement_contradiction"].TotalCases)
}

func TestCSVImportRequiresColumns(t *testing.T) {
	store := newTestStore(t)

	_, err := NewCSV(store, CSVOptions{}).Import(context.Background(), strings.NewReader("outcome,settlement_amount\nwon,100\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing "contradiction_types"`)
}

func TestCSVImportEmptyInput(t *testing.T) {
	store := newTestStore(t)

	_, err := NewCSV(store, CSVOptions{}).Import(context.Background(), strings.NewReader(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty csv input")
}

func TestCSVImportHeaderOnly(t *testing.T) {
	store := newTestStore(t)

	res, err := NewCSV(store, CSVOptions{}).Import(context.Background(), strings.NewReader("outcome,contradiction_types\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Imported)
	assert.Empty(t, res.Skipped)
}

func TestCSVImportHeaderNamesAreFlexible(t *testing.T) {
	store := newTestStore(t)
	input := strings.Join([]string{
		"Outcome, Contradiction Types ,Settlement Amount",
		"won,admission_contradiction,25000",
	}, "\n")

	res, err := NewCSV(store, CSVOptions{}).Import(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
}
