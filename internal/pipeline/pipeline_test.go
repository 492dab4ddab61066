package pipeline

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medhold/dispute-cli/internal/extract"
	"github.com/medhold/dispute-cli/internal/learning"
	"github.com/medhold/dispute-cli/internal/legalref"
	"github.com/medhold/dispute-cli/internal/model"
	"github.com/medhold/dispute-cli/internal/patterns"
)

// denialLetter both rejects the claim and offers money for it, with an
// acceptance deadline on top.
const denialLetter = `Vi viser til din henvendelse.
Vi avslår kravet ditt.
Som en minnelig løsning tilbyr vi deg likevel et oppgjør på kr 25.000.
Tilbudet bortfaller dersom vi ikke hører fra deg innen 14 dager.`

const politeLetter = `Vi viser til din henvendelse av 3. mars.
Saken er registrert hos oss og en saksbehandler ser på den.
Du hører fra oss.`

func newAnalyzer(t *testing.T, opts Options) (*Analyzer, *learning.MemoryStore) {
	t.Helper()
	lib, err := patterns.Builtin()
	require.NoError(t, err)
	store := learning.NewMemory()
	t.Cleanup(func() { _ = store.Close() })
	return New(lib, store, opts), store
}

func phaseNames(report *model.AnalysisReport) []string {
	names := make([]string, 0, len(report.Phases))
	for _, p := range report.Phases {
		names = append(names, p.Name)
	}
	return names
}

func TestAnalyzeContradictionLetter(t *testing.T) {
	a, _ := newAnalyzer(t, Options{References: legalref.Builtin()})

	report, err := a.Analyze(context.Background(), model.Document{ID: "avslag.txt", Text: denialLetter})
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.NotEmpty(t, report.ID)
	assert.Equal(t, "avslag.txt", report.DocumentID)
	assert.Equal(t, 4, report.Statements)
	assert.Empty(t, report.Warnings)
	assert.Equal(t,
		[]string{"extract", "match", "aggregate", "merit", "recommend", "references"},
		phaseNames(report),
	)

	require.Len(t, report.Findings, 2)
	top := report.Findings[0]
	assert.Equal(t, "settlement_contradiction", top.Type)
	assert.Equal(t, model.SeverityCritical, top.Severity)
	assert.InDelta(t, 0.90, top.Confidence, 0.0001)
	assert.Contains(t, top.Evidence, "avslår kravet")

	deadline := report.Findings[1]
	assert.Equal(t, "pressure_deadline", deadline.Type)
	assert.Equal(t, model.SeverityWarning, deadline.Severity)

	// No recorded history, so scoring falls back to the fixed defaults.
	require.NotNil(t, report.Merit)
	assert.Equal(t, model.MeritMedium, report.Merit.Merit)
	assert.InDelta(t, 0.75, report.Merit.WinProbability, 0.0001)
	assert.InDelta(t, 50000, report.Merit.EstimatedValue, 0.0001)
	assert.Zero(t, report.Merit.SampleSize)

	require.Len(t, report.Recommendations, 2)
	assert.Equal(t, "settlement_contradiction", report.Recommendations[0].FindingType)
	assert.Equal(t, model.PriorityHigh, report.Recommendations[0].Priority)
	assert.Equal(t, model.PriorityMedium, report.Recommendations[1].Priority)

	require.Len(t, report.References, 2)
	assert.Equal(t, "settlement_contradiction", report.References[0].FindingType)
	require.NotEmpty(t, report.References[0].Provisions)
	assert.Equal(t, "avtaleloven", report.References[0].Provisions[0].Statute)
	assert.Equal(t, "pressure_deadline", report.References[1].FindingType)
}

func TestAnalyzeSeededHistoryRaisesMerit(t *testing.T) {
	a, store := newAnalyzer(t, Options{})
	ctx := context.Background()

	amount := 40000.0
	for i := 0; i < 9; i++ {
		require.NoError(t, store.Record(ctx, model.CaseLearningRecord{
			ContradictionTypes: []string{"settlement_contradiction"},
			Outcome:            model.OutcomeWon,
			SettlementAmount:   &amount,
		}))
	}
	require.NoError(t, store.Record(ctx, model.CaseLearningRecord{
		ContradictionTypes: []string{"settlement_contradiction"},
		Outcome:            model.OutcomeLost,
	}))

	report, err := a.Analyze(ctx, model.Document{ID: "avslag.txt", Text: denialLetter})
	require.NoError(t, err)

	require.NotNil(t, report.Merit)
	assert.Equal(t, model.MeritHigh, report.Merit.Merit)
	assert.InDelta(t, 0.9, report.Merit.WinProbability, 0.0001)
	assert.InDelta(t, 40000, report.Merit.EstimatedValue, 0.0001)
	assert.Equal(t, 10, report.Merit.SampleSize)

	// Critical finding plus high merit escalates to immediate.
	require.NotEmpty(t, report.Recommendations)
	assert.Equal(t, model.PriorityImmediate, report.Recommendations[0].Priority)
}

func TestAnalyzeEmptyInput(t *testing.T) {
	a, _ := newAnalyzer(t, Options{})

	report, err := a.Analyze(context.Background(), model.Document{ID: "tom.txt", Text: "   \n\t"})
	require.Error(t, err)
	assert.Nil(t, report)
	assert.ErrorIs(t, err, extract.ErrEmptyInput)
	assert.Contains(t, err.Error(), "tom.txt")
}

func TestAnalyzeCleanLetter(t *testing.T) {
	a, _ := newAnalyzer(t, Options{References: legalref.Builtin()})

	report, err := a.Analyze(context.Background(), model.Document{ID: "kvittering.txt", Text: politeLetter})
	require.NoError(t, err)

	assert.Empty(t, report.Findings)
	assert.Empty(t, report.Recommendations)
	assert.Empty(t, report.References)
	require.NotNil(t, report.Merit)

	// Nothing to look up, so the reference phase never runs.
	assert.Equal(t,
		[]string{"extract", "match", "aggregate", "merit", "recommend"},
		phaseNames(report),
	)
}

func TestAnalyzeDeterminism(t *testing.T) {
	a, _ := newAnalyzer(t, Options{References: legalref.Builtin()})
	ctx := context.Background()
	doc := model.Document{ID: "avslag.txt", Text: denialLetter}

	first, err := a.Analyze(ctx, doc)
	require.NoError(t, err)
	second, err := a.Analyze(ctx, doc)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, first.Findings, second.Findings)
	assert.Equal(t, first.Recommendations, second.Recommendations)
	assert.Equal(t, first.References, second.References)
}

// countingLookup fails every call until the remaining budget hits zero.
type countingLookup struct {
	calls atomic.Int32
	err   error
}

func (c *countingLookup) Lookup(_ context.Context, types []string) ([]model.LegalReference, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	refs := make([]model.LegalReference, 0, len(types))
	for _, ft := range types {
		refs = append(refs, model.LegalReference{FindingType: ft})
	}
	return refs, nil
}

func TestAnalyzeReferenceFailureDegrades(t *testing.T) {
	lookup := &countingLookup{err: eris.New("lovdata unreachable")}
	a, _ := newAnalyzer(t, Options{References: lookup})

	report, err := a.Analyze(context.Background(), model.Document{ID: "avslag.txt", Text: denialLetter})
	require.NoError(t, err)

	assert.Empty(t, report.References)
	require.NotEmpty(t, report.Warnings)
	warning := report.Warnings[len(report.Warnings)-1]
	assert.Equal(t, model.WarnReferenceLookup, warning.Code)
	assert.Contains(t, warning.Message, "lovdata unreachable")

	// The failed phase is still on the report.
	names := phaseNames(report)
	assert.Contains(t, names, "references")
	assert.NotEmpty(t, report.Phases[len(report.Phases)-1].Error)
}

func TestAnalyzeReferenceBreakerOpens(t *testing.T) {
	lookup := &countingLookup{err: eris.New("lovdata unreachable")}
	a, _ := newAnalyzer(t, Options{References: lookup})
	ctx := context.Background()
	doc := model.Document{ID: "avslag.txt", Text: denialLetter}

	// Five consecutive failures open the breaker.
	for i := 0; i < 5; i++ {
		_, err := a.Analyze(ctx, doc)
		require.NoError(t, err)
	}
	assert.EqualValues(t, 5, lookup.calls.Load())

	report, err := a.Analyze(ctx, doc)
	require.NoError(t, err)
	assert.EqualValues(t, 5, lookup.calls.Load(), "open breaker must not call the lookup")
	require.NotEmpty(t, report.Warnings)
	assert.Contains(t, report.Warnings[len(report.Warnings)-1].Message, "circuit breaker is open")
}

func TestDistinctTypes(t *testing.T) {
	findings := []model.Finding{
		{Type: "settlement_contradiction"},
		{Type: "pressure_deadline"},
		{Type: "settlement_contradiction"},
	}
	assert.Equal(t, []string{"settlement_contradiction", "pressure_deadline"}, distinctTypes(findings))
}
