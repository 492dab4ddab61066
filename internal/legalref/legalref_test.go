package legalref

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medhold/dispute-cli/internal/model"
)

var contradictionTypes = []string{
	"settlement_contradiction",
	"liability_contradiction",
	"payment_contradiction",
	"coverage_contradiction",
	"admission_contradiction",
	"settlement_reversal",
	"payment_reversal",
}

// countingLookup records how often the wrapped provider is hit. A non-nil
// err fails the next call only, like a transient provider outage.
type countingLookup struct {
	calls int
	refs  []model.LegalReference
	err   error
}

func (c *countingLookup) Lookup(_ context.Context, _ []string) ([]model.LegalReference, error) {
	c.calls++
	if c.err != nil {
		err := c.err
		c.err = nil
		return nil, err
	}
	return c.refs, nil
}

func sampleRefs() []model.LegalReference {
	return []model.LegalReference{{
		FindingType: "settlement_contradiction",
		Provisions:  []model.Provision{{Statute: "avtaleloven", Section: "§ 36"}},
	}}
}

func TestBuiltinCoversContradictionTypes(t *testing.T) {
	refs, err := Builtin().Lookup(context.Background(), contradictionTypes)
	require.NoError(t, err)
	require.Len(t, refs, len(contradictionTypes))

	for i, ref := range refs {
		assert.Equal(t, contradictionTypes[i], ref.FindingType)
		assert.NotEmpty(t, ref.Provisions, "type %s has no provisions", ref.FindingType)
	}
}

func TestBuiltinKnowsTacticsWithLegalBasis(t *testing.T) {
	catalog := Builtin()

	refs, err := catalog.Lookup(context.Background(), []string{"pressure_deadline", "intimidation_legal_threat"})
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, "avtaleloven", refs[0].Provisions[0].Statute)
	assert.Equal(t, "tvisteloven", refs[1].Provisions[0].Statute)

	// Tactics without a statutory hook have no entry.
	refs, err = catalog.Lookup(context.Background(), []string{"pressure_final_offer", "gaslighting_reframe"})
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestStaticCatalogLookup(t *testing.T) {
	catalog := NewStaticCatalog([]model.LegalReference{
		{FindingType: "a", Provisions: []model.Provision{{Statute: "lov A"}}},
		{FindingType: "b", Precedents: []model.Precedent{{Citation: "Rt. 2000 s. 1"}}},
	})

	t.Run("request order preserved", func(t *testing.T) {
		refs, err := catalog.Lookup(context.Background(), []string{"b", "a"})
		require.NoError(t, err)
		require.Len(t, refs, 2)
		assert.Equal(t, "b", refs[0].FindingType)
		assert.Equal(t, "a", refs[1].FindingType)
	})

	t.Run("unknown types skipped", func(t *testing.T) {
		refs, err := catalog.Lookup(context.Background(), []string{"a", "nope"})
		require.NoError(t, err)
		require.Len(t, refs, 1)
		assert.Equal(t, "a", refs[0].FindingType)
	})

	t.Run("repeated type yields one entry", func(t *testing.T) {
		refs, err := catalog.Lookup(context.Background(), []string{"a", "a", "a"})
		require.NoError(t, err)
		assert.Len(t, refs, 1)
	})

	t.Run("empty request", func(t *testing.T) {
		refs, err := catalog.Lookup(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, refs)
	})
}

func TestStaticCatalogLastEntryWins(t *testing.T) {
	catalog := NewStaticCatalog([]model.LegalReference{
		{FindingType: "a", Provisions: []model.Provision{{Statute: "old"}}},
		{FindingType: "a", Provisions: []model.Provision{{Statute: "new"}}},
	})

	refs, err := catalog.Lookup(context.Background(), []string{"a"})
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "new", refs[0].Provisions[0].Statute)
}

func TestStaticCatalogDetachesEntries(t *testing.T) {
	catalog := Builtin()

	refs, err := catalog.Lookup(context.Background(), []string{"settlement_contradiction"})
	require.NoError(t, err)
	require.NotEmpty(t, refs[0].Provisions)
	refs[0].Provisions[0].Statute = "mutated"

	again, err := catalog.Lookup(context.Background(), []string{"settlement_contradiction"})
	require.NoError(t, err)
	assert.Equal(t, "avtaleloven", again[0].Provisions[0].Statute)
}

func TestCachedServesRepeatLookupsFromCache(t *testing.T) {
	fake := &countingLookup{refs: sampleRefs()}
	cached := NewCached(fake, time.Minute, time.Minute)
	types := []string{"settlement_contradiction"}

	first, err := cached.Lookup(context.Background(), types)
	require.NoError(t, err)
	second, err := cached.Lookup(context.Background(), types)
	require.NoError(t, err)

	assert.Equal(t, 1, fake.calls)
	assert.Equal(t, first, second)

	// A different type list misses the cache.
	_, err = cached.Lookup(context.Background(), []string{"payment_contradiction"})
	require.NoError(t, err)
	assert.Equal(t, 2, fake.calls)
}

func TestCachedDoesNotCacheErrors(t *testing.T) {
	fake := &countingLookup{refs: sampleRefs(), err: eris.New("provider down")}
	cached := NewCached(fake, time.Minute, time.Minute)
	types := []string{"settlement_contradiction"}

	_, err := cached.Lookup(context.Background(), types)
	require.Error(t, err)

	refs, err := cached.Lookup(context.Background(), types)
	require.NoError(t, err)
	assert.Equal(t, sampleRefs(), refs)
	assert.Equal(t, 2, fake.calls)
}

func TestRateLimitedPassesResultsThrough(t *testing.T) {
	fake := &countingLookup{refs: sampleRefs()}
	limited := NewRateLimited(fake, 100, 10)

	refs, err := limited.Lookup(context.Background(), []string{"settlement_contradiction"})
	require.NoError(t, err)
	assert.Equal(t, sampleRefs(), refs)
	assert.Equal(t, 1, fake.calls)
}

func TestRateLimitedStopsWhenContextExpires(t *testing.T) {
	fake := &countingLookup{refs: sampleRefs()}
	limited := NewRateLimited(fake, 0.01, 1)

	// Consume the only burst token.
	_, err := limited.Lookup(context.Background(), []string{"settlement_contradiction"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = limited.Lookup(ctx, []string{"settlement_contradiction"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limiter wait")
	assert.Equal(t, 1, fake.calls)
}
