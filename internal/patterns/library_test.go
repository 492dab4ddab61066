package patterns

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medhold/dispute-cli/internal/model"
)

func TestBuiltinIsValid(t *testing.T) {
	lib, err := Builtin()
	require.NoError(t, err)

	assert.NotEmpty(t, lib.Tactics())
	assert.NotEmpty(t, lib.Detectors())
	assert.Equal(t, len(DefaultClaimPairs()), lib.Table().Len())

	for _, category := range model.TacticCategories() {
		found := false
		for _, p := range lib.Tactics() {
			if p.Category == category {
				found = true
				break
			}
		}
		assert.True(t, found, "no tactic pattern for category %s", category)
	}
}

func TestNewLibraryValidation(t *testing.T) {
	valid := model.Pattern{
		ID: "p1", Name: "P1", Category: model.CategoryPressure,
		Phrases: []string{"siste frist"}, Strength: 0.7,
	}
	detector := model.Pattern{
		ID: "c1", Name: "C1", Category: model.CategoryContradiction,
		ClaimKey: model.ClaimDenial, Phrases: []string{"avslår kravet"},
	}

	tests := []struct {
		name     string
		patterns []model.Pattern
		pairs    []ClaimPair
		wantErr  string
	}{
		{"valid catalog", []model.Pattern{valid, detector}, nil, ""},
		{"empty id", []model.Pattern{{Category: model.CategoryPressure, Phrases: []string{"x"}, Strength: 0.5}}, nil, "empty id"},
		{"duplicate id", []model.Pattern{valid, valid}, nil, "defined twice"},
		{"bad category", []model.Pattern{{ID: "x", Category: "sarcasm", Phrases: []string{"x"}}}, nil, "unknown category"},
		{"no matchers", []model.Pattern{{ID: "x", Category: model.CategoryPressure, Strength: 0.5}}, nil, "no keywords or phrases"},
		{"strength out of range", []model.Pattern{{ID: "x", Category: model.CategoryPressure, Phrases: []string{"x"}, Strength: 1.5}}, nil, "outside (0,1]"},
		{"detector without claim key", []model.Pattern{{ID: "x", Category: model.CategoryContradiction, Phrases: []string{"x"}}}, nil, "without claim key"},
		{
			"pair without detector",
			[]model.Pattern{detector},
			[]ClaimPair{{A: model.ClaimDenial, B: model.ClaimSettlementOffer, FindingType: "t", BaseRate: 0.9, Polarities: PairBothAssert}},
			`no pattern declares claim key "settlement_offer"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := NewClaimTable(tt.pairs)
			require.NoError(t, err)
			_, err = NewLibrary(tt.patterns, table)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestClaimTableValidation(t *testing.T) {
	tests := []struct {
		name    string
		pairs   []ClaimPair
		wantErr string
	}{
		{"empty key", []ClaimPair{{B: model.ClaimDenial, FindingType: "t", BaseRate: 0.9, Polarities: PairBothAssert}}, "empty claim key"},
		{"empty finding type", []ClaimPair{{A: model.ClaimDenial, B: model.ClaimSettlementOffer, BaseRate: 0.9, Polarities: PairBothAssert}}, "empty finding type"},
		{"bad base rate", []ClaimPair{{A: model.ClaimDenial, B: model.ClaimSettlementOffer, FindingType: "t", BaseRate: 1.2, Polarities: PairBothAssert}}, "outside (0,1]"},
		{"bad polarities", []ClaimPair{{A: model.ClaimDenial, B: model.ClaimSettlementOffer, FindingType: "t", BaseRate: 0.9, Polarities: "maybe"}}, "unknown polarity rule"},
		{"self pair must oppose", []ClaimPair{{A: model.ClaimDenial, B: model.ClaimDenial, FindingType: "t", BaseRate: 0.9, Polarities: PairBothAssert}}, "must use opposing"},
		{
			"duplicate row",
			[]ClaimPair{
				{A: model.ClaimDenial, B: model.ClaimSettlementOffer, FindingType: "t", BaseRate: 0.9, Polarities: PairBothAssert},
				{A: model.ClaimSettlementOffer, B: model.ClaimDenial, FindingType: "u", BaseRate: 0.8, Polarities: PairBothAssert},
			},
			"defined twice",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClaimTable(tt.pairs)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestClaimTableLookupIsSymmetric(t *testing.T) {
	table, err := NewClaimTable(DefaultClaimPairs())
	require.NoError(t, err)

	forward, ok := table.Lookup(model.ClaimDenial, model.ClaimSettlementOffer)
	require.True(t, ok)
	reverse, ok := table.Lookup(model.ClaimSettlementOffer, model.ClaimDenial)
	require.True(t, ok)
	assert.Equal(t, forward, reverse)
	assert.Equal(t, "settlement_contradiction", forward.FindingType)

	_, ok = table.Lookup(model.ClaimDenial, model.ClaimDeadlineSet)
	assert.False(t, ok)
}

func TestFindSpans(t *testing.T) {
	p := model.Pattern{
		ID: "x", Category: model.CategoryPressure, Strength: 0.5,
		Phrases:  []string{"siste frist", "frist"},
		Keywords: []string{"bortfaller"},
	}
	text := "Dette er siste frist. Tilbudet bortfaller etter fristen."

	spans := FindSpans(p, text)
	require.Len(t, spans, 3)

	// longest phrase wins over its substring at the same position
	assert.Equal(t, "siste frist", spans[0].Text)
	assert.Equal(t, "bortfaller", spans[1].Text)
	assert.Equal(t, "frist", spans[2].Text)
	for _, sp := range spans {
		assert.Equal(t, sp.Text, text[sp.Start:sp.End])
	}
}

func TestTagClaims(t *testing.T) {
	lib, err := Builtin()
	require.NoError(t, err)

	t.Run("offer with amount", func(t *testing.T) {
		refs := lib.TagClaims("tilbyr vi deg likevel et oppgjør på kr 50.000.")
		require.NotEmpty(t, refs)
		for _, ref := range refs {
			assert.Equal(t, model.ClaimSettlementOffer, ref.Key)
		}
	})

	t.Run("denial", func(t *testing.T) {
		refs := lib.TagClaims("Vi avslår kravet ditt.")
		require.Len(t, refs, 1)
		assert.Equal(t, model.ClaimDenial, refs[0].Key)
		assert.Equal(t, "avslår kravet", refs[0].Span.Text)
	})

	t.Run("liability denial keeps cue inside span", func(t *testing.T) {
		refs := lib.TagClaims("Vi er ikke ansvarlige for skaden.")
		require.Len(t, refs, 1)
		assert.Equal(t, model.ClaimLiabilityDenial, refs[0].Key)
		assert.Equal(t, "ikke ansvarlige", refs[0].Span.Text)
	})

	t.Run("benign text", func(t *testing.T) {
		refs := lib.TagClaims("Takk for din henvendelse, vi behandler saken.")
		assert.Empty(t, refs)
	})
}

func TestLoadFile(t *testing.T) {
	catalog := `patterns:
  defaults:
    strength: 0.6
    base_rate: 0.8
  rules:
    - id: pressure_deadline
      name: Acceptance deadline
      category: pressure
      phrases: ["innen 14 dager"]
    - id: claim_denial
      name: Claim denial
      category: contradiction
      claim_key: denial
      phrases: ["avslår kravet"]
    - id: claim_settlement_offer
      name: Settlement offer
      category: contradiction
      claim_key: settlement_offer
      phrases: ["tilbyr vi deg"]
  claim_pairs:
    - a: denial
      b: settlement_offer
      finding_type: settlement_contradiction
      base_rate: 0.9
`
	path := filepath.Join(t.TempDir(), "patterns.yaml")
	require.NoError(t, os.WriteFile(path, []byte(catalog), 0o644))

	lib, err := LoadFile(path)
	require.NoError(t, err)

	deadline, ok := lib.ByID("pressure_deadline")
	require.True(t, ok)
	assert.InDelta(t, 0.6, deadline.Strength, 0.0001, "default strength applied")

	pair, ok := lib.Table().Lookup(model.ClaimDenial, model.ClaimSettlementOffer)
	require.True(t, ok)
	assert.Equal(t, PairBothAssert, pair.Polarities, "default polarity applied")
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read catalog")
}
