package patterns

import (
	"github.com/rotisserie/eris"

	"github.com/medhold/dispute-cli/internal/model"
)

// PairPolarity states which polarity combination lets a claim pair fire.
type PairPolarity string

const (
	// PairBothAssert fires when both statements assert their keys. Used for
	// directional keys that exclude each other by content, like a denial
	// against a settlement offer.
	PairBothAssert PairPolarity = "both_assert"
	// PairOpposing fires when one statement asserts the key and the other
	// negates the same key, a reversal within one letter.
	PairOpposing PairPolarity = "opposing"
)

// Valid reports whether the polarity rule is a known value.
func (p PairPolarity) Valid() bool {
	return p == PairBothAssert || p == PairOpposing
}

// ClaimPair is one row of the claim-compatibility table: two claim keys
// whose co-occurrence in a single letter is contradictory, the finding type
// the pair produces, and the pair's historical base rate.
type ClaimPair struct {
	A               model.ClaimKey `json:"a" yaml:"a"`
	B               model.ClaimKey `json:"b" yaml:"b"`
	FindingType     string         `json:"finding_type" yaml:"finding_type"`
	BaseRate        float64        `json:"base_rate" yaml:"base_rate"`
	Polarities      PairPolarity   `json:"polarities" yaml:"polarities"`
	LegalBasis      string         `json:"legal_basis,omitempty" yaml:"legal_basis,omitempty"`
	CounterStrategy string         `json:"counter_strategy,omitempty" yaml:"counter_strategy,omitempty"`
}

type pairKey struct {
	a model.ClaimKey
	b model.ClaimKey
}

func normalizePair(a, b model.ClaimKey) pairKey {
	if b < a {
		a, b = b, a
	}
	return pairKey{a: a, b: b}
}

// ClaimTable is the fixed claim-compatibility table consulted by the
// pairwise pass. Built once, read-only afterwards; lookups are symmetric in
// key order.
type ClaimTable struct {
	pairs []ClaimPair
	index map[pairKey]ClaimPair
}

// NewClaimTable validates the rows and builds the lookup index.
func NewClaimTable(pairs []ClaimPair) (*ClaimTable, error) {
	t := &ClaimTable{
		pairs: make([]ClaimPair, 0, len(pairs)),
		index: make(map[pairKey]ClaimPair, len(pairs)),
	}
	for i, p := range pairs {
		if p.A == "" || p.B == "" {
			return nil, eris.Errorf("patterns: claim pair %d: empty claim key", i)
		}
		if p.FindingType == "" {
			return nil, eris.Errorf("patterns: claim pair %d (%s/%s): empty finding type", i, p.A, p.B)
		}
		if p.BaseRate <= 0 || p.BaseRate > 1 {
			return nil, eris.Errorf("patterns: claim pair %s: base rate %v outside (0,1]", p.FindingType, p.BaseRate)
		}
		if !p.Polarities.Valid() {
			return nil, eris.Errorf("patterns: claim pair %s: unknown polarity rule %q", p.FindingType, p.Polarities)
		}
		if p.A == p.B && p.Polarities != PairOpposing {
			return nil, eris.Errorf("patterns: claim pair %s: self-pair %q must use %s", p.FindingType, p.A, PairOpposing)
		}
		key := normalizePair(p.A, p.B)
		if _, dup := t.index[key]; dup {
			return nil, eris.Errorf("patterns: claim pair %s/%s defined twice", p.A, p.B)
		}
		t.index[key] = p
		t.pairs = append(t.pairs, p)
	}
	return t, nil
}

// Lookup returns the row covering the two claim keys, in either order.
func (t *ClaimTable) Lookup(a, b model.ClaimKey) (ClaimPair, bool) {
	p, ok := t.index[normalizePair(a, b)]
	return p, ok
}

// Pairs returns the table rows in declaration order. Read-only.
func (t *ClaimTable) Pairs() []ClaimPair {
	return t.pairs
}

// Len returns the number of rows.
func (t *ClaimTable) Len() int {
	return len(t.pairs)
}
