package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpanContains(t *testing.T) {
	outer := Span{Start: 10, End: 30}

	assert.True(t, outer.Contains(Span{Start: 12, End: 20}))
	assert.True(t, outer.Contains(Span{Start: 10, End: 30}))
	assert.False(t, outer.Contains(Span{Start: 5, End: 20}))
	assert.False(t, outer.Contains(Span{Start: 20, End: 35}))
}

func TestStatementHasClaim(t *testing.T) {
	st := Statement{
		Text: "Vi avslår kravet",
		ClaimKeys: []ClaimRef{
			{Key: ClaimDenial, Span: Span{Start: 3, End: 9, Text: "avslår"}},
		},
	}

	assert.True(t, st.HasClaim(ClaimDenial))
	assert.False(t, st.HasClaim(ClaimSettlementOffer))
}
