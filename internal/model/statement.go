package model

// Polarity tags whether a statement asserts, negates, or merely mentions a claim.
type Polarity string

const (
	PolarityAssertion Polarity = "assertion"
	PolarityNegation  Polarity = "negation"
	PolarityNeutral   Polarity = "neutral"
)

// Span is a half-open [Start, End) byte range into the original document text.
type Span struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

// Len returns the span length in bytes.
func (s Span) Len() int {
	return s.End - s.Start
}

// Contains reports whether other lies entirely within s.
func (s Span) Contains(other Span) bool {
	return other.Start >= s.Start && other.End <= s.End
}

// ClaimKey is a normalized directional tag for what a statement asserts or
// denies (e.g. "denial", "settlement_offer"). Claim keys are declared by
// contradiction-category patterns and referenced by the claim-pair table.
type ClaimKey string

const (
	ClaimDenial             ClaimKey = "denial"
	ClaimSettlementOffer    ClaimKey = "settlement_offer"
	ClaimLiabilityAdmission ClaimKey = "liability_admission"
	ClaimLiabilityDenial    ClaimKey = "liability_denial"
	ClaimPaymentPromise     ClaimKey = "payment_promise"
	ClaimPaymentRefusal     ClaimKey = "payment_refusal"
	ClaimCoverageConfirmed  ClaimKey = "coverage_confirmed"
	ClaimCoverageDenied     ClaimKey = "coverage_denied"
	ClaimDeadlineSet        ClaimKey = "deadline_set"
)

// ClaimRef is a claim key detected in a statement together with the exact
// span that triggered it. The span matters: a negation cue inside the
// matched phrase ("ikke ansvarlig") is part of the claim itself, while a
// cue outside it negates the claim.
type ClaimRef struct {
	Key  ClaimKey `json:"key"`
	Span Span     `json:"span"`
}

// Statement is an atomic extracted clause with its position in the original
// text. Statements are immutable once produced by the extractor.
type Statement struct {
	ID        int        `json:"id"`
	Text      string     `json:"text"`
	Start     int        `json:"start"`
	End       int        `json:"end"`
	Polarity  Polarity   `json:"polarity"`
	Certainty float64    `json:"certainty"`
	ClaimKeys []ClaimRef `json:"claim_keys,omitempty"`
}

// HasClaim reports whether the statement carries the given claim key.
func (s Statement) HasClaim(key ClaimKey) bool {
	for _, c := range s.ClaimKeys {
		if c.Key == key {
			return true
		}
	}
	return false
}
