package model

// MeritTier is the qualitative summary of estimated case strength.
type MeritTier string

const (
	MeritHigh   MeritTier = "high"
	MeritMedium MeritTier = "medium"
	MeritLow    MeritTier = "low"
)

// MeritAssessment is the scorer's output for one analysis request.
// Recomputed fresh from a single learning-store snapshot on every call;
// never persisted.
type MeritAssessment struct {
	Merit              MeritTier `json:"merit"`
	WinProbability     float64   `json:"win_probability"`
	EstimatedValue     float64   `json:"estimated_value"`
	SampleSize         int       `json:"sample_size"`
	RecommendationText string    `json:"recommendation_text"`
}

// Priority ranks a recommendation's urgency.
type Priority string

const (
	PriorityImmediate Priority = "immediate"
	PriorityHigh      Priority = "high"
	PriorityMedium    Priority = "medium"
)

// Recommendation is one prioritized counter-strategy derived from a finding
// type and the merit assessment. SuccessProbability is the finding's own
// confidence, a local proxy only.
type Recommendation struct {
	FindingType        string   `json:"finding_type"`
	Strategy           string   `json:"strategy"`
	LegalBasis         string   `json:"legal_basis,omitempty"`
	Priority           Priority `json:"priority"`
	SuccessProbability float64  `json:"success_probability"`
}
