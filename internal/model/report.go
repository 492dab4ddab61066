package model

import "time"

// Document is one unit of input text handed to the analyzer.
type Document struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Text string `json:"text"`
}

// AnalysisWarning is a non-fatal note attached to a report, e.g. a pattern
// attempt skipped for exceeding its time budget.
type AnalysisWarning struct {
	Code        string `json:"code"`
	PatternID   string `json:"pattern_id,omitempty"`
	StatementID int    `json:"statement_id,omitempty"`
	Message     string `json:"message"`
}

// Warning codes.
const (
	WarnPatternTimeout  = "pattern_timeout"
	WarnReferenceLookup = "reference_lookup_failed"
)

// PhaseResult records timing and metadata for one analyzer phase.
type PhaseResult struct {
	Name     string         `json:"name"`
	Duration int64          `json:"duration_ms"`
	Error    string         `json:"error,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Provision is a statute reference relevant to a finding type.
type Provision struct {
	Statute string `json:"statute"`
	Section string `json:"section,omitempty"`
	Summary string `json:"summary,omitempty"`
}

// Precedent is a decided case relevant to a finding type.
type Precedent struct {
	Citation string `json:"citation"`
	Summary  string `json:"summary,omitempty"`
}

// LegalReference bundles the provisions and precedents returned for one
// finding type by the reference lookup.
type LegalReference struct {
	FindingType string      `json:"finding_type"`
	Provisions  []Provision `json:"provisions,omitempty"`
	Precedents  []Precedent `json:"precedents,omitempty"`
}

// AnalysisReport is the full result of analyzing one document: findings,
// merit, recommendations, references, and run metadata.
type AnalysisReport struct {
	ID              string            `json:"id"`
	DocumentID      string            `json:"document_id,omitempty"`
	Statements      int               `json:"statements"`
	Findings        []Finding         `json:"findings"`
	Merit           *MeritAssessment  `json:"merit,omitempty"`
	Recommendations []Recommendation  `json:"recommendations"`
	References      []LegalReference  `json:"references,omitempty"`
	Warnings        []AnalysisWarning `json:"warnings,omitempty"`
	Phases          []PhaseResult     `json:"phases,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	DurationMS      int64             `json:"duration_ms"`
}
