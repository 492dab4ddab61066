package importer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/medhold/dispute-cli/internal/learning"
	"github.com/medhold/dispute-cli/internal/model"
	"github.com/medhold/dispute-cli/pkg/salesforce"
)

// sfCase mirrors the fields selected from closed cases. Multi-select
// picklists arrive semicolon separated; numbers decode as float64.
type sfCase struct {
	ID                 string   `json:"Id"`
	Outcome            string   `json:"Outcome__c"`
	ContradictionTypes string   `json:"Contradiction_Types__c"`
	SettlementAmount   *float64 `json:"Settlement_Amount__c"`
	ResolutionDays     float64  `json:"Time_To_Resolution_Days__c"`
	ConfidenceAtStart  float64  `json:"Confidence_At_Start__c"`
	ActualOutcome      float64  `json:"Actual_Outcome__c"`
}

var sfCaseFields = []string{
	"Id", "Outcome__c", "Contradiction_Types__c", "Settlement_Amount__c",
	"Time_To_Resolution_Days__c", "Confidence_At_Start__c", "Actual_Outcome__c",
}

// SalesforceOptions configures the closed-case query.
type SalesforceOptions struct {
	// ClosedSince restricts the pull to cases closed at or after this time.
	ClosedSince time.Time

	// Limit caps the number of cases pulled. Default 1000.
	Limit int
}

// SalesforceImporter pulls closed cases from the org and records their
// outcomes. The Salesforce case ID becomes the record ID, so re-running the
// import against a fresh store reproduces the same ledger.
type SalesforceImporter struct {
	store  learning.Store
	client salesforce.Client
	opts   SalesforceOptions
}

// NewSalesforce creates an importer reading from client and writing to store.
func NewSalesforce(store learning.Store, client salesforce.Client, opts SalesforceOptions) *SalesforceImporter {
	return &SalesforceImporter{store: store, client: client, opts: opts}
}

// Import queries closed cases with a recorded outcome and records each one.
func (im *SalesforceImporter) Import(ctx context.Context) (*Result, error) {
	var cases []sfCase
	if err := im.client.Query(ctx, buildCaseSOQL(im.opts), &cases); err != nil {
		return nil, eris.Wrap(err, "importer: query closed cases")
	}

	rows := make([]rowRecord, 0, len(cases))
	for i, c := range cases {
		rows = append(rows, rowRecord{
			row: i + 1,
			rec: model.CaseLearningRecord{
				ID:                   c.ID,
				Outcome:              model.Outcome(strings.ToLower(strings.TrimSpace(c.Outcome))),
				ContradictionTypes:   splitTypes(c.ContradictionTypes),
				SettlementAmount:     c.SettlementAmount,
				TimeToResolutionDays: int(c.ResolutionDays),
				ConfidenceAtStart:    c.ConfidenceAtStart,
				ActualOutcome:        c.ActualOutcome,
			},
		})
	}
	return recordRows(ctx, im.store, rows)
}

func buildCaseSOQL(opts SalesforceOptions) string {
	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM Case WHERE IsClosed = true AND Outcome__c != null",
		strings.Join(sfCaseFields, ", "))
	if !opts.ClosedSince.IsZero() {
		fmt.Fprintf(&b, " AND ClosedDate >= %s", opts.ClosedSince.UTC().Format("2006-01-02T15:04:05Z"))
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 1000
	}
	fmt.Fprintf(&b, " ORDER BY ClosedDate ASC LIMIT %d", limit)
	return b.String()
}
