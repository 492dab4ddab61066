// Package importer backfills the learning store from the systems case teams
// already track outcomes in: CSV exports, spreadsheets, and closed
// Salesforce cases. Every row funnels through Store.Record so the counter
// invariants hold; a malformed row is skipped with a reason while the rest
// of the batch proceeds.
package importer

import (
	"context"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/medhold/dispute-cli/internal/learning"
	"github.com/medhold/dispute-cli/internal/model"
	"github.com/medhold/dispute-cli/internal/resilience"
	"github.com/medhold/dispute-cli/pkg/nortext"
)

// Recognized column names after normalization. Only outcome and
// contradiction_types are required.
const (
	colCaseID          = "case_id"
	colOutcome         = "outcome"
	colTypes           = "contradiction_types"
	colSettlement      = "settlement_amount"
	colResolutionDays  = "time_to_resolution_days"
	colConfidence      = "confidence_at_start"
	colActualOutcome   = "actual_outcome"
	typeListSeparators = ";|"
)

// RowError records why one source row was skipped.
type RowError struct {
	Row int // 1-based data row number, header excluded
	Err error
}

// Result summarizes one import run.
type Result struct {
	Imported int
	Skipped  []RowError
}

// rowRecord pairs a parsed record with its source row, or the parse error
// that disqualified it.
type rowRecord struct {
	row int
	rec model.CaseLearningRecord
	err error
}

// recordRows writes parsed records to the store in row order. Transient
// store failures are retried; rows the store rejects are skipped and
// reported. Context cancellation aborts the run with the partial result.
func recordRows(ctx context.Context, store learning.Store, rows []rowRecord) (*Result, error) {
	retry := resilience.DefaultRetryConfig()
	retry.OnRetry = resilience.RetryLogger("learning", "record outcome")

	res := &Result{}
	for _, rr := range rows {
		if rr.err != nil {
			res.Skipped = append(res.Skipped, RowError{Row: rr.row, Err: rr.err})
			continue
		}
		rec := rr.rec
		err := resilience.Do(ctx, retry, func(ctx context.Context) error {
			return store.Record(ctx, rec)
		})
		if err != nil {
			if ctx.Err() != nil {
				return res, eris.Wrap(err, "importer: run aborted")
			}
			res.Skipped = append(res.Skipped, RowError{Row: rr.row, Err: err})
			continue
		}
		res.Imported++
	}

	zap.L().Info("import finished",
		zap.Int("imported", res.Imported),
		zap.Int("skipped", len(res.Skipped)),
	)
	return res, nil
}

// columnIndex maps normalized header names to positions.
func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[normalizeHeader(h)] = i
	}
	return idx
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.ReplaceAll(h, " ", "_")
}

// requireColumns validates that the header names every required column.
func requireColumns(header []string) (map[string]int, error) {
	idx := columnIndex(header)
	for _, required := range []string{colOutcome, colTypes} {
		if _, ok := idx[required]; !ok {
			return nil, eris.Errorf("importer: missing %q column", required)
		}
	}
	return idx, nil
}

// parseRow builds a record from one row of cells. Number parsing fails the
// row; outcome and type validation is left to the store, which is the single
// authority on what a valid record is.
func parseRow(cells []string, idx map[string]int, rowNum int) rowRecord {
	cell := func(name string) string {
		i, ok := idx[name]
		if !ok || i >= len(cells) {
			return ""
		}
		return strings.TrimSpace(cells[i])
	}

	rec := model.CaseLearningRecord{
		ID:                 cell(colCaseID),
		Outcome:            model.Outcome(strings.ToLower(cell(colOutcome))),
		ContradictionTypes: splitTypes(cell(colTypes)),
	}

	if v := cell(colSettlement); v != "" {
		amount, err := parseAmountCell(v)
		if err != nil {
			return rowRecord{row: rowNum, err: err}
		}
		rec.SettlementAmount = &amount
	}
	if v := cell(colResolutionDays); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return rowRecord{row: rowNum, err: eris.Errorf("importer: bad %s %q", colResolutionDays, v)}
		}
		rec.TimeToResolutionDays = days
	}
	if v := cell(colConfidence); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return rowRecord{row: rowNum, err: eris.Errorf("importer: bad %s %q", colConfidence, v)}
		}
		rec.ConfidenceAtStart = f
	}
	if v := cell(colActualOutcome); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return rowRecord{row: rowNum, err: eris.Errorf("importer: bad %s %q", colActualOutcome, v)}
		}
		rec.ActualOutcome = f
	}

	return rowRecord{row: rowNum, rec: rec}
}

// splitTypes splits a type list on ";" or "|", the separators CSV exports
// and Salesforce multi-select picklists use.
func splitTypes(s string) []string {
	var types []string
	for _, part := range strings.FieldsFunc(s, func(r rune) bool {
		return strings.ContainsRune(typeListSeparators, r)
	}) {
		if t := strings.TrimSpace(part); t != "" {
			types = append(types, t)
		}
	}
	return types
}

// parseAmountCell accepts both plain numbers and Norwegian formatted
// amounts like "kr 50.000" or "50 000,50".
func parseAmountCell(v string) (float64, error) {
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f, nil
	}
	if f, ok := nortext.ParseAmount(v); ok {
		return f, nil
	}
	return 0, eris.Errorf("importer: bad %s %q", colSettlement, v)
}
