package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medhold/dispute-cli/internal/model"
	"github.com/medhold/dispute-cli/internal/pipeline"
)

func TestFormatBatchSummary(t *testing.T) {
	items := []pipeline.BatchItem{
		{
			DocumentID: "avslag.txt",
			Report: &model.AnalysisReport{
				ID:       "report-1",
				Findings: []model.Finding{{Type: "settlement_contradiction"}},
				Merit:    &model.MeritAssessment{Merit: model.MeritHigh},
			},
		},
		{
			DocumentID: "tom.txt",
			Err:        errors.New("no statements found"),
		},
	}

	var buf bytes.Buffer
	formatBatchSummary(&buf, items)

	output := buf.String()
	assert.Contains(t, output, "LETTER")
	assert.Contains(t, output, "avslag.txt")
	assert.Contains(t, output, "high")
	assert.Contains(t, output, "ok")
	assert.Contains(t, output, "tom.txt")
	assert.Contains(t, output, "failed: no statements found")
	assert.Contains(t, output, "1 analyzed, 1 failed")
}

func TestFormatBatchSummary_Empty(t *testing.T) {
	var buf bytes.Buffer
	formatBatchSummary(&buf, nil)

	assert.Contains(t, buf.String(), "0 analyzed, 0 failed")
}

func TestWriteBatchReports(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	items := []pipeline.BatchItem{
		{
			DocumentID: "a.txt",
			Report:     &model.AnalysisReport{ID: "report-a", DocumentID: "a.txt"},
		},
		{DocumentID: "b.txt", Err: errors.New("boom")},
	}

	require.NoError(t, writeBatchReports(dir, items))

	// One file per successful report, none for the failure.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "report-a.json", entries[0].Name())

	data, err := os.ReadFile(filepath.Join(dir, "report-a.json"))
	require.NoError(t, err)

	var report model.AnalysisReport
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, "report-a", report.ID)
	assert.Equal(t, "a.txt", report.DocumentID)
}
