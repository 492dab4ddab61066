package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medhold/dispute-cli/internal/model"
)

func TestWriteReportJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	report := sampleRenderReport()

	require.NoError(t, writeReportJSON(path, report))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got model.AnalysisReport
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, report.ID, got.ID)
	assert.Equal(t, report.DocumentID, got.DocumentID)
	require.Len(t, got.Findings, 2)
	assert.Equal(t, "settlement_contradiction", got.Findings[0].Type)
	require.NotNil(t, got.Merit)
	assert.Equal(t, model.MeritHigh, got.Merit.Merit)

	// Indented output, readable when committed next to the case file.
	assert.Contains(t, string(data), "\n  \"id\"")
}

func TestWriteReportJSON_BadPath(t *testing.T) {
	err := writeReportJSON(filepath.Join(t.TempDir(), "missing", "report.json"), sampleRenderReport())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create report file")
}
