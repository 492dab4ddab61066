package importer

import (
	"context"
	"encoding/csv"
	"io"

	"github.com/rotisserie/eris"

	"github.com/medhold/dispute-cli/internal/learning"
)

// CSVOptions configures the CSV importer.
type CSVOptions struct {
	// Delimiter defaults to ','. Norwegian case-system exports often use ';'.
	Delimiter rune
}

// CSVImporter reads outcome rows from a CSV export. The first row must be a
// header naming at least the outcome and contradiction_types columns.
type CSVImporter struct {
	store learning.Store
	opts  CSVOptions
}

// NewCSV creates a CSV importer writing to store.
func NewCSV(store learning.Store, opts CSVOptions) *CSVImporter {
	return &CSVImporter{store: store, opts: opts}
}

// Import parses r and records every valid row. A syntactically broken CSV
// stream aborts the run; a row the store rejects only skips that row.
func (im *CSVImporter) Import(ctx context.Context, r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	if im.opts.Delimiter != 0 {
		reader.Comma = im.opts.Delimiter
	}

	header, err := reader.Read()
	if err == io.EOF {
		return nil, eris.New("importer: empty csv input")
	}
	if err != nil {
		return nil, eris.Wrap(err, "importer: read csv header")
	}
	idx, err := requireColumns(header)
	if err != nil {
		return nil, err
	}

	var rows []rowRecord
	for rowNum := 1; ; rowNum++ {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "importer: csv read canceled")
		}
		cells, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "importer: csv row %d", rowNum)
		}
		rows = append(rows, parseRow(cells, idx, rowNum))
	}

	return recordRows(ctx, im.store, rows)
}
