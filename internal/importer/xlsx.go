package importer

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/medhold/dispute-cli/internal/learning"
)

// XLSXOptions configures the spreadsheet importer.
type XLSXOptions struct {
	SheetIndex int    // default 0
	SheetName  string // if set, overrides SheetIndex
}

// XLSXImporter reads outcome rows from a spreadsheet export. Row one is the
// header; fully empty rows are ignored, spreadsheets tend to have them.
type XLSXImporter struct {
	store learning.Store
	opts  XLSXOptions
}

// NewXLSX creates a spreadsheet importer writing to store.
func NewXLSX(store learning.Store, opts XLSXOptions) *XLSXImporter {
	return &XLSXImporter{store: store, opts: opts}
}

// Import opens the workbook at path and records every valid row of the
// selected sheet.
func (im *XLSXImporter) Import(ctx context.Context, path string) (*Result, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "importer: open xlsx %s", path)
	}

	sheet, err := selectSheet(f, im.opts)
	if err != nil {
		return nil, err
	}
	if len(sheet.Rows) == 0 {
		return nil, eris.Errorf("importer: sheet %q is empty", sheet.Name)
	}

	idx, err := requireColumns(rowToStrings(sheet.Rows[0]))
	if err != nil {
		return nil, err
	}

	var rows []rowRecord
	for i, row := range sheet.Rows[1:] {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "importer: xlsx read canceled")
		}
		cells := rowToStrings(row)
		if allEmpty(cells) {
			continue
		}
		rows = append(rows, parseRow(cells, idx, i+1))
	}

	return recordRows(ctx, im.store, rows)
}

func selectSheet(f *xlsx.File, opts XLSXOptions) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("importer: sheet %q not found", opts.SheetName)
		}
		return sheet, nil
	}
	if opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("importer: sheet index %d out of range, file has %d sheets", opts.SheetIndex, len(f.Sheets))
	}
	return f.Sheets[opts.SheetIndex], nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for i, cell := range row.Cells {
		cells[i] = cell.String()
	}
	return cells
}

func allEmpty(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
