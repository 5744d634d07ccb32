// Package export renders a comparison table to CSV or XLSX for review
// outside the CLI.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/docreview/internal/model"
)

// WriteCSV writes the table as CSV: one header row of document names, then
// one row per field. names maps document IDs to display names; IDs without
// an entry are printed as-is.
func WriteCSV(w io.Writer, table *model.ComparisonTable, names map[string]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(headerRow(table, names)); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	for _, row := range table.Rows {
		if err := cw.Write(fieldRow(table, row)); err != nil {
			return eris.Wrapf(err, "export: write csv row %s", row.FieldName)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush csv")
}

// WriteXLSX writes the table as a single-sheet workbook at path.
func WriteXLSX(path string, table *model.ComparisonTable, names map[string]string) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Comparison")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, cell := range headerRow(table, names) {
		header.AddCell().Value = cell
	}
	for _, row := range table.Rows {
		xr := sheet.AddRow()
		for _, cell := range fieldRow(table, row) {
			xr.AddCell().Value = cell
		}
	}

	return eris.Wrapf(f.Save(path), "export: save %s", path)
}

func headerRow(table *model.ComparisonTable, names map[string]string) []string {
	header := make([]string, 0, len(table.DocumentIDs)+1)
	header = append(header, "Field")
	for _, docID := range table.DocumentIDs {
		name := names[docID]
		if name == "" {
			name = docID
		}
		header = append(header, name)
	}
	return header
}

func fieldRow(table *model.ComparisonTable, row model.ComparisonRow) []string {
	cells := make([]string, 0, len(table.DocumentIDs)+1)
	cells = append(cells, row.FieldName)
	for _, docID := range table.DocumentIDs {
		cells = append(cells, renderCell(row.DocumentResults[docID]))
	}
	return cells
}

// renderCell formats one extraction for a spreadsheet cell, appending the
// confidence as a percentage so reviewers can sort low-confidence values.
func renderCell(cell model.DocumentCell) string {
	switch cell.Status {
	case model.StatusExtracted:
		value := cell.NormalizedValue
		if value == "" {
			value = cell.Value
		}
		return fmt.Sprintf("%s (%.0f%%)", value, cell.ConfidenceScore*100)
	case model.StatusError:
		return "ERROR"
	default:
		return "N/A"
	}
}
