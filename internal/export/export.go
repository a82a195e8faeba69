// Package export serializes table grids into downloadable encodings.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html"

	"github.com/xuri/excelize/v2"

	"pdfdigest/internal/domain"
)

// Grid encodes a cell grid into the requested format.
func Grid(grid [][]string, format domain.ExportFormat) ([]byte, error) {
	switch format {
	case domain.FormatJSON:
		return exportJSON(grid)
	case domain.FormatCSV:
		return exportCSV(grid)
	case domain.FormatXLSX:
		return exportXLSX(grid)
	case domain.FormatHTML:
		return exportHTML(grid), nil
	default:
		return nil, fmt.Errorf("export format %q: %w", format, domain.ErrUnsupportedFormat)
	}
}

// Filename returns the artifact name for a table export, e.g. "table_0.csv".
func Filename(tableID int, format domain.ExportFormat) string {
	return fmt.Sprintf("table_%d.%s", tableID, domain.ExportFormats[format])
}

func exportJSON(grid [][]string) ([]byte, error) {
	if grid == nil {
		grid = [][]string{}
	}
	return json.Marshal(grid)
}

func exportCSV(grid [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, row := range grid {
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("writing csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing csv: %w", err)
	}
	return buf.Bytes(), nil
}

func exportXLSX(grid [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	for i, row := range grid {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, fmt.Errorf("computing cell name: %w", err)
		}
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return nil, fmt.Errorf("writing sheet row: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// exportHTML renders the grid as a plain <table>. Every cell value is
// entity-escaped: grids carry text extracted from untrusted documents.
func exportHTML(grid [][]string) []byte {
	var buf bytes.Buffer
	buf.WriteString("<table>\n")
	for i, row := range grid {
		tag := "td"
		if i == 0 {
			tag = "th"
		}
		buf.WriteString("  <tr>")
		for _, cell := range row {
			fmt.Fprintf(&buf, "<%s>%s</%s>", tag, html.EscapeString(cell), tag)
		}
		buf.WriteString("</tr>\n")
	}
	buf.WriteString("</table>\n")
	return buf.Bytes()
}
