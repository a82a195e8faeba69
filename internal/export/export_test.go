package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"pdfdigest/internal/domain"
)

var sampleGrid = [][]string{
	{"Ticker", "Qty", "Price"},
	{"PETR4", "100", "38.50"},
	{"VALE3", "50", "61.20"},
}

func TestGrid_JSON(t *testing.T) {
	out, err := Grid(sampleGrid, domain.FormatJSON)
	require.NoError(t, err)

	var decoded [][]string
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, sampleGrid, decoded)
}

func TestGrid_JSON_EmptyGrid(t *testing.T) {
	out, err := Grid(nil, domain.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(out))
}

func TestGrid_CSV_RoundTrip(t *testing.T) {
	grid := [][]string{
		{"field", "value"},
		{`has "quotes"`, "has, comma"},
		{"has\nnewline", "plain"},
	}
	out, err := Grid(grid, domain.FormatCSV)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, grid, records)
}

func TestGrid_XLSX_RoundTrip(t *testing.T) {
	out, err := Grid(sampleGrid, domain.FormatXLSX)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	assert.Equal(t, sampleGrid, rows)
}

func TestGrid_HTML_EscapesCells(t *testing.T) {
	grid := [][]string{
		{"Header"},
		{`<script>alert("x")</script>`},
	}
	out, err := Grid(grid, domain.FormatHTML)
	require.NoError(t, err)

	s := string(out)
	assert.NotContains(t, s, "<script>")
	assert.Contains(t, s, "&lt;script&gt;alert(&#34;x&#34;)&lt;/script&gt;")
	assert.Contains(t, s, "<th>Header</th>")
	assert.True(t, strings.HasPrefix(s, "<table>"))
}

func TestGrid_UnsupportedFormat(t *testing.T) {
	_, err := Grid(sampleGrid, domain.ExportFormat("parquet"))
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "table_0.csv", Filename(0, domain.FormatCSV))
	assert.Equal(t, "table_3.xlsx", Filename(3, domain.FormatXLSX))
}
