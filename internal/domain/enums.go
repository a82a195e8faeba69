package domain

import "strings"

// Processor identifies a conversion strategy.
type Processor string

const (
	// ProcessorDocling is the structural converter: per-page markdown plus
	// raw table regions from a document-structuring engine.
	ProcessorDocling Processor = "docling"
	// ProcessorAgno is the extraction agent: structured trade/fee records
	// from an LLM call.
	ProcessorAgno Processor = "agno"
)

// Processors lists every supported processor selector.
var Processors = map[Processor]bool{
	ProcessorDocling: true,
	ProcessorAgno:    true,
}

// ParseProcessor resolves a selector string to a Processor.
func ParseProcessor(s string) (Processor, error) {
	p := Processor(strings.ToLower(strings.TrimSpace(s)))
	if !Processors[p] {
		return "", ErrUnknownProcessor
	}
	return p, nil
}

// ExportFormat identifies a table export encoding.
type ExportFormat string

const (
	FormatJSON ExportFormat = "json"
	FormatCSV  ExportFormat = "csv"
	FormatXLSX ExportFormat = "xlsx"
	FormatHTML ExportFormat = "html"
)

// ExportFormats maps each supported format to its file extension.
var ExportFormats = map[ExportFormat]string{
	FormatJSON: "json",
	FormatCSV:  "csv",
	FormatXLSX: "xlsx",
	FormatHTML: "html",
}

// ParseExportFormat resolves a format string to an ExportFormat.
// "excel" is accepted as an alias for xlsx.
func ParseExportFormat(s string) (ExportFormat, error) {
	f := ExportFormat(strings.ToLower(strings.TrimSpace(s)))
	if f == "excel" {
		f = FormatXLSX
	}
	if _, ok := ExportFormats[f]; !ok {
		return "", ErrUnsupportedFormat
	}
	return f, nil
}

// OperationType is the side of a trade.
type OperationType string

const (
	OperationBuy  OperationType = "Buy"
	OperationSell OperationType = "Sell"
)

// Market classifies the venue segment a trade executed on.
type Market string

const (
	MarketEquities    Market = "Equities"
	MarketDerivatives Market = "Derivatives"
)
