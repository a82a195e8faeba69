package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownProcessor    = errors.New("unknown processor")
	ErrUnsupportedFormat   = errors.New("unsupported export format")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrEmptyFile           = errors.New("file is empty")
	ErrNotPDF              = errors.New("file is not a valid PDF document")
	ErrMissingAPIKey       = errors.New("extraction agent API key is not configured")
)

// ConversionError indicates the underlying converter adapter failed.
// It is retryable by issuing a fresh request; no cache entry is created.
type ConversionError struct {
	Processor Processor
	Err       error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("%s conversion failed: %v", e.Processor, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// NewConversionError wraps an adapter failure with its processor.
func NewConversionError(p Processor, err error) *ConversionError {
	return &ConversionError{Processor: p, Err: err}
}

// MalformedExtractionError indicates the extraction agent's output could
// not be parsed as structured data at all. Distinct from a schema
// validation failure, where the output parses but violates field rules.
type MalformedExtractionError struct {
	Raw string
	Err error
}

func (e *MalformedExtractionError) Error() string {
	return fmt.Sprintf("extraction output is not valid structured data: %v", e.Err)
}

func (e *MalformedExtractionError) Unwrap() error {
	return e.Err
}

// Violation is a single failed field constraint on an extracted record.
type Violation struct {
	Record  string `json:"record"`
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// SchemaValidationError carries every violated field constraint found in a
// record set, never just the first.
type SchemaValidationError struct {
	Violations []Violation
}

func (e *SchemaValidationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = fmt.Sprintf("%s.%s: %s", v.Record, v.Field, v.Message)
	}
	return fmt.Sprintf("schema validation failed (%d violations): %s",
		len(e.Violations), strings.Join(msgs, "; "))
}
