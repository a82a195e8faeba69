package port

import (
	"context"
	"encoding/json"

	"pdfdigest/internal/domain"
)

// ConvertInput carries the data needed for a conversion run.
type ConvertInput struct {
	FileBytes   []byte
	Filename    string
	ContentType string
}

// RawTableRegion is an unparsed table as reported by the structural
// engine: its position plus the raw cell text, before grid detection.
type RawTableRegion struct {
	Page       int
	BBox       *domain.BoundingBox
	Confidence *float64
	Text       string
}

// RawOutput is the adapter-specific result of a conversion, before
// normalization. A structural run fills Pages and TableRegions; an
// extraction run fills Records with untrusted JSON that must pass schema
// validation before use.
type RawOutput struct {
	Pages        map[int]string
	TableRegions []RawTableRegion
	Records      json.RawMessage
	ModelUsed    string
}

// ConverterInfo describes a converter for health and provenance reporting.
type ConverterInfo struct {
	Name         string   `json:"name"`
	Model        string   `json:"model,omitempty"`
	Capabilities []string `json:"capabilities"`
}

// Converter is the common contract both conversion strategies implement.
type Converter interface {
	Run(ctx context.Context, input ConvertInput) (*RawOutput, error)
	Info() ConverterInfo
}
