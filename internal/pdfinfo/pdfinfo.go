// Package pdfinfo inspects PDF documents.
package pdfinfo

import (
	"bytes"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Inspector implements port.DocumentInspector for PDF input.
type Inspector struct {
	conf *model.Configuration
}

// NewInspector creates a PDF inspector with default parsing configuration.
func NewInspector() *Inspector {
	return &Inspector{conf: model.NewDefaultConfiguration()}
}

// PageCount parses the PDF cross-reference structure and returns the page
// count. Malformed documents fail here rather than inside an adapter.
func (i *Inspector) PageCount(data []byte) (int, error) {
	ctx, err := api.ReadContext(bytes.NewReader(data), i.conf)
	if err != nil {
		return 0, err
	}
	return ctx.PageCount, nil
}
