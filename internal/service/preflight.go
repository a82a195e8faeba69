package service

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"pdfdigest/internal/domain"
)

var pdfMagic = []byte("%PDF-")

// preflight rejects inputs that cannot be converted before any adapter or
// cache work happens. Returns the document's page count.
func (s *convertService) preflight(fileBytes []byte, filename string) (int, error) {
	if len(fileBytes) == 0 {
		return 0, domain.ErrEmptyFile
	}
	if maxBytes := s.cfg.Upload.MaxFileSizeBytes(); int64(len(fileBytes)) > maxBytes {
		return 0, fmt.Errorf("%w: %d bytes (limit %d)", domain.ErrFileTooLarge, len(fileBytes), maxBytes)
	}
	if ext := strings.ToLower(filepath.Ext(filename)); ext != ".pdf" {
		return 0, fmt.Errorf("%w: %q", domain.ErrUnsupportedFileType, ext)
	}
	if !bytes.HasPrefix(fileBytes, pdfMagic) {
		return 0, domain.ErrNotPDF
	}

	pageCount, err := s.inspector.PageCount(fileBytes)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrNotPDF, err)
	}
	return pageCount, nil
}
