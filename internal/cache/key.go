package cache

import (
	"fmt"

	"pdfdigest/internal/domain"
)

// Key addresses one cache entry. An entry without a Format holds the
// normalized conversion result for (processor, fingerprint); an entry with
// a Format holds the table exports derived from it. A conversion is run at
// most once per (processor, fingerprint) pair, and each export encoding is
// cached under its own key so re-exporting never re-converts.
type Key struct {
	Fingerprint string
	Processor   domain.Processor
	Format      domain.ExportFormat
}

// String renders the backend key:
//
//	convert:<processor>:<fingerprint>
//	export:<processor>:<format>:<fingerprint>
func (k Key) String() string {
	if k.Format == "" {
		return fmt.Sprintf("convert:%s:%s", k.Processor, k.Fingerprint)
	}
	return fmt.Sprintf("export:%s:%s:%s", k.Processor, k.Format, k.Fingerprint)
}

// processorPrefixes returns the key prefixes covering every entry a
// processor may have written.
func processorPrefixes(p domain.Processor) []string {
	return []string{
		fmt.Sprintf("convert:%s:", p),
		fmt.Sprintf("export:%s:", p),
	}
}
