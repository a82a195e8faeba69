package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"pdfdigest/internal/cache"
	"pdfdigest/internal/config"
	"pdfdigest/internal/domain"
	"pdfdigest/internal/export"
	"pdfdigest/internal/fingerprint"
	"pdfdigest/internal/port"
	"pdfdigest/internal/tableparse"
	"pdfdigest/internal/validator"
)

// ConvertInput is the DTO for conversion and table extraction requests.
type ConvertInput struct {
	FileBytes   []byte
	Filename    string
	ContentType string
	Processor   string // empty selects the configured default
	Format      string // table export format; empty selects the configured default
	Persist     bool   // persist table exports to artifact storage
}

// ConvertService defines the document conversion contract.
type ConvertService interface {
	Convert(ctx context.Context, input ConvertInput) (*domain.ConversionResult, error)
	ExtractTables(ctx context.Context, input ConvertInput) (*domain.ConversionResult, error)
	InvalidateCache(ctx context.Context, processor string) (int, error)
	CacheStats(ctx context.Context) cache.Stats
	Converters() []port.ConverterInfo
}

type convertService struct {
	converters map[domain.Processor]port.Converter
	cache      *cache.Manager
	validator  *validator.Engine
	inspector  port.DocumentInspector
	storage    port.ObjectStorage
	cfg        *config.Config
}

// NewConvertService creates a new ConvertService implementation. storage
// may be nil when artifact persistence is disabled.
func NewConvertService(
	converters map[domain.Processor]port.Converter,
	cacheManager *cache.Manager,
	engine *validator.Engine,
	inspector port.DocumentInspector,
	storage port.ObjectStorage,
	cfg *config.Config,
) ConvertService {
	return &convertService{
		converters: converters,
		cache:      cacheManager,
		validator:  engine,
		inspector:  inspector,
		storage:    storage,
		cfg:        cfg,
	}
}

func (s *convertService) Convert(ctx context.Context, input ConvertInput) (*domain.ConversionResult, error) {
	pageCount, err := s.preflight(input.FileBytes, input.Filename)
	if err != nil {
		return nil, err
	}

	proc, err := s.resolveProcessor(input.Processor)
	if err != nil {
		return nil, err
	}

	fp := fingerprint.New(input.FileBytes)
	return s.convert(ctx, input, proc, fp, pageCount)
}

func (s *convertService) ExtractTables(ctx context.Context, input ConvertInput) (*domain.ConversionResult, error) {
	pageCount, err := s.preflight(input.FileBytes, input.Filename)
	if err != nil {
		return nil, err
	}

	proc, err := s.resolveProcessor(input.Processor)
	if err != nil {
		return nil, err
	}

	formatStr := input.Format
	if formatStr == "" {
		formatStr = s.cfg.Export.DefaultFormat
	}
	format, err := domain.ParseExportFormat(formatStr)
	if err != nil {
		return nil, fmt.Errorf("export format %q: %w", formatStr, err)
	}

	fp := fingerprint.New(input.FileBytes)
	result, err := s.convert(ctx, input, proc, fp, pageCount)
	if err != nil {
		return nil, err
	}

	exports, err := s.exportTables(ctx, result, proc, fp, format)
	if err != nil {
		return nil, err
	}

	if input.Persist && s.storage != nil && len(exports) > 0 {
		s.persistExports(ctx, fp, exports)
	}

	result.Format = format
	result.Exports = exports
	return result, nil
}

// convert returns the normalized result for (fingerprint, processor),
// running the adapter at most once per key across concurrent callers.
func (s *convertService) convert(ctx context.Context, input ConvertInput, proc domain.Processor, fp string, pageCount int) (*domain.ConversionResult, error) {
	conv, ok := s.converters[proc]
	if !ok {
		return nil, fmt.Errorf("processor %q: %w", proc, domain.ErrUnknownProcessor)
	}

	key := cache.Key{Fingerprint: fp, Processor: proc}
	payload, err := s.cache.GetOrCompute(ctx, key, func(fctx context.Context) ([]byte, error) {
		result, err := s.runConversion(fctx, conv, input, proc, fp, pageCount)
		if err != nil {
			return nil, err
		}
		return json.Marshal(result)
	})
	if err != nil {
		return nil, err
	}

	var result domain.ConversionResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("decoding cached result: %w", err)
	}
	return &result, nil
}

func (s *convertService) runConversion(ctx context.Context, conv port.Converter, input ConvertInput, proc domain.Processor, fp string, pageCount int) (*domain.ConversionResult, error) {
	log.Printf("convertService.runConversion: running %s for %s (%s, %d pages)",
		proc, fp[:12], formatSize(int64(len(input.FileBytes))), pageCount)

	raw, err := conv.Run(ctx, port.ConvertInput{
		FileBytes:   input.FileBytes,
		Filename:    input.Filename,
		ContentType: input.ContentType,
	})
	if err != nil {
		return nil, err
	}

	result := &domain.ConversionResult{
		Processor: proc,
		FileInfo: domain.FileInfo{
			Size:        int64(len(input.FileBytes)),
			Fingerprint: fp,
			PageCount:   pageCount,
			Model:       raw.ModelUsed,
		},
	}

	switch proc {
	case domain.ProcessorDocling:
		result.Pages = raw.Pages
		result.Tables = tableparse.ParseRegions(raw.TableRegions)
	case domain.ProcessorAgno:
		var rs domain.RecordSet
		if err := json.Unmarshal(raw.Records, &rs); err != nil {
			return nil, &domain.MalformedExtractionError{Raw: string(raw.Records), Err: err}
		}
		if err := s.validator.ValidateRecordSet(&rs); err != nil {
			return nil, err
		}
		result.Trades = rs.Trades
		result.Fees = rs.Fees
		result.FileInfo.RecordCount = len(rs.Trades) + len(rs.Fees)
	}
	return result, nil
}

// exportTables returns the per-table exports for (fingerprint, processor,
// format), re-encoding from the cached grids rather than re-converting.
func (s *convertService) exportTables(ctx context.Context, result *domain.ConversionResult, proc domain.Processor, fp string, format domain.ExportFormat) ([]domain.TableExport, error) {
	if len(result.Tables) == 0 {
		return nil, nil
	}

	key := cache.Key{Fingerprint: fp, Processor: proc, Format: format}
	payload, err := s.cache.GetOrCompute(ctx, key, func(context.Context) ([]byte, error) {
		exports := make([]domain.TableExport, 0, len(result.Tables))
		for _, table := range result.Tables {
			content, err := export.Grid(table.Grid, format)
			if err != nil {
				return nil, err
			}
			exports = append(exports, domain.TableExport{
				TableID:  table.ID,
				Format:   format,
				Filename: export.Filename(table.ID, format),
				Content:  content,
			})
		}
		return json.Marshal(exports)
	})
	if err != nil {
		return nil, err
	}

	var exports []domain.TableExport
	if err := json.Unmarshal(payload, &exports); err != nil {
		return nil, fmt.Errorf("decoding cached exports: %w", err)
	}
	return exports, nil
}

var exportContentTypes = map[domain.ExportFormat]string{
	domain.FormatJSON: "application/json",
	domain.FormatCSV:  "text/csv",
	domain.FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	domain.FormatHTML: "text/html",
}

// persistExports uploads one artifact per export under a per-document,
// per-timestamp prefix. Failures are logged, not returned: persistence is
// a side effect, the caller already has the export bytes.
func (s *convertService) persistExports(ctx context.Context, fp string, exports []domain.TableExport) {
	stamp := time.Now().UTC().Format("20060102T150405Z")
	for _, exp := range exports {
		key := fmt.Sprintf("%s/%s/%s", fp, stamp, exp.Filename)
		_, err := s.storage.Upload(ctx, port.UploadInput{
			Key:         key,
			Body:        bytes.NewReader(exp.Content),
			ContentType: exportContentTypes[exp.Format],
			Size:        int64(len(exp.Content)),
		})
		if err != nil {
			log.Printf("convertService.persistExports: upload %s failed: %v", key, err)
		}
	}
}

func (s *convertService) InvalidateCache(ctx context.Context, processor string) (int, error) {
	if processor == "" {
		total := 0
		for p := range s.converters {
			n, err := s.cache.InvalidateProcessor(ctx, p)
			if err != nil {
				return total, err
			}
			total += n
		}
		return total, nil
	}

	proc, err := domain.ParseProcessor(processor)
	if err != nil {
		return 0, err
	}
	return s.cache.InvalidateProcessor(ctx, proc)
}

func (s *convertService) CacheStats(ctx context.Context) cache.Stats {
	return s.cache.Snapshot(ctx)
}

func (s *convertService) Converters() []port.ConverterInfo {
	infos := make([]port.ConverterInfo, 0, len(s.converters))
	for _, c := range s.converters {
		infos = append(infos, c.Info())
	}
	return infos
}

func (s *convertService) resolveProcessor(selector string) (domain.Processor, error) {
	if selector == "" {
		selector = s.cfg.Converter.Default
	}
	return domain.ParseProcessor(selector)
}

// formatSize renders a byte count for log lines, e.g. "2.3 MB".
func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
