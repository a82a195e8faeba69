package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pdfdigest/internal/cache"
	"pdfdigest/internal/config"
	"pdfdigest/internal/domain"
	"pdfdigest/internal/fingerprint"
	"pdfdigest/internal/port"
	"pdfdigest/internal/service"
	"pdfdigest/internal/validator"
	"pdfdigest/mocks"
)

var pdfBytes = []byte("%PDF-1.4 fake trade note content")

func testConfig() *config.Config {
	return &config.Config{
		Upload:    config.UploadConfig{MaxFileSizeMB: 16},
		Cache:     config.CacheConfig{Backend: "memory", TTL: time.Hour},
		Converter: config.ConverterConfig{Default: "docling"},
		Export:    config.ExportConfig{DefaultFormat: "csv"},
		Storage:   config.StorageConfig{Backend: "local"},
	}
}

type fixture struct {
	svc       service.ConvertService
	converter *mocks.MockConverter
	inspector *mocks.MockDocumentInspector
	storage   *mocks.MockObjectStorage
}

func newFixture(t *testing.T, proc domain.Processor, cfg *config.Config) *fixture {
	t.Helper()

	conv := new(mocks.MockConverter)
	inspector := new(mocks.MockDocumentInspector)
	storage := new(mocks.MockObjectStorage)
	inspector.On("PageCount", mock.Anything).Return(2, nil).Maybe()

	svc := service.NewConvertService(
		map[domain.Processor]port.Converter{proc: conv},
		cache.NewManager(cache.NewMemoryStore(), cfg.Cache.TTL),
		validator.NewEngine(),
		inspector,
		storage,
		cfg,
	)
	return &fixture{svc: svc, converter: conv, inspector: inspector, storage: storage}
}

func structuralOutput() *port.RawOutput {
	conf := 0.9
	return &port.RawOutput{
		Pages: map[int]string{1: "first page", 2: "second page"},
		TableRegions: []port.RawTableRegion{
			{Page: 1, Confidence: &conf, Text: "Ticker\tQty\nPETR4\t100"},
		},
	}
}

func doclingInput() service.ConvertInput {
	return service.ConvertInput{
		FileBytes:   pdfBytes,
		Filename:    "note.pdf",
		ContentType: "application/pdf",
	}
}

func TestConvert_Structural(t *testing.T) {
	f := newFixture(t, domain.ProcessorDocling, testConfig())
	f.converter.On("Run", mock.Anything, mock.Anything).Return(structuralOutput(), nil).Once()

	result, err := f.svc.Convert(context.Background(), doclingInput())
	require.NoError(t, err)

	assert.Equal(t, domain.ProcessorDocling, result.Processor)
	assert.Equal(t, map[int]string{1: "first page", 2: "second page"}, result.Pages)
	require.Len(t, result.Tables, 1)
	assert.Equal(t, [][]string{{"Ticker", "Qty"}, {"PETR4", "100"}}, result.Tables[0].Grid)
	assert.Equal(t, 0.9, result.Tables[0].Confidence)

	assert.Equal(t, fingerprint.New(pdfBytes), result.FileInfo.Fingerprint)
	assert.Equal(t, int64(len(pdfBytes)), result.FileInfo.Size)
	assert.Equal(t, 2, result.FileInfo.PageCount)

	f.converter.AssertExpectations(t)
}

func TestConvert_CacheHitSkipsAdapter(t *testing.T) {
	f := newFixture(t, domain.ProcessorDocling, testConfig())
	f.converter.On("Run", mock.Anything, mock.Anything).Return(structuralOutput(), nil).Once()

	first, err := f.svc.Convert(context.Background(), doclingInput())
	require.NoError(t, err)
	second, err := f.svc.Convert(context.Background(), doclingInput())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	f.converter.AssertNumberOfCalls(t, "Run", 1)
}

func TestConvert_Extraction(t *testing.T) {
	cfg := testConfig()
	cfg.Converter.Default = "agno"
	f := newFixture(t, domain.ProcessorAgno, cfg)

	records := `{"trades":[{"orderNumber":"1","tradeDate":"2024-03-15","operationType":"Buy","marketType":"VISTA","market":"Equities","ticker":"PETR4","quantity":100,"price":38.5,"totalValue":3850}],"fees":[{"orderNumber":"1","totalFees":12.3}]}`
	f.converter.On("Run", mock.Anything, mock.Anything).Return(&port.RawOutput{
		Records:   json.RawMessage(records),
		ModelUsed: "gpt-4o",
	}, nil).Once()

	result, err := f.svc.Convert(context.Background(), doclingInput())
	require.NoError(t, err)

	assert.Equal(t, domain.ProcessorAgno, result.Processor)
	require.Len(t, result.Trades, 1)
	assert.Equal(t, domain.OperationBuy, result.Trades[0].OperationType)
	require.Len(t, result.Fees, 1)
	assert.Equal(t, 2, result.FileInfo.RecordCount)
	assert.Equal(t, "gpt-4o", result.FileInfo.Model)
}

func TestConvert_ExtractionSchemaViolationsNotCached(t *testing.T) {
	cfg := testConfig()
	cfg.Converter.Default = "agno"
	f := newFixture(t, domain.ProcessorAgno, cfg)

	bad := `{"trades":[{"orderNumber":"1","tradeDate":"2024-03-15","operationType":"Hold","marketType":"VISTA","market":"Equities","ticker":"PETR4","quantity":-5,"price":38.5,"totalValue":3850}]}`
	f.converter.On("Run", mock.Anything, mock.Anything).Return(&port.RawOutput{
		Records: json.RawMessage(bad),
	}, nil)

	_, err := f.svc.Convert(context.Background(), doclingInput())
	require.Error(t, err)

	var sve *domain.SchemaValidationError
	require.ErrorAs(t, err, &sve)
	assert.Len(t, sve.Violations, 2)

	// The failure is not cached: a retry reruns the adapter.
	_, err = f.svc.Convert(context.Background(), doclingInput())
	require.Error(t, err)
	f.converter.AssertNumberOfCalls(t, "Run", 2)
}

func TestConvert_Preflight(t *testing.T) {
	f := newFixture(t, domain.ProcessorDocling, testConfig())

	t.Run("empty file", func(t *testing.T) {
		_, err := f.svc.Convert(context.Background(), service.ConvertInput{Filename: "note.pdf"})
		assert.ErrorIs(t, err, domain.ErrEmptyFile)
	})

	t.Run("wrong extension", func(t *testing.T) {
		_, err := f.svc.Convert(context.Background(), service.ConvertInput{
			FileBytes: pdfBytes, Filename: "note.docx",
		})
		assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
	})

	t.Run("missing pdf header", func(t *testing.T) {
		_, err := f.svc.Convert(context.Background(), service.ConvertInput{
			FileBytes: []byte("not a pdf"), Filename: "note.pdf",
		})
		assert.ErrorIs(t, err, domain.ErrNotPDF)
	})

	t.Run("oversized file", func(t *testing.T) {
		cfg := testConfig()
		cfg.Upload.MaxFileSizeMB = 1
		small := newFixture(t, domain.ProcessorDocling, cfg)

		big := append([]byte("%PDF-1.4 "), make([]byte, 2*1024*1024)...)
		_, err := small.svc.Convert(context.Background(), service.ConvertInput{
			FileBytes: big, Filename: "note.pdf",
		})
		assert.ErrorIs(t, err, domain.ErrFileTooLarge)
	})

	t.Run("malformed pdf body", func(t *testing.T) {
		conv := new(mocks.MockConverter)
		inspector := new(mocks.MockDocumentInspector)
		inspector.On("PageCount", mock.Anything).Return(0, errors.New("xref table corrupt"))

		svc := service.NewConvertService(
			map[domain.Processor]port.Converter{domain.ProcessorDocling: conv},
			cache.NewManager(cache.NewMemoryStore(), time.Hour),
			validator.NewEngine(),
			inspector,
			nil,
			testConfig(),
		)
		_, err := svc.Convert(context.Background(), doclingInput())
		assert.ErrorIs(t, err, domain.ErrNotPDF)
		conv.AssertNotCalled(t, "Run")
	})

	f.converter.AssertNotCalled(t, "Run")
}

func TestConvert_UnknownProcessor(t *testing.T) {
	f := newFixture(t, domain.ProcessorDocling, testConfig())

	input := doclingInput()
	input.Processor = "tesseract"
	_, err := f.svc.Convert(context.Background(), input)
	assert.ErrorIs(t, err, domain.ErrUnknownProcessor)
}

func TestExtractTables_ExportsAndReExports(t *testing.T) {
	f := newFixture(t, domain.ProcessorDocling, testConfig())
	f.converter.On("Run", mock.Anything, mock.Anything).Return(structuralOutput(), nil).Once()

	input := doclingInput()
	input.Format = "csv"
	result, err := f.svc.ExtractTables(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, domain.FormatCSV, result.Format)
	require.Len(t, result.Exports, 1)
	exp := result.Exports[0]
	assert.Equal(t, "table_0.csv", exp.Filename)
	assert.Equal(t, "Ticker,Qty\nPETR4,100\n", string(exp.Content))

	// A different format re-exports from the cached grids without
	// touching the adapter again.
	input.Format = "html"
	result, err = f.svc.ExtractTables(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, result.Exports, 1)
	assert.Equal(t, "table_0.html", result.Exports[0].Filename)
	assert.Contains(t, string(result.Exports[0].Content), "<table>")

	f.converter.AssertNumberOfCalls(t, "Run", 1)
}

func TestExtractTables_DefaultFormat(t *testing.T) {
	f := newFixture(t, domain.ProcessorDocling, testConfig())
	f.converter.On("Run", mock.Anything, mock.Anything).Return(structuralOutput(), nil).Once()

	result, err := f.svc.ExtractTables(context.Background(), doclingInput())
	require.NoError(t, err)
	assert.Equal(t, domain.FormatCSV, result.Format)
}

func TestExtractTables_UnsupportedFormat(t *testing.T) {
	f := newFixture(t, domain.ProcessorDocling, testConfig())

	input := doclingInput()
	input.Format = "parquet"
	_, err := f.svc.ExtractTables(context.Background(), input)
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
	f.converter.AssertNotCalled(t, "Run")
}

func TestExtractTables_Persist(t *testing.T) {
	f := newFixture(t, domain.ProcessorDocling, testConfig())
	f.converter.On("Run", mock.Anything, mock.Anything).Return(structuralOutput(), nil).Once()

	fp := fingerprint.New(pdfBytes)
	f.storage.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return strings.HasPrefix(in.Key, fp+"/") &&
			strings.HasSuffix(in.Key, "/table_0.csv") &&
			in.ContentType == "text/csv"
	})).Return(&port.UploadOutput{Location: "stored"}, nil).Once()

	input := doclingInput()
	input.Format = "csv"
	input.Persist = true
	_, err := f.svc.ExtractTables(context.Background(), input)
	require.NoError(t, err)

	f.storage.AssertExpectations(t)
}

func TestExtractTables_NoTables(t *testing.T) {
	f := newFixture(t, domain.ProcessorDocling, testConfig())
	f.converter.On("Run", mock.Anything, mock.Anything).Return(&port.RawOutput{
		Pages: map[int]string{1: "text only"},
	}, nil).Once()

	result, err := f.svc.ExtractTables(context.Background(), doclingInput())
	require.NoError(t, err)
	assert.Empty(t, result.Exports)
	f.storage.AssertNotCalled(t, "Upload")
}

func TestInvalidateCache(t *testing.T) {
	f := newFixture(t, domain.ProcessorDocling, testConfig())
	f.converter.On("Run", mock.Anything, mock.Anything).Return(structuralOutput(), nil)

	_, err := f.svc.Convert(context.Background(), doclingInput())
	require.NoError(t, err)

	removed, err := f.svc.InvalidateCache(context.Background(), "docling")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	// Entry gone: next call reruns the adapter.
	_, err = f.svc.Convert(context.Background(), doclingInput())
	require.NoError(t, err)
	f.converter.AssertNumberOfCalls(t, "Run", 2)

	_, err = f.svc.InvalidateCache(context.Background(), "bogus")
	assert.ErrorIs(t, err, domain.ErrUnknownProcessor)
}

func TestCacheStats(t *testing.T) {
	f := newFixture(t, domain.ProcessorDocling, testConfig())
	f.converter.On("Run", mock.Anything, mock.Anything).Return(structuralOutput(), nil).Once()

	_, err := f.svc.Convert(context.Background(), doclingInput())
	require.NoError(t, err)
	_, err = f.svc.Convert(context.Background(), doclingInput())
	require.NoError(t, err)

	stats := f.svc.CacheStats(context.Background())
	assert.Equal(t, int64(1), stats.Computes)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, 1, stats.Entries)
}
