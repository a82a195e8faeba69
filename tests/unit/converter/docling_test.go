package converter_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfdigest/internal/config"
	"pdfdigest/internal/converter/docling"
	"pdfdigest/internal/domain"
	"pdfdigest/internal/port"
)

func newDoclingTestConverter(serverURL string) *docling.Converter {
	cfg := &config.ConverterConfig{
		DoclingURL: serverURL,
		Timeout:    30 * time.Second,
	}
	return docling.NewConverterWithEndpoint(cfg, serverURL)
}

func TestDoclingConverter_Run_Success(t *testing.T) {
	engineResp := map[string]interface{}{
		"markdown": "NOTA DE NEGOCIAÇÃO\nfirst page body\nNOTA DE NEGOCIAÇÃO\nsecond page body",
		"tables": []map[string]interface{}{
			{
				"page":       1,
				"confidence": 0.87,
				"text":       "Ticker\tQty\nPETR4\t100",
				"bbox":       map[string]float64{"x0": 10, "y0": 20, "x1": 500, "y1": 320},
			},
		},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var reqBody map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.Equal(t, "note.pdf", reqBody["filename"])
		assert.NotEmpty(t, reqBody["file_data"])

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(engineResp)
	}))
	defer server.Close()

	c := newDoclingTestConverter(server.URL)
	out, err := c.Run(context.Background(), port.ConvertInput{
		FileBytes:   []byte("%PDF-1.4 test"),
		Filename:    "note.pdf",
		ContentType: "application/pdf",
	})

	require.NoError(t, err)
	require.NotNil(t, out)

	require.Len(t, out.Pages, 2)
	assert.Contains(t, out.Pages[1], "first page body")
	assert.Contains(t, out.Pages[2], "second page body")

	require.Len(t, out.TableRegions, 1)
	region := out.TableRegions[0]
	assert.Equal(t, 1, region.Page)
	require.NotNil(t, region.Confidence)
	assert.Equal(t, 0.87, *region.Confidence)
	require.NotNil(t, region.BBox)
	assert.Equal(t, 500.0, region.BBox.X1)
}

func TestDoclingConverter_Run_EngineError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"conversion crashed"}`))
	}))
	defer server.Close()

	c := newDoclingTestConverter(server.URL)
	out, err := c.Run(context.Background(), port.ConvertInput{
		FileBytes: []byte("%PDF-1.4 test"),
		Filename:  "note.pdf",
	})

	assert.Nil(t, out)
	var convErr *domain.ConversionError
	require.True(t, errors.As(err, &convErr))
	assert.Equal(t, domain.ProcessorDocling, convErr.Processor)
	assert.Contains(t, err.Error(), "status 500")
}

func TestDoclingConverter_Run_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	c := newDoclingTestConverter(server.URL)
	_, err := c.Run(context.Background(), port.ConvertInput{
		FileBytes: []byte("%PDF-1.4 test"),
		Filename:  "note.pdf",
	})

	var convErr *domain.ConversionError
	require.True(t, errors.As(err, &convErr))
}

func TestSplitPages(t *testing.T) {
	t.Run("no header is a single page", func(t *testing.T) {
		pages := docling.SplitPages("just some text\nmore text")
		require.Len(t, pages, 1)
		assert.Equal(t, "just some text\nmore text", pages[1])
	})

	t.Run("header match is case insensitive", func(t *testing.T) {
		pages := docling.SplitPages("nota de negociação\npage one\nNota De Negociação\npage two")
		require.Len(t, pages, 2)
		assert.Contains(t, pages[1], "page one")
		assert.Contains(t, pages[2], "page two")
	})

	t.Run("preamble stays on page one", func(t *testing.T) {
		pages := docling.SplitPages("broker letterhead\nNOTA DE NEGOCIAÇÃO\nbody")
		require.Len(t, pages, 1)
		assert.Contains(t, pages[1], "broker letterhead")
		assert.Contains(t, pages[1], "body")
	})

	t.Run("empty document yields one empty page", func(t *testing.T) {
		pages := docling.SplitPages("")
		require.Len(t, pages, 1)
		assert.Equal(t, "", pages[1])
	})
}
