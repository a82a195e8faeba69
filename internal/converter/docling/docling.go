package docling

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"pdfdigest/internal/config"
	"pdfdigest/internal/domain"
	"pdfdigest/internal/port"
)

const convertPath = "/v1/convert"

// noteHeader marks the start of each brokerage note page in the
// converted markdown. B3 confirmations repeat it on every page.
const noteHeader = "NOTA DE NEGOCIAÇÃO"

// Converter implements port.Converter against a document-structuring engine
// exposed over HTTP. The engine returns the whole document as markdown plus
// the table regions it located.
type Converter struct {
	endpoint string
	client   *http.Client
}

// NewConverter creates a structural converter from the converter config.
func NewConverter(cfg *config.ConverterConfig) *Converter {
	return newConverter(cfg, strings.TrimRight(cfg.DoclingURL, "/")+convertPath)
}

// NewConverterWithEndpoint creates a converter pointing at a custom API endpoint (for testing).
func NewConverterWithEndpoint(cfg *config.ConverterConfig, endpoint string) *Converter {
	return newConverter(cfg, endpoint)
}

func newConverter(cfg *config.ConverterConfig, endpoint string) *Converter {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Converter{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Info implements port.Converter.
func (c *Converter) Info() port.ConverterInfo {
	return port.ConverterInfo{
		Name:         string(domain.ProcessorDocling),
		Capabilities: []string{"markdown", "tables"},
	}
}

// engineResponse models the structuring engine's convert response.
type engineResponse struct {
	Markdown string `json:"markdown"`
	Tables   []struct {
		Page       int      `json:"page"`
		Confidence *float64 `json:"confidence"`
		Text       string   `json:"text"`
		BBox       *struct {
			X0 float64 `json:"x0"`
			Y0 float64 `json:"y0"`
			X1 float64 `json:"x1"`
			Y1 float64 `json:"y1"`
		} `json:"bbox"`
	} `json:"tables"`
}

// Run implements port.Converter.
func (c *Converter) Run(ctx context.Context, input port.ConvertInput) (*port.RawOutput, error) {
	reqBody := map[string]interface{}{
		"filename":  input.Filename,
		"file_data": base64.StdEncoding.EncodeToString(input.FileBytes),
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &domain.ConversionError{Processor: domain.ProcessorDocling, Err: fmt.Errorf("calling structuring engine: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.ConversionError{
			Processor: domain.ProcessorDocling,
			Err:       fmt.Errorf("structuring engine error (status %d): %s", resp.StatusCode, string(respBody)),
		}
	}

	var engine engineResponse
	if err := json.Unmarshal(respBody, &engine); err != nil {
		return nil, &domain.ConversionError{
			Processor: domain.ProcessorDocling,
			Err:       fmt.Errorf("unmarshaling engine response: %w", err),
		}
	}

	out := &port.RawOutput{
		Pages: SplitPages(engine.Markdown),
	}
	for _, t := range engine.Tables {
		region := port.RawTableRegion{
			Page:       t.Page,
			Confidence: t.Confidence,
			Text:       t.Text,
		}
		if t.BBox != nil {
			region.BBox = &domain.BoundingBox{X0: t.BBox.X0, Y0: t.BBox.Y0, X1: t.BBox.X1, Y1: t.BBox.Y1}
		}
		out.TableRegions = append(out.TableRegions, region)
	}
	return out, nil
}

// SplitPages splits the document markdown into per-page sections keyed by
// 1-based page number. Each occurrence of the note header starts a new
// page; content before the first header stays on page one. A document
// without the header is a single page.
func SplitPages(markdown string) map[int]string {
	lines := strings.Split(markdown, "\n")
	upperHeader := strings.ToUpper(noteHeader)

	pages := map[int]string{}
	page := 1
	var buf []string
	flush := func() {
		if len(buf) == 0 {
			return
		}
		text := strings.TrimSpace(strings.Join(buf, "\n"))
		if text != "" {
			pages[page] = text
		}
		buf = buf[:0]
	}

	seenHeader := false
	for _, line := range lines {
		if strings.Contains(strings.ToUpper(line), upperHeader) {
			if seenHeader {
				flush()
				page++
			}
			seenHeader = true
		}
		buf = append(buf, line)
	}
	flush()

	if len(pages) == 0 {
		pages[1] = ""
	}
	return pages
}
