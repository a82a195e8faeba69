package agno

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"pdfdigest/internal/config"
	"pdfdigest/internal/domain"
	"pdfdigest/internal/port"
)

const apiURL = "https://api.openai.com/v1/chat/completions"

// Converter implements port.Converter using an LLM extraction agent over
// the OpenAI Chat Completions API.
type Converter struct {
	apiKey     string
	model      string
	endpoint   string
	maxRetries int
	client     *http.Client
}

// NewConverter creates an extraction converter from the converter config.
func NewConverter(cfg *config.ConverterConfig) (*Converter, error) {
	return newConverter(cfg, apiURL)
}

// NewConverterWithEndpoint creates a converter pointing at a custom API endpoint (for testing).
func NewConverterWithEndpoint(cfg *config.ConverterConfig, endpoint string) (*Converter, error) {
	return newConverter(cfg, endpoint)
}

func newConverter(cfg *config.ConverterConfig, endpoint string) (*Converter, error) {
	if cfg.AgnoAPIKey == "" {
		return nil, domain.ErrMissingAPIKey
	}
	model := cfg.AgnoModel
	if model == "" {
		model = "gpt-4o"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Converter{
		apiKey:     cfg.AgnoAPIKey,
		model:      model,
		endpoint:   endpoint,
		maxRetries: cfg.MaxRetries,
		client:     &http.Client{Timeout: timeout},
	}, nil
}

// Info implements port.Converter.
func (c *Converter) Info() port.ConverterInfo {
	return port.ConverterInfo{
		Name:         string(domain.ProcessorAgno),
		Model:        c.model,
		Capabilities: []string{"records"},
	}
}

// Run implements port.Converter. Each attempt uses a progressively simpler
// prompt; the last malformed-output error is returned when every attempt
// fails to yield a JSON object.
func (c *Converter) Run(ctx context.Context, input port.ConvertInput) (*port.RawOutput, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			log.Printf("agno.Run: attempt %d/%d after error: %v", attempt, c.maxRetries, lastErr)
		}

		text, err := c.complete(ctx, input, BuildExtractionPrompt(attempt))
		if err != nil {
			return nil, &domain.ConversionError{Processor: domain.ProcessorAgno, Err: err}
		}

		records, err := MineJSON(text)
		if err != nil {
			lastErr = err
			continue
		}
		return &port.RawOutput{Records: records, ModelUsed: c.model}, nil
	}
	return nil, lastErr
}

func (c *Converter) complete(ctx context.Context, input port.ConvertInput, prompt string) (string, error) {
	dataURI := fmt.Sprintf("data:%s;base64,%s", input.ContentType, base64.StdEncoding.EncodeToString(input.FileBytes))
	reqBody := map[string]interface{}{
		"model":                 c.model,
		"max_completion_tokens": 16384,
		"messages": []map[string]interface{}{
			{
				"role": "user",
				"content": []map[string]interface{}{
					{
						"type": "file",
						"file": map[string]interface{}{
							"filename":  "document.pdf",
							"file_data": dataURI,
						},
					},
					{
						"type": "text",
						"text": prompt,
					},
				},
			},
		},
		"response_format": map[string]interface{}{
			"type": "json_object",
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling extraction API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("extraction API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
			FinishReason string `json:"finish_reason"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("unmarshaling response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("empty response from API: no choices")
	}
	if parsed.Choices[0].FinishReason == "length" {
		return "", fmt.Errorf("output truncated (finish_reason: length): response exceeded output token limit")
	}
	return parsed.Choices[0].Message.Content, nil
}

// MineJSON digs a JSON object out of model output that may carry code
// fences or surrounding prose. It tries the raw text first, then the
// contents of a fenced block, then the outermost brace-delimited span.
func MineJSON(text string) (json.RawMessage, error) {
	candidates := []string{strings.TrimSpace(text)}

	if fenced := extractFenced(text); fenced != "" {
		candidates = append(candidates, fenced)
	}
	if start := strings.Index(text, "{"); start >= 0 {
		if end := strings.LastIndex(text, "}"); end > start {
			candidates = append(candidates, text[start:end+1])
		}
	}

	var lastErr error
	for _, cand := range candidates {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal([]byte(cand), &obj); err != nil {
			lastErr = err
			continue
		}
		return json.RawMessage(cand), nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no JSON object found")
	}
	return nil, &domain.MalformedExtractionError{Raw: truncate(text, 500), Err: lastErr}
}

func extractFenced(text string) string {
	start := strings.Index(text, "```")
	if start < 0 {
		return ""
	}
	rest := text[start+3:]
	// Skip a language tag like "json" on the fence line.
	if nl := strings.Index(rest, "\n"); nl >= 0 {
		rest = rest[nl+1:]
	}
	end := strings.Index(rest, "```")
	if end < 0 {
		return ""
	}
	return strings.TrimSpace(rest[:end])
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
