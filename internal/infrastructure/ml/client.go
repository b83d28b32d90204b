package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"SecurityNewsScanner/internal/ports"
)

// ErrEmptySummary is returned when the model answers without text.
var ErrEmptySummary = errors.New("inference returned an empty summary")

// Client talks to a hosted summarization model (Hugging Face inference API shape).
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

var _ ports.Summarizer = (*Client)(nil)

// NewClient creates a reusable HTTP client.
func NewClient(endpoint, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     httpClient,
	}
}

type inferenceParameters struct {
	MinLength int  `json:"min_length"`
	MaxLength int  `json:"max_length"`
	DoSample  bool `json:"do_sample"`
}

type inferenceRequest struct {
	Inputs     string              `json:"inputs"`
	Parameters inferenceParameters `json:"parameters"`
}

type inferenceResult struct {
	SummaryText string `json:"summary_text"`
}

// Summarize requests a deterministic summary bounded by minLen and maxLen model tokens.
func (c *Client) Summarize(ctx context.Context, text string, minLen, maxLen int) (string, error) {
	payload := inferenceRequest{
		Inputs: text,
		Parameters: inferenceParameters{
			MinLength: minLen,
			MaxLength: maxLen,
			DoSample:  false,
		},
	}

	var results []inferenceResult
	if err := c.post(ctx, payload, &results); err != nil {
		return "", err
	}

	if len(results) == 0 || strings.TrimSpace(results[0].SummaryText) == "" {
		return "", ErrEmptySummary
	}
	return strings.TrimSpace(results[0].SummaryText), nil
}

func (c *Client) post(ctx context.Context, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			return fmt.Errorf("unexpected status %s, close body: %v", resp.Status, closeErr)
		}
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		_ = resp.Body.Close()
		return fmt.Errorf("decode response: %w", err)
	}

	if err := resp.Body.Close(); err != nil {
		return fmt.Errorf("close response body: %w", err)
	}

	return nil
}
