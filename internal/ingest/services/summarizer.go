package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Summarizer produces a short summary for article content. The call is
// best-effort: ingestion never blocks on it and treats failures as "no
// summary".
type Summarizer interface {
	Summarize(ctx context.Context, content string) (string, error)
}

// HTTPSummarizer talks to an external content-to-summary service over
// JSON: POST {"content": ...} and read back {"summary": ...}. The
// service owns its own length policy.
type HTTPSummarizer struct {
	endpoint string
	client   *http.Client
}

// NewHTTPSummarizer creates a summarizer client for the given endpoint
func NewHTTPSummarizer(endpoint string) *HTTPSummarizer {
	return &HTTPSummarizer{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

type summarizeRequest struct {
	Content string `json:"content"`
}

type summarizeResponse struct {
	Summary string `json:"summary"`
}

// Summarize sends content to the summarization service
func (s *HTTPSummarizer) Summarize(ctx context.Context, content string) (string, error) {
	payload, err := json.Marshal(summarizeRequest{Content: content})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("summarizer unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("summarizer returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var parsed summarizeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	return parsed.Summary, nil
}
