package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"travel-itinerary-api/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.CompletionService = (*JambaAdapter)(nil)

// JambaAdapter implements adapter.CompletionService against AI21's chat
// completions endpoint. Synchronous: one request, one response, no run
// polling. Used as the fallback when the enrichment path yields nothing.
// Path: POST /chat/completions (OpenAI-compatible shape, AI21 field names)
// Authorization: Bearer <AI21_API_KEY>
type JambaAdapter struct {
	apiKey      string
	base        string
	model       string
	temperature float64
	maxTokens   int
	client      *http.Client
}

func NewJambaAdapter(apiKey, model, base string) (*JambaAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("ai21 api key empty")
	}
	if model == "" {
		model = "jamba-large"
	}
	if base == "" {
		base = "https://api.ai21.com/studio/v1"
	}
	return &JambaAdapter{
		apiKey:      apiKey,
		base:        strings.TrimRight(base, "/"),
		model:       model,
		temperature: 0.7,
		maxTokens:   2000,
		client:      &http.Client{Timeout: 60 * time.Second},
	}, nil
}

func (j *JambaAdapter) Complete(ctx context.Context, prompt string) (string, error) {
	reqBody := struct {
		Model       string            `json:"model"`
		Messages    []adapter.Message `json:"messages"`
		Temperature float64           `json:"temperature"`
		MaxTokens   int               `json:"maxTokens"`
	}{
		Model:       j.model,
		Messages:    []adapter.Message{{Role: "user", Content: prompt}},
		Temperature: j.temperature,
		MaxTokens:   j.maxTokens,
	}

	b, _ := json.Marshal(reqBody)
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, j.base+"/chat/completions", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+j.apiKey)

	resp, err := j.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("jamba http %d", resp.StatusCode)
	}

	var payload struct {
		Choices []struct {
			Message adapter.Message `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	for _, c := range payload.Choices {
		if c.Message.Content != "" {
			return c.Message.Content, nil
		}
	}
	return "", errors.New("no choice content")
}
