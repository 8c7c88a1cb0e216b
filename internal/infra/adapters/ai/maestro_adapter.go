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
var _ adapter.EnrichmentService = (*MaestroAdapter)(nil)

// MaestroAdapter implements adapter.EnrichmentService against AI21's Maestro
// runs API. A run is submitted with web search enabled and polled by id until
// it reaches a terminal status; the produced text rides on the completed run.
// Base URL defaults to https://api.ai21.com/studio/v1 (configurable for tests).
// Submit: POST /maestro/runs   Poll: GET /maestro/runs/{id}
// Authorization: Bearer <AI21_API_KEY>
type MaestroAdapter struct {
	apiKey    string
	base      string
	maestroID string
	webSearch bool
	client    *http.Client
}

func NewMaestroAdapter(apiKey, maestroID, base string, webSearch bool) (*MaestroAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("ai21 api key empty")
	}
	if maestroID == "" {
		maestroID = "travel-planner"
	}
	if base == "" {
		base = "https://api.ai21.com/studio/v1"
	}
	return &MaestroAdapter{
		apiKey:    apiKey,
		base:      strings.TrimRight(base, "/"),
		maestroID: maestroID,
		webSearch: webSearch,
		client:    &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (m *MaestroAdapter) StartRun(ctx context.Context, input string) (string, error) {
	reqBody := struct {
		MaestroID        string `json:"maestroId"`
		Input            string `json:"input"`
		IncludeWebSearch bool   `json:"includeWebSearch"`
	}{MaestroID: m.maestroID, Input: input, IncludeWebSearch: m.webSearch}

	b, _ := json.Marshal(reqBody)
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, m.base+"/maestro/runs", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("maestro submit http %d", resp.StatusCode)
	}

	var payload struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	if payload.ID == "" {
		return "", errors.New("maestro submit returned no run id")
	}
	return payload.ID, nil
}

func (m *MaestroAdapter) GetRun(ctx context.Context, runID string) (adapter.RunState, error) {
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, m.base+"/maestro/runs/"+runID, nil)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return adapter.RunState{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return adapter.RunState{}, fmt.Errorf("maestro status http %d", resp.StatusCode)
	}

	// Completed runs have carried their text under outputs.text or result
	// depending on the API revision; accept either.
	var payload struct {
		ID      string `json:"id"`
		Status  string `json:"status"`
		Outputs struct {
			Text string `json:"text"`
		} `json:"outputs"`
		Result string `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return adapter.RunState{}, err
	}

	state := adapter.RunState{ID: payload.ID, Status: payload.Status}
	if state.ID == "" {
		state.ID = runID
	}
	if payload.Outputs.Text != "" {
		state.Text = payload.Outputs.Text
	} else {
		state.Text = payload.Result
	}
	return state, nil
}
