package client

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"travel-itinerary-api/internal/domain/model"
)

// Wire shapes of the job API, matching internal/infra/web.

type startRequest struct {
	Prompt   string            `json:"prompt"`
	FormData *model.FormInputs `json:"formData,omitempty"`
}

type startResponse struct {
	JobID  string `json:"jobId"`
	Status string `json:"status"`
}

type statusResponse struct {
	JobID     string         `json:"jobId"`
	Status    string         `json:"status"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	Result    map[string]any `json:"result,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// readAPIError digs a usable message out of an error response body, falling
// back to the raw text when it is not the JSON error shape.
func readAPIError(resp *http.Response) string {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var e struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		return e.Error
	}
	if len(body) > 0 {
		return string(body)
	}
	return resp.Status
}
