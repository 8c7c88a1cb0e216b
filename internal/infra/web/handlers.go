package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"travel-itinerary-api/internal/domain"
	"travel-itinerary-api/internal/domain/model"
)

// The request body for initiating a generation job.
type startRequest struct {
	Prompt   string            `json:"prompt"`
	FormData *model.FormInputs `json:"formData,omitempty"`
}

type startResponse struct {
	JobID  string `json:"jobId"`
	Status string `json:"status"`
}

// statusResponse carries result only for completed jobs and error only for
// failed ones; every other combination leaks state the caller must not see.
type statusResponse struct {
	JobID     string         `json:"jobId"`
	Status    string         `json:"status"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	Result    map[string]any `json:"result,omitempty"`
	Error     string         `json:"error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	job, err := s.jobUC.Start(ctx, req.Prompt, req.FormData)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidArgument):
			writeError(w, http.StatusBadRequest, "Prompt is required")
		case errors.Is(err, domain.ErrMissingAPIKey):
			// Server misconfiguration, deliberately distinct from the
			// missing-prompt client error.
			writeError(w, http.StatusInternalServerError, "Generation service credential not configured")
		case errors.Is(err, domain.ErrQueueFull):
			writeError(w, http.StatusServiceUnavailable, "Server busy, try again shortly")
		default:
			s.log.Error().Err(err).Msg("failed to start generation job")
			writeError(w, http.StatusInternalServerError, "Failed to start itinerary generation")
		}
		return
	}

	writeJSON(w, http.StatusCreated, startResponse{JobID: job.ID, Status: string(job.Status)})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	jobID := r.URL.Query().Get("jobId")
	if jobID == "" {
		writeError(w, http.StatusBadRequest, "Job ID is required")
		return
	}

	job, err := s.jobUC.Status(ctx, jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Job not found")
			return
		}
		s.log.Error().Err(err).Str("job_id", jobID).Msg("status lookup failed")
		writeError(w, http.StatusInternalServerError, "Failed to get job status")
		return
	}

	resp := statusResponse{
		JobID:     job.ID,
		Status:    string(job.Status),
		CreatedAt: job.CreatedAt,
		UpdatedAt: job.UpdatedAt,
	}
	if job.Status == model.JobStatusCompleted {
		resp.Result = job.Result
	}
	if job.Status == model.JobStatusFailed {
		resp.Error = job.Error
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Error: msg})
}
