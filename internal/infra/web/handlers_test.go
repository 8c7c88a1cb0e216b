package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"travel-itinerary-api/internal/domain/model"
	"travel-itinerary-api/internal/infra/adapters/ai"
	"travel-itinerary-api/internal/infra/store"
	"travel-itinerary-api/internal/usecase"
)

// syncQueue runs each submitted task inline so a job reaches its terminal
// state before the start request even returns. Handlers must not care.
type syncQueue struct{}

func (syncQueue) Submit(task func(ctx context.Context) error) error {
	_ = task(context.Background())
	return nil
}

type fullQueue struct{}

func (fullQueue) Submit(task func(ctx context.Context) error) error {
	return errors.New("queue is full")
}

func newTestServer(t *testing.T, queue usecase.TaskQueue, credentialOK bool) (*Server, *store.MemoryJobRepo) {
	t.Helper()
	logger := zerolog.Nop()
	repo := store.NewMemoryJobRepo()
	noop := ai.NewNoopAdapter()
	gen := usecase.NewGenerationUseCase(repo, noop, noop, nil, usecase.DefaultPollPolicy(), &logger)
	jobUC := usecase.NewJobUseCase(repo, gen, queue, credentialOK, &logger)
	return NewServer(jobUC, 0, &logger), repo
}

func postStart(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/itineraries", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func getStatus(t *testing.T, h http.Handler, query string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/itineraries/status"+query, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHandleStart_MissingPrompt(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, syncQueue{}, true)
	rec := postStart(t, srv.Handler(), `{"prompt":""}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if got := decode[errorResponse](t, rec).Error; got != "Prompt is required" {
		t.Fatalf("error = %q", got)
	}
}

func TestHandleStart_InvalidBody(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, syncQueue{}, true)
	rec := postStart(t, srv.Handler(), `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleStart_MissingCredential(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, syncQueue{}, false)
	rec := postStart(t, srv.Handler(), `{"prompt":"trip to Lisbon"}`)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestHandleStart_QueueSaturated(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, fullQueue{}, true)
	rec := postStart(t, srv.Handler(), `{"prompt":"trip to Lisbon"}`)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestHandleStart_ReturnsJobAndStatusFollowsIt(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, syncQueue{}, true)
	h := srv.Handler()

	rec := postStart(t, h, `{"prompt":"trip to Lisbon","formData":{"destination":"Lisbon"}}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body %s", rec.Code, rec.Body.String())
	}
	started := decode[startResponse](t, rec)
	if started.JobID == "" {
		t.Fatal("expected a job id")
	}
	if started.Status != string(model.JobStatusPending) {
		t.Fatalf("initial status = %q, want pending", started.Status)
	}

	// The synchronous queue already ran generation; the noop adapter's
	// fallback completion produced a result.
	statusRec := getStatus(t, h, "?jobId="+started.JobID)
	if statusRec.Code != http.StatusOK {
		t.Fatalf("status lookup = %d, body %s", statusRec.Code, statusRec.Body.String())
	}
	status := decode[statusResponse](t, statusRec)
	if status.Status != string(model.JobStatusCompleted) {
		t.Fatalf("job status = %q, want completed", status.Status)
	}
	if len(status.Result) == 0 {
		t.Fatal("completed job must carry a result")
	}
	if status.Error != "" {
		t.Fatalf("completed job must not carry an error, got %q", status.Error)
	}
}

func TestHandleStatus_MissingJobID(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, syncQueue{}, true)
	rec := getStatus(t, srv.Handler(), "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if got := decode[errorResponse](t, rec).Error; got != "Job ID is required" {
		t.Fatalf("error = %q", got)
	}
}

func TestHandleStatus_UnknownJob(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, syncQueue{}, true)
	rec := getStatus(t, srv.Handler(), "?jobId=does-not-exist")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if got := decode[errorResponse](t, rec).Error; got != "Job not found" {
		t.Fatalf("error = %q", got)
	}
}

func TestHandleStatus_FailedJobExposesErrorNotResult(t *testing.T) {
	t.Parallel()

	srv, repo := newTestServer(t, syncQueue{}, true)

	job, err := repo.Create(context.Background(), "p", nil)
	if err != nil {
		t.Fatalf("seed job: %v", err)
	}
	failed := model.JobStatusFailed
	msg := "upstream unavailable"
	if _, err := repo.Update(context.Background(), job.ID, model.JobUpdate{Status: &failed, Error: &msg}); err != nil {
		t.Fatalf("seed failure: %v", err)
	}

	rec := getStatus(t, srv.Handler(), "?jobId="+job.ID)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	status := decode[statusResponse](t, rec)
	if status.Status != string(model.JobStatusFailed) {
		t.Fatalf("job status = %q, want failed", status.Status)
	}
	if status.Error != "upstream unavailable" {
		t.Fatalf("error = %q", status.Error)
	}
	if status.Result != nil {
		t.Fatalf("failed job must not carry a result: %v", status.Result)
	}
}

func TestHandleStatus_PendingJobHidesResultAndError(t *testing.T) {
	t.Parallel()

	srv, repo := newTestServer(t, syncQueue{}, true)
	job, _ := repo.Create(context.Background(), "p", nil)

	rec := getStatus(t, srv.Handler(), "?jobId="+job.ID)
	status := decode[statusResponse](t, rec)
	if status.Status != string(model.JobStatusPending) {
		t.Fatalf("job status = %q, want pending", status.Status)
	}
	if status.Result != nil || status.Error != "" {
		t.Fatalf("pending job leaked result or error: %+v", status)
	}
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, syncQueue{}, true)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Fatalf("health = %d %q", rec.Code, rec.Body.String())
	}
}
