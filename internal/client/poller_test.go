package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// scriptedServer serves the job API with a scripted sequence of status
// answers, consumed one per status request.
type scriptedServer struct {
	t        *testing.T
	statuses []func(w http.ResponseWriter)
	starts   atomic.Int64
	polls    atomic.Int64
}

func (s *scriptedServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/itineraries", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		s.starts.Add(1)
		var req startRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Prompt == "" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Prompt is required"})
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(startResponse{JobID: "job-1", Status: "pending"})
	})
	mux.HandleFunc("/api/v1/itineraries/status", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		n := int(s.polls.Add(1)) - 1
		if n >= len(s.statuses) {
			s.t.Errorf("unexpected status request #%d", n+1)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		s.statuses[n](w)
	})
	return mux
}

func statusJSON(status string, result map[string]any, errMsg string) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		_ = json.NewEncoder(w).Encode(statusResponse{
			JobID: "job-1", Status: status, Result: result, Error: errMsg,
		})
	}
}

func statusCode(code int) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": http.StatusText(code)})
	}
}

func noSleep(ctx context.Context, d time.Duration) error { return nil }

func newTestPoller(t *testing.T, srv *scriptedServer, mutate func(*Options)) *Poller {
	t.Helper()
	ts := httptest.NewServer(srv.handler())
	t.Cleanup(ts.Close)
	opts := Options{
		BaseURL:      ts.URL,
		PollInterval: time.Millisecond,
		Sleep:        noSleep,
	}
	if mutate != nil {
		mutate(&opts)
	}
	return New(opts)
}

func TestPoller_CompletesAfterSeveralPolls(t *testing.T) {
	t.Parallel()

	srv := &scriptedServer{t: t, statuses: []func(http.ResponseWriter){
		statusJSON("pending", nil, ""),
		statusJSON("processing", nil, ""),
		statusJSON("processing", nil, ""),
		statusJSON("completed", map[string]any{"textResponse": "your trip"}, ""),
	}}

	var progress []int
	p := newTestPoller(t, srv, func(o *Options) {
		o.OnProgress = func(pct int) { progress = append(progress, pct) }
	})

	out := p.Run(context.Background(), "trip to Lisbon", nil)
	if out.State != StateCompleted {
		t.Fatalf("state = %s (err %v), want completed", out.State, out.Err)
	}
	if out.JobID != "job-1" {
		t.Fatalf("job id = %q", out.JobID)
	}
	if out.Result["textResponse"] != "your trip" {
		t.Fatalf("result = %v", out.Result)
	}
	if p.State() != StateCompleted {
		t.Fatalf("poller state = %s", p.State())
	}

	if len(progress) == 0 || progress[len(progress)-1] != 100 {
		t.Fatalf("progress must end at 100: %v", progress)
	}
	for i := 1; i < len(progress); i++ {
		if progress[i] < progress[i-1] {
			t.Fatalf("progress moved backwards: %v", progress)
		}
	}
}

func TestPoller_FailedJobReportsServerMessage(t *testing.T) {
	t.Parallel()

	srv := &scriptedServer{t: t, statuses: []func(http.ResponseWriter){
		statusJSON("processing", nil, ""),
		statusJSON("failed", nil, "upstream unavailable"),
	}}
	p := newTestPoller(t, srv, nil)

	out := p.Run(context.Background(), "trip to Lisbon", nil)
	if out.State != StateFailed {
		t.Fatalf("state = %s, want failed", out.State)
	}
	if out.Err == nil || !strings.Contains(out.Err.Error(), "upstream unavailable") {
		t.Fatalf("err = %v, want the server's failure message", out.Err)
	}
}

func TestPoller_NotFoundRetriesWithBackoffThenRecovers(t *testing.T) {
	t.Parallel()

	srv := &scriptedServer{t: t, statuses: []func(http.ResponseWriter){
		statusCode(http.StatusNotFound),
		statusCode(http.StatusNotFound),
		statusJSON("completed", map[string]any{"textResponse": "ok"}, ""),
	}}

	var waits []time.Duration
	p := newTestPoller(t, srv, func(o *Options) {
		o.RetryBase = time.Second
		o.RetryCap = 10 * time.Second
		o.Sleep = func(ctx context.Context, d time.Duration) error {
			waits = append(waits, d)
			return nil
		}
	})

	out := p.Run(context.Background(), "trip to Lisbon", nil)
	if out.State != StateCompleted {
		t.Fatalf("state = %s (err %v), want completed", out.State, out.Err)
	}

	// First wait is the poll interval, then 1s and 2s of not-found backoff.
	var backoffs []time.Duration
	for _, d := range waits {
		if d >= time.Second {
			backoffs = append(backoffs, d)
		}
	}
	if len(backoffs) != 2 || backoffs[0] != time.Second || backoffs[1] != 2*time.Second {
		t.Fatalf("backoff waits = %v, want [1s 2s]", backoffs)
	}
}

func TestPoller_NotFoundBudgetExhausted(t *testing.T) {
	t.Parallel()

	statuses := make([]func(http.ResponseWriter), 0, 6)
	for i := 0; i < 6; i++ {
		statuses = append(statuses, statusCode(http.StatusNotFound))
	}
	srv := &scriptedServer{t: t, statuses: statuses}
	p := newTestPoller(t, srv, func(o *Options) { o.MaxRetries = 5 })

	out := p.Run(context.Background(), "trip to Lisbon", nil)
	if out.State != StateFailed {
		t.Fatalf("state = %s, want failed", out.State)
	}
	if out.Err == nil || !strings.Contains(out.Err.Error(), "not found") {
		t.Fatalf("err = %v", out.Err)
	}
	if got := srv.polls.Load(); got != 6 {
		t.Fatalf("status requests = %d, want 6 (initial + 5 retries)", got)
	}
}

func TestPoller_ServerErrorIsTerminal(t *testing.T) {
	t.Parallel()

	srv := &scriptedServer{t: t, statuses: []func(http.ResponseWriter){
		statusCode(http.StatusInternalServerError),
	}}
	p := newTestPoller(t, srv, nil)

	out := p.Run(context.Background(), "trip to Lisbon", nil)
	if out.State != StateFailed {
		t.Fatalf("state = %s, want failed", out.State)
	}
	if got := srv.polls.Load(); got != 1 {
		t.Fatalf("status requests = %d, want 1 (no retry on 5xx)", got)
	}
}

func TestPoller_PollBudgetExhaustedIsTimedOutNotFailed(t *testing.T) {
	t.Parallel()

	statuses := make([]func(http.ResponseWriter), 0, 4)
	for i := 0; i < 4; i++ {
		statuses = append(statuses, statusJSON("processing", nil, ""))
	}
	srv := &scriptedServer{t: t, statuses: statuses}
	p := newTestPoller(t, srv, func(o *Options) { o.MaxPolls = 4 })

	out := p.Run(context.Background(), "trip to Lisbon", nil)
	if out.State != StateTimedOut {
		t.Fatalf("state = %s, want timed-out", out.State)
	}
	if out.Err != nil {
		t.Fatalf("timed-out is not a failure, got err %v", out.Err)
	}
	if out.Message == "" {
		t.Fatal("timed-out outcome must explain itself")
	}
	if out.JobID != "job-1" {
		t.Fatalf("job id = %q, want preserved for later checks", out.JobID)
	}
}

func TestPoller_StartRejectionFailsFast(t *testing.T) {
	t.Parallel()

	srv := &scriptedServer{t: t}
	p := newTestPoller(t, srv, nil)

	out := p.Run(context.Background(), "", nil)
	if out.State != StateFailed {
		t.Fatalf("state = %s, want failed", out.State)
	}
	if out.Err == nil || !strings.Contains(out.Err.Error(), "Prompt is required") {
		t.Fatalf("err = %v, want the server's rejection message", out.Err)
	}
	if got := srv.polls.Load(); got != 0 {
		t.Fatalf("poller must not poll after a rejected start, did %d", got)
	}
}

func TestBackoff(t *testing.T) {
	t.Parallel()

	cases := []struct {
		retry int
		want  time.Duration
	}{
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 8 * time.Second},
		{5, 10 * time.Second}, // capped
		{40, 10 * time.Second},
	}
	for _, tc := range cases {
		if got := backoff(time.Second, 10*time.Second, tc.retry); got != tc.want {
			t.Errorf("backoff(retry=%d) = %v, want %v", tc.retry, got, tc.want)
		}
	}
}
