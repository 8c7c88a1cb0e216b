// Package client implements the polling side of the job API: start a
// generation job, then poll its status with backoff until it completes,
// fails, or the local attempt budget runs out.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"travel-itinerary-api/internal/domain/model"
)

type State string

const (
	StateIdle      State = "idle"
	StateStarted   State = "started"
	StatePolling   State = "polling"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
	StateTimedOut  State = "timed-out"
)

// Options tune the poller. Zero values fall back to the documented policy:
// 30s start timeout, 20s poll interval x 15 attempts (mirroring the server's
// own upstream polling), 15s status timeout, 5 bounded retries with
// exponential backoff for not-found races and request timeouts.
type Options struct {
	BaseURL       string
	StartTimeout  time.Duration
	PollInterval  time.Duration
	MaxPolls      int
	StatusTimeout time.Duration
	MaxRetries    int
	RetryBase     time.Duration
	RetryCap      time.Duration
	HTTPClient    *http.Client
	// OnProgress receives a monotonic 0-100 estimate derived from the
	// attempt count; the server exposes no real progress.
	OnProgress func(percent int)
	// Sleep is injectable for tests; defaults to a context-aware wait.
	Sleep func(ctx context.Context, d time.Duration) error
	Log   *zerolog.Logger
}

func (o *Options) fillDefaults() {
	if o.StartTimeout <= 0 {
		o.StartTimeout = 30 * time.Second
	}
	if o.PollInterval <= 0 {
		o.PollInterval = 20 * time.Second
	}
	if o.MaxPolls <= 0 {
		o.MaxPolls = 15
	}
	if o.StatusTimeout <= 0 {
		o.StatusTimeout = 15 * time.Second
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = 5
	}
	if o.RetryBase <= 0 {
		o.RetryBase = time.Second
	}
	if o.RetryCap <= 0 {
		o.RetryCap = 10 * time.Second
	}
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{}
	}
	if o.Sleep == nil {
		o.Sleep = func(ctx context.Context, d time.Duration) error {
			t := time.NewTimer(d)
			defer t.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-t.C:
				return nil
			}
		}
	}
	if o.Log == nil {
		nop := zerolog.Nop()
		o.Log = &nop
	}
}

// Outcome is the terminal report of one Run.
type Outcome struct {
	State  State
	JobID  string
	Result map[string]any
	// Err is set for StateFailed.
	Err error
	// Message explains a timed-out outcome: the job may still be running
	// server-side even though this client stopped watching.
	Message string
}

type Poller struct {
	opts  Options
	state State
}

func New(opts Options) *Poller {
	opts.fillDefaults()
	return &Poller{opts: opts, state: StateIdle}
}

// State returns the last observed state. Not safe for concurrent use with Run.
func (p *Poller) State() State { return p.state }

// Run starts a job for the given prompt and polls it to a terminal outcome.
func (p *Poller) Run(ctx context.Context, prompt string, formData *model.FormInputs) Outcome {
	p.state = StateStarted
	jobID, err := p.start(ctx, prompt, formData)
	if err != nil {
		p.state = StateFailed
		return Outcome{State: StateFailed, Err: err}
	}
	p.opts.Log.Info().Str("job_id", jobID).Msg("generation job started")

	p.state = StatePolling
	out := p.poll(ctx, jobID)
	p.state = out.State
	out.JobID = jobID
	return out
}

func (p *Poller) start(ctx context.Context, prompt string, formData *model.FormInputs) (string, error) {
	body, err := json.Marshal(startRequest{Prompt: prompt, FormData: formData})
	if err != nil {
		return "", err
	}

	reqCtx, cancel := context.WithTimeout(ctx, p.opts.StartTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, p.opts.BaseURL+"/api/v1/itineraries", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.opts.HTTPClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", errors.New("request timed out, the server might be busy; please try again in a moment")
		}
		return "", fmt.Errorf("start request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("start request failed: %s", readAPIError(resp))
	}

	var started startResponse
	if err := json.NewDecoder(resp.Body).Decode(&started); err != nil {
		return "", fmt.Errorf("decode start response: %w", err)
	}
	if started.JobID == "" {
		return "", errors.New("server returned no job id")
	}
	return started.JobID, nil
}

func (p *Poller) poll(ctx context.Context, jobID string) Outcome {
	retries := 0
	for attempt := 1; attempt <= p.opts.MaxPolls; attempt++ {
		p.reportProgress(attempt)

		if err := p.opts.Sleep(ctx, p.opts.PollInterval); err != nil {
			return Outcome{State: StateFailed, Err: err}
		}

		st, err := p.fetchWithRetry(ctx, jobID, &retries)
		if err != nil {
			return Outcome{State: StateFailed, Err: err}
		}

		switch model.JobStatus(st.Status) {
		case model.JobStatusCompleted:
			if p.opts.OnProgress != nil {
				p.opts.OnProgress(100)
			}
			return Outcome{State: StateCompleted, Result: st.Result}
		case model.JobStatusFailed:
			return Outcome{State: StateFailed, Err: fmt.Errorf("generation failed: %s", st.Error)}
		default:
			p.opts.Log.Debug().Str("status", st.Status).Int("attempt", attempt).Msg("job still running")
		}
	}

	return Outcome{
		State:   StateTimedOut,
		Message: "timed out waiting for the itinerary; the job may still be running server-side, check its status again later",
	}
}

// fetchWithRetry wraps one status check with the bounded retry discipline:
// a request-level timeout retries immediately, a 404 (the job may not be
// visible yet right after start) retries after exponential backoff, anything
// else is terminal. The retry budget is shared across the whole poll loop.
func (p *Poller) fetchWithRetry(ctx context.Context, jobID string, retries *int) (statusResponse, error) {
	for {
		st, code, err := p.fetchStatus(ctx, jobID)
		switch {
		case err != nil && isTimeout(err):
			*retries++
			if *retries > p.opts.MaxRetries {
				return statusResponse{}, errors.New("status check timed out repeatedly; please try again")
			}
			p.opts.Log.Warn().Int("retry", *retries).Msg("status check timed out, retrying")
		case err != nil:
			return statusResponse{}, fmt.Errorf("status check failed: %w", err)
		case code == http.StatusNotFound:
			*retries++
			if *retries > p.opts.MaxRetries {
				return statusResponse{}, errors.New("job not found after multiple retries; please try again")
			}
			delay := backoff(p.opts.RetryBase, p.opts.RetryCap, *retries)
			p.opts.Log.Warn().Int("retry", *retries).Dur("delay", delay).Msg("job not yet visible, backing off")
			if err := p.opts.Sleep(ctx, delay); err != nil {
				return statusResponse{}, err
			}
		case code >= 300:
			return statusResponse{}, fmt.Errorf("status check failed: http %d", code)
		default:
			return st, nil
		}
	}
}

func (p *Poller) fetchStatus(ctx context.Context, jobID string) (statusResponse, int, error) {
	reqCtx, cancel := context.WithTimeout(ctx, p.opts.StatusTimeout)
	defer cancel()

	u := p.opts.BaseURL + "/api/v1/itineraries/status?jobId=" + url.QueryEscape(jobID)
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, u, nil)
	if err != nil {
		return statusResponse{}, 0, err
	}

	resp, err := p.opts.HTTPClient.Do(req)
	if err != nil {
		return statusResponse{}, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusResponse{}, resp.StatusCode, nil
	}
	var st statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return statusResponse{}, resp.StatusCode, fmt.Errorf("decode status response: %w", err)
	}
	return st, resp.StatusCode, nil
}

func (p *Poller) reportProgress(attempt int) {
	if p.opts.OnProgress == nil {
		return
	}
	pct := attempt * 100 / p.opts.MaxPolls
	if pct > 95 {
		pct = 95 // hold the last few points for the terminal transition
	}
	p.opts.OnProgress(pct)
}

func backoff(base, ceil time.Duration, retry int) time.Duration {
	d := base << (retry - 1)
	if d > ceil || d <= 0 {
		return ceil
	}
	return d
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Timeout()
	}
	return false
}
