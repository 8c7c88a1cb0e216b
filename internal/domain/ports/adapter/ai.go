package adapter

import "context"

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// RunStatus values reported by the enrichment service for a submitted run.
const (
	RunStatusPending    = "pending"
	RunStatusInProgress = "in_progress"
	RunStatusRunning    = "running"
	RunStatusCompleted  = "completed"
	RunStatusFailed     = "failed"
)

// RunState is one observation of an enrichment run.
type RunState struct {
	ID     string
	Status string
	// Text is populated only when Status is completed.
	Text string
}

// InProgress reports whether the run is still working.
func (s RunState) InProgress() bool {
	return s.Status == RunStatusPending || s.Status == RunStatusInProgress || s.Status == RunStatusRunning
}

// EnrichmentService is the submit-then-poll upstream mode that can browse
// external sources before answering. Slow and occasionally unreliable; the
// caller owns the polling schedule.
type EnrichmentService interface {
	// StartRun submits the input and returns a run id immediately.
	StartRun(ctx context.Context, input string) (string, error)
	// GetRun fetches the current state of a run.
	GetRun(ctx context.Context, runID string) (RunState, error)
}

// CompletionService is the synchronous request/response fallback. No polling,
// bounded latency, no web enrichment.
type CompletionService interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// TokenCounter estimates prompt tokens before submission (best-effort, used
// for logging and metrics only).
type TokenCounter interface {
	CountTokens(text string) (int, error)
}
