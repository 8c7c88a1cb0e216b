package ai

import (
	"context"
	"time"

	"travel-itinerary-api/internal/domain/ports/adapter"
)

var (
	_ adapter.EnrichmentService = (*NoopAdapter)(nil)
	_ adapter.CompletionService = (*NoopAdapter)(nil)
)

// NoopAdapter implements both AI ports for local/dev runs without a
// credential. StartRun always "fails" so the generation flow exercises the
// fallback path, and Complete answers with a small canned itinerary.
type NoopAdapter struct{}

func NewNoopAdapter() *NoopAdapter {
	return &NoopAdapter{}
}

func (a *NoopAdapter) StartRun(ctx context.Context, input string) (string, error) {
	return "", context.DeadlineExceeded
}

func (a *NoopAdapter) GetRun(ctx context.Context, runID string) (adapter.RunState, error) {
	return adapter.RunState{ID: runID, Status: adapter.RunStatusFailed}, nil
}

func (a *NoopAdapter) Complete(ctx context.Context, prompt string) (string, error) {
	// Simulate slight processing time and respect ctx
	select {
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	return `Here is a minimal plan. {"itineraries":[{"title":"Dev itinerary","focus":"Testing","summary":"Canned response from the noop adapter.","dailySchedule":[],"accommodations":[],"costBreakdown":{"activities":0,"meals":0,"accommodation":0,"transportation":0,"miscellaneous":0,"totalEstimatedCost":0,"comparisonToBudget":"n/a","savingsSuggestions":[]},"localInsights":{"culturalNotes":[],"hiddenGems":[],"crowdAvoidanceTips":[]},"practicalInfo":{}}]}`, nil
}
