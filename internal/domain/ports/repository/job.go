package repository

import (
	"context"
	"time"

	"travel-itinerary-api/internal/domain/model"
)

// JobRepository is the narrow contract every job access goes through.
// Implementations must hand out copies: a record obtained from Get must never
// alias the stored one, so stale-object mutation races cannot occur.
type JobRepository interface {
	// Create allocates an id and stores a new job in status pending.
	Create(ctx context.Context, prompt string, formData *model.FormInputs) (*model.ItineraryJob, error)
	// Get returns domain.ErrNotFound for unknown ids; it never panics.
	Get(ctx context.Context, id string) (*model.ItineraryJob, error)
	// Update merges the patch into the stored job and refreshes UpdatedAt.
	// Unknown id -> domain.ErrNotFound. Patching the status of a job already
	// in a terminal state -> domain.ErrJobTerminal.
	Update(ctx context.Context, id string, patch model.JobUpdate) (*model.ItineraryJob, error)
	// Delete reports whether a job was removed.
	Delete(ctx context.Context, id string) (bool, error)
	// DeleteOlderThan removes every job created more than maxAge ago and
	// returns the number removed. Called by the cleanup sweeper, never by a
	// request handler.
	DeleteOlderThan(ctx context.Context, maxAge time.Duration) (int, error)
}
