package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"travel-itinerary-api/internal/domain"
	"travel-itinerary-api/internal/domain/model"
	"travel-itinerary-api/internal/domain/ports/repository"
)

// TaskQueue accepts detached units of work. Satisfied by worker.Pool.
type TaskQueue interface {
	Submit(task func(ctx context.Context) error) error
}

// JobUseCase is the request-path surface: create a job and launch its
// generation without waiting, or read a job back. Generation latency never
// leaks into either operation.
type JobUseCase struct {
	jobs         repository.JobRepository
	gen          *GenerationUseCase
	queue        TaskQueue
	credentialOK bool
	log          *zerolog.Logger
}

func NewJobUseCase(
	jobs repository.JobRepository,
	gen *GenerationUseCase,
	queue TaskQueue,
	credentialOK bool,
	log *zerolog.Logger,
) *JobUseCase {
	return &JobUseCase{
		jobs:         jobs,
		gen:          gen,
		queue:        queue,
		credentialOK: credentialOK,
		log:          log,
	}
}

// Start validates input, creates the job and hands generation to the queue.
// Returns the pending job immediately; its progress is observable only
// through Status.
func (u *JobUseCase) Start(ctx context.Context, prompt string, formData *model.FormInputs) (*model.ItineraryJob, error) {
	if prompt == "" {
		return nil, fmt.Errorf("%w: prompt is required", domain.ErrInvalidArgument)
	}
	if !u.credentialOK {
		return nil, domain.ErrMissingAPIKey
	}

	job, err := u.jobs.Create(ctx, prompt, formData)
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	jobID := job.ID
	task := func(taskCtx context.Context) error {
		// Outermost boundary of the detached task: nothing escapes it, a
		// panic becomes a job-failure record like any other error.
		defer func() {
			if r := recover(); r != nil {
				u.gen.markFailed(jobID, fmt.Errorf("generation panicked: %v", r), u.log)
			}
		}()
		return u.gen.Run(taskCtx, jobID, prompt)
	}

	if err := u.queue.Submit(task); err != nil {
		// Undo the record so a job the queue never saw cannot sit pending
		// forever.
		if _, delErr := u.jobs.Delete(ctx, jobID); delErr != nil {
			u.log.Error().Err(delErr).Str("job_id", jobID).Msg("could not remove unlaunched job")
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrQueueFull, err)
	}
	return job, nil
}

// Status is a pure read; safe to call repeatedly and concurrently.
func (u *JobUseCase) Status(ctx context.Context, jobID string) (*model.ItineraryJob, error) {
	if jobID == "" {
		return nil, fmt.Errorf("%w: jobId is required", domain.ErrInvalidArgument)
	}
	return u.jobs.Get(ctx, jobID)
}
