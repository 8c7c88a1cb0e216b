package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"travel-itinerary-api/internal/domain"
	"travel-itinerary-api/internal/domain/model"
	"travel-itinerary-api/internal/domain/ports/repository"
)

var _ repository.JobRepository = (*MemoryJobRepo)(nil)

// MemoryJobRepo keeps jobs in a process-local map. Not durable and not shared
// across instances; that is a documented scaling limitation of the single
// process deployment, not something this type tries to mask. The Redis-backed
// repository satisfies the same port when a shared store is needed.
type MemoryJobRepo struct {
	mu   sync.RWMutex
	jobs map[string]*model.ItineraryJob
	now  func() time.Time
}

func NewMemoryJobRepo() *MemoryJobRepo {
	return &MemoryJobRepo{
		jobs: make(map[string]*model.ItineraryJob),
		now:  time.Now,
	}
}

func (r *MemoryJobRepo) Create(ctx context.Context, prompt string, formData *model.FormInputs) (*model.ItineraryJob, error) {
	now := r.now()
	job := &model.ItineraryJob{
		ID:        uuid.NewString(),
		Status:    model.JobStatusPending,
		Prompt:    prompt,
		FormData:  formData,
		CreatedAt: now,
		UpdatedAt: now,
	}

	r.mu.Lock()
	r.jobs[job.ID] = job
	r.mu.Unlock()

	cp := cloneJob(job)
	return &cp, nil
}

func (r *MemoryJobRepo) Get(ctx context.Context, id string) (*model.ItineraryJob, error) {
	r.mu.RLock()
	job, ok := r.jobs[id]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := cloneJob(job)
	return &cp, nil
}

func (r *MemoryJobRepo) Update(ctx context.Context, id string, patch model.JobUpdate) (*model.ItineraryJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if patch.Status != nil && job.Status.Terminal() {
		return nil, domain.ErrJobTerminal
	}

	if patch.Status != nil {
		job.Status = *patch.Status
	}
	if patch.Result != nil {
		job.Result = patch.Result
	}
	if patch.Error != nil {
		job.Error = *patch.Error
	}
	if patch.Metadata != nil {
		if job.Metadata == nil {
			job.Metadata = make(map[string]string, len(patch.Metadata))
		}
		for k, v := range patch.Metadata {
			job.Metadata[k] = v
		}
	}
	job.UpdatedAt = r.now()

	cp := cloneJob(job)
	return &cp, nil
}

func (r *MemoryJobRepo) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[id]; !ok {
		return false, nil
	}
	delete(r.jobs, id)
	return true, nil
}

func (r *MemoryJobRepo) DeleteOlderThan(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := r.now().Add(-maxAge)

	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, job := range r.jobs {
		if job.CreatedAt.Before(cutoff) {
			delete(r.jobs, id)
			removed++
		}
	}
	return removed, nil
}

// cloneJob deep-copies the mutable fields so callers never share state with
// the stored record.
func cloneJob(j *model.ItineraryJob) model.ItineraryJob {
	cp := *j
	if j.FormData != nil {
		fd := *j.FormData
		cp.FormData = &fd
	}
	if j.Metadata != nil {
		cp.Metadata = make(map[string]string, len(j.Metadata))
		for k, v := range j.Metadata {
			cp.Metadata[k] = v
		}
	}
	if j.Result != nil {
		cp.Result = make(map[string]any, len(j.Result))
		for k, v := range j.Result {
			cp.Result[k] = v
		}
	}
	return cp
}
