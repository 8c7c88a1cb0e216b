package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"travel-itinerary-api/internal/domain"
	"travel-itinerary-api/internal/domain/model"
	"travel-itinerary-api/internal/domain/ports/repository"
)

var _ repository.JobRepository = (*JobRepo)(nil)

const jobKeyPrefix = "itinerary_job:"

// JobRepo stores jobs as JSON blobs in Redis, giving the service a shared
// store when it runs as more than one instance. Records expire via TTL as a
// backstop; DeleteOlderThan still sweeps by CreatedAt so the configured max
// age wins over the TTL.
type JobRepo struct {
	client RedisClient
	ttl    time.Duration
	now    func() time.Time
}

func NewJobRepo(client RedisClient, ttl time.Duration) *JobRepo {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JobRepo{client: client, ttl: ttl, now: time.Now}
}

func jobKey(id string) string { return jobKeyPrefix + id }

func (r *JobRepo) Create(ctx context.Context, prompt string, formData *model.FormInputs) (*model.ItineraryJob, error) {
	now := r.now()
	job := &model.ItineraryJob{
		ID:        uuid.NewString(),
		Status:    model.JobStatusPending,
		Prompt:    prompt,
		FormData:  formData,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.put(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

func (r *JobRepo) Get(ctx context.Context, id string) (*model.ItineraryJob, error) {
	data, err := r.client.Get(ctx, jobKey(id))
	if err != nil {
		if IsNil(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("redis get job: %w", err)
	}
	var job model.ItineraryJob
	if err := json.Unmarshal([]byte(data), &job); err != nil {
		return nil, fmt.Errorf("decode job %s: %w", id, err)
	}
	return &job, nil
}

func (r *JobRepo) Update(ctx context.Context, id string, patch model.JobUpdate) (*model.ItineraryJob, error) {
	job, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
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

	if err := r.put(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

func (r *JobRepo) Delete(ctx context.Context, id string) (bool, error) {
	n, err := r.client.Del(ctx, jobKey(id))
	if err != nil {
		return false, fmt.Errorf("redis del job: %w", err)
	}
	return n > 0, nil
}

func (r *JobRepo) DeleteOlderThan(ctx context.Context, maxAge time.Duration) (int, error) {
	keys, err := r.client.Keys(ctx, jobKeyPrefix+"*")
	if err != nil {
		return 0, fmt.Errorf("redis list jobs: %w", err)
	}
	cutoff := r.now().Add(-maxAge)
	removed := 0
	for _, key := range keys {
		data, err := r.client.Get(ctx, key)
		if err != nil {
			continue // expired between KEYS and GET
		}
		var job model.ItineraryJob
		if err := json.Unmarshal([]byte(data), &job); err != nil {
			continue
		}
		if job.CreatedAt.Before(cutoff) {
			if n, err := r.client.Del(ctx, key); err == nil && n > 0 {
				removed++
			}
		}
	}
	return removed, nil
}

func (r *JobRepo) put(ctx context.Context, job *model.ItineraryJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job %s: %w", job.ID, err)
	}
	if err := r.client.Set(ctx, jobKey(job.ID), data, r.ttl); err != nil {
		return fmt.Errorf("redis set job: %w", err)
	}
	return nil
}
