package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"travel-itinerary-api/internal/domain/model"
	"travel-itinerary-api/internal/domain/ports/adapter"
	"travel-itinerary-api/internal/domain/ports/repository"
	"travel-itinerary-api/internal/infra/logging"
	"travel-itinerary-api/internal/infra/metrics"
)

// MetadataRunID is the job metadata key carrying the enrichment run id, so
// external observers can correlate a job with its upstream run.
const MetadataRunID = "maestroRunId"

// PollPolicy bounds the primary enrichment attempt: one status poll every
// Interval, at most MaxAttempts times. 15 x 20s gives the documented five
// minute ceiling.
type PollPolicy struct {
	Interval    time.Duration
	MaxAttempts int
}

func DefaultPollPolicy() PollPolicy {
	return PollPolicy{Interval: 20 * time.Second, MaxAttempts: 15}
}

// SleepFunc abstracts the inter-poll wait so tests can run on a fake clock.
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepReal(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// GenerationUseCase turns a (jobID, prompt) pair into a terminal job state.
// It never holds a job record across a suspension point; every mutation is a
// fresh read-modify-write through the repository.
type GenerationUseCase struct {
	jobs     repository.JobRepository
	enrich   adapter.EnrichmentService
	complete adapter.CompletionService
	tokens   adapter.TokenCounter // optional, best-effort
	policy   PollPolicy
	sleep    SleepFunc
	log      *zerolog.Logger
}

func NewGenerationUseCase(
	jobs repository.JobRepository,
	enrich adapter.EnrichmentService,
	complete adapter.CompletionService,
	tokens adapter.TokenCounter,
	policy PollPolicy,
	log *zerolog.Logger,
) *GenerationUseCase {
	if policy.Interval <= 0 {
		policy.Interval = DefaultPollPolicy().Interval
	}
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = DefaultPollPolicy().MaxAttempts
	}
	return &GenerationUseCase{
		jobs:     jobs,
		enrich:   enrich,
		complete: complete,
		tokens:   tokens,
		policy:   policy,
		sleep:    sleepReal,
		log:      log,
	}
}

// Run drives one job to a terminal state. The returned error mirrors what was
// recorded on the job; callers launched fire-and-forget may ignore it.
//
// Contract: always terminate in completed with some renderable payload, or
// failed with a clear reason. Never hang, never drop the request.
func (g *GenerationUseCase) Run(ctx context.Context, jobID, prompt string) error {
	ctx = logging.WithJobID(ctx, jobID)
	log := logging.With(ctx, g.log)
	defer logging.TraceDuration(log, "GenerationUC.Run")()

	start := time.Now()
	processing := model.JobStatusProcessing
	if _, err := g.jobs.Update(ctx, jobID, model.JobUpdate{Status: &processing}); err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}

	structured := BuildStructuredPrompt(prompt)
	g.observePromptTokens(structured, log)

	text, ok := g.runPrimary(ctx, jobID, structured, log)
	path := "enrichment"
	if !ok {
		path = "completion"
		log.Info().Msg("falling back to plain completion")
		var err error
		text, err = g.complete.Complete(ctx, structured)
		if err != nil {
			// The only path that produces a failed job: the fallback has no
			// further fallback.
			g.markFailed(jobID, err, log)
			metrics.ObserveGeneration(path, false, time.Since(start))
			return err
		}
	}

	result := ExtractResult(text)
	if _, degraded := result[TextResponseKey]; degraded {
		log.Info().Int("text_len", len(text)).Msg("no parseable JSON in response, storing text fallback")
	}

	completed := model.JobStatusCompleted
	if _, err := g.jobs.Update(ctx, jobID, model.JobUpdate{Status: &completed, Result: result}); err != nil {
		log.Error().Err(err).Msg("failed to record completed result")
		return err
	}
	metrics.ObserveGeneration(path, true, time.Since(start))
	metrics.IncJob(string(model.JobStatusCompleted))
	log.Info().Str("path", path).Dur("duration", time.Since(start)).Msg("job completed")
	return nil
}

// runPrimary submits the enrichment run and polls it within the policy
// budget. Any network failure, upstream run failure, or poll-budget
// exhaustion reports ok=false; exhaustion is a timeout, not an error, so no
// job failure is recorded here.
func (g *GenerationUseCase) runPrimary(ctx context.Context, jobID, prompt string, log *zerolog.Logger) (string, bool) {
	runID, err := g.enrich.StartRun(ctx, prompt)
	if err != nil {
		log.Warn().Err(err).Msg("enrichment submit failed")
		return "", false
	}

	log = logging.With(logging.WithRunID(ctx, runID), log)
	log.Info().Msg("enrichment run started")

	// Persist the run id as soon as it is known.
	if _, err := g.jobs.Update(ctx, jobID, model.JobUpdate{Metadata: map[string]string{MetadataRunID: runID}}); err != nil {
		log.Warn().Err(err).Msg("could not record run id on job")
	}

	for attempt := 1; attempt <= g.policy.MaxAttempts; attempt++ {
		if err := g.sleep(ctx, g.policy.Interval); err != nil {
			log.Warn().Err(err).Msg("poll wait interrupted")
			return "", false
		}

		state, err := g.enrich.GetRun(ctx, runID)
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt).Msg("enrichment poll failed")
			return "", false
		}

		switch {
		case state.Status == adapter.RunStatusCompleted:
			if state.Text == "" {
				log.Warn().Msg("enrichment run completed with empty output")
				return "", false
			}
			log.Info().Int("attempt", attempt).Int("text_len", len(state.Text)).Msg("enrichment run completed")
			return state.Text, true
		case state.Status == adapter.RunStatusFailed:
			log.Warn().Int("attempt", attempt).Msg("enrichment run failed upstream")
			return "", false
		case state.InProgress():
			log.Debug().Int("attempt", attempt).Int("max", g.policy.MaxAttempts).Str("status", state.Status).Msg("enrichment run still working")
		default:
			log.Warn().Str("status", state.Status).Msg("enrichment run reported unknown status")
			return "", false
		}
	}

	log.Info().Int("attempts", g.policy.MaxAttempts).Msg("enrichment run taking too long, giving up on primary")
	return "", false
}

// markFailed records the terminal failure. A background context is used so a
// cancelled task context cannot keep the job stuck in processing.
func (g *GenerationUseCase) markFailed(jobID string, cause error, log *zerolog.Logger) {
	failed := model.JobStatusFailed
	msg := cause.Error()
	if _, err := g.jobs.Update(context.Background(), jobID, model.JobUpdate{Status: &failed, Error: &msg}); err != nil {
		log.Error().Err(err).Msg("failed to record job failure")
	}
	metrics.IncJob(string(model.JobStatusFailed))
	log.Error().Err(cause).Msg("job failed")
}

func (g *GenerationUseCase) observePromptTokens(prompt string, log *zerolog.Logger) {
	if g.tokens == nil {
		return
	}
	n, err := g.tokens.CountTokens(prompt)
	if err != nil {
		return
	}
	metrics.AddPromptTokens(n)
	log.Debug().Int("prompt_tokens", n).Msg("estimated prompt size")
}
