package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"travel-itinerary-api/internal/domain/ports/repository"
	"travel-itinerary-api/internal/infra/metrics"
)

// CleanupSweeper periodically removes jobs older than maxAge from the store.
// Runs out of band; never triggered by a request.
type CleanupSweeper struct {
	jobs     repository.JobRepository
	interval time.Duration
	maxAge   time.Duration
	log      *zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewCleanupSweeper constructs a sweeper that deletes jobs older than maxAge
// every interval. If interval <= 0 it defaults to one hour.
func NewCleanupSweeper(jobs repository.JobRepository, interval, maxAge time.Duration, log *zerolog.Logger) *CleanupSweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}
	return &CleanupSweeper{
		jobs:     jobs,
		interval: interval,
		maxAge:   maxAge,
		log:      log,
		done:     make(chan struct{}),
	}
}

// Start begins the sweep loop in a background goroutine; calling Start more
// than once has no effect.
func (s *CleanupSweeper) Start(parentCtx context.Context) {
	if s.ctx != nil {
		return
	}
	ctx, cancel := context.WithCancel(parentCtx)
	s.ctx = ctx
	s.cancel = cancel

	go s.loop()
}

func (s *CleanupSweeper) loop() {
	ticker := time.NewTicker(s.interval)
	defer func() {
		ticker.Stop()
		close(s.done)
	}()

	s.log.Info().Dur("interval", s.interval).Dur("max_age", s.maxAge).Msg("job cleanup sweeper started")
	for {
		select {
		case <-s.ctx.Done():
			s.log.Info().Msg("job cleanup sweeper stopping")
			return
		case <-ticker.C:
			runCtx, cancel := context.WithTimeout(s.ctx, 30*time.Second)
			removed, err := s.jobs.DeleteOlderThan(runCtx, s.maxAge)
			cancel()
			if err != nil {
				s.log.Error().Err(err).Msg("job sweep failed")
				continue
			}
			if removed > 0 {
				metrics.AddSweptJobs(removed)
				s.log.Info().Int("removed", removed).Msg("swept expired jobs")
			}
		}
	}
}

// Stop cancels the loop and waits for it to exit.
func (s *CleanupSweeper) Stop() {
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
}
