package sched

import (
	"context"
	"errors"
	"time"

	"composite-client/internal/config"
	"composite-client/internal/domain"
	"composite-client/internal/domain/model"
	"composite-client/internal/domain/ports/repository"
	"composite-client/internal/infra/metrics"
	"composite-client/internal/usecase"

	"github.com/rs/zerolog"
)

// RecheckWorker periodically re-polls share card jobs the client gave up on.
// Timed-out jobs are always eligible; cancelled ones only when configured.
// A job whose recorded attempts reach maxAttempts is marked exhausted and left alone.
type RecheckWorker struct {
	interval    time.Duration
	batch       int
	maxAttempts int
	outcomes    []model.OutcomeKind
	jobs        repository.ShareCardJobRepository
	shareUC     usecase.ShareCardUseCase
	log         *zerolog.Logger
}

func NewRecheckWorker(cfg config.SchedulerConfig, jobs repository.ShareCardJobRepository, shareUC usecase.ShareCardUseCase, logger *zerolog.Logger) *RecheckWorker {
	compLog := logger.With().Str("component", "RecheckWorker").Logger()
	w := &RecheckWorker{
		interval:    cfg.RecheckInterval,
		batch:       cfg.RecheckBatch,
		maxAttempts: cfg.MaxAttempts,
		outcomes:    []model.OutcomeKind{model.OutcomeTimedOut},
		jobs:        jobs,
		shareUC:     shareUC,
		log:         &compLog,
	}
	if w.interval <= 0 {
		w.interval = time.Minute
	}
	if w.maxAttempts <= 0 {
		w.maxAttempts = 4 * config.DefaultMaxAttempts
	}
	if cfg.RecheckCancelled {
		w.outcomes = append(w.outcomes, model.OutcomeCancelled)
	}
	return w
}

func (w *RecheckWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting recheck worker")
	// Run once on startup, then on every tick
	w.RunOnce(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping recheck worker")
			return ctx.Err()
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce starts a recheck session for each abandoned job in the current batch
// and returns how many were started. Movies with a running session are skipped.
func (w *RecheckWorker) RunOnce(ctx context.Context) int {
	started := 0
	for _, outcome := range w.outcomes {
		jobs, err := w.jobs.ListByOutcome(ctx, nil, outcome, w.batch)
		if err != nil {
			w.log.Error().Err(err).Str("outcome", string(outcome)).Msg("list abandoned jobs")
			continue
		}
		for _, j := range jobs {
			h := model.JobHandle{MovieID: j.MovieID, JobID: j.JobID}
			if j.Attempts >= w.maxAttempts {
				w.exhaust(ctx, j)
				continue
			}
			_, err := w.shareUC.Recheck(ctx, h, 0)
			switch {
			case err == nil:
				started++
				metrics.IncShareCardRecheck("started")
			case errors.Is(err, domain.ErrSessionActive):
				metrics.IncShareCardRecheck("skipped")
				w.log.Debug().Str("movie_id", h.MovieID.String()).Msg("session active, skipping recheck")
			default:
				metrics.IncShareCardRecheck("failed")
				w.log.Warn().Err(err).Str("job_id", h.JobID.String()).Msg("recheck not started")
			}
		}
	}
	if started > 0 {
		w.log.Info().Int("count", started).Msg("rechecks started")
	}
	return started
}

// exhaust takes j out of the recheck rotation.
func (w *RecheckWorker) exhaust(ctx context.Context, j *model.ShareCardJob) {
	metrics.IncShareCardRecheck("exhausted")
	j.Outcome = model.OutcomeExhausted
	j.UpdatedAt = time.Now()
	if err := w.jobs.Save(ctx, nil, j); err != nil {
		w.log.Warn().Err(err).Str("job_id", j.JobID.String()).Msg("mark job exhausted")
		return
	}
	w.log.Info().
		Str("movie_id", j.MovieID.String()).
		Str("job_id", j.JobID.String()).
		Int("attempts", j.Attempts).
		Msg("giving up on share card job")
}
