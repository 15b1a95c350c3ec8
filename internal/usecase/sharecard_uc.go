// File: internal/usecase/sharecard_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"composite-client/internal/config"
	"composite-client/internal/domain"
	"composite-client/internal/domain/model"
	"composite-client/internal/domain/ports/adapter"
	"composite-client/internal/domain/ports/repository"
	"composite-client/internal/infra/logging"
	"composite-client/internal/infra/metrics"
	"composite-client/internal/infra/worker"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ ShareCardUseCase = (*shareCardUC)(nil)

type ShareCardUseCase interface {
	// Submit asks the backend to start rendering a share card.
	Submit(ctx context.Context, movieID model.ID) (model.JobHandle, error)
	// Poll queries h until a terminal status, maxAttempts in-progress answers,
	// an error, or cancellation. maxAttempts <= 0 means the configured default.
	Poll(ctx context.Context, h model.JobHandle, maxAttempts int) (model.PollOutcome, error)
	// Start submits and polls in the background, one session per movie.
	Start(ctx context.Context, movieID model.ID, maxAttempts int) (*PollSession, error)
	// Recheck polls an already submitted job again without resubmitting.
	Recheck(ctx context.Context, h model.JobHandle, maxAttempts int) (*PollSession, error)
	// History returns the recorded job, if any.
	History(ctx context.Context, h model.JobHandle) (*model.ShareCardJob, error)
}

// Clock is the time source for the wait between polls.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time                         { return time.Now() }
func (systemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

type shareCardUC struct {
	api         adapter.ShareCardAPI
	jobs        repository.ShareCardJobRepository
	sessions    repository.SessionRegistry
	pool        *worker.Pool
	notifiers   []adapter.Notifier
	clock       Clock
	interval    time.Duration
	maxAttempts int
	log         *zerolog.Logger
}

// NewShareCardUseCase wires the share card flow. pool may be nil, in which case
// every session runs on its own goroutine.
func NewShareCardUseCase(
	api adapter.ShareCardAPI,
	jobs repository.ShareCardJobRepository,
	sessions repository.SessionRegistry,
	pool *worker.Pool,
	cfg config.PollConfig,
	logger *zerolog.Logger,
	notifiers ...adapter.Notifier,
) *shareCardUC {
	if logger == nil {
		logger = logging.Nop()
	}
	l := logger.With().Str("component", "ShareCard").Logger()
	uc := &shareCardUC{
		api:         api,
		jobs:        jobs,
		sessions:    sessions,
		pool:        pool,
		notifiers:   notifiers,
		clock:       systemClock{},
		interval:    cfg.Interval,
		maxAttempts: cfg.MaxAttempts,
		log:         &l,
	}
	if uc.interval <= 0 {
		uc.interval = config.DefaultPollInterval
	}
	if uc.maxAttempts <= 0 {
		uc.maxAttempts = config.DefaultMaxAttempts
	}
	return uc
}

// SetClock replaces the wall clock; tests use it to simulate the poll interval.
func (uc *shareCardUC) SetClock(c Clock) { uc.clock = c }

func (uc *shareCardUC) Submit(ctx context.Context, movieID model.ID) (model.JobHandle, error) {
	h, err := uc.api.GenerateShareCard(ctx, movieID)
	if err != nil {
		return model.JobHandle{}, &model.SubmissionError{MovieID: movieID, Err: err}
	}
	uc.log.Info().Str("movie_id", movieID.String()).Str("job_id", h.JobID.String()).Msg("share card job submitted")
	return h, nil
}

func (uc *shareCardUC) Poll(ctx context.Context, h model.JobHandle, maxAttempts int) (model.PollOutcome, error) {
	if maxAttempts <= 0 {
		maxAttempts = uc.maxAttempts
	}
	attempt := 0
	var last model.JobStatus
	for {
		st, err := uc.api.GetShareCardJob(ctx, h.MovieID, h.JobID)
		if err != nil {
			if ctx.Err() != nil {
				return cancelled(last, attempt), fmt.Errorf("%w: %w", domain.ErrSessionCancelled, ctx.Err())
			}
			metrics.IncShareCardPoll("error")
			return model.PollOutcome{Kind: model.OutcomeFailed, Status: last, Attempts: attempt + 1},
				&model.PollError{MovieID: h.MovieID, JobID: h.JobID, Attempt: attempt + 1, Err: err}
		}
		metrics.IncShareCardPoll(string(st.Status))
		last = st.Status

		switch {
		case st.Status.IsCompleted():
			return model.Completed(st.CardURL, attempt+1), nil
		case st.Status.IsInProgress():
			attempt++
			if attempt >= maxAttempts {
				return model.TimedOut(st.Status, attempt), nil
			}
			uc.log.Debug().
				Str("job_id", h.JobID.String()).
				Str("status", string(st.Status)).
				Int("attempt", attempt).
				Msg("share card not ready")
			select {
			case <-ctx.Done():
				return cancelled(last, attempt), fmt.Errorf("%w: %w", domain.ErrSessionCancelled, ctx.Err())
			case <-uc.clock.After(uc.interval):
			}
		default:
			return model.Unknown(st.Status, attempt+1), nil
		}
	}
}

func cancelled(last model.JobStatus, attempts int) model.PollOutcome {
	return model.PollOutcome{Kind: model.OutcomeCancelled, Status: last, Attempts: attempts}
}

func (uc *shareCardUC) Start(ctx context.Context, movieID model.ID, maxAttempts int) (*PollSession, error) {
	if movieID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return uc.launch(ctx, movieID, func(sctx context.Context, s *PollSession) (model.PollOutcome, error) {
		h, err := uc.Submit(sctx, movieID)
		if err != nil {
			if sctx.Err() != nil {
				return cancelled("", 0), fmt.Errorf("%w: %w", domain.ErrSessionCancelled, sctx.Err())
			}
			return model.PollOutcome{Kind: model.OutcomeFailed}, err
		}
		s.setHandle(h)
		job := model.NewShareCardJob(h)
		uc.save(sctx, job)
		return uc.pollAndRecord(sctx, job, maxAttempts)
	})
}

func (uc *shareCardUC) Recheck(ctx context.Context, h model.JobHandle, maxAttempts int) (*PollSession, error) {
	if h.MovieID == "" || h.JobID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return uc.launch(ctx, h.MovieID, func(sctx context.Context, s *PollSession) (model.PollOutcome, error) {
		s.setHandle(h)
		job, err := uc.History(sctx, h)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				uc.log.Warn().Err(err).Str("job_id", h.JobID.String()).Msg("load job history")
			}
			job = model.NewShareCardJob(h)
		}
		return uc.pollAndRecord(sctx, job, maxAttempts)
	})
}

func (uc *shareCardUC) History(ctx context.Context, h model.JobHandle) (*model.ShareCardJob, error) {
	if uc.jobs == nil {
		return nil, domain.ErrNotFound
	}
	return uc.jobs.FindByID(ctx, nil, h.MovieID, h.JobID)
}

func (uc *shareCardUC) pollAndRecord(ctx context.Context, job *model.ShareCardJob, maxAttempts int) (model.PollOutcome, error) {
	h := model.JobHandle{MovieID: job.MovieID, JobID: job.JobID}
	outcome, err := uc.Poll(ctx, h, maxAttempts)
	job.Apply(outcome, err)
	// the session context may already be cancelled; history is still written
	uc.save(context.WithoutCancel(ctx), job)
	return outcome, err
}

func (uc *shareCardUC) save(ctx context.Context, job *model.ShareCardJob) {
	if uc.jobs == nil {
		return
	}
	if err := uc.jobs.Save(ctx, nil, job); err != nil {
		uc.log.Warn().Err(err).Str("job_id", job.JobID.String()).Msg("save job history")
	}
}

type sessionFunc func(ctx context.Context, s *PollSession) (model.PollOutcome, error)

// launch claims the movie in the registry and runs fn on the pool (or a fresh
// goroutine). The claim is released as soon as fn returns.
func (uc *shareCardUC) launch(ctx context.Context, movieID model.ID, fn sessionFunc) (*PollSession, error) {
	release, err := uc.sessions.Acquire(ctx, movieID.String())
	if err != nil {
		return nil, err
	}

	sctx, cancel := context.WithCancel(logging.WithMovieID(ctx, movieID.String()))
	s := &PollSession{MovieID: movieID, cancel: cancel, done: make(chan struct{})}

	run := func(poolCtx context.Context) error {
		stop := context.AfterFunc(poolCtx, cancel)
		outcome, err := fn(sctx, s)
		stop()
		// free the movie before Done fires so a waiter can start a new session
		release()
		metrics.SessionFinished()
		metrics.IncShareCardSession(string(outcome.Kind))
		h := s.Handle()
		uc.notify(logging.WithJobID(context.WithoutCancel(sctx), h.JobID.String()), h, outcome, err)
		s.finish(outcome, err)
		return err
	}

	metrics.SessionStarted()
	if uc.pool == nil {
		go func() { _ = run(context.Background()) }()
		return s, nil
	}
	if err := uc.pool.Submit(run); err != nil {
		metrics.SessionFinished()
		cancel()
		release()
		return nil, fmt.Errorf("schedule share card session: %w", err)
	}
	return s, nil
}

func (uc *shareCardUC) notify(ctx context.Context, h model.JobHandle, outcome model.PollOutcome, err error) {
	log := logging.With(ctx, uc.log)
	ev := log.Info()
	if err != nil {
		ev = log.Warn().Err(err)
	}
	ev.Str("outcome", string(outcome.Kind)).
		Int("attempts", outcome.Attempts).
		Msg("share card session finished")

	for _, n := range uc.notifiers {
		if n == nil {
			continue
		}
		if nerr := n.NotifyShareCard(ctx, h, outcome, err); nerr != nil {
			uc.log.Warn().Err(nerr).Msg("notify share card outcome")
		}
	}
}

// PollSession is a running share card session owned by its caller.
type PollSession struct {
	MovieID model.ID

	cancel context.CancelFunc
	done   chan struct{}

	mu      sync.Mutex
	handle  model.JobHandle
	outcome model.PollOutcome
	err     error
}

// Cancel stops the session; it ends with an OutcomeCancelled outcome.
func (s *PollSession) Cancel() { s.cancel() }

// Done is closed once the session has finished.
func (s *PollSession) Done() <-chan struct{} { return s.done }

// Handle returns the job handle, empty until the submission succeeded.
func (s *PollSession) Handle() model.JobHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle
}

// Wait blocks until the session finishes or ctx is done.
func (s *PollSession) Wait(ctx context.Context) (model.PollOutcome, error) {
	select {
	case <-s.done:
	case <-ctx.Done():
		return model.PollOutcome{}, ctx.Err()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome, s.err
}

func (s *PollSession) setHandle(h model.JobHandle) {
	s.mu.Lock()
	s.handle = h
	s.mu.Unlock()
}

func (s *PollSession) finish(outcome model.PollOutcome, err error) {
	s.mu.Lock()
	s.outcome, s.err = outcome, err
	s.mu.Unlock()
	s.cancel()
	close(s.done)
}
