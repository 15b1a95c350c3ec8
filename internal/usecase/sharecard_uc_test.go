package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"composite-client/internal/config"
	"composite-client/internal/domain"
	"composite-client/internal/domain/model"
	"composite-client/internal/infra/memory"
	"composite-client/internal/infra/worker"
)

func newShareCardUC(api *fakeShareCardAPI, pollCfg config.PollConfig) (*shareCardUC, *memory.ShareCardJobRepo, *recordingNotifier) {
	jobs := memory.NewShareCardJobRepo()
	notifier := &recordingNotifier{}
	uc := NewShareCardUseCase(api, jobs, memory.NewSessionRegistry(), nil, pollCfg, newTestLogger(), notifier)
	uc.SetClock(api.clock)
	return uc, jobs, notifier
}

func statuses(ss ...model.JobStatus) []model.ShareCardStatus {
	out := make([]model.ShareCardStatus, len(ss))
	for i, s := range ss {
		out[i] = model.ShareCardStatus{Status: s}
	}
	return out
}

func TestShareCardPoll_PendingThenCompleted(t *testing.T) {
	api := newFakeShareCardAPI()
	api.statuses = []model.ShareCardStatus{
		{Status: model.JobStatusPending},
		{Status: model.JobStatusCompleted, CardURL: "https://x/y.png"},
	}
	uc, _, _ := newShareCardUC(api, config.PollConfig{})

	h := model.JobHandle{MovieID: "42", JobID: "abc123"}
	out, err := uc.Poll(context.Background(), h, 0)
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if out.Kind != model.OutcomeCompleted || out.CardURL != "https://x/y.png" {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	calls := api.queryTimes()
	if len(calls) != 2 {
		t.Fatalf("expected exactly 2 queries, got %d", len(calls))
	}
	if gap := calls[1].Sub(calls[0]); gap < 2000*time.Millisecond {
		t.Errorf("queries were %v apart, want at least 2s", gap)
	}
	if api.lastQuery() != h {
		t.Errorf("queried %+v", api.lastQuery())
	}
}

func TestShareCardPoll_TimesOutWithoutExtraQuery(t *testing.T) {
	api := newFakeShareCardAPI()
	api.statuses = statuses(model.JobStatusProcessing, model.JobStatusProcessing, model.JobStatusProcessing, model.JobStatusCompleted)
	uc, _, _ := newShareCardUC(api, config.PollConfig{})

	out, err := uc.Poll(context.Background(), model.JobHandle{MovieID: "1", JobID: "j"}, 3)
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if out.Kind != model.OutcomeTimedOut || out.Status != model.JobStatusProcessing || out.Attempts != 3 {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if n := len(api.queryTimes()); n != 3 {
		t.Errorf("expected 3 queries and no 4th, got %d", n)
	}
	if want := "share card still processing after 3 attempts. Status: PROCESSING"; out.String() != want {
		t.Errorf("message = %q", out.String())
	}
}

func TestShareCardPoll_CompletesAfterKInProgress(t *testing.T) {
	const max = 5
	for k := 0; k < max; k++ {
		api := newFakeShareCardAPI()
		for i := 0; i < k; i++ {
			s := model.JobStatusPending
			if i%2 == 1 {
				s = model.JobStatusProcessing
			}
			api.statuses = append(api.statuses, model.ShareCardStatus{Status: s})
		}
		api.statuses = append(api.statuses, model.ShareCardStatus{Status: model.JobStatusCompleted, CardURL: "u"})
		uc, _, _ := newShareCardUC(api, config.PollConfig{})

		out, err := uc.Poll(context.Background(), model.JobHandle{MovieID: "1", JobID: "j"}, max)
		if err != nil {
			t.Fatalf("k=%d: %v", k, err)
		}
		if out.Kind != model.OutcomeCompleted {
			t.Errorf("k=%d: outcome %+v", k, out)
		}
		if n := len(api.queryTimes()); n != k+1 {
			t.Errorf("k=%d: %d queries, want %d", k, n, k+1)
		}
	}
}

func TestShareCardPoll_UnknownStatusStops(t *testing.T) {
	api := newFakeShareCardAPI()
	api.statuses = statuses(model.JobStatusPending, "FAILED", model.JobStatusCompleted)
	uc, _, _ := newShareCardUC(api, config.PollConfig{})

	out, err := uc.Poll(context.Background(), model.JobHandle{MovieID: "1", JobID: "j"}, 10)
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if out.Kind != model.OutcomeUnknown || out.Status != "FAILED" || out.Attempts != 2 {
		t.Errorf("unexpected outcome: %+v", out)
	}
	if n := len(api.queryTimes()); n != 2 {
		t.Errorf("expected polling to stop at the unknown status, got %d queries", n)
	}
}

func TestShareCardPoll_QueryErrorHalts(t *testing.T) {
	api := newFakeShareCardAPI()
	api.statuses = statuses(model.JobStatusPending, model.JobStatusPending, model.JobStatusCompleted)
	api.failAt = 2
	api.queryErr = &model.APIError{StatusCode: 500, Status: "Internal Server Error", Parsed: true}
	uc, _, _ := newShareCardUC(api, config.PollConfig{})

	out, err := uc.Poll(context.Background(), model.JobHandle{MovieID: "1", JobID: "j"}, 10)
	var pollErr *model.PollError
	if !errors.As(err, &pollErr) {
		t.Fatalf("expected PollError, got %v", err)
	}
	if pollErr.Attempt != 2 || pollErr.JobID != "j" {
		t.Errorf("unexpected poll error: %+v", pollErr)
	}
	if err.Error() != "HTTP 500: Internal Server Error" {
		t.Errorf("message = %q", err.Error())
	}
	if out.Kind != model.OutcomeFailed {
		t.Errorf("outcome = %+v", out)
	}
	if n := len(api.queryTimes()); n != 2 {
		t.Errorf("expected no query after the failure, got %d", n)
	}
}

func TestShareCardPoll_DefaultMaxAttempts(t *testing.T) {
	api := newFakeShareCardAPI()
	api.statuses = statuses(model.JobStatusPending)
	uc, _, _ := newShareCardUC(api, config.PollConfig{})

	out, err := uc.Poll(context.Background(), model.JobHandle{MovieID: "1", JobID: "j"}, -1)
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if out.Kind != model.OutcomeTimedOut || len(api.queryTimes()) != config.DefaultMaxAttempts {
		t.Errorf("expected %d queries, got %d (%+v)", config.DefaultMaxAttempts, len(api.queryTimes()), out)
	}
	if got := api.clock.waited(); got != time.Duration(config.DefaultMaxAttempts-1)*config.DefaultPollInterval {
		t.Errorf("waited %v in total", got)
	}
}

func TestShareCardSubmit_Error(t *testing.T) {
	api := newFakeShareCardAPI()
	api.submitErr = &model.APIError{StatusCode: 404, Status: "Not Found", Detail: "Movie not found", Parsed: true}
	uc, _, _ := newShareCardUC(api, config.PollConfig{})

	_, err := uc.Submit(context.Background(), "999")
	var subErr *model.SubmissionError
	if !errors.As(err, &subErr) {
		t.Fatalf("expected SubmissionError, got %v", err)
	}
	if err.Error() != "Movie not found" || subErr.MovieID != "999" {
		t.Errorf("unexpected error: %v (%+v)", err, subErr)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		t.Error("a 404 submission should match ErrNotFound")
	}
}

func TestShareCardStart_RecordsHistoryAndNotifies(t *testing.T) {
	api := newFakeShareCardAPI()
	api.statuses = []model.ShareCardStatus{
		{Status: model.JobStatusPending},
		{Status: model.JobStatusCompleted, CardURL: "https://x/y.png"},
	}
	uc, jobs, notifier := newShareCardUC(api, config.PollConfig{})
	ctx := context.Background()

	s, err := uc.Start(ctx, "42", 0)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	out, err := s.Wait(ctx)
	if err != nil {
		t.Fatalf("session error: %v", err)
	}
	if out.Kind != model.OutcomeCompleted {
		t.Fatalf("outcome = %+v", out)
	}
	h := s.Handle()
	if h.JobID != "abc123" || h.MovieID != "42" {
		t.Errorf("handle = %+v", h)
	}

	job, err := jobs.FindByID(ctx, nil, "42", "abc123")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if job.Outcome != model.OutcomeCompleted || job.CardURL != "https://x/y.png" || job.Attempts != 2 {
		t.Errorf("history = %+v", job)
	}

	got := notifier.all()
	if len(got) != 1 || got[0].outcome.Kind != model.OutcomeCompleted || got[0].handle != h {
		t.Errorf("notifications = %+v", got)
	}
}

func TestShareCardStart_SubmissionFailure(t *testing.T) {
	api := newFakeShareCardAPI()
	api.submitErr = errors.New("connection refused")
	uc, _, notifier := newShareCardUC(api, config.PollConfig{})

	s, err := uc.Start(context.Background(), "42", 0)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	out, err := s.Wait(context.Background())
	var subErr *model.SubmissionError
	if !errors.As(err, &subErr) || out.Kind != model.OutcomeFailed {
		t.Fatalf("expected a failed submission, got %+v, %v", out, err)
	}
	if len(api.queryTimes()) != 0 {
		t.Error("nothing should be polled after a failed submission")
	}
	if n := notifier.all(); len(n) != 1 || n[0].err == nil {
		t.Errorf("notifications = %+v", n)
	}
}

func TestShareCardStart_OneSessionPerMovie(t *testing.T) {
	api := newFakeShareCardAPI()
	api.setBlock(true)
	uc, jobs, _ := newShareCardUC(api, config.PollConfig{})
	ctx := context.Background()

	first, err := uc.Start(ctx, "42", 0)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := uc.Start(ctx, "42", 0); !errors.Is(err, domain.ErrSessionActive) {
		t.Fatalf("expected ErrSessionActive, got %v", err)
	}
	if api.submissions() != 1 {
		t.Errorf("refused trigger must not submit, got %d submissions", api.submissions())
	}

	api.waitBlocked(t)
	first.Cancel()
	out, err := first.Wait(ctx)
	if !errors.Is(err, domain.ErrSessionCancelled) || out.Kind != model.OutcomeCancelled {
		t.Fatalf("expected a cancelled session, got %+v, %v", out, err)
	}
	job, ferr := jobs.FindByID(ctx, nil, "42", "abc123")
	if ferr != nil || job.Outcome != model.OutcomeCancelled {
		t.Errorf("cancelled job history = %+v, %v", job, ferr)
	}

	api.setBlock(false)
	api.setStatuses(statuses(model.JobStatusCompleted))
	second, err := uc.Start(ctx, "42", 0)
	if err != nil {
		t.Fatalf("start after cancel: %v", err)
	}
	if out, err := second.Wait(ctx); err != nil || out.Kind != model.OutcomeCompleted {
		t.Errorf("second session = %+v, %v", out, err)
	}
}

func TestShareCardRecheck_DoesNotResubmit(t *testing.T) {
	api := newFakeShareCardAPI()
	api.statuses = []model.ShareCardStatus{{Status: model.JobStatusCompleted, CardURL: "https://x/late.png"}}
	uc, jobs, _ := newShareCardUC(api, config.PollConfig{})
	ctx := context.Background()

	h := model.JobHandle{MovieID: "7", JobID: "old"}
	prev := model.NewShareCardJob(h)
	prev.Apply(model.TimedOut(model.JobStatusProcessing, 10), nil)
	if err := jobs.Save(ctx, nil, prev); err != nil {
		t.Fatalf("seed: %v", err)
	}

	s, err := uc.Recheck(ctx, h, 0)
	if err != nil {
		t.Fatalf("recheck: %v", err)
	}
	out, err := s.Wait(ctx)
	if err != nil || out.Kind != model.OutcomeCompleted {
		t.Fatalf("recheck outcome = %+v, %v", out, err)
	}
	if api.submissions() != 0 {
		t.Errorf("recheck submitted %d new jobs", api.submissions())
	}
	job, _ := jobs.FindByID(ctx, nil, "7", "old")
	if job.Outcome != model.OutcomeCompleted || job.Attempts != 11 || job.CardURL != "https://x/late.png" {
		t.Errorf("history = %+v", job)
	}

	if _, err := uc.Recheck(ctx, model.JobHandle{MovieID: "7"}, 0); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for a missing job id, got %v", err)
	}
}

func TestShareCardStart_OnPool(t *testing.T) {
	pool := worker.NewPool(2, newTestLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)
	defer pool.Stop()

	api := newFakeShareCardAPI()
	api.statuses = statuses(model.JobStatusCompleted)
	uc := NewShareCardUseCase(api, memory.NewShareCardJobRepo(), memory.NewSessionRegistry(), pool, config.PollConfig{}, newTestLogger())
	uc.SetClock(api.clock)

	var sessions []*PollSession
	for _, id := range []model.ID{"1", "2", "3"} {
		s, err := uc.Start(ctx, id, 0)
		if err != nil {
			t.Fatalf("start %s: %v", id, err)
		}
		sessions = append(sessions, s)
	}
	for _, s := range sessions {
		wctx, wcancel := context.WithTimeout(ctx, 5*time.Second)
		out, err := s.Wait(wctx)
		wcancel()
		if err != nil || out.Kind != model.OutcomeCompleted {
			t.Errorf("movie %s: %+v, %v", s.MovieID, out, err)
		}
	}
}
