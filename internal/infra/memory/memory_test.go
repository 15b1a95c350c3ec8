package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"composite-client/internal/domain"
	"composite-client/internal/domain/model"
)

func TestSessionRegistry(t *testing.T) {
	ctx := context.Background()
	r := NewSessionRegistry()

	release, err := r.Acquire(ctx, "42")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if _, err := r.Acquire(ctx, "42"); !errors.Is(err, domain.ErrSessionActive) {
		t.Fatalf("second acquire should be refused, got %v", err)
	}
	if _, err := r.Acquire(ctx, "43"); err != nil {
		t.Fatalf("other keys are independent: %v", err)
	}
	active, _ := r.Active(ctx)
	if len(active) != 2 || active[0] != "42" || active[1] != "43" {
		t.Errorf("active = %v", active)
	}

	release()
	again, err := r.Acquire(ctx, "42")
	if err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	// a stale release must not free the new holder
	release()
	if _, err := r.Acquire(ctx, "42"); !errors.Is(err, domain.ErrSessionActive) {
		t.Fatalf("stale release freed the key: %v", err)
	}
	again()
}

func TestShareCardJobRepo(t *testing.T) {
	ctx := context.Background()
	r := NewShareCardJobRepo()

	if _, err := r.FindByID(ctx, nil, "1", "a"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	base := time.Now()
	for i, id := range []model.ID{"c", "a", "b"} {
		j := model.NewShareCardJob(model.JobHandle{MovieID: "1", JobID: id})
		j.Apply(model.TimedOut(model.JobStatusProcessing, 10), nil)
		j.UpdatedAt = base.Add(time.Duration(i) * time.Second)
		if err := r.Save(ctx, nil, j); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	done := model.NewShareCardJob(model.JobHandle{MovieID: "2", JobID: "d"})
	done.Apply(model.Completed("https://x/y.png", 1), nil)
	_ = r.Save(ctx, nil, done)

	got, err := r.ListByOutcome(ctx, nil, model.OutcomeTimedOut, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].JobID != "c" || got[1].JobID != "a" {
		t.Errorf("expected oldest timed-out jobs first, got %+v", got)
	}

	found, err := r.FindByID(ctx, nil, "2", "d")
	if err != nil || found.CardURL != "https://x/y.png" {
		t.Errorf("find: %+v, %v", found, err)
	}
	if err := r.Save(ctx, nil, &model.ShareCardJob{}); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for an empty job, got %v", err)
	}
}
