package memory

import (
	"context"
	"sort"
	"sync"

	"composite-client/internal/domain"
	"composite-client/internal/domain/model"
	"composite-client/internal/domain/ports/repository"
)

var _ repository.ShareCardJobRepository = (*ShareCardJobRepo)(nil)

// ShareCardJobRepo keeps job history for the lifetime of the process. It is used
// when no database is configured.
type ShareCardJobRepo struct {
	mu   sync.RWMutex
	jobs map[model.JobHandle]model.ShareCardJob
}

func NewShareCardJobRepo() *ShareCardJobRepo {
	return &ShareCardJobRepo{jobs: make(map[model.JobHandle]model.ShareCardJob)}
}

func key(movieID, jobID model.ID) model.JobHandle {
	return model.JobHandle{MovieID: movieID, JobID: jobID}
}

func (r *ShareCardJobRepo) Save(_ context.Context, _ repository.Tx, job *model.ShareCardJob) error {
	if job == nil || job.JobID == "" || job.MovieID == "" {
		return domain.ErrInvalidArgument
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key(job.MovieID, job.JobID)
	if prev, ok := r.jobs[k]; ok && !prev.CreatedAt.IsZero() {
		job.CreatedAt = prev.CreatedAt
	}
	r.jobs[k] = *job
	return nil
}

func (r *ShareCardJobRepo) FindByID(_ context.Context, _ repository.Tx, movieID, jobID model.ID) (*model.ShareCardJob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	j, ok := r.jobs[key(movieID, jobID)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &j, nil
}

func (r *ShareCardJobRepo) ListByOutcome(_ context.Context, _ repository.Tx, outcome model.OutcomeKind, limit int) ([]*model.ShareCardJob, error) {
	r.mu.RLock()
	out := make([]*model.ShareCardJob, 0)
	for _, j := range r.jobs {
		if j.Outcome == outcome {
			cp := j
			out = append(out, &cp)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, k int) bool { return out[i].UpdatedAt.Before(out[k].UpdatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
