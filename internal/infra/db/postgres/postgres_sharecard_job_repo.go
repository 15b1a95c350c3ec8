package postgres

import (
	"context"
	"fmt"
	"time"

	"composite-client/internal/domain"
	"composite-client/internal/domain/model"
	"composite-client/internal/domain/ports/repository"

	"github.com/jackc/pgx/v4/pgxpool"
)

var _ repository.ShareCardJobRepository = (*shareCardJobRepo)(nil)

type shareCardJobRepo struct {
	pool *pgxpool.Pool
}

func NewShareCardJobRepo(pool *pgxpool.Pool) *shareCardJobRepo {
	return &shareCardJobRepo{pool: pool}
}

const shareCardJobColumns = `movie_id, job_id, status, outcome, card_url, attempts, last_error, created_at, updated_at`

func (r *shareCardJobRepo) Save(ctx context.Context, tx repository.Tx, job *model.ShareCardJob) error {
	if job == nil || job.MovieID == "" || job.JobID == "" {
		return domain.ErrInvalidArgument
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	if job.UpdatedAt.IsZero() {
		job.UpdatedAt = job.CreatedAt
	}

	const q = `
INSERT INTO share_card_jobs (` + shareCardJobColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (movie_id, job_id) DO UPDATE SET
  status = EXCLUDED.status,
  outcome = EXCLUDED.outcome,
  card_url = EXCLUDED.card_url,
  attempts = EXCLUDED.attempts,
  last_error = EXCLUDED.last_error,
  updated_at = EXCLUDED.updated_at;`

	db, err := on(r.pool, tx)
	if err != nil {
		return err
	}
	if _, err := db.Exec(ctx, q,
		job.MovieID.String(), job.JobID.String(), string(job.Status), string(job.Outcome),
		job.CardURL, job.Attempts, job.LastError, job.CreatedAt, job.UpdatedAt); err != nil {
		return fmt.Errorf("save share card job %s/%s: %w", job.MovieID, job.JobID, err)
	}
	return nil
}

func (r *shareCardJobRepo) FindByID(ctx context.Context, tx repository.Tx, movieID, jobID model.ID) (*model.ShareCardJob, error) {
	const q = `SELECT ` + shareCardJobColumns + ` FROM share_card_jobs WHERE movie_id = $1 AND job_id = $2;`
	db, err := on(r.pool, tx)
	if err != nil {
		return nil, err
	}
	job, err := scanShareCardJob(db.QueryRow(ctx, q, movieID.String(), jobID.String()))
	if err != nil {
		return nil, notFound(err)
	}
	return job, nil
}

func (r *shareCardJobRepo) ListByOutcome(ctx context.Context, tx repository.Tx, outcome model.OutcomeKind, limit int) ([]*model.ShareCardJob, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `SELECT ` + shareCardJobColumns + ` FROM share_card_jobs
WHERE outcome = $1
ORDER BY updated_at
LIMIT $2;`
	db, err := on(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(ctx, q, string(outcome), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.ShareCardJob
	for rows.Next() {
		job, err := scanShareCardJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanShareCardJob(s scanner) (*model.ShareCardJob, error) {
	var (
		j               model.ShareCardJob
		movieID, jobID  string
		status, outcome string
	)
	if err := s.Scan(&movieID, &jobID, &status, &outcome, &j.CardURL, &j.Attempts, &j.LastError, &j.CreatedAt, &j.UpdatedAt); err != nil {
		return nil, err
	}
	j.MovieID = model.ID(movieID)
	j.JobID = model.ID(jobID)
	j.Status = model.JobStatus(status)
	j.Outcome = model.OutcomeKind(outcome)
	return &j, nil
}
