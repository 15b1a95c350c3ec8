package repository

import (
	"context"

	"composite-client/internal/domain/model"
)

// ShareCardJobRepository keeps the client-side history of share card jobs.
type ShareCardJobRepository interface {
	// Save inserts or updates the job keyed by (movie id, job id).
	Save(ctx context.Context, tx Tx, job *model.ShareCardJob) error
	FindByID(ctx context.Context, tx Tx, movieID, jobID model.ID) (*model.ShareCardJob, error)
	// ListByOutcome returns up to limit jobs with the given outcome, oldest update first.
	ListByOutcome(ctx context.Context, tx Tx, outcome model.OutcomeKind, limit int) ([]*model.ShareCardJob, error)
}
