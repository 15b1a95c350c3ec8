package composite

import (
	"context"
	"net/http"

	"composite-client/internal/domain"
	"composite-client/internal/domain/model"
)

// GenerateShareCard submits a share card job for the movie.
func (c *Client) GenerateShareCard(ctx context.Context, movieID model.ID) (model.JobHandle, error) {
	p, err := path("/movies/%s/generate-share-card", movieID)
	if err != nil {
		return model.JobHandle{}, err
	}
	var out struct {
		JobID model.ID `json:"job_id"`
	}
	if err := c.do(ctx, call{op: "generate_share_card", method: http.MethodPost, path: p}, &out); err != nil {
		return model.JobHandle{}, err
	}
	if out.JobID == "" {
		return model.JobHandle{}, domain.ErrNoJobID
	}
	return model.JobHandle{MovieID: movieID, JobID: out.JobID}, nil
}

// GetShareCardJob queries the current status of a share card job.
func (c *Client) GetShareCardJob(ctx context.Context, movieID, jobID model.ID) (model.ShareCardStatus, error) {
	p, err := path("/movies/%s/share-card-jobs/%s", movieID, jobID)
	if err != nil {
		return model.ShareCardStatus{}, err
	}
	var out model.ShareCardStatus
	if err := c.do(ctx, call{op: "get_share_card_job", method: http.MethodGet, path: p}, &out); err != nil {
		return model.ShareCardStatus{}, err
	}
	return out, nil
}
