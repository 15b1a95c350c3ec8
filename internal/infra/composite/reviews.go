package composite

import (
	"context"
	"encoding/json"
	"net/http"

	"composite-client/internal/domain/model"
)

func (c *Client) ListReviews(ctx context.Context, page, pageSize int) (*model.Page[model.Review], error) {
	var raw json.RawMessage
	q := pageQuery(page, pageSize)
	if err := c.do(ctx, call{op: "list_reviews", method: http.MethodGet, path: "/reviews", query: q}, &raw); err != nil {
		return nil, err
	}
	return model.DecodePage[model.Review](raw, page, pageSize)
}

func (c *Client) GetReview(ctx context.Context, id model.ID) (*model.Review, error) {
	p, err := path("/reviews/%s", id)
	if err != nil {
		return nil, err
	}
	var out model.Review
	if err := c.do(ctx, call{op: "get_review", method: http.MethodGet, path: p}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteReview(ctx context.Context, id model.ID) error {
	p, err := path("/reviews/%s", id)
	if err != nil {
		return err
	}
	return c.do(ctx, call{op: "delete_review", method: http.MethodDelete, path: p}, nil)
}

func (c *Client) CreateReview(ctx context.Context, cred *model.Credential, r model.NewReview) (*model.Review, error) {
	var out model.Review
	cl := call{op: "create_review", method: http.MethodPost, path: "/reviews", cred: cred, body: r}
	if err := c.do(ctx, cl, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
