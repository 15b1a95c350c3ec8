package composite

import (
	"context"
	"net/http"

	"composite-client/internal/domain/model"
)

func (c *Client) Register(ctx context.Context, r model.Registration) (*model.User, error) {
	var out model.User
	if err := c.do(ctx, call{op: "register", method: http.MethodPost, path: "/users", body: r}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetUser(ctx context.Context, cred *model.Credential, id model.ID) (*model.User, error) {
	p, err := path("/users/%s", id)
	if err != nil {
		return nil, err
	}
	var out model.User
	if err := c.do(ctx, call{op: "get_user", method: http.MethodGet, path: p, cred: cred}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateUser(ctx context.Context, cred *model.Credential, id model.ID, patch model.UserPatch) (*model.User, error) {
	p, err := path("/users/%s", id)
	if err != nil {
		return nil, err
	}
	var out model.User
	cl := call{op: "update_user", method: http.MethodPatch, path: p, cred: cred, body: patch}
	if err := c.do(ctx, cl, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteUser removes the account; any 2xx (including 204) is success.
func (c *Client) DeleteUser(ctx context.Context, cred *model.Credential, id model.ID) error {
	p, err := path("/users/%s", id)
	if err != nil {
		return err
	}
	return c.do(ctx, call{op: "delete_user", method: http.MethodDelete, path: p, cred: cred}, nil)
}
