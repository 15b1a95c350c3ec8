package composite

import (
	"context"
	"net/http"

	"composite-client/internal/domain/model"
)

func (c *Client) Login(ctx context.Context, l model.Login) (*model.LoginResult, error) {
	var out model.LoginResult
	if err := c.do(ctx, call{op: "login", method: http.MethodPost, path: "/sessions", body: l}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GoogleAuthURL(ctx context.Context) (*model.GoogleAuth, error) {
	var out model.GoogleAuth
	if err := c.do(ctx, call{op: "google_auth_url", method: http.MethodGet, path: "/auth/google/url"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RevokeGoogle asks the backend to revoke the Google token held by cred.
func (c *Client) RevokeGoogle(ctx context.Context, cred *model.Credential) error {
	body := map[string]string{"google_token": cred.GoogleToken}
	return c.do(ctx, call{op: "google_logout", method: http.MethodPost, path: "/auth/google/logout", cred: cred, body: body}, nil)
}
