package model

import "time"

// Credential is the authorisation a session holds after login. It is passed
// explicitly to every authorised call.
type Credential struct {
	AccessToken string    `yaml:"access_token" json:"access_token"`
	GoogleToken string    `yaml:"google_token,omitempty" json:"google_token,omitempty"`
	UserID      ID        `yaml:"user_id,omitempty" json:"user_id,omitempty"`
	IssuedAt    time.Time `yaml:"issued_at" json:"issued_at"`
}

func (c *Credential) Valid() bool { return c != nil && c.AccessToken != "" }

// HasGoogle reports whether a Google token must be revoked on logout.
func (c *Credential) HasGoogle() bool { return c.Valid() && c.GoogleToken != "" }

// Login is the payload for POST /sessions.
type Login struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}

// GoogleAuth is the OAuth redirect the backend prepares.
type GoogleAuth struct {
	AuthURL string `json:"auth_url"`
	State   string `json:"state"`
}
