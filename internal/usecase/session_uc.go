// File: internal/usecase/session_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"composite-client/internal/domain"
	"composite-client/internal/domain/model"
	"composite-client/internal/domain/ports/adapter"
	"composite-client/internal/domain/ports/repository"
	"composite-client/internal/infra/auth"
	"composite-client/internal/infra/logging"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ SessionUseCase = (*sessionUC)(nil)

// SessionUseCase owns the credential lifecycle: it is set by a login or a Google
// callback and cleared by logout or account deletion.
type SessionUseCase interface {
	Login(ctx context.Context, email, password string) (*model.Credential, error)
	GoogleLoginURL(ctx context.Context) (*model.GoogleAuth, error)
	// CompleteGoogleLogin consumes the query of the OAuth redirect back to the client.
	CompleteGoogleLogin(ctx context.Context, query url.Values) (*model.Credential, error)
	Logout(ctx context.Context) error
	// Current returns the stored credential or domain.ErrNotAuthenticated.
	Current(ctx context.Context) (*model.Credential, error)
	// Require is Current plus the user id the token belongs to.
	Require(ctx context.Context) (*model.Credential, model.ID, error)
	// Clear drops the credential without talking to the backend.
	Clear(ctx context.Context) error
}

type sessionUC struct {
	api   adapter.AuthAPI
	store repository.CredentialStore
	now   func() time.Time
	log   *zerolog.Logger
}

func NewSessionUseCase(api adapter.AuthAPI, store repository.CredentialStore, logger *zerolog.Logger) *sessionUC {
	l := logger.With().Str("component", "Session").Logger()
	return &sessionUC{api: api, store: store, now: time.Now, log: &l}
}

func (uc *sessionUC) Login(ctx context.Context, email, password string) (*model.Credential, error) {
	in := model.Login{Email: strings.TrimSpace(email), Password: password}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	res, err := uc.api.Login(ctx, in)
	if err != nil {
		return nil, err
	}
	if res.AccessToken == "" {
		return nil, domain.ErrNoTokenInResponse
	}
	return uc.establish(ctx, res.AccessToken, "")
}

func (uc *sessionUC) GoogleLoginURL(ctx context.Context) (*model.GoogleAuth, error) {
	ga, err := uc.api.GoogleAuthURL(ctx)
	if err != nil {
		return nil, err
	}
	if ga.AuthURL == "" {
		return nil, fmt.Errorf("%w: backend returned no auth_url", domain.ErrGoogleLoginFailed)
	}
	return ga, nil
}

func (uc *sessionUC) CompleteGoogleLogin(ctx context.Context, query url.Values) (*model.Credential, error) {
	switch query.Get("google_auth") {
	case "success":
		token := query.Get("access_token")
		if token == "" {
			return nil, fmt.Errorf("%w: no access token received", domain.ErrGoogleLoginFailed)
		}
		return uc.establish(ctx, token, query.Get("google_token"))
	case "error":
		msg := query.Get("error")
		if msg == "" {
			msg = "unknown error"
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrGoogleLoginFailed, msg)
	}
	return nil, fmt.Errorf("%w: not a google login callback", domain.ErrInvalidArgument)
}

// establish stores a fresh credential. A token without a recognisable user id
// is still stored; calls that need the id fail later with ErrNoUserInToken.
func (uc *sessionUC) establish(ctx context.Context, accessToken, googleToken string) (*model.Credential, error) {
	cred := &model.Credential{AccessToken: accessToken, GoogleToken: googleToken, IssuedAt: uc.now()}
	if id, err := auth.UserID(accessToken); err == nil {
		cred.UserID = id
	} else {
		uc.log.Debug().Err(err).Msg("access token carries no user id")
	}
	if err := uc.store.Save(ctx, cred); err != nil {
		return nil, fmt.Errorf("save credential: %w", err)
	}
	log := logging.With(logging.WithUserID(ctx, cred.UserID.String()), uc.log)
	log.Info().
		Str("token", logging.Redact(accessToken, false)).
		Bool("google", cred.HasGoogle()).
		Msg("logged in")
	return cred, nil
}

func (uc *sessionUC) Logout(ctx context.Context) error {
	cred, err := uc.store.Load(ctx)
	if err != nil && !errors.Is(err, domain.ErrNotAuthenticated) {
		return err
	}
	if cred.HasGoogle() {
		// revocation is best effort; the local session ends regardless
		if rerr := uc.api.RevokeGoogle(ctx, cred); rerr != nil {
			uc.log.Warn().Err(rerr).Msg("failed to revoke google token")
		}
	}
	return uc.store.Clear(ctx)
}

func (uc *sessionUC) Current(ctx context.Context) (*model.Credential, error) {
	cred, err := uc.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if !cred.Valid() {
		return nil, domain.ErrNotAuthenticated
	}
	if c, err := auth.Inspect(cred.AccessToken); err == nil && c.Expired(uc.now()) {
		uc.log.Warn().Time("expired_at", c.ExpiresAt).Msg("stored access token has expired")
	}
	return cred, nil
}

func (uc *sessionUC) Require(ctx context.Context) (*model.Credential, model.ID, error) {
	cred, err := uc.Current(ctx)
	if err != nil {
		return nil, "", err
	}
	if cred.UserID != "" {
		return cred, cred.UserID, nil
	}
	id, err := auth.UserID(cred.AccessToken)
	if err != nil {
		return nil, "", err
	}
	return cred, id, nil
}

func (uc *sessionUC) Clear(ctx context.Context) error { return uc.store.Clear(ctx) }
