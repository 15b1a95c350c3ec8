package repository

import (
	"context"

	"composite-client/internal/domain/model"
)

// CredentialStore persists the session credential between invocations.
// Load returns domain.ErrNotAuthenticated when nothing is stored.
type CredentialStore interface {
	Load(ctx context.Context) (*model.Credential, error)
	Save(ctx context.Context, cred *model.Credential) error
	Clear(ctx context.Context) error
}
