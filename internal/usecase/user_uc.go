package usecase

import (
	"context"
	"strings"

	"composite-client/internal/domain/model"
	"composite-client/internal/domain/ports/adapter"
	"composite-client/internal/infra/logging"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ UserUseCase = (*userUC)(nil)

// UserUseCase exposes the account operations of the signed-in user.
type UserUseCase interface {
	Register(ctx context.Context, r model.Registration) (*model.User, error)
	Profile(ctx context.Context) (*model.User, error)
	Update(ctx context.Context, patch model.UserPatch) (*model.User, error)
	// DeleteAccount removes the account and ends the session.
	DeleteAccount(ctx context.Context) error
}

type userUC struct {
	users   adapter.UserAPI
	session SessionUseCase
	log     *zerolog.Logger
}

func NewUserUseCase(users adapter.UserAPI, session SessionUseCase, logger *zerolog.Logger) *userUC {
	return &userUC{
		users:   users,
		session: session,
		log:     logger,
	}
}

func (u *userUC) Register(ctx context.Context, r model.Registration) (*model.User, error) {
	defer logging.TraceDuration(u.log, "UserUC.Register")()

	r.Email = strings.TrimSpace(r.Email)
	r.Username = strings.TrimSpace(r.Username)
	r.FullName = strings.TrimSpace(r.FullName)
	if err := validateInput(r); err != nil {
		return nil, err
	}
	user, err := u.users.Register(ctx, r)
	if err != nil {
		return nil, err
	}
	u.log.Info().Str("user_id", user.ID.String()).Msg("user registered")
	return user, nil
}

func (u *userUC) Profile(ctx context.Context) (*model.User, error) {
	cred, id, err := u.session.Require(ctx)
	if err != nil {
		return nil, err
	}
	return u.users.GetUser(ctx, cred, id)
}

func (u *userUC) Update(ctx context.Context, patch model.UserPatch) (*model.User, error) {
	patch.FullName = strings.TrimSpace(patch.FullName)
	patch.Email = strings.TrimSpace(patch.Email)
	if err := validateInput(patch); err != nil {
		return nil, err
	}
	cred, id, err := u.session.Require(ctx)
	if err != nil {
		return nil, err
	}
	return u.users.UpdateUser(ctx, cred, id, patch)
}

func (u *userUC) DeleteAccount(ctx context.Context) error {
	cred, id, err := u.session.Require(ctx)
	if err != nil {
		return err
	}
	if err := u.users.DeleteUser(ctx, cred, id); err != nil {
		return err
	}
	u.log.Info().Str("user_id", id.String()).Msg("account deleted")
	return u.session.Clear(ctx)
}
