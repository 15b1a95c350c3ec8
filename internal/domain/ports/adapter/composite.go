package adapter

import (
	"context"

	"composite-client/internal/domain/model"
)

// ShareCardAPI is the backend side of the async share card job protocol.
type ShareCardAPI interface {
	GenerateShareCard(ctx context.Context, movieID model.ID) (model.JobHandle, error)
	GetShareCardJob(ctx context.Context, movieID, jobID model.ID) (model.ShareCardStatus, error)
}

type MovieAPI interface {
	ListMovies(ctx context.Context, page, pageSize int) (*model.Page[model.Movie], error)
	GetMovie(ctx context.Context, id model.ID) (*model.Movie, error)
	GetMovieDetails(ctx context.Context, id model.ID) (*model.MovieDetails, error)
}

type ReviewAPI interface {
	ListReviews(ctx context.Context, page, pageSize int) (*model.Page[model.Review], error)
	GetReview(ctx context.Context, id model.ID) (*model.Review, error)
	DeleteReview(ctx context.Context, id model.ID) error
	CreateReview(ctx context.Context, cred *model.Credential, r model.NewReview) (*model.Review, error)
}

type UserAPI interface {
	Register(ctx context.Context, r model.Registration) (*model.User, error)
	GetUser(ctx context.Context, cred *model.Credential, id model.ID) (*model.User, error)
	UpdateUser(ctx context.Context, cred *model.Credential, id model.ID, patch model.UserPatch) (*model.User, error)
	DeleteUser(ctx context.Context, cred *model.Credential, id model.ID) error
}

type AuthAPI interface {
	Login(ctx context.Context, l model.Login) (*model.LoginResult, error)
	GoogleAuthURL(ctx context.Context) (*model.GoogleAuth, error)
	RevokeGoogle(ctx context.Context, cred *model.Credential) error
}

type HealthAPI interface {
	Health(ctx context.Context) (*model.Health, error)
}

// CompositeAPI is the full composite service surface.
type CompositeAPI interface {
	ShareCardAPI
	MovieAPI
	ReviewAPI
	UserAPI
	AuthAPI
	HealthAPI
}
