package usecase

import (
	"context"

	"composite-client/internal/config"
	"composite-client/internal/domain/model"
	"composite-client/internal/domain/ports/adapter"
)

// Compile-time check
var _ CatalogUseCase = (*catalogUC)(nil)

// CatalogUseCase is the read side of movies and reviews. Page sizes of zero
// fall back to the configured defaults.
type CatalogUseCase interface {
	Movies(ctx context.Context, page, pageSize int) (*model.Page[model.Movie], error)
	Movie(ctx context.Context, id model.ID) (*model.Movie, error)
	MovieDetails(ctx context.Context, id model.ID) (*model.MovieDetails, error)
	Reviews(ctx context.Context, page, pageSize int) (*model.Page[model.Review], error)
	Review(ctx context.Context, id model.ID) (*model.Review, error)
	DeleteReview(ctx context.Context, id model.ID) error
}

type catalogUC struct {
	movies  adapter.MovieAPI
	reviews adapter.ReviewAPI
	paging  config.PagingConfig
}

func NewCatalogUseCase(movies adapter.MovieAPI, reviews adapter.ReviewAPI, paging config.PagingConfig) *catalogUC {
	if paging.Movies <= 0 {
		paging.Movies = config.DefaultMoviesPageSize
	}
	if paging.Reviews <= 0 {
		paging.Reviews = config.DefaultReviewsPageSize
	}
	return &catalogUC{movies: movies, reviews: reviews, paging: paging}
}

func normalizePage(page, size, def int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = def
	}
	return page, size
}

func (c *catalogUC) Movies(ctx context.Context, page, pageSize int) (*model.Page[model.Movie], error) {
	page, pageSize = normalizePage(page, pageSize, c.paging.Movies)
	return c.movies.ListMovies(ctx, page, pageSize)
}

func (c *catalogUC) Movie(ctx context.Context, id model.ID) (*model.Movie, error) {
	return c.movies.GetMovie(ctx, id)
}

func (c *catalogUC) MovieDetails(ctx context.Context, id model.ID) (*model.MovieDetails, error) {
	return c.movies.GetMovieDetails(ctx, id)
}

func (c *catalogUC) Reviews(ctx context.Context, page, pageSize int) (*model.Page[model.Review], error) {
	page, pageSize = normalizePage(page, pageSize, c.paging.Reviews)
	return c.reviews.ListReviews(ctx, page, pageSize)
}

func (c *catalogUC) Review(ctx context.Context, id model.ID) (*model.Review, error) {
	return c.reviews.GetReview(ctx, id)
}

func (c *catalogUC) DeleteReview(ctx context.Context, id model.ID) error {
	return c.reviews.DeleteReview(ctx, id)
}
