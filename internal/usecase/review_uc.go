package usecase

import (
	"context"
	"strings"

	"composite-client/internal/domain/model"
	"composite-client/internal/domain/ports/adapter"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ ReviewUseCase = (*reviewUC)(nil)

type ReviewUseCase interface {
	// Submit posts a review as the signed-in user.
	Submit(ctx context.Context, movieID model.ID, rating int, comment string) (*model.Review, error)
}

type reviewUC struct {
	reviews adapter.ReviewAPI
	session SessionUseCase
	log     *zerolog.Logger
}

func NewReviewUseCase(reviews adapter.ReviewAPI, session SessionUseCase, logger *zerolog.Logger) *reviewUC {
	return &reviewUC{reviews: reviews, session: session, log: logger}
}

func (uc *reviewUC) Submit(ctx context.Context, movieID model.ID, rating int, comment string) (*model.Review, error) {
	cred, userID, err := uc.session.Require(ctx)
	if err != nil {
		return nil, err
	}
	in := model.NewReview{
		UserID:  userID,
		MovieID: model.ID(strings.TrimSpace(movieID.String())),
		Rating:  rating,
		Comment: strings.TrimSpace(comment),
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	r, err := uc.reviews.CreateReview(ctx, cred, in)
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("review_id", r.ID.String()).Str("movie_id", in.MovieID.String()).Msg("review submitted")
	return r, nil
}
