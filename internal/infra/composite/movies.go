package composite

import (
	"context"
	"encoding/json"
	"net/http"

	"composite-client/internal/domain/model"
)

func (c *Client) ListMovies(ctx context.Context, page, pageSize int) (*model.Page[model.Movie], error) {
	var raw json.RawMessage
	q := pageQuery(page, pageSize)
	if err := c.do(ctx, call{op: "list_movies", method: http.MethodGet, path: "/movies", query: q}, &raw); err != nil {
		return nil, err
	}
	return model.DecodePage[model.Movie](raw, page, pageSize)
}

func (c *Client) GetMovie(ctx context.Context, id model.ID) (*model.Movie, error) {
	p, err := path("/movies/%s", id)
	if err != nil {
		return nil, err
	}
	var out model.Movie
	if err := c.do(ctx, call{op: "get_movie", method: http.MethodGet, path: p}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetMovieDetails(ctx context.Context, id model.ID) (*model.MovieDetails, error) {
	p, err := path("/movie-details/%s", id)
	if err != nil {
		return nil, err
	}
	var out model.MovieDetails
	if err := c.do(ctx, call{op: "get_movie_details", method: http.MethodGet, path: p}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
