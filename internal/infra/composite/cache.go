package composite

import (
	"context"
	"time"

	"composite-client/internal/config"
	"composite-client/internal/domain/model"
	"composite-client/internal/domain/ports/adapter"
	"composite-client/internal/infra/metrics"

	"github.com/dgraph-io/ristretto/v2"
)

var _ adapter.MovieAPI = (*movieCacheDecorator)(nil)

// movieCacheDecorator is a read-through cache for single movie lookups. Listings
// and details are always fetched fresh since they carry reviews.
type movieCacheDecorator struct {
	adapter.MovieAPI
	cache *ristretto.Cache[string, *model.Movie]
	ttl   time.Duration
}

// NewMovieCacheDecorator wraps inner with an in-process movie cache.
func NewMovieCacheDecorator(inner adapter.MovieAPI, cfg config.CacheConfig) (*movieCacheDecorator, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, *model.Movie]{
		NumCounters: cfg.MaxCost * 10,
		MaxCost:     cfg.MaxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &movieCacheDecorator{MovieAPI: inner, cache: cache, ttl: cfg.TTL}, nil
}

func (d *movieCacheDecorator) GetMovie(ctx context.Context, id model.ID) (*model.Movie, error) {
	key := "movie:" + string(id)
	if m, ok := d.cache.Get(key); ok {
		metrics.ObserveMovieCache(true)
		return m, nil
	}
	metrics.ObserveMovieCache(false)
	m, err := d.MovieAPI.GetMovie(ctx, id)
	if err != nil {
		return nil, err
	}
	d.cache.SetWithTTL(key, m, 1, d.ttl)
	d.cache.Wait()
	return m, nil
}

// Invalidate drops a cached movie.
func (d *movieCacheDecorator) Invalidate(id model.ID) { d.cache.Del("movie:" + string(id)) }

func (d *movieCacheDecorator) Close() { d.cache.Close() }
