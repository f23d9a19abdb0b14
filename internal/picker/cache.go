package picker

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/glefebvre/mediadesk/internal/models"
)

// Source is the part of the media server API the pickers use.
// *mediaserver.Client satisfies it.
type Source interface {
	SearchMovies(ctx context.Context, query string) ([]models.Movie, error)
	SearchTV(ctx context.Context, query string) ([]models.TvShow, error)
	ListCollections(ctx context.Context, restrict int) ([]models.Collection, error)
	CreateCollection(ctx context.Context, in models.NewCollection) error
}

// cachedSource memoises search results per (kind, query)
type cachedSource struct {
	Source
	results *cache.Cache
}

// WithSearchCache wraps src so repeated searches within ttl are answered
// from memory. Failed searches are not cached. A ttl <= 0 disables caching.
func WithSearchCache(src Source, ttl time.Duration) Source {
	if ttl <= 0 {
		return src
	}
	return &cachedSource{
		Source:  src,
		results: cache.New(ttl, 2*ttl),
	}
}

func (c *cachedSource) SearchMovies(ctx context.Context, query string) ([]models.Movie, error) {
	key := "movie:" + query
	if v, ok := c.results.Get(key); ok {
		return v.([]models.Movie), nil
	}
	movies, err := c.Source.SearchMovies(ctx, query)
	if err != nil {
		return nil, err
	}
	c.results.Set(key, movies, cache.DefaultExpiration)
	return movies, nil
}

func (c *cachedSource) SearchTV(ctx context.Context, query string) ([]models.TvShow, error) {
	key := "tv:" + query
	if v, ok := c.results.Get(key); ok {
		return v.([]models.TvShow), nil
	}
	shows, err := c.Source.SearchTV(ctx, query)
	if err != nil {
		return nil, err
	}
	c.results.Set(key, shows, cache.DefaultExpiration)
	return shows, nil
}
