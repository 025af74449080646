package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"lanprime/pkg/tmdb"
)

// CatalogService proxies TMDB with a short-lived Redis cache in front. The
// cache is best-effort: Redis being down only costs upstream calls.
type CatalogService struct {
	tmdb  *tmdb.Client
	cache *redis.Client // nil disables caching
	ttl   time.Duration
}

func NewCatalogService(client *tmdb.Client, cache *redis.Client, ttl time.Duration) *CatalogService {
	return &CatalogService{tmdb: client, cache: cache, ttl: ttl}
}

func (s *CatalogService) cached(ctx context.Context, key string, fetch func() (json.RawMessage, error)) (json.RawMessage, error) {
	if s.cache != nil {
		if val, err := s.cache.Get(ctx, key).Bytes(); err == nil {
			return val, nil
		}
	}
	data, err := fetch()
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, []byte(data), s.ttl).Err(); err != nil {
			log.Printf("[CATALOG] cache set %s: %v", key, err)
		}
	}
	return data, nil
}

func (s *CatalogService) Trending(ctx context.Context, mediaType string, page int) (json.RawMessage, error) {
	key := fmt.Sprintf("tmdb:trending:%s:%d", mediaType, page)
	return s.cached(ctx, key, func() (json.RawMessage, error) {
		return s.tmdb.Trending(ctx, mediaType, page)
	})
}

func (s *CatalogService) DiscoverMovies(ctx context.Context, page int) (json.RawMessage, error) {
	key := fmt.Sprintf("tmdb:discover:movie:%d", page)
	return s.cached(ctx, key, func() (json.RawMessage, error) {
		return s.tmdb.DiscoverMovies(ctx, page)
	})
}

func (s *CatalogService) MovieDetails(ctx context.Context, movieID int) (json.RawMessage, error) {
	key := fmt.Sprintf("tmdb:movie:%d", movieID)
	return s.cached(ctx, key, func() (json.RawMessage, error) {
		return s.tmdb.MovieDetails(ctx, movieID)
	})
}

// SearchMovies is not cached; query strings are too diverse to be worth it.
func (s *CatalogService) SearchMovies(ctx context.Context, query string, page int) (json.RawMessage, error) {
	return s.tmdb.SearchMovies(ctx, query, page)
}
