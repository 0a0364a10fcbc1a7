package store

import (
	"context"
	"time"

	"blogapi/internal/cache"
	"blogapi/internal/models"
)

// CachedPosts decorates the mongo post operations with a short-lived
// read-through cache on single-post lookups. Mutations pass through and
// invalidate, so readers never see a stale post beyond the TTL.
type CachedPosts struct {
	*Mongo
	cache *cache.Cache
	ttl   time.Duration
}

func NewCachedPosts(m *Mongo, c *cache.Cache, ttl time.Duration) *CachedPosts {
	return &CachedPosts{Mongo: m, cache: c, ttl: ttl}
}

func postKey(id string) string { return "post:" + id }

func (s *CachedPosts) PostByID(ctx context.Context, id string) (*models.Post, error) {
	return cache.GetOrLoadJSON(s.cache, ctx, postKey(id), s.ttl, func(ctx context.Context) (*models.Post, error) {
		return s.Mongo.PostByID(ctx, id)
	})
}

func (s *CachedPosts) UpdatePost(ctx context.Context, id, title, content string) (*models.Post, error) {
	p, err := s.Mongo.UpdatePost(ctx, id, title, content)
	if err == nil {
		s.cache.Invalidate(ctx, postKey(id))
	}
	return p, err
}

func (s *CachedPosts) DeletePost(ctx context.Context, id string) (int64, error) {
	n, err := s.Mongo.DeletePost(ctx, id)
	if err == nil && n > 0 {
		s.cache.Invalidate(ctx, postKey(id))
	}
	return n, err
}

func (s *CachedPosts) LikePost(ctx context.Context, id string) (*models.Post, error) {
	p, err := s.Mongo.LikePost(ctx, id)
	if err == nil {
		s.cache.Invalidate(ctx, postKey(id))
	}
	return p, err
}
