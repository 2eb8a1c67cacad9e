package places

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache stores search results by key. Get reports a miss with ok=false.
type Cache interface {
	Get(ctx context.Context, key string) (places []Place, ok bool, err error)
	Set(ctx context.Context, key string, places []Place, ttl time.Duration) error
}

// CachedSearcher serves repeated queries from a Cache. Cache errors are
// logged and the underlying searcher is used instead. Failed or empty
// searches are not cached.
type CachedSearcher struct {
	next  Searcher
	cache Cache
	ttl   time.Duration
}

func NewCachedSearcher(next Searcher, cache Cache, ttl time.Duration) *CachedSearcher {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &CachedSearcher{next: next, cache: cache, ttl: ttl}
}

func (s *CachedSearcher) Search(ctx context.Context, query string, limit int) ([]Place, error) {
	key := cacheKey(query, limit)

	cached, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		slog.Warn("places cache get failed", "err", err, "key", key)
	} else if ok {
		return cached, nil
	}

	out, err := s.next.Search(ctx, query, limit)
	if err != nil || len(out) == 0 {
		return out, err
	}
	if err := s.cache.Set(ctx, key, out, s.ttl); err != nil {
		slog.Warn("places cache set failed", "err", err, "key", key)
	}
	return out, nil
}

func cacheKey(query string, limit int) string {
	return fmt.Sprintf("places:%d:%s", limit, strings.ToLower(strings.TrimSpace(query)))
}

// MemoryCache is a process-local Cache.
type MemoryCache struct {
	c *gocache.Cache
}

func NewMemoryCache(defaultTTL time.Duration) *MemoryCache {
	return &MemoryCache{c: gocache.New(defaultTTL, 2*defaultTTL)}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]Place, bool, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	list, ok := v.([]Place)
	if !ok {
		return nil, false, nil
	}
	return append([]Place(nil), list...), true, nil
}

func (m *MemoryCache) Set(_ context.Context, key string, places []Place, ttl time.Duration) error {
	m.c.Set(key, append([]Place(nil), places...), ttl)
	return nil
}
