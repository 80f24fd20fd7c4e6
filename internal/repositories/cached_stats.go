package repositories

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

type statsRepository interface {
	Get(ctx context.Context) (Stats, error)
}

const statsCacheKey = "portal_stats"

// CachedStats keeps dashboard counts for a short time. Workflow decisions never
// read from it.
type CachedStats struct {
	repo  statsRepository
	cache *gocache.Cache
}

func NewCachedStats(repo statsRepository, ttl time.Duration) *CachedStats {
	return &CachedStats{repo: repo, cache: gocache.New(ttl, 2*ttl)}
}

func (c *CachedStats) Get(ctx context.Context) (Stats, error) {
	if value, found := c.cache.Get(statsCacheKey); found {
		return value.(Stats), nil
	}

	stats, err := c.repo.Get(ctx)
	if err != nil {
		return Stats{}, err
	}

	c.cache.Set(statsCacheKey, stats, gocache.DefaultExpiration)
	return stats, nil
}

func (c *CachedStats) Invalidate() {
	c.cache.Delete(statsCacheKey)
}
