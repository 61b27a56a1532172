package usecase

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	domainCache "github.com/govtwool/govtwool-backend/domains/cache"
)

// CacheControl is the part of the cached router the cache endpoints use.
type CacheControl interface {
	CacheStats(ctx context.Context) domainCache.CacheStats
	Purge(ctx context.Context) error
}

type cacheService struct {
	cache CacheControl
}

func NewCacheService(cache CacheControl) domainCache.ICacheUsecase {
	return &cacheService{cache: cache}
}

func (s *cacheService) GetStats(ctx context.Context) domainCache.CacheStats {
	return s.cache.CacheStats(ctx)
}

// Clear drops all cached entries. Hit and miss counters are kept.
func (s *cacheService) Clear(ctx context.Context) error {
	before := s.cache.CacheStats(ctx).Entries
	if err := s.cache.Purge(ctx); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	logrus.Infof("[CACHE] cleared %d entries", before)
	return nil
}
