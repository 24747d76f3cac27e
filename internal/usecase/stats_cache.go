package usecase

import (
	"context"
	"strconv"
	"time"

	"github.com/riskibarqy/matchfeed/internal/platform/cache"
)

type cachedStatisticsProvider struct {
	next  StatisticsProvider
	store *cache.Store[[]TeamStatistics]
}

// CacheStatistics keeps provider statistics per fixture for ttl to save provider quota.
// A nil provider or a non-positive ttl returns next unchanged.
func CacheStatistics(next StatisticsProvider, ttl time.Duration) StatisticsProvider {
	if next == nil || ttl <= 0 {
		return next
	}
	return &cachedStatisticsProvider{
		next:  next,
		store: cache.NewStore[[]TeamStatistics](ttl),
	}
}

func (p *cachedStatisticsProvider) FetchStatistics(ctx context.Context, providerFixtureID int64) ([]TeamStatistics, error) {
	key := "fixture:" + strconv.FormatInt(providerFixtureID, 10)
	return p.store.GetOrLoad(ctx, key, func(ctx context.Context) ([]TeamStatistics, error) {
		return p.next.FetchStatistics(ctx, providerFixtureID)
	})
}
