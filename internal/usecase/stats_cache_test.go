package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCacheStatistics_ReusesPayloadPerFixture(t *testing.T) {
	t.Parallel()

	stub := &stubStatisticsProvider{payload: []TeamStatistics{{Team: StatisticsTeam{ID: 3573, Name: "Eyupspor"}}}}
	provider := CacheStatistics(stub, time.Minute)

	for i := 0; i < 3; i++ {
		got, err := provider.FetchStatistics(context.Background(), 1035046)
		require.NoError(t, err)
		require.Len(t, got, 1)
	}
	_, err := provider.FetchStatistics(context.Background(), 1035047)
	require.NoError(t, err)

	require.Equal(t, []int64{1035046, 1035047}, stub.calls)
}

func TestCacheStatistics_DoesNotCacheFailures(t *testing.T) {
	t.Parallel()

	stub := &stubStatisticsProvider{err: errors.New("timeout")}
	provider := CacheStatistics(stub, time.Minute)

	_, err := provider.FetchStatistics(context.Background(), 1)
	require.Error(t, err)
	_, err = provider.FetchStatistics(context.Background(), 1)
	require.Error(t, err)

	require.Len(t, stub.calls, 2)
}

func TestCacheStatistics_DisabledPassesThrough(t *testing.T) {
	t.Parallel()

	stub := &stubStatisticsProvider{}
	require.Same(t, stub, CacheStatistics(stub, 0))
	require.Nil(t, CacheStatistics(nil, time.Minute))
}
