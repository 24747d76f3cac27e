package usecase

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/matchfeed/internal/domain/match"
	"go.opentelemetry.io/otel/attribute"
)

// StatsService reads provider statistics for a stored match. Nothing is persisted.
type StatsService struct {
	matchRepo match.Repository
	provider  StatisticsProvider
}

// NewStatsService accepts a nil provider when provider credentials are not configured.
func NewStatsService(matchRepo match.Repository, provider StatisticsProvider) *StatsService {
	return &StatsService{
		matchRepo: matchRepo,
		provider:  provider,
	}
}

func (s *StatsService) GetMatchStatistics(ctx context.Context, matchID int64) ([]TeamStatistics, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService.GetMatchStatistics", attribute.Int64("match.id", matchID))
	defer span.End()

	if matchID <= 0 {
		return nil, fmt.Errorf("%w: match id must be greater than zero", ErrInvalidInput)
	}

	fixtureID, exists, err := s.matchRepo.GetFixtureID(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("get fixture id for match_id=%d: %w", matchID, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: match=%d", ErrNotFound, matchID)
	}

	if s.provider == nil {
		return nil, fmt.Errorf("%w: statistics provider is not configured", ErrConfigurationMissing)
	}

	stats, err := s.provider.FetchStatistics(ctx, fixtureID)
	if err != nil {
		// A caller that gave up is not a provider failure.
		if errors.Is(err, ErrUpstreamFailure) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: fetch statistics fixture_id=%d: %w", ErrUpstreamFailure, fixtureID, err)
	}
	return stats, nil
}
