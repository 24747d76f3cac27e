package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/matchfeed/internal/domain/fixture"
	"github.com/riskibarqy/matchfeed/internal/domain/match"
	"github.com/riskibarqy/matchfeed/internal/platform/logging"
)

// ResultService assigns simulated results to matches whose fixture is still scheduled.
// Each match is written independently; a failed write is logged and skipped.
type ResultService struct {
	matchRepo match.Repository
	simulator match.Simulator
	workers   int
	logger    *logging.Logger
}

func NewResultService(matchRepo match.Repository, simulator match.Simulator, workers int, logger *logging.Logger) *ResultService {
	if logger == nil {
		logger = logging.Default()
	}
	if simulator == nil {
		simulator = match.NewRandomSimulator(nil)
	}
	if workers < 1 {
		workers = 1
	}
	return &ResultService{
		matchRepo: matchRepo,
		simulator: simulator,
		workers:   workers,
		logger:    logger,
	}
}

func (s *ResultService) GenerateResults(ctx context.Context) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResultService.GenerateResults")
	defer span.End()

	matches, err := s.matchRepo.ListByFixtureStatus(ctx, fixture.ScheduledStatuses())
	if err != nil {
		return 0, fmt.Errorf("list scheduled matches: %w", err)
	}
	if len(matches) == 0 {
		s.logger.InfoContext(ctx, "no scheduled matches to simulate")
		return 0, nil
	}

	pool, err := ants.NewPool(min(s.workers, len(matches)))
	if err != nil {
		return 0, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var updated atomic.Int64
	var workers sync.WaitGroup
	var submitErr error
	for _, item := range matches {
		item := item
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			if s.generateOne(ctx, item) {
				updated.Add(1)
			}
		}); err != nil {
			workers.Done()
			submitErr = fmt.Errorf("submit match_id=%d to worker pool: %w", item.ID, err)
			break
		}
	}
	workers.Wait()

	count := int(updated.Load())
	s.logger.InfoContext(ctx, "result generation finished",
		"eligible", len(matches),
		"updated", count,
	)
	if submitErr != nil {
		return count, submitErr
	}
	if err := ctx.Err(); err != nil {
		return count, err
	}
	return count, nil
}

func (s *ResultService) generateOne(ctx context.Context, item match.Match) bool {
	if ctx.Err() != nil {
		return false
	}

	result := s.simulator.Simulate(item)
	if err := result.Validate(); err != nil {
		s.logger.WarnContext(ctx, "simulator produced invalid result", "match_id", item.ID, "error", err)
		return false
	}
	if err := s.matchRepo.UpdateResult(ctx, item.ID, result); err != nil {
		s.logger.WarnContext(ctx, "update match result failed", "match_id", item.ID, "error", err)
		return false
	}

	s.logger.DebugContext(ctx, "match simulated", "match_id", item.ID, "ft_score", result.FTScore)
	return true
}
