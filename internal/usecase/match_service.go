package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/matchfeed/internal/domain/match"
	"go.opentelemetry.io/otel/attribute"
)

type MatchService struct {
	matchRepo match.Repository
}

func NewMatchService(matchRepo match.Repository) *MatchService {
	return &MatchService{matchRepo: matchRepo}
}

func (s *MatchService) Get(ctx context.Context, id int64) (match.Detail, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Get", attribute.Int64("match.id", id))
	defer span.End()

	if id <= 0 {
		return match.Detail{}, fmt.Errorf("%w: match id must be greater than zero", ErrInvalidInput)
	}

	item, exists, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		return match.Detail{}, fmt.Errorf("get match: %w", err)
	}
	if !exists {
		return match.Detail{}, fmt.Errorf("%w: match=%d", ErrNotFound, id)
	}
	return item, nil
}
