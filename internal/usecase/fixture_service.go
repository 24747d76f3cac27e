package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/matchfeed/internal/domain/fixture"
)

type FixtureService struct {
	fixtureRepo fixture.Repository
}

func NewFixtureService(fixtureRepo fixture.Repository) *FixtureService {
	return &FixtureService{fixtureRepo: fixtureRepo}
}

// List returns every fixture with team names, earliest match date first.
func (s *FixtureService) List(ctx context.Context) ([]fixture.Listing, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FixtureService.List")
	defer span.End()

	fixtures, err := s.fixtureRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list fixtures: %w", err)
	}
	return fixtures, nil
}
