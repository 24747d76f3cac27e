package usecase

import (
	"context"
	"encoding/json"
	"time"
)

// ExternalFixture is one provider fixture record before resolution.
type ExternalFixture struct {
	FixtureID   int64     `validate:"gt=0"`
	MatchDate   time.Time `validate:"required"`
	Venue       string
	Referee     string
	Competition string
	Season      int `validate:"gte=0"`
	Round       string
	Status      string
	HomeTeam    ExternalTeam
	AwayTeam    ExternalTeam
}

type ExternalTeam struct {
	ProviderID int64  `validate:"gte=0"`
	Name       string `validate:"required"`
}

// TeamStatistics is the provider's per-team statistics block, passed through as-is.
type TeamStatistics struct {
	Team       StatisticsTeam   `json:"team"`
	Statistics []StatisticValue `json:"statistics"`
}

type StatisticsTeam struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo"`
}

// StatisticValue keeps the raw value since the provider mixes numbers, percentages and null.
type StatisticValue struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

type FixtureProvider interface {
	FetchFixtures(ctx context.Context, leagueID int64, season int) ([]ExternalFixture, error)
}

type StatisticsProvider interface {
	FetchStatistics(ctx context.Context, providerFixtureID int64) ([]TeamStatistics, error)
}
