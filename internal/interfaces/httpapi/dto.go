package httpapi

import (
	"context"
	"encoding/json"
	"time"

	"github.com/riskibarqy/matchfeed/internal/domain/fixture"
	"github.com/riskibarqy/matchfeed/internal/domain/match"
	"github.com/riskibarqy/matchfeed/internal/usecase"
)

type fixtureDTO struct {
	ID          int64  `json:"id"`
	Competition string `json:"competition"`
	Season      int    `json:"season"`
	Stage       string `json:"stage"`
	MatchDate   string `json:"match_date"`
	Status      string `json:"status"`
	HomeTeam    string `json:"home_team"`
	AwayTeam    string `json:"away_team"`
	Venue       string `json:"venue"`
	Referee     string `json:"referee"`
}

type matchEventDTO struct {
	Minute int    `json:"minute"`
	Team   string `json:"team"`
	Player string `json:"player"`
	Type   string `json:"type"`
}

type matchDTO struct {
	ID            int64           `json:"id"`
	FixtureID     int64           `json:"fixture_id"`
	HomeScore     int             `json:"home_score"`
	AwayScore     int             `json:"away_score"`
	HTScore       string          `json:"ht_score"`
	FTScore       string          `json:"ft_score"`
	EventsSummary []matchEventDTO `json:"events_summary"`
	Statistics    json.RawMessage `json:"statistics"`
	StartedAt     *string         `json:"started_at"`
	EndedAt       *string         `json:"ended_at"`
	Attendance    *int            `json:"attendance"`
	HomeTeamID    int64           `json:"home_team_id"`
	AwayTeamID    int64           `json:"away_team_id"`
	HomeTeam      string          `json:"home_team"`
	AwayTeam      string          `json:"away_team"`
}

type batchResultDTO struct {
	Fixtures      int `json:"fixtures"`
	TeamsUpserted int `json:"teams_upserted"`
	MatchesAdded  int `json:"matches_added"`
}

type importReportDTO struct {
	RunID      string         `json:"run_id"`
	LeagueID   int64          `json:"league_id"`
	Season     int            `json:"season"`
	Records    int            `json:"records"`
	Status     string         `json:"status"`
	Message    string         `json:"message,omitempty"`
	Result     batchResultDTO `json:"result"`
	DurationMS int64          `json:"duration_ms"`
}

func fixtureToDTO(ctx context.Context, v fixture.Listing) fixtureDTO {
	_, span := startSpan(ctx, "httpapi.fixtureToDTO")
	defer span.End()

	return fixtureDTO{
		ID:          v.ID,
		Competition: v.Competition,
		Season:      v.Season,
		Stage:       v.Stage,
		MatchDate:   v.MatchDate.UTC().Format(time.RFC3339),
		Status:      v.Status,
		HomeTeam:    v.HomeTeam,
		AwayTeam:    v.AwayTeam,
		Venue:       v.Venue,
		Referee:     v.Referee,
	}
}

func matchToDTO(ctx context.Context, v match.Detail) matchDTO {
	_, span := startSpan(ctx, "httpapi.matchToDTO")
	defer span.End()

	events := make([]matchEventDTO, 0, len(v.Events))
	for _, event := range v.Events {
		events = append(events, matchEventDTO{
			Minute: event.Minute,
			Team:   event.Side,
			Player: event.Actor,
			Type:   event.Kind,
		})
	}

	statistics := json.RawMessage(v.Statistics)
	if len(statistics) == 0 {
		statistics = json.RawMessage("{}")
	}

	return matchDTO{
		ID:            v.ID,
		FixtureID:     v.FixtureID,
		HomeScore:     v.HomeScore,
		AwayScore:     v.AwayScore,
		HTScore:       v.HTScore,
		FTScore:       v.FTScore,
		EventsSummary: events,
		Statistics:    statistics,
		StartedAt:     formatOptionalTime(v.StartedAt),
		EndedAt:       formatOptionalTime(v.EndedAt),
		Attendance:    v.Attendance,
		HomeTeamID:    v.HomeTeamID,
		AwayTeamID:    v.AwayTeamID,
		HomeTeam:      v.HomeTeam,
		AwayTeam:      v.AwayTeam,
	}
}

func importReportToDTO(v usecase.ImportReport) importReportDTO {
	return importReportDTO{
		RunID:    v.RunID,
		LeagueID: v.LeagueID,
		Season:   v.Season,
		Records:  v.Records,
		Status:   v.Status,
		Message:  v.Message,
		Result: batchResultDTO{
			Fixtures:      v.Result.Fixtures,
			TeamsUpserted: v.Result.TeamsUpserted,
			MatchesAdded:  v.Result.MatchesCreated,
		},
		DurationMS: v.Duration.Milliseconds(),
	}
}

func formatOptionalTime(v *time.Time) *string {
	if v == nil {
		return nil
	}
	formatted := v.UTC().Format(time.RFC3339)
	return &formatted
}
