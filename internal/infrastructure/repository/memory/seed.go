package memory

import (
	"time"

	"github.com/riskibarqy/matchfeed/internal/domain/fixture"
	"github.com/riskibarqy/matchfeed/internal/domain/ingest"
	"github.com/riskibarqy/matchfeed/internal/domain/match"
	"github.com/riskibarqy/matchfeed/internal/domain/team"
)

const (
	seedCompetition = "1. Lig"
	seedSeason      = 2023
)

// SeedBatch returns a small resolved batch for running the API without a database.
func SeedBatch() []ingest.ResolvedFixture {
	kickoff := time.Date(2023, 8, 12, 17, 0, 0, 0, time.UTC)

	return []ingest.ResolvedFixture{
		seedFixture(1035046, kickoff, "Round 1", team.Team{ProviderID: 3573, Name: "Eyupspor"}, team.Team{ProviderID: 3577, Name: "Sakaryaspor"}, "Eyup Stadyumu"),
		seedFixture(1035047, kickoff.Add(3*time.Hour), "Round 1", team.Team{ProviderID: 3589, Name: "Kocaelispor"}, team.Team{ProviderID: 3585, Name: "Bodrumspor"}, "Kocaeli Stadyumu"),
		seedFixture(1035055, kickoff.AddDate(0, 0, 7), "Round 2", team.Team{ProviderID: 3577, Name: "Sakaryaspor"}, team.Team{ProviderID: 3589, Name: "Kocaelispor"}, fixture.UnknownValue),
	}
}

func seedFixture(id int64, kickoff time.Time, round string, home, away team.Team, venue string) ingest.ResolvedFixture {
	return ingest.ResolvedFixture{
		Home: home,
		Away: away,
		Fixture: fixture.Fixture{
			ID:          id,
			ProviderID:  id,
			Competition: seedCompetition,
			Season:      seedSeason,
			Stage:       round,
			MatchDate:   kickoff,
			Status:      fixture.StatusNotStarted,
			Venue:       venue,
			Referee:     fixture.UnknownValue,
		},
		Match: match.NewShell(id),
	}
}
