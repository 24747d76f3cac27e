package usecase

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/matchfeed/internal/domain/fixture"
	"github.com/riskibarqy/matchfeed/internal/domain/ingest"
	"github.com/riskibarqy/matchfeed/internal/domain/match"
	"github.com/riskibarqy/matchfeed/internal/domain/team"
)

// Resolver maps provider records onto internal entities without I/O.
type Resolver struct {
	validate *validator.Validate
}

func NewResolver() *Resolver {
	return &Resolver{validate: validator.New()}
}

func (r *Resolver) ResolveFixture(raw ExternalFixture) (ingest.ResolvedFixture, error) {
	raw.HomeTeam.Name = strings.TrimSpace(raw.HomeTeam.Name)
	raw.AwayTeam.Name = strings.TrimSpace(raw.AwayTeam.Name)

	if err := r.validate.Struct(raw); err != nil {
		return ingest.ResolvedFixture{}, fmt.Errorf("%w: fixture_id=%d: %s", ErrMalformedRecord, raw.FixtureID, describeValidation(err))
	}
	// fixtures_distinct_teams would otherwise fail the batch transaction in Postgres.
	if raw.HomeTeam.Name == raw.AwayTeam.Name {
		return ingest.ResolvedFixture{}, fmt.Errorf("%w: fixture_id=%d: home and away team are both %q", ErrMalformedRecord, raw.FixtureID, raw.HomeTeam.Name)
	}

	home := team.Team{ProviderID: raw.HomeTeam.ProviderID, Name: raw.HomeTeam.Name}
	away := team.Team{ProviderID: raw.AwayTeam.ProviderID, Name: raw.AwayTeam.Name}

	return ingest.ResolvedFixture{
		Home: home,
		Away: away,
		Fixture: fixture.Fixture{
			ID:          raw.FixtureID,
			ProviderID:  raw.FixtureID,
			Competition: orDefault(raw.Competition, fixture.UnknownCompetition),
			Season:      raw.Season,
			Stage:       orDefault(raw.Round, fixture.UnknownValue),
			MatchDate:   raw.MatchDate.UTC(),
			Status:      fixture.NormalizeStatus(raw.Status),
			Venue:       orDefault(raw.Venue, fixture.UnknownValue),
			Referee:     orDefault(raw.Referee, fixture.UnknownValue),
		},
		Match: match.NewShell(raw.FixtureID),
	}, nil
}

// ResolveBatch rejects the whole batch on the first malformed record.
func (r *Resolver) ResolveBatch(records []ExternalFixture) ([]ingest.ResolvedFixture, error) {
	out := make([]ingest.ResolvedFixture, 0, len(records))
	for idx, raw := range records {
		resolved, err := r.ResolveFixture(raw)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", idx, err)
		}
		out = append(out, resolved)
	}
	return out, nil
}

func describeValidation(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}

	parts := make([]string, 0, len(fieldErrs))
	for _, fieldErr := range fieldErrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", strings.TrimPrefix(fieldErr.Namespace(), "ExternalFixture."), fieldErr.Tag()))
	}
	return strings.Join(parts, ", ")
}

func orDefault(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	return value
}
