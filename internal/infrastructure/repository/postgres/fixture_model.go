package postgres

import "time"

type fixtureInsertModel struct {
	ID          int64     `db:"id"`
	ProviderID  int64     `db:"provider_id"`
	Competition string    `db:"competition"`
	Season      int       `db:"season"`
	Stage       string    `db:"stage"`
	MatchDate   time.Time `db:"match_date"`
	HomeTeamID  int64     `db:"home_team_id"`
	AwayTeamID  int64     `db:"away_team_id"`
	Status      string    `db:"status"`
	Venue       string    `db:"venue"`
	Referee     string    `db:"referee"`
}

type fixtureListingRow struct {
	ID          int64     `db:"id"`
	Competition string    `db:"competition"`
	Season      int       `db:"season"`
	Stage       string    `db:"stage"`
	MatchDate   time.Time `db:"match_date"`
	Status      string    `db:"status"`
	Venue       string    `db:"venue"`
	Referee     string    `db:"referee"`
	HomeTeam    string    `db:"home_team"`
	AwayTeam    string    `db:"away_team"`
}
