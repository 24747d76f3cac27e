package postgres

import "database/sql"

type matchInsertModel struct {
	FixtureID     int64  `db:"fixture_id"`
	HomeScore     int    `db:"home_score"`
	AwayScore     int    `db:"away_score"`
	HTScore       string `db:"ht_score"`
	FTScore       string `db:"ft_score"`
	EventsSummary string `db:"events_summary"`
	Statistics    string `db:"statistics"`
}

type matchTableModel struct {
	ID            int64         `db:"id"`
	FixtureID     int64         `db:"fixture_id"`
	HomeScore     int           `db:"home_score"`
	AwayScore     int           `db:"away_score"`
	HTScore       string        `db:"ht_score"`
	FTScore       string        `db:"ft_score"`
	EventsSummary []byte        `db:"events_summary"`
	Statistics    []byte        `db:"statistics"`
	StartedAt     sql.NullTime  `db:"started_at"`
	EndedAt       sql.NullTime  `db:"ended_at"`
	Attendance    sql.NullInt64 `db:"attendance"`
}

type matchDetailRow struct {
	matchTableModel
	HomeTeamID int64  `db:"home_team_id"`
	AwayTeamID int64  `db:"away_team_id"`
	HomeTeam   string `db:"home_team"`
	AwayTeam   string `db:"away_team"`
}
