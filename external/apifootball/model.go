package apifootball

import (
	"encoding/json"

	"github.com/riskibarqy/matchfeed/internal/usecase"
)

type fixturesEnvelope struct {
	Errors   json.RawMessage `json:"errors"`
	Results  int             `json:"results"`
	Response []fixtureItem   `json:"response"`
}

type fixtureItem struct {
	Fixture fixtureCore `json:"fixture"`
	League  leagueInfo  `json:"league"`
	Teams   teamPair    `json:"teams"`
}

type fixtureCore struct {
	ID      int64         `json:"id"`
	Referee *string       `json:"referee"`
	Date    string        `json:"date"`
	Venue   fixtureVenue  `json:"venue"`
	Status  fixtureStatus `json:"status"`
}

type fixtureVenue struct {
	ID   *int64  `json:"id"`
	Name *string `json:"name"`
	City *string `json:"city"`
}

type fixtureStatus struct {
	Long    string `json:"long"`
	Short   string `json:"short"`
	Elapsed *int   `json:"elapsed"`
}

type leagueInfo struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Season int    `json:"season"`
	Round  string `json:"round"`
}

type teamPair struct {
	Home teamItem `json:"home"`
	Away teamItem `json:"away"`
}

type teamItem struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type statisticsEnvelope struct {
	Errors   json.RawMessage          `json:"errors"`
	Results  int                      `json:"results"`
	Response []usecase.TeamStatistics `json:"response"`
}
