package apifootball

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/matchfeed/internal/platform/logging"
	"github.com/riskibarqy/matchfeed/internal/platform/resilience"
	"github.com/riskibarqy/matchfeed/internal/usecase"
	"github.com/stretchr/testify/require"
)

const fixturesPayload = `{
  "get": "fixtures",
  "parameters": {"league": "204", "season": "2023"},
  "errors": [],
  "results": 2,
  "response": [
    {
      "fixture": {
        "id": 1035046,
        "referee": "Ali Palabiyik",
        "timezone": "UTC",
        "date": "2023-08-12T17:00:00+00:00",
        "venue": {"id": 1, "name": "Eyüp Stadyumu", "city": "Istanbul"},
        "status": {"long": "Match Finished", "short": "FT", "elapsed": 90}
      },
      "league": {"id": 204, "name": "1. Lig", "season": 2023, "round": "Regular Season - 1"},
      "teams": {
        "home": {"id": 3563, "name": "Eyupspor", "winner": true},
        "away": {"id": 3588, "name": "Sakaryaspor", "winner": false}
      },
      "goals": {"home": 2, "away": 1}
    },
    {
      "fixture": {
        "id": 1035055,
        "referee": null,
        "date": "2024-05-04T14:30:00+03:00",
        "venue": {"id": null, "name": null, "city": null},
        "status": {"long": "Not Started", "short": "NS", "elapsed": null}
      },
      "league": {"id": 204, "name": "1. Lig", "round": "Regular Season - 34"},
      "teams": {
        "home": {"id": 3570, "name": "Kocaelispor"},
        "away": {"id": 3575, "name": "Bodrumspor"}
      },
      "goals": {"home": null, "away": null}
    }
  ]
}`

const statisticsPayload = `{
  "errors": [],
  "results": 1,
  "response": [
    {
      "team": {"id": 3563, "name": "Eyupspor", "logo": "https://media.api-sports.io/football/teams/3563.png"},
      "statistics": [
        {"type": "Shots on Goal", "value": 6},
        {"type": "Ball Possession", "value": "58%"},
        {"type": "Red Cards", "value": null}
      ]
    }
  ]
}`

func newTestClient(t *testing.T, server *httptest.Server, mutate func(*ClientConfig)) *Client {
	t.Helper()

	cfg := ClientConfig{
		HTTPClient: server.Client(),
		BaseURL:    server.URL,
		APIKey:     "secret-key",
		Logger:     logging.NewNop(),
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 2,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	}
	if mutate != nil {
		mutate(&cfg)
	}

	client, err := NewClient(cfg)
	require.NoError(t, err)
	return client
}

func TestClient_FetchFixtures(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/fixtures", r.URL.Path)
		require.Equal(t, "204", r.URL.Query().Get("league"))
		require.Equal(t, "2023", r.URL.Query().Get("season"))
		require.Equal(t, "secret-key", r.Header.Get(headerAPIKey))
		require.Equal(t, r.Host, r.Header.Get(headerAPIHost))
		_, _ = w.Write([]byte(fixturesPayload))
	}))
	defer server.Close()

	client := newTestClient(t, server, nil)
	got, err := client.FetchFixtures(context.Background(), 204, 2023)
	require.NoError(t, err)
	require.Len(t, got, 2)

	first := got[0]
	require.Equal(t, int64(1035046), first.FixtureID)
	require.Equal(t, time.Date(2023, 8, 12, 17, 0, 0, 0, time.UTC), first.MatchDate)
	require.Equal(t, "Eyüp Stadyumu", first.Venue)
	require.Equal(t, "Ali Palabiyik", first.Referee)
	require.Equal(t, "1. Lig", first.Competition)
	require.Equal(t, 2023, first.Season)
	require.Equal(t, "Regular Season - 1", first.Round)
	require.Equal(t, "FT", first.Status)
	require.Equal(t, usecase.ExternalTeam{ProviderID: 3563, Name: "Eyupspor"}, first.HomeTeam)
	require.Equal(t, usecase.ExternalTeam{ProviderID: 3588, Name: "Sakaryaspor"}, first.AwayTeam)

	second := got[1]
	require.Equal(t, time.Date(2024, 5, 4, 11, 30, 0, 0, time.UTC), second.MatchDate)
	require.Empty(t, second.Venue)
	require.Empty(t, second.Referee)
	require.Equal(t, 2023, second.Season)
}

func TestClient_FetchFixtures_ProviderErrorsObject(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"errors":{"token":"Error/Missing application key."},"results":0,"response":[]}`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server, nil).FetchFixtures(context.Background(), 204, 2023)
	require.ErrorIs(t, err, usecase.ErrUpstreamFailure)
	require.Contains(t, err.Error(), "Missing application key")
}

func TestClient_FetchFixtures_EmptyResponse(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"errors":[],"results":0,"response":[]}`))
	}))
	defer server.Close()

	got, err := newTestClient(t, server, nil).FetchFixtures(context.Background(), 204, 1999)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestClient_ServerErrorIsNotRetriedByDefault(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"boom"}`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server, nil).FetchFixtures(context.Background(), 204, 2023)
	require.ErrorIs(t, err, usecase.ErrUpstreamFailure)
	require.Contains(t, err.Error(), "status=500")
	require.Equal(t, int32(1), calls.Load())
}

func TestClient_RetriesTransientStatusWhenConfigured(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(statisticsPayload))
	}))
	defer server.Close()

	client := newTestClient(t, server, func(cfg *ClientConfig) { cfg.MaxRetries = 1 })
	got, err := client.FetchStatistics(context.Background(), 1035046)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, int32(2), calls.Load())
}

func TestClient_ClientErrorStatusIsNotRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"key secret-key is not subscribed"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server, func(cfg *ClientConfig) { cfg.MaxRetries = 3 })
	_, err := client.FetchFixtures(context.Background(), 204, 2023)
	require.ErrorIs(t, err, usecase.ErrUpstreamFailure)
	require.NotContains(t, err.Error(), "secret-key")
	require.Equal(t, int32(1), calls.Load())
}

func TestClient_CircuitOpensAfterRepeatedFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(t, server, nil)
	for i := 0; i < 2; i++ {
		_, err := client.FetchStatistics(context.Background(), 1035046)
		require.ErrorIs(t, err, usecase.ErrUpstreamFailure)
	}

	_, err := client.FetchStatistics(context.Background(), 1035046)
	require.ErrorIs(t, err, usecase.ErrUpstreamFailure)
	require.True(t, errors.Is(err, resilience.ErrCircuitOpen))
	require.Equal(t, int32(2), calls.Load())
}

func TestClient_FetchStatisticsKeepsRawValues(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/fixtures/statistics", r.URL.Path)
		require.Equal(t, "1035046", r.URL.Query().Get("fixture"))
		_, _ = w.Write([]byte(statisticsPayload))
	}))
	defer server.Close()

	got, err := newTestClient(t, server, nil).FetchStatistics(context.Background(), 1035046)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "Eyupspor", got[0].Team.Name)
	require.Len(t, got[0].Statistics, 3)
	require.JSONEq(t, `6`, string(got[0].Statistics[0].Value))
	require.JSONEq(t, `"58%"`, string(got[0].Statistics[1].Value))
	require.JSONEq(t, `null`, string(got[0].Statistics[2].Value))
}

func TestNewClient_RequiresKeyAndBaseURL(t *testing.T) {
	t.Parallel()

	_, err := NewClient(ClientConfig{BaseURL: DefaultBaseURL})
	require.ErrorIs(t, err, usecase.ErrConfigurationMissing)

	_, err = NewClient(ClientConfig{APIKey: "secret-key"})
	require.ErrorIs(t, err, usecase.ErrConfigurationMissing)

	client, err := NewClient(ClientConfig{BaseURL: DefaultBaseURL + "/", APIKey: " secret-key "})
	require.NoError(t, err)
	require.Equal(t, DefaultBaseURL, client.baseURL)
	require.Equal(t, "v3.football.api-sports.io", client.host)
	require.Equal(t, "secret-key", client.apiKey)
}

func TestParseProviderDateTime(t *testing.T) {
	t.Parallel()

	require.True(t, parseProviderDateTime("").IsZero())
	require.True(t, parseProviderDateTime("not a date").IsZero())
	require.Equal(t, time.Date(2023, 8, 12, 14, 0, 0, 0, time.UTC), parseProviderDateTime("2023-08-12T17:00:00+03:00"))
}

func TestClient_CallerDeadlineDoesNotOpenCircuit(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(50 * time.Millisecond)
		_, _ = w.Write([]byte(statisticsPayload))
	}))
	defer server.Close()

	client := newTestClient(t, server, nil)
	for i := 0; i < 3; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
		_, err := client.FetchStatistics(ctx, 1035046)
		cancel()
		require.ErrorIs(t, err, context.DeadlineExceeded)
		require.False(t, errors.Is(err, usecase.ErrUpstreamFailure))
	}

	got, err := client.FetchStatistics(context.Background(), 1035046)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, resilience.CircuitStateClosed, client.breaker.State())
}

func TestClient_SharedRequestOutlivesCancelledCaller(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	arrived := make(chan struct{}, 1)
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		arrived <- struct{}{}
		<-release
		_, _ = w.Write([]byte(statisticsPayload))
	}))
	defer server.Close()

	client := newTestClient(t, server, nil)
	key := server.URL + "/fixtures/statistics?fixture=1035046"

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := client.FetchStatistics(firstCtx, 1035046)
		firstErr <- err
	}()
	<-arrived

	type result struct {
		stats []usecase.TeamStatistics
		err   error
	}
	second := make(chan result, 1)
	go func() {
		stats, err := client.FetchStatistics(context.Background(), 1035046)
		second <- result{stats: stats, err: err}
	}()
	require.Eventually(t, func() bool { return client.flight.Joined(key) == 1 }, time.Second, time.Millisecond)

	cancelFirst()
	require.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	got := <-second
	require.NoError(t, got.err)
	require.Len(t, got.stats, 1)
	require.Equal(t, int32(1), calls.Load())
	require.Equal(t, resilience.CircuitStateClosed, client.breaker.State())
}
