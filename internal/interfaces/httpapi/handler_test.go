package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/matchfeed/internal/domain/match"
	"github.com/riskibarqy/matchfeed/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/matchfeed/internal/platform/logging"
	"github.com/riskibarqy/matchfeed/internal/usecase"
	"github.com/stretchr/testify/require"
)

const testJobToken = "job-secret"

type stubStats struct {
	payload []usecase.TeamStatistics
	err     error
}

func (s stubStats) FetchStatistics(context.Context, int64) ([]usecase.TeamStatistics, error) {
	return s.payload, s.err
}

type stubFixtures struct {
	records []usecase.ExternalFixture
}

func (s stubFixtures) FetchFixtures(context.Context, int64, int) ([]usecase.ExternalFixture, error) {
	return s.records, nil
}

type fixedResult struct{}

func (fixedResult) Simulate(match.Match) match.Result {
	return match.Result{
		HomeScore: 3,
		AwayScore: 1,
		HTScore:   "1-0",
		FTScore:   "3-1",
		Events:    []match.Event{{Minute: 23, Side: match.SideHome, Actor: "Player A", Kind: match.EventGoal}},
	}
}

type testEnv struct {
	store  *memory.Store
	router http.Handler
}

func newTestEnv(t *testing.T, stats usecase.StatisticsProvider, fixtures usecase.FixtureProvider) testEnv {
	t.Helper()

	logger := logging.NewNop()
	store := memory.NewStore()
	reconciler := usecase.NewReconcileService(store, logger)
	_, err := reconciler.Reconcile(context.Background(), memory.SeedBatch())
	require.NoError(t, err)

	handler := NewHandler(
		usecase.NewFixtureService(store),
		usecase.NewMatchService(store),
		usecase.NewStatsService(store, stats),
		usecase.NewResultService(store, fixedResult{}, 1, logger),
		usecase.NewImportService(fixtures, usecase.NewResolver(), reconciler, 1, logger),
		[]usecase.ImportTarget{{LeagueID: 204, Season: 2023}},
		logger,
	)
	handler.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	return testEnv{store: store, router: NewRouter(handler, logger, []string{"*"}, testJobToken)}
}

func (e testEnv) do(t *testing.T, method, path, body string, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var decoded map[string]any
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &decoded), rec.Body.String())
	return rec, decoded
}

func TestHandler_Ping(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	rec, body := env.do(t, http.MethodGet, "/api/ping", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, body["ok"])
	require.Equal(t, "2024-01-02T03:04:05Z", body["now"])
	require.NotEmpty(t, body["message"])
}

func TestHandler_ListFixturesOrderedByDate(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	rec, body := env.do(t, http.MethodGet, "/api/fixtures", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	fixtures, ok := body["fixtures"].([]any)
	require.True(t, ok)
	require.Len(t, fixtures, 3)

	first := fixtures[0].(map[string]any)
	require.Equal(t, "Eyupspor", first["home_team"])
	require.Equal(t, "Sakaryaspor", first["away_team"])
	require.Equal(t, "2023-08-12T17:00:00Z", first["match_date"])
	require.Equal(t, "NS", first["status"])

	last := fixtures[2].(map[string]any)
	require.Equal(t, "Round 2", last["stage"])
}

func TestHandler_GetMatch(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	rec, body := env.do(t, http.MethodGet, "/api/match/1", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	item := body["match"].(map[string]any)
	require.EqualValues(t, 1035046, item["fixture_id"])
	require.Equal(t, "0-0", item["ft_score"])
	require.Equal(t, "Eyupspor", item["home_team"])
	require.Empty(t, item["events_summary"])
	require.Nil(t, item["attendance"])
}

func TestHandler_GetMatchErrors(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	rec, body := env.do(t, http.MethodGet, "/api/match/abc", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, false, body["ok"])

	rec, body = env.do(t, http.MethodGet, "/api/match/999", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, body["error"], "not found")
}

func TestHandler_GetMatchStats(t *testing.T) {
	stats := stubStats{payload: []usecase.TeamStatistics{{
		Team: usecase.StatisticsTeam{ID: 3573, Name: "Eyupspor"},
		Statistics: []usecase.StatisticValue{
			{Type: "Ball Possession", Value: json.RawMessage(`"55%"`)},
			{Type: "Red Cards", Value: json.RawMessage(`null`)},
		},
	}}}
	env := newTestEnv(t, stats, nil)

	rec, body := env.do(t, http.MethodGet, "/api/match/1/stats", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	items := body["stats"].([]any)
	require.Len(t, items, 1)
	values := items[0].(map[string]any)["statistics"].([]any)
	require.Equal(t, "55%", values[0].(map[string]any)["value"])
	require.Nil(t, values[1].(map[string]any)["value"])
}

func TestHandler_GetMatchStatsErrorMapping(t *testing.T) {
	upstream := stubStats{err: errors.New("connection reset")}
	env := newTestEnv(t, upstream, nil)

	rec, _ := env.do(t, http.MethodGet, "/api/match/1/stats", "", nil)
	require.Equal(t, http.StatusBadGateway, rec.Code)

	rec, _ = env.do(t, http.MethodGet, "/api/match/404/stats", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	unconfigured := newTestEnv(t, nil, nil)
	rec, _ = unconfigured.do(t, http.MethodGet, "/api/match/1/stats", "", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandler_SimulateMatches(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	rec, body := env.do(t, http.MethodPost, "/api/simulate", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 3, body["updated"])

	detail, ok, err := env.store.GetByID(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "3-1", detail.FTScore)
	require.Len(t, detail.Events, 1)
}

func TestHandler_RunImportRequiresToken(t *testing.T) {
	env := newTestEnv(t, nil, stubFixtures{})

	rec, _ := env.do(t, http.MethodPost, "/api/import", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = env.do(t, http.MethodPost, "/api/import", "", map[string]string{internalJobTokenHeader: "wrong"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandler_RunImport(t *testing.T) {
	records := []usecase.ExternalFixture{{
		FixtureID:   1035100,
		MatchDate:   time.Date(2023, 9, 1, 18, 0, 0, 0, time.UTC),
		Competition: "1. Lig",
		Season:      2023,
		Round:       "Round 4",
		Status:      "FT",
		HomeTeam:    usecase.ExternalTeam{ProviderID: 3573, Name: "Eyupspor"},
		AwayTeam:    usecase.ExternalTeam{ProviderID: 9999, Name: "Manisa FK"},
	}}
	env := newTestEnv(t, nil, stubFixtures{records: records})

	rec, body := env.do(t, http.MethodPost, "/api/import", `{"targets":[{"league_id":204,"season":2023}]}`,
		map[string]string{internalJobTokenHeader: testJobToken})

	require.Equal(t, http.StatusOK, rec.Code)
	reports := body["reports"].([]any)
	require.Len(t, reports, 1)
	report := reports[0].(map[string]any)
	require.Equal(t, usecase.ImportStatusSuccess, report["status"])
	require.NotEmpty(t, report["run_id"])

	_, fixtures, matches := env.store.Counts()
	require.Equal(t, 4, fixtures)
	require.Equal(t, 4, matches)
}

func TestHandler_RunImportRejectsBadPayload(t *testing.T) {
	env := newTestEnv(t, nil, stubFixtures{})
	headers := map[string]string{internalJobTokenHeader: testJobToken}

	rec, _ := env.do(t, http.MethodPost, "/api/import", `{"targets":[{"league_id":0,"season":2023}]}`, headers)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = env.do(t, http.MethodPost, "/api/import", `{"unknown":true}`, headers)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_RunImportWithoutProvider(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	rec, _ := env.do(t, http.MethodPost, "/api/import", "", map[string]string{internalJobTokenHeader: testJobToken})
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
