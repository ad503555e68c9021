package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/prop-projection/internal/domain/gamelog"
	"github.com/riskibarqy/prop-projection/internal/domain/projection"
	"github.com/riskibarqy/prop-projection/internal/domain/seasonstats"
	"github.com/riskibarqy/prop-projection/internal/infrastructure/repository/memory"
	seasonstatsmock "github.com/riskibarqy/prop-projection/internal/mocks/domain/seasonstats"
	"github.com/riskibarqy/prop-projection/internal/platform/logging"
	"github.com/riskibarqy/prop-projection/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type weightedShots struct{}

func (weightedShots) Predict(_ context.Context, in []projection.FeatureVector) ([]float64, error) {
	out := make([]float64, len(in))
	for i, fv := range in {
		out[i] = 0.5*fv[0] + 0.3*fv[1] + 0.05*fv[2]
	}
	return out, nil
}

type constGoals float64

func (c constGoals) Predict(_ context.Context, in []projection.FeatureVector) ([]float64, error) {
	out := make([]float64, len(in))
	for i := range out {
		out[i] = float64(c)
	}
	return out, nil
}

func fp(v float64) *float64 { return &v }

func handlerFixtureRecords(t *testing.T) []gamelog.Record {
	t.Helper()

	day1 := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC)
	inputs := []gamelog.RecordInput{
		{Name: "Connor McDavid", Team: "EDM", Opponent: "TOR", Date: day1, SeasonAvg: fp(3.9), L5Avg: fp(4.0), L10Avg: fp(4.0), TOI: gamelog.TOIFromText("20:00")},
		{Name: "Auston Matthews", Team: "TOR", Opponent: "EDM", Date: day1, SeasonAvg: fp(3.5), L5Avg: fp(3.0), L10Avg: fp(3.0), TOI: gamelog.TOIFromText("20:00")},
		{Name: "Leon Draisaitl", Team: "EDM", Opponent: "TOR", Date: day1, SeasonAvg: fp(3.1), L5Avg: fp(3.0), TOI: gamelog.TOIFromText("21:00")},
		{Name: "Connor McDavid", Team: "EDM", Opponent: "VAN", Date: day2, SeasonAvg: fp(4.0), L5Avg: fp(2.0), L10Avg: fp(2.0), TOI: gamelog.TOIFromText("20:00")},
	}

	out := make([]gamelog.Record, 0, len(inputs))
	for _, in := range inputs {
		rec, err := gamelog.NewRecord(in, gamelog.DefaultTOIPolicy())
		require.NoError(t, err)
		out = append(out, rec)
	}
	return out
}

func newTestRouter(t *testing.T, provider seasonstats.Provider, localFallback bool) http.Handler {
	t.Helper()

	logger := logging.NewNop()
	repo := memory.NewGamelogRepository(handlerFixtureRecords(t))
	projectionSvc := usecase.NewProjectionService(repo, projection.Models{
		Shots: weightedShots{},
		Goals: constGoals(1),
	}, usecase.ProjectionConfig{MaxWorkers: 2}, logger)
	seasonSvc := usecase.NewSeasonStatsService(provider, repo, usecase.SeasonStatsConfig{
		DefaultSeason: "20232024",
		LocalFallback: localFallback,
		CacheTTL:      time.Minute,
	}, logger)

	return NewRouter(NewHandler(projectionSvc, seasonSvc, logger), logger, false, nil)
}

type testEnvelope[T any] struct {
	Data  T                `json:"data"`
	Error *googleErrorBody `json:"error"`
}

func doGet[T any](t *testing.T, router http.Handler, target string) (int, testEnvelope[T]) {
	t.Helper()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	var env testEnvelope[T]
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func TestHandler_Healthz(t *testing.T) {
	router := newTestRouter(t, nil, true)

	code, env := doGet[healthDTO](t, router, "/healthz")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", env.Data.Status)
	assert.Equal(t, 4, env.Data.Records)
}

func TestHandler_ListDates(t *testing.T) {
	router := newTestRouter(t, nil, true)

	code, env := doGet[[]string](t, router, "/v1/dates")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"2024-01-10", "2024-01-12"}, env.Data)
}

func TestHandler_ListPlayers(t *testing.T) {
	router := newTestRouter(t, nil, true)

	code, env := doGet[[]string](t, router, "/v1/players?date=2024-01-10")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"Auston Matthews", "Connor McDavid", "Leon Draisaitl"}, env.Data)

	code, env = doGet[[]string](t, router, "/v1/players")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, env.Data, 3)
}

func TestHandler_ListSlateProjections(t *testing.T) {
	router := newTestRouter(t, nil, true)

	code, env := doGet[slateProjectionDTO](t, router, "/v1/projections?date=2024-01-10")
	require.Equal(t, http.StatusOK, code)

	assert.Equal(t, "shots", env.Data.Statistic)
	assert.Equal(t, "Shots on Goal", env.Data.StatisticLabel)
	assert.Equal(t, 1, env.Data.Excluded)
	require.Len(t, env.Data.Rows, 2)
	assert.Equal(t, "Connor McDavid", env.Data.Rows[0].Name)
	assert.InDelta(t, 4.2, env.Data.Rows[0].Projection, 1e-9)
	assert.Equal(t, "Auston Matthews", env.Data.Rows[1].Name)
	assert.InDelta(t, 3.4, env.Data.Rows[1].Projection, 1e-9)
	assert.Equal(t, "20:00", env.Data.Rows[0].TOI)
}

func TestHandler_ListSlateProjections_Errors(t *testing.T) {
	router := newTestRouter(t, nil, true)

	tests := []struct {
		name   string
		target string
		status int
	}{
		{name: "missing date", target: "/v1/projections", status: http.StatusBadRequest},
		{name: "malformed date", target: "/v1/projections?date=01/10/2024", status: http.StatusBadRequest},
		{name: "unknown stat", target: "/v1/projections?date=2024-01-10&stat=hits", status: http.StatusBadRequest},
		{name: "empty slate", target: "/v1/projections?date=2024-02-01", status: http.StatusNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			code, env := doGet[any](t, router, tc.target)
			assert.Equal(t, tc.status, code)
			require.NotNil(t, env.Error)
			assert.Equal(t, tc.status, env.Error.Code)
		})
	}
}

func TestHandler_GetPlayerProjection_DefaultsToLatestRecord(t *testing.T) {
	router := newTestRouter(t, nil, true)

	code, env := doGet[playerProjectionDTO](t, router, "/v1/players/projection?name=%20connor%20mcdavid%20")
	require.Equal(t, http.StatusOK, code)

	assert.Equal(t, "2024-01-12", env.Data.Date)
	assert.InDelta(t, 2.6, env.Data.Projection, 1e-9)
	assert.Equal(t, "season", env.Data.Basis)
	assert.Equal(t, 2.5, env.Data.HitRate.Line)
	assert.Equal(t, 160.0, env.Data.HitRate.Rate)
	assert.Equal(t, "linear", env.Data.HitRate.Distribution)
	assert.Equal(t, "season", env.Data.HitRate.InputSource)
}

func TestHandler_GetPlayerProjection_LineAndBasis(t *testing.T) {
	router := newTestRouter(t, nil, true)

	code, env := doGet[playerProjectionDTO](t, router, "/v1/players/projection?name=Connor+McDavid&date=2024-01-10&line=2&basis=l5")
	require.Equal(t, http.StatusOK, code)

	assert.Equal(t, "2024-01-10", env.Data.Date)
	assert.Equal(t, "l5", env.Data.Basis)
	assert.Equal(t, 200.0, env.Data.HitRate.Rate)
}

func TestHandler_GetPlayerProjection_Goals(t *testing.T) {
	router := newTestRouter(t, nil, true)

	code, env := doGet[playerProjectionDTO](t, router, "/v1/players/projection?name=Connor+McDavid&stat=goals")
	require.Equal(t, http.StatusOK, code)

	assert.Equal(t, "Goals", env.Data.StatisticLabel)
	assert.Equal(t, "poisson", env.Data.HitRate.Distribution)
	assert.Equal(t, "projection", env.Data.HitRate.InputSource)
	assert.Equal(t, 63.2, env.Data.HitRate.Rate)
}

func TestHandler_GetPlayerProjection_Errors(t *testing.T) {
	router := newTestRouter(t, nil, true)

	tests := []struct {
		name   string
		target string
		status int
	}{
		{name: "missing name", target: "/v1/players/projection", status: http.StatusBadRequest},
		{name: "negative line", target: "/v1/players/projection?name=Connor+McDavid&line=-1", status: http.StatusBadRequest},
		{name: "non numeric line", target: "/v1/players/projection?name=Connor+McDavid&line=abc", status: http.StatusBadRequest},
		{name: "unknown basis", target: "/v1/players/projection?name=Connor+McDavid&basis=l20", status: http.StatusBadRequest},
		{name: "unknown player", target: "/v1/players/projection?name=Wayne+Gretzky", status: http.StatusNotFound},
		{name: "no record on date", target: "/v1/players/projection?name=Connor+McDavid&date=2024-01-11", status: http.StatusNotFound},
		{name: "incomplete record", target: "/v1/players/projection?name=Leon+Draisaitl", status: http.StatusUnprocessableEntity},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			code, env := doGet[any](t, router, tc.target)
			assert.Equal(t, tc.status, code)
			require.NotNil(t, env.Error)
		})
	}
}

func TestHandler_ListPlayerHistory(t *testing.T) {
	router := newTestRouter(t, nil, true)

	code, env := doGet[[]recordMetricsDTO](t, router, "/v1/players/history?name=Connor+McDavid&limit=1")
	require.Equal(t, http.StatusOK, code)
	require.Len(t, env.Data, 1)
	assert.Equal(t, "2024-01-12", env.Data[0].Date)

	code, _ = doGet[any](t, router, "/v1/players/history?name=Connor+McDavid&limit=0")
	assert.Equal(t, http.StatusOK, code)

	code, _ = doGet[any](t, router, "/v1/players/history?name=Connor+McDavid&limit=500")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestHandler_GetSeasonReport(t *testing.T) {
	router := newTestRouter(t, nil, true)

	code, env := doGet[seasonReportDTO](t, router, "/v1/projections/season")
	require.Equal(t, http.StatusOK, code)

	assert.Equal(t, "shots", env.Data.Statistic)
	assert.Equal(t, 2, env.Data.WorkerCount)
	require.Len(t, env.Data.Slates, 2)
	assert.Equal(t, "2024-01-10", env.Data.Slates[0].Date)
	assert.Equal(t, 2, env.Data.Slates[0].Players)
	assert.Equal(t, 1, env.Data.Slates[0].Excluded)
	require.NotNil(t, env.Data.Slates[0].Top)
	assert.Equal(t, "Connor McDavid", env.Data.Slates[0].Top.Name)
}

func TestHandler_GetPlayerSeasonStats_LocalFallback(t *testing.T) {
	router := newTestRouter(t, nil, true)

	code, env := doGet[seasonStatsDTO](t, router, "/v1/players/season-stats?name=Connor+McDavid")
	require.Equal(t, http.StatusOK, code)

	assert.Equal(t, "local_records", env.Data.Source)
	assert.Equal(t, "20232024", env.Data.Season)
	assert.Equal(t, 2, env.Data.GamesPlayed)
	assert.Equal(t, "20:00", env.Data.AvgTOI)
	require.NotNil(t, env.Data.ShotsPerGame)
	assert.Equal(t, 4.0, *env.Data.ShotsPerGame)
}

func TestHandler_GetPlayerSeasonStats_Remote(t *testing.T) {
	provider := seasonstatsmock.NewProvider(t)
	goals := 32
	provider.On("SearchPlayer", mock.Anything, "Connor McDavid").
		Return(seasonstats.Player{ID: 8478402, Name: "Connor McDavid", Team: "EDM"}, true, nil).Once()
	provider.On("FetchSeasonStats", mock.Anything, int64(8478402), "20232024").
		Return(seasonstats.Summary{GamesPlayed: 76, Goals: &goals, AvgTOI: "21:22"}, true, nil).Once()

	router := newTestRouter(t, provider, true)

	code, env := doGet[seasonStatsDTO](t, router, "/v1/players/season-stats?name=Connor+McDavid&season=20232024")
	require.Equal(t, http.StatusOK, code)

	assert.Equal(t, "remote", env.Data.Source)
	assert.Equal(t, int64(8478402), env.Data.PlayerID)
	assert.Equal(t, 76, env.Data.GamesPlayed)
	require.NotNil(t, env.Data.Goals)
	assert.Equal(t, 32, *env.Data.Goals)

	// second call is served from the cache
	code, _ = doGet[seasonStatsDTO](t, router, "/v1/players/season-stats?name=Connor+McDavid&season=20232024")
	assert.Equal(t, http.StatusOK, code)
}

func TestHandler_GetPlayerSeasonStats_Errors(t *testing.T) {
	router := newTestRouter(t, nil, false)

	code, _ := doGet[any](t, router, "/v1/players/season-stats?name=Connor+McDavid")
	assert.Equal(t, http.StatusServiceUnavailable, code)

	router = newTestRouter(t, nil, true)
	code, _ = doGet[any](t, router, "/v1/players/season-stats?name=Connor+McDavid&season=2023")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = doGet[any](t, router, "/v1/players/season-stats?name=Connor+McDavid&season=20212022")
	assert.Equal(t, http.StatusNotFound, code)
}
