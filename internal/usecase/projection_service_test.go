package usecase

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/riskibarqy/prop-projection/internal/domain/gamelog"
	"github.com/riskibarqy/prop-projection/internal/domain/projection"
	"github.com/riskibarqy/prop-projection/internal/infrastructure/repository/memory"
	projectionmock "github.com/riskibarqy/prop-projection/internal/mocks/domain/projection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	slateDay1 = time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	slateDay2 = time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC)
)

// weighted mirrors a fitted linear estimator: 0.5*L5 + 0.3*L10 + 0.05*TOI.
type weighted struct{ intercept float64 }

func (w weighted) Predict(_ context.Context, in []projection.FeatureVector) ([]float64, error) {
	out := make([]float64, len(in))
	for i, fv := range in {
		out[i] = w.intercept + 0.5*fv[0] + 0.3*fv[1] + 0.05*fv[2]
	}
	return out, nil
}

func fixtureRecords(t *testing.T) []gamelog.Record {
	t.Helper()

	inputs := []gamelog.RecordInput{
		{Name: "Connor McDavid", Team: "EDM", Opponent: "CGY", Date: slateDay1, SeasonAvg: fp(3.6), L5Avg: fp(4.0), L10Avg: fp(3.8), TOI: gamelog.TOIFromText("22:30")},
		{Name: "Leon Draisaitl", Team: "EDM", Opponent: "CGY", Date: slateDay1, SeasonAvg: fp(3.1), L5Avg: fp(3.0), TOI: gamelog.TOIFromText("21:00")},
		{Name: "Auston Matthews", Team: "TOR", Opponent: "MTL", Date: slateDay1, SeasonAvg: fp(4.5), L5Avg: fp(5.0), L10Avg: fp(4.6), TOI: gamelog.TOIFromNumber(21.5)},
		{Name: "Mitch Marner", Team: "TOR", Opponent: "MTL", Date: slateDay1, SeasonAvg: fp(2.5), L5Avg: fp(2.2), L10Avg: fp(2.4), TOI: gamelog.TOIFromText("bad")},
		{Name: "Connor McDavid", Team: "EDM", Opponent: "VAN", Date: slateDay2, SeasonAvg: fp(3.7), L5Avg: fp(4.4), L10Avg: fp(4.0), TOI: gamelog.TOIFromText("23:15")},
		{Name: "Quinn Hughes", Team: "VAN", Opponent: "EDM", Date: slateDay2, L5Avg: fp(2.6), L10Avg: fp(2.5), TOI: gamelog.TOIFromText("25:00")},
	}

	out := make([]gamelog.Record, 0, len(inputs))
	for _, in := range inputs {
		rec, err := gamelog.NewRecord(in, gamelog.DefaultTOIPolicy())
		require.NoError(t, err)
		out = append(out, rec)
	}
	return out
}

func newProjectionService(t *testing.T, models projection.Models) *ProjectionService {
	t.Helper()
	repo := memory.NewGamelogRepository(fixtureRecords(t))
	return NewProjectionService(repo, models, ProjectionConfig{MaxWorkers: 2}, nil)
}

func TestProjectionService_ProjectSlate_ExcludesIncompleteRows(t *testing.T) {
	t.Parallel()

	svc := newProjectionService(t, projection.Models{Shots: weighted{}, Goals: weighted{}})

	slate, err := svc.ProjectSlate(context.Background(), slateDay1, projection.StatisticShots)
	require.NoError(t, err)

	require.Len(t, slate.Rows, 2)
	assert.Equal(t, 2, slate.Excluded)
	assert.Equal(t, "Connor McDavid", slate.Rows[0].Record.Name)
	assert.Equal(t, "Auston Matthews", slate.Rows[1].Record.Name)

	ranked := slate.Ranked()
	assert.Equal(t, "Auston Matthews", ranked[0].Record.Name)
	assert.Equal(t, "Connor McDavid", slate.Rows[0].Record.Name, "Ranked must not reorder the source rows")
}

func TestProjectionService_ProjectSlate_UnknownDate(t *testing.T) {
	t.Parallel()

	svc := newProjectionService(t, projection.Models{Shots: weighted{}})
	_, err := svc.ProjectSlate(context.Background(), time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), projection.StatisticShots)
	assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
}

func TestProjectionService_SingleAndBulkAgree(t *testing.T) {
	t.Parallel()

	svc := newProjectionService(t, projection.Models{Shots: weighted{intercept: 0.2}, Goals: weighted{}})
	ctx := context.Background()

	slate, err := svc.ProjectSlate(ctx, slateDay1, projection.StatisticShots)
	require.NoError(t, err)

	for _, row := range slate.Rows {
		date := row.Record.Date
		single, err := svc.ProjectPlayer(ctx, PlayerProjectionInput{
			Name:      row.Record.Name,
			Date:      &date,
			Statistic: projection.StatisticShots,
		})
		require.NoError(t, err)
		assert.Equal(t, row.Projection, single.Projection, "player=%s", row.Record.Name)
	}
}

func TestProjectionService_ProjectPlayer(t *testing.T) {
	t.Parallel()

	svc := newProjectionService(t, projection.Models{Shots: weighted{}, Goals: weighted{}})
	ctx := context.Background()

	t.Run("padded name resolves to the latest record", func(t *testing.T) {
		got, err := svc.ProjectPlayer(ctx, PlayerProjectionInput{Name: " Connor McDavid ", Statistic: projection.StatisticShots})
		require.NoError(t, err)
		assert.Equal(t, "Connor McDavid", got.Record.Name)
		assert.Equal(t, slateDay2, got.Record.Date)
		assert.Equal(t, DefaultHitRateLine, got.Line)
		assert.Equal(t, projection.BasisSeason, got.Basis)
		assert.Equal(t, projection.HitRateLinear(3.7, 2.5), got.HitRate.Rate)
	})

	t.Run("goals use poisson on the projection", func(t *testing.T) {
		line := 0.5
		got, err := svc.ProjectPlayer(ctx, PlayerProjectionInput{Name: "auston matthews", Statistic: projection.StatisticGoals, Line: &line})
		require.NoError(t, err)
		assert.Equal(t, projection.DistributionPoisson, got.HitRate.Distribution)
		assert.Equal(t, projection.HitRatePoisson(got.Projection), got.HitRate.Rate)
	})

	t.Run("incomplete record is insufficient data", func(t *testing.T) {
		_, err := svc.ProjectPlayer(ctx, PlayerProjectionInput{Name: "Mitch Marner", Statistic: projection.StatisticShots})
		assert.True(t, errors.Is(err, ErrInsufficientData), "got %v", err)
	})

	t.Run("missing basis is insufficient data", func(t *testing.T) {
		_, err := svc.ProjectPlayer(ctx, PlayerProjectionInput{Name: "Quinn Hughes", Statistic: projection.StatisticShots})
		assert.True(t, errors.Is(err, ErrInsufficientData), "got %v", err)
	})

	t.Run("unknown player", func(t *testing.T) {
		_, err := svc.ProjectPlayer(ctx, PlayerProjectionInput{Name: "Wayne Gretzky", Statistic: projection.StatisticShots})
		assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
	})

	t.Run("date without a record", func(t *testing.T) {
		_, err := svc.ProjectPlayer(ctx, PlayerProjectionInput{Name: "Quinn Hughes", Date: &slateDay1, Statistic: projection.StatisticShots})
		assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
	})

	t.Run("blank name", func(t *testing.T) {
		_, err := svc.ProjectPlayer(ctx, PlayerProjectionInput{Name: "   ", Statistic: projection.StatisticShots})
		assert.True(t, errors.Is(err, ErrInvalidInput), "got %v", err)
	})
}

func TestProjectionService_PredictorFailures(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("model not loaded", func(t *testing.T) {
		svc := newProjectionService(t, projection.Models{Shots: weighted{}})
		_, err := svc.ProjectSlate(ctx, slateDay1, projection.StatisticGoals)
		assert.True(t, errors.Is(err, ErrDependencyUnavailable), "got %v", err)
	})

	t.Run("negative projection is clamped", func(t *testing.T) {
		predictor := projectionmock.NewPredictor(t)
		predictor.On("Predict", mock.Anything, mock.AnythingOfType("[]projection.FeatureVector")).
			Return([]float64{-0.4}, nil).
			Once()

		svc := newProjectionService(t, projection.Models{Shots: predictor})
		got, err := svc.ProjectPlayer(ctx, PlayerProjectionInput{Name: "Auston Matthews", Statistic: projection.StatisticShots})
		require.NoError(t, err)
		assert.Equal(t, 0.0, got.Projection)
	})

	t.Run("non-finite projection fails", func(t *testing.T) {
		predictor := projectionmock.NewPredictor(t)
		predictor.On("Predict", mock.Anything, mock.Anything).Return([]float64{math.NaN()}, nil).Once()

		svc := newProjectionService(t, projection.Models{Shots: predictor})
		_, err := svc.ProjectPlayer(ctx, PlayerProjectionInput{Name: "Auston Matthews", Statistic: projection.StatisticShots})
		require.Error(t, err)
	})

	t.Run("short prediction fails", func(t *testing.T) {
		predictor := projectionmock.NewPredictor(t)
		predictor.On("Predict", mock.Anything, mock.Anything).Return([]float64{1}, nil).Once()

		svc := newProjectionService(t, projection.Models{Shots: predictor})
		_, err := svc.ProjectSlate(ctx, slateDay1, projection.StatisticShots)
		require.Error(t, err)
	})
}

func TestProjectionService_PlayerHistory(t *testing.T) {
	t.Parallel()

	svc := newProjectionService(t, projection.Models{Shots: weighted{}})

	history, err := svc.PlayerHistory(context.Background(), "CONNOR MCDAVID", 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.True(t, history[0].Date.After(history[1].Date))

	limited, err := svc.PlayerHistory(context.Background(), "Connor McDavid", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestProjectionService_SeasonReport(t *testing.T) {
	t.Parallel()

	svc := newProjectionService(t, projection.Models{Shots: weighted{}, Goals: weighted{}})

	report, err := svc.SeasonReport(context.Background(), projection.StatisticShots)
	require.NoError(t, err)
	require.Len(t, report.Slates, 2)
	assert.Equal(t, 2, report.WorkerCount)

	first := report.Slates[0]
	assert.Equal(t, slateDay1, first.Date)
	assert.Equal(t, 2, first.Players)
	assert.Equal(t, 2, first.Excluded)
	require.NotNil(t, first.Top)
	assert.Equal(t, "Auston Matthews", first.Top.Record.Name)

	second := report.Slates[1]
	assert.Equal(t, slateDay2, second.Date)
	assert.Equal(t, 2, second.Players)
	assert.Equal(t, 0, second.Excluded)

	_, err = svc.SeasonReport(context.Background(), projection.Statistic("hits"))
	assert.True(t, errors.Is(err, ErrInvalidInput), "got %v", err)
}

func fp(v float64) *float64 {
	return &v
}
