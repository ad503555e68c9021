package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/prop-projection/internal/domain/gamelog"
	"github.com/riskibarqy/prop-projection/internal/domain/projection"
	"github.com/riskibarqy/prop-projection/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultHitRateLine  = 2.5
	DefaultHistoryLimit = 10
	maxHistoryLimit     = 100
)

type ProjectionConfig struct {
	DefaultLine float64
	// MaxWorkers bounds the season report pool. Non-positive means GOMAXPROCS.
	MaxWorkers int
}

// ProjectionService owns the loaded record set and both predictors. It is built
// once at startup and shared read-only between requests.
type ProjectionService struct {
	repo   gamelog.Repository
	models projection.Models
	cfg    ProjectionConfig
	logger *logging.Logger
}

func NewProjectionService(repo gamelog.Repository, models projection.Models, cfg ProjectionConfig, logger *logging.Logger) *ProjectionService {
	if cfg.DefaultLine <= 0 {
		cfg.DefaultLine = DefaultHitRateLine
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &ProjectionService{
		repo:   repo,
		models: models,
		cfg:    cfg,
		logger: logger.With("component", "projection_service"),
	}
}

type ProjectedRow struct {
	Record     gamelog.Record
	Projection float64
}

type SlateProjection struct {
	Date      time.Time
	Statistic projection.Statistic
	// Rows keeps source order.
	Rows     []ProjectedRow
	Excluded int
}

// Ranked returns the rows sorted by projection, highest first. Ties keep source order.
func (p SlateProjection) Ranked() []ProjectedRow {
	out := make([]ProjectedRow, len(p.Rows))
	copy(out, p.Rows)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Projection > out[j].Projection
	})
	return out
}

type PlayerProjectionInput struct {
	Name      string
	Date      *time.Time
	Statistic projection.Statistic
	Line      *float64
	Basis     projection.Basis
}

type PlayerProjection struct {
	Record     gamelog.Record
	Statistic  projection.Statistic
	Projection float64
	Line       float64
	Basis      projection.Basis
	HitRate    projection.HitRate
}

func (s *ProjectionService) RecordCount(ctx context.Context) (int, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return count, nil
}

func (s *ProjectionService) ListDates(ctx context.Context) ([]time.Time, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProjectionService.ListDates")
	defer span.End()

	dates, err := s.repo.ListDates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list dates: %w", err)
	}
	return dates, nil
}

// ListPlayers returns distinct display names, optionally restricted to one slate.
func (s *ProjectionService) ListPlayers(ctx context.Context, date *time.Time) ([]string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProjectionService.ListPlayers")
	defer span.End()

	names, err := s.repo.ListNames(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("list player names: %w", err)
	}
	return names, nil
}

// ProjectSlate projects every complete record on one date. Incomplete records are
// excluded and counted, never zero-filled.
func (s *ProjectionService) ProjectSlate(ctx context.Context, date time.Time, stat projection.Statistic) (SlateProjection, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProjectionService.ProjectSlate",
		attribute.String("slate.date", date.Format(gamelog.DateLayout)),
		attribute.String("slate.statistic", string(stat)),
	)
	defer span.End()

	if date.IsZero() {
		return SlateProjection{}, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	records, err := s.repo.ListByDate(ctx, date)
	if err != nil {
		return SlateProjection{}, fmt.Errorf("list records by date: %w", err)
	}
	if len(records) == 0 {
		return SlateProjection{}, fmt.Errorf("%w: no records on %s", ErrNotFound, date.Format(gamelog.DateLayout))
	}

	return s.projectRecords(ctx, date, stat, records)
}

func (s *ProjectionService) projectRecords(ctx context.Context, date time.Time, stat projection.Statistic, records []gamelog.Record) (SlateProjection, error) {
	rows, matrix := projection.AssembleMatrix(records)
	out := SlateProjection{
		Date:      date,
		Statistic: stat,
		Rows:      make([]ProjectedRow, 0, len(rows)),
		Excluded:  len(records) - len(rows),
	}
	if len(rows) == 0 {
		return out, nil
	}

	values, err := s.predict(ctx, stat, matrix)
	if err != nil {
		return SlateProjection{}, err
	}
	for i, rec := range rows {
		out.Rows = append(out.Rows, ProjectedRow{Record: rec, Projection: values[i]})
	}

	return out, nil
}

// ProjectPlayer projects one player. Without a date the newest record is used.
func (s *ProjectionService) ProjectPlayer(ctx context.Context, input PlayerProjectionInput) (PlayerProjection, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProjectionService.ProjectPlayer",
		attribute.String("player.statistic", string(input.Statistic)),
	)
	defer span.End()

	rec, err := s.resolveRecord(ctx, input.Name, input.Date)
	if err != nil {
		return PlayerProjection{}, err
	}

	fv, err := projection.AssembleFeatures(rec)
	if err != nil {
		return PlayerProjection{}, insufficientData(err)
	}

	values, err := s.predict(ctx, input.Statistic, []projection.FeatureVector{fv})
	if err != nil {
		return PlayerProjection{}, err
	}

	line := s.cfg.DefaultLine
	if input.Line != nil {
		line = *input.Line
	}
	basis := input.Basis
	if basis == "" {
		basis = projection.BasisSeason
	}

	hit, err := s.EvaluateHitRate(rec, values[0], projection.HitRateQuery{
		Line:      line,
		Basis:     basis,
		Statistic: input.Statistic,
	})
	if err != nil {
		return PlayerProjection{}, err
	}

	return PlayerProjection{
		Record:     rec,
		Statistic:  input.Statistic,
		Projection: values[0],
		Line:       line,
		Basis:      basis,
		HitRate:    hit,
	}, nil
}

// EvaluateHitRate applies the statistic's hit-rate formula to an already projected record.
func (s *ProjectionService) EvaluateHitRate(rec gamelog.Record, projected float64, query projection.HitRateQuery) (projection.HitRate, error) {
	if math.IsNaN(query.Line) || math.IsInf(query.Line, 0) {
		return projection.HitRate{}, fmt.Errorf("%w: line must be a finite number", ErrInvalidInput)
	}

	hit, err := query.Evaluate(rec, projected)
	switch {
	case errors.Is(err, projection.ErrUnknownBasis):
		return projection.HitRate{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	case err != nil:
		return projection.HitRate{}, insufficientData(err)
	}
	return hit, nil
}

// PlayerHistory returns a player's most recent records, newest first.
func (s *ProjectionService) PlayerHistory(ctx context.Context, name string, limit int) ([]gamelog.Record, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProjectionService.PlayerHistory")
	defer span.End()

	switch {
	case limit <= 0:
		limit = DefaultHistoryLimit
	case limit > maxHistoryLimit:
		limit = maxHistoryLimit
	}

	records, err := s.recordsForName(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (s *ProjectionService) resolveRecord(ctx context.Context, name string, date *time.Time) (gamelog.Record, error) {
	records, err := s.recordsForName(ctx, name)
	if err != nil {
		return gamelog.Record{}, err
	}
	if date == nil {
		return records[0], nil
	}

	key := date.UTC().Format(gamelog.DateLayout)
	for _, rec := range records {
		if rec.DateKey() == key {
			return rec, nil
		}
	}
	return gamelog.Record{}, fmt.Errorf("%w: player=%q date=%s", ErrNotFound, strings.TrimSpace(name), key)
}

func (s *ProjectionService) recordsForName(ctx context.Context, name string) ([]gamelog.Record, error) {
	key := gamelog.NormalizeName(name)
	if key == "" {
		return nil, fmt.Errorf("%w: player name is required", ErrInvalidInput)
	}

	records, err := s.repo.ListByName(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("list records by name: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: player=%q", ErrNotFound, strings.TrimSpace(name))
	}
	return records, nil
}

// predict is the single path both the slate and the single-player flows go through.
func (s *ProjectionService) predict(ctx context.Context, stat projection.Statistic, matrix []projection.FeatureVector) ([]float64, error) {
	model, err := s.model(stat)
	if err != nil {
		return nil, err
	}

	values, err := model.Predict(ctx, matrix)
	if err != nil {
		return nil, fmt.Errorf("predict %s: %w", stat, err)
	}
	if len(values) != len(matrix) {
		return nil, fmt.Errorf("predict %s: got %d values for %d rows", stat, len(values), len(matrix))
	}

	out := make([]float64, len(values))
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("predict %s: non-finite projection at row %d", stat, i)
		}
		out[i] = math.Max(0, v)
	}
	return out, nil
}

func (s *ProjectionService) model(stat projection.Statistic) (projection.Predictor, error) {
	model, err := s.models.For(stat)
	switch {
	case errors.Is(err, projection.ErrUnknownStatistic):
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	}
	return model, nil
}

func insufficientData(err error) error {
	return fmt.Errorf("%w: %v", ErrInsufficientData, err)
}
