package usecase

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/prop-projection/internal/domain/projection"
	"go.opentelemetry.io/otel/attribute"
)

type SlateSummary struct {
	Date           time.Time
	Players        int
	Excluded       int
	MeanProjection float64
	Top            *ProjectedRow
}

type SeasonReport struct {
	Statistic   projection.Statistic
	WorkerCount int
	Slates      []SlateSummary
}

// SeasonReport projects every slate on a bounded worker pool and returns one
// summary per date, oldest first.
func (s *ProjectionService) SeasonReport(ctx context.Context, stat projection.Statistic) (SeasonReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProjectionService.SeasonReport",
		attribute.String("report.statistic", string(stat)),
	)
	defer span.End()

	if _, err := s.model(stat); err != nil {
		return SeasonReport{}, err
	}

	dates, err := s.repo.ListDates(ctx)
	if err != nil {
		return SeasonReport{}, fmt.Errorf("list dates: %w", err)
	}

	workerCount := normalizeWorkerCount(s.cfg.MaxWorkers, len(dates))
	report := SeasonReport{
		Statistic:   stat,
		WorkerCount: workerCount,
		Slates:      make([]SlateSummary, 0, len(dates)),
	}
	if len(dates) == 0 {
		return report, nil
	}

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return SeasonReport{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		mu       sync.Mutex
		firstErr error
		workers  sync.WaitGroup
	)
	for _, date := range dates {
		date := date
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			summary, err := s.summarizeSlate(ctx, date, stat)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			report.Slates = append(report.Slates, summary)
		}); err != nil {
			workers.Done()
			workers.Wait()
			return SeasonReport{}, fmt.Errorf("submit slate to worker pool: %w", err)
		}
	}
	workers.Wait()

	if firstErr != nil {
		return SeasonReport{}, firstErr
	}

	sort.Slice(report.Slates, func(i, j int) bool {
		return report.Slates[i].Date.Before(report.Slates[j].Date)
	})

	s.logger.InfoContext(ctx, "season report computed",
		"statistic", string(stat),
		"slates", len(report.Slates),
		"workers", workerCount,
	)
	return report, nil
}

func (s *ProjectionService) summarizeSlate(ctx context.Context, date time.Time, stat projection.Statistic) (SlateSummary, error) {
	if err := ctx.Err(); err != nil {
		return SlateSummary{}, err
	}

	records, err := s.repo.ListByDate(ctx, date)
	if err != nil {
		return SlateSummary{}, fmt.Errorf("list records by date: %w", err)
	}

	slate, err := s.projectRecords(ctx, date, stat, records)
	if err != nil {
		return SlateSummary{}, err
	}

	summary := SlateSummary{
		Date:     date,
		Players:  len(slate.Rows),
		Excluded: slate.Excluded,
	}
	if len(slate.Rows) == 0 {
		return summary, nil
	}

	var total float64
	for _, row := range slate.Rows {
		total += row.Projection
	}
	summary.MeanProjection = projection.Round1(total / float64(len(slate.Rows)))

	top := slate.Ranked()[0]
	summary.Top = &top
	return summary, nil
}

func normalizeWorkerCount(value, taskCount int) int {
	if value <= 0 {
		value = runtime.GOMAXPROCS(0)
	}
	if value > taskCount {
		value = taskCount
	}
	if value < 1 {
		value = 1
	}
	return value
}
