package cache

import (
	"context"
	"time"

	"github.com/riskibarqy/prop-projection/internal/domain/gamelog"
	basecache "github.com/riskibarqy/prop-projection/internal/platform/cache"
)

// GamelogRepository memoizes read queries against a slower record source.
type GamelogRepository struct {
	next    gamelog.Repository
	count   *basecache.Store[int]
	dates   *basecache.Store[[]time.Time]
	records *basecache.Store[[]gamelog.Record]
	names   *basecache.Store[[]string]
}

func NewGamelogRepository(next gamelog.Repository, ttl time.Duration) *GamelogRepository {
	return &GamelogRepository{
		next:    next,
		count:   basecache.NewStore[int](ttl),
		dates:   basecache.NewStore[[]time.Time](ttl),
		records: basecache.NewStore[[]gamelog.Record](ttl),
		names:   basecache.NewStore[[]string](ttl),
	}
}

func (r *GamelogRepository) Count(ctx context.Context) (int, error) {
	return r.count.GetOrLoad(ctx, "gamelog:count", r.next.Count)
}

func (r *GamelogRepository) ListDates(ctx context.Context) ([]time.Time, error) {
	items, err := r.dates.GetOrLoad(ctx, "gamelog:dates", r.next.ListDates)
	if err != nil {
		return nil, err
	}
	return append([]time.Time(nil), items...), nil
}

func (r *GamelogRepository) ListByDate(ctx context.Context, date time.Time) ([]gamelog.Record, error) {
	key := "gamelog:date:" + date.UTC().Format(gamelog.DateLayout)
	items, err := r.records.GetOrLoad(ctx, key, func(ctx context.Context) ([]gamelog.Record, error) {
		return r.next.ListByDate(ctx, date)
	})
	if err != nil {
		return nil, err
	}
	return append([]gamelog.Record(nil), items...), nil
}

func (r *GamelogRepository) ListByName(ctx context.Context, name string) ([]gamelog.Record, error) {
	key := "gamelog:name:" + gamelog.NormalizeName(name)
	items, err := r.records.GetOrLoad(ctx, key, func(ctx context.Context) ([]gamelog.Record, error) {
		return r.next.ListByName(ctx, name)
	})
	if err != nil {
		return nil, err
	}
	return append([]gamelog.Record(nil), items...), nil
}

func (r *GamelogRepository) ListNames(ctx context.Context, date *time.Time) ([]string, error) {
	key := "gamelog:names:all"
	if date != nil {
		key = "gamelog:names:" + date.UTC().Format(gamelog.DateLayout)
	}
	items, err := r.names.GetOrLoad(ctx, key, func(ctx context.Context) ([]string, error) {
		return r.next.ListNames(ctx, date)
	})
	if err != nil {
		return nil, err
	}
	return append([]string(nil), items...), nil
}
