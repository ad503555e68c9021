package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/prop-projection/internal/domain/gamelog"
)

// GamelogRepository serves the record set loaded at startup. Records are
// indexed once and never mutated afterwards.
type GamelogRepository struct {
	mu      sync.RWMutex
	records []gamelog.Record
	byDate  map[string][]gamelog.Record
	byName  map[string][]gamelog.Record
	dates   []time.Time
}

func NewGamelogRepository(records []gamelog.Record) *GamelogRepository {
	r := &GamelogRepository{
		records: append([]gamelog.Record(nil), records...),
		byDate:  make(map[string][]gamelog.Record),
		byName:  make(map[string][]gamelog.Record),
	}

	for _, rec := range r.records {
		key := rec.DateKey()
		if _, ok := r.byDate[key]; !ok {
			r.dates = append(r.dates, rec.Date)
		}
		r.byDate[key] = append(r.byDate[key], rec)
		r.byName[rec.NameKey()] = append(r.byName[rec.NameKey()], rec)
	}

	sort.Slice(r.dates, func(i, j int) bool { return r.dates[i].Before(r.dates[j]) })
	for key, items := range r.byName {
		sort.SliceStable(items, func(i, j int) bool { return items[i].Date.After(items[j].Date) })
		r.byName[key] = items
	}

	return r
}

func (r *GamelogRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.records), nil
}

func (r *GamelogRepository) ListDates(_ context.Context) ([]time.Time, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]time.Time(nil), r.dates...), nil
}

func (r *GamelogRepository) ListByDate(_ context.Context, date time.Time) ([]gamelog.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := r.byDate[date.UTC().Format(gamelog.DateLayout)]
	return append([]gamelog.Record(nil), items...), nil
}

func (r *GamelogRepository) ListByName(_ context.Context, name string) ([]gamelog.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := r.byName[gamelog.NormalizeName(name)]
	return append([]gamelog.Record(nil), items...), nil
}

// ListNames returns each player once under the first display name seen, sorted.
func (r *GamelogRepository) ListNames(_ context.Context, date *time.Time) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	source := r.records
	if date != nil {
		source = r.byDate[date.UTC().Format(gamelog.DateLayout)]
	}

	seen := make(map[string]struct{}, len(source))
	out := make([]string, 0, len(source))
	for _, rec := range source {
		if _, ok := seen[rec.NameKey()]; ok {
			continue
		}
		seen[rec.NameKey()] = struct{}{}
		out = append(out, rec.Name)
	}
	sort.Strings(out)

	return out, nil
}
