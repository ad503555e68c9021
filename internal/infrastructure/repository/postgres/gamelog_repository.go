package postgres

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/prop-projection/internal/domain/gamelog"
	qb "github.com/riskibarqy/prop-projection/internal/platform/querybuilder"
)

const importBatchSize = 500

type GamelogRepository struct {
	db     *sqlx.DB
	policy gamelog.TOIPolicy
}

func NewGamelogRepository(db *sqlx.DB, policy gamelog.TOIPolicy) *GamelogRepository {
	return &GamelogRepository{db: db, policy: policy}
}

func (r *GamelogRepository) Count(ctx context.Context) (int, error) {
	query, args, err := qb.Select("COUNT(1)").From(gameLogTable).ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count game logs query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count game logs: %w", err)
	}
	return count, nil
}

func (r *GamelogRepository) ListDates(ctx context.Context) ([]time.Time, error) {
	query, args, err := qb.Select("game_date").Distinct().From(gameLogTable).OrderBy("game_date").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select game dates query: %w", err)
	}

	var dates []time.Time
	if err := r.db.SelectContext(ctx, &dates, query, args...); err != nil {
		return nil, fmt.Errorf("select game dates: %w", err)
	}
	for i := range dates {
		dates[i] = dates[i].UTC()
	}
	return dates, nil
}

func (r *GamelogRepository) ListByDate(ctx context.Context, date time.Time) ([]gamelog.Record, error) {
	return r.selectRecords(ctx, "by date",
		qb.Select(gameLogSelectColumns...).From(gameLogTable).
			Where(qb.Eq("game_date", date.UTC().Format(gamelog.DateLayout))).
			OrderBy("id"),
	)
}

func (r *GamelogRepository) ListByName(ctx context.Context, name string) ([]gamelog.Record, error) {
	return r.selectRecords(ctx, "by name",
		qb.Select(gameLogSelectColumns...).From(gameLogTable).
			Where(qb.Eq("name_key", gamelog.NormalizeName(name))).
			OrderBy("game_date DESC", "id"),
	)
}

func (r *GamelogRepository) ListNames(ctx context.Context, date *time.Time) ([]string, error) {
	b := qb.Select("name", "name_key").From(gameLogTable).OrderBy("id")
	if date != nil {
		b.Where(qb.Eq("game_date", date.UTC().Format(gamelog.DateLayout)))
	}
	query, args, err := b.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select player names query: %w", err)
	}

	var rows []struct {
		Name    string `db:"name"`
		NameKey string `db:"name_key"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select player names: %w", err)
	}

	seen := make(map[string]struct{}, len(rows))
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		if _, ok := seen[row.NameKey]; ok {
			continue
		}
		seen[row.NameKey] = struct{}{}
		out = append(out, row.Name)
	}
	sort.Strings(out)
	return out, nil
}

// Import upserts records in batches inside one transaction and returns the number written.
// When the input repeats a (player, date) pair the last row wins.
func (r *GamelogRepository) Import(ctx context.Context, records []gamelog.Record) (int, error) {
	records = dedupeByPlayerDate(records)
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	written := 0
	for start := 0; start < len(records); start += importBatchSize {
		end := min(start+importBatchSize, len(records))
		models := make([]gameLogTableModel, 0, end-start)
		for _, rec := range records[start:end] {
			models = append(models, gameLogModelFromRecord(rec))
		}

		query, args, err := qb.InsertModels(gameLogTable, importConflictClause, models)
		if err != nil {
			return 0, fmt.Errorf("build import batch query: %w", err)
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, fmt.Errorf("import batch at row %d: %w", start, err)
		}
		affected, _ := res.RowsAffected()
		written += int(affected)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import tx: %w", err)
	}
	return written, nil
}

func dedupeByPlayerDate(records []gamelog.Record) []gamelog.Record {
	last := make(map[string]int, len(records))
	for i, rec := range records {
		last[rec.NameKey()+"|"+rec.DateKey()] = i
	}
	if len(last) == len(records) {
		return records
	}

	out := make([]gamelog.Record, 0, len(last))
	for i, rec := range records {
		if last[rec.NameKey()+"|"+rec.DateKey()] == i {
			out = append(out, rec)
		}
	}
	return out
}

const importConflictClause = `ON CONFLICT (name_key, game_date) DO UPDATE SET
name = EXCLUDED.name,
team = EXCLUDED.team,
opponent = EXCLUDED.opponent,
season_avg = EXCLUDED.season_avg,
l5_avg = EXCLUDED.l5_avg,
l10_avg = EXCLUDED.l10_avg,
toi_text = EXCLUDED.toi_text,
toi_number = EXCLUDED.toi_number,
updated_at = NOW()`

func (r *GamelogRepository) selectRecords(ctx context.Context, label string, b *qb.SelectBuilder) ([]gamelog.Record, error) {
	query, args, err := b.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select game logs %s query: %w", label, err)
	}

	var rows []gameLogTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select game logs %s: %w", label, err)
	}

	out := make([]gamelog.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := row.toRecord(r.policy)
		if err != nil {
			return nil, fmt.Errorf("map game log row: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}
