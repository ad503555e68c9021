package gamelog

import (
	"context"
	"time"
)

// Repository describes read access to the loaded record set.
type Repository interface {
	Count(ctx context.Context) (int, error)
	ListDates(ctx context.Context) ([]time.Time, error)
	ListByDate(ctx context.Context, date time.Time) ([]Record, error)
	// ListByName returns every record for a normalized name, newest first.
	ListByName(ctx context.Context, name string) ([]Record, error)
	ListNames(ctx context.Context, date *time.Time) ([]string, error)
}
