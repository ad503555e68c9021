package resilience

import "golang.org/x/sync/singleflight"

// Group deduplicates concurrent loads of the same key and returns a typed result.
type Group[T any] struct {
	g singleflight.Group
}

func (g *Group[T]) Do(key string, fn func() (T, error)) (T, bool, error) {
	out, err, shared := g.g.Do(key, func() (any, error) {
		return fn()
	})
	if err != nil {
		var zero T
		return zero, shared, err
	}

	value, _ := out.(T)
	return value, shared, nil
}

func (g *Group[T]) Forget(key string) {
	g.g.Forget(key)
}
