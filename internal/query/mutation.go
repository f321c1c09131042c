package query

import (
	"context"

	"go.uber.org/zap"
)

// Mutation describes a write and the tags it makes stale.
type Mutation[In, Out any] struct {
	Name        string
	Do          func(ctx context.Context, in In) (Out, error)
	Invalidates []Tag
}

// Mutate runs m once; writes are never retried. On success every cached
// query tagged with one of m.Invalidates is invalidated before the result is
// returned. A failed write leaves the cache untouched.
func Mutate[In, Out any](ctx context.Context, c *Client, m Mutation[In, Out], in In) (Out, error) {
	out, err := m.Do(ctx, in)
	if err != nil {
		c.logger.Debug("Mutation failed", zap.String("mutation", m.Name), zap.Error(err))
		return out, err
	}

	n := c.Invalidate(ctx, m.Invalidates...)
	c.logger.Debug("Mutation applied",
		zap.String("mutation", m.Name),
		zap.Int("invalidated", n),
	)
	return out, nil
}
