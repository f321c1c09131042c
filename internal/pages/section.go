package pages

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Section is one independently loaded part of a detail page. A failing
// section does not affect its siblings.
type Section[T any] struct {
	Status Status     `json:"status"`
	Data   T          `json:"data"`
	Error  *ErrorView `json:"error,omitempty"`
}

func loadSection[T any](ctx context.Context, fetch func(ctx context.Context) (T, error)) Section[T] {
	data, err := fetch(ctx)
	if err != nil {
		return Section[T]{Status: StatusError, Error: newErrorView(err)}
	}
	return Section[T]{Status: StatusReady, Data: data}
}

// detail keeps the last view of a page whose sections load together.
type detail[V any] struct {
	mu     sync.Mutex
	last   V
	loaded bool
	closed bool
}

// load runs every section loader concurrently and stores the assembled view
// unless the page was closed meanwhile.
func (d *detail[V]) load(ctx context.Context, assemble func() V, loaders ...func(ctx context.Context)) V {
	g, gctx := errgroup.WithContext(ctx)
	for _, load := range loaders {
		load := load
		g.Go(func() error {
			load(gctx)
			return nil
		})
	}
	_ = g.Wait()

	v := assemble()
	d.mu.Lock()
	if !d.closed {
		d.last = v
		d.loaded = true
	}
	d.mu.Unlock()
	return v
}

func (d *detail[V]) view() (V, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last, d.loaded
}

func (d *detail[V]) close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
}
