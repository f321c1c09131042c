package query

import (
	"context"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Status is the lifecycle state of a cache entry.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// State is a snapshot of one cache entry.
type State struct {
	Status    Status
	Data      interface{}
	Err       error
	UpdatedAt time.Time
	Stale     bool
	Fetching  bool
}

// Bus carries tag invalidations between instances sharing a database.
type Bus interface {
	Publish(ctx context.Context, tags []Tag) error
	Subscribe(ctx context.Context, handler func(tags []Tag)) (func(), error)
}

// Options configure a Client. Zero durations take the defaults.
type Options struct {
	StaleTime time.Duration
	GCTime    time.Duration
	Retry     *RetryPolicy
	Logger    *zap.Logger
	Bus       Bus

	// Now overrides the clock; used by tests.
	Now func() time.Time
}

const (
	DefaultStaleTime = 5 * time.Minute
	DefaultGCTime    = 5 * time.Minute

	publishTimeout = 2 * time.Second
)

type entry struct {
	tags        map[Tag]struct{}
	status      Status
	data        interface{}
	hasData     bool
	err         error
	updatedAt   time.Time
	lastRead    time.Time
	generation  uint64
	invalidated bool
	inflight    int
}

// Client caches query results by Key. Concurrent reads of one key share a
// single fetch, expired entries are served stale while one background
// refetch runs, and invalidated entries block readers until refetched.
type Client struct {
	mu      sync.Mutex
	entries map[Key]*entry
	group   singleflight.Group

	staleTime time.Duration
	gcTime    time.Duration
	retry     RetryPolicy
	now       func() time.Time
	logger    *zap.Logger
	bus       Bus
}

// NewClient creates a Client.
func NewClient(opts Options) *Client {
	c := &Client{
		entries:   make(map[Key]*entry),
		staleTime: opts.StaleTime,
		gcTime:    opts.GCTime,
		retry:     DefaultRetryPolicy(),
		now:       opts.Now,
		logger:    opts.Logger,
		bus:       opts.Bus,
	}
	if c.staleTime <= 0 {
		c.staleTime = DefaultStaleTime
	}
	if c.gcTime <= 0 {
		c.gcTime = DefaultGCTime
	}
	if opts.Retry != nil {
		c.retry = *opts.Retry
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

// Query describes a cached read.
type Query[T any] struct {
	Key   Key
	Tags  []Tag
	Fetch func(ctx context.Context) (T, error)
}

// Fetch returns the cached value for q.Key, fetching it when the entry is
// missing, invalidated, or failed without ever holding data. A cancelled ctx returns ctx.Err() at once;
// the shared fetch keeps running for other readers.
func Fetch[T any](ctx context.Context, c *Client, q Query[T]) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	fetch := func(ctx context.Context) (interface{}, error) {
		return q.Fetch(ctx)
	}

	c.mu.Lock()
	e := c.entryLocked(q.Key, q.Tags)
	now := c.now()
	e.lastRead = now
	gen := e.generation

	// A failed background refetch keeps the last data; it is served stale.
	if e.hasData && !e.invalidated {
		data := e.data
		stale := e.status != StatusSuccess || now.Sub(e.updatedAt) >= c.staleTime
		c.mu.Unlock()

		if stale {
			c.logger.Debug("Serving stale query result, refetching", zap.String("key", q.Key.String()))
			c.run(ctx, q.Key, gen, fetch)
		}
		return cast[T](data), nil
	}
	c.mu.Unlock()

	ch := c.run(ctx, q.Key, gen, fetch)
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return cast[T](res.Val), nil
	}
}

func cast[T any](v interface{}) T {
	t, _ := v.(T)
	return t
}

func (c *Client) entryLocked(key Key, tags []Tag) *entry {
	e, ok := c.entries[key]
	if !ok {
		e = &entry{status: StatusIdle, tags: make(map[Tag]struct{}, len(tags))}
		c.entries[key] = e
	}
	for _, t := range tags {
		e.tags[t] = struct{}{}
	}
	return e
}

func flightKey(key Key, gen uint64) string {
	return key.String() + "#" + strconv.FormatUint(gen, 10)
}

// run joins or starts the fetch for (key, gen). The fetch is detached from
// the caller's cancellation.
func (c *Client) run(ctx context.Context, key Key, gen uint64, fetch func(context.Context) (interface{}, error)) <-chan singleflight.Result {
	fetchCtx := context.WithoutCancel(ctx)

	return c.group.DoChan(flightKey(key, gen), func() (interface{}, error) {
		if v, ok := c.begin(key, gen); ok {
			return v, nil
		}

		v, err := c.fetchWithRetry(fetchCtx, key, fetch)
		c.settle(key, gen, v, err)
		return v, err
	})
}

// begin marks the entry as fetching. It returns the cached data instead
// when a flight that just finished already settled this generation.
func (c *Client) begin(key Key, gen uint64) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entryLocked(key, nil)
	if e.generation == gen && e.status == StatusSuccess && !e.invalidated &&
		c.now().Sub(e.updatedAt) < c.staleTime {
		return e.data, true
	}

	e.inflight++
	if e.generation == gen && !e.hasData {
		e.status = StatusLoading
	}
	return nil, false
}

func (c *Client) fetchWithRetry(ctx context.Context, key Key, fetch func(context.Context) (interface{}, error)) (interface{}, error) {
	for attempt := 0; ; attempt++ {
		v, err := fetch(ctx)
		if err == nil {
			return v, nil
		}
		if !c.retry.ShouldRetry(attempt, err) {
			c.logger.Debug("Query failed",
				zap.String("key", key.String()),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			return nil, err
		}

		delay := c.retry.Backoff(attempt)
		c.logger.Warn("Query failed, retrying",
			zap.String("key", key.String()),
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", delay),
			zap.Error(err),
		)
		if err := sleepContext(ctx, delay); err != nil {
			return nil, err
		}
	}
}

// settle stores a fetch result unless the entry moved to a newer generation.
func (c *Client) settle(key Key, gen uint64, v interface{}, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entries[key]
	e.inflight--

	if e.generation != gen {
		c.logger.Debug("Discarding query result from an older generation",
			zap.String("key", key.String()),
			zap.Uint64("generation", gen),
			zap.Uint64("current", e.generation),
		)
		return
	}

	if err != nil {
		e.status = StatusError
		e.err = err
		return
	}

	e.status = StatusSuccess
	e.data = v
	e.hasData = true
	e.err = nil
	e.updatedAt = c.now()
	e.invalidated = false
}

// State returns a snapshot of the entry for key without fetching.
func (c *Client) State(key Key) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return State{Status: StatusIdle}
	}
	return State{
		Status:    e.status,
		Data:      e.data,
		Err:       e.err,
		UpdatedAt: e.updatedAt,
		Stale:     e.hasData && (e.invalidated || e.status != StatusSuccess || c.now().Sub(e.updatedAt) >= c.staleTime),
		Fetching:  e.inflight > 0,
	}
}

// Invalidate marks every entry tagged with any of tags as invalidated, so
// the next read refetches, and forwards the tags to the bus.
func (c *Client) Invalidate(ctx context.Context, tags ...Tag) int {
	n := c.invalidateLocal(tags)

	if c.bus != nil && len(tags) > 0 {
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()
		if err := c.bus.Publish(pubCtx, tags); err != nil {
			c.logger.Warn("Failed to publish cache invalidation", zap.Error(err))
		}
	}
	return n
}

func (c *Client) invalidateLocal(tags []Tag) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, e := range c.entries {
		for _, t := range tags {
			if _, ok := e.tags[t]; ok {
				e.generation++
				e.invalidated = true
				n++
				break
			}
		}
	}
	return n
}

// Listen applies invalidations received from the bus until the returned
// cancel func is called.
func (c *Client) Listen(ctx context.Context) (func(), error) {
	if c.bus == nil {
		return func() {}, nil
	}
	return c.bus.Subscribe(ctx, func(tags []Tag) {
		n := c.invalidateLocal(tags)
		c.logger.Debug("Applied remote cache invalidation", zap.Int("entries", n))
	})
}

// GC evicts entries that have not been read for gcTime and are not being
// fetched. It returns the number of evicted entries.
func (c *Client) GC() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	n := 0
	for key, e := range c.entries {
		if e.inflight == 0 && now.Sub(e.lastRead) >= c.gcTime {
			delete(c.entries, key)
			n++
		}
	}
	return n
}

// Len returns the number of cached entries.
func (c *Client) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
