package query

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/yukikurage/learning-admin-api/internal/errors"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func fastRetry(n int) *RetryPolicy {
	return &RetryPolicy{MaxRetries: n, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func newTestClient(clock *fakeClock) *Client {
	return NewClient(Options{Now: clock.Now, Retry: fastRetry(3)})
}

func TestNewKey_Canonical(t *testing.T) {
	a := NewKey("users.list", map[string]interface{}{"page": 1, "search": "al", "filters": map[string]string{"role": "ADMIN", "organizationId": "x"}})
	b := NewKey("users.list", map[string]interface{}{"filters": map[string]string{"organizationId": "x", "role": "ADMIN"}, "search": "al", "page": 1})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, NewKey("users.list", map[string]interface{}{"page": 2}))
	assert.NotEqual(t, a, NewKey("courses.list", map[string]interface{}{"page": 1, "search": "al", "filters": map[string]string{"role": "ADMIN", "organizationId": "x"}}))
	assert.Equal(t, "dashboard.metrics", NewKey("dashboard.metrics", nil).String())
}

func TestFetch_DeduplicatesConcurrentReads(t *testing.T) {
	c := newTestClient(newFakeClock())
	key := NewKey("users.list", map[string]int{"page": 1})

	var calls int32
	started := make(chan struct{})
	release := make(chan struct{})
	q := Query[string]{
		Key:  key,
		Tags: []Tag{TagUsers},
		Fetch: func(ctx context.Context) (string, error) {
			if atomic.AddInt32(&calls, 1) == 1 {
				close(started)
			}
			<-release
			return "users", nil
		},
	}

	const readers = 8
	var wg sync.WaitGroup
	results := make([]string, readers)
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := Fetch(context.Background(), c, q)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}

	<-started
	assert.Equal(t, StatusLoading, c.State(key).Status)
	assert.True(t, c.State(key).Fetching)
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, v := range results {
		assert.Equal(t, "users", v)
	}
	state := c.State(key)
	assert.Equal(t, StatusSuccess, state.Status)
	assert.False(t, state.Stale)
	assert.False(t, state.Fetching)
}

func TestFetch_FreshEntryIsServedFromCache(t *testing.T) {
	clock := newFakeClock()
	c := newTestClient(clock)

	var calls int32
	q := Query[int]{
		Key: NewKey("courses.list", nil),
		Fetch: func(ctx context.Context) (int, error) {
			return int(atomic.AddInt32(&calls, 1)), nil
		},
	}

	v, err := Fetch(context.Background(), c, q)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	clock.Advance(DefaultStaleTime - time.Second)
	v, err = Fetch(context.Background(), c, q)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFetch_StaleWhileRevalidate(t *testing.T) {
	clock := newFakeClock()
	c := newTestClient(clock)
	key := NewKey("organizations.list", nil)

	var calls int32
	q := Query[int]{
		Key: key,
		Fetch: func(ctx context.Context) (int, error) {
			return int(atomic.AddInt32(&calls, 1)), nil
		},
	}

	_, err := Fetch(context.Background(), c, q)
	require.NoError(t, err)

	clock.Advance(DefaultStaleTime + time.Second)
	assert.True(t, c.State(key).Stale)

	v, err := Fetch(context.Background(), c, q)
	require.NoError(t, err)
	assert.Equal(t, 1, v, "stale data is returned immediately")

	require.Eventually(t, func() bool {
		s := c.State(key)
		return !s.Fetching && s.Data == 2
	}, time.Second, 5*time.Millisecond)

	v, err = Fetch(context.Background(), c, q)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestFetch_FailedRevalidationKeepsServingStaleData(t *testing.T) {
	clock := newFakeClock()
	c := newTestClient(clock)
	key := NewKey("courses.list", nil)

	var failing atomic.Bool
	var source atomic.Value
	source.Store("v1")
	q := Query[string]{
		Key: key,
		Fetch: func(ctx context.Context) (string, error) {
			if failing.Load() {
				return "", apierrors.Transient("list courses", errors.New("connection reset"))
			}
			return source.Load().(string), nil
		},
	}

	_, err := Fetch(context.Background(), c, q)
	require.NoError(t, err)

	failing.Store(true)
	clock.Advance(DefaultStaleTime + time.Second)
	v, err := Fetch(context.Background(), c, q)
	require.NoError(t, err)
	assert.Equal(t, "v1", v)

	require.Eventually(t, func() bool {
		s := c.State(key)
		return !s.Fetching && s.Status == StatusError
	}, time.Second, 5*time.Millisecond)

	failing.Store(false)
	source.Store("v2")
	v, err = Fetch(context.Background(), c, q)
	require.NoError(t, err)
	assert.Equal(t, "v1", v, "the read does not wait for the refetch")

	require.Eventually(t, func() bool {
		s := c.State(key)
		return !s.Fetching && s.Status == StatusSuccess && s.Data == "v2"
	}, time.Second, 5*time.Millisecond)
}

func TestFetch_InvalidatedEntryBlocksOnRefetch(t *testing.T) {
	c := newTestClient(newFakeClock())
	key := NewKey("organizations.list", nil)

	var source atomic.Value
	source.Store("before")
	q := Query[string]{
		Key:  key,
		Tags: []Tag{TagOrganizations},
		Fetch: func(ctx context.Context) (string, error) {
			return source.Load().(string), nil
		},
	}

	v, err := Fetch(context.Background(), c, q)
	require.NoError(t, err)
	assert.Equal(t, "before", v)

	source.Store("after")
	assert.Equal(t, 0, c.Invalidate(context.Background(), TagCourses))
	assert.Equal(t, 1, c.Invalidate(context.Background(), TagOrganizations))
	assert.True(t, c.State(key).Stale)

	v, err = Fetch(context.Background(), c, q)
	require.NoError(t, err)
	assert.Equal(t, "after", v)
}

func TestFetch_DiscardsResultsFromOlderGeneration(t *testing.T) {
	c := newTestClient(newFakeClock())
	key := NewKey("users.get", "u1")

	var calls int32
	started := make(chan struct{})
	release := make(chan struct{})
	q := Query[string]{
		Key:  key,
		Tags: []Tag{TagUsers},
		Fetch: func(ctx context.Context) (string, error) {
			if atomic.AddInt32(&calls, 1) == 1 {
				close(started)
				<-release
				return "old", nil
			}
			return "new", nil
		},
	}

	oldResult := make(chan string, 1)
	go func() {
		v, _ := Fetch(context.Background(), c, q)
		oldResult <- v
	}()
	<-started

	c.Invalidate(context.Background(), TagUsers)

	v, err := Fetch(context.Background(), c, q)
	require.NoError(t, err)
	assert.Equal(t, "new", v)

	close(release)
	assert.Equal(t, "old", <-oldResult)

	state := c.State(key)
	assert.Equal(t, "new", state.Data)
	assert.Equal(t, StatusSuccess, state.Status)
	assert.False(t, state.Stale)
}

func TestFetch_DoesNotRetryPermanentErrors(t *testing.T) {
	for name, fetchErr := range map[string]error{
		"unauthorized": apierrors.ErrUnauthorized,
		"not found":    apierrors.NotFoundf("course", "c1"),
		"validation":   apierrors.NewValidationError("role", "invalid"),
	} {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(newFakeClock())
			key := NewKey("courses.get", "c1")

			var calls int32
			_, err := Fetch(context.Background(), c, Query[string]{
				Key: key,
				Fetch: func(ctx context.Context) (string, error) {
					atomic.AddInt32(&calls, 1)
					return "", fetchErr
				},
			})
			require.Error(t, err)
			assert.True(t, errors.Is(err, fetchErr) || apierrors.KindOf(err) == apierrors.KindOf(fetchErr))
			assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

			state := c.State(key)
			assert.Equal(t, StatusError, state.Status)
			assert.Error(t, state.Err)
		})
	}
}

func TestFetch_RetriesTransientErrors(t *testing.T) {
	c := newTestClient(newFakeClock())

	var calls int32
	_, err := Fetch(context.Background(), c, Query[string]{
		Key: NewKey("users.list", nil),
		Fetch: func(ctx context.Context) (string, error) {
			atomic.AddInt32(&calls, 1)
			return "", apierrors.Transient("list users", errors.New("connection reset"))
		},
	})
	require.Error(t, err)
	assert.Equal(t, apierrors.KindTransient, apierrors.KindOf(err))
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls))

	calls = 0
	v, err := Fetch(context.Background(), c, Query[string]{
		Key: NewKey("users.list", map[string]int{"page": 2}),
		Fetch: func(ctx context.Context) (string, error) {
			if atomic.AddInt32(&calls, 1) < 3 {
				return "", apierrors.Transient("list users", errors.New("timeout"))
			}
			return "ok", nil
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFetch_CancelledCallerLeavesSharedFetchRunning(t *testing.T) {
	c := newTestClient(newFakeClock())
	key := NewKey("dashboard.metrics", nil)

	var calls int32
	started := make(chan struct{})
	release := make(chan struct{})
	q := Query[string]{
		Key: key,
		Fetch: func(ctx context.Context) (string, error) {
			atomic.AddInt32(&calls, 1)
			close(started)
			<-release
			return "metrics", ctx.Err()
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := Fetch(ctx, c, q)
		errc <- err
	}()
	<-started
	cancel()
	assert.ErrorIs(t, <-errc, context.Canceled)

	close(release)
	require.Eventually(t, func() bool {
		return c.State(key).Status == StatusSuccess
	}, time.Second, 5*time.Millisecond)

	v, err := Fetch(context.Background(), c, q)
	require.NoError(t, err)
	assert.Equal(t, "metrics", v)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGC_EvictsUnreadEntries(t *testing.T) {
	clock := newFakeClock()
	c := newTestClient(clock)

	fetch := func(ctx context.Context) (int, error) { return 1, nil }
	_, err := Fetch(context.Background(), c, Query[int]{Key: NewKey("a", nil), Fetch: fetch})
	require.NoError(t, err)

	clock.Advance(DefaultGCTime - time.Minute)
	_, err = Fetch(context.Background(), c, Query[int]{Key: NewKey("b", nil), Fetch: fetch})
	require.NoError(t, err)

	clock.Advance(time.Minute)
	assert.Equal(t, 1, c.GC())
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, StatusIdle, c.State(NewKey("a", nil)).Status)
	assert.Equal(t, StatusSuccess, c.State(NewKey("b", nil)).Status)
}

func TestRetryPolicy_Backoff(t *testing.T) {
	p := DefaultRetryPolicy()
	assert.Equal(t, time.Second, p.Backoff(0))
	assert.Equal(t, 2*time.Second, p.Backoff(1))
	assert.Equal(t, 4*time.Second, p.Backoff(2))
	assert.Equal(t, 30*time.Second, p.Backoff(10))

	assert.True(t, p.ShouldRetry(0, errors.New("boom")))
	assert.False(t, p.ShouldRetry(3, errors.New("boom")))
	assert.False(t, p.ShouldRetry(0, apierrors.ErrUnauthorized))
	assert.False(t, p.ShouldRetry(0, context.Canceled))
}

type fakeBus struct {
	mu        sync.Mutex
	published [][]Tag
	handler   func([]Tag)
}

func (b *fakeBus) Publish(_ context.Context, tags []Tag) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, tags)
	return nil
}

func (b *fakeBus) Subscribe(_ context.Context, handler func([]Tag)) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handler = handler
	return func() {}, nil
}

func TestBus_PublishesAndAppliesRemoteInvalidations(t *testing.T) {
	bus := &fakeBus{}
	c := NewClient(Options{Bus: bus})
	stop, err := c.Listen(context.Background())
	require.NoError(t, err)
	defer stop()

	key := NewKey("courses.list", nil)
	_, err = Fetch(context.Background(), c, Query[int]{Key: key, Tags: []Tag{TagCourses}, Fetch: func(ctx context.Context) (int, error) { return 1, nil }})
	require.NoError(t, err)

	c.Invalidate(context.Background(), TagCourses, TagDashboard)
	require.Len(t, bus.published, 1)
	assert.Equal(t, []Tag{TagCourses, TagDashboard}, bus.published[0])

	_, err = Fetch(context.Background(), c, Query[int]{Key: key, Tags: []Tag{TagCourses}, Fetch: func(ctx context.Context) (int, error) { return 2, nil }})
	require.NoError(t, err)
	assert.False(t, c.State(key).Stale)

	bus.handler([]Tag{TagCourses})
	assert.True(t, c.State(key).Stale)
	assert.Len(t, bus.published, 1, "remote invalidations are not re-published")
}
