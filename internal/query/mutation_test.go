package query

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMutate_InvalidatesDeclaredTagsOnSuccess(t *testing.T) {
	c := newTestClient(newFakeClock())

	orgs := []string{"Tech Corp"}
	listKey := NewKey("organizations.list", nil)
	list := Query[[]string]{
		Key:  listKey,
		Tags: []Tag{TagOrganizations},
		Fetch: func(ctx context.Context) ([]string, error) {
			return append([]string(nil), orgs...), nil
		},
	}
	courseKey := NewKey("courses.list", nil)
	courses := Query[int]{Key: courseKey, Tags: []Tag{TagCourses}, Fetch: func(ctx context.Context) (int, error) { return 0, nil }}

	_, err := Fetch(context.Background(), c, list)
	require.NoError(t, err)
	_, err = Fetch(context.Background(), c, courses)
	require.NoError(t, err)

	create := Mutation[string, string]{
		Name: "organizations.create",
		Do: func(ctx context.Context, name string) (string, error) {
			orgs = append(orgs, name)
			return name, nil
		},
		Invalidates: []Tag{TagOrganizations},
	}

	out, err := Mutate(context.Background(), c, create, "Acme")
	require.NoError(t, err)
	assert.Equal(t, "Acme", out)
	assert.True(t, c.State(listKey).Stale)
	assert.False(t, c.State(courseKey).Stale)

	got, err := Fetch(context.Background(), c, list)
	require.NoError(t, err)
	assert.Equal(t, []string{"Tech Corp", "Acme"}, got)
}

func TestMutate_FailureLeavesCacheAndIsNotRetried(t *testing.T) {
	c := newTestClient(newFakeClock())
	key := NewKey("organizations.list", nil)
	_, err := Fetch(context.Background(), c, Query[int]{Key: key, Tags: []Tag{TagOrganizations}, Fetch: func(ctx context.Context) (int, error) { return 1, nil }})
	require.NoError(t, err)

	calls := 0
	boom := errors.New("write failed")
	_, err = Mutate(context.Background(), c, Mutation[string, string]{
		Name: "organizations.create",
		Do: func(ctx context.Context, in string) (string, error) {
			calls++
			return "", boom
		},
		Invalidates: []Tag{TagOrganizations},
	}, "Acme")

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
	assert.False(t, c.State(key).Stale)
}
