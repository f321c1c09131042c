package pubsub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yukikurage/learning-admin-api/internal/query"
)

func TestRedisBus_DecodeIgnoresOwnMessages(t *testing.T) {
	a := NewRedisBus(nil, "", nil)
	b := NewRedisBus(nil, "", nil)
	assert.Equal(t, DefaultChannel, a.channel)
	assert.NotEqual(t, a.origin, b.origin)

	payload, err := a.encode([]query.Tag{query.TagCourses, query.TagDashboard})
	require.NoError(t, err)

	_, ok := a.decode(payload)
	assert.False(t, ok)

	tags, ok := b.decode(payload)
	require.True(t, ok)
	assert.Equal(t, []query.Tag{query.TagCourses, query.TagDashboard}, tags)
}

func TestRedisBus_DecodeRejectsMalformedPayloads(t *testing.T) {
	b := NewRedisBus(nil, "custom", nil)
	assert.Equal(t, "custom", b.channel)

	_, ok := b.decode([]byte("not json"))
	assert.False(t, ok)

	_, ok = b.decode([]byte(`{"origin":"other","tags":[]}`))
	assert.False(t, ok)
}
