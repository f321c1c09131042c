package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseS3Locator(t *testing.T) {
	bucket, key, ok, err := ParseS3Locator("s3://lms-media/react/intro.mp4")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "lms-media", bucket)
	assert.Equal(t, "react/intro.mp4", key)

	_, _, ok, err = ParseS3Locator("https://media.example.com/intro.mp4")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, ok, err = ParseS3Locator("s3://bucket-only")
	assert.True(t, ok)
	assert.Error(t, err)
}

func TestPassthrough(t *testing.T) {
	media, err := Passthrough{}.Resolve(context.Background(), "https://media.example.com/a.mp4")
	require.NoError(t, err)
	assert.Equal(t, "https://media.example.com/a.mp4", media.URL)
	assert.Nil(t, media.ExpiresAt)
}

func TestS3Resolver_PresignsS3Locators(t *testing.T) {
	client := s3.New(s3.Options{
		Region:      "us-east-1",
		Credentials: credentials.NewStaticCredentialsProvider("AKIDEXAMPLE", "secret", ""),
	})
	resolver := NewS3ResolverFromClient(client, 10*time.Minute)
	fixed := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	resolver.now = func() time.Time { return fixed }

	media, err := resolver.Resolve(context.Background(), "s3://lms-media/react/intro.mp4")
	require.NoError(t, err)
	assert.Contains(t, media.URL, "lms-media")
	assert.Contains(t, media.URL, "react/intro.mp4")
	assert.True(t, strings.Contains(media.URL, "X-Amz-Signature="))
	require.NotNil(t, media.ExpiresAt)
	assert.Equal(t, fixed.Add(10*time.Minute), *media.ExpiresAt)

	media, err = resolver.Resolve(context.Background(), "https://media.example.com/a.mp4")
	require.NoError(t, err)
	assert.Equal(t, "https://media.example.com/a.mp4", media.URL)
}
