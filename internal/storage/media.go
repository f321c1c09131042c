package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Media is a playable location for a video.
type Media struct {
	URL       string     `json:"url"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// MediaResolver turns a stored video locator into a playable URL.
type MediaResolver interface {
	Resolve(ctx context.Context, locator string) (Media, error)
}

// Passthrough returns locators unchanged.
type Passthrough struct{}

func (Passthrough) Resolve(_ context.Context, locator string) (Media, error) {
	return Media{URL: locator}, nil
}

// ParseS3Locator splits an s3://bucket/key locator. ok is false for any other scheme.
func ParseS3Locator(locator string) (bucket, key string, ok bool, err error) {
	if !strings.HasPrefix(locator, "s3://") {
		return "", "", false, nil
	}
	u, err := url.Parse(locator)
	if err != nil {
		return "", "", true, fmt.Errorf("parse media locator: %w", err)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", true, fmt.Errorf("media locator %q needs a bucket and a key", locator)
	}
	return u.Host, key, true, nil
}
