// Package cache defines the byte-level key/value store used to keep
// upstream fee schedules and rate tables between requests.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrClosed is returned by stores that have been closed.
var ErrClosed = errors.New("cache closed")

// Store is a TTL key/value store.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value for ttl. A non-positive ttl never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
