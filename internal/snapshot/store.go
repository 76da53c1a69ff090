// Package snapshot persists the per-client auth and cart blobs that survive a
// page reload. Blob contents are opaque to the stores.
package snapshot

import "context"

// Store is a byte-oriented key/value store. Get returns nil, nil for absent keys.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

const (
	ModeBolt   = "bolt"
	ModeRedis  = "redis"
	ModeMemory = "memory"
)
