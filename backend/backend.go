// Package backend defines the storage abstraction behind memocache.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly
// the same []byte that was previously passed to Set for a key (no
// prepended/appended metadata, no re-encoding, no mutation). If a store
// performs internal transforms (e.g., compression), they MUST be fully
// reversed so that the bytes returned by Get are identical to the bytes
// provided to Set.
package backend

import (
	"context"
	"time"
)

// Backend is a minimal byte store with TTLs. Must be safe for concurrent
// use.
type Backend interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value with the given TTL; ttl <= 0 means no expiry.
	// Returns ok=false when the store rejected the write under pressure.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) (ok bool, err error)

	// Delete removes a key; absent keys are a no-op.
	Delete(ctx context.Context, key string) error

	// Close releases resources.
	Close(ctx context.Context) error
}

// PrefixDeleter is the optional bulk-invalidation capability. Stores that
// can enumerate keys implement it; Memo.Clear degrades to a no-op on
// backends that cannot.
type PrefixDeleter interface {
	// DeletePrefix removes every key starting with prefix and reports how
	// many were removed. The empty prefix removes nothing.
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}
