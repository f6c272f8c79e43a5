// Package redis adapts a go-redis client to the memocache Backend, with
// prefix invalidation via batched SCAN + DEL.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/memocache/backend"
)

var ErrNilClient = errors.New("redis backend: nil client")

// Deleting very large prefixes in one DEL stalls the server; keys are
// collected and removed in batches instead.
const (
	scanCount = 512
	delBatch  = 512
)

type Redis struct {
	rdb         goredis.UniversalClient
	closeClient bool
	ns          string // "" => keys pass through unprefixed
}

var (
	_ backend.Backend       = (*Redis)(nil)
	_ backend.PrefixDeleter = (*Redis)(nil)
)

type Config struct {
	Client      goredis.UniversalClient
	CloseClient bool // set true only if this backend exclusively owns the client

	// KeyPrefix/Version namespace storage keys as "<KeyPrefix>:<Version>:<key>"
	// so several deployments or schema versions can share one server. Leave
	// both zero to store keys as-is.
	KeyPrefix string
	Version   int
}

func New(cfg Config) (*Redis, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	ns := ""
	if cfg.KeyPrefix != "" || cfg.Version > 0 {
		ver := cfg.Version
		if ver == 0 {
			ver = 1
		}
		ns = fmt.Sprintf("%s:%d:", cfg.KeyPrefix, ver)
	}
	return &Redis{rdb: cfg.Client, closeClient: cfg.CloseClient, ns: ns}, nil
}

func (b *Redis) key(key string) string { return b.ns + key }

func (b *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := b.rdb.Get(ctx, b.key(key)).Bytes()
	if err == goredis.Nil {
		return nil, false, nil // miss
	}
	if err != nil {
		return nil, false, err // transport/server error
	}
	return raw, true, nil
}

func (b *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = 0 // non-positive TTL means "no expiry" per backend contract
	}
	if err := b.rdb.Set(ctx, b.key(key), value, ttl).Err(); err != nil {
		return false, err
	}
	return true, nil
}

func (b *Redis) Delete(ctx context.Context, key string) error {
	return b.rdb.Del(ctx, b.key(key)).Err()
}

func (b *Redis) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	if prefix == "" {
		return 0, nil
	}
	removed := 0
	flush := func(keys []string) error {
		n, err := b.rdb.Del(ctx, keys...).Result()
		removed += int(n)
		return err
	}

	iter := b.rdb.Scan(ctx, 0, b.key(prefix)+"*", scanCount).Iterator()
	batch := make([]string, 0, delBatch)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) >= delBatch {
			if err := flush(batch); err != nil {
				return removed, err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return removed, err
	}
	if len(batch) > 0 {
		if err := flush(batch); err != nil {
			return removed, err
		}
	}
	return removed, nil
}

// Close releases the underlying redis client only when this backend owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (b *Redis) Close(context.Context) error {
	if b.closeClient {
		if err := b.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}
