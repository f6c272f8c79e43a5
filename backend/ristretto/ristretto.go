// Package ristretto adapts dgraph-io/ristretto to the memocache Backend.
// Ristretto admits entries by cost (here: payload size) and cannot
// enumerate keys, so prefix invalidation is unavailable; Memo.Clear is a
// no-op on this backend.
package ristretto

import (
	"context"
	"errors"
	"time"

	rc "github.com/dgraph-io/ristretto"

	"github.com/unkn0wn-root/memocache/backend"
)

type Store struct {
	c *rc.Cache
}

var _ backend.Backend = (*Store)(nil)

type Config struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
	Metrics     bool
}

func New(cfg Config) (*Store, error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 || cfg.BufferItems <= 0 {
		return nil, errors.New("ristretto: invalid config")
	}
	c, err := rc.NewCache(&rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}
	return &Store{c: c}, nil
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := s.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, _ := v.([]byte)
	if b == nil {
		// self-heal: drop unexpected entry shape
		s.c.Del(key)
		return nil, false, nil
	}
	return b, true, nil
}

// Set admits the entry with cost = len(value). Ristretto may reject writes
// under pressure; that surfaces as ok=false, which the wrapper treats as
// "not cached this time".
func (s *Store) Set(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	if ttl < 0 {
		ttl = 0 // ristretto rejects negative TTLs outright; normalize to "no expiry"
	}
	return s.c.SetWithTTL(key, value, int64(len(value)), ttl), nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.c.Del(key)
	return nil
}

func (s *Store) Close(_ context.Context) error {
	s.c.Wait()
	s.c.Close()
	return nil
}

// Metrics exposes the underlying ristretto metrics for the application
// (not part of backend.Backend).
func (s *Store) Metrics() *rc.Metrics { return s.c.Metrics }
