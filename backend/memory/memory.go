// Package memory provides an in-process Backend with per-entry TTL and a
// versioned key namespace. It suits tests and small transient caches; for
// bounded or shared storage use the ristretto, bigcache, or redis backends.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/unkn0wn-root/memocache/backend"
)

type entry struct {
	value []byte
	exp   time.Time // zero => no TTL
}

// Store is a mutex-guarded map store. Storage keys are namespaced as
// "<KeyPrefix>:<Version>:<key>", so bumping Version abandons every entry
// written under the previous one without touching them.
type Store struct {
	mu     sync.RWMutex
	m      map[string]entry
	prefix string
	ver    int
	now    func() time.Time
}

var (
	_ backend.Backend       = (*Store)(nil)
	_ backend.PrefixDeleter = (*Store)(nil)
)

type Config struct {
	KeyPrefix string
	Version   int              // 0 => 1
	Clock     func() time.Time // nil => time.Now; override in tests
}

func New(cfg Config) *Store {
	ver := cfg.Version
	if ver == 0 {
		ver = 1
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	return &Store{
		m:      make(map[string]entry),
		prefix: cfg.KeyPrefix,
		ver:    ver,
		now:    now,
	}
}

func (s *Store) makeKey(key string) string {
	return fmt.Sprintf("%s:%d:%s", s.prefix, s.ver, key)
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	k := s.makeKey(key)
	s.mu.RLock()
	e, ok := s.m[k]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !e.exp.IsZero() && s.now().After(e.exp) {
		// evict lazily; reread under the write lock so a fresh entry
		// written after the RUnlock is not dropped
		s.mu.Lock()
		if cur, ok := s.m[k]; ok && !cur.exp.IsZero() && s.now().After(cur.exp) {
			delete(s.m, k)
		}
		s.mu.Unlock()
		return nil, false, nil
	}
	return e.value, true, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	var exp time.Time
	if ttl > 0 {
		exp = s.now().Add(ttl)
	}
	s.mu.Lock()
	s.m[s.makeKey(key)] = entry{value: value, exp: exp}
	s.mu.Unlock()
	return true, nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.m, s.makeKey(key))
	s.mu.Unlock()
	return nil
}

// DeleteMany removes the given keys in one lock acquisition.
func (s *Store) DeleteMany(_ context.Context, keys ...string) error {
	s.mu.Lock()
	for _, key := range keys {
		delete(s.m, s.makeKey(key))
	}
	s.mu.Unlock()
	return nil
}

func (s *Store) DeletePrefix(_ context.Context, prefix string) (int, error) {
	if prefix == "" {
		return 0, nil
	}
	full := s.makeKey(prefix)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k := range s.m {
		if strings.HasPrefix(k, full) {
			delete(s.m, k)
			n++
		}
	}
	return n, nil
}

// Len reports resident entries, including any not yet lazily expired.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}

func (s *Store) Close(context.Context) error {
	s.mu.Lock()
	s.m = make(map[string]entry)
	s.mu.Unlock()
	return nil
}
