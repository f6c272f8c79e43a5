package memocache

import (
	"reflect"
	"strings"
	"sync"
)

// Scope is implemented by objects that can carry their own cache: a request
// wrapper, a service instance, a session. Entries live exactly as long as
// the object; there is no TTL. Embed LazyBag to satisfy the interface.
//
// All wrapped functions attached to one scope object share its Bag and are
// kept apart by their identity prefixes.
type Scope interface {
	CacheBag() *Bag
}

// nilScope reports whether obj carries no scope object: a nil interface or
// a typed nil pointer (a *T scope that was never allocated). Both spell an
// absent instance and disable caching for the call.
func nilScope(obj any) bool {
	if obj == nil {
		return true
	}
	rv := reflect.ValueOf(obj)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// Bag is a mutex-guarded key-value store owned by a single scope object.
type Bag struct {
	mu sync.RWMutex
	m  map[string]any
}

func NewBag() *Bag { return &Bag{m: make(map[string]any)} }

func (b *Bag) Get(key string) (any, bool) {
	b.mu.RLock()
	v, ok := b.m[key]
	b.mu.RUnlock()
	return v, ok
}

func (b *Bag) Set(key string, v any) {
	b.mu.Lock()
	b.m[key] = v
	b.mu.Unlock()
}

// Delete removes key; absent keys are a no-op.
func (b *Bag) Delete(key string) {
	b.mu.Lock()
	delete(b.m, key)
	b.mu.Unlock()
}

// DeletePrefix removes every entry whose key starts with prefix and
// returns how many were removed. The empty prefix removes nothing.
func (b *Bag) DeletePrefix(prefix string) int {
	if prefix == "" {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for k := range b.m {
		if strings.HasPrefix(k, prefix) {
			delete(b.m, k)
			n++
		}
	}
	return n
}

func (b *Bag) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.m)
}

// LazyBag gives a type a lazily created Bag; embedding it satisfies Scope:
//
//	type RequestScope struct {
//		*http.Request
//		memocache.LazyBag
//	}
//
// The Bag is created on first use, exactly once even under concurrent
// access. Use the enclosing type by pointer; the sync.Once must not be
// copied.
type LazyBag struct {
	once sync.Once
	bag  *Bag
}

func (l *LazyBag) CacheBag() *Bag {
	l.once.Do(func() { l.bag = NewBag() })
	return l.bag
}

var _ Scope = (*LazyBag)(nil)
