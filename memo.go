package memocache

import (
	"context"
	"errors"
	"time"

	be "github.com/unkn0wn-root/memocache/backend"
	c "github.com/unkn0wn-root/memocache/codec"
)

// Memo memoizes one function in a shared byte-store backend. Create with
// Wrap.
//
// Concurrent misses for the same key each compute and the last write wins;
// the layer adds no cross-call locking. Use a backend-side guard if a
// computation is too expensive to ever run twice.
type Memo[V any] struct {
	fn      Func[V]
	sig     *Signature
	backend be.Backend
	codec   c.Codec[V]
	keyFn   KeyFunc
	ttl     time.Duration
	log     Logger
	metrics Metrics
	enabled bool
}

// Call returns the cached result for this argument vector, computing and
// storing it on a miss. Arguments may be positional, Named, or omitted when
// the parameter declares a default; all spellings of the same call share
// one cache entry.
func (m *Memo[V]) Call(ctx context.Context, args ...any) (V, error) {
	var zero V

	call, err := NewCall(args...)
	if err != nil {
		return zero, withCallable(err, m.sig.Prefix())
	}
	bound, err := m.sig.Bind(call)
	if err != nil {
		return zero, err
	}
	if !m.enabled {
		return m.invoke(ctx, bound)
	}

	key, err := m.keyFn(m.sig, call, bound)
	if err != nil {
		if errors.Is(err, DoNotCache) {
			m.log.Debug("skipped cache check", Fields{"fn": m.sig.Prefix()})
			m.metrics.Bypass(SkipKey)
			return m.invoke(ctx, bound)
		}
		return zero, err
	}

	raw, ok, err := m.backend.Get(ctx, key)
	if err != nil {
		return zero, err
	}
	if ok {
		v, derr := m.codec.Decode(raw)
		if derr == nil {
			m.log.Debug("obtained the cached value", Fields{"key": key})
			m.metrics.Hit()
			return v, nil
		}
		_ = m.backend.Delete(ctx, key) // self-heal corrupt entry, treat as miss
	}

	m.metrics.Miss()
	m.log.Debug("calculated a new value", Fields{"key": key})
	v, err := m.fn(ctx, bound...)
	if err != nil {
		if errors.Is(err, DoNotCache) {
			m.metrics.Bypass(SkipResult)
			return v, nil
		}
		return zero, err
	}

	payload, err := m.codec.Encode(v)
	if err != nil {
		return zero, err
	}
	stored, err := m.backend.Set(ctx, key, payload, m.ttl)
	if err != nil {
		return zero, err
	}
	if !stored {
		m.log.Debug("set rejected by backend (pressure)", Fields{"key": key})
		return v, nil
	}
	m.metrics.Store()
	return v, nil
}

// Delete removes the entry this argument vector maps to. Deleting a key
// that was never stored is a no-op. Call shapes that bypass the cache
// (DoNotCache keys) have nothing to delete and return nil.
func (m *Memo[V]) Delete(ctx context.Context, args ...any) error {
	if !m.enabled {
		return nil
	}
	_, key, err := m.bindKey(args)
	if err != nil {
		if errors.Is(err, DoNotCache) {
			return nil
		}
		return err
	}
	m.log.Debug("cleared cache value", Fields{"key": key})
	m.metrics.Delete()
	return m.backend.Delete(ctx, key)
}

// Clear removes every entry of this function, identified by its prefix,
// and reports how many were removed. Backends that cannot enumerate keys
// (ristretto, bigcache) make this a no-op.
func (m *Memo[V]) Clear(ctx context.Context) (int, error) {
	if !m.enabled {
		return 0, nil
	}
	pd, ok := m.backend.(be.PrefixDeleter)
	if !ok {
		m.log.Debug("backend cannot delete by prefix; clear skipped", Fields{"fn": m.sig.Prefix()})
		return 0, nil
	}
	n, err := pd.DeletePrefix(ctx, m.sig.Prefix())
	if err != nil {
		return n, err
	}
	m.log.Debug("cleared cache entries", Fields{"prefix": m.sig.Prefix(), "count": n})
	m.metrics.Cleared(n)
	return n, nil
}

// Key reports the cache key this argument vector maps to, without touching
// the backend. A DoNotCache error means the call shape bypasses the cache.
func (m *Memo[V]) Key(args ...any) (string, error) {
	_, key, err := m.bindKey(args)
	return key, err
}

// Enabled reports whether calls consult the backend at all.
func (m *Memo[V]) Enabled() bool { return m.enabled }

// Signature returns the wrap-time signature: identity prefix and declared
// parameters.
func (m *Memo[V]) Signature() *Signature { return m.sig }

// Backend exposes the underlying store.
func (m *Memo[V]) Backend() be.Backend { return m.backend }

func (m *Memo[V]) Close(ctx context.Context) error {
	return m.backend.Close(ctx)
}

// bindKey binds args once and derives the key from the bound vector, so
// the invocation and the key can never disagree about defaults.
func (m *Memo[V]) bindKey(args []any) ([]any, string, error) {
	call, err := NewCall(args...)
	if err != nil {
		return nil, "", withCallable(err, m.sig.Prefix())
	}
	bound, err := m.sig.Bind(call)
	if err != nil {
		return nil, "", err
	}
	key, err := m.keyFn(m.sig, call, bound)
	if err != nil {
		return bound, "", err
	}
	return bound, key, nil
}

// invoke runs fn outside the cache, translating a DoNotCache result into a
// plain value for the caller.
func (m *Memo[V]) invoke(ctx context.Context, bound []any) (V, error) {
	var zero V
	v, err := m.fn(ctx, bound...)
	if err != nil {
		if errors.Is(err, DoNotCache) {
			return v, nil
		}
		return zero, err
	}
	return v, nil
}
