package memocache

import (
	"context"
	"errors"
)

// Scoped memoizes one function in whatever Scope object each call carries,
// instead of a shared backend. Create with WrapScoped or WrapRequest.
//
// Values are stored as-is (no codec, no TTL) in the scope object's Bag and
// disappear with the object. Every wrapped function attached to the same
// scope shares its Bag; identity prefixes keep their entries apart.
type Scoped[V any] struct {
	fn      Func[V]
	sig     *Signature
	keyFn   KeyFunc
	log     Logger
	metrics Metrics
	enabled bool
}

// Call returns the result cached in the call's scope object, computing and
// storing it on a miss. When the scope argument is nil, a nil pointer, or a
// value that does not implement Scope, the call computes uncached.
func (s *Scoped[V]) Call(ctx context.Context, args ...any) (V, error) {
	var zero V

	call, err := NewCall(args...)
	if err != nil {
		return zero, withCallable(err, s.sig.Prefix())
	}
	bound, err := s.sig.Bind(call)
	if err != nil {
		return zero, err
	}
	bag := s.bagAt(bound)
	if bag == nil || !s.enabled {
		return s.invoke(ctx, bound)
	}

	key, err := s.keyFn(s.sig, call, bound)
	if err != nil {
		if errors.Is(err, DoNotCache) {
			s.log.Debug("skipped cache check", Fields{"fn": s.sig.Prefix()})
			s.metrics.Bypass(SkipKey)
			return s.invoke(ctx, bound)
		}
		return zero, err
	}

	if cached, ok := bag.Get(key); ok {
		if v, ok := cached.(V); ok {
			s.log.Debug("obtained the cached value", Fields{"key": key})
			s.metrics.Hit()
			return v, nil
		}
		bag.Delete(key) // foreign entry shape; drop and recompute
	}

	s.metrics.Miss()
	s.log.Debug("calculated a new value", Fields{"key": key})
	v, err := s.fn(ctx, bound...)
	if err != nil {
		if errors.Is(err, DoNotCache) {
			s.metrics.Bypass(SkipResult)
			return v, nil
		}
		return zero, err
	}
	bag.Set(key, v)
	s.metrics.Store()
	return v, nil
}

// Delete removes one entry from the call's scope object, identified by the
// same full argument vector a Call would use. Absent entries, absent
// scopes, and bypassing call shapes are no-ops.
func (s *Scoped[V]) Delete(args ...any) error {
	if !s.enabled {
		return nil
	}
	call, err := NewCall(args...)
	if err != nil {
		return withCallable(err, s.sig.Prefix())
	}
	bound, err := s.sig.Bind(call)
	if err != nil {
		return err
	}
	bag := s.bagAt(bound)
	if bag == nil {
		return nil
	}
	key, err := s.keyFn(s.sig, call, bound)
	if err != nil {
		if errors.Is(err, DoNotCache) {
			return nil
		}
		return err
	}
	s.log.Debug("cleared cache value", Fields{"key": key})
	s.metrics.Delete()
	bag.Delete(key)
	return nil
}

// Clear removes this function's entries from the given scope object,
// leaving entries of other functions in the shared Bag alone, and reports
// how many were removed.
func (s *Scoped[V]) Clear(scope any) int {
	if nilScope(scope) {
		return 0
	}
	sc, ok := scope.(Scope)
	if !ok {
		return 0
	}
	n := sc.CacheBag().DeletePrefix(s.sig.Prefix())
	s.log.Debug("cleared cache entries", Fields{"prefix": s.sig.Prefix(), "count": n})
	s.metrics.Cleared(n)
	return n
}

// Key reports the cache key this argument vector maps to. A DoNotCache
// error means the call shape bypasses the cache.
func (s *Scoped[V]) Key(args ...any) (string, error) {
	call, err := NewCall(args...)
	if err != nil {
		return "", withCallable(err, s.sig.Prefix())
	}
	bound, err := s.sig.Bind(call)
	if err != nil {
		return "", err
	}
	return s.keyFn(s.sig, call, bound)
}

// Enabled reports whether calls consult scope bags at all.
func (s *Scoped[V]) Enabled() bool { return s.enabled }

// Signature returns the wrap-time signature: identity prefix and declared
// parameters.
func (s *Scoped[V]) Signature() *Signature { return s.sig }

// bagAt extracts the scope object's Bag from the bound vector, or nil when
// this call cannot be cached.
func (s *Scoped[V]) bagAt(bound []any) *Bag {
	i := s.sig.ScopeIndex()
	if i < 0 || i >= len(bound) {
		return nil
	}
	obj := bound[i]
	if nilScope(obj) {
		return nil
	}
	sc, ok := obj.(Scope)
	if !ok {
		s.log.Debug("scope object cannot cache; computing uncached", Fields{
			"fn":    s.sig.Prefix(),
			"param": s.sig.Params()[i].Name,
		})
		s.metrics.Bypass(SkipScope)
		return nil
	}
	return sc.CacheBag()
}

func (s *Scoped[V]) invoke(ctx context.Context, bound []any) (V, error) {
	var zero V
	v, err := s.fn(ctx, bound...)
	if err != nil {
		if errors.Is(err, DoNotCache) {
			return v, nil
		}
		return zero, err
	}
	return v, nil
}
