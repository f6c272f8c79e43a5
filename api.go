package memocache

import (
	"context"
	"errors"
	"time"

	be "github.com/unkn0wn-root/memocache/backend"
	c "github.com/unkn0wn-root/memocache/codec"
)

// Func is the shape of a memoizable computation. The wrapper always invokes
// it with the bound argument vector: exactly one value per declared
// parameter, in declared order, defaults filled in. How the caller spelled
// the call (positional, named, omitted) is never visible here.
type Func[V any] func(ctx context.Context, args ...any) (V, error)

// Options tune a global (backend-stored) wrapper.
// Backend and Codec are required; others have sensible defaults.
type Options[V any] struct {
	// Required
	Backend be.Backend
	Codec   c.Codec[V]

	// Params declares fn's parameter list in order; calls are bound against
	// it. Leave empty for a zero-argument function.
	Params []Param

	// Name overrides the identity derived from fn, for closures and
	// adapters whose synthesized names are unhelpful. The stored prefix is
	// Name + ":".
	Name string

	Key        KeyFunc       // nil => CallKey
	TTL        time.Duration // 0 => 15m; negative => no expiry
	ScopeParam string        // declared parameter excluded from keys, e.g. "request"
	Logger     Logger        // nil => NopLogger
	Metrics    Metrics       // nil => NopMetrics
	Disabled   bool          // default false (enabled)
}

// ScopedOptions tune a scope-bound wrapper. There is no backend, codec, or
// TTL: values are held as-is in the scope object's Bag and live exactly as
// long as the object.
type ScopedOptions[V any] struct {
	// Params declares fn's parameter list; at least one parameter is
	// required since one of them carries the scope object.
	Params []Param

	// ScopeParam names the parameter holding the scope object. When the
	// name is not declared the first parameter is assumed. Defaults to
	// "instance" (WrapScoped) or "request" (WrapRequest).
	ScopeParam string

	Name     string
	Key      KeyFunc // nil => CallKey
	Logger   Logger  // nil => NopLogger
	Metrics  Metrics // nil => NopMetrics
	Disabled bool
}

// Wrap memoizes fn in opts.Backend. Results are encoded with opts.Codec
// and expire after opts.TTL; entries are shared by every caller of the
// backend.
func Wrap[V any](fn Func[V], opts Options[V]) (*Memo[V], error) {
	if fn == nil {
		return nil, errors.New("memocache: fn is required")
	}
	if opts.Backend == nil {
		return nil, errors.New("memocache: backend is required")
	}
	if opts.Codec == nil {
		return nil, errors.New("memocache: codec is required")
	}
	sig, err := newWrapSignature(fn, opts.Name, opts.Params)
	if err != nil {
		return nil, err
	}
	if opts.ScopeParam != "" {
		if _, ok := sig.index[opts.ScopeParam]; !ok {
			return nil, &BindingError{
				Callable: sig.Prefix(),
				Param:    opts.ScopeParam,
				Reason:   "scope parameter not declared",
			}
		}
		sig.markScope(opts.ScopeParam)
	}

	m := &Memo[V]{
		fn:      fn,
		sig:     sig,
		backend: opts.Backend,
		codec:   opts.Codec,
		enabled: !opts.Disabled,
	}
	m.keyFn = opts.Key
	if m.keyFn == nil {
		m.keyFn = CallKey
	}
	m.ttl = opts.TTL
	if m.ttl == 0 {
		m.ttl = 15 * time.Minute
	}
	m.log = coalesce[Logger](opts.Logger, NopLogger{})
	m.metrics = coalesce[Metrics](opts.Metrics, NopMetrics{})
	return m, nil
}

// WrapScoped memoizes fn in the Scope object found among its own arguments,
// by default at the parameter named "instance" (or the first parameter).
// Calls whose scope object is nil, or does not implement Scope, compute
// uncached.
func WrapScoped[V any](fn Func[V], opts ScopedOptions[V]) (*Scoped[V], error) {
	if fn == nil {
		return nil, errors.New("memocache: fn is required")
	}
	if len(opts.Params) == 0 {
		return nil, errors.New("memocache: scoped wrapper requires at least one parameter")
	}
	sig, err := newWrapSignature(fn, opts.Name, opts.Params)
	if err != nil {
		return nil, err
	}
	sig.markScope(coalesce(opts.ScopeParam, "instance"))

	s := &Scoped[V]{
		fn:      fn,
		sig:     sig,
		enabled: !opts.Disabled,
	}
	s.keyFn = opts.Key
	if s.keyFn == nil {
		s.keyFn = CallKey
	}
	s.log = coalesce[Logger](opts.Logger, NopLogger{})
	s.metrics = coalesce[Metrics](opts.Metrics, NopMetrics{})
	return s, nil
}

// WrapRequest is WrapScoped with the scope parameter defaulting to
// "request"; the conventional wrapper for request-lifetime memoization.
func WrapRequest[V any](fn Func[V], opts ScopedOptions[V]) (*Scoped[V], error) {
	opts.ScopeParam = coalesce(opts.ScopeParam, "request")
	return WrapScoped(fn, opts)
}

func newWrapSignature(fn any, name string, params []Param) (*Signature, error) {
	prefix := ""
	if name != "" {
		prefix = name + ":"
	} else {
		p, err := Ident(fn)
		if err != nil {
			return nil, err
		}
		prefix = p
	}
	return NewSignature(prefix, params...)
}
