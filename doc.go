// Package memocache memoizes function results in a pluggable cache.
// A wrapped function is identified by a stable prefix derived from its
// package, receiver type, and name; each invocation is bound to an ordered
// argument vector and hashed into a deterministic cache key.
//
// Components:
//   - Backend: byte store with TTL (e.g. Ristretto, BigCache, Redis, or the
//     in-process memory store).
//   - Codec[V]: (de)serializes V <-> []byte.
//   - Signature: the declared parameter list; binds positional and named
//     arguments (plus defaults) into the argument vector.
//   - KeyFunc: turns a bound call into a key. CallKey (argument-sensitive)
//     is the default; StaticKey and ClientKey are provided.
//   - Scope: object-bound stores for instance- and request-lifetime
//     memoization with no TTL of their own.
//
// Keys:
//
//	<pkg>[.<Type>]:<name>:<digest>  - argument-sensitive entries (CallKey)
//	<pkg>[.<Type>]:<name>:<bucket>  - caller-named buckets (StaticKey)
//
// Wrapping pattern:
//
//	users, _ := memocache.Wrap(loadUser, memocache.Options[User]{
//		Backend: store,
//		Codec:   codec.JSON[User]{},
//		Params:  []memocache.Param{memocache.Required("id")},
//	})
//	u, err := users.Call(ctx, 42)         // computes, stores
//	u, err = users.Call(ctx, 42)          // served from cache
//	_ = users.Delete(ctx, 42)             // next Call recomputes
//	_, _ = users.Clear(ctx)               // drops every entry of this function
//
// A computation opts out of storage for one call by returning the DoNotCache
// sentinel alongside its value; the caller still receives the value.
package memocache
