package memocache

// requestNamespace keeps ad-hoc request values out of the keyspace used by
// wrapped functions, which always start with an identity prefix.
const requestNamespace = "memocache:request_cache:"

// RequestValue reads an ad-hoc value cached on the scope object, sharing
// the Bag that WrapRequest wrappers use. It complements wrapped functions
// for one-off values that have no function to memoize.
func RequestValue(scope Scope, key string) (any, bool) {
	if nilScope(scope) {
		return nil, false
	}
	return scope.CacheBag().Get(requestNamespace + key)
}

// SetRequestValue caches an ad-hoc value on the scope object for the rest
// of its lifetime.
func SetRequestValue(scope Scope, key string, v any) {
	if nilScope(scope) {
		return
	}
	scope.CacheBag().Set(requestNamespace+key, v)
}
