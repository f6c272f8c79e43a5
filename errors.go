package memocache

import (
	"errors"
	"fmt"
)

// DoNotCache signals a deliberate cache bypass. It is not a failure.
//
// Returned by a wrapped function alongside its value, it tells the wrapper
// to hand the value to the caller without storing it; the caller sees a nil
// error. Returned by a KeyFunc, it makes the wrapper invoke the function
// directly, reading and writing nothing. Any previously stored entry for
// the same key stays untouched either way.
var DoNotCache = errors.New("memocache: do not cache")

// BindingError reports a call that does not fit the declared parameter
// list. It indicates a programming error at the call site and is never
// retried or absorbed.
type BindingError struct {
	Callable string // identity prefix of the wrapped function, when known
	Param    string // offending parameter name, when one is implicated
	Reason   string
}

func (e *BindingError) Error() string {
	switch {
	case e.Callable != "" && e.Param != "":
		return fmt.Sprintf("memocache: bind %s: parameter %q: %s", e.Callable, e.Param, e.Reason)
	case e.Callable != "":
		return fmt.Sprintf("memocache: bind %s: %s", e.Callable, e.Reason)
	case e.Param != "":
		return fmt.Sprintf("memocache: bind: parameter %q: %s", e.Param, e.Reason)
	default:
		return "memocache: bind: " + e.Reason
	}
}

// KeyError reports that a key function could not derive a key for a call,
// e.g. because an argument value has no stable encoding.
type KeyError struct {
	Callable string
	Err      error
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("memocache: key for %s: %v", e.Callable, e.Err)
}

func (e *KeyError) Unwrap() error { return e.Err }

// withCallable stamps the identity prefix onto binding errors raised before
// the wrapper was known.
func withCallable(err error, callable string) error {
	var be *BindingError
	if errors.As(err, &be) && be.Callable == "" {
		be.Callable = callable
	}
	return err
}
