package memocache

import (
	"fmt"

	"github.com/unkn0wn-root/memocache/internal/argv"
)

// KeyFunc derives the cache key for one invocation. bound holds one value
// per declared parameter in declared order; call preserves the caller's
// positional/named split for key functions that care about it.
//
// Returning DoNotCache bypasses the cache for this call: the function runs,
// nothing is read or stored. Any other error aborts the call.
type KeyFunc func(sig *Signature, call Call, bound []any) (string, error)

// CallKey is the default KeyFunc: identity prefix plus a digest of the
// argument vector. The scope parameter, when one is declared, is excluded,
// so calls differing only in their scope object share a key. Equal vectors
// produce equal keys across processes; argument order is significant.
func CallKey(sig *Signature, _ Call, bound []any) (string, error) {
	if i := sig.ScopeIndex(); i >= 0 && i < len(bound) {
		trimmed := make([]any, 0, len(bound)-1)
		trimmed = append(trimmed, bound[:i]...)
		trimmed = append(trimmed, bound[i+1:]...)
		bound = trimmed
	}
	d, err := argv.Digest(bound)
	if err != nil {
		return "", &KeyError{Callable: sig.Prefix(), Err: err}
	}
	return sig.Prefix() + d, nil
}

// StaticKey ignores the arguments and keys on the function alone. Declaring
// an Optional("cachekey", "") parameter and passing it by name splits the
// function into multiple buckets:
//
//	m.Call(ctx, memocache.Named("cachekey", "eu"))
//
// Without the parameter every call lands in the one prefix-only bucket.
func StaticKey(sig *Signature, _ Call, bound []any) (string, error) {
	bucket := ""
	for i, p := range sig.Params() {
		if p.Name != "cachekey" || i >= len(bound) {
			continue
		}
		s, ok := bound[i].(string)
		if !ok {
			return "", &KeyError{
				Callable: sig.Prefix(),
				Err:      fmt.Errorf("cachekey must be a string, got %T", bound[i]),
			}
		}
		bucket = s
		break
	}
	return sig.Prefix() + bucket, nil
}

// Client identifies the caller behind a request-shaped argument. Implement
// it on your request wrapper to use ClientKey.
type Client interface {
	UserID() string
	RemoteAddr() string
}

// ClientKey keys on who is calling rather than on the arguments: the user
// id and remote address of a Client in the argument list. The first
// positional argument is tried first; otherwise the scope parameter (or the
// first parameter) of the bound vector is used.
//
// It is a worked example of a custom KeyFunc as much as a utility: any
// function of the Signature and the call can serve as the key policy.
func ClientKey(sig *Signature, call Call, bound []any) (string, error) {
	if len(call.Pos) > 0 {
		if c, ok := call.Pos[0].(Client); ok {
			return clientKey(sig, c), nil
		}
	}
	i := sig.ScopeIndex()
	if i < 0 {
		i = 0
	}
	if i >= len(bound) {
		return "", &KeyError{Callable: sig.Prefix(), Err: fmt.Errorf("no argument at position %d", i)}
	}
	c, ok := bound[i].(Client)
	if !ok {
		return "", &KeyError{
			Callable: sig.Prefix(),
			Err:      fmt.Errorf("argument %d is %T, not a Client", i, bound[i]),
		}
	}
	return clientKey(sig, c), nil
}

func clientKey(sig *Signature, c Client) string {
	return sig.Prefix() + c.UserID() + "@" + c.RemoteAddr()
}
