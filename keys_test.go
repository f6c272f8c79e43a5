package memocache

import (
	"errors"
	"strings"
	"testing"
)

type testClient struct {
	id, addr string
}

func (c testClient) UserID() string     { return c.id }
func (c testClient) RemoteAddr() string { return c.addr }

func bindFor(t *testing.T, sig *Signature, args ...any) (Call, []any) {
	t.Helper()
	call, err := NewCall(args...)
	if err != nil {
		t.Fatalf("NewCall(%v): %v", args, err)
	}
	bound, err := sig.Bind(call)
	if err != nil {
		t.Fatalf("Bind(%v): %v", args, err)
	}
	return call, bound
}

// ==============================
// CallKey tests
// ==============================

// TestCallKeyStableAcrossSpellings: one logical call, one key, however the
// arguments were written down.
func TestCallKeyStableAcrossSpellings(t *testing.T) {
	sig, err := NewSignature("f:", Required("a"), Optional("b", 2))
	if err != nil {
		t.Fatalf("NewSignature: %v", err)
	}

	spellings := [][]any{
		{1, 2},
		{1},
		{Named("a", 1), Named("b", 2)},
		{Named("b", 2), Named("a", 1)},
		{1, Named("b", 2)},
	}
	want := ""
	for _, args := range spellings {
		call, bound := bindFor(t, sig, args...)
		k, err := CallKey(sig, call, bound)
		if err != nil {
			t.Fatalf("CallKey(%v): %v", args, err)
		}
		if want == "" {
			want = k
			continue
		}
		if k != want {
			t.Fatalf("CallKey(%v) = %q, want %q", args, k, want)
		}
	}
	if !strings.HasPrefix(want, "f:") {
		t.Fatalf("key %q lacks the identity prefix", want)
	}
	if len(want) != len("f:")+16 {
		t.Fatalf("digest should be 16 hex chars, key %q", want)
	}
}

// TestCallKeyDistinguishesVectors: order and type are part of the identity.
func TestCallKeyDistinguishesVectors(t *testing.T) {
	sig, err := NewSignature("f:", Required("a"), Required("b"))
	if err != nil {
		t.Fatalf("NewSignature: %v", err)
	}
	key := func(args ...any) string {
		call, bound := bindFor(t, sig, args...)
		k, err := CallKey(sig, call, bound)
		if err != nil {
			t.Fatalf("CallKey(%v): %v", args, err)
		}
		return k
	}

	if key(1, 2) == key(2, 1) {
		t.Fatalf("argument order should change the key")
	}
	if key(1, 2) == key("1", 2) {
		t.Fatalf("argument type should change the key")
	}
}

// TestCallKeyExcludesScope: the scope parameter never reaches the digest.
func TestCallKeyExcludesScope(t *testing.T) {
	sig, err := NewSignature("f:", Required("tenant"), Required("x"))
	if err != nil {
		t.Fatalf("NewSignature: %v", err)
	}
	sig.markScope("tenant")

	key := func(args ...any) string {
		call, bound := bindFor(t, sig, args...)
		k, err := CallKey(sig, call, bound)
		if err != nil {
			t.Fatalf("CallKey(%v): %v", args, err)
		}
		return k
	}

	if key("alice", 1) != key("bob", 1) {
		t.Fatalf("scope argument leaked into the key")
	}
	if key("alice", 1) == key("alice", 2) {
		t.Fatalf("non-scope argument should still distinguish keys")
	}
}

// TestCallKeyUnencodableArgument: values with no stable encoding cannot take
// part in a key.
func TestCallKeyUnencodableArgument(t *testing.T) {
	sig, err := NewSignature("f:", Required("a"))
	if err != nil {
		t.Fatalf("NewSignature: %v", err)
	}
	call, bound := bindFor(t, sig, func() {})

	_, err = CallKey(sig, call, bound)
	var keyErr *KeyError
	if !errors.As(err, &keyErr) {
		t.Fatalf("want *KeyError, got %v", err)
	}
	if keyErr.Callable != "f:" {
		t.Fatalf("KeyError.Callable = %q", keyErr.Callable)
	}
	if keyErr.Unwrap() == nil {
		t.Fatalf("KeyError should wrap the encoder error")
	}
}

// ==============================
// StaticKey tests
// ==============================

// TestStaticKey ignores arguments and buckets on the declared "cachekey"
// parameter when present.
func TestStaticKey(t *testing.T) {
	sig, err := NewSignature("f:", Required("a"), Optional("cachekey", ""))
	if err != nil {
		t.Fatalf("NewSignature: %v", err)
	}
	key := func(args ...any) string {
		call, bound := bindFor(t, sig, args...)
		k, err := StaticKey(sig, call, bound)
		if err != nil {
			t.Fatalf("StaticKey(%v): %v", args, err)
		}
		return k
	}

	if got := key(1); got != "f:" {
		t.Fatalf("default bucket key = %q, want \"f:\"", got)
	}
	if got := key(1, Named("cachekey", "eu")); got != "f:eu" {
		t.Fatalf("bucketed key = %q, want \"f:eu\"", got)
	}
	// Non-cachekey arguments are invisible.
	if key(1, Named("cachekey", "eu")) != key(99, Named("cachekey", "eu")) {
		t.Fatalf("StaticKey must ignore ordinary arguments")
	}

	// A non-string bucket is a key error.
	call, bound := bindFor(t, sig, 1, Named("cachekey", 7))
	_, err = StaticKey(sig, call, bound)
	var keyErr *KeyError
	if !errors.As(err, &keyErr) {
		t.Fatalf("non-string bucket: want *KeyError, got %v", err)
	}

	// Without the parameter there is exactly one bucket.
	plain, err := NewSignature("g:", Required("a"))
	if err != nil {
		t.Fatalf("NewSignature: %v", err)
	}
	pc, pb := bindFor(t, plain, 1)
	if got, _ := StaticKey(plain, pc, pb); got != "g:" {
		t.Fatalf("prefix-only key = %q, want \"g:\"", got)
	}
}

// ==============================
// ClientKey tests
// ==============================

// TestClientKey keys on the caller's identity, not the arguments.
func TestClientKey(t *testing.T) {
	sig, err := NewSignature("f:", Required("request"), Required("q"))
	if err != nil {
		t.Fatalf("NewSignature: %v", err)
	}
	sig.markScope("request")
	cli := testClient{id: "u1", addr: "10.0.0.1"}

	// Fast path: first positional argument.
	call, bound := bindFor(t, sig, cli, "query")
	k, err := ClientKey(sig, call, bound)
	if err != nil {
		t.Fatalf("ClientKey: %v", err)
	}
	if k != "f:u1@10.0.0.1" {
		t.Fatalf("ClientKey = %q", k)
	}

	// Fallback: fully named call has no positionals, the bound scope slot is
	// used instead.
	call2, bound2 := bindFor(t, sig, Named("q", "query"), Named("request", cli))
	k2, err := ClientKey(sig, call2, bound2)
	if err != nil {
		t.Fatalf("ClientKey named: %v", err)
	}
	if k2 != k {
		t.Fatalf("named spelling derived %q, want %q", k2, k)
	}

	// Arguments do not contribute.
	call3, bound3 := bindFor(t, sig, cli, "another query")
	if k3, _ := ClientKey(sig, call3, bound3); k3 != k {
		t.Fatalf("query leaked into the key: %q vs %q", k3, k)
	}

	// Another caller gets another key.
	other := testClient{id: "u2", addr: "10.0.0.1"}
	call4, bound4 := bindFor(t, sig, other, "query")
	if k4, _ := ClientKey(sig, call4, bound4); k4 == k {
		t.Fatalf("different users must not share a key")
	}

	// A scope argument that is not a Client is a key error.
	call5, bound5 := bindFor(t, sig, "plain", "query")
	_, err = ClientKey(sig, call5, bound5)
	var keyErr *KeyError
	if !errors.As(err, &keyErr) {
		t.Fatalf("non-client scope: want *KeyError, got %v", err)
	}
}
