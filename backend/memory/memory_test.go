package memory

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New(Config{KeyPrefix: "app"})
	t.Cleanup(func() { _ = s.Close(ctx) })

	if _, ok, err := s.Get(ctx, "k"); err != nil || ok {
		t.Fatalf("fresh store should miss, ok=%v err=%v", ok, err)
	}

	if ok, err := s.Set(ctx, "k", []byte("v"), 0); err != nil || !ok {
		t.Fatalf("Set: ok=%v err=%v", ok, err)
	}
	got, ok, err := s.Get(ctx, "k")
	if err != nil || !ok || !bytes.Equal(got, []byte("v")) {
		t.Fatalf("Get: %q ok=%v err=%v", got, ok, err)
	}

	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Fatalf("entry survived Delete")
	}
	// Deleting again is a no-op.
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
}

func TestStoreKeyNamespacing(t *testing.T) {
	ctx := context.Background()

	s := New(Config{KeyPrefix: "app", Version: 2})
	if _, err := s.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.m["app:2:k"]; !ok {
		t.Fatalf("storage key not namespaced, map holds %v", keysOf(s))
	}

	// Version defaults to 1.
	d := New(Config{KeyPrefix: "app"})
	if _, err := d.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	if _, ok := d.m["app:1:k"]; !ok {
		t.Fatalf("default version not applied, map holds %v", keysOf(d))
	}
}

func keysOf(s *Store) []string {
	out := make([]string, 0, len(s.m))
	for k := range s.m {
		out = append(out, k)
	}
	return out
}

func TestStoreTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1700000000, 0)
	s := New(Config{KeyPrefix: "app", Clock: func() time.Time { return now }})

	if _, err := s.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	now = now.Add(59 * time.Second)
	if _, ok, _ := s.Get(ctx, "k"); !ok {
		t.Fatalf("entry expired too early")
	}
	now = now.Add(2 * time.Second)
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Fatalf("entry should have expired")
	}
	// The expired entry was evicted, not just hidden.
	if s.Len() != 0 {
		t.Fatalf("expired entry still resident, Len=%d", s.Len())
	}

	// ttl <= 0 never expires.
	if _, err := s.Set(ctx, "forever", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	now = now.Add(1000 * time.Hour)
	if _, ok, _ := s.Get(ctx, "forever"); !ok {
		t.Fatalf("zero-TTL entry expired")
	}
}

// TestStoreEvictionKeepsRacingWrite: evicting an expired entry must not
// remove a fresh entry written between the expiry check and the write lock.
// The clock hook runs the racing Set at exactly that point.
func TestStoreEvictionKeepsRacingWrite(t *testing.T) {
	ctx := context.Background()
	base := time.Unix(1700000000, 0)
	now := base

	var s *Store
	injected := false
	clock := func() time.Time {
		if !injected && now.After(base.Add(time.Minute)) {
			injected = true
			if _, err := s.Set(ctx, "k", []byte("fresh"), time.Hour); err != nil {
				t.Errorf("racing Set: %v", err)
			}
		}
		return now
	}
	s = New(Config{KeyPrefix: "app", Clock: clock})

	if _, err := s.Set(ctx, "k", []byte("stale"), time.Minute); err != nil {
		t.Fatal(err)
	}
	now = base.Add(2 * time.Minute)

	// This Get observes the stale entry as expired and evicts; the hook has
	// already replaced it by the time the write lock is taken.
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Fatalf("expired read should miss")
	}
	got, ok, err := s.Get(ctx, "k")
	if err != nil || !ok || string(got) != "fresh" {
		t.Fatalf("entry written during eviction was dropped: %q ok=%v err=%v", got, ok, err)
	}
}

func TestStoreDeleteManyAndPrefix(t *testing.T) {
	ctx := context.Background()
	s := New(Config{KeyPrefix: "app"})

	seed := []string{"user:a", "user:b", "user:c", "other:x"}
	for _, k := range seed {
		if _, err := s.Set(ctx, k, []byte("v"), 0); err != nil {
			t.Fatal(err)
		}
	}

	if err := s.DeleteMany(ctx, "user:a", "missing"); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 3 {
		t.Fatalf("Len after DeleteMany = %d, want 3", s.Len())
	}

	n, err := s.DeletePrefix(ctx, "user:")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("DeletePrefix removed %d, want 2", n)
	}
	if _, ok, _ := s.Get(ctx, "other:x"); !ok {
		t.Fatalf("unrelated entry removed by DeletePrefix")
	}

	// The empty prefix removes nothing.
	if n, err := s.DeletePrefix(ctx, ""); err != nil || n != 0 {
		t.Fatalf("empty prefix: n=%d err=%v", n, err)
	}
}

func TestStoreClose(t *testing.T) {
	ctx := context.Background()
	s := New(Config{KeyPrefix: "app"})
	if _, err := s.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(ctx); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 0 {
		t.Fatalf("Close left %d entries", s.Len())
	}
}
