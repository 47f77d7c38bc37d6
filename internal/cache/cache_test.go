package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestGetSetDelete(t *testing.T) {
	s := New[string](10, time.Minute)

	if _, ok := s.Get("missing"); ok {
		t.Fatal("expected miss for unknown key")
	}

	s.Set("a", "one")
	if v, ok := s.Get("a"); !ok || v != "one" {
		t.Fatalf("Get(a) = %q, %v; want one, true", v, ok)
	}

	s.Set("a", "two")
	if v, _ := s.Get("a"); v != "two" {
		t.Fatalf("Get(a) after overwrite = %q; want two", v)
	}
	if s.Len() != 1 {
		t.Fatalf("Len() = %d; want 1", s.Len())
	}

	s.Delete("a")
	if _, ok := s.Get("a"); ok {
		t.Fatal("expected miss after delete")
	}
}

func TestTTLExpiry(t *testing.T) {
	s := New[int](10, 10*time.Millisecond)
	s.Set("k", 42)

	time.Sleep(20 * time.Millisecond)
	if _, ok := s.Get("k"); ok {
		t.Fatal("expected expired entry to miss")
	}
	if s.Len() != 0 {
		t.Fatalf("Len() = %d; want 0 after expiry eviction", s.Len())
	}
}

func TestLRUEviction(t *testing.T) {
	s := New[int](3, time.Minute)
	for i := 0; i < 3; i++ {
		s.Set(fmt.Sprintf("k%d", i), i)
	}

	// touch k0 so k1 becomes the eviction candidate
	s.Get("k0")
	s.Set("k3", 3)

	if _, ok := s.Get("k1"); ok {
		t.Fatal("expected least recently used entry to be evicted")
	}
	for _, key := range []string{"k0", "k2", "k3"} {
		if _, ok := s.Get(key); !ok {
			t.Fatalf("expected %s to survive eviction", key)
		}
	}
}
