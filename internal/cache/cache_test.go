package cache

import (
	"testing"
	"time"
)

func TestLRUCacheEvictsOldest(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected a")
	}
	c.Set("c", 3) // evicts b, a was touched last

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("a = %v, %v", v, ok)
	}
	if c.Size() != 2 {
		t.Errorf("Size() = %d, want 2", c.Size())
	}
}

func TestLRUCacheExpiry(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRUCache[string](10, time.Minute)
	c.now = func() time.Time { return now }

	c.Set("dash", "v1")
	c.Set("hist", "v2")
	now = now.Add(30 * time.Second)
	c.Set("hist", "v3")
	now = now.Add(45 * time.Second)

	if _, ok := c.Get("dash"); ok {
		t.Error("dash should have expired")
	}
	if n := c.CleanExpired(); n != 0 {
		t.Errorf("CleanExpired() = %d, want 0 (dash already dropped by Get)", n)
	}
	now = now.Add(time.Minute)
	if n := c.CleanExpired(); n != 1 {
		t.Errorf("CleanExpired() = %d, want 1", n)
	}
}

func TestLRUCacheClearAndDelete(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("a should be deleted")
	}
	c.Clear()
	if c.Size() != 0 {
		t.Errorf("Size() after Clear = %d", c.Size())
	}
	c.Set("c", 3)
	if v, ok := c.Get("c"); !ok || v != 3 {
		t.Error("cache unusable after Clear")
	}
}

func TestRistrettoCache(t *testing.T) {
	c, err := NewRistrettoCache[string](16, time.Minute)
	if err != nil {
		t.Fatalf("NewRistrettoCache: %v", err)
	}
	defer c.Close()

	c.Set("dash", "v1")
	if v, ok := c.Get("dash"); !ok || v != "v1" {
		t.Fatalf("Get(dash) = %q, %v", v, ok)
	}
	c.Delete("dash")
	if _, ok := c.Get("dash"); ok {
		t.Error("dash should be deleted")
	}
	c.Set("hist", "v2")
	c.Clear()
	if _, ok := c.Get("hist"); ok {
		t.Error("hist should be cleared")
	}
}

func TestNewKinds(t *testing.T) {
	for _, kind := range []string{KindLRU, KindRistretto, KindNone} {
		c, err := New[int](kind, 8, time.Minute)
		if err != nil {
			t.Fatalf("New(%s): %v", kind, err)
		}
		c.Set("k", 1)
		_, ok := c.Get("k")
		if ok != (kind != KindNone) {
			t.Errorf("New(%s): Get hit = %v", kind, ok)
		}
	}
	if _, err := New[int]("memcached", 8, time.Minute); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestManagerSweepsRegisteredCaches(t *testing.T) {
	now := time.Now()
	lru := NewLRUCache[int](10, time.Second)
	lru.now = func() time.Time { return now }
	lru.Set("a", 1)
	lru.Set("b", 2)

	m := NewManager(nil)
	if !m.Register(lru) {
		t.Fatal("LRU should register")
	}
	if m.Register(Noop[int]{}) {
		t.Error("Noop has nothing to sweep")
	}

	now = now.Add(2 * time.Second)
	if n := m.Sweep(); n != 2 {
		t.Errorf("Sweep() = %d, want 2", n)
	}

	m.StartCleanup(time.Millisecond)
	m.Stop()
	m.Stop()
}

type closeCounter struct{ closed int }

func (c *closeCounter) Close() { c.closed++ }

func TestManagerStopClosesCaches(t *testing.T) {
	m := NewManager(nil)
	cc := &closeCounter{}
	if !m.Register(cc) {
		t.Fatal("a Closer should register")
	}
	r, err := NewRistrettoCache[int](8, time.Minute)
	if err != nil {
		t.Fatalf("NewRistrettoCache: %v", err)
	}
	if !m.Register(r) {
		t.Fatal("ristretto should register")
	}
	r.Set("a", 1)

	m.Stop()
	m.Stop()
	if cc.closed != 1 {
		t.Errorf("Close called %d times, want 1", cc.closed)
	}
	if _, ok := r.Get("a"); ok {
		t.Error("closed ristretto cache should miss")
	}
}
