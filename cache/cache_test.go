package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestRoundTrip(t *testing.T) {
	c := New(10, time.Hour)
	c.Set("k", "v")
	got, ok := c.Get("k")
	if !ok {
		t.Fatal("immediate Get after Set missed")
	}
	if got != "v" {
		t.Fatalf("Get returned %v, want %q", got, "v")
	}
}

func TestMiss(t *testing.T) {
	c := New(10, time.Hour)
	if _, ok := c.Get("absent"); ok {
		t.Fatal("Get on empty cache reported a hit")
	}
}

func TestTTLExpiry(t *testing.T) {
	c := New(10, time.Minute)
	base := time.Unix(1_700_000_000, 0)
	c.now = func() time.Time { return base }
	c.Set("k", 1)

	c.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, ok := c.Get("k"); ok {
		t.Fatal("expired entry returned as hit")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry not purged, len = %d", c.Len())
	}
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c := New(3, time.Hour)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	// Touch "a" so "b" becomes the LRU entry.
	if _, ok := c.Get("a"); !ok {
		t.Fatal("warm entry missing")
	}

	c.Set("d", 4)

	if _, ok := c.Get("b"); ok {
		t.Error("least-recently-used entry survived eviction")
	}
	for _, k := range []string{"a", "c", "d"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("entry %q evicted unexpectedly", k)
		}
	}
}

func TestCapacityPlusOneEvictsExactlyOne(t *testing.T) {
	const capacity = 5
	c := New(capacity, time.Hour)
	for i := 0; i <= capacity; i++ {
		c.Set(fmt.Sprintf("k%d", i), i)
	}
	if c.Len() != capacity {
		t.Fatalf("len = %d, want %d", c.Len(), capacity)
	}
	// k0 was inserted first and never touched again.
	if _, ok := c.Get("k0"); ok {
		t.Error("oldest key survived capacity+1 inserts")
	}
	if _, ok := c.Get("k1"); !ok {
		t.Error("second-oldest key was evicted too")
	}
}

func TestSetRefreshesRecency(t *testing.T) {
	c := New(2, time.Hour)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("a", 10) // refresh "a"; "b" is now LRU
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("refreshed key was not moved to front")
	}
	got, ok := c.Get("a")
	if !ok || got != 10 {
		t.Errorf("Get(a) = %v, %v; want 10, true", got, ok)
	}
}

func TestKeyDeterministic(t *testing.T) {
	k1 := Key("url", "partial")
	k2 := Key("url", "partial")
	if k1 != k2 {
		t.Fatal("Key is not deterministic")
	}
	if k1 == Key("url", "full") {
		t.Fatal("distinct parts produced the same key")
	}
}
