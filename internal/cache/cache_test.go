package cache

import (
	"sync"
	"testing"
	"time"
)

func TestKey(t *testing.T) {
	if got := Key("categories", "user-1"); got != "categories:user-1" {
		t.Fatalf("unexpected key: %q", got)
	}
}

func TestSetThenGetReturnsValue(t *testing.T) {
	c := New()
	c.Set("categories:u1", "value", time.Minute)

	got, ok := c.Get("categories:u1")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got != "value" {
		t.Fatalf("expected %q, got %v", "value", got)
	}
}

func TestGetAfterTTLReturnsAbsent(t *testing.T) {
	c := New()
	current := time.Now()
	c.now = func() time.Time { return current }

	c.Set("k", 42, 30*time.Second)

	current = current.Add(29 * time.Second)
	if _, ok := c.Get("k"); !ok {
		t.Fatal("expected hit before expiry")
	}

	current = current.Add(2 * time.Second)
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected miss after expiry")
	}

	// The expired entry must also be evicted.
	c.mu.RLock()
	_, still := c.entries["k"]
	c.mu.RUnlock()
	if still {
		t.Fatal("expected expired entry to be evicted")
	}
}

func TestInvalidateRemovesImmediately(t *testing.T) {
	c := New()
	c.SetDefault("a", 1)
	c.SetDefault("b", 2)

	c.Invalidate("a", "b")

	if _, ok := c.Get("a"); ok {
		t.Fatal("expected 'a' to be invalidated")
	}
	if _, ok := c.Get("b"); ok {
		t.Fatal("expected 'b' to be invalidated")
	}
}

func TestLastWriteWins(t *testing.T) {
	c := New()
	c.Set("k", "first", time.Minute)
	c.Set("k", "second", time.Minute)

	got, ok := c.Get("k")
	if !ok || got != "second" {
		t.Fatalf("expected last write to win, got %v (hit=%t)", got, ok)
	}
}

func TestConcurrentAccessIsSafe(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Set("shared", i, time.Minute)
				c.Get("shared")
				if j%10 == 0 {
					c.Invalidate("shared")
				}
			}
		}(i)
	}
	wg.Wait()
}
