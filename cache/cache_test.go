package cache

import (
	"testing"
	"time"
)

func TestTTLExpiry(t *testing.T) {
	c := NewTTL(5 * time.Minute)
	now := time.Now()

	c.Set("customer:42", "alice", now)

	if v, ok := c.Get("customer:42", now.Add(time.Minute)); !ok || v != "alice" {
		t.Fatalf("expected fresh hit, got %v %v", v, ok)
	}

	if _, ok := c.Get("customer:42", now.Add(6*time.Minute)); ok {
		t.Fatal("expected expired entry to miss")
	}

	// expired entry is removed, a later read at an earlier time still misses
	if _, ok := c.Get("customer:42", now); ok {
		t.Fatal("expected entry to be gone after expiry read")
	}
}

func TestTTLInvalidatePrefix(t *testing.T) {
	c := NewTTL(time.Hour)
	now := time.Now()

	c.Set("meals:page:1", 1, now)
	c.Set("meals:page:2", 2, now)
	c.Set("coupons:save10", 3, now)

	c.Invalidate("meals:")

	if _, ok := c.Get("meals:page:1", now); ok {
		t.Fatal("expected meals:page:1 invalidated")
	}
	if _, ok := c.Get("meals:page:2", now); ok {
		t.Fatal("expected meals:page:2 invalidated")
	}
	if _, ok := c.Get("coupons:save10", now); !ok {
		t.Fatal("expected coupons:save10 to survive")
	}

	c.Invalidate("")
	if _, ok := c.Get("coupons:save10", now); ok {
		t.Fatal("expected full invalidation to clear everything")
	}
}
