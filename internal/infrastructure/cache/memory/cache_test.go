package memory

import (
	"context"
	"testing"
	"time"
)

func TestSetNXFirstWriterWins(t *testing.T) {
	c := NewCache()
	ctx := context.Background()

	first, err := c.SetNX(ctx, "lock", "a", time.Minute)
	if err != nil || !first {
		t.Fatalf("first SetNX = (%v, %v), want (true, nil)", first, err)
	}
	second, err := c.SetNX(ctx, "lock", "b", time.Minute)
	if err != nil || second {
		t.Fatalf("second SetNX = (%v, %v), want (false, nil)", second, err)
	}

	value, ok, err := c.Get(ctx, "lock")
	if err != nil || !ok || value != "a" {
		t.Fatalf("Get = (%q, %v, %v), want first writer's value", value, ok, err)
	}
}

func TestDeleteReleasesKey(t *testing.T) {
	c := NewCache()
	ctx := context.Background()

	if _, err := c.SetNX(ctx, "lock", "a", time.Minute); err != nil {
		t.Fatalf("SetNX error = %v", err)
	}
	if err := c.Delete(ctx, "lock"); err != nil {
		t.Fatalf("Delete error = %v", err)
	}
	acquired, err := c.SetNX(ctx, "lock", "b", time.Minute)
	if err != nil || !acquired {
		t.Fatalf("SetNX after delete = (%v, %v), want (true, nil)", acquired, err)
	}
}

func TestExpiredEntriesAreInvisible(t *testing.T) {
	c := NewCache()
	ctx := context.Background()

	if err := c.Set(ctx, "k", "v", time.Nanosecond); err != nil {
		t.Fatalf("Set error = %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Fatalf("expired entry must be gone")
	}
	acquired, err := c.SetNX(ctx, "k", "w", time.Minute)
	if err != nil || !acquired {
		t.Fatalf("SetNX over expired entry = (%v, %v), want (true, nil)", acquired, err)
	}
}

func TestZeroTTLNeverExpires(t *testing.T) {
	c := NewCache()
	ctx := context.Background()

	if err := c.Set(ctx, "k", "v", 0); err != nil {
		t.Fatalf("Set error = %v", err)
	}
	if _, ok, _ := c.Get(ctx, "k"); !ok {
		t.Fatalf("zero-ttl entry must persist")
	}
}
