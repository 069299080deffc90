package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryPageCacheRoundTrip(t *testing.T) {
	c := NewMemoryPageCache()
	ctx := context.Background()

	if _, ok := c.Get(ctx, "index"); ok {
		t.Fatalf("empty cache should miss")
	}

	c.Set(ctx, "index", "<html>feed</html>", time.Minute)
	got, ok := c.Get(ctx, "index")
	if !ok || got != "<html>feed</html>" {
		t.Errorf("Get = %q, %v", got, ok)
	}
}

func TestMemoryPageCacheExpiry(t *testing.T) {
	c := NewMemoryPageCache()
	ctx := context.Background()

	c.Set(ctx, "index", "stale", 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get(ctx, "index"); ok {
		t.Errorf("entry should have expired")
	}
}

func TestMemoryPageCacheInvalidate(t *testing.T) {
	c := NewMemoryPageCache()
	ctx := context.Background()

	c.Set(ctx, "index", "fresh", time.Minute)
	c.Invalidate(ctx, "index")

	if _, ok := c.Get(ctx, "index"); ok {
		t.Errorf("invalidated entry should miss")
	}
}
