package cache

import (
	"context"
	"testing"
	"time"
)

// TestKeyDeterministic проверяет стабильность ключа на одинаковом
// входе и его изменение при изменении входа.
func TestKeyDeterministic(t *testing.T) {
	type input struct {
		UserID  string
		Horizon int
	}

	first, err := Key("forecast", input{UserID: "u1", Horizon: 90})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	second, _ := Key("forecast", input{UserID: "u1", Horizon: 90})
	if first != second {
		t.Fatalf("expected identical keys, got %s and %s", first, second)
	}

	other, _ := Key("forecast", input{UserID: "u1", Horizon: 365})
	if first == other {
		t.Fatal("expected different keys for different input")
	}
}

// TestMemoryCacheRoundTrip проверяет запись, чтение и удаление.
func TestMemoryCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	if _, ok := c.Get(ctx, "missing"); ok {
		t.Fatal("expected miss for unknown key")
	}

	if err := c.Set(ctx, "key", []byte("value"), 0); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	value, ok := c.Get(ctx, "key")
	if !ok || string(value) != "value" {
		t.Fatalf("expected hit with value, got %q, %v", value, ok)
	}

	if err := c.Invalidate(ctx, "key"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := c.Get(ctx, "key"); ok {
		t.Fatal("expected miss after invalidate")
	}
}

// TestMemoryCacheTTL проверяет истечение записи по TTL.
func TestMemoryCacheTTL(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	if err := c.Set(ctx, "key", []byte("value"), time.Millisecond); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	time.Sleep(5 * time.Millisecond)

	if _, ok := c.Get(ctx, "key"); ok {
		t.Fatal("expected entry to expire")
	}
}
