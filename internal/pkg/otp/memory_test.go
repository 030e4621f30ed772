package otp

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("RoundTrip", func(t *testing.T) {
		store := NewMemoryStore(newFakeClock())

		ch := Challenge{Code: "482913", Purpose: "login", Attempts: 1}
		if err := store.Set(ctx, "+989121234567", ch, time.Minute); err != nil {
			t.Fatalf("set: %v", err)
		}

		got, err := store.Get(ctx, "+989121234567")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if *got != ch {
			t.Fatalf("got %+v, want %+v", got, ch)
		}
	})

	t.Run("LazyExpiry", func(t *testing.T) {
		clk := newFakeClock()
		store := NewMemoryStore(clk)

		if err := store.Set(ctx, "+989121234567", Challenge{Code: "482913"}, time.Minute); err != nil {
			t.Fatalf("set: %v", err)
		}

		clk.Advance(61 * time.Second)

		if _, err := store.Get(ctx, "+989121234567"); !errors.Is(err, ErrChallengeNotFound) {
			t.Fatalf("expected ErrChallengeNotFound after expiry, got %v", err)
		}
	})

	t.Run("RemainingTTL", func(t *testing.T) {
		clk := newFakeClock()
		store := NewMemoryStore(clk)

		if err := store.Set(ctx, "+989121234567", Challenge{Code: "482913"}, time.Minute); err != nil {
			t.Fatalf("set: %v", err)
		}

		clk.Advance(45 * time.Second)

		d, err := store.RemainingTTL(ctx, "+989121234567")
		if err != nil {
			t.Fatalf("remaining ttl: %v", err)
		}
		if d != 15*time.Second {
			t.Fatalf("expected 15s remaining, got %v", d)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		store := NewMemoryStore(newFakeClock())

		if err := store.Set(ctx, "+989121234567", Challenge{Code: "482913"}, time.Minute); err != nil {
			t.Fatalf("set: %v", err)
		}
		if err := store.Delete(ctx, "+989121234567"); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if _, err := store.Get(ctx, "+989121234567"); !errors.Is(err, ErrChallengeNotFound) {
			t.Fatalf("expected ErrChallengeNotFound after delete, got %v", err)
		}
	})
}
