package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewStore(client, 10*time.Minute), mr
}

func TestStore(t *testing.T) {
	ctx := context.Background()

	t.Run("CreateAndGet", func(t *testing.T) {
		store, _ := newTestStore(t)

		id, err := store.Create(ctx, []byte(`{"kind":"otp"}`))
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if len(id) != 64 {
			t.Fatalf("expected a 64 char hex id, got %q", id)
		}

		raw, err := store.Get(ctx, id)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if string(raw) != `{"kind":"otp"}` {
			t.Fatalf("unexpected payload %q", raw)
		}
	})

	t.Run("GetUnknownID", func(t *testing.T) {
		store, _ := newTestStore(t)

		if _, err := store.Get(ctx, "deadbeef"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Expiry", func(t *testing.T) {
		store, mr := newTestStore(t)

		id, err := store.Create(ctx, []byte("payload"))
		if err != nil {
			t.Fatalf("create: %v", err)
		}

		mr.FastForward(10*time.Minute + time.Second)

		if _, err := store.Get(ctx, id); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound after expiry, got %v", err)
		}
	})

	t.Run("Replace", func(t *testing.T) {
		store, _ := newTestStore(t)

		id, err := store.Create(ctx, []byte("before"))
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if err := store.Replace(ctx, id, []byte("after")); err != nil {
			t.Fatalf("replace: %v", err)
		}

		raw, err := store.Get(ctx, id)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if string(raw) != "after" {
			t.Fatalf("unexpected payload %q", raw)
		}
	})

	t.Run("ReplaceAbsent", func(t *testing.T) {
		store, _ := newTestStore(t)

		if err := store.Replace(ctx, "deadbeef", []byte("x")); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("DeleteIsIdempotent", func(t *testing.T) {
		store, _ := newTestStore(t)

		id, err := store.Create(ctx, []byte("payload"))
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if err := store.Delete(ctx, id); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if err := store.Delete(ctx, id); err != nil {
			t.Fatalf("second delete: %v", err)
		}
		if _, err := store.Get(ctx, id); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound after delete, got %v", err)
		}
	})
}
