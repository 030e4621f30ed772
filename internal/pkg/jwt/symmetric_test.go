package jwt

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeUUID struct{}

func (fakeUUID) Generate() string { return "token-id-1" }

var testSecret = []byte(strings.Repeat("s", 64))

func newTestJWT(t *testing.T, clk *fakeClock) *Symmetric {
	t.Helper()

	j, err := NewHS512(Config{
		Secret:    testSecret,
		Issuer:    "authcore",
		Audiences: []string{"authcore-api"},
		TTL:       15 * time.Minute,
		Clock:     clk,
		UUID:      fakeUUID{},
	})
	if err != nil {
		t.Fatalf("build jwt: %v", err)
	}

	return j
}

func TestNewHS512(t *testing.T) {
	t.Run("RejectsShortSecret", func(t *testing.T) {
		_, err := NewHS512(Config{Secret: []byte("too short")})
		if !errors.Is(err, ErrSigningKeyTooShort) {
			t.Fatalf("expected ErrSigningKeyTooShort, got %v", err)
		}
	})
}

func TestSymmetric(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		j := newTestJWT(t, newFakeClock())

		token, err := j.Generate(7, "user@example.com")
		if err != nil {
			t.Fatalf("generate: %v", err)
		}

		claims, err := j.Verify(token)
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if claims.UserID != 7 || claims.UserIdentifier != "user@example.com" {
			t.Fatalf("unexpected claims %+v", claims)
		}
		if claims.Subject != "7" || claims.Issuer != "authcore" {
			t.Fatalf("unexpected registered claims %+v", claims.RegisteredClaims)
		}
	})

	t.Run("Expired", func(t *testing.T) {
		clk := newFakeClock()
		j := newTestJWT(t, clk)

		token, err := j.Generate(7, "user@example.com")
		if err != nil {
			t.Fatalf("generate: %v", err)
		}

		clk.Advance(16 * time.Minute)

		if _, err := j.Verify(token); !errors.Is(err, ErrTokenExpired) {
			t.Fatalf("expected ErrTokenExpired, got %v", err)
		}
	})

	t.Run("WrongKey", func(t *testing.T) {
		clk := newFakeClock()
		j := newTestJWT(t, clk)

		other, err := NewHS512(Config{
			Secret:    []byte(strings.Repeat("x", 64)),
			Issuer:    "authcore",
			Audiences: []string{"authcore-api"},
			TTL:       15 * time.Minute,
			Clock:     clk,
			UUID:      fakeUUID{},
		})
		if err != nil {
			t.Fatalf("build jwt: %v", err)
		}

		token, err := other.Generate(7, "user@example.com")
		if err != nil {
			t.Fatalf("generate: %v", err)
		}

		if _, err := j.Verify(token); err == nil {
			t.Fatalf("expected a signature error")
		}
	})

	t.Run("Tampered", func(t *testing.T) {
		j := newTestJWT(t, newFakeClock())

		token, err := j.Generate(7, "user@example.com")
		if err != nil {
			t.Fatalf("generate: %v", err)
		}

		if _, err := j.Verify(token + "x"); err == nil {
			t.Fatalf("expected an error for a tampered token")
		}
	})
}

func TestAuthContext(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		ctx := SetAuth(context.Background(), Claims{UserID: 7})

		clm := GetAuth(ctx)
		if clm == nil || clm.UserID != 7 {
			t.Fatalf("unexpected claims %+v", clm)
		}
	})

	t.Run("Absent", func(t *testing.T) {
		if clm := GetAuth(context.Background()); clm != nil {
			t.Fatalf("expected nil claims, got %+v", clm)
		}
	})
}
