package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/nubitera/authcore/internal/auth/entity"
	"github.com/nubitera/authcore/internal/pkg/goerror"
)

func TestLogin(t *testing.T) {
	ctx := context.Background()

	knownUser := entity.User{
		ID:            7,
		Email:         "user@example.com",
		PasswordHash:  "bcrypt:correct horse",
		EmailVerified: true,
	}

	t.Run("Success", func(t *testing.T) {
		w := newTestWorld(t)
		w.db.addUser(knownUser)

		out, err := w.uc.Login(ctx, LoginInput{Login: "User@Example.com", Password: "correct horse"})
		if err != nil {
			t.Fatalf("login: %v", err)
		}
		if out.UserID != 7 || out.AccessToken != "access-7" || out.RefreshToken == "" {
			t.Fatalf("unexpected output %+v", out)
		}
	})

	t.Run("UnknownTarget", func(t *testing.T) {
		w := newTestWorld(t)

		_, err := w.uc.Login(ctx, LoginInput{Login: "ghost@example.com", Password: "correct horse"})
		ge := wantCode(t, err, goerror.CodeInvalidInput)
		if ge.Msg() != "Invalid login credentials." {
			t.Fatalf("unexpected message %q", ge.Msg())
		}
	})

	t.Run("WrongPassword", func(t *testing.T) {
		w := newTestWorld(t)
		w.db.addUser(knownUser)

		_, err := w.uc.Login(ctx, LoginInput{Login: "user@example.com", Password: "wrong password"})
		ge := wantCode(t, err, goerror.CodeInvalidInput)
		if ge.Msg() != "Invalid login credentials." {
			t.Fatalf("wrong password must not be told apart from unknown user, got %q", ge.Msg())
		}
	})

	t.Run("PasswordlessAccount", func(t *testing.T) {
		w := newTestWorld(t)
		w.db.addUser(entity.User{ID: 8, Email: "otp-only@example.com", EmailVerified: true})

		_, err := w.uc.Login(ctx, LoginInput{Login: "otp-only@example.com", Password: "any password"})
		ge := wantCode(t, err, goerror.CodeInvalidInput)
		if ge.Msg() != "Invalid login credentials." {
			t.Fatalf("unexpected message %q", ge.Msg())
		}
	})

	t.Run("UnverifiedAccount", func(t *testing.T) {
		w := newTestWorld(t)
		w.db.addUser(entity.User{ID: 9, Email: "pending@example.com", PasswordHash: "bcrypt:correct horse"})

		_, err := w.uc.Login(ctx, LoginInput{Login: "pending@example.com", Password: "correct horse"})
		ge := wantCode(t, err, goerror.CodeInvalidInput)
		if ge.Msg() != "Account not verified." {
			t.Fatalf("unexpected message %q", ge.Msg())
		}
	})
}

func TestRefreshToken(t *testing.T) {
	ctx := context.Background()

	seed := func(w *testWorld) {
		w.db.addUser(entity.User{ID: 7, Email: "user@example.com", EmailVerified: true})
		w.db.addToken(entity.RefreshToken{
			ID:        1,
			UserID:    7,
			TokenHash: "hmac:old-token",
			ExpiresAt: w.clock.Now().Add(24 * time.Hour),
		})
	}

	t.Run("RotatesToken", func(t *testing.T) {
		w := newTestWorld(t)
		seed(w)

		out, err := w.uc.RefreshToken(ctx, RefreshTokenInput{RefreshToken: "old-token"})
		if err != nil {
			t.Fatalf("refresh: %v", err)
		}
		if out.AccessToken != "access-7" || out.RefreshToken == "" || out.RefreshToken == "old-token" {
			t.Fatalf("unexpected output %+v", out)
		}

		// The presented token is spent; a replay is unauthorized.
		_, err = w.uc.RefreshToken(ctx, RefreshTokenInput{RefreshToken: "old-token"})
		wantCode(t, err, goerror.CodeUnauthorized)
	})

	t.Run("UnknownToken", func(t *testing.T) {
		w := newTestWorld(t)

		_, err := w.uc.RefreshToken(ctx, RefreshTokenInput{RefreshToken: "never-issued"})
		wantCode(t, err, goerror.CodeUnauthorized)
	})

	t.Run("RevokedToken", func(t *testing.T) {
		w := newTestWorld(t)
		seed(w)
		if err := w.db.RevokeRefreshToken(ctx, 1); err != nil {
			t.Fatalf("seed revoke: %v", err)
		}

		_, err := w.uc.RefreshToken(ctx, RefreshTokenInput{RefreshToken: "old-token"})
		wantCode(t, err, goerror.CodeUnauthorized)
	})

	t.Run("ExpiredToken", func(t *testing.T) {
		w := newTestWorld(t)
		seed(w)
		w.clock.Advance(25 * time.Hour)

		_, err := w.uc.RefreshToken(ctx, RefreshTokenInput{RefreshToken: "old-token"})
		wantCode(t, err, goerror.CodeUnauthorized)
	})
}

func TestLogout(t *testing.T) {
	seed := func(w *testWorld) {
		w.db.addToken(entity.RefreshToken{
			ID:        1,
			UserID:    7,
			TokenHash: "hmac:live-token",
			ExpiresAt: w.clock.Now().Add(24 * time.Hour),
		})
	}

	t.Run("RevokesOwnToken", func(t *testing.T) {
		w := newTestWorld(t)
		seed(w)

		if _, err := w.uc.Logout(authCtx(7), LogoutInput{RefreshToken: "live-token"}); err != nil {
			t.Fatalf("logout: %v", err)
		}

		stored, err := w.db.GetRefreshTokenByHash(context.Background(), "hmac:live-token")
		if err != nil {
			t.Fatalf("lookup: %v", err)
		}
		if !stored.Revoked {
			t.Fatalf("token must be revoked after logout")
		}
	})

	t.Run("UnknownTokenIsIdempotent", func(t *testing.T) {
		w := newTestWorld(t)

		if _, err := w.uc.Logout(authCtx(7), LogoutInput{RefreshToken: "already-gone"}); err != nil {
			t.Fatalf("second logout must succeed, got %v", err)
		}
	})

	t.Run("AnotherUsersToken", func(t *testing.T) {
		w := newTestWorld(t)
		seed(w)

		_, err := w.uc.Logout(authCtx(99), LogoutInput{RefreshToken: "live-token"})
		wantCode(t, err, goerror.CodeUnauthorized)
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		w := newTestWorld(t)

		_, err := w.uc.Logout(context.Background(), LogoutInput{RefreshToken: "live-token"})
		wantCode(t, err, goerror.CodeUnauthorized)
	})
}
