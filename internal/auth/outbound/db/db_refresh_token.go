package db

import (
	"context"

	"github.com/nubitera/authcore/internal/auth/entity"
	"github.com/nubitera/authcore/internal/pkg/goerror"
)

// CreateRefreshToken stores a new refresh token record.
func (s *DB) CreateRefreshToken(ctx context.Context, rt entity.RefreshToken) (err error) {
	ctx, span := s.startSpan(ctx, "CreateRefreshToken")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx,
		`INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, revoked)
		 VALUES ($1, $2, $3, $4, FALSE)`,
		rt.ID, rt.UserID, rt.TokenHash, rt.ExpiresAt)

	err = s.mapError(err)
	return err
}

// GetRefreshTokenByHash returns the record whose stored hash matches.
func (s *DB) GetRefreshTokenByHash(ctx context.Context, tokenHash string) (_ *entity.RefreshToken, err error) {
	ctx, span := s.startSpan(ctx, "GetRefreshTokenByHash")
	defer func() { s.endSpan(span, err) }()

	var rt entity.RefreshToken
	err = s.conn.QueryRow(ctx,
		`SELECT id, user_id, token_hash, expires_at, revoked
		 FROM refresh_tokens WHERE token_hash = $1`, tokenHash).
		Scan(&rt.ID, &rt.UserID, &rt.TokenHash, &rt.ExpiresAt, &rt.Revoked)
	if err != nil {
		err = s.mapError(err)
		return nil, err
	}

	return &rt, nil
}

// RevokeRefreshToken marks the token revoked. Revoking an already revoked
// token is a no-op.
func (s *DB) RevokeRefreshToken(ctx context.Context, id int64) (err error) {
	ctx, span := s.startSpan(ctx, "RevokeRefreshToken")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx,
		`UPDATE refresh_tokens SET revoked = TRUE WHERE id = $1`, id)
	if err != nil {
		err = s.mapError(err)
		return err
	}
	if tag.RowsAffected() == 0 {
		err = goerror.ErrNotFound
		return err
	}

	return nil
}
