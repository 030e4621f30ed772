package db

import (
	"context"

	"github.com/nubitera/authcore/internal/auth/entity"
	"github.com/nubitera/authcore/internal/pkg/goerror"
)

// GetUserByID returns the user with the given id.
func (s *DB) GetUserByID(ctx context.Context, id int64) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByID")
	defer func() { s.endSpan(span, err) }()

	row := s.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)

	user, err := scanUser(row)
	if err != nil {
		err = s.mapError(err)
		return nil, err
	}

	return user, nil
}

// GetUserByTarget returns the user owning the normalized identifier.
func (s *DB) GetUserByTarget(ctx context.Context, t entity.Target) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByTarget")
	defer func() { s.endSpan(span, err) }()

	row := s.conn.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE `+targetColumn(t)+` = $1`, t.Value)

	user, err := scanUser(row)
	if err != nil {
		err = s.mapError(err)
		return nil, err
	}

	return user, nil
}

// GetOrCreateUserByTarget resolves the target to a user, creating a
// passwordless account with the channel's verified flag set when none
// exists. The unique index on the identifier column makes racing creates
// collapse onto one row; the loser of the race falls through to the select.
func (s *DB) GetOrCreateUserByTarget(ctx context.Context, id int64, t entity.Target) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetOrCreateUserByTarget")
	defer func() { s.endSpan(span, err) }()

	column := targetColumn(t)
	verifiedColumn := "is_email_verified"
	if t.Channel == entity.ChannelSMS {
		verifiedColumn = "is_phone_verified"
	}

	_, err = s.conn.Exec(ctx,
		`INSERT INTO users (id, `+column+`, `+verifiedColumn+`, created_at, updated_at)
		 VALUES ($1, $2, TRUE, now(), now())
		 ON CONFLICT (`+column+`) DO NOTHING`, id, t.Value)
	if err != nil {
		err = s.mapError(err)
		return nil, err
	}

	return s.GetUserByTarget(ctx, t)
}

// UpdateUserPassword overwrites the user's password hash.
func (s *DB) UpdateUserPassword(ctx context.Context, userID int64, passwordHash string) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateUserPassword")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`,
		userID, passwordHash)
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

// UpdateUserIdentifier overwrites the email or phone field matching the
// target's channel and marks it verified.
func (s *DB) UpdateUserIdentifier(ctx context.Context, userID int64, t entity.Target) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateUserIdentifier")
	defer func() { s.endSpan(span, err) }()

	column := targetColumn(t)
	verifiedColumn := "is_email_verified"
	if t.Channel == entity.ChannelSMS {
		verifiedColumn = "is_phone_verified"
	}

	tag, err := s.conn.Exec(ctx,
		`UPDATE users SET `+column+` = $2, `+verifiedColumn+` = TRUE, updated_at = now() WHERE id = $1`,
		userID, t.Value)
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
