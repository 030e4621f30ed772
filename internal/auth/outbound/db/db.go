// Package db is the auth module's persistence adapter over PostgreSQL.
package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nubitera/authcore/internal/auth/entity"
	"github.com/nubitera/authcore/internal/pkg/goerror"
	"github.com/nubitera/authcore/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DB implements the usecase's persistence interface on a pgx pool.
type DB struct {
	conn *pgxpool.Pool
	ins  instrument.Instrumentation
}

// NewDB constructs a DB.
func NewDB(conn *pgxpool.Pool, ins instrument.Instrumentation) *DB {
	return &DB{conn: conn, ins: ins}
}

func (s *DB) mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return goerror.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return goerror.ErrConflict
	}

	return err
}

func (s *DB) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("auth.outbound.db").Start(ctx, name)
}

func (s *DB) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) && !errors.Is(err, goerror.ErrConflict) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

const userColumns = `id, email, phone_number, password_hash, first_name, last_name,
	is_email_verified, is_phone_verified, created_at, updated_at`

func scanUser(row pgx.Row) (*entity.User, error) {
	var (
		u            entity.User
		email        *string
		phone        *string
		passwordHash *string
		firstName    *string
		lastName     *string
	)

	err := row.Scan(&u.ID, &email, &phone, &passwordHash, &firstName, &lastName,
		&u.EmailVerified, &u.PhoneVerified, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}

	deref := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}

	u.Email = deref(email)
	u.PhoneNumber = deref(phone)
	u.PasswordHash = deref(passwordHash)
	u.FirstName = deref(firstName)
	u.LastName = deref(lastName)

	return &u, nil
}

// targetColumn returns the users column a target matches against.
func targetColumn(t entity.Target) string {
	if t.Channel == entity.ChannelEmail {
		return "email"
	}
	return "phone_number"
}
