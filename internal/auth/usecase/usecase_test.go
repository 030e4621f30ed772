package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/nubitera/authcore/internal/auth/entity"
	"github.com/nubitera/authcore/internal/pkg/config"
	"github.com/nubitera/authcore/internal/pkg/goerror"
	"github.com/nubitera/authcore/internal/pkg/goroutine"
	"github.com/nubitera/authcore/internal/pkg/instrument"
	"github.com/nubitera/authcore/internal/pkg/jwt"
	"github.com/nubitera/authcore/internal/pkg/otp"
	"github.com/nubitera/authcore/internal/pkg/signer"
	"github.com/nubitera/authcore/internal/pkg/validator"
	"github.com/nubitera/authcore/internal/shared/event"
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

// fakeDB keeps users and refresh tokens in memory behind the same contract as
// the postgres store, including ErrNotFound semantics.
type fakeDB struct {
	mu     sync.Mutex
	users  map[int64]*entity.User
	tokens map[int64]*entity.RefreshToken
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		users:  make(map[int64]*entity.User),
		tokens: make(map[int64]*entity.RefreshToken),
	}
}

func (db *fakeDB) addUser(u entity.User) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.users[u.ID] = &u
}

func (db *fakeDB) addToken(rt entity.RefreshToken) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.tokens[rt.ID] = &rt
}

func (db *fakeDB) user(id int64) entity.User {
	db.mu.Lock()
	defer db.mu.Unlock()
	return *db.users[id]
}

func (db *fakeDB) findByTarget(t entity.Target) *entity.User {
	for _, u := range db.users {
		if t.Channel == entity.ChannelEmail && u.Email == t.Value {
			return u
		}
		if t.Channel == entity.ChannelSMS && u.PhoneNumber == t.Value {
			return u
		}
	}
	return nil
}

func (db *fakeDB) GetUserByID(_ context.Context, id int64) (*entity.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	u, ok := db.users[id]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (db *fakeDB) GetUserByTarget(_ context.Context, t entity.Target) (*entity.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	u := db.findByTarget(t)
	if u == nil {
		return nil, goerror.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (db *fakeDB) GetOrCreateUserByTarget(_ context.Context, id int64, t entity.Target) (*entity.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if u := db.findByTarget(t); u != nil {
		cp := *u
		return &cp, nil
	}

	u := &entity.User{ID: id}
	if t.Channel == entity.ChannelEmail {
		u.Email = t.Value
		u.EmailVerified = true
	} else {
		u.PhoneNumber = t.Value
		u.PhoneVerified = true
	}
	db.users[id] = u

	cp := *u
	return &cp, nil
}

func (db *fakeDB) UpdateUserPassword(_ context.Context, userID int64, passwordHash string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	u, ok := db.users[userID]
	if !ok {
		return goerror.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (db *fakeDB) UpdateUserIdentifier(_ context.Context, userID int64, t entity.Target) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	u, ok := db.users[userID]
	if !ok {
		return goerror.ErrNotFound
	}
	if t.Channel == entity.ChannelEmail {
		u.Email = t.Value
		u.EmailVerified = true
	} else {
		u.PhoneNumber = t.Value
		u.PhoneVerified = true
	}
	return nil
}

func (db *fakeDB) CreateRefreshToken(_ context.Context, rt entity.RefreshToken) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.tokens[rt.ID] = &rt
	return nil
}

func (db *fakeDB) GetRefreshTokenByHash(_ context.Context, tokenHash string) (*entity.RefreshToken, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, rt := range db.tokens {
		if rt.TokenHash == tokenHash {
			cp := *rt
			return &cp, nil
		}
	}
	return nil, goerror.ErrNotFound
}

func (db *fakeDB) RevokeRefreshToken(_ context.Context, id int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	rt, ok := db.tokens[id]
	if !ok {
		return goerror.ErrNotFound
	}
	rt.Revoked = true
	return nil
}

type issuedChallenge struct {
	target  string
	purpose string
	channel string
}

// fakeEngine stands in for the OTP engine; the outcome of the next Issue and
// Verify is scripted through its fields.
type fakeEngine struct {
	mu        sync.Mutex
	cooldown  bool
	issueErr  error
	verifyErr error
	issued    []issuedChallenge
}

func (e *fakeEngine) Issue(_ context.Context, target, purpose, channel string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.issueErr != nil {
		return false, e.issueErr
	}
	if e.cooldown {
		return false, nil
	}
	e.issued = append(e.issued, issuedChallenge{target: target, purpose: purpose, channel: channel})
	return true, nil
}

func (e *fakeEngine) Verify(_ context.Context, target, code, purpose string) (*otp.Challenge, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.verifyErr != nil {
		return nil, e.verifyErr
	}
	return &otp.Challenge{Code: code, Purpose: purpose}, nil
}

func (e *fakeEngine) issuedCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.issued)
}

func (e *fakeEngine) lastIssued(t *testing.T) issuedChallenge {
	t.Helper()

	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.issued) == 0 {
		t.Fatalf("no challenge was issued")
	}
	return e.issued[len(e.issued)-1]
}

type fakeMessaging struct {
	mu     sync.Mutex
	events []event.PasswordChanged
}

func (m *fakeMessaging) PublishPasswordChanged(_ context.Context, ev event.PasswordChanged) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return nil
}

func (m *fakeMessaging) published() []event.PasswordChanged {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]event.PasswordChanged(nil), m.events...)
}

type fakeJWT struct{}

func (fakeJWT) Generate(uid int64, _ string) (string, error) {
	return fmt.Sprintf("access-%d", uid), nil
}

func (fakeJWT) Verify(string) (jwt.Claims, error) {
	return jwt.Claims{}, nil
}

// fakeHash prefixes instead of hashing so tests can predict stored values.
type fakeHash struct{ prefix string }

func (h fakeHash) Hash(plaintext string) ([]byte, error) {
	return []byte(h.prefix + plaintext), nil
}

func (h fakeHash) Verify(hashed, plaintext string) bool {
	return hashed == h.prefix+plaintext
}

type seqNumberID struct {
	mu   sync.Mutex
	next int64
}

func (s *seqNumberID) Generate() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return s.next
}

type seqStringID struct {
	mu   sync.Mutex
	next int
}

func (s *seqStringID) Generate() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return fmt.Sprintf("opaque-%d", s.next)
}

type stubConfig struct{ config.Config }

func (stubConfig) GetDay(string) time.Duration { return 30 * 24 * time.Hour }

func (stubConfig) GetSecond(string) time.Duration { return 5 * time.Minute }

type testWorld struct {
	uc        *Usecase
	db        *fakeDB
	engine    *fakeEngine
	messaging *fakeMessaging
	clock     *fakeClock
	signer    *signer.TimestampSigner
	routines  *goroutine.Manager
}

func newTestWorld(t *testing.T) *testWorld {
	t.Helper()

	v10, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("build validator: %v", err)
	}

	clk := newFakeClock()
	w := &testWorld{
		db:        newFakeDB(),
		engine:    &fakeEngine{},
		messaging: &fakeMessaging{},
		clock:     clk,
		signer:    signer.NewTimestampSigner("test-secret", "reset", clk),
		routines:  goroutine.NewManager(8),
	}

	w.uc = New(Dependency{
		RepoDB:        w.db,
		RepoMessaging: w.messaging,
		OTP:           w.engine,
		Signer:        w.signer,
		Validator:     v10,
		Config:        stubConfig{},
		Bcrypt:        fakeHash{prefix: "bcrypt:"},
		HMAC:          fakeHash{prefix: "hmac:"},
		UID:           &seqNumberID{next: 100},
		OID:           &seqStringID{},
		Clock:         clk,
		JWT:           fakeJWT{},
		Instrument:    instrument.NewNoop(),
		Goroutine:     w.routines,
	})

	return w
}

func authCtx(userID int64) context.Context {
	return jwt.SetAuth(context.Background(), jwt.Claims{UserID: userID})
}

func wantCode(t *testing.T, err error, code goerror.Code) *goerror.Error {
	t.Helper()

	var ge *goerror.Error
	if !errors.As(err, &ge) {
		t.Fatalf("expected a structured error, got %v", err)
	}
	if ge.Code() != code {
		t.Fatalf("expected code %s, got %s", code.String(), ge.String())
	}
	return ge
}
