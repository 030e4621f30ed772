package otp

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nubitera/authcore/internal/pkg/goroutine"
)

// ErrCodeInvalid is the single failure the engine reports for a bad
// verification: absent challenge, wrong purpose, exhausted attempts, or a
// mismatched code. Collapsing them keeps the failure mode indistinguishable
// to a caller probing for live challenges.
var ErrCodeInvalid = errors.New("otp: invalid or expired code")

// Defaults applied when EngineConfig leaves a knob zero.
const (
	DefaultTTL         = 2 * time.Minute
	DefaultMaxAttempts = 5
)

// Deliverer sends an issued code to its target over the given channel.
type Deliverer interface {
	Deliver(ctx context.Context, target, purpose, channel, code string) error
}

// EngineConfig carries the engine's dependencies and policy knobs.
type EngineConfig struct {
	Store       Store
	Generator   Generator
	Deliverer   Deliverer
	Goroutine   *goroutine.Manager
	CodeLength  int
	TTL         time.Duration
	MaxAttempts int
}

// Engine issues and verifies one-time codes.
type Engine struct {
	store       Store
	gen         Generator
	deliverer   Deliverer
	goroutine   *goroutine.Manager
	codeLength  int
	ttl         time.Duration
	maxAttempts int
}

// NewEngine constructs an Engine from cfg, filling unset knobs with defaults.
func NewEngine(cfg EngineConfig) *Engine {
	if cfg.CodeLength <= 0 {
		cfg.CodeLength = DefaultCodeLength
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.Generator == nil {
		cfg.Generator = NewCodeGenerator(nil)
	}

	return &Engine{
		store:       cfg.Store,
		gen:         cfg.Generator,
		deliverer:   cfg.Deliverer,
		goroutine:   cfg.Goroutine,
		codeLength:  cfg.CodeLength,
		ttl:         cfg.TTL,
		maxAttempts: cfg.MaxAttempts,
	}
}

// Issue generates and stores a fresh challenge for target bound to purpose,
// then hands the code to the deliverer off the request path. It returns false
// without touching anything when a live challenge already exists; the caller
// should tell the user to wait for it to expire.
func (e *Engine) Issue(ctx context.Context, target, purpose, channel string) (bool, error) {
	_, err := e.store.Get(ctx, target)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrChallengeNotFound) {
		return false, fmt.Errorf("otp: check live challenge: %w", err)
	}

	code, err := e.gen.Generate(e.codeLength)
	if err != nil {
		return false, err
	}

	ch := Challenge{Code: code, Purpose: purpose, Attempts: 0}
	if err := e.store.Set(ctx, target, ch, e.ttl); err != nil {
		return false, err
	}

	e.dispatch(ctx, target, purpose, channel, code)

	return true, nil
}

// Verify checks code against the live challenge for target. On success the
// challenge is consumed before the result is returned, so a code can never be
// redeemed twice. Every failure is reported as ErrCodeInvalid; an infra error
// from the store is returned as-is for the caller to log.
func (e *Engine) Verify(ctx context.Context, target, code, purpose string) (*Challenge, error) {
	ch, err := e.store.Get(ctx, target)
	if errors.Is(err, ErrChallengeNotFound) {
		return nil, ErrCodeInvalid
	}
	if err != nil {
		return nil, err
	}

	// A code issued for one purpose must never satisfy another. The attempt
	// counter is not advanced here: the caller got the flow wrong, the code
	// was not guessed at.
	if ch.Purpose != purpose {
		return nil, ErrCodeInvalid
	}

	if ch.Attempts >= e.maxAttempts {
		if err := e.store.Delete(ctx, target); err != nil {
			slog.WarnContext(ctx, "failed to drop exhausted challenge", "error", err)
		}
		return nil, ErrCodeInvalid
	}

	if subtle.ConstantTimeCompare([]byte(ch.Code), []byte(code)) == 1 {
		if err := e.store.Delete(ctx, target); err != nil {
			return nil, fmt.Errorf("otp: consume challenge: %w", err)
		}
		return ch, nil
	}

	e.recordFailure(ctx, target, *ch)

	return nil, ErrCodeInvalid
}

// TTL returns the lifetime applied to issued challenges.
func (e *Engine) TTL() time.Duration {
	return e.ttl
}

// recordFailure bumps the attempt counter while preserving the challenge's
// original deadline. Rewriting with the remaining TTL rather than a fresh one
// keeps failed guesses from extending the window.
func (e *Engine) recordFailure(ctx context.Context, target string, ch Challenge) {
	remaining, err := e.store.RemainingTTL(ctx, target)
	if err != nil {
		// Expired between the read and now; nothing left to count against.
		if !errors.Is(err, ErrChallengeNotFound) {
			slog.WarnContext(ctx, "failed to read challenge ttl", "error", err)
		}
		return
	}
	if remaining <= 0 {
		return
	}

	ch.Attempts++
	if err := e.store.Set(ctx, target, ch, remaining); err != nil {
		slog.WarnContext(ctx, "failed to record otp attempt", "error", err)
	}
}

// dispatch hands the code to the deliverer without blocking the caller. The
// request context is detached so an early client disconnect cannot cancel
// the send.
func (e *Engine) dispatch(ctx context.Context, target, purpose, channel, code string) {
	if e.deliverer == nil {
		return
	}

	send := func(ctx context.Context) error {
		if err := e.deliverer.Deliver(ctx, target, purpose, channel, code); err != nil {
			slog.ErrorContext(ctx, "otp delivery failed", "target", target, "channel", channel, "error", err)
			return err
		}
		return nil
	}

	detached := context.WithoutCancel(ctx)
	if e.goroutine != nil {
		e.goroutine.Go(detached, send)
		return
	}

	go func() { _ = send(detached) }()
}
