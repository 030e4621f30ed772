package otp

import (
	"context"
	"errors"
	"time"
)

// ErrChallengeNotFound indicates no live challenge exists for a target.
var ErrChallengeNotFound = errors.New("otp: challenge not found")

// Challenge is the state held for a target while its code is live.
type Challenge struct {
	Code     string `json:"code"`
	Purpose  string `json:"purpose"`
	Attempts int    `json:"attempts"`
}

// Store persists challenges with a TTL. There is at most one challenge per
// target; setting a new one replaces the old.
type Store interface {
	// Get returns the live challenge for target, or ErrChallengeNotFound.
	Get(ctx context.Context, target string) (*Challenge, error)

	// Set stores the challenge under target with the given TTL.
	Set(ctx context.Context, target string, ch Challenge, ttl time.Duration) error

	// Delete removes the challenge for target. Deleting an absent key is not
	// an error.
	Delete(ctx context.Context, target string) error

	// RemainingTTL returns how long the challenge for target will stay live,
	// or ErrChallengeNotFound when it has already expired.
	RemainingTTL(ctx context.Context, target string) (time.Duration, error)
}
