// Package session stores short-lived server-side state behind opaque ids.
//
// The auth flows park their progress here between HTTP requests; the client
// only ever holds the random id, so nothing about the flow leaks into cookies
// or local storage.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound indicates the session is absent or already expired.
var ErrNotFound = errors.New("session: not found")

const (
	keyPrefix = "session:"
	idBytes   = 32
)

// Store keeps opaque session payloads in redis with a fixed TTL.
type Store struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewStore constructs a Store whose sessions live for ttl.
func NewStore(client redis.Cmdable, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// TTL returns the lifetime applied to stored sessions.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Create stores payload under a fresh random id and returns the id.
func (s *Store) Create(ctx context.Context, payload []byte) (string, error) {
	buf := make([]byte, idBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("session: generate id: %w", err)
	}
	id := hex.EncodeToString(buf)

	if err := s.client.Set(ctx, keyPrefix+id, payload, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("session: store: %w", err)
	}

	return id, nil
}

// Get returns the payload stored under id, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) ([]byte, error) {
	raw, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session: fetch: %w", err)
	}

	return raw, nil
}

// Replace overwrites the payload under id and restarts its TTL. Replacing an
// absent session fails with ErrNotFound so a flow cannot resurrect itself
// after expiry.
func (s *Store) Replace(ctx context.Context, id string, payload []byte) error {
	ok, err := s.client.SetXX(ctx, keyPrefix+id, payload, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("session: replace: %w", err)
	}
	if !ok {
		return ErrNotFound
	}

	return nil
}

// Delete removes the session. Deleting an absent session is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("session: delete: %w", err)
	}

	return nil
}
