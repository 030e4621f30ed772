package otp

import (
	"context"
	"sync"
	"time"

	"github.com/nubitera/authcore/internal/pkg/clock"
)

type memoryEntry struct {
	challenge Challenge
	expiresAt time.Time
}

// MemoryStore is an in-process Store. It is intended for tests and local
// development; expired entries are reaped lazily on access.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	clock   clock.Clocker
}

// NewMemoryStore constructs a MemoryStore.
func NewMemoryStore(clk clock.Clocker) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		clock:   clock.OrSystem(clk),
	}
}

// Get returns the live challenge for target, or ErrChallengeNotFound.
func (s *MemoryStore) Get(_ context.Context, target string) (*Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.live(target)
	if !ok {
		return nil, ErrChallengeNotFound
	}

	ch := e.challenge
	return &ch, nil
}

// Set stores the challenge under target with the given TTL.
func (s *MemoryStore) Set(_ context.Context, target string, ch Challenge, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[target] = memoryEntry{
		challenge: ch,
		expiresAt: s.clock.Now().Add(ttl),
	}

	return nil
}

// Delete removes the challenge for target.
func (s *MemoryStore) Delete(_ context.Context, target string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, target)

	return nil
}

// RemainingTTL returns how long the challenge for target will stay live.
func (s *MemoryStore) RemainingTTL(_ context.Context, target string) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.live(target)
	if !ok {
		return 0, ErrChallengeNotFound
	}

	return e.expiresAt.Sub(s.clock.Now()), nil
}

// live must be called with the mutex held.
func (s *MemoryStore) live(target string) (memoryEntry, bool) {
	e, ok := s.entries[target]
	if !ok {
		return memoryEntry{}, false
	}

	if !s.clock.Now().Before(e.expiresAt) {
		delete(s.entries, target)
		return memoryEntry{}, false
	}

	return e, true
}
