package otp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "otp:"

// RedisStore implements Store on a redis client. Expiry is delegated to
// redis key TTLs, so challenges vanish on their own.
type RedisStore struct {
	client redis.Cmdable
}

// NewRedisStore constructs a RedisStore.
func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) key(target string) string {
	return redisKeyPrefix + target
}

// Get returns the live challenge for target, or ErrChallengeNotFound.
func (s *RedisStore) Get(ctx context.Context, target string) (*Challenge, error) {
	raw, err := s.client.Get(ctx, s.key(target)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrChallengeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("otp: redis get: %w", err)
	}

	var ch Challenge
	if err := json.Unmarshal(raw, &ch); err != nil {
		return nil, fmt.Errorf("otp: decode challenge: %w", err)
	}

	return &ch, nil
}

// Set stores the challenge under target with the given TTL.
func (s *RedisStore) Set(ctx context.Context, target string, ch Challenge, ttl time.Duration) error {
	raw, err := json.Marshal(ch)
	if err != nil {
		return fmt.Errorf("otp: encode challenge: %w", err)
	}

	if err := s.client.Set(ctx, s.key(target), raw, ttl).Err(); err != nil {
		return fmt.Errorf("otp: redis set: %w", err)
	}

	return nil
}

// Delete removes the challenge for target.
func (s *RedisStore) Delete(ctx context.Context, target string) error {
	if err := s.client.Del(ctx, s.key(target)).Err(); err != nil {
		return fmt.Errorf("otp: redis del: %w", err)
	}

	return nil
}

// RemainingTTL returns how long the challenge for target will stay live.
func (s *RedisStore) RemainingTTL(ctx context.Context, target string) (time.Duration, error) {
	d, err := s.client.PTTL(ctx, s.key(target)).Result()
	if err != nil {
		return 0, fmt.Errorf("otp: redis pttl: %w", err)
	}
	// PTTL reports -2 for a missing key and -1 for a key with no expiry;
	// challenges are always written with a TTL, so treat both as gone.
	if d < 0 {
		return 0, ErrChallengeNotFound
	}

	return d, nil
}
