// internal/pkg/otpstore/otpstore.go
package otpstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	xerrors "sentra-auth/internal/pkg/errors"
)

// DefaultTTL bounds the life of a verification code.
const DefaultTTL = 10 * time.Minute

// Delivery channels for verification codes.
const (
	ChannelEmail = "email"
	ChannelPhone = "phone"
)

// Store keeps at most one live verification code per (identifier, channel)
// pair. Expiry is enforced by Redis itself, not by callers comparing
// timestamps.
type Store struct {
	client *redis.Client
	logger *zap.Logger
}

func New(client *redis.Client, logger *zap.Logger) *Store {
	return &Store{client: client, logger: logger}
}

func key(identifier, channel string) string {
	return fmt.Sprintf("%s:otp:%s", identifier, channel)
}

// Issue stores a code with the given TTL. If a live code already exists for
// the pair it fails with ErrCodeAlreadyIssued and leaves the stored code
// untouched. SETNX makes the check-and-set atomic against concurrent
// issuance.
func (s *Store) Issue(ctx context.Context, identifier, channel, code string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	ok, err := s.client.SetNX(ctx, key(identifier, channel), code, ttl).Result()
	if err != nil {
		return fmt.Errorf("otp store set: %w", err)
	}
	if !ok {
		return xerrors.ErrCodeAlreadyIssued
	}

	s.logger.Debug("verification code issued",
		zap.String("channel", channel),
		zap.Duration("ttl", ttl),
	)
	return nil
}

// Verify compares the submitted code with the stored one. It does not
// consume the code; repeat verification within the TTL is idempotent and
// invalidation is the caller's decision.
func (s *Store) Verify(ctx context.Context, identifier, channel, code string) (bool, error) {
	stored, err := s.client.Get(ctx, key(identifier, channel)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("otp store get: %w", err)
	}
	return stored == code, nil
}

// Invalidate removes the live code for the pair, typically after a
// completed signup.
func (s *Store) Invalidate(ctx context.Context, identifier, channel string) error {
	if err := s.client.Del(ctx, key(identifier, channel)).Err(); err != nil {
		return fmt.Errorf("otp store del: %w", err)
	}
	return nil
}
