package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/lumenops/identity/internal/core/domain/account"
	"github.com/lumenops/identity/internal/core/ports"
)

const (
	// confirmTokenPrefix prefixes Redis keys for confirmation tokens.
	// It's a static prefix and not a credential; silence gosec G101 here.
	confirmTokenPrefix = "identity:confirm" //nolint:gosec
)

// TokenRedisRepository keeps confirmation tokens in Redis with native TTL
// expiry. GETDEL makes consumption atomic; a consumed tombstone keeps
// replays distinguishable from unknown tokens. Keys that expired are
// indistinguishable from ones that never existed, so expiry surfaces as
// ErrTokenNotFound here; the Postgres store reports the exact kind.
type TokenRedisRepository struct {
	redisClient *redis.Client
	logger      *logrus.Logger
}

func NewTokenRedisRepository(redisClient *redis.Client, logger *logrus.Logger) ports.TokenRepository {
	return &TokenRedisRepository{redisClient: redisClient, logger: logger}
}

// Ensure TokenRedisRepository implements ports.TokenRepository
var _ ports.TokenRepository = (*TokenRedisRepository)(nil)

func (r *TokenRedisRepository) keyLive(token string) string {
	return fmt.Sprintf("%s:tok:%s", confirmTokenPrefix, token)
}

func (r *TokenRedisRepository) keyConsumed(token string) string {
	return fmt.Sprintf("%s:used:%s", confirmTokenPrefix, token)
}

func (r *TokenRedisRepository) Create(ctx context.Context, t *account.ConfirmationToken) error {
	b, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to marshal confirmation token: %w", err)
	}

	ttl := time.Until(t.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("confirmation token already expired")
	}

	if err := r.redisClient.Set(ctx, r.keyLive(t.Token), b, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store confirmation token in redis: %w", err)
	}

	return nil
}

func (r *TokenRedisRepository) Get(ctx context.Context, tokenString string) (*account.ConfirmationToken, error) {
	b, err := r.redisClient.Get(ctx, r.keyLive(tokenString)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, r.missingKind(ctx, tokenString)
		}
		return nil, fmt.Errorf("failed to get confirmation token from redis: %w", err)
	}

	var t account.ConfirmationToken
	if err := json.Unmarshal(b, &t); err != nil {
		return nil, fmt.Errorf("failed to unmarshal confirmation token: %w", err)
	}

	return &t, nil
}

func (r *TokenRedisRepository) Consume(ctx context.Context, tokenString string, now time.Time) (*account.ConfirmationToken, error) {
	b, err := r.redisClient.GetDel(ctx, r.keyLive(tokenString)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, r.missingKind(ctx, tokenString)
		}
		return nil, fmt.Errorf("failed to consume confirmation token: %w", err)
	}

	var t account.ConfirmationToken
	if err := json.Unmarshal(b, &t); err != nil {
		return nil, fmt.Errorf("failed to unmarshal confirmation token: %w", err)
	}

	t.ConsumedAt = &now

	// Tombstone for the rest of the token's lifetime so a replay reports
	// "already used" rather than "not found".
	if ttl := time.Until(t.ExpiresAt); ttl > 0 {
		if err := r.redisClient.Set(ctx, r.keyConsumed(tokenString), "1", ttl).Err(); err != nil && r.logger != nil {
			r.logger.WithError(err).Warn("redis: failed to store consumed-token tombstone")
		}
	}

	return &t, nil
}

// missingKind checks whether a vanished token was consumed earlier.
func (r *TokenRedisRepository) missingKind(ctx context.Context, tokenString string) error {
	exists, err := r.redisClient.Exists(ctx, r.keyConsumed(tokenString)).Result()
	if err != nil {
		return fmt.Errorf("failed to check consumed tombstone: %w", err)
	}
	if exists > 0 {
		return account.ErrTokenConsumed
	}
	return account.ErrTokenNotFound
}

// DeleteExpired is a no-op: Redis expires token keys natively.
func (r *TokenRedisRepository) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	return 0, nil
}
