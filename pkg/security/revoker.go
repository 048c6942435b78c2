package security

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jellydator/ttlcache/v2"
	"github.com/redis/go-redis/v9"
)

// Revoker remembers revoked token IDs until the token would have expired anyway
type Revoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// MemoryRevoker keeps revoked token IDs in process memory. Only suitable for a
// single instance deployment.
type MemoryRevoker struct {
	cache *ttlcache.Cache
}

func NewMemoryRevoker() *MemoryRevoker {
	c := ttlcache.NewCache()
	c.SkipTTLExtensionOnHit(true)

	return &MemoryRevoker{cache: c}
}

func (m *MemoryRevoker) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	return m.cache.SetWithTTL(tokenID, struct{}{}, ttl)
}

func (m *MemoryRevoker) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	_, err := m.cache.Get(tokenID)
	if err != nil {
		if errors.Is(err, ttlcache.ErrNotFound) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

func (m *MemoryRevoker) Close() error {
	return m.cache.Close()
}

// RedisRevoker stores revoked token IDs in Redis so every instance behind a
// load balancer sees the same revocations
type RedisRevoker struct {
	client *redis.Client
}

// NewRedisRevoker parses a redis:// URL and pings the server
func NewRedisRevoker(ctx context.Context, url string) (*RedisRevoker, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url, %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis, %w", err)
	}

	return &RedisRevoker{client: client}, nil
}

func (r *RedisRevoker) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	return r.client.Set(ctx, revocationKey(tokenID), "1", ttl).Err()
}

func (r *RedisRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, revocationKey(tokenID)).Result()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}

func (r *RedisRevoker) Close() error {
	return r.client.Close()
}

func revocationKey(tokenID string) string {
	return "revoked_token:" + tokenID
}
