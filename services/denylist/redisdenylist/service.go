package redisdenylist

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/revelohq/revelo/core"
)

const keyPrefix = "revoked:"

// service keeps revoked tokens in redis until their natural expiry;
// the key TTL does the cleanup.
type service struct {
	client *redis.Client
}

var _ core.TokenDenylist = (*service)(nil)

func NewService(conf *core.Config) *service {
	return &service{client: redis.NewClient(&redis.Options{Addr: conf.Redis.URL})}
}

// NewServiceWithClient is used by tests to inject a mock client.
func NewServiceWithClient(client *redis.Client) *service {
	return &service{client: client}
}

func (svc *service) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return svc.client.Set(ctx, key(token), "1", ttl).Err()
}

func (svc *service) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := svc.client.Exists(ctx, key(token)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// tokens are hashed before use as keys; raw JWTs are long and secret
func key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return keyPrefix + hex.EncodeToString(sum[:])
}
