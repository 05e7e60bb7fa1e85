package core

import (
	"context"
	"time"
)

// TokenDenylist invalidates bearer tokens before their natural expiry
// (explicit logout). Entries live only as long as the token would have.
type TokenDenylist interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}
