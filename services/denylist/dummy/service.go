package dummydenylist

import (
	"context"
	"sync"
	"time"

	"github.com/revelohq/revelo/core"
)

// service is a map-backed denylist for tests. Entries never expire.
type service struct {
	mu      sync.Mutex
	revoked map[string]bool

	// Err, when set, is returned by every call; lets tests exercise the
	// fail-closed path.
	Err error
}

var _ core.TokenDenylist = (*service)(nil)

func NewService() *service {
	return &service{revoked: make(map[string]bool)}
}

func (svc *service) Revoke(_ context.Context, token string, _ time.Duration) error {
	if svc.Err != nil {
		return svc.Err
	}
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.revoked[token] = true
	return nil
}

func (svc *service) IsRevoked(_ context.Context, token string) (bool, error) {
	if svc.Err != nil {
		return false, svc.Err
	}
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.revoked[token], nil
}
