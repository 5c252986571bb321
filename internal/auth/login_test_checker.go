package auth

import (
	"context"
	"sync"
)

// LoginTestChecker resolves tokens from memory. It backs local runs without
// redis and tests.
type LoginTestChecker struct {
	mu       sync.RWMutex
	sessions map[string]Identity
}

func NewLoginTestChecker() *LoginTestChecker {
	return &LoginTestChecker{
		sessions: map[string]Identity{},
	}
}

func (c *LoginTestChecker) Add(token string, id Identity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[token] = id
}

func (c *LoginTestChecker) Identity(_ context.Context, token string) (Identity, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.sessions[token]
	return id, ok, nil
}
