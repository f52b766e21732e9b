package auth

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// tokenPrefix marks tokens issued by this node.
const tokenPrefix = "kagero-admin"

// SessionEngine holds issued admin tokens with an expiration time. A
// presented bearer token authorizes only if this engine issued it and it
// has not expired.
type SessionEngine struct {
	mu           sync.RWMutex
	tokens       map[string]time.Time
	ttl          time.Duration
	stopCleanup  chan struct{}
	cleanupTimer *time.Ticker
}

// NewSessionEngine creates a new SessionEngine and starts the cleanup routine.
func NewSessionEngine(ttl, cleanupInterval time.Duration) *SessionEngine {
	e := &SessionEngine{
		tokens:       make(map[string]time.Time),
		ttl:          ttl,
		stopCleanup:  make(chan struct{}),
		cleanupTimer: time.NewTicker(cleanupInterval),
	}
	go e.runCleanup()
	return e
}

// Stop stops the background cleanup routine.
func (e *SessionEngine) Stop() {
	e.cleanupTimer.Stop()
	close(e.stopCleanup)
}

// Issue registers and returns a fresh admin token.
func (e *SessionEngine) Issue() string {
	token := fmt.Sprintf("%s-%d-%s", tokenPrefix, time.Now().Unix(), uuid.NewString())
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tokens[token] = time.Now().Add(e.ttl)
	return token
}

// Validate reports whether the token was issued here and is still live.
func (e *SessionEngine) Validate(token string) bool {
	if token == "" {
		return false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	expiresAt, ok := e.tokens[token]
	if !ok {
		return false
	}
	return expiresAt.After(time.Now())
}

// Revoke drops a token before its expiry.
func (e *SessionEngine) Revoke(token string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.tokens, token)
}

// runCleanup periodically removes expired tokens.
func (e *SessionEngine) runCleanup() {
	for {
		select {
		case <-e.stopCleanup:
			return
		case <-e.cleanupTimer.C:
			now := time.Now()
			e.mu.Lock()
			for token, expiresAt := range e.tokens {
				if expiresAt.Before(now) {
					delete(e.tokens, token)
				}
			}
			e.mu.Unlock()
		}
	}
}
