package elevenlabs

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

// TokenStore issues the short-lived opaque tokens that gate the SDP
// proxy. Tokens are single-audience (one agent id) and pruned lazily
// on every issue.
type TokenStore struct {
	ttl time.Duration

	mu     sync.Mutex
	tokens map[string]tokenEntry
}

type tokenEntry struct {
	agentID string
	expires time.Time
}

func NewTokenStore(ttl time.Duration) *TokenStore {
	if ttl <= 0 {
		ttl = 120 * time.Second
	}
	return &TokenStore{
		ttl:    ttl,
		tokens: make(map[string]tokenEntry),
	}
}

// Issue mints a token bound to the agent and returns it with its
// unix expiry.
func (s *TokenStore) Issue(agentID string) (string, int64) {
	buf := make([]byte, 24)
	_, _ = rand.Read(buf)
	token := hex.EncodeToString(buf)
	expires := time.Now().Add(s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked()
	s.tokens[token] = tokenEntry{agentID: agentID, expires: expires}
	return token, expires.Unix()
}

// Redeem validates and consumes a token, returning the bound agent id.
func (s *TokenStore) Redeem(token string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.tokens[token]
	if !ok {
		return "", false
	}
	delete(s.tokens, token)
	if time.Now().After(entry.expires) {
		return "", false
	}
	return entry.agentID, true
}

func (s *TokenStore) pruneLocked() {
	now := time.Now()
	for t, e := range s.tokens {
		if now.After(e.expires) {
			delete(s.tokens, t)
		}
	}
}
