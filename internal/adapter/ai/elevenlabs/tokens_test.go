package elevenlabs

import (
	"testing"
	"time"
)

func TestTokenStore_IssueAndRedeem(t *testing.T) {
	store := NewTokenStore(2 * time.Minute)

	token, expires := store.Issue("agent-123")
	if token == "" {
		t.Fatal("expected a token")
	}
	if expires <= time.Now().Unix() {
		t.Errorf("expected future expiry, got %d", expires)
	}

	agentID, ok := store.Redeem(token)
	if !ok {
		t.Fatal("expected token to redeem")
	}
	if agentID != "agent-123" {
		t.Errorf("expected agent-123, got %s", agentID)
	}
}

func TestTokenStore_SingleUse(t *testing.T) {
	store := NewTokenStore(2 * time.Minute)
	token, _ := store.Issue("agent-123")

	if _, ok := store.Redeem(token); !ok {
		t.Fatal("first redeem should succeed")
	}
	if _, ok := store.Redeem(token); ok {
		t.Error("second redeem should fail")
	}
}

func TestTokenStore_Expired(t *testing.T) {
	store := NewTokenStore(time.Minute)
	token, _ := store.Issue("agent-123")

	store.mu.Lock()
	entry := store.tokens[token]
	entry.expires = time.Now().Add(-time.Second)
	store.tokens[token] = entry
	store.mu.Unlock()

	if _, ok := store.Redeem(token); ok {
		t.Error("expected expired token to fail")
	}
}

func TestTokenStore_UnknownToken(t *testing.T) {
	store := NewTokenStore(time.Minute)
	if _, ok := store.Redeem("nope"); ok {
		t.Error("expected unknown token to fail")
	}
}
