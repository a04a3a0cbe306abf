package dialog

import (
	"sync"
	"time"

	"github.com/sundinlabs/multibot/internal/domain"
)

// AgendaStore keeps the scheduling turn state per conversation key.
// State is in-memory: losing it on restart only means the bot may offer
// the link once more, which is acceptable.
type AgendaStore struct {
	mu     sync.Mutex
	states map[string]*domain.AgendaState
}

func NewAgendaStore() *AgendaStore {
	return &AgendaStore{states: make(map[string]*domain.AgendaState)}
}

// Get returns a copy of the state for the key, zero state when unseen.
func (a *AgendaStore) Get(key string) domain.AgendaState {
	a.mu.Lock()
	defer a.mu.Unlock()

	if st, ok := a.states[key]; ok {
		return *st
	}
	return domain.AgendaState{}
}

// Update mutates the state for the key under the lock.
func (a *AgendaStore) Update(key string, fn func(*domain.AgendaState)) domain.AgendaState {
	a.mu.Lock()
	defer a.mu.Unlock()

	st, ok := a.states[key]
	if !ok {
		st = &domain.AgendaState{}
		a.states[key] = st
	}
	fn(st)
	return *st
}

// CanSendLink blocks a resend while the cooldown since the last link is
// running and the conversation already got one.
func (a *AgendaStore) CanSendLink(key string, cooldown time.Duration) bool {
	st := a.Get(key)
	if st.Status != domain.AgendaStatusLinkSent && st.Status != domain.AgendaStatusConfirmed {
		return true
	}
	return !st.LinkCooldownActive(time.Now(), cooldown)
}

// MarkLinkSent flips the state after a successful link delivery.
func (a *AgendaStore) MarkLinkSent(key string) {
	a.Update(key, func(st *domain.AgendaState) {
		st.AwaitingConfirm = false
		st.Status = domain.AgendaStatusLinkSent
		st.LastLinkTime = time.Now()
		st.Closed = true
	})
}

// SetLastReplyHash records the fingerprint of the last bot reply.
func (a *AgendaStore) SetLastReplyHash(key, text string) {
	a.Update(key, func(st *domain.AgendaState) {
		st.LastReplyHash = HashText(text)
	})
}

// LastReplyHash returns the stored fingerprint, empty when unseen.
func (a *AgendaStore) LastReplyHash(key string) string {
	return a.Get(key).LastReplyHash
}

// Reset drops the state for a key, used when a chat is cleared.
func (a *AgendaStore) Reset(key string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.states, key)
}
