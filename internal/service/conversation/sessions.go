package conversation

import (
	"sync"

	"github.com/sundinlabs/multibot/internal/domain"
)

// hydration window: how many stored turns seed a fresh session
const hydrateTurns = 20

// SessionStore keeps the in-memory model context per conversation
// key. Sessions are hydrated once from the stored lead history and
// then live for the process lifetime.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*domain.Session),
	}
}

// GetOrHydrate returns the session for the key, building it from the
// lead's stored history on first sight. A nil lead starts empty.
func (s *SessionStore) GetOrHydrate(bot, sender string, lead *domain.Lead) *domain.Session {
	key := domain.ConversationKey(bot, sender)

	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.sessions[key]; ok {
		return session
	}

	session := &domain.Session{
		Key:    key,
		Bot:    bot,
		Sender: sender,
	}
	if lead != nil {
		entries := lead.Historial
		if len(entries) > hydrateTurns {
			entries = entries[len(entries)-hydrateTurns:]
		}
		for _, e := range entries {
			switch e.Tipo {
			case string(domain.MessageKindUser):
				session.Messages = append(session.Messages, domain.ChatMessage{
					Role: domain.ChatRoleUser, Content: e.Texto,
				})
			case string(domain.MessageKindBot), string(domain.MessageKindAdmin):
				session.Messages = append(session.Messages, domain.ChatMessage{
					Role: domain.ChatRoleAssistant, Content: e.Texto,
				})
				session.Greeted = true
			}
		}
	}
	s.sessions[key] = session
	return session
}

// Append adds one turn to the session under the store lock.
func (s *SessionStore) Append(key string, msg domain.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[key]; ok {
		session.Messages = append(session.Messages, msg)
	}
}

// MarkGreeted flags the session as already past its greeting.
func (s *SessionStore) MarkGreeted(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[key]; ok {
		session.Greeted = true
	}
}

// Drop removes a session, forcing re-hydration on next contact.
func (s *SessionStore) Drop(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, key)
}

// Snapshot copies the session's messages for a model call.
func (s *SessionStore) Snapshot(key string) []domain.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[key]
	if !ok {
		return nil
	}
	out := make([]domain.ChatMessage, len(session.Messages))
	copy(out, session.Messages)
	return out
}
