package domain

import "time"

type ChatRole string

const (
	ChatRoleSystem    ChatRole = "system"
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

type ChatMessage struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

// Session is the in-memory model context for one conversation key.
type Session struct {
	Key      string        `json:"key"`
	Bot      string        `json:"bot"`
	Sender   string        `json:"sender"`
	Messages []ChatMessage `json:"messages"`
	Greeted  bool          `json:"greeted"`
}

type AgendaStatus string

const (
	AgendaStatusNone        AgendaStatus = ""
	AgendaStatusLinkSent    AgendaStatus = "link_sent"
	AgendaStatusConfirmed   AgendaStatus = "confirmed"
	AgendaStatusAppLinkSent AgendaStatus = "app_link_sent"
)

// AgendaState tracks the scheduling turn machine for one conversation.
type AgendaState struct {
	AwaitingConfirm bool         `json:"awaiting_confirm"`
	Status          AgendaStatus `json:"status"`
	Closed          bool         `json:"closed"`
	LastLinkTime    time.Time    `json:"last_link_time"`
	LastReplyHash   string       `json:"last_reply_hash"`
}

// LinkCooldownActive reports whether a link was sent within the window.
func (s *AgendaState) LinkCooldownActive(now time.Time, window time.Duration) bool {
	return !s.LastLinkTime.IsZero() && now.Sub(s.LastLinkTime) < window
}

// ConversationKey joins bot and sender into the canonical session key.
func ConversationKey(bot, sender string) string {
	return bot + "|" + sender
}
