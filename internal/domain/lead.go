package domain

import "time"

const HistoryTimeLayout = "2006-01-02 15:04:05"

type MessageKind string

const (
	MessageKindUser  MessageKind = "usuario"
	MessageKindBot   MessageKind = "bot"
	MessageKindAdmin MessageKind = "admin"
)

// HistoryEntry is one turn in a lead's stored conversation history.
// Field names match the document shape the panel reads.
type HistoryEntry struct {
	Tipo  string `json:"tipo" firestore:"tipo"`
	Texto string `json:"texto" firestore:"texto"`
	Hora  string `json:"hora" firestore:"hora"`
}

// TimeMillis parses the entry timestamp into epoch milliseconds, zero
// when the stored string is malformed.
func (h HistoryEntry) TimeMillis() int64 {
	t, err := time.Parse(HistoryTimeLayout, h.Hora)
	if err != nil {
		return 0
	}
	return t.UnixMilli()
}

// Lead is one contact of one bot: leads/{bot}/contacts/{number}.
type Lead struct {
	Bot          string         `json:"bot" firestore:"-"`
	Number       string         `json:"number" firestore:"-"`
	Historial    []HistoryEntry `json:"historial" firestore:"historial"`
	LastMessage  string         `json:"last_message" firestore:"last_message"`
	LastSeen     string         `json:"last_seen" firestore:"last_seen"`
	MessageCount int64          `json:"message_count" firestore:"message_count"`
	Status       string         `json:"status,omitempty" firestore:"status"`
	Notes        string         `json:"notes,omitempty" firestore:"notes"`
	BotEnabled   *bool          `json:"bot_enabled,omitempty" firestore:"bot_enabled"`
}

// Enabled reports the per-conversation switch, default ON.
func (l *Lead) Enabled() bool {
	return l.BotEnabled == nil || *l.BotEnabled
}
