package domain

import "time"

// InstagramUser is one connected Instagram account (OAuth result).
type InstagramUser struct {
	UserID      string    `json:"user_id" firestore:"-"`
	PageID      string    `json:"page_id" firestore:"page_id"`
	Username    string    `json:"username,omitempty" firestore:"username"`
	AccessToken string    `json:"-" firestore:"access_token"`
	Enabled     *bool     `json:"enabled,omitempty" firestore:"enabled"`
	ConnectedAt time.Time `json:"connected_at" firestore:"connected_at"`
}

// BotEnabled reports the per-account switch, default ON.
func (u *InstagramUser) BotEnabled() bool {
	return u.Enabled == nil || *u.Enabled
}

// InstagramMessage is one inbound DM after webhook normalization.
type InstagramMessage struct {
	MID       string `json:"mid"`
	SenderID  string `json:"sender_id"`
	PageID    string `json:"page_id"`
	Text      string `json:"text"`
	IsEcho    bool   `json:"is_echo"`
	Timestamp int64  `json:"timestamp"`
}
