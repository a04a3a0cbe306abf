package ports

import (
	"context"
	"time"

	"github.com/sundinlabs/multibot/internal/domain"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (string, string, error) // token, refresh, err
	Register(ctx context.Context, user *domain.User) error
	RefreshToken(ctx context.Context, token string) (string, error)
	ValidateToken(ctx context.Context, token string) (*domain.User, error)
}

// BotRegistry is the loaded tarjeta set plus CRUD over the card folder.
type BotRegistry interface {
	All() []*domain.BotCard
	Get(slug string) (*domain.BotCard, error)
	FindByNumber(number string) (*domain.BotCard, error)
	FindByName(name string) (*domain.BotCard, error)
	FindByPageID(pageID string) (*domain.BotCard, error)
	Save(card *domain.BotCard) error
	Delete(slug string) error
	Reload() error
}

// ConversationService drives the inbound message pipeline for a channel.
type ConversationService interface {
	HandleWhatsApp(ctx context.Context, from, to, body string) (string, error)
	HandleInstagram(ctx context.Context, msg *domain.InstagramMessage) error
}

type BillingService interface {
	Track(ctx context.Context, ev domain.UsageEvent) error
	Consumption(ctx context.Context, bot, from, to string) (*domain.Statement, error)
	Statement(ctx context.Context, bot, from, to string) (*domain.Statement, error)
	UsageSeries(ctx context.Context, bot, from, to string) ([]domain.UsagePoint, error)
	ClientsSummary(ctx context.Context, from, to string) ([]ClientSummary, error)
	GetRates(ctx context.Context, bot string) (*domain.Rates, error)
	SetRates(ctx context.Context, bot string, rates domain.Rates) error
	GetServiceItem(ctx context.Context, bot string) (*domain.ServiceItem, error)
	SetServiceItem(ctx context.Context, bot string, item domain.ServiceItem) error
	BotEnabled(ctx context.Context, bot string) bool
	SetBotEnabled(ctx context.Context, bot string, enabled bool) error
}

// ClientSummary is one row of the billing clients listing.
type ClientSummary struct {
	Bot      string  `json:"bot"`
	Name     string  `json:"name"`
	Enabled  bool    `json:"enabled"`
	Requests int64   `json:"requests"`
	Cost     float64 `json:"cost"`
}

type LeadService interface {
	List(ctx context.Context, bot string) ([]domain.Lead, error)
	Get(ctx context.Context, bot, number string) (*domain.Lead, error)
	ChatSince(ctx context.Context, bot, number string, sinceMs int64) ([]domain.HistoryEntry, error)
	SaveStatus(ctx context.Context, bot, number, status, notes string) error
	SetBotEnabled(ctx context.Context, bot, number string, enabled bool) error
	ClearHistory(ctx context.Context, bot, number string) error
	Delete(ctx context.Context, bot, number string) error
	SendManual(ctx context.Context, bot, number, text string) error
	ExportCSV(ctx context.Context, bot string) ([]byte, error)
}

// ChatClient is the text-completion side of the model provider.
type ChatClient interface {
	Complete(ctx context.Context, model string, temperature float64, msgs []domain.ChatMessage) (string, *TokenUsage, error)
}

type TokenUsage struct {
	Model        string `json:"model"`
	InputTokens  int64  `json:"input_tokens"`
	OutputTokens int64  `json:"output_tokens"`
}

// WhatsAppSender delivers outbound SMS/WhatsApp messages.
type WhatsAppSender interface {
	SendWhatsApp(ctx context.Context, creds domain.TwilioCreds, to, body string) error
	SendSMS(ctx context.Context, creds domain.TwilioCreds, to, body string) error
}

// MessageUsage reads delivered-message volume and carrier cost for a
// date range, used when assembling statements.
type MessageUsage interface {
	MessageCosts(ctx context.Context, creds domain.TwilioCreds, from, to time.Time) (count int64, cost float64, perDay map[string]float64, err error)
}

// InstagramSender delivers outbound Instagram DMs.
type InstagramSender interface {
	SendMessage(ctx context.Context, pageID, accessToken, recipientID, text string) error
}

// LinkSender implements the send-link action over SMS or WhatsApp.
type LinkSender interface {
	SendLink(ctx context.Context, req *SendLinkRequest) (string, error)
}

type SendLinkRequest struct {
	Bot     string `json:"bot"`
	Phone   string `json:"phone"`
	Name    string `json:"name"`
	Link    string `json:"link"`
	Source  string `json:"source"`
	Channel string `json:"channel"` // sms or whatsapp
	Text    string `json:"text"`
}

// PushService fans out FCM notifications.
type PushService interface {
	SendToTopic(ctx context.Context, topic, title, body string, data map[string]string) error
	SendToToken(ctx context.Context, token, title, body string, data map[string]string) error
	SendToTokens(ctx context.Context, tokens []string, title, body string, data map[string]string) (int, int, error)
}

// EmailService handles transactional email.
type EmailService interface {
	Send(ctx context.Context, to, subject, body string) error
	SendHTML(ctx context.Context, to, subject, htmlBody string) error
	SendStatement(ctx context.Context, to string, st *domain.Statement) error
}
