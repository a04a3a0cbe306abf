package mocks

import (
	"context"
	"fmt"
	"time"

	"github.com/sundinlabs/multibot/internal/domain"
	"github.com/sundinlabs/multibot/internal/ports"
)

// MockBotRegistry is a mock implementation of BotRegistry interface
type MockBotRegistry struct {
	Cards []*domain.BotCard

	GetFunc          func(slug string) (*domain.BotCard, error)
	FindByNumberFunc func(number string) (*domain.BotCard, error)
	FindByNameFunc   func(name string) (*domain.BotCard, error)
	FindByPageIDFunc func(pageID string) (*domain.BotCard, error)
	SaveFunc         func(card *domain.BotCard) error
	DeleteFunc       func(slug string) error
	ReloadFunc       func() error
}

func NewMockBotRegistry(cards ...*domain.BotCard) *MockBotRegistry {
	return &MockBotRegistry{Cards: cards}
}

func (m *MockBotRegistry) All() []*domain.BotCard {
	return m.Cards
}

func (m *MockBotRegistry) Get(slug string) (*domain.BotCard, error) {
	if m.GetFunc != nil {
		return m.GetFunc(slug)
	}
	for _, c := range m.Cards {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, fmt.Errorf("bot not found")
}

func (m *MockBotRegistry) FindByNumber(number string) (*domain.BotCard, error) {
	if m.FindByNumberFunc != nil {
		return m.FindByNumberFunc(number)
	}
	for _, c := range m.Cards {
		if c.Number == number || c.Channels.WhatsApp.Number == number || c.Channels.Voice.Number == number {
			return c, nil
		}
	}
	return nil, fmt.Errorf("bot not found")
}

func (m *MockBotRegistry) FindByName(name string) (*domain.BotCard, error) {
	if m.FindByNameFunc != nil {
		return m.FindByNameFunc(name)
	}
	for _, c := range m.Cards {
		if c.Name == name || c.Slug == name {
			return c, nil
		}
	}
	return nil, fmt.Errorf("bot not found")
}

func (m *MockBotRegistry) FindByPageID(pageID string) (*domain.BotCard, error) {
	if m.FindByPageIDFunc != nil {
		return m.FindByPageIDFunc(pageID)
	}
	for _, c := range m.Cards {
		if c.Channels.Instagram.PageID == pageID {
			return c, nil
		}
	}
	return nil, fmt.Errorf("bot not found")
}

func (m *MockBotRegistry) Save(card *domain.BotCard) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(card)
	}
	m.Cards = append(m.Cards, card)
	return nil
}

func (m *MockBotRegistry) Delete(slug string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(slug)
	}
	return nil
}

func (m *MockBotRegistry) Reload() error {
	if m.ReloadFunc != nil {
		return m.ReloadFunc()
	}
	return nil
}

// MockChatClient is a mock implementation of ChatClient interface
type MockChatClient struct {
	CompleteFunc func(ctx context.Context, model string, temperature float64, msgs []domain.ChatMessage) (string, *ports.TokenUsage, error)

	Calls [][]domain.ChatMessage
}

func NewMockChatClient() *MockChatClient {
	return &MockChatClient{}
}

func (m *MockChatClient) Complete(ctx context.Context, model string, temperature float64, msgs []domain.ChatMessage) (string, *ports.TokenUsage, error) {
	m.Calls = append(m.Calls, msgs)
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, model, temperature, msgs)
	}
	return "ok", &ports.TokenUsage{Model: model, InputTokens: 10, OutputTokens: 5}, nil
}

// MockWhatsAppSender is a mock implementation of WhatsAppSender interface
type MockWhatsAppSender struct {
	SendWhatsAppFunc func(ctx context.Context, creds domain.TwilioCreds, to, body string) error
	SendSMSFunc      func(ctx context.Context, creds domain.TwilioCreds, to, body string) error

	WhatsAppSent []string
	SMSSent      []string
}

func NewMockWhatsAppSender() *MockWhatsAppSender {
	return &MockWhatsAppSender{}
}

func (m *MockWhatsAppSender) SendWhatsApp(ctx context.Context, creds domain.TwilioCreds, to, body string) error {
	if m.SendWhatsAppFunc != nil {
		return m.SendWhatsAppFunc(ctx, creds, to, body)
	}
	m.WhatsAppSent = append(m.WhatsAppSent, body)
	return nil
}

func (m *MockWhatsAppSender) SendSMS(ctx context.Context, creds domain.TwilioCreds, to, body string) error {
	if m.SendSMSFunc != nil {
		return m.SendSMSFunc(ctx, creds, to, body)
	}
	m.SMSSent = append(m.SMSSent, body)
	return nil
}

// MockInstagramSender is a mock implementation of InstagramSender interface
type MockInstagramSender struct {
	SendMessageFunc func(ctx context.Context, pageID, accessToken, recipientID, text string) error

	Sent []string
}

func NewMockInstagramSender() *MockInstagramSender {
	return &MockInstagramSender{}
}

func (m *MockInstagramSender) SendMessage(ctx context.Context, pageID, accessToken, recipientID, text string) error {
	if m.SendMessageFunc != nil {
		return m.SendMessageFunc(ctx, pageID, accessToken, recipientID, text)
	}
	m.Sent = append(m.Sent, text)
	return nil
}

// MockLeadService is a mock implementation of LeadService interface
type MockLeadService struct {
	ListFunc          func(ctx context.Context, bot string) ([]domain.Lead, error)
	GetFunc           func(ctx context.Context, bot, number string) (*domain.Lead, error)
	ChatSinceFunc     func(ctx context.Context, bot, number string, sinceMs int64) ([]domain.HistoryEntry, error)
	SaveStatusFunc    func(ctx context.Context, bot, number, status, notes string) error
	SetBotEnabledFunc func(ctx context.Context, bot, number string, enabled bool) error
	ClearHistoryFunc  func(ctx context.Context, bot, number string) error
	DeleteFunc        func(ctx context.Context, bot, number string) error
	SendManualFunc    func(ctx context.Context, bot, number, text string) error
	ExportCSVFunc     func(ctx context.Context, bot string) ([]byte, error)
}

func NewMockLeadService() *MockLeadService {
	return &MockLeadService{}
}

func (m *MockLeadService) List(ctx context.Context, bot string) ([]domain.Lead, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, bot)
	}
	return nil, nil
}

func (m *MockLeadService) Get(ctx context.Context, bot, number string) (*domain.Lead, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, bot, number)
	}
	return nil, nil
}

func (m *MockLeadService) ChatSince(ctx context.Context, bot, number string, sinceMs int64) ([]domain.HistoryEntry, error) {
	if m.ChatSinceFunc != nil {
		return m.ChatSinceFunc(ctx, bot, number, sinceMs)
	}
	return nil, nil
}

func (m *MockLeadService) SaveStatus(ctx context.Context, bot, number, status, notes string) error {
	if m.SaveStatusFunc != nil {
		return m.SaveStatusFunc(ctx, bot, number, status, notes)
	}
	return nil
}

func (m *MockLeadService) SetBotEnabled(ctx context.Context, bot, number string, enabled bool) error {
	if m.SetBotEnabledFunc != nil {
		return m.SetBotEnabledFunc(ctx, bot, number, enabled)
	}
	return nil
}

func (m *MockLeadService) ClearHistory(ctx context.Context, bot, number string) error {
	if m.ClearHistoryFunc != nil {
		return m.ClearHistoryFunc(ctx, bot, number)
	}
	return nil
}

func (m *MockLeadService) Delete(ctx context.Context, bot, number string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, bot, number)
	}
	return nil
}

func (m *MockLeadService) SendManual(ctx context.Context, bot, number, text string) error {
	if m.SendManualFunc != nil {
		return m.SendManualFunc(ctx, bot, number, text)
	}
	return nil
}

func (m *MockLeadService) ExportCSV(ctx context.Context, bot string) ([]byte, error) {
	if m.ExportCSVFunc != nil {
		return m.ExportCSVFunc(ctx, bot)
	}
	return nil, nil
}

// MockConversationService is a mock implementation of ConversationService interface
type MockConversationService struct {
	HandleWhatsAppFunc  func(ctx context.Context, from, to, body string) (string, error)
	HandleInstagramFunc func(ctx context.Context, msg *domain.InstagramMessage) error
}

func NewMockConversationService() *MockConversationService {
	return &MockConversationService{}
}

func (m *MockConversationService) HandleWhatsApp(ctx context.Context, from, to, body string) (string, error) {
	if m.HandleWhatsAppFunc != nil {
		return m.HandleWhatsAppFunc(ctx, from, to, body)
	}
	return "", nil
}

func (m *MockConversationService) HandleInstagram(ctx context.Context, msg *domain.InstagramMessage) error {
	if m.HandleInstagramFunc != nil {
		return m.HandleInstagramFunc(ctx, msg)
	}
	return nil
}

// MockMessageUsage is a mock implementation of MessageUsage interface
type MockMessageUsage struct {
	MessageCostsFunc func(ctx context.Context, creds domain.TwilioCreds, from, to time.Time) (int64, float64, map[string]float64, error)
}

func NewMockMessageUsage() *MockMessageUsage {
	return &MockMessageUsage{}
}

func (m *MockMessageUsage) MessageCosts(ctx context.Context, creds domain.TwilioCreds, from, to time.Time) (int64, float64, map[string]float64, error) {
	if m.MessageCostsFunc != nil {
		return m.MessageCostsFunc(ctx, creds, from, to)
	}
	return 0, 0, nil, nil
}

// MockBillingService is a mock implementation of BillingService interface
type MockBillingService struct {
	TrackFunc          func(ctx context.Context, ev domain.UsageEvent) error
	ConsumptionFunc    func(ctx context.Context, bot, from, to string) (*domain.Statement, error)
	StatementFunc      func(ctx context.Context, bot, from, to string) (*domain.Statement, error)
	UsageSeriesFunc    func(ctx context.Context, bot, from, to string) ([]domain.UsagePoint, error)
	ClientsSummaryFunc func(ctx context.Context, from, to string) ([]ports.ClientSummary, error)
	GetRatesFunc       func(ctx context.Context, bot string) (*domain.Rates, error)
	SetRatesFunc       func(ctx context.Context, bot string, rates domain.Rates) error
	GetServiceItemFunc func(ctx context.Context, bot string) (*domain.ServiceItem, error)
	SetServiceItemFunc func(ctx context.Context, bot string, item domain.ServiceItem) error
	BotEnabledFunc     func(ctx context.Context, bot string) bool
	SetBotEnabledFunc  func(ctx context.Context, bot string, enabled bool) error

	Tracked []domain.UsageEvent
}

func NewMockBillingService() *MockBillingService {
	return &MockBillingService{}
}

func (m *MockBillingService) Track(ctx context.Context, ev domain.UsageEvent) error {
	if m.TrackFunc != nil {
		return m.TrackFunc(ctx, ev)
	}
	m.Tracked = append(m.Tracked, ev)
	return nil
}

func (m *MockBillingService) Consumption(ctx context.Context, bot, from, to string) (*domain.Statement, error) {
	if m.ConsumptionFunc != nil {
		return m.ConsumptionFunc(ctx, bot, from, to)
	}
	return &domain.Statement{Bot: bot, From: from, To: to}, nil
}

func (m *MockBillingService) Statement(ctx context.Context, bot, from, to string) (*domain.Statement, error) {
	if m.StatementFunc != nil {
		return m.StatementFunc(ctx, bot, from, to)
	}
	return &domain.Statement{Bot: bot, From: from, To: to}, nil
}

func (m *MockBillingService) UsageSeries(ctx context.Context, bot, from, to string) ([]domain.UsagePoint, error) {
	if m.UsageSeriesFunc != nil {
		return m.UsageSeriesFunc(ctx, bot, from, to)
	}
	return nil, nil
}

func (m *MockBillingService) ClientsSummary(ctx context.Context, from, to string) ([]ports.ClientSummary, error) {
	if m.ClientsSummaryFunc != nil {
		return m.ClientsSummaryFunc(ctx, from, to)
	}
	return nil, nil
}

func (m *MockBillingService) GetRates(ctx context.Context, bot string) (*domain.Rates, error) {
	if m.GetRatesFunc != nil {
		return m.GetRatesFunc(ctx, bot)
	}
	return nil, nil
}

func (m *MockBillingService) SetRates(ctx context.Context, bot string, rates domain.Rates) error {
	if m.SetRatesFunc != nil {
		return m.SetRatesFunc(ctx, bot, rates)
	}
	return nil
}

func (m *MockBillingService) GetServiceItem(ctx context.Context, bot string) (*domain.ServiceItem, error) {
	if m.GetServiceItemFunc != nil {
		return m.GetServiceItemFunc(ctx, bot)
	}
	return nil, nil
}

func (m *MockBillingService) SetServiceItem(ctx context.Context, bot string, item domain.ServiceItem) error {
	if m.SetServiceItemFunc != nil {
		return m.SetServiceItemFunc(ctx, bot, item)
	}
	return nil
}

func (m *MockBillingService) BotEnabled(ctx context.Context, bot string) bool {
	if m.BotEnabledFunc != nil {
		return m.BotEnabledFunc(ctx, bot)
	}
	return true
}

func (m *MockBillingService) SetBotEnabled(ctx context.Context, bot string, enabled bool) error {
	if m.SetBotEnabledFunc != nil {
		return m.SetBotEnabledFunc(ctx, bot, enabled)
	}
	return nil
}

// MockPushService is a mock implementation of PushService interface
type MockPushService struct {
	SendToTopicFunc  func(ctx context.Context, topic, title, body string, data map[string]string) error
	SendToTokenFunc  func(ctx context.Context, token, title, body string, data map[string]string) error
	SendToTokensFunc func(ctx context.Context, tokens []string, title, body string, data map[string]string) (int, int, error)
}

func NewMockPushService() *MockPushService {
	return &MockPushService{}
}

func (m *MockPushService) SendToTopic(ctx context.Context, topic, title, body string, data map[string]string) error {
	if m.SendToTopicFunc != nil {
		return m.SendToTopicFunc(ctx, topic, title, body, data)
	}
	return nil
}

func (m *MockPushService) SendToToken(ctx context.Context, token, title, body string, data map[string]string) error {
	if m.SendToTokenFunc != nil {
		return m.SendToTokenFunc(ctx, token, title, body, data)
	}
	return nil
}

func (m *MockPushService) SendToTokens(ctx context.Context, tokens []string, title, body string, data map[string]string) (int, int, error) {
	if m.SendToTokensFunc != nil {
		return m.SendToTokensFunc(ctx, tokens, title, body, data)
	}
	return len(tokens), 0, nil
}

// MockEmailService is a mock implementation of EmailService interface
type MockEmailService struct {
	SendFunc          func(ctx context.Context, to, subject, body string) error
	SendHTMLFunc      func(ctx context.Context, to, subject, htmlBody string) error
	SendStatementFunc func(ctx context.Context, to string, st *domain.Statement) error
}

func NewMockEmailService() *MockEmailService {
	return &MockEmailService{}
}

func (m *MockEmailService) Send(ctx context.Context, to, subject, body string) error {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, to, subject, body)
	}
	return nil
}

func (m *MockEmailService) SendHTML(ctx context.Context, to, subject, htmlBody string) error {
	if m.SendHTMLFunc != nil {
		return m.SendHTMLFunc(ctx, to, subject, htmlBody)
	}
	return nil
}

func (m *MockEmailService) SendStatement(ctx context.Context, to string, st *domain.Statement) error {
	if m.SendStatementFunc != nil {
		return m.SendStatementFunc(ctx, to, st)
	}
	return nil
}
