package conversation

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/sundinlabs/multibot/internal/domain"
	"github.com/sundinlabs/multibot/internal/mocks"
	"github.com/sundinlabs/multibot/internal/ports"
)

func newTestLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

func testBot() *domain.BotCard {
	return &domain.BotCard{
		Slug:          "clinica",
		Name:          "Clínica Sonrisa",
		Number:        "whatsapp:+15550001111",
		SystemPrompt:  "Eres la asistente de una clínica dental.",
		Greeting:      "¡Hola! Soy la asistente de Clínica Sonrisa. ¿En qué puedo ayudarte?",
		IntroKeywords: []string{"hola", "buenas"},
		Agenda: domain.AgendaConfig{
			Keywords: []string{"cita", "agendar"},
		},
		Booking: domain.BookingConfig{
			URL: "https://calendar.example.com/clinica",
		},
		Links: domain.LinksCard{
			AppDownloadURL: "https://apps.example.com/clinica",
		},
		Channels: domain.ChannelsConfig{
			Instagram: domain.InstagramChannel{PageID: "page-1", AccessToken: "tok"},
		},
	}
}

func newTestService(bot *domain.BotCard, leads *mocks.MockLeadRepository, chat *mocks.MockChatClient) (*Service, *mocks.MockBillingService, *mocks.MockInstagramSender) {
	billing := mocks.NewMockBillingService()
	igSender := mocks.NewMockInstagramSender()
	svc := NewService(
		mocks.NewMockBotRegistry(bot),
		leads,
		mocks.NewMockInstagramRepository(),
		chat,
		igSender,
		billing,
		nil,
		nil,
		mocks.NewMockCache(),
		Config{Model: "gpt-4o-mini", ResendCooldown: 10 * time.Minute},
		newTestLogger(),
	)
	return svc, billing, igSender
}

func TestHandleWhatsApp_GreetingOnFirstContact(t *testing.T) {
	// Arrange
	ctx := context.Background()
	bot := testBot()
	leads := mocks.NewMockLeadRepository()
	svc, _, _ := newTestService(bot, leads, mocks.NewMockChatClient())

	// Act
	reply, err := svc.HandleWhatsApp(ctx, "whatsapp:+15559998888", "whatsapp:+15550001111", "hola")

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != bot.Greeting {
		t.Errorf("expected greeting, got %q", reply)
	}
	if len(leads.Appended) != 2 {
		t.Fatalf("expected user + bot turns persisted, got %d", len(leads.Appended))
	}
	if leads.Appended[0].Tipo != "usuario" || leads.Appended[1].Tipo != "bot" {
		t.Errorf("unexpected turn kinds: %s, %s", leads.Appended[0].Tipo, leads.Appended[1].Tipo)
	}
}

func TestHandleWhatsApp_NoGreetingWhenHistoryExists(t *testing.T) {
	ctx := context.Background()
	bot := testBot()
	leads := mocks.NewMockLeadRepository()
	leads.FindFunc = func(ctx context.Context, b, n string) (*domain.Lead, error) {
		return &domain.Lead{
			Historial: []domain.HistoryEntry{
				{Tipo: "usuario", Texto: "hola", Hora: "2026-08-01 10:00:00"},
				{Tipo: "bot", Texto: "¡Hola!", Hora: "2026-08-01 10:00:05"},
			},
		}, nil
	}
	chat := mocks.NewMockChatClient()
	chat.CompleteFunc = func(ctx context.Context, model string, temp float64, msgs []domain.ChatMessage) (string, *ports.TokenUsage, error) {
		return "Claro, dime más.", &ports.TokenUsage{Model: model, InputTokens: 12, OutputTokens: 6}, nil
	}
	svc, _, _ := newTestService(bot, leads, chat)

	reply, err := svc.HandleWhatsApp(ctx, "whatsapp:+15559998888", "whatsapp:+15550001111", "hola de nuevo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply == bot.Greeting {
		t.Error("should not greet a returning contact")
	}
	if len(chat.Calls) != 1 {
		t.Fatalf("expected one model call, got %d", len(chat.Calls))
	}
	// hydrated history travels into the model context after the system prompt
	msgs := chat.Calls[0]
	if msgs[0].Role != domain.ChatRoleSystem {
		t.Errorf("expected system message first, got %s", msgs[0].Role)
	}
	if len(msgs) < 4 {
		t.Errorf("expected hydrated history in context, got %d messages", len(msgs))
	}
}

func TestHandleWhatsApp_AgendaFlow(t *testing.T) {
	ctx := context.Background()
	bot := testBot()
	leads := mocks.NewMockLeadRepository()
	svc, _, _ := newTestService(bot, leads, mocks.NewMockChatClient())

	// keyword triggers the confirm question
	reply, err := svc.HandleWhatsApp(ctx, "whatsapp:+15559998888", "whatsapp:+15550001111", "quiero una cita")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != defaultConfirmQuestion {
		t.Errorf("expected confirm question, got %q", reply)
	}

	// affirmative answer gets the link
	reply, err = svc.HandleWhatsApp(ctx, "whatsapp:+15559998888", "whatsapp:+15550001111", "si")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(reply, bot.Booking.URL) {
		t.Errorf("expected booking link in reply, got %q", reply)
	}

	// cooldown: asking again right away must not resend the link
	reply, _ = svc.HandleWhatsApp(ctx, "whatsapp:+15559998888", "whatsapp:+15550001111", "agendar")
	if strings.Contains(reply, bot.Booking.URL) {
		t.Errorf("link resent within cooldown: %q", reply)
	}
}

func TestHandleWhatsApp_NegativeDeclines(t *testing.T) {
	ctx := context.Background()
	bot := testBot()
	leads := mocks.NewMockLeadRepository()
	svc, _, _ := newTestService(bot, leads, mocks.NewMockChatClient())

	if _, err := svc.HandleWhatsApp(ctx, "whatsapp:+15559998888", "whatsapp:+15550001111", "quiero agendar"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	reply, err := svc.HandleWhatsApp(ctx, "whatsapp:+15559998888", "whatsapp:+15550001111", "no")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != defaultDeclineMessage {
		t.Errorf("expected decline message, got %q", reply)
	}
}

func TestHandleWhatsApp_NegativeOutsideConfirmKeepsLinkOnTheTable(t *testing.T) {
	ctx := context.Background()
	bot := testBot()
	leads := mocks.NewMockLeadRepository()
	svc, _, _ := newTestService(bot, leads, mocks.NewMockChatClient())

	// no pending confirm question, just a refusal
	reply, err := svc.HandleWhatsApp(ctx, "whatsapp:+15559998888", "whatsapp:+15550001111", "no gracias")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(reply, defaultNegativeAck) {
		t.Errorf("expected acknowledgement, got %q", reply)
	}
	if !strings.Contains(reply, bot.Booking.URL) {
		t.Errorf("expected booking link reference, got %q", reply)
	}
}

func TestHandleWhatsApp_ConfirmQuestionRepeatsUntilAnswered(t *testing.T) {
	ctx := context.Background()
	bot := testBot()
	leads := mocks.NewMockLeadRepository()
	chat := mocks.NewMockChatClient()
	svc, _, _ := newTestService(bot, leads, chat)

	if _, err := svc.HandleWhatsApp(ctx, "whatsapp:+15559998888", "whatsapp:+15550001111", "quiero una cita"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// an off-topic answer re-asks instead of dropping the question
	reply, err := svc.HandleWhatsApp(ctx, "whatsapp:+15559998888", "whatsapp:+15550001111", "cuánto cuesta")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != defaultConfirmQuestion {
		t.Errorf("expected confirm question again, got %q", reply)
	}
	if len(chat.Calls) != 0 {
		t.Error("model must not be called while a confirm question is pending")
	}

	// the pending question still accepts a yes
	reply, err = svc.HandleWhatsApp(ctx, "whatsapp:+15559998888", "whatsapp:+15550001111", "si")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(reply, bot.Booking.URL) {
		t.Errorf("expected booking link, got %q", reply)
	}
}

func TestHandleWhatsApp_LinkCooldownHoldsAfterModelOffer(t *testing.T) {
	ctx := context.Background()
	bot := testBot()
	leads := mocks.NewMockLeadRepository()
	chat := mocks.NewMockChatClient()
	chat.CompleteFunc = func(ctx context.Context, model string, temp float64, msgs []domain.ChatMessage) (string, *ports.TokenUsage, error) {
		return "¿Te envío el enlace para agendar tu cita?", nil, nil
	}
	svc, _, _ := newTestService(bot, leads, chat)

	// confirm flow sends the link once
	if _, err := svc.HandleWhatsApp(ctx, "whatsapp:+15559998888", "whatsapp:+15550001111", "quiero una cita"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	reply, err := svc.HandleWhatsApp(ctx, "whatsapp:+15559998888", "whatsapp:+15550001111", "si")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(reply, bot.Booking.URL) {
		t.Fatalf("expected booking link, got %q", reply)
	}

	// the model re-offers the link, which arms the confirm state again
	if _, err := svc.HandleWhatsApp(ctx, "whatsapp:+15559998888", "whatsapp:+15550001111", "mmm y qué horarios tienen"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// a second yes inside the cooldown must not resend the link
	reply, err = svc.HandleWhatsApp(ctx, "whatsapp:+15559998888", "whatsapp:+15550001111", "si")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(reply, bot.Booking.URL) {
		t.Errorf("link resent within cooldown: %q", reply)
	}
	if reply != defaultCooldownMessage {
		t.Errorf("expected cooldown notice, got %q", reply)
	}
}

func TestHandleWhatsApp_NoGreetingWithoutIntroKeyword(t *testing.T) {
	ctx := context.Background()
	bot := testBot()
	leads := mocks.NewMockLeadRepository()
	chat := mocks.NewMockChatClient()
	svc, _, _ := newTestService(bot, leads, chat)

	reply, err := svc.HandleWhatsApp(ctx, "whatsapp:+15559998888", "whatsapp:+15550001111", "necesito información de precios")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply == bot.Greeting {
		t.Errorf("greeting must only fire on an intro keyword, got %q", reply)
	}
	if len(chat.Calls) != 1 {
		t.Fatalf("expected the model to answer instead, got %d calls", len(chat.Calls))
	}
}

func TestHandleWhatsApp_AppDownloadShortcut(t *testing.T) {
	ctx := context.Background()
	bot := testBot()
	leads := mocks.NewMockLeadRepository()
	svc, _, _ := newTestService(bot, leads, mocks.NewMockChatClient())

	reply, err := svc.HandleWhatsApp(ctx, "whatsapp:+15559998888", "whatsapp:+15550001111", "quiero descargar la app")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(reply, bot.Links.AppDownloadURL) {
		t.Errorf("expected app link in reply, got %q", reply)
	}
}

func TestHandleWhatsApp_DisabledBotStaysSilent(t *testing.T) {
	ctx := context.Background()
	bot := testBot()
	leads := mocks.NewMockLeadRepository()
	chat := mocks.NewMockChatClient()
	svc, billing, _ := newTestService(bot, leads, chat)
	billing.BotEnabledFunc = func(ctx context.Context, b string) bool { return false }

	reply, err := svc.HandleWhatsApp(ctx, "whatsapp:+15559998888", "whatsapp:+15550001111", "hola")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "" {
		t.Errorf("expected silence, got %q", reply)
	}
	// the user turn is still stored
	if len(leads.Appended) != 1 {
		t.Errorf("expected just the user turn persisted, got %d", len(leads.Appended))
	}
	if len(chat.Calls) != 0 {
		t.Error("model must not be called for a disabled bot")
	}
}

func TestHandleWhatsApp_ConversationToggleStaysSilent(t *testing.T) {
	ctx := context.Background()
	bot := testBot()
	off := false
	leads := mocks.NewMockLeadRepository()
	leads.FindFunc = func(ctx context.Context, b, n string) (*domain.Lead, error) {
		return &domain.Lead{BotEnabled: &off}, nil
	}
	svc, _, _ := newTestService(bot, leads, mocks.NewMockChatClient())

	reply, err := svc.HandleWhatsApp(ctx, "whatsapp:+15559998888", "whatsapp:+15550001111", "hola")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "" {
		t.Errorf("expected silence for muted conversation, got %q", reply)
	}
}

func TestHandleWhatsApp_TracksUsage(t *testing.T) {
	ctx := context.Background()
	bot := testBot()
	bot.Greeting = "" // force the model path
	leads := mocks.NewMockLeadRepository()
	chat := mocks.NewMockChatClient()
	chat.CompleteFunc = func(ctx context.Context, model string, temp float64, msgs []domain.ChatMessage) (string, *ports.TokenUsage, error) {
		return "Con gusto te ayudo.", &ports.TokenUsage{Model: "gpt-4o-mini", InputTokens: 30, OutputTokens: 12}, nil
	}
	svc, billing, _ := newTestService(bot, leads, chat)

	if _, err := svc.HandleWhatsApp(ctx, "whatsapp:+15559998888", "whatsapp:+15550001111", "cuánto cuesta una limpieza"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(billing.Tracked) != 1 {
		t.Fatalf("expected one usage event, got %d", len(billing.Tracked))
	}
	if billing.Tracked[0].Bot != "clinica" || billing.Tracked[0].InputTokens != 30 {
		t.Errorf("unexpected usage event: %+v", billing.Tracked[0])
	}
}

func TestHandleInstagram_RepliesAndDedups(t *testing.T) {
	ctx := context.Background()
	bot := testBot()
	leads := mocks.NewMockLeadRepository()
	chat := mocks.NewMockChatClient()
	svc, _, igSender := newTestService(bot, leads, chat)

	msg := &domain.InstagramMessage{
		MID:      "mid-1",
		SenderID: "777",
		PageID:   "page-1",
		Text:     "hola",
	}

	if err := svc.HandleInstagram(ctx, msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(igSender.Sent) != 1 {
		t.Fatalf("expected one DM sent, got %d", len(igSender.Sent))
	}

	// duplicate mid is dropped
	if err := svc.HandleInstagram(ctx, msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(igSender.Sent) != 1 {
		t.Errorf("duplicate mid must not send again, got %d", len(igSender.Sent))
	}
}

func TestHandleInstagram_SkipsEcho(t *testing.T) {
	ctx := context.Background()
	svc, _, igSender := newTestService(testBot(), mocks.NewMockLeadRepository(), mocks.NewMockChatClient())

	err := svc.HandleInstagram(ctx, &domain.InstagramMessage{MID: "m", SenderID: "1", PageID: "page-1", IsEcho: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(igSender.Sent) != 0 {
		t.Error("echo must not trigger a reply")
	}
}
