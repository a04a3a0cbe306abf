package actions

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/sundinlabs/multibot/internal/domain"
	"github.com/sundinlabs/multibot/internal/mocks"
	"github.com/sundinlabs/multibot/internal/ports"
	"github.com/sundinlabs/multibot/pkg/config"
)

func newTestLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "bare ten digits", in: "4155550123", want: "+14155550123"},
		{name: "formatted", in: "(415) 555-0123", want: "+14155550123"},
		{name: "with country code", in: "1-415-555-0123", want: "+14155550123"},
		{name: "too short", in: "555-0123", wantErr: true},
		{name: "garbage", in: "call me", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePhone(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestBuildLinkAddsTrackingParams(t *testing.T) {
	// Act
	link, err := BuildLink("https://book.example.com/slots", "Ana", "+14155550123", "panel")

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(link, "name=Ana") || !strings.Contains(link, "source=panel") {
		t.Errorf("missing tracking params: %q", link)
	}
	if !strings.Contains(link, "phone=%2B14155550123") {
		t.Errorf("phone not encoded: %q", link)
	}
}

func TestService_SendLinkOverSMS(t *testing.T) {
	// Arrange
	sender := mocks.NewMockWhatsAppSender()
	registry := mocks.NewMockBotRegistry(&domain.BotCard{
		Slug:    "clinica",
		Booking: domain.BookingConfig{URL: "https://book.example.com/clinica"},
	})
	svc := NewService(registry, sender, config.LinksConfig{}, newTestLogger())

	// Act
	link, err := svc.SendLink(context.Background(), &ports.SendLinkRequest{
		Bot:    "clinica",
		Phone:  "415-555-0123",
		Name:   "Ana",
		Source: "voz",
	})

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.HasPrefix(link, "https://book.example.com/clinica?") {
		t.Errorf("unexpected link: %q", link)
	}
	if len(sender.SMSSent) != 1 {
		t.Fatalf("expected 1 sms, got %d", len(sender.SMSSent))
	}
	if !strings.Contains(sender.SMSSent[0], link) {
		t.Errorf("sms body missing link: %q", sender.SMSSent[0])
	}
	if len(sender.WhatsAppSent) != 0 {
		t.Errorf("expected no whatsapp sends, got %v", sender.WhatsAppSent)
	}
}

func TestService_SendLinkOverWhatsApp(t *testing.T) {
	// Arrange
	sender := mocks.NewMockWhatsAppSender()
	registry := mocks.NewMockBotRegistry(&domain.BotCard{Slug: "clinica"})
	svc := NewService(registry, sender, config.LinksConfig{BookingURL: "https://book.example.com"}, newTestLogger())

	// Act
	_, err := svc.SendLink(context.Background(), &ports.SendLinkRequest{
		Bot:     "clinica",
		Phone:   "4155550123",
		Channel: "whatsapp",
		Text:    "Le comparto el enlace:",
	})

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(sender.WhatsAppSent) != 1 {
		t.Fatalf("expected 1 whatsapp message, got %d", len(sender.WhatsAppSent))
	}
	if !strings.HasPrefix(sender.WhatsAppSent[0], "Le comparto el enlace: https://") {
		t.Errorf("custom text not kept: %q", sender.WhatsAppSent[0])
	}
}

func TestService_SendLinkNoBookingURL(t *testing.T) {
	// Arrange
	registry := mocks.NewMockBotRegistry(&domain.BotCard{Slug: "clinica"})
	svc := NewService(registry, mocks.NewMockWhatsAppSender(), config.LinksConfig{}, newTestLogger())

	// Act
	_, err := svc.SendLink(context.Background(), &ports.SendLinkRequest{Bot: "clinica", Phone: "4155550123"})

	// Assert
	if err == nil {
		t.Fatal("expected error when no booking link is configured")
	}
}

func TestService_SendLinkBadPhone(t *testing.T) {
	// Arrange
	svc := NewService(mocks.NewMockBotRegistry(), mocks.NewMockWhatsAppSender(), config.LinksConfig{}, newTestLogger())

	// Act
	_, err := svc.SendLink(context.Background(), &ports.SendLinkRequest{Bot: "clinica", Phone: "12"})

	// Assert
	if err == nil {
		t.Fatal("expected error for malformed phone")
	}
}
