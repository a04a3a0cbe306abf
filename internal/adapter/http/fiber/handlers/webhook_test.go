package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/sundinlabs/multibot/internal/mocks"
	"github.com/sundinlabs/multibot/internal/service/conversation"
)

func newTestLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

func postWebhook(t *testing.T, app *fiber.App, form url.Values) (int, string) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, "/webhook", strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestWebhookHandler_Receive_RepliesWithTwiML(t *testing.T) {
	// Arrange
	conversations := mocks.NewMockConversationService()
	conversations.HandleWhatsAppFunc = func(ctx context.Context, from, to, body string) (string, error) {
		return "¡Hola! ¿En qué puedo ayudarte?", nil
	}
	handler := NewWebhookHandler(conversations, "verify-token", newTestLogger())
	app := fiber.New()
	app.Post("/webhook", handler.Receive)

	// Act
	status, body := postWebhook(t, app, url.Values{
		"From": {"whatsapp:+15559998888"},
		"To":   {"whatsapp:+15550001111"},
		"Body": {"hola"},
	})

	// Assert
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if !strings.Contains(body, "<Message>¡Hola! ¿En qué puedo ayudarte?</Message>") {
		t.Errorf("expected reply in TwiML, got %s", body)
	}
}

func TestWebhookHandler_Receive_UnassignedNumber(t *testing.T) {
	// Arrange
	conversations := mocks.NewMockConversationService()
	conversations.HandleWhatsAppFunc = func(ctx context.Context, from, to, body string) (string, error) {
		return "", fmt.Errorf("%w: %s", conversation.ErrNoBotForNumber, to)
	}
	handler := NewWebhookHandler(conversations, "verify-token", newTestLogger())
	app := fiber.New()
	app.Post("/webhook", handler.Receive)

	// Act
	status, body := postWebhook(t, app, url.Values{
		"From": {"whatsapp:+15559998888"},
		"To":   {"whatsapp:+15557770000"},
		"Body": {"hola"},
	})

	// Assert
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if !strings.Contains(body, unassignedNumberMessage) {
		t.Errorf("expected unassigned-number notice, got %s", body)
	}
}

func TestWebhookHandler_Receive_PipelineErrorStaysSilent(t *testing.T) {
	// Arrange
	conversations := mocks.NewMockConversationService()
	conversations.HandleWhatsAppFunc = func(ctx context.Context, from, to, body string) (string, error) {
		return "", fmt.Errorf("model call failed")
	}
	handler := NewWebhookHandler(conversations, "verify-token", newTestLogger())
	app := fiber.New()
	app.Post("/webhook", handler.Receive)

	// Act
	status, body := postWebhook(t, app, url.Values{
		"From": {"whatsapp:+15559998888"},
		"To":   {"whatsapp:+15550001111"},
		"Body": {"hola"},
	})

	// Assert
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if strings.Contains(body, "<Message>") {
		t.Errorf("expected empty TwiML, got %s", body)
	}
}

func TestWebhookHandler_Receive_MissingFrom(t *testing.T) {
	handler := NewWebhookHandler(mocks.NewMockConversationService(), "verify-token", newTestLogger())
	app := fiber.New()
	app.Post("/webhook", handler.Receive)

	status, _ := postWebhook(t, app, url.Values{"Body": {"hola"}})
	if status != fiber.StatusBadRequest {
		t.Errorf("expected 400, got %d", status)
	}
}
