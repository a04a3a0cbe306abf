package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/sundinlabs/multibot/internal/adapter/messaging/meta"
	"github.com/sundinlabs/multibot/internal/domain"
	"github.com/sundinlabs/multibot/internal/ports"
)

// OAuthExchanger swaps an Instagram login code for a long-lived token.
type OAuthExchanger interface {
	ExchangeCode(ctx context.Context, code string) (*meta.OAuthResult, error)
}

// InstagramHandler covers the Meta webhook, the OAuth callback and the
// per-account toggle endpoints.
type InstagramHandler struct {
	conversations ports.ConversationService
	users         ports.InstagramRepository
	oauth         OAuthExchanger
	verifyToken   string
	log           *zap.Logger
}

func NewInstagramHandler(conversations ports.ConversationService, users ports.InstagramRepository, oauth OAuthExchanger, verifyToken string, log *zap.Logger) *InstagramHandler {
	return &InstagramHandler{
		conversations: conversations,
		users:         users,
		oauth:         oauth,
		verifyToken:   verifyToken,
		log:           log,
	}
}

// Verify handles the webhook subscription handshake.
func (h *InstagramHandler) Verify(c *fiber.Ctx) error {
	if c.Query("hub.mode") == "subscribe" && c.Query("hub.verify_token") == h.verifyToken {
		return c.SendString(c.Query("hub.challenge"))
	}
	return c.SendStatus(fiber.StatusForbidden)
}

// webhookPayload accepts both layouts Meta delivers: entry[].messaging[]
// for direct messages and entry[].changes[].value for field updates.
type webhookPayload struct {
	Object string `json:"object"`
	Entry  []struct {
		ID        string           `json:"id"`
		Messaging []webhookMessage `json:"messaging"`
		Changes   []struct {
			Field string         `json:"field"`
			Value webhookMessage `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

type webhookMessage struct {
	Sender struct {
		ID string `json:"id"`
	} `json:"sender"`
	Recipient struct {
		ID string `json:"id"`
	} `json:"recipient"`
	Timestamp int64 `json:"timestamp"`
	Message   *struct {
		MID    string `json:"mid"`
		Text   string `json:"text"`
		IsEcho bool   `json:"is_echo"`
	} `json:"message"`
}

// Receive ingests webhook deliveries. Always answers 200 so Meta does
// not disable the subscription over transient failures.
func (h *InstagramHandler) Receive(c *fiber.Ctx) error {
	var payload webhookPayload
	if err := c.BodyParser(&payload); err != nil {
		h.log.Warn("undecodable instagram webhook", zap.Error(err))
		return c.SendString("EVENT_RECEIVED")
	}

	for _, entry := range payload.Entry {
		msgs := entry.Messaging
		for _, ch := range entry.Changes {
			if ch.Field == "messages" {
				msgs = append(msgs, ch.Value)
			}
		}
		for _, m := range msgs {
			if m.Message == nil || m.Message.Text == "" {
				continue
			}
			dm := &domain.InstagramMessage{
				MID:       m.Message.MID,
				SenderID:  m.Sender.ID,
				PageID:    m.Recipient.ID,
				Text:      m.Message.Text,
				IsEcho:    m.Message.IsEcho,
				Timestamp: m.Timestamp,
			}
			if err := h.conversations.HandleInstagram(c.Context(), dm); err != nil {
				h.log.Error("instagram turn failed",
					zap.Error(err),
					zap.String("sender", dm.SenderID),
					zap.String("page", dm.PageID))
			}
		}
	}
	return c.SendString("EVENT_RECEIVED")
}

// OAuthCallback finishes the Instagram login flow and stores the
// connected account.
func (h *InstagramHandler) OAuthCallback(c *fiber.Ctx) error {
	code := c.Query("code")
	if code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing code"})
	}

	result, err := h.oauth.ExchangeCode(c.Context(), code)
	if err != nil {
		h.log.Error("instagram oauth exchange failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}

	user := &domain.InstagramUser{
		UserID:      result.UserID,
		PageID:      result.UserID,
		Username:    result.Username,
		AccessToken: result.AccessToken,
		ConnectedAt: time.Now(),
	}
	if err := h.users.Save(c.Context(), user); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	h.log.Info("instagram account connected",
		zap.String("user_id", result.UserID),
		zap.String("username", result.Username))
	return c.JSON(fiber.Map{"connected": true, "username": result.Username})
}

// Status reports the per-account bot switch.
func (h *InstagramHandler) Status(c *fiber.Ctx) error {
	userID := c.Params("id")
	user, err := h.users.Find(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if user == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Account not found"})
	}
	return c.JSON(fiber.Map{"user_id": user.UserID, "username": user.Username, "enabled": user.BotEnabled()})
}

type toggleRequest struct {
	Enabled bool `json:"enabled"`
}

// Toggle flips the per-account bot switch.
func (h *InstagramHandler) Toggle(c *fiber.Ctx) error {
	userID := c.Params("id")
	var req toggleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	if err := h.users.SetEnabled(c.Context(), userID, req.Enabled); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"user_id": userID, "enabled": req.Enabled})
}
