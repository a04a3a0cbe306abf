package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/sundinlabs/multibot/internal/adapter/messaging/twilio"
	"github.com/sundinlabs/multibot/internal/ports"
	"github.com/sundinlabs/multibot/internal/service/conversation"
)

const unassignedNumberMessage = "Este número no está asignado a ningún bot."

// WebhookHandler answers the Twilio WhatsApp webhook with inline TwiML.
type WebhookHandler struct {
	conversations ports.ConversationService
	verifyToken   string
	log           *zap.Logger
}

func NewWebhookHandler(conversations ports.ConversationService, verifyToken string, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		conversations: conversations,
		verifyToken:   verifyToken,
		log:           log,
	}
}

// Verify handles the GET subscription handshake (hub.challenge echo).
func (h *WebhookHandler) Verify(c *fiber.Ctx) error {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && token == h.verifyToken {
		return c.SendString(challenge)
	}
	return c.SendStatus(fiber.StatusForbidden)
}

// Receive handles the inbound message POST. Twilio sends a form body
// and expects a TwiML document back.
func (h *WebhookHandler) Receive(c *fiber.Ctx) error {
	from := c.FormValue("From")
	to := c.FormValue("To")
	body := c.FormValue("Body")

	if from == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing From"})
	}

	reply, err := h.conversations.HandleWhatsApp(c.Context(), from, to, body)
	if err != nil {
		h.log.Error("whatsapp turn failed",
			zap.Error(err),
			zap.String("from", from),
			zap.String("to", to))
		if errors.Is(err, conversation.ErrNoBotForNumber) {
			reply = unassignedNumberMessage
		} else {
			// an empty TwiML response keeps Twilio from retrying
			reply = ""
		}
	}

	twiml, err := twilio.MessageReply(reply)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	c.Set(fiber.HeaderContentType, "application/xml")
	return c.Send(twiml)
}
