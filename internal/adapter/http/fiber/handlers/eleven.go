package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/sundinlabs/multibot/internal/adapter/ai/elevenlabs"
	"github.com/sundinlabs/multibot/internal/ports"
)

// scheduleTriggers are the caller phrases that fire the booking-link
// action after an ElevenLabs call ends.
var scheduleTriggers = []string{"agendar", "agenda", "cita", "turno", "reservar", "appointment", "schedule"}

// ElevenHandler gates browser access to the ConvAI WebRTC endpoint and
// processes post-call webhooks.
type ElevenHandler struct {
	client        *elevenlabs.Client
	tokens        *elevenlabs.TokenStore
	registry      ports.BotRegistry
	links         ports.LinkSender
	webhookSecret string
	log           *zap.Logger
}

func NewElevenHandler(client *elevenlabs.Client, tokens *elevenlabs.TokenStore, registry ports.BotRegistry, links ports.LinkSender, webhookSecret string, log *zap.Logger) *ElevenHandler {
	return &ElevenHandler{
		client:        client,
		tokens:        tokens,
		registry:      registry,
		links:         links,
		webhookSecret: webhookSecret,
		log:           log,
	}
}

type elevenSessionRequest struct {
	Bot     string `json:"bot"`
	AgentID string `json:"agent_id"`
}

// CreateSession issues a single-use token bound to the bot's agent and
// returns the local proxy URL the browser should post its offer to.
func (h *ElevenHandler) CreateSession(c *fiber.Ctx) error {
	var req elevenSessionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
		}
	}

	agentID := req.AgentID
	if agentID == "" && req.Bot != "" {
		bot, err := h.registry.Get(req.Bot)
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Bot not found"})
		}
		agentID = bot.Eleven.AgentID
	}

	token, expires := h.tokens.Issue(agentID)
	return c.JSON(fiber.Map{
		"token":      token,
		"expires_at": expires,
		"webrtc_url": "/api/v1/eleven/webrtc?token=" + token,
	})
}

// ForwardSDP validates the token and proxies the SDP offer to the
// ConvAI endpoint, returning the answer verbatim.
func (h *ElevenHandler) ForwardSDP(c *fiber.Ctx) error {
	token := c.Query("token")
	agentID, ok := h.tokens.Redeem(token)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token"})
	}

	offer := string(c.Body())
	if offer == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing SDP offer"})
	}

	answer, err := h.client.ForwardSDP(c.Context(), agentID, offer)
	if err != nil {
		h.log.Error("sdp exchange failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}

	c.Set(fiber.HeaderContentType, "application/sdp")
	return c.SendString(answer)
}

// PostCallWebhook digests the transcript. When the caller asked to
// schedule, the booking link goes out over WhatsApp.
func (h *ElevenHandler) PostCallWebhook(c *fiber.Ctx) error {
	if h.webhookSecret != "" {
		sig := c.Get("ElevenLabs-Signature")
		if !elevenlabs.VerifySignature(c.Body(), sig, h.webhookSecret, time.Now()) {
			h.log.Warn("rejected post-call webhook with bad signature")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid signature"})
		}
	}

	call, err := elevenlabs.ParsePostCall(c.Body())
	if err != nil {
		h.log.Warn("undecodable post-call webhook", zap.Error(err))
		return c.SendStatus(fiber.StatusOK)
	}

	h.log.Info("post-call transcript received",
		zap.String("agent_id", call.AgentID),
		zap.String("caller", call.CallerID),
		zap.Int("turns", len(call.Turns)))

	if call.CallerID == "" || !call.UserSaid(scheduleTriggers) {
		return c.SendStatus(fiber.StatusOK)
	}

	bot, err := h.registry.FindByNumber(call.CalledNumber)
	if err != nil {
		h.log.Warn("post-call for unknown number", zap.String("called", call.CalledNumber))
		return c.SendStatus(fiber.StatusOK)
	}

	if _, err := h.links.SendLink(c.Context(), &ports.SendLinkRequest{
		Bot:     bot.Slug,
		Phone:   call.CallerID,
		Source:  "voz",
		Channel: "whatsapp",
	}); err != nil {
		h.log.Error("post-call link send failed", zap.Error(err), zap.String("bot", bot.Slug))
	}
	return c.SendStatus(fiber.StatusOK)
}
