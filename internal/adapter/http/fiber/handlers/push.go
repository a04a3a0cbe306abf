package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/sundinlabs/multibot/internal/adapter/external/notification"
	"github.com/sundinlabs/multibot/internal/ports"
)

// PushHandler fans out FCM notifications for the panel and for
// out-of-process callers.
type PushHandler struct {
	service ports.PushService
	log     *zap.Logger
}

func NewPushHandler(service ports.PushService, log *zap.Logger) *PushHandler {
	return &PushHandler{service: service, log: log}
}

type pushRequest struct {
	Topic  string                 `json:"topic"`
	Token  string                 `json:"token"`
	Tokens []string               `json:"tokens"`
	Title  string                 `json:"title"`
	Body   string                 `json:"body"`
	Data   map[string]interface{} `json:"data"`
}

func (h *PushHandler) SendToTopic(c *fiber.Ctx) error {
	var req pushRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	if req.Topic == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Topic is required"})
	}

	if err := h.service.SendToTopic(c.Context(), req.Topic, req.Title, req.Body, notification.SanitizeData(req.Data)); err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"sent": true, "topic": req.Topic})
}

func (h *PushHandler) SendToToken(c *fiber.Ctx) error {
	var req pushRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	if req.Token == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Token is required"})
	}

	if err := h.service.SendToToken(c.Context(), req.Token, req.Title, req.Body, notification.SanitizeData(req.Data)); err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"sent": true})
}

func (h *PushHandler) SendToTokens(c *fiber.Ctx) error {
	var req pushRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	if len(req.Tokens) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Tokens are required"})
	}

	success, failure, err := h.service.SendToTokens(c.Context(), req.Tokens, req.Title, req.Body, notification.SanitizeData(req.Data))
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"success": success, "failure": failure})
}

// SendUniversal routes on whatever target the payload carries: tokens,
// a single token, or a topic, in that order.
func (h *PushHandler) SendUniversal(c *fiber.Ctx) error {
	var req pushRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}

	data := notification.SanitizeData(req.Data)
	switch {
	case len(req.Tokens) > 0:
		success, failure, err := h.service.SendToTokens(c.Context(), req.Tokens, req.Title, req.Body, data)
		if err != nil {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"success": success, "failure": failure})
	case req.Token != "":
		if err := h.service.SendToToken(c.Context(), req.Token, req.Title, req.Body, data); err != nil {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"sent": true})
	case req.Topic != "":
		if err := h.service.SendToTopic(c.Context(), req.Topic, req.Title, req.Body, data); err != nil {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"sent": true, "topic": req.Topic})
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Topic, token or tokens required"})
	}
}

func (h *PushHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
