package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/sundinlabs/multibot/internal/ports"
)

// ActionHandler covers operator-triggered one-shot actions.
type ActionHandler struct {
	links ports.LinkSender
	log   *zap.Logger
}

func NewActionHandler(links ports.LinkSender, log *zap.Logger) *ActionHandler {
	return &ActionHandler{links: links, log: log}
}

func (h *ActionHandler) SendLink(c *fiber.Ctx) error {
	var req ports.SendLinkRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	if req.Bot == "" || req.Phone == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Bot and phone are required"})
	}

	link, err := h.links.SendLink(c.Context(), &req)
	if err != nil {
		h.log.Warn("send-link failed", zap.Error(err), zap.String("bot", req.Bot))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"sent": true, "link": link})
}
