package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/sundinlabs/multibot/internal/domain"
	"github.com/sundinlabs/multibot/internal/ports"
)

// BotHandler exposes tarjeta CRUD to the panel.
type BotHandler struct {
	registry ports.BotRegistry
	log      *zap.Logger
}

func NewBotHandler(registry ports.BotRegistry, log *zap.Logger) *BotHandler {
	return &BotHandler{registry: registry, log: log}
}

// botSummary is the listing row: no prompts, no credentials.
type botSummary struct {
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	Number    string `json:"number,omitempty"`
	PageID    string `json:"page_id,omitempty"`
	Agenda    bool   `json:"agenda"`
	HasVoice  bool   `json:"has_voice"`
	HasEleven bool   `json:"has_eleven"`
}

func (h *BotHandler) List(c *fiber.Ctx) error {
	cards := h.registry.All()
	out := make([]botSummary, 0, len(cards))
	for _, card := range cards {
		out = append(out, botSummary{
			Slug:      card.Slug,
			Name:      card.Name,
			Number:    card.Number,
			PageID:    card.Channels.Instagram.PageID,
			Agenda:    card.AgendaEnabled(),
			HasVoice:  card.Channels.Voice.Number != "" || card.Realtime.Model != "",
			HasEleven: card.Eleven.AgentID != "",
		})
	}
	return c.JSON(out)
}

func (h *BotHandler) Get(c *fiber.Ctx) error {
	card, err := h.registry.Get(c.Params("slug"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Bot not found"})
	}
	return c.JSON(card)
}

func (h *BotHandler) Save(c *fiber.Ctx) error {
	var card domain.BotCard
	if err := c.BodyParser(&card); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	if slug := c.Params("slug"); slug != "" {
		card.Slug = slug
	}
	if card.Name == "" && card.Slug == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Name or slug is required"})
	}

	if err := h.registry.Save(&card); err != nil {
		h.log.Error("failed to save bot card", zap.Error(err), zap.String("slug", card.Slug))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(card)
}

func (h *BotHandler) Delete(c *fiber.Ctx) error {
	slug := c.Params("slug")
	if err := h.registry.Delete(slug); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"deleted": slug})
}

func (h *BotHandler) Reload(c *fiber.Ctx) error {
	if err := h.registry.Reload(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"bots": len(h.registry.All())})
}
