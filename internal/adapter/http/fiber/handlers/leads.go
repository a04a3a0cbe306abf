package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/sundinlabs/multibot/internal/domain"
	"github.com/sundinlabs/multibot/internal/ports"
)

// LeadHandler is the panel's view over the lead store.
type LeadHandler struct {
	service ports.LeadService
	log     *zap.Logger
}

func NewLeadHandler(service ports.LeadService, log *zap.Logger) *LeadHandler {
	return &LeadHandler{service: service, log: log}
}

func (h *LeadHandler) List(c *fiber.Ctx) error {
	bot := c.Query("bot")
	caller, _ := c.Locals("user").(*domain.User)
	if bot != "" && caller != nil && !caller.CanManage(bot) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Bot not in your scope"})
	}

	leads, err := h.service.List(c.Context(), bot)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if caller != nil {
		scoped := make([]domain.Lead, 0, len(leads))
		for _, l := range leads {
			if caller.CanManage(l.Bot) {
				scoped = append(scoped, l)
			}
		}
		leads = scoped
	}
	return c.JSON(leads)
}

func (h *LeadHandler) Get(c *fiber.Ctx) error {
	lead, err := h.service.Get(c.Context(), c.Params("bot"), c.Params("number"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if lead == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Lead not found"})
	}
	return c.JSON(lead)
}

// Chat returns history entries newer than since_ms, for panel polling.
func (h *LeadHandler) Chat(c *fiber.Ctx) error {
	sinceMs, _ := strconv.ParseInt(c.Query("since_ms", "0"), 10, 64)
	entries, err := h.service.ChatSince(c.Context(), c.Params("bot"), c.Params("number"), sinceMs)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}
	return c.JSON(entries)
}

type statusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

func (h *LeadHandler) SaveStatus(c *fiber.Ctx) error {
	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	if err := h.service.SaveStatus(c.Context(), c.Params("bot"), c.Params("number"), req.Status, req.Notes); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"saved": true})
}

func (h *LeadHandler) Toggle(c *fiber.Ctx) error {
	var req toggleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	if err := h.service.SetBotEnabled(c.Context(), c.Params("bot"), c.Params("number"), req.Enabled); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"enabled": req.Enabled})
}

func (h *LeadHandler) ClearHistory(c *fiber.Ctx) error {
	if err := h.service.ClearHistory(c.Context(), c.Params("bot"), c.Params("number")); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"cleared": true})
}

func (h *LeadHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.Context(), c.Params("bot"), c.Params("number")); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"deleted": true})
}

type manualRequest struct {
	Text string `json:"text"`
}

func (h *LeadHandler) SendManual(c *fiber.Ctx) error {
	var req manualRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	if err := h.service.SendManual(c.Context(), c.Params("bot"), c.Params("number"), req.Text); err != nil {
		h.log.Error("manual send failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"sent": true})
}

func (h *LeadHandler) ExportCSV(c *fiber.Ctx) error {
	bot := c.Query("bot")
	if caller, ok := c.Locals("user").(*domain.User); ok {
		if bot == "" && caller.BotScope != "*" && caller.Role != domain.UserRoleAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Specify a bot within your scope"})
		}
		if bot != "" && !caller.CanManage(bot) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Bot not in your scope"})
		}
	}

	out, err := h.service.ExportCSV(c.Context(), bot)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="leads.csv"`)
	return c.Send(out)
}
