package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/sundinlabs/multibot/internal/domain"
	"github.com/sundinlabs/multibot/internal/ports"
)

// Invoicer turns a statement into a payment-provider invoice.
type Invoicer interface {
	Invoice(ctx context.Context, bot, from, to, email string) (string, error)
}

// BillingHandler exposes the usage ledger and statement endpoints.
type BillingHandler struct {
	service  ports.BillingService
	invoicer Invoicer
	log      *zap.Logger
}

func NewBillingHandler(service ports.BillingService, invoicer Invoicer, log *zap.Logger) *BillingHandler {
	return &BillingHandler{service: service, invoicer: invoicer, log: log}
}

// dateRange reads from/to query params, defaulting to the current month.
func dateRange(c *fiber.Ctx) (string, string) {
	now := time.Now()
	from := c.Query("from", now.AddDate(0, 0, -now.Day()+1).Format("2006-01-02"))
	to := c.Query("to", now.Format("2006-01-02"))
	return from, to
}

func (h *BillingHandler) Clients(c *fiber.Ctx) error {
	from, to := dateRange(c)
	rows, err := h.service.ClientsSummary(c.Context(), from, to)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(rows)
}

func (h *BillingHandler) Toggle(c *fiber.Ctx) error {
	var req toggleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	bot := c.Params("bot")
	if err := h.service.SetBotEnabled(c.Context(), bot, req.Enabled); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"bot": bot, "enabled": req.Enabled})
}

// Consumption is the token-only rollup, without carrier costs.
func (h *BillingHandler) Consumption(c *fiber.Ctx) error {
	from, to := dateRange(c)
	st, err := h.service.Consumption(c.Context(), c.Params("bot"), from, to)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(st)
}

// Statement is the full rollup: tokens, Twilio messaging and the fixed
// service item.
func (h *BillingHandler) Statement(c *fiber.Ctx) error {
	from, to := dateRange(c)
	st, err := h.service.Statement(c.Context(), c.Params("bot"), from, to)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(st)
}

func (h *BillingHandler) UsageSeries(c *fiber.Ctx) error {
	from, to := dateRange(c)
	series, err := h.service.UsageSeries(c.Context(), c.Params("bot"), from, to)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if series == nil {
		series = []domain.UsagePoint{}
	}
	return c.JSON(series)
}

func (h *BillingHandler) GetRates(c *fiber.Ctx) error {
	rates, err := h.service.GetRates(c.Context(), c.Params("bot"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if rates == nil {
		rates = &domain.Rates{}
	}
	return c.JSON(rates)
}

func (h *BillingHandler) SetRates(c *fiber.Ctx) error {
	var rates domain.Rates
	if err := c.BodyParser(&rates); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	if rates.InputPerK < 0 || rates.OutputPerK < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Rates must be non-negative"})
	}
	if err := h.service.SetRates(c.Context(), c.Params("bot"), rates); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(rates)
}

func (h *BillingHandler) GetServiceItem(c *fiber.Ctx) error {
	item, err := h.service.GetServiceItem(c.Context(), c.Params("bot"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if item == nil {
		item = &domain.ServiceItem{}
	}
	return c.JSON(item)
}

func (h *BillingHandler) SetServiceItem(c *fiber.Ctx) error {
	var item domain.ServiceItem
	if err := c.BodyParser(&item); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	if err := h.service.SetServiceItem(c.Context(), c.Params("bot"), item); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(item)
}

// Track accepts usage events from out-of-process callers.
func (h *BillingHandler) Track(c *fiber.Ctx) error {
	var ev domain.UsageEvent
	if err := c.BodyParser(&ev); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	if ev.Bot == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Bot is required"})
	}
	if err := h.service.Track(c.Context(), ev); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"tracked": true})
}

type invoiceRequest struct {
	Email string `json:"email"`
}

func (h *BillingHandler) Invoice(c *fiber.Ctx) error {
	if h.invoicer == nil {
		return c.Status(fiber.StatusNotImplemented).JSON(fiber.Map{"error": "Invoicing is not configured"})
	}
	var req invoiceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	if req.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Email is required"})
	}

	from, to := dateRange(c)
	id, err := h.invoicer.Invoice(c.Context(), c.Params("bot"), from, to, req.Email)
	if err != nil {
		h.log.Error("invoice failed", zap.Error(err), zap.String("bot", c.Params("bot")))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"invoice_id": id})
}
