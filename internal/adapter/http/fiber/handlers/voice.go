package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/sundinlabs/multibot/internal/adapter/messaging/twilio"
	"github.com/sundinlabs/multibot/internal/ports"
	"github.com/sundinlabs/multibot/internal/service/voice"
)

// VoiceHandler answers the Twilio voice webhook and mints browser
// realtime sessions.
type VoiceHandler struct {
	sessions  *voice.Service
	registry  ports.BotRegistry
	publicURL string
	log       *zap.Logger
}

func NewVoiceHandler(sessions *voice.Service, registry ports.BotRegistry, publicURL string, log *zap.Logger) *VoiceHandler {
	return &VoiceHandler{
		sessions:  sessions,
		registry:  registry,
		publicURL: publicURL,
		log:       log,
	}
}

// mediaStreamURL derives the websocket endpoint from the public URL.
func (h *VoiceHandler) mediaStreamURL() string {
	ws := strings.Replace(h.publicURL, "https://", "wss://", 1)
	ws = strings.Replace(ws, "http://", "ws://", 1)
	return strings.TrimRight(ws, "/") + "/ws/media"
}

// AnswerCall returns the TwiML that greets the caller and bridges the
// call into the media-stream websocket.
func (h *VoiceHandler) AnswerCall(c *fiber.Ctx) error {
	from := c.FormValue("From")
	to := c.FormValue("To")

	bot, err := h.registry.FindByNumber(to)
	if err != nil {
		h.log.Warn("voice call for unknown number", zap.String("to", to))
		twiml, rerr := twilio.RejectReply("Este número no está disponible por el momento.")
		if rerr != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": rerr.Error()})
		}
		c.Set(fiber.HeaderContentType, "application/xml")
		return c.Send(twiml)
	}

	greeting := bot.Channels.Voice.Greeting
	twiml, err := twilio.GreetAndStream(greeting, bot.Language, h.mediaStreamURL(), to, from)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	h.log.Info("voice call bridged",
		zap.String("bot", bot.Slug),
		zap.String("from", from))
	c.Set(fiber.HeaderContentType, "application/xml")
	return c.Send(twiml)
}

type sessionRequest struct {
	Bot        string   `json:"bot"`
	HoldMs     *int     `json:"vad_hold_ms"`
	Threshold  *float64 `json:"vad_threshold"`
	MinVoiceMs *int     `json:"vad_min_voice_ms"`
}

// queryVAD reads the optional query-string dials.
func queryVAD(c *fiber.Ctx) voice.VADOverrides {
	var out voice.VADOverrides
	if v := c.Query("vad_hold_ms"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			out.HoldMs = &n
		}
	}
	if v := c.Query("vad_threshold"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			out.Threshold = &f
		}
	}
	if v := c.Query("vad_min_voice_ms"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			out.MinVoiceMs = &n
		}
	}
	return out
}

// CreateSession mints a short-lived realtime session for a browser
// client. Body dials win over query dials, which win over defaults.
func (h *VoiceHandler) CreateSession(c *fiber.Ctx) error {
	var req sessionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
		}
	}

	slug := req.Bot
	if slug == "" {
		slug = c.Query("bot")
	}

	vad := h.sessions.MergeVAD(queryVAD(c), voice.VADOverrides{
		HoldMs:     req.HoldMs,
		Threshold:  req.Threshold,
		MinVoiceMs: req.MinVoiceMs,
	})

	session, err := h.sessions.CreateSession(c.Context(), slug, vad)
	if err != nil {
		h.log.Error("failed to mint realtime session", zap.Error(err), zap.String("bot", slug))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(session)
}
