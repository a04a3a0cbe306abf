package actions

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/sundinlabs/multibot/internal/observability/telemetry"
	"github.com/sundinlabs/multibot/internal/ports"
	"github.com/sundinlabs/multibot/pkg/config"
)

var phoneDigits = regexp.MustCompile(`\D`)

// Service implements the send-link action: normalize the phone, build
// the tracked booking link and push it over SMS or WhatsApp.
type Service struct {
	registry ports.BotRegistry
	sender   ports.WhatsAppSender
	cfg      config.LinksConfig
	log      *zap.Logger
}

func NewService(registry ports.BotRegistry, sender ports.WhatsAppSender, cfg config.LinksConfig, log *zap.Logger) *Service {
	return &Service{registry: registry, sender: sender, cfg: cfg, log: log}
}

// NormalizePhone accepts US numbers in free form and returns E.164.
func NormalizePhone(raw string) (string, error) {
	digits := phoneDigits.ReplaceAllString(raw, "")
	switch {
	case len(digits) == 10:
		return "+1" + digits, nil
	case len(digits) == 11 && strings.HasPrefix(digits, "1"):
		return "+" + digits, nil
	default:
		return "", fmt.Errorf("invalid phone %q: expected a 10-digit US number", raw)
	}
}

// BuildLink appends name/phone/source tracking params to the base URL.
func BuildLink(base, name, phone, source string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid link %q: %w", base, err)
	}
	q := u.Query()
	if name != "" {
		q.Set("name", name)
	}
	if phone != "" {
		q.Set("phone", phone)
	}
	if source != "" {
		q.Set("source", source)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// SendLink resolves the bot, builds the link and delivers it. Returns
// the link that was sent.
func (s *Service) SendLink(ctx context.Context, req *ports.SendLinkRequest) (string, error) {
	phone, err := NormalizePhone(req.Phone)
	if err != nil {
		return "", err
	}

	card, err := s.registry.Get(req.Bot)
	if err != nil {
		return "", fmt.Errorf("unknown bot %q: %w", req.Bot, err)
	}

	base := req.Link
	if base == "" {
		base = card.EffectiveBookingURL()
	}
	if base == "" {
		base = s.cfg.BookingURL
	}
	if base == "" {
		return "", fmt.Errorf("bot %q has no booking link configured", req.Bot)
	}

	link, err := BuildLink(base, req.Name, phone, req.Source)
	if err != nil {
		return "", err
	}

	text := req.Text
	if text == "" {
		text = "Agenda tu cita aquí: " + link
	} else if !strings.Contains(text, link) {
		text = strings.TrimRight(text, " ") + " " + link
	}

	switch strings.ToLower(req.Channel) {
	case "", "sms":
		err = s.sender.SendSMS(ctx, card.Twilio, phone, text)
	case "whatsapp":
		err = s.sender.SendWhatsApp(ctx, card.Twilio, phone, text)
	default:
		return "", fmt.Errorf("unknown channel %q", req.Channel)
	}
	if err != nil {
		return "", fmt.Errorf("failed to send link: %w", err)
	}

	source := req.Source
	if source == "" {
		source = "panel"
	}
	telemetry.LinksSentTotal.WithLabelValues(req.Bot, source).Inc()

	s.log.Info("booking link sent",
		zap.String("bot", req.Bot),
		zap.String("phone", phone),
		zap.String("channel", req.Channel))
	return link, nil
}
