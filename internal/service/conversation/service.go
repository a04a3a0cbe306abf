package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sundinlabs/multibot/internal/domain"
	"github.com/sundinlabs/multibot/internal/observability/telemetry"
	"github.com/sundinlabs/multibot/internal/ports"
	"github.com/sundinlabs/multibot/internal/service/bots"
	"github.com/sundinlabs/multibot/internal/service/dialog"
)

// Fallback copy used when a card leaves a message empty.
const (
	defaultConfirmQuestion = "¿Quieres que te envíe el enlace para agendar tu cita?"
	defaultDeclineMessage  = "Entendido, ¡gracias! Si cambias de opinión, aquí estaré. 😊"
	defaultClosingMessage  = "¡Perfecto! Quedamos atentos a tu cita. ¡Gracias!"
	defaultLinkMessage     = "Aquí tienes el enlace para agendar tu cita:"
	defaultPoliteClosure   = "¡Gracias a ti! Que tengas un excelente día. 😊"
	defaultAppMessage      = "Puedes descargar nuestra app aquí:"
	defaultNegativeAck     = "Entendido."
	defaultCooldownMessage = "Enlace enviado recientemente."
)

// ErrNoBotForNumber marks an inbound message to a number no card claims.
var ErrNoBotForNumber = fmt.Errorf("no bot assigned to number")

// Config carries the pipeline's tunables.
type Config struct {
	DefaultBot     string
	DefaultIGPage  string
	BookingURL     string
	AppDownloadURL string
	ResendCooldown time.Duration
	Model          string
	Temperature    float64
}

// RemoteSwitch is the external kill-switch consulted before replying.
type RemoteSwitch interface {
	Enabled(ctx context.Context, bot string) bool
}

// Notifier pushes live updates to connected panel clients.
type Notifier interface {
	NotifyMessage(bot, number string, entry domain.HistoryEntry)
}

// Service runs the inbound message pipeline for WhatsApp and
// Instagram: shortcuts first, then the agenda turn machine, then the
// model with style post-processing.
type Service struct {
	registry ports.BotRegistry
	leads    ports.LeadRepository
	igUsers  ports.InstagramRepository
	chat     ports.ChatClient
	igSender ports.InstagramSender
	billing  ports.BillingService
	remote   RemoteSwitch
	notifier Notifier

	sessions *SessionStore
	agenda   *dialog.AgendaStore
	dedup    *Deduper

	cfg Config
	log *zap.Logger
}

func NewService(
	registry ports.BotRegistry,
	leads ports.LeadRepository,
	igUsers ports.InstagramRepository,
	chat ports.ChatClient,
	igSender ports.InstagramSender,
	billing ports.BillingService,
	remote RemoteSwitch,
	notifier Notifier,
	cache ports.Cache,
	cfg Config,
	log *zap.Logger,
) *Service {
	if cfg.ResendCooldown <= 0 {
		cfg.ResendCooldown = 10 * time.Minute
	}
	return &Service{
		registry: registry,
		leads:    leads,
		igUsers:  igUsers,
		chat:     chat,
		igSender: igSender,
		billing:  billing,
		remote:   remote,
		notifier: notifier,
		sessions: NewSessionStore(),
		agenda:   dialog.NewAgendaStore(),
		dedup:    NewDeduper(cache),
		cfg:      cfg,
		log:      log,
	}
}

// HandleWhatsApp runs one inbound WhatsApp turn and returns the reply
// text. Empty reply means stay silent.
func (s *Service) HandleWhatsApp(ctx context.Context, from, to, body string) (string, error) {
	bot := s.resolveByNumber(to)
	if bot == nil {
		return "", fmt.Errorf("%w: %s", ErrNoBotForNumber, to)
	}

	number := bots.CanonicalNumber(from)
	if number == "" {
		return "", fmt.Errorf("unparseable sender %q", from)
	}

	telemetry.MessagesReceivedTotal.WithLabelValues(bot.Slug, "whatsapp").Inc()
	started := time.Now()
	reply, err := s.handleTurn(ctx, bot, number, body)
	if err == nil && reply != "" {
		telemetry.ReplyLatency.Observe(time.Since(started).Seconds())
		telemetry.RepliesSentTotal.WithLabelValues(bot.Slug, "whatsapp").Inc()
	}
	return reply, err
}

// HandleInstagram runs one inbound DM and delivers the reply through
// the Graph sender.
func (s *Service) HandleInstagram(ctx context.Context, msg *domain.InstagramMessage) error {
	if msg.IsEcho {
		return nil
	}
	if s.dedup.Seen(ctx, msg.MID) {
		return nil
	}

	bot := s.resolveByPage(msg.PageID)
	if bot == nil {
		s.log.Warn("no bot for instagram page", zap.String("page_id", msg.PageID))
		return nil
	}

	if msg.PageID != "" && s.igUsers != nil {
		user, err := s.igUsers.FindByPageID(ctx, msg.PageID)
		if err != nil {
			s.log.Warn("instagram user lookup failed", zap.Error(err))
		} else if user != nil && !user.BotEnabled() {
			return nil
		}
	}
	if s.remote != nil && !s.remote.Enabled(ctx, bot.Slug) {
		return nil
	}

	sender := "ig:" + msg.SenderID
	telemetry.MessagesReceivedTotal.WithLabelValues(bot.Slug, "instagram").Inc()
	started := time.Now()
	reply, err := s.handleTurn(ctx, bot, sender, msg.Text)
	if err != nil {
		return err
	}
	if reply == "" {
		return nil
	}
	telemetry.ReplyLatency.Observe(time.Since(started).Seconds())

	token := bot.Channels.Instagram.AccessToken
	if err := s.igSender.SendMessage(ctx, msg.PageID, token, msg.SenderID, reply); err != nil {
		return fmt.Errorf("failed to send instagram reply: %w", err)
	}
	telemetry.RepliesSentTotal.WithLabelValues(bot.Slug, "instagram").Inc()
	return nil
}

// handleTurn is the shared pipeline. It persists the user turn, walks
// the shortcut ladder and falls through to the model.
func (s *Service) handleTurn(ctx context.Context, bot *domain.BotCard, sender, body string) (string, error) {
	key := domain.ConversationKey(bot.Slug, sender)

	lead, err := s.leads.Find(ctx, bot.Slug, sender)
	if err != nil {
		s.log.Warn("lead lookup failed", zap.Error(err), zap.String("key", key))
	}
	session := s.sessions.GetOrHydrate(bot.Slug, sender, lead)

	s.persist(ctx, bot.Slug, sender, domain.MessageKindUser, body)
	s.sessions.Append(key, domain.ChatMessage{Role: domain.ChatRoleUser, Content: body})

	if !s.billing.BotEnabled(ctx, bot.Slug) {
		return "", nil
	}
	if lead != nil && !lead.Enabled() {
		return "", nil
	}

	// app-download shortcut beats everything else
	if appURL := s.effectiveAppURL(bot); appURL != "" && dialog.WantsAppDownload(body) {
		msg := bot.Links.AppMessage
		if msg == "" {
			msg = defaultAppMessage
		}
		reply := dialog.ComposeWithLink(msg, appURL)
		s.agenda.Update(key, func(st *domain.AgendaState) {
			st.Status = domain.AgendaStatusAppLinkSent
		})
		return s.reply(ctx, bot, sender, key, reply), nil
	}

	state := s.agenda.Get(key)

	if dialog.IsNegative(body) {
		var msg string
		if state.AwaitingConfirm {
			msg = bot.Agenda.DeclineMessage
			if msg == "" {
				msg = defaultDeclineMessage
			}
		} else {
			// outside the confirm flow a refusal still leaves the
			// booking link on the table
			msg = dialog.ComposeWithLink(defaultNegativeAck, s.effectiveBookingURL(bot))
		}
		s.agenda.Update(key, func(st *domain.AgendaState) {
			st.AwaitingConfirm = false
			st.Closed = true
		})
		return s.reply(ctx, bot, sender, key, msg), nil
	}

	if dialog.IsPoliteClosure(body) {
		msg := bot.Policies.PoliteClosureMessage
		if msg == "" {
			msg = defaultPoliteClosure
		}
		s.agenda.Update(key, func(st *domain.AgendaState) {
			st.AwaitingConfirm = false
			st.Closed = true
		})
		return s.reply(ctx, bot, sender, key, msg), nil
	}

	if dialog.IsScheduledConfirmation(body) {
		msg := bot.Agenda.ClosingMessage
		if msg == "" {
			msg = defaultClosingMessage
		}
		s.agenda.Update(key, func(st *domain.AgendaState) {
			st.AwaitingConfirm = false
			st.Status = domain.AgendaStatusConfirmed
		})
		return s.reply(ctx, bot, sender, key, msg), nil
	}

	if state.AwaitingConfirm {
		if dialog.IsAffirmative(body) {
			return s.sendBookingLink(ctx, bot, sender, key), nil
		}
		// the question stands until a yes or a no
		msg := bot.Agenda.ConfirmQuestion
		if msg == "" {
			msg = defaultConfirmQuestion
		}
		return s.reply(ctx, bot, sender, key, msg), nil
	}

	if bot.AgendaEnabled() && s.effectiveBookingURL(bot) != "" &&
		dialog.MatchesAnyKeyword(body, bot.Agenda.Keywords) &&
		s.agenda.CanSendLink(key, s.cfg.ResendCooldown) {
		msg := bot.Agenda.ConfirmQuestion
		if msg == "" {
			msg = defaultConfirmQuestion
		}
		s.agenda.Update(key, func(st *domain.AgendaState) {
			st.AwaitingConfirm = true
		})
		return s.reply(ctx, bot, sender, key, msg), nil
	}

	if !session.Greeted && bot.Greeting != "" && dialog.MatchesAnyKeyword(body, bot.IntroKeywords) {
		s.sessions.MarkGreeted(key)
		return s.reply(ctx, bot, sender, key, bot.Greeting), nil
	}

	return s.modelReply(ctx, bot, sender, key)
}

// sendBookingLink composes and sends the scheduling link message. The
// resend cooldown applies to every path that reaches here.
func (s *Service) sendBookingLink(ctx context.Context, bot *domain.BotCard, sender, key string) string {
	if !s.agenda.CanSendLink(key, s.cfg.ResendCooldown) {
		s.agenda.Update(key, func(st *domain.AgendaState) {
			st.AwaitingConfirm = false
		})
		return s.reply(ctx, bot, sender, key, defaultCooldownMessage)
	}

	url := s.effectiveBookingURL(bot)
	msg := bot.Agenda.LinkMessage
	if msg == "" {
		msg = defaultLinkMessage
	}
	msg = dialog.SubstituteBookingURL(msg, url)
	if !strings.Contains(msg, url) {
		msg = dialog.ComposeWithLink(msg, url)
	}
	s.agenda.MarkLinkSent(key)
	s.agenda.Update(key, func(st *domain.AgendaState) {
		st.AwaitingConfirm = false
	})
	telemetry.LinksSentTotal.WithLabelValues(bot.Slug, "agenda").Inc()
	return s.reply(ctx, bot, sender, key, msg)
}

// modelReply asks the model and applies the card's style rules.
func (s *Service) modelReply(ctx context.Context, bot *domain.BotCard, sender, key string) (string, error) {
	msgs := []domain.ChatMessage{}
	if system := bot.SystemMessage(); system != "" {
		msgs = append(msgs, domain.ChatMessage{Role: domain.ChatRoleSystem, Content: system})
	}
	msgs = append(msgs, s.sessions.Snapshot(key)...)

	model := bot.Model
	if model == "" {
		model = s.cfg.Model
	}
	temperature := s.cfg.Temperature
	if bot.Temperature != nil {
		temperature = *bot.Temperature
	}

	text, usage, err := s.chat.Complete(ctx, model, temperature, msgs)
	if err != nil {
		return "", fmt.Errorf("model call failed: %w", err)
	}

	text = dialog.FlattenMarkdownLinks(text)
	text = dialog.SubstituteBookingURL(text, s.effectiveBookingURL(bot))
	text = dialog.ApplyStyle(bot, text)
	if bot.Style.AlwaysQuestion {
		text = dialog.EnsureQuestion(bot, text, true)
	}
	text = dialog.BreakRepetition(bot, text, s.agenda.LastReplyHash(key))
	s.agenda.SetLastReplyHash(key, text)

	// when the model itself offers the scheduling link, arm the
	// confirm state so a bare "sí" next turn sends it
	if bot.AgendaEnabled() && s.effectiveBookingURL(bot) != "" && dialog.WantsLink(text) {
		s.agenda.Update(key, func(st *domain.AgendaState) {
			st.AwaitingConfirm = true
		})
	}

	if usage != nil {
		telemetry.TokensUsedTotal.WithLabelValues(bot.Slug, "input").Add(float64(usage.InputTokens))
		telemetry.TokensUsedTotal.WithLabelValues(bot.Slug, "output").Add(float64(usage.OutputTokens))
		ev := domain.UsageEvent{
			Bot:          bot.Slug,
			Model:        usage.Model,
			InputTokens:  usage.InputTokens,
			OutputTokens: usage.OutputTokens,
			At:           time.Now().UTC(),
		}
		if err := s.billing.Track(ctx, ev); err != nil {
			s.log.Warn("usage tracking failed", zap.Error(err), zap.String("bot", bot.Slug))
		}
	}

	return s.reply(ctx, bot, sender, key, text), nil
}

// reply persists and mirrors one outbound bot turn. Any reply counts
// as having greeted the contact.
func (s *Service) reply(ctx context.Context, bot *domain.BotCard, sender, key, text string) string {
	s.persist(ctx, bot.Slug, sender, domain.MessageKindBot, text)
	s.sessions.Append(key, domain.ChatMessage{Role: domain.ChatRoleAssistant, Content: text})
	s.sessions.MarkGreeted(key)
	return text
}

func (s *Service) persist(ctx context.Context, bot, sender string, kind domain.MessageKind, text string) {
	entry := domain.HistoryEntry{
		Tipo:  string(kind),
		Texto: text,
		Hora:  time.Now().Format(domain.HistoryTimeLayout),
	}
	if err := s.leads.AppendMessage(ctx, bot, sender, entry); err != nil {
		s.log.Warn("history append failed",
			zap.Error(err),
			zap.String("bot", bot),
			zap.String("sender", sender))
	}
	if s.notifier != nil {
		s.notifier.NotifyMessage(bot, sender, entry)
	}
}

func (s *Service) resolveByNumber(number string) *domain.BotCard {
	if bot, err := s.registry.FindByNumber(number); err == nil {
		return bot
	}
	if s.cfg.DefaultBot != "" {
		if bot, err := s.registry.Get(s.cfg.DefaultBot); err == nil {
			return bot
		}
	}
	return nil
}

func (s *Service) resolveByPage(pageID string) *domain.BotCard {
	if bot, err := s.registry.FindByPageID(pageID); err == nil {
		return bot
	}
	if s.cfg.DefaultIGPage != "" {
		if bot, err := s.registry.FindByPageID(s.cfg.DefaultIGPage); err == nil {
			return bot
		}
	}
	if all := s.registry.All(); len(all) > 0 {
		return all[0]
	}
	return nil
}

func (s *Service) effectiveBookingURL(bot *domain.BotCard) string {
	if url := bot.EffectiveBookingURL(); url != "" {
		return url
	}
	return s.cfg.BookingURL
}

func (s *Service) effectiveAppURL(bot *domain.BotCard) string {
	if url := bot.EffectiveAppURL(); url != "" {
		return url
	}
	return s.cfg.AppDownloadURL
}
