package leads

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/sundinlabs/multibot/internal/domain"
	"github.com/sundinlabs/multibot/internal/ports"
)

// Notifier mirrors panel-visible changes to live clients.
type Notifier interface {
	NotifyMessage(bot, number string, entry domain.HistoryEntry)
}

// Service exposes the lead store to the operator panel.
type Service struct {
	repo     ports.LeadRepository
	registry ports.BotRegistry
	sender   ports.WhatsAppSender
	notifier Notifier
	log      *zap.Logger
}

func NewService(repo ports.LeadRepository, registry ports.BotRegistry, sender ports.WhatsAppSender, notifier Notifier, log *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		registry: registry,
		sender:   sender,
		notifier: notifier,
		log:      log,
	}
}

// List returns the bot's leads, or every lead when bot is empty.
func (s *Service) List(ctx context.Context, bot string) ([]domain.Lead, error) {
	if bot == "" {
		return s.repo.FindAll(ctx)
	}
	return s.repo.FindByBot(ctx, bot)
}

func (s *Service) Get(ctx context.Context, bot, number string) (*domain.Lead, error) {
	return s.repo.Find(ctx, bot, number)
}

// ChatSince returns history entries newer than sinceMs, for polling.
func (s *Service) ChatSince(ctx context.Context, bot, number string, sinceMs int64) ([]domain.HistoryEntry, error) {
	lead, err := s.repo.Find(ctx, bot, number)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, nil
	}

	var out []domain.HistoryEntry
	for _, e := range lead.Historial {
		if e.TimeMillis() > sinceMs {
			out = append(out, e)
		}
	}
	return out, nil
}

// SaveStatus updates the lead's pipeline status and notes together.
func (s *Service) SaveStatus(ctx context.Context, bot, number, status, notes string) error {
	if status != "" {
		if err := s.repo.UpdateStatus(ctx, bot, number, status); err != nil {
			return fmt.Errorf("failed to update status: %w", err)
		}
	}
	if notes != "" {
		if err := s.repo.UpdateNotes(ctx, bot, number, notes); err != nil {
			return fmt.Errorf("failed to update notes: %w", err)
		}
	}
	return nil
}

func (s *Service) SetBotEnabled(ctx context.Context, bot, number string, enabled bool) error {
	return s.repo.SetBotEnabled(ctx, bot, number, enabled)
}

func (s *Service) ClearHistory(ctx context.Context, bot, number string) error {
	return s.repo.ClearHistory(ctx, bot, number)
}

func (s *Service) Delete(ctx context.Context, bot, number string) error {
	return s.repo.Delete(ctx, bot, number)
}

// SendManual delivers an operator-written message over WhatsApp and
// stores it as an admin turn.
func (s *Service) SendManual(ctx context.Context, bot, number, text string) error {
	if text == "" {
		return fmt.Errorf("empty message")
	}

	card, err := s.registry.Get(bot)
	if err != nil {
		return fmt.Errorf("unknown bot %q: %w", bot, err)
	}
	if err := s.sender.SendWhatsApp(ctx, card.Twilio, number, text); err != nil {
		return fmt.Errorf("failed to send manual message: %w", err)
	}

	entry := domain.HistoryEntry{
		Tipo:  string(domain.MessageKindAdmin),
		Texto: text,
		Hora:  time.Now().Format(domain.HistoryTimeLayout),
	}
	if err := s.repo.AppendMessage(ctx, bot, number, entry); err != nil {
		s.log.Warn("manual message not persisted",
			zap.Error(err),
			zap.String("bot", bot),
			zap.String("number", number))
	}
	if s.notifier != nil {
		s.notifier.NotifyMessage(bot, number, entry)
	}
	return nil
}

// ExportCSV renders the lead listing in the panel's column order.
func (s *Service) ExportCSV(ctx context.Context, bot string) ([]byte, error) {
	leads, err := s.List(ctx, bot)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"Bot", "Número", "Primer contacto", "Último mensaje", "Última vez", "Mensajes", "Estado", "Notas"}); err != nil {
		return nil, err
	}

	for _, lead := range leads {
		first := ""
		if len(lead.Historial) > 0 {
			first = lead.Historial[0].Hora
		}
		row := []string{
			lead.Bot,
			lead.Number,
			first,
			lead.LastMessage,
			lead.LastSeen,
			strconv.FormatInt(lead.MessageCount, 10),
			lead.Status,
			lead.Notes,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
