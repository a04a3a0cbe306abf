package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/sundinlabs/multibot/internal/adapter/queue"
	"github.com/sundinlabs/multibot/internal/domain"
	"github.com/sundinlabs/multibot/internal/observability/telemetry"
	"github.com/sundinlabs/multibot/internal/ports"
	"github.com/sundinlabs/multibot/pkg/config"
)

const (
	usageSubject = "billing.usage"
	dayLayout    = "2006-01-02"
)

// Service owns the usage ledger: events in through the queue, rates
// and statements out for the panel.
type Service struct {
	repo     ports.UsageRepository
	registry ports.BotRegistry
	msgUsage ports.MessageUsage
	mq       queue.MessageQueue
	payment  ports.PaymentGateway
	email    ports.EmailService
	cfg      config.BillingConfig
	log      *zap.Logger
}

func NewService(
	repo ports.UsageRepository,
	registry ports.BotRegistry,
	msgUsage ports.MessageUsage,
	mq queue.MessageQueue,
	payment ports.PaymentGateway,
	email ports.EmailService,
	cfg config.BillingConfig,
	log *zap.Logger,
) *Service {
	return &Service{
		repo:     repo,
		registry: registry,
		msgUsage: msgUsage,
		mq:       mq,
		payment:  payment,
		email:    email,
		cfg:      cfg,
		log:      log,
	}
}

// Track publishes a usage event for the worker to fold in. Without a
// queue it records directly.
func (s *Service) Track(ctx context.Context, ev domain.UsageEvent) error {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	if s.mq == nil {
		return s.repo.Record(ctx, ev)
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal usage event: %w", err)
	}
	if err := s.mq.Publish(usageSubject, data); err != nil {
		// queue down, keep the ledger correct
		s.log.Warn("usage publish failed, recording directly", zap.Error(err))
		return s.repo.Record(ctx, ev)
	}
	telemetry.UsageEventsQueuedTotal.Inc()
	return nil
}

// StartWorker subscribes the ledger fold to the usage subject.
func (s *Service) StartWorker(ctx context.Context) error {
	if s.mq == nil {
		return nil
	}
	return s.mq.Subscribe(usageSubject, func(data []byte) error {
		var ev domain.UsageEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			s.log.Warn("dropping malformed usage event", zap.Error(err))
			return nil
		}
		if err := s.repo.Record(ctx, ev); err != nil {
			s.log.Error("usage record failed", zap.Error(err), zap.String("bot", ev.Bot))
			return err
		}
		return nil
	})
}

func (s *Service) rates(ctx context.Context, bot string) domain.Rates {
	if r, err := s.repo.GetRates(ctx, bot); err == nil && r != nil {
		return *r
	}
	return domain.Rates{InputPerK: s.cfg.InputPerK, OutputPerK: s.cfg.OutputPerK}
}

// Consumption is the OpenAI-only rollup used by the panel's live view.
func (s *Service) Consumption(ctx context.Context, bot, from, to string) (*domain.Statement, error) {
	days, err := s.repo.FindRange(ctx, bot, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load usage range: %w", err)
	}

	rates := s.rates(ctx, bot)
	st := &domain.Statement{Bot: bot, From: from, To: to}
	for _, d := range days {
		cost := tokenCost(d.InputTokens, d.OutputTokens, rates)
		st.Requests += d.Requests
		st.InputTokens += d.InputTokens
		st.OutputTokens += d.OutputTokens
		st.OpenAICost += cost
		st.Series = append(st.Series, domain.UsagePoint{
			Day:          d.Day,
			Requests:     d.Requests,
			InputTokens:  d.InputTokens,
			OutputTokens: d.OutputTokens,
			Cost:         cost,
		})
	}
	st.Subtotal = st.OpenAICost
	st.Total = st.Subtotal
	return st, nil
}

// Statement is the full invoice view: model cost plus carrier spend
// plus the fixed service item.
func (s *Service) Statement(ctx context.Context, bot, from, to string) (*domain.Statement, error) {
	st, err := s.Consumption(ctx, bot, from, to)
	if err != nil {
		return nil, err
	}

	if s.msgUsage != nil {
		if card, err := s.registry.Get(bot); err == nil {
			fromT, errF := time.Parse(dayLayout, from)
			toT, errT := time.Parse(dayLayout, to)
			if errF == nil && errT == nil {
				count, cost, perDay, err := s.msgUsage.MessageCosts(ctx, card.Twilio, fromT, toT.Add(24*time.Hour))
				if err != nil {
					s.log.Warn("twilio usage lookup failed", zap.Error(err), zap.String("bot", bot))
				} else {
					st.TwilioCount = count
					st.TwilioCost = cost
					st.TwilioPerDay = perDay
				}
			}
		}
	}

	item, err := s.repo.GetServiceItem(ctx, bot)
	if err != nil {
		s.log.Warn("service item lookup failed", zap.Error(err), zap.String("bot", bot))
	}
	if item == nil && s.cfg.ServiceItemAmount > 0 {
		item = &domain.ServiceItem{
			Enabled: true,
			Amount:  s.cfg.ServiceItemAmount,
			Label:   s.cfg.ServiceItemLabel,
		}
	}
	st.ServiceItem = item

	st.Subtotal = st.OpenAICost + st.TwilioCost
	st.Total = st.Subtotal
	if item != nil && item.Enabled {
		st.Total += item.Amount
	}
	return st, nil
}

// UsageSeries returns just the per-day points for charting.
func (s *Service) UsageSeries(ctx context.Context, bot, from, to string) ([]domain.UsagePoint, error) {
	st, err := s.Consumption(ctx, bot, from, to)
	if err != nil {
		return nil, err
	}
	return st.Series, nil
}

// ClientsSummary lists every registered bot with its switch state and
// current-period consumption.
func (s *Service) ClientsSummary(ctx context.Context, from, to string) ([]ports.ClientSummary, error) {
	var out []ports.ClientSummary
	for _, card := range s.registry.All() {
		st, err := s.Consumption(ctx, card.Slug, from, to)
		if err != nil {
			s.log.Warn("consumption rollup failed", zap.Error(err), zap.String("bot", card.Slug))
			st = &domain.Statement{}
		}
		out = append(out, ports.ClientSummary{
			Bot:      card.Slug,
			Name:     card.Name,
			Enabled:  s.BotEnabled(ctx, card.Slug),
			Requests: st.Requests,
			Cost:     st.OpenAICost,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Bot < out[j].Bot })
	return out, nil
}

func (s *Service) GetRates(ctx context.Context, bot string) (*domain.Rates, error) {
	r := s.rates(ctx, bot)
	return &r, nil
}

func (s *Service) SetRates(ctx context.Context, bot string, rates domain.Rates) error {
	return s.repo.SetRates(ctx, bot, rates)
}

func (s *Service) GetServiceItem(ctx context.Context, bot string) (*domain.ServiceItem, error) {
	return s.repo.GetServiceItem(ctx, bot)
}

func (s *Service) SetServiceItem(ctx context.Context, bot string, item domain.ServiceItem) error {
	return s.repo.SetServiceItem(ctx, bot, item)
}

// BotEnabled reads the master switch, default ON; lookup failures
// never silence a bot.
func (s *Service) BotEnabled(ctx context.Context, bot string) bool {
	st, err := s.repo.GetStatus(ctx, bot)
	if err != nil || st == nil {
		return true
	}
	return st.Enabled
}

func (s *Service) SetBotEnabled(ctx context.Context, bot string, enabled bool) error {
	return s.repo.SetStatus(ctx, bot, enabled)
}

// Invoice pushes a statement to the payment provider and mails it.
func (s *Service) Invoice(ctx context.Context, bot, from, to, email string) (string, error) {
	st, err := s.Statement(ctx, bot, from, to)
	if err != nil {
		return "", err
	}

	var invoiceID string
	if s.payment != nil && s.cfg.Stripe.Enabled {
		invoiceID, err = s.payment.CreateInvoice(ctx, st, email)
		if err != nil {
			return "", fmt.Errorf("failed to create invoice: %w", err)
		}
	}
	if s.email != nil && email != "" {
		if err := s.email.SendStatement(ctx, email, st); err != nil {
			s.log.Warn("statement email failed", zap.Error(err), zap.String("bot", bot))
		}
	}
	return invoiceID, nil
}

func tokenCost(input, output int64, rates domain.Rates) float64 {
	return float64(input)/1000*rates.InputPerK + float64(output)/1000*rates.OutputPerK
}
