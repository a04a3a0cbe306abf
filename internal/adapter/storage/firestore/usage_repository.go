package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/sundinlabs/multibot/internal/domain"
	"github.com/sundinlabs/multibot/internal/ports"
)

const (
	billingCollection      = "billing"
	daysCollection         = "days"
	ratesCollection        = "billing_rates"
	serviceItemsCollection = "billing_service_items"
	statusCollection       = "billing_status"

	dayLayout = "2006-01-02"
)

type UsageRepository struct {
	client *firestore.Client
	log    *zap.Logger
}

func NewUsageRepository(client *firestore.Client, log *zap.Logger) ports.UsageRepository {
	return &UsageRepository{
		client: client,
		log:    log,
	}
}

func (r *UsageRepository) dayDoc(bot, day string) *firestore.DocumentRef {
	return r.client.Collection(billingCollection).Doc(bot).Collection(daysCollection).Doc(day)
}

// Record folds a usage event into the bot's UTC-day aggregate,
// including the per-model breakdown.
func (r *UsageRepository) Record(ctx context.Context, ev domain.UsageEvent) error {
	if ev.Bot == "" {
		return fmt.Errorf("usage event has no bot")
	}
	day := ev.At.UTC().Format(dayLayout)
	ref := r.dayDoc(ev.Bot, day)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		var usage domain.DailyUsage
		snap, err := tx.Get(ref)
		switch {
		case err == nil:
			if err := snap.DataTo(&usage); err != nil {
				return fmt.Errorf("failed to decode daily usage: %w", err)
			}
		case status.Code(err) == codes.NotFound:
			// first event of the day
		default:
			return err
		}

		usage.Requests++
		usage.InputTokens += ev.InputTokens
		usage.OutputTokens += ev.OutputTokens
		if usage.ModelCounts == nil {
			usage.ModelCounts = make(map[string]domain.ModelCount)
		}
		mc := usage.ModelCounts[ev.Model]
		mc.Requests++
		mc.InputTokens += ev.InputTokens
		mc.OutputTokens += ev.OutputTokens
		usage.ModelCounts[ev.Model] = mc

		return tx.Set(ref, &usage)
	})
	if err != nil {
		return fmt.Errorf("failed to record usage: %w", err)
	}
	return nil
}

func (r *UsageRepository) FindDay(ctx context.Context, bot, day string) (*domain.DailyUsage, error) {
	snap, err := r.dayDoc(bot, day).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}

	var usage domain.DailyUsage
	if err := snap.DataTo(&usage); err != nil {
		return nil, fmt.Errorf("failed to decode daily usage: %w", err)
	}
	usage.Bot = bot
	usage.Day = day
	return &usage, nil
}

// FindRange returns the day aggregates between from and to inclusive,
// ordered by day. Dates are yyyy-mm-dd document ids.
func (r *UsageRepository) FindRange(ctx context.Context, bot, from, to string) ([]domain.DailyUsage, error) {
	iter := r.client.Collection(billingCollection).Doc(bot).Collection(daysCollection).
		OrderBy(firestore.DocumentID, firestore.Asc).
		StartAt(from).
		EndAt(to).
		Documents(ctx)
	defer iter.Stop()

	var out []domain.DailyUsage
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate usage days: %w", err)
		}

		var usage domain.DailyUsage
		if err := snap.DataTo(&usage); err != nil {
			r.log.Warn("skipping undecodable usage day", zap.String("doc", snap.Ref.Path), zap.Error(err))
			continue
		}
		usage.Bot = bot
		usage.Day = snap.Ref.ID
		out = append(out, usage)
	}
	return out, nil
}

func (r *UsageRepository) GetRates(ctx context.Context, bot string) (*domain.Rates, error) {
	snap, err := r.client.Collection(ratesCollection).Doc(bot).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}
	var rates domain.Rates
	if err := snap.DataTo(&rates); err != nil {
		return nil, fmt.Errorf("failed to decode rates: %w", err)
	}
	return &rates, nil
}

func (r *UsageRepository) SetRates(ctx context.Context, bot string, rates domain.Rates) error {
	_, err := r.client.Collection(ratesCollection).Doc(bot).Set(ctx, &rates)
	return err
}

func (r *UsageRepository) GetServiceItem(ctx context.Context, bot string) (*domain.ServiceItem, error) {
	snap, err := r.client.Collection(serviceItemsCollection).Doc(bot).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}
	var item domain.ServiceItem
	if err := snap.DataTo(&item); err != nil {
		return nil, fmt.Errorf("failed to decode service item: %w", err)
	}
	return &item, nil
}

func (r *UsageRepository) SetServiceItem(ctx context.Context, bot string, item domain.ServiceItem) error {
	_, err := r.client.Collection(serviceItemsCollection).Doc(bot).Set(ctx, &item)
	return err
}

func (r *UsageRepository) GetStatus(ctx context.Context, bot string) (*domain.BotStatus, error) {
	snap, err := r.client.Collection(statusCollection).Doc(bot).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}
	var st domain.BotStatus
	if err := snap.DataTo(&st); err != nil {
		return nil, fmt.Errorf("failed to decode bot status: %w", err)
	}
	st.Bot = bot
	return &st, nil
}

func (r *UsageRepository) SetStatus(ctx context.Context, bot string, enabled bool) error {
	_, err := r.client.Collection(statusCollection).Doc(bot).Set(ctx, map[string]interface{}{"enabled": enabled})
	return err
}

func (r *UsageRepository) ListStatuses(ctx context.Context) ([]domain.BotStatus, error) {
	iter := r.client.Collection(statusCollection).Documents(ctx)
	defer iter.Stop()

	var out []domain.BotStatus
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate bot statuses: %w", err)
		}
		var st domain.BotStatus
		if err := snap.DataTo(&st); err != nil {
			continue
		}
		st.Bot = snap.Ref.ID
		out = append(out, st)
	}
	return out, nil
}
