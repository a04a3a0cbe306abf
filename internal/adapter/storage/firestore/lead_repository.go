package firestore

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/sundinlabs/multibot/internal/domain"
	"github.com/sundinlabs/multibot/internal/observability/telemetry"
	"github.com/sundinlabs/multibot/internal/ports"
)

const (
	leadsCollection    = "leads"
	contactsCollection = "contacts"
)

type LeadRepository struct {
	client *firestore.Client
	log    *zap.Logger
}

func NewLeadRepository(client *firestore.Client, log *zap.Logger) ports.LeadRepository {
	return &LeadRepository{
		client: client,
		log:    log,
	}
}

func (r *LeadRepository) doc(bot, number string) *firestore.DocumentRef {
	return r.client.Collection(leadsCollection).Doc(bot).Collection(contactsCollection).Doc(number)
}

// AppendMessage reads, appends and rewrites the lead in a transaction
// so concurrent webhooks never drop a turn.
func (r *LeadRepository) AppendMessage(ctx context.Context, bot, number string, entry domain.HistoryEntry) error {
	timer := prometheus.NewTimer(telemetry.FirestoreLatency)
	defer timer.ObserveDuration()

	ref := r.doc(bot, number)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		var lead domain.Lead
		snap, err := tx.Get(ref)
		switch {
		case err == nil:
			if err := snap.DataTo(&lead); err != nil {
				return fmt.Errorf("failed to decode lead: %w", err)
			}
		case status.Code(err) == codes.NotFound:
			lead = domain.Lead{Status: "nuevo"}
		default:
			return err
		}

		lead.Historial = append(lead.Historial, entry)
		lead.LastMessage = entry.Texto
		lead.LastSeen = entry.Hora
		lead.MessageCount++
		return tx.Set(ref, &lead)
	})
	if err != nil {
		return fmt.Errorf("failed to append lead message: %w", err)
	}
	return nil
}

func (r *LeadRepository) Find(ctx context.Context, bot, number string) (*domain.Lead, error) {
	timer := prometheus.NewTimer(telemetry.FirestoreLatency)
	defer timer.ObserveDuration()

	snap, err := r.doc(bot, number).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}

	var lead domain.Lead
	if err := snap.DataTo(&lead); err != nil {
		return nil, fmt.Errorf("failed to decode lead: %w", err)
	}
	lead.Bot = bot
	lead.Number = number
	return &lead, nil
}

func (r *LeadRepository) FindByBot(ctx context.Context, bot string) ([]domain.Lead, error) {
	iter := r.client.Collection(leadsCollection).Doc(bot).Collection(contactsCollection).Documents(ctx)
	return r.collect(iter, bot)
}

// FindAll walks the contacts of every bot via a collection group query.
// Instagram pseudo-numbers ("ig:...") stay out of the panel list.
func (r *LeadRepository) FindAll(ctx context.Context) ([]domain.Lead, error) {
	iter := r.client.CollectionGroup(contactsCollection).Documents(ctx)
	return r.collect(iter, "")
}

func (r *LeadRepository) collect(iter *firestore.DocumentIterator, bot string) ([]domain.Lead, error) {
	defer iter.Stop()

	var leads []domain.Lead
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate leads: %w", err)
		}

		number := snap.Ref.ID
		if strings.HasPrefix(number, "ig:") {
			continue
		}

		var lead domain.Lead
		if err := snap.DataTo(&lead); err != nil {
			r.log.Warn("skipping undecodable lead", zap.String("doc", snap.Ref.Path), zap.Error(err))
			continue
		}
		lead.Number = number
		lead.Bot = bot
		if lead.Bot == "" && snap.Ref.Parent != nil && snap.Ref.Parent.Parent != nil {
			lead.Bot = snap.Ref.Parent.Parent.ID
		}
		leads = append(leads, lead)
	}
	return leads, nil
}

func (r *LeadRepository) UpdateStatus(ctx context.Context, bot, number, status string) error {
	_, err := r.doc(bot, number).Set(ctx, map[string]interface{}{"status": status}, firestore.MergeAll)
	return err
}

func (r *LeadRepository) UpdateNotes(ctx context.Context, bot, number, notes string) error {
	_, err := r.doc(bot, number).Set(ctx, map[string]interface{}{"notes": notes}, firestore.MergeAll)
	return err
}

func (r *LeadRepository) SetBotEnabled(ctx context.Context, bot, number string, enabled bool) error {
	_, err := r.doc(bot, number).Set(ctx, map[string]interface{}{"bot_enabled": enabled}, firestore.MergeAll)
	return err
}

func (r *LeadRepository) ClearHistory(ctx context.Context, bot, number string) error {
	_, err := r.doc(bot, number).Set(ctx, map[string]interface{}{
		"historial":     []domain.HistoryEntry{},
		"message_count": 0,
		"last_message":  "",
		"last_seen":     "",
	}, firestore.MergeAll)
	return err
}

func (r *LeadRepository) Delete(ctx context.Context, bot, number string) error {
	_, err := r.doc(bot, number).Delete(ctx)
	return err
}
