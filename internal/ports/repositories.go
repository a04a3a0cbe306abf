package ports

import (
	"context"

	"github.com/sundinlabs/multibot/internal/domain"
)

type LeadRepository interface {
	AppendMessage(ctx context.Context, bot, number string, entry domain.HistoryEntry) error
	Find(ctx context.Context, bot, number string) (*domain.Lead, error)
	FindByBot(ctx context.Context, bot string) ([]domain.Lead, error)
	FindAll(ctx context.Context) ([]domain.Lead, error)
	UpdateStatus(ctx context.Context, bot, number, status string) error
	UpdateNotes(ctx context.Context, bot, number, notes string) error
	SetBotEnabled(ctx context.Context, bot, number string, enabled bool) error
	ClearHistory(ctx context.Context, bot, number string) error
	Delete(ctx context.Context, bot, number string) error
}

type UsageRepository interface {
	Record(ctx context.Context, ev domain.UsageEvent) error
	FindDay(ctx context.Context, bot, day string) (*domain.DailyUsage, error)
	FindRange(ctx context.Context, bot, from, to string) ([]domain.DailyUsage, error)
	GetRates(ctx context.Context, bot string) (*domain.Rates, error)
	SetRates(ctx context.Context, bot string, rates domain.Rates) error
	GetServiceItem(ctx context.Context, bot string) (*domain.ServiceItem, error)
	SetServiceItem(ctx context.Context, bot string, item domain.ServiceItem) error
	GetStatus(ctx context.Context, bot string) (*domain.BotStatus, error)
	SetStatus(ctx context.Context, bot string, enabled bool) error
	ListStatuses(ctx context.Context) ([]domain.BotStatus, error)
}

type InstagramRepository interface {
	Save(ctx context.Context, user *domain.InstagramUser) error
	Find(ctx context.Context, userID string) (*domain.InstagramUser, error)
	FindByPageID(ctx context.Context, pageID string) (*domain.InstagramUser, error)
	SetEnabled(ctx context.Context, userID string, enabled bool) error
}

type UserRepository interface {
	Save(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
}
