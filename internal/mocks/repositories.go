package mocks

import (
	"context"

	"github.com/sundinlabs/multibot/internal/domain"
)

// MockLeadRepository is a mock implementation of LeadRepository interface
type MockLeadRepository struct {
	AppendMessageFunc func(ctx context.Context, bot, number string, entry domain.HistoryEntry) error
	FindFunc          func(ctx context.Context, bot, number string) (*domain.Lead, error)
	FindByBotFunc     func(ctx context.Context, bot string) ([]domain.Lead, error)
	FindAllFunc       func(ctx context.Context) ([]domain.Lead, error)
	UpdateStatusFunc  func(ctx context.Context, bot, number, status string) error
	UpdateNotesFunc   func(ctx context.Context, bot, number, notes string) error
	SetBotEnabledFunc func(ctx context.Context, bot, number string, enabled bool) error
	ClearHistoryFunc  func(ctx context.Context, bot, number string) error
	DeleteFunc        func(ctx context.Context, bot, number string) error

	Appended []domain.HistoryEntry
}

func NewMockLeadRepository() *MockLeadRepository {
	return &MockLeadRepository{}
}

func (m *MockLeadRepository) AppendMessage(ctx context.Context, bot, number string, entry domain.HistoryEntry) error {
	if m.AppendMessageFunc != nil {
		return m.AppendMessageFunc(ctx, bot, number, entry)
	}
	m.Appended = append(m.Appended, entry)
	return nil
}

func (m *MockLeadRepository) Find(ctx context.Context, bot, number string) (*domain.Lead, error) {
	if m.FindFunc != nil {
		return m.FindFunc(ctx, bot, number)
	}
	return nil, nil
}

func (m *MockLeadRepository) FindByBot(ctx context.Context, bot string) ([]domain.Lead, error) {
	if m.FindByBotFunc != nil {
		return m.FindByBotFunc(ctx, bot)
	}
	return nil, nil
}

func (m *MockLeadRepository) FindAll(ctx context.Context) ([]domain.Lead, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc(ctx)
	}
	return nil, nil
}

func (m *MockLeadRepository) UpdateStatus(ctx context.Context, bot, number, status string) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, bot, number, status)
	}
	return nil
}

func (m *MockLeadRepository) UpdateNotes(ctx context.Context, bot, number, notes string) error {
	if m.UpdateNotesFunc != nil {
		return m.UpdateNotesFunc(ctx, bot, number, notes)
	}
	return nil
}

func (m *MockLeadRepository) SetBotEnabled(ctx context.Context, bot, number string, enabled bool) error {
	if m.SetBotEnabledFunc != nil {
		return m.SetBotEnabledFunc(ctx, bot, number, enabled)
	}
	return nil
}

func (m *MockLeadRepository) ClearHistory(ctx context.Context, bot, number string) error {
	if m.ClearHistoryFunc != nil {
		return m.ClearHistoryFunc(ctx, bot, number)
	}
	return nil
}

func (m *MockLeadRepository) Delete(ctx context.Context, bot, number string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, bot, number)
	}
	return nil
}

// MockUsageRepository is a mock implementation of UsageRepository interface
type MockUsageRepository struct {
	RecordFunc         func(ctx context.Context, ev domain.UsageEvent) error
	FindDayFunc        func(ctx context.Context, bot, day string) (*domain.DailyUsage, error)
	FindRangeFunc      func(ctx context.Context, bot, from, to string) ([]domain.DailyUsage, error)
	GetRatesFunc       func(ctx context.Context, bot string) (*domain.Rates, error)
	SetRatesFunc       func(ctx context.Context, bot string, rates domain.Rates) error
	GetServiceItemFunc func(ctx context.Context, bot string) (*domain.ServiceItem, error)
	SetServiceItemFunc func(ctx context.Context, bot string, item domain.ServiceItem) error
	GetStatusFunc      func(ctx context.Context, bot string) (*domain.BotStatus, error)
	SetStatusFunc      func(ctx context.Context, bot string, enabled bool) error
	ListStatusesFunc   func(ctx context.Context) ([]domain.BotStatus, error)

	Recorded []domain.UsageEvent
}

func NewMockUsageRepository() *MockUsageRepository {
	return &MockUsageRepository{}
}

func (m *MockUsageRepository) Record(ctx context.Context, ev domain.UsageEvent) error {
	if m.RecordFunc != nil {
		return m.RecordFunc(ctx, ev)
	}
	m.Recorded = append(m.Recorded, ev)
	return nil
}

func (m *MockUsageRepository) FindDay(ctx context.Context, bot, day string) (*domain.DailyUsage, error) {
	if m.FindDayFunc != nil {
		return m.FindDayFunc(ctx, bot, day)
	}
	return nil, nil
}

func (m *MockUsageRepository) FindRange(ctx context.Context, bot, from, to string) ([]domain.DailyUsage, error) {
	if m.FindRangeFunc != nil {
		return m.FindRangeFunc(ctx, bot, from, to)
	}
	return nil, nil
}

func (m *MockUsageRepository) GetRates(ctx context.Context, bot string) (*domain.Rates, error) {
	if m.GetRatesFunc != nil {
		return m.GetRatesFunc(ctx, bot)
	}
	return nil, nil
}

func (m *MockUsageRepository) SetRates(ctx context.Context, bot string, rates domain.Rates) error {
	if m.SetRatesFunc != nil {
		return m.SetRatesFunc(ctx, bot, rates)
	}
	return nil
}

func (m *MockUsageRepository) GetServiceItem(ctx context.Context, bot string) (*domain.ServiceItem, error) {
	if m.GetServiceItemFunc != nil {
		return m.GetServiceItemFunc(ctx, bot)
	}
	return nil, nil
}

func (m *MockUsageRepository) SetServiceItem(ctx context.Context, bot string, item domain.ServiceItem) error {
	if m.SetServiceItemFunc != nil {
		return m.SetServiceItemFunc(ctx, bot, item)
	}
	return nil
}

func (m *MockUsageRepository) GetStatus(ctx context.Context, bot string) (*domain.BotStatus, error) {
	if m.GetStatusFunc != nil {
		return m.GetStatusFunc(ctx, bot)
	}
	return nil, nil
}

func (m *MockUsageRepository) SetStatus(ctx context.Context, bot string, enabled bool) error {
	if m.SetStatusFunc != nil {
		return m.SetStatusFunc(ctx, bot, enabled)
	}
	return nil
}

func (m *MockUsageRepository) ListStatuses(ctx context.Context) ([]domain.BotStatus, error) {
	if m.ListStatusesFunc != nil {
		return m.ListStatusesFunc(ctx)
	}
	return nil, nil
}

// MockInstagramRepository is a mock implementation of InstagramRepository interface
type MockInstagramRepository struct {
	SaveFunc         func(ctx context.Context, user *domain.InstagramUser) error
	FindFunc         func(ctx context.Context, userID string) (*domain.InstagramUser, error)
	FindByPageIDFunc func(ctx context.Context, pageID string) (*domain.InstagramUser, error)
	SetEnabledFunc   func(ctx context.Context, userID string, enabled bool) error
}

func NewMockInstagramRepository() *MockInstagramRepository {
	return &MockInstagramRepository{}
}

func (m *MockInstagramRepository) Save(ctx context.Context, user *domain.InstagramUser) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, user)
	}
	return nil
}

func (m *MockInstagramRepository) Find(ctx context.Context, userID string) (*domain.InstagramUser, error) {
	if m.FindFunc != nil {
		return m.FindFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockInstagramRepository) FindByPageID(ctx context.Context, pageID string) (*domain.InstagramUser, error) {
	if m.FindByPageIDFunc != nil {
		return m.FindByPageIDFunc(ctx, pageID)
	}
	return nil, nil
}

func (m *MockInstagramRepository) SetEnabled(ctx context.Context, userID string, enabled bool) error {
	if m.SetEnabledFunc != nil {
		return m.SetEnabledFunc(ctx, userID, enabled)
	}
	return nil
}

// MockUserRepository is a mock implementation of UserRepository interface
type MockUserRepository struct {
	SaveFunc        func(ctx context.Context, user *domain.User) error
	FindByIDFunc    func(ctx context.Context, id string) (*domain.User, error)
	FindByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{}
}

func (m *MockUserRepository) Save(ctx context.Context, user *domain.User) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, user)
	}
	return nil
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return nil, nil
}
