package billing

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/sundinlabs/multibot/internal/domain"
	"github.com/sundinlabs/multibot/internal/mocks"
	"github.com/sundinlabs/multibot/pkg/config"
)

func newTestLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

func testConfig() config.BillingConfig {
	return config.BillingConfig{
		InputPerK:         0.005,
		OutputPerK:        0.015,
		ServiceItemAmount: 200,
		ServiceItemLabel:  "Servicio mensual",
	}
}

func testDays() []domain.DailyUsage {
	return []domain.DailyUsage{
		{Day: "2026-08-01", Requests: 10, InputTokens: 10000, OutputTokens: 2000},
		{Day: "2026-08-02", Requests: 5, InputTokens: 5000, OutputTokens: 1000},
	}
}

func TestTrack_PublishesToQueue(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo := mocks.NewMockUsageRepository()
	mq := mocks.NewMockMessageQueue()
	svc := NewService(repo, mocks.NewMockBotRegistry(), nil, mq, nil, nil, testConfig(), newTestLogger())

	// Act
	err := svc.Track(ctx, domain.UsageEvent{Bot: "clinica", Model: "gpt-4o-mini", InputTokens: 100, OutputTokens: 50})

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	published := mq.PublishedMessages[usageSubject]
	if len(published) != 1 {
		t.Fatalf("expected one published event, got %d", len(published))
	}
	var ev domain.UsageEvent
	if err := json.Unmarshal(published[0], &ev); err != nil {
		t.Fatalf("failed to decode published event: %v", err)
	}
	if ev.Bot != "clinica" || ev.At.IsZero() {
		t.Errorf("unexpected event: %+v", ev)
	}
	if len(repo.Recorded) != 0 {
		t.Error("queue path must not record directly")
	}
}

func TestWorker_FoldsEvents(t *testing.T) {
	ctx := context.Background()
	repo := mocks.NewMockUsageRepository()
	mq := mocks.NewMockMessageQueue()
	svc := NewService(repo, mocks.NewMockBotRegistry(), nil, mq, nil, nil, testConfig(), newTestLogger())

	if err := svc.StartWorker(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Track(ctx, domain.UsageEvent{Bot: "clinica", Model: "gpt-4o-mini", InputTokens: 100}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// deliver the published message to the subscriber
	for _, data := range mq.PublishedMessages[usageSubject] {
		for _, handler := range mq.Subscribers[usageSubject] {
			if err := handler(data); err != nil {
				t.Fatalf("handler error: %v", err)
			}
		}
	}

	if len(repo.Recorded) != 1 {
		t.Fatalf("expected one recorded event, got %d", len(repo.Recorded))
	}
	if repo.Recorded[0].Bot != "clinica" {
		t.Errorf("unexpected bot: %s", repo.Recorded[0].Bot)
	}
}

func TestConsumption_AppliesRates(t *testing.T) {
	ctx := context.Background()
	repo := mocks.NewMockUsageRepository()
	repo.FindRangeFunc = func(ctx context.Context, bot, from, to string) ([]domain.DailyUsage, error) {
		return testDays(), nil
	}
	svc := NewService(repo, mocks.NewMockBotRegistry(), nil, nil, nil, nil, testConfig(), newTestLogger())

	st, err := svc.Consumption(ctx, "clinica", "2026-08-01", "2026-08-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Requests != 15 || st.InputTokens != 15000 || st.OutputTokens != 3000 {
		t.Errorf("unexpected totals: %+v", st)
	}
	// 15k in * 0.005/1k + 3k out * 0.015/1k = 0.075 + 0.045
	want := 0.12
	if diff := st.OpenAICost - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("expected cost %.3f, got %.6f", want, st.OpenAICost)
	}
	if len(st.Series) != 2 {
		t.Errorf("expected 2 series points, got %d", len(st.Series))
	}
}

func TestStatement_AddsTwilioAndServiceItem(t *testing.T) {
	ctx := context.Background()
	repo := mocks.NewMockUsageRepository()
	repo.FindRangeFunc = func(ctx context.Context, bot, from, to string) ([]domain.DailyUsage, error) {
		return testDays(), nil
	}
	msgUsage := mocks.NewMockMessageUsage()
	msgUsage.MessageCostsFunc = func(ctx context.Context, creds domain.TwilioCreds, from, to time.Time) (int64, float64, map[string]float64, error) {
		return 40, 0.32, map[string]float64{"2026-08-01": 0.32}, nil
	}
	registry := mocks.NewMockBotRegistry(&domain.BotCard{Slug: "clinica", Name: "Clínica"})
	svc := NewService(repo, registry, msgUsage, nil, nil, nil, testConfig(), newTestLogger())

	st, err := svc.Statement(ctx, "clinica", "2026-08-01", "2026-08-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.TwilioCount != 40 || st.TwilioCost != 0.32 {
		t.Errorf("unexpected twilio rollup: %+v", st)
	}
	if st.ServiceItem == nil || st.ServiceItem.Amount != 200 {
		t.Fatalf("expected default service item, got %+v", st.ServiceItem)
	}
	wantSubtotal := 0.12 + 0.32
	if diff := st.Subtotal - wantSubtotal; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("expected subtotal %.3f, got %.6f", wantSubtotal, st.Subtotal)
	}
	wantTotal := wantSubtotal + 200
	if diff := st.Total - wantTotal; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("expected total %.3f, got %.6f", wantTotal, st.Total)
	}
}

func TestBotEnabled_DefaultsOn(t *testing.T) {
	ctx := context.Background()
	repo := mocks.NewMockUsageRepository()
	svc := NewService(repo, mocks.NewMockBotRegistry(), nil, nil, nil, nil, testConfig(), newTestLogger())

	if !svc.BotEnabled(ctx, "clinica") {
		t.Error("expected default on")
	}

	repo.GetStatusFunc = func(ctx context.Context, bot string) (*domain.BotStatus, error) {
		return &domain.BotStatus{Bot: bot, Enabled: false}, nil
	}
	if svc.BotEnabled(ctx, "clinica") {
		t.Error("expected off after explicit disable")
	}
}

func TestClientsSummary(t *testing.T) {
	ctx := context.Background()
	repo := mocks.NewMockUsageRepository()
	repo.FindRangeFunc = func(ctx context.Context, bot, from, to string) ([]domain.DailyUsage, error) {
		if bot == "clinica" {
			return testDays(), nil
		}
		return nil, nil
	}
	registry := mocks.NewMockBotRegistry(
		&domain.BotCard{Slug: "clinica", Name: "Clínica"},
		&domain.BotCard{Slug: "abogados", Name: "Bufete"},
	)
	svc := NewService(repo, registry, nil, nil, nil, nil, testConfig(), newTestLogger())

	rows, err := svc.ClientsSummary(ctx, "2026-08-01", "2026-08-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	// sorted by slug
	if rows[0].Bot != "abogados" || rows[1].Bot != "clinica" {
		t.Errorf("unexpected order: %s, %s", rows[0].Bot, rows[1].Bot)
	}
	if rows[1].Requests != 15 {
		t.Errorf("expected 15 requests for clinica, got %d", rows[1].Requests)
	}
}
