package leads

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/sundinlabs/multibot/internal/domain"
	"github.com/sundinlabs/multibot/internal/mocks"
)

func newTestLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

func sampleLead() *domain.Lead {
	return &domain.Lead{
		Bot:    "clinica",
		Number: "+5215512345678",
		Historial: []domain.HistoryEntry{
			{Tipo: "usuario", Texto: "hola", Hora: "2026-08-01 10:00:00"},
			{Tipo: "bot", Texto: "buenas", Hora: "2026-08-01 10:00:05"},
			{Tipo: "usuario", Texto: "quiero una cita", Hora: "2026-08-01 10:02:00"},
		},
		LastMessage:  "quiero una cita",
		LastSeen:     "2026-08-01 10:02:00",
		MessageCount: 3,
		Status:       "nuevo",
		Notes:        "llamó dos veces",
	}
}

func TestService_ChatSinceFiltersOlderEntries(t *testing.T) {
	// Arrange
	repo := mocks.NewMockLeadRepository()
	lead := sampleLead()
	repo.FindFunc = func(ctx context.Context, bot, number string) (*domain.Lead, error) {
		return lead, nil
	}
	svc := NewService(repo, mocks.NewMockBotRegistry(), mocks.NewMockWhatsAppSender(), nil, newTestLogger())

	cutoff := lead.Historial[1].TimeMillis()

	// Act
	entries, err := svc.ChatSince(context.Background(), "clinica", "+5215512345678", cutoff)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry after cutoff, got %d", len(entries))
	}
	if entries[0].Texto != "quiero una cita" {
		t.Errorf("expected newest entry, got %q", entries[0].Texto)
	}
}

func TestService_ChatSinceUnknownLead(t *testing.T) {
	// Arrange
	repo := mocks.NewMockLeadRepository()
	svc := NewService(repo, mocks.NewMockBotRegistry(), mocks.NewMockWhatsAppSender(), nil, newTestLogger())

	// Act
	entries, err := svc.ChatSince(context.Background(), "clinica", "+5210000000000", 0)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if entries != nil {
		t.Errorf("expected no entries for unknown lead, got %v", entries)
	}
}

func TestService_SendManualPersistsAdminTurn(t *testing.T) {
	// Arrange
	repo := mocks.NewMockLeadRepository()
	sender := mocks.NewMockWhatsAppSender()
	registry := mocks.NewMockBotRegistry(&domain.BotCard{Slug: "clinica", Name: "Clínica"})
	svc := NewService(repo, registry, sender, nil, newTestLogger())

	// Act
	err := svc.SendManual(context.Background(), "clinica", "+5215512345678", "le confirmo su cita")

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(sender.WhatsAppSent) != 1 || sender.WhatsAppSent[0] != "le confirmo su cita" {
		t.Fatalf("expected message sent over whatsapp, got %v", sender.WhatsAppSent)
	}
	if len(repo.Appended) != 1 {
		t.Fatalf("expected 1 persisted entry, got %d", len(repo.Appended))
	}
	if repo.Appended[0].Tipo != "admin" {
		t.Errorf("expected tipo admin, got %q", repo.Appended[0].Tipo)
	}
}

func TestService_SendManualUnknownBot(t *testing.T) {
	// Arrange
	svc := NewService(mocks.NewMockLeadRepository(), mocks.NewMockBotRegistry(), mocks.NewMockWhatsAppSender(), nil, newTestLogger())

	// Act
	err := svc.SendManual(context.Background(), "nadie", "+5215512345678", "hola")

	// Assert
	if err == nil {
		t.Fatal("expected error for unknown bot")
	}
}

func TestService_SendManualRejectsEmptyText(t *testing.T) {
	// Arrange
	sender := mocks.NewMockWhatsAppSender()
	svc := NewService(mocks.NewMockLeadRepository(), mocks.NewMockBotRegistry(), sender, nil, newTestLogger())

	// Act
	err := svc.SendManual(context.Background(), "clinica", "+5215512345678", "")

	// Assert
	if err == nil {
		t.Fatal("expected error for empty message")
	}
	if len(sender.WhatsAppSent) != 0 {
		t.Errorf("expected nothing sent, got %v", sender.WhatsAppSent)
	}
}

func TestService_SaveStatusUpdatesBothFields(t *testing.T) {
	// Arrange
	repo := mocks.NewMockLeadRepository()
	var gotStatus, gotNotes string
	repo.UpdateStatusFunc = func(ctx context.Context, bot, number, status string) error {
		gotStatus = status
		return nil
	}
	repo.UpdateNotesFunc = func(ctx context.Context, bot, number, notes string) error {
		gotNotes = notes
		return nil
	}
	svc := NewService(repo, mocks.NewMockBotRegistry(), mocks.NewMockWhatsAppSender(), nil, newTestLogger())

	// Act
	err := svc.SaveStatus(context.Background(), "clinica", "+5215512345678", "contactado", "pidió horario de tarde")

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if gotStatus != "contactado" {
		t.Errorf("expected status contactado, got %q", gotStatus)
	}
	if gotNotes != "pidió horario de tarde" {
		t.Errorf("expected notes saved, got %q", gotNotes)
	}
}

func TestService_ExportCSV(t *testing.T) {
	// Arrange
	repo := mocks.NewMockLeadRepository()
	repo.FindByBotFunc = func(ctx context.Context, bot string) ([]domain.Lead, error) {
		return []domain.Lead{*sampleLead()}, nil
	}
	svc := NewService(repo, mocks.NewMockBotRegistry(), mocks.NewMockWhatsAppSender(), nil, newTestLogger())

	// Act
	out, err := svc.ExportCSV(context.Background(), "clinica")

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus 1 row, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "Bot,Número,Primer contacto") {
		t.Errorf("unexpected header: %q", lines[0])
	}
	if !strings.Contains(lines[1], "+5215512345678") || !strings.Contains(lines[1], "2026-08-01 10:00:00") {
		t.Errorf("row missing lead data: %q", lines[1])
	}
}

func TestService_ListAllWhenBotEmpty(t *testing.T) {
	// Arrange
	repo := mocks.NewMockLeadRepository()
	allCalled := false
	repo.FindAllFunc = func(ctx context.Context) ([]domain.Lead, error) {
		allCalled = true
		return nil, nil
	}
	svc := NewService(repo, mocks.NewMockBotRegistry(), mocks.NewMockWhatsAppSender(), nil, newTestLogger())

	// Act
	_, err := svc.List(context.Background(), "")

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !allCalled {
		t.Error("expected FindAll to be used when bot filter is empty")
	}
}
