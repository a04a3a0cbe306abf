package notification

import (
	"context"

	"go.uber.org/zap"

	"github.com/sundinlabs/multibot/internal/domain"
	"github.com/sundinlabs/multibot/internal/ports"
	"github.com/sundinlabs/multibot/internal/service/email"
)

// EmailAdapter bridges the notification layer to the email service
type EmailAdapter struct {
	svc *email.Service
	log *zap.Logger
}

// NewEmailAdapter creates an email adapter wrapping the email service
func NewEmailAdapter(cfg *email.Config, log *zap.Logger) (*EmailAdapter, error) {
	svc, err := email.NewService(cfg, log)
	if err != nil {
		return nil, err
	}
	return &EmailAdapter{svc: svc, log: log}, nil
}

// Ensure EmailAdapter implements ports.EmailService
var _ ports.EmailService = (*EmailAdapter)(nil)

func (a *EmailAdapter) Send(ctx context.Context, to, subject, body string) error {
	return a.svc.Send(ctx, to, subject, body)
}

func (a *EmailAdapter) SendHTML(ctx context.Context, to, subject, htmlBody string) error {
	return a.svc.SendHTML(ctx, to, subject, htmlBody)
}

func (a *EmailAdapter) SendStatement(ctx context.Context, to string, st *domain.Statement) error {
	return a.svc.SendStatement(ctx, to, st)
}
