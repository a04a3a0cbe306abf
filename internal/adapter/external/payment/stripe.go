package payment

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/customer"
	"github.com/stripe/stripe-go/v76/invoice"
	"github.com/stripe/stripe-go/v76/invoiceitem"

	"github.com/sundinlabs/multibot/internal/domain"
	"github.com/sundinlabs/multibot/internal/ports"
	"github.com/sundinlabs/multibot/pkg/config"
)

type StripeService struct {
	currency string
	log      *zap.Logger
}

func NewStripeService(cfg config.StripeConfig, log *zap.Logger) ports.PaymentGateway {
	stripe.Key = cfg.SecretKey
	currency := cfg.Currency
	if currency == "" {
		currency = "usd"
	}
	return &StripeService{
		currency: currency,
		log:      log,
	}
}

// CreateInvoice materializes a statement as a Stripe invoice: one line
// per cost component, finalized and left for Stripe to collect.
func (s *StripeService) CreateInvoice(ctx context.Context, st *domain.Statement, customerEmail string) (string, error) {
	if customerEmail == "" {
		return "", errors.New("customer email is required")
	}
	if st.Total <= 0 {
		return "", errors.New("statement total must be positive")
	}

	cust, err := s.findOrCreateCustomer(ctx, st.Bot, customerEmail)
	if err != nil {
		return "", err
	}

	lines := []struct {
		label  string
		amount float64
	}{
		{fmt.Sprintf("Uso de modelo %s a %s", st.From, st.To), st.OpenAICost},
		{"Mensajería", st.TwilioCost},
	}
	if st.ServiceItem != nil && st.ServiceItem.Enabled {
		lines = append(lines, struct {
			label  string
			amount float64
		}{st.ServiceItem.Label, st.ServiceItem.Amount})
	}

	for _, line := range lines {
		if line.amount <= 0 {
			continue
		}
		params := &stripe.InvoiceItemParams{
			Customer:    stripe.String(cust.ID),
			Amount:      stripe.Int64(int64(line.amount * 100)),
			Currency:    stripe.String(s.currency),
			Description: stripe.String(line.label),
		}
		params.Context = ctx
		if _, err := invoiceitem.New(params); err != nil {
			return "", fmt.Errorf("stripe: create invoice item: %w", err)
		}
	}

	invParams := &stripe.InvoiceParams{
		Customer:         stripe.String(cust.ID),
		AutoAdvance:      stripe.Bool(true),
		CollectionMethod: stripe.String(string(stripe.InvoiceCollectionMethodSendInvoice)),
		DaysUntilDue:     stripe.Int64(15),
	}
	invParams.Context = ctx

	inv, err := invoice.New(invParams)
	if err != nil {
		return "", fmt.Errorf("stripe: create invoice: %w", err)
	}

	s.log.Info("Invoice created",
		zap.String("invoice_id", inv.ID),
		zap.String("bot", st.Bot),
		zap.Float64("total", st.Total),
	)
	return inv.ID, nil
}

func (s *StripeService) findOrCreateCustomer(ctx context.Context, bot, email string) (*stripe.Customer, error) {
	listParams := &stripe.CustomerListParams{Email: stripe.String(email)}
	listParams.Context = ctx
	listParams.Filters.AddFilter("limit", "", "1")

	it := customer.List(listParams)
	for it.Next() {
		return it.Customer(), nil
	}
	if err := it.Err(); err != nil {
		return nil, fmt.Errorf("stripe: list customers: %w", err)
	}

	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(bot),
	}
	params.Context = ctx

	cust, err := customer.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: create customer: %w", err)
	}
	return cust, nil
}
