package ports

import (
	"context"

	"github.com/sundinlabs/multibot/internal/domain"
)

// PaymentGateway turns a billing statement into a real invoice with
// the payment provider.
type PaymentGateway interface {
	CreateInvoice(ctx context.Context, st *domain.Statement, customerEmail string) (string, error)
}
