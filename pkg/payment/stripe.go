package payment

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	transferpkg "github.com/stripe/stripe-go/v82/transfer"
	"go.uber.org/zap"
)

type stripeProvider struct {
	currency string
}

// NewStripe sets the package-level Stripe key and returns the transfer backend.
func NewStripe(key, currency string) Provider {
	stripe.Key = key
	return &stripeProvider{currency: currency}
}

func (p *stripeProvider) Name() string { return "stripe" }

func (p *stripeProvider) CreateTransfer(ctx context.Context, amountCents int64, destination string) (string, error) {
	params := &stripe.TransferParams{
		Amount:      stripe.Int64(amountCents),
		Currency:    stripe.String(p.currency),
		Destination: stripe.String(destination),
	}
	params.Context = ctx

	tr, err := transferpkg.New(params)
	if err != nil {
		zap.L().Error("stripe transfer failed",
			zap.Int64("amount_cents", amountCents),
			zap.String("destination", destination),
			zap.Error(err),
		)
		return "", fmt.Errorf("create stripe transfer: %w", err)
	}

	return tr.ID, nil
}
