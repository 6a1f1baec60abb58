package payment

import (
	"context"

	"dreamseller-controlplane/pkg/config"
	"dreamseller-controlplane/pkg/outbound"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Provider moves money to a payout destination. Amounts are integer cents.
type Provider interface {
	Name() string
	CreateTransfer(ctx context.Context, amountCents int64, destination string) (string, error)
}

var Module = fx.Module("payment", fx.Provide(ProvideProvider))

type Params struct {
	fx.In
	Config   *config.Config
	Outbound *outbound.Client
}

// ProvideProvider selects the transfer backend from config. Offline mode is
// an explicit capability, never an implicit fallback: config validation has
// already rejected the no-credentials-no-offline case at startup.
func ProvideProvider(p Params) Provider {
	switch {
	case p.Config.Offline:
		zap.L().Warn("payment provider running in offline mode, transfers are recorded but not executed")
		return NewOffline()
	case p.Config.Payment.StripeKey != "":
		return NewStripe(p.Config.Payment.StripeKey, p.Config.Payment.TransferCurrency)
	default:
		return NewBank(p.Outbound, p.Config.Payment.BankTransferURL, p.Config.Payment.TransferCurrency)
	}
}
