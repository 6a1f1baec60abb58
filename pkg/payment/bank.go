package payment

import (
	"context"
	"fmt"

	"dreamseller-controlplane/pkg/outbound"
)

type bankProvider struct {
	client   *outbound.Client
	url      string
	currency string
}

// NewBank returns a provider that posts transfer orders to the configured
// bank endpoint.
func NewBank(client *outbound.Client, url, currency string) Provider {
	return &bankProvider{client: client, url: url, currency: currency}
}

func (p *bankProvider) Name() string { return "bank" }

type bankTransferRequest struct {
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
	Account     string `json:"account"`
}

type bankTransferResponse struct {
	TransferID string `json:"transfer_id"`
}

func (p *bankProvider) CreateTransfer(ctx context.Context, amountCents int64, destination string) (string, error) {
	var resp bankTransferResponse
	if err := p.client.PostJSON(ctx, p.url, bankTransferRequest{
		AmountCents: amountCents,
		Currency:    p.currency,
		Account:     destination,
	}, &resp); err != nil {
		return "", fmt.Errorf("create bank transfer: %w", err)
	}

	if resp.TransferID == "" {
		return "", fmt.Errorf("bank endpoint returned no transfer id")
	}

	return resp.TransferID, nil
}
