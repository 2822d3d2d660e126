// Package providers defines the payment provider capability the ledger
// consumes, and the concrete adapters that implement it. The core never
// trusts a webhook payload for money amounts or status: it validates the
// delivery, then re-verifies the operation server-side with the provider.
package providers

import (
	"context"
	"strings"

	"kobopay/internal/models"

	"github.com/shopspring/decimal"
)

// Status is the normalized provider-side state of an operation.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusPending Status = "pending"
)

// WebhookKind is the structural classification of a delivery.
type WebhookKind string

const (
	WebhookDeposit  WebhookKind = "deposit"
	WebhookWithdraw WebhookKind = "withdraw"
)

// WebhookDelivery is a raw snapshot of an incoming webhook request.
type WebhookDelivery struct {
	Body    []byte
	Headers map[string]string
}

// Header returns a header value, case-insensitively.
func (d WebhookDelivery) Header(name string) string {
	if v, ok := d.Headers[name]; ok {
		return v
	}
	for k, v := range d.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// InitiateDepositRequest asks the provider for a customer payment handle.
type InitiateDepositRequest struct {
	Reference  string
	Currency   string
	Email      string
	WalletUUID string
	Amount     decimal.Decimal
}

// DepositInitiation is the provider's payment handle the customer completes.
type DepositInitiation struct {
	PaymentURL string
	Reference  string
}

// InitiateWithdrawRequest asks the provider to pay out to a bank account.
type InitiateWithdrawRequest struct {
	Reference  string
	Currency   string
	BankDetail models.BankDetail
	WalletUUID string
	Amount     decimal.Decimal
}

// WithdrawInitiation is the provider's acknowledgement of a transfer.
type WithdrawInitiation struct {
	ProviderRef string
	Amount      decimal.Decimal
}

// DepositVerification is the provider's server-side truth for a deposit.
type DepositVerification struct {
	Status     Status
	Reference  string
	Amount     decimal.Decimal
	Currency   string
	Email      string
	WalletUUID string
}

// WithdrawVerification is the provider's server-side truth for a withdrawal.
type WithdrawVerification struct {
	Status    Status
	Reference string
	Amount    decimal.Decimal
	Currency  string
}

// WebhookValidation carries the correlation identifiers extracted from an
// authenticated delivery.
type WebhookValidation struct {
	Reference   string
	ProviderRef string
}

// Provider is the external payment-network capability.
type Provider interface {
	Name() string
	InitiateDeposit(ctx context.Context, req InitiateDepositRequest) (*DepositInitiation, error)
	InitiateWithdraw(ctx context.Context, req InitiateWithdrawRequest) (*WithdrawInitiation, error)
	VerifyDeposit(ctx context.Context, reference, providerRef string) (*DepositVerification, error)
	VerifyWithdraw(ctx context.Context, reference, providerRef string) (*WithdrawVerification, error)
	ValidateWebhook(delivery WebhookDelivery) (*WebhookValidation, error)
	ClassifyWebhook(delivery WebhookDelivery) WebhookKind
}

// NormalizeStatus maps provider status vocabulary onto Status.
func NormalizeStatus(raw string) Status {
	switch strings.ToLower(raw) {
	case "success", "successful", "succeeded", "paid", "completed":
		return StatusSuccess
	case "failed", "abandoned", "reversed", "canceled", "cancelled":
		return StatusFailed
	default:
		return StatusPending
	}
}
