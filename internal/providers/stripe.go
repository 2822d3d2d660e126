package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"kobopay/internal/errors"

	"github.com/shopspring/decimal"
	stripe "github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/client"
	"github.com/stripe/stripe-go/v72/webhook"
)

// Stripe implements the provider capability on the Stripe API: payment
// intents for deposits, payouts for withdrawals. Stripe amounts are in the
// smallest currency unit.
type Stripe struct {
	api           *client.API
	webhookSecret string
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
}

func NewStripe(cfg StripeConfig) *Stripe {
	api := &client.API{}
	api.Init(cfg.SecretKey, nil)
	return &Stripe{
		api:           api,
		webhookSecret: cfg.WebhookSecret,
	}
}

func (s *Stripe) Name() string { return "stripe" }

func (s *Stripe) InitiateDeposit(ctx context.Context, req InitiateDepositRequest) (*DepositInitiation, error) {
	params := &stripe.PaymentIntentParams{
		Amount:       stripe.Int64(toSubunit(req.Amount)),
		Currency:     stripe.String(strings.ToLower(req.Currency)),
		ReceiptEmail: stripe.String(req.Email),
	}
	params.AddMetadata("reference", req.Reference)
	params.AddMetadata("wallet_identifier", req.WalletUUID)

	intent, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("%w: stripe payment intent: %v", errors.ErrProviderError, err)
	}
	if intent.ClientSecret == "" {
		return nil, fmt.Errorf("%w: stripe payment intent returned no client secret", errors.ErrProviderError)
	}
	return &DepositInitiation{PaymentURL: intent.ClientSecret, Reference: req.Reference}, nil
}

func (s *Stripe) InitiateWithdraw(ctx context.Context, req InitiateWithdrawRequest) (*WithdrawInitiation, error) {
	params := &stripe.PayoutParams{
		Amount:   stripe.Int64(toSubunit(req.Amount)),
		Currency: stripe.String(strings.ToLower(req.Currency)),
	}
	params.AddMetadata("reference", req.Reference)
	params.AddMetadata("wallet_identifier", req.WalletUUID)

	payout, err := s.api.Payouts.New(params)
	if err != nil {
		return nil, fmt.Errorf("%w: stripe payout: %v", errors.ErrProviderError, err)
	}
	return &WithdrawInitiation{
		ProviderRef: payout.ID,
		Amount:      decimal.NewFromInt(payout.Amount).Div(subunitFactor),
	}, nil
}

func (s *Stripe) VerifyDeposit(ctx context.Context, reference, providerRef string) (*DepositVerification, error) {
	intent, err := s.api.PaymentIntents.Get(providerRef, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: stripe verify payment intent: %v", errors.ErrProviderError, err)
	}
	return &DepositVerification{
		Status:     NormalizeStatus(string(intent.Status)),
		Reference:  intent.Metadata["reference"],
		Amount:     decimal.NewFromInt(intent.Amount).Div(subunitFactor),
		Currency:   strings.ToUpper(string(intent.Currency)),
		Email:      intent.ReceiptEmail,
		WalletUUID: intent.Metadata["wallet_identifier"],
	}, nil
}

func (s *Stripe) VerifyWithdraw(ctx context.Context, reference, providerRef string) (*WithdrawVerification, error) {
	payout, err := s.api.Payouts.Get(providerRef, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: stripe verify payout: %v", errors.ErrProviderError, err)
	}
	return &WithdrawVerification{
		Status:    NormalizeStatus(string(payout.Status)),
		Reference: payout.Metadata["reference"],
		Amount:    decimal.NewFromInt(payout.Amount).Div(subunitFactor),
		Currency:  strings.ToUpper(string(payout.Currency)),
	}, nil
}

// ValidateWebhook authenticates a delivery with Stripe's signed event
// header and extracts the correlation identifiers from the event object.
func (s *Stripe) ValidateWebhook(delivery WebhookDelivery) (*WebhookValidation, error) {
	event, err := webhook.ConstructEvent(delivery.Body, delivery.Header("Stripe-Signature"), s.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrValidationFailed, err)
	}

	var object struct {
		ID       string            `json:"id"`
		Metadata map[string]string `json:"metadata"`
	}
	if err := json.Unmarshal(event.Data.Raw, &object); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrValidationFailed, err)
	}
	return &WebhookValidation{
		Reference:   object.Metadata["reference"],
		ProviderRef: object.ID,
	}, nil
}

// ClassifyWebhook maps payout.* events to withdrawals; payment intent and
// charge events are deposits.
func (s *Stripe) ClassifyWebhook(delivery WebhookDelivery) WebhookKind {
	var payload struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(delivery.Body, &payload); err != nil {
		return WebhookDeposit
	}
	if strings.HasPrefix(payload.Type, "payout.") {
		return WebhookWithdraw
	}
	return WebhookDeposit
}
