package providers

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"strings"

	"kobopay/internal/errors"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Flutterwave implements the provider capability against the Flutterwave v3
// API. Amounts are in major currency units.
type Flutterwave struct {
	client     *resty.Client
	secretHash string
	log        *logrus.Logger
}

type FlutterwaveConfig struct {
	BaseURL    string
	SecretKey  string
	SecretHash string // shared webhook secret sent back in verif-hash
	Logger     *logrus.Logger
}

func NewFlutterwave(cfg FlutterwaveConfig) *Flutterwave {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.flutterwave.com/v3"
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	return &Flutterwave{
		client:     resty.New().SetBaseURL(cfg.BaseURL).SetAuthToken(cfg.SecretKey),
		secretHash: cfg.SecretHash,
		log:        cfg.Logger,
	}
}

func (f *Flutterwave) Name() string { return "flutterwave" }

type flutterwaveEnvelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (f *Flutterwave) request(ctx context.Context, method, path string, body interface{}) (*flutterwaveEnvelope, error) {
	var envelope flutterwaveEnvelope
	req := f.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetResult(&envelope)
	if body != nil {
		req.SetBody(body)
	}

	var resp *resty.Response
	var err error
	if method == "POST" {
		resp, err = req.Post(path)
	} else {
		resp, err = req.Get(path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: flutterwave %s: %v", errors.ErrProviderError, path, err)
	}
	if resp.IsError() || envelope.Status != "success" {
		f.log.WithFields(logrus.Fields{
			"provider": "flutterwave",
			"path":     path,
			"status":   resp.StatusCode(),
			"message":  envelope.Message,
		}).Warn("provider request rejected")
		return nil, fmt.Errorf("%w: flutterwave %s: %s", errors.ErrProviderError, path, envelope.Message)
	}
	return &envelope, nil
}

func (f *Flutterwave) InitiateDeposit(ctx context.Context, req InitiateDepositRequest) (*DepositInitiation, error) {
	envelope, err := f.request(ctx, "POST", "/payments", map[string]interface{}{
		"currency": req.Currency,
		"amount":   req.Amount,
		"tx_ref":   req.Reference,
		"customer": map[string]string{
			"email": req.Email,
		},
		"meta": map[string]string{
			"wallet_identifier": req.WalletUUID,
		},
	})
	if err != nil {
		return nil, err
	}

	var data struct {
		Link string `json:"link"`
	}
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return nil, fmt.Errorf("%w: flutterwave payments: %v", errors.ErrProviderError, err)
	}
	return &DepositInitiation{PaymentURL: data.Link, Reference: req.Reference}, nil
}

func (f *Flutterwave) InitiateWithdraw(ctx context.Context, req InitiateWithdrawRequest) (*WithdrawInitiation, error) {
	envelope, err := f.request(ctx, "POST", "/transfers", map[string]interface{}{
		"account_bank":   req.BankDetail.BankCode,
		"account_number": req.BankDetail.AccountNumber,
		"amount":         req.Amount,
		"currency":       req.Currency,
		"reference":      req.Reference,
		"narration":      fmt.Sprintf("%s Wallet Withdraw", req.Currency),
		"debit_currency": req.Currency,
	})
	if err != nil {
		return nil, err
	}

	var data struct {
		ID     json.Number     `json:"id"`
		Amount decimal.Decimal `json:"amount"`
	}
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return nil, fmt.Errorf("%w: flutterwave transfers: %v", errors.ErrProviderError, err)
	}
	return &WithdrawInitiation{ProviderRef: data.ID.String(), Amount: data.Amount}, nil
}

func (f *Flutterwave) VerifyDeposit(ctx context.Context, reference, providerRef string) (*DepositVerification, error) {
	data, err := f.verifyTransaction(ctx, providerRef)
	if err != nil {
		return nil, err
	}
	return &DepositVerification{
		Status:     NormalizeStatus(data.Status),
		Reference:  data.TxRef,
		Amount:     data.Amount,
		Currency:   data.Currency,
		Email:      data.Customer.Email,
		WalletUUID: data.Meta.WalletIdentifier,
	}, nil
}

func (f *Flutterwave) VerifyWithdraw(ctx context.Context, reference, providerRef string) (*WithdrawVerification, error) {
	data, err := f.verifyTransaction(ctx, providerRef)
	if err != nil {
		return nil, err
	}
	return &WithdrawVerification{
		Status:    NormalizeStatus(data.Status),
		Reference: data.TxRef,
		Amount:    data.Amount,
		Currency:  data.Currency,
	}, nil
}

type flutterwaveTransaction struct {
	Status   string          `json:"status"`
	TxRef    string          `json:"tx_ref"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Customer struct {
		Email string `json:"email"`
	} `json:"customer"`
	Meta struct {
		WalletIdentifier string `json:"wallet_identifier"`
	} `json:"meta"`
}

func (f *Flutterwave) verifyTransaction(ctx context.Context, providerRef string) (*flutterwaveTransaction, error) {
	envelope, err := f.request(ctx, "GET", "/transactions/"+providerRef+"/verify", nil)
	if err != nil {
		return nil, err
	}
	var data flutterwaveTransaction
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return nil, fmt.Errorf("%w: flutterwave verify: %v", errors.ErrProviderError, err)
	}
	return &data, nil
}

// ValidateWebhook authenticates a delivery by comparing the verif-hash
// header against the configured shared secret.
func (f *Flutterwave) ValidateWebhook(delivery WebhookDelivery) (*WebhookValidation, error) {
	hash := delivery.Header("verif-hash")
	if hash == "" || subtle.ConstantTimeCompare([]byte(hash), []byte(f.secretHash)) != 1 {
		return nil, errors.ErrValidationFailed
	}

	var payload struct {
		ID    json.Number `json:"id"`
		TxRef string      `json:"txRef"`
		Data  struct {
			ID        json.Number `json:"id"`
			Reference string      `json:"reference"`
		} `json:"data"`
		Transfer struct {
			ID        json.Number `json:"id"`
			Reference string      `json:"reference"`
		} `json:"transfer"`
	}
	if err := json.Unmarshal(delivery.Body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrValidationFailed, err)
	}

	// Flutterwave nests identifiers differently per event family.
	providerRef := payload.ID.String()
	if providerRef == "" {
		providerRef = payload.Data.ID.String()
	}
	if providerRef == "" {
		providerRef = payload.Transfer.ID.String()
	}
	reference := payload.TxRef
	if reference == "" {
		reference = payload.Data.Reference
	}
	if reference == "" {
		reference = payload.Transfer.Reference
	}
	return &WebhookValidation{Reference: reference, ProviderRef: providerRef}, nil
}

// ClassifyWebhook maps transfer events to withdrawals and defaults to
// deposit for everything else.
func (f *Flutterwave) ClassifyWebhook(delivery WebhookDelivery) WebhookKind {
	var payload struct {
		EventType string `json:"event.type"`
		Event     string `json:"event"`
	}
	if err := json.Unmarshal(delivery.Body, &payload); err != nil {
		return WebhookDeposit
	}
	eventType := payload.EventType
	if eventType == "" {
		eventType = payload.Event
	}
	if strings.Contains(strings.ToLower(eventType), "transfer") {
		return WebhookWithdraw
	}
	return WebhookDeposit
}
