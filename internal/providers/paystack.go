package providers

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"kobopay/internal/errors"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// RecipientCodeStore caches the payout recipient codes a provider issues
// for bank details. Satisfied by repositories.RecipientCodeRepository.
type RecipientCodeStore interface {
	Get(provider string, bankDetailID uint) (string, bool)
	Save(provider string, bankDetailID uint, code string) error
}

// Paystack implements the provider capability against the Paystack API.
// Paystack amounts are in the currency subunit (kobo for NGN).
type Paystack struct {
	client     *resty.Client
	secretKey  string
	recipients RecipientCodeStore
	log        *logrus.Logger
}

type PaystackConfig struct {
	BaseURL    string
	SecretKey  string
	Recipients RecipientCodeStore
	Logger     *logrus.Logger
}

func NewPaystack(cfg PaystackConfig) *Paystack {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.paystack.co"
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	return &Paystack{
		client:     resty.New().SetBaseURL(cfg.BaseURL).SetAuthToken(cfg.SecretKey),
		secretKey:  cfg.SecretKey,
		recipients: cfg.Recipients,
		log:        cfg.Logger,
	}
}

func (p *Paystack) Name() string { return "paystack" }

type paystackEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (p *Paystack) post(ctx context.Context, path string, body interface{}) (*paystackEnvelope, error) {
	var envelope paystackEnvelope
	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&envelope).
		Post(path)
	return p.check(path, resp, &envelope, err)
}

func (p *Paystack) get(ctx context.Context, path string) (*paystackEnvelope, error) {
	var envelope paystackEnvelope
	resp, err := p.client.R().
		SetContext(ctx).
		SetResult(&envelope).
		Get(path)
	return p.check(path, resp, &envelope, err)
}

func (p *Paystack) check(path string, resp *resty.Response, envelope *paystackEnvelope, err error) (*paystackEnvelope, error) {
	if err != nil {
		return nil, fmt.Errorf("%w: paystack %s: %v", errors.ErrProviderError, path, err)
	}
	if resp.IsError() || !envelope.Status {
		p.log.WithFields(logrus.Fields{
			"provider": "paystack",
			"path":     path,
			"status":   resp.StatusCode(),
			"message":  envelope.Message,
		}).Warn("provider request rejected")
		return nil, fmt.Errorf("%w: paystack %s: %s", errors.ErrProviderError, path, envelope.Message)
	}
	return envelope, nil
}

func (p *Paystack) InitiateDeposit(ctx context.Context, req InitiateDepositRequest) (*DepositInitiation, error) {
	envelope, err := p.post(ctx, "/transaction/initialize", map[string]interface{}{
		"email":     req.Email,
		"amount":    toSubunit(req.Amount),
		"reference": req.Reference,
		"currency":  req.Currency,
		"metadata": map[string]string{
			"wallet_identifier": req.WalletUUID,
		},
	})
	if err != nil {
		return nil, err
	}

	var data struct {
		AuthorizationURL string `json:"authorization_url"`
		Reference        string `json:"reference"`
	}
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return nil, fmt.Errorf("%w: paystack initialize: %v", errors.ErrProviderError, err)
	}
	return &DepositInitiation{PaymentURL: data.AuthorizationURL, Reference: data.Reference}, nil
}

func (p *Paystack) InitiateWithdraw(ctx context.Context, req InitiateWithdrawRequest) (*WithdrawInitiation, error) {
	recipient, err := p.createRecipient(ctx, req)
	if err != nil {
		return nil, err
	}

	envelope, err := p.post(ctx, "/transfer", map[string]interface{}{
		"source":    "balance",
		"amount":    toSubunit(req.Amount),
		"reference": req.Reference,
		"recipient": recipient,
		"reason":    fmt.Sprintf("%s Wallet Withdraw", req.Currency),
		"currency":  req.Currency,
	})
	if err != nil {
		return nil, err
	}

	var data struct {
		TransferCode string          `json:"transfer_code"`
		Amount       decimal.Decimal `json:"amount"`
	}
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return nil, fmt.Errorf("%w: paystack transfer: %v", errors.ErrProviderError, err)
	}
	return &WithdrawInitiation{
		ProviderRef: data.TransferCode,
		Amount:      fromSubunit(data.Amount),
	}, nil
}

// createRecipient resolves the transfer recipient for the bank detail,
// registering it with Paystack only when no cached code exists.
func (p *Paystack) createRecipient(ctx context.Context, req InitiateWithdrawRequest) (string, error) {
	if p.recipients != nil {
		if code, ok := p.recipients.Get(p.Name(), req.BankDetail.ID); ok {
			return code, nil
		}
	}

	envelope, err := p.post(ctx, "/transferrecipient", map[string]interface{}{
		"type":           "nuban",
		"name":           req.BankDetail.AccountName,
		"account_number": req.BankDetail.AccountNumber,
		"bank_code":      req.BankDetail.BankCode,
		"currency":       req.Currency,
	})
	if err != nil {
		return "", err
	}

	var data struct {
		RecipientCode string `json:"recipient_code"`
	}
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return "", fmt.Errorf("%w: paystack recipient: %v", errors.ErrProviderError, err)
	}

	if p.recipients != nil {
		if err := p.recipients.Save(p.Name(), req.BankDetail.ID, data.RecipientCode); err != nil {
			p.log.WithFields(logrus.Fields{
				"provider":       "paystack",
				"bank_detail_id": req.BankDetail.ID,
			}).Warn("failed to cache recipient code")
		}
	}
	return data.RecipientCode, nil
}

func (p *Paystack) VerifyDeposit(ctx context.Context, reference, providerRef string) (*DepositVerification, error) {
	envelope, err := p.get(ctx, "/transaction/verify/"+reference)
	if err != nil {
		return nil, err
	}

	var data struct {
		Status    string          `json:"status"`
		Reference string          `json:"reference"`
		Amount    decimal.Decimal `json:"amount"`
		Currency  string          `json:"currency"`
		Customer  struct {
			Email string `json:"email"`
		} `json:"customer"`
		Metadata struct {
			WalletIdentifier string `json:"wallet_identifier"`
		} `json:"metadata"`
	}
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return nil, fmt.Errorf("%w: paystack verify: %v", errors.ErrProviderError, err)
	}
	return &DepositVerification{
		Status:     NormalizeStatus(data.Status),
		Reference:  data.Reference,
		Amount:     fromSubunit(data.Amount),
		Currency:   data.Currency,
		Email:      data.Customer.Email,
		WalletUUID: data.Metadata.WalletIdentifier,
	}, nil
}

func (p *Paystack) VerifyWithdraw(ctx context.Context, reference, providerRef string) (*WithdrawVerification, error) {
	envelope, err := p.get(ctx, "/transfer/verify/"+reference)
	if err != nil {
		return nil, err
	}

	var data struct {
		Status    string          `json:"status"`
		Reference string          `json:"reference"`
		Amount    decimal.Decimal `json:"amount"`
		Currency  string          `json:"currency"`
	}
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return nil, fmt.Errorf("%w: paystack verify transfer: %v", errors.ErrProviderError, err)
	}
	return &WithdrawVerification{
		Status:    NormalizeStatus(data.Status),
		Reference: data.Reference,
		Amount:    fromSubunit(data.Amount),
		Currency:  data.Currency,
	}, nil
}

// ValidateWebhook authenticates a delivery with the HMAC-SHA512 body
// signature Paystack sends in x-paystack-signature.
func (p *Paystack) ValidateWebhook(delivery WebhookDelivery) (*WebhookValidation, error) {
	mac := hmac.New(sha512.New, []byte(p.secretKey))
	mac.Write(delivery.Body)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(delivery.Header("x-paystack-signature"))) {
		return nil, errors.ErrValidationFailed
	}

	var payload struct {
		Event string `json:"event"`
		Data  struct {
			ID           json.Number `json:"id"`
			Reference    string      `json:"reference"`
			TransferCode string      `json:"transfer_code"`
		} `json:"data"`
	}
	if err := json.Unmarshal(delivery.Body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrValidationFailed, err)
	}

	providerRef := payload.Data.TransferCode
	if providerRef == "" {
		providerRef = payload.Data.ID.String()
	}
	return &WebhookValidation{
		Reference:   payload.Data.Reference,
		ProviderRef: providerRef,
	}, nil
}

// ClassifyWebhook maps transfer.* events to withdrawals; everything else is
// treated as a deposit, matching the event families Paystack emits.
func (p *Paystack) ClassifyWebhook(delivery WebhookDelivery) WebhookKind {
	var payload struct {
		Event string `json:"event"`
	}
	if err := json.Unmarshal(delivery.Body, &payload); err != nil {
		return WebhookDeposit
	}
	if strings.HasPrefix(strings.ToLower(payload.Event), "transfer.") {
		return WebhookWithdraw
	}
	return WebhookDeposit
}

var subunitFactor = decimal.NewFromInt(100)

func toSubunit(amount decimal.Decimal) int64 {
	return amount.Mul(subunitFactor).IntPart()
}

func fromSubunit(amount decimal.Decimal) decimal.Decimal {
	return amount.Div(subunitFactor)
}
