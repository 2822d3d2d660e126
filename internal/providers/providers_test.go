package providers

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"kobopay/internal/models"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	name string
}

func (s *stubProvider) Name() string { return s.name }
func (s *stubProvider) InitiateDeposit(ctx context.Context, req InitiateDepositRequest) (*DepositInitiation, error) {
	return nil, nil
}
func (s *stubProvider) InitiateWithdraw(ctx context.Context, req InitiateWithdrawRequest) (*WithdrawInitiation, error) {
	return nil, nil
}
func (s *stubProvider) VerifyDeposit(ctx context.Context, reference, providerRef string) (*DepositVerification, error) {
	return nil, nil
}
func (s *stubProvider) VerifyWithdraw(ctx context.Context, reference, providerRef string) (*WithdrawVerification, error) {
	return nil, nil
}
func (s *stubProvider) ValidateWebhook(delivery WebhookDelivery) (*WebhookValidation, error) {
	return nil, nil
}
func (s *stubProvider) ClassifyWebhook(delivery WebhookDelivery) WebhookKind {
	return WebhookDeposit
}

func TestRegistry(t *testing.T) {
	paystack := &stubProvider{name: "paystack"}
	flutterwave := &stubProvider{name: "flutterwave"}

	t.Run("resolves selections at construction", func(t *testing.T) {
		registry, err := NewRegistry("paystack", "flutterwave", paystack, flutterwave)
		require.NoError(t, err)
		assert.Equal(t, "paystack", registry.Deposit().Name())
		assert.Equal(t, "flutterwave", registry.Withdraw().Name())
	})

	t.Run("selection is case-insensitive", func(t *testing.T) {
		registry, err := NewRegistry("PayStack", "PAYSTACK", paystack)
		require.NoError(t, err)
		assert.Equal(t, "paystack", registry.Deposit().Name())
	})

	t.Run("unknown deposit selection fails startup", func(t *testing.T) {
		_, err := NewRegistry("stripe", "paystack", paystack)
		assert.Error(t, err)
	})

	t.Run("unknown withdraw selection fails startup", func(t *testing.T) {
		_, err := NewRegistry("paystack", "stripe", paystack)
		assert.Error(t, err)
	})

	t.Run("duplicate registration fails", func(t *testing.T) {
		_, err := NewRegistry("paystack", "paystack", paystack, &stubProvider{name: "paystack"})
		assert.Error(t, err)
	})

	t.Run("get unknown provider", func(t *testing.T) {
		registry, err := NewRegistry("paystack", "paystack", paystack)
		require.NoError(t, err)
		_, err = registry.Get("nosuchpay")
		assert.Error(t, err)
	})
}

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want Status
	}{
		{"success", StatusSuccess},
		{"SUCCESSFUL", StatusSuccess},
		{"succeeded", StatusSuccess},
		{"paid", StatusSuccess},
		{"completed", StatusSuccess},
		{"failed", StatusFailed},
		{"abandoned", StatusFailed},
		{"reversed", StatusFailed},
		{"cancelled", StatusFailed},
		{"pending", StatusPending},
		{"processing", StatusPending},
		{"", StatusPending},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeStatus(tt.raw))
		})
	}
}

func TestWebhookDelivery_Header(t *testing.T) {
	delivery := WebhookDelivery{Headers: map[string]string{"X-Paystack-Signature": "abc"}}

	assert.Equal(t, "abc", delivery.Header("X-Paystack-Signature"))
	assert.Equal(t, "abc", delivery.Header("x-paystack-signature"))
	assert.Equal(t, "", delivery.Header("verif-hash"))
}

func signPaystack(secret string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestPaystack_ValidateWebhook(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	paystack := NewPaystack(PaystackConfig{SecretKey: "sk_test_secret", Logger: log})

	body := []byte(`{"event":"charge.success","data":{"id":12345,"reference":"ref-1"}}`)

	t.Run("valid signature", func(t *testing.T) {
		validation, err := paystack.ValidateWebhook(WebhookDelivery{
			Body:    body,
			Headers: map[string]string{"x-paystack-signature": signPaystack("sk_test_secret", body)},
		})
		require.NoError(t, err)
		assert.Equal(t, "ref-1", validation.Reference)
		assert.Equal(t, "12345", validation.ProviderRef)
	})

	t.Run("transfer events carry the transfer code", func(t *testing.T) {
		transferBody := []byte(`{"event":"transfer.success","data":{"reference":"ref-2","transfer_code":"TRF_abc"}}`)
		validation, err := paystack.ValidateWebhook(WebhookDelivery{
			Body:    transferBody,
			Headers: map[string]string{"x-paystack-signature": signPaystack("sk_test_secret", transferBody)},
		})
		require.NoError(t, err)
		assert.Equal(t, "TRF_abc", validation.ProviderRef)
	})

	t.Run("invalid signature", func(t *testing.T) {
		_, err := paystack.ValidateWebhook(WebhookDelivery{
			Body:    body,
			Headers: map[string]string{"x-paystack-signature": "forged"},
		})
		assert.Error(t, err)
	})

	t.Run("missing signature", func(t *testing.T) {
		_, err := paystack.ValidateWebhook(WebhookDelivery{Body: body})
		assert.Error(t, err)
	})
}

func TestPaystack_ClassifyWebhook(t *testing.T) {
	paystack := NewPaystack(PaystackConfig{SecretKey: "sk_test_secret"})

	tests := []struct {
		name string
		body string
		want WebhookKind
	}{
		{"charge event", `{"event":"charge.success"}`, WebhookDeposit},
		{"transfer success", `{"event":"transfer.success"}`, WebhookWithdraw},
		{"transfer failed", `{"event":"transfer.failed"}`, WebhookWithdraw},
		{"transfer reversed", `{"event":"transfer.reversed"}`, WebhookWithdraw},
		{"malformed body", `not-json`, WebhookDeposit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, paystack.ClassifyWebhook(WebhookDelivery{Body: []byte(tt.body)}))
		})
	}
}

type memRecipientStore struct {
	codes map[string]string
}

func newMemRecipientStore() *memRecipientStore {
	return &memRecipientStore{codes: make(map[string]string)}
}

func (s *memRecipientStore) key(provider string, bankDetailID uint) string {
	return fmt.Sprintf("%s:%d", provider, bankDetailID)
}

func (s *memRecipientStore) Get(provider string, bankDetailID uint) (string, bool) {
	code, ok := s.codes[s.key(provider, bankDetailID)]
	return code, ok
}

func (s *memRecipientStore) Save(provider string, bankDetailID uint, code string) error {
	s.codes[s.key(provider, bankDetailID)] = code
	return nil
}

func TestPaystack_InitiateWithdrawReusesRecipient(t *testing.T) {
	var recipientCalls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/transferrecipient":
			recipientCalls++
			fmt.Fprint(w, `{"status":true,"message":"ok","data":{"recipient_code":"RCP_1"}}`)
		case "/transfer":
			fmt.Fprint(w, `{"status":true,"message":"ok","data":{"transfer_code":"TRF_1","amount":200000}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	log := logrus.New()
	log.SetOutput(io.Discard)
	store := newMemRecipientStore()
	paystack := NewPaystack(PaystackConfig{
		BaseURL:    server.URL,
		SecretKey:  "sk_test_secret",
		Recipients: store,
		Logger:     log,
	})

	req := InitiateWithdrawRequest{
		Reference: "WTH-KBP-1",
		Currency:  "NGN",
		Amount:    decimal.NewFromInt(2000),
		BankDetail: models.BankDetail{
			ID:            7,
			BankCode:      "058",
			AccountNumber: "0123456789",
			AccountName:   "Ada Obi",
		},
	}

	first, err := paystack.InitiateWithdraw(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "TRF_1", first.ProviderRef)
	assert.Equal(t, 1, recipientCalls)

	code, ok := store.Get("paystack", 7)
	require.True(t, ok, "recipient code is cached after the first registration")
	assert.Equal(t, "RCP_1", code)

	req.Reference = "WTH-KBP-2"
	_, err = paystack.InitiateWithdraw(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, recipientCalls, "repeat withdrawal reuses the cached recipient")
}

func TestSubunitConversion(t *testing.T) {
	assert.Equal(t, int64(500000), toSubunit(decimal.NewFromInt(5000)))
	assert.True(t, fromSubunit(decimal.NewFromInt(500000)).Equal(decimal.NewFromInt(5000)))
	assert.Equal(t, int64(12550), toSubunit(decimal.RequireFromString("125.50")))
}
